package model

import "errors"

var (
	// User related errors
	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrLastAdmin          = errors.New("cannot remove the last admin user")
	ErrSetupComplete      = errors.New("setup already completed")

	// Permission/Access related errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// Inventory related errors
	ErrCategoryNotFound  = errors.New("category not found")
	ErrCategoryNameTaken = errors.New("category name already exists")
	ErrCategoryInUse     = errors.New("category still has boxes")
	ErrBoxNotFound       = errors.New("box not found")
	ErrItemNotFound      = errors.New("item not found")

	// Scan related errors
	ErrInvalidImage     = errors.New("invalid image data")
	ErrVisionKeyMissing = errors.New("vision API key not configured")
	ErrNoItemsDetected  = errors.New("no items detected in the image")

	// Generic errors
	ErrInvalidInput = errors.New("invalid input")
)
