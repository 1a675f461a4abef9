// Package apierror defines errors that carry their own HTTP status and
// response code, for failures diagnosed at the HTTP boundary rather
// than in a service.
package apierror

import (
	"fmt"
	"net/http"
)

type APIError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    string `json:"details,omitempty"`
	HTTPStatus int    `json:"-"`
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}

	if e.Details == "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}

	return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
}

func New(code string, message string, details string, status int) *APIError {
	return &APIError{Code: code, Message: message, Details: details, HTTPStatus: status}
}

// BadRequest is the common case: a request rejected before it reaches a
// service, with details naming the offending input.
func BadRequest(message string, details string) *APIError {
	return New("INVALID_INPUT", message, details, http.StatusBadRequest)
}
