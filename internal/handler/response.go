package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"boxmgr/internal/model"
	"boxmgr/pkg/apierror"
)

func writeJSON(w http.ResponseWriter, status int, body model.APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("encode response", "error", err)
	}
}

func writeSuccess(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, model.APIResponse{Success: true, Data: data})
}

// writeError maps service errors to HTTP responses in one place, so
// handlers just forward whatever their service returned.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *apierror.APIError
	if errors.As(err, &apiErr) {
		writeJSON(w, apiErr.HTTPStatus, model.APIResponse{
			Success: false,
			Error:   &model.APIError{Code: apiErr.Code, Message: apiErr.Message, Details: apiErr.Details},
		})
		return
	}

	status, code, message := mapError(err)
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		message = "Internal server error"
	}

	writeJSON(w, status, model.APIResponse{
		Success: false,
		Error:   &model.APIError{Code: code, Message: message},
	})
}

func mapError(err error) (int, string, string) {
	switch {
	case errors.Is(err, model.ErrInvalidCredentials):
		return http.StatusUnauthorized, "UNAUTHORIZED", "Invalid credentials"
	case errors.Is(err, model.ErrUnauthorized):
		return http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required"
	case errors.Is(err, model.ErrForbidden):
		return http.StatusForbidden, "FORBIDDEN", "Forbidden. Admin access required."
	case errors.Is(err, model.ErrSetupComplete):
		return http.StatusForbidden, "SETUP_COMPLETE", "Setup has already been completed"
	case errors.Is(err, model.ErrUserNotFound):
		return http.StatusNotFound, "NOT_FOUND", "User not found"
	case errors.Is(err, model.ErrCategoryNotFound):
		return http.StatusNotFound, "NOT_FOUND", "Category not found"
	case errors.Is(err, model.ErrBoxNotFound):
		return http.StatusNotFound, "NOT_FOUND", "Box not found"
	case errors.Is(err, model.ErrItemNotFound):
		return http.StatusNotFound, "NOT_FOUND", "Item not found"
	case errors.Is(err, model.ErrUsernameTaken):
		return http.StatusConflict, "CONFLICT", "Username already exists"
	case errors.Is(err, model.ErrCategoryNameTaken):
		return http.StatusConflict, "CONFLICT", "Category name already exists"
	case errors.Is(err, model.ErrCategoryInUse):
		return http.StatusConflict, "CONFLICT", "Category still has boxes assigned"
	case errors.Is(err, model.ErrLastAdmin):
		return http.StatusBadRequest, "LAST_ADMIN", "Cannot remove the last admin user"
	case errors.Is(err, model.ErrInvalidImage):
		return http.StatusBadRequest, "INVALID_IMAGE", "Invalid or unsupported image data"
	case errors.Is(err, model.ErrVisionKeyMissing):
		return http.StatusBadRequest, "VISION_KEY_MISSING", "No vision API key configured"
	case errors.Is(err, model.ErrNoItemsDetected):
		return http.StatusBadRequest, "NO_ITEMS_DETECTED", "No items detected in the image"
	case errors.Is(err, model.ErrInvalidInput):
		return http.StatusBadRequest, "INVALID_INPUT", "Invalid input"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", ""
	}
}

// decodeBody parses the JSON request body into dst, rejecting unknown
// garbage with a uniform 400.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, r, apierror.BadRequest("Invalid request body", err.Error()))
		return false
	}
	return true
}

func errorResponse(code string, message string) model.APIResponse {
	return model.APIResponse{
		Success: false,
		Error:   &model.APIError{Code: code, Message: message},
	}
}

func badRequest(w http.ResponseWriter, r *http.Request, message string, details string) {
	writeError(w, r, apierror.BadRequest(message, details))
}
