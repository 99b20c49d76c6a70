package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/gophdocs/internal/common"
)

// Error codes carried in the error body.
const (
	CodeValidationError = "VALIDATION_ERROR"
	CodeNotFound        = "NOT_FOUND"
	CodeForbidden       = "FORBIDDEN"
	CodeInvalidState    = "INVALID_STATE"
	CodeTransientIO     = "TRANSIENT_IO"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeInternalError   = "INTERNAL_ERROR"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	DocumentID string `json:"documentId,omitempty"`
	UserID     string `json:"userId,omitempty"`
	Status     string `json:"status,omitempty"`
}

// statusOf maps an error to its HTTP status and code.
func statusOf(err error) (int, string) {
	switch {
	case errors.Is(err, common.ErrInvalidToken), errors.Is(err, common.ErrTokenExpired):
		return http.StatusUnauthorized, CodeUnauthorized
	case errors.Is(err, common.ErrValidation):
		return http.StatusBadRequest, CodeValidationError
	case errors.Is(err, common.ErrNotFound):
		return http.StatusNotFound, CodeNotFound
	case errors.Is(err, common.ErrUnauthorized):
		return http.StatusForbidden, CodeForbidden
	case errors.Is(err, common.ErrInvalidState):
		return http.StatusConflict, CodeInvalidState
	case errors.Is(err, common.ErrTransientIO):
		return http.StatusServiceUnavailable, CodeTransientIO
	default:
		return http.StatusInternalServerError, CodeInternalError
	}
}

// WriteError writes err as a JSON error body. Context from a *common.Error
// is copied into the body.
func WriteError(w http.ResponseWriter, err error) {
	status, code := statusOf(err)
	detail := errorDetail{Code: code, Message: err.Error()}
	if status == http.StatusInternalServerError {
		detail.Message = "internal error"
	}

	var ce *common.Error
	if errors.As(err, &ce) {
		detail.DocumentID = ce.DocumentID
		detail.UserID = ce.UserID
		detail.Status = ce.Status
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorBody{Error: detail})
}
