package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dmitrijs2005/gophdocs/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusOf(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", common.NewError(common.ErrValidation, "op", nil), http.StatusBadRequest, CodeValidationError},
		{"not found", common.NewError(common.ErrNotFound, "op", nil), http.StatusNotFound, CodeNotFound},
		{"unauthorized", common.NewError(common.ErrUnauthorized, "op", nil), http.StatusForbidden, CodeForbidden},
		{"invalid state", common.NewError(common.ErrInvalidState, "op", nil), http.StatusConflict, CodeInvalidState},
		{"transient", common.NewError(common.ErrTransientIO, "op", errors.New("db down")), http.StatusServiceUnavailable, CodeTransientIO},
		{"invalid token", fmt.Errorf("%w: bad signature", common.ErrInvalidToken), http.StatusUnauthorized, CodeUnauthorized},
		{"expired token", common.ErrTokenExpired, http.StatusUnauthorized, CodeUnauthorized},
		{"unclassified", errors.New("boom"), http.StatusInternalServerError, CodeInternalError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, code := statusOf(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, code)
		})
	}
}

func TestWriteError_CarriesContext(t *testing.T) {
	rec := httptest.NewRecorder()
	err := common.NewError(common.ErrInvalidState, "documents.MoveToTrash", nil).
		WithDocument("d1").WithUser("u1").WithStatus("TRASHED")

	WriteError(rec, err)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, errorDetail{
		Code:       CodeInvalidState,
		Message:    err.Error(),
		DocumentID: "d1",
		UserID:     "u1",
		Status:     "TRASHED",
	}, body.Error)
}

func TestWriteError_HidesInternalDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, errors.New("pq: password authentication failed"))

	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, CodeInternalError, body.Error.Code)
	assert.Equal(t, "internal error", body.Error.Message)
}
