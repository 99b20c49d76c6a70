package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_IsMatchesKindAndCause(t *testing.T) {
	cause := errors.New("disk on fire")
	err := NewError(ErrTransientIO, "get document", cause).WithDocument("d1")

	assert.ErrorIs(t, err, ErrTransientIO)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "get document: transient io error (document d1): disk on fire", err.Error())
}

func TestError_AsExtractsContext(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w",
		NewError(ErrInvalidState, "trash", nil).WithDocument("d1").WithUser("u1").WithStatus("TRASHED"))

	var e *Error
	require.True(t, errors.As(wrapped, &e))
	assert.Equal(t, "d1", e.DocumentID)
	assert.Equal(t, "u1", e.UserID)
	assert.Equal(t, "TRASHED", e.Status)
	assert.ErrorIs(t, wrapped, ErrInvalidState)
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"nil", nil, nil},
		{"plain", errors.New("x"), nil},
		{"validation", NewError(ErrValidation, "op", nil), ErrValidation},
		{"bare sentinel", ErrNotFound, ErrNotFound},
		{"wrapped sentinel", fmt.Errorf("db: %w", ErrNotFound), ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestClassify(t *testing.T) {
	require.NoError(t, Classify("op", nil))

	nf := NewError(ErrNotFound, "get", nil)
	assert.Same(t, nf, Classify("op", nf))

	err := Classify("list", errors.New("connection refused"))
	assert.ErrorIs(t, err, ErrTransientIO)
	assert.Contains(t, err.Error(), "connection refused")
}
