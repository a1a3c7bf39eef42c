package utils

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid", E(CodeInvalidArgument, "op", "bad", nil), http.StatusBadRequest},
		{"unauthorized", E(CodeUnauthorized, "op", "no", nil), http.StatusUnauthorized},
		{"forbidden", E(CodeForbidden, "op", "no", nil), http.StatusForbidden},
		{"not found", E(CodeNotFound, "op", "gone", nil), http.StatusNotFound},
		{"conflict", E(CodeConflict, "op", "dup", nil), http.StatusConflict},
		{"rate limited", E(CodeTooManyRequests, "op", "slow down", nil), http.StatusTooManyRequests},
		{"internal", E(CodeInternal, "op", "boom", nil), http.StatusInternalServerError},
		{"wrapped app error", fmt.Errorf("ctx: %w", E(CodeNotFound, "op", "gone", nil)), http.StatusNotFound},
		{"bare sentinel", fmt.Errorf("x: %w", ErrNotFound), http.StatusNotFound},
		{"plain", errors.New("plain"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestInvalid(t *testing.T) {
	err := Invalid("ContactService.Submit", map[string]string{
		"name":    "name must be at least 2 characters long",
		"message": "message must be at least 10 characters long",
	})

	var ae *AppError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, CodeInvalidArgument, ae.Code)
	assert.Len(t, ae.Fields, 2)
	assert.Equal(t, "message must be at least 10 characters long; name must be at least 2 characters long", ae.Message)
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := E(CodeInternal, "Storage.Save", "failed to write", cause)

	assert.ErrorIs(t, err, cause)
	assert.True(t, IsCode(err, CodeInternal))
	assert.False(t, IsCode(err, CodeNotFound))
	assert.Equal(t, "Storage.Save: failed to write: disk full", err.Error())
}
