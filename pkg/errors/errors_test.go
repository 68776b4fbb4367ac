package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_WithDetailDoesNotMutateSentinel(t *testing.T) {
	err := ErrNotFound.WithDetail("message", "user not found")

	assert.Equal(t, "user not found", err.Details["message"])
	assert.Empty(t, ErrNotFound.Details)
}

func TestError_Is(t *testing.T) {
	err := fmt.Errorf("lookup: %w", ErrNotFound.WithMessage("user abc not found"))

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrConflict))
	assert.True(t, IsNotFound(err))
	assert.False(t, IsValidation(err))
}

func TestError_Classification(t *testing.T) {
	tests := []struct {
		name      string
		err       *Error
		retryable bool
		fatal     bool
	}{
		{name: "validation", err: ErrValidation, retryable: false, fatal: true},
		{name: "not found", err: ErrNotFound, retryable: false, fatal: true},
		{name: "unavailable", err: ErrServiceUnavailable, retryable: true, fatal: false},
		{name: "internal forced fatal", err: ErrInternal.AsFatal(), retryable: false, fatal: true},
		{name: "validation forced retryable", err: ErrValidation.AsRetryable(), retryable: true, fatal: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.retryable, tt.err.IsRetryable())
			assert.Equal(t, tt.fatal, tt.err.IsFatal())
		})
	}
}

func TestToHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, ToHTTPStatus(ErrNotFound))
	assert.Equal(t, http.StatusServiceUnavailable, ToHTTPStatus(fmt.Errorf("wrap: %w", ErrServiceUnavailable)))
	assert.Equal(t, http.StatusInternalServerError, ToHTTPStatus(errors.New("plain")))
}

func TestToErrorResponse(t *testing.T) {
	resp := ToErrorResponse(ErrServiceUnavailable.
		WithMessage("message stored but not published").
		WithDetail("message_id", "m-1"))

	assert.Equal(t, "message stored but not published", resp.Error)
	assert.Equal(t, "SERVICE_UNAVAILABLE", resp.ErrorCode)
	require.NotNil(t, resp.Details)
	assert.Equal(t, "m-1", resp.Details["message_id"])
	assert.NotContains(t, resp.Details, "message")

	plain := ToErrorResponse(errors.New("boom"))
	assert.Equal(t, "INTERNAL_ERROR", plain.ErrorCode)
	assert.Nil(t, plain.Details)
}

func TestRecoverPanic(t *testing.T) {
	assert.Nil(t, RecoverPanic(nil))

	err := RecoverPanic("kaboom")
	require.Error(t, err)

	var appErr *Error
	require.True(t, errors.As(err, &appErr))
	assert.True(t, appErr.IsFatal())
	assert.Equal(t, true, appErr.Details["panic"])
	assert.Contains(t, err.Error(), "kaboom")
}
