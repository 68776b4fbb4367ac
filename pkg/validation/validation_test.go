package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "flock/pkg/errors"
)

type sample struct {
	UserID  string `json:"userId" validate:"required,uuid"`
	Content string `json:"content" validate:"required,notblank,max=5"`
}

func TestStruct(t *testing.T) {
	tests := []struct {
		name    string
		input   sample
		field   string
		message string
	}{
		{name: "valid", input: sample{UserID: "8d2e1f7c-1c1e-4d4a-9a57-0d2a3c1b9e11", Content: "héllo"}},
		{name: "missing user", input: sample{Content: "x"}, field: "userId", message: "userId is required"},
		{name: "bad uuid", input: sample{UserID: "nope", Content: "x"}, field: "userId", message: "userId must be a valid UUID"},
		{name: "blank content", input: sample{UserID: "8d2e1f7c-1c1e-4d4a-9a57-0d2a3c1b9e11", Content: "   "}, field: "content", message: "content must not be blank"},
		{name: "too long", input: sample{UserID: "8d2e1f7c-1c1e-4d4a-9a57-0d2a3c1b9e11", Content: strings.Repeat("a", 6)}, field: "content", message: "content must be at most 5 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(tt.input)
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, pkgerrors.IsValidation(err))

			var appErr *pkgerrors.Error
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tt.field, appErr.Details["field"])
			assert.Equal(t, tt.message, pkgerrors.ToErrorResponse(err).Error)
		})
	}
}

func TestUUID(t *testing.T) {
	assert.True(t, UUID("8d2e1f7c-1c1e-4d4a-9a57-0d2a3c1b9e11"))
	assert.False(t, UUID("not-a-uuid"))
	assert.False(t, UUID(""))
}
