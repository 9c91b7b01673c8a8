package domain

import (
	"strings"
	"testing"

	apperrors "github.com/GOVSEteam/go-newsletter-delivery/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIdempotencyKey(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expectError bool
	}{
		{"single character", "a", false},
		{"typical uuid-ish key", "f47ac10b-58cc-4372-a567-0e02b2c3d479", false},
		{"exactly 50 characters", strings.Repeat("a", 50), false},
		{"empty string rejected", "", true},
		{"51 characters rejected", strings.Repeat("a", 51), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, err := ParseIdempotencyKey(tt.input)
			if tt.expectError {
				require.Error(t, err)
				assert.True(t, apperrors.IsValidation(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.input, key.String())
		})
	}
}
