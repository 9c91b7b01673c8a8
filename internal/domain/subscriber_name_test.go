package domain

import (
	"strings"
	"testing"

	apperrors "github.com/GOVSEteam/go-newsletter-delivery/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSubscriberName(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expectError bool
		expected    string
	}{
		{"simple name", "Ursula Le Guin", false, "Ursula Le Guin"},
		{"trims surrounding whitespace", "  Ursula  ", false, "Ursula"},
		{"single character", "U", false, "U"},
		{"empty string rejected", "", true, ""},
		{"whitespace-only rejected", "   ", true, ""},
		{"too long rejected", strings.Repeat("a", 257), true, ""},
		{"exactly max length accepted", strings.Repeat("a", 256), false, strings.Repeat("a", 256)},
		{"forbidden slash rejected", "Ursula/LeGuin", true, ""},
		{"forbidden angle bracket rejected", "<script>", true, ""},
		{"forbidden quote rejected", `"Ursula"`, true, ""},
		{"forbidden brace rejected", "{Ursula}", true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ParseSubscriberName(tt.input)
			if tt.expectError {
				require.Error(t, err)
				assert.True(t, apperrors.IsValidation(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result.String())
		})
	}
}
