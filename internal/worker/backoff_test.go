package worker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRequiredWait(t *testing.T) {
	tests := []struct {
		name           string
		backoffMinutes int
		attemptCount   int
		expected       time.Duration
	}{
		{"zero attempts is base interval", 5, 0, 5 * time.Minute},
		{"one attempt doubles", 5, 1, 10 * time.Minute},
		{"two attempts quadruples", 5, 2, 20 * time.Minute},
		{"five attempts hits the cap", 5, 5, 5 * 32 * time.Minute},
		{"six attempts stays at the cap", 5, 6, 5 * 32 * time.Minute},
		{"large attempt counts do not overflow or exceed the cap", 5, 100, 5 * 32 * time.Minute},
		{"different base scales linearly", 1, 3, 8 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := requiredWait(tt.backoffMinutes, tt.attemptCount)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestRequiredWait_Monotonic(t *testing.T) {
	var previous time.Duration
	for attempt := 0; attempt <= 10; attempt++ {
		wait := requiredWait(5, attempt)
		assert.GreaterOrEqual(t, wait, previous, "backoff must never decrease as attempts grow")
		previous = wait
	}
}
