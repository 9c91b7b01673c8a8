package domain

import (
	"fmt"
	"strings"

	apperrors "github.com/GOVSEteam/go-newsletter-delivery/internal/errors"
)

const (
	subscriberNameMinLength = 1
	subscriberNameMaxLength = 256
)

// forbiddenNameChars mirrors the character set the publish/subscribe
// protocol rejects outright, matching the grapheme-class ban used upstream.
const forbiddenNameChars = `/()"<>\{}`

// SubscriberName is a validated, trimmed subscriber display name.
type SubscriberName struct {
	value string
}

// ParseSubscriberName validates s and returns a SubscriberName.
func ParseSubscriberName(s string) (SubscriberName, error) {
	trimmed := strings.TrimSpace(s)

	length := len([]rune(trimmed))
	if length < subscriberNameMinLength || length > subscriberNameMaxLength {
		return SubscriberName{}, fmt.Errorf(
			"domain: %w: name must be %d-%d characters, got %d",
			apperrors.ErrNameEmpty, subscriberNameMinLength, subscriberNameMaxLength, length,
		)
	}
	if strings.TrimSpace(trimmed) == "" {
		return SubscriberName{}, fmt.Errorf("domain: %w: name cannot be empty", apperrors.ErrNameEmpty)
	}
	if strings.ContainsAny(trimmed, forbiddenNameChars) {
		return SubscriberName{}, fmt.Errorf(
			"domain: %w: name contains a forbidden character", apperrors.ErrValidation,
		)
	}

	return SubscriberName{value: trimmed}, nil
}

// String returns the validated name.
func (n SubscriberName) String() string {
	return n.value
}
