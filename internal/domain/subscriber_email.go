package domain

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"

	apperrors "github.com/GOVSEteam/go-newsletter-delivery/internal/errors"
)

// subscriberEmailRegex mirrors the teacher's subscriber email shape check,
// layered on top of net/mail.ParseAddress rather than replacing it.
var subscriberEmailRegex = regexp.MustCompile(`^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,4}$`)

// SubscriberEmail is a validated, normalized (lowercased, trimmed) email
// address, parsed per RFC 5321.
type SubscriberEmail struct {
	value string
}

// ParseSubscriberEmail validates s and returns a SubscriberEmail.
func ParseSubscriberEmail(s string) (SubscriberEmail, error) {
	normalized := strings.TrimSpace(strings.ToLower(s))
	if normalized == "" {
		return SubscriberEmail{}, fmt.Errorf("domain: %w: email cannot be empty", apperrors.ErrValidation)
	}
	if _, err := mail.ParseAddress(normalized); err != nil || !subscriberEmailRegex.MatchString(normalized) {
		return SubscriberEmail{}, fmt.Errorf("domain: %w '%s'", apperrors.ErrInvalidEmail, s)
	}
	return SubscriberEmail{value: normalized}, nil
}

// String returns the normalized email address.
func (e SubscriberEmail) String() string {
	return e.value
}
