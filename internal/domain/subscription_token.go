package domain

import (
	"crypto/rand"
	"fmt"
	"math/big"

	apperrors "github.com/GOVSEteam/go-newsletter-delivery/internal/errors"
)

const (
	subscriptionTokenLength   = 25
	subscriptionTokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

// SubscriptionToken is an opaque, 25-character alphanumeric token used to
// confirm a pending subscription.
type SubscriptionToken struct {
	value string
}

// NewSubscriptionToken generates a fresh, cryptographically random token.
func NewSubscriptionToken() (SubscriptionToken, error) {
	buf := make([]byte, subscriptionTokenLength)
	alphabetSize := big.NewInt(int64(len(subscriptionTokenAlphabet)))

	for i := range buf {
		n, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			return SubscriptionToken{}, fmt.Errorf("domain: generating subscription token: %w", err)
		}
		buf[i] = subscriptionTokenAlphabet[n.Int64()]
	}

	return SubscriptionToken{value: string(buf)}, nil
}

// ParseSubscriptionToken validates s as a well-formed subscription token.
// It does not check the token against the store — that is the caller's job.
func ParseSubscriptionToken(s string) (SubscriptionToken, error) {
	if len(s) != subscriptionTokenLength {
		return SubscriptionToken{}, fmt.Errorf(
			"domain: %w: subscription token must be exactly %d characters, got %d",
			apperrors.ErrTokenMalformed, subscriptionTokenLength, len(s),
		)
	}
	for _, c := range s {
		if !isASCIIAlphanumeric(c) {
			return SubscriptionToken{}, fmt.Errorf(
				"domain: %w: subscription token must contain only alphanumeric characters",
				apperrors.ErrTokenMalformed,
			)
		}
	}
	return SubscriptionToken{value: s}, nil
}

func isASCIIAlphanumeric(c rune) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// String returns the token value.
func (t SubscriptionToken) String() string {
	return t.value
}
