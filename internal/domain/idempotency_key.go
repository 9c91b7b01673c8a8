package domain

import (
	"fmt"

	apperrors "github.com/GOVSEteam/go-newsletter-delivery/internal/errors"
)

const (
	idempotencyKeyMinLength = 1
	idempotencyKeyMaxLength = 50
)

// IdempotencyKey is an opaque, client-supplied string identifying a publish
// request for deduplication purposes.
type IdempotencyKey struct {
	value string
}

// ParseIdempotencyKey validates s and returns an IdempotencyKey. The key is
// taken verbatim (no trimming, no case-folding) since clients are expected
// to echo it back byte-for-byte on retries.
func ParseIdempotencyKey(s string) (IdempotencyKey, error) {
	length := len(s)
	if length < idempotencyKeyMinLength || length > idempotencyKeyMaxLength {
		return IdempotencyKey{}, fmt.Errorf(
			"domain: %w: got %d characters", apperrors.ErrIdempotencyKeyBad, length,
		)
	}
	return IdempotencyKey{value: s}, nil
}

// String returns the key value.
func (k IdempotencyKey) String() string {
	return k.value
}
