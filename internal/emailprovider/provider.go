// Package emailprovider is the thin transactional-email client the
// delivery worker calls once per task. Any non-2xx response or network
// error is treated as retryable by the caller (internal/worker).
package emailprovider

import "context"

// SendRequest is the wire shape of one outbound email, matching the
// provider contract in spec.md §6: {from, to, subject, html_body, text_body}.
type SendRequest struct {
	From     string
	To       string
	Subject  string
	HTMLBody string
	TextBody string
}

// Provider sends a single transactional email.
type Provider interface {
	Send(ctx context.Context, req SendRequest) error
}
