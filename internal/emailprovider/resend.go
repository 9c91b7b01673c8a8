package emailprovider

import (
	"context"
	"errors"
	"fmt"

	"github.com/resend/resend-go/v2"
)

// ResendProvider sends email through the Resend API, grounded in the
// teacher's ResendService.
type ResendProvider struct {
	client *resend.Client
}

// NewResendProvider builds a ResendProvider from an API key.
func NewResendProvider(apiKey string) (*ResendProvider, error) {
	if apiKey == "" {
		return nil, errors.New("emailprovider: resend API key is required")
	}
	return &ResendProvider{client: resend.NewClient(apiKey)}, nil
}

// Send dispatches req through Resend. Any error from the client, or a
// response with no assigned message ID, is treated as retryable by the caller.
func (p *ResendProvider) Send(ctx context.Context, req SendRequest) error {
	params := &resend.SendEmailRequest{
		From:    req.From,
		To:      []string{req.To},
		Subject: req.Subject,
		Html:    req.HTMLBody,
		Text:    req.TextBody,
	}

	sent, err := p.client.Emails.Send(params)
	if err != nil {
		return fmt.Errorf("emailprovider: resend send: %w", err)
	}
	if sent.Id == "" {
		return errors.New("emailprovider: resend send: no message id returned")
	}
	return nil
}
