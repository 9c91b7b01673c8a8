package subscribe

import (
	"context"
	"fmt"

	"github.com/GOVSEteam/go-newsletter-delivery/internal/emailprovider"
)

// EmailMailer implements ConfirmationMailer over an emailprovider.Provider.
type EmailMailer struct {
	provider emailprovider.Provider
	from     string
}

// NewEmailMailer builds an EmailMailer.
func NewEmailMailer(provider emailprovider.Provider, from string) *EmailMailer {
	return &EmailMailer{provider: provider, from: from}
}

func (m *EmailMailer) SendConfirmation(ctx context.Context, email, name, confirmationLink string) error {
	text := fmt.Sprintf(
		"Hi %s,\n\nWelcome! Click the link below to confirm your subscription:\n%s\n",
		name, confirmationLink,
	)
	html := fmt.Sprintf(
		`<p>Hi %s,</p><p>Welcome! Click <a href="%s">here</a> to confirm your subscription.</p>`,
		name, confirmationLink,
	)
	return m.provider.Send(ctx, emailprovider.SendRequest{
		From:     m.from,
		To:       email,
		Subject:  "Confirm your subscription",
		HTMLBody: html,
		TextBody: text,
	})
}

func (m *EmailMailer) SendAlreadySubscribed(ctx context.Context, email, name string) error {
	text := fmt.Sprintf("Hi %s,\n\nYou're already subscribed. No action needed.\n", name)
	html := fmt.Sprintf("<p>Hi %s,</p><p>You're already subscribed. No action needed.</p>", name)
	return m.provider.Send(ctx, emailprovider.SendRequest{
		From:     m.from,
		To:       email,
		Subject:  "You're already subscribed",
		HTMLBody: html,
		TextBody: text,
	})
}
