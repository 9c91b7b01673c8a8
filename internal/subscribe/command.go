// Package subscribe implements the subscribe command and confirmation flow
// of the double opt-in subscription lifecycle.
package subscribe

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	apperrors "github.com/GOVSEteam/go-newsletter-delivery/internal/errors"
	"github.com/GOVSEteam/go-newsletter-delivery/internal/store"
)

// SubscriptionRepo is the subset of store.SubscriptionStore the command needs.
type SubscriptionRepo interface {
	BeginTx(ctx context.Context) (pgx.Tx, error)
	GetByEmail(ctx context.Context, email string) (store.Subscriber, error)
	GetByID(ctx context.Context, tx pgx.Tx, id string) (store.Subscriber, error)
	CreatePendingSubscriber(ctx context.Context, tx pgx.Tx, sub store.Subscriber) (store.Subscriber, error)
	InsertToken(ctx context.Context, tx pgx.Tx, token, subscriberID string) error
	GetBySubscriptionToken(ctx context.Context, token string) (store.Subscriber, error)
	Confirm(ctx context.Context, id string) error
}

// TokenGenerator produces a fresh subscription token.
type TokenGenerator func() (string, error)

// ConfirmationMailer sends the confirmation (or courtesy) email for a
// subscribe attempt. Transport-agnostic so this package does not depend on
// internal/emailprovider directly.
type ConfirmationMailer interface {
	SendConfirmation(ctx context.Context, email, name, confirmationLink string) error
	SendAlreadySubscribed(ctx context.Context, email, name string) error
}

// Command runs the subscribe and confirm operations.
type Command struct {
	repo       SubscriptionRepo
	mailer     ConfirmationMailer
	newToken   TokenGenerator
	appBaseURL string
}

// NewCommand builds a Command.
func NewCommand(repo SubscriptionRepo, mailer ConfirmationMailer, newToken TokenGenerator, appBaseURL string) *Command {
	return &Command{repo: repo, mailer: mailer, newToken: newToken, appBaseURL: appBaseURL}
}

// Subscribe runs the three-branch subscribe protocol from spec.md §4.1. All
// three branches return nil (never a client-visible error) so the response
// never leaks subscription state, matching the spec's intent that the
// handler always reply 200 OK.
func (c *Command) Subscribe(ctx context.Context, email, name string) error {
	existing, err := c.repo.GetByEmail(ctx, email)
	found := err == nil
	if err != nil && !apperrors.IsNotFound(err) {
		return fmt.Errorf("subscribe: checking existing subscriber: %w", err)
	}

	if found && existing.Status == store.SubscriberStatusConfirmed {
		if mailErr := c.mailer.SendAlreadySubscribed(ctx, email, name); mailErr != nil {
			return fmt.Errorf("subscribe: sending already-subscribed email: %w", mailErr)
		}
		return nil
	}

	tx, err := c.repo.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback(ctx)
		}
	}()

	subscriberID := existing.ID
	if !found {
		created, createErr := c.repo.CreatePendingSubscriber(ctx, tx, store.Subscriber{
			ID:           uuid.NewString(),
			Email:        email,
			Name:         name,
			SubscribedAt: time.Now().UTC(),
		})
		if createErr != nil {
			return fmt.Errorf("subscribe: creating subscriber: %w", createErr)
		}
		subscriberID = created.ID
	}

	token, err := c.newToken()
	if err != nil {
		return fmt.Errorf("subscribe: generating token: %w", err)
	}
	if err := c.repo.InsertToken(ctx, tx, token, subscriberID); err != nil {
		return fmt.Errorf("subscribe: storing token: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("subscribe: committing: %w", err)
	}
	committed = true

	confirmationLink := fmt.Sprintf("%s/subscriptions/confirm?subscription_token=%s", c.appBaseURL, token)
	if err := c.mailer.SendConfirmation(ctx, email, name, confirmationLink); err != nil {
		return fmt.Errorf("subscribe: sending confirmation email: %w", err)
	}

	return nil
}

// Confirm runs the confirmation endpoint's protocol: syntactic validation
// has already happened in the caller (spec.md §4.1 — malformed tokens
// return 400 without a database round trip); this resolves a well-formed
// token to a subscriber and transitions it to confirmed, idempotently.
func (c *Command) Confirm(ctx context.Context, token string) error {
	sub, err := c.repo.GetBySubscriptionToken(ctx, token)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidOrExpiredToken) {
			return fmt.Errorf("subscribe: confirm: %w", apperrors.ErrBadRequest)
		}
		return fmt.Errorf("subscribe: confirm: %w", err)
	}

	if sub.Status == store.SubscriberStatusConfirmed {
		return nil
	}

	if err := c.repo.Confirm(ctx, sub.ID); err != nil {
		return fmt.Errorf("subscribe: confirm: %w", err)
	}
	return nil
}
