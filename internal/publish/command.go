// Package publish implements the admin publish operation: recording a
// newsletter issue and fanning out one delivery task per confirmed
// subscriber, atomically with the idempotency reservation.
package publish

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/GOVSEteam/go-newsletter-delivery/internal/domain"
	apperrors "github.com/GOVSEteam/go-newsletter-delivery/internal/errors"
	"github.com/GOVSEteam/go-newsletter-delivery/internal/store"
)

// Request is the input to Command.Execute.
type Request struct {
	UserID         string
	IdempotencyKey string
	Title          string
	TextContent    string
	HTMLContent    string
}

// Result is the response the caller must relay to the client, saved
// verbatim in the idempotency store for replay on duplicate submissions.
type Result struct {
	StatusCode int
	Headers    []store.HeaderPair
	Body       []byte
}

// IdempotencyRepo is the subset of store.IdempotencyStore the command needs.
type IdempotencyRepo interface {
	TryBegin(ctx context.Context, userID, key string) (store.Outcome, error)
	SaveResponse(ctx context.Context, tx pgx.Tx, userID, key string, resp store.SavedResponse) error
}

// IssueRepo is the subset of store.IssueStore the command needs.
type IssueRepo interface {
	Insert(ctx context.Context, tx pgx.Tx, issue store.NewsletterIssue) error
}

// QueueRepo is the subset of store.QueueStore the command needs.
type QueueRepo interface {
	EnqueueConfirmedSubscribers(ctx context.Context, tx pgx.Tx, issueID string) error
}

// Command executes the publish protocol from spec.md §4.3.
type Command struct {
	idempotency IdempotencyRepo
	issues      IssueRepo
	queue       QueueRepo
}

// NewCommand builds a Command.
func NewCommand(idempotency IdempotencyRepo, issues IssueRepo, queue QueueRepo) *Command {
	return &Command{idempotency: idempotency, issues: issues, queue: queue}
}

// buildResponse is supplied by the caller (the HTTP handler) to build the
// 303 redirect (or whatever response shape it uses) once the command knows
// it is about to commit. Kept as a callback so this package stays
// transport-agnostic.
type buildResponse func() Result

// Execute runs the six-step publish protocol. If a saved response already
// exists for (req.UserID, req.IdempotencyKey), build is never called and the
// saved response is returned unchanged.
func (c *Command) Execute(ctx context.Context, req Request, build buildResponse) (Result, error) {
	outcome, err := c.idempotency.TryBegin(ctx, req.UserID, req.IdempotencyKey)
	if err != nil {
		return Result{}, fmt.Errorf("publish: TryBegin: %w", err)
	}

	if outcome.Saved != nil {
		return Result{
			StatusCode: outcome.Saved.StatusCode,
			Headers:    outcome.Saved.Headers,
			Body:       outcome.Saved.Body,
		}, nil
	}

	tx := outcome.Tx
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback(ctx)
		}
	}()

	issue := store.NewsletterIssue{
		ID:          uuid.NewString(),
		Title:       req.Title,
		TextContent: req.TextContent,
		HTMLContent: req.HTMLContent,
		PublishedAt: time.Now().UTC(),
	}
	if err := c.issues.Insert(ctx, tx, issue); err != nil {
		return Result{}, fmt.Errorf("publish: inserting newsletter issue: %w", err)
	}

	if err := c.queue.EnqueueConfirmedSubscribers(ctx, tx, issue.ID); err != nil {
		return Result{}, fmt.Errorf("publish: enqueueing delivery tasks: %w", err)
	}

	result := build()

	if err := c.idempotency.SaveResponse(ctx, tx, req.UserID, req.IdempotencyKey, toStoreResponse(result)); err != nil {
		return Result{}, fmt.Errorf("publish: saving response: %w", err)
	}
	committed = true

	return result, nil
}

func toStoreResponse(r Result) store.SavedResponse {
	return store.SavedResponse{StatusCode: r.StatusCode, Headers: r.Headers, Body: r.Body}
}

// ValidateIdempotencyKeyShape checks the idempotency key's shape before any
// database round trip, per spec.md §7 error kind 1.
func ValidateIdempotencyKeyShape(key string) error {
	_, err := domain.ParseIdempotencyKey(key)
	return err
}

// ValidateRequestFields checks that title, text, and html are all present
// before any database round trip, per spec.md §8 scenario 3. A form value
// can't distinguish an absent field from an empty one the way the
// original's typed form extraction does, so both are rejected here.
func ValidateRequestFields(req Request) error {
	if strings.TrimSpace(req.Title) == "" {
		return fmt.Errorf("publish: %w: title is required", apperrors.ErrValidation)
	}
	if strings.TrimSpace(req.TextContent) == "" {
		return fmt.Errorf("publish: %w: text content is required", apperrors.ErrValidation)
	}
	if strings.TrimSpace(req.HTMLContent) == "" {
		return fmt.Errorf("publish: %w: html content is required", apperrors.ErrValidation)
	}
	return nil
}
