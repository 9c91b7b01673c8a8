package store

import (
	_ "embed"
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed queries/deadletter/upsert.sql
var upsertDeadLetterQuery string

// DeadLetterStore is the terminal sink for delivery tasks that exhausted
// their retry budget or failed non-retryably.
type DeadLetterStore struct {
	pool *pgxpool.Pool
}

// NewDeadLetterStore wraps pool in a DeadLetterStore.
func NewDeadLetterStore(pool *pgxpool.Pool) *DeadLetterStore {
	return &DeadLetterStore{pool: pool}
}

// Upsert writes or overwrites a dead-letter record, inside the caller's
// lease transaction (spec.md §4.5).
func (s *DeadLetterStore) Upsert(ctx context.Context, tx pgx.Tx, rec DeadLetterRecord) error {
	_, err := tx.Exec(ctx, upsertDeadLetterQuery,
		rec.NewsletterIssueID, rec.SubscriberEmail, rec.AttemptCount, rec.LastError, rec.FailedAt)
	if err != nil {
		return fmt.Errorf("store: Upsert dead letter: %w", err)
	}
	return nil
}
