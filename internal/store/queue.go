package store

import (
	_ "embed"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed queries/queue/enqueue_confirmed.sql
var enqueueConfirmedQuery string

//go:embed queries/queue/lease_one.sql
var leaseOneQuery string

//go:embed queries/queue/delete.sql
var deleteQueueRowQuery string

//go:embed queries/queue/record_attempt.sql
var recordAttemptQuery string

// QueueStore is the issue delivery queue: a Postgres-backed work queue
// leased with row-level locks.
type QueueStore struct {
	pool *pgxpool.Pool
}

// NewQueueStore wraps pool in a QueueStore.
func NewQueueStore(pool *pgxpool.Pool) *QueueStore {
	return &QueueStore{pool: pool}
}

// EnqueueConfirmedSubscribers inserts one delivery task per currently
// confirmed subscriber, inside tx. Grounded in spec.md §4.3 step 3.
func (s *QueueStore) EnqueueConfirmedSubscribers(ctx context.Context, tx pgx.Tx, issueID string) error {
	if _, err := tx.Exec(ctx, enqueueConfirmedQuery, issueID); err != nil {
		return fmt.Errorf("store: EnqueueConfirmedSubscribers: %w", err)
	}
	return nil
}

// ErrQueueEmpty signals that LeaseOne found no row to lease.
var ErrQueueEmpty = errors.New("store: delivery queue is empty")

// LeaseOne opens a transaction and attempts to lock a single queue row with
// SELECT ... FOR UPDATE SKIP LOCKED. The caller owns the returned
// transaction and must Commit or Rollback it. Returns ErrQueueEmpty (with
// the transaction already rolled back) if no row was available.
func (s *QueueStore) LeaseOne(ctx context.Context) (pgx.Tx, DeliveryTask, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, DeliveryTask{}, fmt.Errorf("store: LeaseOne: begin: %w", err)
	}

	var task DeliveryTask
	err = tx.QueryRow(ctx, leaseOneQuery).Scan(
		&task.NewsletterIssueID, &task.SubscriberEmail, &task.AttemptCount,
		&task.LastAttemptedAt, &task.ErrorMessage,
	)
	if err != nil {
		_ = tx.Rollback(ctx)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, DeliveryTask{}, ErrQueueEmpty
		}
		return nil, DeliveryTask{}, fmt.Errorf("store: LeaseOne: lease query: %w", err)
	}

	return tx, task, nil
}

// Delete removes a delivery task, inside the caller's lease transaction.
func (s *QueueStore) Delete(ctx context.Context, tx pgx.Tx, issueID, email string) error {
	if _, err := tx.Exec(ctx, deleteQueueRowQuery, issueID, email); err != nil {
		return fmt.Errorf("store: Delete queue row: %w", err)
	}
	return nil
}

// RecordAttempt writes retry bookkeeping (attempt_count, last_attempted_at,
// error_message) using a fresh connection from the pool rather than the
// lease transaction — see spec.md §4.4 step 7 and DESIGN.md for why this
// write must not hold the row lock.
func (s *QueueStore) RecordAttempt(ctx context.Context, issueID, email string, attemptCount int, attemptedAt time.Time, errMsg string) error {
	_, err := s.pool.Exec(ctx, recordAttemptQuery, issueID, email, attemptCount, attemptedAt, errMsg)
	if err != nil {
		return fmt.Errorf("store: RecordAttempt: %w", err)
	}
	return nil
}
