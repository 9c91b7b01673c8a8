package store

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	apperrors "github.com/GOVSEteam/go-newsletter-delivery/internal/errors"
)

//go:embed queries/subscription/insert.sql
var insertSubscriberQuery string

//go:embed queries/subscription/get_by_email.sql
var getSubscriberByEmailQuery string

//go:embed queries/subscription/get_by_id.sql
var getSubscriberByIDQuery string

//go:embed queries/subscription/confirm.sql
var confirmSubscriberQuery string

//go:embed queries/token/insert.sql
var insertTokenQuery string

//go:embed queries/token/get_subscriber_id.sql
var getSubscriberIDByTokenQuery string

// SubscriptionStore persists subscribers and their confirmation tokens.
type SubscriptionStore struct {
	pool *pgxpool.Pool
}

// NewSubscriptionStore wraps pool in a SubscriptionStore.
func NewSubscriptionStore(pool *pgxpool.Pool) *SubscriptionStore {
	return &SubscriptionStore{pool: pool}
}

func scanSubscriber(row pgx.Row) (Subscriber, error) {
	var s Subscriber
	err := row.Scan(&s.ID, &s.Email, &s.Name, &s.SubscribedAt, &s.Status)
	return s, err
}

// GetByEmail looks up a subscriber by its unique email address.
func (s *SubscriptionStore) GetByEmail(ctx context.Context, email string) (Subscriber, error) {
	sub, err := scanSubscriber(s.pool.QueryRow(ctx, getSubscriberByEmailQuery, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Subscriber{}, apperrors.ErrSubscriberNotFound
		}
		return Subscriber{}, fmt.Errorf("store: GetByEmail: %w", err)
	}
	return sub, nil
}

// GetByID looks up a subscriber by its primary key, within tx.
func (s *SubscriptionStore) GetByID(ctx context.Context, tx pgx.Tx, id string) (Subscriber, error) {
	sub, err := scanSubscriber(tx.QueryRow(ctx, getSubscriberByIDQuery, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Subscriber{}, apperrors.ErrSubscriberNotFound
		}
		return Subscriber{}, fmt.Errorf("store: GetByID: %w", err)
	}
	return sub, nil
}

// GetBySubscriptionToken resolves a token to its owning subscriber.
// A dangling token (no matching subscriber row) surfaces as ErrSubscriberNotFound.
func (s *SubscriptionStore) GetBySubscriptionToken(ctx context.Context, token string) (Subscriber, error) {
	var subscriberID string
	err := s.pool.QueryRow(ctx, getSubscriberIDByTokenQuery, token).Scan(&subscriberID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Subscriber{}, fmt.Errorf("store: GetBySubscriptionToken: %w", apperrors.ErrInvalidOrExpiredToken)
		}
		return Subscriber{}, fmt.Errorf("store: GetBySubscriptionToken: %w", err)
	}

	sub, err := scanSubscriber(s.pool.QueryRow(ctx, getSubscriberByIDQuery, subscriberID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// A token pointing at no subscriber is an invariant violation, not a
			// client error: spec.md §4.1 calls this out as an internal failure.
			return Subscriber{}, fmt.Errorf("store: GetBySubscriptionToken: dangling token: %w", apperrors.ErrInternal)
		}
		return Subscriber{}, fmt.Errorf("store: GetBySubscriptionToken: %w", err)
	}
	return sub, nil
}

// CreatePendingSubscriber inserts a new subscriber row with status
// pending_confirmation, inside tx.
func (s *SubscriptionStore) CreatePendingSubscriber(ctx context.Context, tx pgx.Tx, sub Subscriber) (Subscriber, error) {
	created, err := scanSubscriber(tx.QueryRow(ctx, insertSubscriberQuery,
		sub.ID, sub.Email, sub.Name, sub.SubscribedAt, SubscriberStatusPendingConfirmation))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return Subscriber{}, apperrors.WrapConflict(err, "subscriber email")
		}
		return Subscriber{}, fmt.Errorf("store: CreatePendingSubscriber: %w", err)
	}
	return created, nil
}

// InsertToken stores a new confirmation token for subscriberID, inside tx.
// Multiple tokens may coexist per subscriber; all resolve to the same owner.
func (s *SubscriptionStore) InsertToken(ctx context.Context, tx pgx.Tx, token, subscriberID string) error {
	if _, err := tx.Exec(ctx, insertTokenQuery, token, subscriberID); err != nil {
		return fmt.Errorf("store: InsertToken: %w", err)
	}
	return nil
}

// Confirm transitions a pending subscriber to confirmed. It is a no-op
// (zero rows affected) if the subscriber is already confirmed, which the
// caller treats as idempotent success.
func (s *SubscriptionStore) Confirm(ctx context.Context, id string) error {
	if _, err := s.pool.Exec(ctx, confirmSubscriberQuery, id); err != nil {
		return fmt.Errorf("store: Confirm: %w", err)
	}
	return nil
}

// BeginTx starts a transaction on the pool for multi-statement subscribe
// operations.
func (s *SubscriptionStore) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("store: BeginTx: %w", err)
	}
	return tx, nil
}
