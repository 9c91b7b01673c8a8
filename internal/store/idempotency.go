package store

import (
	_ "embed"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	apperrors "github.com/GOVSEteam/go-newsletter-delivery/internal/errors"
)

//go:embed queries/idempotency/try_begin.sql
var tryBeginQuery string

//go:embed queries/idempotency/get_saved.sql
var getSavedResponseQuery string

//go:embed queries/idempotency/save_response.sql
var saveResponseQuery string

//go:embed queries/idempotency/sweep_expired.sql
var sweepExpiredQuery string

// IdempotencyStore maps a request fingerprint (user_id, idempotency_key) to
// a saved HTTP response, coordinating single-flight execution across a
// distributed fleet via the database.
type IdempotencyStore struct {
	pool *pgxpool.Pool
}

// NewIdempotencyStore wraps pool in an IdempotencyStore.
func NewIdempotencyStore(pool *pgxpool.Pool) *IdempotencyStore {
	return &IdempotencyStore{pool: pool}
}

// Outcome is the result of TryBegin.
type Outcome struct {
	// Saved is set when a completed record already existed.
	Saved *SavedResponse
	// Tx is set when the caller won the reservation race and must drive the
	// transaction to completion via SaveResponse (commit) or roll it back.
	Tx pgx.Tx
}

// TryBegin attempts to reserve (userID, key). See spec.md §4.2 and §5 for
// the single-flight contract.
func (s *IdempotencyStore) TryBegin(ctx context.Context, userID, key string) (Outcome, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return Outcome{}, fmt.Errorf("store: TryBegin: begin: %w", err)
	}

	cmdTag, err := tx.Exec(ctx, tryBeginQuery, userID, key, time.Now().UTC())
	if err != nil {
		_ = tx.Rollback(ctx)
		return Outcome{}, fmt.Errorf("store: TryBegin: reserve: %w", err)
	}

	if cmdTag.RowsAffected() == 1 {
		// We won the race; the caller owns tx from here.
		return Outcome{Tx: tx}, nil
	}

	// A reservation already exists. Close this transaction and read the
	// existing row outside of it.
	_ = tx.Rollback(ctx)

	saved, err := s.getSaved(ctx, userID, key)
	if err != nil {
		if errors.Is(err, errNoSavedResponse) {
			// Reservation exists but the response columns are still NULL: a
			// concurrent request is mid-flight. Resolved per DESIGN.md Open
			// Question (a): surface as a typed error the handler maps to 500.
			return Outcome{}, apperrors.ErrProcessingInFlight
		}
		return Outcome{}, fmt.Errorf("store: TryBegin: reading existing reservation: %w", err)
	}

	return Outcome{Saved: &saved}, nil
}

var errNoSavedResponse = errors.New("store: idempotency record has no saved response yet")

func (s *IdempotencyStore) getSaved(ctx context.Context, userID, key string) (SavedResponse, error) {
	var statusCode *int
	var headersJSON []byte
	var body []byte

	err := s.pool.QueryRow(ctx, getSavedResponseQuery, userID, key).Scan(&statusCode, &headersJSON, &body)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return SavedResponse{}, fmt.Errorf("store: getSaved: %w", apperrors.ErrInternal)
		}
		return SavedResponse{}, fmt.Errorf("store: getSaved: %w", err)
	}

	if statusCode == nil {
		return SavedResponse{}, errNoSavedResponse
	}

	var headers []HeaderPair
	if len(headersJSON) > 0 {
		if err := json.Unmarshal(headersJSON, &headers); err != nil {
			return SavedResponse{}, fmt.Errorf("store: getSaved: decoding headers: %w", err)
		}
	}

	return SavedResponse{StatusCode: *statusCode, Headers: headers, Body: body}, nil
}

// SaveResponse writes the final response into the reservation row opened by
// TryBegin and commits tx. The response's header order and any duplicate
// header names are preserved by encoding the pairs as an ordered JSON array
// rather than a map (see DESIGN.md for why a Postgres header_pair[]
// composite column was not used here).
func (s *IdempotencyStore) SaveResponse(ctx context.Context, tx pgx.Tx, userID, key string, resp SavedResponse) error {
	headersJSON, err := json.Marshal(resp.Headers)
	if err != nil {
		return fmt.Errorf("store: SaveResponse: encoding headers: %w", err)
	}

	if _, err := tx.Exec(ctx, saveResponseQuery, userID, key, resp.StatusCode, headersJSON, resp.Body); err != nil {
		return fmt.Errorf("store: SaveResponse: update: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("store: SaveResponse: commit: %w", err)
	}

	return nil
}

// SweepExpired deletes idempotency rows older than retentionPeriod,
// returning the number of rows removed. Completed and in-flight rows are
// deleted alike — see spec.md §4.6.
func (s *IdempotencyStore) SweepExpired(ctx context.Context, retentionPeriod time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-retentionPeriod)
	cmdTag, err := s.pool.Exec(ctx, sweepExpiredQuery, cutoff)
	if err != nil {
		return 0, fmt.Errorf("store: SweepExpired: %w", err)
	}
	return cmdTag.RowsAffected(), nil
}
