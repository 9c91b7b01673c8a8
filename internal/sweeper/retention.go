// Package sweeper runs the periodic retention sweep over idempotency
// records.
package sweeper

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// IdempotencyRepo is the subset of store.IdempotencyStore the sweeper needs.
type IdempotencyRepo interface {
	SweepExpired(ctx context.Context, retentionPeriod time.Duration) (int64, error)
}

// Sweeper periodically deletes expired idempotency rows.
type Sweeper struct {
	repo            IdempotencyRepo
	logger          *zap.SugaredLogger
	retentionPeriod time.Duration
	interval        time.Duration
}

// New builds a Sweeper.
func New(repo IdempotencyRepo, logger *zap.SugaredLogger, retentionPeriod, interval time.Duration) *Sweeper {
	return &Sweeper{repo: repo, logger: logger, retentionPeriod: retentionPeriod, interval: interval}
}

// Run executes the sweep once per interval until ctx is canceled. The first
// sweep runs immediately rather than waiting a full interval.
func (s *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.sweepOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.sweepOnce(ctx)
		}
	}
}

// sweepOnce runs a single sweep, logging the outcome. A failed sweep is
// logged and the loop continues (spec.md §4.6).
func (s *Sweeper) sweepOnce(ctx context.Context) {
	deleted, err := s.repo.SweepExpired(ctx, s.retentionPeriod)
	if err != nil {
		s.logger.Errorw("sweeper: retention sweep failed", "error", err)
		return
	}
	s.logger.Infow("sweeper: retention sweep completed", "deleted_rows", deleted)
}
