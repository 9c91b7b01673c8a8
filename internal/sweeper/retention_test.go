package sweeper

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockIdempotencyRepo struct {
	mock.Mock
}

func (m *mockIdempotencyRepo) SweepExpired(ctx context.Context, retentionPeriod time.Duration) (int64, error) {
	args := m.Called(ctx, retentionPeriod)
	return args.Get(0).(int64), args.Error(1)
}

func TestSweeper_Run_StopsOnContextCancel(t *testing.T) {
	repo := &mockIdempotencyRepo{}
	repo.On("SweepExpired", mock.Anything, 30*24*time.Hour).Return(int64(3), nil)

	logger := zap.NewNop().Sugar()
	s := New(repo, logger, 30*24*time.Hour, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)

	repo.AssertCalled(t, "SweepExpired", mock.Anything, 30*24*time.Hour)
}

func TestSweeper_SweepOnce_LogsAndContinuesOnError(t *testing.T) {
	repo := &mockIdempotencyRepo{}
	repo.On("SweepExpired", mock.Anything, 30*24*time.Hour).Return(int64(0), errors.New("database unreachable"))

	logger := zap.NewNop().Sugar()
	s := New(repo, logger, 30*24*time.Hour, time.Hour)

	require.NotPanics(t, func() {
		s.sweepOnce(context.Background())
	})
	repo.AssertExpectations(t)
}
