// Package worker implements the long-running delivery loop: leasing queue
// rows with row-level locks, gating retries behind bounded exponential
// backoff, calling the email provider, and promoting exhausted tasks to
// the dead-letter queue.
package worker

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/GOVSEteam/go-newsletter-delivery/internal/domain"
	"github.com/GOVSEteam/go-newsletter-delivery/internal/emailprovider"
	"github.com/GOVSEteam/go-newsletter-delivery/internal/store"
)

// QueueRepo is the subset of store.QueueStore the worker needs.
type QueueRepo interface {
	LeaseOne(ctx context.Context) (pgx.Tx, store.DeliveryTask, error)
	Delete(ctx context.Context, tx pgx.Tx, issueID, email string) error
	RecordAttempt(ctx context.Context, issueID, email string, attemptCount int, attemptedAt time.Time, errMsg string) error
}

// IssueRepo is the subset of store.IssueStore the worker needs.
type IssueRepo interface {
	GetByID(ctx context.Context, id string) (store.NewsletterIssue, error)
}

// DeadLetterRepo is the subset of store.DeadLetterStore the worker needs.
type DeadLetterRepo interface {
	Upsert(ctx context.Context, tx pgx.Tx, rec store.DeadLetterRecord) error
}

// Config tunes the worker loop.
type Config struct {
	ConcurrentTasks     int
	MaxRetryAttempts    int
	RetryBackoffMinutes int
	EmptyQueueSleep     time.Duration
	ErrorSleep          time.Duration
	EmailFrom           string
}

// Worker drains the issue delivery queue, one batch at a time.
type Worker struct {
	queue      QueueRepo
	issues     IssueRepo
	deadLetter DeadLetterRepo
	provider   emailprovider.Provider
	logger     *zap.SugaredLogger
	cfg        Config
}

// New builds a Worker.
func New(queue QueueRepo, issues IssueRepo, deadLetter DeadLetterRepo, provider emailprovider.Provider, logger *zap.SugaredLogger, cfg Config) *Worker {
	return &Worker{queue: queue, issues: issues, deadLetter: deadLetter, provider: provider, logger: logger, cfg: cfg}
}

// outcome is the result of one tryExecuteBatch call, per spec.md §4.4's
// outer loop.
type outcome int

const (
	outcomeTaskCompleted outcome = iota
	outcomeEmptyQueue
	outcomeError
)

// Run drives the outer loop forever, until ctx is canceled.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		switch w.tryExecuteBatch(ctx) {
		case outcomeEmptyQueue:
			if !sleepOrDone(ctx, w.cfg.EmptyQueueSleep) {
				return ctx.Err()
			}
		case outcomeError:
			if !sleepOrDone(ctx, w.cfg.ErrorSleep) {
				return ctx.Err()
			}
		case outcomeTaskCompleted:
			// continue immediately
		}
	}
}

func sleepOrDone(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// tryExecuteBatch leases up to ConcurrentTasks rows and dispatches them
// concurrently, one lease transaction per row.
func (w *Worker) tryExecuteBatch(ctx context.Context) outcome {
	type leased struct {
		tx   pgx.Tx
		task store.DeliveryTask
	}

	batch := make([]leased, 0, w.cfg.ConcurrentTasks)
	for i := 0; i < w.cfg.ConcurrentTasks; i++ {
		tx, task, err := w.queue.LeaseOne(ctx)
		if err != nil {
			if err == store.ErrQueueEmpty {
				break
			}
			w.logger.Errorw("worker: lease failed", "error", err)
			// Roll back whatever we already leased before reporting the error,
			// since we are abandoning this batch.
			for _, l := range batch {
				_ = l.tx.Rollback(ctx)
			}
			return outcomeError
		}
		batch = append(batch, leased{tx: tx, task: task})
	}

	if len(batch) == 0 {
		return outcomeEmptyQueue
	}

	var workDone int32
	var wg sync.WaitGroup
	wg.Add(len(batch))
	for _, l := range batch {
		l := l
		go func() {
			defer wg.Done()
			if w.executeTask(ctx, l.tx, l.task) {
				atomic.AddInt32(&workDone, 1)
			}
		}()
	}
	wg.Wait()

	if workDone == 0 {
		// Every leased row was gated behind its own backoff window: sleep
		// like an empty queue instead of immediately re-leasing and
		// re-gating the same rows in a tight loop.
		return outcomeEmptyQueue
	}

	return outcomeTaskCompleted
}

// executeTask runs the per-task protocol from spec.md §4.4 steps 1-7. It
// recovers from panics so one bad task never takes down the worker loop.
// The returned bool reports whether the task was actually worked (sent,
// retried, or dead-lettered) as opposed to merely deferred by the backoff
// gate — tryExecuteBatch uses this to tell a truly busy batch from one that
// only re-leased rows still waiting out their backoff window.
func (w *Worker) executeTask(ctx context.Context, tx pgx.Tx, task store.DeliveryTask) (workDone bool) {
	workDone = true
	defer func() {
		if r := recover(); r != nil {
			w.logger.Errorw("worker: task panicked, recovering",
				"newsletter_issue_id", task.NewsletterIssueID,
				"subscriber_email", task.SubscriberEmail,
				"panic", r,
				"stack", string(debug.Stack()),
			)
			_ = tx.Rollback(ctx)
		}
	}()

	// Step 2: backoff gate.
	if task.LastAttemptedAt != nil {
		wait := requiredWait(w.cfg.RetryBackoffMinutes, task.AttemptCount)
		if time.Since(*task.LastAttemptedAt) < wait {
			_ = tx.Rollback(ctx)
			workDone = false
			return
		}
	}

	// Step 3: validate the stored email.
	if _, err := domain.ParseSubscriberEmail(task.SubscriberEmail); err != nil {
		w.promoteToDeadLetter(ctx, tx, task, task.AttemptCount, "invalid stored email: "+err.Error())
		return
	}

	// Step 4: load the issue outside the lease transaction.
	issue, err := w.issues.GetByID(ctx, task.NewsletterIssueID)
	if err != nil {
		w.handleFailure(ctx, tx, task, fmt.Sprintf("loading newsletter issue: %v", err))
		return
	}

	// Step 5: call the email provider.
	sendErr := w.provider.Send(ctx, emailprovider.SendRequest{
		From:     w.cfg.EmailFrom,
		To:       task.SubscriberEmail,
		Subject:  issue.Title,
		HTMLBody: issue.HTMLContent,
		TextBody: issue.TextContent,
	})
	if sendErr != nil {
		w.handleFailure(ctx, tx, task, sendErr.Error())
		return
	}

	// Step 6: success.
	if err := w.queue.Delete(ctx, tx, task.NewsletterIssueID, task.SubscriberEmail); err != nil {
		w.logger.Errorw("worker: failed to delete completed queue row", "error", err)
		_ = tx.Rollback(ctx)
		return
	}
	if err := tx.Commit(ctx); err != nil {
		w.logger.Errorw("worker: failed to commit completed task", "error", err)
	}
}

// handleFailure implements step 7: exhaustion promotes to the dead-letter
// queue within the lease transaction; otherwise bookkeeping is written on a
// separate connection after the lease transaction is rolled back.
func (w *Worker) handleFailure(ctx context.Context, tx pgx.Tx, task store.DeliveryTask, errMsg string) {
	newAttempt := task.AttemptCount + 1
	if newAttempt >= w.cfg.MaxRetryAttempts {
		w.promoteToDeadLetter(ctx, tx, task, newAttempt, errMsg)
		return
	}

	// Release the lock first: the bookkeeping write must not hold it.
	if err := tx.Rollback(ctx); err != nil {
		w.logger.Errorw("worker: failed to roll back lease transaction", "error", err)
	}

	if err := w.queue.RecordAttempt(ctx, task.NewsletterIssueID, task.SubscriberEmail, newAttempt, time.Now().UTC(), errMsg); err != nil {
		w.logger.Errorw("worker: failed to record retry attempt", "error", err)
	}
}

func (w *Worker) promoteToDeadLetter(ctx context.Context, tx pgx.Tx, task store.DeliveryTask, attemptCount int, errMsg string) {
	rec := store.DeadLetterRecord{
		NewsletterIssueID: task.NewsletterIssueID,
		SubscriberEmail:   task.SubscriberEmail,
		AttemptCount:      attemptCount,
		LastError:         errMsg,
		FailedAt:          time.Now().UTC(),
	}
	if err := w.deadLetter.Upsert(ctx, tx, rec); err != nil {
		w.logger.Errorw("worker: failed to upsert dead letter record", "error", err)
		_ = tx.Rollback(ctx)
		return
	}
	if err := w.queue.Delete(ctx, tx, task.NewsletterIssueID, task.SubscriberEmail); err != nil {
		w.logger.Errorw("worker: failed to delete exhausted queue row", "error", err)
		_ = tx.Rollback(ctx)
		return
	}
	if err := tx.Commit(ctx); err != nil {
		w.logger.Errorw("worker: failed to commit dead-letter promotion", "error", err)
	}
}
