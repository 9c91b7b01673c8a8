// Command newsletterd runs the three long-lived tasks of the delivery
// core: the admin/subscription HTTP server, the delivery worker loop, and
// the idempotency retention sweeper.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/GOVSEteam/go-newsletter-delivery/internal/config"
	"github.com/GOVSEteam/go-newsletter-delivery/internal/db"
	"github.com/GOVSEteam/go-newsletter-delivery/internal/domain"
	"github.com/GOVSEteam/go-newsletter-delivery/internal/emailprovider"
	"github.com/GOVSEteam/go-newsletter-delivery/internal/httpapi"
	"github.com/GOVSEteam/go-newsletter-delivery/internal/publish"
	"github.com/GOVSEteam/go-newsletter-delivery/internal/store"
	"github.com/GOVSEteam/go-newsletter-delivery/internal/subscribe"
	"github.com/GOVSEteam/go-newsletter-delivery/internal/sweeper"
	"github.com/GOVSEteam/go-newsletter-delivery/internal/worker"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("newsletterd: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger, err := newLogger(cfg.Environment)
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck
	sugar := logger.Sugar()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer pool.Close()

	provider, err := buildEmailProvider(cfg, sugar)
	if err != nil {
		return fmt.Errorf("building email provider: %w", err)
	}

	subscriptionStore := store.NewSubscriptionStore(pool)
	issueStore := store.NewIssueStore(pool)
	queueStore := store.NewQueueStore(pool)
	idempotencyStore := store.NewIdempotencyStore(pool)
	deadLetterStore := store.NewDeadLetterStore(pool)

	publishCmd := publish.NewCommand(idempotencyStore, issueStore, queueStore)
	subscribeCmd := subscribe.NewCommand(
		subscriptionStore,
		subscribe.NewEmailMailer(provider, cfg.EmailFrom),
		newTokenGenerator,
		cfg.AppBaseURL,
	)

	session := httpapi.NewSession(cfg.SessionSecret)
	router := httpapi.NewRouter(httpapi.Dependencies{
		Publish:   publishCmd,
		Subscribe: subscribeCmd,
		Session:   session,
		Logger:    sugar,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	deliveryWorker := worker.New(queueStore, issueStore, deadLetterStore, provider, sugar, worker.Config{
		ConcurrentTasks:     cfg.ConcurrentTasks,
		MaxRetryAttempts:    cfg.MaxRetryAttempts,
		RetryBackoffMinutes: cfg.RetryBackoffMinutes,
		EmptyQueueSleep:     cfg.EmptyQueueSleep,
		ErrorSleep:          cfg.WorkerErrorSleep,
		EmailFrom:           cfg.EmailFrom,
	})

	retentionSweeper := sweeper.New(idempotencyStore, sugar, cfg.RetentionPeriod, cfg.RetentionInterval)

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		sugar.Infow("starting http server", "addr", srv.Addr)
		errCh := make(chan error, 1)
		go func() { errCh <- srv.ListenAndServe() }()
		select {
		case <-groupCtx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		case err := <-errCh:
			if err != nil && err != http.ErrServerClosed {
				return fmt.Errorf("http server: %w", err)
			}
			return nil
		}
	})

	group.Go(func() error {
		sugar.Infow("starting delivery worker")
		return deliveryWorker.Run(groupCtx)
	})

	group.Go(func() error {
		sugar.Infow("starting retention sweeper")
		return retentionSweeper.Run(groupCtx)
	})

	if err := group.Wait(); err != nil && err != context.Canceled {
		return err
	}
	return nil
}

func newLogger(environment string) (*zap.Logger, error) {
	if environment == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func buildEmailProvider(cfg *config.Config, logger *zap.SugaredLogger) (emailprovider.Provider, error) {
	switch cfg.EmailProvider {
	case "resend":
		return emailprovider.NewResendProvider(cfg.ResendAPIKey)
	case "http":
		return emailprovider.NewHTTPJSONProvider(cfg.EmailHTTPURL), nil
	default:
		return emailprovider.NewConsoleProvider(logger), nil
	}
}

func newTokenGenerator() (string, error) {
	token, err := domain.NewSubscriptionToken()
	if err != nil {
		return "", err
	}
	return token.String(), nil
}
