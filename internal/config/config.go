// Package config loads application configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration values for the application.
type Config struct {
	// Database configuration
	DatabaseURL string

	// Application configuration
	AppBaseURL    string
	Port          int
	SessionSecret string

	// Email provider configuration
	EmailProvider string // "resend", "console", or "http"
	ResendAPIKey  string
	EmailFrom     string
	EmailHTTPURL  string // for the generic http provider

	// Worker tunables
	ConcurrentTasks     int
	MaxRetryAttempts    int
	RetryBackoffMinutes int
	EmptyQueueSleep     time.Duration
	WorkerErrorSleep    time.Duration

	// Retention sweeper tunables
	RetentionPeriod   time.Duration
	RetentionInterval time.Duration

	// Environment
	Environment string
}

// Load reads configuration from environment variables (and a local .env file,
// if present) and validates required fields.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		AppBaseURL:    os.Getenv("APP_BASE_URL"),
		SessionSecret: os.Getenv("SESSION_SECRET"),
		EmailProvider: getEnvWithDefault("EMAIL_PROVIDER", "console"),
		ResendAPIKey:  os.Getenv("RESEND_API_KEY"),
		EmailFrom:     os.Getenv("EMAIL_FROM"),
		EmailHTTPURL:  os.Getenv("EMAIL_HTTP_URL"),
		Environment:   getEnvWithDefault("APP_ENV", "development"),
	}

	port, err := strconv.Atoi(getEnvWithDefault("PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}
	cfg.Port = port

	concurrentTasks, err := strconv.Atoi(getEnvWithDefault("CONCURRENT_TASKS", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid CONCURRENT_TASKS: %w", err)
	}
	cfg.ConcurrentTasks = concurrentTasks

	maxRetryAttempts, err := strconv.Atoi(getEnvWithDefault("MAX_RETRY_ATTEMPTS", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid MAX_RETRY_ATTEMPTS: %w", err)
	}
	cfg.MaxRetryAttempts = maxRetryAttempts

	retryBackoffMinutes, err := strconv.Atoi(getEnvWithDefault("RETRY_BACKOFF_MINUTES", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid RETRY_BACKOFF_MINUTES: %w", err)
	}
	cfg.RetryBackoffMinutes = retryBackoffMinutes

	emptyQueueSleepSeconds, err := strconv.Atoi(getEnvWithDefault("EMPTY_QUEUE_SLEEP_SECONDS", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid EMPTY_QUEUE_SLEEP_SECONDS: %w", err)
	}
	cfg.EmptyQueueSleep = time.Duration(emptyQueueSleepSeconds) * time.Second

	workerErrorSleepSeconds, err := strconv.Atoi(getEnvWithDefault("WORKER_ERROR_SLEEP_SECONDS", "1"))
	if err != nil {
		return nil, fmt.Errorf("invalid WORKER_ERROR_SLEEP_SECONDS: %w", err)
	}
	cfg.WorkerErrorSleep = time.Duration(workerErrorSleepSeconds) * time.Second

	retentionDays, err := strconv.Atoi(getEnvWithDefault("RETENTION_PERIOD_DAYS", "30"))
	if err != nil {
		return nil, fmt.Errorf("invalid RETENTION_PERIOD_DAYS: %w", err)
	}
	cfg.RetentionPeriod = time.Duration(retentionDays) * 24 * time.Hour

	retentionIntervalHours, err := strconv.Atoi(getEnvWithDefault("RETENTION_SWEEP_INTERVAL_HOURS", "24"))
	if err != nil {
		return nil, fmt.Errorf("invalid RETENTION_SWEEP_INTERVAL_HOURS: %w", err)
	}
	cfg.RetentionInterval = time.Duration(retentionIntervalHours) * time.Hour

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate checks required configuration fields.
func (c *Config) validate() error {
	required := map[string]string{
		"DATABASE_URL":   c.DatabaseURL,
		"APP_BASE_URL":   c.AppBaseURL,
		"SESSION_SECRET": c.SessionSecret,
	}

	for field, value := range required {
		if value == "" {
			return fmt.Errorf("%s is required", field)
		}
	}

	if c.EmailProvider == "resend" && c.ResendAPIKey == "" {
		return fmt.Errorf("RESEND_API_KEY is required when EMAIL_PROVIDER=resend")
	}
	if c.EmailProvider == "http" && c.EmailHTTPURL == "" {
		return fmt.Errorf("EMAIL_HTTP_URL is required when EMAIL_PROVIDER=http")
	}
	if c.EmailFrom == "" {
		return fmt.Errorf("EMAIL_FROM is required")
	}

	return nil
}

// getEnvWithDefault returns environment variable value or default if empty.
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
