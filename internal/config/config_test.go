package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		envVars     map[string]string
		expectError bool
		errorText   string
	}{
		{
			name: "valid configuration",
			envVars: map[string]string{
				"DATABASE_URL":   "postgres://localhost/test",
				"APP_BASE_URL":   "http://localhost:8080",
				"EMAIL_FROM":     "noreply@example.com",
				"SESSION_SECRET": "a-very-secret-value",
				"PORT":           "3000",
			},
			expectError: false,
		},
		{
			name: "missing DATABASE_URL",
			envVars: map[string]string{
				"APP_BASE_URL":   "http://localhost:8080",
				"EMAIL_FROM":     "noreply@example.com",
				"SESSION_SECRET": "a-very-secret-value",
			},
			expectError: true,
			errorText:   "DATABASE_URL",
		},
		{
			name: "missing APP_BASE_URL",
			envVars: map[string]string{
				"DATABASE_URL":   "postgres://localhost/test",
				"EMAIL_FROM":     "noreply@example.com",
				"SESSION_SECRET": "a-very-secret-value",
			},
			expectError: true,
			errorText:   "APP_BASE_URL",
		},
		{
			name: "missing EMAIL_FROM",
			envVars: map[string]string{
				"DATABASE_URL":   "postgres://localhost/test",
				"APP_BASE_URL":   "http://localhost:8080",
				"SESSION_SECRET": "a-very-secret-value",
			},
			expectError: true,
			errorText:   "EMAIL_FROM",
		},
		{
			name: "missing SESSION_SECRET",
			envVars: map[string]string{
				"DATABASE_URL": "postgres://localhost/test",
				"APP_BASE_URL": "http://localhost:8080",
				"EMAIL_FROM":   "noreply@example.com",
			},
			expectError: true,
			errorText:   "SESSION_SECRET",
		},
		{
			name: "invalid PORT",
			envVars: map[string]string{
				"DATABASE_URL":   "postgres://localhost/test",
				"APP_BASE_URL":   "http://localhost:8080",
				"EMAIL_FROM":     "noreply@example.com",
				"SESSION_SECRET": "a-very-secret-value",
				"PORT":           "not-a-number",
			},
			expectError: true,
			errorText:   "PORT",
		},
		{
			name: "invalid CONCURRENT_TASKS",
			envVars: map[string]string{
				"DATABASE_URL":     "postgres://localhost/test",
				"APP_BASE_URL":     "http://localhost:8080",
				"EMAIL_FROM":       "noreply@example.com",
				"SESSION_SECRET":   "a-very-secret-value",
				"CONCURRENT_TASKS": "many",
			},
			expectError: true,
			errorText:   "CONCURRENT_TASKS",
		},
		{
			name: "resend provider without API key",
			envVars: map[string]string{
				"DATABASE_URL":   "postgres://localhost/test",
				"APP_BASE_URL":   "http://localhost:8080",
				"EMAIL_FROM":     "noreply@example.com",
				"SESSION_SECRET": "a-very-secret-value",
				"EMAIL_PROVIDER": "resend",
			},
			expectError: true,
			errorText:   "RESEND_API_KEY",
		},
		{
			name: "http provider without URL",
			envVars: map[string]string{
				"DATABASE_URL":   "postgres://localhost/test",
				"APP_BASE_URL":   "http://localhost:8080",
				"EMAIL_FROM":     "noreply@example.com",
				"SESSION_SECRET": "a-very-secret-value",
				"EMAIL_PROVIDER": "http",
			},
			expectError: true,
			errorText:   "EMAIL_HTTP_URL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv()
			for key, value := range tt.envVars {
				os.Setenv(key, value)
			}
			defer clearEnv()

			cfg, err := Load()

			if tt.expectError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorText)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, cfg)

			if tt.name == "valid configuration" {
				assert.Equal(t, "postgres://localhost/test", cfg.DatabaseURL)
				assert.Equal(t, "http://localhost:8080", cfg.AppBaseURL)
				assert.Equal(t, 3000, cfg.Port)
				assert.Equal(t, "console", cfg.EmailProvider)
			}
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv()
	defer clearEnv()

	os.Setenv("DATABASE_URL", "postgres://localhost/test")
	os.Setenv("APP_BASE_URL", "http://localhost:8080")
	os.Setenv("EMAIL_FROM", "noreply@example.com")
	os.Setenv("SESSION_SECRET", "a-very-secret-value")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 10, cfg.ConcurrentTasks)
	assert.Equal(t, 5, cfg.MaxRetryAttempts)
	assert.Equal(t, 5, cfg.RetryBackoffMinutes)
	assert.Equal(t, 10*time.Second, cfg.EmptyQueueSleep)
	assert.Equal(t, 1*time.Second, cfg.WorkerErrorSleep)
	assert.Equal(t, 30*24*time.Hour, cfg.RetentionPeriod)
	assert.Equal(t, 24*time.Hour, cfg.RetentionInterval)
}

// clearEnv removes all environment variables used by the configuration.
func clearEnv() {
	envVars := []string{
		"DATABASE_URL",
		"APP_BASE_URL",
		"SESSION_SECRET",
		"PORT",
		"EMAIL_PROVIDER",
		"RESEND_API_KEY",
		"EMAIL_FROM",
		"EMAIL_HTTP_URL",
		"CONCURRENT_TASKS",
		"MAX_RETRY_ATTEMPTS",
		"RETRY_BACKOFF_MINUTES",
		"EMPTY_QUEUE_SLEEP_SECONDS",
		"WORKER_ERROR_SLEEP_SECONDS",
		"RETENTION_PERIOD_DAYS",
		"RETENTION_SWEEP_INTERVAL_HOURS",
		"APP_ENV",
	}

	for _, key := range envVars {
		os.Unsetenv(key)
	}
}
