// Package migratedb opens the database/sql connection goose needs to run
// migrations. The application itself talks to Postgres through pgx
// (internal/db); goose only understands database/sql drivers, so this is
// kept as a narrow, separate entrypoint.
package migratedb

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// Connect opens a database/sql connection pool suitable for goose.
func Connect(ctx context.Context, databaseURL string) (*sql.DB, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("migratedb: database URL is required")
	}

	conn, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("migratedb: opening connection: %w", err)
	}

	conn.SetMaxOpenConns(5)
	conn.SetMaxIdleConns(2)
	conn.SetConnMaxLifetime(time.Hour)

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migratedb: pinging database: %w", err)
	}

	return conn, nil
}
