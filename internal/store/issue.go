package store

import (
	_ "embed"
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	apperrors "github.com/GOVSEteam/go-newsletter-delivery/internal/errors"
)

//go:embed queries/issue/insert.sql
var insertIssueQuery string

//go:embed queries/issue/get_by_id.sql
var getIssueByIDQuery string

// IssueStore persists newsletter issues. Issues are immutable once inserted.
type IssueStore struct {
	pool *pgxpool.Pool
}

// NewIssueStore wraps pool in an IssueStore.
func NewIssueStore(pool *pgxpool.Pool) *IssueStore {
	return &IssueStore{pool: pool}
}

// Insert creates a new newsletter issue row, inside tx.
func (s *IssueStore) Insert(ctx context.Context, tx pgx.Tx, issue NewsletterIssue) error {
	_, err := tx.Exec(ctx, insertIssueQuery,
		issue.ID, issue.Title, issue.TextContent, issue.HTMLContent, issue.PublishedAt)
	if err != nil {
		return fmt.Errorf("store: Insert issue: %w", err)
	}
	return nil
}

// GetByID loads a newsletter issue by id, outside of any lease transaction
// per the delivery worker's protocol (spec.md §4.4 step 4).
func (s *IssueStore) GetByID(ctx context.Context, id string) (NewsletterIssue, error) {
	var issue NewsletterIssue
	err := s.pool.QueryRow(ctx, getIssueByIDQuery, id).Scan(
		&issue.ID, &issue.Title, &issue.TextContent, &issue.HTMLContent, &issue.PublishedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return NewsletterIssue{}, apperrors.ErrIssueNotFound
		}
		return NewsletterIssue{}, fmt.Errorf("store: GetByID issue: %w", err)
	}
	return issue, nil
}
