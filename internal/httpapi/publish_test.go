package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/GOVSEteam/go-newsletter-delivery/internal/publish"
	"github.com/GOVSEteam/go-newsletter-delivery/internal/store"
)

type mockIdempotencyRepo struct{ mock.Mock }

func (m *mockIdempotencyRepo) TryBegin(ctx context.Context, userID, key string) (store.Outcome, error) {
	args := m.Called(ctx, userID, key)
	return args.Get(0).(store.Outcome), args.Error(1)
}

func (m *mockIdempotencyRepo) SaveResponse(ctx context.Context, tx pgx.Tx, userID, key string, resp store.SavedResponse) error {
	args := m.Called(ctx, tx, userID, key, resp)
	return args.Error(0)
}

type mockIssueRepo struct{ mock.Mock }

func (m *mockIssueRepo) Insert(ctx context.Context, tx pgx.Tx, issue store.NewsletterIssue) error {
	args := m.Called(ctx, tx, issue)
	return args.Error(0)
}

type mockQueueRepo struct{ mock.Mock }

func (m *mockQueueRepo) EnqueueConfirmedSubscribers(ctx context.Context, tx pgx.Tx, issueID string) error {
	args := m.Called(ctx, tx, issueID)
	return args.Error(0)
}

func authenticatedPublishRequest(t *testing.T, session *Session, form url.Values) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/admin/newsletters", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := httptest.NewRecorder()
	session.SetUserID(rec, "editor-1")
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func TestPublishHandler_MissingTitle_RejectsWithoutTouchingStores(t *testing.T) {
	idempotency := &mockIdempotencyRepo{}
	issues := &mockIssueRepo{}
	queue := &mockQueueRepo{}
	cmd := publish.NewCommand(idempotency, issues, queue)
	session := NewSession("test-secret")
	logger := zap.NewNop().Sugar()

	form := url.Values{
		"idempotency_key": {"key-1"},
		"title":           {""},
		"text":            {"some text"},
		"html":            {"<p>some html</p>"},
	}
	req := authenticatedPublishRequest(t, session, form)
	rec := httptest.NewRecorder()

	PublishHandler(cmd, session, logger)(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	idempotency.AssertNotCalled(t, "TryBegin", mock.Anything, mock.Anything, mock.Anything)
	issues.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything, mock.Anything)
	queue.AssertNotCalled(t, "EnqueueConfirmedSubscribers", mock.Anything, mock.Anything, mock.Anything)
}

func TestPublishHandler_MissingTextOrHTML_RejectsWithBadRequest(t *testing.T) {
	tests := []struct {
		name string
		form url.Values
	}{
		{"missing text", url.Values{"idempotency_key": {"key-1"}, "title": {"Issue"}, "text": {""}, "html": {"<p>html</p>"}}},
		{"missing html", url.Values{"idempotency_key": {"key-1"}, "title": {"Issue"}, "text": {"text"}, "html": {""}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idempotency := &mockIdempotencyRepo{}
			issues := &mockIssueRepo{}
			queue := &mockQueueRepo{}
			cmd := publish.NewCommand(idempotency, issues, queue)
			session := NewSession("test-secret")
			logger := zap.NewNop().Sugar()

			req := authenticatedPublishRequest(t, session, tt.form)
			rec := httptest.NewRecorder()

			PublishHandler(cmd, session, logger)(rec, req)

			require.Equal(t, http.StatusBadRequest, rec.Code)
			issues.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}
