package httpapi

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/GOVSEteam/go-newsletter-delivery/internal/domain"
	"github.com/GOVSEteam/go-newsletter-delivery/internal/subscribe"
)

// ConfirmHandler handles GET /subscriptions/confirm?subscription_token=….
// A malformed token is rejected without a database round trip (spec.md §7
// error kind 1); a well-formed but unknown or already-consumed token still
// reaches the command, which resolves the remaining cases.
func ConfirmHandler(cmd *subscribe.Command, logger *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := r.URL.Query().Get("subscription_token")
		token, err := domain.ParseSubscriptionToken(raw)
		if err != nil {
			PlainTextErrorSecure(w, err, logger.Errorw)
			return
		}

		if err := cmd.Confirm(r.Context(), token.String()); err != nil {
			PlainTextErrorSecure(w, err, logger.Errorw)
			return
		}

		PlainText(w, "subscription confirmed", http.StatusOK)
	}
}
