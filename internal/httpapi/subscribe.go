package httpapi

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/GOVSEteam/go-newsletter-delivery/internal/domain"
	"github.com/GOVSEteam/go-newsletter-delivery/internal/subscribe"
)

// SubscribeHandler handles POST /subscriptions. It never leaks whether an
// email is already subscribed: any well-formed submission gets a 200
// (spec.md §4.1, §6).
func SubscribeHandler(cmd *subscribe.Command, logger *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			PlainText(w, "invalid form body", http.StatusBadRequest)
			return
		}

		email, err := domain.ParseSubscriberEmail(r.FormValue("email"))
		if err != nil {
			PlainTextErrorSecure(w, err, logger.Errorw)
			return
		}
		name, err := domain.ParseSubscriberName(r.FormValue("name"))
		if err != nil {
			PlainTextErrorSecure(w, err, logger.Errorw)
			return
		}

		if err := cmd.Subscribe(r.Context(), email.String(), name.String()); err != nil {
			PlainTextErrorSecure(w, err, logger.Errorw)
			return
		}

		PlainText(w, "subscription request received", http.StatusOK)
	}
}
