package httpapi

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"

	apperrors "github.com/GOVSEteam/go-newsletter-delivery/internal/errors"
	"github.com/GOVSEteam/go-newsletter-delivery/internal/publish"
	"github.com/GOVSEteam/go-newsletter-delivery/internal/store"
)

// PublishHandler handles POST /admin/newsletters: a session-authenticated,
// form-encoded, idempotent publish of a newsletter issue. Success redirects
// back to the admin page with a flash message (spec.md §6).
func PublishHandler(cmd *publish.Command, session *Session, logger *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := session.UserID(r)
		if userID == "" {
			session.FlashInfo(w, "please log in to publish a newsletter issue")
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		if err := r.ParseForm(); err != nil {
			JSONErrorSecure(w, fmt.Errorf("%w: invalid form body", apperrors.ErrBadRequest), logger.Errorw)
			return
		}

		idempotencyKey := r.FormValue("idempotency_key")
		if err := publish.ValidateIdempotencyKeyShape(idempotencyKey); err != nil {
			JSONErrorSecure(w, err, logger.Errorw)
			return
		}

		req := publish.Request{
			UserID:         userID,
			IdempotencyKey: idempotencyKey,
			Title:          r.FormValue("title"),
			TextContent:    r.FormValue("text"),
			HTMLContent:    r.FormValue("html"),
		}

		if err := publish.ValidateRequestFields(req); err != nil {
			JSONErrorSecure(w, err, logger.Errorw)
			return
		}

		build := func() publish.Result {
			return publish.Result{
				StatusCode: http.StatusSeeOther,
				Headers: []store.HeaderPair{
					{Name: "Location", Value: []byte("/admin/newsletters")},
				},
			}
		}

		result, err := cmd.Execute(r.Context(), req, build)
		if err != nil {
			JSONErrorSecure(w, err, logger.Errorw)
			return
		}

		session.FlashInfo(w, "The newsletter issue has been accepted - emails will go out shortly")
		writeResult(w, result)
	}
}

func writeResult(w http.ResponseWriter, result publish.Result) {
	for _, h := range result.Headers {
		w.Header().Add(h.Name, string(h.Value))
	}
	w.WriteHeader(result.StatusCode)
	if len(result.Body) > 0 {
		_, _ = w.Write(result.Body)
	}
}
