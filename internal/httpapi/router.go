// Package httpapi wires the HTTP surface from spec.md §6: the
// session-authenticated admin publish endpoint and the two public
// subscription endpoints.
package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"go.uber.org/zap"

	appmiddleware "github.com/GOVSEteam/go-newsletter-delivery/internal/middleware"
	"github.com/GOVSEteam/go-newsletter-delivery/internal/publish"
	"github.com/GOVSEteam/go-newsletter-delivery/internal/subscribe"
)

// Dependencies bundles everything the router needs to wire handlers.
type Dependencies struct {
	Publish   *publish.Command
	Subscribe *subscribe.Command
	Session   *Session
	Logger    *zap.SugaredLogger
}

// NewRouter builds the chi router for the delivery core's HTTP surface.
func NewRouter(deps Dependencies) *chi.Mux {
	r := chi.NewRouter()

	r.Use(appmiddleware.RecoveryMiddleware(deps.Logger))
	r.Use(appmiddleware.LoggingMiddleware(deps.Logger))
	r.Use(middleware.RealIP)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/admin", func(r chi.Router) {
		r.Post("/newsletters", PublishHandler(deps.Publish, deps.Session, deps.Logger))
	})

	r.Group(func(r chi.Router) {
		// Public, unauthenticated endpoints are the ones worth protecting
		// from abuse: bound each caller to a modest request rate.
		r.Use(httprate.LimitByIP(20, time.Minute))

		r.Post("/subscriptions", SubscribeHandler(deps.Subscribe, deps.Logger))
		r.Get("/subscriptions/confirm", ConfirmHandler(deps.Subscribe, deps.Logger))
	})

	return r
}
