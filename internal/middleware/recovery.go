package middleware

import (
	"encoding/json"
	"net/http"
	"runtime/debug"

	"go.uber.org/zap"
)

// errorBody mirrors httpapi's ErrorResponse shape. Duplicated here rather
// than imported to avoid a middleware -> httpapi import cycle (httpapi
// already imports this package to wire the middleware chain).
type errorBody struct {
	Error string `json:"error"`
}

// RecoveryMiddleware creates a panic recovery middleware that:
// - Captures and logs panics with stack traces
// - Returns proper HTTP 500 responses
// - Ensures the application doesn't crash on panics
func RecoveryMiddleware(logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					requestID := GetRequestIDFromContext(r.Context())

					logger.Errorw("Panic recovered",
						"requestID", requestID,
						"method", r.Method,
						"path", r.URL.Path,
						"panic", rec,
						"stackTrace", string(debug.Stack()),
					)

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(errorBody{Error: "Internal server error"})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
