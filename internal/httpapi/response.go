package httpapi

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/GOVSEteam/go-newsletter-delivery/internal/errors"
)

// ErrorResponse is the standard JSON error body for the JSON endpoints.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// JSONError writes a standard JSON error response.
func JSONError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   http.StatusText(code),
		Message: message,
	})
}

// JSONErrorSecure maps err to an HTTP status and writes a JSON error body.
// For 5xx errors the message is always generic: the underlying error is
// expected to have already been logged by the caller, never echoed to the
// client.
func JSONErrorSecure(w http.ResponseWriter, err error, logger func(string, ...interface{})) {
	statusCode, message := resolveError(err, logger)
	JSONError(w, message, statusCode)
}

// resolveError maps err to an HTTP status and a client-safe message. 5xx
// errors are logged with full detail and never echoed back to the caller.
func resolveError(err error, logger func(string, ...interface{})) (int, string) {
	statusCode := apperrors.ErrorToHTTPStatus(err)

	message := err.Error()
	if statusCode >= http.StatusInternalServerError {
		if logger != nil {
			logger("request failed", "error", err)
		}
		message = "an internal error occurred, please try again"
	}
	return statusCode, message
}

// JSONResponse writes a standard JSON success response.
func JSONResponse(w http.ResponseWriter, data interface{}, code int) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(data)
}

// PlainText writes a simple text/plain response, used by the confirmation
// endpoint per spec.md §6 ("200 or 400 text").
func PlainText(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write([]byte(message))
}

// PlainTextErrorSecure is PlainText's counterpart to JSONErrorSecure.
func PlainTextErrorSecure(w http.ResponseWriter, err error, logger func(string, ...interface{})) {
	statusCode, message := resolveError(err, logger)
	PlainText(w, message, statusCode)
}
