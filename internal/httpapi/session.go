package httpapi

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
	"time"
)

// Session signs and verifies the two cookies the admin surface depends on:
// a long-lived user_id cookie and a one-shot flash message cookie. No
// session-store library in the example corpus covers this (gorilla/sessions
// and friends are absent from every go.mod in the pack), so this is a
// minimal HMAC-signed cookie, not a general session store — see DESIGN.md.
type Session struct {
	secret []byte
}

// NewSession builds a Session signer from the configured secret.
func NewSession(secret string) *Session {
	return &Session{secret: []byte(secret)}
}

const (
	userIDCookieName = "session_user_id"
	flashCookieName  = "flash_message"
)

var errBadSignature = errors.New("httpapi: cookie signature mismatch")

func (s *Session) sign(value string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(value))
	sig := mac.Sum(nil)
	return base64.RawURLEncoding.EncodeToString([]byte(value)) + "." + base64.RawURLEncoding.EncodeToString(sig)
}

func (s *Session) verify(signed string) (string, error) {
	parts := strings.SplitN(signed, ".", 2)
	if len(parts) != 2 {
		return "", errBadSignature
	}
	valueBytes, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return "", errBadSignature
	}
	wantSig, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return "", errBadSignature
	}
	mac := hmac.New(sha256.New, s.secret)
	mac.Write(valueBytes)
	if !hmac.Equal(mac.Sum(nil), wantSig) {
		return "", errBadSignature
	}
	return string(valueBytes), nil
}

// UserID reads and verifies the session cookie. Returns "" if absent or
// invalid — callers treat that as "not authenticated" (spec.md §7 error
// kind 2: missing/invalid session).
func (s *Session) UserID(r *http.Request) string {
	cookie, err := r.Cookie(userIDCookieName)
	if err != nil {
		return ""
	}
	userID, err := s.verify(cookie.Value)
	if err != nil {
		return ""
	}
	return userID
}

// SetUserID sets the signed session cookie.
func (s *Session) SetUserID(w http.ResponseWriter, userID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     userIDCookieName,
		Value:    s.sign(userID),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(7 * 24 * time.Hour),
	})
}

// FlashInfo sets a one-shot flash message, read and cleared by the next
// request (mirroring the flash-on-redirect pattern the admin endpoint
// relies on).
func (s *Session) FlashInfo(w http.ResponseWriter, message string) {
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    s.sign(message),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// TakeFlash reads the flash message, if any, and clears the cookie so it is
// only shown once.
func (s *Session) TakeFlash(w http.ResponseWriter, r *http.Request) string {
	cookie, err := r.Cookie(flashCookieName)
	if err != nil {
		return ""
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
	})
	message, err := s.verify(cookie.Value)
	if err != nil {
		return ""
	}
	return message
}
