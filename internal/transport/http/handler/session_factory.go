package handler

import (
	"net/http"
	"time"

	"github.com/go-storefront-gateway/internal/session"
)

// SessionFactory builds the session for one request.
type SessionFactory func(w http.ResponseWriter, r *http.Request) *session.Session

// CookieSessions returns a factory backed by the request's cookie jar.
func CookieSessions(opts session.CookieOptions, ttl time.Duration) SessionFactory {
	return func(w http.ResponseWriter, r *http.Request) *session.Session {
		return session.New(session.NewCookieStore(w, r, opts), ttl)
	}
}
