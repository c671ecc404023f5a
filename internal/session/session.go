// Package session persists the storefront credential across page loads.
//
// A Session is the explicit session-context object handed to the backend client and the
// confirmation flow. It is backed by a Store: cookies when serving browser traffic, a YAML file
// for the operator CLI.
package session

import (
	"time"

	"github.com/go-storefront-gateway/internal/domain"
)

// DefaultTTL is the lifetime of a credential, fixed when it is written.
const DefaultTTL = 7 * 24 * time.Hour

// Store is a key/value mechanism that enforces expiry on its own.
type Store interface {
	Get(key string) (string, bool)
	Put(key, value string, expires time.Time)
	Delete(key string)
}

// Session reads and writes the credential through a Store.
type Session struct {
	store Store
	ttl   time.Duration
	now   func() time.Time
}

// New binds a Session to store. A non-positive ttl uses DefaultTTL.
func New(store Store, ttl time.Duration) *Session {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Session{store: store, ttl: ttl, now: time.Now}
}

// Set persists token and subjectID with an absolute expiry of now+TTL.
// Existing values are overwritten unconditionally.
func (s *Session) Set(token, subjectID string) {
	expires := s.now().Add(s.ttl)
	s.store.Put(domain.CookieAccessToken, token, expires)
	s.store.Put(domain.CookieUserID, subjectID, expires)
}

// SetPendingEmail records that email has an outstanding confirmation step.
func (s *Session) SetPendingEmail(email string) {
	s.store.Put(domain.CookiePendingConfirmation, email, s.now().Add(s.ttl))
}

// Get returns the stored value, or "" when unset or expired.
func (s *Session) Get(key string) string {
	v, _ := s.store.Get(key)
	return v
}

// Clear removes key immediately.
func (s *Session) Clear(key string) {
	s.store.Delete(key)
}

// Logout removes both credential values.
func (s *Session) Logout() {
	s.store.Delete(domain.CookieAccessToken)
	s.store.Delete(domain.CookieUserID)
}

// Credentials returns the currently stored credential.
func (s *Session) Credentials() domain.Credential {
	return domain.Credential{
		Token:     s.Get(domain.CookieAccessToken),
		SubjectID: s.Get(domain.CookieUserID),
	}
}
