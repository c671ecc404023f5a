package domain

import "time"

// Cookie names shared with the backend. Renaming any of them breaks existing sessions.
const (
	CookieAccessToken         = "x-access-token"
	CookieUserID              = "x-user-id"
	CookiePendingConfirmation = "pending-confirmation-email"
)

// Header names the backend reads credentials from. They intentionally mirror the cookie names
// instead of using an Authorization scheme.
const (
	HeaderAccessToken = "x-access-token"
	HeaderUserID      = "x-user-id"
)

// Credential is the proof of authentication carried between the browser and the backend.
type Credential struct {
	Token     string    `json:"access_token,omitempty" yaml:"token"`
	SubjectID string    `json:"user_id,omitempty" yaml:"subject_id"`
	ExpiresAt time.Time `json:"expires_at,omitempty" yaml:"expires_at"`
}

// Authenticated reports whether a bearer token is present. Validity is not checked.
func (c Credential) Authenticated() bool { return c.Token != "" }
