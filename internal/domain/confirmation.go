package domain

import "time"

// ConfirmationStatus is the state of one confirmation attempt.
type ConfirmationStatus string

const (
	ConfirmationPending   ConfirmationStatus = "pending"
	ConfirmationSucceeded ConfirmationStatus = "succeeded"
	ConfirmationFailed    ConfirmationStatus = "failed"
)

// LinkTypeSignup is the only link type the confirmation flow accepts.
const LinkTypeSignup = "signup"

// ConfirmationAttempt is one execution of the email confirmation flow.
// The link token is never stored on it.
// PK: attempt_id. ExpiresAt is a Unix timestamp used as DynamoDB TTL.
type ConfirmationAttempt struct {
	AttemptID     string             `json:"id" dynamodbav:"attempt_id"`
	Status        ConfirmationStatus `json:"status" dynamodbav:"status"`
	Message       string             `json:"message" dynamodbav:"message"`
	LinkType      string             `json:"type,omitempty" dynamodbav:"link_type,omitempty"`
	SubjectID     string             `json:"user_id,omitempty" dynamodbav:"subject_id,omitempty"`
	RedirectTo    string             `json:"redirect_to,omitempty" dynamodbav:"-"`
	RedirectAfter time.Duration      `json:"-" dynamodbav:"-"`
	CreatedAt     time.Time          `json:"created" dynamodbav:"created_at"`
	ExpiresAt     int64              `json:"-" dynamodbav:"expires_at"` // TTL (Unix seconds)
}

// Terminal reports whether the attempt has left the pending state.
func (a *ConfirmationAttempt) Terminal() bool {
	return a.Status == ConfirmationSucceeded || a.Status == ConfirmationFailed
}
