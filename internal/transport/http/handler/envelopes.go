package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-storefront-gateway/internal/domain"
	"github.com/go-storefront-gateway/internal/infrastructure/backend"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message   string `json:"message,omitempty"`
	Error     string `json:"error,omitempty"`
	ErrorCode int    `json:"error_code,omitempty"`
}

// AuthEnvelope wraps signup/signin responses. The token itself only travels in cookies.
type AuthEnvelope struct {
	UserID               string `json:"user_id,omitempty"`
	Authenticated        bool   `json:"authenticated"`
	ConfirmationRequired bool   `json:"confirmation_required,omitempty"`
	Message              string `json:"message,omitempty"`
}

// SessionEnvelope wraps current-session responses.
type SessionEnvelope struct {
	Authenticated bool             `json:"authenticated"`
	UserID        string           `json:"user_id,omitempty"`
	PendingEmail  string           `json:"pending_confirmation_email,omitempty"`
	Profile       *backend.Profile `json:"profile,omitempty"`
}

// ConfirmationEnvelope is a finished confirmation attempt.
type ConfirmationEnvelope struct {
	AttemptID       string                    `json:"attempt_id"`
	Status          domain.ConfirmationStatus `json:"status"`
	Message         string                    `json:"message"`
	RedirectTo      string                    `json:"redirect_to,omitempty"`
	RedirectAfterMS int64                     `json:"redirect_after_ms,omitempty"`
}

func toConfirmationEnvelope(a *domain.ConfirmationAttempt) ConfirmationEnvelope {
	return ConfirmationEnvelope{
		AttemptID:       a.AttemptID,
		Status:          a.Status,
		Message:         a.Message,
		RedirectTo:      a.RedirectTo,
		RedirectAfterMS: a.RedirectAfter.Milliseconds(),
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg, ErrorCode: status})
}
