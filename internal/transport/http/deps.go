package http

import (
	"context"

	"github.com/go-storefront-gateway/internal/domain"
	"github.com/go-storefront-gateway/internal/infrastructure/backend"
)

// Backend is the minimal interface the router requires from the auth backend client.
type Backend interface {
	VerifyEmail(ctx context.Context, token string) error
	EstablishSession(ctx context.Context, token string) (domain.Credential, error)
	SignUp(ctx context.Context, req backend.SignUpRequest) (*backend.AuthResult, error)
	SignIn(ctx context.Context, req backend.SignInRequest) (*backend.AuthResult, error)
	ProfileFor(ctx context.Context, src backend.CredentialSource) (*backend.Profile, error)
}

// AttemptRecorder is the minimal interface the router requires from the audit store.
type AttemptRecorder interface {
	Record(ctx context.Context, a *domain.ConfirmationAttempt) error
}

// TokenVerifier checks access tokens at the gate when deep verification is enabled.
type TokenVerifier interface {
	Valid(token string) bool
}
