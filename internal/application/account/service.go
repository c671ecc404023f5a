package account

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-storefront-gateway/internal/domain"
	"github.com/go-storefront-gateway/internal/infrastructure/backend"
)

type Service interface {
	SignUp(ctx context.Context, req backend.SignUpRequest, sess Session) (*Result, error)
	SignIn(ctx context.Context, req backend.SignInRequest, sess Session) (*Result, error)
	Logout(ctx context.Context, sess Session)
	Current(ctx context.Context, sess Session) *Current
}

// Result describes the session state after signup or signin.
type Result struct {
	UserID               string
	Authenticated        bool
	ConfirmationRequired bool
}

// Current is what the gateway knows about the caller's session.
type Current struct {
	Authenticated bool
	UserID        string
	PendingEmail  string
	Profile       *backend.Profile
}

// Session is the part of session.Session the service needs.
type Session interface {
	Set(token, subjectID string)
	SetPendingEmail(email string)
	Get(key string) string
	Logout()
	Credentials() domain.Credential
}

type authBackend interface {
	SignUp(ctx context.Context, req backend.SignUpRequest) (*backend.AuthResult, error)
	SignIn(ctx context.Context, req backend.SignInRequest) (*backend.AuthResult, error)
	ProfileFor(ctx context.Context, src backend.CredentialSource) (*backend.Profile, error)
}

type service struct {
	backend authBackend
}

func NewService(b authBackend) Service {
	return &service{backend: b}
}

// SignUp creates the account and marks its email as awaiting confirmation. When the backend
// already issues a token the session is stored as well.
func (s *service) SignUp(ctx context.Context, req backend.SignUpRequest, sess Session) (*Result, error) {
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	res, err := s.backend.SignUp(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("signup: %w", err)
	}
	sess.SetPendingEmail(req.Email)
	out := &Result{UserID: res.UserID, ConfirmationRequired: true}
	if res.AccessToken != "" {
		sess.Set(res.AccessToken, res.UserID)
		out.Authenticated = true
	}
	return out, nil
}

func (s *service) SignIn(ctx context.Context, req backend.SignInRequest, sess Session) (*Result, error) {
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	res, err := s.backend.SignIn(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("signin: %w", err)
	}
	sess.Set(res.AccessToken, res.UserID)
	return &Result{UserID: res.UserID, Authenticated: true}, nil
}

// Logout clears the credential. The pending-confirmation marker is kept.
func (s *service) Logout(_ context.Context, sess Session) {
	sess.Logout()
}

// Current reports the session from the caller's cookies and, when a token is present, the
// backend profile. A profile lookup failure is logged and leaves Profile nil.
func (s *service) Current(ctx context.Context, sess Session) *Current {
	creds := sess.Credentials()
	cur := &Current{
		Authenticated: creds.Authenticated(),
		UserID:        creds.SubjectID,
		PendingEmail:  sess.Get(domain.CookiePendingConfirmation),
	}
	if !cur.Authenticated {
		return cur
	}
	p, err := s.backend.ProfileFor(ctx, sess)
	if err != nil {
		slog.Warn("profile lookup failed", "user_id", creds.SubjectID, "err", err)
		return cur
	}
	cur.Profile = p
	return cur
}
