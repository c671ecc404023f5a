package backend

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-storefront-gateway/internal/domain"
	jwtinfra "github.com/go-storefront-gateway/internal/infrastructure/jwt"
)

type SignUpRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Name     string `json:"name,omitempty"`
	Phone    string `json:"phone,omitempty"`
}

type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResult is the session-identifying payload of signup, signin and session establishment.
// Signup may return no token when the account still needs email confirmation.
type AuthResult struct {
	AccessToken string `json:"access_token"`
	UserID      string `json:"user_id"`
	Email       string `json:"email,omitempty"`
}

// Profile is the signed-in user's public profile.
type Profile struct {
	UserID string `json:"user_id" yaml:"user_id"`
	Email  string `json:"email" yaml:"email"`
	Name   string `json:"name,omitempty" yaml:"name,omitempty"`
}

// VerifyEmail asks the backend to accept a confirmation-link token. Only the status is used.
func (c *Client) VerifyEmail(ctx context.Context, token string) error {
	return c.Do(ctx, http.MethodGet, c.paths.Verify, nil, nil, WithBearer(token))
}

// EstablishSession exchanges a verified link token for a session. A missing access_token falls
// back to the link token and a missing user_id to the token's sub claim.
func (c *Client) EstablishSession(ctx context.Context, token string) (domain.Credential, error) {
	var res AuthResult
	if err := c.Do(ctx, http.MethodPost, c.paths.Session, nil, &res, WithBearer(token)); err != nil {
		return domain.Credential{}, err
	}
	if res.AccessToken == "" {
		res.AccessToken = token
	}
	if res.UserID == "" {
		sub, err := jwtinfra.Subject(res.AccessToken)
		if err != nil {
			return domain.Credential{}, fmt.Errorf("no user id for session: %w", domain.ErrSessionNotEstablished)
		}
		res.UserID = sub
	}
	return domain.Credential{Token: res.AccessToken, SubjectID: res.UserID}, nil
}

func (c *Client) SignUp(ctx context.Context, req SignUpRequest) (*AuthResult, error) {
	var res AuthResult
	if err := c.Do(ctx, http.MethodPost, c.paths.SignUp, req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) SignIn(ctx context.Context, req SignInRequest) (*AuthResult, error) {
	var res AuthResult
	if err := c.Do(ctx, http.MethodPost, c.paths.SignIn, req, &res); err != nil {
		return nil, err
	}
	if res.AccessToken == "" {
		return nil, fmt.Errorf("signin returned no token: %w", domain.ErrSessionNotEstablished)
	}
	return &res, nil
}

// Me returns the profile of the bound session.
func (c *Client) Me(ctx context.Context) (*Profile, error) {
	var p Profile
	if err := c.Do(ctx, http.MethodGet, c.paths.Me, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ProfileFor fetches the profile of the session src without rebinding c.
func (c *Client) ProfileFor(ctx context.Context, src CredentialSource) (*Profile, error) {
	return c.WithSession(src).Me(ctx)
}
