package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-storefront-gateway/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticSource struct{ creds domain.Credential }

func (s staticSource) Credentials() domain.Credential { return s.creds }

// recorder captures the requests a fake backend receives.
type recorder struct {
	mu   sync.Mutex
	reqs []*http.Request
}

func (r *recorder) add(req *http.Request) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reqs = append(r.reqs, req)
}

func (r *recorder) last(t *testing.T) *http.Request {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	require.NotEmpty(t, r.reqs)
	return r.reqs[len(r.reqs)-1]
}

func newBackend(t *testing.T, h http.HandlerFunc) (*httptest.Server, *recorder) {
	t.Helper()
	rec := &recorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.add(r.Clone(context.Background()))
		h(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv, rec
}

func TestDo_AttachesBoundCredentials(t *testing.T) {
	srv, rec := newBackend(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	c := New(srv.URL, srv.Client(), Paths{}).
		WithSession(staticSource{domain.Credential{Token: "tok", SubjectID: "u1"}})

	require.NoError(t, c.Do(context.Background(), http.MethodGet, "/menus", nil, nil))

	req := rec.last(t)
	assert.Equal(t, "tok", req.Header.Get(domain.HeaderAccessToken))
	assert.Equal(t, "u1", req.Header.Get(domain.HeaderUserID))
	assert.Empty(t, req.Header.Get("Authorization"))
	ck, err := req.Cookie(domain.CookieAccessToken)
	require.NoError(t, err)
	assert.Equal(t, "tok", ck.Value)
}

func TestDo_NoSession_NoHeaders(t *testing.T) {
	srv, rec := newBackend(t, func(w http.ResponseWriter, _ *http.Request) {})
	c := New(srv.URL, srv.Client(), Paths{}).WithSession(staticSource{})

	require.NoError(t, c.Do(context.Background(), http.MethodGet, "/menus", nil, nil))

	req := rec.last(t)
	assert.Empty(t, req.Header.Get(domain.HeaderAccessToken))
	assert.Empty(t, req.Header.Get(domain.HeaderUserID))
}

func TestDo_ReadsCredentialsAtSendTime(t *testing.T) {
	srv, rec := newBackend(t, func(w http.ResponseWriter, _ *http.Request) {})
	src := &mutableSource{}
	c := New(srv.URL, srv.Client(), Paths{}).WithSession(src)

	src.creds = domain.Credential{Token: "first"}
	require.NoError(t, c.Do(context.Background(), http.MethodGet, "/a", nil, nil))
	src.creds = domain.Credential{Token: "second"}
	require.NoError(t, c.Do(context.Background(), http.MethodGet, "/b", nil, nil))

	assert.Equal(t, "second", rec.last(t).Header.Get(domain.HeaderAccessToken))
}

type mutableSource struct{ creds domain.Credential }

func (m *mutableSource) Credentials() domain.Credential { return m.creds }

func TestDo_BearerOverride_IgnoresBoundSession(t *testing.T) {
	srv, rec := newBackend(t, func(w http.ResponseWriter, _ *http.Request) {})
	c := New(srv.URL, srv.Client(), Paths{}).
		WithSession(staticSource{domain.Credential{Token: "signed-in", SubjectID: "u1"}})

	require.NoError(t, c.Do(context.Background(), http.MethodGet, "/x", nil, nil, WithBearer("link-token")))

	req := rec.last(t)
	assert.Equal(t, "link-token", req.Header.Get(domain.HeaderAccessToken))
	assert.Empty(t, req.Header.Get(domain.HeaderUserID))
}

func TestDo_Non2xx_ReturnsError(t *testing.T) {
	srv, _ := newBackend(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Token has expired or is invalid"}`))
	})
	c := New(srv.URL, srv.Client(), Paths{})

	err := c.VerifyEmail(context.Background(), "xyz")

	var be *Error
	require.ErrorAs(t, err, &be)
	assert.Equal(t, http.StatusUnauthorized, be.Status)
	assert.Equal(t, "Token has expired or is invalid", be.Error())
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestDo_Non2xx_EmptyBody(t *testing.T) {
	srv, _ := newBackend(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	c := New(srv.URL, srv.Client(), Paths{})

	err := c.VerifyEmail(context.Background(), "xyz")

	var be *Error
	require.ErrorAs(t, err, &be)
	assert.Empty(t, be.Message)
	assert.True(t, errors.Is(err, domain.ErrVerificationRejected))
}

func TestDo_TransportErrorPassesThrough(t *testing.T) {
	srv, _ := newBackend(t, func(w http.ResponseWriter, _ *http.Request) {})
	c := New(srv.URL, srv.Client(), Paths{})
	srv.Close()

	err := c.VerifyEmail(context.Background(), "xyz")
	require.Error(t, err)
	var be *Error
	assert.False(t, errors.As(err, &be))
}

func TestVerifyEmail_UsesConfiguredPath(t *testing.T) {
	srv, rec := newBackend(t, func(w http.ResponseWriter, _ *http.Request) {})
	c := New(srv.URL, srv.Client(), Paths{Verify: "/v1/confirm"})

	require.NoError(t, c.VerifyEmail(context.Background(), "abc123"))

	req := rec.last(t)
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "/v1/confirm", req.URL.Path)
	assert.Equal(t, "abc123", req.Header.Get(domain.HeaderAccessToken))
}

func TestEstablishSession_UsesResponse(t *testing.T) {
	srv, rec := newBackend(t, func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(AuthResult{AccessToken: "session-token", UserID: "u7"})
	})
	c := New(srv.URL, srv.Client(), Paths{})

	creds, err := c.EstablishSession(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, domain.Credential{Token: "session-token", SubjectID: "u7"}, creds)
	assert.Equal(t, "abc123", rec.last(t).Header.Get(domain.HeaderAccessToken))
}

func TestEstablishSession_FallsBackToTokenSubject(t *testing.T) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "u8"}).
		SignedString([]byte("secret"))
	require.NoError(t, err)
	srv, _ := newBackend(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})
	c := New(srv.URL, srv.Client(), Paths{})

	creds, err := c.EstablishSession(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, token, creds.Token)
	assert.Equal(t, "u8", creds.SubjectID)
}

func TestEstablishSession_NoSubject(t *testing.T) {
	srv, _ := newBackend(t, func(w http.ResponseWriter, _ *http.Request) {})
	c := New(srv.URL, srv.Client(), Paths{})

	_, err := c.EstablishSession(context.Background(), "opaque")
	assert.True(t, errors.Is(err, domain.ErrSessionNotEstablished))
}

func TestSignIn_PostsBody(t *testing.T) {
	var got SignInRequest
	srv, _ := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		_ = json.NewEncoder(w).Encode(AuthResult{AccessToken: "t", UserID: "u1"})
	})
	c := New(srv.URL, srv.Client(), Paths{})

	res, err := c.SignIn(context.Background(), SignInRequest{Email: "a@b.com", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", got.Email)
	assert.Equal(t, "t", res.AccessToken)
}

func TestError_UnwrapMapsStatuses(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, domain.ErrUnauthorized},
		{http.StatusForbidden, domain.ErrUnauthorized},
		{http.StatusNotFound, domain.ErrNotFound},
		{http.StatusBadRequest, domain.ErrBadRequest},
		{http.StatusUnprocessableEntity, domain.ErrBadRequest},
		{http.StatusConflict, domain.ErrVerificationRejected},
		{http.StatusInternalServerError, domain.ErrVerificationRejected},
	}
	for _, tc := range tests {
		err := error(&Error{Status: tc.status})
		assert.True(t, errors.Is(err, tc.want), "status %d", tc.status)
	}
}
