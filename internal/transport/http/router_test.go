package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-storefront-gateway/internal/config"
	"github.com/go-storefront-gateway/internal/domain"
	"github.com/go-storefront-gateway/internal/infrastructure/backend"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubBackend struct {
	verifyErr error
}

func (s *stubBackend) VerifyEmail(context.Context, string) error { return s.verifyErr }

func (s *stubBackend) EstablishSession(_ context.Context, token string) (domain.Credential, error) {
	return domain.Credential{Token: token, SubjectID: "u1"}, nil
}

func (s *stubBackend) SignUp(context.Context, backend.SignUpRequest) (*backend.AuthResult, error) {
	return &backend.AuthResult{UserID: "u1"}, nil
}

func (s *stubBackend) SignIn(context.Context, backend.SignInRequest) (*backend.AuthResult, error) {
	return &backend.AuthResult{AccessToken: "tok", UserID: "u1"}, nil
}

func (s *stubBackend) ProfileFor(_ context.Context, src backend.CredentialSource) (*backend.Profile, error) {
	return &backend.Profile{UserID: src.Credentials().SubjectID}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		EntryPath:            "/auth",
		SessionTTL:           7 * 24 * time.Hour,
		ConfirmRedirectDelay: 2300 * time.Millisecond,
		AllowedOrigins:       []string{"http://localhost:3000"},
	}
}

func newTestRouter(t *testing.T, b *stubBackend) http.Handler {
	t.Helper()
	h, err := NewRouter(testConfig(), &Deps{Backend: b})
	require.NoError(t, err)
	return h
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestRouter_ProtectedPage_RedirectsToEntry(t *testing.T) {
	rr := serve(newTestRouter(t, &stubBackend{}), httptest.NewRequest(http.MethodGet, "/profile", nil))
	assert.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "/auth", rr.Header().Get("Location"))
}

func TestRouter_EntryAndLanding_Served(t *testing.T) {
	h := newTestRouter(t, &stubBackend{})
	for _, path := range []string{"/", "/auth"} {
		rr := serve(h, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rr.Code, path)
	}
}

func TestRouter_ProtectedPage_WithCookie_ReachesPages(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	req.AddCookie(&http.Cookie{Name: domain.CookieAccessToken, Value: "tok"})
	rr := serve(newTestRouter(t, &stubBackend{}), req)
	// Built-in pages have no /profile; the gate let it through.
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestRouter_HealthCheck(t *testing.T) {
	rr := serve(newTestRouter(t, &stubBackend{}), httptest.NewRequest(http.MethodGet, "/health-check/ping", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "pong")
}

func TestRouter_Confirm_MalformedLink(t *testing.T) {
	body, _ := json.Marshal(map[string]string{"fragment": "#type=signup"})
	req := httptest.NewRequest(http.MethodPost, "/api/auth/confirm", bytes.NewReader(body))
	rr := serve(newTestRouter(t, &stubBackend{}), req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "2.3; url=/auth", rr.Header().Get("Refresh"))
	assert.Contains(t, rr.Body.String(), `"status":"failed"`)
}

func TestRouter_Confirm_Success_SetsCookies(t *testing.T) {
	body, _ := json.Marshal(map[string]string{"fragment": "#access_token=tok&type=signup"})
	req := httptest.NewRequest(http.MethodPost, "/api/auth/confirm", bytes.NewReader(body))
	rr := serve(newTestRouter(t, &stubBackend{}), req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"status":"succeeded"`)
	var names []string
	for _, c := range rr.Result().Cookies() {
		names = append(names, c.Name)
	}
	assert.Contains(t, names, domain.CookieAccessToken)
	assert.Contains(t, names, domain.CookieUserID)
}

func TestRouter_Session_Anonymous(t *testing.T) {
	rr := serve(newTestRouter(t, &stubBackend{}), httptest.NewRequest(http.MethodGet, "/api/session", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"authenticated":false`)
}

func TestRouter_CORSPreflight_AllowsCredentials(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/session", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	req.Header.Set("Access-Control-Request-Headers", domain.HeaderAccessToken)
	rr := serve(newTestRouter(t, &stubBackend{}), req)

	assert.Equal(t, "http://localhost:3000", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rr.Header().Get("Access-Control-Allow-Credentials"))
}

func TestRouter_SignIn_FormPost_SetsSessionAndRedirects(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/auth/signin", strings.NewReader("email=a%40b.com&password=secret123"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := serve(newTestRouter(t, &stubBackend{}), req)

	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/", rr.Header().Get("Location"))
	var token string
	for _, c := range rr.Result().Cookies() {
		if c.Name == domain.CookieAccessToken {
			token = c.Value
		}
	}
	assert.Equal(t, "tok", token)
}
