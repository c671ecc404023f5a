package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-storefront-gateway/internal/domain"
	"github.com/stretchr/testify/assert"
)

func okHandler(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }

func serveGate(cfg GateConfig, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	Gate(cfg)(http.HandlerFunc(okHandler)).ServeHTTP(rr, req)
	return rr
}

func withToken(req *http.Request, token string) *http.Request {
	req.AddCookie(&http.Cookie{Name: domain.CookieAccessToken, Value: token})
	return req
}

type stubVerifier bool

func (s stubVerifier) Valid(string) bool { return bool(s) }

func TestGate_ProtectedPath_NoCookie_Redirects(t *testing.T) {
	rr := serveGate(GateConfig{EntryPath: "/auth"}, httptest.NewRequest(http.MethodGet, "/profile", nil))
	assert.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "/auth", rr.Header().Get("Location"))
}

func TestGate_DiscardsOriginalDestination(t *testing.T) {
	rr := serveGate(GateConfig{EntryPath: "/auth"}, httptest.NewRequest(http.MethodGet, "/checkout?plan=weekly", nil))
	assert.Equal(t, "/auth", rr.Header().Get("Location"))
}

func TestGate_EmptyCookie_Redirects(t *testing.T) {
	req := withToken(httptest.NewRequest(http.MethodGet, "/cart", nil), "")
	assert.Equal(t, http.StatusFound, serveGate(GateConfig{}, req).Code)
}

func TestGate_AllowListedPaths_PassWithoutCookie(t *testing.T) {
	for _, path := range []string{"/", "/auth"} {
		rr := serveGate(GateConfig{EntryPath: "/auth"}, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rr.Code, path)
	}
}

func TestGate_AllowListedPaths_PassWithCookie(t *testing.T) {
	req := withToken(httptest.NewRequest(http.MethodGet, "/auth", nil), "garbage")
	assert.Equal(t, http.StatusOK, serveGate(GateConfig{Verifier: stubVerifier(false)}, req).Code)
}

func TestGate_AnyTokenPasses(t *testing.T) {
	req := withToken(httptest.NewRequest(http.MethodGet, "/profile", nil), "not-even-a-jwt")
	assert.Equal(t, http.StatusOK, serveGate(GateConfig{}, req).Code)
}

func TestGate_VerifierRejects_Redirects(t *testing.T) {
	req := withToken(httptest.NewRequest(http.MethodGet, "/profile", nil), "forged")
	assert.Equal(t, http.StatusFound, serveGate(GateConfig{Verifier: stubVerifier(false)}, req).Code)
}

func TestGate_ExcludedPaths_AlwaysPass(t *testing.T) {
	paths := []string{
		"/api/auth/confirm",
		"/api",
		"/_next/static/chunks/main.js",
		"/_next/image?url=%2Fmeal.png",
		"/favicon.ico",
		"/robots.txt",
		"/sitemap.xml",
		"/images/menu/thali.jpg",
		"/hero.webp",
		"/docs/terms.pdf",
	}
	for _, path := range paths {
		rr := serveGate(GateConfig{}, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rr.Code, path)
	}
}

func TestGatekeeper_Decide(t *testing.T) {
	g := NewGatekeeper(GateConfig{EntryPath: "/auth"})
	tests := []struct {
		path, token string
		want        Decision
	}{
		{"/", "", Pass},
		{"/auth", "", Pass},
		{"/auth/reset", "", Redirect},
		{"/profile", "", Redirect},
		{"/profile", "tok", Pass},
		{"/apiary", "", Redirect},
		{"/api/session", "", Excluded},
		{"/logo.svg", "", Excluded},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, g.Decide(tc.path, tc.token), tc.path)
	}
}

func TestGatekeeper_CustomAllowList(t *testing.T) {
	g := NewGatekeeper(GateConfig{EntryPath: "/login", AllowList: []string{"/login", "/menus"}})
	assert.Equal(t, Pass, g.Decide("/menus", ""))
	assert.Equal(t, Redirect, g.Decide("/", ""))
	assert.Equal(t, "/login", g.EntryPath())
}
