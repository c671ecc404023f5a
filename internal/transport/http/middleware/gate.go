package middleware

import (
	"net/http"
	"regexp"

	"github.com/go-storefront-gateway/internal/domain"
)

// Decision is the gate's verdict for one navigation.
type Decision int

const (
	// Pass lets an authenticated or allow-listed request through.
	Pass Decision = iota
	// Excluded marks infrastructure and static-asset paths the gate never looks at.
	Excluded
	// Redirect sends the request to the entry path.
	Redirect
)

func (d Decision) String() string {
	switch d {
	case Pass:
		return "pass"
	case Excluded:
		return "excluded"
	case Redirect:
		return "redirect"
	}
	return "unknown"
}

// TokenVerifier optionally rejects tokens that are present but not valid.
type TokenVerifier interface {
	Valid(token string) bool
}

// GateConfig configures Gate.
type GateConfig struct {
	EntryPath string
	// AllowList holds exact paths that need no credential. Defaults to "/" and EntryPath.
	AllowList []string
	// Verifier, when set, treats tokens failing verification as absent. Nil checks presence only.
	Verifier TokenVerifier
}

var excludedPaths = regexp.MustCompile(
	`^/(api|_next/static|_next/image|static|assets)(/|$)` +
		`|^/(favicon\.ico|robots\.txt|sitemap\.xml)$` +
		`|\.(svg|png|jpe?g|gif|webp|ico|css|js|map|pdf|txt|xml|woff2?)$`,
)

// Gatekeeper decides whether a navigation may reach a page.
type Gatekeeper struct {
	entry    string
	allow    map[string]bool
	verifier TokenVerifier
}

func NewGatekeeper(cfg GateConfig) *Gatekeeper {
	if cfg.EntryPath == "" {
		cfg.EntryPath = "/auth"
	}
	allowList := cfg.AllowList
	if len(allowList) == 0 {
		allowList = []string{"/", cfg.EntryPath}
	}
	g := &Gatekeeper{entry: cfg.EntryPath, allow: make(map[string]bool, len(allowList)), verifier: cfg.Verifier}
	for _, p := range allowList {
		g.allow[p] = true
	}
	return g
}

// EntryPath is where denied navigations are sent.
func (g *Gatekeeper) EntryPath() string { return g.entry }

// Decide looks only at the path and whether an access token is present.
func (g *Gatekeeper) Decide(path, token string) Decision {
	if excludedPaths.MatchString(path) {
		return Excluded
	}
	if g.allow[path] {
		return Pass
	}
	if token == "" {
		return Redirect
	}
	if g.verifier != nil && !g.verifier.Valid(token) {
		return Redirect
	}
	return Pass
}

// Handler redirects unauthenticated navigations to the entry path. The original destination is
// not carried along.
func (g *Gatekeeper) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var token string
		if c, err := r.Cookie(domain.CookieAccessToken); err == nil {
			token = c.Value
		}
		if g.Decide(r.URL.Path, token) == Redirect {
			http.Redirect(w, r, g.entry, http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Gate returns the gate as middleware.
func Gate(cfg GateConfig) func(http.Handler) http.Handler {
	return NewGatekeeper(cfg).Handler
}
