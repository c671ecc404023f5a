package handler

import (
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/go-storefront-gateway/internal/application/confirmation"
)

//go:embed templates/*.html
var templateFS embed.FS

// PagesHandler serves everything that is not an API route. With a frontend URL it proxies to the
// storefront; otherwise it renders the built-in landing and auth pages.
type PagesHandler struct {
	proxy http.Handler
	tmpl  *template.Template
	data  pageData
}

type pageData struct {
	EntryPath   string
	ConfirmPath string
	SignInPath  string

	// Used by the auth page when the confirm endpoint answers with something other than an attempt.
	FallbackMessage string
	RedirectAfterMS int64
}

func NewPagesHandler(frontendURL, entryPath string) (*PagesHandler, error) {
	h := &PagesHandler{data: pageData{
		EntryPath:   entryPath,
		ConfirmPath: "/api/auth/confirm",
		SignInPath:  "/api/auth/signin",

		FallbackMessage: confirmation.MessageGeneric,
		RedirectAfterMS: confirmation.DefaultRedirectDelay.Milliseconds(),
	}}
	if frontendURL != "" {
		target, err := url.Parse(frontendURL)
		if err != nil || target.Host == "" {
			return nil, fmt.Errorf("invalid frontend url %q", frontendURL)
		}
		h.proxy = httputil.NewSingleHostReverseProxy(target)
		return h, nil
	}
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse page templates: %w", err)
	}
	h.tmpl = tmpl
	return h, nil
}

func (h *PagesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.proxy != nil {
		h.proxy.ServeHTTP(w, r)
		return
	}
	switch r.URL.Path {
	case "/":
		h.render(w, "home")
	case h.data.EntryPath:
		h.render(w, "auth")
	default:
		http.NotFound(w, r)
	}
}

func (h *PagesHandler) render(w http.ResponseWriter, name string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.tmpl.ExecuteTemplate(w, name, h.data); err != nil {
		slog.Error("render page", "page", name, "err", err)
	}
}
