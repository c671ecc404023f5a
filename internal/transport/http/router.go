package http

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-storefront-gateway/internal/application/account"
	"github.com/go-storefront-gateway/internal/application/confirmation"
	"github.com/go-storefront-gateway/internal/config"
	"github.com/go-storefront-gateway/internal/domain"
	"github.com/go-storefront-gateway/internal/session"
	"github.com/go-storefront-gateway/internal/transport/http/handler"
	appmiddleware "github.com/go-storefront-gateway/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	Backend Backend
	// Recorder and GateVerifier are optional.
	Recorder     AttemptRecorder
	GateVerifier TokenVerifier
}

// NewRouter builds and returns the gateway router.
func NewRouter(cfg *config.Config, deps *Deps) (http.Handler, error) {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", domain.HeaderAccessToken, domain.HeaderUserID},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// 5 requests/second, burst of 10 on the auth endpoints.
	authRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	sessions := handler.CookieSessions(session.CookieOptions{
		Domain:   cfg.CookieDomain,
		Secure:   cfg.CookieSecure,
		HTTPOnly: cfg.CookieHTTPOnly,
	}, cfg.SessionTTL)

	opts := confirmation.Options{EntryPath: cfg.EntryPath, RedirectDelay: cfg.ConfirmRedirectDelay}
	if deps.Recorder != nil {
		opts.Recorder = deps.Recorder
	}
	flow := confirmation.NewFlow(deps.Backend, deps.Backend, opts)
	accountSvc := account.NewService(deps.Backend)

	healthH := handler.NewHealthHandler()
	confirmH := handler.NewConfirmHandler(flow, sessions)
	accountH := handler.NewAccountHandler(accountSvc, sessions)
	pagesH, err := handler.NewPagesHandler(cfg.FrontendURL, cfg.EntryPath)
	if err != nil {
		return nil, fmt.Errorf("pages: %w", err)
	}

	gateCfg := appmiddleware.GateConfig{EntryPath: cfg.EntryPath}
	if deps.GateVerifier != nil {
		gateCfg.Verifier = deps.GateVerifier
	}

	r.Get("/health-check/{action}", healthH.Ping)
	r.Post("/health-check/{action}", healthH.Ping)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Use(authRL.Limit)
			r.Post("/confirm", confirmH.Confirm)
			r.Post("/signup", accountH.SignUp)
			r.Post("/signin", accountH.SignIn)
			r.Post("/logout", accountH.Logout)
		})
		r.Get("/session", accountH.Current)
	})

	// Everything else is a storefront page behind the access gate.
	r.With(appmiddleware.Gate(gateCfg)).Handle("/*", pagesH)

	return r, nil
}
