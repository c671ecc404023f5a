package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-storefront-gateway/internal/config"
	"github.com/go-storefront-gateway/internal/infrastructure/backend"
	"github.com/go-storefront-gateway/internal/infrastructure/dynamo"
	jwtinfra "github.com/go-storefront-gateway/internal/infrastructure/jwt"
	transporthttp "github.com/go-storefront-gateway/internal/transport/http"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()

	client := backend.New(cfg.BackendURL, &http.Client{Timeout: cfg.BackendTimeout}, backend.Paths{
		Verify:  cfg.BackendVerifyPath,
		Session: cfg.BackendSessionPath,
	})
	deps := &transporthttp.Deps{Backend: client}

	// Gate token verification (optional; the gate checks presence only without it).
	if cfg.GateVerifyTokens {
		p, err := jwtinfra.NewProvider(cfg.JWTPublicKeyPath)
		if err != nil {
			log.Fatalf("gate token verification enabled but key unavailable: %v", err)
		}
		deps.GateVerifier = p
	}

	// Confirmation audit trail (optional).
	if cfg.AuditEnabled {
		dynamoClient, err := dynamo.NewClient(context.Background(), cfg)
		if err != nil {
			log.Printf("WARN: audit disabled: %v", err)
		} else {
			dynamo.Bootstrap(context.Background(), dynamoClient, cfg.DynamoTables)
			deps.Recorder = dynamo.NewAttemptRepo(dynamoClient, cfg.DynamoTables.ConfirmationAttempts, cfg.AuditRetention)
		}
	}

	router, err := transporthttp.NewRouter(cfg, deps)
	if err != nil {
		log.Fatalf("router: %v", err)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Gateway starting on :%s (env=%s, backend=%s)", cfg.AppPort, cfg.AppEnv, cfg.BackendURL)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down gateway...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Gateway stopped")
}
