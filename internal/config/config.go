package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort string
	AppEnv  string

	BackendURL         string
	BackendTimeout     time.Duration
	BackendVerifyPath  string
	BackendSessionPath string
	FrontendURL        string // empty serves the built-in pages

	EntryPath            string
	SessionTTL           time.Duration
	CookieDomain         string
	CookieSecure         bool
	CookieHTTPOnly       bool
	ConfirmRedirectDelay time.Duration
	AllowedOrigins       []string // CORS allowed origins

	GateVerifyTokens bool
	JWTPublicKeyPath string

	AuditEnabled   bool
	AuditRetention time.Duration
	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	ConfirmationAttempts string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort: getEnv("APP_PORT", "3000"),
		AppEnv:  getEnv("APP_ENV", "development"),

		BackendURL:         strings.TrimRight(getEnv("BACKEND_URL", "http://localhost:8080"), "/"),
		BackendTimeout:     getEnvDuration("BACKEND_TIMEOUT", 15*time.Second),
		BackendVerifyPath:  getEnv("BACKEND_VERIFY_PATH", "/auth/verify"),
		BackendSessionPath: getEnv("BACKEND_SESSION_PATH", "/auth/session"),
		FrontendURL:        getEnv("FRONTEND_URL", ""),

		EntryPath:            getEnv("ENTRY_PATH", "/auth"),
		SessionTTL:           time.Duration(getEnvInt("SESSION_TTL_DAYS", 7)) * 24 * time.Hour,
		CookieDomain:         getEnv("COOKIE_DOMAIN", ""),
		CookieSecure:         getEnvBool("COOKIE_SECURE", false),
		CookieHTTPOnly:       getEnvBool("COOKIE_HTTP_ONLY", false),
		ConfirmRedirectDelay: getEnvDuration("CONFIRM_REDIRECT_DELAY", 2300*time.Millisecond),
		AllowedOrigins:       strings.Split(getEnv("ALLOWED_ORIGINS", "http://localhost:3000"), ","),

		GateVerifyTokens: getEnvBool("GATE_VERIFY_TOKENS", false),
		JWTPublicKeyPath: getEnv("JWT_PUBLIC_KEY_PATH", ""),

		AuditEnabled:   getEnvBool("AUDIT_ENABLED", false),
		AuditRetention: time.Duration(getEnvInt("AUDIT_RETENTION_DAYS", 30)) * 24 * time.Hour,
		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			ConfirmationAttempts: getEnv("DYNAMO_TABLE_CONFIRMATION_ATTEMPTS", "confirmation_attempts"),
		},
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

// getEnvDuration accepts Go duration strings ("2.3s") or bare milliseconds ("2300").
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if ms, err := strconv.Atoi(v); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	return fallback
}
