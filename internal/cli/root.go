// Package cli implements storefrontctl, an operator tool that drives the gateway's session,
// confirmation and gate logic from a terminal. The session lives in a YAML file instead of
// browser cookies.
package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-storefront-gateway/internal/application/confirmation"
	"github.com/go-storefront-gateway/internal/config"
	"github.com/go-storefront-gateway/internal/infrastructure/backend"
	"github.com/go-storefront-gateway/internal/infrastructure/dynamo"
	"github.com/go-storefront-gateway/internal/session"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type app struct {
	cfg *config.Config

	backendURL string
	statePath  string
	verbose    bool

	logger *zap.Logger

	// openRecorder builds the audit recorder used when AuditEnabled is set.
	openRecorder func(ctx context.Context) (confirmation.Recorder, error)
}

// NewRootCommand builds the storefrontctl command tree around cfg.
func NewRootCommand(cfg *config.Config) *cobra.Command {
	a := &app{cfg: cfg}
	a.openRecorder = a.dynamoRecorder
	return a.rootCommand()
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "storefrontctl",
		Short:         "Inspect and drive storefront sessions from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			zc := zap.NewProductionConfig()
			zc.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
			if a.verbose {
				zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			logger, err := zc.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			a.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&a.backendURL, "backend", a.cfg.BackendURL, "auth backend base URL")
	root.PersistentFlags().StringVar(&a.statePath, "state", defaultStatePath(), "session file")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		a.confirmCmd(),
		a.signinCmd(),
		a.whoamiCmd(),
		a.logoutCmd(),
		a.gateCmd(),
		a.attemptsCmd(),
	)
	return root
}

func defaultStatePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".storefrontctl-session.yaml"
	}
	return filepath.Join(home, ".storefrontctl", "session.yaml")
}

func (a *app) session() *session.Session {
	return session.New(session.NewFileStore(a.statePath), a.cfg.SessionTTL)
}

func (a *app) backend() *backend.Client {
	return backend.New(a.backendURL, &http.Client{Timeout: a.cfg.BackendTimeout}, backend.Paths{
		Verify:  a.cfg.BackendVerifyPath,
		Session: a.cfg.BackendSessionPath,
	})
}

func (a *app) dynamoRecorder(ctx context.Context) (confirmation.Recorder, error) {
	client, err := dynamo.NewClient(ctx, a.cfg)
	if err != nil {
		return nil, err
	}
	return dynamo.NewAttemptRepo(client, a.cfg.DynamoTables.ConfirmationAttempts, a.cfg.AuditRetention), nil
}
