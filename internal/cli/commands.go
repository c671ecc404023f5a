package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-storefront-gateway/internal/application/account"
	"github.com/go-storefront-gateway/internal/application/confirmation"
	"github.com/go-storefront-gateway/internal/domain"
	"github.com/go-storefront-gateway/internal/infrastructure/backend"
	"github.com/go-storefront-gateway/internal/infrastructure/dynamo"
	"github.com/go-storefront-gateway/internal/pkg/validate"
	"github.com/go-storefront-gateway/internal/transport/http/middleware"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

func (a *app) confirmCmd() *cobra.Command {
	var wait bool
	cmd := &cobra.Command{
		Use:   "confirm <link>",
		Short: "Confirm an email from a confirmation link",
		Long: `Runs the confirmation flow for a link such as
https://shop.example/auth#access_token=...&type=signup and stores the resulting session.
On failure the command waits for the redirect delay and reports the redirect target.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b := a.backend()
			opts := confirmation.Options{
				EntryPath:     a.cfg.EntryPath,
				RedirectDelay: a.cfg.ConfirmRedirectDelay,
			}
			if a.cfg.AuditEnabled {
				rec, err := a.openRecorder(cmd.Context())
				if err != nil {
					a.logger.Warn("audit unavailable, attempt not recorded", zap.Error(err))
				} else {
					opts.Recorder = rec
				}
			}
			flow := confirmation.NewFlow(b, b, opts)
			redirected := make(chan string, 1)
			page := confirmation.NewPage(flow, func(path string) { redirected <- path })
			defer page.Leave()

			attempt := page.Enter(cmd.Context(), args[0], a.session())
			a.logger.Debug("confirmation finished",
				zap.String("attempt_id", attempt.AttemptID),
				zap.String("status", string(attempt.Status)))
			fmt.Fprintln(cmd.OutOrStdout(), attempt.Message)

			if attempt.Status != domain.ConfirmationFailed {
				return nil
			}
			if wait {
				select {
				case path := <-redirected:
					fmt.Fprintf(cmd.OutOrStdout(), "redirect: %s\n", path)
				case <-cmd.Context().Done():
				}
			}
			return errors.New("confirmation failed")
		},
	}
	cmd.Flags().BoolVar(&wait, "wait", true, "wait for the redirect after a failure")
	return cmd
}

func (a *app) signinCmd() *cobra.Command {
	var req backend.SignInRequest
	cmd := &cobra.Command{
		Use:   "signin",
		Short: "Sign in and store the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validate.Struct(req); err != nil {
				return err
			}
			res, err := account.NewService(a.backend()).SignIn(cmd.Context(), req, a.session())
			if err != nil {
				return err
			}
			a.logger.Info("signed in", zap.String("user_id", res.UserID))
			fmt.Fprintf(cmd.OutOrStdout(), "signed in as %s\n", res.UserID)
			return nil
		},
	}
	cmd.Flags().StringVar(&req.Email, "email", "", "account email")
	cmd.Flags().StringVar(&req.Password, "password", "", "account password")
	return cmd
}

type whoami struct {
	Authenticated bool             `yaml:"authenticated"`
	UserID        string           `yaml:"user_id,omitempty"`
	PendingEmail  string           `yaml:"pending_confirmation_email,omitempty"`
	Profile       *backend.Profile `yaml:"profile,omitempty"`
}

func (a *app) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			cur := account.NewService(a.backend()).Current(cmd.Context(), a.session())
			out, err := yaml.Marshal(whoami{
				Authenticated: cur.Authenticated,
				UserID:        cur.UserID,
				PendingEmail:  cur.PendingEmail,
				Profile:       cur.Profile,
			})
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			account.NewService(a.backend()).Logout(cmd.Context(), a.session())
			fmt.Fprintln(cmd.OutOrStdout(), "logged out")
			return nil
		},
	}
}

func (a *app) gateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "gate <path>",
		Short: "Show what the access gate decides for a path with the stored session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if !strings.HasPrefix(path, "/") {
				path = "/" + path
			}
			g := middleware.NewGatekeeper(middleware.GateConfig{EntryPath: a.cfg.EntryPath})
			d := g.Decide(path, a.session().Get(domain.CookieAccessToken))
			if d == middleware.Redirect {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s -> %s\n", d, path, g.EntryPath())
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", d, path)
			return nil
		},
	}
}

func (a *app) attemptsCmd() *cobra.Command {
	var limit int32
	cmd := &cobra.Command{
		Use:   "attempts <user-id>",
		Short: "List recorded confirmation attempts of a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := dynamo.NewClient(cmd.Context(), a.cfg)
			if err != nil {
				return err
			}
			repo := dynamo.NewAttemptRepo(client, a.cfg.DynamoTables.ConfirmationAttempts, a.cfg.AuditRetention)
			items, err := repo.ListBySubject(cmd.Context(), args[0], limit)
			if err != nil {
				return fmt.Errorf("list attempts: %w", err)
			}
			out, err := yaml.Marshal(items)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
	cmd.Flags().Int32Var(&limit, "limit", 20, "maximum attempts to show")
	return cmd
}
