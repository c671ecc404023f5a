// Package confirmation turns an email-confirmation link into a signed-in session.
//
// Flow.Run is a one-shot state machine: an attempt starts pending and moves once to succeeded or
// failed. Page wraps a Flow for one page instance and owns the delayed redirect that follows a
// failure.
package confirmation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-storefront-gateway/internal/domain"
	"github.com/go-storefront-gateway/internal/infrastructure/backend"
	"github.com/go-storefront-gateway/internal/pkg/id"
)

const (
	MessageConfirmed = "Your email has been confirmed."
	MessageGeneric   = "We could not confirm your email. Please try signing in again."

	DefaultRedirectDelay = 2300 * time.Millisecond
	DefaultEntryPath     = "/auth"
)

// Verifier accepts or rejects a confirmation-link token.
type Verifier interface {
	VerifyEmail(ctx context.Context, token string) error
}

// Establisher exchanges a verified token for a session credential.
type Establisher interface {
	EstablishSession(ctx context.Context, token string) (domain.Credential, error)
}

// SessionWriter is the part of the session the flow mutates.
type SessionWriter interface {
	Set(token, subjectID string)
	Clear(key string)
}

// Recorder persists terminal attempts. Optional.
type Recorder interface {
	Record(ctx context.Context, a *domain.ConfirmationAttempt) error
}

// Options configures a Flow. Zero values take the package defaults.
type Options struct {
	EntryPath     string
	RedirectDelay time.Duration
	Recorder      Recorder
}

// Flow runs confirmation attempts.
type Flow struct {
	verifier    Verifier
	establisher Establisher
	recorder    Recorder
	entryPath   string
	delay       time.Duration
	now         func() time.Time
}

func NewFlow(verifier Verifier, establisher Establisher, opts Options) *Flow {
	f := &Flow{
		verifier:    verifier,
		establisher: establisher,
		recorder:    opts.Recorder,
		entryPath:   opts.EntryPath,
		delay:       opts.RedirectDelay,
		now:         time.Now,
	}
	if f.entryPath == "" {
		f.entryPath = DefaultEntryPath
	}
	if f.delay <= 0 {
		f.delay = DefaultRedirectDelay
	}
	return f
}

// Run executes one attempt for fragment and returns it in a terminal state. The link token is
// used only as a one-call bearer override; sess is written only once the backend has both
// verified the token and established a session.
func (f *Flow) Run(ctx context.Context, fragment string, sess SessionWriter) *domain.ConfirmationAttempt {
	now := f.now().UTC()
	a := &domain.ConfirmationAttempt{
		AttemptID: id.NewAt(now),
		Status:    domain.ConfirmationPending,
		CreatedAt: now,
	}
	link := ParseFragment(fragment)
	a.LinkType = link.Type

	creds, err := f.confirm(ctx, link, sess)
	if err != nil {
		f.fail(a, err)
	} else {
		a.Status = domain.ConfirmationSucceeded
		a.Message = MessageConfirmed
		a.SubjectID = creds.SubjectID
	}
	f.record(ctx, a)
	return a
}

func (f *Flow) confirm(ctx context.Context, link Link, sess SessionWriter) (domain.Credential, error) {
	if link.Type != domain.LinkTypeSignup || link.AccessToken == "" {
		if link.ErrorDescription != "" {
			return domain.Credential{}, &linkError{description: link.ErrorDescription}
		}
		return domain.Credential{}, domain.ErrMalformedLink
	}
	if err := f.verifier.VerifyEmail(ctx, link.AccessToken); err != nil {
		return domain.Credential{}, fmt.Errorf("verify email: %w", err)
	}
	// The address is confirmed from here on, even if signing in below fails.
	sess.Clear(domain.CookiePendingConfirmation)

	creds, err := f.establisher.EstablishSession(ctx, link.AccessToken)
	if err != nil {
		return domain.Credential{}, fmt.Errorf("establish session: %w", err)
	}
	sess.Set(creds.Token, creds.SubjectID)
	return creds, nil
}

func (f *Flow) fail(a *domain.ConfirmationAttempt, err error) {
	a.Status = domain.ConfirmationFailed
	a.Message = failureMessage(err)
	a.RedirectTo = f.entryPath
	a.RedirectAfter = f.delay
	slog.Info("email confirmation failed", "attempt_id", a.AttemptID, "type", a.LinkType, "err", err)
}

func (f *Flow) record(ctx context.Context, a *domain.ConfirmationAttempt) {
	if f.recorder == nil {
		return
	}
	// recording outlives a cancelled request
	if err := f.recorder.Record(context.WithoutCancel(ctx), a); err != nil {
		slog.Warn("failed to record confirmation attempt", "attempt_id", a.AttemptID, "err", err)
	}
}

// linkError is a link the backend issued with an error in place of a token.
type linkError struct {
	description string
}

func (e *linkError) Error() string { return e.description }

func (e *linkError) Unwrap() error { return domain.ErrMalformedLink }

// failureMessage picks the user-facing text for err.
func failureMessage(err error) string {
	var le *linkError
	if errors.As(err, &le) {
		return le.description
	}
	if errors.Is(err, domain.ErrMalformedLink) {
		return domain.ErrMalformedLink.Error()
	}
	var be *backend.Error
	if errors.As(err, &be) && be.Message != "" {
		return be.Message
	}
	return MessageGeneric
}
