package confirmation

import (
	"context"
	"sync"
	"time"

	"github.com/go-storefront-gateway/internal/domain"
)

// Page is one instance of the confirmation page. The flow runs at most once per Page; entering
// the same link again needs a new Page.
type Page struct {
	flow     *Flow
	redirect func(path string)

	once      sync.Once
	mu        sync.Mutex
	attempt   *domain.ConfirmationAttempt
	timer     *time.Timer
	left      bool
	stopWatch func() bool

	afterFunc func(d time.Duration, f func()) *time.Timer
}

// NewPage returns a page that calls redirect when a failed attempt's delay elapses.
func NewPage(flow *Flow, redirect func(path string)) *Page {
	return &Page{flow: flow, redirect: redirect, afterFunc: time.AfterFunc}
}

// Enter runs the flow on the first call and returns that attempt on every call. A failure
// schedules the redirect; it is cancelled by Leave or when ctx ends.
func (p *Page) Enter(ctx context.Context, fragment string, sess SessionWriter) *domain.ConfirmationAttempt {
	p.once.Do(func() {
		a := p.flow.Run(ctx, fragment, sess)

		p.mu.Lock()
		defer p.mu.Unlock()
		p.attempt = a
		if a.Status != domain.ConfirmationFailed || p.left || p.redirect == nil {
			return
		}
		target := a.RedirectTo
		p.timer = p.afterFunc(a.RedirectAfter, func() { p.fire(target) })
		p.stopWatch = context.AfterFunc(ctx, p.Leave)
	})
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.attempt
}

// Attempt returns the attempt of this page, or nil before Enter.
func (p *Page) Attempt() *domain.ConfirmationAttempt {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.attempt
}

// Leave tears the page down and cancels a pending redirect.
func (p *Page) Leave() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.left = true
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	if p.stopWatch != nil {
		p.stopWatch()
		p.stopWatch = nil
	}
}

func (p *Page) fire(target string) {
	p.mu.Lock()
	if p.left {
		p.mu.Unlock()
		return
	}
	p.left = true
	p.timer = nil
	if p.stopWatch != nil {
		p.stopWatch()
		p.stopWatch = nil
	}
	p.mu.Unlock()
	p.redirect(target)
}
