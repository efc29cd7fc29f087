// Package navguard keeps the embedded surface on its canonical page. Every
// other navigation is refused and handed to the host to open externally.
package navguard

import (
	"context"
	"fmt"
	"time"

	"chat-widget/internal/widgeterr"

	"github.com/rs/zerolog"
)

// SrcdocURL is the same-document placeholder the surface navigates to while
// its initial content is injected.
const SrcdocURL = "about:srcdoc"

const defaultOpenTimeout = 10 * time.Second

type Opener interface {
	Open(ctx context.Context, url string) error
}

type OpenerFunc func(ctx context.Context, url string) error

func (f OpenerFunc) Open(ctx context.Context, url string) error {
	return f(ctx, url)
}

type Guard struct {
	opener      Opener
	fallback    Opener
	report      func(widgeterr.Record)
	logger      zerolog.Logger
	openTimeout time.Duration
}

// New returns a guard that hands refused URLs to opener, or to fallback when
// opener is nil. report receives open failures; it may be called from any goroutine.
func New(opener, fallback Opener, report func(widgeterr.Record), logger zerolog.Logger) *Guard {
	if fallback == nil {
		fallback = SystemOpener{}
	}
	return &Guard{
		opener:      opener,
		fallback:    fallback,
		report:      report,
		logger:      logger.With().Str("component", "navguard").Logger(),
		openTimeout: defaultOpenTimeout,
	}
}

// Allowed is the pure decision: requested is the canonical URL or the srcdoc placeholder.
func Allowed(requested, canonical string) bool {
	if requested == SrcdocURL {
		return true
	}
	return canonical != "" && requested == canonical
}

// ShouldAllow decides synchronously and, when refusing, opens requested
// externally without waiting for the outcome.
func (g *Guard) ShouldAllow(requested, canonical string) bool {
	if Allowed(requested, canonical) {
		return true
	}
	g.logger.Debug().Str("url", requested).Msg("navigation diverted to host")
	go g.openExternal(requested)
	return false
}

func (g *Guard) openExternal(url string) {
	opener := g.opener
	if opener == nil {
		opener = g.fallback
	}

	ctx, cancel := context.WithTimeout(context.Background(), g.openTimeout)
	defer cancel()

	err := func() (err error) {
		defer func() {
			if p := recover(); p != nil {
				err = fmt.Errorf("url handler panicked: %v", p)
			}
		}()
		return opener.Open(ctx, url)
	}()
	if err == nil {
		return
	}
	if g.report != nil {
		g.report(widgeterr.New(widgeterr.KindNavigationOpen, "failed to open url outside the chat surface", err).With("url", url))
	}
}
