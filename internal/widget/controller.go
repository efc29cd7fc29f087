// Package widget drives one embedded chat surface. A Controller owns the
// configuration, the visibility machine and the message channel of a single
// surface, and serializes every input from the host and the render layer on
// its own worker.
package widget

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	"chat-widget/internal/bridge"
	"chat-widget/internal/chaturl"
	"chat-widget/internal/model"
	"chat-widget/internal/navguard"
	"chat-widget/internal/queue"
	"chat-widget/internal/visibility"
	"chat-widget/internal/widgeterr"

	"github.com/rs/zerolog"
)

const DefaultCallbackTimeout = 5 * time.Second

type Options struct {
	Platform        model.Platform
	VisitorEncoding chaturl.Encoding
	// CallbackTimeout bounds OnWidgetWillShow and OnWidgetWillHide.
	CallbackTimeout time.Duration
	Logger          zerolog.Logger
	Metrics         *Metrics
	// DefaultBaseURL replaces chaturl.DefaultBaseURL for configurations
	// without a webviewUrl.
	DefaultBaseURL string
	// FallbackOpener opens refused URLs when Callbacks.HandleURL is nil.
	// Defaults to the operating system's URL handler.
	FallbackOpener navguard.Opener
}

// urlInput holds every configuration field the canonical URL depends on.
type urlInput struct {
	base        string
	apiKey      string
	platformKey string
	visitor     *model.Visitor
	tags        []string
}

type Controller struct {
	surface Surface
	cb      Callbacks
	opts    Options
	logger  zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	queue  *queue.Manager

	reporter *widgeterr.Reporter
	guard    *navguard.Guard
	channel  *bridge.Channel
	machine  *visibility.Machine
	builder  chaturl.Builder

	// Owned by the worker.
	config     model.Configuration
	hasConfig  bool
	cacheKey   *urlInput
	canonical  string
	configErr  *widgeterr.Record
	mountedURL string
	uiReady    bool
	loading    bool

	stateSnap     atomic.Int32
	canonicalSnap atomic.Value
	uiReadySnap   atomic.Bool

	closeOnce sync.Once
}

func New(surface Surface, cb Callbacks, opts Options) *Controller {
	if opts.CallbackTimeout <= 0 {
		opts.CallbackTimeout = DefaultCallbackTimeout
	}
	if opts.Platform == "" {
		opts.Platform = model.PlatformIOS
	}

	c := &Controller{
		surface: surface,
		cb:      cb,
		opts:    opts,
		logger:  opts.Logger.With().Str("component", "widget").Str("platform", string(opts.Platform)).Logger(),
		builder: chaturl.Builder{Platform: opts.Platform, Encoding: opts.VisitorEncoding},
	}
	c.ctx, c.cancel = context.WithCancel(context.Background())
	c.queue = queue.NewSerial(c.logger)
	c.canonicalSnap.Store("")

	c.reporter = widgeterr.NewReporter(c.deliverError, c.logger, widgeterr.WithObserver(opts.Metrics.reported))
	c.guard = navguard.New(c.urlHandler(), opts.FallbackOpener, c.reportAsync, c.logger)
	c.channel = bridge.NewChannel(messageHandler{c}, c.reporter, opts.Metrics.message)
	c.machine = visibility.New(lifecycle{c})
	return c
}

// SetConfig replaces the configuration. Re-applying an identical
// configuration does nothing.
func (c *Controller) SetConfig(cfg model.Configuration) {
	c.post(func() {
		if c.hasConfig && reflect.DeepEqual(cfg, c.config) {
			return
		}
		c.config = cfg
		c.hasConfig = true
		c.refreshCanonical()

		if !c.machine.State().Mounted() {
			c.machine.Reconcile(c.ctx)
			return
		}
		if c.configErr != nil {
			c.reporter.Report(*c.configErr)
			c.machine.Teardown()
			return
		}
		if c.canonical != c.mountedURL {
			c.logger.Info().Str("url", c.canonical).Msg("canonical url changed, remounting surface")
			c.mountSurface()
			return
		}
		c.applyLoading()
	})
}

// SetVisible records the host's visibility intent.
func (c *Controller) SetVisible(visible bool) {
	c.post(func() {
		c.machine.SetIntent(c.ctx, visible)
	})
}

// HandleMessage takes a raw message posted by the chat surface.
func (c *Controller) HandleMessage(raw string) {
	c.post(func() {
		if !c.machine.State().Mounted() {
			c.logger.Debug().Msg("discarding message while unmounted")
			return
		}
		c.channel.OnRawMessage(raw)
	})
}

// ShouldStartLoad answers the render layer's navigation request synchronously.
// Refused URLs are opened outside the surface.
func (c *Controller) ShouldStartLoad(url string) bool {
	canonical, _ := c.CanonicalURL()
	return c.guard.ShouldAllow(url, canonical)
}

// TransitionComplete reports the end of the transition started with epoch.
// finished is false when the animation was interrupted.
func (c *Controller) TransitionComplete(epoch uint64, finished bool) {
	c.post(func() {
		state := c.machine.State()
		if !c.machine.TransitionComplete(c.ctx, epoch, finished) {
			c.logger.Debug().Uint64("epoch", epoch).Str("state", state.String()).Msg("ignoring stale transition completion")
			return
		}
		dir := visibility.In
		if state == visibility.TransitioningOut {
			dir = visibility.Out
		}
		result := "finished"
		if !finished {
			result = "interrupted"
		}
		c.opts.Metrics.transition(dir, result)
	})
}

// ReportLoadError is called by the render layer when the surface failed to load.
func (c *Controller) ReportLoadError(err error) {
	c.post(func() {
		rec := widgeterr.New(widgeterr.KindSurfaceLoad, "chat surface failed to load", err)
		if c.mountedURL != "" {
			rec = rec.With("url", c.mountedURL)
		}
		c.reporter.Report(rec)
		c.machine.Teardown()
	})
}

func (c *Controller) State() visibility.State {
	return visibility.State(c.stateSnap.Load())
}

// CanonicalURL returns the URL the surface is allowed to show. ok is false
// while the configuration is missing or invalid.
func (c *Controller) CanonicalURL() (string, bool) {
	url, _ := c.canonicalSnap.Load().(string)
	return url, url != ""
}

func (c *Controller) UIReady() bool {
	return c.uiReadySnap.Load()
}

// Sync blocks until every input posted before it has been processed. It must
// not be called from a callback.
func (c *Controller) Sync() error {
	return c.queue.Do(func() error { return nil })
}

// Close unmounts the surface and stops the worker. Inputs posted afterwards
// are dropped.
func (c *Controller) Close() {
	c.closeOnce.Do(func() {
		c.post(func() {
			c.machine.Teardown()
		})
		// Cancelling first releases a pending pre-transition callback.
		c.cancel()
		c.queue.Shutdown()
	})
}

func (c *Controller) post(fn func()) {
	err := c.queue.EnqueueJob(queue.Job{Fn: func() error {
		fn()
		c.publishState()
		return nil
	}})
	if err != nil {
		c.logger.Debug().Err(err).Msg("input dropped after close")
	}
}

func (c *Controller) publishState() {
	c.stateSnap.Store(int32(c.machine.State()))
	c.uiReadySnap.Store(c.uiReady)
}

// reportAsync delivers records produced off the worker in arrival order.
func (c *Controller) reportAsync(rec widgeterr.Record) {
	c.post(func() {
		c.reporter.Report(rec)
	})
}

func (c *Controller) deliverError(rec widgeterr.Record) {
	if c.cb.OnError != nil {
		c.cb.OnError(rec)
	}
}

func (c *Controller) urlHandler() navguard.Opener {
	if c.cb.HandleURL == nil {
		return nil
	}
	return navguard.OpenerFunc(c.cb.HandleURL)
}

// refreshCanonical recomputes the canonical URL when a field it depends on
// changed, and records why the configuration cannot be mounted, if it can't.
func (c *Controller) refreshCanonical() {
	key := &urlInput{
		base:        chaturl.BaseURL(c.config, c.opts.DefaultBaseURL),
		apiKey:      c.config.APIKey,
		platformKey: c.config.PlatformKey(c.opts.Platform),
		visitor:     c.config.Visitor,
		tags:        c.config.Tags,
	}
	if c.cacheKey != nil && reflect.DeepEqual(key, c.cacheKey) {
		return
	}
	c.cacheKey = key
	c.canonical = ""
	c.configErr = nil

	if !c.config.HasCredentials(c.opts.Platform) {
		rec := widgeterr.New(widgeterr.KindMissingCredentials, "apiKey and "+string(c.opts.Platform)+" key are required", nil).
			With("platform", string(c.opts.Platform))
		c.configErr = &rec
	} else if url, err := c.builder.Build(key.base, c.config); err != nil {
		rec := widgeterr.New(widgeterr.KindInvalidURL, "could not build chat url", err).With("baseUrl", key.base)
		c.configErr = &rec
	} else {
		c.canonical = url
	}
	c.canonicalSnap.Store(c.canonical)
}

func (c *Controller) mountSurface() {
	if c.mountedURL == "" {
		c.opts.Metrics.mount(1)
	}
	c.mountedURL = c.canonical
	c.uiReady = false
	c.loading = false
	c.publishState()
	c.surface.Mount(MountRequest{URL: c.canonical, Color: c.config.Color})
	c.applyLoading()
}

// applyLoading shows the placeholder until the surface reports ui-ready.
func (c *Controller) applyLoading() {
	want := !c.uiReady && c.config.LoadingIndicator()
	if want == c.loading {
		return
	}
	c.loading = want
	c.surface.SetLoading(want)
}

// awaitCallback runs a pre-transition callback bounded by CallbackTimeout.
// Failures are reported and never stop the transition.
func (c *Controller) awaitCallback(ctx context.Context, name string, fn func(context.Context) error) {
	if fn == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, c.opts.CallbackTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- fmt.Errorf("panic: %v", p)
			}
		}()
		done <- fn(ctx)
	}()

	var err error
	select {
	case err = <-done:
	case <-ctx.Done():
		err = ctx.Err()
	}
	if err != nil && c.ctx.Err() != nil {
		c.logger.Debug().Err(err).Str("callback", name).Msg("callback abandoned on close")
		return
	}
	if err != nil {
		c.reporter.Report(widgeterr.New(widgeterr.KindLifecycleCallback, name+" failed", err).With("callback", name))
	}
}

// invoke calls a notification callback, turning a panic into a report.
func (c *Controller) invoke(name string, fn func()) {
	defer func() {
		if p := recover(); p != nil {
			c.reporter.Report(widgeterr.New(widgeterr.KindLifecycleCallback, name+" panicked", fmt.Errorf("%v", p)).With("callback", name))
		}
	}()
	fn()
}

// lifecycle performs the visibility machine's effects.
type lifecycle struct {
	c *Controller
}

func (l lifecycle) Mount() bool {
	c := l.c
	if !c.hasConfig {
		c.reporter.Report(widgeterr.New(widgeterr.KindMissingCredentials, "no configuration set", nil).
			With("platform", string(c.opts.Platform)))
		return false
	}
	if c.configErr != nil {
		c.reporter.Report(*c.configErr)
		return false
	}
	c.mountSurface()
	return true
}

func (l lifecycle) WillShow(ctx context.Context) {
	l.c.publishState()
	l.c.awaitCallback(ctx, "onWidgetWillShow", l.c.cb.OnWidgetWillShow)
}

func (l lifecycle) WillHide(ctx context.Context) {
	l.c.publishState()
	l.c.awaitCallback(ctx, "onWidgetWillHide", l.c.cb.OnWidgetWillHide)
}

func (l lifecycle) StartTransition(t visibility.Transition) {
	c := l.c
	c.publishState()
	c.opts.Metrics.transition(t.Direction, "started")
	c.logger.Debug().Str("direction", t.Direction.String()).Uint64("epoch", t.Epoch).Msg("starting transition")
	c.surface.StartTransition(t)
}

func (l lifecycle) Shown() {
	l.c.publishState()
	if fn := l.c.cb.OnWidgetShow; fn != nil {
		l.c.invoke("onWidgetShow", fn)
	}
}

func (l lifecycle) Hidden() {
	l.c.publishState()
	if fn := l.c.cb.OnWidgetHide; fn != nil {
		l.c.invoke("onWidgetHide", fn)
	}
}

func (l lifecycle) Unmount() {
	c := l.c
	if c.mountedURL != "" {
		c.opts.Metrics.mount(-1)
	}
	c.mountedURL = ""
	c.uiReady = false
	c.loading = false
	c.publishState()
	c.surface.Unmount()
}

// messageHandler maps channel messages to host callbacks and machine inputs.
type messageHandler struct {
	c *Controller
}

func (h messageHandler) UIReady() {
	c := h.c
	c.uiReady = true
	c.applyLoading()
	c.publishState()
	if fn := c.cb.OnUIReady; fn != nil {
		c.invoke("onUIReady", fn)
	}
}

func (h messageHandler) NewMessage(msg model.NewMessage) {
	if fn := h.c.cb.OnNewMessage; fn != nil {
		h.c.invoke("onNewMessage", func() { fn(msg) })
	}
}

func (h messageHandler) RoomOpened(ev model.RoomEvent) {
	if fn := h.c.cb.OnRoomOpened; fn != nil {
		h.c.invoke("onRoomOpened", func() { fn(ev) })
	}
}

func (h messageHandler) RoomClosed(ev model.RoomEvent) {
	if fn := h.c.cb.OnRoomClosed; fn != nil {
		h.c.invoke("onRoomClosed", func() { fn(ev) })
	}
}

func (h messageHandler) RoomReopened(ev model.RoomEvent) {
	if fn := h.c.cb.OnRoomReopened; fn != nil {
		h.c.invoke("onRoomReopened", func() { fn(ev) })
	}
}

func (h messageHandler) HideRequested() {
	h.c.machine.SetIntent(h.c.ctx, false)
}

func (h messageHandler) SurfaceFailed(rec widgeterr.Record) {
	h.c.reporter.Report(rec)
	h.c.machine.Teardown()
}

func (h messageHandler) TranscriptReceived(transcript string) {
	fn := h.c.cb.OnTranscriptReceived
	if fn == nil {
		h.c.logger.Warn().Int("size", len(transcript)).Msg("transcript received without a handler")
		return
	}
	h.c.invoke("onTranscriptReceived", func() { fn(transcript) })
}
