package widget

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"chat-widget/internal/chaturl"
	"chat-widget/internal/model"
	"chat-widget/internal/visibility"
	"chat-widget/internal/widgeterr"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu          sync.Mutex
	events      []string
	errors      []widgeterr.Record
	transitions []visibility.Transition
	opened      []string
}

func (r *recorder) add(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, fmt.Sprintf(format, args...))
}

func (r *recorder) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

func (r *recorder) Errors() []widgeterr.Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]widgeterr.Record(nil), r.errors...)
}

func (r *recorder) Opened() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.opened...)
}

func (r *recorder) lastTransition(t *testing.T) visibility.Transition {
	r.mu.Lock()
	defer r.mu.Unlock()
	require.NotEmpty(t, r.transitions)
	return r.transitions[len(r.transitions)-1]
}

func (r *recorder) count(event string) int {
	n := 0
	for _, e := range r.Events() {
		if e == event {
			n++
		}
	}
	return n
}

type fakeSurface struct {
	rec *recorder
}

func (s fakeSurface) Mount(req MountRequest) {
	s.rec.add("mount %s", req.URL)
}

func (s fakeSurface) StartTransition(t visibility.Transition) {
	s.rec.mu.Lock()
	s.rec.transitions = append(s.rec.transitions, t)
	s.rec.mu.Unlock()
	s.rec.add("transition %s", t.Direction)
}

func (s fakeSurface) Unmount() {
	s.rec.add("unmount")
}

func (s fakeSurface) SetLoading(loading bool) {
	s.rec.add("loading %t", loading)
}

func recordingCallbacks(rec *recorder) Callbacks {
	return Callbacks{
		OnNewMessage: func(m model.NewMessage) { rec.add("newMessage %s", m.Message) },
		OnRoomOpened: func(ev model.RoomEvent) { rec.add("roomOpened %d", ev.RoomID) },
		OnRoomClosed: func(ev model.RoomEvent) { rec.add("roomClosed %d", ev.RoomID) },
		OnUIReady:    func() { rec.add("uiReady") },
		OnWidgetWillShow: func(context.Context) error {
			rec.add("willShow")
			return nil
		},
		OnWidgetShow: func() { rec.add("show") },
		OnWidgetWillHide: func(context.Context) error {
			rec.add("willHide")
			return nil
		},
		OnWidgetHide: func() { rec.add("hide") },
		OnError: func(r widgeterr.Record) {
			rec.mu.Lock()
			defer rec.mu.Unlock()
			rec.errors = append(rec.errors, r)
		},
		HandleURL: func(_ context.Context, url string) error {
			rec.mu.Lock()
			defer rec.mu.Unlock()
			rec.opened = append(rec.opened, url)
			return nil
		},
		OnTranscriptReceived: func(s string) { rec.add("transcript %s", s) },
	}
}

func validConfig() model.Configuration {
	return model.Configuration{APIKey: "k1", IOSKey: "ios1"}
}

const validURL = chaturl.DefaultBaseURL + "?platform=ios&apiKey=k1&iosKey=ios1"

func newTestController(t *testing.T, cb Callbacks, rec *recorder, opts Options) *Controller {
	t.Helper()
	if opts.Platform == "" {
		opts.Platform = model.PlatformIOS
	}
	opts.Logger = zerolog.Nop()
	c := New(fakeSurface{rec: rec}, cb, opts)
	t.Cleanup(c.Close)
	return c
}

func sync2(t *testing.T, c *Controller) {
	t.Helper()
	require.NoError(t, c.Sync())
	require.NoError(t, c.Sync())
}

func showWidget(t *testing.T, c *Controller, rec *recorder) {
	t.Helper()
	c.SetConfig(validConfig())
	c.SetVisible(true)
	require.NoError(t, c.Sync())
	c.TransitionComplete(rec.lastTransition(t).Epoch, true)
	require.NoError(t, c.Sync())
	require.Equal(t, visibility.Shown, c.State())
}

func TestShowMountsAndTransitionsIn(t *testing.T) {
	rec := &recorder{}
	c := newTestController(t, recordingCallbacks(rec), rec, Options{})

	c.SetConfig(validConfig())
	require.NoError(t, c.Sync())
	require.Empty(t, rec.Events(), "nothing renders before the first show")
	url, ok := c.CanonicalURL()
	require.True(t, ok)
	require.Equal(t, validURL, url)

	c.SetVisible(true)
	require.NoError(t, c.Sync())
	require.Equal(t, visibility.TransitioningIn, c.State())

	c.TransitionComplete(rec.lastTransition(t).Epoch, true)
	require.NoError(t, c.Sync())
	require.Equal(t, visibility.Shown, c.State())
	require.Equal(t, []string{
		"mount " + validURL,
		"loading true",
		"willShow",
		"transition in",
		"show",
	}, rec.Events())
}

func TestDefaultBaseURLOption(t *testing.T) {
	rec := &recorder{}
	c := newTestController(t, recordingCallbacks(rec), rec, Options{DefaultBaseURL: "https://chat.example/app.html"})

	c.SetConfig(validConfig())
	require.NoError(t, c.Sync())
	url, ok := c.CanonicalURL()
	require.True(t, ok)
	require.Equal(t, "https://chat.example/app.html?platform=ios&apiKey=k1&iosKey=ios1", url)
	require.True(t, c.ShouldStartLoad(url))

	cfg := validConfig()
	cfg.WebviewURL = "https://own.example/chat"
	c.SetConfig(cfg)
	require.NoError(t, c.Sync())
	url, ok = c.CanonicalURL()
	require.True(t, ok)
	require.Equal(t, "https://own.example/chat?platform=ios&apiKey=k1&iosKey=ios1", url)
}

func TestHideRunsOutTransition(t *testing.T) {
	rec := &recorder{}
	c := newTestController(t, recordingCallbacks(rec), rec, Options{})
	showWidget(t, c, rec)

	c.SetVisible(false)
	require.NoError(t, c.Sync())
	require.Equal(t, visibility.TransitioningOut, c.State())
	out := rec.lastTransition(t)
	require.Equal(t, visibility.Out, out.Direction)
	require.Equal(t, visibility.PositionShown, out.From)
	require.Equal(t, visibility.PositionHidden, out.To)

	c.TransitionComplete(out.Epoch, true)
	require.NoError(t, c.Sync())
	require.Equal(t, visibility.MountedHidden, c.State())
	require.Equal(t, 1, rec.count("willHide"))
	require.Equal(t, 1, rec.count("hide"))
	require.Zero(t, rec.count("unmount"), "hiding keeps the surface mounted")
}

func TestMissingCredentialsReportedOnce(t *testing.T) {
	rec := &recorder{}
	c := newTestController(t, recordingCallbacks(rec), rec, Options{})

	cfg := model.Configuration{APIKey: "k1", AndroidKey: "a1"}
	c.SetConfig(cfg)
	c.SetVisible(true)
	c.SetVisible(true)
	c.SetConfig(cfg)
	require.NoError(t, c.Sync())

	errs := rec.Errors()
	require.Len(t, errs, 1)
	require.Equal(t, widgeterr.KindMissingCredentials, errs[0].Kind)
	require.Equal(t, visibility.Unmounted, c.State())
	require.Empty(t, rec.Events())
	_, ok := c.CanonicalURL()
	require.False(t, ok)

	c.SetConfig(model.Configuration{APIKey: "k2"})
	require.NoError(t, c.Sync())
	require.Len(t, rec.Errors(), 2, "a changed invalid configuration is reported again")
}

func TestInvalidConfigWhileShownTearsDown(t *testing.T) {
	rec := &recorder{}
	c := newTestController(t, recordingCallbacks(rec), rec, Options{})
	showWidget(t, c, rec)

	c.SetConfig(model.Configuration{IOSKey: "ios1"})
	require.NoError(t, c.Sync())

	require.Equal(t, visibility.Unmounted, c.State())
	require.Equal(t, 1, rec.count("unmount"))
	require.Equal(t, 1, rec.count("hide"))
	require.Zero(t, rec.count("willHide"), "teardown skips the out transition")
	errs := rec.Errors()
	require.Len(t, errs, 1)
	require.Equal(t, widgeterr.KindMissingCredentials, errs[0].Kind)
}

func TestSurfaceErrorDuringTransitionIn(t *testing.T) {
	rec := &recorder{}
	c := newTestController(t, recordingCallbacks(rec), rec, Options{})

	c.SetConfig(validConfig())
	c.SetVisible(true)
	require.NoError(t, c.Sync())
	epoch := rec.lastTransition(t).Epoch

	c.HandleMessage(`{"messageType":"error","data":{"message":"boom","code":"E1"}}`)
	require.NoError(t, c.Sync())
	require.Equal(t, visibility.Unmounted, c.State())

	c.TransitionComplete(epoch, true)
	require.NoError(t, c.Sync())

	require.Equal(t, visibility.Unmounted, c.State())
	require.Zero(t, rec.count("show"))
	require.Equal(t, 1, rec.count("hide"))
	errs := rec.Errors()
	require.Len(t, errs, 1)
	require.Equal(t, widgeterr.KindSurfaceReported, errs[0].Kind)
	require.Equal(t, "boom", errs[0].Message)
	require.Equal(t, "E1", errs[0].Context["surfaceCode"])
}

func TestInterruptedTransitionReturnsToOrigin(t *testing.T) {
	rec := &recorder{}
	c := newTestController(t, recordingCallbacks(rec), rec, Options{})

	c.SetConfig(validConfig())
	c.SetVisible(true)
	require.NoError(t, c.Sync())

	c.TransitionComplete(rec.lastTransition(t).Epoch, false)
	require.NoError(t, c.Sync())
	require.Equal(t, visibility.MountedHidden, c.State())
	require.Zero(t, rec.count("show"))
	require.Zero(t, rec.count("hide"))
}

func TestVisibleAgainAfterInterruptedShow(t *testing.T) {
	rec := &recorder{}
	c := newTestController(t, recordingCallbacks(rec), rec, Options{})

	c.SetConfig(validConfig())
	c.SetVisible(true)
	require.NoError(t, c.Sync())
	first := rec.lastTransition(t)

	c.TransitionComplete(first.Epoch, false)
	c.SetVisible(true)
	require.NoError(t, c.Sync())

	require.Equal(t, visibility.TransitioningIn, c.State())
	second := rec.lastTransition(t)
	require.Greater(t, second.Epoch, first.Epoch)
	require.Equal(t, 2, rec.count("willShow"))

	c.TransitionComplete(second.Epoch, true)
	require.NoError(t, c.Sync())
	require.Equal(t, visibility.Shown, c.State())
}

func TestTeardownAfterHideNotifiesOnce(t *testing.T) {
	rec := &recorder{}
	c := newTestController(t, recordingCallbacks(rec), rec, Options{})
	showWidget(t, c, rec)

	c.SetVisible(false)
	require.NoError(t, c.Sync())
	c.TransitionComplete(rec.lastTransition(t).Epoch, true)
	require.NoError(t, c.Sync())
	require.Equal(t, 1, rec.count("hide"))

	c.SetConfig(model.Configuration{IOSKey: "ios1"})
	require.NoError(t, c.Sync())
	require.Equal(t, visibility.Unmounted, c.State())
	require.Equal(t, 1, rec.count("unmount"))
	require.Equal(t, 1, rec.count("hide"))
}

func TestIntentDuringTransitionIsApplied(t *testing.T) {
	rec := &recorder{}
	c := newTestController(t, recordingCallbacks(rec), rec, Options{})

	c.SetConfig(validConfig())
	c.SetVisible(true)
	c.SetVisible(false)
	require.NoError(t, c.Sync())
	require.Equal(t, visibility.TransitioningIn, c.State())

	c.TransitionComplete(rec.lastTransition(t).Epoch, true)
	require.NoError(t, c.Sync())
	require.Equal(t, visibility.TransitioningOut, c.State())
	require.Equal(t, 1, rec.count("show"))
}

func TestNavigationGuard(t *testing.T) {
	rec := &recorder{}
	c := newTestController(t, recordingCallbacks(rec), rec, Options{})
	c.SetConfig(validConfig())
	require.NoError(t, c.Sync())

	require.True(t, c.ShouldStartLoad(validURL))
	require.True(t, c.ShouldStartLoad("about:srcdoc"))
	require.False(t, c.ShouldStartLoad("https://evil.example/"))

	require.Eventually(t, func() bool {
		return len(rec.Opened()) == 1
	}, time.Second, 5*time.Millisecond)
	require.Equal(t, []string{"https://evil.example/"}, rec.Opened())
}

func TestNavigationRefusedWithoutConfig(t *testing.T) {
	rec := &recorder{}
	c := newTestController(t, recordingCallbacks(rec), rec, Options{})

	require.False(t, c.ShouldStartLoad(validURL))
	require.True(t, c.ShouldStartLoad("about:srcdoc"))
}

func TestURLHandlerFailureIsReported(t *testing.T) {
	rec := &recorder{}
	cb := recordingCallbacks(rec)
	cb.HandleURL = func(context.Context, string) error {
		return errors.New("no browser")
	}
	c := newTestController(t, cb, rec, Options{})
	c.SetConfig(validConfig())

	require.False(t, c.ShouldStartLoad("https://other.example/"))
	require.Eventually(t, func() bool {
		return len(rec.Errors()) == 1
	}, time.Second, 5*time.Millisecond)

	rep := rec.Errors()[0]
	require.Equal(t, widgeterr.KindNavigationOpen, rep.Kind)
	require.Equal(t, "https://other.example/", rep.Context["url"])
	require.Equal(t, visibility.Unmounted, c.State())
}

func TestMessagesDiscardedWhileUnmounted(t *testing.T) {
	rec := &recorder{}
	c := newTestController(t, recordingCallbacks(rec), rec, Options{})

	c.HandleMessage(`{"messageType":"newMessage","data":{"message":"hi"}}`)
	c.HandleMessage(`not json`)
	require.NoError(t, c.Sync())
	require.Empty(t, rec.Events())
	require.Empty(t, rec.Errors())
}

func TestMessagesDispatchedInOrder(t *testing.T) {
	rec := &recorder{}
	c := newTestController(t, recordingCallbacks(rec), rec, Options{})
	showWidget(t, c, rec)

	c.HandleMessage(`{"messageType":"newMessage","data":{"message":"first","messageId":"m1"}}`)
	c.HandleMessage(`{"messageType":"roomOpened","data":{"roomId":7}}`)
	c.HandleMessage(`{"messageType":"newMessage","data":{"message":"second"}}`)
	c.HandleMessage(`{"messageType":"roomClosed","data":{"roomId":7}}`)
	require.NoError(t, c.Sync())

	events := rec.Events()
	require.Equal(t, []string{
		"newMessage first",
		"roomOpened 7",
		"newMessage second",
		"roomClosed 7",
	}, events[len(events)-4:])
}

func TestInvalidMessageReported(t *testing.T) {
	rec := &recorder{}
	c := newTestController(t, recordingCallbacks(rec), rec, Options{})
	showWidget(t, c, rec)

	c.HandleMessage(`{"data":{}}`)
	c.HandleMessage(`{"messageType":"roomOpened","data":{"roomId":"7"}}`)
	require.NoError(t, c.Sync())

	errs := rec.Errors()
	require.Len(t, errs, 2)
	for _, e := range errs {
		require.Equal(t, widgeterr.KindInvalidMessage, e.Kind)
	}
	require.Equal(t, visibility.Shown, c.State(), "invalid messages are not fatal")
}

func TestHideChatWindowMessage(t *testing.T) {
	rec := &recorder{}
	c := newTestController(t, recordingCallbacks(rec), rec, Options{})
	showWidget(t, c, rec)

	c.HandleMessage(`{"messageType":"hideChatWindow"}`)
	require.NoError(t, c.Sync())
	require.Equal(t, visibility.TransitioningOut, c.State())
	require.Equal(t, 1, rec.count("willHide"))
}

func TestUIReadyClearsLoading(t *testing.T) {
	rec := &recorder{}
	c := newTestController(t, recordingCallbacks(rec), rec, Options{})
	showWidget(t, c, rec)
	require.False(t, c.UIReady())

	c.HandleMessage(`{"messageType":"uiReady"}`)
	require.NoError(t, c.Sync())
	require.True(t, c.UIReady())
	require.Equal(t, 1, rec.count("loading false"))
	require.Equal(t, 1, rec.count("uiReady"))
}

func TestLoadingIndicatorDisabled(t *testing.T) {
	rec := &recorder{}
	c := newTestController(t, recordingCallbacks(rec), rec, Options{})

	off := false
	cfg := validConfig()
	cfg.ShowLoadingIndicator = &off
	c.SetConfig(cfg)
	c.SetVisible(true)
	require.NoError(t, c.Sync())
	require.Zero(t, rec.count("loading true"))
}

func TestConfigChangeRemountsSurface(t *testing.T) {
	rec := &recorder{}
	c := newTestController(t, recordingCallbacks(rec), rec, Options{})
	showWidget(t, c, rec)
	c.HandleMessage(`{"messageType":"uiReady"}`)
	require.NoError(t, c.Sync())

	cfg := validConfig()
	cfg.Tags = []string{"vip"}
	c.SetConfig(cfg)
	require.NoError(t, c.Sync())

	url, ok := c.CanonicalURL()
	require.True(t, ok)
	require.Equal(t, validURL+"&tags=vip", url)
	require.Equal(t, 1, rec.count("mount "+url))
	require.False(t, c.UIReady())
	require.Equal(t, visibility.Shown, c.State())

	require.True(t, c.ShouldStartLoad(url))
	require.False(t, c.ShouldStartLoad(validURL))
}

func TestColorChangeDoesNotRemount(t *testing.T) {
	rec := &recorder{}
	c := newTestController(t, recordingCallbacks(rec), rec, Options{})
	showWidget(t, c, rec)

	cfg := validConfig()
	cfg.Color = "#ff0000"
	c.SetConfig(cfg)
	require.NoError(t, c.Sync())
	require.Equal(t, 1, rec.count("mount "+validURL))
}

func TestReportLoadErrorTearsDown(t *testing.T) {
	rec := &recorder{}
	c := newTestController(t, recordingCallbacks(rec), rec, Options{})
	showWidget(t, c, rec)

	c.ReportLoadError(errors.New("net::ERR_NAME_NOT_RESOLVED"))
	require.NoError(t, c.Sync())

	require.Equal(t, visibility.Unmounted, c.State())
	errs := rec.Errors()
	require.Len(t, errs, 1)
	require.Equal(t, widgeterr.KindSurfaceLoad, errs[0].Kind)
	require.Equal(t, validURL, errs[0].Context["url"])

	c.SetVisible(true)
	require.NoError(t, c.Sync())
	require.Equal(t, visibility.TransitioningIn, c.State(), "the host can show again after a teardown")
}

func TestTranscriptDelivered(t *testing.T) {
	rec := &recorder{}
	c := newTestController(t, recordingCallbacks(rec), rec, Options{})
	showWidget(t, c, rec)

	c.HandleMessage(`{"messageType":"onDownloadTranscript","data":{"transcript":"hello"}}`)
	c.HandleMessage(`{"messageType":"onDownloadTranscript","data":{"transcript":42}}`)
	require.NoError(t, c.Sync())

	require.Equal(t, 1, rec.count("transcript hello"))
	errs := rec.Errors()
	require.Len(t, errs, 1)
	require.Equal(t, widgeterr.KindInvalidTranscriptData, errs[0].Kind)
}

func TestWillShowTimeoutDoesNotBlockTransition(t *testing.T) {
	rec := &recorder{}
	cb := recordingCallbacks(rec)
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })
	cb.OnWidgetWillShow = func(context.Context) error {
		<-release
		return nil
	}
	c := newTestController(t, cb, rec, Options{CallbackTimeout: 20 * time.Millisecond})

	c.SetConfig(validConfig())
	c.SetVisible(true)
	require.NoError(t, c.Sync())

	require.Equal(t, visibility.TransitioningIn, c.State())
	errs := rec.Errors()
	require.Len(t, errs, 1)
	require.Equal(t, widgeterr.KindLifecycleCallback, errs[0].Kind)
	require.ErrorIs(t, errs[0], context.DeadlineExceeded)
}

func TestPanickingCallbackIsReported(t *testing.T) {
	rec := &recorder{}
	cb := recordingCallbacks(rec)
	cb.OnWidgetShow = func() { panic("host bug") }
	c := newTestController(t, cb, rec, Options{})

	showWidget(t, c, rec)
	errs := rec.Errors()
	require.Len(t, errs, 1)
	require.Equal(t, widgeterr.KindLifecycleCallback, errs[0].Kind)
	require.True(t, strings.Contains(errs[0].Error(), "host bug"))
}

func TestReentrantInputsFromCallbacks(t *testing.T) {
	rec := &recorder{}
	cb := recordingCallbacks(rec)
	var c *Controller
	cb.OnWidgetShow = func() {
		rec.add("show")
		c.SetVisible(false)
	}
	c = newTestController(t, cb, rec, Options{})

	c.SetConfig(validConfig())
	c.SetVisible(true)
	require.NoError(t, c.Sync())
	c.TransitionComplete(rec.lastTransition(t).Epoch, true)
	sync2(t, c)

	require.Equal(t, visibility.TransitioningOut, c.State())
}

func TestStaleTransitionCompletionIgnored(t *testing.T) {
	rec := &recorder{}
	c := newTestController(t, recordingCallbacks(rec), rec, Options{})
	showWidget(t, c, rec)

	c.TransitionComplete(99, true)
	c.TransitionComplete(rec.lastTransition(t).Epoch, true)
	require.NoError(t, c.Sync())
	require.Equal(t, visibility.Shown, c.State())
	require.Equal(t, 1, rec.count("show"))
}

func TestCloseUnmountsAndDropsInputs(t *testing.T) {
	rec := &recorder{}
	c := newTestController(t, recordingCallbacks(rec), rec, Options{})
	showWidget(t, c, rec)

	c.Close()
	require.Equal(t, visibility.Unmounted, c.State())
	require.Equal(t, 1, rec.count("unmount"))

	c.SetVisible(true)
	require.Error(t, c.Sync())
	c.Close()
}

func TestCloseReleasesPendingWillShow(t *testing.T) {
	rec := &recorder{}
	cb := recordingCallbacks(rec)
	entered := make(chan struct{})
	cb.OnWidgetWillShow = func(ctx context.Context) error {
		close(entered)
		<-ctx.Done()
		return ctx.Err()
	}
	c := newTestController(t, cb, rec, Options{CallbackTimeout: time.Minute})

	c.SetConfig(validConfig())
	c.SetVisible(true)
	select {
	case <-entered:
	case <-time.After(2 * time.Second):
		t.Fatal("willShow was not called")
	}

	closed := make(chan struct{})
	go func() {
		c.Close()
		close(closed)
	}()
	select {
	case <-closed:
	case <-time.After(2 * time.Second):
		t.Fatal("Close waited for the callback timeout")
	}
	require.Equal(t, visibility.Unmounted, c.State())
	require.Empty(t, rec.Errors())
}

func TestMetricsRecorded(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	rec := &recorder{}
	c := newTestController(t, recordingCallbacks(rec), rec, Options{Metrics: m})

	showWidget(t, c, rec)
	c.HandleMessage(`{"messageType":"uiReady"}`)
	c.HandleMessage(`{"messageType":"somethingNew"}`)
	c.HandleMessage(`[]`)
	require.NoError(t, c.Sync())

	require.Equal(t, float64(1), testutil.ToFloat64(m.mounted))
	require.Equal(t, float64(1), testutil.ToFloat64(m.transitions.WithLabelValues("in", "started")))
	require.Equal(t, float64(1), testutil.ToFloat64(m.transitions.WithLabelValues("in", "finished")))
	require.Equal(t, float64(1), testutil.ToFloat64(m.messages.WithLabelValues("uiReady")))
	require.Equal(t, float64(1), testutil.ToFloat64(m.messages.WithLabelValues("unknown")))
	require.Equal(t, float64(1), testutil.ToFloat64(m.messages.WithLabelValues("invalid")))
	require.Equal(t, float64(1), testutil.ToFloat64(m.errors.WithLabelValues(string(widgeterr.KindInvalidMessage))))

	c.Close()
	require.Equal(t, float64(0), testutil.ToFloat64(m.mounted))
}
