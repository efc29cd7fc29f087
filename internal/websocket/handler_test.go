package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"chat-widget/internal/chaturl"
	"chat-widget/internal/model"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type memoryPublisher struct {
	mu     sync.Mutex
	events []HostEvent
	keys   []string
}

func (p *memoryPublisher) PublishEvent(_ context.Context, tenantKey string, event HostEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, tenantKey)
	p.events = append(p.events, event)
	return nil
}

func (p *memoryPublisher) names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	names := make([]string, 0, len(p.events))
	for _, e := range p.events {
		names = append(names, e.Name)
	}
	return names
}

type memoryTranscripts struct {
	mu    sync.Mutex
	saved []string
}

func (m *memoryTranscripts) SaveTranscript(_ context.Context, tenantKey, sessionID, visitorID, transcript string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = append(m.saved, tenantKey+"|"+visitorID+"|"+transcript)
	return "t-1", nil
}

func (m *memoryTranscripts) all() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.saved...)
}

type testEnv struct {
	hub         *Hub
	publisher   *memoryPublisher
	transcripts *memoryTranscripts
	server      *httptest.Server
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	env := &testEnv{
		hub:         NewHub(zerolog.Nop()),
		publisher:   &memoryPublisher{},
		transcripts: &memoryTranscripts{},
	}
	go env.hub.Run(ctx)

	h := NewHandler(env.hub, env.publisher, env.transcripts, HandlerOptions{}, zerolog.Nop())
	env.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.Serve(w, r, SessionParams{TenantKey: "k1", Platform: model.PlatformIOS, Encoding: chaturl.EncodingJSON})
	}))
	t.Cleanup(env.server.Close)
	return env
}

func (e *testEnv) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(e.server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func sendFrame(t *testing.T, conn *websocket.Conn, ft FrameType, id string, data any) {
	t.Helper()
	f, err := newFrame(ft, id, data)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(f))
}

// readUntil skips frames until one of type ft arrives.
func readUntil(t *testing.T, conn *websocket.Conn, ft FrameType) Frame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		var f Frame
		require.NoError(t, conn.ReadJSON(&f))
		if f.Type == ft {
			return f
		}
	}
}

func validConfig() model.Configuration {
	return model.Configuration{
		APIKey:  "k1",
		IOSKey:  "ios1",
		Visitor: &model.Visitor{ID: model.NewVisitorID("v-9")},
	}
}

func TestSessionMountAndShow(t *testing.T) {
	env := newTestEnv(t)
	conn := env.dial(t)

	sendFrame(t, conn, FrameConfig, "", validConfig())
	sendFrame(t, conn, FrameIntent, "", IntentData{Visible: true})

	mount := readUntil(t, conn, FrameMount)
	var req struct {
		URL string `json:"url"`
	}
	require.NoError(t, json.Unmarshal(mount.Data, &req))
	require.True(t, strings.HasPrefix(req.URL, chaturl.DefaultBaseURL+"?platform=ios&apiKey=k1&iosKey=ios1"))

	tr := readUntil(t, conn, FrameTransition)
	var data TransitionData
	require.NoError(t, json.Unmarshal(tr.Data, &data))
	require.Equal(t, "in", data.Direction)
	require.Equal(t, "hidden", data.From)
	require.Equal(t, "shown", data.To)

	sendFrame(t, conn, FrameTransitionComplete, "", TransitionCompleteData{Epoch: data.Epoch, Finished: true})
	ev := readUntil(t, conn, FrameEvent)
	var event HostEvent
	require.NoError(t, json.Unmarshal(ev.Data, &event))
	require.Equal(t, "widgetShow", event.Name)

	require.Eventually(t, func() bool {
		names := env.publisher.names()
		return len(names) == 2 && names[0] == "widgetWillShow" && names[1] == "widgetShow"
	}, time.Second, 5*time.Millisecond)
}

func TestNavigationDecision(t *testing.T) {
	env := newTestEnv(t)
	conn := env.dial(t)

	sendFrame(t, conn, FrameNavigation, "nav-1", NavigationData{URL: "about:srcdoc"})
	f := readUntil(t, conn, FrameNavigationDecision)
	require.Equal(t, "nav-1", f.ID)
	var decision NavigationDecision
	require.NoError(t, json.Unmarshal(f.Data, &decision))
	require.True(t, decision.Allow)

	sendFrame(t, conn, FrameNavigation, "nav-2", NavigationData{URL: "https://evil.example/"})

	// The decision and the external open race each other.
	var refused, opened bool
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for !refused || !opened {
		var f Frame
		require.NoError(t, conn.ReadJSON(&f))
		switch f.Type {
		case FrameNavigationDecision:
			require.Equal(t, "nav-2", f.ID)
			require.NoError(t, json.Unmarshal(f.Data, &decision))
			require.False(t, decision.Allow)
			refused = true
		case FrameOpenURL:
			var data OpenURLData
			require.NoError(t, json.Unmarshal(f.Data, &data))
			require.Equal(t, "https://evil.example/", data.URL)
			opened = true
		}
	}
}

func TestMissingCredentialsSendsErrorFrame(t *testing.T) {
	env := newTestEnv(t)
	conn := env.dial(t)

	sendFrame(t, conn, FrameConfig, "", model.Configuration{APIKey: "k1"})
	sendFrame(t, conn, FrameIntent, "", IntentData{Visible: true})

	f := readUntil(t, conn, FrameError)
	var rec struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(f.Data, &rec))
	require.Equal(t, "MISSING_CREDENTIALS", rec.Code)
}

func TestTranscriptIsStored(t *testing.T) {
	env := newTestEnv(t)
	conn := env.dial(t)

	sendFrame(t, conn, FrameConfig, "", validConfig())
	sendFrame(t, conn, FrameIntent, "", IntentData{Visible: true})
	readUntil(t, conn, FrameMount)

	sendFrame(t, conn, FrameMessage, "", `{"messageType":"onDownloadTranscript","data":{"transcript":"hello"}}`)
	ev := readUntil(t, conn, FrameEvent)
	for !strings.Contains(string(ev.Data), "transcriptSaved") {
		ev = readUntil(t, conn, FrameEvent)
	}
	require.Equal(t, []string{"k1|v-9|hello"}, env.transcripts.all())
}

func TestUnknownFrameRejected(t *testing.T) {
	env := newTestEnv(t)
	conn := env.dial(t)

	sendFrame(t, conn, "bogus", "x1", nil)
	f := readUntil(t, conn, FrameError)
	require.Equal(t, "x1", f.ID)
	require.Contains(t, string(f.Data), "BAD_FRAME")
}

func TestRemoteIntentRoutedBySessionID(t *testing.T) {
	env := newTestEnv(t)
	conn := env.dial(t)
	sendFrame(t, conn, FrameConfig, "", validConfig())

	var sessions []SessionRes
	require.Eventually(t, func() bool {
		var err error
		sessions, err = env.hub.Sessions(context.Background())
		return err == nil && len(sessions) == 1
	}, time.Second, 5*time.Millisecond)
	require.Equal(t, "k1", sessions[0].TenantKey)

	require.True(t, env.hub.Route(context.Background(), IntentMessage{SessionID: sessions[0].ID, Visible: true}))
	readUntil(t, conn, FrameMount)
	readUntil(t, conn, FrameTransition)

	require.Eventually(t, func() bool {
		sessions, _ = env.hub.Sessions(context.Background())
		return len(sessions) == 1 && sessions[0].Visible && sessions[0].State == "transitioning_in"
	}, time.Second, 5*time.Millisecond)
}

func TestDisconnectUnregistersSession(t *testing.T) {
	env := newTestEnv(t)
	conn := env.dial(t)

	require.Eventually(t, func() bool {
		sessions, _ := env.hub.Sessions(context.Background())
		return len(sessions) == 1
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool {
		sessions, _ := env.hub.Sessions(context.Background())
		return len(sessions) == 0
	}, time.Second, 5*time.Millisecond)
}

func TestDecodeIntent(t *testing.T) {
	intent, err := decodeIntent(`{"sessionId":"s1","visible":true}`)
	require.NoError(t, err)
	require.Equal(t, IntentMessage{SessionID: "s1", Visible: true}, intent)

	_, err = decodeIntent(`{"visible":true}`)
	require.Error(t, err)

	_, err = decodeIntent(`nope`)
	require.Error(t, err)
}

func TestMessageText(t *testing.T) {
	require.Equal(t, `{"messageType":"uiReady"}`, messageText(json.RawMessage(`"{\"messageType\":\"uiReady\"}"`)))
	require.Equal(t, `{"messageType":"uiReady"}`, messageText(json.RawMessage(`{"messageType":"uiReady"}`)))
}

func TestEventChannel(t *testing.T) {
	require.Equal(t, "chat-widget:events:k1", EventChannel("k1"))
	require.Error(t, (&RedisPublisher{}).PublishEvent(context.Background(), "k1", HostEvent{}))
	require.Error(t, (&RedisPublisher{}).PublishEvent(context.Background(), "", HostEvent{}))
}
