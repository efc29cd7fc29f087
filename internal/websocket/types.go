package websocket

import (
	"encoding/json"

	"chat-widget/internal/chaturl"
	"chat-widget/internal/model"
)

type FrameType string

// Renderer to host.
const (
	FrameConfig             FrameType = "config"
	FrameIntent             FrameType = "intent"
	FrameMessage            FrameType = "message"
	FrameNavigation         FrameType = "navigation"
	FrameTransitionComplete FrameType = "transitionComplete"
	FrameLoadError          FrameType = "loadError"
)

// Host to renderer.
const (
	FrameMount              FrameType = "mount"
	FrameTransition         FrameType = "transition"
	FrameUnmount            FrameType = "unmount"
	FrameLoading            FrameType = "loading"
	FrameOpenURL            FrameType = "openUrl"
	FrameEvent              FrameType = "event"
	FrameError              FrameType = "error"
	FrameNavigationDecision FrameType = "navigationDecision"
)

// Frame is one websocket text message. ID correlates a navigation request
// with its decision.
type Frame struct {
	Type FrameType       `json:"type"`
	ID   string          `json:"id,omitempty"`
	Data json.RawMessage `json:"data,omitempty"`
}

type IntentData struct {
	Visible bool `json:"visible"`
}

type NavigationData struct {
	URL string `json:"url"`
}

type NavigationDecision struct {
	URL   string `json:"url"`
	Allow bool   `json:"allow"`
}

type TransitionCompleteData struct {
	Epoch    uint64 `json:"epoch"`
	Finished bool   `json:"finished"`
}

type LoadErrorData struct {
	Message string `json:"message"`
}

type TransitionData struct {
	Direction string `json:"direction"`
	Epoch     uint64 `json:"epoch"`
	From      string `json:"from"`
	To        string `json:"to"`
}

type LoadingData struct {
	Loading bool `json:"loading"`
}

type OpenURLData struct {
	URL string `json:"url"`
}

// HostEvent is a host callback invocation, sent to the renderer and fanned
// out over Redis.
type HostEvent struct {
	SessionID string `json:"sessionId"`
	Name      string `json:"name"`
	Payload   any    `json:"payload,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// IntentMessage asks the hub to show or hide a session's surface.
type IntentMessage struct {
	SessionID string `json:"sessionId"`
	Visible   bool   `json:"visible"`
}

// SessionParams come from the renderer's token.
type SessionParams struct {
	TenantKey string
	Platform  model.Platform
	Encoding  chaturl.Encoding
}

type SessionRes struct {
	ID           string `json:"id"`
	TenantKey    string `json:"tenantKey"`
	Platform     string `json:"platform"`
	State        string `json:"state"`
	Visible      bool   `json:"visible"`
	UIReady      bool   `json:"uiReady"`
	CanonicalURL string `json:"canonicalUrl,omitempty"`
	ConnectedAt  int64  `json:"connectedAt"`
}

func newFrame(t FrameType, id string, data any) (Frame, error) {
	f := Frame{Type: t, ID: id}
	if data == nil {
		return f, nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return Frame{}, err
	}
	f.Data = raw
	return f, nil
}
