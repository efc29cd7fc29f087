package websocket

import (
	"context"
	"net/http"
	"time"

	"chat-widget/internal/model"
	"chat-widget/internal/widget"
	"chat-widget/internal/widgeterr"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const publishTimeout = 2 * time.Second

// TranscriptSink stores transcripts downloaded by a session.
type TranscriptSink interface {
	SaveTranscript(ctx context.Context, tenantKey, sessionID, visitorID, transcript string) (string, error)
}

type HandlerOptions struct {
	// DefaultBaseURL is the surface URL for configurations without a webviewUrl.
	DefaultBaseURL  string
	CallbackTimeout time.Duration
	Metrics         *widget.Metrics
	CheckOrigin     func(r *http.Request) bool
}

type Handler struct {
	hub         *Hub
	publisher   EventPublisher
	transcripts TranscriptSink
	upgrader    websocket.Upgrader
	opts        HandlerOptions
	logger      zerolog.Logger
}

// NewHandler wires renderer sessions to hub. publisher and transcripts may be nil.
func NewHandler(hub *Hub, publisher EventPublisher, transcripts TranscriptSink, opts HandlerOptions, logger zerolog.Logger) *Handler {
	checkOrigin := opts.CheckOrigin
	if checkOrigin == nil {
		checkOrigin = func(r *http.Request) bool { return true }
	}
	return &Handler{
		hub:         hub,
		publisher:   publisher,
		transcripts: transcripts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
		opts:   opts,
		logger: logger.With().Str("component", "surface_ws").Logger(),
	}
}

// Serve upgrades the request and runs one renderer session with its own controller.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request, params SessionParams) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader has already written the error response.
		h.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	s := newSession(conn, uuid.NewString(), params, h.logger)
	s.controller = widget.New(s, h.callbacks(s), widget.Options{
		Platform:        params.Platform,
		VisitorEncoding: params.Encoding,
		CallbackTimeout: h.opts.CallbackTimeout,
		DefaultBaseURL:  h.opts.DefaultBaseURL,
		Logger:          s.logger,
		Metrics:         h.opts.Metrics,
	})

	if !h.hub.register(s) {
		s.controller.Close()
		conn.Close()
		return
	}
	s.logger.Info().Str("platform", string(params.Platform)).Msg("renderer connected")

	go s.keepAlive()
	go s.writePump()
	go s.readPump(h.hub)
}

func (h *Handler) callbacks(s *Session) widget.Callbacks {
	return widget.Callbacks{
		OnNewMessage: func(m model.NewMessage) {
			h.event(s, "newMessage", m)
		},
		OnRoomOpened: func(ev model.RoomEvent) {
			h.event(s, "roomOpened", ev)
		},
		OnRoomClosed: func(ev model.RoomEvent) {
			h.event(s, "roomClosed", ev)
		},
		OnRoomReopened: func(ev model.RoomEvent) {
			h.event(s, "roomReopened", ev)
		},
		OnUIReady: func() {
			h.event(s, "uiReady", nil)
		},
		OnWidgetWillShow: func(ctx context.Context) error {
			h.event(s, "widgetWillShow", nil)
			return nil
		},
		OnWidgetShow: func() {
			h.event(s, "widgetShow", nil)
		},
		OnWidgetWillHide: func(ctx context.Context) error {
			h.event(s, "widgetWillHide", nil)
			return nil
		},
		OnWidgetHide: func() {
			s.visible.Store(false)
			h.event(s, "widgetHide", nil)
		},
		OnError: func(rec widgeterr.Record) {
			s.emit(FrameError, "", rec)
			h.publish(s, "error", rec)
		},
		HandleURL: func(ctx context.Context, url string) error {
			f, err := newFrame(FrameOpenURL, "", OpenURLData{URL: url})
			if err != nil {
				return err
			}
			return s.send(f)
		},
		OnTranscriptReceived: func(transcript string) {
			h.saveTranscript(s, transcript)
		},
	}
}

// event notifies the renderer and fans the event out to the tenant's channel.
func (h *Handler) event(s *Session, name string, payload any) {
	s.emit(FrameEvent, "", HostEvent{
		SessionID: s.ID,
		Name:      name,
		Payload:   payload,
		Timestamp: time.Now().Unix(),
	})
	h.publish(s, name, payload)
}

func (h *Handler) publish(s *Session, name string, payload any) {
	if h.publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	event := HostEvent{SessionID: s.ID, Name: name, Payload: payload, Timestamp: time.Now().Unix()}
	if err := h.publisher.PublishEvent(ctx, s.Params.TenantKey, event); err != nil {
		s.logger.Warn().Err(err).Str("event", name).Msg("failed to publish host event")
	}
}

func (h *Handler) saveTranscript(s *Session, transcript string) {
	if h.transcripts == nil {
		s.logger.Warn().Msg("transcript received but no store configured")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	id, err := h.transcripts.SaveTranscript(ctx, s.Params.TenantKey, s.ID, s.VisitorID(), transcript)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to save transcript")
		return
	}
	h.event(s, "transcriptSaved", map[string]any{"transcriptId": id, "size": len(transcript)})
}
