package endpoints

import (
	"context"
	"net/http"
	"time"

	"chat-widget/internal/model"
	"chat-widget/internal/websocket"

	"github.com/go-chi/chi/v5"
)

const hubTimeout = 5 * time.Second

type SurfaceEndpoints interface {
	Surface(http.ResponseWriter, *http.Request) error
	Sessions(http.ResponseWriter, *http.Request) error
	SessionIntent(http.ResponseWriter, *http.Request) error
}

type IntentRequest struct {
	Visible bool `json:"visible"`
}

type SessionsResponse struct {
	Sessions []websocket.SessionRes `json:"sessions"`
}

type surfaceEndpoints struct {
	hub             *websocket.Hub
	handler         *websocket.Handler
	defaultPlatform model.Platform
}

func NewSurfaceEndpoints(hub *websocket.Hub, handler *websocket.Handler, defaultPlatform model.Platform) SurfaceEndpoints {
	return &surfaceEndpoints{
		hub:             hub,
		handler:         handler,
		defaultPlatform: defaultPlatform,
	}
}

func (h *surfaceEndpoints) Surface(w http.ResponseWriter, r *http.Request) error {
	if r.Method != http.MethodGet {
		return MethodHandler(w, r, nil)
	}
	sub, err := subject(r)
	if err != nil {
		return err
	}

	platform := h.defaultPlatform
	if p, ok := model.ParsePlatform(sub.Platform); ok {
		platform = p
	}

	h.handler.Serve(w, r, websocket.SessionParams{
		TenantKey: sub.TenantKey,
		Platform:  platform,
		Encoding:  encoding(sub.LegacyEncoding),
	})
	return nil
}

func (h *surfaceEndpoints) Sessions(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodGet: h.handleSessions,
	})
}

func (h *surfaceEndpoints) SessionIntent(w http.ResponseWriter, r *http.Request) error {
	return MethodHandler(w, r, map[string]func(http.ResponseWriter, *http.Request) error{
		http.MethodPost: h.handleSessionIntent,
	})
}

func (h *surfaceEndpoints) handleSessions(w http.ResponseWriter, r *http.Request) error {
	sub, err := subject(r)
	if err != nil {
		return err
	}
	sessions, err := h.tenantSessions(r.Context(), sub.TenantKey)
	if err != nil {
		return err
	}
	return WriteJSON(w, http.StatusOK, SessionsResponse{Sessions: sessions})
}

func (h *surfaceEndpoints) handleSessionIntent(w http.ResponseWriter, r *http.Request) error {
	sub, err := subject(r)
	if err != nil {
		return err
	}
	var req IntentRequest
	if err := decodeJSON(r, &req); err != nil {
		return err
	}

	sessionID := chi.URLParam(r, "sessionID")
	sessions, err := h.tenantSessions(r.Context(), sub.TenantKey)
	if err != nil {
		return err
	}
	found := false
	for _, s := range sessions {
		if s.ID == sessionID {
			found = true
			break
		}
	}
	if !found {
		return &HTTPError{StatusCode: http.StatusNotFound, Message: "Session not found"}
	}

	ctx, cancel := context.WithTimeout(r.Context(), hubTimeout)
	defer cancel()
	if !h.hub.Route(ctx, websocket.IntentMessage{SessionID: sessionID, Visible: req.Visible}) {
		return &HTTPError{StatusCode: http.StatusServiceUnavailable, Message: "Session hub unavailable"}
	}
	return WriteJSON(w, http.StatusAccepted, ApiMessageResponse{Message: "intent queued"})
}

func (h *surfaceEndpoints) tenantSessions(ctx context.Context, tenantKey string) ([]websocket.SessionRes, error) {
	ctx, cancel := context.WithTimeout(ctx, hubTimeout)
	defer cancel()

	all, err := h.hub.Sessions(ctx)
	if err != nil {
		return nil, &HTTPError{StatusCode: http.StatusServiceUnavailable, Message: "Session hub unavailable", ErrorLog: err}
	}
	res := make([]websocket.SessionRes, 0, len(all))
	for _, s := range all {
		if s.TenantKey == tenantKey {
			res = append(res, s)
		}
	}
	return res, nil
}
