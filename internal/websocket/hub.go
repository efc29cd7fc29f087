package websocket

import (
	"context"
	"sort"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

var errHubStopped = errors.New("hub stopped")

// Hub tracks connected sessions and routes remote intents to them. All
// registry access goes through Run.
type Hub struct {
	sessions   map[string]*Session
	Register   chan *Session
	Unregister chan *Session
	Intents    chan IntentMessage
	list       chan chan []SessionRes
	done       chan struct{}
	logger     zerolog.Logger
}

func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		sessions:   make(map[string]*Session),
		Register:   make(chan *Session),
		Unregister: make(chan *Session),
		Intents:    make(chan IntentMessage, 16),
		list:       make(chan chan []SessionRes),
		done:       make(chan struct{}),
		logger:     logger.With().Str("component", "hub").Logger(),
	}
}

func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for _, s := range h.sessions {
				s.close()
			}
			return

		case s := <-h.Register:
			h.sessions[s.ID] = s
			incSessions()
			h.logger.Info().Str("session", s.ID).Str("tenant", s.Params.TenantKey).Msg("session registered")

		case s := <-h.Unregister:
			if _, ok := h.sessions[s.ID]; ok {
				delete(h.sessions, s.ID)
				decSessions()
			}

		case intent := <-h.Intents:
			s, ok := h.sessions[intent.SessionID]
			if !ok {
				h.logger.Debug().Str("session", intent.SessionID).Msg("intent for unknown session")
				countIntent("unknown_session")
				continue
			}
			s.SetVisible(intent.Visible)
			countIntent("routed")

		case reply := <-h.list:
			res := make([]SessionRes, 0, len(h.sessions))
			for _, s := range h.sessions {
				res = append(res, s.Info())
			}
			sort.Slice(res, func(i, j int) bool { return res[i].ConnectedAt < res[j].ConnectedAt })
			reply <- res
		}
	}
}

// Sessions returns a snapshot of the connected sessions.
func (h *Hub) Sessions(ctx context.Context) ([]SessionRes, error) {
	reply := make(chan []SessionRes, 1)
	select {
	case h.list <- reply:
	case <-h.done:
		return nil, errHubStopped
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return <-reply, nil
}

// Route queues a remote intent. It returns false once the hub has stopped.
func (h *Hub) Route(ctx context.Context, intent IntentMessage) bool {
	select {
	case h.Intents <- intent:
		return true
	case <-h.done:
		return false
	case <-ctx.Done():
		return false
	}
}

func (h *Hub) register(s *Session) bool {
	select {
	case h.Register <- s:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) unregister(s *Session) {
	select {
	case h.Unregister <- s:
	case <-h.done:
	}
}
