package websocket

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"chat-widget/internal/model"
	"chat-widget/internal/visibility"
	"chat-widget/internal/widget"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const (
	pingInterval = 30 * time.Second
	writeWait    = 10 * time.Second
	readLimit    = 512 * 1024
	sendBuffer   = 64
)

var errSessionClosed = errors.New("session closed")

// Session is one connected renderer. It is the controller's Surface: every
// render instruction becomes an outbound frame.
type Session struct {
	Conn        *websocket.Conn
	Send        chan Frame
	ID          string
	Params      SessionParams
	ConnectedAt time.Time

	controller *widget.Controller
	logger     zerolog.Logger

	visible   atomic.Bool
	visitorID atomic.Value

	done      chan struct{} // closed once the session is shutting down
	closeOnce sync.Once
	mu        sync.Mutex // guards Conn writes
	isClosed  bool
}

func newSession(conn *websocket.Conn, id string, params SessionParams, logger zerolog.Logger) *Session {
	s := &Session{
		Conn:        conn,
		Send:        make(chan Frame, sendBuffer),
		ID:          id,
		Params:      params,
		ConnectedAt: time.Now(),
		logger:      logger.With().Str("session", id).Str("tenant", params.TenantKey).Logger(),
		done:        make(chan struct{}),
	}
	s.visitorID.Store("")
	return s
}

func (s *Session) Mount(req widget.MountRequest) {
	s.emit(FrameMount, "", req)
}

func (s *Session) StartTransition(t visibility.Transition) {
	s.emit(FrameTransition, "", TransitionData{
		Direction: t.Direction.String(),
		Epoch:     t.Epoch,
		From:      positionName(t.From),
		To:        positionName(t.To),
	})
}

func (s *Session) Unmount() {
	s.emit(FrameUnmount, "", nil)
}

func (s *Session) SetLoading(loading bool) {
	s.emit(FrameLoading, "", LoadingData{Loading: loading})
}

// SetVisible records the host's intent and forwards it to the controller.
func (s *Session) SetVisible(visible bool) {
	s.visible.Store(visible)
	s.controller.SetVisible(visible)
}

func (s *Session) Visible() bool {
	return s.visible.Load()
}

func (s *Session) VisitorID() string {
	id, _ := s.visitorID.Load().(string)
	return id
}

func (s *Session) Info() SessionRes {
	res := SessionRes{
		ID:          s.ID,
		TenantKey:   s.Params.TenantKey,
		Platform:    string(s.Params.Platform),
		State:       s.controller.State().String(),
		Visible:     s.Visible(),
		UIReady:     s.controller.UIReady(),
		ConnectedAt: s.ConnectedAt.Unix(),
	}
	if url, ok := s.controller.CanonicalURL(); ok {
		res.CanonicalURL = url
	}
	return res
}

func (s *Session) emit(t FrameType, id string, data any) {
	f, err := newFrame(t, id, data)
	if err != nil {
		s.logger.Error().Err(err).Str("type", string(t)).Msg("failed to encode frame")
		return
	}
	if err := s.send(f); err != nil {
		s.logger.Debug().Err(err).Str("type", string(t)).Msg("frame not sent")
	}
}

// send never blocks: the controller calls it from its worker. A renderer that
// cannot keep up is disconnected.
func (s *Session) send(f Frame) error {
	select {
	case <-s.done:
		return errSessionClosed
	default:
	}
	select {
	case s.Send <- f:
		return nil
	default:
		s.logger.Warn().Msg("send buffer full, closing session")
		s.close()
		return errors.Wrap(errSessionClosed, "send buffer full")
	}
}

func (s *Session) close() {
	s.closeOnce.Do(func() {
		close(s.done)
	})
}

func (s *Session) keepAlive() {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.mu.Lock()
			if s.isClosed {
				s.mu.Unlock()
				return
			}
			err := s.Conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
			s.mu.Unlock()

			if err != nil {
				s.logger.Debug().Err(err).Msg("ping failed")
				return
			}
		}
	}
}

func (s *Session) writePump() {
	defer func() {
		s.mu.Lock()
		s.isClosed = true
		s.Conn.Close()
		s.mu.Unlock()
	}()

	for {
		select {
		case <-s.done:
			s.flush()
			return
		case f := <-s.Send:
			if err := s.write(f); err != nil {
				s.logger.Warn().Err(err).Str("type", string(f.Type)).Msg("error sending frame")
				s.close()
				return
			}
		}
	}
}

// flush writes whatever was queued before the session closed, e.g. the
// final unmount.
func (s *Session) flush() {
	for {
		select {
		case f := <-s.Send:
			if s.write(f) != nil {
				return
			}
		default:
			return
		}
	}
}

func (s *Session) write(f Frame) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isClosed {
		return errSessionClosed
	}
	s.Conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := s.Conn.WriteJSON(f); err != nil {
		return errors.Wrap(err, "write frame")
	}
	countFrame("out", f.Type)
	return nil
}

func (s *Session) readPump(hub *Hub) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().Interface("panic", r).Msg("recovered from panic in readPump")
		}
		s.controller.Close()
		s.close()
		hub.unregister(s)
		s.logger.Info().Msg("renderer disconnected")
	}()

	s.Conn.SetReadLimit(readLimit)

	for {
		_, message, err := s.Conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
				s.logger.Debug().Err(err).Msg("read failed")
			}
			return
		}

		var f Frame
		if err := json.Unmarshal(message, &f); err != nil {
			countFrame("in", "invalid")
			s.reject("", "frame is not valid JSON")
			continue
		}
		s.handleFrame(f)
	}
}

func (s *Session) handleFrame(f Frame) {
	switch f.Type {
	case FrameConfig:
		var cfg model.Configuration
		if err := json.Unmarshal(f.Data, &cfg); err != nil {
			s.reject(f.ID, "config frame: "+err.Error())
			return
		}
		if cfg.Visitor != nil {
			s.visitorID.Store(cfg.Visitor.ID.String())
		} else {
			s.visitorID.Store("")
		}
		s.controller.SetConfig(cfg)

	case FrameIntent:
		var data IntentData
		if err := json.Unmarshal(f.Data, &data); err != nil {
			s.reject(f.ID, "intent frame: "+err.Error())
			return
		}
		s.SetVisible(data.Visible)

	case FrameMessage:
		s.controller.HandleMessage(messageText(f.Data))

	case FrameNavigation:
		var data NavigationData
		if err := json.Unmarshal(f.Data, &data); err != nil {
			s.reject(f.ID, "navigation frame: "+err.Error())
			return
		}
		allow := s.controller.ShouldStartLoad(data.URL)
		s.emit(FrameNavigationDecision, f.ID, NavigationDecision{URL: data.URL, Allow: allow})

	case FrameTransitionComplete:
		var data TransitionCompleteData
		if err := json.Unmarshal(f.Data, &data); err != nil {
			s.reject(f.ID, "transitionComplete frame: "+err.Error())
			return
		}
		s.controller.TransitionComplete(data.Epoch, data.Finished)

	case FrameLoadError:
		var data LoadErrorData
		if len(f.Data) > 0 {
			if err := json.Unmarshal(f.Data, &data); err != nil {
				s.reject(f.ID, "loadError frame: "+err.Error())
				return
			}
		}
		if data.Message == "" {
			data.Message = "renderer failed to load the chat surface"
		}
		s.controller.ReportLoadError(errors.New(data.Message))

	default:
		countFrame("in", "unknown")
		s.reject(f.ID, "unknown frame type "+string(f.Type))
		return
	}
	countFrame("in", f.Type)
}

func (s *Session) reject(id, msg string) {
	s.logger.Warn().Str("frame", id).Msg(msg)
	s.emit(FrameError, id, map[string]string{"code": "BAD_FRAME", "message": msg})
}

// messageText unwraps a message frame's payload. Renderers either forward the
// surface's string verbatim or embed the decoded object.
func messageText(data json.RawMessage) string {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		return text
	}
	return string(data)
}

func positionName(p visibility.Position) string {
	if p == visibility.PositionShown {
		return "shown"
	}
	return "hidden"
}
