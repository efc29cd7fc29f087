package bridge

import (
	"unicode/utf8"

	"chat-widget/internal/model"
	"chat-widget/internal/widgeterr"
)

// Handler receives dispatched messages. Implementations must not block for long:
// the channel processes one message at a time.
type Handler interface {
	UIReady()
	NewMessage(model.NewMessage)
	RoomOpened(model.RoomEvent)
	RoomClosed(model.RoomEvent)
	RoomReopened(model.RoomEvent)
	HideRequested()
	SurfaceFailed(widgeterr.Record)
	TranscriptReceived(string)
}

type Channel struct {
	handler  Handler
	reporter *widgeterr.Reporter
	observe  func(Kind)
}

// NewChannel dispatches to handler and reports failures to reporter. observe,
// when set, is called once per message with its kind ("" for unparseable input).
func NewChannel(handler Handler, reporter *widgeterr.Reporter, observe func(Kind)) *Channel {
	return &Channel{
		handler:  handler,
		reporter: reporter,
		observe:  observe,
	}
}

func (c *Channel) OnRawMessage(raw string) {
	env, err := Parse(raw)
	if err != nil {
		c.count("")
		c.reporter.Report(widgeterr.New(widgeterr.KindInvalidMessage, "could not parse message from chat surface", err).With("raw", truncate(raw)))
		return
	}
	c.count(env.Kind)
	c.Dispatch(env)
}

// Dispatch routes an already parsed envelope.
func (c *Channel) Dispatch(env Envelope) {
	switch env.Kind {
	case KindUIReady:
		c.handler.UIReady()

	case KindNewMessage:
		var payload model.NewMessage
		if err := env.DecodeData(&payload); err != nil {
			c.invalid(env, err)
			return
		}
		c.handler.NewMessage(payload)

	case KindRoomOpened, KindRoomClosed, KindRoomReopened:
		var payload model.RoomEvent
		if err := env.DecodeData(&payload); err != nil {
			c.invalid(env, err)
			return
		}
		switch env.Kind {
		case KindRoomOpened:
			c.handler.RoomOpened(payload)
		case KindRoomClosed:
			c.handler.RoomClosed(payload)
		default:
			c.handler.RoomReopened(payload)
		}

	case KindHideChatWindow:
		c.handler.HideRequested()

	case KindError:
		rec := widgeterr.New(widgeterr.KindSurfaceReported, "chat surface reported an error", nil)
		var payload model.SurfaceError
		if len(env.Data) > 0 && env.DecodeData(&payload) == nil {
			if payload.Message != "" {
				rec.Message = payload.Message
			}
			if payload.Code != "" {
				rec = rec.With("surfaceCode", payload.Code)
			}
		} else if len(env.Data) > 0 {
			rec = rec.With("data", string(env.Data))
		}
		c.handler.SurfaceFailed(rec)

	case KindDownloadTranscript:
		transcript, err := env.Transcript()
		if err != nil {
			c.reporter.Report(widgeterr.New(widgeterr.KindInvalidTranscriptData, "transcript data is not a string", err))
			return
		}
		c.handler.TranscriptReceived(transcript)

	default:
		c.reporter.Warn("unknown message type from chat surface", map[string]any{"messageType": string(env.Kind)})
	}
}

func (c *Channel) invalid(env Envelope, err error) {
	c.reporter.Report(widgeterr.New(widgeterr.KindInvalidMessage, "malformed "+string(env.Kind)+" payload", err))
}

func (c *Channel) count(kind Kind) {
	if c.observe != nil {
		c.observe(kind)
	}
}

func truncate(s string) string {
	const max = 256
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
