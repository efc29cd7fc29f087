// Package bridge parses messages posted by the embedded chat surface and
// dispatches them to typed handlers.
package bridge

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

type Kind string

const (
	KindUIReady            Kind = "uiReady"
	KindNewMessage         Kind = "newMessage"
	KindRoomOpened         Kind = "roomOpened"
	KindRoomClosed         Kind = "roomClosed"
	KindRoomReopened       Kind = "roomReopened"
	KindHideChatWindow     Kind = "hideChatWindow"
	KindError              Kind = "error"
	KindDownloadTranscript Kind = "onDownloadTranscript"
)

var knownKinds = map[Kind]bool{
	KindUIReady:            true,
	KindNewMessage:         true,
	KindRoomOpened:         true,
	KindRoomClosed:         true,
	KindRoomReopened:       true,
	KindHideChatWindow:     true,
	KindError:              true,
	KindDownloadTranscript: true,
}

func (k Kind) Known() bool {
	return knownKinds[k]
}

var (
	ErrInvalidMessage    = errors.New("bridge: invalid message")
	ErrInvalidTranscript = errors.New("bridge: transcript is not a string")
)

// Envelope is one message from the surface: {"messageType": ..., "data": ...}.
type Envelope struct {
	Kind Kind            `json:"messageType"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Parse decodes raw into an envelope. The message must be a JSON object whose
// messageType is a non-empty string.
func Parse(raw string) (Envelope, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	if fields == nil {
		return Envelope{}, fmt.Errorf("%w: not an object", ErrInvalidMessage)
	}

	kindRaw, ok := fields["messageType"]
	if !ok {
		return Envelope{}, fmt.Errorf("%w: messageType missing", ErrInvalidMessage)
	}
	var kind string
	if err := json.Unmarshal(kindRaw, &kind); err != nil || !isJSONString(kindRaw) {
		return Envelope{}, fmt.Errorf("%w: messageType is not a string", ErrInvalidMessage)
	}
	if kind == "" {
		return Envelope{}, fmt.Errorf("%w: messageType is empty", ErrInvalidMessage)
	}

	env := Envelope{Kind: Kind(kind)}
	if data, ok := fields["data"]; ok && !isJSONNull(data) {
		env.Data = data
	}
	return env, nil
}

// DecodeData unmarshals the envelope payload into out. A missing payload is an error.
func (e Envelope) DecodeData(out any) error {
	if len(e.Data) == 0 {
		return fmt.Errorf("%w: %s without data", ErrInvalidMessage, e.Kind)
	}
	if err := json.Unmarshal(e.Data, out); err != nil {
		return fmt.Errorf("%w: %s data: %v", ErrInvalidMessage, e.Kind, err)
	}
	return nil
}

// Transcript extracts data.transcript, which must be a JSON string.
func (e Envelope) Transcript() (string, error) {
	var data map[string]json.RawMessage
	if len(e.Data) == 0 || json.Unmarshal(e.Data, &data) != nil || data == nil {
		return "", fmt.Errorf("%w: data is not an object", ErrInvalidTranscript)
	}
	raw, ok := data["transcript"]
	if !ok || !isJSONString(raw) {
		return "", ErrInvalidTranscript
	}
	var transcript string
	if err := json.Unmarshal(raw, &transcript); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidTranscript, err)
	}
	return transcript, nil
}

func isJSONString(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '"'
}

func isJSONNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
