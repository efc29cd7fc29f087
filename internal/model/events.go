package model

type Author struct {
	UserID       string `json:"userId"`
	UserName     string `json:"userName"`
	Avatar       string `json:"avatar,omitempty"`
	ConnectionID string `json:"connectionId,omitempty"`
}

type NewMessage struct {
	Author    Author `json:"author"`
	Message   string `json:"message"`
	MessageID string `json:"messageId"`
}

type RoomEvent struct {
	RoomID int64 `json:"roomId"`
}

// SurfaceError is the payload the embedded surface attaches to an "error" message.
type SurfaceError struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}
