package widget

import (
	"context"

	"chat-widget/internal/model"
	"chat-widget/internal/visibility"
	"chat-widget/internal/widgeterr"
)

// MountRequest tells the render layer to load the surface.
type MountRequest struct {
	URL   string `json:"url"`
	Color string `json:"color,omitempty"`
}

// Surface is the render layer. It renders nothing until Mount, runs the visual
// transition on StartTransition and reports back through
// Controller.TransitionComplete with the transition's epoch.
// Methods are called from the controller's worker and must not block.
type Surface interface {
	Mount(req MountRequest)
	StartTransition(t visibility.Transition)
	Unmount()
	SetLoading(loading bool)
}

// Callbacks are the host's slots. Every field is optional.
type Callbacks struct {
	OnNewMessage   func(model.NewMessage)
	OnRoomOpened   func(model.RoomEvent)
	OnRoomClosed   func(model.RoomEvent)
	OnRoomReopened func(model.RoomEvent)
	OnUIReady      func()

	// OnWidgetWillShow and OnWidgetWillHide are awaited before the transition
	// starts, bounded by Options.CallbackTimeout. Their errors are reported
	// and never block the transition.
	OnWidgetWillShow func(ctx context.Context) error
	OnWidgetShow     func()
	OnWidgetWillHide func(ctx context.Context) error
	OnWidgetHide     func()

	OnError func(widgeterr.Record)

	// HandleURL opens URLs the surface tried to navigate to. When nil the
	// fallback opener is used.
	HandleURL func(ctx context.Context, url string) error

	OnTranscriptReceived func(transcript string)
}
