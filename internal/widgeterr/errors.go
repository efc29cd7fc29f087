// Package widgeterr normalizes every failure of the embedded chat surface into
// a single Record type and delivers it to one host-facing sink.
package widgeterr

import (
	"fmt"
)

type Kind string

const (
	KindMissingCredentials    Kind = "MISSING_CREDENTIALS"
	KindInvalidURL            Kind = "INVALID_URL"
	KindInvalidMessage        Kind = "INVALID_MESSAGE"
	KindInvalidTranscriptData Kind = "INVALID_TRANSCRIPT_DATA"
	KindSurfaceLoad           Kind = "WEBVIEW_LOAD_ERROR"
	KindNavigationOpen        Kind = "NAVIGATION_OPEN_ERROR"
	KindLifecycleCallback     Kind = "LIFECYCLE_CALLBACK_ERROR"
	KindSurfaceReported       Kind = "SURFACE_REPORTED_ERROR"
)

// Fatal reports whether an error of this kind tears the surface down.
func (k Kind) Fatal() bool {
	switch k {
	case KindMissingCredentials, KindInvalidURL, KindSurfaceLoad, KindSurfaceReported:
		return true
	}
	return false
}

// Record is a one-shot error notification. The controller never keeps them.
type Record struct {
	Kind    Kind           `json:"code"`
	Message string         `json:"message"`
	Cause   error          `json:"-"`
	Context map[string]any `json:"data,omitempty"`
}

func New(kind Kind, message string, cause error) Record {
	return Record{Kind: kind, Message: message, Cause: cause}
}

func (r Record) With(key string, value any) Record {
	ctx := make(map[string]any, len(r.Context)+1)
	for k, v := range r.Context {
		ctx[k] = v
	}
	ctx[key] = value
	r.Context = ctx
	return r
}

func (r Record) Error() string {
	if r.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", r.Kind, r.Message, r.Cause)
	}
	return fmt.Sprintf("%s: %s", r.Kind, r.Message)
}

func (r Record) Unwrap() error {
	return r.Cause
}
