package widgeterr

import (
	"github.com/rs/zerolog"
)

// Sink receives every reported record. It is the only way errors leave the controller.
type Sink func(Record)

type Reporter struct {
	sink      Sink
	logger    zerolog.Logger
	observers []func(Record)
}

type Option func(*Reporter)

// WithObserver registers a function called for every record before the sink.
func WithObserver(fn func(Record)) Option {
	return func(r *Reporter) {
		if fn != nil {
			r.observers = append(r.observers, fn)
		}
	}
}

func NewReporter(sink Sink, logger zerolog.Logger, opts ...Option) *Reporter {
	r := &Reporter{
		sink:   sink,
		logger: logger.With().Str("component", "widget_errors").Logger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Reporter) Report(rec Record) {
	if r == nil {
		return
	}

	ev := r.logger.Warn()
	if rec.Kind.Fatal() {
		ev = r.logger.Error()
	}
	ev.Err(rec.Cause).
		Str("kind", string(rec.Kind)).
		Fields(rec.Context).
		Msg(rec.Message)

	for _, obs := range r.observers {
		obs(rec)
	}

	if r.sink == nil {
		return
	}
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error().Interface("panic", p).Str("kind", string(rec.Kind)).Msg("error sink panicked")
		}
	}()
	r.sink(rec)
}

// Warn logs a soft warning that does not reach the sink.
func (r *Reporter) Warn(msg string, fields map[string]any) {
	if r == nil {
		return
	}
	r.logger.Warn().Fields(fields).Msg(msg)
}
