// Package visibility owns the mount and show/hide state of the embedded chat
// surface. A Machine is not safe for concurrent use: callers serialize every
// input, which the widget controller does with a single-worker queue.
package visibility

import (
	"context"
)

type State int

const (
	Unmounted State = iota
	MountedHidden
	TransitioningIn
	Shown
	TransitioningOut
)

var stateNames = map[State]string{
	Unmounted:        "unmounted",
	MountedHidden:    "mounted_hidden",
	TransitioningIn:  "transitioning_in",
	Shown:            "shown",
	TransitioningOut: "transitioning_out",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

func (s State) Mounted() bool {
	return s != Unmounted
}

func (s State) InFlight() bool {
	return s == TransitioningIn || s == TransitioningOut
}

type Direction int

const (
	In Direction = iota
	Out
)

func (d Direction) String() string {
	if d == In {
		return "in"
	}
	return "out"
}

// Position is the settled place of the surface.
type Position int

const (
	PositionHidden Position = iota
	PositionShown
)

// Transition is handed to the render layer, which reports back with the same Epoch.
type Transition struct {
	Direction Direction
	Epoch     uint64
	From      Position
	To        Position
}

// Hooks perform the effects the machine decides on. They run on the caller's goroutine.
type Hooks interface {
	// Mount validates configuration and resolves the canonical URL. Returning
	// false keeps the machine unmounted; the implementation reports why.
	Mount() bool
	// WillShow and WillHide are awaited before the transition starts.
	WillShow(ctx context.Context)
	WillHide(ctx context.Context)
	StartTransition(t Transition)
	Shown()
	Hidden()
	Unmount()
}

type Machine struct {
	hooks    Hooks
	state    State
	intent   bool
	pending  bool
	epoch    uint64
	position Position
	inFlight Transition
}

func New(hooks Hooks) *Machine {
	return &Machine{hooks: hooks}
}

func (m *Machine) State() State {
	return m.state
}

func (m *Machine) Intent() bool {
	return m.intent
}

// Pending reports whether an intent change arrived during the in-flight transition.
func (m *Machine) Pending() bool {
	return m.pending
}

func (m *Machine) Epoch() uint64 {
	return m.epoch
}

func (m *Machine) Position() Position {
	return m.position
}

// SetIntent records the host's desired visibility. An unchanged intent is a
// no-op unless the machine rests away from it, e.g. after an interrupted
// transition. During a transition the new intent is only recorded.
func (m *Machine) SetIntent(ctx context.Context, visible bool) {
	if visible == m.intent && !m.restingAgainstIntent() {
		return
	}
	m.intent = visible
	if m.state.InFlight() {
		m.pending = true
		return
	}
	m.advance(ctx)
}

// Reconcile re-applies the current intent, e.g. after the configuration changed.
func (m *Machine) Reconcile(ctx context.Context) {
	if m.state.InFlight() {
		return
	}
	m.advance(ctx)
}

// TransitionComplete handles the render layer's completion signal. Signals
// for any epoch other than the in-flight one are ignored and false is returned.
// An unfinished transition returns to where it started without notifying and
// only moves again if the intent changed meanwhile.
func (m *Machine) TransitionComplete(ctx context.Context, epoch uint64, finished bool) bool {
	if !m.state.InFlight() || epoch != m.inFlight.Epoch {
		return false
	}
	dir := m.inFlight.Direction
	pending := m.pending
	m.inFlight = Transition{}
	m.pending = false

	switch {
	case dir == In && finished:
		m.state = Shown
		m.position = PositionShown
		m.hooks.Shown()
	case dir == Out && finished:
		m.state = MountedHidden
		m.position = PositionHidden
		m.hooks.Hidden()
	case dir == In:
		m.state = MountedHidden
	default:
		m.state = Shown
	}

	if !finished && !pending {
		return true
	}
	// Notification hooks may have torn the mount down.
	if m.state.Mounted() && !m.state.InFlight() {
		m.advance(ctx)
	}
	return true
}

// Teardown unmounts immediately from any mounted state, skipping the out
// transition, and resets intent to hidden. The hidden notification fires
// unless the host was already told the surface is hidden. Any in-flight
// transition becomes stale.
func (m *Machine) Teardown() {
	if m.state == Unmounted {
		return
	}
	notify := m.state != MountedHidden || m.intent
	m.epoch++
	m.state = Unmounted
	m.intent = false
	m.pending = false
	m.inFlight = Transition{}
	m.position = PositionHidden
	m.hooks.Unmount()
	if notify {
		m.hooks.Hidden()
	}
}

func (m *Machine) restingAgainstIntent() bool {
	switch m.state {
	case MountedHidden:
		return m.intent
	case Shown:
		return !m.intent
	}
	return false
}

func (m *Machine) advance(ctx context.Context) {
	for {
		switch m.state {
		case Unmounted:
			if !m.intent || !m.hooks.Mount() {
				return
			}
			m.state = MountedHidden
			m.position = PositionHidden
		case MountedHidden:
			if !m.intent {
				return
			}
			m.begin(ctx, In)
			return
		case Shown:
			if m.intent {
				return
			}
			m.begin(ctx, Out)
			return
		default:
			return
		}
	}
}

// begin awaits the pre-transition notification and starts the transition,
// unless the notification changed the state underneath it.
func (m *Machine) begin(ctx context.Context, dir Direction) {
	epoch := m.epoch
	origin := m.state
	if dir == In {
		m.hooks.WillShow(ctx)
	} else {
		m.hooks.WillHide(ctx)
	}
	if m.epoch != epoch || m.state != origin {
		return
	}

	m.epoch++
	t := Transition{Direction: dir, Epoch: m.epoch, From: m.position}
	if dir == In {
		m.state = TransitioningIn
		t.To = PositionShown
	} else {
		m.state = TransitioningOut
		t.To = PositionHidden
	}
	m.inFlight = t
	m.hooks.StartTransition(t)
}
