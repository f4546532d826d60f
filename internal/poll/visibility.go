package poll

import "sync"

// VisibilitySource reports whether the consumer of poll results is currently
// being observed. The controller auto-pauses while hidden so no work is
// wasted on a view nobody is watching. Injected so scheduling stays testable
// without a real UI environment.
type VisibilitySource interface {
	Visible() bool
	// Changes streams visibility transitions. May return nil when the
	// host environment cannot report them.
	Changes() <-chan bool
}

type alwaysVisible struct{}

func (alwaysVisible) Visible() bool        { return true }
func (alwaysVisible) Changes() <-chan bool { return nil }

// AlwaysVisible is the source for headless consumers with no focus signal.
func AlwaysVisible() VisibilitySource { return alwaysVisible{} }

// SignalVisibility is a channel-backed source for hosts that can push focus
// transitions, e.g. a terminal watcher reacting to suspend/continue.
type SignalVisibility struct {
	mu      sync.Mutex
	visible bool
	ch      chan bool
}

func NewSignalVisibility(initial bool) *SignalVisibility {
	return &SignalVisibility{visible: initial, ch: make(chan bool, 16)}
}

// Set records a visibility transition and notifies the watcher. Repeated
// values are ignored.
func (s *SignalVisibility) Set(visible bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.visible == visible {
		return
	}
	s.visible = visible
	select {
	case s.ch <- visible:
	default:
		// A stalled watcher only misses intermediate transitions.
	}
}

func (s *SignalVisibility) Visible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visible
}

func (s *SignalVisibility) Changes() <-chan bool { return s.ch }
