package marker

import (
	"github.com/google/uuid"
)

// State is the position of a session in the mark cycle.
type State int

const (
	StateClean State = iota
	StateScanning
	StateFiltering
	StateDeduping
	StateRendering
	StateMarked
)

func (s State) String() string {
	switch s {
	case StateClean:
		return "clean"
	case StateScanning:
		return "scanning"
	case StateFiltering:
		return "filtering"
	case StateDeduping:
		return "deduping"
	case StateRendering:
		return "rendering"
	case StateMarked:
		return "marked"
	default:
		return "unknown"
	}
}

// Session holds the overlay nodes created by the last mark pass and whether the
// stylesheet has been installed. It belongs to the caller and is bound to one document.
// A Session is not safe for concurrent use.
type Session struct {
	ID uuid.UUID

	overlays       []OverlayNode
	styleInstalled bool
	state          State
}

func NewSession() *Session {
	return &Session{
		ID:    uuid.New(),
		state: StateClean,
	}
}

// Overlays returns the number of live overlay nodes.
func (s *Session) Overlays() int {
	return len(s.overlays)
}

func (s *Session) StyleInstalled() bool {
	return s.styleInstalled
}

func (s *Session) State() State {
	return s.state
}

func (s *Session) track(node OverlayNode) {
	s.overlays = append(s.overlays, node)
}

// drain empties the registry and returns what it held.
func (s *Session) drain() []OverlayNode {
	nodes := s.overlays
	s.overlays = nil

	return nodes
}
