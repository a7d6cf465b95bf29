package selection

import "sync"

// Store serializes transitions for one workspace.
type Store struct {
	mu    sync.RWMutex
	state State
}

func NewStore(initial State) *Store {
	return &Store{state: initial.Clone()}
}

// Apply runs the transitions in order and returns the resulting state.
func (s *Store) Apply(ts ...Transition) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range ts {
		s.state = t(s.state)
	}
	return s.state.Clone()
}

// TryApply runs t only when guard accepts the current state. The check and the
// write happen under one lock.
func (s *Store) TryApply(guard func(State) bool, t Transition) (State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !guard(s.state) {
		return s.state.Clone(), false
	}
	s.state = t(s.state)
	return s.state.Clone(), true
}

func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}
