package state

import (
	"context"
	"sync"
)

// Store serializes dispatches against a Root.
type Store struct {
	mu    sync.Mutex
	state Root
}

func NewStore() *Store {
	return &Store{state: InitialRoot()}
}

// Dispatch applies a and returns the resulting state.
func (s *Store) Dispatch(a Action) Root {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Reduce(s.state, a)
	return s.state
}

func (s *Store) State() Root {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Run dispatches request, performs call and dispatches the action it
// returns (SUCCESS or FAIL).
func (s *Store) Run(ctx context.Context, request ActionType, call func(context.Context) Action) Root {
	s.Dispatch(Action{Type: request})
	return s.Dispatch(call(ctx))
}

// Logout drops the session and every per-user slice.
func (s *Store) Logout() Root {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range LogoutActions() {
		s.state = Reduce(s.state, a)
	}
	return s.state
}
