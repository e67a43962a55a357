package state

import (
	"fmt"
	"sync"
)

// Store holds the current snapshot and commits transitions atomically:
// a transition either replaces the whole snapshot or leaves it untouched.
type Store struct {
	mu  sync.RWMutex
	cur ViewState
}

// NewStore creates a store holding initial.
func NewStore(initial ViewState) *Store {
	return &Store{cur: initial.clone()}
}

// Snapshot returns a copy of the current snapshot.
func (st *Store) Snapshot() ViewState {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.cur.clone()
}

// Apply runs t against a copy of the current snapshot and commits the result
// if t succeeds and the result satisfies Validate.
func (st *Store) Apply(t Transition) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	next, err := t(st.cur.clone())
	if err != nil {
		return err
	}
	if err := Validate(next); err != nil {
		return fmt.Errorf("rejecting snapshot: %w", err)
	}
	next.Version = st.cur.Version + 1
	st.cur = next
	return nil
}
