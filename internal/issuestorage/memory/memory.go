// Package memory implements issuestorage.Backend in process memory.
// It is used to exercise the issue service without touching the filesystem.
package memory

import (
	"context"
	"sync"

	"jira-lite/internal/issuestorage"
)

// Store holds the last written State. Reads and writes copy the snapshot,
// so callers never share memory with the store.
type Store struct {
	mu    sync.Mutex
	state *issuestorage.State
}

// New returns a Store holding the empty State.
func New() *Store {
	return &Store{state: issuestorage.NewState()}
}

// Read returns a deep copy of the last written State.
func (s *Store) Read(ctx context.Context) (*issuestorage.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone(), nil
}

// Write replaces the stored State with a deep copy of state.
func (s *Store) Write(ctx context.Context, state *issuestorage.State) error {
	if err := state.CheckEntries(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state.Clone()
	return nil
}

var _ issuestorage.Backend = (*Store)(nil)
