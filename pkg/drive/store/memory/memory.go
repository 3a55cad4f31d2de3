// Package memory provides an in-process snapshot store, used for
// ephemeral drives and tests.
package memory

import (
	"context"
	"sync"

	"github.com/marmos91/dittodrive/pkg/drive"
	"github.com/marmos91/dittodrive/pkg/drive/store"
)

// Store keeps the last snapshot in memory.
type Store struct {
	mu     sync.RWMutex
	snap   *drive.Snapshot
	closed bool
}

// New creates an empty memory store.
func New() *Store {
	return &Store{}
}

// Load implements store.Store.
func (s *Store) Load(ctx context.Context) (*drive.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, store.ErrStoreClosed
	}
	if s.snap == nil {
		return nil, store.ErrNoSnapshot
	}
	return store.Clone(s.snap), nil
}

// Save implements store.Store.
func (s *Store) Save(ctx context.Context, snap *drive.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return store.ErrStoreClosed
	}
	s.snap = store.Clone(snap)
	return nil
}

// Close implements store.Store.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.snap = nil
	return nil
}

var _ store.Store = (*Store)(nil)
