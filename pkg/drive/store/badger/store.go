// Package badger persists drive snapshots in a BadgerDB key-value store.
package badger

import (
	"context"
	"errors"
	"fmt"
	"sync"

	badgerdb "github.com/dgraph-io/badger/v4"

	"github.com/marmos91/dittodrive/pkg/drive"
	"github.com/marmos91/dittodrive/pkg/drive/store"
)

// Config configures a BadgerStore.
type Config struct {
	// Path is the database directory. Ignored when InMemory is set.
	Path string

	// InMemory keeps the database in RAM only.
	InMemory bool
}

// BadgerStore stores one snapshot as a header key plus one key per entry.
// Every Save runs in a single Badger transaction.
type BadgerStore struct {
	db     *badgerdb.DB
	mu     sync.RWMutex
	closed bool
}

// New opens (or creates) the database described by cfg.
func New(ctx context.Context, cfg Config) (*BadgerStore, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("badger store path is required")
	}

	opts := badgerdb.DefaultOptions(cfg.Path).WithLogger(nil)
	if cfg.InMemory {
		opts = badgerdb.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	}

	db, err := badgerdb.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

// Load implements store.Store.
func (s *BadgerStore) Load(ctx context.Context) (*drive.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, store.ErrStoreClosed
	}

	var snap *drive.Snapshot
	err := s.db.View(func(txn *badgerdb.Txn) error {
		item, err := txn.Get(keyHeader())
		if errors.Is(err, badgerdb.ErrKeyNotFound) {
			return store.ErrNoSnapshot
		}
		if err != nil {
			return err
		}

		var h *header
		if err := item.Value(func(val []byte) error {
			h, err = decodeHeader(val)
			return err
		}); err != nil {
			return err
		}

		entries := make([]drive.EntryRecord, 0, h.Count)
		it := txn.NewIterator(badgerdb.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(prefixEntry)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := it.Item().Value(func(val []byte) error {
				rec, err := decodeEntry(val)
				if err != nil {
					return err
				}
				entries = append(entries, rec)
				return nil
			}); err != nil {
				return err
			}
		}

		if len(entries) != h.Count {
			return fmt.Errorf("snapshot header lists %d entries, found %d", h.Count, len(entries))
		}

		snap = &drive.Snapshot{
			FileSystemID: h.FileSystemID,
			RootUser:     h.RootUser,
			RootID:       h.RootID,
			NextID:       h.NextID,
			Entries:      entries,
		}
		return nil
	})
	if errors.Is(err, store.ErrNoSnapshot) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	return snap, nil
}

// Save implements store.Store. Stale entry keys from a larger previous
// snapshot are deleted in the same transaction.
func (s *BadgerStore) Save(ctx context.Context, snap *drive.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return store.ErrStoreClosed
	}

	err := s.db.Update(func(txn *badgerdb.Txn) error {
		if err := deletePrefix(txn, []byte(prefixEntry)); err != nil {
			return err
		}

		for i := range snap.Entries {
			data, err := encodeEntry(&snap.Entries[i])
			if err != nil {
				return err
			}
			if err := txn.Set(keyEntry(i), data); err != nil {
				return fmt.Errorf("failed to store entry %d: %w", snap.Entries[i].ID, err)
			}
		}

		data, err := encodeHeader(snap)
		if err != nil {
			return err
		}
		return txn.Set(keyHeader(), data)
	})
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

func deletePrefix(txn *badgerdb.Txn, prefix []byte) error {
	opts := badgerdb.DefaultIteratorOptions
	opts.PrefetchValues = false
	it := txn.NewIterator(opts)

	var keys [][]byte
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		keys = append(keys, it.Item().KeyCopy(nil))
	}
	it.Close()

	for _, k := range keys {
		if err := txn.Delete(k); err != nil {
			return fmt.Errorf("failed to delete %s: %w", k, err)
		}
	}
	return nil
}

// Close implements store.Store.
func (s *BadgerStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

var _ store.Store = (*BadgerStore)(nil)
