// Package store defines where a drive's snapshot lives between runs.
//
// A Store holds at most one snapshot. Save replaces it atomically; Load
// returns ErrNoSnapshot until the first Save.
package store

import (
	"context"
	"errors"

	"github.com/marmos91/dittodrive/pkg/drive"
)

var (
	// ErrNoSnapshot is returned by Load when nothing has been saved yet.
	ErrNoSnapshot = errors.New("no snapshot stored")

	// ErrStoreClosed is returned by every operation after Close.
	ErrStoreClosed = errors.New("store is closed")
)

// Store persists drive snapshots.
type Store interface {
	// Load returns the last saved snapshot.
	Load(ctx context.Context) (*drive.Snapshot, error)

	// Save replaces the stored snapshot. A failed Save leaves the previous
	// snapshot in place.
	Save(ctx context.Context, snap *drive.Snapshot) error

	// Close releases the store's resources.
	Close() error
}

// HealthChecker is implemented by stores backed by a remote service.
// HealthCheck reports whether that service is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Type names a Store implementation in configuration.
type Type string

const (
	TypeMemory Type = "memory"
	TypeBadger Type = "badger"
	TypeS3     Type = "s3"
)

// Clone returns a copy of snap that shares no memory with it.
func Clone(snap *drive.Snapshot) *drive.Snapshot {
	if snap == nil {
		return nil
	}
	out := *snap
	out.Entries = append([]drive.EntryRecord(nil), snap.Entries...)
	return &out
}
