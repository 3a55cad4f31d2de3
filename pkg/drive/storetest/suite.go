// Package storetest provides a conformance test suite for snapshot store
// implementations.
//
// Usage:
//
//	func TestConformance(t *testing.T) {
//	    storetest.RunConformanceSuite(t, func(t *testing.T) store.Store {
//	        return memory.New()
//	    })
//	}
//
// The factory receives *testing.T so it can call t.TempDir() for stores
// that need filesystem paths and t.Cleanup for teardown.
package storetest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/dittodrive/pkg/drive"
	"github.com/marmos91/dittodrive/pkg/drive/store"
)

// StoreFactory creates a fresh Store for each test.
type StoreFactory func(t *testing.T) store.Store

// RunConformanceSuite runs every conformance test against factory.
func RunConformanceSuite(t *testing.T, factory StoreFactory) {
	t.Helper()

	t.Run("EmptyLoad", func(t *testing.T) { testEmptyLoad(t, factory) })
	t.Run("SaveLoad", func(t *testing.T) { testSaveLoad(t, factory) })
	t.Run("Overwrite", func(t *testing.T) { testOverwrite(t, factory) })
	t.Run("Restore", func(t *testing.T) { testRestore(t, factory) })
	t.Run("Isolation", func(t *testing.T) { testIsolation(t, factory) })
	t.Run("CanceledContext", func(t *testing.T) { testCanceledContext(t, factory) })
	t.Run("Closed", func(t *testing.T) { testClosed(t, factory) })
}

// Users is the principal set the sample tree is built from.
var (
	Root  = &drive.User{Username: "root", Umask: drive.MustParsePermissions("rwx:rwx")}
	Alice = &drive.User{Username: "alice", Umask: drive.MustParsePermissions("rwx:r-x")}
	Users = drive.NewStaticUsers(Root, Alice)
)

// SampleFileSystem builds a small tree holding every entry kind.
func SampleFileSystem(t *testing.T) *drive.FileSystem {
	t.Helper()

	fs, err := drive.New(Root, drive.Options{})
	require.NoError(t, err)

	docs, err := fs.Root().CreateDirectory("docs", Alice)
	require.NoError(t, err)
	_, err = docs.CreatePlainFile("a.txt", Alice, "hello")
	require.NoError(t, err)
	_, err = fs.Root().CreateApp("who", Root, "whoami")
	require.NoError(t, err)
	_, err = fs.Root().CreateLink("readme", Root, "/docs/a.txt")
	require.NoError(t, err)
	return fs
}

func testEmptyLoad(t *testing.T, factory StoreFactory) {
	s := factory(t)

	_, err := s.Load(t.Context())
	assert.ErrorIs(t, err, store.ErrNoSnapshot)
}

func testSaveLoad(t *testing.T, factory StoreFactory) {
	s := factory(t)
	want := SampleFileSystem(t).Snapshot()

	require.NoError(t, s.Save(t.Context(), want))
	got, err := s.Load(t.Context())
	require.NoError(t, err)

	assert.Equal(t, want.FileSystemID, got.FileSystemID)
	assert.Equal(t, want.RootUser, got.RootUser)
	assert.Equal(t, want.RootID, got.RootID)
	assert.Equal(t, want.NextID, got.NextID)
	require.Len(t, got.Entries, len(want.Entries))
	for i := range want.Entries {
		w, g := want.Entries[i], got.Entries[i]
		assert.True(t, w.ModifiedAt.Equal(g.ModifiedAt), w.Name)
		w.ModifiedAt = g.ModifiedAt
		assert.Equal(t, w, g)
	}
}

func testOverwrite(t *testing.T, factory StoreFactory) {
	s := factory(t)
	ctx := t.Context()
	fs := SampleFileSystem(t)

	require.NoError(t, s.Save(ctx, fs.Snapshot()))
	require.NoError(t, fs.Root().Remove("docs", Root))
	require.NoError(t, s.Save(ctx, fs.Snapshot()))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, got.Entries, fs.Len())
	for _, rec := range got.Entries {
		assert.NotEqual(t, "docs", rec.Name)
		assert.NotEqual(t, "a.txt", rec.Name)
	}
}

func testRestore(t *testing.T, factory StoreFactory) {
	s := factory(t)
	ctx := t.Context()
	fs := SampleFileSystem(t)

	require.NoError(t, s.Save(ctx, fs.Snapshot()))
	snap, err := s.Load(ctx)
	require.NoError(t, err)

	restored, err := drive.RestoreSnapshot(ctx, snap, Users, drive.Options{})
	require.NoError(t, err)

	want, err := fs.Root().ListFilesAll(Root)
	require.NoError(t, err)
	got, err := restored.Root().ListFilesAll(Root)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	a, err := restored.Lookup("/docs/a.txt", Alice)
	require.NoError(t, err)
	out, err := a.Execute(Alice)
	require.NoError(t, err)
	assert.Equal(t, "hello", out)
}

// testIsolation checks that callers cannot reach into stored state.
func testIsolation(t *testing.T, factory StoreFactory) {
	s := factory(t)
	ctx := t.Context()
	snap := SampleFileSystem(t).Snapshot()

	require.NoError(t, s.Save(ctx, snap))
	snap.Entries[0].Name = "mutated"

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "/", got.Entries[0].Name)

	got.Entries[0].Name = "mutated"
	again, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "/", again.Entries[0].Name)
}

func testCanceledContext(t *testing.T, factory StoreFactory) {
	s := factory(t)
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	assert.Error(t, s.Save(ctx, SampleFileSystem(t).Snapshot()))
	_, err := s.Load(ctx)
	assert.Error(t, err)
	assert.False(t, errors.Is(err, store.ErrNoSnapshot))
}

func testClosed(t *testing.T, factory StoreFactory) {
	s := factory(t)
	require.NoError(t, s.Close())

	_, err := s.Load(t.Context())
	assert.ErrorIs(t, err, store.ErrStoreClosed)
	assert.ErrorIs(t, s.Save(t.Context(), SampleFileSystem(t).Snapshot()), store.ErrStoreClosed)
}
