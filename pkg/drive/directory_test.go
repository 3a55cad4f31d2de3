package drive

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	driveerrors "github.com/marmos91/dittodrive/pkg/drive/errors"
)

// ============================================================================
// Size and emptiness
// ============================================================================

func TestDirectory_Size(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	root := f.fs.Root()

	assert.Equal(t, 3, root.Size())
	assert.False(t, root.IsEmpty())

	empty, err := root.CreateDirectory("empty", f.root)
	require.NoError(t, err)
	assert.Equal(t, 2, empty.Size())
	assert.True(t, empty.IsEmpty())

	_, err = root.CreatePlainFile("x", f.root, "")
	require.NoError(t, err)
	assert.Equal(t, 2+len(root.children), root.Size())
	assert.Equal(t, 5, root.Size())
}

// ============================================================================
// FileByName
// ============================================================================

func TestDirectory_FileByName(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	self, err := f.docs.FileByName(".")
	require.NoError(t, err)
	assert.Same(t, f.docs, self)

	parent, err := f.docs.FileByName("..")
	require.NoError(t, err)
	assert.Same(t, f.fs.Root(), parent)

	rootParent, err := f.fs.Root().FileByName("..")
	require.NoError(t, err)
	assert.Same(t, f.fs.Root(), rootParent)

	child, err := f.docs.FileByName("a.txt")
	require.NoError(t, err)
	assert.Same(t, f.a, child)

	_, err = f.docs.FileByName("missing")
	assert.True(t, driveerrors.IsFileUnknown(err))
}

// ============================================================================
// Creation
// ============================================================================

func TestDirectory_Create(t *testing.T) {
	t.Parallel()

	t.Run("assigns identity, owner, umask and parent", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.clock.Advance(time.Hour)

		dir, err := f.fs.Root().CreateDirectory("home", f.bob)
		require.NoError(t, err)

		assert.Same(t, f.bob, dir.Owner())
		assert.Equal(t, f.bob.Umask, dir.Permissions())
		assert.Same(t, f.fs.Root(), dir.Parent())
		assert.Equal(t, testEpoch.Add(time.Hour), dir.LastModified())
		assert.Equal(t, testEpoch.Add(time.Hour), f.fs.Root().LastModified())

		byID, ok := f.fs.FileByID(dir.ID())
		require.True(t, ok)
		assert.Same(t, dir, byID)
	})

	t.Run("ids are unique", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		seen := map[int]bool{f.fs.Root().ID(): true, f.docs.ID(): true, f.a.ID(): true}

		for _, name := range []string{"a", "b", "c"} {
			e, err := f.fs.Root().CreatePlainFile(name, f.root, "")
			require.NoError(t, err)
			assert.False(t, seen[e.ID()])
			seen[e.ID()] = true
		}
		assert.Equal(t, 6, f.fs.Len())
	})

	t.Run("duplicate name fails and leaves children unchanged", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		root := f.fs.Root()

		_, err := root.CreateDirectory("x", f.root)
		require.NoError(t, err)
		before := childNames(t, root)

		_, err = root.CreatePlainFile("x", f.root, "data")
		require.Error(t, err)
		assert.True(t, driveerrors.IsFileExists(err))

		var de *driveerrors.DriveError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "x", de.Name)
		assert.Equal(t, before, childNames(t, root))
	})

	t.Run("missing write fails and leaves children unchanged", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		before := childNames(t, f.docs)
		fsLen := f.fs.Len()

		_, err := f.docs.CreatePlainFile("b.txt", f.bob, "")
		assert.True(t, driveerrors.IsInsufficientPermissions(err))
		assert.Equal(t, before, childNames(t, f.docs))
		assert.Equal(t, fsLen, f.fs.Len())
	})

	t.Run("every variant checks write", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		_, err := f.docs.CreateDirectory("d", f.bob)
		assert.True(t, driveerrors.IsInsufficientPermissions(err))
		_, err = f.docs.CreateApp("x", f.bob, "whoami")
		assert.True(t, driveerrors.IsInsufficientPermissions(err))
		_, err = f.docs.CreateLink("l", f.bob, "/docs")
		assert.True(t, driveerrors.IsInsufficientPermissions(err))
	})

	t.Run("invalid names are rejected", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		for _, name := range []string{"", ".", "..", "a/b"} {
			_, err := f.fs.Root().CreateDirectory(name, f.root)
			assert.Equal(t, driveerrors.ErrInvalidName, driveerrors.CodeOf(err), name)
		}
	})

	t.Run("owner is required", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		_, err := f.fs.Root().CreateDirectory("x", nil)
		assert.Equal(t, driveerrors.ErrInvalidArgument, driveerrors.CodeOf(err))
	})

	t.Run("link target is required", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		_, err := f.fs.Root().CreateLink("l", f.root, "  ")
		assert.Equal(t, driveerrors.ErrInvalidArgument, driveerrors.CodeOf(err))
		assert.False(t, f.fs.Root().hasFile("l"))
	})
}

// ============================================================================
// Removal
// ============================================================================

func TestDirectory_Remove(t *testing.T) {
	t.Parallel()

	t.Run("dot and dotdot are illegal for every principal", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		for _, dir := range []*Directory{f.fs.Root(), f.docs} {
			for _, p := range []*User{f.root, f.alice, f.bob, nil} {
				for _, name := range []string{".", ".."} {
					err := dir.Remove(name, p)
					assert.True(t, driveerrors.IsIllegalRemoval(err))
				}
			}
		}
		assert.Equal(t, 3, f.fs.Len())
	})

	t.Run("unknown child", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		assert.True(t, driveerrors.IsFileUnknown(f.docs.Remove("nope", f.root)))
	})

	t.Run("owner removes a file", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		id := f.a.ID()

		require.NoError(t, f.docs.Remove("a.txt", f.alice))

		assert.True(t, f.docs.IsEmpty())
		_, ok := f.fs.FileByID(id)
		assert.False(t, ok)
		assert.Nil(t, f.a.Parent())
	})

	t.Run("delete is required", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		err := f.docs.Remove("a.txt", f.bob)
		assert.True(t, driveerrors.IsInsufficientPermissions(err))
		assert.True(t, f.docs.hasFile("a.txt"))
	})

	t.Run("recursive removal destroys descendants", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		require.NoError(t, f.docs.Chmod(f.alice, MustParsePermissions("rwx:r-x")))
		sub, err := f.docs.CreateDirectory("sub", f.alice)
		require.NoError(t, err)
		deep, err := sub.CreatePlainFile("deep", f.alice, "x")
		require.NoError(t, err)

		require.NoError(t, f.fs.Root().Remove("docs", f.alice))

		assert.Equal(t, 1, f.fs.Len())
		assert.True(t, f.fs.Root().IsEmpty())
		for _, e := range []Entry{f.docs, sub, deep, f.a} {
			_, ok := f.fs.FileByID(e.ID())
			assert.False(t, ok, e.Name())
			assert.Nil(t, e.Parent(), e.Name())
		}
	})

	t.Run("recursive removal is all or nothing", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		require.NoError(t, f.docs.Chmod(f.alice, MustParsePermissions("rwx:rwx")))
		_, err := f.docs.CreatePlainFile("bobs", f.bob, "")
		require.NoError(t, err)
		protected, err := f.docs.CreatePlainFile("z-protected", f.alice, "")
		require.NoError(t, err)
		require.NoError(t, protected.Chmod(f.alice, MustParsePermissions("rwx:r--")))

		err = f.fs.Root().Remove("docs", f.bob)
		require.True(t, driveerrors.IsInsufficientPermissions(err))

		assert.Equal(t, []string{"a.txt", "bobs", "z-protected"}, childNames(t, f.docs))
		assert.True(t, f.fs.Root().hasFile("docs"))
		assert.Equal(t, 5, f.fs.Len())
		assert.Same(t, f.docs, protected.Parent())
	})

	t.Run("root bypasses delete checks", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		require.NoError(t, f.a.Chmod(f.alice, MustParsePermissions("---:---")))

		assert.NoError(t, f.fs.Root().Remove("docs", f.root))
		assert.True(t, f.fs.Root().IsEmpty())
	})
}

// ============================================================================
// Execute
// ============================================================================

func TestDirectory_Execute(t *testing.T) {
	t.Parallel()

	t.Run("lists the directory", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		out, err := f.docs.Execute(f.alice)
		require.NoError(t, err)
		want, err := f.docs.ListFilesAll(f.alice)
		require.NoError(t, err)
		assert.Equal(t, want, out)
	})

	t.Run("propagates permission failures", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		require.NoError(t, f.docs.Chmod(f.alice, MustParsePermissions("rw-:---")))

		out, err := f.docs.Execute(f.bob)
		assert.Empty(t, out)
		assert.True(t, driveerrors.IsInsufficientPermissions(err))
	})
}

func TestDirectory_String(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	assert.Equal(t, "drw-dr--- docs", f.docs.String())
}
