package drive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	driveerrors "github.com/marmos91/dittodrive/pkg/drive/errors"
)

func TestSplitPath(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"docs", "a.txt"}, SplitPath("/docs/a.txt"))
	assert.Equal(t, []string{"docs", "a.txt"}, SplitPath("docs//a.txt/"))
	assert.Empty(t, SplitPath("/"))
	assert.Empty(t, SplitPath(""))
}

func TestGetFile(t *testing.T) {
	t.Parallel()

	t.Run("execute on intermediates and read on target", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		require.NoError(t, f.docs.Chmod(f.alice, MustParsePermissions("rwx:r-x")))

		e, err := f.fs.Root().GetFile([]string{"docs", "a.txt"}, f.bob)
		require.NoError(t, err)
		assert.Same(t, f.a, e)
	})

	t.Run("missing execute on an intermediate fails even when the target is readable", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		require.NoError(t, f.docs.Chmod(f.alice, MustParsePermissions("rwx:r--")))
		require.NoError(t, f.a.Enforce(f.bob, RightRead))

		_, err := f.fs.Root().GetFile([]string{"docs", "a.txt"}, f.bob)
		assert.True(t, driveerrors.IsInsufficientPermissions(err))

		_, err = f.fs.Root().GetFile([]string{"docs", "a.txt"}, f.alice)
		assert.NoError(t, err)
	})

	t.Run("missing read on the target fails", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		require.NoError(t, f.docs.Chmod(f.alice, MustParsePermissions("rwx:r-x")))
		require.NoError(t, f.a.Chmod(f.alice, MustParsePermissions("rwx:---")))

		_, err := f.fs.Root().GetFile([]string{"docs", "a.txt"}, f.bob)
		assert.True(t, driveerrors.IsInsufficientPermissions(err))
	})

	t.Run("unknown component", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		_, err := f.fs.Root().GetFile([]string{"nope", "a.txt"}, f.root)
		assert.True(t, driveerrors.IsFileUnknown(err))

		_, err = f.fs.Root().GetFile([]string{"docs", "nope"}, f.root)
		assert.True(t, driveerrors.IsFileUnknown(err))
	})

	t.Run("file as intermediate", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		_, err := f.fs.Root().GetFile([]string{"docs", "a.txt", "x"}, f.root)
		assert.True(t, driveerrors.IsNotADirectory(err))
	})

	t.Run("dot and dotdot tokens", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		e, err := f.fs.Root().GetFile([]string{"docs", "..", "docs", ".", "a.txt"}, f.root)
		require.NoError(t, err)
		assert.Same(t, f.a, e)
	})

	t.Run("root principal traverses everything", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		require.NoError(t, f.docs.Chmod(f.alice, MustParsePermissions("---:---")))

		_, err := f.fs.Root().GetFile([]string{"docs", "a.txt"}, f.root)
		assert.NoError(t, err)
	})

	t.Run("empty tokens panic", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		assert.Panics(t, func() { _, _ = f.fs.Root().GetFile(nil, f.root) })
	})
}

func TestWalk(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	require.NoError(t, f.docs.Chmod(f.alice, MustParsePermissions("-wx:--x")))

	dir, err := f.fs.Root().Walk([]string{"docs"}, f.bob)
	require.NoError(t, err)
	assert.Same(t, f.docs, dir)

	dir, err = f.fs.Root().Walk(nil, f.bob)
	require.NoError(t, err)
	assert.Same(t, f.fs.Root(), dir)

	_, err = f.fs.Root().Walk([]string{"docs", "a.txt"}, f.bob)
	assert.True(t, driveerrors.IsNotADirectory(err))
}

func TestLookup(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	e, err := f.fs.Lookup("/docs/a.txt", f.root)
	require.NoError(t, err)
	assert.Same(t, f.a, e)

	e, err = f.fs.Lookup("/", f.bob)
	require.NoError(t, err)
	assert.Same(t, f.fs.Root(), e)

	parent, name, err := f.fs.LookupParent("/docs/new.txt", f.root)
	require.NoError(t, err)
	assert.Same(t, f.docs, parent)
	assert.Equal(t, "new.txt", name)

	_, _, err = f.fs.LookupParent("/", f.root)
	assert.Equal(t, driveerrors.ErrInvalidName, driveerrors.CodeOf(err))
}
