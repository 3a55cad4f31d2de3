package drive

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	driveerrors "github.com/marmos91/dittodrive/pkg/drive/errors"
)

// ============================================================================
// PlainFile
// ============================================================================

func TestPlainFile(t *testing.T) {
	t.Parallel()

	t.Run("size is the payload length", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		assert.Equal(t, 5, f.a.Size())
		assert.Equal(t, KindPlainFile, f.a.Kind())
	})

	t.Run("read and execute return the content", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		data, err := f.a.Read(f.bob)
		require.NoError(t, err)
		assert.Equal(t, "hello", data)

		out, err := f.a.Execute(f.bob)
		require.NoError(t, err)
		assert.Equal(t, "hello", out)
	})

	t.Run("write requires write and touches the file", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.clock.Advance(time.Second)

		err := f.a.Write(f.bob, "nope")
		assert.True(t, driveerrors.IsInsufficientPermissions(err))

		require.NoError(t, f.a.Write(f.alice, "hello world"))
		assert.Equal(t, 11, f.a.Size())
		assert.Equal(t, testEpoch.Add(time.Second), f.a.LastModified())
	})

	t.Run("read requires read", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		require.NoError(t, f.a.Chmod(f.alice, MustParsePermissions("rwx:---")))

		_, err := f.a.Execute(f.bob)
		assert.True(t, driveerrors.IsInsufficientPermissions(err))
	})

	t.Run("string", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		assert.Equal(t, "-rwxdr-x- a.txt", f.a.String())
	})
}

// ============================================================================
// App
// ============================================================================

func TestApp(t *testing.T) {
	t.Parallel()

	t.Run("runs the registered program", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.fs.RegisterProgram("whoami", func(_ *App, p *User) (string, error) {
			return p.Username, nil
		})

		app, err := f.fs.Root().CreateApp("who", f.alice, "whoami")
		require.NoError(t, err)

		out, err := app.Execute(f.bob)
		require.NoError(t, err)
		assert.Equal(t, "bob", out)
		assert.Equal(t, len("whoami"), app.Size())
		assert.Equal(t, "whoami", app.Program())
	})

	t.Run("requires execute", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.fs.RegisterProgram("whoami", func(_ *App, p *User) (string, error) { return p.Username, nil })

		app, err := f.fs.Root().CreateApp("who", f.alice, "whoami")
		require.NoError(t, err)
		require.NoError(t, app.Chmod(f.alice, MustParsePermissions("rwx:r--")))

		_, err = app.Execute(f.bob)
		assert.True(t, driveerrors.IsInsufficientPermissions(err))
	})

	t.Run("unknown program", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		app, err := f.fs.Root().CreateApp("ghost", f.alice, "missing")
		require.NoError(t, err)

		_, err = app.Execute(f.alice)
		assert.Equal(t, driveerrors.ErrNotExecutable, driveerrors.CodeOf(err))
	})

	t.Run("program errors propagate", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		boom := errors.New("boom")
		f.fs.RegisterProgram("fail", func(*App, *User) (string, error) { return "", boom })

		app, err := f.fs.Root().CreateApp("fail", f.alice, "fail")
		require.NoError(t, err)

		_, err = app.Execute(f.alice)
		assert.ErrorIs(t, err, boom)
	})
}

// ============================================================================
// Link
// ============================================================================

func TestLink(t *testing.T) {
	t.Parallel()

	t.Run("size is the target length", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		l, err := f.fs.Root().CreateLink("l", f.root, "/docs/a.txt")
		require.NoError(t, err)
		assert.Equal(t, len("/docs/a.txt"), l.Size())
		assert.Equal(t, "/docs/a.txt", l.Target())
	})

	t.Run("absolute target executes from the root", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		l, err := f.fs.Root().CreateLink("l", f.root, "/docs/a.txt")
		require.NoError(t, err)

		out, err := l.Execute(f.root)
		require.NoError(t, err)
		assert.Equal(t, "hello", out)
	})

	t.Run("relative target executes from the link's directory", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		l, err := f.docs.CreateLink("again", f.root, "a.txt")
		require.NoError(t, err)

		target, err := l.Follow(f.root)
		require.NoError(t, err)
		assert.Same(t, f.a, target)
	})

	t.Run("target permissions apply", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		l, err := f.fs.Root().CreateLink("l", f.root, "/docs/a.txt")
		require.NoError(t, err)

		_, err = l.Execute(f.bob)
		assert.True(t, driveerrors.IsInsufficientPermissions(err))
	})

	t.Run("link to a directory lists it", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		l, err := f.fs.Root().CreateLink("d", f.root, "/docs")
		require.NoError(t, err)

		out, err := l.Execute(f.root)
		require.NoError(t, err)
		want, err := f.docs.ListFilesAll(f.root)
		require.NoError(t, err)
		assert.Equal(t, want, out)
	})

	t.Run("cycles are bounded", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		ping, err := f.fs.Root().CreateLink("ping", f.root, "/pong")
		require.NoError(t, err)
		_, err = f.fs.Root().CreateLink("pong", f.root, "/ping")
		require.NoError(t, err)

		_, err = ping.Execute(f.root)
		assert.Equal(t, driveerrors.ErrLinkLoop, driveerrors.CodeOf(err))
	})

	t.Run("resolve follows chained links", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		_, err := f.fs.Root().CreateLink("l1", f.root, "/docs/a.txt")
		require.NoError(t, err)
		l2, err := f.fs.Root().CreateLink("l2", f.root, "/l1")
		require.NoError(t, err)

		target, err := l2.Resolve(f.root)
		require.NoError(t, err)
		assert.Same(t, f.a, target)
	})

	t.Run("resolve bounds cycles", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		ping, err := f.fs.Root().CreateLink("ping", f.root, "/pong")
		require.NoError(t, err)
		_, err = f.fs.Root().CreateLink("pong", f.root, "/ping")
		require.NoError(t, err)

		_, err = ping.Resolve(f.root)
		assert.Equal(t, driveerrors.ErrLinkLoop, driveerrors.CodeOf(err))
	})

	t.Run("dangling target", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		l, err := f.fs.Root().CreateLink("l", f.root, "/nowhere")
		require.NoError(t, err)

		_, err = l.Execute(f.root)
		assert.True(t, driveerrors.IsFileUnknown(err))
	})

	t.Run("variant accessors", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		l, err := f.fs.Root().CreateLink("l", f.root, "/docs")
		require.NoError(t, err)

		got, ok := l.AsLink()
		assert.True(t, ok)
		assert.Same(t, l, got)
		_, ok = l.AsPlainFile()
		assert.False(t, ok)

		file, ok := f.a.AsPlainFile()
		assert.True(t, ok)
		assert.Same(t, f.a, file)
		_, ok = f.docs.AsLink()
		assert.False(t, ok)
		_, ok = f.a.AsApp()
		assert.False(t, ok)
	})

	t.Run("string shows the target", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		l, err := f.fs.Root().CreateLink("l", f.root, "/docs")
		require.NoError(t, err)
		assert.Equal(t, "lrwxdrwxd l -> /docs", l.String())
	})
}
