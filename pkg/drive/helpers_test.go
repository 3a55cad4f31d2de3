package drive

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var testEpoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// fixture is a small tree shared by most tests:
//
//	/            root, "rwx:rwx"
//	/docs        alice, "rw-:r--"
//	/docs/a.txt  alice, "rwx:r-x"
type fixture struct {
	fs    *FileSystem
	root  *User
	alice *User
	bob   *User
	docs  *Directory
	a     *PlainFile
	clock *fakeClock
}

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newUser(name, umask string) *User {
	return &User{Username: name, Name: name, Umask: MustParsePermissions(umask), Home: "/home/" + name}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	clock := &fakeClock{now: testEpoch}
	f := &fixture{
		root:  newUser("root", "rwx:rwx"),
		alice: newUser("alice", "rwx:r-x"),
		bob:   newUser("bob", "rwx:---"),
		clock: clock,
	}

	fs, err := New(f.root, Options{Clock: clock.Now})
	require.NoError(t, err)
	f.fs = fs

	f.docs, err = fs.Root().CreateDirectory("docs", f.alice)
	require.NoError(t, err)
	f.a, err = f.docs.CreatePlainFile("a.txt", f.alice, "hello")
	require.NoError(t, err)
	require.NoError(t, f.docs.Chmod(f.alice, MustParsePermissions("rw-:r--")))

	return f
}

func (f *fixture) users() StaticUsers {
	return NewStaticUsers(f.root, f.alice, f.bob)
}

func childNames(t *testing.T, d *Directory) []string {
	t.Helper()
	names := make([]string, 0, len(d.children))
	for _, c := range d.sortedChildren() {
		names = append(names, c.Name())
	}
	return names
}
