package drive

import (
	"time"

	"github.com/google/uuid"

	driveerrors "github.com/marmos91/dittodrive/pkg/drive/errors"
)

// DefaultMaxLinkDepth bounds the number of links followed by one Execute.
const DefaultMaxLinkDepth = 8

// Program is the behaviour behind an App. It receives the app being
// executed and the principal executing it.
type Program func(app *App, p *User) (string, error)

// Options configures a new FileSystem.
type Options struct {
	// RootName is the name, and therefore the path, of the root directory.
	// Defaults to "/".
	RootName string

	// RootPermissions is the permission pair of the root directory.
	// Defaults to the root user's umask.
	RootPermissions *Permissions

	// Superuser decides which principals bypass permission checks.
	// Defaults to RootUsername(rootUser.Username).
	Superuser SuperuserChecker

	// MaxLinkDepth bounds link chains. Defaults to DefaultMaxLinkDepth.
	MaxLinkDepth int

	// Clock returns the current time. Defaults to time.Now.
	Clock func() time.Time
}

// FileSystem is a single tree of entries with its root principal.
//
// A FileSystem is not safe for concurrent use. Callers serialise access
// (see pkg/drive/service).
type FileSystem struct {
	id           uuid.UUID
	root         *Directory
	rootUser     *User
	superuser    SuperuserChecker
	nextID       int
	index        map[int]Entry
	programs     map[string]Program
	clock        func() time.Time
	maxLinkDepth int
}

// New creates a file system whose root directory is owned by rootUser.
func New(rootUser *User, opts Options) (*FileSystem, error) {
	if rootUser == nil {
		return nil, driveerrors.NewInvalidArgumentError("root user is required")
	}

	fs := newFileSystem(uuid.New(), rootUser, opts)

	perms := rootUser.Umask
	if opts.RootPermissions != nil {
		perms = *opts.RootPermissions
	}
	fs.root = fs.newRoot(fs.requestID(), rootName(opts.RootName), rootUser, perms, fs.now())
	return fs, nil
}

func newFileSystem(id uuid.UUID, rootUser *User, opts Options) *FileSystem {
	fs := &FileSystem{
		id:           id,
		rootUser:     rootUser,
		superuser:    opts.Superuser,
		index:        make(map[int]Entry),
		programs:     make(map[string]Program),
		clock:        opts.Clock,
		maxLinkDepth: opts.MaxLinkDepth,
	}
	if fs.superuser == nil {
		fs.superuser = RootUsername(rootUser.Username)
	}
	if fs.clock == nil {
		fs.clock = time.Now
	}
	if fs.maxLinkDepth <= 0 {
		fs.maxLinkDepth = DefaultMaxLinkDepth
	}
	return fs
}

func rootName(name string) string {
	if name == "" {
		return "/"
	}
	return name
}

// newRoot builds the top-level directory and indexes it.
func (fs *FileSystem) newRoot(id int, name string, owner *User, perms Permissions, mtime time.Time) *Directory {
	root := &Directory{
		entry: entry{
			fs:    fs,
			id:    id,
			name:  name,
			owner: owner,
			perms: perms,
			mtime: mtime,
		},
		children: make(map[string]Entry),
	}
	root.parent = root
	fs.index[id] = root
	return root
}

// ID identifies the file system across snapshots.
func (fs *FileSystem) ID() uuid.UUID { return fs.id }

// Root returns the top-level directory.
func (fs *FileSystem) Root() *Directory { return fs.root }

// RootUser returns the owner of the root directory.
func (fs *FileSystem) RootUser() *User { return fs.rootUser }

// IsSuperuser reports whether p bypasses permission checks.
func (fs *FileSystem) IsSuperuser(p *User) bool { return fs.isSuperuser(p) }

func (fs *FileSystem) isSuperuser(p *User) bool {
	return p != nil && fs.superuser != nil && fs.superuser.IsSuperuser(p)
}

// Len returns the number of entries in the tree, the root included.
func (fs *FileSystem) Len() int { return len(fs.index) }

// FileByID returns the live entry with the given id.
func (fs *FileSystem) FileByID(id int) (Entry, bool) {
	e, ok := fs.index[id]
	return e, ok
}

// RegisterProgram makes name runnable by apps. A later registration
// replaces an earlier one.
func (fs *FileSystem) RegisterProgram(name string, prog Program) {
	fs.programs[name] = prog
}

func (fs *FileSystem) program(name string) (Program, bool) {
	p, ok := fs.programs[name]
	return p, ok
}

// Lookup resolves a slash-separated path from the root on behalf of p.
// The root itself is returned for "/" or "" after checking read on it.
func (fs *FileSystem) Lookup(path string, p *User) (Entry, error) {
	tokens := SplitPath(path)
	if len(tokens) == 0 {
		if err := fs.root.Enforce(p, RightRead); err != nil {
			return nil, err
		}
		return fs.root, nil
	}
	return fs.root.GetFile(tokens, p)
}

// LookupParent resolves the directory that holds path and returns it with
// the final component. It requires execute on every directory walked.
func (fs *FileSystem) LookupParent(path string, p *User) (*Directory, string, error) {
	tokens := SplitPath(path)
	if len(tokens) == 0 {
		return nil, "", driveerrors.NewInvalidNameError(path)
	}
	dir, err := fs.root.Walk(tokens[:len(tokens)-1], p)
	if err != nil {
		return nil, "", err
	}
	return dir, tokens[len(tokens)-1], nil
}

func (fs *FileSystem) requestID() int {
	id := fs.nextID
	fs.nextID++
	return id
}

// reserveID makes sure id is never handed out again.
func (fs *FileSystem) reserveID(id int) {
	if id >= fs.nextID {
		fs.nextID = id + 1
	}
}

func (fs *FileSystem) unindex(id int) { delete(fs.index, id) }

func (fs *FileSystem) now() time.Time { return fs.clock() }
