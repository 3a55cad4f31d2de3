package drive

import (
	"fmt"
	"strings"
	"time"

	driveerrors "github.com/marmos91/dittodrive/pkg/drive/errors"
)

// Kind identifies the variant of an entry.
type Kind int

const (
	KindDirectory Kind = iota + 1
	KindPlainFile
	KindApp
	KindLink
)

// String returns the lowercase variant name.
func (k Kind) String() string {
	switch k {
	case KindDirectory:
		return "directory"
	case KindPlainFile:
		return "file"
	case KindApp:
		return "app"
	case KindLink:
		return "link"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// TypeChar is the first character of a rendered line.
func (k Kind) TypeChar() byte {
	switch k {
	case KindDirectory:
		return 'd'
	case KindApp:
		return 'x'
	case KindLink:
		return 'l'
	default:
		return '-'
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "directory":
		*k = KindDirectory
	case "file":
		*k = KindPlainFile
	case "app":
		*k = KindApp
	case "link":
		*k = KindLink
	default:
		return driveerrors.NewInvalidArgumentError(fmt.Sprintf("unknown entry kind %q", text))
	}
	return nil
}

// Entry is a node of the tree. The set of implementations is closed:
// *Directory, *PlainFile, *App and *Link. Per-variant behaviour (Size,
// Execute, String) is reached through the interface, never by inspecting
// the concrete type.
type Entry interface {
	ID() int
	Name() string
	Owner() *User
	Permissions() Permissions
	LastModified() time.Time
	Kind() Kind

	// Parent returns the containing directory. The root is its own parent;
	// a removed entry has no parent.
	Parent() *Directory

	// Path returns the location of the entry, derived from its ancestors.
	Path() string

	// ResolvePermissions returns the triad that applies to p.
	ResolvePermissions(p *User) Triad

	// Enforce fails with InsufficientPermissions unless p holds r.
	Enforce(p *User, r Right) error

	// Chmod replaces the permission pair. Only the owner and the superuser
	// may change it.
	Chmod(p *User, perms Permissions) error

	// Size is the variant-specific size.
	Size() int

	// Execute runs the variant-specific behaviour on behalf of p.
	Execute(p *User) (string, error)

	// AsDirectory returns the entry as a directory when it is one.
	AsDirectory() (*Directory, bool)

	// AsPlainFile returns the entry as a plain file when it is one.
	AsPlainFile() (*PlainFile, bool)

	// AsApp returns the entry as an app when it is one.
	AsApp() (*App, bool)

	// AsLink returns the entry as a link when it is one.
	AsLink() (*Link, bool)

	// String renders the entry as a listing line.
	String() string

	base() *entry
	render(name string) string
	execute(p *User, depth int) (string, error)
	collectRemoval(p *User, doomed *[]Entry) error
	fillRecord(rec *EntryRecord)
}

// entry holds the state shared by every variant.
type entry struct {
	fs     *FileSystem
	id     int
	name   string
	owner  *User
	perms  Permissions
	mtime  time.Time
	parent *Directory
}

func (e *entry) base() *entry { return e }
func (e *entry) ID() int { return e.id }
func (e *entry) Name() string { return e.name }
func (e *entry) Owner() *User { return e.owner }
func (e *entry) Permissions() Permissions { return e.perms }
func (e *entry) LastModified() time.Time { return e.mtime }
func (e *entry) Parent() *Directory { return e.parent }
func (e *entry) AsDirectory() (*Directory, bool) { return nil, false }
func (e *entry) AsPlainFile() (*PlainFile, bool) { return nil, false }
func (e *entry) AsApp() (*App, bool) { return nil, false }
func (e *entry) AsLink() (*Link, bool) { return nil, false }

// Path joins the parent's path and the entry name. The root contributes
// an empty prefix so that a root named "/" yields "/docs/a.txt".
func (e *entry) Path() string {
	if e.parent == nil {
		return e.name
	}
	return e.parent.childPrefix() + "/" + e.name
}

// ResolvePermissions implements the owner/others model with a superuser
// bypass: the superuser gets every right, the owner gets the owner triad,
// everybody else gets the others triad.
func (e *entry) ResolvePermissions(p *User) Triad {
	if e.fs != nil && e.fs.isSuperuser(p) {
		return TriadFull
	}
	if e.owner.Is(p) {
		return e.perms.Owner
	}
	return e.perms.Others
}

// Enforce is the single permission gate used by every mutating or
// traversing operation.
func (e *entry) Enforce(p *User, r Right) error {
	if !e.ResolvePermissions(p).Has(r) {
		return driveerrors.NewInsufficientPermissionsError(r.String(), e.name)
	}
	return nil
}

func (e *entry) Chmod(p *User, perms Permissions) error {
	if !e.owner.Is(p) && (e.fs == nil || !e.fs.isSuperuser(p)) {
		return driveerrors.NewInsufficientPermissionsError("chmod", e.name)
	}
	e.perms = perms
	e.touch()
	return nil
}

// renderWith builds "<type><owner><others> <name>".
func (e *entry) renderWith(k Kind, name string) string {
	var b strings.Builder
	b.Grow(10 + len(name))
	b.WriteByte(k.TypeChar())
	b.WriteString(e.perms.String())
	b.WriteByte(' ')
	b.WriteString(name)
	return b.String()
}

// checkRemoval enforces delete and appends self to the removal list.
func (e *entry) checkRemoval(self Entry, p *User, doomed *[]Entry) error {
	if err := e.Enforce(p, RightDelete); err != nil {
		return err
	}
	*doomed = append(*doomed, self)
	return nil
}

func (e *entry) touch() {
	if e.fs != nil {
		e.mtime = e.fs.now()
	}
}

// detach severs the entry from the tree once it has been removed.
func (e *entry) detach() {
	e.parent = nil
	e.fs = nil
}

// SameEntry reports whether a and b denote the same entry: same file
// system, same id and same path.
func SameEntry(a, b Entry) bool {
	if a == nil || b == nil {
		return false
	}
	return a.base().fs == b.base().fs && a.ID() == b.ID() && a.Path() == b.Path()
}

// ValidateName rejects names that cannot be stored as a directory child.
func ValidateName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsRune(name, '/') {
		return driveerrors.NewInvalidNameError(name)
	}
	return nil
}
