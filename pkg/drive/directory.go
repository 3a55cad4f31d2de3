package drive

import (
	"slices"
	"strings"

	driveerrors "github.com/marmos91/dittodrive/pkg/drive/errors"
)

// Directory is an entry owning a collection of children keyed by name.
//
// "." and ".." are never stored: FileByName resolves them to the directory
// itself and to its parent. The root is the only directory that is its own
// parent.
type Directory struct {
	entry
	children map[string]Entry
}

var _ Entry = (*Directory)(nil)

func (d *Directory) Kind() Kind { return KindDirectory }
func (d *Directory) AsDirectory() (*Directory, bool) { return d, true }

// IsTopLevel reports whether the directory is its own parent.
func (d *Directory) IsTopLevel() bool { return d.parent == d }

// Path returns the name for a top-level directory and the usual
// parent-derived path otherwise.
func (d *Directory) Path() string {
	if d.IsTopLevel() {
		return d.name
	}
	return d.entry.Path()
}

// childPrefix is the path children append "/<name>" to.
func (d *Directory) childPrefix() string {
	if d.IsTopLevel() {
		return ""
	}
	return d.Path()
}

// Size counts the children plus the "." and ".." pseudo-entries.
func (d *Directory) Size() int { return 2 + len(d.children) }

// IsEmpty reports whether the directory has no children.
func (d *Directory) IsEmpty() bool { return d.Size() == 2 }

// FileByName returns the directory itself for ".", its parent for "..",
// or the child with the given name.
func (d *Directory) FileByName(name string) (Entry, error) {
	switch name {
	case ".":
		return d, nil
	case "..":
		if d.parent == nil {
			return nil, driveerrors.NewFileUnknownError(name)
		}
		return d.parent, nil
	}
	if child, ok := d.children[name]; ok {
		return child, nil
	}
	return nil, driveerrors.NewFileUnknownError(name)
}

// hasFile reports whether a real child with the given name exists.
func (d *Directory) hasFile(name string) bool {
	_, ok := d.children[name]
	return ok
}

// sortedChildren returns the children ordered by name.
func (d *Directory) sortedChildren() []Entry {
	out := make([]Entry, 0, len(d.children))
	for _, c := range d.children {
		out = append(out, c)
	}
	slices.SortFunc(out, ByName)
	return out
}

// Entries returns the children ordered by name. Requires read on d.
func (d *Directory) Entries(p *User) ([]Entry, error) {
	if err := d.Enforce(p, RightRead); err != nil {
		return nil, err
	}
	return d.sortedChildren(), nil
}

// ============================================================================
// Child creation
// ============================================================================

// prepareChild runs the checks shared by every creation operation: name
// validity, write on d for the creating owner, and name uniqueness.
func (d *Directory) prepareChild(name string, owner *User) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if owner == nil {
		return driveerrors.NewInvalidArgumentError("owner is required")
	}
	if err := d.Enforce(owner, RightWrite); err != nil {
		return err
	}
	if d.hasFile(name) {
		return driveerrors.NewFileExistsError(name)
	}
	return nil
}

// newChild builds the shared state of a child of d. Initial permissions
// are copied from the owner's umask.
func (d *Directory) newChild(name string, owner *User) entry {
	return entry{
		fs:     d.fs,
		id:     d.fs.requestID(),
		name:   name,
		owner:  owner,
		perms:  owner.Umask,
		mtime:  d.fs.now(),
		parent: d,
	}
}

// link inserts a freshly built child and indexes it.
func (d *Directory) link(child Entry) {
	d.children[child.Name()] = child
	d.fs.index[child.ID()] = child
	d.touch()
}

// CreateDirectory creates an empty subdirectory owned by owner.
func (d *Directory) CreateDirectory(name string, owner *User) (*Directory, error) {
	if err := d.prepareChild(name, owner); err != nil {
		return nil, err
	}
	dir := &Directory{entry: d.newChild(name, owner), children: make(map[string]Entry)}
	d.link(dir)
	return dir, nil
}

// CreatePlainFile creates a plain file owned by owner holding data.
func (d *Directory) CreatePlainFile(name string, owner *User, data string) (*PlainFile, error) {
	if err := d.prepareChild(name, owner); err != nil {
		return nil, err
	}
	f := &PlainFile{entry: d.newChild(name, owner), data: data}
	d.link(f)
	return f, nil
}

// CreateApp creates an app that runs the named program when executed.
func (d *Directory) CreateApp(name string, owner *User, program string) (*App, error) {
	if err := d.prepareChild(name, owner); err != nil {
		return nil, err
	}
	a := &App{entry: d.newChild(name, owner), program: program}
	d.link(a)
	return a, nil
}

// CreateLink creates a link pointing at target.
func (d *Directory) CreateLink(name string, owner *User, target string) (*Link, error) {
	if err := d.prepareChild(name, owner); err != nil {
		return nil, err
	}
	if strings.TrimSpace(target) == "" {
		return nil, driveerrors.NewInvalidArgumentError("link target is required")
	}
	l := &Link{entry: d.newChild(name, owner), target: target}
	d.link(l)
	return l, nil
}

// ============================================================================
// Removal
// ============================================================================

// Remove removes the named child on behalf of p.
//
// The removal is all-or-nothing: delete is checked on the child and, for a
// directory, on every descendant before anything is unlinked. Descendants
// are destroyed before their directory.
func (d *Directory) Remove(name string, p *User) error {
	if name == "." || name == ".." {
		return driveerrors.NewIllegalRemovalError(name)
	}

	child, err := d.FileByName(name)
	if err != nil {
		return err
	}

	var doomed []Entry
	if err := child.collectRemoval(p, &doomed); err != nil {
		return err
	}

	delete(d.children, name)
	for _, e := range doomed {
		if dir, ok := e.AsDirectory(); ok {
			dir.children = nil
		}
		d.fs.unindex(e.ID())
		e.base().detach()
	}
	d.touch()
	return nil
}

// collectRemoval checks delete on d, then on every descendant, and records
// the entries in post-order.
func (d *Directory) collectRemoval(p *User, doomed *[]Entry) error {
	if err := d.Enforce(p, RightDelete); err != nil {
		return err
	}
	for _, c := range d.sortedChildren() {
		if err := c.collectRemoval(p, doomed); err != nil {
			return err
		}
	}
	*doomed = append(*doomed, d)
	return nil
}

// ============================================================================
// Listing and execution
// ============================================================================

// ListFilesAll renders the directory with one RenderLine per entry, the
// children sorted by name. Requires read on d.
func (d *Directory) ListFilesAll(p *User) (string, error) {
	return Render(d, p, RenderLine, ByName)
}

// ListFilesSimple renders only entry names, the children sorted by their
// rendered line. Requires read on d.
func (d *Directory) ListFilesSimple(p *User) (string, error) {
	return Render(d, p, RenderName, ByRendered(RenderLine))
}

// Execute lists the directory. Permission and lookup failures are returned
// to the caller.
func (d *Directory) Execute(p *User) (string, error) { return d.execute(p, 0) }

func (d *Directory) execute(p *User, _ int) (string, error) {
	return d.ListFilesAll(p)
}

func (d *Directory) fillRecord(*EntryRecord) {}

func (d *Directory) render(name string) string { return d.renderWith(KindDirectory, name) }

// String implements fmt.Stringer.
func (d *Directory) String() string { return d.render(d.name) }
