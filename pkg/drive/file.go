package drive

import (
	driveerrors "github.com/marmos91/dittodrive/pkg/drive/errors"
)

// PlainFile is an entry carrying an opaque data payload.
type PlainFile struct {
	entry
	data string
}

var _ Entry = (*PlainFile)(nil)

func (f *PlainFile) Kind() Kind { return KindPlainFile }

func (f *PlainFile) AsPlainFile() (*PlainFile, bool) { return f, true }

// Size is the payload length.
func (f *PlainFile) Size() int { return len(f.data) }

// Read returns the payload. Requires read.
func (f *PlainFile) Read(p *User) (string, error) {
	if err := f.Enforce(p, RightRead); err != nil {
		return "", err
	}
	return f.data, nil
}

// Write replaces the payload. Requires write.
func (f *PlainFile) Write(p *User, data string) error {
	if err := f.Enforce(p, RightWrite); err != nil {
		return err
	}
	f.data = data
	f.touch()
	return nil
}

// Execute returns the file content.
func (f *PlainFile) Execute(p *User) (string, error) { return f.execute(p, 0) }

func (f *PlainFile) execute(p *User, _ int) (string, error) { return f.Read(p) }

func (f *PlainFile) collectRemoval(p *User, doomed *[]Entry) error {
	return f.checkRemoval(f, p, doomed)
}

func (f *PlainFile) fillRecord(rec *EntryRecord) { rec.Data = f.data }

func (f *PlainFile) render(name string) string { return f.renderWith(KindPlainFile, name) }

func (f *PlainFile) String() string { return f.render(f.name) }

// App is an executable entry. It has no payload; executing it runs the
// program registered on the file system under its program name.
type App struct {
	entry
	program string
}

var _ Entry = (*App)(nil)

func (a *App) Kind() Kind { return KindApp }

func (a *App) AsApp() (*App, bool) { return a, true }

// Program returns the name of the program the app runs.
func (a *App) Program() string { return a.program }

// Size is the length of the program name.
func (a *App) Size() int { return len(a.program) }

// Execute requires execute on the app and runs its program.
func (a *App) Execute(p *User) (string, error) { return a.execute(p, 0) }

func (a *App) execute(p *User, _ int) (string, error) {
	if err := a.Enforce(p, RightExecute); err != nil {
		return "", err
	}
	if a.fs == nil {
		return "", driveerrors.NewNotExecutableError(a.name)
	}
	prog, ok := a.fs.program(a.program)
	if !ok {
		return "", driveerrors.NewNotExecutableError(a.name)
	}
	return prog(a, p)
}

func (a *App) collectRemoval(p *User, doomed *[]Entry) error {
	return a.checkRemoval(a, p, doomed)
}

func (a *App) fillRecord(rec *EntryRecord) { rec.Program = a.program }

func (a *App) render(name string) string { return a.renderWith(KindApp, name) }

func (a *App) String() string { return a.render(a.name) }

// Link is an entry pointing at another path. Absolute targets are resolved
// from the root, relative targets from the link's directory.
type Link struct {
	entry
	target string
}

var _ Entry = (*Link)(nil)

func (l *Link) Kind() Kind { return KindLink }

func (l *Link) AsLink() (*Link, bool) { return l, true }

// Target returns the path the link points at.
func (l *Link) Target() string { return l.target }

// Size is the length of the target path.
func (l *Link) Size() int { return len(l.target) }

// Follow resolves the target on behalf of p. Requires read on the link.
func (l *Link) Follow(p *User) (Entry, error) {
	if err := l.Enforce(p, RightRead); err != nil {
		return nil, err
	}
	return l.follow(p)
}

func (l *Link) follow(p *User) (Entry, error) {
	if l.fs == nil || l.parent == nil {
		return nil, driveerrors.NewFileUnknownError(l.target)
	}
	start := l.parent
	if isAbsolute(l.target) {
		start = l.fs.root
	}
	tokens := SplitPath(l.target)
	if len(tokens) == 0 {
		if err := start.Enforce(p, RightRead); err != nil {
			return nil, err
		}
		return start, nil
	}
	return start.GetFile(tokens, p)
}

// Resolve follows the chain starting at l until it reaches an entry that
// is not a link. Every hop requires read on the link it leaves; chains
// longer than the file system's link depth fail with LinkLoop.
func (l *Link) Resolve(p *User) (Entry, error) {
	limit := DefaultMaxLinkDepth
	if l.fs != nil {
		limit = l.fs.maxLinkDepth
	}
	var cur Entry = l
	for depth := 0; ; depth++ {
		link, ok := cur.AsLink()
		if !ok {
			return cur, nil
		}
		if depth >= limit {
			return nil, driveerrors.NewLinkLoopError(link.name)
		}
		next, err := link.Follow(p)
		if err != nil {
			return nil, err
		}
		cur = next
	}
}

// Execute requires read on the link, then executes its target.
func (l *Link) Execute(p *User) (string, error) { return l.execute(p, 0) }

func (l *Link) execute(p *User, depth int) (string, error) {
	if l.fs != nil && depth >= l.fs.maxLinkDepth {
		return "", driveerrors.NewLinkLoopError(l.name)
	}
	target, err := l.Follow(p)
	if err != nil {
		return "", err
	}
	return target.execute(p, depth+1)
}

func (l *Link) collectRemoval(p *User, doomed *[]Entry) error {
	return l.checkRemoval(l, p, doomed)
}

func (l *Link) fillRecord(rec *EntryRecord) { rec.Target = l.target }

func (l *Link) render(name string) string {
	return l.renderWith(KindLink, name) + " -> " + l.target
}

func (l *Link) String() string { return l.render(l.name) }
