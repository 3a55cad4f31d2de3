package service

import (
	"context"

	"github.com/marmos91/dittodrive/pkg/drive"
	driveerrors "github.com/marmos91/dittodrive/pkg/drive/errors"
)

// entryAt resolves path without requiring read on the final entry. It
// requires execute on every directory walked, like stat(2).
func entryAt(fs *drive.FileSystem, path string, p *drive.User) (drive.Entry, error) {
	if len(drive.SplitPath(path)) == 0 {
		return fs.Root(), nil
	}
	dir, name, err := fs.LookupParent(path, p)
	if err != nil {
		return nil, err
	}
	return dir.FileByName(name)
}

// Mkdir creates a directory at path owned by username.
func (s *Service) Mkdir(ctx context.Context, username, path string) (*EntryInfo, error) {
	var info *EntryInfo
	err := s.do(ctx, request{op: "mkdir", username: username, path: path, mutates: true},
		func(_ context.Context, fs *drive.FileSystem, p *drive.User) (drive.Entry, error) {
			dir, name, err := fs.LookupParent(path, p)
			if err != nil {
				return nil, err
			}
			created, err := dir.CreateDirectory(name, p)
			if err != nil {
				return nil, err
			}
			info = infoOf(created, p)
			return created, nil
		})
	return info, err
}

// WriteFile stores data at path. An existing plain file is overwritten,
// which requires write on it; otherwise a new file owned by username is
// created, which requires write on the directory.
func (s *Service) WriteFile(ctx context.Context, username, path, data string) (*EntryInfo, error) {
	var info *EntryInfo
	err := s.do(ctx, request{op: "write", username: username, path: path, mutates: true},
		func(_ context.Context, fs *drive.FileSystem, p *drive.User) (drive.Entry, error) {
			dir, name, err := fs.LookupParent(path, p)
			if err != nil {
				return nil, err
			}
			if err := drive.ValidateName(name); err != nil {
				return nil, err
			}

			existing, err := dir.FileByName(name)
			switch {
			case driveerrors.IsFileUnknown(err):
				created, err := dir.CreatePlainFile(name, p, data)
				if err != nil {
					return nil, err
				}
				info = infoOf(created, p)
				return created, nil
			case err != nil:
				return nil, err
			}

			file, ok := existing.AsPlainFile()
			if !ok {
				return nil, driveerrors.NewFileExistsError(name)
			}
			if err := file.Write(p, data); err != nil {
				return nil, err
			}
			info = infoOf(file, p)
			return file, nil
		})
	return info, err
}

// CreateApp creates an app at path running program.
func (s *Service) CreateApp(ctx context.Context, username, path, program string) (*EntryInfo, error) {
	var info *EntryInfo
	err := s.do(ctx, request{op: "app", username: username, path: path, mutates: true},
		func(_ context.Context, fs *drive.FileSystem, p *drive.User) (drive.Entry, error) {
			dir, name, err := fs.LookupParent(path, p)
			if err != nil {
				return nil, err
			}
			created, err := dir.CreateApp(name, p, program)
			if err != nil {
				return nil, err
			}
			info = infoOf(created, p)
			return created, nil
		})
	return info, err
}

// Symlink creates a link at path pointing to target. The target is not
// resolved until the link is followed.
func (s *Service) Symlink(ctx context.Context, username, target, path string) (*EntryInfo, error) {
	var info *EntryInfo
	err := s.do(ctx, request{op: "ln", username: username, path: path, mutates: true},
		func(_ context.Context, fs *drive.FileSystem, p *drive.User) (drive.Entry, error) {
			dir, name, err := fs.LookupParent(path, p)
			if err != nil {
				return nil, err
			}
			created, err := dir.CreateLink(name, p, target)
			if err != nil {
				return nil, err
			}
			info = infoOf(created, p)
			return created, nil
		})
	return info, err
}

// Remove deletes the entry at path, recursively for directories. Nothing
// is removed unless username may delete every entry involved.
func (s *Service) Remove(ctx context.Context, username, path string) error {
	return s.do(ctx, request{op: "rm", username: username, path: path, mutates: true},
		func(_ context.Context, fs *drive.FileSystem, p *drive.User) (drive.Entry, error) {
			dir, name, err := fs.LookupParent(path, p)
			if err != nil {
				return nil, err
			}
			doomed, err := dir.FileByName(name)
			if err != nil {
				return nil, err
			}
			if err := dir.Remove(name, p); err != nil {
				return nil, err
			}
			return doomed, nil
		})
}

// ListOptions selects the listing format.
type ListOptions struct {
	// NamesOnly renders bare names instead of full lines.
	NamesOnly bool

	// ByLine orders children by their rendered line instead of by name.
	ByLine bool
}

// List renders the directory at path, or the single line of a
// non-directory entry. Requires read on the entry.
func (s *Service) List(ctx context.Context, username, path string, opts ListOptions) (string, error) {
	var out string
	err := s.do(ctx, request{op: "ls", username: username, path: path},
		func(_ context.Context, fs *drive.FileSystem, p *drive.User) (drive.Entry, error) {
			e, err := fs.Lookup(path, p)
			if err != nil {
				return nil, err
			}

			transform := drive.Transform(drive.RenderLine)
			if opts.NamesOnly {
				transform = drive.RenderName
			}

			dir, ok := e.AsDirectory()
			if !ok {
				out = transform(e, e.Name())
				return e, nil
			}

			order := drive.Comparator(drive.ByName)
			if opts.ByLine {
				order = drive.ByRendered(drive.RenderLine)
			}
			if out, err = drive.Render(dir, p, transform, order); err != nil {
				return nil, err
			}
			return dir, nil
		})
	return out, err
}

// Cat returns the content of the plain file at path, following chains of
// links up to the drive's link depth.
func (s *Service) Cat(ctx context.Context, username, path string) (string, error) {
	var out string
	err := s.do(ctx, request{op: "cat", username: username, path: path},
		func(_ context.Context, fs *drive.FileSystem, p *drive.User) (drive.Entry, error) {
			e, err := fs.Lookup(path, p)
			if err != nil {
				return nil, err
			}
			if link, ok := e.AsLink(); ok {
				if e, err = link.Resolve(p); err != nil {
					return nil, err
				}
			}
			file, ok := e.AsPlainFile()
			if !ok {
				return nil, driveerrors.NewInvalidArgumentError(e.Path() + " is a " + e.Kind().String() + ", not a file")
			}
			if out, err = file.Read(p); err != nil {
				return nil, err
			}
			return file, nil
		})
	return out, err
}

// Execute runs the entry at path: directories list, files print, apps run
// their program and links execute their target.
func (s *Service) Execute(ctx context.Context, username, path string) (string, error) {
	var out string
	err := s.do(ctx, request{op: "run", username: username, path: path},
		func(_ context.Context, fs *drive.FileSystem, p *drive.User) (drive.Entry, error) {
			e, err := fs.Lookup(path, p)
			if err != nil {
				return nil, err
			}
			if out, err = e.Execute(p); err != nil {
				return nil, err
			}
			return e, nil
		})
	return out, err
}

// Chmod replaces the permission pair of the entry at path. perms uses any
// form accepted by drive.ParsePermissions.
func (s *Service) Chmod(ctx context.Context, username, path, perms string) (*EntryInfo, error) {
	parsed, err := drive.ParsePermissions(perms)
	if err != nil {
		return nil, driveerrors.NewInvalidArgumentError("invalid permissions " + perms)
	}

	var info *EntryInfo
	err = s.do(ctx, request{op: "chmod", username: username, path: path, mutates: true},
		func(_ context.Context, fs *drive.FileSystem, p *drive.User) (drive.Entry, error) {
			e, err := entryAt(fs, path, p)
			if err != nil {
				return nil, err
			}
			if err := e.Chmod(p, parsed); err != nil {
				return nil, err
			}
			info = infoOf(e, p)
			return e, nil
		})
	return info, err
}

// Stat describes the entry at path. Only execute on the directories
// walked is required.
func (s *Service) Stat(ctx context.Context, username, path string) (*EntryInfo, error) {
	var info *EntryInfo
	err := s.do(ctx, request{op: "stat", username: username, path: path},
		func(_ context.Context, fs *drive.FileSystem, p *drive.User) (drive.Entry, error) {
			e, err := entryAt(fs, path, p)
			if err != nil {
				return nil, err
			}
			info = infoOf(e, p)
			return e, nil
		})
	return info, err
}

// Chdir resolves path to a directory username may enter: execute is
// required on every directory walked, the target included. The returned
// path is canonical, with "." and ".." resolved by the drive.
func (s *Service) Chdir(ctx context.Context, username, path string) (*EntryInfo, error) {
	var info *EntryInfo
	err := s.do(ctx, request{op: "cd", username: username, path: path},
		func(_ context.Context, fs *drive.FileSystem, p *drive.User) (drive.Entry, error) {
			dir, err := fs.Root().Walk(drive.SplitPath(path), p)
			if err != nil {
				return nil, err
			}
			info = infoOf(dir, p)
			return dir, nil
		})
	return info, err
}

// Import applies an XML import record to the entry at path. Like Chmod it
// is reserved to the owner and the superuser.
func (s *Service) Import(ctx context.Context, username, path string, doc []byte) (*EntryInfo, error) {
	var info *EntryInfo
	err := s.do(ctx, request{op: "import", username: username, path: path, mutates: true},
		func(_ context.Context, fs *drive.FileSystem, p *drive.User) (drive.Entry, error) {
			e, err := entryAt(fs, path, p)
			if err != nil {
				return nil, err
			}
			if !e.Owner().Is(p) && !fs.IsSuperuser(p) {
				return nil, driveerrors.NewInsufficientPermissionsError("import", e.Name())
			}
			if err := fs.Import(e, doc); err != nil {
				return nil, err
			}
			info = infoOf(e, p)
			return e, nil
		})
	return info, err
}

// Stats summarises the drive for username. Owned counts the entries
// username owns.
func (s *Service) Stats(ctx context.Context, username string) (*Stats, error) {
	var stats *Stats
	err := s.do(ctx, request{op: "stats", username: username},
		func(_ context.Context, fs *drive.FileSystem, p *drive.User) (drive.Entry, error) {
			stats = &Stats{
				FileSystemID: fs.ID(),
				RootUser:     fs.RootUser().Username,
				Entries:      fs.Len(),
				Owned:        countOwned(fs, p.Username),
			}
			return fs.Root(), nil
		})
	return stats, err
}

// Owned returns the number of entries owned by username. It does not
// resolve username, so it works for accounts about to be deleted.
func (s *Service) Owned(ctx context.Context, username string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return countOwned(s.fs, username), nil
}

func countOwned(fs *drive.FileSystem, username string) int {
	n := 0
	for _, rec := range fs.Snapshot().Entries {
		if rec.Owner == username {
			n++
		}
	}
	return n
}
