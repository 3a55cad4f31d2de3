package drive

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	driveerrors "github.com/marmos91/dittodrive/pkg/drive/errors"
)

// EntryRecord is the flat, storable form of one entry. Owners are stored
// by username and resolved again on restore.
type EntryRecord struct {
	ID          int         `json:"id"`
	ParentID    int         `json:"parent_id"`
	Kind        Kind        `json:"kind"`
	Name        string      `json:"name"`
	Owner       string      `json:"owner"`
	Permissions Permissions `json:"permissions"`
	ModifiedAt  time.Time   `json:"modified_at"`
	Data        string      `json:"data,omitempty"`
	Program     string      `json:"program,omitempty"`
	Target      string      `json:"target,omitempty"`
}

// Snapshot is the complete state of a FileSystem. Entries are in
// pre-order: every directory precedes its children, and the root is first
// with ParentID equal to its own ID.
type Snapshot struct {
	FileSystemID uuid.UUID     `json:"filesystem_id"`
	RootUser     string        `json:"root_user"`
	RootID       int           `json:"root_id"`
	NextID       int           `json:"next_id"`
	Entries      []EntryRecord `json:"entries"`
}

// Snapshot exports the tree.
func (fs *FileSystem) Snapshot() *Snapshot {
	snap := &Snapshot{
		FileSystemID: fs.id,
		RootUser:     fs.rootUser.Username,
		RootID:       fs.root.id,
		NextID:       fs.nextID,
		Entries:      make([]EntryRecord, 0, len(fs.index)),
	}
	snap.Entries = appendRecords(snap.Entries, fs.root)
	return snap
}

func appendRecords(out []EntryRecord, e Entry) []EntryRecord {
	b := e.base()
	rec := EntryRecord{
		ID:          b.id,
		ParentID:    b.parent.id,
		Kind:        e.Kind(),
		Name:        b.name,
		Owner:       b.owner.Username,
		Permissions: b.perms,
		ModifiedAt:  b.mtime,
	}
	e.fillRecord(&rec)
	out = append(out, rec)

	if dir, ok := e.AsDirectory(); ok {
		for _, c := range dir.sortedChildren() {
			out = appendRecords(out, c)
		}
	}
	return out
}

// RestoreSnapshot rebuilds a FileSystem from snap, preserving ids,
// permissions and timestamps. Owners are resolved through users; an
// unknown owner fails the restore with UserUnknown.
func RestoreSnapshot(ctx context.Context, snap *Snapshot, users UserResolver, opts Options) (*FileSystem, error) {
	if snap == nil || len(snap.Entries) == 0 {
		return nil, driveerrors.NewInvalidArgumentError("empty snapshot")
	}

	owners := make(map[string]*User)
	lookup := func(username string) (*User, error) {
		if u, ok := owners[username]; ok {
			return u, nil
		}
		u, err := users.LookupUser(ctx, username)
		if err != nil {
			return nil, err
		}
		owners[username] = u
		return u, nil
	}

	rootUser, err := lookup(snap.RootUser)
	if err != nil {
		return nil, err
	}

	rootRec := snap.Entries[0]
	if rootRec.Kind != KindDirectory || rootRec.ID != snap.RootID || rootRec.ParentID != rootRec.ID {
		return nil, driveerrors.NewInvalidArgumentError("snapshot does not start with its root directory")
	}
	rootOwner, err := lookup(rootRec.Owner)
	if err != nil {
		return nil, err
	}

	fs := newFileSystem(snap.FileSystemID, rootUser, opts)
	fs.root = fs.newRoot(rootRec.ID, rootRec.Name, rootOwner, rootRec.Permissions, rootRec.ModifiedAt)
	fs.reserveID(rootRec.ID)

	for _, rec := range snap.Entries[1:] {
		if err := fs.restoreRecord(rec, lookup); err != nil {
			return nil, fmt.Errorf("restore entry %d: %w", rec.ID, err)
		}
	}
	fs.reserveID(snap.NextID - 1)
	return fs, nil
}

func (fs *FileSystem) restoreRecord(rec EntryRecord, lookup func(string) (*User, error)) error {
	if _, dup := fs.index[rec.ID]; dup {
		return driveerrors.NewInvalidArgumentError(fmt.Sprintf("duplicate entry id %d", rec.ID))
	}
	if err := ValidateName(rec.Name); err != nil {
		return err
	}

	parentEntry, ok := fs.index[rec.ParentID]
	if !ok {
		return driveerrors.NewFileUnknownError(fmt.Sprintf("parent %d", rec.ParentID))
	}
	parent, ok := parentEntry.AsDirectory()
	if !ok {
		return driveerrors.NewNotADirectoryError(parentEntry.Name())
	}
	if parent.hasFile(rec.Name) {
		return driveerrors.NewFileExistsError(rec.Name)
	}

	owner, err := lookup(rec.Owner)
	if err != nil {
		return err
	}

	base := entry{
		fs:     fs,
		id:     rec.ID,
		name:   rec.Name,
		owner:  owner,
		perms:  rec.Permissions,
		mtime:  rec.ModifiedAt,
		parent: parent,
	}

	var e Entry
	switch rec.Kind {
	case KindDirectory:
		e = &Directory{entry: base, children: make(map[string]Entry)}
	case KindPlainFile:
		e = &PlainFile{entry: base, data: rec.Data}
	case KindApp:
		e = &App{entry: base, program: rec.Program}
	case KindLink:
		e = &Link{entry: base, target: rec.Target}
	default:
		return driveerrors.NewInvalidArgumentError(fmt.Sprintf("unknown entry kind %d", int(rec.Kind)))
	}

	// Restoring must not disturb the recorded timestamps, so the child is
	// inserted without touching the parent.
	parent.children[rec.Name] = e
	fs.index[rec.ID] = e
	fs.reserveID(rec.ID)
	return nil
}
