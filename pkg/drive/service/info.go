package service

import (
	"time"

	"github.com/google/uuid"

	"github.com/marmos91/dittodrive/pkg/drive"
)

// EntryInfo describes one entry as seen by the requesting principal.
type EntryInfo struct {
	ID          int       `json:"id" yaml:"id"`
	Path        string    `json:"path" yaml:"path"`
	Name        string    `json:"name" yaml:"name"`
	Kind        string    `json:"kind" yaml:"kind"`
	Owner       string    `json:"owner" yaml:"owner"`
	Permissions string    `json:"permissions" yaml:"permissions"`
	Effective   string    `json:"effective" yaml:"effective"`
	Size        int       `json:"size" yaml:"size"`
	ModifiedAt  time.Time `json:"modified_at" yaml:"modified_at"`
	Target      string    `json:"target,omitempty" yaml:"target,omitempty"`
	Program     string    `json:"program,omitempty" yaml:"program,omitempty"`
}

func infoOf(e drive.Entry, p *drive.User) *EntryInfo {
	info := &EntryInfo{
		ID:          e.ID(),
		Path:        e.Path(),
		Name:        e.Name(),
		Kind:        e.Kind().String(),
		Owner:       e.Owner().Username,
		Permissions: e.Permissions().String(),
		Effective:   e.ResolvePermissions(p).String(),
		Size:        e.Size(),
		ModifiedAt:  e.LastModified(),
	}
	if link, ok := e.AsLink(); ok {
		info.Target = link.Target()
	}
	if app, ok := e.AsApp(); ok {
		info.Program = app.Program()
	}
	return info
}

// Stats summarises the drive.
type Stats struct {
	FileSystemID uuid.UUID `json:"filesystem_id" yaml:"filesystem_id"`
	RootUser     string    `json:"root_user" yaml:"root_user"`
	Entries      int       `json:"entries" yaml:"entries"`
	Owned        int       `json:"owned" yaml:"owned"`
}
