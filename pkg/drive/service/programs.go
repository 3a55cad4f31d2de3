package service

import (
	"github.com/marmos91/dittodrive/pkg/drive"
)

// Builtin program names.
const (
	ProgramWhoami = "whoami"
	ProgramPath   = "path"
	ProgramOwner  = "owner"
)

// builtinPrograms returns the programs every drive can run.
func builtinPrograms() map[string]drive.Program {
	return map[string]drive.Program{
		ProgramWhoami: func(_ *drive.App, p *drive.User) (string, error) {
			return p.Username, nil
		},
		ProgramPath: func(app *drive.App, _ *drive.User) (string, error) {
			return app.Path(), nil
		},
		ProgramOwner: func(app *drive.App, _ *drive.User) (string, error) {
			return app.Owner().Username, nil
		},
	}
}
