package drive

import (
	"strings"

	driveerrors "github.com/marmos91/dittodrive/pkg/drive/errors"
)

// SplitPath splits a slash-separated path into name tokens. Empty
// components are dropped, so "/docs//a.txt" and "docs/a.txt" yield the
// same tokens.
func SplitPath(path string) []string {
	parts := strings.Split(path, "/")
	tokens := parts[:0]
	for _, p := range parts {
		if p != "" {
			tokens = append(tokens, p)
		}
	}
	return tokens
}

func isAbsolute(path string) bool { return strings.HasPrefix(path, "/") }

// GetFile resolves tokens relative to d on behalf of p.
//
// Every intermediate component must be a directory p may execute; the
// final entry must be readable by p. tokens must not be empty.
func (d *Directory) GetFile(tokens []string, p *User) (Entry, error) {
	if len(tokens) == 0 {
		panic("drive: GetFile called with no tokens")
	}

	dir, err := d.descend(tokens[:len(tokens)-1], p)
	if err != nil {
		return nil, err
	}

	last, err := dir.FileByName(tokens[len(tokens)-1])
	if err != nil {
		return nil, err
	}
	if err := last.Enforce(p, RightRead); err != nil {
		return nil, err
	}
	return last, nil
}

// Walk resolves tokens to a directory p may execute. Unlike GetFile it
// does not require read on the result, which is what a caller needs to
// look up or create a child of it. An empty token slice yields d after
// checking execute on it.
func (d *Directory) Walk(tokens []string, p *User) (*Directory, error) {
	dir, err := d.descend(tokens, p)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		if err := dir.Enforce(p, RightExecute); err != nil {
			return nil, err
		}
	}
	return dir, nil
}

// descend follows tokens, requiring each one to name a directory p may
// execute.
func (d *Directory) descend(tokens []string, p *User) (*Directory, error) {
	cur := d
	for _, tok := range tokens {
		next, err := cur.FileByName(tok)
		if err != nil {
			return nil, err
		}
		dir, ok := next.AsDirectory()
		if !ok {
			return nil, driveerrors.NewNotADirectoryError(tok)
		}
		if err := dir.Enforce(p, RightExecute); err != nil {
			return nil, err
		}
		cur = dir
	}
	return cur, nil
}
