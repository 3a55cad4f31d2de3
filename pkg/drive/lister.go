package drive

import (
	"cmp"
	"slices"
	"strings"
)

// Transform turns an entry into one listing line. name is the name to
// display, which differs from e.Name() for the "." and ".." lines.
type Transform func(e Entry, name string) string

// Comparator orders the children of a listing. It follows the
// slices.SortFunc convention.
type Comparator func(a, b Entry) int

// RenderLine renders the full "<type><perms> <name>" line.
func RenderLine(e Entry, name string) string { return e.render(name) }

// RenderName renders the bare name.
func RenderName(_ Entry, name string) string { return name }

// ByName orders entries lexicographically by name.
func ByName(a, b Entry) int { return cmp.Compare(a.Name(), b.Name()) }

// ByRendered orders entries by the line t produces for them, falling back
// to the name on ties.
func ByRendered(t Transform) Comparator {
	return func(a, b Entry) int {
		if c := cmp.Compare(t(a, a.Name()), t(b, b.Name())); c != 0 {
			return c
		}
		return ByName(a, b)
	}
}

// Render lists dir on behalf of p. It requires read on dir. The output is
// the "." line, the ".." line, then one line per child in the order
// given by order, joined with newlines.
func Render(dir *Directory, p *User, t Transform, order Comparator) (string, error) {
	if err := dir.Enforce(p, RightRead); err != nil {
		return "", err
	}

	children := dir.sortedChildren()
	if order != nil {
		slices.SortStableFunc(children, order)
	}

	lines := make([]string, 0, len(children)+2)
	lines = append(lines, t(dir, "."))

	parent := Entry(dir)
	if dir.parent != nil {
		parent = dir.parent
	}
	lines = append(lines, t(parent, ".."))

	for _, c := range children {
		lines = append(lines, t(c, c.Name()))
	}
	return strings.Join(lines, "\n"), nil
}
