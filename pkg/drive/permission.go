package drive

import (
	"fmt"

	driveerrors "github.com/marmos91/dittodrive/pkg/drive/errors"
)

// Right is a single permission flag checked by Enforce.
type Right uint8

const (
	RightRead Right = 1 << iota
	RightWrite
	RightExecute
	RightDelete
)

// String returns the lowercase name of the right, as used in error messages.
func (r Right) String() string {
	switch r {
	case RightRead:
		return "read"
	case RightWrite:
		return "write"
	case RightExecute:
		return "execute"
	case RightDelete:
		return "delete"
	default:
		return fmt.Sprintf("right(%d)", uint8(r))
	}
}

// Triad is the set of rights granted to one class of principal
// (the owner, or everybody else).
type Triad uint8

const (
	TriadNone Triad = 0
	TriadFull       = Triad(RightRead | RightWrite | RightExecute | RightDelete)
)

// triadLetters maps each position of the rendered triad to its right.
var triadLetters = [4]struct {
	letter byte
	right  Right
}{
	{'r', RightRead},
	{'w', RightWrite},
	{'x', RightExecute},
	{'d', RightDelete},
}

// Has reports whether the triad grants r.
func (t Triad) Has(r Right) bool { return t&Triad(r) != 0 }

// String renders the triad as 4 characters, e.g. "rw-d".
func (t Triad) String() string {
	var s [4]byte
	for i, l := range triadLetters {
		if t.Has(l.right) {
			s[i] = l.letter
		} else {
			s[i] = '-'
		}
	}
	return string(s[:])
}

// ParseTriad parses a 3- or 4-character triad.
//
// Each position holds either its letter (r, w, x, d) or '-'. The 3-character
// form has no delete position: delete is granted exactly when write is, the
// same mapping Unix uses for the write bit on a directory entry.
func ParseTriad(s string) (Triad, error) {
	if len(s) != 3 && len(s) != 4 {
		return 0, driveerrors.NewInvalidArgumentError(fmt.Sprintf("invalid permission triad %q", s))
	}

	var t Triad
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case triadLetters[i].letter:
			t |= Triad(triadLetters[i].right)
		case '-':
		default:
			return 0, driveerrors.NewInvalidArgumentError(
				fmt.Sprintf("invalid permission triad %q: unexpected %q at position %d", s, s[i], i))
		}
	}

	if len(s) == 3 && t.Has(RightWrite) {
		t |= Triad(RightDelete)
	}
	return t, nil
}

// Permissions is the permission pair carried by every entry.
type Permissions struct {
	Owner  Triad
	Others Triad
}

// String renders the pair as 8 characters, owner triad first.
func (p Permissions) String() string {
	return p.Owner.String() + p.Others.String()
}

// MarshalText encodes the pair in its 8-character form.
func (p Permissions) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText accepts every form understood by ParsePermissions.
func (p *Permissions) UnmarshalText(text []byte) error {
	parsed, err := ParsePermissions(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// ParsePermissions parses a permission pair or umask string.
//
// Accepted forms:
//   - "rwx:r-x"   two 3-character triads around a one-character delimiter
//   - "rwxdr-x-"  two 4-character triads
//   - "rwxd:r-x-" two 4-character triads around a one-character delimiter
func ParsePermissions(s string) (Permissions, error) {
	var owner, others string
	switch len(s) {
	case 7:
		owner, others = s[:3], s[4:]
	case 8:
		owner, others = s[:4], s[4:]
	case 9:
		owner, others = s[:4], s[5:]
	default:
		return Permissions{}, driveerrors.NewInvalidArgumentError(fmt.Sprintf("invalid permission string %q", s))
	}

	o, err := ParseTriad(owner)
	if err != nil {
		return Permissions{}, err
	}
	t, err := ParseTriad(others)
	if err != nil {
		return Permissions{}, err
	}
	return Permissions{Owner: o, Others: t}, nil
}

// MustParsePermissions is like ParsePermissions but panics on error.
// Intended for constants and tests.
func MustParsePermissions(s string) Permissions {
	p, err := ParsePermissions(s)
	if err != nil {
		panic(err)
	}
	return p
}
