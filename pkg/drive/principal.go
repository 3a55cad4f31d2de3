package drive

import (
	"context"

	driveerrors "github.com/marmos91/dittodrive/pkg/drive/errors"
)

// User is a principal: the owner of entries and the subject of permission
// checks. Users are managed outside the tree (see pkg/accounts); the tree
// only keeps references to them.
type User struct {
	// Username identifies the principal. Two *User values with the same
	// Username are the same principal.
	Username string

	// Name is the display name.
	Name string

	// Umask is copied onto every entry the user creates.
	Umask Permissions

	// Home is the path of the user's home directory, if any.
	Home string
}

// Is reports whether u and other denote the same principal.
func (u *User) Is(other *User) bool {
	if u == nil || other == nil {
		return false
	}
	return u == other || u.Username == other.Username
}

// SuperuserChecker decides which principals bypass every permission check.
type SuperuserChecker interface {
	IsSuperuser(u *User) bool
}

// SuperuserFunc adapts a function to SuperuserChecker.
type SuperuserFunc func(u *User) bool

// IsSuperuser implements SuperuserChecker.
func (f SuperuserFunc) IsSuperuser(u *User) bool { return f(u) }

// RootUsername is a SuperuserChecker granting full rights to the single
// user with that username.
type RootUsername string

// IsSuperuser implements SuperuserChecker.
func (r RootUsername) IsSuperuser(u *User) bool {
	return u != nil && u.Username == string(r)
}

// UserResolver looks principals up by username. Implementations return a
// UserUnknown error when the username does not exist.
type UserResolver interface {
	LookupUser(ctx context.Context, username string) (*User, error)
}

// StaticUsers is an in-memory UserResolver.
type StaticUsers map[string]*User

// NewStaticUsers indexes users by username.
func NewStaticUsers(users ...*User) StaticUsers {
	s := make(StaticUsers, len(users))
	for _, u := range users {
		s[u.Username] = u
	}
	return s
}

// LookupUser implements UserResolver.
func (s StaticUsers) LookupUser(_ context.Context, username string) (*User, error) {
	if u, ok := s[username]; ok {
		return u, nil
	}
	return nil, driveerrors.NewUserUnknownError(username)
}
