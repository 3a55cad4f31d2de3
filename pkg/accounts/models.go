// Package accounts manages the principals of a drive: who exists, how
// they authenticate, and the umask their new entries start with.
package accounts

import (
	"errors"
	"time"

	"github.com/marmos91/dittodrive/pkg/drive"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrDuplicateUser      = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidUmask       = errors.New("invalid umask")
)

// DefaultUmask is applied to users created without one.
const DefaultUmask = "rwxdr-x-"

// User is a stored account.
type User struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id" yaml:"id"`
	Username     string    `gorm:"uniqueIndex;not null;size:255" json:"username" yaml:"username"`
	DisplayName  string    `gorm:"size:255" json:"display_name,omitempty" yaml:"display_name,omitempty"`
	PasswordHash string    `gorm:"not null" json:"-" yaml:"-"`
	Umask        string    `gorm:"size:9;not null" json:"umask" yaml:"umask"`
	Home         string    `gorm:"size:1024" json:"home,omitempty" yaml:"home,omitempty"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at" yaml:"created_at"`
}

// TableName returns the table name for User.
func (User) TableName() string {
	return "users"
}

// GetDisplayName returns the display name, or username if display name is not set.
func (u *User) GetDisplayName() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}

// Principal converts the account into the principal the tree works with.
func (u *User) Principal() (*drive.User, error) {
	umask, err := drive.ParsePermissions(u.Umask)
	if err != nil {
		return nil, err
	}
	return &drive.User{
		Username: u.Username,
		Name:     u.GetDisplayName(),
		Umask:    umask,
		Home:     u.Home,
	}, nil
}

// AllModels lists the models migrated by New.
func AllModels() []any {
	return []any{&User{}}
}
