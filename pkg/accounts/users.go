package accounts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/marmos91/dittodrive/pkg/drive"
	driveerrors "github.com/marmos91/dittodrive/pkg/drive/errors"
)

// ============================================
// USER OPERATIONS
// ============================================

func (s *GORMStore) GetUser(ctx context.Context, username string) (*User, error) {
	return getByField[User](s.db, ctx, "username", username, ErrUserNotFound)
}

func (s *GORMStore) ListUsers(ctx context.Context) ([]*User, error) {
	return listAll[User](s.db, ctx, "username")
}

// CreateUser stores user and returns its id. An empty umask becomes
// DefaultUmask; any other umask must parse.
func (s *GORMStore) CreateUser(ctx context.Context, user *User) (string, error) {
	if user.Umask == "" {
		user.Umask = DefaultUmask
	}
	umask, err := drive.ParsePermissions(user.Umask)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidUmask, user.Umask)
	}
	user.Umask = umask.String()
	user.CreatedAt = time.Now()
	return createWithID(s.db, ctx, user, func(u *User, id string) { u.ID = id }, user.ID, ErrDuplicateUser)
}

func (s *GORMStore) DeleteUser(ctx context.Context, username string) error {
	return deleteByField[User](s.db, ctx, "username", username, ErrUserNotFound)
}

// SetUmask replaces the umask applied to the user's future entries.
func (s *GORMStore) SetUmask(ctx context.Context, username, umask string) error {
	parsed, err := drive.ParsePermissions(umask)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidUmask, umask)
	}

	result := s.db.WithContext(ctx).
		Model(&User{}).
		Where("username = ?", username).
		Update("umask", parsed.String())
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (s *GORMStore) UpdatePassword(ctx context.Context, username, passwordHash string) error {
	result := s.db.WithContext(ctx).
		Model(&User{}).
		Where("username = ?", username).
		Update("password_hash", passwordHash)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (s *GORMStore) ValidateCredentials(ctx context.Context, username, password string) (*User, error) {
	user, err := s.GetUser(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !VerifyPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// LookupUser implements drive.UserResolver.
func (s *GORMStore) LookupUser(ctx context.Context, username string) (*drive.User, error) {
	user, err := s.GetUser(ctx, username)
	if errors.Is(err, ErrUserNotFound) {
		return nil, driveerrors.NewUserUnknownError(username)
	}
	if err != nil {
		return nil, err
	}
	return user.Principal()
}

// ============================================
// ROOT INITIALIZATION
// ============================================

// EnsureRootUser creates the root account when it does not exist yet. It
// returns the initial password when it created the account and "" when the
// account was already there.
func (s *GORMStore) EnsureRootUser(ctx context.Context, username, umask string) (string, error) {
	_, err := s.GetUser(ctx, username)
	if err == nil {
		return "", nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return "", err
	}

	password, err := GetOrGenerateRootPassword()
	if err != nil {
		return "", fmt.Errorf("failed to generate password: %w", err)
	}
	hash, err := HashPassword(password)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	root := &User{
		Username:     username,
		DisplayName:  "Superuser",
		PasswordHash: hash,
		Umask:        umask,
		Home:         "/",
	}
	if _, err := s.CreateUser(ctx, root); err != nil {
		return "", fmt.Errorf("failed to create root user: %w", err)
	}
	return password, nil
}

var _ drive.UserResolver = (*GORMStore)(nil)
