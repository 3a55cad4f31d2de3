package accounts

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"os"

	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost is the bcrypt cost used for stored passwords.
const DefaultBcryptCost = 10

// EnvRootInitialPassword sets the root password on first start. When it
// is unset a random password is generated and reported once.
const EnvRootInitialPassword = "DITTODRIVE_ROOT_INITIAL_PASSWORD"

// Password length constraints. bcrypt silently truncates at 72 bytes.
const (
	MinPasswordLength = 8
	MaxPasswordLength = 72
)

var (
	ErrPasswordTooShort = errors.New("password must be at least 8 characters")
	ErrPasswordTooLong  = errors.New("password must be at most 72 characters")
)

// ValidatePassword checks the length constraints.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if len(password) > MaxPasswordLength {
		return ErrPasswordTooLong
	}
	return nil
}

// HashPassword creates a bcrypt hash of the given password.
func HashPassword(password string) (string, error) {
	if err := ValidatePassword(password); err != nil {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), DefaultBcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword checks if a password matches a bcrypt hash.
func VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// GetOrGenerateRootPassword returns the password from
// EnvRootInitialPassword, or a random one.
func GetOrGenerateRootPassword() (string, error) {
	if pw := os.Getenv(EnvRootInitialPassword); pw != "" {
		return pw, nil
	}
	return GenerateRandomPassword()
}

// GenerateRandomPassword returns 24 characters of URL-safe base64.
func GenerateRandomPassword() (string, error) {
	b := make([]byte, 18)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
