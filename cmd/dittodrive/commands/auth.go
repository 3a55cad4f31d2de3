package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/marmos91/dittodrive/internal/cli/prompt"
	"github.com/marmos91/dittodrive/internal/logger"
	"github.com/marmos91/dittodrive/pkg/accounts"
)

// EnvPassword holds the acting user's password for non-interactive use.
const EnvPassword = "DITTODRIVE_PASSWORD"

// credentialChecker verifies a password against the accounts database.
type credentialChecker interface {
	ValidateCredentials(ctx context.Context, username, password string) (*accounts.User, error)
}

// authenticator proves that the person at the terminal may act as a user.
type authenticator struct {
	accts    credentialChecker
	password func(label string) (string, error)
}

func newAuthenticator(accts credentialChecker) *authenticator {
	return &authenticator{
		accts: accts,
		password: func(label string) (string, error) {
			return prompt.Password(label, nil)
		},
	}
}

// login authenticates the user a command starts as. The password comes
// from $DITTODRIVE_PASSWORD, or is prompted for when that is unset.
func (a *authenticator) login(ctx context.Context, username string) error {
	if password := os.Getenv(EnvPassword); password != "" {
		return a.check(ctx, username, password)
	}
	return a.ask(ctx, username)
}

// ask always prompts, so switching users never reuses the login password.
func (a *authenticator) ask(ctx context.Context, username string) error {
	password, err := a.password(fmt.Sprintf("Password for %s", username))
	if err != nil {
		return err
	}
	return a.check(ctx, username, password)
}

func (a *authenticator) check(ctx context.Context, username, password string) error {
	_, err := a.accts.ValidateCredentials(ctx, username, password)
	if errors.Is(err, accounts.ErrInvalidCredentials) {
		logger.Warn("Authentication failed", logger.Username(username))
		return fmt.Errorf("authentication failed for %q: %w", username, err)
	}
	return err
}
