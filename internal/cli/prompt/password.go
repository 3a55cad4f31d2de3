package prompt

import (
	"errors"

	"github.com/manifoldco/promptui"
)

// ErrPasswordMismatch indicates passwords don't match.
var ErrPasswordMismatch = errors.New("passwords do not match")

// Password prompts for a masked password, validated by validate when
// non-nil.
func Password(label string, validate func(string) error) (string, error) {
	prompt := promptui.Prompt{
		Label:    label,
		Mask:     '*',
		Validate: validate,
	}

	result, err := prompt.Run()
	return result, wrapError(err)
}

// NewPassword prompts for a password and its confirmation.
func NewPassword(validate func(string) error) (string, error) {
	password, err := Password("Password", validate)
	if err != nil {
		return "", err
	}

	confirm, err := Password("Confirm password", nil)
	if err != nil {
		return "", err
	}

	if password != confirm {
		return "", ErrPasswordMismatch
	}
	return password, nil
}
