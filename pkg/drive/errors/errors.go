// Package errors provides error types and error codes for the drive package.
// This is a leaf package with no internal dependencies so that the store
// implementations and the accounts package can share the same error kinds
// without importing the tree engine.
//
// Import graph: errors <- drive <- store implementations, accounts, service
package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents the type of error that occurred.
type ErrorCode int

const (
	// ErrFileUnknown indicates a lookup miss for a name in a directory.
	ErrFileUnknown ErrorCode = iota + 1

	// ErrFileExists indicates a creation name collision.
	ErrFileExists

	// ErrNotADirectory indicates traversal through a non-directory component.
	ErrNotADirectory

	// ErrIllegalRemoval indicates an attempt to remove "." or "..".
	ErrIllegalRemoval

	// ErrInsufficientPermissions indicates the required right is absent
	// from the triad resolved for the requesting principal.
	ErrInsufficientPermissions

	// ErrImportDocument indicates a malformed external record.
	ErrImportDocument

	// ErrUserUnknown indicates the principal could not be resolved.
	ErrUserUnknown

	// ErrInvalidName indicates an entry name that is empty, "." or ".."
	// or contains a path separator.
	ErrInvalidName

	// ErrInvalidArgument indicates an invalid argument was provided.
	ErrInvalidArgument

	// ErrNotExecutable indicates an app whose program is not registered.
	ErrNotExecutable

	// ErrLinkLoop indicates too many links were followed while executing.
	ErrLinkLoop
)

// String returns a human-readable name for the error code.
func (e ErrorCode) String() string {
	switch e {
	case ErrFileUnknown:
		return "FileUnknown"
	case ErrFileExists:
		return "FileExists"
	case ErrNotADirectory:
		return "NotADirectory"
	case ErrIllegalRemoval:
		return "IllegalRemoval"
	case ErrInsufficientPermissions:
		return "InsufficientPermissions"
	case ErrImportDocument:
		return "ImportDocument"
	case ErrUserUnknown:
		return "UserUnknown"
	case ErrInvalidName:
		return "InvalidName"
	case ErrInvalidArgument:
		return "InvalidArgument"
	case ErrNotExecutable:
		return "NotExecutable"
	case ErrLinkLoop:
		return "LinkLoop"
	default:
		return fmt.Sprintf("Unknown(%d)", e)
	}
}

// DriveError represents a drive error with an error code.
//
// Name carries the offending entry name, user name or record id depending on
// the code, and is empty when the error has no subject. Right is set only
// on InsufficientPermissions errors.
type DriveError struct {
	Code    ErrorCode
	Message string
	Name    string
	Right   string
}

// Error implements the error interface.
func (e *DriveError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Name)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is reports whether target is a *DriveError with the same code, so that
// errors.Is(err, &DriveError{Code: ErrFileUnknown}) matches any lookup miss.
func (e *DriveError) Is(target error) bool {
	t, ok := target.(*DriveError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// ============================================================================
// Factory Functions
// ============================================================================

// NewFileUnknownError creates a FileUnknown error.
func NewFileUnknownError(name string) *DriveError {
	return &DriveError{
		Code:    ErrFileUnknown,
		Message: "no such file or directory",
		Name:    name,
	}
}

// NewFileExistsError creates a FileExists error.
func NewFileExistsError(name string) *DriveError {
	return &DriveError{
		Code:    ErrFileExists,
		Message: "file already exists",
		Name:    name,
	}
}

// NewNotADirectoryError creates a NotADirectory error.
func NewNotADirectoryError(name string) *DriveError {
	return &DriveError{
		Code:    ErrNotADirectory,
		Message: "not a directory",
		Name:    name,
	}
}

// NewIllegalRemovalError creates an IllegalRemoval error.
func NewIllegalRemovalError(name string) *DriveError {
	return &DriveError{
		Code:    ErrIllegalRemoval,
		Message: "cannot remove the current or parent directory",
		Name:    name,
	}
}

// NewInsufficientPermissionsError creates an InsufficientPermissions error.
// right is the name of the missing right (read, write, execute, delete).
func NewInsufficientPermissionsError(right, name string) *DriveError {
	return &DriveError{
		Code:    ErrInsufficientPermissions,
		Message: fmt.Sprintf("%s permission denied", right),
		Name:    name,
		Right:   right,
	}
}

// NewImportDocumentError creates an ImportDocument error for the record id.
func NewImportDocumentError(id string) *DriveError {
	return &DriveError{
		Code:    ErrImportDocument,
		Message: "malformed import record",
		Name:    id,
	}
}

// NewUserUnknownError creates a UserUnknown error.
func NewUserUnknownError(username string) *DriveError {
	return &DriveError{
		Code:    ErrUserUnknown,
		Message: "user not found",
		Name:    username,
	}
}

// NewInvalidNameError creates an InvalidName error.
func NewInvalidNameError(name string) *DriveError {
	return &DriveError{
		Code:    ErrInvalidName,
		Message: "invalid entry name",
		Name:    name,
	}
}

// NewInvalidArgumentError creates an InvalidArgument error.
func NewInvalidArgumentError(message string) *DriveError {
	return &DriveError{
		Code:    ErrInvalidArgument,
		Message: message,
	}
}

// NewNotExecutableError creates a NotExecutable error.
func NewNotExecutableError(name string) *DriveError {
	return &DriveError{
		Code:    ErrNotExecutable,
		Message: "no program registered",
		Name:    name,
	}
}

// NewLinkLoopError creates a LinkLoop error.
func NewLinkLoopError(name string) *DriveError {
	return &DriveError{
		Code:    ErrLinkLoop,
		Message: "too many levels of links",
		Name:    name,
	}
}

// ============================================================================
// Error Type Checking Helpers
// ============================================================================

// CodeOf returns the code of the first *DriveError in err's chain, or 0.
func CodeOf(err error) ErrorCode {
	var driveErr *DriveError
	if stderrors.As(err, &driveErr) {
		return driveErr.Code
	}
	return 0
}

// RightOf returns the missing right of an InsufficientPermissions error in
// err's chain, or "".
func RightOf(err error) string {
	var driveErr *DriveError
	if stderrors.As(err, &driveErr) && driveErr.Code == ErrInsufficientPermissions {
		return driveErr.Right
	}
	return ""
}

// IsFileUnknown returns true if the error is a FileUnknown error.
func IsFileUnknown(err error) bool { return CodeOf(err) == ErrFileUnknown }

// IsFileExists returns true if the error is a FileExists error.
func IsFileExists(err error) bool { return CodeOf(err) == ErrFileExists }

// IsNotADirectory returns true if the error is a NotADirectory error.
func IsNotADirectory(err error) bool { return CodeOf(err) == ErrNotADirectory }

// IsIllegalRemoval returns true if the error is an IllegalRemoval error.
func IsIllegalRemoval(err error) bool { return CodeOf(err) == ErrIllegalRemoval }

// IsInsufficientPermissions returns true if the error is an
// InsufficientPermissions error.
func IsInsufficientPermissions(err error) bool {
	return CodeOf(err) == ErrInsufficientPermissions
}

// IsImportDocument returns true if the error is an ImportDocument error.
func IsImportDocument(err error) bool { return CodeOf(err) == ErrImportDocument }

// IsUserUnknown returns true if the error is a UserUnknown error.
func IsUserUnknown(err error) bool { return CodeOf(err) == ErrUserUnknown }
