package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Common error values for the sync service
var (
	// Session errors
	ErrNoSession      = errors.New("no session cookie")
	ErrInvalidSession = errors.New("invalid session")
	ErrSessionExpired = errors.New("session expired")
	ErrMissingSecret  = errors.New("session secret not configured")

	// OAuth errors
	ErrMissingRefreshToken = errors.New("provider did not return a refresh token")
	ErrCredentialNotFound  = errors.New("credential not found")

	// CSV errors
	ErrNoRows           = errors.New("CSV file does not contain any rows")
	ErrMissingKeyColumn = errors.New("CSV file is missing the required key column")
)

// ValidationError reports bad or missing request input. It maps to 400.
type ValidationError struct {
	Field          string
	Message        string
	MissingColumns []string
	Err            error
}

func (e *ValidationError) Error() string {
	if len(e.MissingColumns) > 0 {
		return fmt.Sprintf("%s: %s", e.Message, strings.Join(e.MissingColumns, ", "))
	}
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError builds a ValidationError for the named field
func NewValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// AuthenticationError reports a missing, invalid or expired session. It maps to 401.
// Cause is logged server side and never returned to the caller.
type AuthenticationError struct {
	Cause error
}

func (e *AuthenticationError) Error() string {
	if e.Cause == nil {
		return "authentication failed"
	}
	return "authentication failed: " + e.Cause.Error()
}

func (e *AuthenticationError) Unwrap() error {
	return e.Cause
}

// UpstreamError reports a failed call to the identity provider or the spreadsheet service.
type UpstreamError struct {
	Op     string
	Status int
	Err    error
}

func (e *UpstreamError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: upstream status %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// PartialSyncError reports a clear/write pair where only one half was applied.
// The destination tab is in an undefined state until the next successful sync.
type PartialSyncError struct {
	SpreadsheetID string
	Tab           string
	Err           error
}

func (e *PartialSyncError) Error() string {
	return fmt.Sprintf("partial sync of %s/%s: %v", e.SpreadsheetID, e.Tab, e.Err)
}

func (e *PartialSyncError) Unwrap() error {
	return e.Err
}

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
