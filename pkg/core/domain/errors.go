package domain

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrConflict        = errors.New("conflict")

	// ErrTransactionFailure means the storage transaction did not commit.
	// Nothing it touched is visible, so the call is safe to retry.
	ErrTransactionFailure = errors.New("transaction failed")
	ErrRepairFailed       = errors.New("repair failed")
)

// IsDomainError reports whether err carries one of the caller-facing kinds
// that must pass through a transaction boundary untouched.
func IsDomainError(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrInvalidArgument) ||
		errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrConflict)
}
