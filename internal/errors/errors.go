// Package errors defines the error kinds shared by every package. Domain errors
// wrap one of the kinds so transports can map them without knowing the domain.
package errors

import (
	"errors"
	"fmt"
)

// Error kinds.
var (
	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates a conflict with existing data.
	ErrConflict = errors.New("conflict")

	// ErrInvalidInput indicates the caller supplied data that fails validation,
	// including envelopes that do not parse or do not authenticate.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates missing or wrong credentials.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates the caller is not allowed to perform the action.
	ErrForbidden = errors.New("forbidden")

	// ErrInternal indicates a programming error or an unrecoverable internal state,
	// e.g. using a service before it was initialized.
	ErrInternal = errors.New("internal error")
)

// kinds is ordered by precedence for Kind.
var kinds = []error{
	ErrNotFound,
	ErrConflict,
	ErrInvalidInput,
	ErrUnauthorized,
	ErrForbidden,
	ErrInternal,
}

// Kind returns the first error kind found in err's tree. Errors that wrap no
// kind are reported as ErrInternal; nil stays nil.
func Kind(err error) error {
	if err == nil {
		return nil
	}
	for _, kind := range kinds {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return ErrInternal
}

// Wrap prefixes err with message, keeping err in the chain. Wrap(nil, ...) is nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf is like Wrap but formats the context message.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}
