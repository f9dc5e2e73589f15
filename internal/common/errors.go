// Package common defines shared constants and sentinel errors used across
// the tracker's server and CLI layers. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal      = errors.New("internal error")
	ErrVersionConflict = errors.New("version conflict")

	// Export range errors.
	ErrInvalidStart = errors.New("invalid start datetime")
	ErrInvalidEnd   = errors.New("invalid end datetime")
	ErrInvalidRange = errors.New("start datetime must not be after end datetime")

	// Configuration errors.
	ErrorIncorrectConfig = errors.New("incorrect config")
)

// IsValidation reports whether err is caused by malformed client input.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidStart) ||
		errors.Is(err, ErrInvalidEnd) ||
		errors.Is(err, ErrInvalidRange)
}
