package configstore

import (
	"errors"
)

// Validation codes carried by ValidationError.
const (
	CodeKeyTooShort  = "KEY_TOO_SHORT"
	CodeKeysEmpty    = "KEYS_EMPTY"
	CodeTooManyKeys  = "TOO_MANY_KEYS"
	CodeInvalidSort  = "INVALID_SORT"
	CodeInvalidPage  = "INVALID_PAGE"
	CodeInvalidLimit = "INVALID_LIMIT"
	CodeInvalidValue = "INVALID_VALUE"
)

var (
	// ErrValidation matches every ValidationError.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound is returned when no record matches a single-key lookup.
	ErrNotFound = errors.New("config not found")
	// ErrStorage is returned when the storage backend failed. The cause is logged, never returned.
	ErrStorage = errors.New("internal storage failure")
)

// ValidationError describes malformed or undersized input.
type ValidationError struct {
	Code    string
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// Is makes errors.Is(err, ErrValidation) hold.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
