package configstore

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// DefaultKeyMinLength is the shortest accepted key after trimming.
const DefaultKeyMinLength = 3

// CanonicalKey trims and upper-cases a key.
func CanonicalKey(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// CanonicalOwner trims and lower-cases an owner. The empty owner means shared.
func CanonicalOwner(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// NormalizeKey canonicalizes a key that is about to be written, read or deleted
// and rejects it when it is shorter than minLength.
func NormalizeKey(raw string, minLength int) (string, error) {
	key := CanonicalKey(raw)
	if utf8.RuneCountInString(key) < minLength {
		return "", &ValidationError{
			Code:    CodeKeyTooShort,
			Field:   "key",
			Message: "key must have at least " + strconv.Itoa(minLength) + " characters",
		}
	}
	return key, nil
}
