package errkind

import (
	"errors"
)

// #region sentinels

// Analysis failures. All are recoverable: the caller may retry with a
// different profile or window without reinitializing anything.
var (
	// ErrEmptyInput: a sequence is too short for the statistic requested.
	ErrEmptyInput = errors.New("empty input")
	// ErrKeyLengthNotFound: no probed length beat the language IC threshold.
	ErrKeyLengthNotFound = errors.New("key length not found")
	// ErrInvalidKeyLength: length <= 0 or longer than the ciphertext.
	ErrInvalidKeyLength = errors.New("invalid key length")
	// ErrProfileMismatch: the requested language profile is not registered.
	ErrProfileMismatch = errors.New("profile mismatch")
	// ErrDuplicateMapping: a substitution maps the same source symbol twice.
	ErrDuplicateMapping = errors.New("duplicate mapping")
	// ErrLayoutMismatch: a symbol stream does not fit the layout it is reassembled into.
	ErrLayoutMismatch = errors.New("layout mismatch")
)

// #endregion sentinels

// #region classify

// Code is the short error classification stored with runs and sent over the wire.
type Code string

const (
	CodeNone              Code = ""
	CodeEmptyInput        Code = "empty_input"
	CodeKeyLengthNotFound Code = "key_length_not_found"
	CodeInvalidKeyLength  Code = "invalid_key_length"
	CodeProfileMismatch   Code = "profile_mismatch"
	CodeDuplicateMapping  Code = "duplicate_mapping"
	CodeLayoutMismatch    Code = "layout_mismatch"
	CodeUnknown           Code = "unknown"
)

// Classify maps err onto a Code using sentinel matching only.
func Classify(err error) Code {
	switch {
	case err == nil:
		return CodeNone
	case errors.Is(err, ErrEmptyInput):
		return CodeEmptyInput
	case errors.Is(err, ErrKeyLengthNotFound):
		return CodeKeyLengthNotFound
	case errors.Is(err, ErrInvalidKeyLength):
		return CodeInvalidKeyLength
	case errors.Is(err, ErrProfileMismatch):
		return CodeProfileMismatch
	case errors.Is(err, ErrDuplicateMapping):
		return CodeDuplicateMapping
	case errors.Is(err, ErrLayoutMismatch):
		return CodeLayoutMismatch
	}
	return CodeUnknown
}

// Sentinel returns the sentinel error for c, or nil for CodeNone and unknown codes.
func Sentinel(c Code) error {
	switch c {
	case CodeEmptyInput:
		return ErrEmptyInput
	case CodeKeyLengthNotFound:
		return ErrKeyLengthNotFound
	case CodeInvalidKeyLength:
		return ErrInvalidKeyLength
	case CodeProfileMismatch:
		return ErrProfileMismatch
	case CodeDuplicateMapping:
		return ErrDuplicateMapping
	case CodeLayoutMismatch:
		return ErrLayoutMismatch
	}
	return nil
}

// #endregion classify
