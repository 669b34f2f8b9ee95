package settings

import (
	"errors"
	"fmt"
)

var (
	// Format errors 📦
	ErrFormatMismatch = errors.New("❌ settings magic mismatch")
	ErrTruncated      = errors.New("❌ settings stream truncated")
	ErrInvalid        = errors.New("❌ invalid settings field")

	// Persistence errors 💾
	ErrIO = errors.New("❌ settings I/O failed")

	// Override errors 🔒
	ErrEncryptionFailure = errors.New("❌ credential encryption failed")
)

// ErrorKind classifies a FormatError.
type ErrorKind int

const (
	FormatMismatch ErrorKind = iota
	Truncated
	Invalid
	IOError
)

func (k ErrorKind) String() string {
	switch k {
	case FormatMismatch:
		return "format-mismatch"
	case Truncated:
		return "truncated"
	case Invalid:
		return "invalid"
	case IOError:
		return "io"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

func (k ErrorKind) sentinel() error {
	switch k {
	case FormatMismatch:
		return ErrFormatMismatch
	case Truncated:
		return ErrTruncated
	case Invalid:
		return ErrInvalid
	default:
		return ErrIO
	}
}

// FormatError reports why a settings stream could not be decoded or encoded.
type FormatError struct {
	Kind  ErrorKind
	Field string
	Err   error
}

func (e *FormatError) Error() string {
	msg := e.Kind.sentinel().Error()
	if e.Field != "" {
		msg += " (" + e.Field + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the kind sentinel and the underlying cause to errors.Is.
func (e *FormatError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind.sentinel()}
	}
	return []error{e.Kind.sentinel(), e.Err}
}

func formatErr(kind ErrorKind, field string, err error) error {
	return &FormatError{Kind: kind, Field: field, Err: err}
}
