package cloud

import (
	"errors"
	"fmt"
)

// ErrCanceled is returned (with a nil cloud) when a parse is aborted through
// the cooperative cancellation query. Cancellation is not a decode failure;
// callers distinguish it with errors.Is.
var ErrCanceled = errors.New("decode canceled")

// FormatError reports structurally invalid input: bad magic, zero records,
// missing mandatory fields, or a buffer shorter than the computed layout.
// The reason string carries expected-vs-actual detail where available.
type FormatError struct {
	Format string // container name: "splat", "ply", "spz"
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid %s data: %s", e.Format, e.Reason)
}

// FormatErrorf builds a FormatError with a formatted reason.
func FormatErrorf(format, msg string, args ...any) *FormatError {
	return &FormatError{Format: format, Reason: fmt.Sprintf(msg, args...)}
}

// UnsupportedFormatError reports input that is structurally valid but not
// implemented, such as ASCII PLY or an unknown container version. It is
// deliberately distinct from FormatError so callers can message users
// differently.
type UnsupportedFormatError struct {
	Format string
	Reason string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported %s data: %s", e.Format, e.Reason)
}

// UnsupportedFormatErrorf builds an UnsupportedFormatError with a formatted reason.
func UnsupportedFormatErrorf(format, msg string, args ...any) *UnsupportedFormatError {
	return &UnsupportedFormatError{Format: format, Reason: fmt.Sprintf(msg, args...)}
}

// DecompressionError reports a corrupt or truncated compressed payload.
type DecompressionError struct {
	Format string
	Err    error
}

func (e *DecompressionError) Error() string {
	return fmt.Sprintf("decompress %s data: %v", e.Format, e.Err)
}

func (e *DecompressionError) Unwrap() error {
	return e.Err
}
