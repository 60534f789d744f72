// Package errs implements the error-kind taxonomy from spec.md §7, modeled
// on the teacher's phenix/util.HumanizeError: every error carries a kind,
// a correlation UUID, and the original cause.
package errs

import (
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/pkg/errors"
)

// Kind is one of the six error categories spec.md §7 defines.
type Kind string

const (
	KindConfig      Kind = "config"       // bad CLI input
	KindInputFormat Kind = "input_format" // missing column, unparseable row
	KindTransport   Kind = "transport"    // corrupted/truncated message
	KindResource    Kind = "resource"     // allocation failure
	KindDetector    Kind = "detector"     // logic invariant violated
	KindPrivilege   Kind = "privilege"    // mitigation without OS privilege
)

// Fatal reports whether an error of this kind must abort the owning
// process, per spec.md §7's policy table. InputFormatError and
// PrivilegeError are recoverable; the rest are not.
func (k Kind) Fatal() bool {
	switch k {
	case KindTransport, KindResource, KindDetector:
		return true
	default:
		return false
	}
}

// Error is a kind-tagged, correlation-ID-bearing error.
type Error struct {
	Kind    Kind
	UUID    string
	message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Kind, e.UUID, e.message, e.cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Kind, e.UUID, e.message)
}

func (e *Error) Unwrap() error { return e.cause }

// Humanize returns a short, user-facing description that points at the
// correlation ID for full detail, matching phenix's HumanizedError.Humanize.
func (e *Error) Humanize() string {
	return fmt.Sprintf("%s (error id %s)", e.message, e.UUID)
}

func newID() string {
	id, err := uuid.NewV4()
	if err != nil {
		return "unknown"
	}
	return id.String()
}

// New creates a new kind-tagged error with no underlying cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, UUID: newID(), message: message}
}

// Wrap attaches kind and a correlation ID to an existing error, preserving
// it as the Unwrap() cause. The cause itself is captured with
// github.com/pkg/errors.WithStack so a stack trace survives even when the
// original error came from the standard library.
func Wrap(kind Kind, cause error, message string) *Error {
	return &Error{
		Kind:    kind,
		UUID:    newID(),
		message: message,
		cause:   errors.WithStack(cause),
	}
}

// As is a thin convenience wrapper over errors.As for extracting an *Error
// from a wrapped chain.
func As(err error, target **Error) bool {
	return errors.As(err, target)
}
