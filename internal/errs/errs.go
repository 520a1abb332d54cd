// Package errs defines the error taxonomy shared by every tabkit package.
//
// Every failure is one of three kinds, matched with errors.Is:
//
//   - ErrType: a value of the wrong type, or misused parameters
//   - ErrValue: a well-typed value that violates a constraint
//   - ErrNotImplemented: a configuration that is deliberately unsupported
//
// The refinements below (ErrShape, ErrDuplicate, ...) each match their own
// sentinel and their kind, so callers can test either level:
//
//	if errors.Is(err, errs.ErrDuplicate) { ... } // uniqueness violation
//	if errors.Is(err, errs.ErrValue) { ... }     // any value violation
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrType marks a value of the wrong type at a validated boundary.
	ErrType = errors.New("type error")

	// ErrValue marks a well-typed value that is semantically invalid.
	ErrValue = errors.New("value error")

	// ErrNotImplemented marks a feature that is not supported for the
	// given configuration.
	ErrNotImplemented = errors.New("not implemented")
)

var (
	// ErrShape is returned when input resolves to more than two dimensions
	// or a reduction (table to sequence, sequence to scalar) is impossible.
	ErrShape error = &refinement{msg: "invalid shape", kind: ErrValue}

	// ErrDuplicate is returned when column names, index names, index values
	// or row values repeat where they must be unique.
	ErrDuplicate error = &refinement{msg: "duplicates detected", kind: ErrValue}

	// ErrCollision is returned when two tables being combined would produce
	// the same output column name.
	ErrCollision error = &refinement{msg: "column name collision", kind: ErrValue}

	// ErrNull is returned when a column name or index value is null.
	ErrNull error = &refinement{msg: "null value", kind: ErrValue}

	// ErrParam is returned when mutually exclusive or jointly required
	// parameters are misused.
	ErrParam error = &refinement{msg: "invalid parameters", kind: ErrType}

	// ErrUnsupportedDim is returned for a dimensionality outside {0, 1, 2}.
	ErrUnsupportedDim error = &refinement{msg: "unsupported dimensionality", kind: ErrNotImplemented}
)

// refinement is a sentinel that also matches a broader kind.
type refinement struct {
	msg  string
	kind error
}

func (e *refinement) Error() string { return e.msg }
func (e *refinement) Unwrap() error { return e.kind }

// New returns an error matching sentinel whose message is the formatted
// detail prefixed by the sentinel's own text.
func New(sentinel error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", sentinel, fmt.Sprintf(format, args...))
}

// Typef is shorthand for New(ErrType, ...).
func Typef(format string, args ...any) error {
	return New(ErrType, format, args...)
}

// Valuef is shorthand for New(ErrValue, ...).
func Valuef(format string, args ...any) error {
	return New(ErrValue, format, args...)
}

// NotImplementedf is shorthand for New(ErrNotImplemented, ...).
func NotImplementedf(format string, args ...any) error {
	return New(ErrNotImplemented, format, args...)
}

// DuplicateError reports repeated entries found by a uniqueness check.
// Report holds a rendered table of at most Shown entries with their
// repeat counts.
type DuplicateError struct {
	Header string // e.g. "Duplicates detected in left column names"
	Report string
	Shown  int
	Total  int
}

func (e *DuplicateError) Error() string {
	header := e.Header
	if e.Shown < e.Total {
		header = fmt.Sprintf("%s (top %d showing)", header, e.Shown)
	}
	return fmt.Sprintf("%s:\n\n%s\n", header, e.Report)
}

func (e *DuplicateError) Unwrap() error { return ErrDuplicate }

// Truncated reports whether the report omits some duplicate entries.
func (e *DuplicateError) Truncated() bool { return e.Shown < e.Total }
