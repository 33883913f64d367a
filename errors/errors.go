// Package errors provides error handling for almanac.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - User-facing hints and details
//
// Usage:
//
//	// Create new error
//	err := errors.New("something went wrong")
//
//	// Wrap with context
//	if err := doSomething(); err != nil {
//	    return errors.Wrap(err, "failed to do something")
//	}
//
//	// Classify as malformed input, with a hint for the user
//	return errors.WithHint(errors.NewMalformedInputf("line %d: bad row", n), "rows are: dest source length")
//
//	// Check errors
//	if errors.Is(err, errors.ErrNoSolutionFound) {
//	    // raise the bound
//	}
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New       = crdb.New
	Newf      = crdb.Newf
	Wrap      = crdb.Wrap
	Wrapf     = crdb.Wrapf
	WithStack = crdb.WithStack
)

// User-facing messages and details
var (
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
)

// Error inspection
var (
	Is            = crdb.Is
	IsAny         = crdb.IsAny
	GetAllHints   = crdb.GetAllHints
	GetAllDetails = crdb.GetAllDetails
	FlattenHints  = crdb.FlattenHints
)

// AssertionFailedf reports a broken internal invariant.
var AssertionFailedf = crdb.AssertionFailedf

// Error kinds. Use these with errors.Is() and wrap them with errors.Wrap()
// to add context while preserving the kind.
var (
	// ErrMalformedInput indicates an almanac or stage description that cannot be
	// turned into a pipeline: unparseable integers, bad headers, missing seeds,
	// duplicate or cyclic stage labels.
	ErrMalformedInput = New("malformed input")

	// ErrNoSolutionFound indicates a bounded search exhausted its candidate range.
	// This is a legitimate outcome of the search, not a corrupted state.
	ErrNoSolutionFound = New("no solution found")

	// ErrEmptyInput indicates a minimization over an empty value list.
	ErrEmptyInput = New("empty input")

	// ErrSearchBudgetExceeded indicates a forward enumeration visited more values
	// than its budget allowed.
	ErrSearchBudgetExceeded = New("search budget exceeded")

	// ErrNotFound indicates the requested record does not exist
	ErrNotFound = New("not found")
)

// IsMalformedInput checks if an error is or wraps ErrMalformedInput
func IsMalformedInput(err error) bool {
	return err != nil && Is(err, ErrMalformedInput)
}

// IsNoSolutionFound checks if an error is or wraps ErrNoSolutionFound
func IsNoSolutionFound(err error) bool {
	return err != nil && Is(err, ErrNoSolutionFound)
}

// IsNotFoundError checks if an error is or wraps ErrNotFound
func IsNotFoundError(err error) bool {
	return err != nil && Is(err, ErrNotFound)
}

// NewMalformedInputf creates a malformed-input error with a formatted message
func NewMalformedInputf(format string, args ...interface{}) error {
	return Wrapf(ErrMalformedInput, format, args...)
}

// WrapMalformedInput marks err as malformed input while keeping it as the cause detail
func WrapMalformedInput(err error, context string) error {
	return WithSecondaryError(Wrap(ErrMalformedInput, context+": "+err.Error()), err)
}

// WithSecondaryError attaches an additional error as context without changing the kind.
var WithSecondaryError = crdb.WithSecondaryError

// NewNotFoundError creates a not-found error with a formatted message
func NewNotFoundError(format string, args ...interface{}) error {
	return Wrapf(ErrNotFound, format, args...)
}
