// SPDX-License-Identifier: MPL-2.0

package resource

import (
	"errors"
	"fmt"
)

// Sentinel errors for the six failure kinds. Every typed error below
// unwraps to exactly one of them.
var (
	ErrDefinition = errors.New("invalid definition")
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("behavior conflict")
	ErrNotFound   = errors.New("not found")
	ErrIO         = errors.New("i/o failure")
	ErrState      = errors.New("invalid state")

	// ErrImportCycle is the cause of the DefinitionError reported when
	// resources import each other.
	ErrImportCycle = errors.New("import cycle")
)

type (
	// DefinitionError reports a malformed or type-mismatched definition.
	DefinitionError struct {
		// Path is the dotted key path of the node being constructed.
		Path    string
		Key     string
		Message string
		Err     error
	}

	// ValidationError reports an attribute value that fails its format rules.
	ValidationError struct {
		Path      string
		Attribute string
		Value     any
		Err       error
	}

	// ConflictError reports two base behaviors with incomparable capabilities.
	ConflictError struct {
		Path  string
		Left  string
		Right string
	}

	// NotFoundError reports a specifier, command, child or builder that
	// resolves to nothing.
	NotFoundError struct {
		// Kind is what was looked up ("resource", "command", "builder", ...).
		Kind string
		Name string
		Path string
		Err  error
	}

	// IOError wraps a file system or network failure.
	IOError struct {
		Op   string
		Path string
		Err  error
	}

	// StateError reports an operation attempted in an invalid context.
	StateError struct {
		Path    string
		Op      string
		Message string
	}

	// ResolutionError attaches the specifier and directory a failed load
	// was resolved from.
	ResolutionError struct {
		Specifier string
		Directory string
		Err       error
	}
)

func at(path string) string {
	if path == "" {
		return ""
	}
	return " at " + path
}

// Error implements the error interface.
func (e *DefinitionError) Error() string {
	msg := e.Message
	if e.Key != "" {
		msg = fmt.Sprintf("%q: %s", e.Key, msg)
	}
	msg = "invalid definition" + at(e.Path) + ": " + msg
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns ErrDefinition and the cause, if any.
func (e *DefinitionError) Unwrap() []error { return withCause(ErrDefinition, e.Err) }

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s%s: %v", e.Attribute, at(e.Path), e.Err)
}

// Unwrap returns ErrValidation and the cause.
func (e *ValidationError) Unwrap() []error { return withCause(ErrValidation, e.Err) }

// Error implements the error interface.
func (e *ConflictError) Error() string {
	return fmt.Sprintf("cannot combine %q and %q%s: neither behavior refines the other", e.Left, e.Right, at(e.Path))
}

// Unwrap returns ErrConflict.
func (e *ConflictError) Unwrap() error { return ErrConflict }

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	msg := fmt.Sprintf("%s %q not found%s", e.Kind, e.Name, at(e.Path))
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns ErrNotFound and the cause, if any.
func (e *NotFoundError) Unwrap() []error { return withCause(ErrNotFound, e.Err) }

// Error implements the error interface.
func (e *IOError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns ErrIO and the cause.
func (e *IOError) Unwrap() []error { return withCause(ErrIO, e.Err) }

// Error implements the error interface.
func (e *StateError) Error() string {
	return fmt.Sprintf("cannot %s%s: %s", e.Op, at(e.Path), e.Message)
}

// Unwrap returns ErrState.
func (e *StateError) Unwrap() error { return ErrState }

// Error implements the error interface.
func (e *ResolutionError) Error() string {
	if e.Directory == "" {
		return fmt.Sprintf("failed to load %q: %v", e.Specifier, e.Err)
	}
	return fmt.Sprintf("failed to load %q (from %s): %v", e.Specifier, e.Directory, e.Err)
}

// Unwrap returns the underlying error.
func (e *ResolutionError) Unwrap() error { return e.Err }

func withCause(sentinel, cause error) []error {
	if cause == nil {
		return []error{sentinel}
	}
	return []error{sentinel, cause}
}
