// SPDX-License-Identifier: MPL-2.0

// Package resid parses and validates the names that identify resources:
// name parts, "namespace/name" identifiers, import specifiers and runtime
// requirements.
package resid

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	// ErrInvalidNamePart is returned when a namespace or name is malformed.
	ErrInvalidNamePart = errors.New("invalid name part")

	// ErrInvalidIdentifier is returned when an identifier is not "namespace/name".
	ErrInvalidIdentifier = errors.New("invalid resource identifier")

	// ErrInvalidSpecifier is returned when a specifier is neither a location
	// nor an identifier with an optional version range.
	ErrInvalidSpecifier = errors.New("invalid resource specifier")

	// ErrInvalidRuntime is returned when a runtime requirement is malformed.
	ErrInvalidRuntime = errors.New("invalid runtime")

	// namePartPattern: alphanumerics, dots, underscores and hyphens, starting and
	// ending with an alphanumeric character.
	namePartPattern = regexp.MustCompile(`^[A-Za-z0-9](?:[A-Za-z0-9._-]*[A-Za-z0-9])?$`)
)

type (
	// NamePart is a namespace or a resource name.
	NamePart string

	// Identifier is the registry identity of a resource ("namespace/name").
	Identifier struct {
		Namespace NamePart
		Name      NamePart
	}

	// InvalidNamePartError wraps ErrInvalidNamePart.
	InvalidNamePartError struct {
		Value NamePart
	}

	// InvalidIdentifierError wraps ErrInvalidIdentifier.
	InvalidIdentifierError struct {
		Value  string
		Reason string
	}
)

// String returns the string representation of the NamePart.
func (p NamePart) String() string { return string(p) }

// Validate returns nil if the name part is non-empty, contains only letters,
// digits, dots, underscores or hyphens, and starts and ends with a letter or
// digit.
func (p NamePart) Validate() error {
	if !namePartPattern.MatchString(string(p)) {
		return &InvalidNamePartError{Value: p}
	}
	return nil
}

// Error implements the error interface for InvalidNamePartError.
func (e *InvalidNamePartError) Error() string {
	if e.Value == "" {
		return "invalid name part: must not be empty"
	}
	return fmt.Sprintf(
		"invalid name part %q: only letters, digits, '.', '_' and '-' are allowed, and it must start and end with a letter or digit",
		string(e.Value),
	)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidNamePartError) Unwrap() error { return ErrInvalidNamePart }

// ParseIdentifier parses "namespace/name".
func ParseIdentifier(s string) (Identifier, error) {
	namespace, name, found := strings.Cut(s, "/")
	if !found {
		return Identifier{}, &InvalidIdentifierError{Value: s, Reason: "expected namespace/name"}
	}
	if strings.Contains(name, "/") {
		return Identifier{}, &InvalidIdentifierError{Value: s, Reason: "too many '/' separators"}
	}
	id := Identifier{Namespace: NamePart(namespace), Name: NamePart(name)}
	if err := id.Validate(); err != nil {
		return Identifier{}, err
	}
	return id, nil
}

// Validate checks both name parts.
func (id Identifier) Validate() error {
	if err := id.Namespace.Validate(); err != nil {
		return &InvalidIdentifierError{Value: id.String(), Reason: "namespace: " + err.Error()}
	}
	if err := id.Name.Validate(); err != nil {
		return &InvalidIdentifierError{Value: id.String(), Reason: "name: " + err.Error()}
	}
	return nil
}

// IsZero reports whether the identifier is unset.
func (id Identifier) IsZero() bool { return id.Namespace == "" && id.Name == "" }

// String returns "namespace/name".
func (id Identifier) String() string {
	if id.IsZero() {
		return ""
	}
	return string(id.Namespace) + "/" + string(id.Name)
}

// Error implements the error interface for InvalidIdentifierError.
func (e *InvalidIdentifierError) Error() string {
	return fmt.Sprintf("invalid resource identifier %q: %s", e.Value, e.Reason)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidIdentifierError) Unwrap() error { return ErrInvalidIdentifier }

// IsLocation reports whether s designates a file system location rather than
// a registry identifier.
func IsLocation(s string) bool {
	return strings.HasPrefix(s, ".") || filepath.IsAbs(s) || strings.HasPrefix(s, "/")
}
