// SPDX-License-Identifier: MPL-2.0

package resid

import (
	"fmt"
	"strings"

	"github.com/resdir/run/pkg/semver"
)

type (
	// Specifier names what to load: either a location ("./tool", "/abs/dir",
	// "../x/@resource.json") or a registry identifier with an optional range
	// ("resdir/registry@^1.0.0").
	Specifier struct {
		Location   string
		Identifier Identifier
		Range      semver.Range
	}

	// InvalidSpecifierError wraps ErrInvalidSpecifier.
	InvalidSpecifierError struct {
		Value string
		Err   error
	}
)

// ParseSpecifier parses a location or an identifier specifier.
func ParseSpecifier(s string) (Specifier, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Specifier{}, &InvalidSpecifierError{Value: s}
	}
	if IsLocation(s) {
		return Specifier{Location: s}, nil
	}

	idPart, rangePart, _ := strings.Cut(s, "@")
	id, err := ParseIdentifier(idPart)
	if err != nil {
		return Specifier{}, &InvalidSpecifierError{Value: s, Err: err}
	}
	rng, err := semver.ParseRange(rangePart)
	if err != nil {
		return Specifier{}, &InvalidSpecifierError{Value: s, Err: err}
	}
	return Specifier{Identifier: id, Range: rng}, nil
}

// IsLocation reports whether the specifier designates a file system location.
func (s Specifier) IsLocation() bool { return s.Location != "" }

// String returns the specifier as it would be written in a definition.
func (s Specifier) String() string {
	if s.IsLocation() {
		return s.Location
	}
	if s.Range.IsAny() {
		return s.Identifier.String()
	}
	return s.Identifier.String() + "@" + s.Range.String()
}

// Error implements the error interface for InvalidSpecifierError.
func (e *InvalidSpecifierError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid resource specifier %q: %v", e.Value, e.Err)
	}
	return fmt.Sprintf("invalid resource specifier %q", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidSpecifierError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrInvalidSpecifier, e.Err}
	}
	return []error{ErrInvalidSpecifier}
}
