// SPDX-License-Identifier: MPL-2.0

package resid

import (
	"fmt"
	"strings"

	"github.com/resdir/run/pkg/semver"
)

type (
	// Runtime is an execution environment requirement such as "node@>=6.10.0".
	Runtime struct {
		Name  NamePart
		Range semver.Range
	}

	// InvalidRuntimeError wraps ErrInvalidRuntime.
	InvalidRuntimeError struct {
		Value string
		Err   error
	}
)

// ParseRuntime parses "name[@range]".
func ParseRuntime(s string) (Runtime, error) {
	name, rangePart, _ := strings.Cut(strings.TrimSpace(s), "@")
	rt := Runtime{Name: NamePart(name)}
	if err := rt.Name.Validate(); err != nil {
		return Runtime{}, &InvalidRuntimeError{Value: s, Err: err}
	}
	rng, err := semver.ParseRange(rangePart)
	if err != nil {
		return Runtime{}, &InvalidRuntimeError{Value: s, Err: err}
	}
	rt.Range = rng
	return rt, nil
}

// String returns "name@range", or just the name when any version is accepted.
func (r Runtime) String() string {
	if r.Range.IsAny() {
		return string(r.Name)
	}
	return string(r.Name) + "@" + r.Range.String()
}

// Satisfies reports whether the runtime accepts the given name and version.
func (r Runtime) Satisfies(name, version string) bool {
	return string(r.Name) == name && r.Range.MatchesString(version)
}

// Error implements the error interface for InvalidRuntimeError.
func (e *InvalidRuntimeError) Error() string {
	return fmt.Sprintf("invalid runtime %q: %v", e.Value, e.Err)
}

// Unwrap returns the sentinel and the underlying cause.
func (e *InvalidRuntimeError) Unwrap() []error {
	return []error{ErrInvalidRuntime, e.Err}
}
