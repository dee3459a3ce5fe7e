// SPDX-License-Identifier: MPL-2.0

// Package semver implements the semantic versions and version ranges used by
// resource identifiers, runtime requirements and registry lookups.
package semver

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var (
	// ErrInvalidVersion is the sentinel error wrapped by InvalidVersionError.
	ErrInvalidVersion = errors.New("invalid version")

	// ErrInvalidRange is the sentinel error wrapped by InvalidRangeError.
	ErrInvalidRange = errors.New("invalid version range")

	// versionRegex matches complete semantic versions (major.minor.patch).
	versionRegex = regexp.MustCompile(`^v?(\d+)\.(\d+)\.(\d+)(?:-([0-9A-Za-z\-\.]+))?(?:\+([0-9A-Za-z\-\.]+))?$`)

	// partialRegex matches the (possibly partial) versions found inside constraints.
	partialRegex = regexp.MustCompile(`^v?(\d+)(?:\.(\d+))?(?:\.(\d+))?(?:-([0-9A-Za-z\-\.]+))?$`)

	// constraintRegex matches a single comparator.
	constraintRegex = regexp.MustCompile(`^([~^]|>=|<=|>|<|=)?\s*(v?\d+(?:\.\d+)?(?:\.\d+)?(?:-[0-9A-Za-z\-\.]+)?)$`)
)

type (
	// Version represents a parsed semantic version.
	Version struct {
		Major      int
		Minor      int
		Patch      int
		Prerelease string
		Original   string
	}

	// InvalidVersionError is returned when a string is not a semantic version.
	InvalidVersionError struct {
		Value string
	}

	// InvalidRangeError is returned when a string is not a version range.
	InvalidRangeError struct {
		Value  string
		Reason string
	}
)

// Error implements the error interface.
func (e *InvalidVersionError) Error() string {
	return fmt.Sprintf("invalid version %q (expected major.minor.patch, e.g. 1.2.3)", e.Value)
}

// Unwrap returns ErrInvalidVersion so callers can use errors.Is.
func (e *InvalidVersionError) Unwrap() error { return ErrInvalidVersion }

// Error implements the error interface.
func (e *InvalidRangeError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid version range %q: %s", e.Value, e.Reason)
	}
	return fmt.Sprintf("invalid version range %q", e.Value)
}

// Unwrap returns ErrInvalidRange so callers can use errors.Is.
func (e *InvalidRangeError) Unwrap() error { return ErrInvalidRange }

// ParseVersion parses a complete semantic version. A leading "v" is accepted.
func ParseVersion(s string) (*Version, error) {
	matches := versionRegex.FindStringSubmatch(strings.TrimSpace(s))
	if matches == nil {
		return nil, &InvalidVersionError{Value: s}
	}
	return fromMatches(s, matches)
}

// MustParseVersion is like ParseVersion but panics on error.
func MustParseVersion(s string) *Version {
	v, err := ParseVersion(s)
	if err != nil {
		panic(err)
	}
	return v
}

// IsValidVersion reports whether s is a complete semantic version.
func IsValidVersion(s string) bool {
	_, err := ParseVersion(s)
	return err == nil
}

func parsePartial(s string) (*Version, error) {
	matches := partialRegex.FindStringSubmatch(s)
	if matches == nil {
		return nil, &InvalidVersionError{Value: s}
	}
	return fromMatches(s, matches)
}

func fromMatches(s string, matches []string) (*Version, error) {
	v := &Version{Original: s}

	var err error
	if v.Major, err = strconv.Atoi(matches[1]); err != nil {
		return nil, &InvalidVersionError{Value: s}
	}
	if matches[2] != "" {
		if v.Minor, err = strconv.Atoi(matches[2]); err != nil {
			return nil, &InvalidVersionError{Value: s}
		}
	}
	if matches[3] != "" {
		if v.Patch, err = strconv.Atoi(matches[3]); err != nil {
			return nil, &InvalidVersionError{Value: s}
		}
	}
	v.Prerelease = matches[4]

	return v, nil
}

// String returns the canonical form of the version (without a "v" prefix).
func (v *Version) String() string {
	s := fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	if v.Prerelease != "" {
		s += "-" + v.Prerelease
	}
	return s
}

// Compare compares two versions.
// Returns -1 if v < other, 0 if v == other, 1 if v > other.
func (v *Version) Compare(other *Version) int {
	switch {
	case v.Major != other.Major:
		return cmpInt(v.Major, other.Major)
	case v.Minor != other.Minor:
		return cmpInt(v.Minor, other.Minor)
	case v.Patch != other.Patch:
		return cmpInt(v.Patch, other.Patch)
	}

	// Prerelease versions have lower precedence
	if v.Prerelease == "" && other.Prerelease != "" {
		return 1
	}
	if v.Prerelease != "" && other.Prerelease == "" {
		return -1
	}
	return strings.Compare(v.Prerelease, other.Prerelease)
}

func cmpInt(a, b int) int {
	if a < b {
		return -1
	}
	return 1
}

// SortVersions sorts version strings in descending order (newest first).
// Strings that are not versions are dropped.
func SortVersions(versions []string) []string {
	parsed := make([]*Version, 0, len(versions))
	for _, vs := range versions {
		v, err := ParseVersion(vs)
		if err != nil {
			continue
		}
		parsed = append(parsed, v)
	}

	sort.SliceStable(parsed, func(i, j int) bool {
		return parsed[i].Compare(parsed[j]) > 0
	})

	result := make([]string, len(parsed))
	for i, v := range parsed {
		result[i] = v.Original
	}
	return result
}
