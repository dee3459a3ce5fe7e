// SPDX-License-Identifier: MPL-2.0

package semver

import (
	"strings"
)

type (
	// Constraint is a single comparator such as "^1.2.0" or ">=2".
	Constraint struct {
		// Op is the comparison operator (=, ^, ~, >, >=, <, <=).
		Op string
		// Version is the version to compare against.
		Version *Version
		// Original is the original constraint string.
		Original string
	}

	// Range is a disjunction ("||") of conjunctions (space separated) of
	// constraints. The zero Range matches every version.
	Range struct {
		sets     [][]Constraint
		original string
	}
)

// ParseConstraint parses a single comparator.
func ParseConstraint(s string) (Constraint, error) {
	s = strings.TrimSpace(s)

	matches := constraintRegex.FindStringSubmatch(s)
	if matches == nil {
		return Constraint{}, &InvalidRangeError{Value: s}
	}

	op := matches[1]
	if op == "" {
		op = "="
	}

	version, err := parsePartial(matches[2])
	if err != nil {
		return Constraint{}, &InvalidRangeError{Value: s, Reason: err.Error()}
	}

	return Constraint{Op: op, Version: version, Original: s}, nil
}

// Matches checks if a version satisfies the constraint.
func (c Constraint) Matches(v *Version) bool {
	switch c.Op {
	case "=":
		return v.Compare(c.Version) == 0

	case "^":
		// ^1.2.3 := >=1.2.3 <2.0.0
		// ^0.2.3 := >=0.2.3 <0.3.0
		// ^0.0.3 := >=0.0.3 <0.0.4
		if v.Compare(c.Version) < 0 {
			return false
		}
		if c.Version.Major != 0 {
			return v.Major == c.Version.Major
		}
		if c.Version.Minor != 0 {
			return v.Major == 0 && v.Minor == c.Version.Minor
		}
		return v.Major == 0 && v.Minor == 0 && v.Patch == c.Version.Patch

	case "~":
		// ~1.2.3 := >=1.2.3 <1.3.0
		if v.Compare(c.Version) < 0 {
			return false
		}
		return v.Major == c.Version.Major && v.Minor == c.Version.Minor

	case ">":
		return v.Compare(c.Version) > 0

	case ">=":
		return v.Compare(c.Version) >= 0

	case "<":
		return v.Compare(c.Version) < 0

	case "<=":
		return v.Compare(c.Version) <= 0

	default:
		return false
	}
}

// ParseRange parses a version range. "", "*", "x" and "latest" match any version.
func ParseRange(s string) (Range, error) {
	trimmed := strings.TrimSpace(s)
	r := Range{original: trimmed}
	if isAny(trimmed) {
		return r, nil
	}

	for _, alternative := range strings.Split(trimmed, "||") {
		fields := strings.Fields(normalizeOperators(alternative))
		if len(fields) == 0 {
			return Range{}, &InvalidRangeError{Value: s, Reason: "empty alternative"}
		}
		set := make([]Constraint, 0, len(fields))
		for _, field := range fields {
			if isAny(field) {
				continue
			}
			c, err := ParseConstraint(field)
			if err != nil {
				return Range{}, &InvalidRangeError{Value: s, Reason: err.Error()}
			}
			set = append(set, c)
		}
		if len(set) == 0 {
			// An alternative made only of wildcards accepts everything.
			return Range{original: trimmed}, nil
		}
		r.sets = append(r.sets, set)
	}

	return r, nil
}

// MustParseRange is like ParseRange but panics on error.
func MustParseRange(s string) Range {
	r, err := ParseRange(s)
	if err != nil {
		panic(err)
	}
	return r
}

// IsValidRange reports whether s parses as a version range.
func IsValidRange(s string) bool {
	_, err := ParseRange(s)
	return err == nil
}

// normalizeOperators removes blanks between an operator and its version so
// ">= 1.2.0" reads as one comparator.
func normalizeOperators(s string) string {
	for _, op := range []string{">=", "<=", ">", "<", "=", "^", "~"} {
		for strings.Contains(s, op+" ") {
			s = strings.ReplaceAll(s, op+" ", op)
		}
	}
	return s
}

func isAny(s string) bool {
	switch s {
	case "", "*", "x", "X", "latest":
		return true
	}
	return false
}

// IsAny reports whether the range accepts every version.
func (r Range) IsAny() bool { return len(r.sets) == 0 }

// String returns the range as written.
func (r Range) String() string { return r.original }

// Matches reports whether v satisfies the range.
func (r Range) Matches(v *Version) bool {
	if r.IsAny() {
		return true
	}
	for _, set := range r.sets {
		ok := true
		for _, c := range set {
			if !c.Matches(v) {
				ok = false
				break
			}
		}
		if ok {
			return true
		}
	}
	return false
}

// MatchesString is Matches for a version string; invalid versions never match.
func (r Range) MatchesString(version string) bool {
	v, err := ParseVersion(version)
	if err != nil {
		return false
	}
	return r.Matches(v)
}

// MaxSatisfying returns the highest version in versions that satisfies the
// range. Strings that are not versions are ignored.
func (r Range) MaxSatisfying(versions []string) (string, bool) {
	for _, candidate := range SortVersions(versions) {
		if r.MatchesString(candidate) {
			return candidate, true
		}
	}
	return "", false
}
