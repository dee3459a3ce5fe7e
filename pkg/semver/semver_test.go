// SPDX-License-Identifier: MPL-2.0

package semver

import (
	"errors"
	"slices"
	"testing"
)

func TestParseVersion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"simple", "1.0.0", "1.0.0", false},
		{"with_v_prefix", "v2.3.4", "2.3.4", false},
		{"with_prerelease", "2.3.4-alpha.1", "2.3.4-alpha.1", false},
		{"with_build", "1.2.3+build.5", "1.2.3", false},
		{"major_only", "1", "", true},
		{"major_minor", "1.2", "", true},
		{"empty", "", "", true},
		{"invalid", "abc", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			v, err := ParseVersion(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseVersion(%q) returned no error, want error", tt.input)
				}
				if !errors.Is(err, ErrInvalidVersion) {
					t.Errorf("error should wrap ErrInvalidVersion, got: %v", err)
				}
				var ive *InvalidVersionError
				if !errors.As(err, &ive) || ive.Value != tt.input {
					t.Errorf("error should be *InvalidVersionError{Value: %q}, got: %v", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseVersion(%q) unexpected error: %v", tt.input, err)
			}
			if v.String() != tt.want {
				t.Errorf("ParseVersion(%q).String() = %q, want %q", tt.input, v.String(), tt.want)
			}
		})
	}
}

func TestVersion_Compare(t *testing.T) {
	t.Parallel()

	tests := []struct {
		a, b string
		want int
	}{
		{"1.0.0", "1.0.0", 0},
		{"1.0.0", "2.0.0", -1},
		{"1.2.0", "1.1.9", 1},
		{"1.2.3", "1.2.4", -1},
		{"1.0.0-alpha", "1.0.0", -1},
		{"1.0.0", "1.0.0-rc.1", 1},
		{"1.0.0-alpha", "1.0.0-beta", -1},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_vs_"+tt.b, func(t *testing.T) {
			t.Parallel()
			got := MustParseVersion(tt.a).Compare(MustParseVersion(tt.b))
			if got != tt.want {
				t.Errorf("Compare(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestRange_Matches(t *testing.T) {
	t.Parallel()

	tests := []struct {
		rng     string
		version string
		want    bool
	}{
		{"", "0.0.1", true},
		{"*", "9.9.9", true},
		{"latest", "1.0.0", true},
		{"^1.2.0", "1.9.0", true},
		{"^1.2.0", "2.0.0", false},
		{"^1.2.0", "1.1.0", false},
		{"^0.2.3", "0.2.9", true},
		{"^0.2.3", "0.3.0", false},
		{"^0.0.3", "0.0.4", false},
		{"~1.2.0", "1.2.7", true},
		{"~1.2.0", "1.3.0", false},
		{">=1.0.0 <2.0.0", "1.5.0", true},
		{">=1.0.0 <2.0.0", "2.0.0", false},
		{">= 1.0.0", "1.0.0", true},
		{"1.2.3", "1.2.3", true},
		{"1.2.3", "1.2.4", false},
		{"^1.0.0 || ^3.0.0", "3.1.0", true},
		{"^1.0.0 || ^3.0.0", "2.1.0", false},
		{"^1", "1.4.0", true},
	}

	for _, tt := range tests {
		t.Run(tt.rng+"_"+tt.version, func(t *testing.T) {
			t.Parallel()
			r, err := ParseRange(tt.rng)
			if err != nil {
				t.Fatalf("ParseRange(%q) unexpected error: %v", tt.rng, err)
			}
			if got := r.MatchesString(tt.version); got != tt.want {
				t.Errorf("ParseRange(%q).MatchesString(%q) = %v, want %v", tt.rng, tt.version, got, tt.want)
			}
		})
	}
}

func TestParseRange_Invalid(t *testing.T) {
	t.Parallel()

	for _, input := range []string{">>1.0", "abc", "^1.0.0 ||", "1.x.y"} {
		t.Run(input, func(t *testing.T) {
			t.Parallel()
			_, err := ParseRange(input)
			if err == nil {
				t.Fatalf("ParseRange(%q) returned no error, want error", input)
			}
			if !errors.Is(err, ErrInvalidRange) {
				t.Errorf("error should wrap ErrInvalidRange, got: %v", err)
			}
		})
	}
}

func TestRange_MaxSatisfying(t *testing.T) {
	t.Parallel()

	versions := []string{"1.0.0", "v1.4.2", "1.3.0", "2.0.0", "not-a-tag"}

	got, ok := MustParseRange("^1.0.0").MaxSatisfying(versions)
	if !ok || got != "v1.4.2" {
		t.Errorf("MaxSatisfying(^1.0.0) = %q, %v, want %q, true", got, ok, "v1.4.2")
	}

	if _, ok := MustParseRange("^3.0.0").MaxSatisfying(versions); ok {
		t.Error("MaxSatisfying(^3.0.0) should find nothing")
	}
}

func TestSortVersions(t *testing.T) {
	t.Parallel()

	got := SortVersions([]string{"1.0.0", "2.0.0", "bogus", "1.10.0", "1.2.0"})
	want := []string{"2.0.0", "1.10.0", "1.2.0", "1.0.0"}
	if !slices.Equal(got, want) {
		t.Errorf("SortVersions() = %v, want %v", got, want)
	}
}
