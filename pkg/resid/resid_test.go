// SPDX-License-Identifier: MPL-2.0

package resid

import (
	"errors"
	"testing"

	"github.com/resdir/run/pkg/semver"
)

func TestNamePart_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		part    NamePart
		wantErr bool
	}{
		{"simple", "registry", false},
		{"single_char", "a", false},
		{"dotted", "js.resource", false},
		{"dashes_and_underscores", "my_tool-2", false},
		{"empty", "", true},
		{"leading_dash", "-tool", true},
		{"trailing_dot", "tool.", true},
		{"space", "my tool", true},
		{"slash", "a/b", true},
		{"at_sign", "a@b", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.part.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("NamePart(%q).Validate() error = %v, wantErr %v", tt.part, err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrInvalidNamePart) {
				t.Errorf("error should wrap ErrInvalidNamePart, got: %v", err)
			}
		})
	}
}

func TestParseIdentifier(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		wantErr bool
	}{
		{"resdir/registry", false},
		{"js.org/bundler", false},
		{"registry", true},
		{"a/b/c", true},
		{"/name", true},
		{"ns/", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			id, err := ParseIdentifier(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidIdentifier) {
					t.Errorf("ParseIdentifier(%q) error = %v, want ErrInvalidIdentifier", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseIdentifier(%q) unexpected error: %v", tt.input, err)
			}
			if id.String() != tt.input {
				t.Errorf("ParseIdentifier(%q).String() = %q", tt.input, id.String())
			}
		})
	}
}

func TestParseSpecifier(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input        string
		wantLocation string
		wantID       string
		wantAny      bool
		wantErr      bool
	}{
		{input: "./tool", wantLocation: "./tool"},
		{input: "../shared/@resource.json", wantLocation: "../shared/@resource.json"},
		{input: "/abs/dir", wantLocation: "/abs/dir"},
		{input: "resdir/registry", wantID: "resdir/registry", wantAny: true},
		{input: "resdir/registry@^1.0.0", wantID: "resdir/registry"},
		{input: "nope", wantErr: true},
		{input: "ns/name@>>1", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			spec, err := ParseSpecifier(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidSpecifier) {
					t.Errorf("ParseSpecifier(%q) error = %v, want ErrInvalidSpecifier", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseSpecifier(%q) unexpected error: %v", tt.input, err)
			}
			if spec.Location != tt.wantLocation {
				t.Errorf("Location = %q, want %q", spec.Location, tt.wantLocation)
			}
			if spec.Identifier.String() != tt.wantID {
				t.Errorf("Identifier = %q, want %q", spec.Identifier, tt.wantID)
			}
			if !spec.IsLocation() && spec.Range.IsAny() != tt.wantAny {
				t.Errorf("Range.IsAny() = %v, want %v", spec.Range.IsAny(), tt.wantAny)
			}
			if spec.String() != tt.input {
				t.Errorf("String() = %q, want %q", spec.String(), tt.input)
			}
		})
	}
}

func TestParseSpecifier_RangeErrorIsReachable(t *testing.T) {
	t.Parallel()

	_, err := ParseSpecifier("ns/name@>>1")
	if !errors.Is(err, semver.ErrInvalidRange) {
		t.Errorf("error should also wrap semver.ErrInvalidRange, got: %v", err)
	}
}

func TestParseRuntime(t *testing.T) {
	t.Parallel()

	rt, err := ParseRuntime("node@>=6.10.0")
	if err != nil {
		t.Fatalf("ParseRuntime() unexpected error: %v", err)
	}
	if !rt.Satisfies("node", "8.0.0") {
		t.Error("node@>=6.10.0 should accept node 8.0.0")
	}
	if rt.Satisfies("node", "6.9.0") {
		t.Error("node@>=6.10.0 should reject node 6.9.0")
	}
	if rt.Satisfies("deno", "8.0.0") {
		t.Error("node@>=6.10.0 should reject deno")
	}
	if rt.String() != "node@>=6.10.0" {
		t.Errorf("String() = %q", rt.String())
	}

	for _, bad := range []string{"", "@1.0.0", "node@abc", "-node"} {
		if _, err := ParseRuntime(bad); !errors.Is(err, ErrInvalidRuntime) {
			t.Errorf("ParseRuntime(%q) error = %v, want ErrInvalidRuntime", bad, err)
		}
	}
}
