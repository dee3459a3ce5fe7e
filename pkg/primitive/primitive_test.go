// SPDX-License-Identifier: MPL-2.0

package primitive

import (
	"errors"
	"testing"

	"github.com/resdir/run/pkg/definition"
)

func TestInfer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value any
		want  string
	}{
		{true, BooleanName},
		{3, NumberName},
		{2.5, NumberName},
		{"x", StringName},
		{[]any{1}, ArrayName},
		{definition.New(), ObjectName},
		{map[string]any{}, ObjectName},
	}
	for _, tt := range tests {
		k, err := Infer(tt.value)
		if err != nil {
			t.Errorf("Infer(%#v) unexpected error: %v", tt.value, err)
			continue
		}
		if k.Name() != tt.want {
			t.Errorf("Infer(%#v) = %s, want %s", tt.value, k.Name(), tt.want)
		}
	}

	if _, err := Infer(nil); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("Infer(nil) error = %v, want ErrInvalidValue", err)
	}
}

func TestKind_Normalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind    Kind
		value   any
		wantErr bool
	}{
		{Boolean, true, false},
		{Boolean, nil, false},
		{Boolean, "true", true},
		{Number, 3, false},
		{Number, "3", true},
		{String, "s", false},
		{String, 1.0, true},
		{Array, []any{}, false},
		{Array, "a", true},
		{Object, definition.New(), false},
		{Object, []any{}, true},
	}
	for _, tt := range tests {
		_, err := tt.kind.Normalize(tt.value)
		if (err != nil) != tt.wantErr {
			t.Errorf("%s.Normalize(%#v) error = %v, wantErr %v", tt.kind.Name(), tt.value, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, ErrInvalidValue) {
			t.Errorf("%s.Normalize(%#v) error should wrap ErrInvalidValue", tt.kind.Name(), tt.value)
		}
	}

	if v, _ := Number.Normalize(int64(4)); v != float64(4) {
		t.Errorf("Number.Normalize(int64(4)) = %#v, want float64(4)", v)
	}
}

func TestKind_Parse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind    Kind
		input   string
		want    any
		wantErr bool
	}{
		{Boolean, "", true, false},
		{Boolean, "yes", true, false},
		{Boolean, "off", false, false},
		{Boolean, "maybe", nil, true},
		{Number, "42", 42.0, false},
		{Number, " 1.5 ", 1.5, false},
		{Number, "four", nil, true},
		{String, "anything", "anything", false},
	}
	for _, tt := range tests {
		got, err := tt.kind.Parse(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("%s.Parse(%q) error = %v, wantErr %v", tt.kind.Name(), tt.input, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("%s.Parse(%q) = %#v, want %#v", tt.kind.Name(), tt.input, got, tt.want)
		}
	}

	arr, err := Array.Parse(`[1, "a"]`)
	if err != nil || len(arr.([]any)) != 2 {
		t.Errorf("Array.Parse(json) = %#v, %v", arr, err)
	}
	single, _ := Array.Parse("solo")
	if items := single.([]any); len(items) != 1 || items[0] != "solo" {
		t.Errorf("Array.Parse(solo) = %#v", single)
	}
	if _, err := Object.Parse(`[1]`); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("Object.Parse([1]) error = %v, want ErrInvalidValue", err)
	}
	obj, err := Object.Parse(`{"k": "v"}`)
	if err != nil || !definition.IsMapping(obj) {
		t.Errorf("Object.Parse(json) = %#v, %v", obj, err)
	}
}

func TestLookup(t *testing.T) {
	t.Parallel()

	for _, k := range All() {
		got, ok := Lookup(k.Name())
		if !ok || got != k {
			t.Errorf("Lookup(%q) = %v, %v", k.Name(), got, ok)
		}
	}
	if _, ok := Lookup("resource"); ok {
		t.Error("Lookup(resource) should fail")
	}
}
