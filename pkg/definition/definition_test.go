// SPDX-License-Identifier: MPL-2.0

package definition

import (
	"errors"
	"slices"
	"strings"
	"testing"
)

func TestDefinition_SetKeepsInsertionOrder(t *testing.T) {
	t.Parallel()

	d := New()
	d.Set("zeta", 1)
	d.Set("alpha", "a")
	d.Set("mid", true)
	d.Set("zeta", 2)

	if got, want := d.Keys(), []string{"zeta", "alpha", "mid"}; !slices.Equal(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}
	if v, _ := d.Get("zeta"); v != float64(2) {
		t.Errorf("Get(zeta) = %#v, want float64(2)", v)
	}

	if !d.Delete("alpha") || d.Delete("alpha") {
		t.Error("Delete(alpha) should succeed once")
	}
	if got, want := d.Keys(), []string{"zeta", "mid"}; !slices.Equal(got, want) {
		t.Errorf("Keys() after delete = %v, want %v", got, want)
	}
}

func TestDefinition_Lookup(t *testing.T) {
	t.Parallel()

	d := Of("@i", "./base", "@type", "string")

	v, key, ok := d.Lookup("@import", "@i")
	if !ok || key != "@i" || v != "./base" {
		t.Errorf("Lookup(@import, @i) = %v, %q, %v", v, key, ok)
	}
	if _, _, ok := d.Lookup("@load"); ok {
		t.Error("Lookup(@load) should not match")
	}

	var nilDef *Definition
	if nilDef.Len() != 0 || nilDef.Has("x") {
		t.Error("nil definition should behave as empty")
	}
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	v := Normalize(map[string]any{
		"b": []any{1, int64(2), "x"},
		"a": map[string]any{"n": uint8(3)},
	})
	d, ok := v.(*Definition)
	if !ok {
		t.Fatalf("Normalize(map) = %T, want *Definition", v)
	}
	if got, want := d.Keys(), []string{"a", "b"}; !slices.Equal(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}
	b, _ := d.Get("b")
	if items := b.([]any); items[0] != float64(1) || items[1] != float64(2) {
		t.Errorf("numbers should normalize to float64, got %#v", items)
	}
	a, _ := d.Get("a")
	n, _ := a.(*Definition).Get("n")
	if n != float64(3) {
		t.Errorf("nested number = %#v, want float64(3)", n)
	}
}

func TestDefinition_Clone(t *testing.T) {
	t.Parallel()

	orig := Of("list", []any{Of("k", "v")})
	clone := orig.Clone()
	list, _ := clone.Get("list")
	list.([]any)[0].(*Definition).Set("k", "changed")

	origList, _ := orig.Get("list")
	if v, _ := origList.([]any)[0].(*Definition).Get("k"); v != "v" {
		t.Errorf("Clone() should deep copy, original changed to %v", v)
	}
}

func TestDecodeJSON_PreservesOrder(t *testing.T) {
	t.Parallel()

	v, err := DecodeJSON([]byte(`{"z": 1, "a": {"y": [1, "two", null], "b": false}, "m": "x"}`))
	if err != nil {
		t.Fatalf("DecodeJSON() unexpected error: %v", err)
	}
	d := v.(*Definition)
	if got, want := d.Keys(), []string{"z", "a", "m"}; !slices.Equal(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}
	a, _ := d.Get("a")
	if got, want := a.(*Definition).Keys(), []string{"y", "b"}; !slices.Equal(got, want) {
		t.Errorf("nested Keys() = %v, want %v", got, want)
	}

	out, err := d.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON() unexpected error: %v", err)
	}
	if want := `{"z":1,"a":{"y":[1,"two",null],"b":false},"m":"x"}`; string(out) != want {
		t.Errorf("MarshalJSON() = %s, want %s", out, want)
	}
}

func TestDecodeJSON_Errors(t *testing.T) {
	t.Parallel()

	for _, input := range []string{`{"a":`, `{"a": 1} {"b": 2}`, `[1,`} {
		if _, err := DecodeJSON([]byte(input)); !errors.Is(err, ErrSyntax) {
			t.Errorf("DecodeJSON(%q) error = %v, want ErrSyntax", input, err)
		}
	}
}

func TestEncodeJSON_Indents(t *testing.T) {
	t.Parallel()

	out, err := EncodeJSON(Of("@type", "string", "@value", "<b>"))
	if err != nil {
		t.Fatalf("EncodeJSON() unexpected error: %v", err)
	}
	want := "{\n  \"@type\": \"string\",\n  \"@value\": \"<b>\"\n}\n"
	if string(out) != want {
		t.Errorf("EncodeJSON() = %q, want %q", out, want)
	}
}

func TestYAML_RoundTripPreservesOrder(t *testing.T) {
	t.Parallel()

	src := "zeta: 1\nalpha:\n  - a\n  - 2.5\nnested:\n  y: true\n  b: null\n"
	v, err := DecodeYAML([]byte(src))
	if err != nil {
		t.Fatalf("DecodeYAML() unexpected error: %v", err)
	}
	d := v.(*Definition)
	if got, want := d.Keys(), []string{"zeta", "alpha", "nested"}; !slices.Equal(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}
	if z, _ := d.Get("zeta"); z != float64(1) {
		t.Errorf("zeta = %#v, want float64(1)", z)
	}

	out, err := EncodeYAML(d)
	if err != nil {
		t.Fatalf("EncodeYAML() unexpected error: %v", err)
	}
	if !strings.HasPrefix(string(out), "zeta: 1\nalpha:\n") {
		t.Errorf("EncodeYAML() lost key order:\n%s", out)
	}
}

func TestDecodeYAML_Empty(t *testing.T) {
	t.Parallel()

	v, err := DecodeYAML(nil)
	if err != nil || v != nil {
		t.Errorf("DecodeYAML(nil) = %v, %v, want nil, nil", v, err)
	}
}
