// SPDX-License-Identifier: MPL-2.0

// Package definition provides the ordered document a resource is built from.
//
// A resource definition is a nested mapping decoded from JSON, JSON5 or YAML.
// Key order is significant: children are constructed and serialized in the
// order they appear, so mappings are decoded into [*Definition] rather than
// Go maps. Scalars are normalized to bool, float64 and string, sequences to
// []any, and nested mappings to *Definition.
package definition

import (
	"fmt"
	"maps"
	"slices"
	"sort"
)

// Definition is an insertion-ordered string-keyed mapping.
// The zero value is an empty definition ready to use.
type Definition struct {
	keys   []string
	values map[string]any
}

// New returns an empty definition.
func New() *Definition {
	return &Definition{}
}

// Of builds a definition from alternating key/value arguments.
// It panics when a key is not a string or a value is missing.
func Of(pairs ...any) *Definition {
	if len(pairs)%2 != 0 {
		panic("definition.Of: odd number of arguments")
	}
	d := New()
	for i := 0; i < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			panic(fmt.Sprintf("definition.Of: key %v is not a string", pairs[i]))
		}
		d.Set(key, pairs[i+1])
	}
	return d
}

// FromMap converts a Go map into a definition. Keys are sorted because Go
// maps carry no order.
func FromMap(m map[string]any) *Definition {
	d := New()
	keys := slices.Collect(maps.Keys(m))
	sort.Strings(keys)
	for _, k := range keys {
		d.Set(k, m[k])
	}
	return d
}

// Len returns the number of keys.
func (d *Definition) Len() int {
	if d == nil {
		return 0
	}
	return len(d.keys)
}

// Keys returns the keys in insertion order.
func (d *Definition) Keys() []string {
	if d == nil {
		return nil
	}
	return slices.Clone(d.keys)
}

// Has reports whether key is present.
func (d *Definition) Has(key string) bool {
	if d == nil {
		return false
	}
	_, ok := d.values[key]
	return ok
}

// Get returns the value stored under key.
func (d *Definition) Get(key string) (any, bool) {
	if d == nil {
		return nil, false
	}
	v, ok := d.values[key]
	return v, ok
}

// Lookup returns the value of the first present key among key and its
// aliases, together with the key that matched.
func (d *Definition) Lookup(key string, aliases ...string) (value any, matched string, ok bool) {
	for _, k := range append([]string{key}, aliases...) {
		if v, found := d.Get(k); found {
			return v, k, true
		}
	}
	return nil, "", false
}

// Set stores value under key. Existing keys keep their position.
// The value is normalized (see Normalize).
func (d *Definition) Set(key string, value any) {
	if d.values == nil {
		d.values = make(map[string]any)
	}
	if _, exists := d.values[key]; !exists {
		d.keys = append(d.keys, key)
	}
	d.values[key] = Normalize(value)
}

// Delete removes key and reports whether it was present.
func (d *Definition) Delete(key string) bool {
	if !d.Has(key) {
		return false
	}
	delete(d.values, key)
	d.keys = slices.DeleteFunc(d.keys, func(k string) bool { return k == key })
	return true
}

// All iterates over key/value pairs in insertion order.
func (d *Definition) All(yield func(key string, value any) bool) {
	if d == nil {
		return
	}
	for _, k := range d.keys {
		if !yield(k, d.values[k]) {
			return
		}
	}
}

// Clone returns a deep copy.
func (d *Definition) Clone() *Definition {
	if d == nil {
		return nil
	}
	c := New()
	for k, v := range d.All {
		c.Set(k, cloneValue(v))
	}
	return c
}

// ToMap converts the definition into plain Go maps and slices, recursively.
func (d *Definition) ToMap() map[string]any {
	if d == nil {
		return nil
	}
	m := make(map[string]any, len(d.keys))
	for k, v := range d.All {
		m[k] = Plain(v)
	}
	return m
}

// Plain converts nested definitions inside v into Go maps.
func Plain(v any) any {
	switch t := v.(type) {
	case *Definition:
		return t.ToMap()
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = Plain(item)
		}
		return out
	default:
		return v
	}
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case *Definition:
		return t.Clone()
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}

// Normalize converts Go values into the canonical definition value space:
// nil, bool, float64, string, []any and *Definition.
// Values outside that space are returned unchanged.
func Normalize(v any) any {
	switch t := v.(type) {
	case nil, bool, float64, string, *Definition:
		return t
	case Definition:
		return &t
	case int:
		return float64(t)
	case int8:
		return float64(t)
	case int16:
		return float64(t)
	case int32:
		return float64(t)
	case int64:
		return float64(t)
	case uint:
		return float64(t)
	case uint8:
		return float64(t)
	case uint16:
		return float64(t)
	case uint32:
		return float64(t)
	case uint64:
		return float64(t)
	case float32:
		return float64(t)
	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = Normalize(item)
		}
		return out
	case map[string]any:
		return FromMap(t)
	default:
		return v
	}
}

// IsMapping reports whether v is a definition mapping.
func IsMapping(v any) bool {
	_, ok := v.(*Definition)
	return ok
}
