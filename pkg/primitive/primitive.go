// SPDX-License-Identifier: MPL-2.0

// Package primitive defines the value kinds a value resource can hold.
package primitive

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/resdir/run/pkg/definition"
)

// Kind names.
const (
	BooleanName = "boolean"
	NumberName  = "number"
	StringName  = "string"
	ArrayName   = "array"
	ObjectName  = "object"
)

// ErrInvalidValue is the sentinel wrapped by InvalidValueError.
var ErrInvalidValue = errors.New("invalid value")

type (
	// Kind normalizes and parses the values of one primitive type.
	// A nil value is always accepted and means "undefined".
	Kind interface {
		// Name returns the type name used in definitions ("boolean", ...).
		Name() string
		// Normalize validates a definition value and returns it in canonical form.
		Normalize(v any) (any, error)
		// Parse converts a command line string.
		Parse(s string) (any, error)
	}

	// InvalidValueError is returned when a value does not fit a kind.
	InvalidValueError struct {
		Kind  string
		Value any
	}

	booleanKind struct{}
	numberKind  struct{}
	stringKind  struct{}
	arrayKind   struct{}
	objectKind  struct{}
)

// The primitive kinds.
var (
	Boolean Kind = booleanKind{}
	Number  Kind = numberKind{}
	String  Kind = stringKind{}
	Array   Kind = arrayKind{}
	Object  Kind = objectKind{}

	all = []Kind{Boolean, Number, String, Array, Object}
)

// Error implements the error interface.
func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("invalid %s value: %#v", e.Kind, e.Value)
}

// Unwrap returns ErrInvalidValue.
func (e *InvalidValueError) Unwrap() error { return ErrInvalidValue }

// All returns every kind.
func All() []Kind { return append([]Kind(nil), all...) }

// Lookup returns the kind with the given name.
func Lookup(name string) (Kind, bool) {
	for _, k := range all {
		if k.Name() == name {
			return k, true
		}
	}
	return nil, false
}

// Infer returns the kind of a definition value.
func Infer(v any) (Kind, error) {
	switch definition.Normalize(v).(type) {
	case bool:
		return Boolean, nil
	case float64:
		return Number, nil
	case string:
		return String, nil
	case []any:
		return Array, nil
	case *definition.Definition:
		return Object, nil
	default:
		return nil, &InvalidValueError{Kind: "primitive", Value: v}
	}
}

func (booleanKind) Name() string { return BooleanName }

func (booleanKind) Normalize(v any) (any, error) {
	switch t := v.(type) {
	case nil, bool:
		return t, nil
	default:
		return nil, &InvalidValueError{Kind: BooleanName, Value: v}
	}
}

func (booleanKind) Parse(s string) (any, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "true", "1", "yes", "on":
		return true, nil
	case "false", "0", "no", "off":
		return false, nil
	default:
		return nil, &InvalidValueError{Kind: BooleanName, Value: s}
	}
}

func (numberKind) Name() string { return NumberName }

func (numberKind) Normalize(v any) (any, error) {
	switch t := definition.Normalize(v).(type) {
	case nil, float64:
		return t, nil
	default:
		return nil, &InvalidValueError{Kind: NumberName, Value: v}
	}
}

func (numberKind) Parse(s string) (any, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil, &InvalidValueError{Kind: NumberName, Value: s}
	}
	return f, nil
}

func (stringKind) Name() string { return StringName }

func (stringKind) Normalize(v any) (any, error) {
	switch t := v.(type) {
	case nil, string:
		return t, nil
	default:
		return nil, &InvalidValueError{Kind: StringName, Value: v}
	}
}

func (stringKind) Parse(s string) (any, error) { return s, nil }

func (arrayKind) Name() string { return ArrayName }

func (arrayKind) Normalize(v any) (any, error) {
	switch t := definition.Normalize(v).(type) {
	case nil, []any:
		return t, nil
	default:
		return nil, &InvalidValueError{Kind: ArrayName, Value: v}
	}
}

// Parse accepts a JSON array, or treats the string as a single item.
func (arrayKind) Parse(s string) (any, error) {
	if strings.HasPrefix(strings.TrimSpace(s), "[") {
		v, err := definition.DecodeJSON([]byte(s))
		if err != nil {
			return nil, &InvalidValueError{Kind: ArrayName, Value: s}
		}
		return v, nil
	}
	return []any{s}, nil
}

func (objectKind) Name() string { return ObjectName }

func (objectKind) Normalize(v any) (any, error) {
	switch t := definition.Normalize(v).(type) {
	case nil, *definition.Definition:
		return t, nil
	default:
		return nil, &InvalidValueError{Kind: ObjectName, Value: v}
	}
}

func (objectKind) Parse(s string) (any, error) {
	v, err := definition.DecodeJSON([]byte(s))
	if err != nil || !definition.IsMapping(v) {
		return nil, &InvalidValueError{Kind: ObjectName, Value: s}
	}
	return v, nil
}
