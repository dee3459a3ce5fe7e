// SPDX-License-Identifier: MPL-2.0

package resource

import (
	"fmt"
	"math"

	"github.com/resdir/run/pkg/definition"
	"github.com/resdir/run/pkg/primitive"
	"github.com/resdir/run/pkg/resid"
	"github.com/resdir/run/pkg/semver"
)

type (
	// attributes holds what a node declares itself. nil means "not defined
	// here"; getters then fall back to the bases.
	attributes struct {
		id             *resid.Identifier
		version        *semver.Version
		types          []typeRef
		location       any
		directory      *string
		aliases        *AliasSet
		help           *string
		parameters     []*Node
		hasParameters  bool
		position       *int
		runtime        *resid.Runtime
		implementation *string
		hidden         *bool
		private        *bool
		autoBoxing     *bool
		autoUnboxing   *bool
		listen         []string
		hasListen      bool
		run            *string
		value          *valueSlot
	}

	// typeRef is one entry of @type / @import: a native type name, a
	// specifier, or an inline definition.
	typeRef struct {
		raw any
	}

	valueSlot struct {
		v any
	}
)

func (t typeRef) nativeName() (string, bool) {
	s, ok := t.raw.(string)
	if !ok || !isNativeTypeName(s) {
		return "", false
	}
	return s, true
}

// lookup returns the first result of get that reports ok, walking self then
// bases depth-first.
func lookup[T any](n *Node, get func(*attributes) (T, bool)) (T, bool) {
	var (
		result T
		found  bool
	)
	n.forSelfAndEachBase(func(m *Node) bool {
		result, found = get(&m.attrs)
		return !found
	})
	return result, found
}

func ptrValue[T any](p *T) (T, bool) {
	if p == nil {
		var zero T
		return zero, false
	}
	return *p, true
}

// ID returns the declared identifier. Identity is local to a node.
func (n *Node) ID() (resid.Identifier, bool) { return ptrValue(n.attrs.id) }

// SetID validates and sets the identifier ("namespace/name").
func (n *Node) SetID(id string) error {
	parsed, err := resid.ParseIdentifier(id)
	if err != nil {
		return &ValidationError{Path: n.Path(), Attribute: "@id", Value: id, Err: err}
	}
	n.attrs.id = &parsed
	return nil
}

// Version returns the declared version. Versions are local to a node.
func (n *Node) Version() (*semver.Version, bool) {
	return n.attrs.version, n.attrs.version != nil
}

// SetVersion validates and sets the version.
func (n *Node) SetVersion(version string) error {
	v, err := semver.ParseVersion(version)
	if err != nil {
		return &ValidationError{Path: n.Path(), Attribute: "@version", Value: version, Err: err}
	}
	n.attrs.version = v
	return nil
}

// Types returns the declared type references (names, specifiers or inline
// definitions).
func (n *Node) Types() []any {
	out := make([]any, len(n.attrs.types))
	for i, t := range n.attrs.types {
		out[i] = t.raw
	}
	return out
}

// Location returns the @load reference, if any.
func (n *Node) Location() (any, bool) { return n.attrs.location, n.attrs.location != nil }

// Aliases returns the inherited alias set; never nil.
func (n *Node) Aliases() *AliasSet {
	if s, ok := lookup(n, func(a *attributes) (*AliasSet, bool) { return a.aliases, a.aliases != nil }); ok {
		return s
	}
	return &AliasSet{}
}

// SetAliases replaces the declared aliases.
func (n *Node) SetAliases(aliases ...string) error {
	s := NewAliasSet()
	for _, alias := range aliases {
		if alias == "" {
			return &ValidationError{Path: n.Path(), Attribute: "@aliases", Value: alias, Err: fmt.Errorf("alias must not be empty")}
		}
		s.Add(alias)
	}
	n.attrs.aliases = s
	return nil
}

// Help returns the inherited help text.
func (n *Node) Help() string {
	h, _ := lookup(n, func(a *attributes) (string, bool) { return ptrValue(a.help) })
	return h
}

// SetHelp sets the help text.
func (n *Node) SetHelp(help string) { n.attrs.help = &help }

// Parameters returns the inherited parameter list.
func (n *Node) Parameters() []*Node {
	params, _ := lookup(n, func(a *attributes) ([]*Node, bool) { return a.parameters, a.hasParameters })
	return params
}

// Position returns the inherited positional index.
func (n *Node) Position() (int, bool) {
	return lookup(n, func(a *attributes) (int, bool) { return ptrValue(a.position) })
}

// SetPosition validates and sets the positional index.
func (n *Node) SetPosition(position int) error {
	if position < 0 {
		return &ValidationError{Path: n.Path(), Attribute: "@position", Value: position, Err: fmt.Errorf("must be a non-negative integer")}
	}
	n.attrs.position = &position
	return nil
}

func (n *Node) setPositionValue(v any) error {
	f, ok := v.(float64)
	if !ok || f != math.Trunc(f) || f < 0 || f > math.MaxInt32 {
		return &ValidationError{Path: n.Path(), Attribute: "@position", Value: v, Err: fmt.Errorf("must be a non-negative integer")}
	}
	return n.SetPosition(int(f))
}

// Runtime returns the inherited runtime requirement.
func (n *Node) Runtime() (resid.Runtime, bool) {
	return lookup(n, func(a *attributes) (resid.Runtime, bool) { return ptrValue(a.runtime) })
}

// SetRuntime validates and sets the runtime requirement ("name@range").
func (n *Node) SetRuntime(runtime string) error {
	rt, err := resid.ParseRuntime(runtime)
	if err != nil {
		return &ValidationError{Path: n.Path(), Attribute: "@runtime", Value: runtime, Err: err}
	}
	n.attrs.runtime = &rt
	return nil
}

// Implementation returns the declared implementation reference.
func (n *Node) Implementation() (string, bool) { return ptrValue(n.attrs.implementation) }

// Hidden reports whether the node is left out of help listings.
func (n *Node) Hidden() bool {
	h, _ := lookup(n, func(a *attributes) (bool, bool) { return ptrValue(a.hidden) })
	return h
}

// SetHidden sets the hidden flag.
func (n *Node) SetHidden(hidden bool) { n.attrs.hidden = &hidden }

// IsPrivate reports whether the node belongs to its parent's @private section.
func (n *Node) IsPrivate() bool {
	p, _ := lookup(n, func(a *attributes) (bool, bool) { return ptrValue(a.private) })
	return p
}

// SetPrivate sets the private flag.
func (n *Node) SetPrivate(private bool) { n.attrs.private = &private }

// AutoBoxing reports whether assignments rebuild the node. Value nodes
// default to true.
func (n *Node) AutoBoxing() bool {
	if b, ok := lookup(n, func(a *attributes) (bool, bool) { return ptrValue(a.autoBoxing) }); ok {
		return b
	}
	return n.behavior.IsValue()
}

// SetAutoBoxing sets the auto-boxing flag.
func (n *Node) SetAutoBoxing(v bool) { n.attrs.autoBoxing = &v }

// AutoUnboxing reports whether property reads return the natural value.
// Value nodes default to true.
func (n *Node) AutoUnboxing() bool {
	if b, ok := lookup(n, func(a *attributes) (bool, bool) { return ptrValue(a.autoUnboxing) }); ok {
		return b
	}
	return n.behavior.IsValue()
}

// SetAutoUnboxing sets the auto-unboxing flag.
func (n *Node) SetAutoUnboxing(v bool) { n.attrs.autoUnboxing = &v }

// ListenedEvents returns the inherited events a method reacts to.
func (n *Node) ListenedEvents() []string {
	events, _ := lookup(n, func(a *attributes) ([]string, bool) { return a.listen, a.hasListen })
	return events
}

// SetListen sets the events a method reacts to.
func (n *Node) SetListen(events ...string) error {
	for _, ev := range events {
		if ev == "" {
			return &ValidationError{Path: n.Path(), Attribute: "@listen", Value: ev, Err: fmt.Errorf("event name must not be empty")}
		}
	}
	n.attrs.listen = events
	n.attrs.hasListen = true
	return nil
}

// Run returns the inherited method body.
func (n *Node) Run() (string, bool) {
	return lookup(n, func(a *attributes) (string, bool) { return ptrValue(a.run) })
}

// SetRun sets the method body.
func (n *Node) SetRun(script string) { n.attrs.run = &script }

// Value returns the inherited primitive value of a value node.
func (n *Node) Value() any {
	v, _ := lookup(n, func(a *attributes) (any, bool) {
		if a.value == nil {
			return nil, false
		}
		return a.value.v, true
	})
	return v
}

// SetValue validates v against the node's primitive kind and stores it locally.
func (n *Node) SetValue(v any) error {
	kind := n.behavior.Kind()
	if kind == nil {
		return &StateError{Path: n.Path(), Op: "set value", Message: fmt.Sprintf("%q resources hold no value", n.behavior.Native().Name())}
	}
	normalized, err := kind.Normalize(definition.Normalize(v))
	if err != nil {
		return &ValidationError{Path: n.Path(), Attribute: "@value", Value: v, Err: err}
	}
	n.attrs.value = &valueSlot{v: normalized}
	return nil
}

// kindOf returns the primitive kind of a parameter node, defaulting to string.
func kindOf(n *Node) primitive.Kind {
	if k := n.behavior.Kind(); k != nil {
		return k
	}
	return primitive.String
}
