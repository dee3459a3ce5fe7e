// SPDX-License-Identifier: MPL-2.0

package resource

import (
	"context"
	"fmt"

	"github.com/resdir/run/pkg/definition"
)

// Value is either a raw primitive value or a node.
type Value struct {
	raw  any
	node *Node
}

// RawValue wraps a primitive value.
func RawValue(v any) Value { return Value{raw: v} }

// NodeValue wraps a node.
func NodeValue(n *Node) Value { return Value{node: n} }

// Node returns the node, if the value is one.
func (v Value) Node() (*Node, bool) { return v.node, v.node != nil }

// Raw returns the primitive value; nil for nodes.
func (v Value) Raw() any { return v.raw }

// IsNode reports whether the value wraps a node.
func (v Value) IsNode() bool { return v.node != nil }

// Interface returns the node or the raw value as an any.
func (v Value) Interface() any {
	if v.node != nil {
		return v.node
	}
	return v.raw
}

// Unbox returns the natural value of the node when auto-unboxing is on,
// and the node itself otherwise.
func (n *Node) Unbox() (Value, error) {
	if !n.AutoUnboxing() {
		return NodeValue(n), nil
	}
	if !n.behavior.IsValue() {
		return Value{}, &StateError{Path: n.Path(), Op: "unbox", Message: fmt.Sprintf("a %q resource has no natural value", n.behavior.Native().Name())}
	}
	return RawValue(n.Value()), nil
}

// Box stores a raw value directly in a value node.
func (n *Node) Box(raw any) error {
	if !n.behavior.IsValue() {
		return &StateError{Path: n.Path(), Op: "box", Message: fmt.Sprintf("a %q resource cannot hold a value", n.behavior.Native().Name())}
	}
	return n.SetValue(raw)
}

// Get reads a child as a property.
func (n *Node) Get(key string) (Value, error) {
	child := n.FindChild(key)
	if child == nil {
		return Value{}, &NotFoundError{Kind: "property", Name: key, Path: n.Path()}
	}
	return child.Unbox()
}

// Set assigns a property synchronously. Children with auto-boxing must be
// rebuilt, which may load resources, so Set refuses them: use Assign.
func (n *Node) Set(key string, raw any) error {
	child := n.FindChild(key)
	if child == nil {
		return &NotFoundError{Kind: "property", Name: key, Path: n.Path()}
	}
	if child.AutoBoxing() {
		return &StateError{Path: child.Path(), Op: "set", Message: "the property is auto-boxed and must be assigned asynchronously (use Assign)"}
	}
	return child.Box(raw)
}

// Assign assigns a property. Auto-boxed (or missing) children are rebuilt
// through the full pipeline, keeping the declared types of the previous
// child; other children store the value directly.
func (n *Node) Assign(ctx context.Context, key string, raw any) error {
	child := n.FindChild(key)
	if child != nil {
		key = child.Key()
	}
	if child != nil && !child.AutoBoxing() {
		return child.Box(raw)
	}

	def := raw
	var types []typeRef
	if child != nil {
		types = child.attrs.types
		if !definition.IsMapping(definition.Normalize(raw)) {
			def = definition.Of("@value", raw)
		}
	}
	_, err := n.setChild(ctx, key, def, childOptions{types: types, private: child != nil && child.IsPrivate()})
	return err
}
