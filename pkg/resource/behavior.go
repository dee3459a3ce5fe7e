// SPDX-License-Identifier: MPL-2.0

package resource

import (
	"context"
	"slices"
	"sort"
	"strings"

	"github.com/resdir/run/pkg/primitive"
)

// Capabilities carried by the native behaviors. Builders may declare more.
const (
	CapResource = "resource"
	CapValue    = "value"
	CapMethod   = "method"
	CapCall     = "@call"
)

type (
	// Operation is one entry of a behavior's dispatch table.
	Operation func(ctx context.Context, call *Call) (any, error)

	// Call carries the receiver and arguments of an operation.
	Call struct {
		// Node is the node the operation runs on.
		Node *Node
		// Receiver is the invocation context: the node the call came
		// through (the parent for methods).
		Receiver *Node
		// Command is the dispatched key ("@build", "@call", ...).
		Command string
		// Args are the remaining arguments.
		Args Arguments
	}

	// Behavior is a composed dispatch table. Each layer produced by a builder
	// keeps an explicit reference to the layer beneath it.
	Behavior struct {
		name    string
		caps    map[string]struct{}
		ops     map[string]Operation
		beneath *Behavior
		builder *Builder
		kind    primitive.Kind
	}
)

// Name returns the name of the behavior's top layer.
func (b *Behavior) Name() string { return b.name }

// Kind returns the primitive kind of value behaviors, or nil.
func (b *Behavior) Kind() primitive.Kind { return b.kind }

// Beneath returns the layer this one was built on, or nil for a native behavior.
func (b *Behavior) Beneath() *Behavior { return b.beneath }

// Native returns the bottom layer.
func (b *Behavior) Native() *Behavior {
	for b.beneath != nil {
		b = b.beneath
	}
	return b
}

// Has reports whether the behavior carries capability c.
func (b *Behavior) Has(c string) bool {
	_, ok := b.caps[c]
	return ok
}

// Capabilities returns the sorted capability set.
func (b *Behavior) Capabilities() []string {
	out := make([]string, 0, len(b.caps))
	for c := range b.caps {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Operation returns the operation registered under name.
func (b *Behavior) Operation(name string) (Operation, bool) {
	op, ok := b.ops[name]
	return op, ok
}

// Operations returns the sorted operation names.
func (b *Behavior) Operations() []string {
	out := make([]string, 0, len(b.ops))
	for name := range b.ops {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// IsValue reports whether the behavior holds a primitive value.
func (b *Behavior) IsValue() bool { return b.Has(CapValue) }

// IsMethod reports whether the behavior is callable.
func (b *Behavior) IsMethod() bool { return b.Has(CapCall) }

// contains reports whether every capability of other is also in b.
func (b *Behavior) contains(other *Behavior) bool {
	for c := range other.caps {
		if _, ok := b.caps[c]; !ok {
			return false
		}
	}
	return true
}

// Refine returns the more specific of two behaviors: the one whose
// capability set contains the other's. Incomparable behaviors conflict.
func Refine(a, b *Behavior) (*Behavior, error) {
	switch {
	case a == b || a.contains(b):
		return a, nil
	case b.contains(a):
		return b, nil
	default:
		return nil, &ConflictError{Left: a.name, Right: b.name}
	}
}

// Apply layers a builder on top of b. Operations the builder defines receive
// the operation of the layer beneath as next; missing ones fall back to a
// not-found operation.
func (b *Behavior) Apply(builder *Builder) *Behavior {
	layer := &Behavior{
		name:    builder.Name,
		caps:    make(map[string]struct{}, len(b.caps)+len(builder.Capabilities)),
		ops:     make(map[string]Operation, len(b.ops)+len(builder.Operations)),
		beneath: b,
		builder: builder,
		kind:    b.kind,
	}
	for c := range b.caps {
		layer.caps[c] = struct{}{}
	}
	for _, c := range builder.Capabilities {
		layer.caps[c] = struct{}{}
	}
	for name, op := range b.ops {
		layer.ops[name] = op
	}
	for name, fn := range builder.Operations {
		next, ok := b.ops[name]
		if !ok {
			next = missingOperation(name)
		}
		layer.ops[name] = func(ctx context.Context, call *Call) (any, error) {
			return fn(ctx, call, next)
		}
	}
	return layer
}

func missingOperation(name string) Operation {
	return func(_ context.Context, call *Call) (any, error) {
		return nil, &NotFoundError{Kind: "command", Name: name, Path: call.Node.Path()}
	}
}

// Native behavior names, usable in @type.
const (
	TypeResource = "resource"
	TypeMethod   = "method"
)

// The native behaviors are built in init because their dispatch tables
// reach back into the composition pipeline.
var (
	resourceBehavior *Behavior
	methodBehavior   *Behavior
	kindBehaviors    map[string]*Behavior
)

func init() {
	resourceBehavior = newNative(TypeResource, nil, nil, CapResource)
	methodBehavior = newNative(TypeMethod, nil, map[string]Operation{CapCall: callMethod}, CapResource, CapMethod, CapCall)
	kindBehaviors = make(map[string]*Behavior)
	for _, k := range primitive.All() {
		kindBehaviors[k.Name()] = newNative(k.Name(), k, nil, CapResource, CapValue, k.Name())
	}
}

func newNative(name string, kind primitive.Kind, extra map[string]Operation, caps ...string) *Behavior {
	b := &Behavior{
		name: name,
		caps: make(map[string]struct{}, len(caps)),
		ops:  builtinOperations(),
		kind: kind,
	}
	for _, c := range caps {
		b.caps[c] = struct{}{}
	}
	for name, op := range extra {
		b.ops[name] = op
	}
	return b
}

// NativeBehavior returns the native behavior registered under a type name.
func NativeBehavior(name string) (*Behavior, bool) {
	switch name {
	case TypeResource:
		return resourceBehavior, true
	case TypeMethod:
		return methodBehavior, true
	}
	b, ok := kindBehaviors[name]
	return b, ok
}

// NativeTypeNames lists the names accepted by NativeBehavior.
func NativeTypeNames() []string {
	names := []string{TypeResource, TypeMethod}
	for _, k := range primitive.All() {
		names = append(names, k.Name())
	}
	return names
}

// isNativeTypeName reports whether a type reference names a native
// behavior rather than a specifier to import.
func isNativeTypeName(s string) bool {
	if strings.ContainsAny(s, "./") {
		return false
	}
	return slices.Contains(NativeTypeNames(), s)
}
