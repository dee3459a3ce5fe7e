// SPDX-License-Identifier: MPL-2.0

package resource

import (
	"context"
	"slices"
	"strings"
)

type (
	// Node is a live resource. Nodes form a tree through their parent and
	// children; bases are a separate shared graph used for inherited lookups.
	//
	// Nodes are created by the Engine and are not safe for concurrent mutation.
	// Base nodes are shared between the nodes that extend them and are only
	// written during their own construction.
	Node struct {
		engine   *Engine
		key      string
		parent   *Node
		children []*Node

		bases    []*Node
		behavior *Behavior
		builders []*Builder

		resourceFile     string
		currentDirectory string

		attrs     attributes
		export    *Node
		listeners []listener

		// inherited marks children copied from a base without a definition
		// of their own.
		inherited bool
	}

	// InvokeOptions configures Node.Invoke.
	InvokeOptions struct {
		// Parent is the invocation context passed to the node. Defaults to
		// the node's tree parent.
		Parent *Node
	}
)

// Engine returns the engine that created the node.
func (n *Node) Engine() *Engine { return n.engine }

// Key returns the key under which the node is attached; empty for roots.
func (n *Node) Key() string { return n.key }

// Parent returns the owner of the node, or nil for a root.
func (n *Node) Parent() *Node { return n.parent }

// IsRoot reports whether the node has no parent.
func (n *Node) IsRoot() bool { return n.parent == nil }

// Root walks parents to the top of the tree.
func (n *Node) Root() *Node {
	for n.parent != nil {
		n = n.parent
	}
	return n
}

// Path returns the dotted key path from the root, used in error messages.
func (n *Node) Path() string {
	var keys []string
	for m := n; m != nil && m.parent != nil; m = m.parent {
		keys = append(keys, m.key)
	}
	slices.Reverse(keys)
	return strings.Join(keys, ".")
}

// Bases returns the direct bases in declaration order.
func (n *Node) Bases() []*Node { return slices.Clone(n.bases) }

// Behavior returns the composed behavior.
func (n *Node) Behavior() *Behavior { return n.behavior }

// Builders returns the builders applied to the node, in order.
func (n *Node) Builders() []*Builder { return slices.Clone(n.builders) }

// ResourceFile returns the file the node was loaded from, if any.
func (n *Node) ResourceFile() string { return n.resourceFile }

// CurrentDirectory is used to resolve relative locations.
func (n *Node) CurrentDirectory() string { return n.currentDirectory }

// Export returns the node published to importers, or nil.
func (n *Node) Export() *Node { return n.export }

// Children returns the children in order.
func (n *Node) Children() []*Node { return slices.Clone(n.children) }

// GetChild returns the child attached under key.
func (n *Node) GetChild(key string) *Node {
	for _, c := range n.children {
		if c.key == key {
			return c
		}
	}
	return nil
}

// FindChild returns the child whose key or one of whose aliases matches.
func (n *Node) FindChild(keyOrAlias string) *Node {
	if c := n.GetChild(keyOrAlias); c != nil {
		return c
	}
	for _, c := range n.children {
		if c.Aliases().Has(keyOrAlias) {
			return c
		}
	}
	return nil
}

// ForEachChild calls fn for each child in order until it returns false.
func (n *Node) ForEachChild(fn func(child *Node, index int) bool) {
	for i, c := range slices.Clone(n.children) {
		if !fn(c, i) {
			return
		}
	}
}

// ForEachChildAsync runs fn for each child sequentially, in order, on a
// snapshot of the children. It stops at the first error or when fn returns
// false.
func (n *Node) ForEachChildAsync(ctx context.Context, fn func(ctx context.Context, child *Node, index int) (bool, error)) error {
	for i, c := range slices.Clone(n.children) {
		if err := ctx.Err(); err != nil {
			return err
		}
		cont, err := fn(ctx, c, i)
		if err != nil {
			return err
		}
		if !cont {
			return nil
		}
	}
	return nil
}

// RemoveChild detaches the child under key and returns its former index.
// Listeners the child registered on this node are dropped.
func (n *Node) RemoveChild(key string) (int, bool) {
	for i, c := range n.children {
		if c.key == key {
			n.children = slices.Delete(n.children, i, i+1)
			n.removeListeners(key)
			c.parent = nil
			return i, true
		}
	}
	return -1, false
}

// SetChild builds a child from a definition and attaches it under key,
// replacing any existing child at the same index. The same-key child of the
// first direct base that has one becomes the new child's base.
func (n *Node) SetChild(ctx context.Context, key string, def any) (*Node, error) {
	return n.setChild(ctx, key, def, childOptions{})
}

type childOptions struct {
	private   bool
	inherited bool
	types     []typeRef
}

func (n *Node) setChild(ctx context.Context, key string, def any, opts childOptions) (*Node, error) {
	var base *Node
	for _, b := range n.bases {
		if c := b.GetChild(key); c != nil {
			base = c
			break
		}
	}

	child, err := n.engine.create(ctx, def, createOptions{
		key:       key,
		parent:    n,
		base:      base,
		directory: n.currentDirectory,
		file:      n.resourceFile,
		private:   opts.private,
		types:     opts.types,
	})
	if err != nil {
		return nil, err
	}
	child.inherited = opts.inherited

	index, _ := n.RemoveChild(key)
	n.insertChild(index, child)
	n.registerMethodListeners(child)
	return child, nil
}

func (n *Node) insertChild(index int, child *Node) {
	child.parent = n
	if index < 0 || index > len(n.children) {
		n.children = append(n.children, child)
		return
	}
	n.children = slices.Insert(n.children, index, child)
}

// Extend builds a new root node that has n as its explicit base.
func (n *Node) Extend(ctx context.Context, def any) (*Node, error) {
	return n.engine.create(ctx, def, createOptions{
		base:      n,
		directory: n.currentDirectory,
	})
}

// forSelfAndEachBase visits n and then its bases depth-first, pre-order,
// each node once, until fn returns false.
func (n *Node) forSelfAndEachBase(fn func(*Node) bool) {
	seen := make(map[*Node]bool)
	var walk func(*Node) bool
	walk = func(m *Node) bool {
		if seen[m] {
			return true
		}
		seen[m] = true
		if !fn(m) {
			return false
		}
		for _, b := range m.bases {
			if !walk(b) {
				return false
			}
		}
		return true
	}
	walk(n)
}

// IsA reports whether other is n or one of its bases, transitively.
func (n *Node) IsA(other *Node) bool {
	found := false
	n.forSelfAndEachBase(func(m *Node) bool {
		found = m == other
		return !found
	})
	return found
}
