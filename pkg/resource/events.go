// SPDX-License-Identifier: MPL-2.0

package resource

import (
	"context"
	"slices"
)

type (
	// Event is delivered to listeners.
	Event struct {
		Name string
		// Target is the node the event was emitted on.
		Target *Node
		Args   Arguments
	}

	// Handler reacts to an event.
	Handler func(ctx context.Context, ev Event) error

	listener struct {
		event string
		// key is the child key of a method listener; empty for anonymous
		// listeners added through Listen.
		key     string
		handler Handler
	}
)

// Listen registers an anonymous handler for event on n.
func (n *Node) Listen(event string, handler Handler) {
	n.addListener(event, "", handler)
}

func (n *Node) addListener(event, key string, handler Handler) {
	n.listeners = append(n.listeners, listener{event: event, key: key, handler: handler})
}

func (n *Node) removeListeners(key string) {
	n.listeners = slices.DeleteFunc(n.listeners, func(l listener) bool {
		return l.key != "" && l.key == key
	})
}

// registerMethodListeners makes a method child listen on n for the events
// it declares in @listen. The method runs with the emitting node as receiver.
func (n *Node) registerMethodListeners(child *Node) {
	if !child.behavior.IsMethod() {
		return
	}
	for _, event := range child.ListenedEvents() {
		n.addListener(event, child.key, func(ctx context.Context, ev Event) error {
			_, err := child.Invoke(ctx, ev.Args, InvokeOptions{Parent: ev.Target})
			return err
		})
	}
}

// Listeners returns the number of handlers registered on n itself for event.
func (n *Node) Listeners(event string) int {
	count := 0
	for _, l := range n.listeners {
		if l.event == event {
			count++
		}
	}
	return count
}

// Emit runs the handlers for event registered on n and its bases. Handlers
// of the most ancestral base run first and n's own run last. A keyed
// listener closer to n shadows a base listener with the same key. The
// first failing handler aborts the emission.
func (n *Node) Emit(ctx context.Context, event string, args Arguments) error {
	var layers [][]listener
	shadowed := make(map[string]bool)
	n.forSelfAndEachBase(func(m *Node) bool {
		var layer []listener
		for _, l := range m.listeners {
			if l.event != event || (l.key != "" && shadowed[l.key]) {
				continue
			}
			layer = append(layer, l)
		}
		for _, l := range layer {
			if l.key != "" {
				shadowed[l.key] = true
			}
		}
		layers = append(layers, layer)
		return true
	})

	ev := Event{Name: event, Target: n, Args: args}
	for _, layer := range slices.Backward(layers) {
		for _, l := range layer {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := l.handler(ctx, ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// Broadcast emits event on n, then on each child recursively, parents
// before their children.
func (n *Node) Broadcast(ctx context.Context, event string, args Arguments) error {
	if err := n.Emit(ctx, event, args); err != nil {
		return err
	}
	return n.ForEachChildAsync(ctx, func(ctx context.Context, child *Node, _ int) (bool, error) {
		return true, child.Broadcast(ctx, event, args)
	})
}
