// SPDX-License-Identifier: MPL-2.0

package resource

import (
	"context"
	"slices"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
)

// arena caches the base nodes of an engine. Bases are shared between every
// node that extends them, so each (mode, source) pair is built once.
type arena struct {
	mu    sync.RWMutex
	nodes map[string]*Node
	sf    singleflight.Group
}

func newArena() *arena {
	return &arena{nodes: make(map[string]*Node)}
}

// get returns the cached node for key or builds it. Concurrent calls for
// the same key share one build. A key already being resolved further up the
// same chain is an import cycle.
func (a *arena) get(ctx context.Context, key string, build func(ctx context.Context) (*Node, error)) (*Node, error) {
	// The stack check must run before sf.Do: a cycle would otherwise wait
	// on its own flight.
	ctx, err := pushResolveStack(ctx, key)
	if err != nil {
		return nil, err
	}

	if n, ok := a.cached(key); ok {
		return n, nil
	}

	v, err, _ := a.sf.Do(key, func() (any, error) {
		if n, ok := a.cached(key); ok {
			return n, nil
		}
		n, err := build(ctx)
		if err != nil {
			return nil, err
		}
		a.mu.Lock()
		a.nodes[key] = n
		a.mu.Unlock()
		return n, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Node), nil
}

func (a *arena) cached(key string) (*Node, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	n, ok := a.nodes[key]
	return n, ok
}

// Len returns the number of cached nodes.
func (a *arena) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.nodes)
}

type resolveStackContextKey struct{}

func pushResolveStack(ctx context.Context, key string) (context.Context, error) {
	stack, _ := ctx.Value(resolveStackContextKey{}).([]string)
	if i := slices.Index(stack, key); i >= 0 {
		cycle := append(slices.Clone(stack[i:]), key)
		for j := range cycle {
			cycle[j] = sourceOf(cycle[j])
		}
		return nil, &DefinitionError{Message: strings.Join(cycle, " -> "), Err: ErrImportCycle}
	}
	next := make([]string, 0, len(stack)+1)
	next = append(next, stack...)
	next = append(next, key)
	return context.WithValue(ctx, resolveStackContextKey{}, next), nil
}

// sourceOf strips the mode prefix of an arena key.
func sourceOf(key string) string {
	_, source, _ := strings.Cut(key, " ")
	return source
}
