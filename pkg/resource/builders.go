// SPDX-License-Identifier: MPL-2.0

package resource

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

type (
	// OperationFunc is a builder-provided operation. next is the operation of
	// the layer beneath (the overridden version).
	OperationFunc func(ctx context.Context, call *Call, next Operation) (any, error)

	// Builder modifies a behavior. Builders are compared by identity: a
	// builder reachable through several bases is applied once.
	Builder struct {
		Name         string
		Capabilities []string
		Operations   map[string]OperationFunc
	}

	// BuilderRegistry maps implementation references to builders.
	BuilderRegistry struct {
		mu       sync.RWMutex
		builders map[string]*Builder
	}
)

// NewBuilderRegistry returns a registry holding the given builders, keyed by name.
func NewBuilderRegistry(builders ...*Builder) *BuilderRegistry {
	r := &BuilderRegistry{builders: make(map[string]*Builder, len(builders))}
	for _, b := range builders {
		if err := r.Register(b.Name, b); err != nil {
			panic(err)
		}
	}
	return r
}

// Register adds a builder under an implementation reference.
func (r *BuilderRegistry) Register(ref string, b *Builder) error {
	if ref == "" {
		return fmt.Errorf("builder reference must not be empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.builders[ref]; exists {
		return fmt.Errorf("builder %q already registered", ref)
	}
	r.builders[ref] = b
	return nil
}

// Lookup returns the builder registered under ref.
func (r *BuilderRegistry) Lookup(ref string) (*Builder, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.builders[ref]
	return b, ok
}

// Names returns the registered references, sorted.
func (r *BuilderRegistry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.builders))
	for name := range r.builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// unionBuilders merges ordered builder lists, keeping the first occurrence
// of each builder.
func unionBuilders(lists ...[]*Builder) []*Builder {
	var out []*Builder
	seen := make(map[*Builder]bool)
	for _, list := range lists {
		for _, b := range list {
			if !seen[b] {
				seen[b] = true
				out = append(out, b)
			}
		}
	}
	return out
}
