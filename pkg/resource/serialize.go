// SPDX-License-Identifier: MPL-2.0

package resource

import (
	"strings"

	"github.com/resdir/run/pkg/definition"
)

// SerializeOptions configures Node.Serialize.
type SerializeOptions struct {
	// OmitPrivate leaves out the @private section.
	OmitPrivate bool
}

// Serialize renders what the node declares itself (not what it inherits)
// as a definition. It returns nil when there is nothing to write, and the
// bare value for a value node that declares nothing else.
func (n *Node) Serialize(opts SerializeOptions) any {
	def := definition.New()
	a := &n.attrs

	if a.id != nil {
		def.Set("@id", a.id.String())
	}
	if a.version != nil {
		def.Set("@version", a.version.String())
	}
	serializeTypes(def, a.types)
	if a.location != nil {
		def.Set("@load", definition.Normalize(a.location))
	}
	if a.directory != nil {
		def.Set("@directory", *a.directory)
	}
	if a.aliases != nil && a.aliases.Len() > 0 {
		def.Set("@aliases", oneOrMany(a.aliases.Values()))
	}
	if a.help != nil {
		def.Set("@help", *a.help)
	}
	if a.hasParameters {
		params := definition.New()
		for _, p := range a.parameters {
			out := p.Serialize(opts)
			if out == nil {
				out = definition.New()
			}
			params.Set(p.key, out)
		}
		def.Set("@parameters", params)
	}
	if a.position != nil {
		def.Set("@position", *a.position)
	}
	if a.runtime != nil {
		def.Set("@runtime", a.runtime.String())
	}
	if a.implementation != nil {
		def.Set("@implementation", *a.implementation)
	}
	if a.hidden != nil {
		def.Set("@hidden", *a.hidden)
	}
	if a.autoBoxing != nil {
		def.Set("@autoBoxing", *a.autoBoxing)
	}
	if a.autoUnboxing != nil {
		def.Set("@autoUnboxing", *a.autoUnboxing)
	}
	if a.hasListen && len(a.listen) > 0 {
		def.Set("@listen", oneOrMany(a.listen))
	}
	if a.run != nil {
		def.Set("@run", *a.run)
	}
	if a.value != nil {
		def.Set("@value", definition.Normalize(a.value.v))
	}

	private := definition.New()
	for _, c := range n.children {
		isPrivate := c.attrs.private != nil && *c.attrs.private
		if isPrivate && opts.OmitPrivate {
			continue
		}
		out := c.Serialize(opts)
		if out == nil {
			if c.inherited {
				continue
			}
			out = definition.New()
		}
		if isPrivate {
			private.Set(c.key, out)
		} else {
			def.Set(c.key, out)
		}
	}
	if private.Len() > 0 {
		def.Set("@private", private)
	}

	if n.export != nil {
		out := n.export.Serialize(opts)
		if out == nil {
			out = definition.New()
		}
		def.Set("@export", out)
	}

	switch {
	case def.Len() == 0:
		return nil
	case def.Len() == 1 && def.Has("@value"):
		v, _ := def.Get("@value")
		if !definition.IsMapping(v) {
			return v
		}
	}
	return def
}

// serializeTypes writes a single native-looking name as @type and anything
// else (mappings, locations, identifiers, several types) as @import.
func serializeTypes(def *definition.Definition, types []typeRef) {
	switch len(types) {
	case 0:
		return
	case 1:
		if s, ok := types[0].raw.(string); ok && !strings.ContainsAny(s, "./") {
			def.Set("@type", s)
			return
		}
		def.Set("@import", definition.Normalize(types[0].raw))
	default:
		list := make([]any, len(types))
		for i, t := range types {
			list[i] = definition.Normalize(t.raw)
		}
		def.Set("@import", list)
	}
}

func oneOrMany(values []string) any {
	if len(values) == 1 {
		return values[0]
	}
	list := make([]any, len(values))
	for i, v := range values {
		list[i] = v
	}
	return list
}
