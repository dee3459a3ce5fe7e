// SPDX-License-Identifier: MPL-2.0

package resource

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/resdir/run/pkg/definition"
	"github.com/resdir/run/pkg/primitive"
)

type createOptions struct {
	key       string
	parent    *Node
	base      *Node
	directory string
	file      string
	private   bool
	// types are used when the definition declares none (reassignment keeps
	// the previous child's types).
	types []typeRef
}

// normalizeDefinition turns any definition value into a mapping. Scalars
// and lists become {"@value": v}.
func normalizeDefinition(raw any) *definition.Definition {
	switch v := definition.Normalize(raw).(type) {
	case nil:
		return definition.New()
	case *definition.Definition:
		return v
	default:
		return definition.Of("@value", v)
	}
}

func childPath(parent *Node, key string) string {
	if parent == nil {
		return ""
	}
	if p := parent.Path(); p != "" {
		return p + "." + key
	}
	return key
}

// create runs the composition pipeline: resolve types, @load and
// @implementation into bases and builders, refine the native behaviors,
// apply builders, then construct attributes and children.
func (e *Engine) create(ctx context.Context, raw any, opts createOptions) (*Node, error) {
	def := normalizeDefinition(raw)
	path := childPath(opts.parent, opts.key)

	if err := validateShape(def, path, opts.file); err != nil {
		return nil, err
	}

	n := &Node{
		engine:           e,
		key:              opts.key,
		parent:           opts.parent,
		resourceFile:     opts.file,
		currentDirectory: opts.directory,
	}

	if v, ok := def.Get("@directory"); ok {
		dir := v.(string)
		n.attrs.directory = &dir
		n.currentDirectory = resolvePath(opts.directory, dir)
	}

	types := parseTypes(def)
	if len(types) == 0 {
		types = opts.types
	}
	n.attrs.types = types

	var bases []*Node
	if opts.base != nil {
		bases = append(bases, opts.base)
	}
	var natives []*Behavior
	for _, t := range types {
		if name, ok := t.nativeName(); ok {
			b, _ := NativeBehavior(name)
			natives = append(natives, b)
			continue
		}
		base, err := e.resolveBase(ctx, t.raw, n.currentDirectory, modeImport)
		if err != nil {
			return nil, err
		}
		bases = append(bases, base)
	}

	location, hasLoad := def.Get("@load")
	implementation, hasImpl := def.Get("@implementation")
	if hasLoad && hasImpl {
		return nil, &DefinitionError{Path: path, Key: "@implementation", Message: "cannot be combined with @load"}
	}
	if hasLoad {
		n.attrs.location = location
		base, err := e.resolveBase(ctx, location, n.currentDirectory, modeLoad)
		if err != nil {
			return nil, err
		}
		bases = append(bases, base)
	}

	for _, b := range bases {
		natives = append(natives, b.behavior.Native())
	}
	if len(natives) == 0 {
		if v, ok := def.Get("@value"); ok && v != nil {
			kind, err := primitive.Infer(v)
			if err != nil {
				return nil, &DefinitionError{Path: path, Key: "@value", Message: "cannot infer a type", Err: err}
			}
			natives = append(natives, kindBehaviors[kind.Name()])
		}
	}

	native := resourceBehavior
	for _, candidate := range natives {
		refined, err := Refine(native, candidate)
		if err != nil {
			if ce, ok := err.(*ConflictError); ok {
				ce.Path = path
			}
			return nil, err
		}
		native = refined
	}

	builderLists := make([][]*Builder, 0, len(bases)+1)
	for _, b := range bases {
		builderLists = append(builderLists, b.builders)
	}
	if hasImpl {
		ref := implementation.(string)
		n.attrs.implementation = &ref
		builder, ok := e.opts.Builders.Lookup(ref)
		if !ok && n.currentDirectory != "" {
			builder, ok = e.opts.Builders.Lookup(resolvePath(n.currentDirectory, ref))
		}
		if !ok {
			return nil, &NotFoundError{Kind: "builder", Name: ref, Path: path}
		}
		builderLists = append(builderLists, []*Builder{builder})
	}
	n.builders = unionBuilders(builderLists...)

	behavior := native
	for _, b := range n.builders {
		behavior = behavior.Apply(b)
	}
	n.bases = bases
	n.behavior = behavior

	if opts.private {
		n.SetPrivate(true)
	}

	if err := n.construct(ctx, def); err != nil {
		return nil, err
	}
	return n, nil
}

func parseTypes(def *definition.Definition) []typeRef {
	var types []typeRef
	for _, key := range []string{"@type", "@import"} {
		v, ok := def.Get(key)
		if !ok {
			continue
		}
		if list, isList := v.([]any); isList {
			for _, item := range list {
				types = append(types, typeRef{raw: item})
			}
			continue
		}
		types = append(types, typeRef{raw: v})
	}
	return types
}

func resolvePath(dir, p string) string {
	if filepath.IsAbs(p) || dir == "" {
		return filepath.Clean(p)
	}
	return filepath.Join(dir, p)
}

// construct sets the declared attributes in a fixed order, inherits the
// children of the bases, then builds the children of the definition in
// order. The export is built last.
func (n *Node) construct(ctx context.Context, def *definition.Definition) error {
	path := n.Path()

	if v, ok := def.Get("@id"); ok {
		if err := n.SetID(v.(string)); err != nil {
			return err
		}
	}
	if v, ok := def.Get("@version"); ok {
		if err := n.SetVersion(v.(string)); err != nil {
			return err
		}
	}
	if v, ok := def.Get("@aliases"); ok {
		if err := n.SetAliases(stringList(v)...); err != nil {
			return err
		}
	}
	if v, ok := def.Get("@help"); ok {
		n.SetHelp(v.(string))
	}
	if v, ok := def.Get("@parameters"); ok {
		if err := n.setParameters(ctx, v.(*definition.Definition)); err != nil {
			return err
		}
	}
	if v, ok := def.Get("@position"); ok {
		if err := n.setPositionValue(v); err != nil {
			return err
		}
	}
	if v, ok := def.Get("@runtime"); ok {
		if err := n.SetRuntime(v.(string)); err != nil {
			return err
		}
	}
	if v, ok := def.Get("@hidden"); ok {
		n.SetHidden(v.(bool))
	}
	if v, ok := def.Get("@autoBoxing"); ok {
		n.SetAutoBoxing(v.(bool))
	}
	if v, ok := def.Get("@autoUnboxing"); ok {
		n.SetAutoUnboxing(v.(bool))
	}
	if v, ok := def.Get("@listen"); ok {
		if err := n.SetListen(stringList(v)...); err != nil {
			return err
		}
	}
	if v, ok := def.Get("@run"); ok {
		n.SetRun(v.(string))
	}
	if v, ok := def.Get("@value"); ok && v != nil {
		if !n.behavior.IsValue() {
			return &DefinitionError{Path: path, Key: "@value", Message: fmt.Sprintf("a %q resource cannot hold a value", n.behavior.Native().Name())}
		}
		if err := n.SetValue(v); err != nil {
			return err
		}
	}

	for _, b := range n.bases {
		for _, c := range b.children {
			if n.GetChild(c.key) != nil {
				continue
			}
			if _, err := n.setChild(ctx, c.key, nil, childOptions{inherited: true}); err != nil {
				return err
			}
		}
	}

	for key, v := range def.All {
		switch {
		case key == "@private":
			private, ok := v.(*definition.Definition)
			if !ok {
				return &DefinitionError{Path: path, Key: key, Message: "must be a mapping"}
			}
			for pkey, pv := range private.All {
				if isCommandLike(pkey) {
					return &DefinitionError{Path: path, Key: pkey, Message: "keys of @private must not start with '@'"}
				}
				if _, err := n.setChild(ctx, pkey, pv, childOptions{private: true}); err != nil {
					return err
				}
			}
		case reservedKeys[key]:
		case isCommandLike(key) && !IsBuiltinCommand(key):
			n.engine.log.Debug("ignoring unknown key", "path", path, "key", key)
		default:
			if _, err := n.setChild(ctx, key, v, childOptions{}); err != nil {
				return err
			}
		}
	}

	if v, ok := def.Get("@export"); ok {
		export, err := n.engine.create(ctx, v, createOptions{
			directory: n.currentDirectory,
			file:      n.resourceFile,
		})
		if err != nil {
			return err
		}
		n.export = export
	}
	return nil
}

func (n *Node) setParameters(ctx context.Context, params *definition.Definition) error {
	n.attrs.parameters = nil
	n.attrs.hasParameters = true
	for key, v := range params.All {
		param, err := n.engine.create(ctx, v, createOptions{
			key:       key,
			parent:    n,
			directory: n.currentDirectory,
			file:      n.resourceFile,
		})
		if err != nil {
			return err
		}
		n.attrs.parameters = append(n.attrs.parameters, param)
	}
	return nil
}

func stringList(v any) []string {
	switch t := v.(type) {
	case string:
		return []string{t}
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
