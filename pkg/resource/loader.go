// SPDX-License-Identifier: MPL-2.0

package resource

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/resdir/run/pkg/definition"
	"github.com/resdir/run/pkg/registry"
	"github.com/resdir/run/pkg/resfile"
	"github.com/resdir/run/pkg/resid"
)

type loadMode int

const (
	modeLoad loadMode = iota
	modeImport
)

func (m loadMode) String() string {
	if m == modeImport {
		return "import"
	}
	return "load"
}

type (
	// LoadOptions configures Engine.Load.
	LoadOptions struct {
		// Directory resolves relative locations.
		Directory string
		// Importing returns the resource's @export instead of the resource.
		Importing bool
		// SearchParents looks for a resource file in the parent directories
		// of a location.
		SearchParents bool
		// AllowMissing makes Load return a nil node instead of a
		// NotFoundError.
		AllowMissing bool
	}

	// source is a resolved specifier.
	source struct {
		raw  string
		spec resid.Specifier
		// file is set for locations.
		file string
	}

	// fetched is a definition read from a local override or a registry.
	fetched struct {
		def     any
		file    string
		dir     string
		install bool
	}
)

// key identifies the source in the arena.
func (s source) key() string {
	if s.file != "" {
		return s.file
	}
	return s.spec.String()
}

// Load builds a root node from a specifier (a location or an identifier)
// or an in-memory definition. Loaded roots are never cached: each call
// returns a new, independently mutable node.
func (e *Engine) Load(ctx context.Context, spec any, opts LoadOptions) (*Node, error) {
	mode := modeLoad
	if opts.Importing {
		mode = modeImport
	}

	s, ok := spec.(string)
	if !ok {
		n, err := e.create(ctx, spec, createOptions{directory: opts.Directory})
		if err != nil {
			return nil, err
		}
		return exported(n, mode, "<definition>")
	}

	src, found, err := e.locate(s, opts.Directory, opts.SearchParents)
	if err != nil {
		return nil, &ResolutionError{Specifier: s, Directory: opts.Directory, Err: err}
	}
	if !found {
		if opts.AllowMissing {
			return nil, nil
		}
		return nil, &ResolutionError{Specifier: s, Directory: opts.Directory, Err: &NotFoundError{Kind: "resource", Name: s, Err: resfile.ErrNotFound}}
	}
	n, err := e.materialize(ctx, src, mode)
	if err != nil {
		return nil, &ResolutionError{Specifier: s, Directory: opts.Directory, Err: err}
	}
	return n, nil
}

// Import loads a specifier and returns its export.
func (e *Engine) Import(ctx context.Context, spec any, directory string) (*Node, error) {
	return e.Load(ctx, spec, LoadOptions{Directory: directory, Importing: true})
}

// resolveBase resolves a @type, @import or @load reference into a base
// node. Inline definitions are built in place and, when imported, must
// carry an @export; specifiers go through the arena.
func (e *Engine) resolveBase(ctx context.Context, raw any, dir string, mode loadMode) (*Node, error) {
	s, ok := raw.(string)
	if !ok {
		n, err := e.create(ctx, raw, createOptions{directory: dir})
		if err != nil {
			return nil, err
		}
		return exported(n, mode, "<definition>")
	}

	src, found, err := e.locate(s, dir, false)
	if err != nil {
		return nil, &ResolutionError{Specifier: s, Directory: dir, Err: err}
	}
	if !found {
		return nil, &ResolutionError{Specifier: s, Directory: dir, Err: &NotFoundError{Kind: "resource", Name: s, Err: resfile.ErrNotFound}}
	}

	key := mode.String() + " " + src.key()
	n, err := e.arena.get(ctx, key, func(ctx context.Context) (*Node, error) {
		return e.materialize(ctx, src, mode)
	})
	if err != nil {
		return nil, &ResolutionError{Specifier: s, Directory: dir, Err: err}
	}
	e.log.Debug("resolved base", "source", key)
	return n, nil
}

// locate parses a specifier. Locations are searched on disk; found is false
// when no resource file exists there. Identifiers are always "found" here:
// they are looked up when materialized.
func (e *Engine) locate(s, dir string, searchParents bool) (source, bool, error) {
	spec, err := resid.ParseSpecifier(s)
	if err != nil {
		return source{}, false, &ValidationError{Attribute: "specifier", Value: s, Err: err}
	}
	if !spec.IsLocation() {
		return source{raw: s, spec: spec}, true, nil
	}

	if !filepath.IsAbs(spec.Location) && dir == "" {
		return source{}, false, &StateError{Op: "resolve " + s, Message: "a relative location needs a current directory"}
	}
	file, err := resfile.Search(resolvePath(dir, spec.Location), resfile.SearchOptions{SearchParents: searchParents})
	if errors.Is(err, resfile.ErrNotFound) {
		return source{}, false, nil
	}
	if err != nil {
		return source{}, false, &IOError{Op: "search", Path: spec.Location, Err: err}
	}
	return source{raw: s, spec: spec, file: file}, true, nil
}

// materialize builds the node of a located source.
func (e *Engine) materialize(ctx context.Context, src source, mode loadMode) (*Node, error) {
	if src.file != "" {
		e.log.Debug("loading resource file", "file", src.file, "mode", mode)
		def, err := loadFile(src.file)
		if err != nil {
			return nil, err
		}
		n, err := e.create(ctx, def, createOptions{directory: filepath.Dir(src.file), file: src.file})
		if err != nil {
			return nil, err
		}
		return exported(n, mode, src.raw)
	}

	f, err := e.fetch(ctx, src.spec)
	if err != nil {
		return nil, err
	}
	n, err := e.create(ctx, f.def, createOptions{directory: f.dir, file: f.file})
	if err != nil {
		return nil, err
	}
	if f.install {
		if err := e.installOnce(ctx, n, f.dir, src.spec.Identifier.String()); err != nil {
			return nil, err
		}
	}
	return exported(n, mode, src.raw)
}

func exported(n *Node, mode loadMode, name string) (*Node, error) {
	if mode != modeImport {
		return n, nil
	}
	if n.export == nil {
		return nil, &DefinitionError{Key: "@export", Message: fmt.Sprintf("%s cannot be imported: it has no @export", name)}
	}
	return n.export, nil
}

func loadFile(file string) (any, error) {
	def, err := resfile.Load(file)
	if err != nil {
		var fe *resfile.FileError
		if errors.As(err, &fe) && fe.Op == "parse" {
			return nil, &DefinitionError{Message: "cannot parse " + file, Err: fe.Err}
		}
		return nil, &IOError{Op: "read", Path: file, Err: err}
	}
	return def, nil
}

// fetch reads an identifier from the local override directory or the
// registry.
func (e *Engine) fetch(ctx context.Context, spec resid.Specifier) (*fetched, error) {
	local, err := e.localOverride(spec)
	if err != nil {
		return nil, err
	}
	if local != nil {
		return local, nil
	}

	if e.opts.Registry == nil {
		return nil, &NotFoundError{Kind: "resource", Name: spec.String(), Err: errors.New("no registry is configured")}
	}
	e.log.Debug("fetching from registry", "specifier", spec.String())
	res, err := e.opts.Registry.Fetch(ctx, spec)
	if err != nil {
		if errors.Is(err, registry.ErrResourceNotFound) {
			return nil, &NotFoundError{Kind: "resource", Name: spec.String(), Err: err}
		}
		return nil, &IOError{Op: "fetch", Path: spec.String(), Err: err}
	}
	return &fetched{def: res.Definition, file: res.File, dir: res.Directory, install: true}, nil
}

// localOverride returns the development copy of an identifier, if one
// exists and its @version satisfies the requested range.
func (e *Engine) localOverride(spec resid.Specifier) (*fetched, error) {
	root := e.opts.LocalResourcesDir
	if root == "" || root == "0" {
		return nil, nil
	}
	dir := filepath.Join(root, string(spec.Identifier.Namespace), string(spec.Identifier.Name))
	file, err := resfile.Search(dir, resfile.SearchOptions{})
	if errors.Is(err, resfile.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, &IOError{Op: "search", Path: dir, Err: err}
	}
	def, err := loadFile(file)
	if err != nil {
		return nil, err
	}

	if !spec.Range.IsAny() {
		version := ""
		if d, ok := def.(*definition.Definition); ok {
			if v, ok := d.Get("@version"); ok {
				version, _ = v.(string)
			}
		}
		if !spec.Range.MatchesString(version) {
			e.log.Warn("local resource does not satisfy the requested range; using the registry",
				"resource", spec.Identifier.String(), "version", version, "range", spec.Range.String())
			return nil, nil
		}
	}
	e.log.Debug("using local resource", "resource", spec.Identifier.String(), "file", file)
	return &fetched{def: def, file: file, dir: dir}, nil
}
