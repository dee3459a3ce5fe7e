// SPDX-License-Identifier: MPL-2.0

package resource

import (
	"context"
	"io"

	"github.com/charmbracelet/log"

	"github.com/resdir/run/pkg/registry"
)

// DefaultRegistryResource is the resource @registry forwards to.
const DefaultRegistryResource = "resdir/registry"

type (
	// Options configures an Engine. Every field is optional.
	Options struct {
		// Registry fetches identifiers that have no local override.
		Registry registry.Client
		// LocalResourcesDir holds development copies laid out as
		// <dir>/<namespace>/<name>. Empty disables local overrides.
		LocalResourcesDir string
		// Builders resolves @implementation references.
		Builders *BuilderRegistry
		// Executor runs method bodies (@run).
		Executor Executor
		// Reporter receives install progress.
		Reporter Reporter
		// Logger defaults to a logger that discards everything.
		Logger *log.Logger
		// Stdout receives @print and @console output. Defaults to io.Discard.
		Stdout io.Writer
		// Stderr is handed to executed methods. Defaults to io.Discard.
		Stderr io.Writer
		// RegistryResource is the specifier @registry imports.
		RegistryResource string
		// WorkingDir is used by @create when a node has no directory.
		WorkingDir string
	}

	// Executor runs a method body.
	Executor interface {
		Execute(ctx context.Context, req ExecRequest) error
	}

	// ExecRequest describes one method execution.
	ExecRequest struct {
		// Name is the dotted path of the method, for diagnostics.
		Name   string
		Script string
		Dir    string
		// Args are the positional arguments ($1, $2, ...).
		Args []string
		// Env holds the bound parameters.
		Env    map[string]string
		Stdin  io.Reader
		Stdout io.Writer
		Stderr io.Writer
	}

	// ExecutorFunc adapts a function to Executor.
	ExecutorFunc func(ctx context.Context, req ExecRequest) error

	// Reporter is told about long running steps.
	Reporter interface {
		Intro(message string)
		Outro(message string, err error)
	}

	// Engine composes, loads and caches resources.
	Engine struct {
		opts  Options
		log   *log.Logger
		arena *arena
	}
)

// Execute calls f.
func (f ExecutorFunc) Execute(ctx context.Context, req ExecRequest) error { return f(ctx, req) }

type nopReporter struct{}

func (nopReporter) Intro(string)        {}
func (nopReporter) Outro(string, error) {}

// New returns an engine.
func New(opts Options) *Engine {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Stdout == nil {
		opts.Stdout = io.Discard
	}
	if opts.Stderr == nil {
		opts.Stderr = io.Discard
	}
	if opts.Reporter == nil {
		opts.Reporter = nopReporter{}
	}
	if opts.Builders == nil {
		opts.Builders = NewBuilderRegistry()
	}
	if opts.RegistryResource == "" {
		opts.RegistryResource = DefaultRegistryResource
	}
	return &Engine{
		opts:  opts,
		log:   opts.Logger,
		arena: newArena(),
	}
}

// Logger returns the engine logger.
func (e *Engine) Logger() *log.Logger { return e.log }

// Stdout returns the output writer for printed values.
func (e *Engine) Stdout() io.Writer { return e.opts.Stdout }

// Builders returns the builder registry.
func (e *Engine) Builders() *BuilderRegistry { return e.opts.Builders }

// Create composes a root node from an in-memory definition. Relative
// locations inside it resolve against directory.
func (e *Engine) Create(ctx context.Context, def any, directory string) (*Node, error) {
	return e.create(ctx, def, createOptions{directory: directory})
}
