// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/resdir/run/internal/config"
	"github.com/resdir/run/internal/issue"
	"github.com/resdir/run/internal/runtime"
	"github.com/resdir/run/pkg/registry"
	"github.com/resdir/run/pkg/resource"
	"github.com/resdir/run/pkg/types"
)

type (
	// App wires CLI services. Every command handler receives it; nothing
	// reads process globals after NewApp.
	App struct {
		Config    config.PathProvider
		Executor  resource.Executor
		Registry  registry.Client
		Builders  *resource.BuilderRegistry
		Stdout    io.Writer
		Stderr    io.Writer
		Dir       string
		HomeDir   string
		LookupEnv func(string) (string, bool)
		Environ   func() []string
	}

	// Dependencies are the injection points of NewApp. Nil fields get
	// production defaults.
	Dependencies struct {
		Config config.PathProvider
		// Executor runs method bodies. Defaults to the virtual shell.
		Executor resource.Executor
		// Registry defaults to a Git client configured from the config file.
		Registry registry.Client
		Builders *resource.BuilderRegistry
		Stdout   io.Writer
		Stderr   io.Writer
		// Dir is the working directory. Defaults to os.Getwd.
		Dir     string
		HomeDir string
		// LookupEnv defaults to os.LookupEnv.
		LookupEnv func(string) (string, bool)
		// Environ is the environment method scripts start from. Defaults to os.Environ.
		Environ func() []string
	}

	// globalFlags are the flags accepted before the resource command.
	globalFlags struct {
		verbose    bool
		configPath string
		resource   string
	}

	// session is the per-invocation state built from configuration.
	session struct {
		cfg    *config.Config
		logger *log.Logger
		engine *resource.Engine
		dir    string
	}
)

// NewApp fills the defaults of deps.
func NewApp(deps Dependencies) (*App, error) {
	app := &App{
		Config:    deps.Config,
		Executor:  deps.Executor,
		Registry:  deps.Registry,
		Builders:  deps.Builders,
		Stdout:    deps.Stdout,
		Stderr:    deps.Stderr,
		Dir:       deps.Dir,
		HomeDir:   deps.HomeDir,
		LookupEnv: deps.LookupEnv,
		Environ:   deps.Environ,
	}
	if app.Config == nil {
		app.Config = config.NewProvider()
	}
	if app.Stdout == nil {
		app.Stdout = os.Stdout
	}
	if app.Stderr == nil {
		app.Stderr = os.Stderr
	}
	if app.LookupEnv == nil {
		app.LookupEnv = os.LookupEnv
	}
	if app.Environ == nil {
		app.Environ = os.Environ
	}
	if app.Executor == nil {
		app.Executor = &runtime.VirtualExecutor{Environ: app.Environ}
	}
	if app.Builders == nil {
		app.Builders = resource.NewBuilderRegistry()
	}
	if app.Dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		app.Dir = wd
	}
	if app.HomeDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		app.HomeDir = home
	}
	return app, nil
}

func (a *App) getenv(key string) string {
	value, _ := a.LookupEnv(key)
	return value
}

func (a *App) loadConfig(ctx context.Context, flags *globalFlags) (*config.Config, string, error) {
	return a.Config.LoadWithPath(ctx, config.LoadOptions{
		ConfigFilePath: types.FilesystemPath(flags.configPath),
		LookupEnv:      a.LookupEnv,
	})
}

// newLogger honors --verbose, then ui.verbose, then log_level.
func newLogger(w io.Writer, cfg *config.Config, verbose bool) *log.Logger {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	level, err := log.ParseLevel(cfg.LogLevel.String())
	if err != nil {
		level = log.WarnLevel
	}
	if verbose || cfg.UI.Verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		Prefix: config.AppName,
		Level:  level,
	})
}

// newSession loads configuration and builds the engine.
func (a *App) newSession(ctx context.Context, flags *globalFlags) (*session, error) {
	cfg, path, err := a.loadConfig(ctx, flags)
	if err != nil {
		return nil, err
	}

	logger := newLogger(a.Stderr, cfg, flags.verbose)
	if path != "" {
		logger.Debug("loaded configuration", "file", path)
	}

	reg := a.Registry
	if reg == nil {
		reg = registry.NewGitClient(cfg.ResourcesDir(a.HomeDir), registry.GitOptions{
			URLTemplate: cfg.Registry.URL,
			Getenv:      a.getenv,
			HomeDir:     a.HomeDir,
			Logger:      logger.WithPrefix("registry"),
		})
	}

	engine := resource.New(resource.Options{
		Registry:          reg,
		LocalResourcesDir: cfg.LocalResourcesDir(a.HomeDir),
		Builders:          a.Builders,
		Executor:          a.Executor,
		Reporter:          newTaskReporter(a.Stderr),
		Logger:            logger,
		Stdout:            a.Stdout,
		Stderr:            a.Stderr,
		RegistryResource:  cfg.Registry.Resource,
		WorkingDir:        a.Dir,
	})

	return &session{cfg: cfg, logger: logger, engine: engine, dir: a.Dir}, nil
}

// verbose reports whether full error chains should be printed.
func (s *session) verbose(flags *globalFlags) bool {
	return flags.verbose || (s != nil && s.cfg.UI.Verbose)
}

func (s *session) glamourStyle() string {
	if s == nil {
		return "dark"
	}
	switch s.cfg.UI.ColorScheme {
	case config.ColorSchemeLight:
		return "light"
	case config.ColorSchemeDark:
		return "dark"
	default:
		return "auto"
	}
}

// loadRoot loads the resource commands are dispatched to. Without a
// resource, built-in commands run against an empty one.
func (s *session) loadRoot(ctx context.Context, spec string, args resource.Arguments) (*resource.Node, error) {
	opts := resource.LoadOptions{Directory: s.dir, AllowMissing: true}
	if spec == "" {
		spec = "."
		opts.SearchParents = true
	}

	root, err := s.engine.Load(ctx, spec, opts)
	if err != nil {
		return nil, err
	}
	if root != nil {
		s.logger.Debug("loaded resource", "file", root.ResourceFile())
		return root, nil
	}

	if first := args.Positionals(); len(first) > 0 && resource.IsBuiltinCommand(first[0]) {
		return s.engine.Create(ctx, nil, s.dir)
	}
	return nil, issue.NewErrorContext().
		WithOperation("find resource").
		WithResource(s.dir).
		WithIssue(issue.ResourceNotFoundId).
		WithSuggestion("Run " + CmdStyle.Render("run @create --@type=resource") + " to create one here").
		Wrap(&resource.NotFoundError{Kind: "resource", Name: spec}).
		Build()
}
