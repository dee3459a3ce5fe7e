// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/resdir/run/pkg/resource"
	"github.com/resdir/run/pkg/types"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// NewRootCommand builds the command tree of app.
func NewRootCommand(app *App) *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "run [flags] [command] [arguments]",
		Short: "Run commands declared by resources",
		Long: TitleStyle.Render("run") + SubtitleStyle.Render(" - compose resources and run their commands") + `

A resource is a directory with an @resource.json5 (or .json, .yaml, .yml)
file. Resources import other resources, declare parameters and expose
commands. Arguments are dispatched to the resource found in the current
directory or one of its parents.

` + SubtitleStyle.Render("Examples:") + `
  run                          Describe the current resource
  run build --production       Invoke the 'build' command
  run tools.lint               Invoke a nested command
  run @install                 Run the install lifecycle
  run @create --@type=resource Create a resource here
  run describe build           Show help for 'build'
  run config show              Show the effective configuration`,
		Args:               cobra.ArbitraryArgs,
		DisableFlagParsing: true,
		SilenceErrors:      true,
		SilenceUsage:       true,
		RunE: func(cmd *cobra.Command, args []string) error {
			globals, rest := splitGlobalArgs(cmd.Flags(), args)
			if err := cmd.Flags().Parse(globals); err != nil {
				return err
			}
			if help, _ := cmd.Flags().GetBool("help"); help {
				return cmd.Help()
			}
			if version, _ := cmd.Flags().GetBool("version"); version && cmd.Version != "" {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), cmd.Version)
				return err
			}
			return runResource(cmd.Context(), app, flags, rest)
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default is $XDG_CONFIG_HOME/run/config.cue)")
	rootCmd.PersistentFlags().StringVarP(&flags.resource, "resource", "r", "", "resource to use instead of the one in the current directory")

	rootCmd.AddCommand(newDescribeCommand(app, flags))
	rootCmd.AddCommand(newConfigCommand(app, flags))

	rootCmd.SetOut(app.Stdout)
	rootCmd.SetErr(app.Stderr)
	return rootCmd
}

// splitGlobalArgs separates the leading run flags from the resource
// command line. Parsing stops at the first argument that is not a known
// flag; "--" is consumed and ends the global flags.
func splitGlobalArgs(fs *pflag.FlagSet, args []string) (globals, rest []string) {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			return globals, args[i+1:]
		}
		flag := lookupFlag(fs, arg)
		if flag == nil {
			return globals, args[i:]
		}
		globals = append(globals, arg)
		if flag.NoOptDefVal == "" && !strings.Contains(arg, "=") && i+1 < len(args) {
			i++
			globals = append(globals, args[i])
		}
	}
	return globals, nil
}

func lookupFlag(fs *pflag.FlagSet, arg string) *pflag.Flag {
	switch {
	case strings.HasPrefix(arg, "--") && len(arg) > 2:
		name, _, _ := strings.Cut(arg[2:], "=")
		return fs.Lookup(name)
	case strings.HasPrefix(arg, "-") && len(arg) == 2:
		return fs.ShorthandLookup(arg[1:])
	default:
		return nil
	}
}

// runResource dispatches argv to the current resource and prints the
// help of whatever node the arguments end on.
func runResource(ctx context.Context, app *App, flags *globalFlags, argv []string) error {
	s, err := app.newSession(ctx, flags)
	if err != nil {
		return app.fail(nil, flags, err, "load configuration", "")
	}

	args := resource.ParseArguments(argv)
	target := strings.Join(argv, " ")

	root, err := s.loadRoot(ctx, flags.resource, args)
	if err != nil {
		return app.fail(s, flags, err, "load resource", flags.resource)
	}

	if args.IsEmpty() {
		return app.describe(s, root.Describe())
	}

	result, err := root.Invoke(ctx, args, resource.InvokeOptions{})
	if err != nil {
		return app.fail(s, flags, err, "run command", target)
	}
	if node, ok := result.(*resource.Node); ok {
		return app.describe(s, node.Describe())
	}
	return nil
}

// fail renders err and returns the ExitError Execute turns into the exit code.
func (a *App) fail(s *session, flags *globalFlags, err error, operation, target string) error {
	ae, code := classifyError(err, operation, target)
	logger := newLogger(io.Discard, nil, false)
	if s != nil {
		logger = s.logger
	}
	renderError(a.Stderr, ae, s.verbose(flags), s.glamourStyle(), logger)
	return &ExitError{Code: code, Err: err, Rendered: true}
}

// Run executes the command tree with args. It is the in-process entry
// point used by Execute and by tests.
func (a *App) Run(ctx context.Context, args []string) error {
	rootCmd := NewRootCommand(a)
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

// Execute runs the CLI with the process arguments and exits.
func Execute() {
	app, err := NewApp(Dependencies{})
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error:"), err)
		os.Exit(int(types.ExitFailure))
	}

	if err := fang.Execute(
		context.Background(),
		NewRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(func(w io.Writer, _ fang.Styles, err error) {
			var exitErr *ExitError
			if errors.As(err, &exitErr) && exitErr.Rendered {
				return
			}
			fmt.Fprintln(w, ErrorStyle.Render("Error:"), formatErrorForDisplay(err, false))
		}),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(int(exitErr.Code))
		}
		os.Exit(int(types.ExitFailure))
	}
}
