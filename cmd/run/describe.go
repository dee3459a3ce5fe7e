// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/resdir/run/pkg/resource"
)

func newDescribeCommand(app *App, flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "describe [path]",
		Short: "Show the children, parameters and commands of a resource",
		Long: `Show the help of the current resource, or of the child at a dotted path.

Hidden and private children are not listed.`,
		Example: `  run describe
  run describe build
  run describe tools.lint`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.newSession(cmd.Context(), flags)
			if err != nil {
				return app.fail(nil, flags, err, "load configuration", "")
			}

			root, err := s.loadRoot(cmd.Context(), flags.resource, resource.Arguments{})
			if err != nil {
				return app.fail(s, flags, err, "load resource", flags.resource)
			}

			target := root
			if len(args) == 1 {
				target, err = findPath(root, args[0])
				if err != nil {
					return app.fail(s, flags, err, "describe", args[0])
				}
			}
			return app.describe(s, target.Describe())
		},
	}
}

// findPath follows a dotted key path, accepting aliases at every step.
func findPath(root *resource.Node, path string) (*resource.Node, error) {
	n := root
	for key := range strings.SplitSeq(path, ".") {
		child := n.FindChild(key)
		if child == nil {
			return nil, &resource.NotFoundError{Kind: "command", Name: key, Path: n.Path()}
		}
		n = child
	}
	return n, nil
}

// describe renders d as markdown on stdout.
func (a *App) describe(s *session, d resource.Description) error {
	out, err := glamour.Render(d.Markdown(), s.glamourStyle())
	if err != nil {
		fmt.Fprintln(a.Stderr, WarningStyle.Render("Warning:"), "could not render help:", err)
		out = d.Markdown()
	}
	_, err = fmt.Fprint(a.Stdout, out)
	return err
}
