// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/resdir/run/internal/issue"
	"github.com/resdir/run/internal/runtime"
	"github.com/resdir/run/pkg/registry"
	"github.com/resdir/run/pkg/resource"
	"github.com/resdir/run/pkg/types"
)

// classifyError maps an engine failure to a user-facing error and the exit
// code the process ends with. Errors that already are actionable keep
// their context.
func classifyError(err error, operation, target string) (*issue.ActionableError, types.ExitCode) {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae, types.ExitFailure
	}

	ec := issue.NewErrorContext().WithOperation(operation).WithResource(target).Wrap(err)
	code := types.ExitFailure

	var (
		exitErr *runtime.ExitError
		nf      *resource.NotFoundError
		res     *resource.ResolutionError
		state   *resource.StateError
	)
	switch {
	case errors.As(err, &exitErr):
		ec.WithIssue(issue.MethodFailedId)
		code = exitErr.Code
	case errors.Is(err, registry.ErrResourceNotFound):
		ec.WithIssue(issue.RegistryFetchFailedId).
			WithSuggestion("Check the identifier and the version range")
	case errors.As(err, &nf) && nf.Kind == "command":
		ec.WithIssue(issue.CommandNotFoundId).
			WithSuggestion(fmt.Sprintf("Run %s to list what %s offers", CmdStyle.Render("run describe"), displayPath(nf.Path)))
		code = types.ExitUsage
	case errors.As(err, &nf) && nf.Kind == "parameter":
		ec.WithIssue(issue.InvalidValueId).
			WithSuggestion("Run " + CmdStyle.Render("run describe "+nf.Path) + " to list the parameters")
		code = types.ExitUsage
	case errors.As(err, &nf) && errors.As(err, &res):
		ec.WithIssue(issue.ResourceNotFoundId).WithResource(res.Specifier)
	case errors.Is(err, resource.ErrImportCycle):
		ec.WithIssue(issue.ImportCycleId)
	case errors.As(err, &state) && state.Op == "create":
		ec.WithIssue(issue.ResourceExistsId)
	case errors.Is(err, resource.ErrDefinition):
		ec.WithIssue(issue.InvalidDefinitionId)
	case errors.Is(err, resource.ErrValidation):
		ec.WithIssue(issue.InvalidValueId)
		code = types.ExitUsage
	case errors.Is(err, resource.ErrConflict):
		ec.WithIssue(issue.TypeConflictId)
	case errors.Is(err, os.ErrPermission):
		ec.WithIssue(issue.PermissionDeniedId)
	case errors.Is(err, resource.ErrIO):
		ec.WithIssue(issue.ResourceParseErrorId)
	}

	return ec.Build(), code
}

func displayPath(path string) string {
	if path == "" {
		return "the resource"
	}
	return path
}

// renderError prints err and, in verbose mode, the catalog guidance.
func renderError(w io.Writer, ae *issue.ActionableError, verbose bool, style string, logger *log.Logger) {
	fmt.Fprintf(w, "%s %s\n", ErrorStyle.Render("Error:"), ae.Format(verbose))

	if !verbose {
		return
	}
	entry := ae.CatalogIssue()
	if entry == nil {
		return
	}
	rendered, err := entry.Render(style)
	if err != nil {
		logger.Warn("failed to render issue catalog entry", "issue", ae.Issue, "error", err)
		return
	}
	fmt.Fprint(w, rendered)
}

// formatErrorForDisplay formats an error for user display.
func formatErrorForDisplay(err error, verbose bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verbose)
	}
	return err.Error()
}
