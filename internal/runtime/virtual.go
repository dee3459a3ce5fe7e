// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"

	"github.com/resdir/run/pkg/resource"
	"github.com/resdir/run/pkg/types"
)

type (
	// VirtualExecutor runs method scripts with the embedded shell.
	VirtualExecutor struct {
		// Environ returns the host environment the script starts from.
		// Nil means os.Environ.
		Environ func() []string
	}

	// ExitError reports a script that finished with a non-zero status.
	ExitError struct {
		Code types.ExitCode
	}
)

var _ resource.Executor = (*VirtualExecutor)(nil)

// NewVirtualExecutor returns an executor inheriting the process environment.
func NewVirtualExecutor() *VirtualExecutor {
	return &VirtualExecutor{Environ: os.Environ}
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %s", e.Code)
}

// Validate parses script without running it.
func (e *VirtualExecutor) Validate(script string) error {
	if strings.TrimSpace(script) == "" {
		return errors.New("script has no content to execute")
	}
	if _, err := syntax.NewParser().Parse(strings.NewReader(script), "script"); err != nil {
		return fmt.Errorf("script syntax error: %w", err)
	}
	return nil
}

// Execute runs req.Script. A non-zero exit status is returned as *ExitError.
func (e *VirtualExecutor) Execute(ctx context.Context, req resource.ExecRequest) error {
	name := req.Name
	if name == "" {
		name = "script"
	}

	prog, err := syntax.NewParser().Parse(strings.NewReader(req.Script), name)
	if err != nil {
		return fmt.Errorf("failed to parse script: %w", err)
	}

	if err := validateWorkDir(req.Dir); err != nil {
		return err
	}

	environ := e.Environ
	if environ == nil {
		environ = os.Environ
	}

	opts := []interp.RunnerOption{
		interp.Env(expand.ListEnviron(mergeEnv(environ(), req.Env)...)),
		interp.StdIO(req.Stdin, req.Stdout, req.Stderr),
	}
	if req.Dir != "" {
		opts = append(opts, interp.Dir(req.Dir))
	}

	// "--" ends option parsing, otherwise arguments like "-v" would be taken
	// as shell options.
	if len(req.Args) > 0 {
		params := append([]string{"--"}, req.Args...)
		opts = append(opts, interp.Params(params...))
	}

	runner, err := interp.New(opts...)
	if err != nil {
		return fmt.Errorf("failed to create interpreter: %w", err)
	}

	if err := runner.Run(ctx, prog); err != nil {
		var status interp.ExitStatus
		if errors.As(err, &status) {
			return &ExitError{Code: types.ExitCode(status)}
		}
		return fmt.Errorf("script execution failed: %w", err)
	}
	return nil
}
