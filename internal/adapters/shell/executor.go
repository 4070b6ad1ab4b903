// Package shell provides the shell executor adapter.
package shell

import (
	"context"
	"errors"
	"io"
	"os/exec"

	"go.trai.ch/memo/internal/core/domain"
	"go.trai.ch/memo/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Executor = (*Executor)(nil)

// Executor implements ports.Executor using os/exec.
type Executor struct {
	logger ports.Logger
}

// NewExecutor creates a new Executor.
func NewExecutor(logger ports.Logger) *Executor {
	return &Executor{
		logger: logger,
	}
}

// Run executes command as `<shell> -c <command>` in dir, streaming the
// combined stdout+stderr into output. The command line is an opaque string;
// the shell owns its interpretation.
//
// It blocks until the command terminates. A non-zero exit is reported via
// the returned code, not as an error; only failure to launch is an error.
func (e *Executor) Run(ctx context.Context, shell, command, dir string, output io.Writer) (int, error) {
	cmd := exec.CommandContext(ctx, shell, "-c", command) //nolint:gosec // user provided command
	cmd.Dir = dir

	// stdout and stderr share one writer so the stored log interleaves the
	// two streams the same way a terminal would.
	cmd.Stdout = output
	cmd.Stderr = output

	e.logger.Debug("executing command", "shell", shell, "command", command, "dir", dir)

	if err := cmd.Start(); err != nil {
		return -1, zerr.With(zerr.Wrap(err, domain.ErrCommandStartFailed.Error()), "command", command)
	}

	if err := cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode(), nil
		}
		return -1, zerr.With(zerr.Wrap(err, domain.ErrCommandStartFailed.Error()), "command", command)
	}

	return 0, nil
}
