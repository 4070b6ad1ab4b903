package ports

import (
	"context"
	"io"
)

// Executor runs a command line through a shell and reports its exit status.
//
//go:generate go run go.uber.org/mock/mockgen -source=executor.go -destination=mocks/mock_executor.go -package=mocks
type Executor interface {
	// Run executes command with the given shell in dir, streaming the
	// combined stdout+stderr to output as it is produced. It blocks until
	// the command terminates and returns its exit code.
	//
	// A non-zero exit is not an error; failure to launch the command is.
	Run(ctx context.Context, shell, command, dir string, output io.Writer) (int, error)
}
