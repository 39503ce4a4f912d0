// Command routecleaner turns delivery exports into route sheets: it sorts,
// removes duplicate deliveries and groups the rest by carrier route with
// blank separator rows between groups.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	apperrors "routecleaner/internal/errors"
	"routecleaner/internal/infrastructure"
)

// Exit codes
const (
	exitOK         = 0
	exitFailure    = 1
	exitValidation = 2
	exitSchema     = 3
	exitIO         = 4
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command line and returns the process exit code
func run(args []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	_ = infrastructure.CloseLogFile()
	if err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return exitCode(err)
	}
	return exitOK
}

// exitCode maps an error to the exit status scripts can branch on
func exitCode(err error) int {
	var usage *usageError
	switch {
	case errors.As(err, &usage), apperrors.IsValidationError(err):
		return exitValidation
	case apperrors.IsSchemaError(err):
		return exitSchema
	case apperrors.IsIOError(err):
		return exitIO
	default:
		return exitFailure
	}
}

// usageError marks a wrong command line
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }
