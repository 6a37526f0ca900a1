// Package exit maps command outcomes to process exit codes.
package exit

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// Exit codes follow grep: a search without matches is not an error.
const (
	CodeSuccess = 0
	CodeNoMatch = 1
	CodeError   = 2
)

// ErrNoMatch signals a search that completed without finding the key.
var ErrNoMatch = errors.New("no matches")

// Result holds the output destination and exit code for program termination.
type Result struct {
	Output   io.Writer
	ExitCode int
	Message  string
}

// Print writes the result message to the configured output destination.
func (r *Result) Print() {
	if r.Message == "" {
		return
	}
	fmt.Fprint(r.Output, r.Message)
}

// Success creates a successful exit result that outputs to stdout with exit code 0.
func Success(message string) *Result {
	return &Result{
		Output:   os.Stdout,
		ExitCode: CodeSuccess,
		Message:  message,
	}
}

// NoMatch creates a silent result with exit code 1.
func NoMatch() *Result {
	return &Result{
		Output:   os.Stderr,
		ExitCode: CodeNoMatch,
	}
}

// Error creates an error exit result that outputs to stderr with exit code 2.
func Error(message string) *Result {
	return &Result{
		Output:   os.Stderr,
		ExitCode: CodeError,
		Message:  message,
	}
}

// Errorf creates an error exit result with formatted message.
func Errorf(format string, a ...any) *Result {
	return Error(fmt.Sprintf(format, a...))
}

// FromError classifies the error a command returned. Errors are reported on
// stderr; ErrNoMatch only sets the exit code.
func FromError(err error, stderr io.Writer) *Result {
	var result *Result
	switch {
	case err == nil:
		result = Success("")
	case errors.Is(err, ErrNoMatch):
		result = NoMatch()
	default:
		result = Errorf("Error: %v\n", err)
	}
	result.Output = stderr
	return result
}
