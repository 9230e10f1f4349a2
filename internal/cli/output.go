package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/bitfsorg/revledger-go/revshare"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // The ledger rejected the operation
	ExitCommandError = 2 // Bad arguments, missing config, unreadable files
)

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// ledgerError classifies an error returned by a ledger operation: contract
// rejections exit with ExitFailure, everything else with ExitCommandError.
func ledgerError(op string, err error) error {
	if revshare.Code(err) > 0 || errors.Is(err, revshare.ErrInvalidAmount) {
		return WrapExitError(ExitFailure, op, err)
	}
	return WrapExitError(ExitCommandError, op, err)
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format string
	Writer io.Writer
}

// NewOutputFormatter creates a formatter for the given format and writer.
func NewOutputFormatter(format string, w io.Writer) *OutputFormatter {
	return &OutputFormatter{Format: format, Writer: w}
}

// Print writes v as indented JSON in json mode, or calls text otherwise.
func (f *OutputFormatter) Print(v interface{}, text func(w io.Writer)) error {
	if f.Format == "json" {
		enc := json.NewEncoder(f.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	text(f.Writer)
	return nil
}

// parseUint parses a positional uint64 argument.
func parseUint(name, s string) (uint64, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, NewExitError(ExitCommandError, fmt.Sprintf("invalid %s %q: must be a non-negative integer", name, s))
	}
	return v, nil
}

// parsePeriodArgs parses <project> <period> positional arguments.
func parsePeriodArgs(args []string) (uint64, uint64, error) {
	projectID, err := parseUint("project", args[0])
	if err != nil {
		return 0, 0, err
	}
	period, err := parseUint("period", args[1])
	if err != nil {
		return 0, 0, err
	}
	return projectID, period, nil
}
