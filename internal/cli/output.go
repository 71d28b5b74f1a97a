package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// Exit codes returned by symm.
const (
	ExitSuccess      = 0 // every file expanded, checked, or tested cleanly
	ExitFailure      = 1 // expansion diagnostics, syntax errors, or failed scenarios
	ExitCommandError = 2 // bad flags, unreadable config, cache or write failures
)

// ExitError carries the process exit code for a failed command.
type ExitError struct {
	Code    int
	Message string
	Err     error // optional
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates an ExitError without an underlying cause.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError attaches an exit code to err.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode returns the exit code carried by err, or ExitFailure when err
// is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter writes command results as text or as one JSON document.
// Progress and problem reports go to ErrWriter so that JSON on Writer stays
// parseable.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // defaults to Writer
	Verbose   bool
	Indent    bool // indent JSON documents
}

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}

// JSON reports whether results are written as JSON.
func (f *OutputFormatter) JSON() bool {
	return f.Format == "json"
}

// CLIResponse is the JSON document every command writes in json format.
type CLIResponse struct {
	Status string    `json:"status"` // "ok" or "error"
	Data   any       `json:"data,omitempty"`
	Error  *CLIError `json:"error,omitempty"`
	RunID  string    `json:"run_id,omitempty"` // run log entry that produced Data
}

// CLIError describes why a command failed.
type CLIError struct {
	Code    string `json:"code"` // E001-E009, or E_EXPAND_FAILED / E_TEST_FAILED
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Respond encodes resp. An empty Status is derived from resp.Error.
func (f *OutputFormatter) Respond(resp CLIResponse) error {
	if resp.Status == "" {
		resp.Status = "ok"
		if resp.Error != nil {
			resp.Status = "error"
		}
	}
	enc := json.NewEncoder(f.Writer)
	if f.Indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(resp)
}

// Success writes data, or prints it in text format.
func (f *OutputFormatter) Success(data any) error {
	if f.JSON() {
		return f.Respond(CLIResponse{Data: data})
	}
	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error writes a failure with its code. Text output uses the rustc layout,
// error[E005]: message, with details only in verbose mode.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.JSON() {
		return f.Respond(CLIResponse{Error: &CLIError{Code: code, Message: message, Details: details}})
	}
	fmt.Fprintf(f.Writer, "error[%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "  = details: %v\n", details)
	}
	return nil
}

// VerboseLog prints a progress line to ErrWriter in verbose mode.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if f.Verbose {
		fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
	}
}

// GetErrWriter returns ErrWriter, or Writer when it is unset.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}
