package driver

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/roach88/ptest/internal/canonical"
)

// Process exit codes returned by Main and Execute.
const (
	ExitSuccess      = 0 // every selected test succeeded
	ExitFailure      = 1 // at least one selected test failed
	ExitCommandError = 2 // bad flags or arguments, config or history trouble
)

// ExitError is returned by commands that must end the process with a code
// other than the default for their error.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

// NewExitError returns an ExitError with no underlying cause.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError returns an ExitError that unwraps to err.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

// GetExitCode maps err to a process exit code: nil is ExitSuccess, an
// ExitError carries its own code, and anything else (cobra flag and argument
// errors) is ExitCommandError.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitCommandError
}

// Error codes carried in JSON error responses.
const (
	CodeTestFailed   = "E_TEST_FAILED"
	CodeConfig       = "E_CONFIG"
	CodeHistory      = "E_HISTORY"
	CodeNotFound     = "E_NOT_FOUND"
	CodeInvalidInput = "E_INVALID_INPUT"
)

// CLIResponse is the JSON envelope for every command in --format json mode.
type CLIResponse struct {
	Status string    `json:"status"`          // "ok" or "error"
	Data   any       `json:"data,omitempty"`  // success payload
	Error  *CLIError `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// object converts the response to the value form canonical.Marshal accepts.
// Data and Details must already be canonical values.
func (r CLIResponse) object() map[string]any {
	obj := map[string]any{"status": r.Status}
	if r.Data != nil {
		obj["data"] = r.Data
	}
	if r.Error != nil {
		e := map[string]any{"code": r.Error.Code, "message": r.Error.Message}
		if r.Error.Details != nil {
			e["details"] = r.Error.Details
		}
		obj["error"] = e
	}
	return obj
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // diagnostics; defaults to Writer
	Verbose   bool
}

// Success outputs a successful result. In text mode data is printed as is.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		return f.Encode(CLIResponse{Status: "ok", Data: data})
	}
	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == "json" {
		return f.Encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	fmt.Fprintf(f.GetErrWriter(), "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.GetErrWriter(), "Details: %v\n", details)
	}
	return nil
}

// Encode writes resp as indented canonical JSON followed by a newline.
func (f *OutputFormatter) Encode(resp CLIResponse) error {
	data, err := canonical.Marshal(resp.object())
	if err != nil {
		return fmt.Errorf("encode response: %w", err)
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return fmt.Errorf("indent response: %w", err)
	}
	buf.WriteByte('\n')
	_, err = f.Writer.Write(buf.Bytes())
	return err
}

// VerboseLog outputs a message only if verbose mode is enabled. It always
// writes to the diagnostic writer so JSON output stays intact.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
}

// GetErrWriter returns ErrWriter if set, otherwise Writer.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}
