package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeResponse(t *testing.T, buf *bytes.Buffer) CLIResponse {
	t.Helper()
	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	return resp
}

func TestOutputFormatter_RespondDerivesStatus(t *testing.T) {
	tests := []struct {
		name string
		resp CLIResponse
		want string
	}{
		{"data", CLIResponse{Data: map[string]int{"sites": 2}}, "ok"},
		{"error", CLIResponse{Error: &CLIError{Code: "E_EXPAND_FAILED", Message: "1 file(s) failed"}}, "error"},
		{"explicit", CLIResponse{Status: "ok", Error: &CLIError{Code: "E001"}}, "ok"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			f := &OutputFormatter{Format: "json", Writer: buf}
			require.NoError(t, f.Respond(tt.resp))
			assert.Equal(t, tt.want, decodeResponse(t, buf).Status)
		})
	}
}

func TestOutputFormatter_RespondRunID(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, f.Respond(CLIResponse{Data: "x", RunID: "run-1"}))
	assert.Equal(t, "run-1", decodeResponse(t, buf).RunID)

	buf.Reset()
	require.NoError(t, f.Respond(CLIResponse{Data: "x"}))
	assert.NotContains(t, buf.String(), "run_id")
}

func TestOutputFormatter_Indent(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: "json", Writer: buf, Indent: true}

	require.NoError(t, f.Success([]string{"a"}))
	assert.Contains(t, buf.String(), "\n  \"status\": \"ok\"")
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: "json", Writer: buf}

	details := map[string]string{"file": "src/lib.rs"}
	require.NoError(t, f.Error(ErrCodeNotFound, "no such file", details))

	resp := decodeResponse(t, buf)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E005", resp.Error.Code)
	assert.Equal(t, "no such file", resp.Error.Message)
	assert.NotNil(t, resp.Error.Details)
}

func TestOutputFormatter_TextError(t *testing.T) {
	tests := []struct {
		name        string
		verbose     bool
		wantDetails bool
	}{
		{"quiet", false, false},
		{"verbose", true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			f := &OutputFormatter{Format: "text", Writer: buf, Verbose: tt.verbose}

			require.NoError(t, f.Error(ErrCodeConfigFailed, "jobs: invalid value -1", "symm.cue:1:7"))
			assert.Contains(t, buf.String(), "error[E004]: jobs: invalid value -1")
			if tt.wantDetails {
				assert.Contains(t, buf.String(), "= details: symm.cue:1:7")
			} else {
				assert.NotContains(t, buf.String(), "details")
			}
		})
	}
}

func TestOutputFormatter_TextSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: "text", Writer: buf}

	require.NoError(t, f.Success("✓ 3 impl(s) in 2 file(s) OK"))
	assert.Equal(t, "✓ 3 impl(s) in 2 file(s) OK\n", buf.String())
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		errw    bool
	}{
		{"quiet", false, true},
		{"to stderr", true, true},
		{"falls back to stdout", true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
			f := &OutputFormatter{Format: "json", Writer: stdout, Verbose: tt.verbose}
			if tt.errw {
				f.ErrWriter = stderr
			}

			f.VerboseLog("Found %d source file(s)", 4)

			switch {
			case !tt.verbose:
				assert.Empty(t, stdout.String())
				assert.Empty(t, stderr.String())
			case tt.errw:
				assert.Empty(t, stdout.String())
				assert.Equal(t, "Found 4 source file(s)\n", stderr.String())
			default:
				assert.Equal(t, "Found 4 source file(s)\n", stdout.String())
			}
		})
	}
}

func TestGetExitCode(t *testing.T) {
	cause := errors.New("disk full")
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"exit error", NewExitError(ExitCommandError, "bad flag"), ExitCommandError},
		{"wrapped exit error", fmt.Errorf("expand: %w", WrapExitError(ExitFailure, "1 file(s) failed", cause)), ExitFailure},
		{"plain error", cause, ExitFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetExitCode(tt.err))
		})
	}
}

func TestExitError_Message(t *testing.T) {
	cause := errors.New("disk full")
	err := WrapExitError(ExitCommandError, "failed to write output", cause)

	assert.Equal(t, "failed to write output: disk full", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "bad flag", NewExitError(ExitCommandError, "bad flag").Error())
}
