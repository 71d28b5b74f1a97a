package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/symm/internal/ir"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "symm", cmd.Use)
	assert.Contains(t, cmd.Long, "#[symmetric]")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"expand", "check", "inspect", "test", "cache"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	configFlag := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, configFlag)
	assert.Equal(t, "", configFlag.DefValue)
}

func TestExpandCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	expandCmd, _, err := cmd.Find([]string{"expand"})
	require.NoError(t, err)

	writeFlag := expandCmd.Flags().Lookup("write")
	require.NotNil(t, writeFlag)
	assert.Equal(t, "w", writeFlag.Shorthand)

	jobsFlag := expandCmd.Flags().Lookup("jobs")
	require.NotNil(t, jobsFlag)
	assert.Equal(t, "j", jobsFlag.Shorthand)
	assert.Equal(t, "0", jobsFlag.DefValue)

	for _, name := range []string{"out-dir", "changed", "watch", "no-cache"} {
		assert.NotNil(t, expandCmd.Flags().Lookup(name), name)
	}
}

func TestTestCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	testCmd, _, err := cmd.Find([]string{"test"})
	require.NoError(t, err)

	updateFlag := testCmd.Flags().Lookup("update")
	require.NotNil(t, updateFlag)
	assert.Equal(t, "false", updateFlag.DefValue)

	filterFlag := testCmd.Flags().Lookup("filter")
	require.NotNil(t, filterFlag)
}

func TestCacheSubcommands(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"stats", "clear", "runs"} {
		sub, _, err := cmd.Find([]string{"cache", name})
		require.NoError(t, err)
		assert.Equal(t, name, sub.Name())
	}

	clearCmd, _, err := cmd.Find([]string{"cache", "clear"})
	require.NoError(t, err)
	assert.NotNil(t, clearCmd.Flags().Lookup("stale"))
}

func TestRootCommand_Version(t *testing.T) {
	cmd := NewRootCommand()
	assert.Equal(t, ir.ToolVersion, cmd.Version)

	stdout, _, err := execute(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, stdout, ir.ToolVersion)
}

func TestFormatValidation(t *testing.T) {
	tests := []struct {
		format string
		valid  bool
	}{
		{"text", true},
		{"json", true},
		{"xml", false},
		{"", false},
		{"TEXT", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.valid, isValidFormat(tt.format), "format %q", tt.format)
	}
}

func TestFormatValidation_ExitCode(t *testing.T) {
	_, _, err := execute(t, "--format", "invalid", "check", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name      string
		opts      RootOptions
		wantDebug bool
		wantJSON  bool
	}{
		{"text info", RootOptions{Format: "text"}, false, false},
		{"text debug", RootOptions{Format: "text", Verbose: true}, true, false},
		{"json", RootOptions{Format: "json", Verbose: true}, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			logger := newLogger(buf, &tt.opts)

			logger.Debug("cache hit", "path", "src/lib.rs")
			logger.Info("pass finished", "files", 2)

			out := buf.String()
			assert.Contains(t, out, "pass finished")
			assert.Equal(t, tt.wantDebug, strings.Contains(out, "cache hit"))
			assert.Equal(t, tt.wantJSON, strings.HasPrefix(out, "{"))
		})
	}
}
