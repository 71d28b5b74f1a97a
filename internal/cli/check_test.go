package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckClean(t *testing.T) {
	dir := writeTree(t, map[string]string{"lib.rs": distanceRS})

	stdout, _, err := execute(t, "check", "--no-cache", dir)
	require.NoError(t, err)
	assert.Equal(t, "✓ 1 impl(s) in 1 file(s) OK\n", stdout)

	// check never writes.
	src, err := os.ReadFile(filepath.Join(dir, "lib.rs"))
	require.NoError(t, err)
	assert.Equal(t, distanceRS, string(src))
}

func TestCheckDiagnostics(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"a.rs": distanceRS,
		"b.rs": arityRS,
	})

	stdout, _, err := execute(t, "check", "--no-cache", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Equal(t, filepath.Join(dir, "b.rs")+":3:11: E211: expected 2 arguments\n", stdout)
}

func TestCheckJSON(t *testing.T) {
	dir := writeTree(t, map[string]string{"b.rs": arityRS})

	stdout, _, err := execute(t, "--format", "json", "check", dir)
	require.Error(t, err)

	var response struct {
		Status string  `json:"status"`
		Data   Summary `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &response))
	assert.Equal(t, "error", response.Status)
	assert.Equal(t, 1, response.Data.Failed)
	require.Len(t, response.Data.Reports, 1)
	require.Len(t, response.Data.Reports[0].Diagnostics, 1)

	d := response.Data.Reports[0].Diagnostics[0]
	assert.Equal(t, "E211", d.Code)
	assert.Equal(t, "ArityError", d.Kind.String())
	assert.Equal(t, 3, d.Pos.Line)
	assert.Equal(t, 11, d.Pos.Column)
}

func TestCheckChangedOutsideRepository(t *testing.T) {
	dir := writeTree(t, map[string]string{"lib.rs": distanceRS})

	stdout, _, err := execute(t, "check", "--changed", dir)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stdout, "error[E008]")
}
