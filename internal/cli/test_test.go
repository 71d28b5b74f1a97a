package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const passingScenario = `name: distance
description: "Mirrors Distance<Disk> for Point2D"
input: |
  #[symmetric]
  impl Distance<Disk> for Point2D {
      fn distance(&self, other: &Disk) -> f64 {
          0.0
      }
  }
expect:
  status: ok
assertions:
  - type: contains
    text: "impl Distance<Point2D> for Disk {"
`

const failingScenario = `name: wrong
description: "Expects success from a rejected impl"
input: |
  #[symmetric]
  impl T for A {}
expect:
  status: ok
`

// runTestCommand executes `test` with args and returns its stdout.
func runTestCommand(t *testing.T, format string, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewTestCommand(&RootOptions{Format: format})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestTestCommandUsageErrors(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantErr  string
		wantCode int
	}{
		{"missing dir", nil, "accepts 1 arg", ExitFailure},
		{"nonexistent dir", []string{"/nonexistent/scenarios"}, "scenarios directory not found", ExitCommandError},
		{"bad filter", []string{".", "--filter", "["}, "failed to find scenarios", ExitCommandError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runTestCommand(t, "text", tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Equal(t, tt.wantCode, GetExitCode(err))
		})
	}
}

func TestTestCommandEmptyScenariosDir(t *testing.T) {
	output, err := runTestCommand(t, "text", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, output, "No scenarios found")

	output, err = runTestCommand(t, "json", t.TempDir())
	require.NoError(t, err)
	var response struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &response))
	assert.Equal(t, "ok", response.Status)
	assert.Equal(t, 0, response.Data.Total)
	assert.NotNil(t, response.Data.Scenarios)
}

func TestTestCommandRunsScenarios(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "distance.yaml"), []byte(passingScenario), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "wrong.yaml"), []byte(failingScenario), 0644))

	output, err := runTestCommand(t, "text", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, output, "✓ distance")
	assert.Contains(t, output, "✗ wrong")
	assert.Contains(t, output, "E203")
	assert.Contains(t, output, "Test Summary: 1 passed, 1 failed, 2 total")

	output, err = runTestCommand(t, "json", dir)
	require.Error(t, err)
	var response CLIResponse
	require.NoError(t, json.Unmarshal([]byte(output), &response))
	assert.Equal(t, "error", response.Status)
	require.NotNil(t, response.Error)
	assert.Equal(t, "E_TEST_FAILED", response.Error.Code)
}

func TestTestCommandFilterJSON(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "distance.yaml"), []byte(passingScenario), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "wrong.yaml"), []byte(failingScenario), 0644))

	output, err := runTestCommand(t, "json", dir, "--filter", "dist*")
	require.NoError(t, err)

	var response struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &response))
	assert.Equal(t, "ok", response.Status)
	require.Equal(t, 1, response.Data.Total)
	assert.Equal(t, "distance", response.Data.Scenarios[0].Name)
	assert.Equal(t, 1, response.Data.Scenarios[0].Sites)
}

func TestTestCommandGoldenUpdateAndCompare(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "distance.yaml"), []byte(passingScenario), 0644))

	output, err := runTestCommand(t, "text", dir, "--update")
	require.NoError(t, err)
	assert.Contains(t, output, "golden updated")

	goldenPath := filepath.Join(dir, "golden", "distance.golden")
	golden, err := os.ReadFile(goldenPath)
	require.NoError(t, err)
	assert.Contains(t, string(golden), "<Point2D as Distance<Disk>>::distance(other, self)")

	_, err = runTestCommand(t, "text", dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(goldenPath, []byte("stale\n"), 0644))
	output, err = runTestCommand(t, "text", dir)
	require.Error(t, err)
	assert.Contains(t, output, "Golden file mismatch")
}

func TestTestHelpText(t *testing.T) {
	output, err := runTestCommand(t, "text", "--help")
	require.NoError(t, err)
	for _, want := range []string{"scenarios-dir", "--update", "--filter", "failure_*"} {
		assert.Contains(t, output, want)
	}
}

func TestFindScenarioFiles(t *testing.T) {
	tmpDir := t.TempDir()

	// Create scenario files
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "test1.yaml"), []byte(""), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "test2.yml"), []byte(""), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "ignore.txt"), []byte(""), 0644))

	files, err := findScenarioFiles(tmpDir, "")
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

func TestFindScenarioFilesWithFilter(t *testing.T) {
	tmpDir := t.TempDir()

	// Create scenario files
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "failure_arity.yaml"), []byte(""), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "failure_shape.yaml"), []byte(""), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "plain_type.yaml"), []byte(""), 0644))

	files, err := findScenarioFiles(tmpDir, "failure_*")
	require.NoError(t, err)
	assert.Len(t, files, 2)

	for _, f := range files {
		assert.Contains(t, filepath.Base(f), "failure_")
	}
}

func TestFindScenarioFilesSkipsGolden(t *testing.T) {
	tmpDir := t.TempDir()
	subDir := filepath.Join(tmpDir, "subdir")
	goldenDir := filepath.Join(tmpDir, "golden")
	require.NoError(t, os.MkdirAll(subDir, 0755))
	require.NoError(t, os.MkdirAll(goldenDir, 0755))

	// Create scenario files in root and subdir
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "root.yaml"), []byte(""), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(subDir, "sub.yaml"), []byte(""), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(goldenDir, "snapshot.yaml"), []byte(""), 0644))

	files, err := findScenarioFiles(tmpDir, "")
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

func TestFindScenarioFilesInvalidFilter(t *testing.T) {
	_, err := findScenarioFiles(t.TempDir(), "[")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid filter pattern")
}

func TestEvaluateScenario(t *testing.T) {
	dir := t.TempDir()
	passing := filepath.Join(dir, "distance.yaml")
	failing := filepath.Join(dir, "wrong.yaml")
	broken := filepath.Join(dir, "broken.yaml")
	require.NoError(t, os.WriteFile(passing, []byte(passingScenario), 0644))
	require.NoError(t, os.WriteFile(failing, []byte(failingScenario), 0644))
	require.NoError(t, os.WriteFile(broken, []byte("name: [\n"), 0644))

	sr := evaluateScenario(passing, false)
	assert.True(t, sr.Pass)
	assert.Equal(t, "ok", sr.Status)
	assert.Equal(t, 1, sr.Sites)
	assert.Empty(t, sr.Golden)

	sr = evaluateScenario(failing, false)
	assert.False(t, sr.Pass)
	assert.Equal(t, "error", sr.Status)
	assert.NotEmpty(t, sr.Errors)

	sr = evaluateScenario(broken, false)
	assert.False(t, sr.Pass)
	assert.Equal(t, "broken", sr.Name)
	require.Len(t, sr.Errors, 1)
	assert.Contains(t, sr.Errors[0], "failed to load scenario")
}
