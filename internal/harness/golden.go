package harness

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// Snapshot renders a result for golden comparison: the rewritten output,
// then one comment line per diagnostic.
func Snapshot(result *Result) []byte {
	var b strings.Builder
	if result.SyntaxError != "" {
		b.WriteString("// syntax error: " + result.SyntaxError + "\n")
		return []byte(b.String())
	}
	b.WriteString(result.Output)
	if len(result.Diagnostics) > 0 {
		b.WriteString("\n// diagnostics:\n")
		for _, d := range result.Diagnostics {
			fmt.Fprintf(&b, "// %s %s: %s\n", d.Code, d.Pos, d.Message)
		}
	}
	return []byte(b.String())
}

// GoldenPath returns the golden file of a scenario file:
// golden/<name>.golden in the scenario's directory.
func GoldenPath(scenarioFile string) string {
	dir := filepath.Dir(scenarioFile)
	base := filepath.Base(scenarioFile)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, "golden", name+".golden")
}

// UpdateGolden writes the snapshot of result to path.
func UpdateGolden(path string, result *Result) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create golden directory: %w", err)
	}
	if err := os.WriteFile(path, Snapshot(result), 0o644); err != nil {
		return fmt.Errorf("failed to write golden file: %w", err)
	}
	return nil
}

// CompareGolden reports whether the snapshot of result matches the golden
// file at path.
func CompareGolden(path string, result *Result) (bool, error) {
	golden, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("failed to read golden file: %w", err)
	}
	return string(golden) == string(Snapshot(result)), nil
}

// RunWithGolden executes a scenario and compares its snapshot against the
// golden file in fixtureDir, named after the scenario.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario, fixtureDir string) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	AssertGolden(t, fixtureDir, scenario.Name, result)
	return result, nil
}

// AssertGolden compares a result's snapshot against a golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, fixtureDir, name string, result *Result) {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir(fixtureDir),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, Snapshot(result))
}
