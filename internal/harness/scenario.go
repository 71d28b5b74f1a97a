package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario defines one expansion test case.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Input is inline Rust source. Exactly one of Input and InputFile is set.
	Input string `yaml:"input,omitempty"`

	// InputFile is a path to Rust source, relative to the scenario file.
	InputFile string `yaml:"input_file,omitempty"`

	// Attributes overrides the recognized directive paths.
	Attributes []string `yaml:"attributes,omitempty"`

	Expect ExpectClause `yaml:"expect"`

	// Assertions are additional checks on the rewritten output.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// ExpectClause specifies the expected outcome. Kind, Code, Message, Line,
// and Column describe the first diagnostic and only apply to status error.
type ExpectClause struct {
	Status  string `yaml:"status"`
	Kind    string `yaml:"kind,omitempty"`
	Code    string `yaml:"code,omitempty"`
	Message string `yaml:"message,omitempty"`
	Line    int    `yaml:"line,omitempty"`
	Column  int    `yaml:"column,omitempty"`
}

// Assertion checks one property of the rewrite.
type Assertion struct {
	// Type specifies the assertion type:
	// - "contains": output contains Text
	// - "excludes": output does not contain Text
	// - "sites": exactly Count annotated impls
	// - "diagnostics": diagnostic codes equal Codes, in order
	Type string `yaml:"type"`

	Text  string   `yaml:"text,omitempty"`
	Count int      `yaml:"count,omitempty"`
	Codes []string `yaml:"codes,omitempty"`
}

// Expected status values.
const (
	StatusOK          = "ok"
	StatusError       = "error"
	StatusSyntaxError = "syntax_error"
)

// Assertion type constants.
const (
	AssertContains    = "contains"
	AssertExcludes    = "excludes"
	AssertSites       = "sites"
	AssertDiagnostics = "diagnostics"
)

// LoadScenario reads and parses a scenario YAML file, loading InputFile
// relative to the scenario's directory.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving InputFile relative to basePath.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Parse YAML with strict field validation (catches typos like "assertion:" vs "assertions:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	if scenario.InputFile != "" {
		inputPath := scenario.InputFile
		if !filepath.IsAbs(inputPath) && basePath != "" {
			inputPath = filepath.Join(basePath, inputPath)
		}
		src, err := os.ReadFile(inputPath)
		if err != nil {
			return nil, fmt.Errorf("invalid scenario: input file: %w", err)
		}
		scenario.Input = string(src)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	switch {
	case s.Input == "" && s.InputFile == "":
		return fmt.Errorf("input or input_file is required")
	case s.Input != "" && s.InputFile != "":
		return fmt.Errorf("input and input_file are mutually exclusive")
	}

	switch s.Expect.Status {
	case StatusOK, StatusSyntaxError:
		if s.Expect.Kind != "" || s.Expect.Code != "" || s.Expect.Message != "" || s.Expect.Line != 0 || s.Expect.Column != 0 {
			return fmt.Errorf("expect: diagnostic fields require status %q", StatusError)
		}
	case StatusError:
	case "":
		return fmt.Errorf("expect.status is required")
	default:
		return fmt.Errorf("expect: unknown status %q", s.Expect.Status)
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertContains, AssertExcludes:
		if a.Text == "" {
			return fmt.Errorf("assertions[%d]: text is required for %s", index, a.Type)
		}
	case AssertSites:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for sites", index)
		}
	case AssertDiagnostics:
		if a.Codes == nil {
			return fmt.Errorf("assertions[%d]: codes list is required for diagnostics", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
