package harness

import (
	"fmt"
	"slices"
	"strings"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
	Output   string // Rewritten output for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if e.Output != "" {
		fmt.Fprintf(&buf, "\nOutput:\n")
		for _, line := range strings.Split(e.Output, "\n") {
			fmt.Fprintf(&buf, "  | %s\n", line)
		}
	}

	return buf.String()
}

// checkExpect compares the result with the expect clause.
func checkExpect(result *Result, expect ExpectClause) error {
	if got := result.Status(); got != expect.Status {
		actual := got
		switch {
		case result.SyntaxError != "":
			actual += ": " + result.SyntaxError
		case len(result.Diagnostics) > 0:
			actual += ": " + result.Diagnostics[0].String()
		}
		return &AssertionError{Type: "status", Expected: expect.Status, Actual: actual}
	}
	if expect.Status != StatusError {
		return nil
	}

	d := result.Diagnostics[0]
	var mismatches []string
	if expect.Kind != "" && expect.Kind != d.Kind.String() {
		mismatches = append(mismatches, fmt.Sprintf("kind %s, want %s", d.Kind, expect.Kind))
	}
	if expect.Code != "" && expect.Code != d.Code {
		mismatches = append(mismatches, fmt.Sprintf("code %s, want %s", d.Code, expect.Code))
	}
	if expect.Message != "" && expect.Message != d.Message {
		mismatches = append(mismatches, fmt.Sprintf("message %q, want %q", d.Message, expect.Message))
	}
	if expect.Line != 0 && expect.Line != d.Pos.Line {
		mismatches = append(mismatches, fmt.Sprintf("line %d, want %d", d.Pos.Line, expect.Line))
	}
	if expect.Column != 0 && expect.Column != d.Pos.Column {
		mismatches = append(mismatches, fmt.Sprintf("column %d, want %d", d.Pos.Column, expect.Column))
	}
	if len(mismatches) > 0 {
		return &AssertionError{
			Type:     "diagnostic",
			Expected: strings.Join(mismatches, "; "),
			Actual:   d.String(),
		}
	}
	return nil
}

// assertContains checks that the output contains the text.
func assertContains(result *Result, a Assertion) error {
	if strings.Contains(result.Output, a.Text) {
		return nil
	}
	return &AssertionError{
		Type:     AssertContains,
		Expected: fmt.Sprintf("output containing %q", a.Text),
		Actual:   "not found",
		Output:   result.Output,
	}
}

// assertExcludes checks that the output does not contain the text.
func assertExcludes(result *Result, a Assertion) error {
	if !strings.Contains(result.Output, a.Text) {
		return nil
	}
	return &AssertionError{
		Type:     AssertExcludes,
		Expected: fmt.Sprintf("output without %q", a.Text),
		Actual:   fmt.Sprintf("found %d occurrence(s)", strings.Count(result.Output, a.Text)),
		Output:   result.Output,
	}
}

// assertSites checks the number of annotated impls.
func assertSites(result *Result, a Assertion) error {
	if result.Sites == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertSites,
		Expected: fmt.Sprintf("%d site(s)", a.Count),
		Actual:   fmt.Sprintf("%d site(s)", result.Sites),
	}
}

// assertDiagnostics checks the diagnostic codes in order.
func assertDiagnostics(result *Result, a Assertion) error {
	codes := make([]string, len(result.Diagnostics))
	for i, d := range result.Diagnostics {
		codes[i] = d.Code
	}
	if slices.Equal(codes, a.Codes) {
		return nil
	}
	return &AssertionError{
		Type:     AssertDiagnostics,
		Expected: fmt.Sprintf("%v", a.Codes),
		Actual:   fmt.Sprintf("%v", codes),
	}
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertContains:
			err = assertContains(result, assertion)
		case AssertExcludes:
			err = assertExcludes(result, assertion)
		case AssertSites:
			err = assertSites(result, assertion)
		case AssertDiagnostics:
			err = assertDiagnostics(result, assertion)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
