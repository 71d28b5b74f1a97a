package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/symm/internal/rewrite"
)

func TestEvaluateAssertions(t *testing.T) {
	result := &Result{
		Output: "impl T<A> for B {}\n",
		Sites:  2,
		Diagnostics: []rewrite.Diagnostic{
			{Code: "E211"},
			{Code: "E230"},
		},
	}

	tests := []struct {
		name      string
		assertion Assertion
		wantErr   string
	}{
		{"contains", Assertion{Type: AssertContains, Text: "T<A>"}, ""},
		{"contains missing", Assertion{Type: AssertContains, Text: "T<C>"}, `output containing "T<C>"`},
		{"excludes", Assertion{Type: AssertExcludes, Text: "#[symmetric]"}, ""},
		{"excludes present", Assertion{Type: AssertExcludes, Text: "impl"}, "found 1 occurrence(s)"},
		{"sites", Assertion{Type: AssertSites, Count: 2}, ""},
		{"sites wrong", Assertion{Type: AssertSites, Count: 1}, "Actual: 2 site(s)"},
		{"diagnostics", Assertion{Type: AssertDiagnostics, Codes: []string{"E211", "E230"}}, ""},
		{"diagnostics order", Assertion{Type: AssertDiagnostics, Codes: []string{"E230", "E211"}}, "Actual: [E211 E230]"},
		{"unknown", Assertion{Type: "trace_order"}, `unknown assertion type "trace_order"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := EvaluateAssertions(result, []Assertion{tt.assertion})
			if tt.wantErr == "" {
				assert.Empty(t, errs)
				return
			}
			require.Len(t, errs, 1)
			assert.Contains(t, errs[0], tt.wantErr)
		})
	}
}

func TestAssertionError_IncludesOutput(t *testing.T) {
	err := &AssertionError{
		Type:     AssertContains,
		Expected: "x",
		Actual:   "not found",
		Output:   "line one\nline two",
	}
	msg := err.Error()
	assert.Contains(t, msg, "Assertion failed: contains")
	assert.Contains(t, msg, "  | line one\n  | line two\n")
}

func TestEvaluateAssertions_NoDiagnosticsMatchesEmptyList(t *testing.T) {
	errs := EvaluateAssertions(&Result{}, []Assertion{{Type: AssertDiagnostics, Codes: []string{}}})
	assert.Empty(t, errs)
}
