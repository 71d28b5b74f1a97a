package harness

import "github.com/roach88/symm/internal/rewrite"

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if the expect clause and every assertion hold.
	Pass bool `json:"pass"`

	// Output is the rewritten source. Empty when the input did not parse.
	Output string `json:"output"`

	// Sites is the number of annotated impls found.
	Sites int `json:"sites"`

	Diagnostics []rewrite.Diagnostic `json:"diagnostics,omitempty"`

	// SyntaxError is set when the input did not parse.
	SyntaxError string `json:"syntax_error,omitempty"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Status classifies the rewrite the way ExpectClause.Status does.
func (r *Result) Status() string {
	switch {
	case r.SyntaxError != "":
		return StatusSyntaxError
	case len(r.Diagnostics) > 0:
		return StatusError
	default:
		return StatusOK
	}
}
