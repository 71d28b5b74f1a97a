package harness

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/symm/internal/rewrite"
	"github.com/roach88/symm/internal/syntax"
)

// Harness executes scenarios.
type Harness struct {
	logger *slog.Logger
}

// New creates a harness that logs through logger. A nil logger discards.
func New(logger *slog.Logger) *Harness {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Harness{logger: logger}
}

// Run executes a scenario with a silent harness.
func Run(scenario *Scenario) (*Result, error) {
	return New(nil).Run(scenario)
}

// Run rewrites the scenario input and checks the outcome against its expect
// clause and assertions. A syntax error in the input is an outcome, not an
// error; the returned error is reserved for harness failures.
func (h *Harness) Run(scenario *Scenario) (*Result, error) {
	r, err := rewrite.New(scenario.Attributes)
	if err != nil {
		return nil, fmt.Errorf("failed to create rewriter: %w", err)
	}
	defer r.Close()

	result := NewResult()
	res, err := r.File(scenario.Name+".rs", []byte(scenario.Input))
	var parseErr *syntax.ParseError
	switch {
	case errors.As(err, &parseErr):
		result.SyntaxError = parseErr.Error()
	case err != nil:
		return nil, fmt.Errorf("failed to rewrite input: %w", err)
	default:
		result.Output = string(res.Output)
		result.Sites = res.Sites
		result.Diagnostics = res.Diagnostics
	}

	if err := checkExpect(result, scenario.Expect); err != nil {
		result.AddError(err.Error())
	}
	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}

	h.logger.Debug("scenario finished",
		"name", scenario.Name,
		"pass", result.Pass,
		"sites", result.Sites,
		"diagnostics", len(result.Diagnostics))
	return result, nil
}
