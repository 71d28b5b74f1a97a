package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/symm/internal/ir"
	"github.com/roach88/symm/internal/rewrite"
)

// marshalDiagnostics converts diagnostics to canonical JSON TEXT for storage.
func marshalDiagnostics(diags []rewrite.Diagnostic) (string, error) {
	if diags == nil {
		diags = []rewrite.Diagnostic{}
	}
	data, err := ir.MarshalCanonical(diags)
	if err != nil {
		return "", fmt.Errorf("marshal diagnostics: %w", err)
	}
	return string(data), nil
}

// unmarshalDiagnostics parses diagnostics TEXT. An empty array yields nil.
func unmarshalDiagnostics(data string) ([]rewrite.Diagnostic, error) {
	if data == "" || data == "[]" {
		return nil, nil
	}
	var diags []rewrite.Diagnostic
	if err := json.Unmarshal([]byte(data), &diags); err != nil {
		return nil, fmt.Errorf("unmarshal diagnostics: %w", err)
	}
	return diags, nil
}
