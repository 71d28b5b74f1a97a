package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/symm/internal/compiler"
	"github.com/roach88/symm/internal/ir"
	"github.com/roach88/symm/internal/rewrite"
)

// createTestStore creates a new store in a temporary directory.
func createTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path, opts...)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestResult creates a rewrite result with one failed site.
func createTestResult(path string) *rewrite.Result {
	return &rewrite.Result{
		Path:   path,
		Output: []byte("\n\n          compile_error! { \"expected 2 arguments\" }\n"),
		Sites:  1,
		Diagnostics: []rewrite.Diagnostic{{
			Path:    path,
			Pos:     ir.Pos{Offset: 40, Line: 3, Column: 11},
			Kind:    compiler.ArityError,
			Code:    compiler.ErrArgumentCount,
			Message: "expected 2 arguments",
		}},
	}
}
