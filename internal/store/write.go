package store

import (
	"context"
	"fmt"

	"github.com/roach88/symm/internal/rewrite"
)

// Save records the rewrite result of one file under key, replacing any
// earlier entry for the same key. Results replayed from the cache are not
// written back.
func (s *Store) Save(ctx context.Context, key string, res *rewrite.Result) error {
	return s.SaveRun(ctx, key, res, "")
}

// SaveRun is Save with the entry attributed to a run. An empty runID leaves
// the entry unattributed.
func (s *Store) SaveRun(ctx context.Context, key string, res *rewrite.Result, runID string) error {
	if res.Cached {
		return nil
	}
	diagsJSON, err := marshalDiagnostics(res.Diagnostics)
	if err != nil {
		return fmt.Errorf("save expansion: %w", err)
	}

	var run any
	if runID != "" {
		run = runID
	}
	output := res.Output
	if output == nil {
		output = []byte{}
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO expansions
		(key, path, tool_version, sites, output, diagnostics, run_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			tool_version = excluded.tool_version,
			sites = excluded.sites,
			output = excluded.output,
			diagnostics = excluded.diagnostics,
			run_id = excluded.run_id
	`,
		key,
		res.Path,
		s.version,
		res.Sites,
		output,
		diagsJSON,
		run,
	)
	if err != nil {
		return fmt.Errorf("save expansion: %w", err)
	}
	return nil
}

// Clear deletes every cache entry and returns how many were removed. The
// run log is kept.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM expansions`)
	if err != nil {
		return 0, fmt.Errorf("clear cache: %w", err)
	}
	return res.RowsAffected()
}

// Prune deletes entries written by an incompatible tool version and returns
// how many were removed.
func (s *Store) Prune(ctx context.Context) (int64, error) {
	versions, err := s.entryVersions(ctx)
	if err != nil {
		return 0, fmt.Errorf("prune cache: %w", err)
	}

	var removed int64
	for _, v := range versions {
		if Compatible(v, s.version) {
			continue
		}
		res, err := s.db.ExecContext(ctx, `DELETE FROM expansions WHERE tool_version = ?`, v)
		if err != nil {
			return removed, fmt.Errorf("prune cache: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return removed, fmt.Errorf("prune cache: %w", err)
		}
		removed += n
	}
	return removed, nil
}

// Run is one recorded invocation of a command.
type Run struct {
	ID          string `json:"id"`
	Command     string `json:"command"`
	ToolVersion string `json:"tool_version"`
	Files       int    `json:"files"`
	Expanded    int    `json:"expanded"`
	Failed      int    `json:"failed"`
	CacheHits   int    `json:"cache_hits"`
	Finished    bool   `json:"finished"`
}

// BeginRun records the start of a command and returns its run.
func (s *Store) BeginRun(ctx context.Context, command string) (*Run, error) {
	run := &Run{
		ID:          s.ids.Generate(),
		Command:     command,
		ToolVersion: s.version,
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, command, tool_version)
		VALUES (?, ?, ?)
	`, run.ID, run.Command, run.ToolVersion)
	if err != nil {
		return nil, fmt.Errorf("begin run: %w", err)
	}
	return run, nil
}

// FinishRun stores the final counters of run.
func (s *Store) FinishRun(ctx context.Context, run *Run) error {
	run.Finished = true
	_, err := s.db.ExecContext(ctx, `
		UPDATE runs
		SET files = ?, expanded = ?, failed = ?, cache_hits = ?, finished = 1
		WHERE id = ?
	`, run.Files, run.Expanded, run.Failed, run.CacheHits, run.ID)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}
