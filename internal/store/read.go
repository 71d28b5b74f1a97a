package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Masterminds/semver/v3"

	"github.com/roach88/symm/internal/rewrite"
)

// Compatible reports whether an entry written by tool version recorded can
// be reused by tool version current: both must parse and share the major
// and minor version.
func Compatible(recorded, current string) bool {
	cur, err := semver.NewVersion(current)
	if err != nil {
		return false
	}
	rec, err := semver.NewVersion(recorded)
	if err != nil {
		return false
	}
	c, err := semver.NewConstraint(fmt.Sprintf("~%d.%d.0", cur.Major(), cur.Minor()))
	if err != nil {
		return false
	}
	return c.Check(rec)
}

// Lookup returns the cached result for key. Entries from an incompatible
// tool version are treated as absent.
func (s *Store) Lookup(ctx context.Context, key string) (*rewrite.Result, bool, error) {
	var (
		res       rewrite.Result
		version   string
		diagsJSON string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT path, tool_version, sites, output, diagnostics
		FROM expansions
		WHERE key = ?
	`, key).Scan(&res.Path, &version, &res.Sites, &res.Output, &diagsJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("lookup expansion: %w", err)
	}
	if !Compatible(version, s.version) {
		slog.Debug("cache entry from incompatible version", "path", res.Path, "version", version)
		return nil, false, nil
	}

	res.Diagnostics, err = unmarshalDiagnostics(diagsJSON)
	if err != nil {
		return nil, false, fmt.Errorf("lookup expansion: %w", err)
	}
	res.Cached = true
	return &res, true, nil
}

// Stats summarizes the cache and run log.
type Stats struct {
	Entries     int    `json:"entries"`
	Stale       int    `json:"stale"`
	OutputBytes int64  `json:"output_bytes"`
	Runs        int    `json:"runs"`
	LastRun     *Run   `json:"last_run,omitempty"`
	ToolVersion string `json:"tool_version"`
}

// Stats returns cache and run counters. Stale counts entries that Lookup
// would ignore.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	st := &Stats{ToolVersion: s.version}
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(LENGTH(output)), 0) FROM expansions
	`).Scan(&st.Entries, &st.OutputBytes)
	if err != nil {
		return nil, fmt.Errorf("cache stats: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT tool_version, COUNT(*) FROM expansions GROUP BY tool_version
	`)
	if err != nil {
		return nil, fmt.Errorf("cache stats: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var version string
		var n int
		if err := rows.Scan(&version, &n); err != nil {
			return nil, fmt.Errorf("cache stats: %w", err)
		}
		if !Compatible(version, s.version) {
			st.Stale += n
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("cache stats: %w", err)
	}

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs`).Scan(&st.Runs); err != nil {
		return nil, fmt.Errorf("cache stats: %w", err)
	}
	runs, err := s.Runs(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(runs) > 0 {
		st.LastRun = &runs[0]
	}
	return st, nil
}

// Runs returns up to limit runs, newest first.
func (s *Store) Runs(ctx context.Context, limit int) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, command, tool_version, files, expanded, failed, cache_hits, finished
		FROM runs
		ORDER BY id COLLATE BINARY DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.Command, &r.ToolVersion, &r.Files, &r.Expanded, &r.Failed, &r.CacheHits, &r.Finished); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

func (s *Store) entryVersions(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT tool_version FROM expansions`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var versions []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}
