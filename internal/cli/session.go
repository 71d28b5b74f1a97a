package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/symm/internal/rewrite"
	"github.com/roach88/symm/internal/store"
	"github.com/roach88/symm/internal/syntax"
	"github.com/roach88/symm/internal/workspace"
)

// FileReport summarizes one processed file.
type FileReport struct {
	Path        string               `json:"path"`
	Sites       int                  `json:"sites"`
	Cached      bool                 `json:"cached,omitempty"`
	Written     string               `json:"written,omitempty"`
	Diagnostics []rewrite.Diagnostic `json:"diagnostics,omitempty"`
	Code        string               `json:"code,omitempty"`
	Error       string               `json:"error,omitempty"`
}

// Summary is the outcome of one pass over a set of files.
type Summary struct {
	RunID     string       `json:"run_id,omitempty"`
	Files     int          `json:"files"`
	Sites     int          `json:"sites"`
	Expanded  int          `json:"expanded"`
	Failed    int          `json:"failed"`
	CacheHits int          `json:"cache_hits"`
	Reports   []FileReport `json:"reports"`
}

// Problems reports whether any file failed to parse or had diagnostics.
func (s *Summary) Problems() bool {
	return s.Failed > 0
}

// session runs expansion passes over resolved inputs, recording each pass
// in the cache database when one is open.
type session struct {
	command string
	inputs  *Inputs
	store   *store.Store
	write   bool
}

// openSession opens the expansion cache unless disabled.
func openSession(command string, inputs *Inputs, useCache, write bool) (*session, error) {
	s := &session{command: command, inputs: inputs, write: write}
	if useCache && inputs.Config.Cache != "" {
		st, err := store.Open(inputs.Config.Cache)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeCacheFailed, Message: err.Error()}
		}
		s.store = st
	}
	return s, nil
}

func (s *session) Close() {
	if s.store == nil {
		return
	}
	if err := s.store.Close(); err != nil {
		slog.Error("error closing cache", "error", err)
	}
}

// pass expands files and, when the session writes, stores the results. The
// outcomes are returned alongside the summary, in the order of files.
func (s *session) pass(ctx context.Context, files []string) (*Summary, []workspace.Outcome, error) {
	var run *store.Run
	var cache workspace.Cache
	if s.store != nil {
		r, err := s.store.BeginRun(ctx, s.command)
		if err != nil {
			return nil, nil, &LoadError{Code: ErrCodeCacheFailed, Message: err.Error()}
		}
		run = r
		cache = runCache{st: s.store, runID: run.ID}
	}

	expander := workspace.NewExpander(s.inputs.Config, cache)
	slog.Debug("expanding", "files", len(files), "jobs", expander.Jobs())
	outcomes, err := expander.Run(ctx, files)
	if err != nil {
		return nil, nil, err
	}

	sum := &Summary{Files: len(files), Reports: make([]FileReport, 0, len(outcomes))}
	for _, o := range outcomes {
		report := FileReport{Path: o.Path}
		if o.Err != nil {
			report.Code, report.Error = describeFileError(o.Err)
			sum.Failed++
			sum.Reports = append(sum.Reports, report)
			continue
		}
		res := o.Result
		report.Sites = res.Sites
		report.Cached = res.Cached
		report.Diagnostics = res.Diagnostics
		sum.Sites += res.Sites
		if res.Cached {
			sum.CacheHits++
		}
		if res.Failed() {
			sum.Failed++
		} else if res.Changed() {
			sum.Expanded++
		}
		if s.write {
			written, err := workspace.Write(s.inputs.Root, s.inputs.Config, res)
			if err != nil {
				return nil, nil, WrapExitError(ExitCommandError, "failed to write output", err)
			}
			report.Written = written
		}
		sum.Reports = append(sum.Reports, report)
	}

	if run != nil {
		sum.RunID = run.ID
		run.Files, run.Expanded, run.Failed, run.CacheHits = sum.Files, sum.Expanded, sum.Failed, sum.CacheHits
		if err := s.store.FinishRun(ctx, run); err != nil {
			slog.Warn("recording run failed", "run", run.ID, "error", err)
		}
	}
	slog.Info("pass finished",
		"command", s.command,
		"files", sum.Files,
		"expanded", sum.Expanded,
		"failed", sum.Failed,
		"cache_hits", sum.CacheHits)
	return sum, outcomes, nil
}

// runCache attributes saved cache entries to a run.
type runCache struct {
	st    *store.Store
	runID string
}

func (c runCache) Lookup(ctx context.Context, key string) (*rewrite.Result, bool, error) {
	return c.st.Lookup(ctx, key)
}

func (c runCache) Save(ctx context.Context, key string, res *rewrite.Result) error {
	return c.st.SaveRun(ctx, key, res, c.runID)
}

// describeFileError renders a per-file failure, keeping syntax positions.
func describeFileError(err error) (code, message string) {
	var parseErr *syntax.ParseError
	if errors.As(err, &parseErr) {
		return ErrCodeSyntax, parseErr.Error()
	}
	return ErrCodeGeneric, fmt.Sprint(err)
}
