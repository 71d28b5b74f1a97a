package workspace

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/symm/internal/config"
	"github.com/roach88/symm/internal/ir"
	"github.com/roach88/symm/internal/rewrite"
)

// Cache stores rewrite results by content key.
type Cache interface {
	Lookup(ctx context.Context, key string) (*rewrite.Result, bool, error)
	Save(ctx context.Context, key string, res *rewrite.Result) error
}

// Outcome is the result of processing one file. Exactly one of Result and
// Err is set.
type Outcome struct {
	Path   string
	Result *rewrite.Result
	Err    error
}

// Expander rewrites files in parallel.
type Expander struct {
	cfg   *config.Config
	cache Cache
}

// NewExpander creates an Expander. cache may be nil.
func NewExpander(cfg *config.Config, cache Cache) *Expander {
	return &Expander{cfg: cfg, cache: cache}
}

// Jobs returns the effective parallelism.
func (e *Expander) Jobs() int {
	if e.cfg.Jobs > 0 {
		return e.cfg.Jobs
	}
	return runtime.GOMAXPROCS(0)
}

// Run expands every file. Per-file failures (unreadable files, syntax errors)
// are reported in the outcome; the returned error is only set when ctx is
// cancelled. Outcomes are in the order of files.
func (e *Expander) Run(ctx context.Context, files []string) ([]Outcome, error) {
	outcomes := make([]Outcome, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.Jobs())
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := e.file(gctx, path)
			outcomes[i] = Outcome{Path: path, Result: res, Err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

func (e *Expander) file(ctx context.Context, path string) (*rewrite.Result, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var key string
	if e.cache != nil {
		key, err = ir.ContentKey(filepath.ToSlash(path), src, e.cfg.Attributes)
		if err != nil {
			return nil, err
		}
		res, ok, err := e.cache.Lookup(ctx, key)
		if err != nil {
			slog.Warn("cache lookup failed", "path", path, "error", err)
		} else if ok {
			slog.Debug("cache hit", "path", path)
			return res, nil
		}
	}

	// Parsers are not safe for concurrent use; each file gets its own.
	r, err := rewrite.New(e.cfg.Attributes)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	res, err := r.File(path, src)
	if err != nil {
		return nil, err
	}
	if e.cache != nil {
		if err := e.cache.Save(ctx, key, res); err != nil {
			slog.Warn("cache save failed", "path", path, "error", err)
		}
	}
	return res, nil
}

// Write stores a rewritten file. With cfg.OutDir set the output goes to the
// same path relative to root under OutDir; otherwise the source is replaced.
// Files without annotated impls are not written, and neither is a source
// whose expansion failed: its impls would be lost to the error markers. It
// returns the written path, or "" when nothing was written.
func Write(root string, cfg *config.Config, res *rewrite.Result) (string, error) {
	if !res.Changed() {
		return "", nil
	}
	if res.Failed() && cfg.OutDir == "" {
		slog.Warn("expansion failed, source kept", "path", res.Path, "diagnostics", len(res.Diagnostics))
		return "", nil
	}
	dest := res.Path
	if cfg.OutDir != "" {
		rel, err := filepath.Rel(root, res.Path)
		if err != nil || rel == "." {
			rel = filepath.Base(res.Path)
		}
		dest = filepath.Join(cfg.OutDir, rel)
	}
	if err := writeFileAtomic(dest, res.Output); err != nil {
		return "", fmt.Errorf("writing %s: %w", dest, err)
	}
	return dest, nil
}

func writeFileAtomic(path string, data []byte) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".symm-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(mode); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
