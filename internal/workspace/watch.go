package workspace

import (
	"context"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/roach88/symm/internal/config"
)

// DefaultDebounce is how long Watch waits for a burst of events to settle.
const DefaultDebounce = 100 * time.Millisecond

// Watcher reports source files under a root as they are created or written.
type Watcher struct {
	root     string
	cfg      *config.Config
	w        *fsnotify.Watcher
	debounce time.Duration
}

// NewWatcher watches every non-excluded directory under root.
func NewWatcher(root string, cfg *config.Config) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	wt := &Watcher{root: root, cfg: cfg, w: w, debounce: DefaultDebounce}
	if err := wt.addTree(root); err != nil {
		w.Close()
		return nil, err
	}
	return wt, nil
}

// Close stops watching.
func (wt *Watcher) Close() error {
	return wt.w.Close()
}

func (wt *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != wt.root && excluded(d.Name(), wt.cfg) {
			return filepath.SkipDir
		}
		return wt.w.Add(path)
	})
}

// Run calls onChange with each settled batch of changed source files until
// ctx is cancelled or onChange returns an error. Batches are sorted and free
// of duplicates.
func (wt *Watcher) Run(ctx context.Context, onChange func(context.Context, []string) error) error {
	pending := make(map[string]bool)
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-wt.w.Events:
			if !ok {
				return nil
			}
			if ev.Op&fsnotify.Create != 0 && wt.isNewDir(ev.Name) {
				if err := wt.addTree(ev.Name); err != nil {
					slog.Warn("watching new directory", "path", ev.Name, "error", err)
				}
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			if !wt.relevant(ev.Name) {
				continue
			}
			pending[ev.Name] = true
			if timer == nil {
				timer = time.NewTimer(wt.debounce)
			} else {
				timer.Reset(wt.debounce)
			}
			fire = timer.C

		case err, ok := <-wt.w.Errors:
			if !ok {
				return nil
			}
			slog.Warn("watch error", "error", err)

		case <-fire:
			fire = nil
			batch := make([]string, 0, len(pending))
			for path := range pending {
				batch = append(batch, path)
			}
			clear(pending)
			sort.Strings(batch)
			slog.Debug("watch batch", "files", len(batch))
			if err := onChange(ctx, batch); err != nil {
				return err
			}
		}
	}
}

func (wt *Watcher) isNewDir(path string) bool {
	return isDir(path) && !excluded(filepath.Base(path), wt.cfg)
}

func (wt *Watcher) relevant(path string) bool {
	rel, err := filepath.Rel(wt.root, path)
	if err != nil {
		return false
	}
	base := filepath.Base(path)
	if len(base) > 0 && base[0] == '.' {
		// Editor swap files and our own temporaries.
		return false
	}
	return Matches(rel, wt.cfg)
}
