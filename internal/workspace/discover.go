// Package workspace runs expansions over a tree of Rust sources: discovery,
// git-changed selection, parallel rewriting, output, and watch mode.
package workspace

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sort"

	"github.com/roach88/symm/internal/config"
)

// Discover returns the source files under root whose extension is listed in
// cfg.Extensions, skipping directories named in cfg.Exclude. Paths are
// sorted. A root that is itself a file is returned as-is.
func Discover(root string, cfg *config.Config) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && excluded(d.Name(), cfg) {
				return filepath.SkipDir
			}
			return nil
		}
		if path == root || hasExtension(path, cfg) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	slog.Debug("discovered files", "root", root, "count", len(files))
	return files, nil
}

// Matches reports whether the relative path has a configured source
// extension and lies outside every excluded directory.
func Matches(path string, cfg *config.Config) bool {
	if !hasExtension(path, cfg) {
		return false
	}
	for dir := filepath.Dir(path); dir != "." && dir != string(filepath.Separator); dir = filepath.Dir(dir) {
		if excluded(filepath.Base(dir), cfg) {
			return false
		}
		if filepath.Dir(dir) == dir {
			break
		}
	}
	return true
}

func hasExtension(path string, cfg *config.Config) bool {
	return slices.Contains(cfg.Extensions, filepath.Ext(path))
}

func excluded(name string, cfg *config.Config) bool {
	return slices.Contains(cfg.Exclude, name)
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
