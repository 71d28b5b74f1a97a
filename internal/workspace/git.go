package workspace

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/go-git/go-git/v5"

	"github.com/roach88/symm/internal/config"
)

// Changed returns the source files under root that differ from HEAD in the
// enclosing git repository: modified, added, or untracked. Deleted files are
// left out.
func Changed(root string, cfg *config.Config) ([]string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	repo, err := git.PlainOpenWithOptions(abs, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("opening git repository: %w", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("opening worktree: %w", err)
	}
	status, err := wt.Status()
	if err != nil {
		return nil, fmt.Errorf("reading git status: %w", err)
	}

	top := wt.Filesystem.Root()
	var files []string
	for name, st := range status {
		if st.Worktree == git.Deleted || st.Staging == git.Deleted {
			continue
		}
		if st.Worktree == git.Unmodified && st.Staging == git.Unmodified {
			continue
		}
		path := filepath.Join(top, filepath.FromSlash(name))
		rel, err := filepath.Rel(abs, path)
		if err != nil || rel == ".." || len(rel) > 2 && rel[:3] == ".."+string(filepath.Separator) {
			continue
		}
		if !Matches(rel, cfg) {
			continue
		}
		files = append(files, filepath.Join(root, rel))
	}
	sort.Strings(files)
	return files, nil
}
