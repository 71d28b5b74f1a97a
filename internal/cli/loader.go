package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue/token"

	"github.com/roach88/symm/internal/config"
	"github.com/roach88/symm/internal/workspace"
)

// LoadError represents an error that occurred while loading configuration
// or resolving input files.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric      = "E001" // Generic/unknown error
	ErrCodeScanError    = "E002" // Directory scan error
	ErrCodeNoFiles      = "E003" // No source files found
	ErrCodeConfigFailed = "E004" // symm.cue load or validation failed
	ErrCodeNotFound     = "E005" // Path not found
	ErrCodeCacheFailed  = "E006" // Expansion cache unavailable
	ErrCodeWriteFailed  = "E007" // File write error
	ErrCodeGitFailed    = "E008" // Git status unavailable
	ErrCodeSyntax       = "E009" // Source file does not parse
)

// Inputs is a resolved set of files to process.
type Inputs struct {
	Root   string
	Config *config.Config
	Files  []string
}

// LoadConfig loads the configuration for root: the --config file when
// given, else root/symm.cue, else the defaults. Relative cache and output
// paths are resolved against root's directory.
func LoadConfig(opts *RootOptions, root string) (*config.Config, error) {
	dir := root
	if !isDir(root) {
		dir = filepath.Dir(root)
	}

	var cfg *config.Config
	var err error
	if opts.Config != "" {
		cfg, err = config.Load(opts.Config)
	} else {
		cfg, err = config.LoadDir(dir)
	}
	if err != nil {
		return nil, convertConfigError(err)
	}
	cfg.Cache = resolve(dir, cfg.Cache)
	cfg.OutDir = resolve(dir, cfg.OutDir)
	return cfg, nil
}

func resolve(dir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

// ResolveInputs loads configuration and lists the source files under root.
// With changed set only files that differ from git HEAD are listed.
func ResolveInputs(opts *RootOptions, root string, changed bool) (*Inputs, error) {
	if _, err := os.Stat(root); err != nil {
		if os.IsNotExist(err) {
			return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("path not found: %s", root)}
		}
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing path: %v", err)}
	}

	cfg, err := LoadConfig(opts, root)
	if err != nil {
		return nil, err
	}

	var files []string
	if changed {
		files, err = workspace.Changed(root, cfg)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeGitFailed, Message: err.Error()}
		}
	} else {
		files, err = workspace.Discover(root, cfg)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}
		}
	}

	return &Inputs{Root: root, Config: cfg, Files: files}, nil
}

// convertConfigError converts a config error to a LoadError with position info.
func convertConfigError(err error) *LoadError {
	var cfgErr *config.Error
	if errors.As(err, &cfgErr) {
		return &LoadError{
			Code:    ErrCodeConfigFailed,
			Message: fmt.Sprintf("%s: %s", cfgErr.Field, cfgErr.Message),
			Pos:     cfgErr.Pos,
		}
	}
	return &LoadError{
		Code:    ErrCodeConfigFailed,
		Message: err.Error(),
	}
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
