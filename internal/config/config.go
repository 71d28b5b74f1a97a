// Package config loads symm settings from an optional symm.cue file.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// FileName is the configuration file looked up in a workspace root.
const FileName = "symm.cue"

//go:embed schema.cue
var schemaSource string

// Config holds the settings shared by every command.
type Config struct {
	Attributes []string `json:"attributes"`
	Extensions []string `json:"extensions"`
	Exclude    []string `json:"exclude"`
	Jobs       int      `json:"jobs"`
	Cache      string   `json:"cache"`
	OutDir     string   `json:"outDir"`
}

// Error is a configuration error with its CUE source position.
type Error struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *Error) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Default returns the configuration used when no symm.cue exists.
func Default() *Config {
	cfg, err := decode(nil, "")
	if err != nil {
		// The embedded schema is fixed at build time.
		panic(fmt.Sprintf("config: embedded schema: %v", err))
	}
	return cfg
}

// Load reads and validates the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return decode(data, path)
}

// LoadDir loads dir/symm.cue, falling back to Default when it does not exist.
func LoadDir(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	return Load(path)
}

// Parse validates configuration source held in memory.
func Parse(data []byte, filename string) (*Config, error) {
	return decode(data, filename)
}

func decode(data []byte, filename string) (*Config, error) {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	v := schema.LookupPath(cue.ParsePath("#Config"))

	if data != nil {
		file := ctx.CompileBytes(data, cue.Filename(filename))
		if err := file.Err(); err != nil {
			return nil, formatCUEError(err)
		}
		v = v.Unify(file)
	}
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	var cfg Config
	if err := v.Decode(&cfg); err != nil {
		return nil, formatCUEError(err)
	}
	return &cfg, nil
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	// Return first error with position info
	first := errs[0]
	field := "config"
	if path := first.Path(); len(path) > 0 {
		field = path[len(path)-1]
	}
	if positions := errors.Positions(first); len(positions) > 0 {
		return &Error{
			Field:   field,
			Message: first.Error(),
			Pos:     positions[0],
		}
	}
	return &Error{Field: field, Message: first.Error()}
}
