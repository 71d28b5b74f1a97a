package store

import (
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/symm/internal/ir"
)

//go:embed schema.sql
var schemaSQL string

// migrations upgrade an existing database; entry i moves user_version from
// i to i+1.
var migrations = []string{
	// 1: Prune and Stats group entries by tool version.
	`CREATE INDEX IF NOT EXISTS idx_expansions_version ON expansions(tool_version)`,
}

// currentSchemaVersion is the user_version of a fully migrated database.
var currentSchemaVersion = len(migrations)

// pragmas are applied to every connection. The store keeps a single
// connection, so they hold for its lifetime.
var pragmas = []struct{ name, value string }{
	{"journal_mode", "WAL"},
	{"synchronous", "NORMAL"},
	{"busy_timeout", "5000"},
	{"foreign_keys", "ON"},
}

// Store is the expansion cache and run log, backed by SQLite in WAL mode.
type Store struct {
	db *sql.DB

	// version is written to new entries and runs and checked on lookup.
	version string
	ids     RunIDGenerator
}

// Option configures a Store at Open.
type Option func(*Store)

// WithToolVersion overrides the tool version entries are written and
// looked up with. Defaults to ir.ToolVersion.
func WithToolVersion(v string) Option {
	return func(s *Store) { s.version = v }
}

// WithRunIDs sets the generator BeginRun draws run ids from. Defaults to
// UUIDv7Generator.
func WithRunIDs(g RunIDGenerator) Option {
	return func(s *Store) { s.ids = g }
}

// Open opens or creates the cache database at path, creating its directory
// when needed, and brings its schema up to date. Opening an existing cache
// is safe and leaves its entries intact.
func Open(path string, opts ...Option) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	// One writer at a time in SQLite.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := initialize(db); err != nil {
		db.Close()
		return nil, err
	}

	s := &Store{db: db, version: ir.ToolVersion, ids: UUIDv7Generator{}}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func initialize(db *sql.DB) error {
	if err := db.Ping(); err != nil {
		return fmt.Errorf("connect to cache: %w", err)
	}
	for _, p := range pragmas {
		if _, err := db.Exec(fmt.Sprintf("PRAGMA %s = %s", p.name, p.value)); err != nil {
			return fmt.Errorf("set %s: %w", p.name, err)
		}
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return migrate(db)
}

// migrate runs the migrations past the database's user_version.
func migrate(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}
	for v := version; v < len(migrations); v++ {
		if _, err := db.Exec(migrations[v]); err != nil {
			return fmt.Errorf("migrate to v%d: %w", v+1, err)
		}
	}
	if version < currentSchemaVersion {
		if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
			return fmt.Errorf("set user_version: %w", err)
		}
	}
	return nil
}

// ToolVersion returns the version entries are written and looked up with.
func (s *Store) ToolVersion() string {
	return s.version
}

// Close closes the database. Closing a closed store is a no-op.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// pragma reads the current value of a connection pragma.
func (s *Store) pragma(name string) (string, error) {
	var value string
	if err := s.db.QueryRow("PRAGMA " + name).Scan(&value); err != nil {
		return "", fmt.Errorf("read %s: %w", name, err)
	}
	return value, nil
}
