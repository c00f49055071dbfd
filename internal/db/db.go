// Package db opens the two durable stores: the machine-wide port registry
// shared by every project on the machine, and the per-project process/resource
// state store. Both use WAL journaling so readers are never blocked by a
// writer, and a bounded busy timeout so brief lock contention becomes latency
// instead of spurious failure.
package db

import (
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

const (
	// DirName is the dot-directory holding af state, both under $HOME
	// (registry) and under each project root (state store).
	DirName = ".af"

	projectDBFile  = "state.db"
	registryDBFile = "registry.db"

	// busyTimeoutMS bounds how long a writer waits on a lock before the
	// contention surfaces as an error.
	busyTimeoutMS = 5000
)

// dsn builds the connection string. _txlock=immediate makes every
// transaction write-exclusive from its first statement, which is what the
// allocator's read-decide-write sequences rely on.
func dsn(path string) string {
	return fmt.Sprintf("file:%s?_busy_timeout=%d&_journal_mode=WAL&_foreign_keys=on&_txlock=immediate",
		url.PathEscape(path), busyTimeoutMS)
}

// OpenProject opens the state store under projectPath, creating the .af
// directory and initializing the schema idempotently. The one-time legacy
// flat-file import runs before the handle is returned.
func OpenProject(projectPath string) (*sql.DB, error) {
	dir := filepath.Join(projectPath, DirName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create %s directory: %w", DirName, err)
	}

	database, err := sql.Open("sqlite3", dsn(filepath.Join(dir, projectDBFile)))
	if err != nil {
		return nil, fmt.Errorf("failed to open state store: %w", err)
	}

	if _, err := database.Exec(ProjectSchemaSQL); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to initialize state schema: %w", err)
	}

	if err := ImportLegacyState(database, projectPath); err != nil {
		database.Close()
		return nil, err
	}

	return database, nil
}

// OpenRegistry opens the machine-wide port registry at ~/.af/registry.db.
func OpenRegistry() (*sql.DB, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}
	return OpenRegistryAt(filepath.Join(home, DirName, registryDBFile))
}

// OpenRegistryAt opens a registry store at an explicit path. Tests use this
// to run several simulated processes against one registry file.
func OpenRegistryAt(path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create registry directory: %w", err)
	}

	database, err := sql.Open("sqlite3", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open registry: %w", err)
	}

	if _, err := database.Exec(RegistrySchemaSQL); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to initialize registry schema: %w", err)
	}

	return database, nil
}

// ProjectStorePath returns the path of the state store for a project.
func ProjectStorePath(projectPath string) string {
	return filepath.Join(projectPath, DirName, projectDBFile)
}
