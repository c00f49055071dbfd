// Package sqlite_test contains integration tests for the SQLite
// repositories. The schemas are loaded via db.GetSchemaSQL() and
// db.GetRegistrySchemaSQL() so tests never drift from the authoritative
// schema: repository code referencing a missing column fails here with
// "no such column".
package sqlite_test

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/example/af/internal/db"
)

// setupTestDB creates an in-memory project store with the authoritative
// schema.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if _, err := testDB.Exec(db.GetSchemaSQL()); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() { testDB.Close() })
	return testDB
}

// setupRegistryDB creates an in-memory registry store with the authoritative
// schema.
func setupRegistryDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test registry: %v", err)
	}
	if _, err := testDB.Exec(db.GetRegistrySchemaSQL()); err != nil {
		t.Fatalf("failed to create registry schema: %v", err)
	}

	t.Cleanup(func() { testDB.Close() })
	return testDB
}

// seedBuilder inserts a test builder and returns its id.
func seedBuilder(t *testing.T, testDB *sql.DB, id string, port int) string {
	t.Helper()
	if id == "" {
		id = "spec-001"
	}
	_, err := testDB.Exec(
		"INSERT INTO builders (id, name, port, status, kind) VALUES (?, ?, ?, 'spawning', 'spec')",
		id, id, port,
	)
	if err != nil {
		t.Fatalf("failed to seed builder: %v", err)
	}
	return id
}

// seedUtil inserts a test util and returns its id.
func seedUtil(t *testing.T, testDB *sql.DB, id string, port int) string {
	t.Helper()
	if id == "" {
		id = "util-a1b2c3"
	}
	_, err := testDB.Exec("INSERT INTO utils (id, port) VALUES (?, ?)", id, port)
	if err != nil {
		t.Fatalf("failed to seed util: %v", err)
	}
	return id
}
