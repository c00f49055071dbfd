package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// legacyStateFile is the flat-file snapshot written by the retired
// pre-sqlite state layer.
const legacyStateFile = "state.json"

// legacyImportKey marks a completed import in schema_meta.
const legacyImportKey = "legacy_import"

// legacyState mirrors the retired flat-file layout.
type legacyState struct {
	Architect *legacyArchitect   `json:"architect,omitempty"`
	Builders  []legacyBuilder    `json:"builders,omitempty"`
	Utils     []legacyUtil       `json:"utils,omitempty"`
	Notes     []legacyAnnotation `json:"annotations,omitempty"`
}

type legacyArchitect struct {
	Pid     int    `json:"pid"`
	Port    int    `json:"port"`
	Command string `json:"command"`
	Session string `json:"session"`
}

type legacyBuilder struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Port          int    `json:"port"`
	Pid           int    `json:"pid"`
	Status        string `json:"status"`
	Phase         string `json:"phase"`
	WorkspacePath string `json:"workspace_path"`
	Branch        string `json:"branch"`
	Session       string `json:"session"`
	Kind          string `json:"kind"`
	Task          string `json:"task"`
	Protocol      string `json:"protocol"`
}

type legacyUtil struct {
	ID      string `json:"id"`
	Port    int    `json:"port"`
	Pid     int    `json:"pid"`
	Session string `json:"session"`
}

type legacyAnnotation struct {
	ID         string `json:"id"`
	File       string `json:"file"`
	Port       int    `json:"port"`
	Pid        int    `json:"pid"`
	Session    string `json:"session"`
	ParentKind string `json:"parent_kind"`
	ParentID   string `json:"parent_id"`
}

// ImportLegacyState imports the legacy flat-file snapshot into the relational
// store, once. The whole import runs in a single transaction and is rolled
// back entirely if any row violates a constraint.
// On success the flat file is renamed aside so the import
// never re-runs, and a marker row makes re-invocation a no-op even if the
// rename is lost.
func ImportLegacyState(database *sql.DB, projectPath string) error {
	legacyPath := filepath.Join(projectPath, DirName, legacyStateFile)
	data, err := os.ReadFile(legacyPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read legacy state file: %w", err)
	}

	var done int
	err = database.QueryRow("SELECT COUNT(*) FROM schema_meta WHERE key = ?", legacyImportKey).Scan(&done)
	if err != nil {
		return fmt.Errorf("failed to check migration marker: %w", err)
	}
	if done > 0 {
		return nil
	}

	var state legacyState
	if err := json.Unmarshal(data, &state); err != nil {
		return fmt.Errorf("failed to parse legacy state file: %w", err)
	}

	tx, err := database.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin legacy import: %w", err)
	}
	defer tx.Rollback()

	if state.Architect != nil {
		a := state.Architect
		if _, err := tx.Exec(
			"INSERT INTO architect (id, pid, port, command, session) VALUES (1, ?, ?, ?, ?)",
			a.Pid, a.Port, a.Command, a.Session,
		); err != nil {
			return fmt.Errorf("legacy import aborted on architect: %w", err)
		}
	}

	for _, b := range state.Builders {
		if _, err := tx.Exec(
			`INSERT INTO builders (id, name, port, pid, status, phase, workspace_path, branch, session, kind, task, protocol)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			b.ID, b.Name, b.Port, b.Pid, b.Status, b.Phase, b.WorkspacePath, b.Branch, b.Session, b.Kind, b.Task, b.Protocol,
		); err != nil {
			return fmt.Errorf("legacy import aborted on builder %s: %w", b.ID, err)
		}
	}

	for _, u := range state.Utils {
		if _, err := tx.Exec(
			"INSERT INTO utils (id, port, pid, session) VALUES (?, ?, ?, ?)",
			u.ID, u.Port, u.Pid, u.Session,
		); err != nil {
			return fmt.Errorf("legacy import aborted on util %s: %w", u.ID, err)
		}
	}

	for _, n := range state.Notes {
		parentID := sql.NullString{String: n.ParentID, Valid: n.ParentID != ""}
		if _, err := tx.Exec(
			"INSERT INTO annotations (id, file, port, pid, session, parent_kind, parent_id) VALUES (?, ?, ?, ?, ?, ?, ?)",
			n.ID, n.File, n.Port, n.Pid, n.Session, n.ParentKind, parentID,
		); err != nil {
			return fmt.Errorf("legacy import aborted on annotation %s: %w", n.ID, err)
		}
	}

	if _, err := tx.Exec("INSERT INTO schema_meta (key, value) VALUES (?, '1')", legacyImportKey); err != nil {
		return fmt.Errorf("failed to record migration marker: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit legacy import: %w", err)
	}

	if err := os.Rename(legacyPath, legacyPath+".migrated"); err != nil {
		// The marker row already guards against re-import; the stray file
		// is only a cosmetic leftover.
		return nil
	}
	return nil
}
