package db

// ProjectSchemaSQL is the complete schema of the per-project state store.
//
// This is the single source of truth: all tests load it via GetSchemaSQL()
// instead of hardcoding CREATE TABLE statements, so any drift between
// repository code and the schema fails immediately with "no such column".
//
// Port uniqueness is enforced per table; the builder, util, and annotation
// ranges are disjoint by the portlayout contract, so per-table UNIQUE gives
// store-wide uniqueness.
const ProjectSchemaSQL = `
-- Architect (singleton, fixed identity)
CREATE TABLE IF NOT EXISTS architect (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	pid INTEGER NOT NULL,
	port INTEGER NOT NULL,
	command TEXT NOT NULL,
	session TEXT NOT NULL,
	started_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Builders (one row per active or recently-active builder)
CREATE TABLE IF NOT EXISTS builders (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	port INTEGER NOT NULL UNIQUE,
	pid INTEGER DEFAULT 0,
	status TEXT NOT NULL CHECK (status IN ('spawning', 'implementing', 'blocked', 'pr-ready', 'complete')) DEFAULT 'spawning',
	phase TEXT DEFAULT '',
	workspace_path TEXT DEFAULT '',
	branch TEXT DEFAULT '',
	session TEXT DEFAULT '',
	kind TEXT NOT NULL CHECK (kind IN ('spec', 'task', 'protocol', 'shell', 'worktree')),
	task TEXT DEFAULT '',
	protocol TEXT DEFAULT '',
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- updated_at is maintained by the store itself so every mutation path,
-- including raw status updates, refreshes it.
CREATE TRIGGER IF NOT EXISTS builders_touch_updated
AFTER UPDATE ON builders
BEGIN
	UPDATE builders SET updated_at = CURRENT_TIMESTAMP WHERE id = NEW.id;
END;

-- Utility terminals (bare shell sessions)
CREATE TABLE IF NOT EXISTS utils (
	id TEXT PRIMARY KEY,
	port INTEGER NOT NULL UNIQUE,
	pid INTEGER DEFAULT 0,
	session TEXT DEFAULT '',
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Annotation viewers (file viewing/editing sessions). The parent reference
-- is a tagged variant: architect carries no id, builder/util must carry one.
CREATE TABLE IF NOT EXISTS annotations (
	id TEXT PRIMARY KEY,
	file TEXT NOT NULL,
	port INTEGER NOT NULL UNIQUE,
	pid INTEGER DEFAULT 0,
	session TEXT DEFAULT '',
	parent_kind TEXT NOT NULL CHECK (parent_kind IN ('architect', 'builder', 'util')),
	parent_id TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	CHECK (
		(parent_kind = 'architect' AND parent_id IS NULL)
		OR (parent_kind != 'architect' AND parent_id IS NOT NULL)
	)
);

-- Migration markers (legacy flat-file import, future schema steps)
CREATE TABLE IF NOT EXISTS schema_meta (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL,
	applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_builders_status ON builders(status);
CREATE INDEX IF NOT EXISTS idx_annotations_parent ON annotations(parent_kind, parent_id);
`

// RegistrySchemaSQL is the schema of the machine-wide port registry. One row
// per project; base ports are unique and never change for the lifetime of a
// project path.
const RegistrySchemaSQL = `
CREATE TABLE IF NOT EXISTS port_allocations (
	project_path TEXT PRIMARY KEY,
	base_port INTEGER NOT NULL UNIQUE,
	pid INTEGER,
	registered_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	last_used_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_port_allocations_base ON port_allocations(base_port);
`

// GetSchemaSQL returns the authoritative project-store schema for tests.
func GetSchemaSQL() string {
	return ProjectSchemaSQL
}

// GetRegistrySchemaSQL returns the authoritative registry schema for tests.
func GetRegistrySchemaSQL() string {
	return RegistrySchemaSQL
}
