package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/af/internal/fault"
	"github.com/example/af/internal/ports/secondary"
)

// ArchitectRepository implements secondary.ArchitectRepository. The architect
// is a singleton with fixed identity (id = 1); setting a new one replaces the
// old record wholesale, never merging fields.
type ArchitectRepository struct {
	db *sql.DB
}

// NewArchitectRepository creates a new SQLite architect repository.
func NewArchitectRepository(db *sql.DB) *ArchitectRepository {
	return &ArchitectRepository{db: db}
}

// Set records the architect, replacing any existing record wholesale.
func (r *ArchitectRepository) Set(ctx context.Context, architect *secondary.ArchitectRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO architect (id, pid, port, command, session)
		 VALUES (1, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			pid = excluded.pid,
			port = excluded.port,
			command = excluded.command,
			session = excluded.session,
			started_at = CURRENT_TIMESTAMP`,
		architect.Pid, architect.Port, architect.Command, architect.Session,
	)
	if err != nil {
		return fmt.Errorf("failed to set architect: %w", mapErr(err))
	}
	return nil
}

// Get returns the recorded architect.
func (r *ArchitectRepository) Get(ctx context.Context) (*secondary.ArchitectRecord, error) {
	var startedAt time.Time
	rec := &secondary.ArchitectRecord{}
	err := r.db.QueryRowContext(ctx,
		"SELECT pid, port, command, session, started_at FROM architect WHERE id = 1",
	).Scan(&rec.Pid, &rec.Port, &rec.Command, &rec.Session, &startedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("architect: %w", fault.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get architect: %w", mapErr(err))
	}
	rec.StartedAt = startedAt.Format(time.RFC3339)
	return rec, nil
}

// Remove deletes the architect record.
func (r *ArchitectRepository) Remove(ctx context.Context) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM architect WHERE id = 1")
	if err != nil {
		return fmt.Errorf("failed to remove architect: %w", mapErr(err))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("architect: %w", fault.ErrNotFound)
	}
	return nil
}

var _ secondary.ArchitectRepository = (*ArchitectRepository)(nil)
