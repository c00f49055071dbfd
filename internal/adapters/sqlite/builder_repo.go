package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/af/internal/fault"
	"github.com/example/af/internal/ports/secondary"
)

const builderColumns = "id, name, port, pid, status, phase, workspace_path, branch, session, kind, task, protocol, created_at, updated_at"

// BuilderRepository implements secondary.BuilderRepository with SQLite.
type BuilderRepository struct {
	db *sql.DB
}

// NewBuilderRepository creates a new SQLite builder repository.
func NewBuilderRepository(db *sql.DB) *BuilderRepository {
	return &BuilderRepository{db: db}
}

// Insert persists a new builder. A duplicate id or port surfaces as a
// conflict, leaving the store unchanged.
func (r *BuilderRepository) Insert(ctx context.Context, b *secondary.BuilderRecord) error {
	err := withBusyRetry(ctx, func() error {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO builders (id, name, port, pid, status, phase, workspace_path, branch, session, kind, task, protocol)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			b.ID, b.Name, b.Port, b.Pid, b.Status, b.Phase, b.WorkspacePath, b.Branch, b.Session, b.Kind, b.Task, b.Protocol,
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to insert builder %s (port %d): %w", b.ID, b.Port, mapErr(err))
	}
	return nil
}

// Upsert inserts or fully replaces the builder row with the given id.
// Racing upserts of the same id converge to the last applied state with no
// duplicate rows.
func (r *BuilderRepository) Upsert(ctx context.Context, b *secondary.BuilderRecord) error {
	err := withBusyRetry(ctx, func() error {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO builders (id, name, port, pid, status, phase, workspace_path, branch, session, kind, task, protocol)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET
				name = excluded.name,
				port = excluded.port,
				pid = excluded.pid,
				status = excluded.status,
				phase = excluded.phase,
				workspace_path = excluded.workspace_path,
				branch = excluded.branch,
				session = excluded.session,
				kind = excluded.kind,
				task = excluded.task,
				protocol = excluded.protocol`,
			b.ID, b.Name, b.Port, b.Pid, b.Status, b.Phase, b.WorkspacePath, b.Branch, b.Session, b.Kind, b.Task, b.Protocol,
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to upsert builder %s: %w", b.ID, mapErr(err))
	}
	return nil
}

// GetByID retrieves a builder by its identifier.
func (r *BuilderRepository) GetByID(ctx context.Context, id string) (*secondary.BuilderRecord, error) {
	var createdAt, updatedAt time.Time
	rec := &secondary.BuilderRecord{}
	err := r.db.QueryRowContext(ctx,
		"SELECT "+builderColumns+" FROM builders WHERE id = ?", id,
	).Scan(&rec.ID, &rec.Name, &rec.Port, &rec.Pid, &rec.Status, &rec.Phase, &rec.WorkspacePath,
		&rec.Branch, &rec.Session, &rec.Kind, &rec.Task, &rec.Protocol, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("builder %s: %w", id, fault.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get builder: %w", mapErr(err))
	}
	rec.CreatedAt = createdAt.Format(time.RFC3339)
	rec.UpdatedAt = updatedAt.Format(time.RFC3339)
	return rec, nil
}

// SetStatus updates only the status. An unknown id is a not-found error and
// leaves the store unchanged; it never inserts.
func (r *BuilderRepository) SetStatus(ctx context.Context, id, status string) error {
	var res sql.Result
	err := withBusyRetry(ctx, func() error {
		var err error
		res, err = r.db.ExecContext(ctx, "UPDATE builders SET status = ? WHERE id = ?", status, id)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to set status: %w", mapErr(err))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("builder %s: %w", id, fault.ErrNotFound)
	}
	return nil
}

// SetPhase updates the informational phase label.
func (r *BuilderRepository) SetPhase(ctx context.Context, id, phase string) error {
	res, err := r.db.ExecContext(ctx, "UPDATE builders SET phase = ? WHERE id = ?", phase, id)
	if err != nil {
		return fmt.Errorf("failed to set phase: %w", mapErr(err))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("builder %s: %w", id, fault.ErrNotFound)
	}
	return nil
}

// Remove deletes a builder row, freeing its port by absence.
func (r *BuilderRepository) Remove(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM builders WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to remove builder: %w", mapErr(err))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("builder %s: %w", id, fault.ErrNotFound)
	}
	return nil
}

// List returns all builders ordered by creation time.
func (r *BuilderRepository) List(ctx context.Context) ([]*secondary.BuilderRecord, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+builderColumns+" FROM builders ORDER BY created_at, id")
	if err != nil {
		return nil, fmt.Errorf("failed to list builders: %w", mapErr(err))
	}
	defer rows.Close()

	var records []*secondary.BuilderRecord
	for rows.Next() {
		var createdAt, updatedAt time.Time
		rec := &secondary.BuilderRecord{}
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.Port, &rec.Pid, &rec.Status, &rec.Phase, &rec.WorkspacePath,
			&rec.Branch, &rec.Session, &rec.Kind, &rec.Task, &rec.Protocol, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan builder: %w", err)
		}
		rec.CreatedAt = createdAt.Format(time.RFC3339)
		rec.UpdatedAt = updatedAt.Format(time.RFC3339)
		records = append(records, rec)
	}
	return records, rows.Err()
}

var _ secondary.BuilderRepository = (*BuilderRepository)(nil)
