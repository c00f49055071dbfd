package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/af/internal/fault"
	"github.com/example/af/internal/ports/secondary"
)

// UtilRepository implements secondary.UtilRepository with SQLite.
type UtilRepository struct {
	db *sql.DB
}

// NewUtilRepository creates a new SQLite util repository.
func NewUtilRepository(db *sql.DB) *UtilRepository {
	return &UtilRepository{db: db}
}

// Insert persists a new utility terminal.
func (r *UtilRepository) Insert(ctx context.Context, u *secondary.UtilRecord) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO utils (id, port, pid, session) VALUES (?, ?, ?, ?)",
		u.ID, u.Port, u.Pid, u.Session,
	)
	if err != nil {
		return fmt.Errorf("failed to insert util %s (port %d): %w", u.ID, u.Port, mapErr(err))
	}
	return nil
}

// GetByID retrieves a utility terminal by its identifier.
func (r *UtilRepository) GetByID(ctx context.Context, id string) (*secondary.UtilRecord, error) {
	var createdAt time.Time
	rec := &secondary.UtilRecord{}
	err := r.db.QueryRowContext(ctx,
		"SELECT id, port, pid, session, created_at FROM utils WHERE id = ?", id,
	).Scan(&rec.ID, &rec.Port, &rec.Pid, &rec.Session, &createdAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("util %s: %w", id, fault.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get util: %w", mapErr(err))
	}
	rec.CreatedAt = createdAt.Format(time.RFC3339)
	return rec, nil
}

// Remove deletes a utility terminal row.
func (r *UtilRepository) Remove(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM utils WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to remove util: %w", mapErr(err))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("util %s: %w", id, fault.ErrNotFound)
	}
	return nil
}

// List returns all utility terminals ordered by creation time.
func (r *UtilRepository) List(ctx context.Context) ([]*secondary.UtilRecord, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, port, pid, session, created_at FROM utils ORDER BY created_at, id")
	if err != nil {
		return nil, fmt.Errorf("failed to list utils: %w", mapErr(err))
	}
	defer rows.Close()

	var records []*secondary.UtilRecord
	for rows.Next() {
		var createdAt time.Time
		rec := &secondary.UtilRecord{}
		if err := rows.Scan(&rec.ID, &rec.Port, &rec.Pid, &rec.Session, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan util: %w", err)
		}
		rec.CreatedAt = createdAt.Format(time.RFC3339)
		records = append(records, rec)
	}
	return records, rows.Err()
}

var _ secondary.UtilRepository = (*UtilRepository)(nil)
