package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/af/internal/fault"
	"github.com/example/af/internal/ports/secondary"
)

// AnnotationRepository implements secondary.AnnotationRepository with SQLite.
type AnnotationRepository struct {
	db *sql.DB
}

// NewAnnotationRepository creates a new SQLite annotation repository.
func NewAnnotationRepository(db *sql.DB) *AnnotationRepository {
	return &AnnotationRepository{db: db}
}

// Insert persists a new annotation viewer. The parent pairing rules are
// enforced by the schema CHECK as a backstop; callers validate first.
func (r *AnnotationRepository) Insert(ctx context.Context, a *secondary.AnnotationRecord) error {
	parentID := sql.NullString{String: a.ParentID, Valid: a.ParentID != ""}
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO annotations (id, file, port, pid, session, parent_kind, parent_id) VALUES (?, ?, ?, ?, ?, ?, ?)",
		a.ID, a.File, a.Port, a.Pid, a.Session, a.ParentKind, parentID,
	)
	if err != nil {
		return fmt.Errorf("failed to insert annotation %s (port %d): %w", a.ID, a.Port, mapErr(err))
	}
	return nil
}

// GetByID retrieves an annotation viewer by its identifier.
func (r *AnnotationRepository) GetByID(ctx context.Context, id string) (*secondary.AnnotationRecord, error) {
	var createdAt time.Time
	rec := &secondary.AnnotationRecord{}
	var parentID sql.NullString
	err := r.db.QueryRowContext(ctx,
		"SELECT id, file, port, pid, session, parent_kind, parent_id, created_at FROM annotations WHERE id = ?", id,
	).Scan(&rec.ID, &rec.File, &rec.Port, &rec.Pid, &rec.Session, &rec.ParentKind, &parentID, &createdAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("annotation %s: %w", id, fault.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get annotation: %w", mapErr(err))
	}
	rec.ParentID = parentID.String
	rec.CreatedAt = createdAt.Format(time.RFC3339)
	return rec, nil
}

// Remove deletes an annotation viewer row.
func (r *AnnotationRepository) Remove(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM annotations WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to remove annotation: %w", mapErr(err))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("annotation %s: %w", id, fault.ErrNotFound)
	}
	return nil
}

// List returns all annotation viewers ordered by creation time.
func (r *AnnotationRepository) List(ctx context.Context) ([]*secondary.AnnotationRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, file, port, pid, session, parent_kind, parent_id, created_at FROM annotations ORDER BY created_at, id",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list annotations: %w", mapErr(err))
	}
	defer rows.Close()

	var records []*secondary.AnnotationRecord
	for rows.Next() {
		var createdAt time.Time
		rec := &secondary.AnnotationRecord{}
		var parentID sql.NullString
		if err := rows.Scan(&rec.ID, &rec.File, &rec.Port, &rec.Pid, &rec.Session, &rec.ParentKind, &parentID, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan annotation: %w", err)
		}
		rec.ParentID = parentID.String
		rec.CreatedAt = createdAt.Format(time.RFC3339)
		records = append(records, rec)
	}
	return records, rows.Err()
}

var _ secondary.AnnotationRepository = (*AnnotationRepository)(nil)
