package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/af/internal/core/portlayout"
	"github.com/example/af/internal/fault"
	"github.com/example/af/internal/ports/secondary"
)

// AllocationRepository implements secondary.AllocationRepository against the
// machine-wide registry store.
type AllocationRepository struct {
	db *sql.DB
}

// NewAllocationRepository creates a new registry repository.
func NewAllocationRepository(db *sql.DB) *AllocationRepository {
	return &AllocationRepository{db: db}
}

// GetOrAllocate returns the base port for projectPath, allocating the next
// block if none exists. The whole read-decide-write sequence runs in one
// write-exclusive transaction (the registry is opened with _txlock=immediate)
// so two racing processes can neither double-insert the same path nor compute
// the same next base. The uniqueness constraints on path and base port are
// the second line of defense.
func (r *AllocationRepository) GetOrAllocate(ctx context.Context, projectPath string, pid int) (int, error) {
	var base int
	err := withBusyRetry(ctx, func() error {
		tx, err := r.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer tx.Rollback()

		err = tx.QueryRowContext(ctx,
			"SELECT base_port FROM port_allocations WHERE project_path = ?", projectPath,
		).Scan(&base)
		if err == nil {
			if _, err := tx.ExecContext(ctx,
				"UPDATE port_allocations SET pid = ?, last_used_at = CURRENT_TIMESTAMP WHERE project_path = ?",
				pid, projectPath,
			); err != nil {
				return err
			}
			return tx.Commit()
		}
		if err != sql.ErrNoRows {
			return err
		}

		rows, err := tx.QueryContext(ctx, "SELECT base_port FROM port_allocations")
		if err != nil {
			return err
		}
		var existing []int
		for rows.Next() {
			var b int
			if err := rows.Scan(&b); err != nil {
				rows.Close()
				return err
			}
			existing = append(existing, b)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		next, ok := portlayout.NextBase(existing)
		if !ok {
			return fmt.Errorf("no port blocks left (%d of %d allocated): %w",
				len(existing), portlayout.MaxBlocks, fault.ErrCapacity)
		}

		if _, err := tx.ExecContext(ctx,
			"INSERT INTO port_allocations (project_path, base_port, pid) VALUES (?, ?, ?)",
			projectPath, next, pid,
		); err != nil {
			return err
		}
		base = next
		return tx.Commit()
	})
	if err != nil {
		return 0, mapErr(err)
	}
	return base, nil
}

// List returns every allocation row ordered by base port.
func (r *AllocationRepository) List(ctx context.Context) ([]*secondary.AllocationRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT project_path, base_port, COALESCE(pid, 0), registered_at, last_used_at FROM port_allocations ORDER BY base_port",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list allocations: %w", mapErr(err))
	}
	defer rows.Close()

	var records []*secondary.AllocationRecord
	for rows.Next() {
		var registeredAt, lastUsedAt time.Time
		rec := &secondary.AllocationRecord{}
		if err := rows.Scan(&rec.ProjectPath, &rec.BasePort, &rec.Pid, &registeredAt, &lastUsedAt); err != nil {
			return nil, fmt.Errorf("failed to scan allocation: %w", err)
		}
		rec.RegisteredAt = registeredAt.Format(time.RFC3339)
		rec.LastUsedAt = lastUsedAt.Format(time.RFC3339)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Remove deletes the allocation for a project path.
func (r *AllocationRepository) Remove(ctx context.Context, projectPath string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM port_allocations WHERE project_path = ?", projectPath)
	if err != nil {
		return fmt.Errorf("failed to remove allocation: %w", mapErr(err))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("allocation for %s: %w", projectPath, fault.ErrNotFound)
	}
	return nil
}

// ClearPid nulls the owning pid while keeping the allocation, so the project
// keeps its port block across restarts.
func (r *AllocationRepository) ClearPid(ctx context.Context, projectPath string) error {
	res, err := r.db.ExecContext(ctx, "UPDATE port_allocations SET pid = NULL WHERE project_path = ?", projectPath)
	if err != nil {
		return fmt.Errorf("failed to clear pid: %w", mapErr(err))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("allocation for %s: %w", projectPath, fault.ErrNotFound)
	}
	return nil
}

var _ secondary.AllocationRepository = (*AllocationRepository)(nil)
