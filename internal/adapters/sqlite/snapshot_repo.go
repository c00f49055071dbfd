package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/example/af/internal/fault"
	"github.com/example/af/internal/ports/secondary"
)

// SnapshotRepository implements secondary.SnapshotRepository by composing the
// per-entity repositories over one database handle.
type SnapshotRepository struct {
	db          *sql.DB
	architects  *ArchitectRepository
	builders    *BuilderRepository
	utils       *UtilRepository
	annotations *AnnotationRepository
}

// NewSnapshotRepository creates a new snapshot repository.
func NewSnapshotRepository(db *sql.DB) *SnapshotRepository {
	return &SnapshotRepository{
		db:          db,
		architects:  NewArchitectRepository(db),
		builders:    NewBuilderRepository(db),
		utils:       NewUtilRepository(db),
		annotations: NewAnnotationRepository(db),
	}
}

// LoadAll returns the full current snapshot of the store.
func (r *SnapshotRepository) LoadAll(ctx context.Context) (*secondary.Snapshot, error) {
	snap := &secondary.Snapshot{}

	architect, err := r.architects.Get(ctx)
	if err != nil && !errors.Is(err, fault.ErrNotFound) {
		return nil, err
	}
	snap.Architect = architect

	if snap.Builders, err = r.builders.List(ctx); err != nil {
		return nil, err
	}
	if snap.Utils, err = r.utils.List(ctx); err != nil {
		return nil, err
	}
	if snap.Annotations, err = r.annotations.List(ctx); err != nil {
		return nil, err
	}
	return snap, nil
}

// UsedPorts returns every port currently assigned to any entity in the store.
func (r *SnapshotRepository) UsedPorts(ctx context.Context) ([]int, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT port FROM architect
		UNION SELECT port FROM builders
		UNION SELECT port FROM utils
		UNION SELECT port FROM annotations
		ORDER BY port`)
	if err != nil {
		return nil, fmt.Errorf("failed to query used ports: %w", mapErr(err))
	}
	defer rows.Close()

	var ports []int
	for rows.Next() {
		var p int
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("failed to scan port: %w", err)
		}
		ports = append(ports, p)
	}
	return ports, rows.Err()
}

var _ secondary.SnapshotRepository = (*SnapshotRepository)(nil)
