package app

import (
	"context"

	"github.com/example/af/internal/ports/primary"
	"github.com/example/af/internal/ports/secondary"
)

// StatusServiceImpl implements the StatusService interface.
type StatusServiceImpl struct {
	snapshots secondary.SnapshotRepository
}

// NewStatusService creates a new StatusService with injected dependencies.
func NewStatusService(snapshots secondary.SnapshotRepository) *StatusServiceImpl {
	return &StatusServiceImpl{snapshots: snapshots}
}

// Snapshot returns the full current contents of the store.
func (s *StatusServiceImpl) Snapshot(ctx context.Context) (*secondary.Snapshot, error) {
	return s.snapshots.LoadAll(ctx)
}

// Ensure StatusServiceImpl implements the interface
var _ primary.StatusService = (*StatusServiceImpl)(nil)
