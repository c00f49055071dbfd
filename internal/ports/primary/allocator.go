// Package primary defines the primary ports (driving interfaces) for the
// application services.
package primary

import (
	"context"

	"github.com/example/af/internal/core/portlayout"
	"github.com/example/af/internal/ports/secondary"
)

// PortService is the primary port for the cross-project resource allocator.
type PortService interface {
	// GetOrAllocate canonicalizes the project path and returns its port
	// layout, allocating a fresh block on first request.
	GetOrAllocate(ctx context.Context, projectPath string) (portlayout.Layout, error)

	// List returns every registry row.
	List(ctx context.Context) ([]*secondary.AllocationRecord, error)

	// CleanupStale garbage-collects the registry: allocations for vanished
	// project paths are deleted, dead owning pids are cleared. Individual
	// row failures are logged and skipped, never fatal.
	CleanupStale(ctx context.Context) (*CleanupReport, error)
}

// CleanupReport summarizes one registry garbage collection pass.
type CleanupReport struct {
	Removed     []string // project paths whose allocations were deleted
	PidsCleared []string // project paths whose dead pids were cleared
	Skipped     []string // project paths whose cleanup failed
}
