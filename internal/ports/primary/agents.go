package primary

import (
	"context"

	"github.com/example/af/internal/core/annotation"
	"github.com/example/af/internal/ports/secondary"
)

// ArchitectService is the primary port for the architect singleton.
type ArchitectService interface {
	// Start records and launches the architect. A stale record (dead pid,
	// gone session) is replaced wholesale; a live one is a conflict.
	Start(ctx context.Context, req StartArchitectRequest) (*secondary.ArchitectRecord, error)

	// Stop kills the architect session and deletes the record.
	Stop(ctx context.Context) error

	// Get returns the recorded architect.
	Get(ctx context.Context) (*secondary.ArchitectRecord, error)
}

// StartArchitectRequest configures the architect launch.
type StartArchitectRequest struct {
	// Command overrides the configured agent command when non-empty.
	Command string
}

// UtilService is the primary port for utility terminals.
type UtilService interface {
	Open(ctx context.Context) (*secondary.UtilRecord, error)
	Close(ctx context.Context, id string) error
	List(ctx context.Context) ([]*secondary.UtilRecord, error)
}

// AnnotationService is the primary port for annotation viewers.
type AnnotationService interface {
	// Open starts a viewer session for file, grouped under parent. Builder
	// and util parents must reference existing rows.
	Open(ctx context.Context, file string, parent annotation.ParentRef) (*secondary.AnnotationRecord, error)
	Close(ctx context.Context, id string) error
	List(ctx context.Context) ([]*secondary.AnnotationRecord, error)
}

// StatusService dumps the current store snapshot.
type StatusService interface {
	Snapshot(ctx context.Context) (*secondary.Snapshot, error)
}
