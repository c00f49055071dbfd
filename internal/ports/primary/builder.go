package primary

import (
	"context"

	"github.com/example/af/internal/core/builder"
	"github.com/example/af/internal/ports/secondary"
)

// BuilderService is the primary port for the builder lifecycle manager.
type BuilderService interface {
	// Spawn provisions a new builder: port, workspace, branch, session,
	// store row in the initial status.
	Spawn(ctx context.Context, req SpawnRequest) (*SpawnResponse, error)

	// SetStatus applies a declared status transition. Unknown builders are
	// a not-found error; undeclared transitions are rejected.
	SetStatus(ctx context.Context, id string, status builder.Status) error

	// SetPhase updates the informational phase label.
	SetPhase(ctx context.Context, id, phase string) error

	// Cleanup drives the complete path: kill the session, optionally
	// remove the workspace, delete the row. It works regardless of the
	// recorded status and tolerates already-gone resources. Workspace
	// removal refuses on uncommitted changes unless forced; refusal
	// happens before anything is torn down.
	Cleanup(ctx context.Context, id string, opts CleanupOptions) error

	// Get returns one builder record.
	Get(ctx context.Context, id string) (*secondary.BuilderRecord, error)

	// List returns all builder records.
	List(ctx context.Context) ([]*secondary.BuilderRecord, error)
}

// SpawnRequest describes the builder to provision. Exactly one of SpecNumber,
// Task, or Protocol is meaningful depending on Kind; bare kinds need neither.
type SpawnRequest struct {
	Kind       builder.Kind
	SpecNumber int    // Kind == spec
	Task       string // Kind == task
	Protocol   string // Kind == protocol
	Name       string // optional display name; defaults to the id
}

// SpawnResponse reports the provisioned resources.
type SpawnResponse struct {
	Builder *secondary.BuilderRecord
}

// CleanupOptions controls the complete path.
type CleanupOptions struct {
	// RemoveWorkspace also removes the worktree. The branch and history
	// are preserved by policy.
	RemoveWorkspace bool

	// Force bypasses the uncommitted-changes check.
	Force bool
}
