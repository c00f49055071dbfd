// Package secondary defines the secondary ports (driven adapters) for the
// application: persistence, session management, workspaces, and liveness
// probing.
package secondary

import "context"

// AllocationRepository is the secondary port for the machine-wide port
// registry.
type AllocationRepository interface {
	// GetOrAllocate returns the base port for a canonical project path,
	// allocating the next free block if none exists. The owning pid and
	// last-used timestamp are refreshed either way. The read-decide-write
	// sequence runs in a single write-exclusive transaction.
	GetOrAllocate(ctx context.Context, projectPath string, pid int) (int, error)

	// List returns every allocation row.
	List(ctx context.Context) ([]*AllocationRecord, error)

	// Remove deletes the allocation for a project path.
	Remove(ctx context.Context, projectPath string) error

	// ClearPid nulls the owning pid while retaining the allocation, so the
	// project keeps its port block across restarts.
	ClearPid(ctx context.Context, projectPath string) error
}

// AllocationRecord is one registry row.
type AllocationRecord struct {
	ProjectPath  string
	BasePort     int
	Pid          int // 0 when no owning process is recorded
	RegisteredAt string
	LastUsedAt   string
}

// ArchitectRepository is the secondary port for the architect singleton.
type ArchitectRepository interface {
	// Set records the architect, replacing any existing record wholesale.
	Set(ctx context.Context, architect *ArchitectRecord) error

	// Get returns the recorded architect, or a not-found error.
	Get(ctx context.Context) (*ArchitectRecord, error)

	// Remove deletes the architect record. Removing an absent record is a
	// not-found error so callers can report precisely.
	Remove(ctx context.Context) error
}

// ArchitectRecord is the architect singleton as stored.
type ArchitectRecord struct {
	Pid       int
	Port      int
	Command   string
	Session   string
	StartedAt string
}

// BuilderRepository is the secondary port for builder persistence.
type BuilderRepository interface {
	// Insert persists a new builder. A duplicate id or port is a conflict.
	Insert(ctx context.Context, builder *BuilderRecord) error

	// Upsert inserts or fully replaces the builder row with the given id.
	Upsert(ctx context.Context, builder *BuilderRecord) error

	// GetByID retrieves a builder, or a not-found error.
	GetByID(ctx context.Context, id string) (*BuilderRecord, error)

	// SetStatus updates only the status. Unknown ids are a not-found
	// error, never a silent insert.
	SetStatus(ctx context.Context, id, status string) error

	// SetPhase updates the informational phase label.
	SetPhase(ctx context.Context, id, phase string) error

	// Remove deletes a builder row, freeing its port by absence.
	Remove(ctx context.Context, id string) error

	// List returns all builders ordered by creation time.
	List(ctx context.Context) ([]*BuilderRecord, error)
}

// BuilderRecord is a builder as stored.
type BuilderRecord struct {
	ID            string
	Name          string
	Port          int
	Pid           int
	Status        string
	Phase         string
	WorkspacePath string
	Branch        string
	Session       string
	Kind          string
	Task          string
	Protocol      string
	CreatedAt     string
	UpdatedAt     string
}

// UtilRepository is the secondary port for utility terminals.
type UtilRepository interface {
	Insert(ctx context.Context, util *UtilRecord) error
	GetByID(ctx context.Context, id string) (*UtilRecord, error)
	Remove(ctx context.Context, id string) error
	List(ctx context.Context) ([]*UtilRecord, error)
}

// UtilRecord is a utility terminal as stored.
type UtilRecord struct {
	ID        string
	Port      int
	Pid       int
	Session   string
	CreatedAt string
}

// AnnotationRepository is the secondary port for annotation viewers.
type AnnotationRepository interface {
	Insert(ctx context.Context, annotation *AnnotationRecord) error
	GetByID(ctx context.Context, id string) (*AnnotationRecord, error)
	Remove(ctx context.Context, id string) error
	List(ctx context.Context) ([]*AnnotationRecord, error)
}

// AnnotationRecord is an annotation viewer as stored. ParentID is empty for
// the architect parent kind.
type AnnotationRecord struct {
	ID         string
	File       string
	Port       int
	Pid        int
	Session    string
	ParentKind string
	ParentID   string
	CreatedAt  string
}

// SnapshotRepository reads the store as a whole.
type SnapshotRepository interface {
	// LoadAll returns the full current snapshot of the store.
	LoadAll(ctx context.Context) (*Snapshot, error)

	// UsedPorts returns every port currently assigned to any entity.
	UsedPorts(ctx context.Context) ([]int, error)
}

// Snapshot is the full contents of the per-project store.
type Snapshot struct {
	Architect   *ArchitectRecord // nil when no architect is recorded
	Builders    []*BuilderRecord
	Utils       []*UtilRecord
	Annotations []*AnnotationRecord
}
