package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"github.com/example/af/internal/config"
	"github.com/example/af/internal/core/builder"
	"github.com/example/af/internal/core/portlayout"
	"github.com/example/af/internal/core/session"
	"github.com/example/af/internal/fault"
	"github.com/example/af/internal/ports/primary"
	"github.com/example/af/internal/ports/secondary"
)

// BuilderServiceImpl implements the BuilderService interface.
type BuilderServiceImpl struct {
	builders    secondary.BuilderRepository
	snapshots   secondary.SnapshotRepository
	sessions    secondary.SessionAdapter
	workspaces  secondary.WorkspaceAdapter
	probe       secondary.LivenessProbe
	cfg         *config.Project
	layout      portlayout.Layout
	projectPath string
}

// NewBuilderService creates a new BuilderService with injected dependencies.
func NewBuilderService(
	builders secondary.BuilderRepository,
	snapshots secondary.SnapshotRepository,
	sessions secondary.SessionAdapter,
	workspaces secondary.WorkspaceAdapter,
	probe secondary.LivenessProbe,
	cfg *config.Project,
	layout portlayout.Layout,
	projectPath string,
) *BuilderServiceImpl {
	return &BuilderServiceImpl{
		builders:    builders,
		snapshots:   snapshots,
		sessions:    sessions,
		workspaces:  workspaces,
		probe:       probe,
		cfg:         cfg,
		layout:      layout,
		projectPath: projectPath,
	}
}

// Spawn provisions a new builder: port, workspace, branch, session, store
// row. Provisioning is not transactional across the session layer, so later
// steps roll back earlier ones on failure.
func (s *BuilderServiceImpl) Spawn(ctx context.Context, req primary.SpawnRequest) (*primary.SpawnResponse, error) {
	if !builder.ValidKind(req.Kind) {
		return nil, fmt.Errorf("%w: unknown builder kind %q", fault.ErrConflict, req.Kind)
	}

	// 1. Derive the identifier. Spec builders get stable ids, so a repeat
	// spawn for the same spec is caught here instead of at insert.
	var id string
	if req.Kind == builder.KindSpec {
		if req.SpecNumber <= 0 {
			return nil, fmt.Errorf("%w: spec builders need a positive spec number", fault.ErrConflict)
		}
		id = builder.SpecID(req.SpecNumber)
		if _, err := s.builders.GetByID(ctx, id); err == nil {
			return nil, fmt.Errorf("%w: builder %s already exists", fault.ErrConflict, id)
		}
	} else {
		id = builder.NewID(req.Kind)
	}
	name := req.Name
	if name == "" {
		name = id
	}

	// 2. Reserve a port from the builder range.
	port, err := reservePort(ctx, s.snapshots, s.probe, s.layout.BuilderPorts())
	if err != nil {
		return nil, err
	}

	// 3. Workspace and branch for kinds that get one.
	workingDir := s.projectPath
	var workspacePath, branch string
	if req.Kind.NeedsWorkspace() {
		workspacePath = filepath.Join(s.cfg.WorktreeDir, builder.WorkspaceDirName(id))
		branch = builder.BranchName(id)
		if err := os.MkdirAll(s.cfg.WorktreeDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create worktree base dir: %w", err)
		}
		if err := s.workspaces.CreateWorktree(ctx, s.projectPath, branch, workspacePath); err != nil {
			return nil, fmt.Errorf("failed to create workspace: %w", err)
		}
		workingDir = workspacePath
	}

	// 4. Session, with the agent for agent-running kinds.
	command := ""
	if req.Kind.RunsAgent() {
		command = s.cfg.AgentCommand
	}
	sessionName := session.Name(s.cfg.SessionPrefix, session.KindBuilder, port)
	pid, err := s.sessions.NewSession(ctx, sessionName, workingDir, command)
	if err != nil {
		s.rollbackWorkspace(ctx, workspacePath)
		return nil, fmt.Errorf("failed to start session: %w", err)
	}

	// 5. Persist. The port uniqueness constraint is the last word on
	// concurrent spawns; losing the race tears everything back down.
	rec := &secondary.BuilderRecord{
		ID:            id,
		Name:          name,
		Port:          port,
		Pid:           pid,
		Status:        string(builder.StatusSpawning),
		Kind:          string(req.Kind),
		Task:          req.Task,
		Protocol:      req.Protocol,
		WorkspacePath: workspacePath,
		Branch:        branch,
		Session:       sessionName,
	}
	if err := s.builders.Insert(ctx, rec); err != nil {
		if killErr := s.sessions.KillSession(ctx, sessionName); killErr != nil {
			log.WithError(killErr).WithField("session", sessionName).Warn("failed to roll back session")
		}
		s.rollbackWorkspace(ctx, workspacePath)
		return nil, fmt.Errorf("failed to record builder: %w", err)
	}

	stored, err := s.builders.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to read back builder: %w", err)
	}
	log.WithFields(log.Fields{"builder": id, "port": port, "session": sessionName}).Info("builder spawned")
	return &primary.SpawnResponse{Builder: stored}, nil
}

func (s *BuilderServiceImpl) rollbackWorkspace(ctx context.Context, workspacePath string) {
	if workspacePath == "" {
		return
	}
	if err := s.workspaces.RemoveWorktree(ctx, s.projectPath, workspacePath); err != nil {
		log.WithError(err).WithField("path", workspacePath).Warn("failed to roll back workspace")
	}
}

// SetStatus applies a declared status transition.
func (s *BuilderServiceImpl) SetStatus(ctx context.Context, id string, status builder.Status) error {
	if !builder.ValidStatus(status) {
		return fmt.Errorf("%w: undeclared status %q", fault.ErrConflict, status)
	}

	rec, err := s.builders.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("builder %s: %w", id, err)
	}
	from := builder.Status(rec.Status)
	if !builder.CanTransition(from, status) {
		return fmt.Errorf("%w: builder %s cannot move from %s to %s", fault.ErrConflict, id, from, status)
	}

	if err := s.builders.SetStatus(ctx, id, string(status)); err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}
	log.WithFields(log.Fields{"builder": id, "from": from, "to": status}).Info("builder status changed")
	return nil
}

// SetPhase updates the informational phase label. Phase is free text and
// carries no transition rules.
func (s *BuilderServiceImpl) SetPhase(ctx context.Context, id, phase string) error {
	if err := s.builders.SetPhase(ctx, id, phase); err != nil {
		return fmt.Errorf("failed to update phase: %w", err)
	}
	return nil
}

// Cleanup drives the complete path: kill the session, optionally remove the
// workspace, delete the row. The dirty check runs before anything is torn
// down so a refusal leaves the builder fully intact for a forced retry.
func (s *BuilderServiceImpl) Cleanup(ctx context.Context, id string, opts primary.CleanupOptions) error {
	rec, err := s.builders.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("builder %s: %w", id, err)
	}

	if opts.RemoveWorkspace && rec.WorkspacePath != "" && !opts.Force {
		exists, err := s.workspaces.WorktreeExists(ctx, rec.WorkspacePath)
		if err != nil {
			return fmt.Errorf("failed to check workspace: %w", err)
		}
		if exists {
			dirty, err := s.workspaces.IsDirty(ctx, rec.WorkspacePath)
			if err != nil {
				return fmt.Errorf("failed to check workspace: %w", err)
			}
			if dirty {
				return fmt.Errorf("%w: workspace %s has uncommitted changes", fault.ErrBusy, rec.WorkspacePath)
			}
		}
	}

	if rec.Session != "" {
		if err := s.sessions.KillSession(ctx, rec.Session); err != nil && !errors.Is(err, fault.ErrNotFound) {
			return fmt.Errorf("failed to kill session: %w", err)
		}
	}

	if opts.RemoveWorkspace && rec.WorkspacePath != "" {
		if err := s.workspaces.RemoveWorktree(ctx, s.projectPath, rec.WorkspacePath); err != nil {
			return fmt.Errorf("failed to remove workspace: %w", err)
		}
	}

	if err := s.builders.Remove(ctx, id); err != nil {
		return fmt.Errorf("failed to delete builder: %w", err)
	}
	log.WithFields(log.Fields{"builder": id, "port": rec.Port}).Info("builder cleaned up")
	return nil
}

// Get returns one builder record.
func (s *BuilderServiceImpl) Get(ctx context.Context, id string) (*secondary.BuilderRecord, error) {
	return s.builders.GetByID(ctx, id)
}

// List returns all builder records.
func (s *BuilderServiceImpl) List(ctx context.Context) ([]*secondary.BuilderRecord, error) {
	return s.builders.List(ctx)
}

// Ensure BuilderServiceImpl implements the interface
var _ primary.BuilderService = (*BuilderServiceImpl)(nil)
