package app

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/example/af/internal/config"
	"github.com/example/af/internal/core/portlayout"
	"github.com/example/af/internal/core/session"
	"github.com/example/af/internal/fault"
	"github.com/example/af/internal/ports/primary"
	"github.com/example/af/internal/ports/secondary"
)

// ArchitectServiceImpl implements the ArchitectService interface. The
// architect is a per-project singleton pinned to base+1.
type ArchitectServiceImpl struct {
	architects  secondary.ArchitectRepository
	sessions    secondary.SessionAdapter
	probe       secondary.LivenessProbe
	cfg         *config.Project
	layout      portlayout.Layout
	projectPath string
}

// NewArchitectService creates a new ArchitectService with injected dependencies.
func NewArchitectService(
	architects secondary.ArchitectRepository,
	sessions secondary.SessionAdapter,
	probe secondary.LivenessProbe,
	cfg *config.Project,
	layout portlayout.Layout,
	projectPath string,
) *ArchitectServiceImpl {
	return &ArchitectServiceImpl{
		architects:  architects,
		sessions:    sessions,
		probe:       probe,
		cfg:         cfg,
		layout:      layout,
		projectPath: projectPath,
	}
}

// Start records and launches the architect. A stale record, meaning its pid
// is dead or its session is gone, is replaced wholesale; a live one is a
// conflict.
func (s *ArchitectServiceImpl) Start(ctx context.Context, req primary.StartArchitectRequest) (*secondary.ArchitectRecord, error) {
	existing, err := s.architects.Get(ctx)
	if err != nil && !errors.Is(err, fault.ErrNotFound) {
		return nil, fmt.Errorf("failed to read architect: %w", err)
	}
	if err == nil {
		alive := s.probe.PidAlive(existing.Pid) && s.sessions.HasSession(ctx, existing.Session)
		if alive {
			return nil, fmt.Errorf("%w: architect already running (pid %d, session %s)", fault.ErrConflict, existing.Pid, existing.Session)
		}
		// Stale leftovers get swept before the replacement starts.
		if killErr := s.sessions.KillSession(ctx, existing.Session); killErr != nil && !errors.Is(killErr, fault.ErrNotFound) {
			log.WithError(killErr).WithField("session", existing.Session).Warn("failed to kill stale architect session")
		}
		log.WithFields(log.Fields{"pid": existing.Pid, "session": existing.Session}).Info("replacing stale architect record")
	}

	command := req.Command
	if command == "" {
		command = s.cfg.AgentCommand
	}
	port := s.layout.Architect()
	name := session.Name(s.cfg.SessionPrefix, session.KindArchitect, port)

	pid, err := s.sessions.NewSession(ctx, name, s.projectPath, command)
	if err != nil {
		return nil, fmt.Errorf("failed to start architect session: %w", err)
	}

	if err := s.architects.Set(ctx, &secondary.ArchitectRecord{
		Pid:     pid,
		Port:    port,
		Command: command,
		Session: name,
	}); err != nil {
		if killErr := s.sessions.KillSession(ctx, name); killErr != nil {
			log.WithError(killErr).WithField("session", name).Warn("failed to roll back architect session")
		}
		return nil, fmt.Errorf("failed to record architect: %w", err)
	}

	log.WithFields(log.Fields{"pid": pid, "port": port, "session": name}).Info("architect started")
	return s.architects.Get(ctx)
}

// Stop kills the architect session and deletes the record.
func (s *ArchitectServiceImpl) Stop(ctx context.Context) error {
	rec, err := s.architects.Get(ctx)
	if err != nil {
		return fmt.Errorf("architect: %w", err)
	}

	if err := s.sessions.KillSession(ctx, rec.Session); err != nil && !errors.Is(err, fault.ErrNotFound) {
		return fmt.Errorf("failed to kill architect session: %w", err)
	}
	if err := s.architects.Remove(ctx); err != nil {
		return fmt.Errorf("failed to delete architect record: %w", err)
	}
	log.WithField("session", rec.Session).Info("architect stopped")
	return nil
}

// Get returns the recorded architect.
func (s *ArchitectServiceImpl) Get(ctx context.Context) (*secondary.ArchitectRecord, error) {
	return s.architects.Get(ctx)
}

// Ensure ArchitectServiceImpl implements the interface
var _ primary.ArchitectService = (*ArchitectServiceImpl)(nil)
