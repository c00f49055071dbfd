package app

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/example/af/internal/config"
	"github.com/example/af/internal/core/builder"
	"github.com/example/af/internal/core/portlayout"
	"github.com/example/af/internal/core/session"
	"github.com/example/af/internal/fault"
	"github.com/example/af/internal/ports/primary"
	"github.com/example/af/internal/ports/secondary"
)

// UtilServiceImpl implements the UtilService interface. Utility terminals
// are plain shells in the project checkout with a reserved util-range port.
type UtilServiceImpl struct {
	utils       secondary.UtilRepository
	snapshots   secondary.SnapshotRepository
	sessions    secondary.SessionAdapter
	probe       secondary.LivenessProbe
	cfg         *config.Project
	layout      portlayout.Layout
	projectPath string
}

// NewUtilService creates a new UtilService with injected dependencies.
func NewUtilService(
	utils secondary.UtilRepository,
	snapshots secondary.SnapshotRepository,
	sessions secondary.SessionAdapter,
	probe secondary.LivenessProbe,
	cfg *config.Project,
	layout portlayout.Layout,
	projectPath string,
) *UtilServiceImpl {
	return &UtilServiceImpl{
		utils:       utils,
		snapshots:   snapshots,
		sessions:    sessions,
		probe:       probe,
		cfg:         cfg,
		layout:      layout,
		projectPath: projectPath,
	}
}

// Open allocates a util-range port and starts a bare shell session.
func (s *UtilServiceImpl) Open(ctx context.Context) (*secondary.UtilRecord, error) {
	port, err := reservePort(ctx, s.snapshots, s.probe, s.layout.UtilPorts())
	if err != nil {
		return nil, err
	}

	id := fmt.Sprintf("util-%s", builder.NewToken())
	name := session.Name(s.cfg.SessionPrefix, session.KindUtil, port)
	pid, err := s.sessions.NewSession(ctx, name, s.projectPath, "")
	if err != nil {
		return nil, fmt.Errorf("failed to start util session: %w", err)
	}

	rec := &secondary.UtilRecord{ID: id, Port: port, Pid: pid, Session: name}
	if err := s.utils.Insert(ctx, rec); err != nil {
		if killErr := s.sessions.KillSession(ctx, name); killErr != nil {
			log.WithError(killErr).WithField("session", name).Warn("failed to roll back util session")
		}
		return nil, fmt.Errorf("failed to record util: %w", err)
	}

	log.WithFields(log.Fields{"util": id, "port": port}).Info("util terminal opened")
	return s.utils.GetByID(ctx, id)
}

// Close kills the util session and deletes the record.
func (s *UtilServiceImpl) Close(ctx context.Context, id string) error {
	rec, err := s.utils.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("util %s: %w", id, err)
	}

	if err := s.sessions.KillSession(ctx, rec.Session); err != nil && !errors.Is(err, fault.ErrNotFound) {
		return fmt.Errorf("failed to kill util session: %w", err)
	}
	if err := s.utils.Remove(ctx, id); err != nil {
		return fmt.Errorf("failed to delete util record: %w", err)
	}
	log.WithField("util", id).Info("util terminal closed")
	return nil
}

// List returns all util records.
func (s *UtilServiceImpl) List(ctx context.Context) ([]*secondary.UtilRecord, error) {
	return s.utils.List(ctx)
}

// Ensure UtilServiceImpl implements the interface
var _ primary.UtilService = (*UtilServiceImpl)(nil)
