package app

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/example/af/internal/config"
	"github.com/example/af/internal/core/annotation"
	"github.com/example/af/internal/core/builder"
	"github.com/example/af/internal/core/portlayout"
	"github.com/example/af/internal/core/session"
	"github.com/example/af/internal/fault"
	"github.com/example/af/internal/ports/primary"
	"github.com/example/af/internal/ports/secondary"
)

// AnnotationServiceImpl implements the AnnotationService interface.
type AnnotationServiceImpl struct {
	annotations secondary.AnnotationRepository
	builders    secondary.BuilderRepository
	utils       secondary.UtilRepository
	snapshots   secondary.SnapshotRepository
	sessions    secondary.SessionAdapter
	probe       secondary.LivenessProbe
	cfg         *config.Project
	layout      portlayout.Layout
	projectPath string
}

// NewAnnotationService creates a new AnnotationService with injected dependencies.
func NewAnnotationService(
	annotations secondary.AnnotationRepository,
	builders secondary.BuilderRepository,
	utils secondary.UtilRepository,
	snapshots secondary.SnapshotRepository,
	sessions secondary.SessionAdapter,
	probe secondary.LivenessProbe,
	cfg *config.Project,
	layout portlayout.Layout,
	projectPath string,
) *AnnotationServiceImpl {
	return &AnnotationServiceImpl{
		annotations: annotations,
		builders:    builders,
		utils:       utils,
		snapshots:   snapshots,
		sessions:    sessions,
		probe:       probe,
		cfg:         cfg,
		layout:      layout,
		projectPath: projectPath,
	}
}

// Open starts a viewer session for file, grouped under parent. The parent
// reference is non-owning: it is validated at open time and never enforced
// afterwards, so closing the parent leaves annotations behind.
func (s *AnnotationServiceImpl) Open(ctx context.Context, file string, parent annotation.ParentRef) (*secondary.AnnotationRecord, error) {
	if err := parent.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", fault.ErrConflict, err)
	}
	switch parent.Kind {
	case annotation.ParentBuilder:
		if _, err := s.builders.GetByID(ctx, parent.ID); err != nil {
			return nil, fmt.Errorf("parent builder %s: %w", parent.ID, err)
		}
	case annotation.ParentUtil:
		if _, err := s.utils.GetByID(ctx, parent.ID); err != nil {
			return nil, fmt.Errorf("parent util %s: %w", parent.ID, err)
		}
	}

	port, err := reservePort(ctx, s.snapshots, s.probe, s.layout.AnnotationPorts())
	if err != nil {
		return nil, err
	}

	id := fmt.Sprintf("annotate-%s", builder.NewToken())
	name := session.Name(s.cfg.SessionPrefix, session.KindAnnotate, port)
	pid, err := s.sessions.NewSession(ctx, name, s.projectPath, "")
	if err != nil {
		return nil, fmt.Errorf("failed to start annotation session: %w", err)
	}

	rec := &secondary.AnnotationRecord{
		ID:         id,
		File:       file,
		Port:       port,
		Pid:        pid,
		Session:    name,
		ParentKind: string(parent.Kind),
		ParentID:   parent.ID,
	}
	if err := s.annotations.Insert(ctx, rec); err != nil {
		if killErr := s.sessions.KillSession(ctx, name); killErr != nil {
			log.WithError(killErr).WithField("session", name).Warn("failed to roll back annotation session")
		}
		return nil, fmt.Errorf("failed to record annotation: %w", err)
	}

	log.WithFields(log.Fields{"annotation": id, "file": file, "parent": parent.String()}).Info("annotation viewer opened")
	return s.annotations.GetByID(ctx, id)
}

// Close kills the viewer session and deletes the record.
func (s *AnnotationServiceImpl) Close(ctx context.Context, id string) error {
	rec, err := s.annotations.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("annotation %s: %w", id, err)
	}

	if err := s.sessions.KillSession(ctx, rec.Session); err != nil && !errors.Is(err, fault.ErrNotFound) {
		return fmt.Errorf("failed to kill annotation session: %w", err)
	}
	if err := s.annotations.Remove(ctx, id); err != nil {
		return fmt.Errorf("failed to delete annotation record: %w", err)
	}
	log.WithField("annotation", id).Info("annotation viewer closed")
	return nil
}

// List returns all annotation records.
func (s *AnnotationServiceImpl) List(ctx context.Context) ([]*secondary.AnnotationRecord, error) {
	return s.annotations.List(ctx)
}

// Ensure AnnotationServiceImpl implements the interface
var _ primary.AnnotationService = (*AnnotationServiceImpl)(nil)
