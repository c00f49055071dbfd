// Package app contains the application services behind the primary ports.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"github.com/example/af/internal/core/portlayout"
	"github.com/example/af/internal/ports/primary"
	"github.com/example/af/internal/ports/secondary"
)

// PortServiceImpl implements the PortService interface.
type PortServiceImpl struct {
	allocations secondary.AllocationRepository
	probe       secondary.LivenessProbe
}

// NewPortService creates a new PortService with injected dependencies.
func NewPortService(allocations secondary.AllocationRepository, probe secondary.LivenessProbe) *PortServiceImpl {
	return &PortServiceImpl{
		allocations: allocations,
		probe:       probe,
	}
}

// CanonicalProjectPath resolves a project path to its canonical absolute
// form. Two spellings of the same directory must map to the same registry
// row, so symlinks are resolved when the path exists.
func CanonicalProjectPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve project path: %w", err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		// Path may not exist yet; the cleaned absolute form still
		// identifies it.
		return abs, nil
	}
	return resolved, nil
}

// GetOrAllocate returns the port layout for a project, allocating a fresh
// block on first request.
func (s *PortServiceImpl) GetOrAllocate(ctx context.Context, projectPath string) (portlayout.Layout, error) {
	canonical, err := CanonicalProjectPath(projectPath)
	if err != nil {
		return portlayout.Layout{}, err
	}

	base, err := s.allocations.GetOrAllocate(ctx, canonical, os.Getpid())
	if err != nil {
		return portlayout.Layout{}, fmt.Errorf("failed to allocate port block: %w", err)
	}

	log.WithFields(log.Fields{"project": canonical, "base": base}).Debug("port block resolved")
	return portlayout.Layout{Base: base}, nil
}

// List returns every registry row.
func (s *PortServiceImpl) List(ctx context.Context) ([]*secondary.AllocationRecord, error) {
	return s.allocations.List(ctx)
}

// CleanupStale garbage-collects the registry. Allocations whose project
// directory vanished are deleted; dead owning pids are cleared while the
// allocation is retained so the project keeps its block. Row failures are
// logged and skipped.
func (s *PortServiceImpl) CleanupStale(ctx context.Context) (*primary.CleanupReport, error) {
	records, err := s.allocations.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list allocations: %w", err)
	}

	report := &primary.CleanupReport{}
	for _, rec := range records {
		if !s.probe.PathExists(rec.ProjectPath) {
			if err := s.allocations.Remove(ctx, rec.ProjectPath); err != nil {
				log.WithError(err).WithField("project", rec.ProjectPath).Warn("failed to remove stale allocation")
				report.Skipped = append(report.Skipped, rec.ProjectPath)
				continue
			}
			log.WithFields(log.Fields{"project": rec.ProjectPath, "base": rec.BasePort}).Info("removed allocation for vanished project")
			report.Removed = append(report.Removed, rec.ProjectPath)
			continue
		}

		if rec.Pid != 0 && !s.probe.PidAlive(rec.Pid) {
			if err := s.allocations.ClearPid(ctx, rec.ProjectPath); err != nil {
				log.WithError(err).WithField("project", rec.ProjectPath).Warn("failed to clear dead pid")
				report.Skipped = append(report.Skipped, rec.ProjectPath)
				continue
			}
			log.WithFields(log.Fields{"project": rec.ProjectPath, "pid": rec.Pid}).Info("cleared dead owning pid")
			report.PidsCleared = append(report.PidsCleared, rec.ProjectPath)
		}
	}
	return report, nil
}

// Ensure PortServiceImpl implements the interface
var _ primary.PortService = (*PortServiceImpl)(nil)
