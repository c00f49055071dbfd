package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"github.com/example/af/internal/core/portlayout"
	"github.com/example/af/internal/core/session"
	"github.com/example/af/internal/fault"
	"github.com/example/af/internal/ports/primary"
	"github.com/example/af/internal/ports/secondary"
)

// legacyMarkerNames are files left behind by the retired process-supervision
// approach. They are reported for manual removal, never deleted.
var legacyMarkerNames = []string{"supervisor.pid", "watchdog.pid", "daemon.lock"}

// ReconcileServiceImpl implements the ReconcileService interface. Ownership
// is decided by the port embedded in the session name, never by the name
// alone: a session counts as ours only when its port falls inside this
// project's block.
type ReconcileServiceImpl struct {
	sessions    secondary.SessionAdapter
	probe       secondary.LivenessProbe
	prefix      string
	layout      portlayout.Layout
	projectPath string
}

// NewReconcileService creates a new ReconcileService with injected dependencies.
func NewReconcileService(
	sessions secondary.SessionAdapter,
	probe secondary.LivenessProbe,
	prefix string,
	layout portlayout.Layout,
	projectPath string,
) *ReconcileServiceImpl {
	return &ReconcileServiceImpl{
		sessions:    sessions,
		probe:       probe,
		prefix:      prefix,
		layout:      layout,
		projectPath: projectPath,
	}
}

// Reconcile enumerates live sessions and scopes them to this project's port
// block. Two projects can both run, say, an architect session; the embedded
// port tells them apart.
func (s *ReconcileServiceImpl) Reconcile(ctx context.Context, opts primary.ReconcileOptions) (*primary.ReconcileReport, error) {
	names, err := s.sessions.ListSessions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	report := &primary.ReconcileReport{}
	for _, name := range names {
		kind, port, ok := session.Parse(name, s.prefix)
		if !ok {
			continue
		}
		if !s.layout.Contains(port) {
			continue
		}
		// The architect lives at exactly base+1; an architect session on
		// any other port of the block is someone's stray rename, not
		// ours to kill.
		if kind == session.KindArchitect && port != s.layout.Architect() {
			continue
		}
		report.Matched = append(report.Matched, name)

		if !opts.Silent {
			log.WithFields(log.Fields{"session": name, "kind": kind, "port": port}).Info("session matched to this project")
		}
		if !opts.Kill {
			continue
		}
		if err := s.sessions.KillSession(ctx, name); err != nil {
			if errors.Is(err, fault.ErrNotFound) {
				continue
			}
			log.WithError(err).WithField("session", name).Warn("failed to kill session")
			report.Failed = append(report.Failed, name)
			continue
		}
		if !opts.Silent {
			log.WithField("session", name).Info("session killed")
		}
		report.Killed = append(report.Killed, name)
	}
	return report, nil
}

// LegacyMarkers returns marker files from the retired supervision approach
// that still exist under the project's state directory.
func (s *ReconcileServiceImpl) LegacyMarkers() []string {
	var found []string
	for _, name := range legacyMarkerNames {
		path := filepath.Join(s.projectPath, ".af", name)
		if s.probe.PathExists(path) {
			found = append(found, path)
		}
	}
	return found
}

// Ensure ReconcileServiceImpl implements the interface
var _ primary.ReconcileService = (*ReconcileServiceImpl)(nil)
