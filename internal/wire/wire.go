// Package wire provides dependency injection for the af application.
// It creates singleton services with lazy initialization, split into a
// registry level (machine-wide, no project context) and a project level
// (bound to the current working directory).
package wire

import (
	"context"
	"os"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/example/af/internal/adapters/filesystem"
	liveprobe "github.com/example/af/internal/adapters/probe"
	"github.com/example/af/internal/adapters/sqlite"
	"github.com/example/af/internal/adapters/tmux"
	"github.com/example/af/internal/app"
	"github.com/example/af/internal/config"
	"github.com/example/af/internal/db"
	"github.com/example/af/internal/ports/primary"
)

var (
	registryOnce sync.Once
	portService  primary.PortService
)

var (
	projectOnce       sync.Once
	projectPath       string
	builderService    primary.BuilderService
	architectService  primary.ArchitectService
	utilService       primary.UtilService
	annotationService primary.AnnotationService
	statusService     primary.StatusService
	reconcileService  primary.ReconcileService
)

// PortService returns the singleton PortService instance.
func PortService() primary.PortService {
	registryOnce.Do(initRegistry)
	return portService
}

// BuilderService returns the singleton BuilderService instance.
func BuilderService() primary.BuilderService {
	projectOnce.Do(initProject)
	return builderService
}

// ArchitectService returns the singleton ArchitectService instance.
func ArchitectService() primary.ArchitectService {
	projectOnce.Do(initProject)
	return architectService
}

// UtilService returns the singleton UtilService instance.
func UtilService() primary.UtilService {
	projectOnce.Do(initProject)
	return utilService
}

// AnnotationService returns the singleton AnnotationService instance.
func AnnotationService() primary.AnnotationService {
	projectOnce.Do(initProject)
	return annotationService
}

// StatusService returns the singleton StatusService instance.
func StatusService() primary.StatusService {
	projectOnce.Do(initProject)
	return statusService
}

// ReconcileService returns the singleton ReconcileService instance.
func ReconcileService() primary.ReconcileService {
	projectOnce.Do(initProject)
	return reconcileService
}

// ProjectPath returns the canonical path of the current project.
func ProjectPath() string {
	projectOnce.Do(initProject)
	return projectPath
}

// initRegistry wires the machine-wide registry services.
func initRegistry() {
	database, err := db.OpenRegistry()
	if err != nil {
		log.Fatalf("failed to open port registry: %v", err)
	}
	portService = app.NewPortService(sqlite.NewAllocationRepository(database), liveprobe.NewLiveness())
}

// initProject wires the project-level services for the current working
// directory. The port block is resolved here because every project command
// needs it, and resolving it registers the project on first contact.
func initProject() {
	cwd, err := os.Getwd()
	if err != nil {
		log.Fatalf("failed to get working directory: %v", err)
	}
	canonical, err := app.CanonicalProjectPath(cwd)
	if err != nil {
		log.Fatalf("failed to resolve project path: %v", err)
	}
	projectPath = canonical

	cfg, err := config.LoadProject(canonical)
	if err != nil {
		log.Fatalf("failed to load project config: %v", err)
	}

	layout, err := PortService().GetOrAllocate(context.Background(), canonical)
	if err != nil {
		log.Fatalf("failed to resolve port block: %v", err)
	}

	database, err := db.OpenProject(canonical)
	if err != nil {
		log.Fatalf("failed to open project store: %v", err)
	}

	sessions, err := tmux.NewAdapter()
	if err != nil {
		log.Fatalf("failed to create tmux adapter: %v", err)
	}
	workspaces := filesystem.NewWorkspaceAdapter()
	probe := liveprobe.NewLiveness()

	architects := sqlite.NewArchitectRepository(database)
	builders := sqlite.NewBuilderRepository(database)
	utils := sqlite.NewUtilRepository(database)
	annotations := sqlite.NewAnnotationRepository(database)
	snapshots := sqlite.NewSnapshotRepository(database)

	builderService = app.NewBuilderService(builders, snapshots, sessions, workspaces, probe, cfg, layout, canonical)
	architectService = app.NewArchitectService(architects, sessions, probe, cfg, layout, canonical)
	utilService = app.NewUtilService(utils, snapshots, sessions, probe, cfg, layout, canonical)
	annotationService = app.NewAnnotationService(annotations, builders, utils, snapshots, sessions, probe, cfg, layout, canonical)
	statusService = app.NewStatusService(snapshots)
	reconcileService = app.NewReconcileService(sessions, probe, cfg.SessionPrefix, layout, canonical)
}
