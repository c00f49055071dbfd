package app

import (
	"context"
	"errors"
	"testing"

	"github.com/example/af/internal/config"
	"github.com/example/af/internal/core/builder"
	"github.com/example/af/internal/core/portlayout"
	"github.com/example/af/internal/fault"
	"github.com/example/af/internal/ports/primary"
)

type builderFixture struct {
	svc        *BuilderServiceImpl
	builders   *mockBuilderRepository
	sessions   *mockSessionAdapter
	workspaces *mockWorkspaceAdapter
	probe      *mockProbe
}

func newBuilderFixture(t *testing.T) *builderFixture {
	t.Helper()
	builders := newMockBuilderRepository()
	sessions := newMockSessionAdapter()
	workspaces := newMockWorkspaceAdapter()
	probe := newMockProbe()
	snapshots := &mockSnapshotRepository{builders: builders}
	cfg := &config.Project{
		SessionPrefix: "af",
		AgentCommand:  "agent",
		WorktreeDir:   t.TempDir(),
	}
	svc := NewBuilderService(builders, snapshots, sessions, workspaces, probe, cfg, portlayout.Layout{Base: 4200}, t.TempDir())
	return &builderFixture{svc: svc, builders: builders, sessions: sessions, workspaces: workspaces, probe: probe}
}

func TestBuilderService_SpawnSpecBuilder(t *testing.T) {
	f := newBuilderFixture(t)

	resp, err := f.svc.Spawn(context.Background(), primary.SpawnRequest{Kind: builder.KindSpec, SpecNumber: 7})
	if err != nil {
		t.Fatalf("Spawn failed: %v", err)
	}
	got := resp.Builder
	if got.ID != "spec-007" {
		t.Errorf("expected id spec-007, got %s", got.ID)
	}
	if got.Port != 4210 {
		t.Errorf("expected first builder port 4210, got %d", got.Port)
	}
	if got.Status != "spawning" {
		t.Errorf("expected status spawning, got %s", got.Status)
	}
	if got.Session != "af-builder-4210" {
		t.Errorf("expected session af-builder-4210, got %s", got.Session)
	}
	if got.Branch != "af/spec-007" {
		t.Errorf("expected branch af/spec-007, got %s", got.Branch)
	}
	if !f.workspaces.worktrees[got.WorkspacePath] {
		t.Error("expected worktree to be created")
	}
	if !f.sessions.HasSession(context.Background(), got.Session) {
		t.Error("expected session to be running")
	}
}

func TestBuilderService_SpawnSkipsTakenPorts(t *testing.T) {
	f := newBuilderFixture(t)
	ctx := context.Background()

	first, err := f.svc.Spawn(ctx, primary.SpawnRequest{Kind: builder.KindTask, Task: "one"})
	if err != nil {
		t.Fatalf("Spawn failed: %v", err)
	}
	// 4211 is held by some unrelated process the store never heard of.
	f.probe.busyPorts[4211] = true

	second, err := f.svc.Spawn(ctx, primary.SpawnRequest{Kind: builder.KindTask, Task: "two"})
	if err != nil {
		t.Fatalf("Spawn failed: %v", err)
	}
	if first.Builder.Port != 4210 || second.Builder.Port != 4212 {
		t.Errorf("expected ports 4210 and 4212, got %d and %d", first.Builder.Port, second.Builder.Port)
	}
}

func TestBuilderService_SpawnShellGetsNoWorkspace(t *testing.T) {
	f := newBuilderFixture(t)

	resp, err := f.svc.Spawn(context.Background(), primary.SpawnRequest{Kind: builder.KindShell})
	if err != nil {
		t.Fatalf("Spawn failed: %v", err)
	}
	if resp.Builder.WorkspacePath != "" || resp.Builder.Branch != "" {
		t.Errorf("shell builder should have no workspace, got %q / %q", resp.Builder.WorkspacePath, resp.Builder.Branch)
	}
	if len(f.workspaces.worktrees) != 0 {
		t.Error("no worktree should exist for a shell builder")
	}
}

func TestBuilderService_SpawnDuplicateSpecRejected(t *testing.T) {
	f := newBuilderFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Spawn(ctx, primary.SpawnRequest{Kind: builder.KindSpec, SpecNumber: 3}); err != nil {
		t.Fatalf("Spawn failed: %v", err)
	}
	_, err := f.svc.Spawn(ctx, primary.SpawnRequest{Kind: builder.KindSpec, SpecNumber: 3})
	if !errors.Is(err, fault.ErrConflict) {
		t.Errorf("expected conflict for duplicate spec, got %v", err)
	}
}

func TestBuilderService_SpawnExhaustedRangeIsCapacityError(t *testing.T) {
	f := newBuilderFixture(t)
	layout := portlayout.Layout{Base: 4200}
	for _, p := range layout.BuilderPorts() {
		f.probe.busyPorts[p] = true
	}

	_, err := f.svc.Spawn(context.Background(), primary.SpawnRequest{Kind: builder.KindTask, Task: "x"})
	if !errors.Is(err, fault.ErrCapacity) {
		t.Errorf("expected capacity error, got %v", err)
	}
}

func TestBuilderService_SpawnRollsBackOnStoreFailure(t *testing.T) {
	f := newBuilderFixture(t)
	f.builders.insertErr = errors.New("disk full")

	_, err := f.svc.Spawn(context.Background(), primary.SpawnRequest{Kind: builder.KindTask, Task: "x"})
	if err == nil {
		t.Fatal("expected spawn to fail")
	}
	if len(f.sessions.sessions) != 0 {
		t.Error("session should have been rolled back")
	}
	if len(f.workspaces.worktrees) != 0 {
		t.Error("worktree should have been rolled back")
	}
}

func TestBuilderService_SetStatusFollowsTransitions(t *testing.T) {
	f := newBuilderFixture(t)
	ctx := context.Background()

	resp, err := f.svc.Spawn(ctx, primary.SpawnRequest{Kind: builder.KindSpec, SpecNumber: 1})
	if err != nil {
		t.Fatalf("Spawn failed: %v", err)
	}
	id := resp.Builder.ID

	for _, next := range []builder.Status{
		builder.StatusImplementing,
		builder.StatusBlocked,
		builder.StatusImplementing,
		builder.StatusPRReady,
		builder.StatusComplete,
	} {
		if err := f.svc.SetStatus(ctx, id, next); err != nil {
			t.Fatalf("SetStatus to %s failed: %v", next, err)
		}
	}

	got, _ := f.svc.Get(ctx, id)
	if got.Status != "complete" {
		t.Errorf("expected complete, got %s", got.Status)
	}
}

func TestBuilderService_SetStatusRejectsUndeclaredTransition(t *testing.T) {
	f := newBuilderFixture(t)
	ctx := context.Background()

	resp, err := f.svc.Spawn(ctx, primary.SpawnRequest{Kind: builder.KindSpec, SpecNumber: 1})
	if err != nil {
		t.Fatalf("Spawn failed: %v", err)
	}

	// spawning -> complete is not declared.
	err = f.svc.SetStatus(ctx, resp.Builder.ID, builder.StatusComplete)
	if !errors.Is(err, fault.ErrConflict) {
		t.Errorf("expected conflict, got %v", err)
	}
	got, _ := f.svc.Get(ctx, resp.Builder.ID)
	if got.Status != "spawning" {
		t.Errorf("status should be unchanged, got %s", got.Status)
	}
}

func TestBuilderService_SetStatusRejectsUnknownStatusAndBuilder(t *testing.T) {
	f := newBuilderFixture(t)
	ctx := context.Background()

	if err := f.svc.SetStatus(ctx, "spec-001", builder.Status("paused")); !errors.Is(err, fault.ErrConflict) {
		t.Errorf("expected conflict for undeclared status, got %v", err)
	}
	if err := f.svc.SetStatus(ctx, "spec-404", builder.StatusImplementing); !errors.Is(err, fault.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestBuilderService_CleanupRemovesEverything(t *testing.T) {
	f := newBuilderFixture(t)
	ctx := context.Background()

	resp, err := f.svc.Spawn(ctx, primary.SpawnRequest{Kind: builder.KindSpec, SpecNumber: 2})
	if err != nil {
		t.Fatalf("Spawn failed: %v", err)
	}
	id := resp.Builder.ID

	if err := f.svc.Cleanup(ctx, id, primary.CleanupOptions{RemoveWorkspace: true}); err != nil {
		t.Fatalf("Cleanup failed: %v", err)
	}
	if _, err := f.svc.Get(ctx, id); !errors.Is(err, fault.ErrNotFound) {
		t.Error("builder row should be gone")
	}
	if len(f.sessions.sessions) != 0 {
		t.Error("session should be killed")
	}
	if len(f.workspaces.worktrees) != 0 {
		t.Error("worktree should be removed")
	}
}

func TestBuilderService_CleanupWorksFromAnyStatus(t *testing.T) {
	f := newBuilderFixture(t)
	ctx := context.Background()

	resp, err := f.svc.Spawn(ctx, primary.SpawnRequest{Kind: builder.KindSpec, SpecNumber: 2})
	if err != nil {
		t.Fatalf("Spawn failed: %v", err)
	}
	// Still in spawning; cleanup does not consult the transition table.
	if err := f.svc.Cleanup(ctx, resp.Builder.ID, primary.CleanupOptions{}); err != nil {
		t.Fatalf("Cleanup failed: %v", err)
	}
}

func TestBuilderService_CleanupToleratesDeadSession(t *testing.T) {
	f := newBuilderFixture(t)
	ctx := context.Background()

	resp, err := f.svc.Spawn(ctx, primary.SpawnRequest{Kind: builder.KindTask, Task: "x"})
	if err != nil {
		t.Fatalf("Spawn failed: %v", err)
	}
	// Session crashed out of band.
	delete(f.sessions.sessions, resp.Builder.Session)

	if err := f.svc.Cleanup(ctx, resp.Builder.ID, primary.CleanupOptions{}); err != nil {
		t.Fatalf("Cleanup should tolerate an already-gone session: %v", err)
	}
}

func TestBuilderService_CleanupRefusesDirtyWorkspace(t *testing.T) {
	f := newBuilderFixture(t)
	ctx := context.Background()

	resp, err := f.svc.Spawn(ctx, primary.SpawnRequest{Kind: builder.KindSpec, SpecNumber: 4})
	if err != nil {
		t.Fatalf("Spawn failed: %v", err)
	}
	id := resp.Builder.ID
	f.workspaces.dirty[resp.Builder.WorkspacePath] = true

	err = f.svc.Cleanup(ctx, id, primary.CleanupOptions{RemoveWorkspace: true})
	if !errors.Is(err, fault.ErrBusy) {
		t.Fatalf("expected busy error, got %v", err)
	}
	// Refusal happens before teardown: session and row must be intact.
	if !f.sessions.HasSession(ctx, resp.Builder.Session) {
		t.Error("session should survive a refused cleanup")
	}
	if _, err := f.svc.Get(ctx, id); err != nil {
		t.Error("builder row should survive a refused cleanup")
	}

	// Force bypasses the check.
	if err := f.svc.Cleanup(ctx, id, primary.CleanupOptions{RemoveWorkspace: true, Force: true}); err != nil {
		t.Fatalf("forced cleanup failed: %v", err)
	}
}

func TestBuilderService_CleanupWithoutRemoveKeepsWorkspace(t *testing.T) {
	f := newBuilderFixture(t)
	ctx := context.Background()

	resp, err := f.svc.Spawn(ctx, primary.SpawnRequest{Kind: builder.KindSpec, SpecNumber: 5})
	if err != nil {
		t.Fatalf("Spawn failed: %v", err)
	}
	if err := f.svc.Cleanup(ctx, resp.Builder.ID, primary.CleanupOptions{}); err != nil {
		t.Fatalf("Cleanup failed: %v", err)
	}
	if !f.workspaces.worktrees[resp.Builder.WorkspacePath] {
		t.Error("worktree should be kept when removal is not requested")
	}
}

func TestBuilderService_PortFreedAfterCleanup(t *testing.T) {
	f := newBuilderFixture(t)
	ctx := context.Background()

	resp, err := f.svc.Spawn(ctx, primary.SpawnRequest{Kind: builder.KindTask, Task: "a"})
	if err != nil {
		t.Fatalf("Spawn failed: %v", err)
	}
	port := resp.Builder.Port
	if err := f.svc.Cleanup(ctx, resp.Builder.ID, primary.CleanupOptions{}); err != nil {
		t.Fatalf("Cleanup failed: %v", err)
	}

	next, err := f.svc.Spawn(ctx, primary.SpawnRequest{Kind: builder.KindTask, Task: "b"})
	if err != nil {
		t.Fatalf("Spawn failed: %v", err)
	}
	if next.Builder.Port != port {
		t.Errorf("expected freed port %d to be reused, got %d", port, next.Builder.Port)
	}
}
