package app

import (
	"context"
	"fmt"
	"sort"

	"github.com/example/af/internal/fault"
	"github.com/example/af/internal/ports/secondary"
)

// Ensure the mocks implement their interfaces
var (
	_ secondary.AllocationRepository = (*mockAllocationRepository)(nil)
	_ secondary.ArchitectRepository  = (*mockArchitectRepository)(nil)
	_ secondary.BuilderRepository    = (*mockBuilderRepository)(nil)
	_ secondary.UtilRepository       = (*mockUtilRepository)(nil)
	_ secondary.AnnotationRepository = (*mockAnnotationRepository)(nil)
	_ secondary.SnapshotRepository   = (*mockSnapshotRepository)(nil)
	_ secondary.SessionAdapter       = (*mockSessionAdapter)(nil)
	_ secondary.WorkspaceAdapter     = (*mockWorkspaceAdapter)(nil)
	_ secondary.LivenessProbe        = (*mockProbe)(nil)
)

// mockAllocationRepository implements secondary.AllocationRepository in memory.
type mockAllocationRepository struct {
	records   map[string]*secondary.AllocationRecord
	removeErr error
	clearErr  error
}

func newMockAllocationRepository() *mockAllocationRepository {
	return &mockAllocationRepository{records: make(map[string]*secondary.AllocationRecord)}
}

func (m *mockAllocationRepository) GetOrAllocate(ctx context.Context, projectPath string, pid int) (int, error) {
	if rec, ok := m.records[projectPath]; ok {
		rec.Pid = pid
		return rec.BasePort, nil
	}
	base := 4200
	for _, rec := range m.records {
		if rec.BasePort >= base {
			base = rec.BasePort + 100
		}
	}
	if base >= 4200+50*100 {
		return 0, fmt.Errorf("%w: port space exhausted", fault.ErrCapacity)
	}
	m.records[projectPath] = &secondary.AllocationRecord{ProjectPath: projectPath, BasePort: base, Pid: pid}
	return base, nil
}

func (m *mockAllocationRepository) List(ctx context.Context) ([]*secondary.AllocationRecord, error) {
	paths := make([]string, 0, len(m.records))
	for p := range m.records {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	out := make([]*secondary.AllocationRecord, 0, len(paths))
	for _, p := range paths {
		out = append(out, m.records[p])
	}
	return out, nil
}

func (m *mockAllocationRepository) Remove(ctx context.Context, projectPath string) error {
	if m.removeErr != nil {
		return m.removeErr
	}
	if _, ok := m.records[projectPath]; !ok {
		return fmt.Errorf("%w: allocation for %s", fault.ErrNotFound, projectPath)
	}
	delete(m.records, projectPath)
	return nil
}

func (m *mockAllocationRepository) ClearPid(ctx context.Context, projectPath string) error {
	if m.clearErr != nil {
		return m.clearErr
	}
	rec, ok := m.records[projectPath]
	if !ok {
		return fmt.Errorf("%w: allocation for %s", fault.ErrNotFound, projectPath)
	}
	rec.Pid = 0
	return nil
}

// mockArchitectRepository implements secondary.ArchitectRepository in memory.
type mockArchitectRepository struct {
	record *secondary.ArchitectRecord
	setErr error
}

func newMockArchitectRepository() *mockArchitectRepository {
	return &mockArchitectRepository{}
}

func (m *mockArchitectRepository) Set(ctx context.Context, architect *secondary.ArchitectRecord) error {
	if m.setErr != nil {
		return m.setErr
	}
	cp := *architect
	m.record = &cp
	return nil
}

func (m *mockArchitectRepository) Get(ctx context.Context) (*secondary.ArchitectRecord, error) {
	if m.record == nil {
		return nil, fmt.Errorf("%w: architect", fault.ErrNotFound)
	}
	cp := *m.record
	return &cp, nil
}

func (m *mockArchitectRepository) Remove(ctx context.Context) error {
	if m.record == nil {
		return fmt.Errorf("%w: architect", fault.ErrNotFound)
	}
	m.record = nil
	return nil
}

// mockBuilderRepository implements secondary.BuilderRepository in memory with
// the same port uniqueness rule as the real store.
type mockBuilderRepository struct {
	records   map[string]*secondary.BuilderRecord
	insertErr error
}

func newMockBuilderRepository() *mockBuilderRepository {
	return &mockBuilderRepository{records: make(map[string]*secondary.BuilderRecord)}
}

func (m *mockBuilderRepository) Insert(ctx context.Context, rec *secondary.BuilderRecord) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	if _, ok := m.records[rec.ID]; ok {
		return fmt.Errorf("%w: builder %s", fault.ErrConflict, rec.ID)
	}
	for _, existing := range m.records {
		if existing.Port == rec.Port {
			return fmt.Errorf("%w: port %d taken", fault.ErrConflict, rec.Port)
		}
	}
	cp := *rec
	m.records[rec.ID] = &cp
	return nil
}

func (m *mockBuilderRepository) Upsert(ctx context.Context, rec *secondary.BuilderRecord) error {
	cp := *rec
	m.records[rec.ID] = &cp
	return nil
}

func (m *mockBuilderRepository) GetByID(ctx context.Context, id string) (*secondary.BuilderRecord, error) {
	rec, ok := m.records[id]
	if !ok {
		return nil, fmt.Errorf("%w: builder %s", fault.ErrNotFound, id)
	}
	cp := *rec
	return &cp, nil
}

func (m *mockBuilderRepository) SetStatus(ctx context.Context, id, status string) error {
	rec, ok := m.records[id]
	if !ok {
		return fmt.Errorf("%w: builder %s", fault.ErrNotFound, id)
	}
	rec.Status = status
	return nil
}

func (m *mockBuilderRepository) SetPhase(ctx context.Context, id, phase string) error {
	rec, ok := m.records[id]
	if !ok {
		return fmt.Errorf("%w: builder %s", fault.ErrNotFound, id)
	}
	rec.Phase = phase
	return nil
}

func (m *mockBuilderRepository) Remove(ctx context.Context, id string) error {
	if _, ok := m.records[id]; !ok {
		return fmt.Errorf("%w: builder %s", fault.ErrNotFound, id)
	}
	delete(m.records, id)
	return nil
}

func (m *mockBuilderRepository) List(ctx context.Context) ([]*secondary.BuilderRecord, error) {
	ids := make([]string, 0, len(m.records))
	for id := range m.records {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]*secondary.BuilderRecord, 0, len(ids))
	for _, id := range ids {
		cp := *m.records[id]
		out = append(out, &cp)
	}
	return out, nil
}

// mockUtilRepository implements secondary.UtilRepository in memory.
type mockUtilRepository struct {
	records map[string]*secondary.UtilRecord
}

func newMockUtilRepository() *mockUtilRepository {
	return &mockUtilRepository{records: make(map[string]*secondary.UtilRecord)}
}

func (m *mockUtilRepository) Insert(ctx context.Context, rec *secondary.UtilRecord) error {
	cp := *rec
	m.records[rec.ID] = &cp
	return nil
}

func (m *mockUtilRepository) GetByID(ctx context.Context, id string) (*secondary.UtilRecord, error) {
	rec, ok := m.records[id]
	if !ok {
		return nil, fmt.Errorf("%w: util %s", fault.ErrNotFound, id)
	}
	cp := *rec
	return &cp, nil
}

func (m *mockUtilRepository) Remove(ctx context.Context, id string) error {
	if _, ok := m.records[id]; !ok {
		return fmt.Errorf("%w: util %s", fault.ErrNotFound, id)
	}
	delete(m.records, id)
	return nil
}

func (m *mockUtilRepository) List(ctx context.Context) ([]*secondary.UtilRecord, error) {
	out := make([]*secondary.UtilRecord, 0, len(m.records))
	for _, rec := range m.records {
		cp := *rec
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// mockAnnotationRepository implements secondary.AnnotationRepository in memory.
type mockAnnotationRepository struct {
	records map[string]*secondary.AnnotationRecord
}

func newMockAnnotationRepository() *mockAnnotationRepository {
	return &mockAnnotationRepository{records: make(map[string]*secondary.AnnotationRecord)}
}

func (m *mockAnnotationRepository) Insert(ctx context.Context, rec *secondary.AnnotationRecord) error {
	cp := *rec
	m.records[rec.ID] = &cp
	return nil
}

func (m *mockAnnotationRepository) GetByID(ctx context.Context, id string) (*secondary.AnnotationRecord, error) {
	rec, ok := m.records[id]
	if !ok {
		return nil, fmt.Errorf("%w: annotation %s", fault.ErrNotFound, id)
	}
	cp := *rec
	return &cp, nil
}

func (m *mockAnnotationRepository) Remove(ctx context.Context, id string) error {
	if _, ok := m.records[id]; !ok {
		return fmt.Errorf("%w: annotation %s", fault.ErrNotFound, id)
	}
	delete(m.records, id)
	return nil
}

func (m *mockAnnotationRepository) List(ctx context.Context) ([]*secondary.AnnotationRecord, error) {
	out := make([]*secondary.AnnotationRecord, 0, len(m.records))
	for _, rec := range m.records {
		cp := *rec
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// mockSnapshotRepository derives snapshots from the other mocks.
type mockSnapshotRepository struct {
	architects  *mockArchitectRepository
	builders    *mockBuilderRepository
	utils       *mockUtilRepository
	annotations *mockAnnotationRepository
}

func (m *mockSnapshotRepository) LoadAll(ctx context.Context) (*secondary.Snapshot, error) {
	snap := &secondary.Snapshot{}
	if m.architects != nil && m.architects.record != nil {
		cp := *m.architects.record
		snap.Architect = &cp
	}
	if m.builders != nil {
		snap.Builders, _ = m.builders.List(ctx)
	}
	if m.utils != nil {
		snap.Utils, _ = m.utils.List(ctx)
	}
	if m.annotations != nil {
		snap.Annotations, _ = m.annotations.List(ctx)
	}
	return snap, nil
}

func (m *mockSnapshotRepository) UsedPorts(ctx context.Context) ([]int, error) {
	var ports []int
	if m.architects != nil && m.architects.record != nil {
		ports = append(ports, m.architects.record.Port)
	}
	if m.builders != nil {
		for _, rec := range m.builders.records {
			ports = append(ports, rec.Port)
		}
	}
	if m.utils != nil {
		for _, rec := range m.utils.records {
			ports = append(ports, rec.Port)
		}
	}
	if m.annotations != nil {
		for _, rec := range m.annotations.records {
			ports = append(ports, rec.Port)
		}
	}
	return ports, nil
}

// mockSessionAdapter implements secondary.SessionAdapter in memory.
type mockSessionAdapter struct {
	sessions   map[string]int // name -> pid
	nextPid    int
	newErr     error
	killErr    error
	listErr    error
	killedLog  []string
	createdLog []string
}

func newMockSessionAdapter() *mockSessionAdapter {
	return &mockSessionAdapter{sessions: make(map[string]int), nextPid: 1000}
}

func (m *mockSessionAdapter) ListSessions(ctx context.Context) ([]string, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	names := make([]string, 0, len(m.sessions))
	for name := range m.sessions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (m *mockSessionAdapter) NewSession(ctx context.Context, name, dir, command string) (int, error) {
	if m.newErr != nil {
		return 0, m.newErr
	}
	if _, ok := m.sessions[name]; ok {
		return 0, fmt.Errorf("%w: session %s already exists", fault.ErrConflict, name)
	}
	m.nextPid++
	m.sessions[name] = m.nextPid
	m.createdLog = append(m.createdLog, name)
	return m.nextPid, nil
}

func (m *mockSessionAdapter) KillSession(ctx context.Context, name string) error {
	if m.killErr != nil {
		return m.killErr
	}
	if _, ok := m.sessions[name]; !ok {
		return fmt.Errorf("%w: session %s", fault.ErrNotFound, name)
	}
	delete(m.sessions, name)
	m.killedLog = append(m.killedLog, name)
	return nil
}

func (m *mockSessionAdapter) HasSession(ctx context.Context, name string) bool {
	_, ok := m.sessions[name]
	return ok
}

// mockWorkspaceAdapter implements secondary.WorkspaceAdapter in memory.
type mockWorkspaceAdapter struct {
	worktrees map[string]bool
	dirty     map[string]bool
	createErr error
	removeErr error
}

func newMockWorkspaceAdapter() *mockWorkspaceAdapter {
	return &mockWorkspaceAdapter{
		worktrees: make(map[string]bool),
		dirty:     make(map[string]bool),
	}
}

func (m *mockWorkspaceAdapter) CreateWorktree(ctx context.Context, repoPath, branch, targetPath string) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.worktrees[targetPath] = true
	return nil
}

func (m *mockWorkspaceAdapter) RemoveWorktree(ctx context.Context, repoPath, path string) error {
	if m.removeErr != nil {
		return m.removeErr
	}
	delete(m.worktrees, path)
	return nil
}

func (m *mockWorkspaceAdapter) IsDirty(ctx context.Context, path string) (bool, error) {
	return m.dirty[path], nil
}

func (m *mockWorkspaceAdapter) WorktreeExists(ctx context.Context, path string) (bool, error) {
	return m.worktrees[path], nil
}

// mockProbe implements secondary.LivenessProbe with preset answers.
type mockProbe struct {
	alivePids    map[int]bool
	paths        map[string]bool
	busyPorts    map[int]bool
	allPathsLive bool
}

func newMockProbe() *mockProbe {
	return &mockProbe{
		alivePids:    make(map[int]bool),
		paths:        make(map[string]bool),
		busyPorts:    make(map[int]bool),
		allPathsLive: true,
	}
}

func (m *mockProbe) PidAlive(pid int) bool { return m.alivePids[pid] }

func (m *mockProbe) PathExists(path string) bool {
	if m.allPathsLive {
		return true
	}
	return m.paths[path]
}

func (m *mockProbe) PortFree(port int) bool { return !m.busyPorts[port] }
