package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/felixgeelhaar/slate/pkg/domain"
	"github.com/felixgeelhaar/slate/pkg/domain/project"
)

var (
	_ project.Repository     = (*MemoryRepository)(nil)
	_ domain.AuditRepository = (*MemoryRepository)(nil)
)

// MemoryRepository keeps projects and audit events in memory. It applies the
// same version check as FilesystemRepository.
type MemoryRepository struct {
	mu       sync.RWMutex
	projects map[string]*project.Project
	events   []domain.Event
}

// NewMemoryRepository returns an empty MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{projects: make(map[string]*project.Project)}
}

func cloneProject(p *project.Project) *project.Project {
	cp := *p
	cp.Fields = make(map[string]any, len(p.Fields))
	for k, v := range p.Fields {
		cp.Fields[k] = v
	}
	cp.Approvals = p.Approvals.Clone()
	cp.History = append([]project.Transition{}, p.History...)
	return &cp
}

// Load returns a copy of the stored project.
func (m *MemoryRepository) Load(ctx context.Context, id string) (*project.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.projects[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", project.ErrProjectNotFound, id)
	}
	return cloneProject(p), nil
}

// Save stores a copy of p if its Version matches and increments it.
func (m *MemoryRepository) Save(ctx context.Context, p *project.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.projects[p.ID]
	switch {
	case ok && stored.Version != p.Version:
		return &project.ConflictError{ProjectID: p.ID, Expected: p.Version, Actual: stored.Version}
	case !ok && p.Version != 0:
		return fmt.Errorf("%w: %s", project.ErrProjectNotFound, p.ID)
	}

	p.Version++
	m.projects[p.ID] = cloneProject(p)
	return nil
}

// Exists reports whether a project is stored under id.
func (m *MemoryRepository) Exists(ctx context.Context, id string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.projects[id]
	return ok, nil
}

// List returns copies of every project, ordered by ID.
func (m *MemoryRepository) List(ctx context.Context) ([]*project.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*project.Project, 0, len(m.projects))
	for _, p := range m.projects {
		out = append(out, cloneProject(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// RecordEvent appends event to the in-memory audit log.
func (m *MemoryRepository) RecordEvent(event domain.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

// AppendEvent seals event against the last stored event and appends it.
func (m *MemoryRepository) AppendEvent(event domain.Event) (domain.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	prev := ""
	if n := len(m.events); n > 0 {
		prev = m.events[n-1].Hash
	}
	event.Seal(prev)
	m.events = append(m.events, event)
	return event, nil
}

// LoadEvents returns a copy of the audit log.
func (m *MemoryRepository) LoadEvents() ([]domain.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]domain.Event{}, m.events...), nil
}
