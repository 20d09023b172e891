// Package application provides the services the CLI drives.
package application

import (
	"fmt"
	"sync"
	"time"

	"github.com/felixgeelhaar/slate/pkg/domain"
	"github.com/google/uuid"
)

// AuditService appends to the hash-chained audit trail.
type AuditService struct {
	mu   sync.Mutex
	repo domain.AuditRepository
	now  func() time.Time
}

// Compile-time check that AuditService implements AuditLogger
var _ domain.AuditLogger = (*AuditService)(nil)

// NewAuditService creates a new AuditService.
func NewAuditService(repo domain.AuditRepository) *AuditService {
	return &AuditService{repo: repo, now: time.Now}
}

// Log appends an event chained to the current tail of the trail. The
// repository reads the tail and appends atomically across processes.
func (s *AuditService) Log(action, actor, projectID string, metadata map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	event := domain.Event{
		ID:        uuid.New().String(),
		Timestamp: s.now().UTC(),
		Action:    action,
		Actor:     actor,
		ProjectID: projectID,
		Metadata:  metadata,
	}
	if _, err := s.repo.AppendEvent(event); err != nil {
		return fmt.Errorf("failed to append audit event: %w", err)
	}
	return nil
}

// Timeline returns the audit trail, optionally restricted to one project.
func (s *AuditService) Timeline(projectID string) ([]domain.Event, error) {
	events, err := s.repo.LoadEvents()
	if err != nil {
		return nil, err
	}
	if projectID == "" {
		return events, nil
	}
	out := []domain.Event{}
	for _, e := range events {
		if e.ProjectID == projectID {
			out = append(out, e)
		}
	}
	return out, nil
}

// VerifyIntegrity checks the whole trail.
func (s *AuditService) VerifyIntegrity() ([]domain.ChainViolation, error) {
	events, err := s.repo.LoadEvents()
	if err != nil {
		return nil, err
	}
	return domain.VerifyChain(events), nil
}
