package application

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/felixgeelhaar/slate/pkg/domain/approval"
	"github.com/felixgeelhaar/slate/pkg/domain/project"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// ProjectService manages projects and their approval records.
type ProjectService struct {
	coord *project.Coordinator
}

// NewProjectService creates a new ProjectService.
func NewProjectService(coord *project.Coordinator) *ProjectService {
	return &ProjectService{coord: coord}
}

// CreateProjectInput describes a project to create. An empty ID is derived
// from the name.
type CreateProjectInput struct {
	ID     string
	Name   string
	Owner  string
	Actor  string
	Fields map[string]any
}

// ErrNullValue indicates a field value decoded to null. Fields are removed
// with UnsetField instead.
var ErrNullValue = errors.New("null is not a field value")

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

func generateID(name string) string {
	slug := strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(name), "-"), "-")
	if len(slug) > 32 {
		slug = strings.TrimRight(slug[:32], "-")
	}
	if slug == "" {
		slug = "project"
	}
	return slug + "-" + uuid.NewString()[:8]
}

// Create stores a new project at INTAKE.
func (s *ProjectService) Create(ctx context.Context, in CreateProjectInput) (*project.Project, error) {
	id := strings.TrimSpace(in.ID)
	if id == "" {
		id = generateID(in.Name)
	}
	return s.coord.Create(ctx, project.CreateRequest{
		ID:     id,
		Name:   in.Name,
		Owner:  in.Owner,
		Actor:  in.Actor,
		Fields: in.Fields,
	})
}

// Get loads a project.
func (s *ProjectService) Get(ctx context.Context, id string) (*project.Project, error) {
	return s.coord.Get(ctx, id)
}

// List returns every project.
func (s *ProjectService) List(ctx context.Context) ([]*project.Project, error) {
	return s.coord.List(ctx)
}

// ParseValue converts a command-line value into a field value. Booleans and
// numbers keep their type; anything else, dates included, is a string.
func ParseValue(raw string) (any, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("value cannot be empty")
	}
	var v any
	if err := yaml.Unmarshal([]byte(raw), &v); err != nil {
		return raw, nil
	}
	switch v.(type) {
	case nil:
		return nil, fmt.Errorf("%w: %q", ErrNullValue, raw)
	case bool, int, int64, uint64, float64, string:
		return v, nil
	default:
		return raw, nil
	}
}

// SetField parses raw and stores it under field.
func (s *ProjectService) SetField(ctx context.Context, id, field, raw, actor string) (*project.Project, error) {
	v, err := ParseValue(raw)
	if err != nil {
		return nil, err
	}
	return s.coord.SetField(ctx, id, field, v, actor)
}

// UnsetField removes field.
func (s *ProjectService) UnsetField(ctx context.Context, id, field, actor string) (*project.Project, error) {
	return s.coord.UnsetField(ctx, id, field, actor)
}

// Approve records role's sign-off.
func (s *ProjectService) Approve(ctx context.Context, id, role, actor string) (*project.Project, error) {
	r, err := parseRole(role)
	if err != nil {
		return nil, err
	}
	return s.coord.RecordApproval(ctx, id, r, true, actor)
}

// Revoke withdraws role's sign-off.
func (s *ProjectService) Revoke(ctx context.Context, id, role, actor string) (*project.Project, error) {
	r, err := parseRole(role)
	if err != nil {
		return nil, err
	}
	return s.coord.RecordApproval(ctx, id, r, false, actor)
}

// Assign names the contact for role.
func (s *ProjectService) Assign(ctx context.Context, id, role, contact, actor string) (*project.Project, error) {
	r, err := parseRole(role)
	if err != nil {
		return nil, err
	}
	return s.coord.AssignContact(ctx, id, r, contact, actor)
}

func parseRole(role string) (approval.Role, error) {
	r, err := approval.ParseRole(strings.ToLower(strings.TrimSpace(role)))
	if err != nil {
		return "", fmt.Errorf("%w: %s", project.ErrUnknownRole, role)
	}
	return r, nil
}
