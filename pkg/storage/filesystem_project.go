package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/felixgeelhaar/fortify/retry"
	"github.com/felixgeelhaar/slate/pkg/domain/project"
)

var _ project.Repository = (*FilesystemRepository)(nil)

// Load reads and validates a project record. Reads are retried to ride out
// a concurrent rename.
func (r *FilesystemRepository) Load(ctx context.Context, id string) (*project.Project, error) {
	if err := project.ValidateID(id); err != nil {
		return nil, err
	}
	path, err := r.ResolvePath(ProjectFile(id))
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", project.ErrProjectNotFound, id)
	}

	var invalid error
	retryer := retry.New[*project.Project](r.retryConfig)
	p, err := retryer.Do(ctx, func(ctx context.Context) (*project.Project, error) {
		// #nosec G304 -- Path is resolved and validated via ResolvePath
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read project file: %w", err)
		}
		if err := validateProject(filepath.Base(path), data); err != nil {
			// Schema failures are not retried.
			invalid = err
			return nil, nil
		}

		var p project.Project
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("failed to unmarshal project: %w", err)
		}
		return &p, nil
	})
	if invalid != nil {
		return nil, invalid
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Save writes p if its Version matches the stored one and increments it. The
// version check and the write happen under the workspace lock.
func (r *FilesystemRepository) Save(ctx context.Context, p *project.Project) error {
	if err := project.ValidateID(p.ID); err != nil {
		return err
	}
	path, err := r.ResolvePath(ProjectFile(p.ID))
	if err != nil {
		return err
	}

	return r.withLock(ctx, func() error {
		// Optimistic locking: read current version from disk and compare.
		// #nosec G304 -- Path is resolved and validated via ResolvePath
		existing, err := os.ReadFile(path)
		if err == nil {
			var disk struct {
				Version int `json:"version"`
			}
			if jsonErr := json.Unmarshal(existing, &disk); jsonErr == nil && disk.Version != p.Version {
				return &project.ConflictError{ProjectID: p.ID, Expected: p.Version, Actual: disk.Version}
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to read project file: %w", err)
		} else if p.Version != 0 {
			return fmt.Errorf("%w: %s", project.ErrProjectNotFound, p.ID)
		}

		p.Version++
		data, err := json.MarshalIndent(p, "", "  ")
		if err != nil {
			p.Version--
			return fmt.Errorf("failed to marshal project: %w", err)
		}
		if err := writeFile(path, data); err != nil {
			p.Version--
			return fmt.Errorf("failed to write project file: %w", err)
		}
		return nil
	})
}

// Exists reports whether a record is stored under id.
func (r *FilesystemRepository) Exists(ctx context.Context, id string) (bool, error) {
	path, err := r.ResolvePath(ProjectFile(id))
	if err != nil {
		return false, err
	}
	_, err = os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// IDs returns the stored project IDs in sorted order.
func (r *FilesystemRepository) IDs() ([]string, error) {
	entries, err := os.ReadDir(r.Dir())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", SlateDir, err)
	}

	ids := []string{}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if id, ok := ProjectIDFromFile(e.Name()); ok {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// List loads every stored project, ordered by ID.
func (r *FilesystemRepository) List(ctx context.Context) ([]*project.Project, error) {
	ids, err := r.IDs()
	if err != nil {
		return nil, err
	}
	out := make([]*project.Project, 0, len(ids))
	for _, id := range ids {
		p, err := r.Load(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
