// Package storage persists projects and the audit trail.
package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/felixgeelhaar/fortify/retry"
	"github.com/gofrs/flock"
)

const (
	SlateDir      = ".slate"
	EventsFile    = "events.jsonl"
	ConfigFile    = "config.yaml"
	LockFile      = "slate.lock"
	projectPrefix = "project-"
	projectSuffix = ".json"
)

// ProjectFile returns the file name a project is stored under.
func ProjectFile(id string) string {
	return projectPrefix + id + projectSuffix
}

// ProjectIDFromFile returns the project id stored in the file name, if the
// name is a project file.
func ProjectIDFromFile(name string) (string, bool) {
	if !strings.HasPrefix(name, projectPrefix) || !strings.HasSuffix(name, projectSuffix) {
		return "", false
	}
	id := strings.TrimSuffix(strings.TrimPrefix(name, projectPrefix), projectSuffix)
	return id, id != ""
}

// FilesystemRepository stores workspace data as files under <root>/.slate.
type FilesystemRepository struct {
	root        string
	retryConfig retry.Config
	lockTimeout time.Duration
}

// NewFilesystemRepository returns a repository rooted at root.
func NewFilesystemRepository(root string) *FilesystemRepository {
	return &FilesystemRepository{
		root: root,
		retryConfig: retry.Config{
			MaxAttempts:   3,
			InitialDelay:  10 * time.Millisecond,
			BackoffPolicy: retry.BackoffExponential,
		},
		lockTimeout: 5 * time.Second,
	}
}

// WithRetry overrides the read retry policy.
func (r *FilesystemRepository) WithRetry(maxAttempts int, initialDelay time.Duration) *FilesystemRepository {
	if maxAttempts > 0 {
		r.retryConfig.MaxAttempts = maxAttempts
	}
	if initialDelay > 0 {
		r.retryConfig.InitialDelay = initialDelay
	}
	return r
}

// WithLockTimeout bounds how long a write waits for the workspace lock.
func (r *FilesystemRepository) WithLockTimeout(d time.Duration) *FilesystemRepository {
	if d > 0 {
		r.lockTimeout = d
	}
	return r
}

// Root returns the workspace root directory.
func (r *FilesystemRepository) Root() string {
	return r.root
}

// Dir returns the .slate directory.
func (r *FilesystemRepository) Dir() string {
	return filepath.Join(r.root, SlateDir)
}

// ResolvePath maps filename to a direct child of the .slate directory,
// rejecting anything that would escape it.
func (r *FilesystemRepository) ResolvePath(filename string) (string, error) {
	if filename == "" {
		return "", fmt.Errorf("filename cannot be empty")
	}

	baseDir := r.Dir()
	cleanPath := filepath.Clean(filepath.Join(baseDir, filename))
	if !strings.HasPrefix(cleanPath, baseDir) || filepath.Dir(cleanPath) != baseDir {
		return "", fmt.Errorf("invalid file path: %s", filename)
	}
	return cleanPath, nil
}

// Initialize creates the .slate directory.
func (r *FilesystemRepository) Initialize() error {
	// G301: Use 0700 for directories
	if err := os.MkdirAll(r.Dir(), 0700); err != nil {
		return fmt.Errorf("failed to create %s directory: %w", SlateDir, err)
	}
	return nil
}

// IsInitialized reports whether the .slate directory exists.
func (r *FilesystemRepository) IsInitialized() bool {
	info, err := os.Stat(r.Dir())
	return err == nil && info.IsDir()
}

// withLock runs fn while holding the advisory lock on .slate/slate.lock. The
// lock is per open file, so it serialises writers in this process and in any
// other slate process sharing the workspace.
func (r *FilesystemRepository) withLock(ctx context.Context, fn func() error) error {
	path, err := r.ResolvePath(LockFile)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, r.lockTimeout)
	defer cancel()

	lock := flock.New(path)
	locked, err := lock.TryLockContext(ctx, 5*time.Millisecond)
	if err == nil && !locked {
		err = ctx.Err()
	}
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w: %s", ErrWorkspaceLocked, path)
		}
		return fmt.Errorf("failed to lock workspace: %w", err)
	}
	defer func() { _ = lock.Unlock() }()

	return fn()
}

// ErrWorkspaceLocked indicates another writer held the workspace lock for
// longer than the lock timeout.
var ErrWorkspaceLocked = errors.New("workspace is locked by another writer")

// writeFile writes data to a temp file unique to this writer and renames it
// over path.
func writeFile(path string, data []byte) error {
	// CreateTemp uses 0600.
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(name)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(name)
		return err
	}
	if err := os.Rename(name, path); err != nil {
		_ = os.Remove(name)
		return err
	}
	return nil
}
