package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/felixgeelhaar/slate/pkg/storage"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is used when no window is given.
const DefaultDebounce = 250 * time.Millisecond

// Change reports that a project record was written or removed.
type Change struct {
	ProjectID string
	Removed   bool
}

// ProjectWatcher watches the .slate directory and reports project record
// changes, one per project per debounce window.
type ProjectWatcher struct {
	watcher  *fsnotify.Watcher
	dir      string
	debounce time.Duration
	onChange func(Change)
	logger   *slog.Logger
}

// NewProjectWatcher watches the workspace rooted at root.
func NewProjectWatcher(root string, debounce time.Duration, onChange func(Change), logger *slog.Logger) (*ProjectWatcher, error) {
	dir := storage.NewFilesystemRepository(root).Dir()
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("workspace not initialized: %s", dir)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ProjectWatcher{
		watcher:  w,
		dir:      dir,
		debounce: debounce,
		onChange: onChange,
		logger:   logger,
	}, nil
}

// Run starts the event loop. It blocks until ctx is cancelled or the
// watcher fails.
func (w *ProjectWatcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	debouncer := NewDebouncer(w.debounce, func(id string) {
		_, err := os.Stat(filepath.Join(w.dir, storage.ProjectFile(id)))
		change := Change{ProjectID: id, Removed: errors.Is(err, fs.ErrNotExist)}
		w.logger.Debug("project file changed", "project_id", id, "removed", change.Removed)
		if w.onChange != nil {
			w.onChange(change)
		}
	})
	defer debouncer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !relevant(event.Op) {
				continue
			}
			if id, ok := storage.ProjectIDFromFile(filepath.Base(event.Name)); ok {
				debouncer.Trigger(id)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watcher error: %w", err)
		}
	}
}

func relevant(op fsnotify.Op) bool {
	return op.Has(fsnotify.Create) || op.Has(fsnotify.Write) ||
		op.Has(fsnotify.Remove) || op.Has(fsnotify.Rename)
}
