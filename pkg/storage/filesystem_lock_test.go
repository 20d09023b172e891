package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofrs/flock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/slate/pkg/domain"
	"github.com/felixgeelhaar/slate/pkg/domain/project"
)

// Two repositories over one root behave like two slate processes.
func TestSave_ConcurrentWritersOneWins(t *testing.T) {
	root := t.TempDir()
	first := NewFilesystemRepository(root)
	require.NoError(t, first.Initialize())
	second := NewFilesystemRepository(root)
	ctx := context.Background()
	require.NoError(t, first.Save(ctx, sampleProject("p-1")))

	for i := 0; i < 20; i++ {
		a, err := first.Load(ctx, "p-1")
		require.NoError(t, err)
		b, err := second.Load(ctx, "p-1")
		require.NoError(t, err)
		a.Fields["round"] = i
		b.Fields["round"] = -i

		var wg sync.WaitGroup
		errs := make([]error, 2)
		start := make(chan struct{})
		for j, w := range []struct {
			repo *FilesystemRepository
			p    *project.Project
		}{{first, a}, {second, b}} {
			wg.Add(1)
			go func(j int, repo *FilesystemRepository, p *project.Project) {
				defer wg.Done()
				<-start
				errs[j] = repo.Save(ctx, p)
			}(j, w.repo, w.p)
		}
		close(start)
		wg.Wait()

		conflicts := 0
		for _, err := range errs {
			var conflict *project.ConflictError
			if errors.As(err, &conflict) {
				conflicts++
			} else {
				require.NoError(t, err)
			}
		}
		require.Equal(t, 1, conflicts, "round %d: %v", i, errs)

		stored, err := first.Load(ctx, "p-1")
		require.NoError(t, err)
		assert.Equal(t, i+2, stored.Version)
	}

	entries, err := os.ReadDir(first.Dir())
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasSuffix(e.Name(), ".tmp"), "leftover temp file %s", e.Name())
	}
}

func TestAppendEvent_ConcurrentWritersKeepChain(t *testing.T) {
	root := t.TempDir()
	repos := []*FilesystemRepository{NewFilesystemRepository(root), NewFilesystemRepository(root)}
	require.NoError(t, repos[0].Initialize())

	var wg sync.WaitGroup
	for w, repo := range repos {
		wg.Add(1)
		go func(w int, repo *FilesystemRepository) {
			defer wg.Done()
			for i := 0; i < 25; i++ {
				_, err := repo.AppendEvent(domain.Event{
					ID:        fmt.Sprintf("w%d-%d", w, i),
					Action:    "approval.recorded",
					Actor:     "lee@studio.test",
					Timestamp: time.Date(2026, 2, 1, 0, 0, i, 0, time.UTC),
				})
				assert.NoError(t, err)
			}
		}(w, repo)
	}
	wg.Wait()

	events, err := repos[0].LoadEvents()
	require.NoError(t, err)
	assert.Len(t, events, 50)
	assert.Empty(t, domain.VerifyChain(events))
}

func TestAppendEvent_SealsAgainstTail(t *testing.T) {
	repo := newRepo(t)

	first, err := repo.AppendEvent(domain.Event{ID: "1", Action: "project.created"})
	require.NoError(t, err)
	assert.Empty(t, first.PrevHash)
	assert.NotEmpty(t, first.Hash)

	second, err := repo.AppendEvent(domain.Event{ID: "2", Action: "project.transitioned"})
	require.NoError(t, err)
	assert.Equal(t, first.Hash, second.PrevHash)
}

func TestSave_WaitsForWorkspaceLock(t *testing.T) {
	repo := newRepo(t).WithLockTimeout(30 * time.Millisecond)
	path, err := repo.ResolvePath(LockFile)
	require.NoError(t, err)

	held := flock.New(path)
	require.NoError(t, held.Lock())

	err = repo.Save(context.Background(), sampleProject("p-1"))
	assert.ErrorIs(t, err, ErrWorkspaceLocked)

	require.NoError(t, held.Unlock())
	assert.NoError(t, repo.Save(context.Background(), sampleProject("p-1")))
}
