package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevenseconds/vibescout/internal/ignore"
	"github.com/sevenseconds/vibescout/internal/taskqueue"
	"github.com/sevenseconds/vibescout/internal/types"
)

func TestResolveWatchRoots_ExplicitWatchDirectoriesWin(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "src"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "backend"), 0o755))

	roots := resolveWatchRoots(dir, []string{"backend"})
	require.Equal(t, []string{filepath.Join(dir, "backend")}, roots)
}

func TestResolveWatchRoots_AutoDetectsSrcAndSiblings(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "src"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "lib"), 0o755))

	roots := resolveWatchRoots(dir, nil)
	assert.ElementsMatch(t, []string{filepath.Join(dir, "src"), filepath.Join(dir, "lib")}, roots)
}

func TestResolveWatchRoots_FallsBackToProjectRoot(t *testing.T) {
	dir := t.TempDir()
	roots := resolveWatchRoots(dir, nil)
	assert.Equal(t, []string{dir}, roots)
}

func TestCountFiles_RespectsIgnorePatterns(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.go"), []byte("x"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "node_modules"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "node_modules", "b.js"), []byte("x"), 0o644))

	ig := mustLoadIgnore(t, dir)
	assert.Equal(t, 1, countFiles(dir, ig))
}

func TestManager_StartSwitchesToPollingOverThreshold(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < nativeModeFileThreshold+1; i++ {
		name := fmt.Sprintf("f%d.go", i)
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := taskqueue.New(ctx, taskqueue.Config{}, map[types.TaskType]taskqueue.Handler{
		types.TaskIndexFiles: func(context.Context, types.Task) error { return nil },
	})
	defer q.Close()

	m := NewManager(q, nil)
	defer m.Close()

	entry := types.WatchListEntry{FolderPath: dir, ProjectName: "big", Collection: "code"}
	require.NoError(t, m.Start(ctx, []types.WatchListEntry{entry}, nil))

	m.mu.Lock()
	pw := m.projects[dir]
	m.mu.Unlock()
	require.NotNil(t, pw)
	require.Len(t, pw.backends, 1)

	_, isPolling := pw.backends[0].(*pollingWatcher)
	assert.True(t, isPolling, "expected polling backend once file count exceeds the native-mode threshold")
}

func TestManager_WatchQueuesIndexFilesTaskOnChange(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "existing.go"), []byte("package a"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var seen []types.Task
	q := taskqueue.New(ctx, taskqueue.Config{}, map[types.TaskType]taskqueue.Handler{
		types.TaskIndexFiles: func(_ context.Context, task types.Task) error {
			mu.Lock()
			seen = append(seen, task)
			mu.Unlock()
			return nil
		},
	})
	defer q.Close()

	m := NewManager(q, nil)
	defer m.Close()

	entry := types.WatchListEntry{FolderPath: dir, ProjectName: "proj", Collection: "code"}
	require.NoError(t, m.Watch(ctx, entry, nil, false))

	newFile := filepath.Join(dir, "new.go")
	require.NoError(t, os.WriteFile(newFile, []byte("package a"), 0o644))

	waitForWatcher(t, 3*time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		for _, task := range seen {
			if task.Data["filePath"] == newFile {
				return true
			}
		}
		return false
	})
}

func TestManager_UnwatchStopsBackendsAndDebouncer(t *testing.T) {
	dir := t.TempDir()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := taskqueue.New(ctx, taskqueue.Config{}, map[types.TaskType]taskqueue.Handler{
		types.TaskIndexFiles: func(context.Context, types.Task) error { return nil },
	})
	defer q.Close()

	m := NewManager(q, nil)
	entry := types.WatchListEntry{FolderPath: dir, ProjectName: "proj", Collection: "code"}
	require.NoError(t, m.Watch(ctx, entry, nil, false))

	require.NoError(t, m.Unwatch(dir))
	assert.Error(t, m.Unwatch(dir), "already removed")
}

func TestManager_DeleteFileDataCalledOnUnlink(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "gone.go")
	require.NoError(t, os.WriteFile(target, []byte("package a"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := taskqueue.New(ctx, taskqueue.Config{}, map[types.TaskType]taskqueue.Handler{
		types.TaskIndexFiles: func(context.Context, types.Task) error { return nil },
	})
	defer q.Close()

	var mu sync.Mutex
	var deletedPaths []string

	m := NewManager(q, func(entry types.WatchListEntry, filePath string) {
		mu.Lock()
		deletedPaths = append(deletedPaths, filePath)
		mu.Unlock()
	})
	defer m.Close()

	entry := types.WatchListEntry{FolderPath: dir, ProjectName: "proj", Collection: "code"}
	require.NoError(t, m.Watch(ctx, entry, nil, false))

	require.NoError(t, os.Remove(target))

	waitForWatcher(t, 3*time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		for _, p := range deletedPaths {
			if p == target {
				return true
			}
		}
		return false
	})
}

func mustLoadIgnore(t *testing.T, dir string) *ignore.Engine {
	t.Helper()
	ig, err := ignore.Load(dir)
	require.NoError(t, err)
	return ig
}
