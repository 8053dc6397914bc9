package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sevenseconds/vibescout/internal/ignore"
)

func waitForWatcher(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestNativeWatcher_ReportsChangeAndUnlink(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "existing.go"), []byte("package a"), 0o644))

	ig, err := ignore.Load(dir)
	require.NoError(t, err)

	nw, err := newNativeWatcher(dir, ig)
	require.NoError(t, err)
	defer nw.Stop()

	var mu sync.Mutex
	var changed, unlinked []string

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, nw.Start(ctx,
		func(path string) {
			mu.Lock()
			changed = append(changed, path)
			mu.Unlock()
		},
		func(path string) {
			mu.Lock()
			unlinked = append(unlinked, path)
			mu.Unlock()
		},
	))

	newFile := filepath.Join(dir, "new.go")
	require.NoError(t, os.WriteFile(newFile, []byte("package a"), 0o644))

	waitForWatcher(t, 2*time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		for _, p := range changed {
			if p == newFile {
				return true
			}
		}
		return false
	})

	require.NoError(t, os.Remove(newFile))

	waitForWatcher(t, 2*time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		for _, p := range unlinked {
			if p == newFile {
				return true
			}
		}
		return false
	})
}

func TestNativeWatcher_IgnoresMatchedPaths(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "node_modules"), 0o755))

	ig, err := ignore.Load(dir)
	require.NoError(t, err)

	nw, err := newNativeWatcher(dir, ig)
	require.NoError(t, err)
	defer nw.Stop()

	var mu sync.Mutex
	var changed []string

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, nw.Start(ctx,
		func(path string) {
			mu.Lock()
			changed = append(changed, path)
			mu.Unlock()
		},
		func(string) {},
	))

	ignoredFile := filepath.Join(dir, "node_modules", "pkg.js")
	require.NoError(t, os.WriteFile(ignoredFile, []byte("x"), 0o644))

	// node_modules is never recursed into, so this file produces no event
	// at all; give the watch loop a beat and assert nothing arrived.
	time.Sleep(200 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.Empty(t, changed)
}
