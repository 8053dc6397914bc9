package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/sevenseconds/vibescout/internal/ignore"
	"github.com/sevenseconds/vibescout/internal/taskqueue"
	"github.com/sevenseconds/vibescout/internal/types"
)

// nativeModeFileThreshold is spec.md §4.9 step 1's system-wide file-count
// ceiling above which every project watcher runs in polling mode.
const nativeModeFileThreshold = 500

// globCountMaxDepth bounds the directory depth the startup file count
// estimate descends, mirroring file_watcher.go's maxDepth guard against
// pathological trees.
const globCountMaxDepth = 10

// wellKnownSiblings are the auto-detected watch roots spec.md §4.9 step 2
// names alongside src/ when a project declares no explicit watchDirectories.
var wellKnownSiblings = []string{"public", "app", "lib", "components"}

// DeleteFileDataFunc removes one file's indexed data, called directly on
// unlink events (spec.md §4.9 step 4) rather than routed through the task
// queue.
type DeleteFileDataFunc func(entry types.WatchListEntry, filePath string)

// projectWatcher is one WatchListEntry's live watch state: possibly several
// backends (one per detected watch root), a shared ignore engine, and a
// per-path debouncer feeding indexFiles tasks.
type projectWatcher struct {
	entry     types.WatchListEntry
	ignore    *ignore.Engine
	debouncer *pathDebouncer
	backends  []backend
}

// Manager owns every project's watcher and routes their events into a
// taskqueue.Queue. Grounded on WatchCoordinator's single-process
// orchestration, generalized from a fixed git+file pair to an arbitrary set
// of per-project watchers.
type Manager struct {
	queue          *taskqueue.Queue
	deleteFileData DeleteFileDataFunc

	mu       sync.Mutex
	projects map[string]*projectWatcher // keyed by WatchListEntry.FolderPath
}

// NewManager builds a Manager. deleteFileData may be nil in tests that don't
// exercise unlink handling.
func NewManager(queue *taskqueue.Queue, deleteFileData DeleteFileDataFunc) *Manager {
	return &Manager{
		queue:          queue,
		deleteFileData: deleteFileData,
		projects:       make(map[string]*projectWatcher),
	}
}

// Start attaches a watcher to every entry, per spec.md §4.9's process-start
// sequence: the combined estimated file count across all entries decides
// whether every watcher starts in native or polling mode. watchDirectories
// is config.IndexingConfig.WatchDirectories, applied to every entry.
func (m *Manager) Start(ctx context.Context, entries []types.WatchListEntry, watchDirectories []string) error {
	engines := make(map[string]*ignore.Engine, len(entries))
	total := 0
	for _, entry := range entries {
		ig, err := ignore.Load(entry.FolderPath)
		if err != nil {
			return fmt.Errorf("watcher: loading ignore patterns for %s: %w", entry.FolderPath, err)
		}
		engines[entry.FolderPath] = ig
		total += countFiles(entry.FolderPath, ig)
	}

	forcePolling := total > nativeModeFileThreshold

	for _, entry := range entries {
		if err := m.watchProject(ctx, entry, engines[entry.FolderPath], watchDirectories, forcePolling); err != nil {
			return fmt.Errorf("watcher: starting watch for %s: %w", entry.FolderPath, err)
		}
	}
	return nil
}

// Watch attaches a single new project's watcher without re-measuring the
// system-wide file count (used when a project is added after process
// start); it inherits native mode unless forcePolling is set explicitly.
func (m *Manager) Watch(ctx context.Context, entry types.WatchListEntry, watchDirectories []string, forcePolling bool) error {
	ig, err := ignore.Load(entry.FolderPath)
	if err != nil {
		return fmt.Errorf("watcher: loading ignore patterns for %s: %w", entry.FolderPath, err)
	}
	return m.watchProject(ctx, entry, ig, watchDirectories, forcePolling)
}

func (m *Manager) watchProject(ctx context.Context, entry types.WatchListEntry, ig *ignore.Engine, watchDirectories []string, forcePolling bool) error {
	roots := resolveWatchRoots(entry.FolderPath, watchDirectories)

	pw := &projectWatcher{entry: entry, ignore: ig}
	pw.debouncer = newPathDebouncer(func(path string) {
		m.queue.Add(types.TaskIndexFiles, types.PriorityMedium, map[string]any{
			"projectName": entry.ProjectName,
			"collection":  entry.Collection,
			"filePath":    path,
		})
	})

	onChange := func(path string) { pw.debouncer.Touch(path) }
	onUnlink := func(path string) {
		if m.deleteFileData != nil {
			m.deleteFileData(entry, path)
		}
	}

	for _, root := range roots {
		b, err := startBackend(ctx, root, ig, forcePolling, onChange, onUnlink)
		if err != nil {
			for _, started := range pw.backends {
				started.Stop()
			}
			return err
		}
		pw.backends = append(pw.backends, b)
	}

	m.mu.Lock()
	m.projects[entry.FolderPath] = pw
	m.mu.Unlock()
	return nil
}

// startBackend attaches a backend to root, retrying with a pollingWatcher
// when native mode's initial recursive add hits fd exhaustion (spec.md
// §4.9 step 5's "first native-mode creation that fails ... retries with
// polling mode").
func startBackend(ctx context.Context, root string, ig *ignore.Engine, forcePolling bool, onChange, onUnlink func(string)) (backend, error) {
	if forcePolling {
		pw := newPollingWatcher(root, ig)
		if err := pw.Start(ctx, onChange, onUnlink); err != nil {
			return nil, err
		}
		return pw, nil
	}

	nw, err := newNativeWatcher(root, ig)
	if err != nil {
		return nil, err
	}
	if err := nw.Start(ctx, onChange, onUnlink); err != nil {
		if !isEMFILE(err) {
			return nil, err
		}
		pw := newPollingWatcher(root, ig)
		if perr := pw.Start(ctx, onChange, onUnlink); perr != nil {
			return nil, perr
		}
		return pw, nil
	}
	return nw, nil
}

// Unwatch tears down a project's watcher: closes every backend, cancels
// pending debounce timers under its root, and drops it from the Manager
// (the caller is responsible for removing the WatchListEntry itself),
// per spec.md §4.9 step 6.
func (m *Manager) Unwatch(folderPath string) error {
	m.mu.Lock()
	pw, ok := m.projects[folderPath]
	if ok {
		delete(m.projects, folderPath)
	}
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("watcher: %q is not being watched", folderPath)
	}

	pw.debouncer.CancelAll()

	var firstErr error
	for _, b := range pw.backends {
		if err := b.Stop(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Close tears down every active project watcher.
func (m *Manager) Close() {
	m.mu.Lock()
	paths := make([]string, 0, len(m.projects))
	for p := range m.projects {
		paths = append(paths, p)
	}
	m.mu.Unlock()

	for _, p := range paths {
		m.Unwatch(p)
	}
}

// resolveWatchRoots implements spec.md §4.9 step 2: explicit
// watchDirectories win if any exist on disk; otherwise src/ plus any
// well-known sibling that exists; otherwise the project root itself.
func resolveWatchRoots(folderPath string, watchDirectories []string) []string {
	if len(watchDirectories) > 0 {
		var roots []string
		for _, d := range watchDirectories {
			p := filepath.Join(folderPath, d)
			if isDir(p) {
				roots = append(roots, p)
			}
		}
		if len(roots) > 0 {
			return roots
		}
	}

	candidates := append([]string{"src"}, wellKnownSiblings...)
	var autodetected []string
	for _, name := range candidates {
		p := filepath.Join(folderPath, name)
		if isDir(p) {
			autodetected = append(autodetected, p)
		}
	}
	if len(autodetected) > 0 {
		return autodetected
	}

	return []string{folderPath}
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// countFiles estimates a project's indexable file count with a
// bounded-depth walk (spec.md §4.9 step 1's "bounded-depth glob"), applying
// the same ignore engine used at index time (C12).
func countFiles(root string, ig *ignore.Engine) int {
	count := 0
	_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil || rel == "." {
			return nil
		}
		if pathDepth(rel) > globCountMaxDepth {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if ig.Ignores(rel) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() {
			count++
		}
		return nil
	})
	return count
}

func pathDepth(rel string) int {
	return strings.Count(filepath.ToSlash(rel), "/") + 1
}
