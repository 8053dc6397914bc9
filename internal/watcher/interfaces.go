// Package watcher implements the per-project recursive file watcher spec.md
// §4.9 names: native fsnotify events with a polling fallback when the
// system-wide file count crosses a conservative threshold or a watch hits
// file-descriptor exhaustion, per-path debounced change coalescing, and
// translation of filesystem events into queued indexFiles tasks (or direct
// deleteFileData calls on unlink).
//
// Grounded on internal/watcher/file_watcher.go's fsnotify recursive-add and
// debounce-timer idiom, generalized from one whole-batch timer to one timer
// per changed path (spec.md's "debounced (500 ms per-path)"), and from a
// hardcoded directory skip-list to the shared internal/ignore engine.
package watcher

import "context"

// backend is the native/polling-agnostic watcher a projectWatcher drives.
// Both implementations recurse the watch root, report add/change paths via
// onChange and removals via onUnlink, and stop cleanly on Stop.
type backend interface {
	Start(ctx context.Context, onChange func(path string), onUnlink func(path string)) error
	Stop() error
}
