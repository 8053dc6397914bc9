package watcher

import (
	"sync"
	"time"
)

// debounceWindow is spec.md §4.9 step 4's per-path quiet period.
const debounceWindow = 500 * time.Millisecond

// pathDebouncer coalesces repeated events for the same path into a single
// fire, independently per path, so a burst of saves to one file doesn't
// queue one indexFiles task per write. Grounded on file_watcher.go's
// debounceTimer, generalized from a single shared timer to a map of
// per-path timers per spec.md's "debounced (500 ms per-path)".
type pathDebouncer struct {
	mu     sync.Mutex
	timers map[string]*time.Timer
	fire   func(path string)
	window time.Duration
}

func newPathDebouncer(fire func(path string)) *pathDebouncer {
	return newPathDebouncerWithWindow(fire, debounceWindow)
}

// newPathDebouncerWithWindow lets tests shrink the debounce window instead
// of waiting out the production 500ms default.
func newPathDebouncerWithWindow(fire func(path string), window time.Duration) *pathDebouncer {
	return &pathDebouncer{
		timers: make(map[string]*time.Timer),
		fire:   fire,
		window: window,
	}
}

// Touch (re)starts the debounce timer for path, firing fire(path) once the
// window elapses with no further touches.
func (d *pathDebouncer) Touch(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if t, ok := d.timers[path]; ok {
		t.Stop()
	}
	d.timers[path] = time.AfterFunc(d.window, func() {
		d.mu.Lock()
		delete(d.timers, path)
		d.mu.Unlock()
		d.fire(path)
	})
}

// CancelAll stops every pending timer, per unwatchProject's "cancel pending
// debounce timers for paths under its root" (spec.md §4.9 step 6) — a
// pathDebouncer is scoped to a single project root, so all of its timers
// qualify.
func (d *pathDebouncer) CancelAll() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for path, t := range d.timers {
		t.Stop()
		delete(d.timers, path)
	}
}
