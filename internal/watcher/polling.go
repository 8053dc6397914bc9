package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sevenseconds/vibescout/internal/ignore"
)

// pollInterval and stabilityWindow are spec.md §4.9 step 1's polling-mode
// parameters, used system-wide once the combined file count of all watched
// projects crosses the native-mode threshold, or per watch root once a
// native watch hits fd exhaustion.
const (
	pollInterval    = time.Second
	stabilityWindow = 500 * time.Millisecond
)

type fileState struct {
	modTime time.Time
	size    int64
}

// pollingWatcher walks root on a fixed interval, diffing stat snapshots to
// find additions, changes and removals. No example repo in the retrieval
// pack implements a polling watcher (fsnotify only covers native events),
// so this is a from-scratch stdlib time.Ticker + filepath.WalkDir loop in
// the same single-goroutine, channel-stoppable shape file_watcher.go uses
// for its native loop.
type pollingWatcher struct {
	root   string
	ignore *ignore.Engine

	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

func newPollingWatcher(root string, ig *ignore.Engine) *pollingWatcher {
	return &pollingWatcher{
		root:   root,
		ignore: ig,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

func (w *pollingWatcher) Start(ctx context.Context, onChange func(string), onUnlink func(string)) error {
	snapshot, err := w.scan()
	if err != nil {
		return err
	}
	go w.loop(ctx, snapshot, onChange, onUnlink)
	return nil
}

func (w *pollingWatcher) Stop() error {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		<-w.doneCh
	})
	return nil
}

func (w *pollingWatcher) loop(ctx context.Context, prev map[string]fileState, onChange, onUnlink func(string)) {
	defer close(w.doneCh)

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	pendingSince := make(map[string]time.Time)

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
		}

		current, err := w.scan()
		if err != nil {
			continue
		}

		now := time.Now()
		for path, st := range current {
			prevSt, existed := prev[path]
			if !existed || prevSt != st {
				if _, pending := pendingSince[path]; !pending {
					pendingSince[path] = now
				}
				continue
			}
			if since, pending := pendingSince[path]; pending && now.Sub(since) >= stabilityWindow {
				onChange(path)
				delete(pendingSince, path)
			}
		}

		for path := range prev {
			if _, stillThere := current[path]; !stillThere {
				onUnlink(path)
				delete(pendingSince, path)
			}
		}

		prev = current
	}
}

func (w *pollingWatcher) scan() (map[string]fileState, error) {
	out := make(map[string]fileState)
	err := filepath.WalkDir(w.root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		rel, relErr := filepath.Rel(w.root, path)
		if relErr == nil && rel != "." && w.ignore.Ignores(rel) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		out[path] = fileState{modTime: info.ModTime(), size: info.Size()}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
