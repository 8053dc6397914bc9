package watcher

import (
	"context"
	"errors"
	"log"
	"os"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/fsnotify/fsnotify"

	"github.com/sevenseconds/vibescout/internal/ignore"
)

// nativeWatcher recurses root with fsnotify, skipping paths the ignore
// engine excludes. Grounded on file_watcher.go's addDirectoriesRecursively,
// adapted to consult an *ignore.Engine instead of a hardcoded skip list.
//
// Start returning an fd-exhaustion error is the "first native-mode creation
// that fails with an fd-exhaustion error" spec.md §4.9 step 5 names; the
// caller (startBackend) retries with a pollingWatcher. Once Start has
// succeeded, runtime errors from the fsnotify event loop are logged once and
// the watcher keeps running. An fd-exhaustion error additionally stops it
// adding watch directories, so a Create event for a new directory arriving
// after that point is not recursed into; other errors do not.
type nativeWatcher struct {
	root   string
	ignore *ignore.Engine
	fsw    *fsnotify.Watcher

	mu          sync.Mutex
	fdExhausted bool // stops adding new watch dirs once an fd-exhaustion error fires

	stopOnce sync.Once
	doneCh   chan struct{}
}

func newNativeWatcher(root string, ig *ignore.Engine) (*nativeWatcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &nativeWatcher{
		root:   root,
		ignore: ig,
		fsw:    fsw,
		doneCh: make(chan struct{}),
	}, nil
}

func (w *nativeWatcher) Start(ctx context.Context, onChange func(string), onUnlink func(string)) error {
	if err := w.addRecursively(w.root); err != nil {
		w.fsw.Close()
		return err
	}
	go w.watch(ctx, onChange, onUnlink)
	return nil
}

func (w *nativeWatcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		err = w.fsw.Close()
		<-w.doneCh
	})
	return err
}

func (w *nativeWatcher) addRecursively(dir string) error {
	rel, err := filepath.Rel(w.root, dir)
	if err == nil && rel != "." && w.ignore.Ignores(rel) {
		return nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	if err := w.fsw.Add(dir); err != nil {
		if isEMFILE(err) {
			return err
		}
		log.Printf("watcher: failed to watch directory %s: %v", dir, err)
		return nil
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if err := w.addRecursively(filepath.Join(dir, entry.Name())); err != nil {
			if isEMFILE(err) {
				return err
			}
			log.Printf("watcher: %v", err)
		}
	}
	return nil
}

func (w *nativeWatcher) watch(ctx context.Context, onChange func(string), onUnlink func(string)) {
	defer close(w.doneCh)

	runtimeErrorLogged := false

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}

			if event.Op&fsnotify.Create != 0 && !w.isFDExhausted() {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addRecursively(event.Name); err != nil && isEMFILE(err) {
						w.markFDExhausted(&runtimeErrorLogged, err)
					}
				}
			}

			rel, relErr := filepath.Rel(w.root, event.Name)
			if relErr == nil && w.ignore.Ignores(rel) {
				continue
			}

			switch {
			case event.Op&fsnotify.Remove != 0, event.Op&fsnotify.Rename != 0:
				onUnlink(event.Name)
			case event.Op&(fsnotify.Write|fsnotify.Create) != 0:
				onChange(event.Name)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			if isEMFILE(err) {
				w.markFDExhausted(&runtimeErrorLogged, err)
				continue
			}
			if !runtimeErrorLogged {
				log.Printf("watcher: runtime error for %s: %v", w.root, err)
				runtimeErrorLogged = true
			}
		}
	}
}

func (w *nativeWatcher) isFDExhausted() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.fdExhausted
}

// markFDExhausted logs the runtime error exactly once per project and
// stops future directory additions, so no further fd pressure is added
// (spec.md §4.9 step 5). *logged tracks the watch loop's own log-once state
// so both error channels share it.
func (w *nativeWatcher) markFDExhausted(logged *bool, err error) {
	w.mu.Lock()
	w.fdExhausted = true
	w.mu.Unlock()
	if !*logged {
		log.Printf("watcher: file descriptors exhausted for %s, no longer watching new directories: %v", w.root, err)
		*logged = true
	}
}

func isEMFILE(err error) bool {
	return errors.Is(err, syscall.EMFILE)
}
