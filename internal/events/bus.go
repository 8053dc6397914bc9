// Package events implements the process-scoped observable spec.md §4.11
// names: indexing progress snapshots, task-queue lifecycle transitions, and
// recent log records, fanned out to subscribers (RPC handlers, streaming
// HTTP endpoints, CLI watchers, test observers) on a best-effort,
// non-blocking basis.
//
// Grounded on internal/indexer/daemon/server.go's logBuffer/logSubs pair
// (container/ring circular buffer plus a subscription map broadcast with a
// non-blocking select/default send) and internal/indexer/daemon/actor.go's
// SubscribeProgress/publishProgress pair for the same non-blocking
// broadcast shape applied to progress instead of logs.
package events

import (
	"container/ring"
	"fmt"
	"sync"
	"time"

	"github.com/sevenseconds/vibescout/internal/taskqueue"
	"github.com/sevenseconds/vibescout/internal/types"
)

// recentLogCapacity is spec.md §4.11's "bounded recent-log buffer (size 100)".
const recentLogCapacity = 100

// subscriberBuffer is the per-subscriber channel capacity; a slow
// subscriber drops events past this rather than blocking the publisher,
// mirroring the teacher's logSubs/progressSubs channel capacity of 10.
const subscriberBuffer = 10

// Kind discriminates which field of Event is populated.
type Kind string

const (
	KindProgress Kind = "progress"
	KindLog      Kind = "log"
	KindTask     Kind = "task"
)

// LogRecord is one buffered or broadcast log line.
type LogRecord struct {
	Timestamp time.Time
	Level     string
	Message   string
}

// Event is a single notification delivered to subscribers. Exactly one of
// Progress, Log, Task is populated, selected by Kind.
type Event struct {
	Kind     Kind
	Progress types.IndexingProgress
	Log      LogRecord
	Task     taskqueue.Event
}

// Bus is the process-wide observable. A Bus is safe for concurrent use and
// has no background goroutines of its own — Progress/Logf/TaskListener are
// called synchronously by whoever owns the event (the pipeline, the task
// queue), and Bus only fans out and buffers.
type Bus struct {
	mu             sync.RWMutex
	recentLogs     *ring.Ring
	latestProgress types.IndexingProgress
	subs           map[string]chan Event
}

// New builds an empty Bus.
func New() *Bus {
	return &Bus{
		recentLogs: ring.New(recentLogCapacity),
		subs:       make(map[string]chan Event),
	}
}

// Subscribe registers a new observer under id and returns its channel.
// Callers must call Unsubscribe(id) when done to avoid leaking the
// channel and the map entry.
func (b *Bus) Subscribe(id string) <-chan Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan Event, subscriberBuffer)
	b.subs[id] = ch
	return ch
}

// Unsubscribe removes id's channel and closes it. Safe to call more than
// once with the same id.
func (b *Bus) Unsubscribe(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if ch, ok := b.subs[id]; ok {
		close(ch)
		delete(b.subs, id)
	}
}

// broadcastLocked sends evt to every subscriber, dropping it for any
// subscriber whose buffer is full rather than blocking. Must be called
// with mu held.
func (b *Bus) broadcastLocked(evt Event) {
	for _, ch := range b.subs {
		select {
		case ch <- evt:
		default:
		}
	}
}

// Progress implements pipeline.Reporter: records the latest snapshot and
// broadcasts it to subscribers.
func (b *Bus) Progress(p types.IndexingProgress) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.latestProgress = p
	b.broadcastLocked(Event{Kind: KindProgress, Progress: p})
}

// Logf implements pipeline.Reporter: formats the line, appends it to the
// bounded ring buffer, and broadcasts it. Every Reporter-sourced line is
// recorded at level INFO — the Reporter interface carries no level, so
// callers needing WARN/ERROR distinctions should format it into the
// message itself (the pipeline already does this for failures, e.g.
// "pipeline: %s: %v").
func (b *Bus) Logf(format string, args ...any) {
	record := LogRecord{Timestamp: time.Now(), Level: "INFO", Message: fmt.Sprintf(format, args...)}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.recentLogs.Value = record
	b.recentLogs = b.recentLogs.Next()
	b.broadcastLocked(Event{Kind: KindLog, Log: record})
}

// TaskListener returns a taskqueue.Listener that broadcasts every task
// lifecycle event to subscribers. Wire it via Queue.SetListener.
func (b *Bus) TaskListener() taskqueue.Listener {
	return func(evt taskqueue.Event) {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.broadcastLocked(Event{Kind: KindTask, Task: evt})
	}
}

// LatestProgress returns the most recently published IndexingProgress
// snapshot, for callers that want current state without subscribing
// (get_indexing_status).
func (b *Bus) LatestProgress() types.IndexingProgress {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.latestProgress
}

// RecentLogs returns the buffered log records, oldest first, for a
// subscriber that wants replay-then-follow semantics (spec.md §4.11's
// non-follow StreamLogs behavior).
func (b *Bus) RecentLogs() []LogRecord {
	b.mu.RLock()
	defer b.mu.RUnlock()

	logs := make([]LogRecord, 0, recentLogCapacity)
	b.recentLogs.Do(func(v any) {
		if v == nil {
			return
		}
		logs = append(logs, v.(LogRecord))
	})
	return logs
}
