package taskqueue

import "github.com/sevenseconds/vibescout/internal/types"

// EventType enumerates the lifecycle notifications spec.md §4.8 names.
type EventType string

const (
	EventTaskAdded                 EventType = "task-added"
	EventTaskStarted               EventType = "task-started"
	EventTaskCompleted             EventType = "task-completed"
	EventTaskFailed                EventType = "task-failed"
	EventTaskRetry                 EventType = "task-retry"
	EventTaskCancellationRequested EventType = "task-cancellation-requested"
	EventTaskCancelled             EventType = "task-cancelled"
)

// Event is a single task lifecycle notification, a snapshot of the task at
// the moment the event fired.
type Event struct {
	Type EventType
	Task types.Task
}

// Listener receives task lifecycle events. Queue.SetListener wires this to
// internal/events' bus; tests may pass a simple closure.
type Listener func(Event)
