// Package taskqueue implements the priority task queue spec.md §4.8 names:
// a (priority asc, createdAt asc) ordered queue, a bounded worker pool,
// per-task retry with exponential backoff, cooperative cancellation, and a
// lifecycle event stream. Grounded on the goroutine/channel dispatch idiom
// of internal/watcher/coordinator.go, generalized from a fixed two-watcher
// fan-out to an arbitrary bounded worker pool.
package taskqueue

import (
	"container/heap"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sevenseconds/vibescout/internal/types"
)

// DefaultMaxConcurrentTasks is spec.md §4.8's stated default.
const DefaultMaxConcurrentTasks = 2

// DefaultMaxRetries and DefaultRetryDelay match spec.md §4.8's
// `retryDelay * 2^(retryCount-1)` backoff with base 1s, max 3 attempts.
const (
	DefaultMaxRetries = 3
	DefaultRetryDelay = time.Second
)

// Handler executes one task's work. It must check ctx.Done() and the task's
// CancelRequested flag (via Queue.IsCancelRequested) between suspension
// points, per spec.md §4.8's cancellation contract.
type Handler func(ctx context.Context, task types.Task) error

// Config tunes a Queue's concurrency and retry policy.
type Config struct {
	MaxConcurrentTasks int
	MaxRetries         int
	RetryDelay         time.Duration
}

func (c Config) withDefaults() Config {
	if c.MaxConcurrentTasks <= 0 {
		c.MaxConcurrentTasks = DefaultMaxConcurrentTasks
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = DefaultMaxRetries
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = DefaultRetryDelay
	}
	return c
}

// Queue is a priority task queue with a bounded worker pool.
type Queue struct {
	cfg      Config
	handlers map[types.TaskType]Handler
	listener Listener

	mu      sync.Mutex
	pending priorityHeap
	items   map[string]*item // pending-only, by task ID, for O(log n) cancel
	active  map[string]*types.Task
	wake    chan struct{}

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New builds a Queue and starts its worker pool. Call Close to stop it.
func New(ctx context.Context, cfg Config, handlers map[types.TaskType]Handler) *Queue {
	cfg = cfg.withDefaults()
	ctx, cancel := context.WithCancel(ctx)

	q := &Queue{
		cfg:      cfg,
		handlers: handlers,
		items:    make(map[string]*item),
		active:   make(map[string]*types.Task),
		wake:     make(chan struct{}, 1),
		cancel:   cancel,
	}
	heap.Init(&q.pending)

	for i := 0; i < cfg.MaxConcurrentTasks; i++ {
		q.wg.Add(1)
		go q.worker(ctx)
	}
	return q
}

// SetListener wires a single listener for every lifecycle event. Call
// before adding tasks if you need to observe the task-added event.
func (q *Queue) SetListener(l Listener) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.listener = l
}

func (q *Queue) emit(evt Event) {
	q.mu.Lock()
	l := q.listener
	q.mu.Unlock()
	if l != nil {
		l(evt)
	}
}

// Add enqueues a new task and returns its assigned ID.
func (q *Queue) Add(taskType types.TaskType, priority types.TaskPriority, data map[string]any) string {
	task := &types.Task{
		ID:        uuid.NewString(),
		Type:      taskType,
		Data:      data,
		Priority:  priority,
		Status:    types.TaskPending,
		CreatedAt: time.Now(),
	}

	q.mu.Lock()
	it := &item{task: task}
	heap.Push(&q.pending, it)
	q.items[task.ID] = it
	q.mu.Unlock()

	q.emit(Event{Type: EventTaskAdded, Task: *task})
	q.signalWake()
	return task.ID
}

func (q *Queue) signalWake() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Cancel cancels a pending task outright, or flags a running task's
// CancelRequested bit so its handler can stop at the next suspension point.
func (q *Queue) Cancel(taskID string) error {
	q.mu.Lock()
	if it, ok := q.items[taskID]; ok {
		heap.Remove(&q.pending, it.index)
		delete(q.items, taskID)
		it.task.Status = types.TaskCancelled
		it.task.CancelledAt = time.Now()
		task := *it.task
		q.mu.Unlock()
		q.emit(Event{Type: EventTaskCancelled, Task: task})
		return nil
	}
	if task, ok := q.active[taskID]; ok {
		task.CancelRequested = true
		snapshot := *task
		q.mu.Unlock()
		q.emit(Event{Type: EventTaskCancellationRequested, Task: snapshot})
		return nil
	}
	q.mu.Unlock()
	return fmt.Errorf("taskqueue: unknown task %q", taskID)
}

// IsCancelRequested reports whether taskID's cancellation flag has been
// set. A Handler should poll this between suspension points.
func (q *Queue) IsCancelRequested(taskID string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if task, ok := q.active[taskID]; ok {
		return task.CancelRequested
	}
	return false
}

// Close stops accepting new work from the worker pool and waits for
// in-flight tasks to return.
func (q *Queue) Close() {
	q.cancel()
	q.wg.Wait()
}

func (q *Queue) worker(ctx context.Context) {
	defer q.wg.Done()
	for {
		task, wait, ok := q.popReady()
		if !ok {
			select {
			case <-ctx.Done():
				return
			case <-q.wake:
			case <-time.After(wait):
			}
			continue
		}
		if ctx.Err() != nil {
			return
		}
		q.run(ctx, task)
	}
}

// popReady pops the highest-priority pending task if its NextRetryAt has
// arrived. If the heap is empty or the top isn't due yet, it returns
// ok=false and a wait duration the caller should sleep (or be woken early
// by signalWake).
func (q *Queue) popReady() (types.Task, time.Duration, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.pending.Len() == 0 {
		return types.Task{}, time.Second, false
	}

	readyAt := q.pending.peekReadyAt()
	if !readyAt.IsZero() && readyAt.After(time.Now()) {
		return types.Task{}, time.Until(readyAt), false
	}

	it := heap.Pop(&q.pending).(*item)
	delete(q.items, it.task.ID)
	it.task.Status = types.TaskActive
	it.task.StartedAt = time.Now()
	q.active[it.task.ID] = it.task
	return *it.task, 0, true
}

func (q *Queue) run(ctx context.Context, task types.Task) {
	q.emit(Event{Type: EventTaskStarted, Task: task})

	handler, ok := q.handlers[task.Type]
	if !ok {
		q.finish(task.ID, fmt.Errorf("taskqueue: no handler registered for %q", task.Type))
		return
	}

	err := handler(ctx, task)
	q.finish(task.ID, err)
}

func (q *Queue) finish(taskID string, err error) {
	q.mu.Lock()
	task, ok := q.active[taskID]
	if !ok {
		q.mu.Unlock()
		return
	}
	delete(q.active, taskID)

	if err == nil {
		task.Status = types.TaskCompleted
		task.CompletedAt = time.Now()
		snapshot := *task
		q.mu.Unlock()
		q.emit(Event{Type: EventTaskCompleted, Task: snapshot})
		return
	}

	task.LastError = err.Error()
	if task.RetryCount < q.cfg.MaxRetries {
		task.RetryCount++
		task.Status = types.TaskPending
		backoff := q.cfg.RetryDelay * time.Duration(1<<uint(task.RetryCount-1))
		task.NextRetryAt = time.Now().Add(backoff)

		it := &item{task: task}
		heap.Push(&q.pending, it)
		q.items[task.ID] = it
		snapshot := *task
		q.mu.Unlock()
		q.emit(Event{Type: EventTaskRetry, Task: snapshot})
		q.signalWake()
		return
	}

	task.Status = types.TaskFailed
	task.FailedAt = time.Now()
	snapshot := *task
	q.mu.Unlock()
	q.emit(Event{Type: EventTaskFailed, Task: snapshot})
}
