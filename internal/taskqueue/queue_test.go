package taskqueue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevenseconds/vibescout/internal/types"
)

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestQueue_RunsTaskToCompletion(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var ran int32
	q := New(ctx, Config{MaxConcurrentTasks: 1}, map[types.TaskType]Handler{
		types.TaskIndexFiles: func(ctx context.Context, task types.Task) error {
			ran++
			return nil
		},
	})
	defer q.Close()

	var events []Event
	var mu sync.Mutex
	q.SetListener(func(e Event) {
		mu.Lock()
		events = append(events, e)
		mu.Unlock()
	})

	id := q.Add(types.TaskIndexFiles, types.PriorityMedium, nil)

	waitFor(t, time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		for _, e := range events {
			if e.Type == EventTaskCompleted && e.Task.ID == id {
				return true
			}
		}
		return false
	})
}

func TestQueue_RetriesOnFailureThenSucceeds(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var attempts int
	var mu sync.Mutex
	q := New(ctx, Config{MaxConcurrentTasks: 1, RetryDelay: time.Millisecond}, map[types.TaskType]Handler{
		types.TaskIndexFiles: func(ctx context.Context, task types.Task) error {
			mu.Lock()
			attempts++
			n := attempts
			mu.Unlock()
			if n < 2 {
				return errors.New("transient failure")
			}
			return nil
		},
	})
	defer q.Close()

	var completed bool
	var cmu sync.Mutex
	q.SetListener(func(e Event) {
		if e.Type == EventTaskCompleted {
			cmu.Lock()
			completed = true
			cmu.Unlock()
		}
	})

	q.Add(types.TaskIndexFiles, types.PriorityHigh, nil)

	waitFor(t, time.Second, func() bool {
		cmu.Lock()
		defer cmu.Unlock()
		return completed
	})
}

func TestQueue_FailsPermanentlyAfterMaxRetries(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := New(ctx, Config{MaxConcurrentTasks: 1, MaxRetries: 1, RetryDelay: time.Millisecond}, map[types.TaskType]Handler{
		types.TaskIndexFiles: func(ctx context.Context, task types.Task) error {
			return errors.New("permanent failure")
		},
	})
	defer q.Close()

	var failed bool
	var mu sync.Mutex
	q.SetListener(func(e Event) {
		if e.Type == EventTaskFailed {
			mu.Lock()
			failed = true
			mu.Unlock()
		}
	})

	q.Add(types.TaskIndexFiles, types.PriorityLow, nil)

	waitFor(t, time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return failed
	})
}

func TestQueue_CancelPendingTaskRemovesIt(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	block := make(chan struct{})
	q := New(ctx, Config{MaxConcurrentTasks: 1}, map[types.TaskType]Handler{
		types.TaskIndexFiles: func(ctx context.Context, task types.Task) error {
			<-block
			return nil
		},
	})
	defer func() {
		close(block)
		q.Close()
	}()

	// Occupy the single worker so the next task stays pending.
	q.Add(types.TaskIndexFiles, types.PriorityHigh, nil)
	time.Sleep(20 * time.Millisecond)

	pendingID := q.Add(types.TaskIndexFiles, types.PriorityLow, nil)
	require.NoError(t, q.Cancel(pendingID))

	err := q.Cancel(pendingID)
	assert.Error(t, err) // already removed from both pending and active
}

func TestQueue_CancelActiveTaskSetsFlag(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	started := make(chan struct{})
	release := make(chan struct{})
	var sawCancel bool

	q := New(ctx, Config{MaxConcurrentTasks: 1}, map[types.TaskType]Handler{
		types.TaskIndexFiles: func(ctx context.Context, task types.Task) error {
			close(started)
			<-release
			sawCancel = q.IsCancelRequested(task.ID)
			return nil
		},
	})
	defer q.Close()

	id := q.Add(types.TaskIndexFiles, types.PriorityHigh, nil)
	<-started

	require.NoError(t, q.Cancel(id))
	close(release)

	waitFor(t, time.Second, func() bool { return sawCancel })
}

func TestQueue_PriorityOrdersBeforeCreationTime(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var order []types.TaskPriority
	var mu sync.Mutex
	block := make(chan struct{})

	q := New(ctx, Config{MaxConcurrentTasks: 1}, map[types.TaskType]Handler{
		types.TaskIndexFiles: func(ctx context.Context, task types.Task) error {
			mu.Lock()
			order = append(order, task.Priority)
			mu.Unlock()
			<-block
			return nil
		},
	})
	defer q.Close()

	// First task occupies the only worker; the rest queue up and must drain
	// in priority order once released.
	q.Add(types.TaskIndexFiles, types.PriorityLow, nil)
	time.Sleep(20 * time.Millisecond)

	q.Add(types.TaskIndexFiles, types.PriorityLow, nil)
	q.Add(types.TaskIndexFiles, types.PriorityHigh, nil)
	q.Add(types.TaskIndexFiles, types.PriorityMedium, nil)

	close(block)

	waitFor(t, time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(order) >= 4
	})

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, order, 4)
	assert.Equal(t, types.PriorityLow, order[0]) // already running before the rest were added
	assert.Equal(t, types.PriorityHigh, order[1])
	assert.Equal(t, types.PriorityMedium, order[2])
	assert.Equal(t, types.PriorityLow, order[3])
}
