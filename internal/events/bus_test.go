package events

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sevenseconds/vibescout/internal/taskqueue"
	"github.com/sevenseconds/vibescout/internal/types"
)

func TestProgressBroadcastsAndRecordsLatest(t *testing.T) {
	b := New()
	ch := b.Subscribe("sub-1")
	defer b.Unsubscribe("sub-1")

	snapshot := types.IndexingProgress{Active: true, ProjectName: "proj", TotalFiles: 3}
	b.Progress(snapshot)

	evt := <-ch
	require.Equal(t, KindProgress, evt.Kind)
	require.Equal(t, snapshot, evt.Progress)
	require.Equal(t, snapshot, b.LatestProgress())
}

func TestLogfBuffersAndBroadcasts(t *testing.T) {
	b := New()
	ch := b.Subscribe("sub-1")
	defer b.Unsubscribe("sub-1")

	b.Logf("pipeline: %s: %v", "main.go", "boom")

	evt := <-ch
	require.Equal(t, KindLog, evt.Kind)
	require.Equal(t, "pipeline: main.go: boom", evt.Log.Message)
	require.Equal(t, "INFO", evt.Log.Level)

	logs := b.RecentLogs()
	require.Len(t, logs, 1)
	require.Equal(t, "pipeline: main.go: boom", logs[0].Message)
}

func TestRecentLogsWrapsAtCapacity(t *testing.T) {
	b := New()
	for i := 0; i < recentLogCapacity+10; i++ {
		b.Logf("line %d", i)
	}
	logs := b.RecentLogs()
	require.Len(t, logs, recentLogCapacity)
	require.Equal(t, "line 10", logs[0].Message)
	require.Equal(t, "line 109", logs[len(logs)-1].Message)
}

func TestTaskListenerBroadcastsLifecycleEvents(t *testing.T) {
	b := New()
	ch := b.Subscribe("sub-1")
	defer b.Unsubscribe("sub-1")

	listener := b.TaskListener()
	task := types.Task{ID: "t1", Type: types.TaskIndexFolder, Status: types.TaskActive}
	listener(taskqueue.Event{Type: taskqueue.EventTaskStarted, Task: task})

	evt := <-ch
	require.Equal(t, KindTask, evt.Kind)
	require.Equal(t, taskqueue.EventTaskStarted, evt.Task.Type)
	require.Equal(t, "t1", evt.Task.Task.ID)
}

func TestSlowSubscriberDoesNotBlockPublisher(t *testing.T) {
	b := New()
	ch := b.Subscribe("slow")
	defer b.Unsubscribe("slow")

	for i := 0; i < subscriberBuffer+5; i++ {
		b.Logf("line %d", i)
	}

	require.Len(t, ch, subscriberBuffer)
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	b := New()
	ch := b.Subscribe("sub-1")
	b.Unsubscribe("sub-1")

	_, ok := <-ch
	require.False(t, ok)
}
