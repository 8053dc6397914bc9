package watcher

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathDebouncer_CoalescesRepeatedTouches(t *testing.T) {
	var mu sync.Mutex
	var fired []string

	d := newPathDebouncerWithWindow(func(path string) {
		mu.Lock()
		fired = append(fired, path)
		mu.Unlock()
	}, 20*time.Millisecond)

	d.Touch("a.go")
	time.Sleep(5 * time.Millisecond)
	d.Touch("a.go")
	time.Sleep(5 * time.Millisecond)
	d.Touch("a.go")

	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, fired, 1)
	assert.Equal(t, "a.go", fired[0])
}

func TestPathDebouncer_TracksPathsIndependently(t *testing.T) {
	var mu sync.Mutex
	fired := make(map[string]int)

	d := newPathDebouncerWithWindow(func(path string) {
		mu.Lock()
		fired[path]++
		mu.Unlock()
	}, 10*time.Millisecond)

	d.Touch("a.go")
	d.Touch("b.go")

	time.Sleep(40 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, fired["a.go"])
	assert.Equal(t, 1, fired["b.go"])
}

func TestPathDebouncer_CancelAllStopsPendingFires(t *testing.T) {
	var mu sync.Mutex
	fired := false

	d := newPathDebouncerWithWindow(func(path string) {
		mu.Lock()
		fired = true
		mu.Unlock()
	}, 10*time.Millisecond)

	d.Touch("a.go")
	d.CancelAll()

	time.Sleep(40 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.False(t, fired)
}
