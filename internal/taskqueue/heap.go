package taskqueue

import (
	"container/heap"
	"time"

	"github.com/sevenseconds/vibescout/internal/types"
)

// item wraps a queued Task with the heap bookkeeping container/heap needs
// for O(log n) arbitrary-position removal (cancellation of a still-pending
// task).
type item struct {
	task  *types.Task
	index int
}

// priorityHeap orders pending tasks by (priority asc, createdAt asc), per
// spec.md §4.8. No third-party priority-queue library appears anywhere in
// the retrieval pack, so this is stdlib container/heap, the idiomatic
// choice for exactly this shape.
type priorityHeap []*item

func (h priorityHeap) Len() int { return len(h) }

func (h priorityHeap) Less(i, j int) bool {
	a, b := h[i].task, h[j].task
	if a.Priority != b.Priority {
		return a.Priority < b.Priority
	}
	return a.CreatedAt.Before(b.CreatedAt)
}

func (h priorityHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *priorityHeap) Push(x any) {
	it := x.(*item)
	it.index = len(*h)
	*h = append(*h, it)
}

func (h *priorityHeap) Pop() any {
	old := *h
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	it.index = -1
	*h = old[:n-1]
	return it
}

// peekReadyAt returns the NextRetryAt of the top (highest-priority) pending
// item, or the zero Time if the heap is empty — used to size the worker's
// wait when the top task isn't due yet.
func (h priorityHeap) peekReadyAt() time.Time {
	if len(h) == 0 {
		return time.Time{}
	}
	return h[0].task.NextRetryAt
}

var _ heap.Interface = (*priorityHeap)(nil)
