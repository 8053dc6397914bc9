// Package throttle implements the per-provider adaptive-concurrency
// (AIMD) limiter spec.md §4.4 specifies: additive-increase on success,
// multiplicative-decrease on a recognized rate-limit error, with FIFO
// admission so bursts are served fairly.
//
// The teacher has no equivalent component — its provider calls are
// unthrottled — so this is implemented directly from the specification,
// in the mutex-guarded-state-plus-channel idiom internal/watcher's
// fileWatcher uses for its own concurrency bookkeeping (debounce timers,
// pause/resume flags).
package throttle

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"
)

// DefaultErrorPatterns is the default set of substrings recognized as
// rate-limit failures, per spec.md §4.4.
var DefaultErrorPatterns = []string{
	"429", "Rate limit", "too many requests",
	"1214", "1301", "1302", "并发数过高",
}

// Config tunes a Throttler's AIMD parameters.
type Config struct {
	// Name is the provider key this throttler guards.
	Name string
	// Initial is the starting concurrency (4-16 depending on provider tier).
	Initial int
	// Max caps concurrency growth (16-32 depending on provider tier).
	Max int
	// IncreaseThreshold is the consecutive-success count that triggers a
	// concurrency increase (10-20).
	IncreaseThreshold int
	// Retries is the max retry attempts for a matched rate-limit failure;
	// a value <= 0 selects the default of 3.
	Retries int
	// ErrorPatterns overrides DefaultErrorPatterns when non-nil.
	ErrorPatterns []string
}

func (c Config) withDefaults() Config {
	if c.Initial <= 0 {
		c.Initial = 4
	}
	if c.Max <= 0 {
		c.Max = 16
	}
	if c.IncreaseThreshold <= 0 {
		c.IncreaseThreshold = 10
	}
	if c.Retries <= 0 {
		c.Retries = 3
	}
	if c.ErrorPatterns == nil {
		c.ErrorPatterns = DefaultErrorPatterns
	}
	return c
}

const minConcurrency = 1

// waiter is a resumption token parked in the FIFO queue while admission is
// at capacity.
type waiter struct {
	resume chan struct{}
}

// Throttler is a single provider's AIMD concurrency limiter.
type Throttler struct {
	cfg Config

	mu          sync.Mutex
	concurrency int
	activeCount int
	successCount int
	queue       []*waiter
}

// New creates a Throttler for one provider.
func New(cfg Config) *Throttler {
	cfg = cfg.withDefaults()
	return &Throttler{cfg: cfg, concurrency: cfg.Initial}
}

// State snapshots the throttler's current counters, for reporting/tests.
type State struct {
	Name        string
	Concurrency int
	ActiveCount int
	QueueDepth  int
}

// State returns a point-in-time snapshot.
func (t *Throttler) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return State{
		Name:        t.cfg.Name,
		Concurrency: t.concurrency,
		ActiveCount: t.activeCount,
		QueueDepth:  len(t.queue),
	}
}

// Task is the unit of work Run admits and executes.
type Task func(ctx context.Context) (any, error)

// Run admits task under the throttler's AIMD gate and executes it,
// retrying on recognized rate-limit failures per spec.md §4.4's run()
// algorithm.
func (t *Throttler) Run(ctx context.Context, task Task) (any, error) {
	if err := t.admit(ctx); err != nil {
		return nil, err
	}
	defer t.release()

	var lastErr error
	for attempt := 0; attempt <= t.cfg.Retries; attempt++ {
		result, err := task(ctx)
		if err == nil {
			t.onSuccess()
			return result, nil
		}

		if !matchesErrorPattern(err, t.cfg.ErrorPatterns) {
			return nil, err // non-matching failure: propagate immediately
		}

		lastErr = err
		t.onRateLimited()
		if attempt == t.cfg.Retries {
			break
		}

		delay := time.Duration(math.Pow(2, float64(attempt))) * time.Second
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
	return nil, fmt.Errorf("throttle: %s exhausted %d retries: %w", t.cfg.Name, t.cfg.Retries, lastErr)
}

// admit increments activeCount if under the concurrency ceiling, or parks
// the caller on the FIFO waiter queue until resumed.
func (t *Throttler) admit(ctx context.Context) error {
	t.mu.Lock()
	if t.activeCount < t.concurrency {
		t.activeCount++
		t.mu.Unlock()
		return nil
	}
	w := &waiter{resume: make(chan struct{})}
	t.queue = append(t.queue, w)
	t.mu.Unlock()

	select {
	case <-w.resume:
		t.mu.Lock()
		t.activeCount++
		t.mu.Unlock()
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// release decrements activeCount and wakes the next FIFO waiter if there
// is now room under the concurrency ceiling.
func (t *Throttler) release() {
	t.mu.Lock()
	t.activeCount--
	var next *waiter
	if t.activeCount < t.concurrency && len(t.queue) > 0 {
		next = t.queue[0]
		t.queue = t.queue[1:]
	}
	t.mu.Unlock()

	if next != nil {
		close(next.resume)
	}
}

func (t *Throttler) onSuccess() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.successCount++
	if t.successCount >= t.cfg.IncreaseThreshold {
		if t.concurrency < t.cfg.Max {
			t.concurrency++
		}
		t.successCount = 0
	}
}

func (t *Throttler) onRateLimited() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.successCount = 0
	if t.concurrency <= 2 {
		t.concurrency = minConcurrency
		return
	}
	halved := t.concurrency / 2
	if halved < minConcurrency {
		halved = minConcurrency
	}
	t.concurrency = halved
}

func matchesErrorPattern(err error, patterns []string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, p := range patterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}
