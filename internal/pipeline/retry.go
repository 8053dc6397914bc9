package pipeline

import (
	"context"
	"time"
)

// retryDelays is spec.md §4.7's "retry up to 3 times with delays 1s, 2s,
// 4s" — one entry per retry attempt after the first.
var retryDelays = []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}

// runWithRetry calls fn up to len(retryDelays)+1 times, sleeping the
// matching delay between attempts. It stops early if ctx is cancelled or
// shuttingDown reports true, per spec.md §4.7's "unless a shutdown flag is
// set." The final error returned is the last attempt's.
func runWithRetry(ctx context.Context, shuttingDown func() bool, fn func() error) error {
	var lastErr error
	for attempt := 0; ; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if attempt >= len(retryDelays) || shuttingDown() {
			return lastErr
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryDelays[attempt]):
		}
	}
}
