package throttle

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThrottler_RunReturnsResultOnSuccess(t *testing.T) {
	t.Parallel()

	th := New(Config{Name: "test", Initial: 2, Max: 4})
	result, err := th.Run(context.Background(), func(ctx context.Context) (any, error) {
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", result)
}

func TestThrottler_NonMatchingFailurePropagatesImmediately(t *testing.T) {
	t.Parallel()

	th := New(Config{Name: "test", Initial: 2, Max: 4, Retries: 3})
	var calls int32
	_, err := th.Run(context.Background(), func(ctx context.Context) (any, error) {
		atomic.AddInt32(&calls, 1)
		return nil, errors.New("boom: not a rate limit")
	})
	assert.Error(t, err)
	assert.Equal(t, int32(1), calls, "non-matching errors must not be retried")
}

func TestThrottler_ConcurrencyIncreasesAfterThreshold(t *testing.T) {
	t.Parallel()

	th := New(Config{Name: "test", Initial: 2, Max: 4, IncreaseThreshold: 3})
	for i := 0; i < 3; i++ {
		_, err := th.Run(context.Background(), func(ctx context.Context) (any, error) {
			return nil, nil
		})
		require.NoError(t, err)
	}
	assert.Equal(t, 3, th.State().Concurrency)
}

func TestThrottler_ConcurrencyHalvesOnRateLimitError(t *testing.T) {
	t.Parallel()

	th := New(Config{Name: "test", Initial: 8, Max: 16, Retries: 0})
	_, err := th.Run(context.Background(), func(ctx context.Context) (any, error) {
		return nil, errors.New("429 Too Many Requests")
	})
	assert.Error(t, err)
	assert.Equal(t, 4, th.State().Concurrency)
}

func TestThrottler_ConcurrencyDropsToMinWhenAlreadyLow(t *testing.T) {
	t.Parallel()

	th := New(Config{Name: "test", Initial: 2, Max: 16, Retries: 0})
	_, err := th.Run(context.Background(), func(ctx context.Context) (any, error) {
		return nil, errors.New("429")
	})
	assert.Error(t, err)
	assert.Equal(t, minConcurrency, th.State().Concurrency)
}

func TestThrottler_RetriesMatchedErrorUpToLimit(t *testing.T) {
	t.Parallel()

	th := New(Config{Name: "test", Initial: 4, Max: 8, Retries: 2})
	var calls int32
	_, err := th.Run(context.Background(), func(ctx context.Context) (any, error) {
		atomic.AddInt32(&calls, 1)
		return nil, errors.New("429")
	})
	assert.Error(t, err)
	assert.Equal(t, int32(3), calls) // initial attempt + 2 retries
}

func TestThrottler_AdmissionBlocksAtConcurrencyCeiling(t *testing.T) {
	t.Parallel()

	th := New(Config{Name: "test", Initial: 1, Max: 1})
	started := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_, _ = th.Run(context.Background(), func(ctx context.Context) (any, error) {
			close(started)
			<-release
			return nil, nil
		})
	}()
	<-started

	done := make(chan struct{})
	go func() {
		_, _ = th.Run(context.Background(), func(ctx context.Context) (any, error) {
			return nil, nil
		})
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("second task should not run before the first releases its slot")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("second task never resumed after the first released its slot")
	}
}

func TestRegistry_GetIsStableByName(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	a := r.Get("ollama")
	b := r.Get("ollama")
	assert.Same(t, a, b)
}

func TestRegistry_ConfigureAppliesBeforeFirstGet(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	r.Configure("openai", Config{Initial: 16, Max: 32})
	th := r.Get("openai")
	assert.Equal(t, 16, th.State().Concurrency)
}
