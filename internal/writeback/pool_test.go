package writeback

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"city-weather/internal/metrics"
	"city-weather/pkg/logger"
)

func newTestPool(workers, queue int) *Pool {
	return New(workers, queue, logger.NewZapLogger("test", io.Discard), metrics.New())
}

func collect(p *Pool) []Failure {
	var out []Failure
	for f := range p.Failures() {
		out = append(out, f)
	}
	return out
}

func TestPool_RunsTasksAndDrainsOnStop(t *testing.T) {
	p := newTestPool(3, 16)
	p.Start()

	var done atomic.Int32
	for i := 0; i < 10; i++ {
		require.True(t, p.Submit("cache_set", func(context.Context) error {
			time.Sleep(5 * time.Millisecond)
			done.Add(1)
			return nil
		}))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, p.Stop(ctx))
	assert.Equal(t, int32(10), done.Load())
	assert.Empty(t, collect(p))
}

func TestPool_FailuresAreIsolatedAndReported(t *testing.T) {
	p := newTestPool(2, 8)
	p.Start()

	var ok atomic.Int32
	p.Submit("snapshot_put", func(context.Context) error { return errors.New("bucket unreachable") })
	p.Submit("event_append", func(context.Context) error { panic("nil map write") })
	p.Submit("cache_set", func(context.Context) error { ok.Add(1); return nil })

	require.NoError(t, p.Stop(context.Background()))

	failures := collect(p)
	require.Len(t, failures, 2)
	byName := map[string]Failure{}
	for _, f := range failures {
		byName[f.Name] = f
		assert.NotEmpty(t, f.TaskID)
	}
	assert.EqualError(t, byName["snapshot_put"].Err, "bucket unreachable")
	assert.False(t, byName["snapshot_put"].Panicked)
	assert.True(t, byName["event_append"].Panicked)
	assert.Contains(t, byName["event_append"].Err.Error(), "nil map write")
	assert.Equal(t, int32(1), ok.Load())
}

func TestPool_SubmitNeverBlocksWhenFull(t *testing.T) {
	p := newTestPool(1, 1)
	p.Start()

	release := make(chan struct{})
	started := make(chan struct{})
	require.True(t, p.Submit("blocker", func(context.Context) error {
		close(started)
		<-release
		return nil
	}))
	<-started

	require.True(t, p.Submit("queued", func(context.Context) error { return nil }))

	begin := time.Now()
	assert.False(t, p.Submit("overflow", func(context.Context) error { return nil }))
	assert.Less(t, time.Since(begin), 100*time.Millisecond)

	close(release)
	require.NoError(t, p.Stop(context.Background()))
}

func TestPool_SubmitAfterStopIsRejected(t *testing.T) {
	p := newTestPool(1, 4)
	p.Start()
	require.NoError(t, p.Stop(context.Background()))

	assert.False(t, p.Submit("late", func(context.Context) error { return nil }))
	assert.NoError(t, p.Stop(context.Background()))
}

func TestPool_StopHonoursDeadline(t *testing.T) {
	p := newTestPool(1, 4)
	p.Start()

	release := make(chan struct{})
	p.Submit("slow", func(context.Context) error {
		<-release
		return nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, p.Stop(ctx), context.DeadlineExceeded)

	close(release)
	assert.NoError(t, p.Stop(context.Background()))
}

func TestPool_ConcurrentSubmit(t *testing.T) {
	p := newTestPool(4, 1000)
	p.Start()

	var ran atomic.Int32
	var accepted atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if p.Submit("cache_set", func(context.Context) error { ran.Add(1); return nil }) {
				accepted.Add(1)
			}
		}()
	}
	wg.Wait()

	require.NoError(t, p.Stop(context.Background()))
	assert.Equal(t, accepted.Load(), ran.Load())
	assert.Equal(t, int32(50), accepted.Load())
}
