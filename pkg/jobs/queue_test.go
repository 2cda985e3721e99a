package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueRetriesUntilSuccess(t *testing.T) {
	var calls int32
	done := make(chan string, 1)
	q := NewQueue[string]("invalidate", func(ctx context.Context, pattern string) error {
		if atomic.AddInt32(&calls, 1) < 3 {
			return errors.New("redis down")
		}
		done <- pattern
		return nil
	}, QueueConfig{MaxRetries: 3, RetryDelay: time.Millisecond})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue("list:attendance:*"))
	select {
	case pattern := <-done:
		assert.Equal(t, "list:attendance:*", pattern)
	case <-time.After(2 * time.Second):
		t.Fatal("job was not retried to completion")
	}
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestQueueGivesUpAfterMaxRetries(t *testing.T) {
	var calls int32
	q := NewQueue[string]("invalidate", func(ctx context.Context, pattern string) error {
		atomic.AddInt32(&calls, 1)
		return errors.New("redis down")
	}, QueueConfig{MaxRetries: 1, RetryDelay: time.Millisecond})
	q.Start(context.Background())

	require.NoError(t, q.Enqueue("list:content:*"))
	assert.Eventually(t, func() bool { return atomic.LoadInt32(&calls) == 2 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	q.Stop()
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestQueueRejectsWhenNotRunning(t *testing.T) {
	q := NewQueue[int]("noop", func(context.Context, int) error { return nil }, QueueConfig{})
	assert.ErrorIs(t, q.Enqueue(1), ErrNotRunning)

	q.Start(context.Background())
	q.Stop()
	assert.ErrorIs(t, q.Enqueue(2), ErrNotRunning)
}

func TestQueueRejectsWhenFull(t *testing.T) {
	block := make(chan struct{})
	q := NewQueue[int]("slow", func(ctx context.Context, _ int) error {
		select {
		case <-block:
		case <-ctx.Done():
		}
		return nil
	}, QueueConfig{Workers: 1, BufferSize: 1})
	q.Start(context.Background())
	defer func() {
		close(block)
		q.Stop()
	}()

	require.NoError(t, q.Enqueue(1))
	var full bool
	for i := 0; i < 5 && !full; i++ {
		full = errors.Is(q.Enqueue(i), ErrFull)
	}
	assert.True(t, full)
}
