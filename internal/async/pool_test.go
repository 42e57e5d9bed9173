package async

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolProcessesAllJobs(t *testing.T) {
	var mu sync.Mutex
	seen := map[string]int{}

	pool := NewPool(context.Background(), 3, 8, func(_ context.Context, job Job) error {
		mu.Lock()
		seen[job.Path]++
		mu.Unlock()
		return nil
	}, nil)

	paths := []string{"a.txt", "b.txt", "c.txt", "d.txt", "e.txt"}
	for _, p := range paths {
		require.NoError(t, pool.Enqueue(context.Background(), Job{Path: p}))
	}
	pool.Shutdown()

	assert.Len(t, seen, len(paths))
	for _, p := range paths {
		assert.Equal(t, 1, seen[p], "path %s", p)
	}
}

func TestPoolSurvivesHandlerErrors(t *testing.T) {
	var mu sync.Mutex
	var processed int

	pool := NewPool(context.Background(), 1, 2, func(_ context.Context, job Job) error {
		mu.Lock()
		processed++
		mu.Unlock()
		if job.Path == "bad.txt" {
			return errors.New("boom")
		}
		return nil
	}, nil)

	require.NoError(t, pool.Enqueue(context.Background(), Job{Path: "bad.txt"}))
	require.NoError(t, pool.Enqueue(context.Background(), Job{Path: "good.txt"}))
	pool.Shutdown()

	assert.Equal(t, 2, processed)
}

func TestEnqueueHonorsContext(t *testing.T) {
	// One worker blocked forever and a full queue: the next enqueue must
	// give up when its context ends.
	block := make(chan struct{})
	pool := NewPool(context.Background(), 1, 1, func(context.Context, Job) error {
		<-block
		return nil
	}, nil)
	defer func() {
		close(block)
		pool.Shutdown()
	}()

	require.NoError(t, pool.Enqueue(context.Background(), Job{Path: "running.txt"}))
	require.NoError(t, pool.Enqueue(context.Background(), Job{Path: "queued.txt"}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := pool.Enqueue(ctx, Job{Path: "rejected.txt"})
	assert.ErrorIs(t, err, context.Canceled)
}
