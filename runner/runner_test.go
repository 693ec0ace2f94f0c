package runner

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ephysio/waveforms/chunking"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func makeChunks(t *testing.T, samples int64, size int64) []chunking.Chunk {
	t.Helper()
	chunks, err := chunking.Plan([]int64{samples}, size)
	require.NoError(t, err)
	return chunks
}

func TestRun_ProcessesEveryChunkOnce(t *testing.T) {
	chunks := makeChunks(t, 1000, 10) // 100 chunks

	var mu sync.Mutex
	seen := make(map[int64]int)

	err := Run(context.Background(), chunks, Config{Jobs: 4}, func(_ context.Context, c chunking.Chunk) error {
		mu.Lock()
		seen[c.Start]++
		mu.Unlock()
		return nil
	})
	require.NoError(t, err)

	require.Len(t, seen, 100)
	for start, n := range seen {
		assert.Equalf(t, 1, n, "chunk starting at %d ran %d times", start, n)
	}
}

func TestRun_BoundsConcurrency(t *testing.T) {
	chunks := makeChunks(t, 500, 10)

	var inFlight, peak atomic.Int64
	err := Run(context.Background(), chunks, Config{Jobs: 3}, func(_ context.Context, c chunking.Chunk) error {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		inFlight.Add(-1)
		return nil
	})
	require.NoError(t, err)
	assert.LessOrEqual(t, peak.Load(), int64(3))
}

func TestRun_FirstFailureStopsScheduling(t *testing.T) {
	chunks := makeChunks(t, 10000, 10) // 1000 chunks
	boom := errors.New("read failed")

	var started atomic.Int64
	err := Run(context.Background(), chunks, Config{Jobs: 2}, func(ctx context.Context, c chunking.Chunk) error {
		started.Add(1)
		if c.Start == 0 {
			return boom
		}
		// In-flight siblings run to completion, they are not interrupted.
		<-ctx.Done()
		return nil
	})
	require.ErrorIs(t, err, boom)
	assert.Less(t, started.Load(), int64(len(chunks)))
}

func TestRun_SequentialIsOrdered(t *testing.T) {
	chunks := makeChunks(t, 100, 10)

	var order []int64
	err := Run(context.Background(), chunks, Config{Jobs: 1}, func(_ context.Context, c chunking.Chunk) error {
		order = append(order, c.Start)
		return nil
	})
	require.NoError(t, err)

	require.Len(t, order, 10)
	for i := 1; i < len(order); i++ {
		assert.Less(t, order[i-1], order[i])
	}
}

func TestRun_Progress(t *testing.T) {
	chunks := makeChunks(t, 300, 10)

	var mu sync.Mutex
	var reports [][2]int
	err := Run(context.Background(), chunks, Config{
		Jobs: 1,
		Progress: func(done, total int) {
			mu.Lock()
			reports = append(reports, [2]int{done, total})
			mu.Unlock()
		},
	}, func(_ context.Context, c chunking.Chunk) error {
		return nil
	})
	require.NoError(t, err)

	require.NotEmpty(t, reports)
	last := reports[len(reports)-1]
	assert.Equal(t, [2]int{30, 30}, last, "completion report must always fire")
	for i := 1; i < len(reports); i++ {
		assert.Less(t, reports[i-1][0], reports[i][0])
	}
}

func TestRun_EmptyAndCancelled(t *testing.T) {
	require.NoError(t, Run(context.Background(), nil, Config{}, nil))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var calls atomic.Int64
	err := Run(ctx, makeChunks(t, 100, 10), Config{Jobs: 2}, func(_ context.Context, c chunking.Chunk) error {
		calls.Add(1)
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls.Load())
}
