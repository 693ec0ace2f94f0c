// Package runner dispatches chunk work over a bounded pool of
// goroutines. The output buffer is pre-sized and row-disjoint before
// dispatch, so workers share it without locks; the runner only has to
// bound concurrency, surface the first failure and keep the caller's
// view of memory consistent (goroutine start and Wait give the required
// happens-before edges around the buffer writes).
package runner

import (
	"context"
	"log/slog"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/ephysio/waveforms/chunking"
)

// progressHz caps the advisory progress callback frequency. The final
// completion report always fires.
const progressHz = 25

// Config configures a run.
type Config struct {
	// Jobs is the maximum number of concurrent workers. Values below 1
	// select GOMAXPROCS.
	Jobs int
	// Progress, when non-nil, receives advisory (done, total) chunk
	// counts. It may be called from worker goroutines and stops firing
	// after a failure.
	Progress func(done, total int)
	// Logger receives per-chunk debug logging. Nil disables logging.
	Logger *slog.Logger
}

// Run invokes fn over every chunk with at most cfg.Jobs workers.
//
// On the first failure no further chunks are scheduled; chunks already
// in flight run to completion (their writes remain valid) and the
// failure is returned after the drain. Output written by completed
// chunks is never rolled back. With Jobs=1 execution is fully
// sequential and, by row-disjointness of the destinations, produces
// bytes identical to any parallel run.
func Run(ctx context.Context, chunks []chunking.Chunk, cfg Config, fn func(ctx context.Context, c chunking.Chunk) error) error {
	if len(chunks) == 0 {
		return nil
	}
	jobs := cfg.Jobs
	if jobs < 1 {
		jobs = runtime.GOMAXPROCS(0)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	tracker := newTracker(len(chunks), cfg.Progress)

	g, gctx := errgroup.WithContext(ctx)
	sem := semaphore.NewWeighted(int64(jobs))
	for _, c := range chunks {
		// A failed sibling cancels gctx; stop scheduling but keep
		// in-flight chunks running.
		if err := sem.Acquire(gctx, 1); err != nil {
			break
		}
		g.Go(func() error {
			defer sem.Release(1)
			logger.Debug("chunk dispatched",
				"segment", c.Segment, "start", c.Start, "end", c.End)
			if err := fn(gctx, c); err != nil {
				logger.Error("chunk failed",
					"segment", c.Segment, "start", c.Start, "end", c.End, "error", err)
				return err
			}
			tracker.step()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	// Scheduling may have stopped because the caller's context was
	// cancelled before any worker failed.
	return ctx.Err()
}

// tracker throttles the advisory progress callback.
type tracker struct {
	total   int
	done    atomic.Int64
	limiter *rate.Limiter
	fn      func(done, total int)
}

func newTracker(total int, fn func(done, total int)) *tracker {
	if fn == nil {
		return nil
	}
	return &tracker{
		total:   total,
		limiter: rate.NewLimiter(rate.Limit(progressHz), 1),
		fn:      fn,
	}
}

func (t *tracker) step() {
	if t == nil {
		return
	}
	done := int(t.done.Add(1))
	if done == t.total || t.limiter.Allow() {
		t.fn(done, t.total)
	}
}
