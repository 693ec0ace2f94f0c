package waveforms

import (
	"context"

	"github.com/ephysio/waveforms/buffer"
	"github.com/ephysio/waveforms/recording"
	"github.com/ephysio/waveforms/sparsity"
	"github.com/ephysio/waveforms/spike"
)

// ExtractToBuffers extracts one waveform per spike into per-unit
// buffers, keyed by unit ID. Each unit's buffer is
// spike_count × (nbefore+nafter) × channels, in the unit's spike order.
//
// The spike sequence must be sorted ascending by (segment, sample).
// Configuration problems are reported before any parallel work starts.
// When a chunk fails mid-run the returned ExtractionError names its
// segment and sample range; buffers are returned alongside the error
// with every completed chunk's rows intact, and the caller owns closing
// them either way.
func ExtractToBuffers[S recording.Sample](ctx context.Context, rec recording.Reader[S], spikes []spike.Spike, unitIDs []string, nbefore, nafter int, optFns ...Option) (map[string]*buffer.Buffer[S], error) {
	e, err := prepare(rec, spikes, unitIDs, nbefore, nafter, applyOptions(optFns))
	if err != nil {
		return nil, err
	}

	counts := spike.CountByUnit(spikes, len(unitIDs))
	bufs, err := buffer.AllocatePerUnit[S](unitIDs, counts, e.window, rec.NumChannels(), e.o.mask, e.o.storage, e.o.folder)
	if err != nil {
		return nil, err
	}

	// Row destinations are fixed before dispatch: spike i of unit u goes
	// to row offsets[i] of u's buffer, a permutation of [0, counts[u]).
	byIndex := make([]*buffer.Buffer[S], len(unitIDs))
	for u, id := range unitIDs {
		byIndex[u] = bufs[id]
	}
	dest := func(i int) slot[S] {
		s := e.spikes[i]
		b := byIndex[s.Unit]
		return slot[S]{
			dst:      b.Row(e.offsets[i]),
			channels: e.activeChannels(int(s.Unit)),
			stride:   b.NumChannels(),
		}
	}

	if err := e.run(ctx, dest); err != nil {
		return bufs, err
	}

	if e.o.copyOut {
		for id, b := range bufs {
			bufs[id] = b.Copy()
			if closeErr := b.Close(); closeErr != nil {
				return bufs, closeErr
			}
		}
	}
	return bufs, nil
}

// ExtractToSingleBuffer extracts every waveform into one contiguous
// buffer whose row order equals the spike-sequence order. Under a
// sparsity mask the channel dimension is the largest active-channel
// count across units; each row packs its unit's active channels first
// and leaves the tail of every frame at zero.
//
// Failure semantics match ExtractToBuffers.
func ExtractToSingleBuffer[S recording.Sample](ctx context.Context, rec recording.Reader[S], spikes []spike.Spike, unitIDs []string, nbefore, nafter int, optFns ...Option) (*buffer.Buffer[S], error) {
	e, err := prepare(rec, spikes, unitIDs, nbefore, nafter, applyOptions(optFns))
	if err != nil {
		return nil, err
	}

	all, err := buffer.AllocateSingle[S](len(spikes), e.window, rec.NumChannels(), e.o.mask, e.o.storage, e.o.folder)
	if err != nil {
		return nil, err
	}

	// In single-buffer mode a spike's destination row is simply its
	// position in the global sequence.
	dest := func(i int) slot[S] {
		return slot[S]{
			dst:      all.Row(i),
			channels: e.activeChannels(int(e.spikes[i].Unit)),
			stride:   all.NumChannels(),
		}
	}

	if err := e.run(ctx, dest); err != nil {
		return all, err
	}

	if e.o.copyOut {
		heapCopy := all.Copy()
		if err := all.Close(); err != nil {
			return heapCopy, err
		}
		return heapCopy, nil
	}
	return all, nil
}

// SplitByUnits converts a single contiguous buffer into the per-unit
// form, preserving per-unit spike order. With copyRows false the views
// alias the buffer and die with it; with copyRows true they are
// materialized independently.
func SplitByUnits[S recording.Sample](unitIDs []string, spikes []spike.Spike, all *buffer.Buffer[S], mask *sparsity.Mask, copyRows bool) (map[string]*buffer.View[S], error) {
	return buffer.SplitByUnits(unitIDs, spikes, all, mask, copyRows)
}
