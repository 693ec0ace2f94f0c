package waveforms

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ephysio/waveforms/buffer"
	"github.com/ephysio/waveforms/chunking"
	"github.com/ephysio/waveforms/recording"
	"github.com/ephysio/waveforms/runner"
	"github.com/ephysio/waveforms/spike"
)

// extraction carries the precomputed state of one extraction call:
// validated inputs, the chunk plan and the per-spike destination rows.
// Everything here is immutable once prepare returns, which is what
// makes the worker pool coordination-free.
type extraction[S recording.Sample] struct {
	rec     recording.Reader[S]
	spikes  []spike.Spike
	nbefore int
	nafter  int
	window  int
	chunks  []chunking.Chunk
	offsets []int   // within-unit destination row per spike
	active  [][]int // active channels per unit, nil when dense
	gains   []float32
	shifts  []float32
	o       *options
}

func prepare[S recording.Sample](rec recording.Reader[S], spikes []spike.Spike, unitIDs []string, nbefore, nafter int, o *options) (*extraction[S], error) {
	if nbefore < 0 || nafter < 0 || nbefore+nafter == 0 {
		return nil, ErrBadWindow
	}
	if err := spike.Validate(spikes, len(unitIDs), rec.NumSegments()); err != nil {
		return nil, err
	}
	if o.mask != nil {
		if o.mask.NumUnits() != len(unitIDs) || o.mask.NumChannels() != rec.NumChannels() {
			return nil, fmt.Errorf("%w: mask is %dx%d, units x channels is %dx%d",
				ErrMaskShape, o.mask.NumUnits(), o.mask.NumChannels(), len(unitIDs), rec.NumChannels())
		}
		if err := o.mask.Validate(); err != nil {
			return nil, err
		}
	}

	e := &extraction[S]{
		rec:     rec,
		spikes:  spikes,
		nbefore: nbefore,
		nafter:  nafter,
		window:  nbefore + nafter,
		o:       o,
	}

	chunkSize := o.chunkSize
	if chunkSize == 0 && o.chunkDuration > 0 {
		chunkSize = chunking.SizeFromDuration(rec.SamplingFrequency(), o.chunkDuration)
	}
	if chunkSize == 0 {
		chunkSize = chunking.SizeFromDuration(rec.SamplingFrequency(), time.Second)
	}
	segmentSamples := make([]int64, rec.NumSegments())
	for s := range segmentSamples {
		segmentSamples[s] = rec.NumSamples(s)
	}
	chunks, err := chunking.Plan(segmentSamples, chunkSize)
	if err != nil {
		return nil, err
	}
	e.chunks = chunks

	if o.storage == buffer.Memmap {
		if o.folder == "" {
			return nil, ErrMissingFolder
		}
		if err := os.MkdirAll(o.folder, 0o755); err != nil {
			return nil, fmt.Errorf("waveforms: creating memmap folder: %w", err)
		}
	}

	if o.returnScaled {
		scaler, ok := rec.(recording.Scaler)
		if !ok {
			return nil, ErrNoScaling
		}
		e.gains = scaler.Gains()
		e.shifts = scaler.Offsets()
	}

	e.offsets = spike.WithinUnitOffsets(spikes, len(unitIDs))
	if o.mask != nil {
		e.active = make([][]int, len(unitIDs))
		for u := range unitIDs {
			e.active[u] = o.mask.Active(u)
		}
	}
	return e, nil
}

// activeChannels returns the unit's channel restriction, nil when dense.
func (e *extraction[S]) activeChannels(unit int) []int {
	if e.active == nil {
		return nil
	}
	return e.active[unit]
}

// slot is one spike's destination: a row view, the channel restriction
// and the row's frame stride. The stride exceeds the restriction only
// in sparse single-buffer mode, where every frame packs the unit's
// active channels first and pads to the widest unit.
type slot[S recording.Sample] struct {
	dst      []S
	channels []int
	stride   int
}

// run dispatches the chunk plan over the worker pool. dest resolves a
// spike index to its destination slot.
func (e *extraction[S]) run(ctx context.Context, dest func(i int) slot[S]) error {
	logger := e.o.logger.WithJobs(e.o.jobs)
	logger.Debug("extraction started",
		"chunks", len(e.chunks), "spikes", len(e.spikes), "window", e.window, "storage", e.o.storage.String())

	err := runner.Run(ctx, e.chunks, runner.Config{
		Jobs:     e.o.jobs,
		Progress: e.o.progress,
		Logger:   e.o.logger.Logger,
	}, func(_ context.Context, c chunking.Chunk) error {
		if err := e.extractChunk(c, dest); err != nil {
			return &ExtractionError{Segment: c.Segment, Start: c.Start, End: c.End, Err: err}
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Debug("extraction finished", "chunks", len(e.chunks))
	return nil
}

// extractChunk copies the waveform of every spike whose timestamp falls
// inside the chunk. One trace read covers the chunk plus the window
// margins, clipped to the segment; spikes then copy from it.
func (e *extraction[S]) extractChunk(c chunking.Chunk, dest func(i int) slot[S]) error {
	lo, hi := spike.Range(e.spikes, c.Segment, c.Start, c.End)
	if lo == hi {
		return nil
	}

	numSamples := e.rec.NumSamples(c.Segment)
	readStart := c.Start - int64(e.nbefore)
	if readStart < 0 {
		readStart = 0
	}
	readEnd := c.End + int64(e.nafter)
	if readEnd > numSamples {
		readEnd = numSamples
	}

	traces, err := e.rec.Traces(c.Segment, readStart, readEnd, nil)
	if err != nil {
		return err
	}

	numChannels := e.rec.NumChannels()
	for i := lo; i < hi; i++ {
		e.writeWaveform(dest(i), traces, readStart, readEnd, numChannels, e.spikes[i].Sample)
	}
	return nil
}

// writeWaveform fills one destination slot. Frames outside the segment
// are left at zero; the buffer is zero-initialized, so skipping them is
// the zero-padding. Exactly this one invocation ever touches the slot.
func (e *extraction[S]) writeWaveform(sl slot[S], traces []S, readStart, readEnd int64, numChannels int, sample int64) {
	first := sample - int64(e.nbefore)
	for t := 0; t < e.window; t++ {
		src := first + int64(t)
		if src < readStart || src >= readEnd {
			continue
		}
		row := traces[(src-readStart)*int64(numChannels) : (src-readStart+1)*int64(numChannels)]

		switch {
		case sl.channels == nil && e.gains == nil:
			copy(sl.dst[t*sl.stride:t*sl.stride+numChannels], row)
		case sl.channels == nil:
			out := sl.dst[t*sl.stride : t*sl.stride+numChannels]
			for ch := 0; ch < numChannels; ch++ {
				out[ch] = S(float32(row[ch])*e.gains[ch] + e.shifts[ch])
			}
		case e.gains == nil:
			out := sl.dst[t*sl.stride : t*sl.stride+len(sl.channels)]
			for j, ch := range sl.channels {
				out[j] = row[ch]
			}
		default:
			out := sl.dst[t*sl.stride : t*sl.stride+len(sl.channels)]
			for j, ch := range sl.channels {
				out[j] = S(float32(row[ch])*e.gains[ch] + e.shifts[ch])
			}
		}
	}
}
