// Package recording defines the narrow read capability the extraction
// engine consumes. Loading, annotating and persisting recordings is the
// business of acquisition frontends; the engine only ever reads traces.
package recording

import (
	"errors"
	"fmt"
)

// ErrOutOfBounds is returned when a trace request exceeds a segment's
// sample range.
var ErrOutOfBounds = errors.New("recording: requested range out of segment bounds")

// Sample is the set of element types a recording can deliver and a
// buffer can hold.
type Sample interface {
	~int16 | ~int32 | ~float32 | ~float64
}

// Reader is a multi-segment, multichannel time series. Implementations
// must be safe for concurrent Traces calls; the extraction engine reads
// from many goroutines at once.
type Reader[S Sample] interface {
	// NumSegments returns the number of contiguous streams in the recording.
	NumSegments() int
	// NumSamples returns the sample count of one segment.
	NumSamples(segment int) int64
	// NumChannels returns the size of the ordered channel set.
	NumChannels() int
	// SamplingFrequency returns the sampling rate in Hz.
	SamplingFrequency() float64
	// Traces returns frames [start, end) of one segment restricted to the
	// given channels (nil selects all), flattened row-major as
	// [frame][channel]. The returned slice must not alias internal
	// mutable state.
	Traces(segment int, start, end int64, channels []int) ([]S, error)
}

// Scaler is an optional capability of a Reader: per-channel affine
// conversion from raw samples to physical units
// (physical = raw*gain + offset).
type Scaler interface {
	Gains() []float32
	Offsets() []float32
}

// CheckBounds validates a trace request against a segment's length.
func CheckBounds(segment int, start, end, numSamples int64) error {
	if start < 0 || end > numSamples || start > end {
		return fmt.Errorf("%w: segment %d samples [%d, %d) of %d", ErrOutOfBounds, segment, start, end, numSamples)
	}
	return nil
}
