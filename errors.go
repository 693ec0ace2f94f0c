package waveforms

import (
	"errors"
	"fmt"
)

var (
	// ErrBadWindow is returned when nbefore or nafter is negative, or
	// both are zero.
	ErrBadWindow = errors.New("waveforms: invalid window, nbefore and nafter must be non-negative and sum to a positive length")
	// ErrMissingFolder is returned when memmap storage is requested
	// without a folder.
	ErrMissingFolder = errors.New("waveforms: memmap storage requires a folder")
	// ErrMaskShape is returned when the sparsity mask does not match the
	// units × channels dimensions.
	ErrMaskShape = errors.New("waveforms: sparsity mask shape does not match units and channels")
	// ErrNoScaling is returned when scaled output is requested from a
	// recording that carries no gain/offset information.
	ErrNoScaling = errors.New("waveforms: recording does not provide scaling")
)

// ExtractionError reports the chunk that failed during parallel
// extraction. Buffer regions written by chunks that completed remain
// valid; the failing chunk's rows stay zero.
type ExtractionError struct {
	Segment int
	Start   int64
	End     int64
	Err     error
}

// Error implements error.
func (e *ExtractionError) Error() string {
	return fmt.Sprintf("waveforms: extraction failed in segment %d, samples [%d, %d): %v", e.Segment, e.Start, e.End, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ExtractionError) Unwrap() error {
	return e.Err
}
