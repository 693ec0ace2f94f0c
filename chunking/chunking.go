// Package chunking partitions the sample ranges of a multi-segment
// recording into contiguous chunks, the minimum unit of parallel work.
package chunking

import (
	"errors"
	"time"
)

// ErrChunkSize is returned when the requested chunk size is not positive.
var ErrChunkSize = errors.New("chunking: chunk size must be positive")

// Chunk is a half-open sample range [Start, End) within one segment.
type Chunk struct {
	Segment int
	Start   int64
	End     int64
}

// NumSamples returns the number of samples covered by the chunk.
func (c Chunk) NumSamples() int64 {
	return c.End - c.Start
}

// Plan splits every segment into ordered, non-overlapping chunks of at
// most size samples. Chunks are emitted in ascending (segment, start)
// order and cover each segment exactly. The final chunk of a segment may
// be shorter; a segment with zero samples yields no chunks.
func Plan(segmentSamples []int64, size int64) ([]Chunk, error) {
	if size <= 0 {
		return nil, ErrChunkSize
	}

	var chunks []Chunk
	for segment, numSamples := range segmentSamples {
		for start := int64(0); start < numSamples; start += size {
			end := start + size
			if end > numSamples {
				end = numSamples
			}
			chunks = append(chunks, Chunk{Segment: segment, Start: start, End: end})
		}
	}
	return chunks, nil
}

// SizeFromDuration converts a wall-clock chunk duration into a sample
// count at the given sampling frequency.
func SizeFromDuration(samplingFrequency float64, d time.Duration) int64 {
	return int64(samplingFrequency * d.Seconds())
}
