package recording

import (
	"fmt"
	"math/rand"
)

// Synthetic is a seeded in-memory recording. Identical seeds yield
// identical traces, which makes it the fixture of choice for the
// determinism tests of the extraction engine.
type Synthetic[S Sample] struct {
	samplingFrequency float64
	numChannels       int
	segments          [][]S // row-major [frame][channel] per segment
	gains             []float32
	offsets           []float32
}

// NewSynthetic generates a recording with seeded noise.
func NewSynthetic[S Sample](seed int64, samplingFrequency float64, numChannels int, segmentSamples []int64) *Synthetic[S] {
	rng := rand.New(rand.NewSource(seed)) // nolint gosec

	segments := make([][]S, len(segmentSamples))
	for i, n := range segmentSamples {
		data := make([]S, n*int64(numChannels))
		for j := range data {
			// Centered noise, scaled so it stays representable for
			// integer sample types.
			data[j] = S(rng.NormFloat64() * 50)
		}
		segments[i] = data
	}

	gains := make([]float32, numChannels)
	offsets := make([]float32, numChannels)
	for c := range gains {
		gains[c] = 1
	}

	return &Synthetic[S]{
		samplingFrequency: samplingFrequency,
		numChannels:       numChannels,
		segments:          segments,
		gains:             gains,
		offsets:           offsets,
	}
}

// SetScaling installs per-channel gain/offset pairs, making the
// recording a Scaler.
func (r *Synthetic[S]) SetScaling(gains, offsets []float32) {
	r.gains = gains
	r.offsets = offsets
}

// NumSegments implements Reader.
func (r *Synthetic[S]) NumSegments() int {
	return len(r.segments)
}

// NumSamples implements Reader.
func (r *Synthetic[S]) NumSamples(segment int) int64 {
	return int64(len(r.segments[segment]) / r.numChannels)
}

// NumChannels implements Reader.
func (r *Synthetic[S]) NumChannels() int {
	return r.numChannels
}

// SamplingFrequency implements Reader.
func (r *Synthetic[S]) SamplingFrequency() float64 {
	return r.samplingFrequency
}

// Traces implements Reader.
func (r *Synthetic[S]) Traces(segment int, start, end int64, channels []int) ([]S, error) {
	if segment < 0 || segment >= len(r.segments) {
		return nil, fmt.Errorf("recording: segment %d of %d", segment, len(r.segments))
	}
	if err := CheckBounds(segment, start, end, r.NumSamples(segment)); err != nil {
		return nil, err
	}

	frames := end - start
	src := r.segments[segment]

	if channels == nil {
		out := make([]S, frames*int64(r.numChannels))
		copy(out, src[start*int64(r.numChannels):end*int64(r.numChannels)])
		return out, nil
	}

	out := make([]S, frames*int64(len(channels)))
	for t := int64(0); t < frames; t++ {
		row := src[(start+t)*int64(r.numChannels):]
		for j, c := range channels {
			out[t*int64(len(channels))+int64(j)] = row[c]
		}
	}
	return out, nil
}

// Gains implements Scaler.
func (r *Synthetic[S]) Gains() []float32 {
	return r.gains
}

// Offsets implements Scaler.
func (r *Synthetic[S]) Offsets() []float32 {
	return r.offsets
}
