// Package spike defines the spike event record consumed by the
// extraction engine and the indexing pass that assigns every spike a
// unique destination row before any parallel work starts.
package spike

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrUnsorted is returned when the spike sequence is not sorted
	// ascending by (segment, sample).
	ErrUnsorted = errors.New("spike: sequence not sorted by (segment, sample)")
	// ErrUnitRange is returned when a spike references a unit index
	// outside the unit list.
	ErrUnitRange = errors.New("spike: unit index out of range")
	// ErrSegmentRange is returned when a spike references a segment the
	// recording does not have.
	ErrSegmentRange = errors.New("spike: segment index out of range")
)

// Spike is one detected event attributed to a unit within a segment.
// The field widths mirror the packed spike vectors produced by sorters.
type Spike struct {
	Sample  int64
	Unit    int32
	Segment int16
}

func (s Spike) less(o Spike) bool {
	if s.Segment != o.Segment {
		return s.Segment < o.Segment
	}
	return s.Sample < o.Sample
}

// Validate checks that the sequence is sorted ascending by
// (segment, sample) and that every spike references a valid unit and
// segment. The sort order is what makes destination rows deterministic,
// so it is enforced before any buffer is allocated.
func Validate(spikes []Spike, numUnits, numSegments int) error {
	for i, s := range spikes {
		if s.Unit < 0 || int(s.Unit) >= numUnits {
			return fmt.Errorf("%w: spike %d references unit %d of %d", ErrUnitRange, i, s.Unit, numUnits)
		}
		if s.Segment < 0 || int(s.Segment) >= numSegments {
			return fmt.Errorf("%w: spike %d references segment %d of %d", ErrSegmentRange, i, s.Segment, numSegments)
		}
		if i > 0 && s.less(spikes[i-1]) {
			return fmt.Errorf("%w: at index %d", ErrUnsorted, i)
		}
	}
	return nil
}

// CountByUnit returns the number of spikes attributed to each unit.
func CountByUnit(spikes []Spike, numUnits int) []int {
	counts := make([]int, numUnits)
	for _, s := range spikes {
		counts[s.Unit]++
	}
	return counts
}

// WithinUnitOffsets assigns each spike its running position among
// earlier spikes of the same unit, in one sequential pass.
//
// Over a sorted sequence the offsets of each unit form an exact
// permutation of [0, count), so every spike owns a distinct destination
// row and parallel writers need no runtime coordination.
func WithinUnitOffsets(spikes []Spike, numUnits int) []int {
	offsets := make([]int, len(spikes))
	seen := make([]int, numUnits)
	for i, s := range spikes {
		offsets[i] = seen[s.Unit]
		seen[s.Unit]++
	}
	return offsets
}

// Range returns the half-open index range [lo, hi) of spikes falling in
// samples [start, end) of the given segment. The sequence must be
// sorted per Validate.
func Range(spikes []Spike, segment int, start, end int64) (lo, hi int) {
	probe := Spike{Segment: int16(segment), Sample: start}
	lo = sort.Search(len(spikes), func(i int) bool {
		return !spikes[i].less(probe)
	})
	probe.Sample = end
	hi = lo + sort.Search(len(spikes)-lo, func(i int) bool {
		return !spikes[lo+i].less(probe)
	})
	return lo, hi
}
