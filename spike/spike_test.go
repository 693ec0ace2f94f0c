package spike

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	sorted := []Spike{
		{Sample: 10, Unit: 0, Segment: 0},
		{Sample: 10, Unit: 1, Segment: 0},
		{Sample: 42, Unit: 0, Segment: 0},
		{Sample: 5, Unit: 1, Segment: 1},
	}
	require.NoError(t, Validate(sorted, 2, 2))

	unsorted := []Spike{
		{Sample: 42, Unit: 0, Segment: 0},
		{Sample: 10, Unit: 1, Segment: 0},
	}
	assert.ErrorIs(t, Validate(unsorted, 2, 1), ErrUnsorted)

	crossSegment := []Spike{
		{Sample: 5, Unit: 0, Segment: 1},
		{Sample: 99, Unit: 0, Segment: 0},
	}
	assert.ErrorIs(t, Validate(crossSegment, 1, 2), ErrUnsorted)

	assert.ErrorIs(t, Validate([]Spike{{Sample: 1, Unit: 3, Segment: 0}}, 2, 1), ErrUnitRange)
	assert.ErrorIs(t, Validate([]Spike{{Sample: 1, Unit: 0, Segment: 2}}, 1, 2), ErrSegmentRange)
}

func TestCountByUnit(t *testing.T) {
	spikes := []Spike{
		{Sample: 1, Unit: 0}, {Sample: 2, Unit: 2}, {Sample: 3, Unit: 0}, {Sample: 9, Unit: 2},
	}
	assert.Equal(t, []int{2, 0, 2}, CountByUnit(spikes, 3))
}

func TestWithinUnitOffsets_Permutation(t *testing.T) {
	const numUnits = 7
	rng := rand.New(rand.NewSource(42))

	spikes := make([]Spike, 500)
	sample := int64(0)
	for i := range spikes {
		sample += rng.Int63n(20)
		spikes[i] = Spike{Sample: sample, Unit: int32(rng.Intn(numUnits))}
	}
	require.NoError(t, Validate(spikes, numUnits, 1))

	offsets := WithinUnitOffsets(spikes, numUnits)
	counts := CountByUnit(spikes, numUnits)

	// Per unit, the offsets must be an exact permutation of [0, count):
	// ascending by construction, so check each slot is hit exactly once.
	hit := make([]map[int]bool, numUnits)
	for u := range hit {
		hit[u] = make(map[int]bool)
	}
	for i, s := range spikes {
		off := offsets[i]
		require.GreaterOrEqual(t, off, 0)
		require.Less(t, off, counts[s.Unit])
		require.False(t, hit[s.Unit][off], "unit %d row %d assigned twice", s.Unit, off)
		hit[s.Unit][off] = true
	}
	for u, c := range counts {
		assert.Len(t, hit[u], c)
	}
}

func TestRange(t *testing.T) {
	spikes := []Spike{
		{Sample: 5, Segment: 0},
		{Sample: 10, Segment: 0},
		{Sample: 10, Segment: 0},
		{Sample: 99, Segment: 0},
		{Sample: 0, Segment: 1},
		{Sample: 50, Segment: 1},
	}

	lo, hi := Range(spikes, 0, 0, 10)
	assert.Equal(t, 0, lo)
	assert.Equal(t, 1, hi)

	lo, hi = Range(spikes, 0, 10, 100)
	assert.Equal(t, 1, lo)
	assert.Equal(t, 4, hi)

	lo, hi = Range(spikes, 1, 0, 50)
	assert.Equal(t, 4, lo)
	assert.Equal(t, 5, hi)

	lo, hi = Range(spikes, 1, 60, 100)
	assert.Equal(t, lo, hi) // empty

	lo, hi = Range(spikes, 2, 0, 100)
	assert.Equal(t, lo, hi)
}
