package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ephysio/waveforms/spike"
)

func TestSpikeTrain_SortedAndReproducible(t *testing.T) {
	segments := []int64{60000, 90000}

	a := NewRNG(42).SpikeTrain(15, segments, 30000, 5)
	b := NewRNG(42).SpikeTrain(15, segments, 30000, 5)

	require.NotEmpty(t, a)
	assert.Equal(t, a, b)
	require.NoError(t, spike.Validate(a, 15, 2))
}

func TestSparsityMask_AlwaysValid(t *testing.T) {
	for seed := int64(0); seed < 20; seed++ {
		m := NewRNG(seed).SparsityMask(15, 2)
		require.NoErrorf(t, m.Validate(), "seed %d produced an empty row", seed)
	}
}

func TestUnitIDs(t *testing.T) {
	assert.Equal(t, []string{"unit0", "unit1", "unit2"}, UnitIDs(3))
}
