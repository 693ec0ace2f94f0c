// Package testutil provides seeded fixture generators for extraction
// tests: sorted spike trains and random sparsity masks.
package testutil

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/ephysio/waveforms/sparsity"
	"github.com/ephysio/waveforms/spike"
)

// RNG struct encapsulates the random number generator and seed.
type RNG struct {
	rand *rand.Rand
	seed int64
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)), // nolint gosec
		seed: seed,
	}
}

// SpikeTrain generates a sorted spike sequence across segments and
// units: per segment roughly ratePerUnitHz spikes per unit per second,
// at uniformly random timestamps.
func (r *RNG) SpikeTrain(numUnits int, segmentSamples []int64, samplingFrequency, ratePerUnitHz float64) []spike.Spike {
	var spikes []spike.Spike
	for segment, numSamples := range segmentSamples {
		duration := float64(numSamples) / samplingFrequency
		perUnit := int(duration * ratePerUnitHz)
		for unit := 0; unit < numUnits; unit++ {
			for k := 0; k < perUnit; k++ {
				spikes = append(spikes, spike.Spike{
					Sample:  r.rand.Int63n(numSamples),
					Unit:    int32(unit),
					Segment: int16(segment),
				})
			}
		}
	}
	sort.Slice(spikes, func(i, j int) bool {
		if spikes[i].Segment != spikes[j].Segment {
			return spikes[i].Segment < spikes[j].Segment
		}
		return spikes[i].Sample < spikes[j].Sample
	})
	return spikes
}

// SparsityMask generates a random mask where every unit keeps at least
// one channel.
func (r *RNG) SparsityMask(numUnits, numChannels int) *sparsity.Mask {
	m := sparsity.New(numUnits, numChannels)
	for u := 0; u < numUnits; u++ {
		for c := 0; c < numChannels; c++ {
			if r.rand.Intn(2) == 1 {
				m.Set(u, c)
			}
		}
		// An all-false row is invalid input, not an interesting fixture.
		m.Set(u, r.rand.Intn(numChannels))
	}
	return m
}

// UnitIDs returns n synthetic unit identifiers.
func UnitIDs(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("unit%d", i)
	}
	return ids
}
