package buffer

import (
	"fmt"

	"github.com/ephysio/waveforms/recording"
	"github.com/ephysio/waveforms/sparsity"
	"github.com/ephysio/waveforms/spike"
)

// SplitByUnits regroups the rows of a single contiguous buffer by unit,
// preserving each unit's spike order. Under a mask a unit's view keeps
// its active-channel count; the source stride is untouched.
//
// With copyRows false the views alias all's storage and become invalid
// when all is closed; with copyRows true each view is materialized
// independently.
func SplitByUnits[S recording.Sample](unitIDs []string, spikes []spike.Spike, all *Buffer[S], mask *sparsity.Mask, copyRows bool) (map[string]*View[S], error) {
	if len(spikes) != all.NumRows() {
		return nil, fmt.Errorf("buffer: %d spikes for %d buffer rows", len(spikes), all.NumRows())
	}
	if mask != nil && mask.NumUnits() != len(unitIDs) {
		return nil, fmt.Errorf("buffer: mask has %d units, want %d", mask.NumUnits(), len(unitIDs))
	}

	rowsByUnit := make([][][]S, len(unitIDs))
	counts := spike.CountByUnit(spikes, len(unitIDs))
	for u := range rowsByUnit {
		rowsByUnit[u] = make([][]S, 0, counts[u])
	}
	for i, s := range spikes {
		rowsByUnit[s.Unit] = append(rowsByUnit[s.Unit], all.Row(i))
	}

	out := make(map[string]*View[S], len(unitIDs))
	for u, unitID := range unitIDs {
		channels := all.NumChannels()
		if mask != nil {
			channels = mask.NumActive(u)
		}
		v := &View[S]{
			rows:     rowsByUnit[u],
			window:   all.Window(),
			channels: channels,
			stride:   all.NumChannels(),
		}
		if copyRows {
			v = v.Materialize().View()
		}
		out[unitID] = v
	}
	return out, nil
}
