package buffer

import (
	"fmt"
	"path/filepath"

	"github.com/ephysio/waveforms/recording"
	"github.com/ephysio/waveforms/sparsity"
)

// AllocatePerUnit allocates one zero-initialized buffer per unit. The
// channel dimension of a unit is its active-channel count under the
// mask, or numChannels when the mask is nil. In Memmap mode each unit
// gets its own file under folder.
//
// Either every buffer is allocated or none: on failure the buffers
// already mapped are closed before the error is returned.
func AllocatePerUnit[S recording.Sample](unitIDs []string, counts []int, window, numChannels int, mask *sparsity.Mask, storage Storage, folder string) (map[string]*Buffer[S], error) {
	if len(counts) != len(unitIDs) {
		return nil, fmt.Errorf("buffer: %d spike counts for %d units", len(counts), len(unitIDs))
	}

	bufs := make(map[string]*Buffer[S], len(unitIDs))
	for u, unitID := range unitIDs {
		channels := numChannels
		if mask != nil {
			channels = mask.NumActive(u)
		}
		path := filepath.Join(folder, fmt.Sprintf("waveforms_%s.raw", unitID))
		b, err := New[S](counts[u], window, channels, storage, path, unitID)
		if err != nil {
			for _, allocated := range bufs {
				allocated.Close()
			}
			return nil, err
		}
		bufs[unitID] = b
	}
	return bufs, nil
}

// AllocateSingle allocates one zero-initialized contiguous buffer with
// a row per spike. Under a mask the channel dimension is the largest
// active-channel count across units; rows of units with fewer active
// channels leave the tail of each frame at zero.
func AllocateSingle[S recording.Sample](totalSpikes, window, numChannels int, mask *sparsity.Mask, storage Storage, folder string) (*Buffer[S], error) {
	channels := numChannels
	if mask != nil {
		channels = mask.MaxActive()
	}
	path := filepath.Join(folder, "all_waveforms.raw")
	return New[S](totalSpikes, window, channels, storage, path, "all_waveforms")
}
