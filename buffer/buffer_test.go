package buffer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ephysio/waveforms/sparsity"
	"github.com/ephysio/waveforms/spike"
)

func TestNew_SharedMemory(t *testing.T) {
	b, err := New[float32](3, 4, 2, SharedMemory, "", "u0")
	require.NoError(t, err)
	defer b.Close()

	assert.Equal(t, 3, b.NumRows())
	assert.Equal(t, 4, b.Window())
	assert.Equal(t, 2, b.NumChannels())
	require.Len(t, b.Data(), 3*4*2)
	for _, v := range b.Data() {
		require.Zero(t, v)
	}

	row := b.Row(1)
	require.Len(t, row, 8)
	row[2*2+1] = 42 // frame 2, channel 1
	assert.Equal(t, float32(42), b.At(1, 2, 1))
	assert.Zero(t, b.At(0, 2, 1))
	assert.Zero(t, b.At(2, 2, 1))
}

func TestNew_Memmap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "waveforms_u0.raw")

	b, err := New[int16](5, 3, 2, Memmap, path, "u0")
	require.NoError(t, err)
	assert.Equal(t, path, b.Path())

	b.Row(4)[0] = -7
	require.NoError(t, b.Close())

	// int16 × 5 rows × 3 frames × 2 channels
	fi, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, int64(5*3*2*2), fi.Size())
}

func TestNew_ZeroRows(t *testing.T) {
	b, err := New[float64](0, 10, 4, SharedMemory, "", "silent")
	require.NoError(t, err)
	assert.Zero(t, b.NumRows())
	assert.Empty(t, b.Data())
	assert.NoError(t, b.Close())
}

func TestNew_BadPath(t *testing.T) {
	_, err := New[float32](2, 2, 2, Memmap, filepath.Join(t.TempDir(), "missing", "x.raw"), "u1")
	require.Error(t, err)

	var allocErr *AllocationError
	require.ErrorAs(t, err, &allocErr)
	assert.Equal(t, "u1", allocErr.Name)
	assert.Equal(t, int64(2*2*2*4), allocErr.Bytes)
}

func TestCopy(t *testing.T) {
	b, err := New[float32](2, 2, 1, SharedMemory, "", "u0")
	require.NoError(t, err)
	b.Row(0)[0] = 1.5

	c := b.Copy()
	require.NoError(t, b.Close())

	// Copy survives the source being closed.
	assert.Equal(t, float32(1.5), c.At(0, 0, 0))
	assert.NoError(t, c.Close())
}

func TestAllocatePerUnit(t *testing.T) {
	unitIDs := []string{"a", "b", "c"}
	counts := []int{4, 0, 2}

	bufs, err := AllocatePerUnit[float32](unitIDs, counts, 6, 3, nil, SharedMemory, "")
	require.NoError(t, err)
	require.Len(t, bufs, 3)
	for u, id := range unitIDs {
		assert.Equal(t, counts[u], bufs[id].NumRows())
		assert.Equal(t, 6, bufs[id].Window())
		assert.Equal(t, 3, bufs[id].NumChannels())
		bufs[id].Close()
	}
}

func TestAllocatePerUnit_Sparse(t *testing.T) {
	mask, err := sparsity.FromRows([][]bool{
		{true, false, true},
		{false, true, false},
	})
	require.NoError(t, err)

	bufs, err := AllocatePerUnit[float32]([]string{"a", "b"}, []int{1, 1}, 4, 3, mask, SharedMemory, "")
	require.NoError(t, err)
	assert.Equal(t, 2, bufs["a"].NumChannels())
	assert.Equal(t, 1, bufs["b"].NumChannels())
	for _, b := range bufs {
		b.Close()
	}
}

func TestAllocatePerUnit_CountMismatch(t *testing.T) {
	_, err := AllocatePerUnit[float32]([]string{"a", "b"}, []int{1}, 4, 2, nil, SharedMemory, "")
	assert.Error(t, err)
}

func TestAllocateSingle_SparseChannelDim(t *testing.T) {
	mask, err := sparsity.FromRows([][]bool{
		{true, false, false, true},
		{true, true, true, false},
	})
	require.NoError(t, err)

	b, err := AllocateSingle[float32](10, 5, 4, mask, SharedMemory, "")
	require.NoError(t, err)
	defer b.Close()

	assert.Equal(t, 10, b.NumRows())
	assert.Equal(t, 3, b.NumChannels()) // max active across units
}

func TestSplitByUnits(t *testing.T) {
	spikes := []spike.Spike{
		{Sample: 1, Unit: 0}, {Sample: 2, Unit: 1}, {Sample: 3, Unit: 0}, {Sample: 4, Unit: 1},
	}

	all, err := AllocateSingle[float32](4, 2, 2, nil, SharedMemory, "")
	require.NoError(t, err)
	defer all.Close()
	for i := range spikes {
		row := all.Row(i)
		for j := range row {
			row[j] = float32(i*10 + j)
		}
	}

	views, err := SplitByUnits([]string{"a", "b"}, spikes, all, nil, false)
	require.NoError(t, err)

	require.Equal(t, 2, views["a"].NumRows())
	require.Equal(t, 2, views["b"].NumRows())

	// Unit "a" holds global rows 0 and 2, in spike order.
	assert.Equal(t, all.At(0, 0, 0), views["a"].At(0, 0, 0))
	assert.Equal(t, all.At(2, 1, 1), views["a"].At(1, 1, 1))
	assert.Equal(t, all.At(3, 0, 1), views["b"].At(1, 0, 1))

	// Views alias the source; copies do not.
	copies, err := SplitByUnits([]string{"a", "b"}, spikes, all, nil, true)
	require.NoError(t, err)
	before := copies["a"].At(0, 0, 0)
	all.Row(0)[0] = -99
	assert.Equal(t, float32(-99), views["a"].At(0, 0, 0))
	assert.Equal(t, before, copies["a"].At(0, 0, 0))
}

func TestSplitByUnits_SparseTrimsChannels(t *testing.T) {
	mask, err := sparsity.FromRows([][]bool{
		{true, true, true},
		{true, false, false},
	})
	require.NoError(t, err)

	spikes := []spike.Spike{{Sample: 1, Unit: 0}, {Sample: 2, Unit: 1}}

	all, err := AllocateSingle[float32](2, 2, 3, mask, SharedMemory, "")
	require.NoError(t, err)
	defer all.Close()
	require.Equal(t, 3, all.NumChannels())

	views, err := SplitByUnits([]string{"a", "b"}, spikes, all, mask, false)
	require.NoError(t, err)

	assert.Equal(t, 3, views["a"].NumChannels())
	assert.Equal(t, 1, views["b"].NumChannels())

	// Materializing a strided view drops the padding channels.
	packed := views["b"].Materialize()
	assert.Equal(t, 1, packed.NumChannels())
	assert.Len(t, packed.Data(), 2*1)
}

func TestSplitByUnits_RowMismatch(t *testing.T) {
	all, err := AllocateSingle[float32](2, 2, 1, nil, SharedMemory, "")
	require.NoError(t, err)
	defer all.Close()

	_, err = SplitByUnits([]string{"a"}, []spike.Spike{{Sample: 1}}, all, nil, false)
	assert.Error(t, err)
}
