package buffer

import "github.com/ephysio/waveforms/recording"

// View is a read-only grouping of waveform rows, possibly strided:
// a sparse split keeps only the first channels entries of every frame
// while the source rows carry stride entries. Views produced without
// copying alias their source buffer and die with it.
type View[S recording.Sample] struct {
	rows     [][]S
	window   int
	channels int
	stride   int
}

// NumRows returns the number of waveform rows.
func (v *View[S]) NumRows() int { return len(v.rows) }

// Window returns the number of frames per waveform.
func (v *View[S]) Window() int { return v.window }

// NumChannels returns the channel dimension.
func (v *View[S]) NumChannels() int { return v.channels }

// At returns one sample.
func (v *View[S]) At(row, frame, channel int) S {
	return v.rows[row][frame*v.stride+channel]
}

// Materialize packs the view into a heap-backed buffer, dropping any
// stride padding. The result is independent of the source buffer.
func (v *View[S]) Materialize() *Buffer[S] {
	out := &Buffer[S]{rows: len(v.rows), window: v.window, channels: v.channels}
	if len(v.rows) == 0 || v.window*v.channels == 0 {
		return out
	}
	out.data = make([]S, len(v.rows)*v.window*v.channels)
	for r, row := range v.rows {
		dst := out.Row(r)
		if v.stride == v.channels {
			copy(dst, row)
			continue
		}
		for t := 0; t < v.window; t++ {
			copy(dst[t*v.channels:(t+1)*v.channels], row[t*v.stride:t*v.stride+v.channels])
		}
	}
	return out
}

// View returns a full, unstrided view of the buffer's rows.
func (b *Buffer[S]) View() *View[S] {
	rows := make([][]S, b.rows)
	for i := range rows {
		rows[i] = b.Row(i)
	}
	return &View[S]{rows: rows, window: b.window, channels: b.channels, stride: b.channels}
}
