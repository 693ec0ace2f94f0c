// Package sparsity describes, per unit, which channels contribute to
// its waveforms. A dense extraction simply runs without a mask.
package sparsity

import (
	"errors"
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"
)

// ErrEmptyRow is returned when a unit's mask row selects no channels.
var ErrEmptyRow = errors.New("sparsity: mask row has no active channels")

// Mask is a units × channels boolean selection. Each row is a roaring
// bitmap of active channel indices.
type Mask struct {
	rows        []*roaring.Bitmap
	numChannels int
}

// New creates an all-false mask for numUnits units over numChannels
// channels. Rows must be populated with Set before the mask is valid.
func New(numUnits, numChannels int) *Mask {
	rows := make([]*roaring.Bitmap, numUnits)
	for i := range rows {
		rows[i] = roaring.New()
	}
	return &Mask{rows: rows, numChannels: numChannels}
}

// FromRows builds a mask from a rectangular boolean matrix
// (rows[unit][channel]).
func FromRows(rows [][]bool) (*Mask, error) {
	if len(rows) == 0 {
		return nil, errors.New("sparsity: mask has no rows")
	}
	numChannels := len(rows[0])
	m := New(len(rows), numChannels)
	for u, row := range rows {
		if len(row) != numChannels {
			return nil, fmt.Errorf("sparsity: row %d has %d channels, want %d", u, len(row), numChannels)
		}
		for c, active := range row {
			if active {
				m.Set(u, c)
			}
		}
	}
	return m, nil
}

// Set marks a channel as active for a unit.
func (m *Mask) Set(unit, channel int) {
	m.rows[unit].Add(uint32(channel))
}

// Contains reports whether the channel is active for the unit.
func (m *Mask) Contains(unit, channel int) bool {
	return m.rows[unit].Contains(uint32(channel))
}

// NumUnits returns the number of rows.
func (m *Mask) NumUnits() int {
	return len(m.rows)
}

// NumChannels returns the width of the mask.
func (m *Mask) NumChannels() int {
	return m.numChannels
}

// NumActive returns the number of active channels for a unit.
func (m *Mask) NumActive(unit int) int {
	return int(m.rows[unit].GetCardinality())
}

// Active returns the active channel indices of a unit in ascending order.
func (m *Mask) Active(unit int) []int {
	out := make([]int, 0, m.NumActive(unit))
	it := m.rows[unit].Iterator()
	for it.HasNext() {
		out = append(out, int(it.Next()))
	}
	return out
}

// MaxActive returns the largest active-channel count across units. This
// is the channel dimension of a sparse single-buffer extraction.
func (m *Mask) MaxActive() int {
	maxActive := 0
	for u := range m.rows {
		if n := m.NumActive(u); n > maxActive {
			maxActive = n
		}
	}
	return maxActive
}

// Validate checks that every unit keeps at least one channel.
func (m *Mask) Validate() error {
	for u, row := range m.rows {
		if row.IsEmpty() {
			return fmt.Errorf("%w: unit index %d", ErrEmptyRow, u)
		}
	}
	return nil
}
