package sparsity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromRows(t *testing.T) {
	m, err := FromRows([][]bool{
		{true, false, true, false},
		{false, true, false, false},
		{true, true, true, true},
	})
	require.NoError(t, err)
	require.NoError(t, m.Validate())

	assert.Equal(t, 3, m.NumUnits())
	assert.Equal(t, 4, m.NumChannels())

	assert.Equal(t, []int{0, 2}, m.Active(0))
	assert.Equal(t, []int{1}, m.Active(1))
	assert.Equal(t, []int{0, 1, 2, 3}, m.Active(2))

	assert.Equal(t, 2, m.NumActive(0))
	assert.Equal(t, 4, m.MaxActive())

	assert.True(t, m.Contains(0, 2))
	assert.False(t, m.Contains(0, 1))
}

func TestFromRows_Ragged(t *testing.T) {
	_, err := FromRows([][]bool{
		{true, false},
		{true},
	})
	assert.Error(t, err)
}

func TestValidate_EmptyRow(t *testing.T) {
	m, err := FromRows([][]bool{
		{true, true},
		{false, false},
	})
	require.NoError(t, err)
	assert.ErrorIs(t, m.Validate(), ErrEmptyRow)
}

func TestSet(t *testing.T) {
	m := New(2, 3)
	assert.ErrorIs(t, m.Validate(), ErrEmptyRow)

	m.Set(0, 1)
	m.Set(1, 0)
	m.Set(1, 2)
	require.NoError(t, m.Validate())
	assert.Equal(t, []int{0, 2}, m.Active(1))
}
