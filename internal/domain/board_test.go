package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fillRow(b *Board, r, v int) {
	for c := 0; c < b.Cols(); c++ {
		b.Set(r, c, v)
	}
}

func TestClearFullRowsRemovesOnlyFullRows(t *testing.T) {
	b := NewBoard(6, 4)
	fillRow(b, 5, 1)
	b.Set(4, 0, 2) // partial row, must survive
	fillRow(b, 3, 3)
	b.Set(2, 3, 4)

	cleared := b.ClearFullRows()

	assert.Equal(t, 2, cleared)
	assert.Equal(t, []int{2, 0, 0, 0}, b.Cells()[5], "partial row drops to the floor")
	assert.Equal(t, []int{0, 0, 0, 4}, b.Cells()[4], "rows above keep their order")
	for r := 0; r < 4; r++ {
		assert.Equal(t, []int{0, 0, 0, 0}, b.Cells()[r])
	}
}

func TestClearFullRowsStackedClears(t *testing.T) {
	b := NewBoard(5, 3)
	b.Set(0, 1, 7)
	fillRow(b, 1, 1)
	fillRow(b, 2, 2)
	fillRow(b, 3, 3)
	fillRow(b, 4, 4)

	assert.Equal(t, 4, b.ClearFullRows())
	assert.Equal(t, []int{0, 7, 0}, b.Cells()[4])
	assert.Equal(t, 0, b.ClearFullRows())
}

func TestClearFullRowsPreservesRemainingOrder(t *testing.T) {
	b := NewBoard(8, 3)
	pattern := map[int][]int{
		1: {1, 0, 0},
		2: {2, 2, 2},
		3: {0, 3, 0},
		4: {4, 4, 4},
		5: {4, 4, 4},
		6: {0, 0, 5},
		7: {6, 6, 6},
	}
	for r, row := range pattern {
		for c, v := range row {
			b.Set(r, c, v)
		}
	}

	require.Equal(t, 4, b.ClearFullRows())

	cells := b.Cells()
	assert.Equal(t, []int{0, 0, 5}, cells[7])
	assert.Equal(t, []int{0, 3, 0}, cells[6])
	assert.Equal(t, []int{1, 0, 0}, cells[5])
	for r := 0; r < 5; r++ {
		assert.Equal(t, []int{0, 0, 0}, cells[r])
	}
}

func TestBoardFitsAndLandingRow(t *testing.T) {
	b := NewBoard(20, 10)
	b.Set(19, 0, 1)

	o := ShapeOf(KindO, 0)
	assert.True(t, b.Fits(o, 0, 0))
	assert.False(t, b.Fits(o, 0, 9), "right edge overflow")
	assert.False(t, b.Fits(o, -1, 0))

	row, ok := b.LandingRow(o, 0)
	require.True(t, ok)
	assert.Equal(t, 17, row)

	row, ok = b.LandingRow(o, 1)
	require.True(t, ok)
	assert.Equal(t, 18, row)

	b.Set(0, 5, 1)
	_, ok = b.LandingRow(o, 4)
	assert.False(t, ok)
}

func TestBoardCloneIsDeep(t *testing.T) {
	b := NewBoard(4, 4)
	clone := b.Clone()
	clone.Set(3, 3, 5)

	assert.Equal(t, Empty, b.Get(3, 3))
	assert.Equal(t, 1, clone.ColumnHeight(3))
	assert.Equal(t, 0, b.ColumnHeight(3))
}

func TestLineScore(t *testing.T) {
	tests := map[int]int{0: 0, 1: 100, 2: 300, 3: 500, 4: 800, 5: 500, 6: 600}
	for lines, want := range tests {
		assert.Equal(t, want, LineScore(lines), "lines=%d", lines)
	}
}
