package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countCells(s Shape) int {
	n := 0
	for r := range s {
		for _, filled := range s[r] {
			if filled {
				n++
			}
		}
	}
	return n
}

func TestCatalogRotationCounts(t *testing.T) {
	want := map[Kind]int{KindI: 2, KindO: 1, KindT: 4, KindS: 2, KindZ: 2, KindJ: 4, KindL: 4}
	for k, n := range want {
		assert.Equal(t, n, RotationCount(k), "kind %s", k)
	}
}

func TestEveryRotationHasFourCells(t *testing.T) {
	for _, k := range AllKinds() {
		for rot := 0; rot < RotationCount(k); rot++ {
			shape := ShapeOf(k, rot)
			assert.Equal(t, 4, countCells(shape), "kind %s rot %d", k, rot)
			assert.LessOrEqual(t, shape.Width(), MaxShapeWidth)
		}
	}
}

func TestShapeRotationWraps(t *testing.T) {
	for _, k := range AllKinds() {
		n := RotationCount(k)
		for rot := 0; rot < n; rot++ {
			assert.True(t, ShapeOf(k, rot).Equal(ShapeOf(k, rot+n)))
			assert.True(t, ShapeOf(k, rot).Equal(ShapeOf(k, rot-n)))
		}
	}
}

func TestFullRotationCycleRestoresShape(t *testing.T) {
	for _, k := range AllKinds() {
		shape := ShapeOf(k, 0)
		for i := 0; i < RotationCount(k); i++ {
			shape = rotateCW(shape)
		}
		assert.True(t, shape.Equal(ShapeOf(k, 0)), "kind %s", k)
	}
}

func TestActivePieceFullRotationReturnsToSpawnShape(t *testing.T) {
	b := NewBoard(20, 10)
	for _, k := range AllKinds() {
		p := NewActivePiece(b, k, 3, 1)
		p.TryMove(5, 0, 0)
		start := p.State().Shape()
		for i := 0; i < RotationCount(k); i++ {
			require.True(t, p.TryRotateCW())
		}
		assert.True(t, p.State().Shape().Equal(start), "kind %s", k)
		assert.Equal(t, 0, p.State().Rotation)
	}
}

func TestKindFromShape(t *testing.T) {
	for _, k := range AllKinds() {
		for rot := 0; rot < RotationCount(k); rot++ {
			got, gotRot, err := KindFromShape(ShapeFromInts(ShapeOf(k, rot).Ints()))
			require.NoError(t, err)
			assert.Equal(t, k, got)
			assert.Equal(t, rot, gotRot)
		}
	}

	_, _, err := KindFromShape(ShapeFromInts([][]int{{1, 1, 1}}))
	assert.ErrorIs(t, err, ErrUnknownShape)
}

func TestColorsAreDistinctTags(t *testing.T) {
	seen := map[int]bool{}
	for _, k := range AllKinds() {
		c := Color(k)
		assert.GreaterOrEqual(t, c, 1)
		assert.LessOrEqual(t, c, 7)
		assert.False(t, seen[c])
		seen[c] = true
	}
}

func TestSpawnColumnClampsToWidth(t *testing.T) {
	assert.Equal(t, 3, SpawnColumn(KindT, 3, 10))
	assert.Equal(t, 6, SpawnColumn(KindI, 9, 10))
	assert.Equal(t, 8, SpawnColumn(KindO, 12, 10))
	assert.Equal(t, 0, SpawnColumn(KindL, -2, 10))
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("t")
	require.NoError(t, err)
	assert.Equal(t, KindT, k)

	_, err = ParseKind("X")
	assert.ErrorIs(t, err, ErrUnknownKind)
}
