package bot

import (
	"github.com/iamasit07/blockfall/backend/internal/domain"
)

type node struct {
	row, col, rot int
}

// Reachability is the set of resting placements a piece can reach from its
// spawn state through single-step falls, in-place rotations (no kicks) and
// one-column shifts.
type Reachability struct {
	rows, cols, rots int
	resting          []bool
}

func (r *Reachability) index(row, col, rot int) int {
	return (row*r.cols+col)*r.rots + rot
}

// Contains reports whether the piece can come to rest exactly at (row, col, rot).
func (r *Reachability) Contains(row, col, rot int) bool {
	if row < 0 || row >= r.rows || col < 0 || col >= r.cols || rot < 0 || rot >= r.rots {
		return false
	}
	return r.resting[r.index(row, col, rot)]
}

// Count is the number of distinct resting placements found.
func (r *Reachability) Count() int {
	n := 0
	for _, ok := range r.resting {
		if ok {
			n++
		}
	}
	return n
}

// Reachable runs a breadth-first search over (row, col, rotation) starting
// at (0, spawnCol, 0). Neighbours are expanded in a fixed order (fall,
// rotate +1, rotate -1, rotate +2, left, right) so the result is
// reproducible. A state is resting when the fall from it is blocked.
func Reachable(b *domain.Board, kind domain.Kind, spawnCol int) *Reachability {
	rows, cols := b.Rows(), b.Cols()
	rots := domain.RotationCount(kind)
	res := &Reachability{rows: rows, cols: cols, rots: rots, resting: make([]bool, rows*cols*rots)}

	if spawnCol < 0 || spawnCol >= cols || !b.Fits(domain.ShapeOf(kind, 0), 0, spawnCol) {
		return res
	}

	visited := make([]bool, rows*cols*rots)
	queue := []node{{0, spawnCol, 0}}
	visited[res.index(0, spawnCol, 0)] = true

	inGrid := func(n node) bool {
		return n.row >= 0 && n.row < rows && n.col >= 0 && n.col < cols
	}
	fits := func(n node) bool {
		return inGrid(n) && b.Fits(domain.ShapeOf(kind, n.rot), n.row, n.col)
	}
	// the anchor must be inside the grid before it can index visited
	visit := func(n node) {
		if !inGrid(n) {
			return
		}
		i := res.index(n.row, n.col, n.rot)
		if visited[i] || !fits(n) {
			return
		}
		visited[i] = true
		queue = append(queue, n)
	}

	for head := 0; head < len(queue); head++ {
		s := queue[head]

		fall := node{s.row + 1, s.col, s.rot}
		if fits(fall) {
			visit(fall)
		} else {
			res.resting[res.index(s.row, s.col, s.rot)] = true
		}

		visit(node{s.row, s.col, (s.rot + 1) % rots})
		visit(node{s.row, s.col, (s.rot + rots - 1) % rots})
		visit(node{s.row, s.col, (s.rot + 2) % rots})
		visit(node{s.row, s.col - 1, s.rot})
		visit(node{s.row, s.col + 1, s.rot})
	}

	return res
}
