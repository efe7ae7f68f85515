package bot

import (
	"github.com/iamasit07/blockfall/backend/internal/domain"
)

// Weights are the tunable heuristic constants. They are empirically tuned,
// not derived; DefaultWeights reproduces the shipped behaviour.
type Weights struct {
	Lines      float64 // per cleared row
	Tetris     float64 // extra for a 4-row clear
	BottomFill float64 // per piece cell in the bottom row while it had gaps
	LowGaps    float64
	Height     float64 // aggregate column height
	Holes      float64
	Bumpiness  float64
	Well       float64
	EdgeCliff  float64
	Help1      float64 // cells landing in rows 1 cell from full
	Help2      float64 // ... 2 cells from full
	Help3      float64 // ... 3 cells from full
	Depth      float64 // scaled by landingRow/(rows-1)

	Lookahead       float64 // fraction of the next piece's best score blended in
	LookaheadEmpty  float64 // substitute when the next piece has no placement
	Distance        float64 // per column of lateral travel
	SweepPull       float64 // per column away from the sweep column
	LookaheadSweep  float64 // sweep pull inside the lookahead
	EdgePull        float64
	ExploreCap      int // first-ply simulated placements
	LookaheadCap    int // lookahead simulated placements
	SweepHealthRows int // bottom rows inspected by the sweep health check
	SweepMaxEmpty   int // sweep advances when the column has at most this many gaps
}

func DefaultWeights() Weights {
	return Weights{
		Lines:      3.40,
		Tetris:     2.00,
		BottomFill: 0.45,
		LowGaps:    0.12,
		Height:     -0.36,
		Holes:      -0.82,
		Bumpiness:  -0.18,
		Well:       0.05,
		EdgeCliff:  -0.10,
		Help1:      0.90,
		Help2:      0.45,
		Help3:      0.20,
		Depth:      0.40,

		Lookahead:       0.65,
		LookaheadEmpty:  -5.0,
		Distance:        0.03,
		SweepPull:       0.05,
		LookaheadSweep:  0.03,
		EdgePull:        0.02,
		ExploreCap:      600,
		LookaheadCap:    400,
		SweepHealthRows: 6,
		SweepMaxEmpty:   2,
	}
}

// Features are the board measurements the heuristic weighs.
type Features struct {
	Heights         []int
	AggregateHeight int
	Holes           int
	Bumpiness       int
	LowGaps         int
	Well            int
	EdgeCliff       int
}

// Measure computes the surface features of a board.
func Measure(b *domain.Board) Features {
	rows, cols := b.Rows(), b.Cols()
	f := Features{Heights: make([]int, cols)}

	// heights & holes
	for c := 0; c < cols; c++ {
		seen := false
		for r := 0; r < rows; r++ {
			if b.Get(r, c) != domain.Empty {
				if !seen {
					f.Heights[c] = rows - r
					seen = true
				}
			} else if seen {
				f.Holes++
			}
		}
		f.AggregateHeight += f.Heights[c]
	}

	for c := 0; c+1 < cols; c++ {
		f.Bumpiness += abs(f.Heights[c] - f.Heights[c+1])
	}

	// empties sitting directly on the floor
	for c := 0; c < cols; c++ {
		empties := 0
		for r := rows - 1; r >= 0 && b.Get(r, c) == domain.Empty; r-- {
			empties++
		}
		if empties > 0 {
			f.LowGaps += max(1, 4-empties)
		}
	}

	for c := 1; c+1 < cols; c++ {
		left, h, right := f.Heights[c-1], f.Heights[c], f.Heights[c+1]
		if h < left && h < right {
			f.Well += max(0, min(6, min(left, right)-h))
		}
	}

	if cols >= 2 {
		f.EdgeCliff += max(0, f.Heights[0]-f.Heights[1])
		f.EdgeCliff += max(0, f.Heights[cols-1]-f.Heights[cols-2])
	}

	return f
}

// placement describes one simulated drop for scoring.
type placement struct {
	shape       domain.Shape
	row         int
	lines       int
	bottomEmpty int   // empty cells in the bottom row before the drop
	rowEmpties  []int // empty cells per row before the drop
}

// evaluate scores the board left behind by p.
func (w Weights) evaluate(after *domain.Board, p placement) float64 {
	rows := after.Rows()
	f := Measure(after)

	score := w.Lines * float64(p.lines)
	if p.lines == 4 {
		score += w.Tetris
	}
	if p.bottomEmpty > 0 {
		score += w.BottomFill * float64(cellsOnRow(p.shape, p.row, rows-1))
	}

	score += w.LowGaps * float64(f.LowGaps)
	score += w.Height * float64(f.AggregateHeight)
	score += w.Holes * float64(f.Holes)
	score += w.Bumpiness * float64(f.Bumpiness)
	score += w.Well * float64(f.Well)
	score += w.EdgeCliff * float64(f.EdgeCliff)

	// tiers are exclusive: the nearest-to-full tier that applies wins
	help1 := cellsInCriticalRows(p.shape, p.row, p.rowEmpties, 1)
	help2, help3 := 0, 0
	if help1 == 0 {
		help2 = cellsInCriticalRows(p.shape, p.row, p.rowEmpties, 2)
	}
	if help1 == 0 && help2 == 0 {
		help3 = cellsInCriticalRows(p.shape, p.row, p.rowEmpties, 3)
	}
	score += w.Help1*float64(help1) + w.Help2*float64(help2) + w.Help3*float64(help3)

	depth := float64(p.row) / float64(max(1, rows-1))
	score += w.Depth * max(0, depth)

	return score
}

func cellsOnRow(shape domain.Shape, baseRow, target int) int {
	r := target - baseRow
	if r < 0 || r >= shape.Height() {
		return 0
	}
	n := 0
	for _, filled := range shape[r] {
		if filled {
			n++
		}
	}
	return n
}

// cellsInCriticalRows counts the shape's cells that sit in rows which had
// between 1 and maxEmpty empty cells before the drop.
func cellsInCriticalRows(shape domain.Shape, baseRow int, rowEmpties []int, maxEmpty int) int {
	n := 0
	for r := range shape {
		at := baseRow + r
		if at < 0 || at >= len(rowEmpties) {
			continue
		}
		if e := rowEmpties[at]; e > 0 && e <= maxEmpty {
			for _, filled := range shape[r] {
				if filled {
					n++
				}
			}
		}
	}
	return n
}

func rowEmpties(b *domain.Board) []int {
	out := make([]int, b.Rows())
	for r := range out {
		out[r] = b.EmptyCount(r)
	}
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
