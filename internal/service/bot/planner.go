package bot

import (
	"math"

	"go.uber.org/zap"

	"github.com/iamasit07/blockfall/backend/internal/domain"
)

const tieEpsilon = 1e-6

// Request is a board snapshot plus the context the planner needs to pick a
// placement for one piece.
type Request struct {
	Board         *domain.Board
	Kind          domain.Kind
	Next          *domain.Kind // nil when the next piece is hidden
	SpawnColumn   int          // configured spawn column, clamped per kind
	CurrentColumn int
	SweepColumn   int
}

// Plan is the target placement for one spawned piece.
type Plan struct {
	Column     int     `json:"column"`
	Rotation   int     `json:"rotation"`
	LandingRow int     `json:"landingRow"`
	Score      float64 `json:"score"`
	Found      bool    `json:"found"`
}

// Planner searches reachable placements and scores them.
type Planner struct {
	weights Weights
	logger  *zap.Logger
}

func NewPlanner(weights Weights, logger *zap.Logger) *Planner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Planner{weights: weights, logger: logger.Named("planner")}
}

func (p *Planner) Weights() Weights {
	return p.weights
}

// RotationsToTry lists the rotation states worth evaluating for a kind.
// Symmetric kinds skip the duplicate orientations.
func RotationsToTry(k domain.Kind) []int {
	switch k {
	case domain.KindO:
		return []int{0}
	case domain.KindI, domain.KindS, domain.KindZ:
		return []int{0, 1}
	default:
		return []int{0, 1, 2, 3}
	}
}

// Plan picks the best reachable placement. When nothing is reachable it
// falls back to the spawn column at rotation 0 with Found unset.
func (p *Planner) Plan(req Request) Plan {
	b := req.Board
	rows, cols := b.Rows(), b.Cols()
	w := p.weights

	spawn := domain.SpawnColumn(req.Kind, req.SpawnColumn, cols)
	best := Plan{Column: spawn, Rotation: 0, LandingRow: -1, Score: math.Inf(-1)}

	reach := Reachable(b, req.Kind, spawn)
	empties := rowEmpties(b)
	bottomEmpty := empties[rows-1]

	var nextSpawn int
	if req.Next != nil {
		nextSpawn = domain.SpawnColumn(*req.Next, req.SpawnColumn, cols)
	}

	explored := 0
search:
	for _, rot := range RotationsToTry(req.Kind) {
		shape := domain.ShapeOf(req.Kind, rot)
		if shape.Width() > cols {
			continue
		}
		for col := 0; col+shape.Width() <= cols; col++ {
			if explored >= w.ExploreCap {
				break search
			}
			explored++

			row, ok := b.LandingRow(shape, col)
			if !ok || !reach.Contains(row, col, rot) {
				continue
			}

			after := b.Clone()
			after.Place(shape, row, col, domain.Color(req.Kind))
			lines := after.ClearFullRows()

			score := w.evaluate(after, placement{
				shape:       shape,
				row:         row,
				lines:       lines,
				bottomEmpty: bottomEmpty,
				rowEmpties:  empties,
			})
			if req.Next != nil {
				score += w.Lookahead * p.bestReply(after, *req.Next, nextSpawn, req.SweepColumn)
			}

			score -= w.Distance * float64(abs(col-req.CurrentColumn))
			score -= w.SweepPull * float64(abs(col-req.SweepColumn))
			toEdge := min(col, cols-1-col)
			score += w.EdgePull * float64(max(0, 3-toEdge)*max(0, 6-after.ColumnHeight(col)))

			if score > best.Score || (math.Abs(score-best.Score) < tieEpsilon && row > best.LandingRow) {
				best = Plan{Column: col, Rotation: rot, LandingRow: row, Score: score, Found: true}
			}
		}
	}

	if !best.Found {
		p.logger.Debug("no reachable placement, using spawn fallback",
			zap.Stringer("kind", req.Kind), zap.Int("spawnCol", spawn))
		best.Score = 0
	}
	return best
}

// bestReply is the best one-ply score for the next piece on the board left
// by the first placement.
func (p *Planner) bestReply(b *domain.Board, kind domain.Kind, spawnCol, sweepCol int) float64 {
	w := p.weights
	rows, cols := b.Rows(), b.Cols()

	reach := Reachable(b, kind, spawnCol)
	empties := rowEmpties(b)
	bottomEmpty := empties[rows-1]

	best := math.Inf(-1)
	explored := 0
search:
	for _, rot := range RotationsToTry(kind) {
		shape := domain.ShapeOf(kind, rot)
		for col := 0; col+shape.Width() <= cols; col++ {
			if explored >= w.LookaheadCap {
				break search
			}
			explored++

			row, ok := b.LandingRow(shape, col)
			if !ok || !reach.Contains(row, col, rot) {
				continue
			}

			after := b.Clone()
			after.Place(shape, row, col, domain.Color(kind))
			lines := after.ClearFullRows()

			s := w.evaluate(after, placement{
				shape:       shape,
				row:         row,
				lines:       lines,
				bottomEmpty: bottomEmpty,
				rowEmpties:  empties,
			})
			s -= w.LookaheadSweep * float64(abs(col-sweepCol))
			if s > best {
				best = s
			}
		}
	}

	if math.IsInf(best, -1) {
		return w.LookaheadEmpty
	}
	return best
}
