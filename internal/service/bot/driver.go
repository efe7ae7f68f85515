package bot

import (
	"context"
	"sync"
	"time"

	"github.com/kamstrup/intmap"
	"go.uber.org/zap"

	"github.com/iamasit07/blockfall/backend/internal/domain"
)

const (
	DefaultMoveInterval   = 120 * time.Millisecond
	DefaultRotateInterval = 120 * time.Millisecond
	DefaultRemoteTimeout  = 5 * time.Second
)

// Turn is everything the driver sees of one side on one tick.
type Turn struct {
	Side        int
	Piece       *domain.ActivePiece
	Next        *domain.Kind
	SpawnColumn int   // configured spawn column
	Now         int64 // monotonic nanoseconds
}

type sideState struct {
	planned    bool
	generation uint64
	target     Plan

	moved      bool
	lastMove   int64
	rotated    bool
	lastRotate int64

	sweepCol int
	sweepDir int
}

// Driver steers AI-controlled pieces toward their planned placement one
// step at a time. Per-side state is created lazily and keyed by side id.
// mu guards only the table; a side's state is touched by one goroutine at a
// time because each side is driven under its own session lock.
type Driver struct {
	local          *Planner
	remote         Strategy
	remoteTimeout  time.Duration
	moveInterval   time.Duration
	rotateInterval time.Duration
	logger         *zap.Logger

	mu     sync.Mutex
	states *intmap.Map[int, *sideState]
}

type DriverOption func(*Driver)

// WithRemote routes planning through s, falling back to the local planner
// whenever s fails.
func WithRemote(s Strategy, timeout time.Duration) DriverOption {
	return func(d *Driver) {
		d.remote = s
		if timeout > 0 {
			d.remoteTimeout = timeout
		}
	}
}

func WithCadence(move, rotate time.Duration) DriverOption {
	return func(d *Driver) {
		d.moveInterval = move
		d.rotateInterval = rotate
	}
}

func WithLogger(logger *zap.Logger) DriverOption {
	return func(d *Driver) {
		if logger != nil {
			d.logger = logger
		}
	}
}

func NewDriver(planner *Planner, opts ...DriverOption) *Driver {
	d := &Driver{
		local:          planner,
		remoteTimeout:  DefaultRemoteTimeout,
		moveInterval:   DefaultMoveInterval,
		rotateInterval: DefaultRotateInterval,
		logger:         zap.NewNop(),
		states:         intmap.New[int, *sideState](8),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = d.logger.Named("driver")
	return d
}

func (d *Driver) state(side int) *sideState {
	d.mu.Lock()
	defer d.mu.Unlock()

	st, ok := d.states.Get(side)
	if !ok {
		st = &sideState{sweepDir: 1}
		d.states.Put(side, st)
	}
	return st
}

// Target returns the current plan for a side, if one has been computed.
func (d *Driver) Target(side int) (Plan, bool) {
	st := d.state(side)
	return st.target, st.planned
}

// Sweep returns the sweep column a side is currently biased toward.
func (d *Driver) Sweep(side int) int {
	return d.state(side).sweepCol
}

// Drive advances one tick for an AI side. It replans when a new piece
// generation shows up, rotates clockwise toward the target rotation, then
// shifts toward the target column, and soft-drops once aligned. It reports
// whether the piece locked during this call.
func (d *Driver) Drive(ctx context.Context, t Turn) bool {
	if t.Piece == nil || t.Piece.Locked() {
		return false
	}

	st := d.state(t.Side)
	if !st.planned || st.generation != t.Piece.Generation() {
		st.target = d.plan(ctx, t, st)
		st.generation = t.Piece.Generation()
		st.planned = true
	}

	s := t.Piece.State()
	if s.Rotation != st.target.Rotation {
		if st.rotated && t.Now-st.lastRotate < int64(d.rotateInterval) {
			return false
		}
		st.rotated = true
		st.lastRotate = t.Now
		if t.Piece.TryRotateCW() {
			return false
		}
		// blocked in place; keep travelling and retry on the next interval
	}

	if s.Col != st.target.Column {
		if st.moved && t.Now-st.lastMove < int64(d.moveInterval) {
			return false
		}
		st.moved = true
		st.lastMove = t.Now
		if s.Col < st.target.Column {
			t.Piece.TryRight()
		} else {
			t.Piece.TryLeft()
		}
		return false
	}

	if s.Rotation != st.target.Rotation {
		return false
	}
	return !t.Piece.SoftDropOrLock()
}

func (d *Driver) plan(ctx context.Context, t Turn, st *sideState) Plan {
	board := t.Piece.Board()
	req := Request{
		Board:         board.Clone(),
		Kind:          t.Piece.Kind(),
		Next:          t.Next,
		SpawnColumn:   t.SpawnColumn,
		CurrentColumn: t.Piece.State().Col,
		SweepColumn:   st.sweepCol,
	}

	if d.remote != nil {
		rctx, cancel := context.WithTimeout(ctx, d.remoteTimeout)
		plan, err := d.remote.Choose(rctx, req)
		cancel()
		if err == nil {
			return clampPlan(plan, req.Kind, board.Cols())
		}
		d.logger.Warn("remote planner failed, planning locally",
			zap.Int("side", t.Side), zap.Error(err))
	}

	plan := d.local.Plan(req)
	d.logger.Debug("planned placement",
		zap.Int("side", t.Side),
		zap.Uint64("generation", t.Piece.Generation()),
		zap.Stringer("kind", req.Kind),
		zap.Int("column", plan.Column),
		zap.Int("rotation", plan.Rotation),
		zap.Bool("found", plan.Found))
	return plan
}

// clampPlan forces an externally supplied target into the board.
func clampPlan(p Plan, k domain.Kind, cols int) Plan {
	p.Rotation = domain.NormalizeRotation(k, p.Rotation)
	maxCol := cols - domain.ShapeOf(k, p.Rotation).Width()
	p.Column = max(0, min(p.Column, maxCol))
	return p
}

// PieceLocked advances the sweep column once the column it points at is
// nearly filled near the floor. The sweep ping-pongs between the edges.
func (d *Driver) PieceLocked(side int, board *domain.Board) {
	st := d.state(side)
	w := d.local.weights
	if !columnHealthy(board, st.sweepCol, w.SweepHealthRows, w.SweepMaxEmpty) {
		return
	}

	cols := board.Cols()
	st.sweepCol += st.sweepDir
	if st.sweepCol <= 0 {
		st.sweepCol = 0
		st.sweepDir = 1
	} else if st.sweepCol >= cols-1 {
		st.sweepCol = cols - 1
		st.sweepDir = -1
	}
}

// Reset drops all state for a side, including any in-flight plan.
func (d *Driver) Reset(side int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.states.Del(side)
}

func columnHealthy(b *domain.Board, col, depth, maxEmpty int) bool {
	if col < 0 || col >= b.Cols() {
		return false
	}
	rows := b.Rows()
	empties := 0
	for r := rows - 1; r >= max(0, rows-depth); r-- {
		if b.Get(r, col) == domain.Empty {
			empties++
		}
	}
	return empties <= maxEmpty
}
