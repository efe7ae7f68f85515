package game

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/iamasit07/blockfall/backend/internal/config"
	"github.com/iamasit07/blockfall/backend/internal/domain"
	"github.com/iamasit07/blockfall/backend/internal/service/bot"
)

// Controller steers an AI side. bot.Driver implements it.
type Controller interface {
	Drive(ctx context.Context, t bot.Turn) bool
	PieceLocked(side int, board *domain.Board)
	Reset(side int)
}

// Result is handed to the game-over callback once per finished run.
type Result struct {
	MatchID    string
	Side       int
	Name       string
	AI         bool
	Score      int
	Lines      int
	Pieces     int
	Duration   time.Duration
	FinishedAt time.Time
}

// side ids are unique per process so controller state never collides
// across matches
var sideSeq atomic.Int64

func nextSideID() int {
	return int(sideSeq.Add(1))
}

// Session is one board: gravity, locking, clearing, scoring and spawning,
// driven by Tick with a monotonic clock. All methods are safe for
// concurrent use.
type Session struct {
	mu sync.Mutex

	id      int
	side    int
	name    string
	matchID string
	cfg     config.GameConfig

	board      *domain.Board
	reader     *domain.BagReader
	piece      *domain.ActivePiece
	next       domain.Kind
	generation uint64

	score   int
	lines   int
	pieces  int
	elapsed time.Duration

	fall       float64 // fractional rows of gravity not yet applied
	lastTick   int64
	clockValid bool

	paused   bool
	gameOver bool

	controller Controller
	onGameOver func(Result)
	logger     *zap.Logger
}

type SessionOptions struct {
	MatchID    string
	Side       int
	Name       string
	Controller Controller // nil for a human-controlled side
	OnGameOver func(Result)
	Logger     *zap.Logger
}

// NewSession builds a session and spawns its first piece. The config must
// already be validated.
func NewSession(cfg config.GameConfig, reader *domain.BagReader, opts SessionOptions) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Session{
		id:         nextSideID(),
		side:       opts.Side,
		name:       opts.Name,
		matchID:    opts.MatchID,
		cfg:        cfg,
		board:      domain.NewBoard(cfg.Rows, cfg.Cols),
		controller: opts.Controller,
		onGameOver: opts.OnGameOver,
		logger:     logger.Named("session").With(zap.String("match", opts.MatchID), zap.Int("side", opts.Side)),
	}
	s.start(reader)
	return s
}

func (s *Session) start(reader *domain.BagReader) {
	s.reader = reader
	s.next = reader.Next()
	s.spawn()
}

// ID is the process-unique side id used to key controller state.
func (s *Session) ID() int      { return s.id }
func (s *Session) Side() int    { return s.side }
func (s *Session) Name() string { return s.name }
func (s *Session) AI() bool     { return s.controller != nil }

func (s *Session) GameOver() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gameOver
}

// Tick advances the session to now (monotonic nanoseconds). The first tick
// after construction, resume or restart only sets the clock reference, and
// every delta is clamped to MaxTickDelta, so stalls never replay as a burst
// of gravity.
func (s *Session) Tick(ctx context.Context, now int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.paused || s.gameOver {
		s.clockValid = false
		return
	}

	var dt time.Duration
	if s.clockValid {
		dt = time.Duration(now - s.lastTick)
		dt = max(0, min(dt, s.cfg.MaxTickDelta))
	}
	s.lastTick = now
	s.clockValid = true
	s.elapsed += dt

	if s.controller != nil {
		next := s.next
		locked := s.controller.Drive(ctx, bot.Turn{
			Side:        s.id,
			Piece:       s.piece,
			Next:        &next,
			SpawnColumn: s.cfg.SpawnCol,
			Now:         now,
		})
		if locked {
			s.settle()
			return
		}
	}

	s.fall += s.cfg.GravityCPS * dt.Seconds()
	for s.fall >= 1 {
		s.fall--
		if !s.piece.SoftDropOrLock() {
			s.settle()
			return
		}
	}
}

// Input applies a movement action from a human player. Rejected moves are
// not errors; they simply leave the piece where it is.
func (s *Session) Input(action domain.Action) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.controller != nil {
		return domain.ErrAIControlled
	}
	if s.gameOver {
		return domain.ErrGameOver
	}
	if s.paused {
		return nil
	}

	switch action {
	case domain.ActionLeft:
		s.piece.TryLeft()
	case domain.ActionRight:
		s.piece.TryRight()
	case domain.ActionRotate:
		s.piece.TryRotateCW()
	case domain.ActionDown:
		if !s.piece.SoftDropOrLock() {
			s.settle()
		}
	default:
		return domain.ErrUnknownAction
	}
	return nil
}

func (s *Session) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = true
	s.clockValid = false
}

func (s *Session) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = false
	s.clockValid = false
}

// Restart discards the board, the falling piece and any plan, and starts
// over reading pieces from reader.
func (s *Session) Restart(reader *domain.BagReader) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.reader != nil && s.reader != reader {
		s.reader.Close()
	}
	if s.controller != nil {
		s.controller.Reset(s.id)
	}

	s.board.Reset()
	s.score, s.lines, s.pieces = 0, 0, 0
	s.elapsed = 0
	s.fall = 0
	s.clockValid = false
	s.paused = false
	s.gameOver = false
	s.generation = 0
	s.start(reader)

	s.logger.Info("session restarted")
}

// Close releases the session's hold on the shared piece sequence.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.reader != nil {
		s.reader.Close()
	}
	if s.controller != nil {
		s.controller.Reset(s.id)
	}
}

// settle runs after the active piece locked.
func (s *Session) settle() {
	cleared := s.board.ClearFullRows()
	s.score += domain.LineScore(cleared)
	s.lines += cleared
	s.pieces++

	if s.controller != nil {
		s.controller.PieceLocked(s.id, s.board)
	}
	s.spawn()
}

func (s *Session) spawn() {
	kind := s.next
	s.next = s.reader.Next()
	s.generation++
	s.fall = 0

	col := domain.SpawnColumn(kind, s.cfg.SpawnCol, s.cfg.Cols)
	s.piece = domain.NewActivePiece(s.board, kind, col, s.generation)
	if s.piece.Fits() {
		return
	}

	s.gameOver = true
	s.clockValid = false
	s.logger.Info("game over",
		zap.Int("score", s.score),
		zap.Int("lines", s.lines),
		zap.Int("pieces", s.pieces))

	if s.onGameOver != nil {
		s.onGameOver(Result{
			MatchID:    s.matchID,
			Side:       s.side,
			Name:       s.name,
			AI:         s.controller != nil,
			Score:      s.score,
			Lines:      s.lines,
			Pieces:     s.pieces,
			Duration:   s.elapsed,
			FinishedAt: time.Now(),
		})
	}
}

// Snapshot copies the observable state.
func (s *Session) Snapshot() domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := domain.Snapshot{
		Side:       s.side,
		Generation: s.generation,
		Board:      s.board.Cells(),
		Next:       s.next.String(),
		Score:      s.score,
		Lines:      s.lines,
		Pieces:     s.pieces,
		ElapsedMs:  s.elapsed.Milliseconds(),
		Paused:     s.paused,
		GameOver:   s.gameOver,
		AI:         s.controller != nil,
	}
	if !s.gameOver && s.piece != nil {
		snap.Active = domain.NewPieceView(s.piece.State())
	}
	return snap
}

// Board returns a copy of the board for inspection.
func (s *Session) Board() *domain.Board {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.board.Clone()
}

// Piece returns the current piece state.
func (s *Session) Piece() domain.PieceState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.piece.State()
}
