package game

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/iamasit07/blockfall/backend/internal/config"
	"github.com/iamasit07/blockfall/backend/internal/domain"
)

// Match groups the one or two sessions that draw from a single bag, so both
// sides of a two-player game see the same piece order.
type Match struct {
	ID        string
	CreatedAt time.Time

	cfg  config.GameConfig
	seed uint64

	mu         sync.Mutex
	bag        *domain.Bag
	sessions   []*Session
	over       int // sides that reached game-over since the last (re)start
	finishedAt time.Time
}

type MatchOptions struct {
	Seed       uint64
	Names      []string
	Controller Controller // drives the sides flagged in cfg.AIPlayers
	OnGameOver func(Result)
	Logger     *zap.Logger
}

func NewMatch(id string, cfg config.GameConfig, opts MatchOptions) (*Match, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	m := &Match{
		ID:        id,
		CreatedAt: time.Now(),
		cfg:       cfg,
		seed:      opts.Seed,
		bag:       domain.NewSharedBag(opts.Seed, cfg.Players),
	}

	// every side registers before any of them draws its first piece
	readers := m.bag.NewReaders(cfg.Players)

	for side := 0; side < cfg.Players; side++ {
		name := fmt.Sprintf("Player %d", side+1)
		if side < len(opts.Names) && opts.Names[side] != "" {
			name = opts.Names[side]
		}

		var ctrl Controller
		if cfg.AIPlayers[side] {
			if opts.Controller == nil {
				return nil, fmt.Errorf("side %d is AI-controlled but no controller was supplied", side)
			}
			ctrl = opts.Controller
		}

		m.sessions = append(m.sessions, NewSession(cfg, readers[side], SessionOptions{
			MatchID:    id,
			Side:       side,
			Name:       name,
			Controller: ctrl,
			OnGameOver: m.wrapGameOver(opts.OnGameOver),
			Logger:     opts.Logger,
		}))
	}
	return m, nil
}

// wrapGameOver stamps the match as finished once every side has topped out.
// It runs under the session lock, so it must not call back into sessions.
func (m *Match) wrapGameOver(next func(Result)) func(Result) {
	return func(r Result) {
		m.mu.Lock()
		m.over++
		if m.over >= m.cfg.Players && m.finishedAt.IsZero() {
			m.finishedAt = r.FinishedAt
		}
		m.mu.Unlock()

		if next != nil {
			next(r)
		}
	}
}

func (m *Match) Config() config.GameConfig { return m.cfg }
func (m *Match) Seed() uint64              { return m.seed }

func (m *Match) Sessions() []*Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*Session(nil), m.sessions...)
}

func (m *Match) Session(side int) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if side < 0 || side >= len(m.sessions) {
		return nil, domain.ErrInvalidSide
	}
	return m.sessions[side], nil
}

// Tick feeds the same clock reading to every side.
func (m *Match) Tick(ctx context.Context, now int64) {
	for _, s := range m.Sessions() {
		s.Tick(ctx, now)
	}
}

// Apply routes an input action from one side. Pause, resume and restart
// act on the whole match.
func (m *Match) Apply(side int, action domain.Action) error {
	s, err := m.Session(side)
	if err != nil {
		return err
	}

	switch action {
	case domain.ActionPause:
		m.Pause()
	case domain.ActionResume:
		m.Resume()
	case domain.ActionRestart:
		m.Restart()
	default:
		return s.Input(action)
	}
	return nil
}

func (m *Match) Pause() {
	for _, s := range m.Sessions() {
		s.Pause()
	}
}

func (m *Match) Resume() {
	for _, s := range m.Sessions() {
		s.Resume()
	}
}

// Restart reseeds the bag with the match seed, so a restarted match replays
// the same piece order.
func (m *Match) Restart() {
	m.mu.Lock()
	m.bag = domain.NewSharedBag(m.seed, len(m.sessions))
	m.finishedAt = time.Time{}
	m.over = 0
	sessions := append([]*Session(nil), m.sessions...)
	readers := m.bag.NewReaders(len(sessions))
	m.mu.Unlock()

	for i, s := range sessions {
		s.Restart(readers[i])
	}
}

// Finished reports whether every side is over.
func (m *Match) Finished() bool {
	for _, s := range m.Sessions() {
		if !s.GameOver() {
			return false
		}
	}
	return true
}

// FinishedAt is zero until every side is over.
func (m *Match) FinishedAt() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.finishedAt
}

func (m *Match) Snapshots() []domain.Snapshot {
	sessions := m.Sessions()
	out := make([]domain.Snapshot, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, s.Snapshot())
	}
	return out
}

// Close releases every side's resources.
func (m *Match) Close() {
	for _, s := range m.Sessions() {
		s.Close()
	}
}
