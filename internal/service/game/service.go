package game

import (
	"context"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/iamasit07/blockfall/backend/internal/config"
	"github.com/iamasit07/blockfall/backend/internal/domain"
	"github.com/iamasit07/blockfall/backend/pkg/uid"
)

// ResultRecorder persists finished runs.
type ResultRecorder interface {
	Record(ctx context.Context, entry domain.ScoreEntry) error
}

// MatchRequest describes a match to create. Zero values fall back to the
// manager's game config.
type MatchRequest struct {
	Players int      `json:"players"`
	AI      []bool   `json:"ai"`
	Names   []string `json:"names"`
	Seed    *uint64  `json:"seed,omitempty"`
}

// SessionManager manages active matches
type SessionManager struct {
	Matches    map[string]*Match // matchID → Match
	mu         sync.RWMutex
	cfg        config.GameConfig
	controller Controller
	recorder   ResultRecorder
	logger     *zap.Logger
	saves      sync.WaitGroup
}

func NewSessionManager(cfg config.GameConfig, controller Controller, recorder ResultRecorder, logger *zap.Logger) *SessionManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionManager{
		Matches:    make(map[string]*Match),
		cfg:        cfg,
		controller: controller,
		recorder:   recorder,
		logger:     logger.Named("session"),
	}
}

func (sm *SessionManager) Config() config.GameConfig { return sm.cfg }

// CreateMatch builds and registers a match. Sessions spawn their first
// piece immediately; the runner starts ticking them on its next beat.
func (sm *SessionManager) CreateMatch(req MatchRequest) (*Match, error) {
	cfg := sm.cfg
	if req.Players != 0 {
		cfg.Players = req.Players
	}
	for i := 0; i < len(req.AI) && i < len(cfg.AIPlayers); i++ {
		cfg.AIPlayers[i] = req.AI[i]
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	seed := rand.Uint64()
	if req.Seed != nil {
		seed = *req.Seed
	}

	matchID := uid.GenerateMatchID()
	match, err := NewMatch(matchID, cfg, MatchOptions{
		Seed:       seed,
		Names:      req.Names,
		Controller: sm.controller,
		OnGameOver: sm.saveResultAsync,
		Logger:     sm.logger,
	})
	if err != nil {
		return nil, err
	}

	sm.mu.Lock()
	sm.Matches[matchID] = match
	sm.mu.Unlock()

	sm.logger.Info("created match",
		zap.String("match", matchID),
		zap.Int("players", cfg.Players),
		zap.Bools("ai", cfg.AIPlayers[:cfg.Players]),
		zap.Uint64("seed", seed))
	return match, nil
}

func (sm *SessionManager) GetMatch(matchID string) (*Match, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	match, exists := sm.Matches[matchID]
	return match, exists
}

func (sm *SessionManager) RemoveMatch(matchID string) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	return sm.removeMatchLocked(matchID)
}

// removeMatchLocked removes match from the map without acquiring lock (caller must hold it)
func (sm *SessionManager) removeMatchLocked(matchID string) error {
	match, exists := sm.Matches[matchID]
	if !exists {
		return domain.ErrMatchNotFound
	}

	sm.logger.Info("removing match", zap.String("match", matchID))
	match.Close()
	delete(sm.Matches, matchID)
	return nil
}

// ActiveMatches returns every registered match, oldest first.
func (sm *SessionManager) ActiveMatches() []*Match {
	sm.mu.RLock()
	out := make([]*Match, 0, len(sm.Matches))
	for _, m := range sm.Matches {
		out = append(out, m)
	}
	sm.mu.RUnlock()

	slices.SortFunc(out, func(a, b *Match) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return out
}

// CleanupOldMatches drops matches that finished more than finishedTTL ago
// and unfinished ones older than staleTTL.
func (sm *SessionManager) CleanupOldMatches(finishedTTL, staleTTL time.Duration) int {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	count := 0
	now := time.Now()

	for matchID, match := range sm.Matches {
		finishedAt := match.FinishedAt()
		if !finishedAt.IsZero() {
			if now.Sub(finishedAt) > finishedTTL {
				sm.removeMatchLocked(matchID)
				count++
			}
		} else if now.Sub(match.CreatedAt) > staleTTL {
			sm.removeMatchLocked(matchID)
			count++
		}
	}

	if count > 0 {
		sm.logger.Info("memory cleanup removed stale matches", zap.Int("count", count))
	}
	return count
}

// saveResultAsync records a finished run without blocking the tick that
// produced it.
func (sm *SessionManager) saveResultAsync(r Result) {
	if sm.recorder == nil || r.Score <= 0 {
		return
	}

	entry := domain.ScoreEntry{
		Name:      r.Name,
		Score:     r.Score,
		Lines:     r.Lines,
		Pieces:    r.Pieces,
		Duration:  r.Duration,
		MatchID:   r.MatchID,
		AI:        r.AI,
		CreatedAt: r.FinishedAt,
	}

	sm.saves.Add(1)
	go func() {
		defer sm.saves.Done()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := sm.recorder.Record(ctx, entry); err != nil {
			sm.logger.Error("error saving result", zap.String("match", r.MatchID), zap.Int("side", r.Side), zap.Error(err))
			return
		}
		sm.logger.Info("result saved", zap.String("match", r.MatchID), zap.Int("side", r.Side), zap.Int("score", r.Score))
	}()
}

// WaitForSaves blocks until in-flight result saves finish.
func (sm *SessionManager) WaitForSaves() {
	sm.saves.Wait()
}
