package cleanup

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/iamasit07/blockfall/backend/internal/service/game"
)

// ScorePruner trims persisted scores down to the best keep entries.
type ScorePruner interface {
	Prune(ctx context.Context, keep int) (int64, error)
}

type Worker struct {
	SessionManager *game.SessionManager
	Scores         ScorePruner // Optional, can be nil

	Interval    time.Duration
	FinishedTTL time.Duration // finished matches linger this long for spectators
	StaleTTL    time.Duration
	KeepScores  int

	logger *zap.Logger
}

func NewWorker(sm *game.SessionManager, scores ScorePruner, logger *zap.Logger) *Worker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Worker{
		SessionManager: sm,
		Scores:         scores,
		Interval:       time.Minute,
		FinishedTTL:    10 * time.Minute,
		StaleTTL:       24 * time.Hour,
		KeepScores:     1000,
		logger:         logger.Named("cleanup"),
	}
}

// Start runs one cleanup immediately, then every Interval until ctx is done.
func (w *Worker) Start(ctx context.Context) {
	go func() {
		w.RunOnce(ctx)

		ticker := time.NewTicker(w.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				w.RunOnce(ctx)
			}
		}
	}()
	w.logger.Info("background worker started", zap.Duration("interval", w.Interval))
}

// RunOnce executes the actual cleanup logic
func (w *Worker) RunOnce(ctx context.Context) {
	removed := w.SessionManager.CleanupOldMatches(w.FinishedTTL, w.StaleTTL)
	if removed > 0 {
		w.logger.Debug("evicted matches", zap.Int("count", removed))
	}

	if w.Scores == nil {
		return
	}
	deleted, err := w.Scores.Prune(ctx, w.KeepScores)
	if err != nil {
		w.logger.Error("error pruning scores", zap.Error(err))
		return
	}
	if deleted > 0 {
		w.logger.Info("pruned scores outside the table", zap.Int64("count", deleted))
	}
}
