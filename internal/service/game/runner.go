package game

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/iamasit07/blockfall/backend/internal/domain"
)

// Publisher receives the snapshots of a match after every tick.
type Publisher interface {
	Publish(matchID string, snapshots []domain.Snapshot)
}

// Runner is the tick loop: on every beat it feeds a monotonic clock reading
// to each live match and publishes the result.
type Runner struct {
	manager   *SessionManager
	publisher Publisher
	interval  time.Duration
	clock     func() int64
	logger    *zap.Logger
}

func NewRunner(manager *SessionManager, publisher Publisher, tickRate int, logger *zap.Logger) *Runner {
	if tickRate <= 0 {
		tickRate = 60
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	// time.Since reads the monotonic clock
	start := time.Now()
	return &Runner{
		manager:   manager,
		publisher: publisher,
		interval:  time.Second / time.Duration(tickRate),
		clock:     func() int64 { return int64(time.Since(start)) },
		logger:    logger.Named("runner"),
	}
}

// Run ticks until ctx is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("tick loop started", zap.Duration("interval", r.interval))
	for {
		select {
		case <-ctx.Done():
			r.logger.Info("tick loop stopped")
			return ctx.Err()
		case <-ticker.C:
			r.Step(ctx, r.clock())
		}
	}
}

// Step advances every match to now and publishes their snapshots.
func (r *Runner) Step(ctx context.Context, now int64) {
	for _, match := range r.manager.ActiveMatches() {
		if match.Finished() {
			continue
		}
		match.Tick(ctx, now)
		if r.publisher != nil {
			r.publisher.Publish(match.ID, match.Snapshots())
		}
	}
}
