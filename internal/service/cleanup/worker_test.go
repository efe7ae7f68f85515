package cleanup

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamasit07/blockfall/backend/internal/config"
	"github.com/iamasit07/blockfall/backend/internal/service/game"
)

type fakePruner struct {
	calls int
	keep  int
	err   error
}

func (p *fakePruner) Prune(_ context.Context, keep int) (int64, error) {
	p.calls++
	p.keep = keep
	return 3, p.err
}

func TestRunOnceEvictsStaleMatches(t *testing.T) {
	sm := game.NewSessionManager(config.DefaultGameConfig(), nil, nil, nil)
	_, err := sm.CreateMatch(game.MatchRequest{})
	require.NoError(t, err)

	pruner := &fakePruner{}
	w := NewWorker(sm, pruner, nil)
	w.StaleTTL = -time.Second
	w.KeepScores = 50

	w.RunOnce(context.Background())
	assert.Empty(t, sm.ActiveMatches())
	assert.Equal(t, 1, pruner.calls)
	assert.Equal(t, 50, pruner.keep)

	pruner.err = errors.New("db down")
	w.RunOnce(context.Background())
	assert.Equal(t, 2, pruner.calls)
}

func TestRunOnceKeepsLiveMatches(t *testing.T) {
	sm := game.NewSessionManager(config.DefaultGameConfig(), nil, nil, nil)
	_, err := sm.CreateMatch(game.MatchRequest{})
	require.NoError(t, err)

	w := NewWorker(sm, nil, nil)
	w.RunOnce(context.Background())
	assert.Len(t, sm.ActiveMatches(), 1)
}
