package game

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamasit07/blockfall/backend/internal/config"
	"github.com/iamasit07/blockfall/backend/internal/domain"
)

type memRecorder struct {
	mu      sync.Mutex
	entries []domain.ScoreEntry
	err     error
}

func (r *memRecorder) Record(_ context.Context, e domain.ScoreEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.entries = append(r.entries, e)
	return nil
}

type staticTokens struct{ fail bool }

func (s staticTokens) IssueSideToken(matchID string, side int) (string, error) {
	if s.fail {
		return "", errors.New("signing failed")
	}
	return matchID + "/" + string(rune('0'+side)), nil
}

type capturePublisher struct {
	published map[string][]domain.Snapshot
}

func (p *capturePublisher) Publish(matchID string, snaps []domain.Snapshot) {
	p.published[matchID] = snaps
}

func TestCreateMatch(t *testing.T) {
	sm := NewSessionManager(config.DefaultGameConfig(), nil, nil, nil)

	seed := uint64(4)
	m, err := sm.CreateMatch(MatchRequest{Players: 2, Names: []string{"a", "b"}, Seed: &seed})
	require.NoError(t, err)
	assert.Equal(t, uint64(4), m.Seed())
	assert.Len(t, m.Sessions(), 2)

	got, ok := sm.GetMatch(m.ID)
	require.True(t, ok)
	assert.Same(t, m, got)

	_, err = sm.CreateMatch(MatchRequest{Players: 3})
	assert.ErrorIs(t, err, domain.ErrInvalidPlayers)

	_, err = sm.CreateMatch(MatchRequest{AI: []bool{true}})
	assert.Error(t, err, "AI side without a controller")
}

func TestRemoveAndCleanupMatches(t *testing.T) {
	sm := NewSessionManager(config.DefaultGameConfig(), nil, nil, nil)

	m1, err := sm.CreateMatch(MatchRequest{})
	require.NoError(t, err)
	_, err = sm.CreateMatch(MatchRequest{})
	require.NoError(t, err)
	assert.Len(t, sm.ActiveMatches(), 2)

	require.NoError(t, sm.RemoveMatch(m1.ID))
	assert.ErrorIs(t, sm.RemoveMatch(m1.ID), domain.ErrMatchNotFound)

	assert.Zero(t, sm.CleanupOldMatches(time.Hour, time.Hour))
	assert.Equal(t, 1, sm.CleanupOldMatches(time.Hour, -time.Second))
	assert.Empty(t, sm.ActiveMatches())
}

func TestResultsSavedAsync(t *testing.T) {
	rec := &memRecorder{}
	sm := NewSessionManager(config.DefaultGameConfig(), nil, rec, nil)

	sm.saveResultAsync(Result{MatchID: "m", Name: "zoe", Score: 300, Lines: 2, FinishedAt: time.Now()})
	sm.saveResultAsync(Result{MatchID: "m", Name: "nil", Score: 0})
	sm.WaitForSaves()

	require.Len(t, rec.entries, 1)
	assert.Equal(t, "zoe", rec.entries[0].Name)
	assert.Equal(t, 300, rec.entries[0].Score)

	rec.err = errors.New("db down")
	sm.saveResultAsync(Result{MatchID: "m", Score: 100})
	sm.WaitForSaves()
	assert.Len(t, rec.entries, 1)
}

func TestServiceIssuesTokensPerSide(t *testing.T) {
	sm := NewSessionManager(config.DefaultGameConfig(), nil, nil, nil)
	svc := NewService(sm, staticTokens{})

	m, tokens, err := svc.CreateMatch(MatchRequest{Players: 2})
	require.NoError(t, err)
	require.Len(t, tokens, 2)
	assert.Equal(t, m.ID+"/1", tokens[1].Token)

	snaps, err := svc.ApplyInput(m.ID, 0, domain.ActionPause)
	require.NoError(t, err)
	assert.True(t, snaps[0].Paused)

	_, err = svc.ApplyInput("missing", 0, domain.ActionLeft)
	assert.ErrorIs(t, err, domain.ErrMatchNotFound)
	_, err = svc.Snapshots("missing")
	assert.ErrorIs(t, err, domain.ErrMatchNotFound)

	failing := NewService(sm, staticTokens{fail: true})
	_, _, err = failing.CreateMatch(MatchRequest{})
	assert.Error(t, err)
	assert.Len(t, sm.ActiveMatches(), 1, "match is dropped when tokens cannot be issued")
}

func TestRunnerStepPublishes(t *testing.T) {
	sm := NewSessionManager(config.DefaultGameConfig(), nil, nil, nil)
	m, err := sm.CreateMatch(MatchRequest{})
	require.NoError(t, err)

	pub := &capturePublisher{published: map[string][]domain.Snapshot{}}
	r := NewRunner(sm, pub, 60, nil)

	ctx := context.Background()
	r.Step(ctx, 0)
	r.Step(ctx, int64(200*time.Millisecond))
	r.Step(ctx, int64(400*time.Millisecond))
	r.Step(ctx, int64(600*time.Millisecond))

	require.Contains(t, pub.published, m.ID)
	snaps := pub.published[m.ID]
	require.Len(t, snaps, 1)
	assert.Equal(t, 1, snaps[0].Active.Row)
}

func TestRunnerStopsOnCancel(t *testing.T) {
	sm := NewSessionManager(config.DefaultGameConfig(), nil, nil, nil)
	r := NewRunner(sm, nil, 1000, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("runner did not stop")
	}
}
