package leaderboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamasit07/blockfall/backend/internal/domain"
)

type fakeCache struct {
	data map[string]string
	sets int
	fail bool
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: map[string]string{}}
}

func (c *fakeCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	if c.fail {
		return errors.New("cache down")
	}
	c.sets++
	c.data[key] = value.(string)
	return nil
}

func (c *fakeCache) Get(_ context.Context, key string) (string, error) {
	if c.fail {
		return "", errors.New("cache down")
	}
	v, ok := c.data[key]
	if !ok {
		return "", errors.New("miss")
	}
	return v, nil
}

func (c *fakeCache) Del(_ context.Context, keys ...string) error {
	if c.fail {
		return errors.New("cache down")
	}
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

type countingRepo struct {
	*MemoryRepo
	tops int
}

func (r *countingRepo) Top(ctx context.Context, limit int) ([]domain.ScoreEntry, error) {
	r.tops++
	return r.MemoryRepo.Top(ctx, limit)
}

func entry(name string, score int, at time.Time) domain.ScoreEntry {
	return domain.ScoreEntry{Name: name, Score: score, CreatedAt: at}
}

func TestRecordIgnoresNonPositive(t *testing.T) {
	svc := NewService(NewMemoryRepo(TopN), nil, time.Minute, nil)
	ctx := context.Background()

	require.NoError(t, svc.Record(ctx, entry("zero", 0, time.Now())))
	require.NoError(t, svc.Record(ctx, entry("neg", -5, time.Now())))

	top, err := svc.Top(ctx)
	require.NoError(t, err)
	assert.Empty(t, top)
	assert.NotNil(t, top)
}

func TestTopKeepsTenBestInOrder(t *testing.T) {
	svc := NewService(NewMemoryRepo(TopN), nil, time.Minute, nil)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 1; i <= 15; i++ {
		require.NoError(t, svc.Record(ctx, entry("p", i*100, base.Add(time.Duration(i)*time.Second))))
	}
	require.NoError(t, svc.Record(ctx, entry("late", 1500, base.Add(time.Hour))))

	top, err := svc.Top(ctx)
	require.NoError(t, err)
	require.Len(t, top, TopN)
	assert.Equal(t, 1500, top[0].Score)
	assert.Equal(t, "p", top[0].Name, "earlier run wins a tie")
	assert.Equal(t, "late", top[1].Name)
	for i := 1; i < len(top); i++ {
		assert.GreaterOrEqual(t, top[i-1].Score, top[i].Score)
	}
}

func TestTopUsesCacheAndRecordInvalidates(t *testing.T) {
	repo := &countingRepo{MemoryRepo: NewMemoryRepo(TopN)}
	cache := newFakeCache()
	svc := NewService(repo, cache, time.Minute, nil)
	ctx := context.Background()

	require.NoError(t, svc.Record(ctx, entry("a", 100, time.Now())))

	_, err := svc.Top(ctx)
	require.NoError(t, err)
	top, err := svc.Top(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.tops, "second read served from cache")
	require.Len(t, top, 1)
	assert.Equal(t, "a", top[0].Name)

	require.NoError(t, svc.Record(ctx, entry("b", 200, time.Now())))
	top, err = svc.Top(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.tops)
	assert.Equal(t, "b", top[0].Name)
}

func TestCacheFailureFallsThrough(t *testing.T) {
	cache := newFakeCache()
	cache.fail = true
	svc := NewService(NewMemoryRepo(TopN), cache, time.Minute, nil)
	ctx := context.Background()

	require.NoError(t, svc.Record(ctx, entry("a", 100, time.Now())))
	top, err := svc.Top(ctx)
	require.NoError(t, err)
	assert.Len(t, top, 1)

	cache.fail = false
	cache.data[topCacheKey] = "{not json"
	top, err = svc.Top(ctx)
	require.NoError(t, err)
	assert.Len(t, top, 1)
}
