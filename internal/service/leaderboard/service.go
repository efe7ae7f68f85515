package leaderboard

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/iamasit07/blockfall/backend/internal/domain"
)

const (
	// TopN is the size of the high-score table.
	TopN = 10

	topCacheKey = "leaderboard:top"
)

type Repository interface {
	Record(ctx context.Context, entry domain.ScoreEntry) error
	Top(ctx context.Context, limit int) ([]domain.ScoreEntry, error)
}

type CacheRepository interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

// Service keeps the high-score table. The cache is optional and every cache
// failure falls through to the repository.
type Service struct {
	repo   Repository
	cache  CacheRepository // Optional, can be nil
	ttl    time.Duration
	logger *zap.Logger
}

func NewService(repo Repository, cache CacheRepository, ttl time.Duration, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:   repo,
		cache:  cache,
		ttl:    ttl,
		logger: logger.Named("leaderboard"),
	}
}

// Record stores a finished run. Runs that scored nothing are ignored.
func (s *Service) Record(ctx context.Context, entry domain.ScoreEntry) error {
	if entry.Score <= 0 {
		return nil
	}
	if err := s.repo.Record(ctx, entry); err != nil {
		return err
	}

	if s.cache != nil {
		if err := s.cache.Del(ctx, topCacheKey); err != nil {
			s.logger.Warn("failed to invalidate cached table", zap.Error(err))
		}
	}
	return nil
}

// Top returns at most TopN entries, best first.
func (s *Service) Top(ctx context.Context) ([]domain.ScoreEntry, error) {
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, topCacheKey); err == nil && raw != "" {
			var entries []domain.ScoreEntry
			if err := json.Unmarshal([]byte(raw), &entries); err == nil {
				return entries, nil
			}
			s.logger.Warn("discarding malformed cached table")
		}
	}

	entries, err := s.repo.Top(ctx, TopN)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []domain.ScoreEntry{}
	}

	if s.cache != nil {
		if raw, err := json.Marshal(entries); err == nil {
			if err := s.cache.Set(ctx, topCacheKey, string(raw), s.ttl); err != nil {
				s.logger.Warn("failed to cache table", zap.Error(err))
			}
		}
	}
	return entries, nil
}
