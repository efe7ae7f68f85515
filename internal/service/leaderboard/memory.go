package leaderboard

import (
	"context"
	"slices"
	"sync"

	"github.com/iamasit07/blockfall/backend/internal/domain"
)

// MemoryRepo is the Repository used when no database is configured. It
// keeps only the best entries.
type MemoryRepo struct {
	mu      sync.RWMutex
	entries []domain.ScoreEntry
	keep    int
}

func NewMemoryRepo(keep int) *MemoryRepo {
	if keep <= 0 {
		keep = TopN
	}
	return &MemoryRepo{keep: keep}
}

func (r *MemoryRepo) Record(_ context.Context, e domain.ScoreEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = append(r.entries, e)
	slices.SortStableFunc(r.entries, compareEntries)
	if len(r.entries) > r.keep {
		r.entries = r.entries[:r.keep]
	}
	return nil
}

func (r *MemoryRepo) Top(_ context.Context, limit int) ([]domain.ScoreEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := min(limit, len(r.entries))
	return slices.Clone(r.entries[:n]), nil
}

// compareEntries orders by score descending; equal scores keep the earlier run first.
func compareEntries(a, b domain.ScoreEntry) int {
	if a.Score != b.Score {
		return b.Score - a.Score
	}
	return a.CreatedAt.Compare(b.CreatedAt)
}
