package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/iamasit07/blockfall/backend/internal/domain"
)

type ScoreRepo struct {
	DB *sql.DB
}

func NewScoreRepo(db *sql.DB) *ScoreRepo {
	return &ScoreRepo{DB: db}
}

// Record inserts one finished run.
func (r *ScoreRepo) Record(ctx context.Context, e domain.ScoreEntry) error {
	query := `
	INSERT INTO scores (match_id, name, score, lines, pieces, duration_ms, ai, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	createdAt := e.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := r.DB.ExecContext(ctx, query, e.MatchID, e.Name, e.Score, e.Lines, e.Pieces, e.Duration.Milliseconds(), e.AI, createdAt)
	if err != nil {
		return fmt.Errorf("failed to insert score: %w", err)
	}
	return nil
}

// Top returns the best runs, highest score first; ties go to the earlier run.
func (r *ScoreRepo) Top(ctx context.Context, limit int) ([]domain.ScoreEntry, error) {
	query := `
	SELECT match_id, name, score, lines, pieces, duration_ms, ai, created_at
	FROM scores
	ORDER BY score DESC, created_at ASC
	LIMIT $1;
	`

	rows, err := r.DB.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query scores: %w", err)
	}
	defer rows.Close()

	var entries []domain.ScoreEntry
	for rows.Next() {
		var e domain.ScoreEntry
		var durationMs int64
		if err := rows.Scan(&e.MatchID, &e.Name, &e.Score, &e.Lines, &e.Pieces, &durationMs, &e.AI, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan score row: %w", err)
		}
		e.Duration = time.Duration(durationMs) * time.Millisecond
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Prune deletes every run outside the best keep entries.
func (r *ScoreRepo) Prune(ctx context.Context, keep int) (int64, error) {
	query := `
	DELETE FROM scores
	WHERE id NOT IN (
		SELECT id FROM scores ORDER BY score DESC, created_at ASC LIMIT $1
	);
	`
	result, err := r.DB.ExecContext(ctx, query, keep)
	if err != nil {
		return 0, fmt.Errorf("failed to prune scores: %w", err)
	}
	return result.RowsAffected()
}
