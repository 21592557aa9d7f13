package postgres

import (
	"context"
	"fmt"
	"time"

	"creed-trivia/internal/domain"
	"github.com/jackc/pgx/v4/pgxpool"
)

const pingTimeout = time.Second

// ScoreStore keeps solo results in the solo_scores table.
type ScoreStore struct {
	pool *pgxpool.Pool
}

func NewScoreStore(pool *pgxpool.Pool) *ScoreStore {
	return &ScoreStore{pool: pool}
}

func (s *ScoreStore) Ready(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return s.pool.Ping(ctx) == nil
}

func (s *ScoreStore) Append(ctx context.Context, result domain.SessionResult) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO solo_scores (id, name, score, duration_ms, created_at) VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (id) DO NOTHING`,
		result.ID, result.Name, result.Score, result.DurationMs, result.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert score: %w", err)
	}
	return nil
}

func (s *ScoreStore) Top(ctx context.Context, n int) ([]domain.SessionResult, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, score, duration_ms, created_at FROM solo_scores
		 ORDER BY score DESC, duration_ms ASC, created_at ASC LIMIT $1`, n)
	if err != nil {
		return nil, fmt.Errorf("query scores: %w", err)
	}
	defer rows.Close()

	var results []domain.SessionResult
	for rows.Next() {
		var r domain.SessionResult
		if err := rows.Scan(&r.ID, &r.Name, &r.Score, &r.DurationMs, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan score: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

func (s *ScoreStore) Clear(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM solo_scores`)
	return err
}
