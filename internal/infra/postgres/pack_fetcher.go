package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"creed-trivia/internal/domain"
	"creed-trivia/internal/packs"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// PackFetcher loads pack JSONB from the question_packs table.
type PackFetcher struct {
	pool *pgxpool.Pool
}

func NewPackFetcher(pool *pgxpool.Pool) *PackFetcher {
	return &PackFetcher{pool: pool}
}

func (f *PackFetcher) Fetch(ctx context.Context, path string) ([]byte, error) {
	id := strings.TrimPrefix(path, packs.DatabasePrefix)
	var raw []byte
	err := f.pool.QueryRow(ctx, `SELECT data FROM question_packs WHERE id=$1`, id).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: pack %s not found", domain.ErrSourceUnavailable, id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: load pack %s: %v", domain.ErrSourceUnavailable, id, err)
	}
	return raw, nil
}

// SavePack stores or replaces a pack document.
func (f *PackFetcher) SavePack(ctx context.Context, id string, data []byte) error {
	_, err := f.pool.Exec(ctx,
		`INSERT INTO question_packs (id, data, updated_at) VALUES ($1, $2::jsonb, now())
		 ON CONFLICT (id) DO UPDATE SET data=EXCLUDED.data, updated_at=now()`, id, string(data))
	if err != nil {
		return fmt.Errorf("save pack: %w", err)
	}
	return nil
}
