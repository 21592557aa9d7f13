package leaderboard

import (
	"context"

	"creed-trivia/internal/domain"
)

// Store is one backing store for solo scores.
type Store interface {
	// Ready reports whether the store can be used right now.
	Ready(ctx context.Context) bool
	Append(ctx context.Context, result domain.SessionResult) error
	// Top returns at most n results, best first.
	Top(ctx context.Context, n int) ([]domain.SessionResult, error)
	Clear(ctx context.Context) error
}

// KeyValueStore is local device storage. Get returns nil when the key is unset.
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}
