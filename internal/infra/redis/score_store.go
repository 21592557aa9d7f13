package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"creed-trivia/internal/domain"
	"creed-trivia/internal/leaderboard"
	"github.com/redis/go-redis/v9"
)

const (
	entriesKey = "leaderboards:solo:entries"
	docsKey    = "leaderboards:solo:docs"

	pingTimeout = time.Second
	// maxRankedDuration keeps the duration component below one score point.
	maxRankedDuration = int64(1e9) - 1
)

// ScoreStore is the remote ranked leaderboard.
// Ranking is kept in a sorted set (ZADD leaderboards:solo:entries {rank} {id})
// and each result is stored as JSON in a hash (HSET leaderboards:solo:docs {id} {json}).
type ScoreStore struct {
	client *redis.Client
}

func NewScoreStore(client *redis.Client) *ScoreStore {
	return &ScoreStore{client: client}
}

func (s *ScoreStore) Ready(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return s.client.Ping(ctx).Err() == nil
}

func (s *ScoreStore) Append(ctx context.Context, result domain.SessionResult) error {
	doc, err := json.Marshal(result)
	if err != nil {
		return err
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, docsKey, result.ID, doc)
		pipe.ZAdd(ctx, entriesKey, redis.Z{Score: rankScore(result), Member: result.ID})
		return nil
	})
	if err != nil {
		return fmt.Errorf("append score: %w", err)
	}
	return nil
}

func (s *ScoreStore) Top(ctx context.Context, n int) ([]domain.SessionResult, error) {
	if n <= 0 {
		return nil, nil
	}
	ids, err := s.client.ZRevRange(ctx, entriesKey, 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("read ranking: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	docs, err := s.client.HMGet(ctx, docsKey, ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("read scores: %w", err)
	}

	results := make([]domain.SessionResult, 0, len(docs))
	for i, raw := range docs {
		str, ok := raw.(string)
		if !ok {
			continue
		}
		var r domain.SessionResult
		if err := json.Unmarshal([]byte(str), &r); err != nil {
			return nil, fmt.Errorf("decode score %s: %w", ids[i], err)
		}
		results = append(results, r)
	}
	return leaderboard.Rank(results), nil
}

func (s *ScoreStore) Clear(ctx context.Context) error {
	return s.client.Del(ctx, entriesKey, docsKey).Err()
}

// rankScore folds score and duration into one sorted-set score so that a
// higher score wins and, within a score, a shorter duration wins.
func rankScore(r domain.SessionResult) float64 {
	d := r.DurationMs
	if d < 0 {
		d = 0
	}
	if d > maxRankedDuration {
		d = maxRankedDuration
	}
	return float64(r.Score)*1e9 + float64(maxRankedDuration-d)
}
