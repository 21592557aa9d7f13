package leaderboard

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"creed-trivia/internal/domain"
)

// ScoresKey is the local storage key of the score history.
const ScoresKey = "ct_solo_scores"

// LocalStore keeps every result as a JSON array in local storage.
type LocalStore struct {
	kv KeyValueStore
	mu sync.Mutex
}

func NewLocalStore(kv KeyValueStore) *LocalStore {
	return &LocalStore{kv: kv}
}

// Ready is always true; local storage has no connection to lose.
func (s *LocalStore) Ready(context.Context) bool {
	return true
}

func (s *LocalStore) Append(ctx context.Context, result domain.SessionResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load(ctx)
	if err != nil {
		return err
	}
	all = append(all, result)
	data, err := json.Marshal(all)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, ScoresKey, data)
}

func (s *LocalStore) Top(ctx context.Context, n int) ([]domain.SessionResult, error) {
	s.mu.Lock()
	all, err := s.load(ctx)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return limit(Rank(all), n), nil
}

func (s *LocalStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.kv.Set(ctx, ScoresKey, []byte("[]"))
}

func (s *LocalStore) load(ctx context.Context) ([]domain.SessionResult, error) {
	data, err := s.kv.Get(ctx, ScoresKey)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}
	var all []domain.SessionResult
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, fmt.Errorf("decode local scores: %w", err)
	}
	return all, nil
}
