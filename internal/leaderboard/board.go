package leaderboard

import (
	"context"
	"errors"
	"fmt"
	"log"

	"creed-trivia/internal/domain"
)

// Board records results and serves the solo leaderboard. The remote store
// is checked for readiness on every call, so an outage degrades to the
// local store and recovers on its own.
type Board struct {
	remote Store
	local  Store
	logger *log.Logger
}

// NewBoard builds a board; remote may be nil for local-only play.
func NewBoard(remote, local Store, logger *log.Logger) *Board {
	if logger == nil {
		logger = log.Default()
	}
	return &Board{remote: remote, local: local, logger: logger}
}

// Record writes to the remote store when it is ready and always mirrors
// the result locally. It fails only when no store accepted the write.
func (b *Board) Record(ctx context.Context, result domain.SessionResult) error {
	var remoteErr error
	stored := false
	if b.remoteReady(ctx) {
		if remoteErr = b.remote.Append(ctx, result); remoteErr != nil {
			b.logger.Printf("remote score write failed for %s: %v", result.ID, remoteErr)
		} else {
			stored = true
		}
	}

	localErr := b.local.Append(ctx, result)
	if localErr != nil {
		b.logger.Printf("local score write failed for %s: %v", result.ID, localErr)
	} else {
		stored = true
	}

	if !stored {
		return fmt.Errorf("%w: %v", domain.ErrPersistenceUnavailable, errors.Join(remoteErr, localErr))
	}
	return nil
}

// Top returns the best n results, falling back to the local store when the
// remote one is down or fails.
func (b *Board) Top(ctx context.Context, n int) ([]domain.SessionResult, error) {
	if b.remoteReady(ctx) {
		results, err := b.remote.Top(ctx, n)
		if err == nil {
			return limit(Rank(results), n), nil
		}
		b.logger.Printf("remote leaderboard read failed, using local scores: %v", err)
	}

	results, err := b.local.Top(ctx, n)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistenceUnavailable, err)
	}
	return limit(Rank(results), n), nil
}

// Clear empties every store that is reachable.
func (b *Board) Clear(ctx context.Context) error {
	var errs []error
	if b.remoteReady(ctx) {
		if err := b.remote.Clear(ctx); err != nil {
			errs = append(errs, fmt.Errorf("clear remote scores: %w", err))
		}
	}
	if err := b.local.Clear(ctx); err != nil {
		errs = append(errs, fmt.Errorf("clear local scores: %w", err))
	}
	return errors.Join(errs...)
}

func (b *Board) remoteReady(ctx context.Context) bool {
	return b.remote != nil && b.remote.Ready(ctx)
}
