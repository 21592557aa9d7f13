package packs

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"creed-trivia/internal/domain"
	"golang.org/x/sync/errgroup"
)

// maxConcurrentFetches bounds parallel pack downloads.
const maxConcurrentFetches = 4

// Batch is the raw content of one pack, or the reason it could not be read.
type Batch struct {
	Source domain.PackSource
	Raws   []domain.RawQuestion
	Err    error
}

// Loader fetches every enabled pack concurrently. A failing pack never
// affects the others.
type Loader struct {
	fetcher  Fetcher
	disabled *DisabledSet
	logger   *log.Logger
}

func NewLoader(fetcher Fetcher, disabled *DisabledSet, logger *log.Logger) *Loader {
	if logger == nil {
		logger = log.Default()
	}
	return &Loader{fetcher: fetcher, disabled: disabled, logger: logger}
}

// Load returns one batch per enabled source, in source order.
func (l *Loader) Load(ctx context.Context, sources []domain.PackSource) []Batch {
	enabled := l.enabled(ctx, sources)
	batches := make([]Batch, len(enabled))

	var g errgroup.Group
	g.SetLimit(maxConcurrentFetches)
	for i, src := range enabled {
		i, src := i, src
		g.Go(func() error {
			raws, err := l.fetch(ctx, src)
			if err != nil {
				l.logger.Printf("failed to load pack %s (%s): %v", src.ID, src.Path, err)
			}
			batches[i] = Batch{Source: src, Raws: raws, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	return batches
}

func (l *Loader) fetch(ctx context.Context, src domain.PackSource) ([]domain.RawQuestion, error) {
	data, err := l.fetcher.Fetch(ctx, src.Path)
	if err != nil {
		return nil, err
	}
	return DecodePack(data)
}

func (l *Loader) enabled(ctx context.Context, sources []domain.PackSource) []domain.PackSource {
	var off map[string]bool
	if l.disabled != nil {
		ids, err := l.disabled.Load(ctx)
		if err != nil {
			l.logger.Printf("disabled packs unavailable, loading all enabled packs: %v", err)
		}
		off = ids
	}
	out := make([]domain.PackSource, 0, len(sources))
	for _, src := range sources {
		if !src.Enabled || off[src.ID] {
			continue
		}
		out = append(out, src)
	}
	return out
}

// DecodePack accepts either {"questions": [...]} or a bare array. Elements
// that are not objects are kept as nil records so they count as rejects.
func DecodePack(data []byte) ([]domain.RawQuestion, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: invalid json: %v", domain.ErrSourceUnavailable, err)
	}

	var items []any
	switch v := doc.(type) {
	case []any:
		items = v
	case map[string]any:
		qs, ok := v["questions"].([]any)
		if !ok {
			return nil, fmt.Errorf("%w: no questions array", domain.ErrSourceUnavailable)
		}
		items = qs
	default:
		return nil, fmt.Errorf("%w: unexpected pack shape", domain.ErrSourceUnavailable)
	}

	raws := make([]domain.RawQuestion, len(items))
	for i, item := range items {
		if obj, ok := item.(map[string]any); ok {
			raws[i] = obj
		}
	}
	return raws, nil
}
