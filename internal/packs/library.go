package packs

import (
	"context"
	"log"

	"creed-trivia/internal/domain"
	"creed-trivia/internal/normalize"
)

// PackReport is the per-pack diagnostic produced by a load.
type PackReport struct {
	PackID string           `json:"packId"`
	Path   string           `json:"path"`
	Error  string           `json:"error,omitempty"`
	Counts normalize.Report `json:"counts"`
}

// Pool is a normalized question pool plus how it was assembled.
type Pool struct {
	Questions   []domain.Question  `json:"-"`
	Packs       []PackReport       `json:"packs"`
	Diagnostics domain.Diagnostics `json:"diagnostics"`
}

// Library turns the configured pack list into a canonical question pool.
type Library struct {
	sources []domain.PackSource
	loader  *Loader
	logger  *log.Logger
}

func NewLibrary(sources []domain.PackSource, loader *Loader, logger *log.Logger) *Library {
	if logger == nil {
		logger = log.Default()
	}
	return &Library{sources: sources, loader: loader, logger: logger}
}

// Sources returns the configured pack list.
func (l *Library) Sources() []domain.PackSource {
	return append([]domain.PackSource(nil), l.sources...)
}

// Load fetches and normalizes all enabled packs. When nothing usable comes
// back, the embedded fallback set is returned instead.
func (l *Library) Load(ctx context.Context) Pool {
	var batch normalize.Batch
	var pool Pool
	for _, b := range l.loader.Load(ctx, l.sources) {
		report := PackReport{PackID: b.Source.ID, Path: b.Source.Path}
		if b.Err != nil {
			report.Error = b.Err.Error()
		}
		start := len(batch.Questions)
		report.Counts = batch.Add(b.Raws)
		for i := start; i < len(batch.Questions); i++ {
			batch.Questions[i].Pack = b.Source.ID
		}
		pool.Packs = append(pool.Packs, report)
	}

	pool.Questions = batch.Questions
	pool.Diagnostics = domain.Diagnostics{
		Raw:        batch.Report.Raw,
		Normalized: batch.Report.Normalized,
		Usable:     batch.Report.Usable,
		Defaulted:  batch.Report.Defaulted,
	}
	l.logger.Printf("question pool: raw=%d normalized=%d usable=%d defaulted=%d",
		batch.Report.Raw, batch.Report.Normalized, batch.Report.Usable, batch.Report.Defaulted)

	if batch.Report.Usable == 0 {
		l.logger.Printf("no usable questions from %d packs, using fallback set", len(pool.Packs))
		pool.Questions = Fallback()
		pool.Diagnostics.Fallback = true
	}
	return pool
}

// Pool implements the session engine's question source.
func (l *Library) Pool(ctx context.Context) ([]domain.Question, domain.Diagnostics) {
	pool := l.Load(ctx)
	return pool.Questions, pool.Diagnostics
}
