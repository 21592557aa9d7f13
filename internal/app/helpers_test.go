package app_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"creed-trivia/internal/app"
	"creed-trivia/internal/domain"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 11, 22, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type staticSource struct {
	mu        sync.Mutex
	questions []domain.Question
	calls     int
}

func (s *staticSource) Pool(context.Context) ([]domain.Question, domain.Diagnostics) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	n := len(s.questions)
	return s.questions, domain.Diagnostics{Raw: n, Normalized: n, Usable: n}
}

func questions(n int) []domain.Question {
	out := make([]domain.Question, n)
	for i := range out {
		out[i] = domain.Question{
			ID:           fmt.Sprintf("q%d", i+1),
			Text:         fmt.Sprintf("question %d", i+1),
			Choices:      []string{"a", "b", "c", "d"},
			CorrectIndex: i % 4,
			TimeLimitSec: 2,
		}
	}
	return out
}

type recorder struct {
	mu      sync.Mutex
	results []domain.SessionResult
	err     error
}

func (r *recorder) Record(_ context.Context, result domain.SessionResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, result)
	return r.err
}

func (r *recorder) recorded() []domain.SessionResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.SessionResult(nil), r.results...)
}

// plainSettings disables shuffling so tests can predict the presented order.
func plainSettings() app.Settings {
	s := app.DefaultSettings()
	s.ShuffleQuestions = false
	s.ShuffleAnswers = false
	return s
}

func newTestEngine(settings app.Settings, source app.QuestionSource, rec app.Recorder, clock *fakeClock) *app.Engine {
	return app.NewEngine(settings, app.Deps{
		Source:   source,
		Recorder: rec,
		Now:      clock.Now,
		Seed:     42,
	})
}
