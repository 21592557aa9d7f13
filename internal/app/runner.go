package app

import (
	"context"
	"errors"
	"time"

	"creed-trivia/internal/domain"
)

// Presenter renders a running session. Calls come from the Runner goroutine.
type Presenter interface {
	Question(q domain.PresentedQuestion)
	Tick(remaining int)
	Locked(o domain.Outcome)
	Finished(result domain.SessionResult, outcomes []domain.Outcome)
}

// Ticker is the countdown clock for one question.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// Selection is a player's choice of a presented answer for the question at
// position Question. Selections for any other question are dropped.
type Selection struct {
	Question int
	Index    int
}

type timeTicker struct{ t *time.Ticker }

func (t timeTicker) C() <-chan time.Time { return t.t.C }
func (t timeTicker) Stop()               { t.t.Stop() }

// Runner drives a session from its two event sources: player selections
// and the countdown. It is the only goroutine that mutates the session.
type Runner struct {
	interval  time.Duration
	newTicker func(time.Duration) Ticker
}

func NewRunner() *Runner {
	return &Runner{
		interval: time.Second,
		newTicker: func(d time.Duration) Ticker {
			return timeTicker{t: time.NewTicker(d)}
		},
	}
}

// NewRunnerWithTicker is used by tests to drive the countdown by hand.
func NewRunnerWithTicker(newTicker func(time.Duration) Ticker) *Runner {
	return &Runner{interval: time.Second, newTicker: newTicker}
}

// Run starts the session and plays it to the end. A closed selections
// channel leaves every remaining question to time out. Cancelling ctx
// abandons the session.
func (r *Runner) Run(ctx context.Context, s *Session, p Presenter, selections <-chan Selection) (domain.SessionResult, error) {
	if err := s.Start(ctx); err != nil {
		return domain.SessionResult{}, err
	}

	for s.State() == domain.StateInProgress {
		q, err := s.Current()
		if err != nil {
			return s.Result(), err
		}
		p.Question(q)

		outcome, err := r.await(ctx, s, p, q.Index, selections)
		if err != nil {
			s.Abandon()
			return s.Result(), err
		}
		p.Locked(outcome)

		if _, err := s.Next(); err != nil {
			return s.Result(), err
		}
	}

	if s.State() != domain.StateFinished {
		return s.Result(), domain.ErrSessionNotStarted
	}
	p.Finished(s.Result(), s.Outcomes())
	return s.Result(), nil
}

// await blocks until the current question locks. The ticker lives exactly
// as long as the question is open.
func (r *Runner) await(ctx context.Context, s *Session, p Presenter, question int, selections <-chan Selection) (domain.Outcome, error) {
	ticker := r.newTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return domain.Outcome{}, ctx.Err()
		case sel, ok := <-selections:
			if !ok {
				selections = nil
				continue
			}
			if sel.Question != question {
				continue
			}
			outcome, locked, err := s.Select(sel.Index)
			if errors.Is(err, domain.ErrInvalidSelection) {
				continue
			}
			if err != nil {
				return domain.Outcome{}, err
			}
			if locked {
				return outcome, nil
			}
		case <-ticker.C():
			remaining, outcome, locked, err := s.Tick()
			if err != nil {
				return domain.Outcome{}, err
			}
			if locked {
				return outcome, nil
			}
			p.Tick(remaining)
		}
	}
}
