package app

import (
	"context"
	"math/rand"
	"sync/atomic"
	"time"

	"creed-trivia/internal/domain"
	"creed-trivia/internal/packs"
)

// QuestionSource supplies the normalized question pool.
type QuestionSource interface {
	Pool(ctx context.Context) ([]domain.Question, domain.Diagnostics)
}

// sessionQuestion is a pool question as presented in one session.
type sessionQuestion struct {
	question         domain.Question
	choices          []string
	correctPresented int
	limit            int
	remaining        int
	presentedAt      time.Time

	// locked is the single-writer gate: whoever flips it first decides the outcome.
	locked  atomic.Bool
	outcome domain.Outcome
}

// Session is one single-player quiz run. Events for a session are expected
// to come from one consumer (see Runner); only State is safe to read from
// other goroutines.
type Session struct {
	id        string
	name      string
	requested int
	settings  Settings
	source    QuestionSource
	now       func() time.Time
	rnd       *rand.Rand
	onFinish  func(domain.SessionResult) domain.SessionResult

	state       atomic.Int32
	diagnostics domain.Diagnostics
	questions   []*sessionQuestion
	current     int
	score       int
	startedAt   time.Time
	outcomes    []domain.Outcome
	result      domain.SessionResult
}

func (s *Session) ID() string                      { return s.id }
func (s *Session) Name() string                    { return s.name }
func (s *Session) Score() int                      { return s.score }
func (s *Session) Diagnostics() domain.Diagnostics { return s.diagnostics }

func (s *Session) State() domain.SessionState {
	return domain.SessionState(s.state.Load())
}

// Outcomes returns the per-question log so far.
func (s *Session) Outcomes() []domain.Outcome {
	return append([]domain.Outcome(nil), s.outcomes...)
}

// Total is the number of questions chosen for this session.
func (s *Session) Total() int {
	return len(s.questions)
}

// Start assembles the question set and presents the first question.
// Calling Start on a session that already left Idle does nothing.
func (s *Session) Start(ctx context.Context) error {
	if !s.state.CompareAndSwap(int32(domain.StateIdle), int32(domain.StateLoading)) {
		return nil
	}

	pool, diag := s.source.Pool(ctx)
	if !playable(pool) {
		pool = packs.Fallback()
		diag.Fallback = true
	}
	s.diagnostics = diag

	chosen := append([]domain.Question(nil), pool...)
	if s.settings.ShuffleQuestions {
		s.rnd.Shuffle(len(chosen), func(i, j int) { chosen[i], chosen[j] = chosen[j], chosen[i] })
	}
	if n := s.settings.ClampCount(s.requested); n < len(chosen) {
		chosen = chosen[:n]
	}
	if len(chosen) == 0 {
		s.state.Store(int32(domain.StateIdle))
		return domain.ErrEmptyPool
	}

	s.questions = make([]*sessionQuestion, len(chosen))
	for i, q := range chosen {
		s.questions[i] = s.prepare(q)
	}
	s.current = 0
	s.startedAt = s.now()
	s.questions[0].presentedAt = s.startedAt
	s.state.Store(int32(domain.StateInProgress))
	return nil
}

func (s *Session) prepare(q domain.Question) *sessionQuestion {
	order := make([]int, len(q.Choices))
	for i := range order {
		order[i] = i
	}
	if s.settings.ShuffleAnswers {
		s.rnd.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
	}

	sq := &sessionQuestion{
		question: q,
		choices:  make([]string, len(order)),
		limit:    s.settings.timeLimit(q.TimeLimitSec),
	}
	for presented, original := range order {
		sq.choices[presented] = q.Choices[original]
		if original == q.CorrectIndex {
			sq.correctPresented = presented
		}
	}
	sq.remaining = sq.limit
	return sq
}

// Current returns the question being shown.
func (s *Session) Current() (domain.PresentedQuestion, error) {
	sq, err := s.active()
	if err != nil {
		return domain.PresentedQuestion{}, err
	}
	return domain.PresentedQuestion{
		Index:        s.current,
		Total:        len(s.questions),
		QuestionID:   sq.question.ID,
		Text:         sq.question.Text,
		Choices:      append([]string(nil), sq.choices...),
		TimeLimitSec: sq.limit,
		Image:        sq.question.Image,
		Audio:        sq.question.Audio,
	}, nil
}

// Select answers the current question with a presented choice index. The
// boolean is false when the question was already locked and the selection
// was ignored.
func (s *Session) Select(index int) (domain.Outcome, bool, error) {
	sq, err := s.active()
	if err != nil {
		return domain.Outcome{}, false, err
	}
	if index < 0 || index >= len(sq.choices) {
		return domain.Outcome{}, false, domain.ErrInvalidSelection
	}
	if !sq.locked.CompareAndSwap(false, true) {
		return sq.outcome, false, nil
	}
	return s.lock(sq, index), true, nil
}

// Tick advances the countdown by one second. When it reaches zero on an
// unlocked question, the question locks as unanswered.
func (s *Session) Tick() (int, domain.Outcome, bool, error) {
	sq, err := s.active()
	if err != nil {
		return 0, domain.Outcome{}, false, err
	}
	if sq.locked.Load() {
		return sq.remaining, sq.outcome, false, nil
	}
	if sq.remaining > 0 {
		sq.remaining--
	}
	if sq.remaining > 0 {
		return sq.remaining, domain.Outcome{}, false, nil
	}
	if !sq.locked.CompareAndSwap(false, true) {
		return 0, sq.outcome, false, nil
	}
	return 0, s.lock(sq, -1), true, nil
}

// lock must only be called by the caller that won the locked flag.
func (s *Session) lock(sq *sessionQuestion, selected int) domain.Outcome {
	elapsed := s.now().Sub(sq.presentedAt)
	correct := selected >= 0 && selected == sq.correctPresented
	points := s.settings.Points(correct, elapsed)
	s.score += points

	sq.outcome = domain.Outcome{
		QuestionID:   sq.question.ID,
		Selected:     selected,
		CorrectIndex: sq.correctPresented,
		Correct:      correct,
		TimedOut:     selected < 0,
		ElapsedMs:    elapsed.Milliseconds(),
		Points:       points,
		Score:        s.score,
	}
	s.outcomes = append(s.outcomes, sq.outcome)
	return sq.outcome
}

// Next moves past a locked question. It reports true once the session has
// finished.
func (s *Session) Next() (bool, error) {
	sq, err := s.active()
	if err != nil {
		return s.State() == domain.StateFinished, err
	}
	if !sq.locked.Load() {
		return false, domain.ErrQuestionOpen
	}
	s.current++
	if s.current >= len(s.questions) {
		s.finish()
		return true, nil
	}
	s.questions[s.current].presentedAt = s.now()
	return false, nil
}

// Abandon stops an in-progress session without recording it.
func (s *Session) Abandon() {
	if s.state.CompareAndSwap(int32(domain.StateInProgress), int32(domain.StateAbandoned)) {
		s.result = s.snapshot()
	}
}

// Result is the final record once the session finished or was abandoned.
func (s *Session) Result() domain.SessionResult {
	return s.result
}

func (s *Session) finish() {
	s.result = s.snapshot()
	if s.onFinish != nil {
		s.result = s.onFinish(s.result)
	}
	s.state.Store(int32(domain.StateFinished))
}

func (s *Session) snapshot() domain.SessionResult {
	now := s.now()
	return domain.SessionResult{
		ID:         s.id,
		Name:       s.name,
		Score:      s.score,
		DurationMs: now.Sub(s.startedAt).Milliseconds(),
		CreatedAt:  now,
	}
}

func (s *Session) active() (*sessionQuestion, error) {
	switch s.State() {
	case domain.StateInProgress:
		return s.questions[s.current], nil
	case domain.StateFinished, domain.StateAbandoned:
		return nil, domain.ErrSessionFinished
	default:
		return nil, domain.ErrSessionNotStarted
	}
}

// playable reports whether at least one question offers a real choice.
func playable(pool []domain.Question) bool {
	for _, q := range pool {
		if len(q.Choices) >= 2 {
			return true
		}
	}
	return false
}
