package app

import (
	"context"
	"log"
	"math/rand"
	"sync"
	"time"

	"creed-trivia/internal/domain"
	"github.com/google/uuid"
)

// UnlockKey is the local storage flag set once a score reaches the unlock threshold.
const UnlockKey = "ct_unlocked_explore"

const storeTimeout = 5 * time.Second

// unlockTimeout bounds the flag check that runs before a session reports Finished.
const unlockTimeout = 250 * time.Millisecond

// Recorder persists finished session results.
type Recorder interface {
	Record(ctx context.Context, result domain.SessionResult) error
}

// FlagStore is the subset of local storage the engine needs for the unlock flag.
type FlagStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Deps are the collaborators of an Engine. Recorder and Flags may be nil.
type Deps struct {
	Source   QuestionSource
	Recorder Recorder
	Flags    FlagStore
	Logger   *log.Logger
	// Now and Seed default to the wall clock.
	Now  func() time.Time
	Seed int64
}

// Engine is constructed once by the host and creates every session.
type Engine struct {
	settings Settings
	source   QuestionSource
	recorder Recorder
	flags    FlagStore
	logger   *log.Logger
	now      func() time.Time

	mu  sync.Mutex
	rnd *rand.Rand
	wg  sync.WaitGroup
}

func NewEngine(settings Settings, deps Deps) *Engine {
	if deps.Logger == nil {
		deps.Logger = log.Default()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Seed == 0 {
		deps.Seed = time.Now().UnixNano()
	}
	return &Engine{
		settings: settings,
		source:   deps.Source,
		recorder: deps.Recorder,
		flags:    deps.Flags,
		logger:   deps.Logger,
		now:      deps.Now,
		rnd:      rand.New(rand.NewSource(deps.Seed)),
	}
}

func (e *Engine) Settings() Settings {
	return e.settings
}

// NewSession creates an idle session for a player. A count of zero means
// the configured default.
func (e *Engine) NewSession(name string, count int) *Session {
	e.mu.Lock()
	seed := e.rnd.Int63()
	e.mu.Unlock()

	s := &Session{
		id:        uuid.NewString(),
		name:      SanitizeName(name),
		requested: count,
		settings:  e.settings,
		source:    e.source,
		now:       e.now,
		rnd:       rand.New(rand.NewSource(seed)),
	}
	s.onFinish = e.complete
	return s
}

// Close waits for pending score writes.
func (e *Engine) Close() {
	e.wg.Wait()
}

func (e *Engine) complete(result domain.SessionResult) domain.SessionResult {
	result.Unlocked = e.unlock(result.Score)
	if e.recorder == nil {
		return result
	}

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		if err := e.recorder.Record(ctx, result); err != nil {
			e.logger.Printf("failed to record score for %s (%d): %v", result.Name, result.Score, err)
		}
	}()
	return result
}

// unlock sets the bonus flag and reports whether this result set it.
func (e *Engine) unlock(score int) bool {
	if e.flags == nil || e.settings.UnlockThreshold <= 0 || score < e.settings.UnlockThreshold {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), unlockTimeout)
	defer cancel()

	existing, err := e.flags.Get(ctx, UnlockKey)
	if err != nil {
		e.logger.Printf("failed to read unlock flag: %v", err)
		return false
	}
	if len(existing) > 0 {
		return false
	}
	if err := e.flags.Set(ctx, UnlockKey, []byte("1")); err != nil {
		e.logger.Printf("failed to store unlock flag: %v", err)
		return false
	}
	return true
}
