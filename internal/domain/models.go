package domain

import "time"

// RawQuestion is an untrusted question record as decoded from a pack.
type RawQuestion map[string]any

// Question is the canonical shape every pack is normalized into.
// Invariant: 0 <= CorrectIndex < len(Choices).
type Question struct {
	ID           string   `json:"id"`
	Text         string   `json:"text"`
	Choices      []string `json:"choices"`
	CorrectIndex int      `json:"correctIndex"`
	TimeLimitSec int      `json:"timeLimitSec,omitempty"` // 0 means use the session default
	Image        string   `json:"image,omitempty"`
	Audio        string   `json:"audio,omitempty"`
	Pack         string   `json:"pack,omitempty"`
}

// PackSource describes one loadable question pack.
type PackSource struct {
	ID      string `json:"packId" yaml:"id"`
	Title   string `json:"title" yaml:"title"`
	Path    string `json:"path" yaml:"path"`
	Enabled bool   `json:"enabled" yaml:"enabled"`
}

// Diagnostics counts what survived each stage of pool assembly.
type Diagnostics struct {
	Raw        int  `json:"raw"`
	Normalized int  `json:"normalized"`
	Usable     int  `json:"usable"`
	Defaulted  int  `json:"defaulted"`
	Fallback   bool `json:"fallback"`
}

// SessionState enumerates the lifecycle of a quiz session.
type SessionState int

const (
	StateIdle SessionState = iota
	StateLoading
	StateInProgress
	StateFinished
	StateAbandoned
)

func (s SessionState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateInProgress:
		return "in_progress"
	case StateFinished:
		return "finished"
	case StateAbandoned:
		return "abandoned"
	}
	return "unknown"
}

// PresentedQuestion is what the presentation layer sees for one question.
type PresentedQuestion struct {
	Index        int      `json:"index"`
	Total        int      `json:"total"`
	QuestionID   string   `json:"questionId"`
	Text         string   `json:"text"`
	Choices      []string `json:"choices"`
	TimeLimitSec int      `json:"timeLimitSec"`
	Image        string   `json:"image,omitempty"`
	Audio        string   `json:"audio,omitempty"`
}

// Outcome records how a single question was locked.
type Outcome struct {
	QuestionID   string `json:"questionId"`
	Selected     int    `json:"selected"` // presented index, -1 when timed out
	CorrectIndex int    `json:"correctIndex"`
	Correct      bool   `json:"correct"`
	TimedOut     bool   `json:"timedOut"`
	ElapsedMs    int64  `json:"elapsedMs"`
	Points       int    `json:"points"`
	Score        int    `json:"score"`
}

// SessionResult is the immutable record persisted to the leaderboard.
type SessionResult struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Score      int       `json:"score"`
	DurationMs int64     `json:"durationMs"`
	CreatedAt  time.Time `json:"createdAt"`
	Unlocked   bool      `json:"unlocked,omitempty"`
}
