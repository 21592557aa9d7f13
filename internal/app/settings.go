package app

import (
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// DefaultPlayerName replaces an empty player name.
	DefaultPlayerName = "Player"
	maxNameRunes      = 20
)

// Settings are the tunables of a quiz session.
type Settings struct {
	TimePerQuestion  time.Duration
	BaseCorrect      int
	SpeedMax         int
	SpeedCap         time.Duration
	ShuffleQuestions bool
	ShuffleAnswers   bool
	MinCount         int
	MaxCount         int
	DefaultCount     int
	// UnlockThreshold is the score that unlocks the bonus mode; 0 disables it.
	UnlockThreshold int
}

func DefaultSettings() Settings {
	return Settings{
		TimePerQuestion:  20 * time.Second,
		BaseCorrect:      100,
		SpeedMax:         50,
		SpeedCap:         5 * time.Second,
		ShuffleQuestions: true,
		ShuffleAnswers:   true,
		MinCount:         5,
		MaxCount:         50,
		DefaultCount:     12,
		UnlockThreshold:  1800,
	}
}

// ClampCount applies the default to a missing count and bounds it to [MinCount, MaxCount].
func (s Settings) ClampCount(n int) int {
	if n <= 0 {
		n = s.DefaultCount
	}
	if s.MinCount > 0 && n < s.MinCount {
		n = s.MinCount
	}
	if s.MaxCount > 0 && n > s.MaxCount {
		n = s.MaxCount
	}
	return n
}

func (s Settings) timeLimit(questionSec int) int {
	if questionSec > 0 {
		return questionSec
	}
	sec := int(s.TimePerQuestion / time.Second)
	if sec <= 0 {
		return 1
	}
	return sec
}

// SanitizeName trims the name and truncates it to 20 characters.
func SanitizeName(name string) string {
	name = strings.TrimSpace(name)
	if utf8.RuneCountInString(name) > maxNameRunes {
		name = strings.TrimSpace(string([]rune(name)[:maxNameRunes]))
	}
	if name == "" {
		return DefaultPlayerName
	}
	return name
}
