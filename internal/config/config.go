package config

import (
	"os"
	"time"

	"creed-trivia/internal/app"
	"creed-trivia/internal/domain"
	"gopkg.in/yaml.v3"
)

// Remote leaderboard backends.
const (
	RemoteNone     = "none"
	RemoteRedis    = "redis"
	RemotePostgres = "postgres"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Local struct {
		// Path is the SQLite file for device storage; empty keeps it in memory.
		Path string `yaml:"path"`
	} `yaml:"local"`
	Quiz        Quiz        `yaml:"quiz"`
	Packs       Packs       `yaml:"packs"`
	Leaderboard Leaderboard `yaml:"leaderboard"`
}

type Quiz struct {
	TimePerQuestionSec int    `yaml:"time_per_question_sec"`
	BaseCorrect        int    `yaml:"base_correct"`
	SpeedMax           int    `yaml:"speed_max"`
	SpeedCap           string `yaml:"speed_cap"`
	ShuffleQuestions   *bool  `yaml:"shuffle_questions"`
	ShuffleAnswers     *bool  `yaml:"shuffle_answers"`
	MinCount           int    `yaml:"min_count"`
	MaxCount           int    `yaml:"max_count"`
	DefaultCount       int    `yaml:"default_count"`
	UnlockThreshold    *int   `yaml:"unlock_threshold"`
}

type Packs struct {
	// Root is the directory (or base URL) relative pack paths resolve against.
	Root    string              `yaml:"root"`
	TTL     string              `yaml:"ttl"`
	Sources []domain.PackSource `yaml:"sources"`
}

type Leaderboard struct {
	Remote string `yaml:"remote"`
	Limit  int    `yaml:"limit"`
}

// Load reads YAML config from path.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Settings overlays the quiz section on the built-in defaults.
func (q Quiz) Settings() app.Settings {
	s := app.DefaultSettings()
	if q.TimePerQuestionSec > 0 {
		s.TimePerQuestion = time.Duration(q.TimePerQuestionSec) * time.Second
	}
	if q.BaseCorrect > 0 {
		s.BaseCorrect = q.BaseCorrect
	}
	if q.SpeedMax > 0 {
		s.SpeedMax = q.SpeedMax
	}
	s.SpeedCap = TTLDuration(q.SpeedCap, s.SpeedCap)
	if q.ShuffleQuestions != nil {
		s.ShuffleQuestions = *q.ShuffleQuestions
	}
	if q.ShuffleAnswers != nil {
		s.ShuffleAnswers = *q.ShuffleAnswers
	}
	if q.MinCount > 0 {
		s.MinCount = q.MinCount
	}
	if q.MaxCount > 0 {
		s.MaxCount = q.MaxCount
	}
	if q.DefaultCount > 0 {
		s.DefaultCount = q.DefaultCount
	}
	if q.UnlockThreshold != nil {
		s.UnlockThreshold = *q.UnlockThreshold
	}
	return s
}

// RemoteBackend picks the remote score store, inferring it from the
// configured connections when not set explicitly.
func (c Config) RemoteBackend() string {
	switch c.Leaderboard.Remote {
	case RemoteRedis, RemotePostgres, RemoteNone:
		return c.Leaderboard.Remote
	}
	if c.Redis.Addr != "" {
		return RemoteRedis
	}
	if c.Postgres.URL != "" {
		return RemotePostgres
	}
	return RemoteNone
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
