package leaderboard

import (
	"sort"

	"creed-trivia/internal/domain"
)

// Rank orders results best first: higher score, then shorter duration,
// then the earlier finisher.
func Rank(results []domain.SessionResult) []domain.SessionResult {
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.DurationMs != b.DurationMs {
			return a.DurationMs < b.DurationMs
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
	return results
}

func limit(results []domain.SessionResult, n int) []domain.SessionResult {
	if n >= 0 && len(results) > n {
		return results[:n]
	}
	return results
}
