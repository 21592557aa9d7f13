package app

import (
	"math"
	"time"
)

// Points returns the award for a locked question. Wrong and timed-out
// answers earn nothing; correct ones earn the base plus a speed bonus that
// shrinks linearly to zero at the cap.
func (s Settings) Points(correct bool, elapsed time.Duration) int {
	if !correct {
		return 0
	}
	return s.BaseCorrect + s.speedBonus(elapsed)
}

func (s Settings) speedBonus(elapsed time.Duration) int {
	if s.SpeedCap <= 0 || s.SpeedMax <= 0 {
		return 0
	}
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed > s.SpeedCap {
		elapsed = s.SpeedCap
	}
	ratio := float64(s.SpeedCap-elapsed) / float64(s.SpeedCap)
	ratio = math.Max(0, math.Min(1, ratio))
	return int(math.Round(float64(s.SpeedMax) * ratio))
}
