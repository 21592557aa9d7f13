package normalize

import (
	"math"
	"strings"

	"creed-trivia/internal/domain"
)

// maxLetters bounds single-letter hints to A..G.
const maxLetters = 7

// Hints carries every correctness signal available for a raw question.
type Hints struct {
	Raw domain.RawQuestion
	// Flagged is the choice index marked correct while reading object-shaped
	// choices, or -1 when none was.
	Flagged int
}

// Resolution is the outcome of Resolve. Choices differs from the input only
// when a boolean hint synthesized a True/False list.
type Resolution struct {
	Choices []string
	Index   int
	OK      bool
}

// indexFields only ever hold a position, so numeric strings count as numbers.
var indexFields = []string{
	"correctIndex",
	"answerIndex",
	"correct_index",
	"answer_index",
	"correctAnswerIndex",
	"correctOptionIndex",
}

// hintFields may hold a position, a letter, the answer text or a boolean.
var hintFields = []string{
	"correct",
	"answer",
	"correctAnswer",
	"correct_answer",
	"correctOption",
	"correct_option",
	"solution",
	"key",
}

// Resolve picks the zero-based correct choice. Steps run in a fixed order and
// the first success wins: numeric, single letter, exact text, boolean.
func Resolve(choices []string, h Hints) Resolution {
	steps := []func([]string, Hints) (Resolution, bool){
		resolveNumeric,
		resolveLetter,
		resolveText,
		resolveBoolean,
	}
	for _, step := range steps {
		if r, ok := step(choices, h); ok {
			return r
		}
	}
	return Resolution{Choices: choices, Index: -1}
}

func resolveNumeric(choices []string, h Hints) (Resolution, bool) {
	n := len(choices)
	for _, field := range indexFields {
		v, ok := h.Raw[field]
		if !ok {
			continue
		}
		f, ok := asNumber(v, true)
		if !ok {
			continue
		}
		if idx, ok := numericIndex(f, n); ok {
			return Resolution{Choices: choices, Index: idx, OK: true}, true
		}
	}
	for _, field := range hintFields {
		v, ok := h.Raw[field]
		if !ok {
			continue
		}
		f, ok := asNumber(v, false)
		if !ok {
			continue
		}
		if idx, ok := numericIndex(f, n); ok {
			return Resolution{Choices: choices, Index: idx, OK: true}, true
		}
	}
	if h.Flagged >= 0 && h.Flagged < n {
		return Resolution{Choices: choices, Index: h.Flagged, OK: true}, true
	}
	return Resolution{}, false
}

// numericIndex prefers the 0-based reading and only falls back to 1-based when
// the 0-based one is out of range.
func numericIndex(f float64, n int) (int, bool) {
	if f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, false
	}
	i := int(f)
	if i >= 0 && i < n {
		return i, true
	}
	if i >= 1 && i <= n {
		return i - 1, true
	}
	return 0, false
}

func resolveLetter(choices []string, h Hints) (Resolution, bool) {
	for _, s := range stringHints(h.Raw) {
		if idx, ok := letterIndex(s, len(choices)); ok {
			return Resolution{Choices: choices, Index: idx, OK: true}, true
		}
	}
	return Resolution{}, false
}

func letterIndex(s string, n int) (int, bool) {
	s = strings.TrimSpace(s)
	if len(s) != 1 {
		return 0, false
	}
	c := s[0]
	if c >= 'a' && c <= 'z' {
		c -= 'a' - 'A'
	}
	if c < 'A' || c >= 'A'+maxLetters {
		return 0, false
	}
	idx := int(c - 'A')
	if idx >= n {
		return 0, false
	}
	return idx, true
}

func resolveText(choices []string, h Hints) (Resolution, bool) {
	for _, s := range stringHints(h.Raw) {
		want := strings.ToLower(strings.TrimSpace(s))
		if want == "" {
			continue
		}
		for i, c := range choices {
			if strings.ToLower(strings.TrimSpace(c)) == want {
				return Resolution{Choices: choices, Index: i, OK: true}, true
			}
		}
	}
	return Resolution{}, false
}

func resolveBoolean(choices []string, h Hints) (Resolution, bool) {
	for _, field := range hintFields {
		b, ok := asBool(h.Raw[field])
		if !ok {
			continue
		}
		if len(choices) < 2 {
			idx := 1
			if b {
				idx = 0
			}
			return Resolution{Choices: []string{"True", "False"}, Index: idx, OK: true}, true
		}
		want := "false"
		if b {
			want = "true"
		}
		for i, c := range choices {
			if strings.EqualFold(strings.TrimSpace(c), want) {
				return Resolution{Choices: choices, Index: i, OK: true}, true
			}
		}
	}
	return Resolution{}, false
}

// stringHints lists string-valued hints in field priority order.
func stringHints(raw domain.RawQuestion) []string {
	var out []string
	for _, fields := range [][]string{indexFields, hintFields} {
		for _, field := range fields {
			if s, ok := raw[field].(string); ok {
				out = append(out, s)
			}
		}
	}
	return out
}
