package normalize

import (
	"strconv"
	"strings"

	"creed-trivia/internal/domain"
)

// Recognized field names, in priority order.
var (
	promptFields = []string{"prompt", "question", "text", "q", "questionText", "question_text", "title", "body", "stem"}
	idFields     = []string{"id", "questionId", "question_id", "qid", "uuid"}
	timeFields   = []string{"timeLimitSec", "timeLimitSeconds", "time_limit", "timeLimit"}

	choiceFields     = []string{"answers", "choices", "options", "answerOptions", "answer_options", "alternatives", "responses"}
	choiceTextFields = []string{"text", "label", "value", "answer", "option", "title", "content"}
	choiceFlagFields = []string{"correct", "isCorrect", "is_correct", "right"}
	choiceIDFields   = []string{"id", "key", "letter"}
	correctIDFields  = []string{"correctId", "correct_id", "correctChoiceId", "correct_choice_id", "correctOptionId", "answerId"}
)

// discreteGroups are scanned in order; the first group yielding a choice wins.
var discreteGroups = [][]string{
	{"A", "B", "C", "D", "E", "F", "G"},
	numbered("choice"),
	numbered("option"),
	numbered("answer"),
}

func numbered(prefix string) []string {
	out := make([]string, 0, maxLetters)
	for i := 1; i <= maxLetters; i++ {
		out = append(out, prefix+strconv.Itoa(i))
	}
	return out
}

// choiceSet is the trimmed, non-empty choice list a candidate produced.
type choiceSet struct {
	texts   []string
	flagged int
}

// candidate is one (field, extractor) pair of the choice search.
type candidate struct {
	field   string
	extract func(raw domain.RawQuestion, field string) (choiceSet, bool)
}

var choiceCandidates = buildChoiceCandidates()

func buildChoiceCandidates() []candidate {
	out := make([]candidate, 0, 2*len(choiceFields)+1)
	for _, f := range choiceFields {
		out = append(out, candidate{field: f, extract: stringChoices})
	}
	for _, f := range choiceFields {
		out = append(out, candidate{field: f, extract: objectChoices})
	}
	out = append(out, candidate{field: "discrete", extract: discreteChoices})
	return out
}

func extractChoices(raw domain.RawQuestion) choiceSet {
	for _, c := range choiceCandidates {
		if set, ok := c.extract(raw, c.field); ok {
			return set
		}
	}
	return choiceSet{flagged: -1}
}

func stringChoices(raw domain.RawQuestion, field string) (choiceSet, bool) {
	items, ok := raw[field].([]any)
	if !ok {
		return choiceSet{}, false
	}
	set := choiceSet{flagged: -1}
	for _, item := range items {
		if _, isObj := item.(map[string]any); isObj {
			continue
		}
		if text, ok := asText(item); ok && text != "" {
			set.texts = append(set.texts, text)
		}
	}
	return set, len(set.texts) > 0
}

func objectChoices(raw domain.RawQuestion, field string) (choiceSet, bool) {
	items, ok := raw[field].([]any)
	if !ok {
		return choiceSet{}, false
	}
	correctID := firstText(raw, correctIDFields)

	set := choiceSet{flagged: -1}
	idMatch := -1
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		text := firstText(obj, choiceTextFields)
		if text == "" {
			continue
		}
		idx := len(set.texts)
		set.texts = append(set.texts, text)
		if set.flagged < 0 && isFlagged(obj) {
			set.flagged = idx
		}
		if idMatch < 0 && correctID != "" {
			if id := firstText(obj, choiceIDFields); id != "" && strings.EqualFold(id, correctID) {
				idMatch = idx
			}
		}
	}
	if set.flagged < 0 {
		set.flagged = idMatch
	}
	return set, len(set.texts) > 0
}

func discreteChoices(raw domain.RawQuestion, _ string) (choiceSet, bool) {
	for _, group := range discreteGroups {
		set := choiceSet{flagged: -1}
		for _, field := range group {
			if s, ok := raw[field].(string); ok {
				if s = strings.TrimSpace(s); s != "" {
					set.texts = append(set.texts, s)
				}
			}
		}
		if len(set.texts) > 0 {
			return set, true
		}
	}
	return choiceSet{}, false
}

func isFlagged(obj map[string]any) bool {
	for _, f := range choiceFlagFields {
		if b, ok := asBool(obj[f]); ok && b {
			return true
		}
		if n, ok := asNumber(obj[f], false); ok && n == 1 {
			return true
		}
	}
	return false
}

// firstText returns the first non-empty string or number among fields.
func firstText(m map[string]any, fields []string) string {
	for _, f := range fields {
		if s, ok := asText(m[f]); ok && s != "" {
			return s
		}
	}
	return ""
}
