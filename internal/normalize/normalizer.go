package normalize

import (
	"strconv"
	"strings"

	"creed-trivia/internal/domain"
)

// Report summarizes a NormalizeList run.
type Report struct {
	Raw        int `json:"raw"`
	Normalized int `json:"normalized"`
	Rejected   int `json:"rejected"`
	// Defaulted counts questions whose correct answer could not be resolved
	// and fell back to the first choice.
	Defaulted int `json:"defaulted"`
	// Usable counts normalized questions with at least two choices.
	Usable int `json:"usable"`
}

// Add merges another report into r.
func (r *Report) Add(o Report) {
	r.Raw += o.Raw
	r.Normalized += o.Normalized
	r.Rejected += o.Rejected
	r.Defaulted += o.Defaulted
	r.Usable += o.Usable
}

// NormalizeOne converts a raw record into a canonical question. The second
// return value is false when the record has no prompt or no choices.
func NormalizeOne(raw domain.RawQuestion, index int) (domain.Question, bool) {
	q, _, ok := normalizeOne(raw, index)
	return q, ok
}

// NormalizeList normalizes every record in order, silently dropping rejects.
func NormalizeList(raws []domain.RawQuestion) ([]domain.Question, Report) {
	var b Batch
	b.Add(raws)
	return b.Questions, b.Report
}

// Batch normalizes several raw lists as if they were one, so positional IDs
// stay unique across packs.
type Batch struct {
	Questions []domain.Question
	Report    Report
	next      int
}

// Add normalizes raws and returns the report for this call alone.
func (b *Batch) Add(raws []domain.RawQuestion) Report {
	report := Report{Raw: len(raws)}
	for _, raw := range raws {
		q, defaulted, ok := normalizeOne(raw, b.next)
		b.next++
		if !ok {
			report.Rejected++
			continue
		}
		report.Normalized++
		if defaulted {
			report.Defaulted++
		}
		if len(q.Choices) >= 2 {
			report.Usable++
		}
		b.Questions = append(b.Questions, q)
	}
	b.Report.Add(report)
	return report
}

func normalizeOne(raw domain.RawQuestion, index int) (domain.Question, bool, bool) {
	if raw == nil {
		return domain.Question{}, false, false
	}
	text := prompt(raw)
	if text == "" {
		return domain.Question{}, false, false
	}

	set := extractChoices(raw)
	res := Resolve(set.texts, Hints{Raw: raw, Flagged: set.flagged})
	if len(res.Choices) == 0 {
		return domain.Question{}, false, false
	}

	defaulted := false
	correct := res.Index
	if !res.OK || correct < 0 || correct >= len(res.Choices) {
		// Unresolved answers default to the first choice instead of dropping
		// an otherwise playable question.
		correct = 0
		defaulted = true
	}

	q := domain.Question{
		ID:           questionID(raw, index),
		Text:         text,
		Choices:      res.Choices,
		CorrectIndex: correct,
		TimeLimitSec: timeLimit(raw),
		Image:        firstString(raw, []string{"image", "img"}),
		Audio:        firstString(raw, []string{"audio"}),
	}
	return q, defaulted, true
}

func prompt(raw domain.RawQuestion) string {
	return firstString(raw, promptFields)
}

func firstString(raw domain.RawQuestion, fields []string) string {
	for _, f := range fields {
		if s, ok := raw[f].(string); ok {
			if s = strings.TrimSpace(s); s != "" {
				return s
			}
		}
	}
	return ""
}

func questionID(raw domain.RawQuestion, index int) string {
	if id := firstText(raw, idFields); id != "" {
		return id
	}
	return "norm-" + strconv.Itoa(index)
}

func timeLimit(raw domain.RawQuestion) int {
	for _, f := range timeFields {
		if n, ok := asNumber(raw[f], true); ok && n > 0 {
			return int(n)
		}
	}
	return 0
}
