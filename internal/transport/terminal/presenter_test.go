package terminal

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"creed-trivia/internal/app"
	"creed-trivia/internal/domain"
)

func TestParseSelection(t *testing.T) {
	cases := map[string]int{
		"A":   0,
		"b":   1,
		" C ": 2,
		"1":   0,
		"4":   3,
		"0":   -1,
		"":    -1,
		"AB":  -1,
		"?":   -1,
	}
	for in, want := range cases {
		if got := ParseSelection(in); got != want {
			t.Fatalf("ParseSelection(%q): expected %d, got %d", in, want, got)
		}
	}
}

func TestReadSelectionsClosesAtEOF(t *testing.T) {
	p := NewPresenter(io.Discard)
	p.Question(domain.PresentedQuestion{Index: 1, Total: 3, Choices: []string{"x", "y", "z"}})

	var got []app.Selection
	for sel := range p.ReadSelections(context.Background(), strings.NewReader("a\n3\n")) {
		got = append(got, sel)
	}
	want := []app.Selection{{Question: 1, Index: 0}, {Question: 1, Index: 2}}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestReadSelectionsBeforeFirstQuestion(t *testing.T) {
	p := NewPresenter(io.Discard)
	for sel := range p.ReadSelections(context.Background(), strings.NewReader("b\n")) {
		if sel.Question != -1 {
			t.Fatalf("input before any question must not target one, got %+v", sel)
		}
	}
}

func TestPresenterOutput(t *testing.T) {
	var buf bytes.Buffer
	p := NewPresenter(&buf)

	p.Question(domain.PresentedQuestion{Index: 0, Total: 2, Text: "Who is the assistant to the regional manager?", Choices: []string{"Jim", "Dwight"}, TimeLimitSec: 20})
	p.Tick(12)
	p.Tick(3)
	p.Locked(domain.Outcome{Selected: 0, CorrectIndex: 1, Score: 0})
	p.Finished(domain.SessionResult{Name: "Michael", Score: 0, DurationMs: 4200, Unlocked: true}, []domain.Outcome{{}, {Correct: true}})

	out := buf.String()
	for _, want := range []string{
		"Q1/2: Who is the assistant to the regional manager?",
		"B. Dwight",
		"3s left",
		"Wrong. Correct answer was Dwight",
		"Michael, final score: 0 (1/2 correct in 4.2s)",
		"Bonus mode unlocked!",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected output to contain %q, got:\n%s", want, out)
		}
	}
	if strings.Contains(out, "12s left") {
		t.Fatalf("early ticks should be quiet:\n%s", out)
	}
}
