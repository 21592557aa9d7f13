package terminal

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync/atomic"

	"creed-trivia/internal/app"
	"creed-trivia/internal/domain"
)

// warnBelow is the countdown value from which ticks are printed.
const warnBelow = 5

// Presenter prints a session to a terminal.
type Presenter struct {
	out     io.Writer
	current domain.PresentedQuestion
	// shown is the position of the question on screen, -1 before the first.
	shown atomic.Int32
}

func NewPresenter(out io.Writer) *Presenter {
	p := &Presenter{out: out}
	p.shown.Store(-1)
	return p
}

func (p *Presenter) Question(q domain.PresentedQuestion) {
	p.current = q
	p.shown.Store(int32(q.Index))
	fmt.Fprintln(p.out)
	fmt.Fprintf(p.out, "Q%d/%d: %s  (%ds)\n\n", q.Index+1, q.Total, q.Text, q.TimeLimitSec)
	for i, choice := range q.Choices {
		fmt.Fprintf(p.out, "%c. %s\n", 'A'+i, choice)
	}
	fmt.Fprintln(p.out)
}

func (p *Presenter) Tick(remaining int) {
	if remaining <= warnBelow {
		fmt.Fprintf(p.out, "  %ds left\n", remaining)
	}
}

func (p *Presenter) Locked(o domain.Outcome) {
	correctText := choiceText(p.current.Choices, o.CorrectIndex)
	switch {
	case o.TimedOut:
		fmt.Fprintf(p.out, "Time's up. Correct answer was %s\n", correctText)
	case o.Correct:
		fmt.Fprintf(p.out, "Correct! +%d (%.1fs)\n", o.Points, float64(o.ElapsedMs)/1000)
	default:
		fmt.Fprintf(p.out, "Wrong. Correct answer was %s\n", correctText)
	}
	fmt.Fprintf(p.out, "Score: %d\n", o.Score)
}

func (p *Presenter) Finished(result domain.SessionResult, outcomes []domain.Outcome) {
	correct := 0
	for _, o := range outcomes {
		if o.Correct {
			correct++
		}
	}
	fmt.Fprintf(p.out, "\n%s, final score: %d (%d/%d correct in %.1fs)\n",
		result.Name, result.Score, correct, len(outcomes), float64(result.DurationMs)/1000)
	if result.Unlocked {
		fmt.Fprintln(p.out, "Bonus mode unlocked!")
	}
}

// ReadSelections turns input lines into selections for the question on
// screen when the line was read. A letter (A, b, ...) or a 1-based number
// selects a choice; anything else becomes -1 and is ignored by the session.
// The channel closes at end of input or when ctx is done.
func (p *Presenter) ReadSelections(ctx context.Context, in io.Reader) <-chan app.Selection {
	out := make(chan app.Selection)
	go func() {
		defer close(out)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			sel := app.Selection{Question: int(p.shown.Load()), Index: ParseSelection(scanner.Text())}
			select {
			case out <- sel:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// ParseSelection maps "B", "b" or "2" to index 1.
func ParseSelection(line string) int {
	line = strings.TrimSpace(line)
	if n, err := strconv.Atoi(line); err == nil {
		return n - 1
	}
	if len(line) == 1 {
		letter := strings.ToUpper(line)[0]
		if letter >= 'A' && letter <= 'Z' {
			return int(letter - 'A')
		}
	}
	return -1
}

func choiceText(choices []string, index int) string {
	if index < 0 || index >= len(choices) {
		return ""
	}
	return choices[index]
}
