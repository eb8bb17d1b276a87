package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/abhisek/rcdrill/internal/session"
	"github.com/abhisek/rcdrill/internal/ui/layout"
)

const plainHelp = `Commands:
  a-d or 1-4  select an option      x  clear answer     m  mark for review
  n or enter  next question         p  previous         g N  go to question N
  s           submit                q  quit without submitting
  ?           this help`

// runPlain drives s from line-oriented input. End of input submits.
func runPlain(ctx context.Context, s *session.Session, in io.Reader, out io.Writer, interval time.Duration) error {
	id, err := s.Start()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	expired := make(chan struct{})
	go session.RunCountdown(ctx, s, id, interval, func(done bool, _ error) {
		if done {
			close(expired)
		}
	})

	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	fmt.Fprintf(out, "%d questions, %s on the clock. Type ? for help.\n", len(s.Questions()), layout.FormatClock(s.TimeBudget()))
	if p := s.PassageText(); p != "" {
		fmt.Fprintln(out)
		fmt.Fprintln(out, p)
	}
	printQuestion(out, s)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-expired:
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Time is up. Your test was submitted automatically.")
			return printOutcome(out, s)

		case line, ok := <-lines:
			if !ok {
				return submitPlain(ctx, out, s)
			}
			quit, submit, err := plainCommand(s, strings.TrimSpace(line), out)
			switch {
			case errors.Is(err, session.ErrNotTakingTest):
				// The countdown won the race.
				return printOutcome(out, s)
			case err != nil:
				fmt.Fprintln(out, "!", err)
			case quit:
				fmt.Fprintln(out, "Abandoned; nothing was submitted.")
				return nil
			case submit:
				return submitPlain(ctx, out, s)
			}
			printQuestion(out, s)
		}
	}
}

// plainCommand applies one input line.
func plainCommand(s *session.Session, line string, out io.Writer) (quit, submit bool, err error) {
	cmd, arg, _ := strings.Cut(strings.ToLower(line), " ")
	switch cmd {
	case "a", "b", "c", "d":
		return false, false, s.SelectIndex(int(cmd[0] - 'a'))
	case "1", "2", "3", "4":
		return false, false, s.SelectIndex(int(cmd[0] - '1'))
	case "x":
		return false, false, s.ClearAnswer()
	case "m":
		return false, false, s.ToggleReview()
	case "", "n":
		return false, false, s.Next()
	case "p":
		return false, false, s.Prev()
	case "g":
		n, convErr := strconv.Atoi(strings.TrimSpace(arg))
		if convErr != nil || n < 1 || n > len(s.Questions()) {
			return false, false, fmt.Errorf("g needs a question number between 1 and %d", len(s.Questions()))
		}
		return false, false, s.Jump(n - 1)
	case "s":
		return false, true, nil
	case "q":
		return true, false, nil
	case "?", "h", "help":
		fmt.Fprintln(out, plainHelp)
		return false, false, nil
	}
	return false, false, fmt.Errorf("unknown command %q (? for help)", line)
}

func submitPlain(ctx context.Context, out io.Writer, s *session.Session) error {
	if _, err := s.Submit(ctx); err != nil && !errors.Is(err, session.ErrNotTakingTest) {
		return err
	}
	return printOutcome(out, s)
}

func printOutcome(out io.Writer, s *session.Session) error {
	r, ok := s.Result()
	if !ok {
		return errors.New("session ended without a result")
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Score %d / %d   correct %d   incorrect %d   unattempted %d   time %s\n",
		r.Score, r.TotalPossibleScore, r.CorrectCount, r.IncorrectCount, r.UnattemptedCount,
		layout.FormatClock(r.TimeTakenSec))
	return nil
}

func printQuestion(out io.Writer, s *session.Session) {
	snap := s.Snapshot()
	if snap.Phase != session.PhaseTakingTest {
		return
	}
	fmt.Fprintln(out)
	mark := ""
	if snap.State.IsMarkedForReview {
		mark = "  [marked]"
	}
	fmt.Fprintf(out, "Question %d of %d   %s left   %d answered%s\n",
		snap.Index+1, snap.Total, layout.FormatClock(snap.TimeLeft), snap.Answered, mark)
	fmt.Fprintln(out, snap.Question.QuestionText)
	for i, opt := range snap.Question.Options {
		sel := " "
		if opt == snap.State.SelectedOption {
			sel = "*"
		}
		fmt.Fprintf(out, " %s %s) %s\n", sel, optionLabel(i), opt)
	}
	fmt.Fprint(out, "> ")
}
