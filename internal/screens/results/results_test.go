package results

import (
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/rcdrill/internal/analytics"
	"github.com/abhisek/rcdrill/internal/i18n"
	"github.com/abhisek/rcdrill/internal/router"
	"github.com/abhisek/rcdrill/internal/screens/env"
	"github.com/abhisek/rcdrill/internal/session"
)

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func testResult() session.StoredResult {
	qs := make([]session.Question, 5)
	states := make([]session.QuestionState, 5)
	for i := range qs {
		qs[i] = session.Question{
			ID:                   "q",
			QuestionText:         "Which is right?",
			Options:              []string{"w", "x", "y", "z"},
			CorrectAnswerText:    "x",
			Explanation:          "x follows from the second paragraph",
			DifficultyAssessment: "CAT-Moderate",
			CommonPitfalls:       "choosing w",
		}
	}
	states[0].SelectedOption = "x"
	states[1].SelectedOption = "w"
	return session.BuildResult(session.ResultInput{
		ID:          "r1",
		Date:        time.Date(2026, 4, 9, 18, 30, 0, 0, time.UTC),
		Questions:   qs,
		States:      states,
		TimeBudget:  600,
		TimeLeft:    120,
		PassageText: "passage",
		RawPassages: []string{"passage"},
		NumPassages: 1,
	})
}

func testEnv(t *testing.T) *env.Env {
	return &env.Env{
		Tr:        i18n.New("en"),
		Category:  analytics.General,
		Location:  time.UTC,
		ExportDir: t.TempDir(),
		Engine:    []byte("\x00asm"),
		WasmExec:  []byte("globalThis.Go = class {};"),
	}
}

func TestResultsScreen_Summary(t *testing.T) {
	s := New(testEnv(t), testResult(), Finished(true, errors.New("disk full")))
	view := s.View(120, 60)

	for _, want := range []string{
		"Score 2 / 15",
		"Time is up",
		"could not be saved: disk full",
		"08:00",
		"Review 1 of 5",
		"CAT-Moderate",
	} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
	if !s.comparison.Available {
		t.Error("expected an available comparison")
	}
}

func TestResultsScreen_ReviewNavigation(t *testing.T) {
	s := New(testEnv(t), testResult())
	s.Update(keyPress('n'))
	s.Update(keyPress('n'))
	if s.Review() != 2 {
		t.Errorf("review = %d, want 2", s.Review())
	}
	s.Update(keyPress('p'))
	if s.Review() != 1 {
		t.Errorf("review = %d, want 1", s.Review())
	}
	for i := 0; i < 10; i++ {
		s.Update(keyPress('n'))
	}
	if s.Review() != 4 {
		t.Errorf("review = %d, want 4 (clamped)", s.Review())
	}
}

func TestResultsScreen_EscTargets(t *testing.T) {
	s := New(testEnv(t), testResult())
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	if _, ok := cmd().(router.PopToRootMsg); !ok {
		t.Error("after a test Esc should go home")
	}

	s = New(testEnv(t), testResult(), FromHistory())
	_, cmd = s.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Error("from history Esc should pop")
	}
}

func TestResultsScreen_Export(t *testing.T) {
	s := New(testEnv(t), testResult())
	s.Update(keyPress('e'))
	if s.Exported() == "" {
		t.Fatalf("export failed: %s", s.errMsg)
	}
	data, err := os.ReadFile(s.Exported())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "rcdrill-bundle") {
		t.Error("exported page has no data island")
	}
}
