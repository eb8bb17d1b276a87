package history

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	hist "github.com/abhisek/rcdrill/internal/history"
	"github.com/abhisek/rcdrill/internal/i18n"
	"github.com/abhisek/rcdrill/internal/practice"
	"github.com/abhisek/rcdrill/internal/router"
	"github.com/abhisek/rcdrill/internal/screens/env"
	"github.com/abhisek/rcdrill/internal/screens/modechoice"
	"github.com/abhisek/rcdrill/internal/screens/results"
	"github.com/abhisek/rcdrill/internal/session"
)

type memKV map[string][]byte

func (m memKV) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := m[key]
	return v, ok, nil
}
func (m memKV) Put(_ context.Context, key string, value []byte) error {
	m[key] = value
	return nil
}
func (m memKV) Delete(_ context.Context, key string) error {
	delete(m, key)
	return nil
}

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

var today = time.Date(2026, 4, 9, 12, 0, 0, 0, time.UTC)

func storedResult(id string, at time.Time) session.StoredResult {
	qs := make([]session.Question, 5)
	for i := range qs {
		qs[i] = session.Question{
			ID:                "q",
			QuestionText:      "Q?",
			Options:           []string{"a", "b", "c", "d"},
			CorrectAnswerText: "a",
		}
	}
	return session.BuildResult(session.ResultInput{
		ID:          id,
		Date:        at,
		Questions:   qs,
		States:      session.FreshStates(qs),
		TimeBudget:  600,
		TimeLeft:    300,
		PassageText: "[START OF PASSAGE 1]\nA passage about rivers.\n[END OF PASSAGE 1]",
		RawPassages: []string{"A passage about rivers."},
		NumPassages: 1,
	})
}

func testScreen(t *testing.T) (*HistoryScreen, *practice.Flow) {
	t.Helper()
	store := hist.Open(context.Background(), memKV{})
	ctx := context.Background()
	for _, r := range []session.StoredResult{
		storedResult("r1", today.Add(-2*time.Hour)),
		storedResult("r2", today.AddDate(0, 0, -3)),
	} {
		if err := store.Append(ctx, r); err != nil {
			t.Fatal(err)
		}
	}
	flow := practice.NewFlow(nil, store)
	e := &env.Env{
		Flow:      flow,
		Tr:        i18n.New("en"),
		Location:  time.UTC,
		ExportDir: t.TempDir(),
		Engine:    []byte("\x00asm"),
		WasmExec:  []byte("globalThis.Go = class {};"),
		Now:       func() time.Time { return today },
	}
	return New(e), flow
}

func TestHistoryScreen_StartsOnToday(t *testing.T) {
	s, _ := testScreen(t)
	if s.Day() != "2026-04-09" {
		t.Errorf("Day = %q", s.Day())
	}
	view := s.View(120, 30)
	if !strings.Contains(view, "April 2026") {
		t.Error("expected month title")
	}
}

func TestHistoryScreen_NavigateDaysAndMonths(t *testing.T) {
	s, _ := testScreen(t)
	s.Update(tea.KeyPressMsg{Code: tea.KeyLeft})
	s.Update(tea.KeyPressMsg{Code: tea.KeyLeft})
	s.Update(tea.KeyPressMsg{Code: tea.KeyLeft})
	if s.Day() != "2026-04-06" {
		t.Errorf("Day = %q, want 2026-04-06", s.Day())
	}
	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	if s.Day() != "2026-04-13" {
		t.Errorf("Day = %q, want 2026-04-13", s.Day())
	}
	s.Update(keyPress('['))
	if s.Day() != "2026-03-01" {
		t.Errorf("Day = %q, want 2026-03-01", s.Day())
	}
	s.Update(keyPress(']'))
	if s.Day() != "2026-04-01" {
		t.Errorf("Day = %q, want 2026-04-01", s.Day())
	}
}

func TestHistoryScreen_EmptyDayStaysInMonth(t *testing.T) {
	s, _ := testScreen(t)
	s.Update(tea.KeyPressMsg{Code: tea.KeyRight})
	s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if s.dayMode {
		t.Error("day without attempts should not open")
	}
}

func TestHistoryScreen_OpenDayAndReview(t *testing.T) {
	s, _ := testScreen(t)
	s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if !s.dayMode || !s.CapturesEscape() {
		t.Fatal("expected day mode capturing Esc")
	}

	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	push, ok := cmd().(router.PushScreenMsg)
	if !ok {
		t.Fatal("expected PushScreenMsg")
	}
	if _, ok := push.Screen.(*results.ResultsScreen); !ok {
		t.Errorf("pushed %T", push.Screen)
	}

	s.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	if s.dayMode {
		t.Error("Esc should close the day")
	}
}

func TestHistoryScreen_Reattempt(t *testing.T) {
	s, flow := testScreen(t)
	s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})

	_, cmd := s.Update(keyPress('r'))
	push, ok := cmd().(router.PushScreenMsg)
	if !ok {
		t.Fatal("expected PushScreenMsg")
	}
	if _, ok := push.Screen.(*modechoice.ModeChoiceScreen); !ok {
		t.Errorf("pushed %T", push.Screen)
	}
	if flow.Phase() != session.PhaseReady {
		t.Errorf("phase = %v, want ready", flow.Phase())
	}
	if got := flow.Session().TimeBudget(); got != session.BudgetFor(1) {
		t.Errorf("budget = %d", got)
	}
}

func TestHistoryScreen_Export(t *testing.T) {
	s, _ := testScreen(t)
	s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	s.Update(keyPress('e'))
	if !strings.HasPrefix(s.message, "Saved ") {
		t.Errorf("message = %q, err = %q", s.message, s.errMsg)
	}
}
