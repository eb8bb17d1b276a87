package generating

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/rcdrill/internal/history"
	"github.com/abhisek/rcdrill/internal/i18n"
	"github.com/abhisek/rcdrill/internal/intake"
	"github.com/abhisek/rcdrill/internal/llm"
	"github.com/abhisek/rcdrill/internal/practice"
	"github.com/abhisek/rcdrill/internal/questiongen"
	"github.com/abhisek/rcdrill/internal/router"
	"github.com/abhisek/rcdrill/internal/screens/env"
	"github.com/abhisek/rcdrill/internal/screens/modechoice"
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

func testScreen(t *testing.T) (*GeneratingScreen, *practice.Flow) {
	t.Helper()
	flow := practice.NewFlow(nil, history.Open(context.Background(), memKV{}))
	if err := flow.Configure(1); err != nil {
		t.Fatal(err)
	}
	if _, err := flow.Submit([]string{"a passage"}); err != nil {
		t.Fatal(err)
	}
	return New(&env.Env{Flow: flow, Tr: i18n.New("en")}, []string{"a passage"}), flow
}

func testContent() session.Content {
	qs := make([]session.Question, 5)
	for i := range qs {
		qs[i] = session.Question{
			ID:                "q",
			QuestionText:      "Q?",
			Options:           []string{"a", "b", "c", "d"},
			CorrectAnswerText: "a",
		}
	}
	return session.Content{PassageText: "text", RawPassages: []string{"a passage"}, Questions: qs, NumPassages: 1}
}

func TestGeneratingScreen_SuccessMovesToModeChoice(t *testing.T) {
	s, flow := testScreen(t)

	_, cmd := s.Update(generatedMsg{Content: testContent()})
	if cmd == nil {
		t.Fatal("expected navigation")
	}
	rep, ok := cmd().(router.ReplaceScreenMsg)
	if !ok {
		t.Fatal("expected ReplaceScreenMsg")
	}
	if _, ok := rep.Screen.(*modechoice.ModeChoiceScreen); !ok {
		t.Errorf("replaced with %T", rep.Screen)
	}
	if flow.Phase() != session.PhaseReady {
		t.Errorf("phase = %v, want ready", flow.Phase())
	}
}

func TestGeneratingScreen_ContractFailureResets(t *testing.T) {
	s, flow := testScreen(t)

	s.Update(generatedMsg{Err: &questiongen.ContractError{Stage: questiongen.StageJSON, Index: -1, Message: "bad"}})
	if s.recovery != practice.RecoverReset {
		t.Fatalf("recovery = %v, want reset", s.recovery)
	}
	if !strings.Contains(s.View(100, 20), "Could not prepare your test") {
		t.Error("expected failure message in view")
	}

	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if _, ok := cmd().(router.PopToRootMsg); !ok {
		t.Error("expected PopToRootMsg")
	}
	if flow.Phase() != session.PhaseConfiguring {
		t.Errorf("phase = %v, want configuring", flow.Phase())
	}
}

func TestGeneratingScreen_InputFailureReturnsToEditor(t *testing.T) {
	s, flow := testScreen(t)

	s.Update(generatedMsg{Err: &intake.IncompleteError{PassageIndex: 0, Count: 1}})
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Error("expected PopScreenMsg")
	}
	if flow.Phase() != session.PhaseAwaitingContent {
		t.Errorf("phase = %v, want awaiting-content", flow.Phase())
	}
}

func TestGeneratingScreen_NotConfigured(t *testing.T) {
	s, _ := testScreen(t)
	s.Init()

	msg := s.generate(context.Background())()
	gm, ok := msg.(generatedMsg)
	if !ok {
		t.Fatalf("got %T", msg)
	}
	if !errors.Is(gm.Err, llm.ErrNotConfigured) {
		t.Fatalf("err = %v", gm.Err)
	}

	s.Update(gm)
	if !strings.Contains(s.View(120, 20), "No text-generation API key") {
		t.Error("expected configuration hint")
	}
}

func TestGeneratingScreen_Progress(t *testing.T) {
	s, _ := testScreen(t)
	s.Init()

	_, cmd := s.Update(progressMsg{Step: questiongen.StepReformat, Done: 1, Total: 1})
	if cmd == nil {
		t.Error("expected to keep listening for progress")
	}
	if s.reformatted != 1 {
		t.Errorf("reformatted = %d", s.reformatted)
	}
	if !strings.Contains(s.View(100, 20), "Writing 5 questions") {
		t.Error("expected question step in view")
	}
}

func TestGeneratingScreen_EscCancels(t *testing.T) {
	s, _ := testScreen(t)
	s.Init()

	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Error("expected PopScreenMsg")
	}
	_, cmd = s.Update(generatedMsg{Err: context.Canceled})
	if cmd != nil || s.err != nil {
		t.Error("cancellation should be silent")
	}
}
