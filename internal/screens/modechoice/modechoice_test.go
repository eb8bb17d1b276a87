package modechoice

import (
	"context"
	"os"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/rcdrill/internal/history"
	"github.com/abhisek/rcdrill/internal/i18n"
	"github.com/abhisek/rcdrill/internal/offline"
	"github.com/abhisek/rcdrill/internal/practice"
	"github.com/abhisek/rcdrill/internal/router"
	"github.com/abhisek/rcdrill/internal/screens/env"
	sessionscreen "github.com/abhisek/rcdrill/internal/screens/session"
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

func readyFlow(t *testing.T) *practice.Flow {
	t.Helper()
	flow := practice.NewFlow(nil, history.Open(context.Background(), memKV{}))
	if err := flow.Configure(1); err != nil {
		t.Fatal(err)
	}
	if _, err := flow.Submit([]string{"passage"}); err != nil {
		t.Fatal(err)
	}
	qs := make([]session.Question, 5)
	for i := range qs {
		qs[i] = session.Question{ID: "q", QuestionText: "Q?", Options: []string{"a", "b", "c", "d"}, CorrectAnswerText: "c"}
	}
	if _, err := flow.Accept(session.Content{PassageText: "text", RawPassages: []string{"passage"}, Questions: qs, NumPassages: 1}); err != nil {
		t.Fatal(err)
	}
	return flow
}

func TestModeChoice_Start(t *testing.T) {
	s := New(&env.Env{Flow: readyFlow(t), Tr: i18n.New("en")})
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	rep, ok := cmd().(router.ReplaceScreenMsg)
	if !ok {
		t.Fatal("expected ReplaceScreenMsg")
	}
	if _, ok := rep.Screen.(*sessionscreen.SessionScreen); !ok {
		t.Errorf("replaced with %T", rep.Screen)
	}
}

func TestModeChoice_ExportKeepsSessionReady(t *testing.T) {
	flow := readyFlow(t)
	s := New(&env.Env{
		Flow:      flow,
		Tr:        i18n.New("en"),
		ExportDir: t.TempDir(),
		Engine:    []byte("\x00asm"),
		WasmExec:  []byte("globalThis.Go = class {};"),
	})

	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if s.Exported() == "" {
		t.Fatalf("export failed: %s", s.errMsg)
	}

	f, err := os.Open(s.Exported())
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	b, err := offline.Load(f)
	if err != nil {
		t.Fatal(err)
	}
	if len(b.Questions) != 5 || b.TimeBudgetSeconds != session.BudgetFor(1) {
		t.Errorf("bundle = %d questions, %ds", len(b.Questions), b.TimeBudgetSeconds)
	}
	if flow.Phase() != session.PhaseReady {
		t.Errorf("phase = %v, want ready", flow.Phase())
	}
	if !strings.Contains(s.View(100, 30), "Saved") {
		t.Error("expected saved notice")
	}
}

func TestModeChoice_EscDiscards(t *testing.T) {
	flow := readyFlow(t)
	s := New(&env.Env{Flow: flow, Tr: i18n.New("en")})
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	if _, ok := cmd().(router.PopToRootMsg); !ok {
		t.Error("expected PopToRootMsg")
	}
	if flow.Phase() != session.PhaseConfiguring {
		t.Errorf("phase = %v, want configuring", flow.Phase())
	}
}
