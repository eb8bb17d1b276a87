// Package setup asks how many passages the next test covers.
package setup

import (
	"fmt"
	"strconv"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/rcdrill/internal/router"
	"github.com/abhisek/rcdrill/internal/screen"
	"github.com/abhisek/rcdrill/internal/screens/env"
	"github.com/abhisek/rcdrill/internal/screens/passages"
	"github.com/abhisek/rcdrill/internal/session"
	"github.com/abhisek/rcdrill/internal/ui/components"
	"github.com/abhisek/rcdrill/internal/ui/layout"
	"github.com/abhisek/rcdrill/internal/ui/theme"
)

// SetupScreen lets the learner pick the passage count.
type SetupScreen struct {
	env    *env.Env
	menu   components.Menu
	errMsg string
}

var _ screen.Screen = (*SetupScreen)(nil)
var _ screen.KeyHintProvider = (*SetupScreen)(nil)

// New creates a SetupScreen.
func New(e *env.Env) *SetupScreen {
	s := &SetupScreen{env: e}

	var items []components.MenuItem
	for n := session.MinPassages; n <= session.MaxPassages; n++ {
		items = append(items, components.MenuItem{
			Label:  label(e, n),
			Key:    strconv.Itoa(n),
			Action: func() tea.Cmd { return s.choose(n) },
		})
	}
	s.menu = components.NewMenu(items)
	return s
}

func label(e *env.Env, n int) string {
	return fmt.Sprintf("%-12s %2d questions   %s",
		e.I18n().Tp("PassageCount", n),
		session.ExpectedQuestions(n),
		layout.FormatClock(session.BudgetFor(n)))
}

func (s *SetupScreen) choose(n int) tea.Cmd {
	if err := s.env.Flow.Configure(n); err != nil {
		s.errMsg = err.Error()
		return nil
	}
	s.env.Log().Debug("practice configured", "passages", n)
	return func() tea.Msg {
		return router.ReplaceScreenMsg{Screen: passages.New(s.env)}
	}
}

func (s *SetupScreen) Init() tea.Cmd {
	return nil
}

func (s *SetupScreen) Title() string {
	return "New Practice"
}

func (s *SetupScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Choose"},
		{Key: "1-4", Description: "Quick pick"},
		{Key: "Enter", Description: "Continue"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *SetupScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	var cmd tea.Cmd
	s.menu, cmd = s.menu.Update(msg)
	return s, cmd
}

func (s *SetupScreen) View(width, height int) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(theme.Title.Width(width).Render("How many passages?"))
	b.WriteString("\n")
	b.WriteString(theme.Subtitle.Width(width).Render(
		fmt.Sprintf("Each passage gets %d questions.", session.QuestionsPerPassage)))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, s.menu.View()))

	if s.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Width(width).Align(lipgloss.Center).
			Foreground(theme.Error).Render(s.errMsg))
	}
	return b.String()
}
