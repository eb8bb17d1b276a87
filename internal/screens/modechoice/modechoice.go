// Package modechoice offers taking a ready test in the terminal or
// exporting it as a standalone page.
package modechoice

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/rcdrill/internal/offline"
	"github.com/abhisek/rcdrill/internal/router"
	"github.com/abhisek/rcdrill/internal/screen"
	"github.com/abhisek/rcdrill/internal/screens/env"
	sessionscreen "github.com/abhisek/rcdrill/internal/screens/session"
	"github.com/abhisek/rcdrill/internal/ui/components"
	"github.com/abhisek/rcdrill/internal/ui/layout"
	"github.com/abhisek/rcdrill/internal/ui/theme"
)

// ModeChoiceScreen is shown once a session is ready.
type ModeChoiceScreen struct {
	env      *env.Env
	menu     components.Menu
	exported string
	errMsg   string
}

var _ screen.Screen = (*ModeChoiceScreen)(nil)
var _ screen.KeyHintProvider = (*ModeChoiceScreen)(nil)
var _ screen.EscapeCapturer = (*ModeChoiceScreen)(nil)

// New creates a ModeChoiceScreen for the flow's ready session.
func New(e *env.Env) *ModeChoiceScreen {
	s := &ModeChoiceScreen{env: e}
	s.menu = components.NewMenu([]components.MenuItem{
		{Label: "START TEST NOW", Action: s.start},
		{Label: "EXPORT OFFLINE PAGE", Action: s.export},
		{Label: "DISCARD", Action: s.discard},
	})
	return s
}

func (s *ModeChoiceScreen) discard() tea.Cmd {
	s.env.Flow.Reset()
	return func() tea.Msg { return router.PopToRootMsg{} }
}

// CapturesEscape routes Esc to discard; the passage editor below is no
// longer valid once a session exists.
func (s *ModeChoiceScreen) CapturesEscape() bool { return true }

func (s *ModeChoiceScreen) start() tea.Cmd {
	sess := s.env.Flow.Session()
	if sess == nil {
		s.errMsg = "no test is ready"
		return nil
	}
	return func() tea.Msg {
		return router.ReplaceScreenMsg{Screen: sessionscreen.New(s.env, sess)}
	}
}

func (s *ModeChoiceScreen) export() tea.Cmd {
	sess := s.env.Flow.Session()
	if sess == nil {
		s.errMsg = "no test is ready"
		return nil
	}
	path, err := s.env.ExportBundle(offline.FromSession(sess))
	if err != nil {
		s.errMsg = err.Error()
		return nil
	}
	s.errMsg = ""
	s.exported = path
	return nil
}

// Exported returns the path of the last exported page.
func (s *ModeChoiceScreen) Exported() string { return s.exported }

func (s *ModeChoiceScreen) Init() tea.Cmd {
	return nil
}

func (s *ModeChoiceScreen) Title() string {
	return "Test Ready"
}

func (s *ModeChoiceScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Choose"},
		{Key: "Enter", Description: "Select"},
		{Key: "Esc", Description: "Home"},
	}
}

func (s *ModeChoiceScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok && kmsg.String() == "esc" {
		return s, s.discard()
	}
	var cmd tea.Cmd
	s.menu, cmd = s.menu.Update(msg)
	return s, cmd
}

func (s *ModeChoiceScreen) View(width, height int) string {
	center := lipgloss.NewStyle().Width(width).Align(lipgloss.Center)
	var b strings.Builder
	b.WriteString("\n")

	if sess := s.env.Flow.Session(); sess != nil {
		b.WriteString(theme.Title.Width(width).Render("Your test is ready"))
		b.WriteString("\n")
		b.WriteString(theme.Subtitle.Width(width).Render(fmt.Sprintf("%s, %d questions, %s on the clock",
			s.env.I18n().Tp("PassageCount", sess.NumPassages()),
			len(sess.Questions()),
			layout.FormatClock(sess.TimeBudget()))))
		b.WriteString("\n\n")
	}

	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, s.menu.View()))

	if s.exported != "" {
		b.WriteString("\n")
		b.WriteString(center.Foreground(theme.Success).Render("Saved " + s.exported))
		b.WriteString("\n")
		b.WriteString(center.Foreground(theme.TextDim).Render("Offline attempts are not added to your history."))
	}
	if s.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(center.Foreground(theme.Error).Render(s.errMsg))
	}
	return b.String()
}
