// Package passages collects the passage texts for a configured practice.
package passages

import (
	"errors"
	"fmt"
	"strings"

	"charm.land/bubbles/v2/textarea"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/rcdrill/internal/intake"
	"github.com/abhisek/rcdrill/internal/router"
	"github.com/abhisek/rcdrill/internal/screen"
	"github.com/abhisek/rcdrill/internal/screens/env"
	"github.com/abhisek/rcdrill/internal/screens/generating"
	"github.com/abhisek/rcdrill/internal/ui/layout"
	"github.com/abhisek/rcdrill/internal/ui/theme"
)

// PassagesScreen shows one text area per configured passage.
type PassagesScreen struct {
	env    *env.Env
	areas  []textarea.Model
	focus  int
	errMsg string
}

var _ screen.Screen = (*PassagesScreen)(nil)
var _ screen.KeyHintProvider = (*PassagesScreen)(nil)

// New creates a PassagesScreen sized to the flow's passage count. Earlier
// input is restored so a rejected set can be edited in place.
func New(e *env.Env) *PassagesScreen {
	prev := e.Flow.Passages()
	n := e.Flow.NumPassages()

	s := &PassagesScreen{env: e, areas: make([]textarea.Model, n)}
	for i := range s.areas {
		ta := textarea.New()
		ta.Placeholder = fmt.Sprintf("Paste passage %d here...", i+1)
		ta.ShowLineNumbers = false
		ta.CharLimit = 0
		ta.MaxHeight = 0
		if i < len(prev) {
			ta.SetValue(prev[i])
		}
		s.areas[i] = ta
	}
	if n > 0 {
		s.areas[0].Focus()
	}
	return s
}

func (s *PassagesScreen) Init() tea.Cmd {
	return textarea.Blink
}

func (s *PassagesScreen) Title() string {
	return fmt.Sprintf("Passage %d of %d", s.focus+1, len(s.areas))
}

func (s *PassagesScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Tab", Description: "Next passage"},
		{Key: "Shift+Tab", Description: "Previous"},
		{Key: "Ctrl+S", Description: "Generate test"},
		{Key: "Esc", Description: "Cancel"},
	}
}

// Values returns the current text of every passage.
func (s *PassagesScreen) Values() []string {
	out := make([]string, len(s.areas))
	for i, ta := range s.areas {
		out[i] = ta.Value()
	}
	return out
}

func (s *PassagesScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "tab":
			s.setFocus((s.focus + 1) % len(s.areas))
			return s, nil
		case "shift+tab":
			s.setFocus((s.focus - 1 + len(s.areas)) % len(s.areas))
			return s, nil
		case "ctrl+s":
			return s, s.submit()
		}
	}

	if len(s.areas) == 0 {
		return s, nil
	}
	var cmd tea.Cmd
	s.areas[s.focus], cmd = s.areas[s.focus].Update(msg)
	return s, cmd
}

func (s *PassagesScreen) setFocus(i int) {
	s.areas[s.focus].Blur()
	s.focus = i
	s.areas[s.focus].Focus()
}

func (s *PassagesScreen) submit() tea.Cmd {
	checked, err := s.env.Flow.Submit(s.Values())
	if err != nil {
		s.errMsg = s.describe(err)
		var inc *intake.IncompleteError
		var dup *intake.DuplicateError
		switch {
		case errors.As(err, &inc):
			s.setFocus(inc.PassageIndex)
		case errors.As(err, &dup):
			s.setFocus(dup.PassageIndex)
		}
		return nil
	}
	s.errMsg = ""
	return func() tea.Msg {
		return router.PushScreenMsg{Screen: generating.New(s.env, checked)}
	}
}

func (s *PassagesScreen) describe(err error) string {
	tr := s.env.I18n()
	var inc *intake.IncompleteError
	var dup *intake.DuplicateError
	switch {
	case errors.As(err, &inc):
		return tr.Td("IncompletePassages", map[string]any{"Count": inc.Count, "Index": inc.PassageIndex + 1})
	case errors.As(err, &dup):
		return tr.Td("DuplicatePassage", map[string]any{
			"Index": dup.PassageIndex + 1,
			"Date":  dup.Date.In(s.env.Loc()).Format("Jan 02, 2006"),
		})
	default:
		return err.Error()
	}
}

// ErrMessage returns the inline validation message, if any.
func (s *PassagesScreen) ErrMessage() string { return s.errMsg }

func (s *PassagesScreen) View(width, height int) string {
	if len(s.areas) == 0 {
		return ""
	}

	w := width - 4
	h := height - 6
	if s.errMsg != "" {
		h -= 2
	}
	ta := &s.areas[s.focus]
	ta.SetWidth(w)
	ta.SetHeight(max(3, h))

	var tabs []string
	for i, a := range s.areas {
		lbl := fmt.Sprintf(" %d ", i+1)
		if strings.TrimSpace(a.Value()) != "" {
			lbl = fmt.Sprintf(" %d ✓ ", i+1)
		}
		style := lipgloss.NewStyle().Foreground(theme.TextDim)
		if i == s.focus {
			style = theme.Selected.Underline(true)
		}
		tabs = append(tabs, style.Render(lbl))
	}

	var b strings.Builder
	b.WriteString("  " + strings.Join(tabs, " "))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.NewStyle().PaddingLeft(2).Render(ta.View()))
	if s.errMsg != "" {
		b.WriteString("\n\n")
		b.WriteString(lipgloss.NewStyle().PaddingLeft(2).Width(w).
			Foreground(theme.Error).Render(s.errMsg))
	}
	return b.String()
}
