package components

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/rcdrill/internal/ui/theme"
)

// OptionLabels are the letters shown before answer options.
var OptionLabels = []string{"A", "B", "C", "D"}

// MultiChoice is a multiple-choice selector. Cursor moves with the arrow
// keys; Chosen is the option the learner committed to. In review mode the
// correct option and a wrong choice are colored.
type MultiChoice struct {
	Question string
	Options  []string
	Cursor   int
	Chosen   string
	Correct  string
	Review   bool
}

// NewMultiChoice creates a selector positioned on the chosen option, if any.
func NewMultiChoice(question string, options []string, chosen string) MultiChoice {
	m := MultiChoice{
		Question: question,
		Options:  options,
		Chosen:   chosen,
	}
	for i, o := range options {
		if o == chosen {
			m.Cursor = i
		}
	}
	return m
}

// NewReviewChoice creates a read-only selector that shows the answer key.
func NewReviewChoice(question string, options []string, chosen, correct string) MultiChoice {
	m := NewMultiChoice(question, options, chosen)
	m.Correct = correct
	m.Review = true
	return m
}

// Init returns nil.
func (m MultiChoice) Init() tea.Cmd {
	return nil
}

// Update moves the cursor. Committing a choice is left to the owner, which
// reads Cursor on enter.
func (m MultiChoice) Update(msg tea.Msg) (MultiChoice, tea.Cmd) {
	if m.Review {
		return m, nil
	}

	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch kmsg.String() {
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
		}
	case "down", "j":
		if m.Cursor < len(m.Options)-1 {
			m.Cursor++
		}
	}

	return m, nil
}

// CursorOption returns the option under the cursor.
func (m MultiChoice) CursorOption() string {
	if m.Cursor < 0 || m.Cursor >= len(m.Options) {
		return ""
	}
	return m.Options[m.Cursor]
}

// View renders the question and its options wrapped to width.
func (m MultiChoice) View(width int) string {
	if width < 20 {
		width = 20
	}
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Width(width).Render(m.Question))
	b.WriteString("\n\n")

	for i, opt := range m.Options {
		label := "?"
		if i < len(OptionLabels) {
			label = OptionLabels[i]
		}
		prefix := "  "
		if i == m.Cursor && !m.Review {
			prefix = "▸ "
		}
		mark := "( )"
		if opt == m.Chosen {
			mark = "(•)"
		}
		line := lipgloss.NewStyle().Width(width).Render(fmt.Sprintf("%s%s %s) %s", prefix, mark, label, opt))

		style := lipgloss.NewStyle().Foreground(theme.Text)
		switch {
		case m.Review && opt == m.Correct:
			style = theme.Correct
		case m.Review && opt == m.Chosen:
			style = theme.Incorrect
		case m.Review:
			style = lipgloss.NewStyle().Foreground(theme.TextDim)
		case opt == m.Chosen:
			style = theme.Selected
		case i == m.Cursor:
			style = lipgloss.NewStyle().Foreground(theme.Primary)
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}

	return b.String()
}
