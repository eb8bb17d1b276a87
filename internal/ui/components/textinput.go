package components

import (
	"strconv"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/rcdrill/internal/ui/theme"
)

// QuestionInput reads a 1-based question number for jumping within a
// test of Total questions. Non-digit keys are dropped.
type QuestionInput struct {
	Model textinput.Model
	Total int
}

// NewQuestionInput sizes the field to the digits of total.
func NewQuestionInput(total int) QuestionInput {
	ti := textinput.New()
	ti.Placeholder = "1-" + strconv.Itoa(total)
	ti.CharLimit = len(strconv.Itoa(total))
	ti.Focus()
	return QuestionInput{Model: ti, Total: total}
}

func (t QuestionInput) Init() tea.Cmd {
	return t.Model.Focus()
}

func (t QuestionInput) Update(msg tea.Msg) (QuestionInput, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		if key := kmsg.String(); len(key) == 1 && (key[0] < '0' || key[0] > '9') {
			return t, nil
		}
	}
	var cmd tea.Cmd
	t.Model, cmd = t.Model.Update(msg)
	return t, cmd
}

// Index returns the zero-based question index typed so far. ok is false
// for an empty field or a number outside 1..Total.
func (t QuestionInput) Index() (i int, ok bool) {
	n, err := strconv.Atoi(t.Model.Value())
	if err != nil || n < 1 || n > t.Total {
		return 0, false
	}
	return n - 1, true
}

func (t QuestionInput) View() string {
	view := t.Model.View()
	if t.Model.Value() == "" {
		return view
	}
	if _, ok := t.Index(); ok {
		return view + " " + lipgloss.NewStyle().Foreground(theme.Success).Render("✓")
	}
	return view + " " + lipgloss.NewStyle().Foreground(theme.Error).Render("✗")
}
