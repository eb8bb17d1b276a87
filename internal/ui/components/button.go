package components

import (
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/rcdrill/internal/ui/theme"
)

// Button is a labelled action with a single-key shortcut, as in the
// submit confirmation's Y and N.
type Button struct {
	Label   string
	Key     string
	Active  bool
	OnPress func() tea.Cmd
}

// NewButton creates a button. key may be empty.
func NewButton(label, key string, active bool, onPress func() tea.Cmd) Button {
	return Button{Label: label, Key: key, Active: active, OnPress: onPress}
}

// Pressed reports whether msg fires the button: its shortcut always, enter
// only while active.
func (b Button) Pressed(msg tea.Msg) bool {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return false
	}
	key := strings.ToLower(kmsg.String())
	return (b.Key != "" && key == b.Key) || (b.Active && key == "enter")
}

func (b Button) Update(msg tea.Msg) (Button, tea.Cmd) {
	if b.OnPress != nil && b.Pressed(msg) {
		return b, b.OnPress()
	}
	return b, nil
}

func (b Button) View() string {
	label := "  ▸ " + b.Label
	if b.Key != "" {
		label += " (" + strings.ToUpper(b.Key) + ")"
	}
	label += " "
	if b.Active {
		return theme.ButtonActive.Render(label)
	}
	return theme.ButtonInactive.Render(label)
}
