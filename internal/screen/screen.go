package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/rcdrill/internal/ui/layout"
)

// Screen defines the interface for all application screens.
type Screen interface {
	// Init returns an initial command when the screen is first created.
	Init() tea.Cmd

	// Update handles messages and returns updated screen + command.
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the screen content (excluding header/footer).
	View(width, height int) string

	// Title returns the screen name for the header.
	Title() string
}

// KeyHintProvider is an optional interface that screens can implement
// to provide custom footer key hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// StatusProvider is an optional interface for screens that show live
// status, such as a countdown, on the right of the header.
type StatusProvider interface {
	Status() string
}

// EscapeCapturer is implemented by screens that handle Esc themselves
// instead of letting the app pop them.
type EscapeCapturer interface {
	CapturesEscape() bool
}
