package home

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/rcdrill/internal/router"
	"github.com/abhisek/rcdrill/internal/screen"
	"github.com/abhisek/rcdrill/internal/screens/env"
	"github.com/abhisek/rcdrill/internal/screens/history"
	"github.com/abhisek/rcdrill/internal/screens/setup"
	"github.com/abhisek/rcdrill/internal/ui/components"
	"github.com/abhisek/rcdrill/internal/ui/theme"
)

// HomeScreen is the main menu.
type HomeScreen struct {
	env      *env.Env
	menu     components.Menu
	attempts int
	bestPct  int
	lastDate string
}

var _ screen.Screen = (*HomeScreen)(nil)

// New creates a new HomeScreen.
func New(e *env.Env) *HomeScreen {
	items := []components.MenuItem{
		{Label: "NEW PRACTICE", Action: func() tea.Cmd {
			e.Flow.Reset()
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: setup.New(e)}
			}
		}},
		{Label: "HISTORY", Action: func() tea.Cmd {
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: history.New(e)}
			}
		}},
		{Label: "QUIT", Action: func() tea.Cmd {
			return tea.Quit
		}},
	}

	h := &HomeScreen{
		env:  e,
		menu: components.NewMenu(items),
	}
	h.loadStats()
	return h
}

func (h *HomeScreen) Init() tea.Cmd {
	return nil
}

// Refresh reloads the stats line after returning from a test.
func (h *HomeScreen) Refresh() tea.Cmd {
	h.loadStats()
	return nil
}

func (h *HomeScreen) loadStats() {
	results := h.env.Flow.History().All()
	h.attempts = len(results)
	h.bestPct = 0
	h.lastDate = ""
	for _, r := range results {
		if r.TotalPossibleScore > 0 {
			if pct := r.Score * 100 / r.TotalPossibleScore; pct > h.bestPct {
				h.bestPct = pct
			}
		}
	}
	if n := len(results); n > 0 {
		h.lastDate = results[n-1].Date.In(h.env.Loc()).Format("Jan 02, 2006")
	}
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(theme.Title.Width(width).Render("Reading Comprehension Drill"))
	b.WriteString("\n")
	b.WriteString(theme.Subtitle.Width(width).Render("Paste passages, get a timed test, review every answer."))
	b.WriteString("\n\n")

	stats := h.env.I18n().Tp("AttemptCount", h.attempts)
	if h.attempts > 0 {
		stats += fmt.Sprintf("   best %d%%   last %s", h.bestPct, h.lastDate)
	}
	b.WriteString(lipgloss.NewStyle().Width(width).Align(lipgloss.Center).
		Foreground(theme.Secondary).Render(stats))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, h.menu.View()))
	return b.String()
}

func (h *HomeScreen) Title() string {
	return "Home"
}
