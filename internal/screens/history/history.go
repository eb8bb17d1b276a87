// Package history shows stored attempts on a month calendar.
package history

import (
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	hist "github.com/abhisek/rcdrill/internal/history"
	"github.com/abhisek/rcdrill/internal/offline"
	"github.com/abhisek/rcdrill/internal/router"
	"github.com/abhisek/rcdrill/internal/screen"
	"github.com/abhisek/rcdrill/internal/screens/env"
	"github.com/abhisek/rcdrill/internal/screens/modechoice"
	"github.com/abhisek/rcdrill/internal/screens/results"
	"github.com/abhisek/rcdrill/internal/session"
	"github.com/abhisek/rcdrill/internal/ui/layout"
	"github.com/abhisek/rcdrill/internal/ui/theme"
)

// HistoryScreen displays a month calendar of attempts and the attempts of
// a chosen day.
type HistoryScreen struct {
	env      *env.Env
	index    hist.CalendarIndex
	cursor   time.Time // selected day, midnight UTC
	dayMode  bool
	selected int
	message  string
	errMsg   string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)
var _ screen.EscapeCapturer = (*HistoryScreen)(nil)

// New creates a HistoryScreen positioned on today.
func New(e *env.Env) *HistoryScreen {
	now := e.Clock().In(e.Loc())
	s := &HistoryScreen{
		env:    e,
		cursor: time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC),
	}
	s.reload()
	return s
}

func (s *HistoryScreen) reload() {
	s.index = hist.BuildCalendarIndex(s.env.Flow.History().All(), s.env.Loc())
}

func (s *HistoryScreen) Init() tea.Cmd {
	return nil
}

// Refresh reloads the index after returning from a re-attempt.
func (s *HistoryScreen) Refresh() tea.Cmd {
	s.reload()
	return nil
}

func (s *HistoryScreen) Title() string {
	return "History"
}

// CapturesEscape is true while a day is open, so Esc returns to the month.
func (s *HistoryScreen) CapturesEscape() bool { return s.dayMode }

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	if s.dayMode {
		return []layout.KeyHint{
			{Key: "↑↓", Description: "Select"},
			{Key: "Enter", Description: "Review"},
			{Key: "R", Description: "Re-attempt"},
			{Key: "E", Description: "Export"},
			{Key: "Esc", Description: "Month"},
		}
	}
	return []layout.KeyHint{
		{Key: "←→↑↓", Description: "Day"},
		{Key: "[ ]", Description: "Month"},
		{Key: "Enter", Description: "Open day"},
		{Key: "Esc", Description: "Back"},
	}
}

// Day returns the selected calendar day key.
func (s *HistoryScreen) Day() string {
	return s.cursor.Format(hist.DateLayout)
}

func (s *HistoryScreen) dayResults() []session.StoredResult {
	return s.index.On(s.Day())
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}
	if s.dayMode {
		return s.updateDay(kmsg)
	}

	switch kmsg.String() {
	case "left", "h":
		s.cursor = s.cursor.AddDate(0, 0, -1)
	case "right", "l":
		s.cursor = s.cursor.AddDate(0, 0, 1)
	case "up", "k":
		s.cursor = s.cursor.AddDate(0, 0, -7)
	case "down", "j":
		s.cursor = s.cursor.AddDate(0, 0, 7)
	case "[":
		s.cursor = firstOfMonth(s.cursor).AddDate(0, -1, 0)
	case "]":
		s.cursor = firstOfMonth(s.cursor).AddDate(0, 1, 0)
	case "enter":
		if len(s.dayResults()) > 0 {
			s.dayMode = true
			s.selected = 0
			s.message, s.errMsg = "", ""
		}
	case "esc":
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	}
	return s, nil
}

func (s *HistoryScreen) updateDay(kmsg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	list := s.dayResults()
	switch kmsg.String() {
	case "up", "k":
		if s.selected > 0 {
			s.selected--
		}
	case "down", "j":
		if s.selected < len(list)-1 {
			s.selected++
		}
	case "esc":
		s.dayMode = false
	case "enter":
		if r, ok := s.current(list); ok {
			return s, func() tea.Msg {
				return router.PushScreenMsg{Screen: results.New(s.env, r, results.FromHistory())}
			}
		}
	case "r":
		r, ok := s.current(list)
		if !ok {
			return s, nil
		}
		if _, err := s.env.Flow.Reattempt(r.ID); err != nil {
			s.errMsg = err.Error()
			return s, nil
		}
		return s, func() tea.Msg {
			return router.PushScreenMsg{Screen: modechoice.New(s.env)}
		}
	case "e":
		r, ok := s.current(list)
		if !ok {
			return s, nil
		}
		path, err := s.env.ExportBundle(offline.FromResult(r))
		if err != nil {
			s.errMsg = err.Error()
		} else {
			s.message = "Saved " + path
		}
	}
	return s, nil
}

func (s *HistoryScreen) current(list []session.StoredResult) (session.StoredResult, bool) {
	if s.selected < 0 || s.selected >= len(list) {
		return session.StoredResult{}, false
	}
	return list[s.selected], true
}

func firstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func (s *HistoryScreen) View(width, height int) string {
	if s.env.Flow.History().Len() == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  No attempts yet. Start a practice!")
	}

	cal := s.renderMonth()
	day := s.renderDay(max(30, width-lipgloss.Width(cal)-6))
	body := lipgloss.JoinHorizontal(lipgloss.Top, cal, "    ", day)

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, body))
	if s.message != "" {
		b.WriteString("\n\n")
		b.WriteString(lipgloss.NewStyle().Width(width).Align(lipgloss.Center).
			Foreground(theme.Success).Render(s.message))
	}
	if s.errMsg != "" {
		b.WriteString("\n\n")
		b.WriteString(lipgloss.NewStyle().Width(width).Align(lipgloss.Center).
			Foreground(theme.Error).Render(s.errMsg))
	}
	return b.String()
}

// renderMonth draws the month grid. Days with attempts show their count;
// the selected day is highlighted.
func (s *HistoryScreen) renderMonth() string {
	grid := s.index.Month(s.cursor.Year(), s.cursor.Month())
	sel := s.Day()

	var b strings.Builder
	b.WriteString(theme.Selected.Render(fmt.Sprintf("%s %d", grid.Month, grid.Year)))
	b.WriteString("\n")
	b.WriteString(theme.Hint.Render(" Su  Mo  Tu  We  Th  Fr  Sa"))
	b.WriteString("\n")

	for _, week := range grid.Weeks {
		for _, d := range week {
			if d == nil {
				b.WriteString("    ")
				continue
			}
			cell := fmt.Sprintf(" %2d ", d.Day)
			style := lipgloss.NewStyle().Foreground(theme.TextDim)
			if d.Attempts > 0 {
				style = lipgloss.NewStyle().Foreground(theme.Success).Bold(true)
				cell = fmt.Sprintf(" %2d•", d.Day)
			}
			if d.Date == sel {
				style = style.Background(theme.Primary).Foreground(theme.Text)
			}
			b.WriteString(style.Render(cell))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (s *HistoryScreen) renderDay(width int) string {
	list := s.dayResults()
	var b strings.Builder
	b.WriteString(theme.Selected.Render(s.cursor.Format("Monday, Jan 02")))
	b.WriteString("\n\n")

	if len(list) == 0 {
		b.WriteString(theme.Hint.Render("No attempts on this day."))
		return b.String()
	}

	for i, r := range list {
		prefix := "  "
		if s.dayMode && i == s.selected {
			prefix = "▸ "
		}
		line := fmt.Sprintf("%s%s  %d/%d  %s  %s",
			prefix,
			r.Date.In(s.env.Loc()).Format("15:04"),
			r.Score, r.TotalPossibleScore,
			layout.FormatClock(r.TimeTakenSec),
			s.env.I18n().Tp("PassageCount", r.NumberOfPassages))

		style := lipgloss.NewStyle().Foreground(theme.Text)
		if s.dayMode && i == s.selected {
			style = theme.Selected
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Width(width).PaddingLeft(4).Foreground(theme.TextDim).
			Render(r.PassageSummary))
		b.WriteString("\n")
	}
	return b.String()
}
