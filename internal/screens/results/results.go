// Package results shows a scored attempt with its analysis and a
// question-by-question review.
package results

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/rcdrill/internal/analytics"
	"github.com/abhisek/rcdrill/internal/offline"
	"github.com/abhisek/rcdrill/internal/router"
	"github.com/abhisek/rcdrill/internal/screen"
	"github.com/abhisek/rcdrill/internal/screens/env"
	"github.com/abhisek/rcdrill/internal/session"
	"github.com/abhisek/rcdrill/internal/ui/components"
	"github.com/abhisek/rcdrill/internal/ui/layout"
	"github.com/abhisek/rcdrill/internal/ui/theme"
)

// Option configures a ResultsScreen.
type Option func(*ResultsScreen)

// Finished marks the screen as shown right after an attempt.
func Finished(timeUp bool, persistErr error) Option {
	return func(s *ResultsScreen) {
		s.timeUp = timeUp
		s.persistErr = persistErr
	}
}

// FromHistory makes Esc return to the previous screen instead of home.
func FromHistory() Option {
	return func(s *ResultsScreen) { s.fromHistory = true }
}

// ResultsScreen displays one stored result.
type ResultsScreen struct {
	env         *env.Env
	result      session.StoredResult
	comparison  analytics.Comparison
	timeUp      bool
	persistErr  error
	fromHistory bool

	review   int
	scroll   int
	exported string
	errMsg   string
}

var _ screen.Screen = (*ResultsScreen)(nil)
var _ screen.KeyHintProvider = (*ResultsScreen)(nil)
var _ screen.EscapeCapturer = (*ResultsScreen)(nil)

// New creates a ResultsScreen.
func New(e *env.Env, r session.StoredResult, opts ...Option) *ResultsScreen {
	s := &ResultsScreen{env: e, result: r}
	for _, opt := range opts {
		opt(s)
	}
	cmp, err := analytics.Compare(r.Score, r.TotalPossibleScore, e.Category)
	if err != nil {
		e.Log().Warn("analysis unavailable", "category", e.Category, "error", err)
	}
	s.comparison = cmp
	return s
}

func (s *ResultsScreen) Init() tea.Cmd {
	return nil
}

func (s *ResultsScreen) Title() string {
	return "Results"
}

// CapturesEscape picks the return target itself.
func (s *ResultsScreen) CapturesEscape() bool { return true }

func (s *ResultsScreen) KeyHints() []layout.KeyHint {
	back := "Home"
	if s.fromHistory {
		back = "Back"
	}
	return []layout.KeyHint{
		{Key: "N/P", Description: "Review question"},
		{Key: "PgUp/PgDn", Description: "Scroll"},
		{Key: "E", Description: "Export offline"},
		{Key: "Esc", Description: back},
	}
}

// Review returns the index of the question under review.
func (s *ResultsScreen) Review() int { return s.review }

// Exported returns the path of the last exported page.
func (s *ResultsScreen) Exported() string { return s.exported }

func (s *ResultsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}
	switch kmsg.String() {
	case "n", "right":
		if s.review < len(s.result.Questions)-1 {
			s.review++
		}
	case "p", "left":
		if s.review > 0 {
			s.review--
		}
	case "pgdown", "]", "down", "j":
		s.scroll += 3
	case "pgup", "[", "up", "k":
		s.scroll = max(0, s.scroll-3)
	case "e":
		path, err := s.env.ExportBundle(offline.FromResult(s.result))
		if err != nil {
			s.errMsg = err.Error()
		} else {
			s.exported = path
		}
	case "esc", "enter":
		if s.fromHistory {
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
		return s, func() tea.Msg { return router.PopToRootMsg{} }
	}
	return s, nil
}

func (s *ResultsScreen) View(width, height int) string {
	tr := s.env.I18n()
	r := s.result
	center := lipgloss.NewStyle().Width(width).Align(lipgloss.Center)

	var b strings.Builder
	if s.timeUp {
		b.WriteString(center.Foreground(theme.Accent).Bold(true).Render(tr.T("TimeUp")))
		b.WriteString("\n")
	}
	if s.persistErr != nil {
		b.WriteString(center.Foreground(theme.Error).
			Render(tr.Td("PersistWarning", map[string]any{"Error": s.persistErr.Error()})))
		b.WriteString("\n")
	}

	b.WriteString(center.Foreground(theme.Primary).Bold(true).
		Render(fmt.Sprintf("Score %d / %d", r.Score, r.TotalPossibleScore)))
	b.WriteString("\n")
	b.WriteString(center.Foreground(theme.Text).Render(fmt.Sprintf(
		"%s %d   %s %d   %s %d   time %s",
		tr.T("OutcomeCorrect"), r.CorrectCount,
		tr.T("OutcomeIncorrect"), r.IncorrectCount,
		tr.T("OutcomeUnattempted"), r.UnattemptedCount,
		layout.FormatClock(r.TimeTakenSec))))
	b.WriteString("\n")
	b.WriteString(center.Foreground(theme.TextDim).
		Render(r.Date.In(s.env.Loc()).Format("Mon Jan 02, 2006 15:04")))
	b.WriteString("\n\n")

	statement := s.comparison.Statement(tr)
	b.WriteString(lipgloss.NewStyle().Width(width-4).PaddingLeft(2).
		Foreground(theme.Secondary).Render(statement))
	b.WriteString("\n")
	if s.comparison.Available {
		b.WriteString(lipgloss.NewStyle().PaddingLeft(2).Foreground(theme.TextDim).Render(fmt.Sprintf(
			"%s typical range %.2f to %.2f of %d",
			s.comparison.Category, s.comparison.Lower, s.comparison.Upper, s.comparison.MaxMarks)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(s.renderReview(width - 4))

	if s.exported != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().PaddingLeft(2).Foreground(theme.Success).Render("Saved " + s.exported))
	}
	if s.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().PaddingLeft(2).Foreground(theme.Error).Render(s.errMsg))
	}

	lines := strings.Split(b.String(), "\n")
	s.scroll = min(s.scroll, max(0, len(lines)-height))
	end := min(len(lines), s.scroll+height)
	return strings.Join(lines[s.scroll:end], "\n")
}

func (s *ResultsScreen) renderReview(width int) string {
	r := s.result
	if len(r.Questions) == 0 {
		return ""
	}
	tr := s.env.I18n()
	q := r.Questions[s.review]
	var st session.QuestionState
	if s.review < len(r.QuestionStates) {
		st = r.QuestionStates[s.review]
	}
	outcome := session.Classify(q, st)

	label := tr.T("OutcomeUnattempted")
	style := theme.Unattempted
	switch outcome {
	case session.OutcomeCorrect:
		label, style = tr.T("OutcomeCorrect"), theme.Correct
	case session.OutcomeIncorrect:
		label, style = tr.T("OutcomeIncorrect"), theme.Incorrect
	}

	pad := lipgloss.NewStyle().PaddingLeft(2)
	var b strings.Builder
	b.WriteString(pad.Render(fmt.Sprintf("Review %d of %d  ", s.review+1, len(r.Questions)) +
		style.Render(label) +
		theme.Hint.Render(fmt.Sprintf("  %ds spent", st.TimeSpentOnQuestion))))
	b.WriteString("\n\n")

	mc := components.NewReviewChoice(q.QuestionText, q.Options, st.SelectedOption, q.CorrectAnswerText)
	b.WriteString(pad.Render(mc.View(width)))
	b.WriteString("\n")

	detail := lipgloss.NewStyle().PaddingLeft(2).Width(width)
	b.WriteString(detail.Foreground(theme.Text).Render("Explanation: " + q.Explanation))
	b.WriteString("\n")
	b.WriteString(detail.Foreground(theme.TextDim).Render("Difficulty: " + q.DifficultyAssessment))
	b.WriteString("\n")
	b.WriteString(detail.Foreground(theme.TextDim).Render("Common pitfalls: " + q.CommonPitfalls))
	return b.String()
}
