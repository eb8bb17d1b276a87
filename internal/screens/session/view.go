package session

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	sess "github.com/abhisek/rcdrill/internal/session"
	"github.com/abhisek/rcdrill/internal/ui/components"
	"github.com/abhisek/rcdrill/internal/ui/theme"
)

// paletteColumns is the number of question cells per palette row.
const paletteColumns = 5

// renderExam lays out the passage on the left and the question with its
// palette on the right.
func (s *SessionScreen) renderExam(width, height int) string {
	snap := s.sess.Snapshot()

	leftW := width * 55 / 100
	rightW := width - leftW - 3

	left := s.renderPassage(leftW, height)

	var r strings.Builder
	r.WriteString(s.renderInfo(snap, rightW))
	r.WriteString("\n\n")
	r.WriteString(s.mc.View(rightW))
	r.WriteString("\n")
	r.WriteString(renderPalette(snap))
	if s.jumping {
		r.WriteString("\n")
		r.WriteString("Go to: " + s.jump.View())
	}

	right := lipgloss.NewStyle().Width(rightW).PaddingLeft(2).Render(r.String())
	return lipgloss.JoinHorizontal(lipgloss.Top, left, right)
}

// renderPassage wraps the passage to width and shows the scrolled window.
func (s *SessionScreen) renderPassage(width, height int) string {
	wrapped := lipgloss.NewStyle().Width(width - 2).Render(s.sess.PassageText())
	lines := strings.Split(wrapped, "\n")

	s.scroll = min(s.scroll, max(0, len(lines)-height))
	end := min(len(lines), s.scroll+height)
	window := strings.Join(lines[s.scroll:end], "\n")

	return theme.Passage.Width(width).Height(height).Render(window)
}

func (s *SessionScreen) renderInfo(snap sess.Snapshot, width int) string {
	left := lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).
		Render(fmt.Sprintf("Q %d/%d", snap.Index+1, snap.Total))
	right := lipgloss.NewStyle().Foreground(theme.TextDim).
		Render(fmt.Sprintf("answered %d  marked %d", snap.Answered, snap.Marked))
	if snap.State.IsMarkedForReview {
		left += "  " + theme.Marked.Render("◆ marked")
	}
	pad := width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if pad < 1 {
		pad = 1
	}
	return left + strings.Repeat(" ", pad) + right
}

// renderPalette draws one cell per question: answered in green, marked in
// orange, the current one bracketed.
func renderPalette(snap sess.Snapshot) string {
	var b strings.Builder
	for i, st := range snap.States {
		cell := fmt.Sprintf(" %2d ", i+1)
		if i == snap.Index {
			cell = fmt.Sprintf("[%2d]", i+1)
		}
		style := theme.Unattempted
		switch {
		case st.IsMarkedForReview:
			style = theme.Marked
			if st.Attempted() {
				style = style.Underline(true)
			}
		case st.Attempted():
			style = theme.Correct
		}
		b.WriteString(style.Render(cell))
		if (i+1)%paletteColumns == 0 {
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")
	b.WriteString(theme.Hint.Render("green answered · orange marked · underlined both"))
	return b.String()
}

func (s *SessionScreen) renderConfirm(width, height int) string {
	snap := s.sess.Snapshot()
	center := lipgloss.NewStyle().Width(width).Align(lipgloss.Center)

	var b strings.Builder
	b.WriteString("\n\n")
	b.WriteString(center.Foreground(theme.Text).Bold(true).Render("Submit your test?"))
	b.WriteString("\n\n")
	b.WriteString(center.Foreground(theme.TextDim).Render(fmt.Sprintf(
		"%d of %d answered, %d marked for review, %s left",
		snap.Answered, snap.Total, snap.Marked, s.Status())))
	b.WriteString("\n\n")

	yes, no := confirmButtons()
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
		lipgloss.JoinHorizontal(lipgloss.Center, yes.View(), "  ", no.View())))
	return b.String()
}

// confirmButtons are the submit dialog's choices. Enter submits.
func confirmButtons() (yes, no components.Button) {
	return components.NewButton("Yes, submit", "y", true, nil),
		components.NewButton("Keep going", "n", false, nil)
}

func renderError(width, height int, msg string) string {
	return lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Error).
		Render("\n\n" + msg + "\n\nPress any key to return home.")
}
