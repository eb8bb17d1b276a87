package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/rcdrill/internal/ui/theme"
)

// StepBar shows how many of a fixed number of generation steps are done:
// one reformat call per passage, then the question set.
type StepBar struct {
	Done  int
	Total int
	Width int
}

// NewStepBar clamps done into [0, total].
func NewStepBar(done, total, width int) StepBar {
	total = max(total, 1)
	return StepBar{Done: min(max(done, 0), total), Total: total, Width: width}
}

// Fraction is Done over Total.
func (p StepBar) Fraction() float64 {
	return float64(p.Done) / float64(p.Total)
}

func (p StepBar) View() string {
	count := fmt.Sprintf("  %d/%d", p.Done, p.Total)
	barWidth := max(p.Width-lipgloss.Width(count), 4)

	filled := int(float64(barWidth) * p.Fraction())

	return lipgloss.NewStyle().Background(theme.Secondary).Render(strings.Repeat(" ", filled)) +
		lipgloss.NewStyle().Background(theme.Border).Render(strings.Repeat(" ", barWidth-filled)) +
		lipgloss.NewStyle().Foreground(theme.TextDim).Render(count)
}
