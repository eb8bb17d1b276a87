// Package generating runs question generation and reports its progress.
package generating

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/rcdrill/internal/llm"
	"github.com/abhisek/rcdrill/internal/practice"
	"github.com/abhisek/rcdrill/internal/questiongen"
	"github.com/abhisek/rcdrill/internal/router"
	"github.com/abhisek/rcdrill/internal/screen"
	"github.com/abhisek/rcdrill/internal/screens/env"
	"github.com/abhisek/rcdrill/internal/screens/modechoice"
	"github.com/abhisek/rcdrill/internal/session"
	"github.com/abhisek/rcdrill/internal/ui/components"
	"github.com/abhisek/rcdrill/internal/ui/layout"
	"github.com/abhisek/rcdrill/internal/ui/theme"
)

// generatedMsg carries the outcome of the generation call.
type generatedMsg struct {
	Content session.Content
	Err     error
}

// progressMsg is sent after each finished LLM call.
type progressMsg questiongen.Progress

// GeneratingScreen shows progress while the passages are reformatted and
// questions are written.
type GeneratingScreen struct {
	env      *env.Env
	passages []string
	spinner  spinner.Model
	progress chan questiongen.Progress
	cancel   context.CancelFunc

	reformatted int
	questions   bool
	err         error
	recovery    practice.Recovery
}

var _ screen.Screen = (*GeneratingScreen)(nil)
var _ screen.KeyHintProvider = (*GeneratingScreen)(nil)
var _ screen.EscapeCapturer = (*GeneratingScreen)(nil)

// New creates a GeneratingScreen for already validated passages.
func New(e *env.Env, passages []string) *GeneratingScreen {
	return &GeneratingScreen{
		env:      e,
		passages: passages,
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
}

func (s *GeneratingScreen) Init() tea.Cmd {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.progress = make(chan questiongen.Progress, 2*len(s.passages)+2)
	return tea.Batch(s.spinner.Tick, s.generate(ctx), s.waitProgress())
}

func (s *GeneratingScreen) generate(ctx context.Context) tea.Cmd {
	ch := s.progress
	flow := s.env.Flow
	passages := s.passages
	return func() tea.Msg {
		defer close(ch)
		ctx := questiongen.WithProgress(ctx, func(p questiongen.Progress) {
			select {
			case ch <- p:
			default:
			}
		})
		c, err := flow.Generate(ctx, passages)
		return generatedMsg{Content: c, Err: err}
	}
}

func (s *GeneratingScreen) waitProgress() tea.Cmd {
	ch := s.progress
	return func() tea.Msg {
		p, ok := <-ch
		if !ok {
			return nil
		}
		return progressMsg(p)
	}
}

func (s *GeneratingScreen) Title() string {
	return "Preparing Test"
}

// CapturesEscape lets Esc cancel the running generation first.
func (s *GeneratingScreen) CapturesEscape() bool { return true }

func (s *GeneratingScreen) KeyHints() []layout.KeyHint {
	if s.err != nil {
		return []layout.KeyHint{
			{Key: "Enter", Description: s.env.I18n().T(s.recovery.MessageID())},
		}
	}
	return []layout.KeyHint{
		{Key: "Esc", Description: "Cancel"},
	}
}

func (s *GeneratingScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case progressMsg:
		switch msg.Step {
		case questiongen.StepReformat:
			s.reformatted = msg.Done
		case questiongen.StepQuestions:
			s.questions = true
		}
		return s, s.waitProgress()

	case generatedMsg:
		return s.handleGenerated(msg)

	case spinner.TickMsg:
		if s.err != nil {
			return s, nil
		}
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			if s.err == nil {
				if s.cancel != nil {
					s.cancel()
				}
				return s, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return s, s.recover()
		case "enter":
			if s.err != nil {
				return s, s.recover()
			}
		}
	}
	return s, nil
}

func (s *GeneratingScreen) handleGenerated(msg generatedMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil {
		if errors.Is(msg.Err, context.Canceled) {
			return s, nil
		}
		s.err = msg.Err
		s.recovery = practice.RecoveryFor(msg.Err)
		s.env.Log().Warn("question generation failed", "error", msg.Err, "recovery", s.recovery)
		return s, nil
	}

	if _, err := s.env.Flow.Accept(msg.Content); err != nil {
		s.err = err
		s.recovery = practice.RecoveryFor(err)
		return s, nil
	}
	return s, func() tea.Msg {
		return router.ReplaceScreenMsg{Screen: modechoice.New(s.env)}
	}
}

// recover applies the offered recovery and navigates accordingly.
func (s *GeneratingScreen) recover() tea.Cmd {
	switch s.env.Flow.Recover(s.err) {
	case practice.RecoverEditInput:
		return func() tea.Msg { return router.PopScreenMsg{} }
	default:
		return func() tea.Msg { return router.PopToRootMsg{} }
	}
}

func (s *GeneratingScreen) View(width, height int) string {
	center := lipgloss.NewStyle().Width(width).Align(lipgloss.Center)
	var b strings.Builder
	b.WriteString("\n\n")

	if s.err != nil {
		tr := s.env.I18n()
		text := tr.Td("GenerationFailed", map[string]any{"Error": s.err.Error()})
		if errors.Is(s.err, llm.ErrNotConfigured) {
			text = tr.T("ConfigMissing")
		}
		b.WriteString(center.Foreground(theme.Error).Bold(true).Width(width).Render(text))
		b.WriteString("\n\n")
		b.WriteString(center.Foreground(theme.TextDim).Render(tr.T(s.recovery.MessageID())))
		return b.String()
	}

	n := len(s.passages)
	b.WriteString(center.Foreground(theme.Text).
		Render(s.spinner.View() + " Preparing your test..."))
	b.WriteString("\n\n")

	done := s.reformatted
	if s.questions {
		done++
	}
	bar := components.NewStepBar(done, n+1, min(60, width-8))
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, bar.View()))
	b.WriteString("\n\n")

	step := fmt.Sprintf("Formatting passages: %d of %d", s.reformatted, n)
	if s.reformatted == n {
		step = fmt.Sprintf("Writing %d questions...", session.ExpectedQuestions(n))
	}
	b.WriteString(center.Foreground(theme.TextDim).Render(step))
	return b.String()
}
