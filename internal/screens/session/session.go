package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/rcdrill/internal/router"
	"github.com/abhisek/rcdrill/internal/screen"
	"github.com/abhisek/rcdrill/internal/screens/env"
	sess "github.com/abhisek/rcdrill/internal/session"
	"github.com/abhisek/rcdrill/internal/ui/components"
	"github.com/abhisek/rcdrill/internal/ui/layout"
)

// SessionScreen implements screen.Screen for a timed attempt.
type SessionScreen struct {
	env        *env.Env
	sess       *sess.Session
	countdown  sess.CountdownID
	mc         components.MultiChoice
	jump       components.QuestionInput
	jumping    bool
	confirming bool
	scroll     int
	errMsg     string
}

var _ screen.Screen = (*SessionScreen)(nil)
var _ screen.KeyHintProvider = (*SessionScreen)(nil)
var _ screen.StatusProvider = (*SessionScreen)(nil)
var _ screen.EscapeCapturer = (*SessionScreen)(nil)

// New creates a SessionScreen over a Ready session.
func New(e *env.Env, s *sess.Session) *SessionScreen {
	scr := &SessionScreen{env: e, sess: s}
	scr.syncChoice()
	return scr
}

// Init starts the countdown.
func (s *SessionScreen) Init() tea.Cmd {
	id, err := s.sess.Start()
	if err != nil {
		s.errMsg = err.Error()
		return nil
	}
	s.countdown = id
	return tickCmd(id)
}

func (s *SessionScreen) Title() string {
	snap := s.sess.Snapshot()
	return fmt.Sprintf("Question %d of %d", snap.Index+1, snap.Total)
}

// Status shows the remaining time in the header.
func (s *SessionScreen) Status() string {
	return "⏱ " + layout.FormatClock(s.sess.TimeLeft())
}

// CapturesEscape keeps Esc from abandoning a running test.
func (s *SessionScreen) CapturesEscape() bool { return true }

func (s *SessionScreen) KeyHints() []layout.KeyHint {
	if s.confirming {
		return []layout.KeyHint{
			{Key: "Y", Description: "Submit"},
			{Key: "N", Description: "Keep going"},
		}
	}
	if s.jumping {
		return []layout.KeyHint{
			{Key: "Enter", Description: "Go"},
			{Key: "Esc", Description: "Cancel"},
		}
	}
	return []layout.KeyHint{
		{Key: "1-4", Description: "Answer"},
		{Key: "X", Description: "Clear"},
		{Key: "M", Description: "Mark"},
		{Key: "N/P", Description: "Next/Prev"},
		{Key: "G", Description: "Go to"},
		{Key: "PgUp/PgDn", Description: "Scroll"},
		{Key: "S", Description: "Submit"},
	}
}

func (s *SessionScreen) View(width, height int) string {
	if s.errMsg != "" {
		return renderError(width, height, s.errMsg)
	}
	if s.confirming {
		return s.renderConfirm(width, height)
	}
	return s.renderExam(width, height)
}

func (s *SessionScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case timerTickMsg:
		return s.handleTimerTick(msg)

	case sessionEndMsg:
		return s.handleSessionEnd(msg)

	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	if s.jumping {
		var cmd tea.Cmd
		s.jump, cmd = s.jump.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *SessionScreen) handleTimerTick(msg timerTickMsg) (screen.Screen, tea.Cmd) {
	if msg.ID != s.sess.Countdown() {
		return s, nil
	}
	expired, err := s.sess.Tick(context.Background(), msg.ID)
	if expired {
		return s, func() tea.Msg { return sessionEndMsg{TimeUp: true, Err: err} }
	}
	return s, tickCmd(msg.ID)
}

func (s *SessionScreen) handleSessionEnd(msg sessionEndMsg) (screen.Screen, tea.Cmd) {
	r, ok := s.sess.Result()
	if !ok {
		return s, func() tea.Msg { return router.PopToRootMsg{} }
	}
	return s, func() tea.Msg {
		return router.ReplaceScreenMsg{
			Screen: newResultsScreenAdapter(s.env, r, msg.TimeUp, msg.Err),
		}
	}
}

func (s *SessionScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	// Error state, any key goes home.
	if s.errMsg != "" {
		return s, func() tea.Msg { return router.PopToRootMsg{} }
	}

	if s.confirming {
		yes, no := confirmButtons()
		switch {
		case yes.Pressed(msg):
			s.confirming = false
			return s, s.submit()
		case no.Pressed(msg), key == "esc":
			s.confirming = false
		}
		return s, nil
	}

	if s.jumping {
		switch key {
		case "esc":
			s.jumping = false
			return s, nil
		case "enter":
			s.jumping = false
			if i, ok := s.jump.Index(); ok {
				s.apply(s.sess.Jump(i))
			}
			return s, nil
		}
		var cmd tea.Cmd
		s.jump, cmd = s.jump.Update(msg)
		return s, cmd
	}

	switch key {
	case "1", "2", "3", "4":
		s.apply(s.sess.SelectIndex(int(key[0] - '1')))
	case "a", "b", "c", "d":
		s.apply(s.sess.SelectIndex(int(key[0] - 'a')))
	case "enter", "space":
		s.apply(s.sess.SelectIndex(s.mc.Cursor))
	case "up", "k", "down", "j":
		s.mc, _ = s.mc.Update(msg)
	case "x":
		s.apply(s.sess.ClearAnswer())
	case "m":
		s.apply(s.sess.ToggleReview())
	case "n", "right":
		s.apply(s.sess.Next())
	case "p", "left":
		s.apply(s.sess.Prev())
	case "g":
		s.jumping = true
		s.jump = components.NewQuestionInput(len(s.sess.Questions()))
		return s, s.jump.Init()
	case "pgdown", "]":
		s.scroll += 5
	case "pgup", "[":
		s.scroll = max(0, s.scroll-5)
	case "s", "esc":
		s.confirming = true
	}
	return s, nil
}

// apply refreshes the option view after a session operation. Operations
// only fail once the session has left PhaseTakingTest.
func (s *SessionScreen) apply(err error) {
	if err != nil && !errors.Is(err, sess.ErrNotTakingTest) {
		s.env.Log().Debug("session action rejected", "error", err)
	}
	s.syncChoice()
}

func (s *SessionScreen) syncChoice() {
	snap := s.sess.Snapshot()
	cursor := s.mc.Cursor
	prevQ := s.mc.Question
	s.mc = components.NewMultiChoice(snap.Question.QuestionText, snap.Question.Options, snap.State.SelectedOption)
	if snap.State.SelectedOption == "" && prevQ == snap.Question.QuestionText {
		s.mc.Cursor = cursor
	}
}

func (s *SessionScreen) submit() tea.Cmd {
	_, err := s.sess.Submit(context.Background())
	if errors.Is(err, sess.ErrNotTakingTest) {
		err = nil
	}
	return func() tea.Msg { return sessionEndMsg{Err: err} }
}

// tickCmd returns a 1-second tick command for one countdown.
func tickCmd(id sess.CountdownID) tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return timerTickMsg{ID: id}
	})
}
