package session

import (
	sess "github.com/abhisek/rcdrill/internal/session"
)

// timerTickMsg is sent every second for one countdown. Ticks whose ID no
// longer matches the session's countdown are dropped.
type timerTickMsg struct {
	ID sess.CountdownID
}

// sessionEndMsg is sent once the session reaches PhaseSubmitted.
type sessionEndMsg struct {
	TimeUp bool
	Err    error
}
