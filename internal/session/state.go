package session

import (
	"errors"
	"time"
)

// Phase is a step of the practice lifecycle.
type Phase int

const (
	PhaseConfiguring     Phase = iota // Choosing the number of passages
	PhaseAwaitingContent              // Collecting passage text, generation pending
	PhaseReady                        // Questions ready, waiting for the test-mode choice
	PhaseTakingTest                   // Countdown running
	PhaseSubmitted                    // Scored and read-only
)

var phaseNames = [...]string{
	PhaseConfiguring:     "configuring",
	PhaseAwaitingContent: "awaiting-content",
	PhaseReady:           "ready",
	PhaseTakingTest:      "taking-test",
	PhaseSubmitted:       "submitted",
}

func (p Phase) String() string {
	if int(p) < 0 || int(p) >= len(phaseNames) {
		return "unknown"
	}
	return phaseNames[p]
}

// MarshalText renders the phase name in JSON and logs.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

var (
	// ErrNotTakingTest is returned by mutating operations outside PhaseTakingTest.
	ErrNotTakingTest = errors.New("session is not taking a test")

	// ErrNotReady is returned by Start when the session is not in PhaseReady.
	ErrNotReady = errors.New("session is not ready to start")

	// ErrAlreadyRunning is returned by Start when a countdown is still live.
	ErrAlreadyRunning = errors.New("countdown already running")

	// ErrUnknownOption is returned when a selection is not one of the question's options.
	ErrUnknownOption = errors.New("option is not one of the question's options")

	// ErrNoQuestions is returned when building a session without questions.
	ErrNoQuestions = errors.New("session needs at least one question")
)

// Clock abstracts wall-clock time for the session.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Snapshot is a read-only view of a session for renderers.
type Snapshot struct {
	Phase       Phase
	Index       int
	Total       int
	Question    Question
	State       QuestionState
	States      []QuestionState
	TimeBudget  int
	TimeLeft    int
	Answered    int
	Marked      int
	NumPassages int
}

// IsFirst reports whether the current question is the first one.
func (s Snapshot) IsFirst() bool { return s.Index == 0 }

// IsLast reports whether the current question is the last one.
func (s Snapshot) IsLast() bool { return s.Index == s.Total-1 }
