package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Content seeds a new session.
type Content struct {
	PassageText string
	RawPassages []string
	Questions   []Question

	// NumPassages defaults to len(RawPassages).
	NumPassages int

	// TimeBudget is in seconds and defaults to BudgetFor(NumPassages).
	TimeBudget int
}

// Option configures a Session.
type Option func(*Session)

// WithClock replaces the wall clock.
func WithClock(c Clock) Option {
	return func(s *Session) { s.clock = c }
}

// WithSink sets where the result is appended on submission.
func WithSink(sink ResultSink) Option {
	return func(s *Session) { s.sink = sink }
}

// WithLogger sets the session logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithIDFunc overrides result id generation.
func WithIDFunc(f func() string) Option {
	return func(s *Session) { s.newID = f }
}

// Session is one timed attempt over a fixed set of questions. All methods
// are safe for concurrent use, though the UI drives it from a single
// goroutine.
type Session struct {
	mu sync.Mutex

	clock  Clock
	sink   ResultSink
	logger *slog.Logger
	newID  func() string

	questions   []Question
	states      []QuestionState
	current     int
	budget      int
	timeLeft    int
	passageText string
	rawPassages []string
	numPassages int

	phase      Phase
	lastSwitch time.Time
	countdown  CountdownID
	result     *StoredResult
	persistErr error
}

// New builds a session in PhaseReady.
func New(c Content, opts ...Option) (*Session, error) {
	if len(c.Questions) == 0 {
		return nil, ErrNoQuestions
	}

	n := c.NumPassages
	if n == 0 {
		n = len(c.RawPassages)
	}
	budget := c.TimeBudget
	if budget <= 0 {
		budget = BudgetFor(n)
	}

	qs := cloneQuestions(c.Questions)
	s := &Session{
		clock:       realClock{},
		sink:        DiscardSink{},
		logger:      slog.Default(),
		newID:       NewResultID,
		questions:   qs,
		states:      FreshStates(qs),
		budget:      budget,
		timeLeft:    budget,
		passageText: c.PassageText,
		rawPassages: append([]string(nil), c.RawPassages...),
		numPassages: n,
		phase:       PhaseReady,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Reattempt builds a fresh session over the questions of a past result.
// Selections, review marks and time spent all start from zero.
func Reattempt(r StoredResult, opts ...Option) (*Session, error) {
	return New(Content{
		PassageText: r.FullPassage,
		RawPassages: r.RawInputPassages,
		Questions:   r.Questions,
		NumPassages: r.NumberOfPassages,
		TimeBudget:  BudgetFor(r.NumberOfPassages),
	}, opts...)
}

// Start begins the countdown and returns its handle. Ticks must carry the
// returned id; ticks from an older handle are ignored.
func (s *Session) Start() (CountdownID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.countdown != 0 {
		return 0, ErrAlreadyRunning
	}
	if s.phase != PhaseReady {
		return 0, ErrNotReady
	}

	s.phase = PhaseTakingTest
	s.lastSwitch = s.clock.Now()
	s.countdown = nextCountdownID()
	s.logger.Debug("session started",
		"questions", len(s.questions),
		"budget_sec", s.budget,
		"countdown", s.countdown)
	return s.countdown, nil
}

// SelectAnswer records opt as the answer to the current question,
// replacing any earlier selection.
func (s *Session) SelectAnswer(opt string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectLocked(opt)
}

// SelectIndex selects the i-th option of the current question.
func (s *Session) SelectIndex(i int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseTakingTest {
		return ErrNotTakingTest
	}
	opts := s.questions[s.current].Options
	if i < 0 || i >= len(opts) {
		return fmt.Errorf("%w: index %d", ErrUnknownOption, i)
	}
	return s.selectLocked(opts[i])
}

func (s *Session) selectLocked(opt string) error {
	if s.phase != PhaseTakingTest {
		return ErrNotTakingTest
	}
	if !s.questions[s.current].HasOption(opt) {
		return fmt.Errorf("%w: %q", ErrUnknownOption, opt)
	}
	s.states[s.current].SelectedOption = opt
	return nil
}

// ClearAnswer marks the current question unattempted again.
func (s *Session) ClearAnswer() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseTakingTest {
		return ErrNotTakingTest
	}
	s.states[s.current].SelectedOption = ""
	return nil
}

// ToggleReview flips the review mark on the current question.
func (s *Session) ToggleReview() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseTakingTest {
		return ErrNotTakingTest
	}
	st := &s.states[s.current]
	st.IsMarkedForReview = !st.IsMarkedForReview
	return nil
}

// Next moves to the following question. It is a no-op on the last one.
func (s *Session) Next() error {
	return s.move(func(cur int) int { return cur + 1 })
}

// Prev moves to the preceding question. It is a no-op on the first one.
func (s *Session) Prev() error {
	return s.move(func(cur int) int { return cur - 1 })
}

// Jump moves to question i. Out-of-range targets are ignored.
func (s *Session) Jump(i int) error {
	return s.move(func(int) int { return i })
}

func (s *Session) move(target func(cur int) int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseTakingTest {
		return ErrNotTakingTest
	}
	to := target(s.current)
	if to < 0 || to >= len(s.questions) || to == s.current {
		return nil
	}
	s.flushLocked(s.clock.Now())
	s.current = to
	return nil
}

// Tick advances the countdown by one second. When time runs out the session
// is submitted through the same path as Submit and expired is true. Ticks
// for a stale or stopped countdown are ignored.
func (s *Session) Tick(ctx context.Context, id CountdownID) (expired bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseTakingTest || id == 0 || id != s.countdown {
		return false, nil
	}
	s.timeLeft--
	if s.timeLeft > 0 {
		return false, nil
	}
	s.timeLeft = 0
	s.logger.Info("countdown expired, submitting", "countdown", id)
	_, err = s.finishLocked(ctx)
	return true, err
}

// Submit ends the attempt, scores it and appends it to the sink. A non-nil
// error alongside a result reports a persistence failure only; the result
// itself is final.
func (s *Session) Submit(ctx context.Context) (StoredResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseTakingTest {
		return StoredResult{}, ErrNotTakingTest
	}
	return s.finishLocked(ctx)
}

// finishLocked is the only way into PhaseSubmitted.
func (s *Session) finishLocked(ctx context.Context) (StoredResult, error) {
	now := s.clock.Now()
	s.flushLocked(now)
	s.countdown = 0
	s.phase = PhaseSubmitted

	r := BuildResult(ResultInput{
		ID:          s.newID(),
		Date:        now,
		Questions:   s.questions,
		States:      s.states,
		TimeBudget:  s.budget,
		TimeLeft:    s.timeLeft,
		PassageText: s.passageText,
		RawPassages: s.rawPassages,
		NumPassages: s.numPassages,
	})
	s.result = &r

	s.logger.Info("session submitted",
		"id", r.ID,
		"score", r.Score,
		"total", r.TotalPossibleScore,
		"time_taken_sec", r.TimeTakenSec)

	if err := s.sink.Append(ctx, r); err != nil {
		s.persistErr = err
		s.logger.Warn("result not persisted", "id", r.ID, "error", err)
		return r, err
	}
	return r, nil
}

// flushLocked commits whole seconds since the last switch to the current
// question. The total committed never exceeds the countdown's elapsed time.
//
// Per-question time follows the wall clock only while ticks keep up. When
// the countdown lags (a stalled UI loop, a suspended laptop), seconds past
// the countdown's elapsed time are dropped for good rather than carried to
// a later flush; the sum always matches TimeTakenSec. The sub-second
// remainder at each switch is dropped as well.
func (s *Session) flushLocked(now time.Time) {
	delta := int(now.Sub(s.lastSwitch) / time.Second)
	room := (s.budget - s.timeLeft) - s.spentLocked()
	delta = max(0, min(delta, room))
	s.states[s.current].TimeSpentOnQuestion += delta
	s.lastSwitch = now
}

func (s *Session) spentLocked() int {
	total := 0
	for _, st := range s.states {
		total += st.TimeSpentOnQuestion
	}
	return total
}

// Phase returns the current phase.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// CurrentIndex returns the position of the active question.
func (s *Session) CurrentIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Current returns the active question and its state.
func (s *Session) Current() (Question, QuestionState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.questions[s.current].clone(), s.states[s.current]
}

// Questions returns a copy of the question set.
func (s *Session) Questions() []Question {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneQuestions(s.questions)
}

// States returns a copy of the per-question states.
func (s *Session) States() []QuestionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]QuestionState(nil), s.states...)
}

// TimeLeft returns the remaining seconds on the countdown.
func (s *Session) TimeLeft() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timeLeft
}

// TimeBudget returns the total seconds allowed.
func (s *Session) TimeBudget() int {
	return s.budget
}

// PassageText returns the combined, formatted passage text.
func (s *Session) PassageText() string {
	return s.passageText
}

// RawPassages returns the passages as originally entered.
func (s *Session) RawPassages() []string {
	return append([]string(nil), s.rawPassages...)
}

// NumPassages returns the number of passages in the set.
func (s *Session) NumPassages() int {
	return s.numPassages
}

// Countdown returns the live countdown handle, or zero when none is running.
func (s *Session) Countdown() CountdownID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.countdown
}

// Result returns the scored result once submitted.
func (s *Session) Result() (StoredResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return StoredResult{}, false
	}
	return *s.result, true
}

// PersistErr returns the sink error from submission, if any.
func (s *Session) PersistErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persistErr
}

// Snapshot returns a read-only view of the session.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Phase:       s.phase,
		Index:       s.current,
		Total:       len(s.questions),
		Question:    s.questions[s.current].clone(),
		State:       s.states[s.current],
		States:      append([]QuestionState(nil), s.states...),
		TimeBudget:  s.budget,
		TimeLeft:    s.timeLeft,
		NumPassages: s.numPassages,
	}
	for _, st := range s.states {
		if st.Attempted() {
			snap.Answered++
		}
		if st.IsMarkedForReview {
			snap.Marked++
		}
	}
	return snap
}
