// Package practice wires intake, generation, the session engine and
// history into one practice lifecycle.
package practice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/abhisek/rcdrill/internal/history"
	"github.com/abhisek/rcdrill/internal/intake"
	"github.com/abhisek/rcdrill/internal/llm"
	"github.com/abhisek/rcdrill/internal/questiongen"
	"github.com/abhisek/rcdrill/internal/session"
)

// ErrWrongPhase is returned when a flow step is called out of order.
var ErrWrongPhase = errors.New("practice step not allowed in current phase")

// ErrNoResult is returned when re-attempting an unknown result id.
var ErrNoResult = errors.New("no stored result with that id")

// Option configures a Flow.
type Option func(*Flow)

// WithLogger sets the flow logger.
func WithLogger(l *slog.Logger) Option {
	return func(f *Flow) { f.logger = l }
}

// WithLocation sets the calendar used for days named in errors.
// Default: time.Local.
func WithLocation(loc *time.Location) Option {
	return func(f *Flow) { f.loc = loc }
}

// WithSessionOptions adds options applied to every session the flow builds.
func WithSessionOptions(opts ...session.Option) Option {
	return func(f *Flow) { f.sessionOpts = append(f.sessionOpts, opts...) }
}

// Flow owns the configuring and content phases and hands over to a
// session once questions are ready. A Flow is driven from one goroutine.
type Flow struct {
	gen         questiongen.Generator
	hist        *history.Store
	logger      *slog.Logger
	loc         *time.Location
	sessionOpts []session.Option

	phase       session.Phase
	numPassages int
	passages    []string
	sess        *session.Session
}

// NewFlow creates a flow in PhaseConfiguring. gen may be nil when no
// provider is configured; Generate then fails with the configuration error.
func NewFlow(gen questiongen.Generator, hist *history.Store, opts ...Option) *Flow {
	f := &Flow{
		gen:    gen,
		hist:   hist,
		logger: slog.Default(),
		loc:    time.Local,
		phase:  session.PhaseConfiguring,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Phase returns the current lifecycle phase. Once a session exists its
// phase is reported.
func (f *Flow) Phase() session.Phase {
	if f.sess != nil {
		return f.sess.Phase()
	}
	return f.phase
}

// NumPassages returns the configured passage count.
func (f *Flow) NumPassages() int { return f.numPassages }

// Passages returns the passages last submitted, for re-editing.
func (f *Flow) Passages() []string {
	return append([]string(nil), f.passages...)
}

// Session returns the live session, or nil before content is ready.
func (f *Flow) Session() *session.Session { return f.sess }

// History returns the backing history store.
func (f *Flow) History() *history.Store { return f.hist }

// Configure fixes the number of passages and moves to PhaseAwaitingContent.
func (f *Flow) Configure(n int) error {
	if f.Phase() != session.PhaseConfiguring {
		return ErrWrongPhase
	}
	if !intake.ValidCount(n) {
		return intake.ErrPassageCount
	}
	f.numPassages = n
	f.passages = make([]string, n)
	f.phase = session.PhaseAwaitingContent
	return nil
}

// Submit validates passages and records them. On success the trimmed
// passages are returned, ready for Generate.
func (f *Flow) Submit(passages []string) ([]string, error) {
	if f.Phase() != session.PhaseAwaitingContent {
		return nil, ErrWrongPhase
	}
	f.passages = append([]string(nil), passages...)

	checked, err := intake.Check(passages, f.numPassages, f.hist)
	var dup *intake.DuplicateError
	if errors.As(err, &dup) {
		dup.Location = f.loc
	}
	if err != nil {
		f.logger.Info("passages rejected", "error", err)
		return nil, err
	}
	return checked, nil
}

// Generate calls the generator. It touches no flow state, so callers may
// run it off the UI goroutine and hand the content to Accept.
func (f *Flow) Generate(ctx context.Context, passages []string) (session.Content, error) {
	if f.gen == nil {
		return session.Content{}, fmt.Errorf("question generation unavailable: %w", llm.ErrNotConfigured)
	}
	return f.gen.Generate(ctx, passages)
}

// Accept builds the session from generated content. The session writes
// its result into history on finish. Like every step other than
// Reattempt, it is refused while a test is running.
func (f *Flow) Accept(c session.Content) (*session.Session, error) {
	if f.Phase() != session.PhaseAwaitingContent {
		return nil, ErrWrongPhase
	}
	s, err := session.New(c, f.options()...)
	if err != nil {
		return nil, err
	}
	f.sess = s
	f.phase = session.PhaseReady
	f.logger.Info("practice ready",
		"passages", c.NumPassages,
		"questions", len(c.Questions),
		"budget_sec", s.TimeBudget())
	return s, nil
}

// Prepare runs Submit, Generate and Accept in sequence.
func (f *Flow) Prepare(ctx context.Context, passages []string) (*session.Session, error) {
	checked, err := f.Submit(passages)
	if err != nil {
		return nil, err
	}
	c, err := f.Generate(ctx, checked)
	if err != nil {
		return nil, err
	}
	return f.Accept(c)
}

// Reattempt replaces any current state with a fresh session over a stored
// result's questions. It fails with ErrWrongPhase while a test is running,
// so at most one countdown is ever live.
func (f *Flow) Reattempt(id string) (*session.Session, error) {
	if f.Phase() == session.PhaseTakingTest {
		return nil, ErrWrongPhase
	}
	r, ok := f.hist.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoResult, id)
	}
	s, err := session.Reattempt(r, f.options()...)
	if err != nil {
		return nil, err
	}
	f.sess = s
	f.numPassages = r.NumberOfPassages
	f.passages = append([]string(nil), r.RawInputPassages...)
	f.phase = session.PhaseReady
	return s, nil
}

// Recover applies the recovery action for err.
func (f *Flow) Recover(err error) Recovery {
	rec := RecoveryFor(err)
	switch rec {
	case RecoverEditInput:
		f.sess = nil
		f.phase = session.PhaseAwaitingContent
	case RecoverReset:
		f.Reset()
	}
	return rec
}

// Reset discards the session and all input.
func (f *Flow) Reset() {
	f.sess = nil
	f.numPassages = 0
	f.passages = nil
	f.phase = session.PhaseConfiguring
}

func (f *Flow) options() []session.Option {
	opts := []session.Option{
		session.WithSink(HistorySink(f.hist)),
		session.WithLogger(f.logger),
	}
	return append(opts, f.sessionOpts...)
}

// HistorySink appends finished results to h.
func HistorySink(h *history.Store) session.ResultSink {
	return session.SinkFunc(func(ctx context.Context, r session.StoredResult) error {
		return h.Append(ctx, r)
	})
}
