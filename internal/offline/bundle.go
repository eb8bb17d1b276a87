// Package offline writes a practice set into a single self-contained HTML
// file and reads it back, so the same session engine can replay it
// without network access or history.
package offline

import (
	"errors"
	"fmt"
	"time"

	"github.com/abhisek/rcdrill/internal/session"
)

// Version is the current bundle format version.
const Version = 1

// Bundle is the literal data embedded in an offline file.
type Bundle struct {
	Version           int                `json:"version"`
	PassageText       string             `json:"passageText"`
	RawPassages       []string           `json:"rawPassages"`
	Questions         []session.Question `json:"questions"`
	TimeBudgetSeconds int                `json:"timeBudgetSeconds"`
	NumberOfPassages  int                `json:"numberOfPassages"`
	CreatedAt         time.Time          `json:"createdAt"`
}

// ErrInvalidBundle wraps every bundle validation failure.
var ErrInvalidBundle = errors.New("invalid offline bundle")

// Validate checks the bundle can seed a session.
func (b Bundle) Validate() error {
	switch {
	case b.Version != Version:
		return fmt.Errorf("%w: unsupported version %d", ErrInvalidBundle, b.Version)
	case len(b.Questions) == 0:
		return fmt.Errorf("%w: no questions", ErrInvalidBundle)
	case b.TimeBudgetSeconds <= 0:
		return fmt.Errorf("%w: time budget must be positive", ErrInvalidBundle)
	}
	for i, q := range b.Questions {
		if len(q.Options) != session.OptionsPerQuestion || !q.HasOption(q.CorrectAnswerText) {
			return fmt.Errorf("%w: question %d is malformed", ErrInvalidBundle, i+1)
		}
	}
	return nil
}

// Content converts the bundle into session content.
func (b Bundle) Content() session.Content {
	return session.Content{
		PassageText: b.PassageText,
		RawPassages: append([]string(nil), b.RawPassages...),
		Questions:   b.Questions,
		NumPassages: b.NumberOfPassages,
		TimeBudget:  b.TimeBudgetSeconds,
	}
}

// FromSession captures the content a session was built from.
func FromSession(s *session.Session) Bundle {
	return Bundle{
		Version:           Version,
		PassageText:       s.PassageText(),
		RawPassages:       s.RawPassages(),
		Questions:         s.Questions(),
		TimeBudgetSeconds: s.TimeBudget(),
		NumberOfPassages:  s.NumPassages(),
		CreatedAt:         time.Now().UTC(),
	}
}

// FromResult builds a fresh bundle over a stored attempt's questions. The
// budget is recomputed from the passage count, as for a re-attempt.
func FromResult(r session.StoredResult) Bundle {
	return Bundle{
		Version:           Version,
		PassageText:       r.FullPassage,
		RawPassages:       append([]string(nil), r.RawInputPassages...),
		Questions:         append([]session.Question(nil), r.Questions...),
		TimeBudgetSeconds: session.BudgetFor(r.NumberOfPassages),
		NumberOfPassages:  r.NumberOfPassages,
		CreatedAt:         time.Now().UTC(),
	}
}

// NewSession seeds a Ready session from the bundle. Results are discarded
// regardless of opts: offline attempts never reach history.
func NewSession(b Bundle, opts ...session.Option) (*session.Session, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	opts = append(opts, session.WithSink(session.DiscardSink{}))
	return session.New(b.Content(), opts...)
}
