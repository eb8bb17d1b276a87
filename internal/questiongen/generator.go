// Package questiongen turns raw passages into a reformatted passage text and
// a validated reading-comprehension question set.
package questiongen

import (
	"context"

	"github.com/abhisek/rcdrill/internal/session"
)

// Generator produces session content from user passages.
type Generator interface {
	// Generate reformats every passage, then writes
	// session.QuestionsPerPassage questions per passage. Nothing is returned
	// unless both steps succeed.
	Generate(ctx context.Context, passages []string) (session.Content, error)
}

// Step names a generation call reported through Config.OnProgress.
type Step string

const (
	StepReformat  Step = "reformat"
	StepQuestions Step = "questions"
)

// Progress reports completed calls within a step.
type Progress struct {
	Step  Step
	Done  int
	Total int
}

type progressKey struct{}

// WithProgress returns a context whose generation calls also report to fn.
// It complements Config.OnProgress for callers that track one request.
func WithProgress(ctx context.Context, fn func(Progress)) context.Context {
	return context.WithValue(ctx, progressKey{}, fn)
}
