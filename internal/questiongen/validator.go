package questiongen

import (
	"fmt"
	"strings"

	"github.com/abhisek/rcdrill/internal/session"
)

// Validator checks a parsed question set. Implementations should be
// stateless and safe for concurrent use.
type Validator interface {
	// Name identifies the validator in ContractError.Stage.
	Name() string

	// Validate returns nil if the set passes, or a *ContractError.
	Validate(qs []session.Question, expected int) *ContractError
}

// DefaultValidators returns the standard chain in order.
func DefaultValidators() []Validator {
	return []Validator{
		CountValidator{},
		FieldsValidator{},
		OptionsValidator{},
		AnswerMembershipValidator{},
	}
}

// CountValidator requires exactly the expected number of questions.
type CountValidator struct{}

func (CountValidator) Name() string { return "count" }

func (v CountValidator) Validate(qs []session.Question, expected int) *ContractError {
	if len(qs) != expected {
		return &ContractError{
			Stage:   v.Name(),
			Index:   -1,
			Message: fmt.Sprintf("expected %d questions, got %d", expected, len(qs)),
		}
	}
	return nil
}

// FieldsValidator requires every text field to be non-empty after trimming.
type FieldsValidator struct{}

func (FieldsValidator) Name() string { return "fields" }

func (v FieldsValidator) Validate(qs []session.Question, _ int) *ContractError {
	for i, q := range qs {
		fields := []struct{ name, value string }{
			{"questionText", q.QuestionText},
			{"correctAnswerText", q.CorrectAnswerText},
			{"explanation", q.Explanation},
			{"difficultyAssessment", q.DifficultyAssessment},
			{"commonPitfalls", q.CommonPitfalls},
		}
		for _, f := range fields {
			if strings.TrimSpace(f.value) == "" {
				return &ContractError{Stage: v.Name(), Index: i, Message: f.name + " is empty"}
			}
		}
	}
	return nil
}

// OptionsValidator requires exactly four distinct, non-empty options.
type OptionsValidator struct{}

func (OptionsValidator) Name() string { return "options" }

func (v OptionsValidator) Validate(qs []session.Question, _ int) *ContractError {
	for i, q := range qs {
		if len(q.Options) != session.OptionsPerQuestion {
			return &ContractError{
				Stage:   v.Name(),
				Index:   i,
				Message: fmt.Sprintf("expected %d options, got %d", session.OptionsPerQuestion, len(q.Options)),
			}
		}
		seen := make(map[string]bool, len(q.Options))
		for j, opt := range q.Options {
			if strings.TrimSpace(opt) == "" {
				return &ContractError{Stage: v.Name(), Index: i, Message: fmt.Sprintf("option %d is empty", j+1)}
			}
			if seen[opt] {
				return &ContractError{Stage: v.Name(), Index: i, Message: fmt.Sprintf("option %q is repeated", opt)}
			}
			seen[opt] = true
		}
	}
	return nil
}

// AnswerMembershipValidator requires the correct answer to be literally one
// of the options. Selections are compared by exact text.
type AnswerMembershipValidator struct{}

func (AnswerMembershipValidator) Name() string { return "answer-membership" }

func (v AnswerMembershipValidator) Validate(qs []session.Question, _ int) *ContractError {
	for i, q := range qs {
		if !q.HasOption(q.CorrectAnswerText) {
			return &ContractError{
				Stage:   v.Name(),
				Index:   i,
				Message: fmt.Sprintf("correct answer %q is not one of the options", q.CorrectAnswerText),
			}
		}
	}
	return nil
}
