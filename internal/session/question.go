package session

// OptionsPerQuestion is the number of answer options every question carries.
const OptionsPerQuestion = 4

// Question is one generated multiple-choice question. Questions are never
// mutated once a session has been built from them.
type Question struct {
	ID                   string   `json:"id"`
	QuestionText         string   `json:"questionText"`
	Options              []string `json:"options"`
	CorrectAnswerText    string   `json:"correctAnswerText"`
	Explanation          string   `json:"explanation"`
	DifficultyAssessment string   `json:"difficultyAssessment"`
	CommonPitfalls       string   `json:"commonPitfalls"`
}

// HasOption reports whether opt is literally one of the question's options.
func (q Question) HasOption(opt string) bool {
	for _, o := range q.Options {
		if o == opt {
			return true
		}
	}
	return false
}

// OptionIndex returns the position of opt in Options, or -1.
func (q Question) OptionIndex(opt string) int {
	for i, o := range q.Options {
		if o == opt {
			return i
		}
	}
	return -1
}

func (q Question) clone() Question {
	q.Options = append([]string(nil), q.Options...)
	return q
}

// QuestionState is the learner's progress on a single question. An empty
// SelectedOption means the question is unattempted.
type QuestionState struct {
	QuestionID          string `json:"questionId"`
	SelectedOption      string `json:"selectedOption"`
	IsMarkedForReview   bool   `json:"isMarkedForReview"`
	TimeSpentOnQuestion int    `json:"timeSpentOnQuestion"`
}

// Attempted reports whether an option has been selected.
func (s QuestionState) Attempted() bool {
	return s.SelectedOption != ""
}

// FreshStates returns one zeroed state per question, in question order.
func FreshStates(questions []Question) []QuestionState {
	states := make([]QuestionState, len(questions))
	for i, q := range questions {
		states[i] = QuestionState{QuestionID: q.ID}
	}
	return states
}

func cloneQuestions(qs []Question) []Question {
	out := make([]Question, len(qs))
	for i, q := range qs {
		out[i] = q.clone()
	}
	return out
}
