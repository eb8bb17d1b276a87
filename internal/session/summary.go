package session

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Scoring weights. There is no floor: a total score may be negative.
const (
	PointsCorrect     = 3
	PointsIncorrect   = -1
	PointsUnattempted = 0
)

// Outcome classifies a single answered (or skipped) question.
type Outcome int

const (
	OutcomeUnattempted Outcome = iota
	OutcomeCorrect
	OutcomeIncorrect
)

// Points returns the score contribution of the outcome.
func (o Outcome) Points() int {
	switch o {
	case OutcomeCorrect:
		return PointsCorrect
	case OutcomeIncorrect:
		return PointsIncorrect
	default:
		return PointsUnattempted
	}
}

func (o Outcome) String() string {
	switch o {
	case OutcomeCorrect:
		return "correct"
	case OutcomeIncorrect:
		return "incorrect"
	default:
		return "unattempted"
	}
}

// Classify grades one question against its state.
func Classify(q Question, st QuestionState) Outcome {
	switch {
	case st.SelectedOption == "":
		return OutcomeUnattempted
	case st.SelectedOption == q.CorrectAnswerText:
		return OutcomeCorrect
	default:
		return OutcomeIncorrect
	}
}

// StoredResult is the immutable record of one submitted attempt.
type StoredResult struct {
	ID                 string          `json:"id"`
	Date               time.Time       `json:"dateISO"`
	Score              int             `json:"score"`
	TotalPossibleScore int             `json:"totalPossibleScore"`
	TimeTakenSec       int             `json:"timeTakenSec"`
	CorrectCount       int             `json:"correctCount"`
	IncorrectCount     int             `json:"incorrectCount"`
	UnattemptedCount   int             `json:"unattemptedCount"`
	PassageSummary     string          `json:"passageSummary"`
	FullPassage        string          `json:"fullPassage"`
	RawInputPassages   []string        `json:"rawInputPassages"`
	Questions          []Question      `json:"questions"`
	QuestionStates     []QuestionState `json:"questionStates"`
	NumberOfPassages   int             `json:"numberOfPassages"`
}

// QuestionCount returns the number of questions in the attempt.
func (r StoredResult) QuestionCount() int {
	return len(r.Questions)
}

// Outcomes grades every question of the result in order.
func (r StoredResult) Outcomes() []Outcome {
	out := make([]Outcome, len(r.Questions))
	for i, q := range r.Questions {
		var st QuestionState
		if i < len(r.QuestionStates) {
			st = r.QuestionStates[i]
		}
		out[i] = Classify(q, st)
	}
	return out
}

// ResultInput is the final state handed to BuildResult.
type ResultInput struct {
	ID          string
	Date        time.Time
	Questions   []Question
	States      []QuestionState
	TimeBudget  int
	TimeLeft    int
	PassageText string
	RawPassages []string
	NumPassages int
}

// BuildResult scores the final state of an attempt. It is pure: identical
// input always yields identical scoring fields.
func BuildResult(in ResultInput) StoredResult {
	r := StoredResult{
		ID:                 in.ID,
		Date:               in.Date.UTC(),
		TotalPossibleScore: PointsCorrect * len(in.Questions),
		TimeTakenSec:       max(0, in.TimeBudget-in.TimeLeft),
		PassageSummary:     PassageSummary(in.PassageText, in.NumPassages),
		FullPassage:        in.PassageText,
		RawInputPassages:   append([]string(nil), in.RawPassages...),
		Questions:          cloneQuestions(in.Questions),
		NumberOfPassages:   in.NumPassages,
	}

	r.QuestionStates = make([]QuestionState, len(in.Questions))
	for i, q := range in.Questions {
		st := QuestionState{QuestionID: q.ID}
		if i < len(in.States) {
			st = in.States[i]
		}
		r.QuestionStates[i] = st

		o := Classify(q, st)
		r.Score += o.Points()
		switch o {
		case OutcomeCorrect:
			r.CorrectCount++
		case OutcomeIncorrect:
			r.IncorrectCount++
		default:
			r.UnattemptedCount++
		}
	}

	return r
}

// PassageSummary builds the short snippet shown in history listings.
func PassageSummary(full string, numPassages int) string {
	runes := []rune(full)
	if numPassages > 1 {
		return fmt.Sprintf("%d passages. First: %s...", numPassages, string(runes[:min(75, len(runes))]))
	}
	if len(runes) > 100 {
		return string(runes[:100]) + "..."
	}
	return full
}

// NewResultID returns a time-ordered random identifier.
func NewResultID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
