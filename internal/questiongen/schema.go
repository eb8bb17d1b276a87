package questiongen

import (
	"fmt"

	"github.com/abhisek/rcdrill/internal/llm"
	"github.com/abhisek/rcdrill/internal/session"
)

var nonEmptyString = map[string]any{"type": "string", "minLength": 1}

// QuestionSetSchema describes a response of exactly expected questions.
// The schema name carries the count so each size compiles once.
func QuestionSetSchema(expected int) *llm.Schema {
	return &llm.Schema{
		Name:        fmt.Sprintf("rc-question-set-%d", expected),
		Description: "A set of reading comprehension multiple-choice questions",
		Definition: map[string]any{
			"type":     "array",
			"minItems": expected,
			"maxItems": expected,
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"questionText": nonEmptyString,
					"options": map[string]any{
						"type":     "array",
						"items":    nonEmptyString,
						"minItems": session.OptionsPerQuestion,
						"maxItems": session.OptionsPerQuestion,
					},
					"correctAnswerText":    nonEmptyString,
					"explanation":          nonEmptyString,
					"difficultyAssessment": nonEmptyString,
					"commonPitfalls":       nonEmptyString,
				},
				"required": []any{
					"questionText", "options", "correctAnswerText",
					"explanation", "difficultyAssessment", "commonPitfalls",
				},
			},
		},
	}
}
