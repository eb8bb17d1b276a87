package questiongen

import (
	"fmt"
	"strings"
)

const reformatSystemPrompt = `You are a careful copy editor preparing passages for a reading comprehension exercise.
Return only the reformatted passage text. Do not add titles, commentary, or notes.`

const questionSystemPrompt = `You are an expert test designer for competitive exams like CAT and GMAT. Your primary goal is to create challenging and insightful multiple-choice questions based on provided reading comprehension passages, adhering strictly to the user's formatting and content requirements.`

// buildReformatMessage asks for a readability pass over passage i (0-based) of n.
func buildReformatMessage(i, n int, text string) string {
	return fmt.Sprintf("Please reformat the following passage (Passage %d of %d) for optimal readability. "+
		"Ensure paragraphs are well-defined, keep the original paragraph breaks, remove any redundant spacing "+
		"or unconventional formatting, and present it as clean text suitable for a reading comprehension exercise. "+
		"Do not add commentary; respond with the reformatted text only:\n\n%s", i+1, n, text)
}

// CombinePassages joins reformatted passages into the text shown during
// the test, each delimited by numbered start and end markers.
func CombinePassages(formatted []string) string {
	parts := make([]string, len(formatted))
	for i, p := range formatted {
		parts[i] = fmt.Sprintf("[START OF PASSAGE %d]\n%s\n[END OF PASSAGE %d]", i+1, p, i+1)
	}
	return strings.Join(parts, "\n\n---\n\n")
}

// buildQuestionMessage asks for exactly expected questions over the
// combined passage text.
func buildQuestionMessage(combined string, expected int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Based on the provided passage(s), generate EXACTLY %d multiple-choice questions.\n", expected)
	b.WriteString(`The questions should rigorously test critical reading and analytical skills, comparable in style and difficulty to the CAT and GMAT verbal sections.

Use a diverse mix of question types, including:
- Main idea or primary purpose of the passage(s) or of specific paragraphs.
- Inference: information that must be deduced, not stated.
- Specific detail: explicitly stated facts or arguments.
- Application of the passage's ideas to new situations.
- Logical structure: how the passage is organized.
- Author's tone, attitude or style.
- Vocabulary in context.
- Weaken or strengthen, when a passage makes an argument.

Distractors must be plausible and sophisticated. Correct answers must be unambiguously supported by the passage.

`)
	fmt.Fprintf(&b, "Respond with a single JSON array of exactly %d objects and nothing else. No markdown fences.\n", expected)
	b.WriteString(`Each object has these fields, all mandatory and non-empty:
{
  "questionText": "the question",
  "options": ["option A", "option B", "option C", "option D"],
  "correctAnswerText": "must exactly match one of the four options",
  "explanation": "why the correct answer is right and the others are wrong",
  "difficultyAssessment": "e.g. CAT-Medium (75-85th percentile) or GMAT 700+ level",
  "commonPitfalls": "specific traps that lead test takers astray"
}
"options" must hold exactly four distinct strings.

Passage(s):
---
`)
	b.WriteString(combined)
	b.WriteString("\n---\nYour output must be only the JSON array described above.")
	return b.String()
}
