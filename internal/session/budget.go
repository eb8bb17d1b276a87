package session

const (
	// QuestionsPerPassage is the number of questions generated for each passage.
	QuestionsPerPassage = 5

	// MinPassages and MaxPassages bound a single practice set.
	MinPassages = 1
	MaxPassages = 4

	// DefaultBudget is the time allowed when the passage count is unexpected.
	DefaultBudget = 15 * 60
)

// BudgetFor returns the test duration in seconds for a set of n passages.
func BudgetFor(n int) int {
	switch n {
	case 1:
		return 15 * 60
	case 2:
		return 24 * 60
	case 3:
		return 30 * 60
	case 4:
		return 35 * 60
	default:
		return DefaultBudget
	}
}

// ExpectedQuestions returns how many questions a set of n passages yields.
func ExpectedQuestions(n int) int {
	return n * QuestionsPerPassage
}
