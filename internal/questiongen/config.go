package questiongen

// Config controls the behavior of the LLMGenerator.
type Config struct {
	// Validators run in order over the parsed question set. The first
	// failure stops the pipeline.
	Validators []Validator

	// ReformatMaxTokens is the token budget for one reformatted passage.
	ReformatMaxTokens int

	// QuestionMaxTokens is the token budget for the whole question set.
	QuestionMaxTokens int

	// Temperature controls LLM output randomness (0.0-1.0).
	Temperature float64

	// OnProgress, when set, is called after each finished call. It may be
	// invoked from several goroutines during reformatting.
	OnProgress func(Progress)
}

// DefaultConfig returns a Config with the standard validator chain.
func DefaultConfig() Config {
	return Config{
		Validators:        DefaultValidators(),
		ReformatMaxTokens: 4096,
		QuestionMaxTokens: 16384,
		Temperature:       0.7,
	}
}
