package questiongen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/rcdrill/internal/llm"
	"github.com/abhisek/rcdrill/internal/session"
)

func questionJSON(i int) map[string]any {
	return map[string]any{
		"questionText":         fmt.Sprintf("Question %d?", i),
		"options":              []string{"alpha", "beta", "gamma", "delta"},
		"correctAnswerText":    "beta",
		"explanation":          "Because the second paragraph says so.",
		"difficultyAssessment": "CAT-Medium (75-85th percentile)",
		"commonPitfalls":       "Reading too much into the first line.",
	}
}

func questionSet(n int) []map[string]any {
	out := make([]map[string]any, n)
	for i := range out {
		out[i] = questionJSON(i)
	}
	return out
}

func encode(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}

// scriptedProvider answers reformat calls by echoing the passage number and
// question calls with a fixed body.
type scriptedProvider struct {
	mu        sync.Mutex
	questions string
	reformErr error
	purposes  []string
}

func (p *scriptedProvider) Generate(ctx context.Context, req llm.Request) (*llm.Response, error) {
	p.mu.Lock()
	p.purposes = append(p.purposes, llm.PurposeFrom(ctx))
	p.mu.Unlock()

	msg := req.Messages[0].Content
	if llm.PurposeFrom(ctx) == PurposeReformat {
		if p.reformErr != nil {
			return nil, p.reformErr
		}
		var i, n int
		fmt.Sscanf(msg[strings.Index(msg, "(Passage "):], "(Passage %d of %d)", &i, &n)
		return &llm.Response{Content: json.RawMessage(fmt.Sprintf("  formatted %d of %d  ", i, n))}, nil
	}
	return &llm.Response{Content: json.RawMessage(p.questions)}, nil
}

func (p *scriptedProvider) ModelID() string { return "scripted" }

func TestGenerate_SinglePassage(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResponse{Content: json.RawMessage("The tide turned.\n\nThen it ebbed.")},
		llm.MockResponse{Content: json.RawMessage("```json\n" + encode(t, questionSet(5)) + "\n```")},
	)
	gen := New(mock, DefaultConfig())

	c, err := gen.Generate(context.Background(), []string{"the tide   turned. then it ebbed."})
	require.NoError(t, err)

	assert.Equal(t, "[START OF PASSAGE 1]\nThe tide turned.\n\nThen it ebbed.\n[END OF PASSAGE 1]", c.PassageText)
	assert.Equal(t, []string{"the tide   turned. then it ebbed."}, c.RawPassages)
	assert.Equal(t, 1, c.NumPassages)
	assert.Equal(t, 900, c.TimeBudget)
	require.Len(t, c.Questions, 5)
	for i, q := range c.Questions {
		assert.Equal(t, fmt.Sprintf("q-%d", i), q.ID)
		assert.Equal(t, "beta", q.CorrectAnswerText)
	}

	require.Equal(t, 2, mock.CallCount())
	assert.Contains(t, mock.Calls[0].Messages[0].Content, "(Passage 1 of 1)")
	assert.True(t, mock.Calls[1].JSONMode)
	assert.Contains(t, mock.Calls[1].Messages[0].Content, "EXACTLY 5")
}

func TestGenerate_MultiplePassagesKeepOrder(t *testing.T) {
	p := &scriptedProvider{questions: encode(t, questionSet(15))}

	var mu sync.Mutex
	var steps []Progress
	cfg := DefaultConfig()
	cfg.OnProgress = func(pr Progress) {
		mu.Lock()
		steps = append(steps, pr)
		mu.Unlock()
	}

	c, err := New(p, cfg).Generate(context.Background(), []string{"one", "two", "three"})
	require.NoError(t, err)

	want := "[START OF PASSAGE 1]\nformatted 1 of 3\n[END OF PASSAGE 1]" +
		"\n\n---\n\n[START OF PASSAGE 2]\nformatted 2 of 3\n[END OF PASSAGE 2]" +
		"\n\n---\n\n[START OF PASSAGE 3]\nformatted 3 of 3\n[END OF PASSAGE 3]"
	assert.Equal(t, want, c.PassageText)
	assert.Len(t, c.Questions, 15)
	assert.Equal(t, 1800, c.TimeBudget)

	require.Len(t, steps, 4)
	assert.Equal(t, Progress{Step: StepQuestions, Done: 1, Total: 1}, steps[3])
	assert.Equal(t, PurposeQuestions, p.purposes[len(p.purposes)-1])
}

func TestGenerate_OfflineProvider(t *testing.T) {
	mock := llm.NewOfflineProvider()
	passages := []string{"Tides rise.\n\nTides fall.", "Moons pull."}

	c, err := New(mock, DefaultConfig()).Generate(context.Background(), passages)
	require.NoError(t, err)

	assert.Contains(t, c.PassageText, "[START OF PASSAGE 1]\nTides rise.\n\nTides fall.\n[END OF PASSAGE 1]")
	assert.Contains(t, c.PassageText, "[START OF PASSAGE 2]\nMoons pull.\n[END OF PASSAGE 2]")
	require.Len(t, c.Questions, session.ExpectedQuestions(2))
	for _, q := range c.Questions {
		assert.True(t, q.HasOption(q.CorrectAnswerText), q.QuestionText)
	}

	require.Equal(t, 3, mock.CallCount())
	assert.Equal(t, session.ExpectedQuestions(2), mock.Calls[2].Items)
}

func TestGenerate_ReformatFailureAborts(t *testing.T) {
	p := &scriptedProvider{reformErr: &llm.ErrProviderUnavailable{}}

	_, err := New(p, DefaultConfig()).Generate(context.Background(), []string{"one", "two"})
	require.Error(t, err)
	var unavail *llm.ErrProviderUnavailable
	assert.True(t, errors.As(err, &unavail))
	assert.NotContains(t, p.purposes, PurposeQuestions)
}

func TestGenerate_NoPassages(t *testing.T) {
	_, err := New(llm.NewMockProvider(), DefaultConfig()).Generate(context.Background(), nil)
	assert.Error(t, err)
}

func TestGenerate_ContractFailures(t *testing.T) {
	wrongAnswer := questionSet(5)
	wrongAnswer[2]["correctAnswerText"] = "Beta"

	blankField := questionSet(5)
	blankField[4]["explanation"] = "   "

	dupOptions := questionSet(5)
	dupOptions[1]["options"] = []string{"alpha", "alpha", "gamma", "delta"}

	tests := []struct {
		name      string
		body      string
		wantStage string
		wantIndex int
	}{
		{"empty", "  \n ", StageFence, -1},
		{"empty fence", "```json\n```", StageJSON, -1},
		{"not json", "Here are your questions!", StageJSON, -1},
		{"object not array", encode(t, questionJSON(0)), StageJSON, -1},
		{"short count", encode(t, questionSet(4)), StageSchema, -1},
		{"answer not an option", encode(t, wrongAnswer), "answer-membership", 2},
		{"whitespace field", encode(t, blankField), "fields", 4},
		{"repeated option", encode(t, dupOptions), "options", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := llm.NewMockProvider(
				llm.MockResponse{Content: json.RawMessage("passage")},
				llm.MockResponse{Content: json.RawMessage(tt.body)},
			)
			_, err := New(mock, DefaultConfig()).Generate(context.Background(), []string{"p"})
			require.Error(t, err)

			var cerr *ContractError
			require.True(t, errors.As(err, &cerr), "got %T: %v", err, err)
			assert.Equal(t, tt.wantStage, cerr.Stage)
			assert.Equal(t, tt.wantIndex, cerr.Index)
		})
	}
}

func TestStripFence(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"[1]", "[1]"},
		{"  [1]\n", "[1]"},
		{"```json\n[1]\n```", "[1]"},
		{"```\n[1, 2]\n```", "[1, 2]"},
		{"```[1]```", "[1]"},
		{"```json\n[\n  {\"a\": 1}\n]\n  ```", "[\n  {\"a\": 1}\n]"},
		{"prefix ```json\n[1]\n```", "prefix ```json\n[1]\n```"},
	}
	for _, tt := range tests {
		if got := StripFence(tt.in); got != tt.want {
			t.Errorf("StripFence(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestValidatorsDirect(t *testing.T) {
	good := []session.Question{{
		QuestionText:         "Q",
		Options:              []string{"a", "b", "c", "d"},
		CorrectAnswerText:    "c",
		Explanation:          "e",
		DifficultyAssessment: "d",
		CommonPitfalls:       "p",
	}}
	for _, v := range DefaultValidators() {
		assert.Nil(t, v.Validate(good, 1), v.Name())
	}

	cerr := CountValidator{}.Validate(good, 5)
	require.NotNil(t, cerr)
	assert.Equal(t, "generation contract (count): expected 5 questions, got 1", cerr.Error())

	three := []session.Question{good[0]}
	three[0].Options = []string{"a", "b", "c"}
	cerr = OptionsValidator{}.Validate(three, 1)
	require.NotNil(t, cerr)
	assert.Equal(t, "generation contract (options): question 1: expected 4 options, got 3", cerr.Error())
}

func TestCombinePassages(t *testing.T) {
	assert.Equal(t, "[START OF PASSAGE 1]\nA\n[END OF PASSAGE 1]", CombinePassages([]string{"A"}))
	assert.Equal(t,
		"[START OF PASSAGE 1]\nA\n[END OF PASSAGE 1]\n\n---\n\n[START OF PASSAGE 2]\nB\n[END OF PASSAGE 2]",
		CombinePassages([]string{"A", "B"}))
}

func TestQuestionPromptMentionsCountAndPassage(t *testing.T) {
	msg := buildQuestionMessage("[START OF PASSAGE 1]\nX\n[END OF PASSAGE 1]", 10)
	assert.Contains(t, msg, "EXACTLY 10 multiple-choice")
	assert.Contains(t, msg, "exactly 10 objects")
	assert.Contains(t, msg, "[START OF PASSAGE 1]\nX\n[END OF PASSAGE 1]")
	assert.Contains(t, msg, "Vocabulary in context")
}

func TestGenerate_ContextProgress(t *testing.T) {
	p := &scriptedProvider{questions: encode(t, questionSet(10))}

	var mu sync.Mutex
	var steps []Progress
	ctx := WithProgress(context.Background(), func(pr Progress) {
		mu.Lock()
		steps = append(steps, pr)
		mu.Unlock()
	})

	_, err := New(p, DefaultConfig()).Generate(ctx, []string{"one", "two"})
	require.NoError(t, err)
	require.Len(t, steps, 3)
	assert.Equal(t, StepQuestions, steps[2].Step)
}
