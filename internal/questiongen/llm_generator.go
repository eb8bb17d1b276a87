package questiongen

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/abhisek/rcdrill/internal/llm"
	"github.com/abhisek/rcdrill/internal/session"
)

// LLM purposes recorded with every request.
const (
	PurposeReformat  = llm.PurposeReformat
	PurposeQuestions = llm.PurposeQuestions
)

// LLMGenerator implements Generator using the LLM provider.
type LLMGenerator struct {
	provider llm.Provider
	config   Config
	logger   *slog.Logger
}

// New creates a new LLMGenerator with the given provider and config.
func New(provider llm.Provider, cfg Config) *LLMGenerator {
	return &LLMGenerator{provider: provider, config: cfg, logger: slog.Default()}
}

// WithLogger returns a copy of g that logs to l.
func (g *LLMGenerator) WithLogger(l *slog.Logger) *LLMGenerator {
	c := *g
	c.logger = l
	return &c
}

// Generate reformats the passages, then generates the question set.
func (g *LLMGenerator) Generate(ctx context.Context, passages []string) (session.Content, error) {
	if len(passages) == 0 {
		return session.Content{}, fmt.Errorf("no passages to generate from")
	}

	formatted, err := g.Reformat(ctx, passages)
	if err != nil {
		return session.Content{}, err
	}
	combined := CombinePassages(formatted)

	qs, err := g.Questions(ctx, combined, len(passages))
	if err != nil {
		return session.Content{}, err
	}

	return session.Content{
		PassageText: combined,
		RawPassages: append([]string(nil), passages...),
		Questions:   qs,
		NumPassages: len(passages),
		TimeBudget:  session.BudgetFor(len(passages)),
	}, nil
}

// Reformat runs one readability call per passage concurrently. The result
// keeps the input order. Any failure cancels the remaining calls.
func (g *LLMGenerator) Reformat(ctx context.Context, passages []string) ([]string, error) {
	ctx = llm.WithPurpose(ctx, PurposeReformat)
	out := make([]string, len(passages))
	var done atomic.Int32

	eg, ctx := errgroup.WithContext(ctx)
	for i, text := range passages {
		eg.Go(func() error {
			resp, err := g.provider.Generate(ctx, llm.Request{
				System: reformatSystemPrompt,
				Messages: []llm.Message{
					{Role: llm.RoleUser, Content: buildReformatMessage(i, len(passages), text)},
				},
				MaxTokens:   g.config.ReformatMaxTokens,
				Temperature: 0,
			})
			if err != nil {
				return fmt.Errorf("reformat passage %d: %w", i+1, err)
			}
			formatted := strings.TrimSpace(resp.Text())
			if formatted == "" {
				return &ContractError{Stage: "reformat", Index: -1, Message: fmt.Sprintf("passage %d came back empty", i+1)}
			}
			out[i] = formatted
			g.progress(ctx, Progress{Step: StepReformat, Done: int(done.Add(1)), Total: len(passages)})
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Questions generates and validates session.QuestionsPerPassage questions
// per passage over the combined passage text.
func (g *LLMGenerator) Questions(ctx context.Context, combined string, numPassages int) ([]session.Question, error) {
	ctx = llm.WithPurpose(ctx, PurposeQuestions)
	expected := session.ExpectedQuestions(numPassages)

	resp, err := g.provider.Generate(ctx, llm.Request{
		System: questionSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildQuestionMessage(combined, expected)},
		},
		JSONMode:    true,
		Items:       expected,
		MaxTokens:   g.config.QuestionMaxTokens,
		Temperature: g.config.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("generate questions: %w", err)
	}

	qs, cerr := g.parse(resp.Text(), expected)
	if cerr != nil {
		g.logger.Warn("question set rejected",
			"stage", cerr.Stage,
			"index", cerr.Index,
			"message", cerr.Message)
		return nil, cerr
	}

	g.progress(ctx, Progress{Step: StepQuestions, Done: 1, Total: 1})
	return qs, nil
}

// parse applies the response contract: fence stripping, JSON decoding,
// schema validation, the validator chain, then id assignment.
func (g *LLMGenerator) parse(text string, expected int) ([]session.Question, *ContractError) {
	body := StripFence(text)
	if body == "" {
		return nil, &ContractError{Stage: StageFence, Index: -1, Message: "response is empty"}
	}

	raw := json.RawMessage(body)
	var qs []session.Question
	if err := json.Unmarshal(raw, &qs); err != nil {
		return nil, &ContractError{Stage: StageJSON, Index: -1, Message: err.Error()}
	}

	if err := llm.ValidateJSON(QuestionSetSchema(expected), raw); err != nil {
		return nil, &ContractError{Stage: StageSchema, Index: -1, Message: err.Error()}
	}

	for _, v := range g.config.Validators {
		if cerr := v.Validate(qs, expected); cerr != nil {
			return nil, cerr
		}
	}

	for i := range qs {
		qs[i].ID = fmt.Sprintf("q-%d", i)
	}
	return qs, nil
}

func (g *LLMGenerator) progress(ctx context.Context, p Progress) {
	if g.config.OnProgress != nil {
		g.config.OnProgress(p)
	}
	if fn, ok := ctx.Value(progressKey{}).(func(Progress)); ok {
		fn(p)
	}
}
