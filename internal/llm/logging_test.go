package llm

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/rcdrill/internal/store"
)

type recordingRepo struct {
	events []store.LLMRequestEventData
	err    error
}

func (r *recordingRepo) AppendLLMRequest(_ context.Context, data store.LLMRequestEventData) error {
	r.events = append(r.events, data)
	return r.err
}

func (r *recordingRepo) QueryLLMEvents(context.Context, store.QueryOpts) ([]store.LLMEvent, error) {
	return nil, nil
}

func (r *recordingRepo) GetLLMEvent(context.Context, int64) (*store.LLMEvent, error) {
	return nil, nil
}

func (r *recordingRepo) LLMUsage(context.Context) ([]store.LLMUsage, error) {
	return nil, nil
}

func TestLogging_RecordsSuccess(t *testing.T) {
	mock := NewMockProvider(MockResponse{
		Content: json.RawMessage(`[]`),
		Usage:   Usage{InputTokens: 12, OutputTokens: 3},
	})
	repo := &recordingRepo{}
	p := WithLogging(mock, "gemini", repo)

	ctx := WithPurpose(context.Background(), "rc-questions")
	_, err := p.Generate(ctx, Request{
		System:   "sys prompt",
		Messages: []Message{{Role: RoleUser, Content: "passage body"}},
	})
	require.NoError(t, err)

	require.Len(t, repo.events, 1)
	ev := repo.events[0]
	assert.Equal(t, "gemini", ev.Provider)
	assert.Equal(t, "mock", ev.Model)
	assert.Equal(t, "rc-questions", ev.Purpose)
	assert.Equal(t, 12, ev.InputTokens)
	assert.True(t, ev.Success)
	assert.Contains(t, ev.RequestBody, "[system]\nsys prompt")
	assert.Contains(t, ev.RequestBody, "[user]\npassage body")
	assert.Equal(t, "[]", ev.ResponseBody)
}

func TestLogging_RecordsFailure(t *testing.T) {
	mock := NewMockProvider(MockResponse{Err: errors.New("boom")})
	repo := &recordingRepo{}
	p := WithLogging(mock, "openai", repo)

	_, err := p.Generate(context.Background(), Request{})
	require.Error(t, err)
	require.Len(t, repo.events, 1)
	assert.False(t, repo.events[0].Success)
	assert.Equal(t, "boom", repo.events[0].ErrorMessage)
	assert.Equal(t, "unknown", repo.events[0].Purpose)
}

func TestLogging_RepoErrorDoesNotFailRequest(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: json.RawMessage(`"ok"`)})
	p := WithLogging(mock, "mock", &recordingRepo{err: errors.New("disk full")})

	resp, err := p.Generate(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, `"ok"`, resp.Text())
}

func TestSerializeRequestIncludesSchema(t *testing.T) {
	out := serializeRequest(Request{
		Schema: &Schema{Name: "rc-question-set", Definition: map[string]any{"type": "array"}},
	})
	assert.True(t, strings.HasPrefix(out, "[schema: rc-question-set]\n"))
	assert.Contains(t, out, `{"type":"array"}`)
}

func TestTimeoutProviderCancels(t *testing.T) {
	p := WithTimeout(blockingProvider{}, 1)
	_, err := p.Generate(context.Background(), Request{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

type blockingProvider struct{}

func (blockingProvider) Generate(ctx context.Context, _ Request) (*Response, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (blockingProvider) ModelID() string { return "blocking" }

func TestNewProviderRequiresKey(t *testing.T) {
	_, err := NewProvider(context.Background(), Config{Provider: "gemini"}, nil)
	assert.ErrorIs(t, err, ErrNotConfigured)

	p, err := NewProvider(context.Background(), Config{Provider: "mock"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "mock", p.ModelID())
}

func TestUsageCost(t *testing.T) {
	cost, ok := UsageCost(store.LLMUsage{Model: "gemini-2.5-flash", InputTokens: 1_000_000, OutputTokens: 1_000_000})
	require.True(t, ok)
	assert.InDelta(t, 2.8, cost, 1e-9)

	_, ok = UsageCost(store.LLMUsage{Model: "made-up"})
	assert.False(t, ok)

	assert.NotNil(t, LookupCost("openai/gpt-4o-mini"))
}
