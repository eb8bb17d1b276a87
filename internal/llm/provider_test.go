package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
)

func TestMockProvider_ReturnsCanedResponses(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"a":1}`), Usage: Usage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}},
		MockResponse{Content: json.RawMessage(`{"b":2}`)},
	)

	resp1, err := mock.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "first"}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp1.Content) != `{"a":1}` {
		t.Fatalf("expected {\"a\":1}, got %s", resp1.Content)
	}
	if resp1.Usage.InputTokens != 10 {
		t.Fatalf("expected 10 input tokens, got %d", resp1.Usage.InputTokens)
	}
	if resp1.StopReason != "end" {
		t.Fatalf("expected stop reason 'end', got %q", resp1.StopReason)
	}

	resp2, err := mock.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "second"}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp2.Content) != `{"b":2}` {
		t.Fatalf("expected {\"b\":2}, got %s", resp2.Content)
	}
}

func TestMockProvider_EmptyQueueReturnsError(t *testing.T) {
	mock := NewMockProvider()
	_, err := mock.Generate(context.Background(), Request{})
	if err == nil {
		t.Fatal("expected error from empty queue")
	}
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected ErrProviderUnavailable, got: %T", err)
	}
}

func TestMockProvider_RecordsCalls(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{}`)},
	)

	req := Request{
		System:   "sys",
		Messages: []Message{{Role: RoleUser, Content: "hello"}},
	}
	_, _ = mock.Generate(context.Background(), req)

	if mock.CallCount() != 1 {
		t.Fatalf("expected 1 call, got %d", mock.CallCount())
	}
	if mock.Calls[0].System != "sys" {
		t.Fatalf("expected system 'sys', got %q", mock.Calls[0].System)
	}
}

func TestMockProvider_ReturnsConfiguredError(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrRateLimit{RetryAfter: 0}},
	)

	_, err := mock.Generate(context.Background(), Request{})
	if err == nil {
		t.Fatal("expected error")
	}
	var rl *ErrRateLimit
	if !errors.As(err, &rl) {
		t.Fatalf("expected ErrRateLimit, got: %T", err)
	}
}

func TestMockProvider_ModelID(t *testing.T) {
	mock := NewMockProvider()
	if mock.ModelID() != "mock" {
		t.Fatalf("expected 'mock', got %q", mock.ModelID())
	}
}

func TestPurposeContext(t *testing.T) {
	ctx := context.Background()
	if p := PurposeFrom(ctx); p != "unknown" {
		t.Fatalf("expected 'unknown', got %q", p)
	}

	ctx = WithPurpose(ctx, "rc-questions")
	if p := PurposeFrom(ctx); p != "rc-questions" {
		t.Fatalf("expected 'rc-questions', got %q", p)
	}
}

func TestResponseText(t *testing.T) {
	var nilResp *Response
	if nilResp.Text() != "" {
		t.Fatal("nil response should have empty text")
	}
	r := &Response{Content: json.RawMessage("```json\n[]\n```")}
	if r.Text() != "```json\n[]\n```" {
		t.Fatalf("got %q", r.Text())
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name:    "anthropic without key",
			cfg:     Config{Provider: "anthropic"},
			wantErr: true,
		},
		{
			name:    "anthropic with key",
			cfg:     Config{Provider: "anthropic", Anthropic: AnthropicConfig{APIKey: "sk-test"}},
			wantErr: false,
		},
		{
			name:    "openai without key",
			cfg:     Config{Provider: "openai"},
			wantErr: true,
		},
		{
			name:    "openai with key",
			cfg:     Config{Provider: "openai", OpenAI: OpenAIConfig{APIKey: "sk-test"}},
			wantErr: false,
		},
		{
			name:    "gemini without key",
			cfg:     Config{Provider: "gemini"},
			wantErr: true,
		},
		{
			name:    "openrouter with key",
			cfg:     Config{Provider: "openrouter", OpenRouter: OpenRouterConfig{APIKey: "sk-or"}},
			wantErr: false,
		},
		{
			name:    "mock needs no key",
			cfg:     Config{Provider: "mock"},
			wantErr: false,
		},
		{
			name:    "unknown provider",
			cfg:     Config{Provider: "unknown"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && tt.cfg.Provider != "unknown" && !errors.Is(err, ErrNotConfigured) {
				t.Fatalf("missing key should wrap ErrNotConfigured, got %v", err)
			}
		})
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("RCDRILL_LLM_PROVIDER", "openai")
	t.Setenv("RCDRILL_LLM_OPENAI_API_KEY", "sk-env")
	t.Setenv("RCDRILL_LLM_OPENAI_MODEL", "gpt-4o")

	cfg := ConfigFromEnv()
	if cfg.Provider != "openai" || cfg.OpenAI.APIKey != "sk-env" || cfg.OpenAI.Model != "gpt-4o" {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.Gemini.Model != "gemini-flash" {
		t.Fatalf("defaults lost: gemini model %q", cfg.Gemini.Model)
	}
}

func TestDefaultConfigUsesGemini(t *testing.T) {
	if p := DefaultConfig().Provider; p != "gemini" {
		t.Fatalf("default provider = %q", p)
	}
}

func TestOfflineProvider_EchoesPassageBody(t *testing.T) {
	p := NewOfflineProvider()
	ctx := WithPurpose(context.Background(), PurposeReformat)
	resp, err := p.Generate(ctx, Request{Messages: []Message{{
		Role:    RoleUser,
		Content: "Reformat this:\n\nFirst paragraph.\n\nSecond paragraph.  ",
	}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := resp.Text(); got != "First paragraph.\n\nSecond paragraph." {
		t.Fatalf("got %q", got)
	}
}

func TestOfflineProvider_QuestionSetSize(t *testing.T) {
	p := NewOfflineProvider()
	ctx := WithPurpose(context.Background(), PurposeQuestions)
	resp, err := p.Generate(ctx, Request{JSONMode: true, Items: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var qs []struct {
		Options           []string `json:"options"`
		CorrectAnswerText string   `json:"correctAnswerText"`
	}
	if err := json.Unmarshal(resp.Content, &qs); err != nil {
		t.Fatalf("offline questions are not JSON: %v", err)
	}
	if len(qs) != 10 {
		t.Fatalf("expected 10 questions, got %d", len(qs))
	}
	for i, q := range qs {
		if len(q.Options) != 4 || q.CorrectAnswerText != q.Options[i%4] {
			t.Fatalf("question %d malformed: %+v", i, q)
		}
	}

	if _, err := p.Generate(ctx, Request{}); err == nil {
		t.Fatal("expected error without an item count")
	}
	if _, err := p.Generate(context.Background(), Request{}); err == nil {
		t.Fatal("expected error for an unlabelled request")
	}
}

func TestOfflineProvider_QueueFirst(t *testing.T) {
	p := NewOfflineProvider()
	p.AddResponse(MockResponse{Content: json.RawMessage("queued")})
	ctx := WithPurpose(context.Background(), PurposeReformat)

	resp, err := p.Generate(ctx, Request{})
	if err != nil || resp.Text() != "queued" {
		t.Fatalf("got %v, %v", resp, err)
	}
	resp, err = p.Generate(ctx, Request{})
	if err != nil || resp.Text() != offlinePassage {
		t.Fatalf("got %v, %v", resp, err)
	}
}

func TestNewProvider_MockWorksWithoutCredentials(t *testing.T) {
	p, err := NewProvider(context.Background(), Config{Provider: "mock"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctx := WithPurpose(context.Background(), PurposeQuestions)
	resp, err := p.Generate(ctx, Request{Items: 5})
	if err != nil {
		t.Fatalf("mock provider failed: %v", err)
	}
	if p.ModelID() != "mock" || len(resp.Content) == 0 {
		t.Fatalf("unexpected response %q from %q", resp.Content, p.ModelID())
	}
}
