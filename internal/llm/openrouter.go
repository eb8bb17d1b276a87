package llm

import (
	"fmt"
	"net/http"
)

const (
	defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"
	defaultOpenRouterModel   = "google/gemini-2.0-flash-exp"

	// OpenRouter lists requests under this title on its usage dashboard.
	openRouterTitle   = "rcdrill"
	openRouterReferer = "https://github.com/abhisek/rcdrill"
)

// OpenRouterProvider reaches OpenRouter through its OpenAI-compatible API.
// Model IDs are vendor-qualified ("anthropic/claude-3-haiku") and pass
// through unchanged.
type OpenRouterProvider struct {
	*OpenAIProvider
}

// NewOpenRouterProvider creates a provider targeting the OpenRouter API.
func NewOpenRouterProvider(cfg OpenRouterConfig) (*OpenRouterProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openrouter API key is required: %w", ErrNotConfigured)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultOpenRouterBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultOpenRouterModel
	}

	inner, err := newOpenAIProviderRaw(OpenAIConfig{
		APIKey:  cfg.APIKey,
		Model:   cfg.Model,
		BaseURL: cfg.BaseURL,
	}, openRouterHeader())
	if err != nil {
		return nil, err
	}
	return &OpenRouterProvider{OpenAIProvider: inner}, nil
}

func openRouterHeader() http.Header {
	h := http.Header{}
	h.Set("X-Title", openRouterTitle)
	h.Set("HTTP-Referer", openRouterReferer)
	return h
}
