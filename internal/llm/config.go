package llm

import (
	"errors"
	"fmt"
	"os"
	"time"
)

// ErrNotConfigured is returned when the selected provider has no credentials.
var ErrNotConfigured = errors.New("LLM provider not configured")

// EnvPrefix prefixes every environment variable read by ConfigFromEnv.
const EnvPrefix = "RCDRILL_LLM_"

// Config holds all LLM provider configuration.
type Config struct {
	// Provider selects which LLM provider to use.
	// Values: "anthropic", "openai", "gemini", "openrouter", "mock"
	Provider string

	Anthropic  AnthropicConfig
	OpenAI     OpenAIConfig
	Gemini     GeminiConfig
	OpenRouter OpenRouterConfig
	Retry      RetryConfig

	// Timeout is the maximum duration for a single LLM request
	// (including retries). Default: 90s, since question sets are long.
	Timeout time.Duration
}

// AnthropicConfig holds Anthropic-specific configuration.
type AnthropicConfig struct {
	APIKey string
	Model  string // Default: "claude-haiku"
}

// OpenAIConfig holds OpenAI-specific configuration.
type OpenAIConfig struct {
	APIKey  string
	Model   string // Default: "gpt-4o-mini"
	BaseURL string // Optional. Override for OpenRouter or compatible APIs.
}

// GeminiConfig holds Gemini-specific configuration.
type GeminiConfig struct {
	APIKey string
	Model  string // Default: "gemini-flash" (gemini-2.5-flash)
}

// OpenRouterConfig holds OpenRouter-specific configuration.
type OpenRouterConfig struct {
	APIKey  string
	Model   string // Default: "google/gemini-2.0-flash-exp"
	BaseURL string // Default: "https://openrouter.ai/api/v1"
}

// RetryConfig configures retry behavior for transient failures.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Provider: "gemini",
		Anthropic: AnthropicConfig{
			Model: "claude-haiku",
		},
		OpenAI: OpenAIConfig{
			Model: "gpt-4o-mini",
		},
		Gemini: GeminiConfig{
			Model: "gemini-flash",
		},
		OpenRouter: OpenRouterConfig{
			Model: "google/gemini-2.0-flash-exp",
		},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: 1 * time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
		Timeout: 90 * time.Second,
	}
}

// ConfigFromEnv builds a Config from RCDRILL_LLM_* environment variables,
// falling back to defaults for unset values.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	set := func(name string, dst *string) {
		if v := os.Getenv(EnvPrefix + name); v != "" {
			*dst = v
		}
	}

	set("PROVIDER", &cfg.Provider)

	set("GEMINI_API_KEY", &cfg.Gemini.APIKey)
	set("GEMINI_MODEL", &cfg.Gemini.Model)

	set("OPENAI_API_KEY", &cfg.OpenAI.APIKey)
	set("OPENAI_MODEL", &cfg.OpenAI.Model)
	set("OPENAI_BASE_URL", &cfg.OpenAI.BaseURL)

	set("ANTHROPIC_API_KEY", &cfg.Anthropic.APIKey)
	set("ANTHROPIC_MODEL", &cfg.Anthropic.Model)

	set("OPENROUTER_API_KEY", &cfg.OpenRouter.APIKey)
	set("OPENROUTER_MODEL", &cfg.OpenRouter.Model)
	set("OPENROUTER_BASE_URL", &cfg.OpenRouter.BaseURL)

	return cfg
}

// HasKey reports whether the selected provider has an API key.
func (c Config) HasKey() bool {
	return c.Validate() == nil
}

// DiscoverConfig probes standard API key env vars in priority order
// (Gemini → OpenAI → Anthropic) and returns a Config for the first
// provider whose key is found. Returns (Config{}, false) if none found.
func DiscoverConfig() (Config, bool) {
	cfg := DefaultConfig()

	if k := os.Getenv("GEMINI_API_KEY"); k != "" {
		cfg.Provider = "gemini"
		cfg.Gemini.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("OPENAI_API_KEY"); k != "" {
		cfg.Provider = "openai"
		cfg.OpenAI.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("ANTHROPIC_API_KEY"); k != "" {
		cfg.Provider = "anthropic"
		cfg.Anthropic.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("OPENROUTER_API_KEY"); k != "" {
		cfg.Provider = "openrouter"
		cfg.OpenRouter.APIKey = k
		return cfg, true
	}

	return Config{}, false
}

// Validate checks that the selected provider has its required API key set.
// A missing key wraps ErrNotConfigured.
func (c Config) Validate() error {
	missing := func(name string) error {
		return fmt.Errorf("%w: %s%s is required for the %s provider", ErrNotConfigured, EnvPrefix, name, c.Provider)
	}

	switch c.Provider {
	case "anthropic":
		if c.Anthropic.APIKey == "" {
			return missing("ANTHROPIC_API_KEY")
		}
	case "openai":
		if c.OpenAI.APIKey == "" {
			return missing("OPENAI_API_KEY")
		}
	case "gemini":
		if c.Gemini.APIKey == "" {
			return missing("GEMINI_API_KEY")
		}
	case "openrouter":
		if c.OpenRouter.APIKey == "" {
			return missing("OPENROUTER_API_KEY")
		}
	case "mock":
		// No API key needed.
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	return nil
}
