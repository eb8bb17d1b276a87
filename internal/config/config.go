// Package config layers command-line flags, RCDRILL_* environment variables,
// an optional rcdrill config file and built-in defaults into one Config.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/abhisek/rcdrill/internal/analytics"
	"github.com/abhisek/rcdrill/internal/i18n"
	"github.com/abhisek/rcdrill/internal/llm"
	"github.com/abhisek/rcdrill/internal/store"
)

// EnvPrefix prefixes every environment variable viper reads.
const EnvPrefix = "RCDRILL"

// Config is the resolved runtime configuration.
type Config struct {
	DBPath    string
	LogLevel  slog.Level
	LogFormat string
	LogFile   string
	Lang      string
	Category  analytics.Category
	ExportDir string

	// LLM is the text-generation setup. LLMReady is false when no API key
	// was found; generation then fails with llm.ErrNotConfigured.
	LLM      llm.Config
	LLMReady bool

	// File is the config file that was read, if any.
	File string
}

// Viper binds cmd's flags and the environment to a fresh viper instance and
// reads the first rcdrill config file found.
func Viper(cmd *cobra.Command) (*viper.Viper, error) {
	v := viper.New()
	setDefaults(v)
	if cmd != nil {
		if err := v.BindPFlags(cmd.Flags()); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("rcdrill")
	v.AddConfigPath(".")
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		v.AddConfigPath(filepath.Join(xdg, "rcdrill"))
	}
	v.AddConfigPath("$HOME/.config/rcdrill")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}
	return v, nil
}

func setDefaults(v *viper.Viper) {
	d := llm.DefaultConfig()

	v.SetDefault("log-level", "info")
	v.SetDefault("log-format", "text")
	v.SetDefault("lang", i18n.DefaultLang)
	v.SetDefault("category", string(analytics.DefaultCategory))
	v.SetDefault("export-dir", ".")

	v.SetDefault("llm.provider", d.Provider)
	v.SetDefault("llm.timeout", d.Timeout)
	v.SetDefault("llm.gemini.model", d.Gemini.Model)
	v.SetDefault("llm.openai.model", d.OpenAI.Model)
	v.SetDefault("llm.anthropic.model", d.Anthropic.Model)
	v.SetDefault("llm.openrouter.model", d.OpenRouter.Model)
	for _, k := range []string{
		"db", "log-file",
		"llm.gemini.api-key",
		"llm.openai.api-key", "llm.openai.base-url",
		"llm.anthropic.api-key",
		"llm.openrouter.api-key", "llm.openrouter.base-url",
	} {
		v.SetDefault(k, "")
	}
}

// Load resolves the configuration for cmd.
func Load(cmd *cobra.Command) (Config, error) {
	v, err := Viper(cmd)
	if err != nil {
		return Config{}, err
	}
	return FromViper(v)
}

// FromViper resolves a Config from an already populated viper instance.
// The database directory is created when missing.
func FromViper(v *viper.Viper) (Config, error) {
	cfg := Config{
		LogFormat: strings.ToLower(v.GetString("log-format")),
		LogFile:   v.GetString("log-file"),
		Lang:      v.GetString("lang"),
		ExportDir: v.GetString("export-dir"),
		File:      v.ConfigFileUsed(),
	}

	lvl, err := ParseLevel(v.GetString("log-level"))
	if err != nil {
		return Config{}, err
	}
	cfg.LogLevel = lvl

	switch cfg.LogFormat {
	case "text", "json":
	default:
		return Config{}, fmt.Errorf("unknown log format %q (want text or json)", cfg.LogFormat)
	}

	cat, err := analytics.ParseCategory(v.GetString("category"))
	if err != nil {
		return Config{}, err
	}
	cfg.Category = cat

	if p := v.GetString("db"); p != "" {
		if err := store.EnsureDir(p); err != nil {
			return Config{}, fmt.Errorf("create database dir: %w", err)
		}
		cfg.DBPath = p
	} else {
		p, err := store.DefaultDBPath()
		if err != nil {
			return Config{}, fmt.Errorf("resolve database path: %w", err)
		}
		cfg.DBPath = p
	}

	if cfg.LogFile == "" {
		if dir, err := store.DataDir(); err == nil {
			cfg.LogFile = filepath.Join(dir, "rcdrill.log")
		}
	}

	cfg.LLM, cfg.LLMReady = llmConfig(v)
	return cfg, nil
}

// llmConfig builds the provider configuration. When the selected provider
// has no key, the conventional vendor variables are probed instead.
func llmConfig(v *viper.Viper) (llm.Config, bool) {
	cfg := llm.DefaultConfig()
	cfg.Provider = strings.ToLower(v.GetString("llm.provider"))
	if d := v.GetDuration("llm.timeout"); d > 0 {
		cfg.Timeout = d
	}

	cfg.Gemini.APIKey = v.GetString("llm.gemini.api-key")
	cfg.Gemini.Model = v.GetString("llm.gemini.model")
	cfg.OpenAI.APIKey = v.GetString("llm.openai.api-key")
	cfg.OpenAI.Model = v.GetString("llm.openai.model")
	cfg.OpenAI.BaseURL = v.GetString("llm.openai.base-url")
	cfg.Anthropic.APIKey = v.GetString("llm.anthropic.api-key")
	cfg.Anthropic.Model = v.GetString("llm.anthropic.model")
	cfg.OpenRouter.APIKey = v.GetString("llm.openrouter.api-key")
	cfg.OpenRouter.Model = v.GetString("llm.openrouter.model")
	cfg.OpenRouter.BaseURL = v.GetString("llm.openrouter.base-url")

	if cfg.HasKey() {
		return cfg, true
	}
	if found, ok := llm.DiscoverConfig(); ok {
		found.Timeout = cfg.Timeout
		return found, true
	}
	return cfg, false
}

// ParseLevel maps a level name to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log level %q", s)
}

// NewLogger builds a text or json logger writing to w.
func (c Config) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.LogLevel}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// OpenLogFile opens the log file for appending, creating its directory.
func (c Config) OpenLogFile() (*os.File, error) {
	if c.LogFile == "" {
		return nil, errors.New("no log file configured")
	}
	if err := store.EnsureDir(c.LogFile); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(c.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}
