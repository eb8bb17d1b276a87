package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/rcdrill/internal/analytics"
)

// isolate points every lookup location at fresh temp dirs and clears the
// vendor key variables so the host environment cannot leak in.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	for _, k := range []string{
		"GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY",
		"RCDRILL_DB", "RCDRILL_CATEGORY", "RCDRILL_LOG_LEVEL", "RCDRILL_LLM_PROVIDER",
		"RCDRILL_LLM_GEMINI_API_KEY",
	} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	return dir
}

func newCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "rcdrill"}
	f := cmd.PersistentFlags()
	f.String("db", "", "")
	f.String("log-level", "info", "")
	f.String("log-format", "text", "")
	f.String("category", string(analytics.DefaultCategory), "")
	require.NoError(t, cmd.ParseFlags(args))
	return cmd
}

func TestLoad_Defaults(t *testing.T) {
	dir := isolate(t)

	cfg, err := Load(newCmd(t))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "data", "rcdrill", "rcdrill.db"), cfg.DBPath)
	assert.Equal(t, filepath.Join(dir, "data", "rcdrill", "rcdrill.log"), cfg.LogFile)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, analytics.OBC, cfg.Category)
	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.Equal(t, 90*time.Second, cfg.LLM.Timeout)
	assert.False(t, cfg.LLMReady)
	assert.Empty(t, cfg.File)
}

func TestLoad_Precedence(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "rcdrill.yaml"), []byte(
		"category: sc\nlog-level: warn\nllm:\n  timeout: 30s\n  gemini:\n    api-key: from-file\n"), 0o644))

	t.Setenv("RCDRILL_CATEGORY", "st")
	t.Setenv("RCDRILL_LLM_GEMINI_API_KEY", "from-env")

	cfg, err := Load(newCmd(t, "--category", "general"))
	require.NoError(t, err)

	assert.Equal(t, analytics.General, cfg.Category, "flag beats env and file")
	assert.Equal(t, slog.LevelWarn, cfg.LogLevel, "file beats default")
	assert.Equal(t, "from-env", cfg.LLM.Gemini.APIKey, "env beats file")
	assert.Equal(t, 30*time.Second, cfg.LLM.Timeout)
	assert.True(t, cfg.LLMReady)
	assert.Equal(t, "rcdrill.yaml", filepath.Base(cfg.File))
}

func TestLoad_DiscoversVendorKey(t *testing.T) {
	isolate(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load(newCmd(t))
	require.NoError(t, err)
	assert.True(t, cfg.LLMReady)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "sk-test", cfg.LLM.OpenAI.APIKey)
}

func TestLoad_DBFlagCreatesDir(t *testing.T) {
	dir := isolate(t)
	db := filepath.Join(dir, "nested", "x.db")

	cfg, err := Load(newCmd(t, "--db", db))
	require.NoError(t, err)
	assert.Equal(t, db, cfg.DBPath)
	assert.DirExists(t, filepath.Join(dir, "nested"))
}

func TestLoad_Invalid(t *testing.T) {
	isolate(t)

	_, err := Load(newCmd(t, "--category", "nobody"))
	assert.Error(t, err)

	_, err = Load(newCmd(t, "--log-level", "loud"))
	assert.Error(t, err)

	_, err = Load(newCmd(t, "--log-format", "xml"))
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"", slog.LevelInfo},
		{"INFO", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestOpenLogFile(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{LogFile: filepath.Join(dir, "logs", "rcdrill.log"), LogFormat: "json"}

	f, err := cfg.OpenLogFile()
	require.NoError(t, err)
	cfg.NewLogger(f).Info("hello", "k", 1)
	require.NoError(t, f.Close())

	data, err := os.ReadFile(cfg.LogFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)
}
