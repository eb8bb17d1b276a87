package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/abhisek/rcdrill/internal/config"
	"github.com/abhisek/rcdrill/internal/history"
	"github.com/abhisek/rcdrill/internal/i18n"
	"github.com/abhisek/rcdrill/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "rcdrill",
	Short: "Timed reading-comprehension practice",
	Long: "rcdrill turns passages you paste into a timed multiple-choice test, scores it,\n" +
		"keeps a dated history of attempts and exports self-contained offline practice pages.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

// Execute runs the command tree. SIGINT and SIGTERM cancel the command
// context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	f := rootCmd.PersistentFlags()
	f.String("db", "", "Path to SQLite database file (overrides RCDRILL_DB env var)")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
	f.String("log-file", "", "Log file used while the TUI runs (default <data dir>/rcdrill.log)")
	f.String("lang", i18n.DefaultLang, "Message language (en, hi)")
	f.String("category", "OBC", "Reference category for score analysis (GENERAL, OBC, SC, ST)")
	f.String("export-dir", ".", "Directory offline pages are written to from the TUI")
	f.String("engine-wasm", "", "js/wasm session engine to embed in exported pages instead of the built-in one")
	f.String("wasm-exec", "", "wasm_exec.js matching --engine-wasm")

	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(offlineCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(versionCmd)
}

// deps are the shared dependencies of the non-interactive commands.
type deps struct {
	cfg    config.Config
	logger *slog.Logger
	store  *store.Store
	hist   *history.Store
}

// openDeps loads configuration, logs to logw and opens the database and
// history.
func openDeps(cmd *cobra.Command, logw io.Writer) (*deps, error) {
	cfg, err := config.Load(cmd)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger := cfg.NewLogger(logw)
	slog.SetDefault(logger)
	if cfg.File != "" {
		logger.Debug("loaded config file", "path", cfg.File)
	}

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	hist := history.Open(cmd.Context(), st.KV(), history.WithLogger(logger))

	return &deps{cfg: cfg, logger: logger, store: st, hist: hist}, nil
}

func (d *deps) Close() error {
	return d.store.Close()
}

func newTranslator(cfg config.Config) *i18n.Translator {
	return i18n.New(cfg.Lang)
}

// readEngine loads the optional wasm engine pair named by the flags. Both
// or neither must be given.
func readEngine(cmd *cobra.Command) (wasm, wasmExec []byte, err error) {
	wasmPath, _ := cmd.Flags().GetString("engine-wasm")
	execPath, _ := cmd.Flags().GetString("wasm-exec")
	if wasmPath == "" && execPath == "" {
		return nil, nil, nil
	}
	if wasmPath == "" || execPath == "" {
		return nil, nil, fmt.Errorf("--engine-wasm and --wasm-exec must be given together")
	}
	if wasm, err = os.ReadFile(wasmPath); err != nil {
		return nil, nil, fmt.Errorf("read engine: %w", err)
	}
	if wasmExec, err = os.ReadFile(execPath); err != nil {
		return nil, nil, fmt.Errorf("read wasm_exec.js: %w", err)
	}
	return wasm, wasmExec, nil
}
