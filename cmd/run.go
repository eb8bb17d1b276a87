package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/rcdrill/internal/app"
	"github.com/abhisek/rcdrill/internal/config"
	"github.com/abhisek/rcdrill/internal/history"
	"github.com/abhisek/rcdrill/internal/llm"
	"github.com/abhisek/rcdrill/internal/practice"
	"github.com/abhisek/rcdrill/internal/questiongen"
	"github.com/abhisek/rcdrill/internal/screens/env"
	"github.com/abhisek/rcdrill/internal/store"
)

// runApp opens the store, builds dependencies, and launches the TUI.
func runApp(cmd *cobra.Command) error {
	ctx := cmd.Context()
	cfg, err := config.Load(cmd)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// The TUI owns the terminal, so logs go to a file.
	logFile, err := cfg.OpenLogFile()
	if err != nil {
		return err
	}
	defer logFile.Close()
	logger := cfg.NewLogger(logFile)

	wasm, wasmExec, err := readEngine(cmd)
	if err != nil {
		return err
	}

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	hist := history.Open(ctx, st.KV(), history.WithLogger(logger))

	var gen questiongen.Generator
	if cfg.LLMReady {
		provider, err := llm.NewProvider(ctx, cfg.LLM, st.EventRepo())
		if err != nil {
			logger.Warn("LLM provider unavailable", "provider", cfg.LLM.Provider, "error", err)
		} else {
			gen = questiongen.New(provider, questiongen.DefaultConfig()).WithLogger(logger)
		}
	} else {
		logger.Info("no LLM API key configured; generation disabled")
	}

	flow := practice.NewFlow(gen, hist, practice.WithLogger(logger), practice.WithLocation(time.Local))

	logger.Info("starting TUI", "db", cfg.DBPath, "attempts", hist.Len(), "lang", cfg.Lang)
	return app.Run(&env.Env{
		Flow:      flow,
		Tr:        newTranslator(cfg),
		Category:  cfg.Category,
		ExportDir: cfg.ExportDir,
		Logger:    logger,
		Location:  time.Local,
		Engine:    wasm,
		WasmExec:  wasmExec,
	})
}
