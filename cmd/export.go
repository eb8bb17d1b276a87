package cmd

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/rcdrill/internal/app"
	"github.com/abhisek/rcdrill/internal/config"
	"github.com/abhisek/rcdrill/internal/offline"
	"github.com/abhisek/rcdrill/internal/screens/env"
)

var exportCmd = &cobra.Command{
	Use:   "export <id>",
	Short: "Write an attempt's questions as a self-contained offline practice page",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")

		wasm, wasmExec, err := readEngine(cmd)
		if err != nil {
			return err
		}

		d, err := openDeps(cmd, os.Stderr)
		if err != nil {
			return err
		}
		defer d.Close()

		r, err := findResult(d.hist, args[0])
		if err != nil {
			return err
		}
		b := offline.FromResult(r)

		opts := []offline.ExportOption{offline.WithTitle(newTranslator(d.cfg).T("AppTitle"))}
		if wasm != nil {
			opts = append(opts, offline.WithEngine(wasm, wasmExec))
		}

		var page bytes.Buffer
		if err := offline.Export(&page, b, opts...); err != nil {
			return err
		}
		if output == "-" {
			_, err := page.WriteTo(cmd.OutOrStdout())
			return err
		}
		if output == "" {
			output = fmt.Sprintf("rcdrill-%s.html", shortID(r.ID))
		}
		if err := os.WriteFile(output, page.Bytes(), 0o644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		d.logger.Info("offline page written", "path", output, "questions", len(b.Questions))
		fmt.Fprintln(cmd.OutOrStdout(), output)
		return nil
	},
}

var offlineCmd = &cobra.Command{
	Use:   "offline <page.html>",
	Short: "Take a test from an exported offline page; nothing is saved to history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		plain, _ := cmd.Flags().GetBool("plain")

		cfg, err := config.Load(cmd)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		b, err := offline.Load(f)
		f.Close()
		if err != nil {
			return err
		}

		if plain {
			logger := cfg.NewLogger(os.Stderr)
			s, err := offline.NewSession(b)
			if err != nil {
				return err
			}
			logger.Debug("offline session loaded", "questions", len(b.Questions), "budget", b.TimeBudgetSeconds)
			return runPlain(cmd.Context(), s, cmd.InOrStdin(), cmd.OutOrStdout(), time.Second)
		}

		logw := io.Discard
		if lf, err := cfg.OpenLogFile(); err == nil {
			defer lf.Close()
			logw = lf
		}
		logger := cfg.NewLogger(logw)
		s, err := offline.NewSession(b)
		if err != nil {
			return err
		}
		return app.RunSession(&env.Env{
			Tr:        newTranslator(cfg),
			Category:  cfg.Category,
			ExportDir: cfg.ExportDir,
			Logger:    logger,
			Location:  time.Local,
		}, s)
	},
}

func init() {
	exportCmd.Flags().StringP("output", "o", "", "Output file (- for stdout; default rcdrill-<id>.html)")
	offlineCmd.Flags().Bool("plain", false, "Line-based player instead of the full-screen TUI")
}
