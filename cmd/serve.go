package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/rcdrill/internal/httpapi"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve practice history as a read-only JSON API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")

		wasm, wasmExec, err := readEngine(cmd)
		if err != nil {
			return err
		}

		d, err := openDeps(cmd, os.Stderr)
		if err != nil {
			return err
		}
		defer d.Close()

		opts := []httpapi.Option{
			httpapi.WithCategory(d.cfg.Category),
			httpapi.WithLang(d.cfg.Lang),
			httpapi.WithLocation(time.Local),
			httpapi.WithLogger(d.logger),
		}
		if wasm != nil {
			opts = append(opts, httpapi.WithEngine(wasm, wasmExec))
		}
		h := httpapi.New(d.hist, opts...)
		srv := &http.Server{
			Addr:              addr,
			Handler:           h.Router(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errc := make(chan error, 1)
		go func() {
			d.logger.Info("starting server", "addr", addr, "attempts", d.hist.Len(), "category", d.cfg.Category)
			errc <- srv.ListenAndServe()
		}()

		select {
		case err := <-errc:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("serve: %w", err)
		case <-cmd.Context().Done():
			d.logger.Info("shutting down server")
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(ctx)
		}
	},
}

func init() {
	serveCmd.Flags().StringP("addr", "a", ":8080", "HTTP listen address")
}
