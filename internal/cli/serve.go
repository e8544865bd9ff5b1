package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/reckon-ledger/reckon/internal/api"
	"github.com/reckon-ledger/reckon/internal/daemon"
	"github.com/reckon-ledger/reckon/internal/engine"
	"github.com/reckon-ledger/reckon/internal/infra/dsa"
	"github.com/reckon-ledger/reckon/internal/infra/sqlite"
	"github.com/reckon-ledger/reckon/internal/ledger"
)

// ─── reckon serve ───────────────────────────────────────────────────────────
// Long-running mode: transactions arrive over HTTP instead of a file,
// one engine run spanning the server's lifetime.

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("config", "c", "", "Path to config.toml (default ~/.reckon/config.toml)")
	serveCmd.Flags().String("listen", "", "Override listen address (host:port)")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the transaction ingest HTTP API",
	Long: `Run reckon as a long-lived service. Transaction records are accepted
one at a time on POST /v1/transactions and the live snapshot is served
from GET /v1/accounts. State is memory-resident for the lifetime of the
process.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	listen, _ := cmd.Flags().GetString("listen")

	cfg, err := daemon.LoadOrDefault(configPath)
	if err != nil {
		return err
	}
	addr := cfg.API.Addr()
	if listen != "" {
		addr = listen
	}

	proc := engine.New(
		ledger.New(),
		ledger.NewTxCache(dsa.BloomConfig{
			ExpectedItems: cfg.Engine.ExpectedTransactions,
			FPRate:        cfg.Engine.BloomFPRate,
		}),
	)

	srv := api.NewServer(proc)
	if cfg.API.Metrics {
		srv.EnableMetrics()
	}

	httpSrv := &http.Server{
		Addr:    addr,
		Handler: srv.Handler(),
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[serve] listening on %s (run %s)", addr, proc.Stats().RunID)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
	case <-ctx.Done():
		log.Printf("[serve] shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
	}

	stats := proc.Stats()
	log.Printf("[serve] run %s finished: processed=%d discarded=%d", stats.RunID, stats.Processed, stats.Discarded)

	if cfg.Export.Database != "" {
		db, err := sqlite.Open(cfg.Export.Database)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.SaveRun(stats.RunID.String(), stats.Processed, stats.Discarded, proc.Ledger().Snapshot()); err != nil {
			return fmt.Errorf("archive run: %w", err)
		}
		log.Printf("[serve] run %s archived to %s", stats.RunID, cfg.Export.Database)
	}
	return nil
}
