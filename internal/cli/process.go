package cli

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/reckon-ledger/reckon/internal/engine"
	"github.com/reckon-ledger/reckon/internal/infra/dsa"
	"github.com/reckon-ledger/reckon/internal/infra/sqlite"
	"github.com/reckon-ledger/reckon/internal/ledger"
	"github.com/reckon-ledger/reckon/internal/report"
	"github.com/reckon-ledger/reckon/internal/source"
)

// ─── reckon process ─────────────────────────────────────────────────────────
// One-shot replay: read the CSV, run it through the engine, print the
// final snapshot as CSV on stdout. Diagnostics go to stderr so stdout
// stays a clean report.

func init() {
	rootCmd.AddCommand(processCmd)
	processCmd.Flags().String("export-db", "", "Archive the finished run to this sqlite file")
	processCmd.Flags().Int("expected-txs", 1_000_000, "Expected transaction volume (sizes the duplicate screen)")
	processCmd.Flags().BoolP("quiet", "q", false, "Suppress per-record discard logging")
}

var processCmd = &cobra.Command{
	Use:   "process FILE.csv",
	Short: "Replay a transaction CSV and report final balances",
	Long: `Replay all transactions from a CSV file and write the final account
snapshot (client,available,held,total,locked) to stdout.`,
	Args: cobra.ExactArgs(1),
	RunE: runProcess,
}

func runProcess(cmd *cobra.Command, args []string) error {
	exportDB, _ := cmd.Flags().GetString("export-db")
	expectedTxs, _ := cmd.Flags().GetInt("expected-txs")
	quiet, _ := cmd.Flags().GetBool("quiet")

	if quiet {
		log.SetOutput(nullWriter{})
	} else {
		log.SetOutput(os.Stderr)
	}

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	proc := engine.New(
		ledger.New(),
		ledger.NewTxCache(dsa.BloomConfig{ExpectedItems: expectedTxs, FPRate: 0.001}),
	)

	if err := proc.Process(cmd.Context(), source.NewCSV(f)); err != nil {
		return err
	}

	snapshot := proc.Ledger().Snapshot()
	if err := report.WriteCSV(os.Stdout, snapshot); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	if exportDB != "" {
		db, err := sqlite.Open(exportDB)
		if err != nil {
			return err
		}
		defer db.Close()

		stats := proc.Stats()
		if err := db.SaveRun(stats.RunID.String(), stats.Processed, stats.Discarded, snapshot); err != nil {
			return fmt.Errorf("archive run: %w", err)
		}
		log.Printf("[cli] run %s archived to %s", stats.RunID, exportDB)
	}

	return nil
}

// nullWriter drops all log output in quiet mode.
type nullWriter struct{}

func (nullWriter) Write(p []byte) (int, error) { return len(p), nil }
