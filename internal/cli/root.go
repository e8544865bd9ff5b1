// Package cli wires the cobra command tree for the reckon binary.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is stamped at build time via -ldflags.
var Version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:   "reckon",
	Short: "Replay transaction streams into per-client account balances",
	Long: `Reckon replays an ordered stream of financial transaction records
into per-client account balances, applying dispute, resolve and
chargeback semantics that can retroactively alter settled funds.

Records are processed strictly in arrival order. Invalid records are
discarded, never fatal; only input that fails structural parsing aborts
a run.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the reckon version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(os.Stdout, "reckon %s\n", Version)
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
