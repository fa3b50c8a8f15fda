package cmd

import (
	"fmt"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/quantops/logs"
	"github.com/rustyeddy/quantops/pkg/logging"
	"github.com/rustyeddy/quantops/signals"
)

var signalsCmd = &cobra.Command{
	Use:   "signals",
	Short: "List buy and sell signals from the strategy log",
	Long: `Scan the end of the current main log for trigger markers and print
each signal with its ticker code and detail.

Examples:
  quantops signals
  quantops signals --limit 2000 --json`,
	Args: cobra.NoArgs,
	RunE: runSignals,
}

var (
	signalsFile  string
	signalsLimit int
	signalsJSON  bool
)

func init() {
	rootCmd.AddCommand(signalsCmd)

	signalsCmd.Flags().StringVarP(&signalsFile, "file", "f", "", "log file to scan (default: current main log)")
	signalsCmd.Flags().IntVarP(&signalsLimit, "limit", "l", 0, "lines to scan from the end (default from config)")
	signalsCmd.Flags().BoolVar(&signalsJSON, "json", false, "print JSON")
}

func runSignals(cmd *cobra.Command, args []string) error {
	path := signalsFile
	if path == "" {
		path = cfg.Signals.File
	}
	if path == "" {
		path = filepath.Join(cfg.Logs.Dir, logs.CategoryMain.CurrentName())
	}
	limit := cfg.Signals.LinesLimit
	if signalsLimit > 0 {
		limit = signalsLimit
	}

	sigs, rep, err := signals.Scan(path, limit)
	if err != nil {
		return fmt.Errorf("scan %s: %w", path, err)
	}
	logging.Report(logger, "signal scan", rep)

	out := cmd.OutOrStdout()
	if signalsJSON {
		if sigs == nil {
			sigs = []signals.Signal{}
		}
		return printJSON(out, sigs)
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KIND\tCODE\tDETAIL")
	for _, s := range sigs {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", s.Kind, s.Code, s.Detail)
	}
	return tw.Flush()
}
