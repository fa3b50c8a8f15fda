package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/quantops/journal"
	"github.com/rustyeddy/quantops/pkg/logging"
	"github.com/rustyeddy/quantops/pkg/scan"
)

var tradesCmd = &cobra.Command{
	Use:   "trades",
	Short: "Normalize and print the per-day trade journals",
	Long: `Load every trade journal in the trades directory, rename localized
fields to their canonical names, recode the trade direction, and print the
result.

Examples:
  quantops trades
  quantops trades --dir ./data/trades --format json`,
	Args: cobra.NoArgs,
	RunE: runTrades,
}

var assetsCmd = &cobra.Command{
	Use:   "assets",
	Short: "Build the daily asset curve from position snapshots",
	Long: `Read every position snapshot, take the account's total asset and market
value per day, and fill days without a snapshot by linear interpolation.
Interpolated days are marked with ~.

Examples:
  quantops assets
  quantops assets --json`,
	Args: cobra.NoArgs,
	RunE: runAssets,
}

var (
	tradesDir         string
	tradesNewestFirst bool
	tradesFormat      string

	assetsDir  string
	assetsJSON bool
)

func init() {
	rootCmd.AddCommand(tradesCmd)
	rootCmd.AddCommand(assetsCmd)

	tradesCmd.Flags().StringVarP(&tradesDir, "dir", "d", "", "trade journal directory (default from config)")
	tradesCmd.Flags().BoolVar(&tradesNewestFirst, "newest-first", true, "order journals newest first")
	tradesCmd.Flags().StringVar(&tradesFormat, "format", "org", "output format (org, json)")

	assetsCmd.Flags().StringVarP(&assetsDir, "dir", "d", "", "position snapshot directory (default from config)")
	assetsCmd.Flags().BoolVar(&assetsJSON, "json", false, "print JSON")
}

// loadTrades normalizes the journals in dir and logs what was skipped.
func loadTrades(dir string, newestFirst bool) ([]journal.Trade, scan.Report, error) {
	paths, err := journal.ListTradeFiles(dir, cfg.Journal.TradeSuffix, newestFirst)
	if err != nil {
		return nil, scan.Report{}, err
	}
	trades, rep := journal.Normalize(paths)
	logging.Report(logger, "normalize trades", rep)
	return trades, rep, nil
}

// loadSeries builds the asset series in dir. A directory without usable
// snapshots gives an empty series.
func loadSeries(dir string) (journal.AssetSeries, scan.Report, error) {
	series, rep, err := journal.BuildAssetSeries(dir, cfg.Journal.Snapshot)
	logging.Report(logger, "asset series", rep)
	if errors.Is(err, journal.ErrNoData) {
		return journal.AssetSeries{}, rep, nil
	}
	return series, rep, err
}

func runTrades(cmd *cobra.Command, args []string) error {
	dir := tradesDir
	if dir == "" {
		dir = cfg.Journal.TradesDir
	}
	newestFirst := cfg.Journal.NewestFirst
	if cmd.Flags().Changed("newest-first") {
		newestFirst = tradesNewestFirst
	}

	trades, _, err := loadTrades(dir, newestFirst)
	if err != nil {
		return fmt.Errorf("trades: %w", err)
	}

	out := cmd.OutOrStdout()
	switch tradesFormat {
	case "json":
		if trades == nil {
			trades = []journal.Trade{}
		}
		return printJSON(out, trades)
	case "org":
		fmt.Fprintln(out, journal.FormatTradesOrg(trades))
		return nil
	default:
		return fmt.Errorf("unknown format %q (supported: org, json)", tradesFormat)
	}
}

func runAssets(cmd *cobra.Command, args []string) error {
	dir := assetsDir
	if dir == "" {
		dir = cfg.Journal.SnapshotsDir
	}

	series, _, err := loadSeries(dir)
	if err != nil {
		return fmt.Errorf("assets: %w", err)
	}

	out := cmd.OutOrStdout()
	if assetsJSON {
		points := series.Points
		if points == nil {
			points = []journal.AssetPoint{}
		}
		return printJSON(out, map[string]any{"points": points, "no_data": series.Len() == 0})
	}
	if series.Len() == 0 {
		fmt.Fprintln(out, "no asset data")
		return nil
	}
	fmt.Fprint(out, journal.FormatSeriesOrg(series))
	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
