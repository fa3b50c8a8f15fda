package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rustyeddy/quantops/config"
	"github.com/rustyeddy/quantops/journal"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export normalized trades and the asset curve",
	Long: `Normalize every trade journal and build the asset curve, then write both
to CSV files or a SQLite database. Every row is stamped with this run's id.

Examples:
  quantops export
  quantops export --type sqlite --db ./quantops.sqlite
  quantops export --org ./export.org`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

var (
	exportType   string
	exportDB     string
	exportTrades string
	exportEquity string
	exportOrg    string
)

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVarP(&exportType, "type", "t", "", "sink type: csv or sqlite (default from config)")
	exportCmd.Flags().StringVar(&exportDB, "db", "", "SQLite database path")
	exportCmd.Flags().StringVar(&exportTrades, "trades-file", "", "trades CSV path")
	exportCmd.Flags().StringVar(&exportEquity, "equity-file", "", "asset curve CSV path")
	exportCmd.Flags().StringVar(&exportOrg, "org", "", "also write an Org-mode run summary here")
}

// exportConfig merges the command's flags over the configured export.
func exportConfig() config.ExportConfig {
	ec := cfg.Export
	if exportType != "" {
		ec.Type = exportType
	}
	if exportDB != "" {
		ec.DBPath = exportDB
	}
	if exportTrades != "" {
		ec.TradesFile = exportTrades
	}
	if exportEquity != "" {
		ec.EquityFile = exportEquity
	}
	if exportOrg != "" {
		ec.OrgFile = exportOrg
	}
	return ec
}

func openSink(ec config.ExportConfig, runID string) (journal.Sink, error) {
	switch ec.Type {
	case "csv":
		return journal.NewCSV(ec.TradesFile, ec.EquityFile, runID)
	case "sqlite":
		return journal.NewSQLite(ec.DBPath, runID)
	default:
		return nil, fmt.Errorf("unknown export type %q (supported: csv, sqlite)", ec.Type)
	}
}

func runExport(cmd *cobra.Command, args []string) error {
	ec := exportConfig()

	trades, rep, err := loadTrades(cfg.Journal.TradesDir, false)
	if err != nil {
		return fmt.Errorf("trades: %w", err)
	}
	series, assetRep, err := loadSeries(cfg.Journal.SnapshotsDir)
	if err != nil {
		return fmt.Errorf("assets: %w", err)
	}
	rep.Merge(assetRep)

	sink, err := openSink(ec, runID)
	if err != nil {
		return fmt.Errorf("open sink: %w", err)
	}
	defer sink.Close()

	for _, t := range trades {
		if err := sink.RecordTrade(t); err != nil {
			return fmt.Errorf("record trade: %w", err)
		}
	}
	for _, p := range series.Points {
		if err := sink.RecordAsset(p); err != nil {
			return fmt.Errorf("record asset: %w", err)
		}
	}

	run := journal.Summarize(runID, trades, series, rep)
	if db, ok := sink.(*journal.SQLite); ok {
		if err := db.RecordRun(run); err != nil {
			return fmt.Errorf("record run: %w", err)
		}
	}
	if ec.OrgFile != "" {
		run.OrgPath = ec.OrgFile
		if err := run.WriteOrg(); err != nil {
			return fmt.Errorf("write org: %w", err)
		}
	}

	if err := sink.Close(); err != nil {
		return fmt.Errorf("close sink: %w", err)
	}

	logger.Info("export complete",
		zap.String("type", ec.Type),
		zap.Int("trades", run.Trades),
		zap.Int("days", series.Len()),
		zap.Int("skipped", run.Skipped),
	)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "✓ Export %s complete\n", runID)
	fmt.Fprintf(out, "  Trades:  %d (%d buys, %d sells)\n", run.Trades, run.Buys, run.Sells)
	fmt.Fprintf(out, "  Days:    %d\n", series.Len())
	fmt.Fprintf(out, "  Skipped: %d\n", run.Skipped)
	if run.FirstDay != "" {
		fmt.Fprintf(out, "  Return:  %.2f%% (max drawdown %.2f%%)\n", run.ReturnPct, run.MaxDDPct)
	}
	return nil
}
