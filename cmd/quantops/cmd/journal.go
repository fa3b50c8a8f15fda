package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/quantops/journal"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Query an exported SQLite journal",
	Long: `Query and display trades and runs stored by "quantops export --type sqlite".

Subcommands:
  trade  - Get details of a specific trade by TradeId
  day    - List trades of a specific day
  runs   - List export runs

Examples:
  quantops journal trade 2024010200001
  quantops journal day 20240102
  quantops journal runs`,
}

var journalTradeCmd = &cobra.Command{
	Use:   "trade <trade-id>",
	Short: "Get details of a specific trade",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalTrade,
}

var journalDayCmd = &cobra.Command{
	Use:   "day <YYYYMMDD>",
	Short: "List trades of a specific day",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalDay,
}

var journalRunsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List export runs, newest first",
	Args:  cobra.NoArgs,
	RunE:  runJournalRuns,
}

var journalDBPath string

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalTradeCmd)
	journalCmd.AddCommand(journalDayCmd)
	journalCmd.AddCommand(journalRunsCmd)

	journalCmd.PersistentFlags().StringVarP(&journalDBPath, "db", "d", "", "path to SQLite journal DB (default from config)")
}

func openJournal() (*journal.SQLite, error) {
	path := journalDBPath
	if path == "" {
		path = cfg.Export.DBPath
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("no such journal %s (create it with \"quantops export --type sqlite\")", path)
	}
	j, err := journal.NewSQLite(path, runID)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	return j, nil
}

func runJournalTrade(cmd *cobra.Command, args []string) error {
	j, err := openJournal()
	if err != nil {
		return err
	}
	defer j.Close()

	rec, err := j.GetTrade(args[0])
	if err != nil {
		return fmt.Errorf("get trade: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), journal.FormatTradeOrg(rec))
	return nil
}

func runJournalDay(cmd *cobra.Command, args []string) error {
	day := args[0]
	if _, err := time.Parse(journal.DayLayout, day); err != nil {
		return fmt.Errorf("day %q is not YYYYMMDD", day)
	}

	j, err := openJournal()
	if err != nil {
		return err
	}
	defer j.Close()

	recs, err := j.ListTradesBetween(day, day)
	if err != nil {
		return fmt.Errorf("query trades: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), journal.FormatTradesOrg(recs))
	return nil
}

func runJournalRuns(cmd *cobra.Command, args []string) error {
	j, err := openJournal()
	if err != nil {
		return err
	}
	defer j.Close()

	runs, err := j.Runs()
	if err != nil {
		return fmt.Errorf("query runs: %w", err)
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tCREATED\tTRADES\tSKIPPED\tDAYS\tRETURN%\tMAXDD%")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s..%s\t%.2f\t%.2f\n",
			r.RunID, r.Created.Local().Format("2006-01-02 15:04"), r.Trades, r.Skipped,
			r.FirstDay, r.LastDay, r.ReturnPct, r.MaxDDPct)
	}
	return tw.Flush()
}
