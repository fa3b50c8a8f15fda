package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rustyeddy/quantops/logs"
	"github.com/rustyeddy/quantops/pkg/logging"
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Tail or search the terminal logs over a date range",
	Long: `Read the main or tick log between two days.

Without --keyword the last --lines lines of the newest file are shown.
With --keyword every file in the range is searched (case-insensitive).
Either way only lines stamped inside the range, or carrying no timestamp,
are kept.

Examples:
  quantops logs
  quantops logs --category tick --from 2024-01-01 --to 2024-01-05 --keyword error
  quantops logs --from 2024-01-01 --out ./exports/`,
	Args: cobra.NoArgs,
	RunE: runLogs,
}

var (
	logsCategory string
	logsFrom     string
	logsTo       string
	logsKeyword  string
	logsLines    int
	logsOut      string
)

func init() {
	rootCmd.AddCommand(logsCmd)

	logsCmd.Flags().StringVarP(&logsCategory, "category", "c", "main", "log category (main, tick)")
	logsCmd.Flags().StringVar(&logsFrom, "from", "", "first day YYYY-MM-DD (default today)")
	logsCmd.Flags().StringVar(&logsTo, "to", "", "last day YYYY-MM-DD (default today)")
	logsCmd.Flags().StringVarP(&logsKeyword, "keyword", "k", "", "search every file for this text")
	logsCmd.Flags().IntVarP(&logsLines, "lines", "n", 0, "lines to tail (default from config)")
	logsCmd.Flags().StringVarP(&logsOut, "out", "o", "", "write the lines to FILE, or to the export file name inside DIR")
}

func runLogs(cmd *cobra.Command, args []string) error {
	cat, err := logs.ParseCategory(logsCategory)
	if err != nil {
		return err
	}
	loc, err := cfg.Logs.Location()
	if err != nil {
		return err
	}

	today := time.Now().In(loc)
	from, err := parseDay(logsFrom, today, loc)
	if err != nil {
		return fmt.Errorf("--from: %w", err)
	}
	to, err := parseDay(logsTo, today, loc)
	if err != nil {
		return fmt.Errorf("--to: %w", err)
	}

	q := logs.Query{
		Base:      cfg.Logs.Dir,
		Category:  cat,
		From:      from,
		To:        to,
		Keyword:   logsKeyword,
		TailLines: cfg.Logs.TailLines,
		Location:  loc,
	}
	if logsLines > 0 {
		q.TailLines = logsLines
	}

	res, err := q.Run()
	if err != nil {
		return fmt.Errorf("log query: %w", err)
	}
	logging.Report(logger, "log query", res.Report)

	files := make([]string, len(res.Files))
	for i, f := range res.Files {
		files[i] = f.Label()
	}
	logger.Info("log files",
		zap.String("mode", string(res.Mode)),
		zap.Strings("files", files),
		zap.Int("lines", len(res.Lines)),
	)

	if logsOut == "" {
		return logs.WriteLines(cmd.OutOrStdout(), res.Lines)
	}

	path := logsOut
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, logs.ExportName(cat, from, to))
	}
	if err := writeFile(path, func(w io.Writer) error { return logs.WriteLines(w, res.Lines) }); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %d lines to %s\n", len(res.Lines), path)
	return nil
}

func parseDay(s string, def time.Time, loc *time.Location) (time.Time, error) {
	if s == "" {
		return def, nil
	}
	return time.ParseInLocation("2006-01-02", s, loc)
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
