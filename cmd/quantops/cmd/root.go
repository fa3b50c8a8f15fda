package cmd

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rustyeddy/quantops/config"
	"github.com/rustyeddy/quantops/pkg/id"
	"github.com/rustyeddy/quantops/pkg/logging"
)

// skipConfig marks commands that run without loading the config file.
const skipConfig = "skip-config"

var (
	cfgFile  string
	logLevel string

	cfg    *config.Config
	logger = zap.NewNop()
	runID  string
)

var rootCmd = &cobra.Command{
	Use:   "quantops",
	Short: "Operations console for a quantitative trading terminal",
	Long: `Quantops reads what a trading terminal leaves on disk and makes it queryable.

It provides tools for:
  - Tailing and searching the rotated main and tick logs by date range
  - Extracting buy and sell signals from the strategy log
  - Normalizing the per-day trade journals into canonical records
  - Building a daily asset curve from position snapshots
  - Exporting trades and the asset curve to CSV or SQLite
  - Serving all of the above as a JSON API for the dashboard`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "quantops.yaml", "config file (YAML or JSON; missing file uses defaults)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (overrides config)")
}

// setup loads .env and the config, then builds the logger. Every
// invocation gets its own run id.
func setup(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	runID = id.New()

	if cmd.Annotations[skipConfig] == "" {
		c, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		cfg = c
	} else {
		cfg = config.Default()
	}

	level := cfg.Log.Level
	if logLevel != "" {
		level = logLevel
	}
	l, err := logging.New(level, cfg.Log.Format)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	logger = l.With(zap.String("run_id", runID))
	logger.Debug("config loaded", zap.String("path", cfgFile))
	return nil
}
