package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/quantops/journal"
)

// Config is the complete quantops configuration.
type Config struct {
	Logs    LogsConfig    `json:"logs" yaml:"logs"`
	Signals SignalsConfig `json:"signals" yaml:"signals"`
	Journal JournalConfig `json:"journal" yaml:"journal"`
	Export  ExportConfig  `json:"export" yaml:"export"`
	Server  ServerConfig  `json:"server" yaml:"server"`
	Log     LogConfig     `json:"log" yaml:"log"`
}

// LogsConfig locates the strategy's text logs.
type LogsConfig struct {
	Dir       string `json:"dir" yaml:"dir"`
	TailLines int    `json:"tail_lines" yaml:"tail_lines"`
	Timezone  string `json:"timezone,omitempty" yaml:"timezone,omitempty"` // IANA name; empty is local time
}

// SignalsConfig controls the signal scan. An empty File means the current
// main log under Logs.Dir.
type SignalsConfig struct {
	File       string `json:"file,omitempty" yaml:"file,omitempty"`
	LinesLimit int    `json:"lines_limit" yaml:"lines_limit"`
}

// JournalConfig locates the per-day trade journals and position snapshots.
type JournalConfig struct {
	TradesDir    string                 `json:"trades_dir" yaml:"trades_dir"`
	TradeSuffix  string                 `json:"trade_suffix" yaml:"trade_suffix"`
	NewestFirst  bool                   `json:"newest_first" yaml:"newest_first"`
	SnapshotsDir string                 `json:"snapshots_dir" yaml:"snapshots_dir"`
	Snapshot     journal.SnapshotLayout `json:"snapshot" yaml:"snapshot"`
}

// ExportConfig contains export sink parameters.
type ExportConfig struct {
	Type       string `json:"type" yaml:"type"` // "csv" or "sqlite"
	TradesFile string `json:"trades_file,omitempty" yaml:"trades_file,omitempty"`
	EquityFile string `json:"equity_file,omitempty" yaml:"equity_file,omitempty"`
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
	OrgFile    string `json:"org_file,omitempty" yaml:"org_file,omitempty"`
}

type ServerConfig struct {
	Addr  string      `json:"addr" yaml:"addr"`
	Cache CacheConfig `json:"cache" yaml:"cache"`
}

// CacheConfig holds per-route cache lifetimes, e.g. "15s" or "1m".
type CacheConfig struct {
	Logs    Duration `json:"logs" yaml:"logs"`
	Signals Duration `json:"signals" yaml:"signals"`
	Trades  Duration `json:"trades" yaml:"trades"`
	Assets  Duration `json:"assets" yaml:"assets"`
}

type LogConfig struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format,omitempty" yaml:"format,omitempty"`
}

// Duration is a time.Duration written as a string.
type Duration string

// Parse converts d to a time.Duration. Empty is zero.
func (d Duration) Parse() (time.Duration, error) {
	if d == "" {
		return 0, nil
	}
	return time.ParseDuration(string(d))
}

// Location returns the time zone log timestamps are read in.
func (c LogsConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

// Environment variables that override file settings.
const (
	EnvLogDir       = "QUANTOPS_LOG_DIR"
	EnvTradesDir    = "QUANTOPS_TRADES_DIR"
	EnvSnapshotsDir = "QUANTOPS_SNAPSHOTS_DIR"
	EnvSignalLines  = "QUANTOPS_SIGNAL_LINES"
	EnvListenAddr   = "QUANTOPS_LISTEN_ADDR"
	EnvLogLevel     = "QUANTOPS_LOG_LEVEL"
)

// Load reads path like LoadFromFile, but a missing file yields the
// defaults with environment overrides applied.
func Load(path string) (*Config, error) {
	_, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		cfg := Default()
		if err := cfg.ApplyEnv(); err != nil {
			return nil, err
		}
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid config: %w", err)
		}
		return cfg, nil
	}
	return LoadFromFile(path)
}

// LoadFromFile loads configuration from a file (YAML or JSON) on top of the
// defaults, then applies environment overrides and validates.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		cfg = Default()
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// ApplyEnv overrides settings from QUANTOPS_* environment variables.
func (c *Config) ApplyEnv() error {
	if v, ok := os.LookupEnv(EnvLogDir); ok {
		c.Logs.Dir = v
	}
	if v, ok := os.LookupEnv(EnvTradesDir); ok {
		c.Journal.TradesDir = v
	}
	if v, ok := os.LookupEnv(EnvSnapshotsDir); ok {
		c.Journal.SnapshotsDir = v
	}
	if v, ok := os.LookupEnv(EnvSignalLines); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: %w", EnvSignalLines, err)
		}
		c.Signals.LinesLimit = n
	}
	if v, ok := os.LookupEnv(EnvListenAddr); ok {
		c.Server.Addr = v
	}
	if v, ok := os.LookupEnv(EnvLogLevel); ok {
		c.Log.Level = v
	}
	return nil
}

// SaveToFile saves configuration to a file (YAML for .yaml/.yml, else JSON)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}

	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Logs.Dir == "" {
		return fmt.Errorf("logs.dir is required")
	}
	if c.Logs.TailLines < 0 {
		return fmt.Errorf("logs.tail_lines must not be negative")
	}
	if _, err := c.Logs.Location(); err != nil {
		return fmt.Errorf("logs.timezone: %w", err)
	}
	if c.Signals.LinesLimit < 0 {
		return fmt.Errorf("signals.lines_limit must not be negative")
	}
	if c.Journal.TradesDir == "" {
		return fmt.Errorf("journal.trades_dir is required")
	}
	if c.Journal.SnapshotsDir == "" {
		return fmt.Errorf("journal.snapshots_dir is required")
	}
	s := c.Journal.Snapshot
	if s.AccountKey == "" || s.TotalAssetKey == "" || s.MarketValueKey == "" {
		return fmt.Errorf("journal.snapshot keys are required")
	}
	if c.Export.Type != "csv" && c.Export.Type != "sqlite" {
		return fmt.Errorf("export.type must be 'csv' or 'sqlite'")
	}
	if c.Export.Type == "csv" && (c.Export.TradesFile == "" || c.Export.EquityFile == "") {
		return fmt.Errorf("export trades_file and equity_file required for CSV type")
	}
	if c.Export.Type == "sqlite" && c.Export.DBPath == "" {
		return fmt.Errorf("export db_path required for SQLite type")
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	for name, d := range map[string]Duration{
		"logs":    c.Server.Cache.Logs,
		"signals": c.Server.Cache.Signals,
		"trades":  c.Server.Cache.Trades,
		"assets":  c.Server.Cache.Assets,
	} {
		v, err := d.Parse()
		if err != nil {
			return fmt.Errorf("server.cache.%s: %w", name, err)
		}
		if v < 0 {
			return fmt.Errorf("server.cache.%s must not be negative", name)
		}
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error")
	}
	switch c.Log.Format {
	case "", "json", "console":
	default:
		return fmt.Errorf("log.format must be 'json' or 'console'")
	}
	return nil
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Logs: LogsConfig{
			Dir:       "./logs",
			TailLines: 200,
		},
		Signals: SignalsConfig{
			LinesLimit: 10000,
		},
		Journal: JournalConfig{
			TradesDir:    "./data/trades",
			TradeSuffix:  ".json",
			NewestFirst:  true,
			SnapshotsDir: "./data/positions",
			Snapshot:     journal.DefaultSnapshotLayout(),
		},
		Export: ExportConfig{
			Type:       "csv",
			TradesFile: "./trades.csv",
			EquityFile: "./equity.csv",
			DBPath:     "./quantops.sqlite",
		},
		Server: ServerConfig{
			Addr: ":8080",
			Cache: CacheConfig{
				Logs:    "15s",
				Signals: "60s",
				Trades:  "15s",
				Assets:  "60s",
			},
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}
