package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.NotNil(t, cfg)
	assert.Equal(t, 200, cfg.Logs.TailLines)
	assert.Equal(t, 10000, cfg.Signals.LinesLimit)
	assert.Equal(t, "_positions.json", cfg.Journal.Snapshot.Suffix)
	assert.Equal(t, "账户信息", cfg.Journal.Snapshot.AccountKey)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "csv", cfg.Export.Type)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"valid config", func(*Config) {}, ""},
		{"missing log dir", func(c *Config) { c.Logs.Dir = "" }, "logs.dir is required"},
		{"negative tail", func(c *Config) { c.Logs.TailLines = -1 }, "logs.tail_lines"},
		{"bad timezone", func(c *Config) { c.Logs.Timezone = "Mars/Olympus" }, "logs.timezone"},
		{"negative signal lines", func(c *Config) { c.Signals.LinesLimit = -5 }, "signals.lines_limit"},
		{"missing trades dir", func(c *Config) { c.Journal.TradesDir = "" }, "journal.trades_dir is required"},
		{"missing snapshots dir", func(c *Config) { c.Journal.SnapshotsDir = "" }, "journal.snapshots_dir is required"},
		{"missing snapshot key", func(c *Config) { c.Journal.Snapshot.TotalAssetKey = "" }, "journal.snapshot keys"},
		{"unknown export type", func(c *Config) { c.Export.Type = "parquet" }, "export.type"},
		{"csv without files", func(c *Config) { c.Export.EquityFile = "" }, "required for CSV type"},
		{"sqlite without db", func(c *Config) { c.Export.Type = "sqlite"; c.Export.DBPath = "" }, "required for SQLite type"},
		{"missing addr", func(c *Config) { c.Server.Addr = "" }, "server.addr is required"},
		{"bad ttl", func(c *Config) { c.Server.Cache.Trades = "soon" }, "server.cache.trades"},
		{"negative ttl", func(c *Config) { c.Server.Cache.Assets = "-1s" }, "server.cache.assets"},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name string
		ext  string
	}{
		{"json format", ".json"},
		{"yaml format", ".yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Logs.Dir = "/var/log/strategy"
			cfg.Journal.NewestFirst = false
			path := filepath.Join(tmpDir, "test"+tt.ext)

			require.NoError(t, cfg.SaveToFile(path))

			_, err := os.Stat(path)
			require.NoError(t, err)

			loaded, err := LoadFromFile(path)
			require.NoError(t, err)
			assert.Equal(t, cfg, loaded)
		})
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logs:\n  dir: /srv/logs\nserver:\n  addr: 127.0.0.1:9000\n"), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/logs", cfg.Logs.Dir)
	assert.Equal(t, 200, cfg.Logs.TailLines)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, Duration("60s"), cfg.Server.Cache.Assets)
}

func TestLoadInvalidFile(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/path.yaml")
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logs: [unclosed"), 0o644))
	_, err = LoadFromFile(path)
	assert.Error(t, err)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "quantops.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default().Logs, cfg.Logs)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(EnvLogDir, "/env/logs")
	t.Setenv(EnvTradesDir, "/env/trades")
	t.Setenv(EnvSnapshotsDir, "/env/positions")
	t.Setenv(EnvSignalLines, "500")
	t.Setenv(EnvListenAddr, ":9999")
	t.Setenv(EnvLogLevel, "debug")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "/env/logs", cfg.Logs.Dir)
	assert.Equal(t, "/env/trades", cfg.Journal.TradesDir)
	assert.Equal(t, "/env/positions", cfg.Journal.SnapshotsDir)
	assert.Equal(t, 500, cfg.Signals.LinesLimit)
	assert.Equal(t, ":9999", cfg.Server.Addr)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestEnvOverrideBadNumber(t *testing.T) {
	t.Setenv(EnvSignalLines, "many")

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvSignalLines)
}

func TestDurationParse(t *testing.T) {
	tests := []struct {
		in       Duration
		expected time.Duration
		wantErr  bool
	}{
		{"15s", 15 * time.Second, false},
		{"1m", time.Minute, false},
		{"", 0, false},
		{"invalid", 0, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.in), func(t *testing.T) {
			d, err := tt.in.Parse()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expected, d)
			}
		})
	}
}

func TestLogsLocation(t *testing.T) {
	loc, err := LogsConfig{}.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)

	loc, err = LogsConfig{Timezone: "UTC"}.Location()
	require.NoError(t, err)
	assert.Equal(t, "UTC", loc.String())
}
