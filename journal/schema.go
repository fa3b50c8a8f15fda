// journal/schema.go
package journal

const Schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id TEXT PRIMARY KEY,
	created DATETIME NOT NULL,
	trades INTEGER NOT NULL DEFAULT 0,
	skipped INTEGER NOT NULL DEFAULT 0,
	first_day TEXT,
	last_day TEXT,
	start_asset REAL,
	end_asset REAL,
	return_pct REAL,
	max_dd_pct REAL
);

CREATE TABLE IF NOT EXISTS trades (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id TEXT NOT NULL,
	day TEXT NOT NULL,
	stock_code TEXT,
	volume REAL,
	price REAL,
	value REAL,
	trade_type TEXT,
	order_id TEXT,
	trade_id TEXT,
	trade_time TEXT,
	extra TEXT NOT NULL DEFAULT '{}'
);

CREATE INDEX IF NOT EXISTS idx_trades_day ON trades(day);
CREATE INDEX IF NOT EXISTS idx_trades_trade_id ON trades(trade_id);

CREATE TABLE IF NOT EXISTS equity (
	run_id TEXT NOT NULL,
	day TEXT NOT NULL,
	total_asset REAL NOT NULL,
	market_value REAL NOT NULL,
	interpolated INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_equity_run_day ON equity(run_id, day);
`
