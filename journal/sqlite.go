package journal

import (
	"database/sql"
	"encoding/json"

	_ "github.com/mattn/go-sqlite3"
)

// SQLite stores exported trades, asset points and run summaries.
type SQLite struct {
	db    *sql.DB
	runID string
}

// NewSQLite opens (or creates) the database at path. Records written
// through it are stamped with runID.
func NewSQLite(path, runID string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLite{db: db, runID: runID}, nil
}

func (j *SQLite) RecordTrade(t Trade) error {
	extra := "{}"
	if len(t.Extra) > 0 {
		b, err := json.Marshal(t.Extra)
		if err != nil {
			return err
		}
		extra = string(b)
	}

	_, err := j.db.Exec(`
		INSERT INTO trades
		(run_id, day, stock_code, volume, price, value, trade_type, order_id, trade_id, trade_time, extra)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		j.runID, t.Date,
		nullText(t, FieldStockCode, t.StockCode),
		nullReal(t, FieldVolume, t.Volume),
		nullReal(t, FieldPrice, t.Price),
		nullReal(t, FieldValue, t.Value),
		nullText(t, FieldTradeType, t.TradeType.String()),
		nullText(t, FieldOrderID, t.OrderID),
		nullText(t, FieldTradeID, t.TradeID),
		nullText(t, FieldTradeTime, t.TradeTime),
		extra,
	)
	return err
}

func (j *SQLite) RecordAsset(p AssetPoint) error {
	_, err := j.db.Exec(`
		INSERT INTO equity
		(run_id, day, total_asset, market_value, interpolated)
		VALUES (?, ?, ?, ?, ?)`,
		j.runID, p.Day(), p.TotalAsset, p.MarketValue, p.Interpolated,
	)
	return err
}

// RecordRun stores the summary of this export.
func (j *SQLite) RecordRun(r Run) error {
	_, err := j.db.Exec(`
		INSERT OR REPLACE INTO runs
		(run_id, created, trades, skipped, first_day, last_day, start_asset, end_asset, return_pct, max_dd_pct)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.Created, r.Trades, r.Skipped, r.FirstDay, r.LastDay,
		r.StartAsset, r.EndAsset, r.ReturnPct, r.MaxDDPct,
	)
	return err
}

func (j *SQLite) Close() error {
	return j.db.Close()
}

func nullText(t Trade, field, s string) sql.NullString {
	return sql.NullString{String: s, Valid: t.Has(field)}
}

func nullReal(t Trade, field string, f float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: f, Valid: t.Has(field)}
}
