package journal

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const tradeColumns = `day, stock_code, volume, price, value, trade_type, order_id, trade_id, trade_time, extra`

// GetTrade returns the most recently stored trade with the given TradeId.
func (j *SQLite) GetTrade(tradeID string) (Trade, error) {
	row := j.db.QueryRow(`
		SELECT `+tradeColumns+`
		FROM trades
		WHERE trade_id = ?
		ORDER BY id DESC
		LIMIT 1`, tradeID)

	t, err := scanTrade(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Trade{}, fmt.Errorf("trade %q not found", tradeID)
		}
		return Trade{}, err
	}
	return t, nil
}

// ListTradesBetween returns trades whose day is within [fromDay, toDay],
// both YYYYMMDD, in insertion order.
func (j *SQLite) ListTradesBetween(fromDay, toDay string) ([]Trade, error) {
	rows, err := j.db.Query(`
		SELECT `+tradeColumns+`
		FROM trades
		WHERE day >= ? AND day <= ?
		ORDER BY day ASC, id ASC`, fromDay, toDay)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Trade
	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListEquity returns the asset series stored for runID.
func (j *SQLite) ListEquity(runID string) ([]AssetPoint, error) {
	rows, err := j.db.Query(`
		SELECT day, total_asset, market_value, interpolated
		FROM equity
		WHERE run_id = ?
		ORDER BY day ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AssetPoint
	for rows.Next() {
		var (
			p   AssetPoint
			day string
		)
		if err := rows.Scan(&day, &p.TotalAsset, &p.MarketValue, &p.Interpolated); err != nil {
			return nil, err
		}
		if p.Date, err = time.Parse("2006-01-02", day); err != nil {
			return nil, fmt.Errorf("equity day %q: %w", day, err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Runs lists stored run summaries, newest first.
func (j *SQLite) Runs() ([]Run, error) {
	rows, err := j.db.Query(`
		SELECT run_id, created, trades, skipped,
		       COALESCE(first_day, ''), COALESCE(last_day, ''),
		       COALESCE(start_asset, 0), COALESCE(end_asset, 0),
		       COALESCE(return_pct, 0), COALESCE(max_dd_pct, 0)
		FROM runs
		ORDER BY created DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(
			&r.RunID,
			&r.Created,
			&r.Trades,
			&r.Skipped,
			&r.FirstDay,
			&r.LastDay,
			&r.StartAsset,
			&r.EndAsset,
			&r.ReturnPct,
			&r.MaxDDPct,
		); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrade(row rowScanner) (Trade, error) {
	var (
		t                              Trade
		code, side, order, trade, when sql.NullString
		volume, price, value           sql.NullFloat64
		extra                          string
	)
	if err := row.Scan(&t.Date, &code, &volume, &price, &value, &side, &order, &trade, &when, &extra); err != nil {
		return Trade{}, err
	}

	t.present.add(fieldIndex(FieldDate))
	text := func(field string, src sql.NullString, dst *string) {
		if src.Valid {
			*dst = src.String
			t.present.add(fieldIndex(field))
		}
	}
	num := func(field string, src sql.NullFloat64, dst *float64) {
		if src.Valid {
			*dst = src.Float64
			t.present.add(fieldIndex(field))
		}
	}
	text(FieldStockCode, code, &t.StockCode)
	num(FieldVolume, volume, &t.Volume)
	num(FieldPrice, price, &t.Price)
	num(FieldValue, value, &t.Value)
	text(FieldOrderID, order, &t.OrderID)
	text(FieldTradeID, trade, &t.TradeID)
	text(FieldTradeTime, when, &t.TradeTime)
	if side.Valid {
		switch Side(side.String) {
		case SideBuy, SideSell:
			t.TradeType = Direction{Side: Side(side.String)}
		default:
			t.TradeType = Direction{Raw: side.String}
		}
		t.present.add(fieldIndex(FieldTradeType))
	}

	if extra != "" && extra != "{}" {
		if err := decodeNumbers([]byte(extra), &t.Extra); err != nil {
			return Trade{}, fmt.Errorf("trade extra: %w", err)
		}
	}
	return t, nil
}
