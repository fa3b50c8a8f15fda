package journal

import (
	"encoding/csv"
	"encoding/json"
	"os"

	"github.com/shopspring/decimal"
)

var (
	tradeHeader  = []string{"run_id", "date", "StockCode", "Volume", "Price", "Value", "TradeType", "OrderId", "TradeId", "TradeTime", "extra"}
	equityHeader = []string{"run_id", "date", "total_asset", "market_value", "interpolated"}
)

// CSVJournal writes trades and asset points to two CSV files.
type CSVJournal struct {
	runID  string
	trades *csv.Writer
	equity *csv.Writer
	tf, ef *os.File
}

func NewCSV(tradesPath, equityPath, runID string) (*CSVJournal, error) {
	tf, err := os.Create(tradesPath)
	if err != nil {
		return nil, err
	}
	ef, err := os.Create(equityPath)
	if err != nil {
		tf.Close()
		return nil, err
	}

	tw := csv.NewWriter(tf)
	ew := csv.NewWriter(ef)

	if err := tw.Write(tradeHeader); err != nil {
		return nil, err
	}
	if err := ew.Write(equityHeader); err != nil {
		return nil, err
	}

	tw.Flush()
	if err := tw.Error(); err != nil {
		return nil, err
	}
	ew.Flush()
	if err := ew.Error(); err != nil {
		return nil, err
	}

	return &CSVJournal{runID, tw, ew, tf, ef}, nil
}

func (j *CSVJournal) RecordTrade(t Trade) error {
	extra := ""
	if len(t.Extra) > 0 {
		b, err := json.Marshal(t.Extra)
		if err != nil {
			return err
		}
		extra = string(b)
	}

	err := j.trades.Write([]string{
		j.runID,
		t.Date,
		t.StockCode,
		opt(t, FieldVolume, formatNumber(t.Volume)),
		opt(t, FieldPrice, price(t.Price)),
		opt(t, FieldValue, money(t.Value)),
		t.TradeType.String(),
		t.OrderID,
		t.TradeID,
		t.TradeTime,
		extra,
	})
	if err != nil {
		return err
	}
	j.trades.Flush()
	return j.trades.Error()
}

func (j *CSVJournal) RecordAsset(p AssetPoint) error {
	err := j.equity.Write([]string{
		j.runID,
		p.Day(),
		money(p.TotalAsset),
		money(p.MarketValue),
		boolString(p.Interpolated),
	})
	if err != nil {
		return err
	}

	j.equity.Flush()
	return j.equity.Error()
}

func (j *CSVJournal) Close() error {
	j.trades.Flush()
	if err := j.trades.Error(); err != nil {
		return err
	}
	j.equity.Flush()
	if err := j.equity.Error(); err != nil {
		return err
	}

	if err := j.tf.Close(); err != nil {
		return err
	}
	if err := j.ef.Close(); err != nil {
		return err
	}
	return nil
}

// opt renders s only when the field was present in the journal.
func opt(t Trade, field, s string) string {
	if !t.Has(field) {
		return ""
	}
	return s
}

func money(x float64) string {
	return decimal.NewFromFloat(x).StringFixed(2)
}

func price(x float64) string {
	return decimal.NewFromFloat(x).StringFixed(4)
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
