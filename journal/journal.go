// Package journal reads the trading terminal's per-day trade journals and
// position snapshots, normalizes them into canonical records, and can write
// the results to CSV or SQLite.
package journal

import (
	"encoding/json"
	"fmt"
	"time"
)

// Canonical trade field names.
const (
	FieldDate      = "date"
	FieldStockCode = "StockCode"
	FieldVolume    = "Volume"
	FieldPrice     = "Price"
	FieldValue     = "Value"
	FieldTradeType = "TradeType"
	FieldOrderID   = "OrderId"
	FieldTradeID   = "TradeId"
	FieldTradeTime = "TradeTime"
)

// CanonicalFields lists the typed trade fields in display order.
var CanonicalFields = []string{
	FieldDate,
	FieldStockCode,
	FieldVolume,
	FieldPrice,
	FieldValue,
	FieldTradeType,
	FieldOrderID,
	FieldTradeID,
	FieldTradeTime,
}

type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// Direction codes used by the terminal.
const (
	SellCode = 23
	BuyCode  = 24
)

// Direction is a trade's TradeType: a recoded side, or whatever raw value
// the journal held when it was not one of the known codes.
type Direction struct {
	Side Side
	Raw  any
}

// Value is the side tag if known, else the raw value.
func (d Direction) Value() any {
	if d.Side != "" {
		return string(d.Side)
	}
	return d.Raw
}

func (d Direction) String() string {
	v := d.Value()
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

// Trade is one normalized execution from a trade journal.
//
// Only fields that were present in the source are reported by Has and Map.
// Keys outside the canonical set are carried unchanged in Extra, with
// numbers held as json.Number.
//
// StockCode, OrderID, TradeID and TradeTime hold the text form of the
// value. When the journal wrote one of them as a JSON number, Map returns
// it as a json.Number with the original digits.
type Trade struct {
	Date      string // YYYYMMDD, from the journal file name
	StockCode string
	Volume    float64
	Price     float64
	Value     float64
	TradeType Direction
	OrderID   string
	TradeID   string
	TradeTime string
	Extra     map[string]any

	present fieldSet
	numeric fieldSet
}

// Numeric reports whether a text field was written as a JSON number.
func (t Trade) Numeric(field string) bool {
	i := fieldIndex(field)
	return i >= 0 && t.present.has(i) && t.numeric.has(i)
}

// Has reports whether the canonical field name was present.
func (t Trade) Has(field string) bool {
	i := fieldIndex(field)
	return i >= 0 && t.present.has(i)
}

// Map returns the trade as a canonical-keyed record holding the present
// fields and every extra key.
func (t Trade) Map() map[string]any {
	m := make(map[string]any, len(CanonicalFields)+len(t.Extra))
	for k, v := range t.Extra {
		m[k] = v
	}
	for i, f := range CanonicalFields {
		if !t.present.has(i) {
			continue
		}
		v := t.field(f)
		if s, ok := v.(string); ok && t.numeric.has(i) {
			v = json.Number(s)
		}
		m[f] = v
	}
	return m
}

func (t Trade) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Map())
}

func (t Trade) field(name string) any {
	switch name {
	case FieldDate:
		return t.Date
	case FieldStockCode:
		return t.StockCode
	case FieldVolume:
		return t.Volume
	case FieldPrice:
		return t.Price
	case FieldValue:
		return t.Value
	case FieldTradeType:
		return t.TradeType.Value()
	case FieldOrderID:
		return t.OrderID
	case FieldTradeID:
		return t.TradeID
	case FieldTradeTime:
		return t.TradeTime
	}
	return nil
}

type fieldSet uint16

func (s fieldSet) has(i int) bool { return s&(1<<i) != 0 }
func (s *fieldSet) add(i int)     { *s |= 1 << i }
func (s *fieldSet) del(i int)     { *s &^= 1 << i }

func fieldIndex(name string) int {
	for i, f := range CanonicalFields {
		if f == name {
			return i
		}
	}
	return -1
}

// AssetPoint is the account value on one day.
type AssetPoint struct {
	Date         time.Time
	TotalAsset   float64
	MarketValue  float64
	Interpolated bool
}

func (p AssetPoint) Day() string {
	return p.Date.Format("2006-01-02")
}

func (p AssetPoint) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Date         string  `json:"date"`
		TotalAsset   float64 `json:"total_asset"`
		MarketValue  float64 `json:"market_value"`
		Interpolated bool    `json:"interpolated"`
	}{p.Day(), p.TotalAsset, p.MarketValue, p.Interpolated})
}

// Sink receives normalized records, e.g. for export.
type Sink interface {
	RecordTrade(Trade) error
	RecordAsset(AssetPoint) error
	Close() error
}
