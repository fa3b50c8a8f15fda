package journal

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/gjson"
	"golang.org/x/sync/errgroup"

	"github.com/rustyeddy/quantops/pkg/scan"
)

const readWorkers = 4

// LocalizedFields maps the terminal's localized trade keys to canonical ones.
var LocalizedFields = map[string]string{
	"证券代码": FieldStockCode,
	"成交数量": FieldVolume,
	"成交均价": FieldPrice,
	"成交金额": FieldValue,
	"订单编号": FieldOrderID,
	"成交编号": FieldTradeID,
	"成交时间": FieldTradeTime,
	"交易类型": FieldTradeType,
}

// Normalize loads the trade journals at paths and returns their trades in
// file order, and within a file in journal order. Nothing is re-sorted:
// pass the paths in the order the result should have.
//
// A file without a date prefix, with unreadable or invalid JSON, or without
// a trades array is skipped. So is a single trade that is not an object or
// holds a non-numeric quantity. Every skip is in the report.
func Normalize(paths []string) ([]Trade, scan.Report) {
	batches := make([]tradeBatch, len(paths))

	var g errgroup.Group
	g.SetLimit(readWorkers)
	for i, p := range paths {
		g.Go(func() error {
			batches[i] = readTradeFile(p)
			return nil
		})
	}
	_ = g.Wait()

	var (
		out []Trade
		rep scan.Report
	)
	for _, b := range batches {
		rep.Merge(b.report)
		out = append(out, b.trades...)
	}
	return out, rep
}

type tradeBatch struct {
	trades []Trade
	report scan.Report
}

func readTradeFile(path string) (b tradeBatch) {
	_, day, ok := DateFromName(filepath.Base(path))
	if !ok {
		b.report.Skip(path, "file name has no YYYYMMDD prefix")
		return b
	}
	data, err := os.ReadFile(path)
	if err != nil {
		b.report.Skip(path, err.Error())
		return b
	}
	if !gjson.ValidBytes(data) {
		b.report.Skip(path, "invalid JSON")
		return b
	}
	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		b.report.Skip(path, "document is not an object")
		return b
	}
	trades := lookup(doc, "trades")
	if !trades.IsArray() {
		b.report.Skip(path, `missing "trades" array`)
		return b
	}

	n := 0
	trades.ForEach(func(_, v gjson.Result) bool {
		n++
		t, err := NormalizeTrade(day, v)
		if err != nil {
			b.report.Skipf(fmt.Sprintf("%s#%d", path, n), "%v", err)
			return true
		}
		b.report.Ok()
		b.trades = append(b.trades, t)
		return true
	})
	return b
}

// NormalizeTrade converts one raw journal entry. Keys are applied in
// document order, so when a key repeats, or a localized key and its
// canonical name both appear, the later one wins. A date key in the entry
// is ignored: the journal's file date is authoritative.
func NormalizeTrade(day string, raw gjson.Result) (Trade, error) {
	if !raw.IsObject() {
		return Trade{}, errors.New("trade entry is not an object")
	}

	t := Trade{Date: day}
	t.present.add(fieldIndex(FieldDate))

	var err error
	raw.ForEach(func(k, v gjson.Result) bool {
		key := k.String()
		if canon, ok := LocalizedFields[key]; ok {
			key = canon
		}
		if key == FieldDate {
			return true
		}
		if err = t.set(key, v); err != nil {
			err = fmt.Errorf("%s: %w", k.String(), err)
			return false
		}
		return true
	})
	if err != nil {
		return Trade{}, err
	}
	return t, nil
}

func (t *Trade) set(key string, v gjson.Result) error {
	idx := fieldIndex(key)
	if idx < 0 {
		if t.Extra == nil {
			t.Extra = make(map[string]any)
		}
		t.Extra[key] = literal(v)
		return nil
	}
	if v.Type == gjson.Null {
		t.present.del(idx)
		t.numeric.del(idx)
		return nil
	}

	var err error
	switch key {
	case FieldStockCode:
		t.StockCode, err = textValue(v)
	case FieldVolume:
		t.Volume, err = numberValue(v)
	case FieldPrice:
		t.Price, err = numberValue(v)
	case FieldValue:
		t.Value, err = numberValue(v)
	case FieldTradeType:
		t.TradeType = directionOf(v)
	case FieldOrderID:
		t.OrderID, err = textValue(v)
	case FieldTradeID:
		t.TradeID, err = textValue(v)
	case FieldTradeTime:
		t.TradeTime, err = textValue(v)
	}
	if err != nil {
		return err
	}
	t.present.add(idx)
	if v.Type == gjson.Number && textField(key) {
		t.numeric.add(idx)
	} else {
		t.numeric.del(idx)
	}
	return nil
}

func textField(key string) bool {
	switch key {
	case FieldStockCode, FieldOrderID, FieldTradeID, FieldTradeTime:
		return true
	}
	return false
}

// directionOf recodes the terminal's numeric direction. Only JSON numbers
// equal to a known code are recoded; "23" as a string passes through.
func directionOf(v gjson.Result) Direction {
	if v.Type == gjson.Number {
		switch v.Num {
		case SellCode:
			return Direction{Side: SideSell}
		case BuyCode:
			return Direction{Side: SideBuy}
		}
	}
	return Direction{Raw: literal(v)}
}
