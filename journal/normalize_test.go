package journal

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func writeJSON(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func mustTrade(t *testing.T, day, raw string) Trade {
	t.Helper()
	tr, err := NormalizeTrade(day, gjson.Parse(raw))
	require.NoError(t, err)
	return tr
}

func TestNormalizeTradeCanonical(t *testing.T) {
	t.Parallel()

	tr := mustTrade(t, "20240102", `{
		"StockCode": "600000.SH",
		"Volume": 100,
		"Price": 10.5,
		"Value": 1050,
		"TradeType": 23,
		"OrderId": "O1",
		"TradeId": "T1",
		"TradeTime": "09:30:00"
	}`)

	assert.Equal(t, map[string]any{
		"date":      "20240102",
		"StockCode": "600000.SH",
		"Volume":    100.0,
		"Price":     10.5,
		"Value":     1050.0,
		"TradeType": "sell",
		"OrderId":   "O1",
		"TradeId":   "T1",
		"TradeTime": "09:30:00",
	}, tr.Map())
	assert.Equal(t, SideSell, tr.TradeType.Side)
}

func TestNormalizeTradeLocalizedMatchesCanonical(t *testing.T) {
	t.Parallel()

	canonical := mustTrade(t, "20240102", `{
		"StockCode": "000001.SZ", "Volume": 200, "Price": 12.34, "Value": 2468,
		"TradeType": 24, "OrderId": "O9", "TradeId": "T9", "TradeTime": "14:01:02"
	}`)
	localized := mustTrade(t, "20240102", `{
		"证券代码": "000001.SZ", "成交数量": 200, "成交均价": 12.34, "成交金额": 2468,
		"交易类型": 24, "订单编号": "O9", "成交编号": "T9", "成交时间": "14:01:02"
	}`)

	assert.Equal(t, canonical.Map(), localized.Map())
	assert.Equal(t, "buy", localized.Map()[FieldTradeType])

	for k := range LocalizedFields {
		assert.NotContains(t, localized.Map(), k)
	}
}

func TestNormalizeTradeDirection(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want any
	}{
		{"sell code", `{"TradeType": 23}`, "sell"},
		{"buy code", `{"TradeType": 24}`, "buy"},
		{"unknown code", `{"TradeType": 99}`, json.Number("99")},
		{"string code passes through", `{"TradeType": "23"}`, "23"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := mustTrade(t, "20240102", tt.raw)
			assert.Equal(t, tt.want, tr.Map()[FieldTradeType])
		})
	}

	absent := mustTrade(t, "20240102", `{"StockCode": "600000.SH"}`)
	assert.False(t, absent.Has(FieldTradeType))
	assert.NotContains(t, absent.Map(), FieldTradeType)
}

func TestNormalizeTradeExtrasAndNulls(t *testing.T) {
	t.Parallel()

	tr := mustTrade(t, "20240102", `{
		"StockCode": "600000.SH",
		"备注": "manual",
		"fee": 1.5,
		"Price": null,
		"date": "19990101"
	}`)

	m := tr.Map()
	assert.Equal(t, "manual", m["备注"])
	assert.Equal(t, json.Number("1.5"), m["fee"])
	assert.Equal(t, "20240102", m[FieldDate])
	assert.False(t, tr.Has(FieldPrice))
	assert.NotContains(t, m, FieldPrice)
}

func TestNormalizeTradeLaterKeyWins(t *testing.T) {
	t.Parallel()

	tr := mustTrade(t, "20240102", `{"证券代码": "111111.SH", "StockCode": "222222.SH"}`)
	assert.Equal(t, "222222.SH", tr.StockCode)

	tr = mustTrade(t, "20240102", `{"StockCode": "222222.SH", "证券代码": "111111.SH"}`)
	assert.Equal(t, "111111.SH", tr.StockCode)
}

func TestNormalizeTradeNumericStrings(t *testing.T) {
	t.Parallel()

	tr := mustTrade(t, "20240102", `{"Volume": "300", "OrderId": 12345, "TradeId": "12345"}`)
	assert.InDelta(t, 300.0, tr.Volume, 1e-9)
	assert.Equal(t, "12345", tr.OrderID)
	assert.True(t, tr.Numeric(FieldOrderID))
	assert.False(t, tr.Numeric(FieldTradeID))
	assert.Equal(t, json.Number("12345"), tr.Map()[FieldOrderID])
	assert.Equal(t, "12345", tr.Map()[FieldTradeID])

	_, err := NormalizeTrade("20240102", gjson.Parse(`{"Volume": "lots"}`))
	assert.Error(t, err)

	_, err = NormalizeTrade("20240102", gjson.Parse(`[1, 2]`))
	assert.Error(t, err)
}

func TestNormalizeTradeNumericIDsMatchCanonical(t *testing.T) {
	t.Parallel()

	localized := mustTrade(t, "20240501", `{
		"证券代码": "600519.SH", "成交数量": 100, "成交均价": 1700.5, "成交金额": 170050,
		"交易类型": 24, "订单编号": 12345, "成交编号": 67890, "成交时间": 1714527000
	}`)
	canonical := mustTrade(t, "20240501", `{
		"StockCode": "600519.SH", "Volume": 100, "Price": 1700.5, "Value": 170050,
		"TradeType": 24, "OrderId": 12345, "TradeId": 67890, "TradeTime": 1714527000
	}`)
	assert.Equal(t, canonical.Map(), localized.Map())

	b, err := json.Marshal(localized)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"date": "20240501", "StockCode": "600519.SH", "Volume": 100, "Price": 1700.5,
		"Value": 170050, "TradeType": "buy",
		"OrderId": 12345, "TradeId": 67890, "TradeTime": 1714527000
	}`, string(b))
	assert.Contains(t, string(b), `"OrderId":12345`)
	assert.Contains(t, string(b), `"TradeTime":1714527000`)

	assert.Equal(t, "12345", localized.OrderID)
	assert.Equal(t, "1714527000", localized.TradeTime)
}

func TestNormalizeTradeExtrasKeepExactNumbers(t *testing.T) {
	t.Parallel()

	tr := mustTrade(t, "20240501", `{
		"StockCode": "600000.SH",
		"order_sysid": 9007199254740993,
		"legs": [{"qty": 9007199254740995}],
		"flag": true
	}`)

	m := tr.Map()
	assert.Equal(t, json.Number("9007199254740993"), m["order_sysid"])
	assert.Equal(t, true, m["flag"])

	b, err := json.Marshal(tr)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"order_sysid":9007199254740993`)
	assert.Contains(t, string(b), `"qty":9007199254740995`)
}

func TestNormalizeKeepsPathOrderAndSkipsCorruptFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	p1 := writeJSON(t, dir, "20240101_trades.json", `{"trades": [{"TradeId": "A"}, {"TradeId": "B"}]}`)
	p2 := writeJSON(t, dir, "20240102_trades.json", `{"trades": [ {"TradeId": "broken"`)
	p3 := writeJSON(t, dir, "20240103_trades.json", `{"trades": [{"TradeId": "C"}]}`)

	trades, rep := Normalize([]string{p3, p2, p1})

	var ids, days []string
	for _, tr := range trades {
		ids = append(ids, tr.TradeID)
		days = append(days, tr.Date)
	}
	assert.Equal(t, []string{"C", "A", "B"}, ids)
	assert.Equal(t, []string{"20240103", "20240101", "20240101"}, days)

	assert.Equal(t, 3, rep.Processed)
	require.Equal(t, 1, rep.SkippedCount())
	assert.Equal(t, p2, rep.Skipped[0].Source)
	assert.Equal(t, "invalid JSON", rep.Skipped[0].Reason)
}

func TestNormalizeSkips(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	undated := writeJSON(t, dir, "trades.json", `{"trades": []}`)
	noArray := writeJSON(t, dir, "20240101_trades.json", `{"orders": []}`)
	notObject := writeJSON(t, dir, "20240102_trades.json", `[1, 2, 3]`)
	badEntry := writeJSON(t, dir, "20240103_trades.json", `{"trades": [{"TradeId": "ok"}, 7, {"Volume": "x"}]}`)
	missing := filepath.Join(dir, "20240104_trades.json")

	trades, rep := Normalize([]string{undated, noArray, notObject, badEntry, missing})

	require.Len(t, trades, 1)
	assert.Equal(t, "ok", trades[0].TradeID)
	assert.Equal(t, 1, rep.Processed)

	var sources []string
	for _, s := range rep.Skipped {
		sources = append(sources, s.Source)
	}
	assert.Equal(t, []string{
		undated,
		noArray,
		notObject,
		badEntry + "#2",
		badEntry + "#3",
		missing,
	}, sources)
	assert.Equal(t, `missing "trades" array`, rep.Skipped[1].Reason)
	assert.Equal(t, "document is not an object", rep.Skipped[2].Reason)
}

func TestNormalizeEmpty(t *testing.T) {
	t.Parallel()

	trades, rep := Normalize(nil)
	assert.Empty(t, trades)
	assert.True(t, rep.Clean())
}
