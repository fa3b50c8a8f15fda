package journal

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/quantops/pkg/scan"
)

func TestSummarize(t *testing.T) {
	t.Parallel()

	trades := []Trade{
		mustTrade(t, "20240101", `{"TradeType": 24, "Value": 1000}`),
		mustTrade(t, "20240102", `{"TradeType": 24, "Value": 500}`),
		mustTrade(t, "20240103", `{"TradeType": 23, "Value": 700}`),
		mustTrade(t, "20240103", `{"TradeType": 7, "Value": 1}`),
	}
	series := AssetSeries{Points: []AssetPoint{
		{Date: day(2024, 1, 1), TotalAsset: 100},
		{Date: day(2024, 1, 2), TotalAsset: 120},
		{Date: day(2024, 1, 3), TotalAsset: 90},
		{Date: day(2024, 1, 4), TotalAsset: 130},
	}}

	var rep scan.Report
	rep.Skip("20240102_trades.json", "invalid JSON")
	rep.Skip("20240105_positions.json", "missing account info")

	r := Summarize("run-1", trades, series, rep)

	assert.Equal(t, "run-1", r.RunID)
	assert.Equal(t, 4, r.Trades)
	assert.Equal(t, 2, r.Skipped)
	assert.Equal(t, 2, r.Buys)
	assert.Equal(t, 1, r.Sells)
	assert.InDelta(t, 1500.0, r.BuyValue, 1e-9)
	assert.InDelta(t, 700.0, r.SellValue, 1e-9)
	assert.Equal(t, "2024-01-01", r.FirstDay)
	assert.Equal(t, "2024-01-04", r.LastDay)
	assert.InDelta(t, 30.0, r.ReturnPct, 1e-9)
	assert.InDelta(t, 25.0, r.MaxDDPct, 1e-9)
	assert.False(t, r.Created.IsZero())
	assert.Equal(t, []string{
		"20240102_trades.json: invalid JSON",
		"20240105_positions.json: missing account info",
	}, r.Notes)

	org, err := r.Org()
	require.NoError(t, err)
	assert.Contains(t, org, "** Skipped")
	assert.Contains(t, org, "- 20240105_positions.json: missing account info")
}

func TestSummarizeWithoutSeries(t *testing.T) {
	t.Parallel()

	r := Summarize("run-2", nil, AssetSeries{}, scan.Report{})
	assert.Empty(t, r.FirstDay)
	assert.Empty(t, r.Notes)
	assert.Zero(t, r.ReturnPct)
	assert.Zero(t, r.MaxDDPct)

	org, err := r.Org()
	require.NoError(t, err)
	assert.Contains(t, org, "* EXPORT: (no asset series)")
	assert.NotContains(t, org, "** Skipped")
}

func TestRunWriteOrg(t *testing.T) {
	t.Parallel()

	r := Run{
		RunID:      "01HZX",
		Trades:     3,
		Buys:       2,
		Sells:      1,
		BuyValue:   1500,
		SellValue:  700,
		FirstDay:   "2024-01-01",
		LastDay:    "2024-01-04",
		StartAsset: 100,
		EndAsset:   130,
		ReturnPct:  30,
		MaxDDPct:   25,
		OrgPath:    filepath.Join(t.TempDir(), "run.org"),
		Notes:      []string{"20240102_trades.json: invalid JSON"},
	}
	require.NoError(t, r.WriteOrg())

	b, err := os.ReadFile(r.OrgPath)
	require.NoError(t, err)
	org := string(b)

	assert.Contains(t, org, "* EXPORT: 2024-01-01 .. 2024-01-04")
	assert.Contains(t, org, ":RUN_ID:      01HZX")
	assert.Contains(t, org, ":END_ASSET:   130.00")
	assert.Contains(t, org, ":RETURN_PCT:  30.00")
	assert.Contains(t, org, "| Buy  | 2 | 1500.00 |")
	assert.Contains(t, org, "- 20240102_trades.json: invalid JSON")
}
