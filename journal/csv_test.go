package journal

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func newTestCSV(t *testing.T) (*CSVJournal, string, string) {
	t.Helper()
	dir := t.TempDir()
	tradesPath := filepath.Join(dir, "trades.csv")
	equityPath := filepath.Join(dir, "equity.csv")

	j, err := NewCSV(tradesPath, equityPath, "run-1")
	require.NoError(t, err)
	return j, tradesPath, equityPath
}

func TestCSVJournalHeaders(t *testing.T) {
	t.Parallel()

	j, tradesPath, equityPath := newTestCSV(t)
	assert.NoError(t, j.Close())

	wantTrades := []string{"run_id", "date", "StockCode", "Volume", "Price", "Value", "TradeType", "OrderId", "TradeId", "TradeTime", "extra"}
	assert.Equal(t, [][]string{wantTrades}, readCSV(t, tradesPath))

	wantEquity := []string{"run_id", "date", "total_asset", "market_value", "interpolated"}
	assert.Equal(t, [][]string{wantEquity}, readCSV(t, equityPath))
}

func TestCSVJournalRecordTrade(t *testing.T) {
	t.Parallel()

	j, tradesPath, _ := newTestCSV(t)

	require.NoError(t, j.RecordTrade(mustTrade(t, "20240102", `{
		"StockCode": "600000.SH", "Volume": 100, "Price": 10.5, "Value": 1050,
		"TradeType": 24, "OrderId": "O1", "TradeId": "T1", "TradeTime": "09:30:00",
		"备注": "manual"
	}`)))
	require.NoError(t, j.RecordTrade(mustTrade(t, "20240103", `{"StockCode": "000001.SZ", "TradeType": 7}`)))
	require.NoError(t, j.Close())

	rows := readCSV(t, tradesPath)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{
		"run-1", "20240102", "600000.SH", "100", "10.5000", "1050.00",
		"buy", "O1", "T1", "09:30:00", `{"备注":"manual"}`,
	}, rows[1])
	assert.Equal(t, []string{
		"run-1", "20240103", "000001.SZ", "", "", "",
		"7", "", "", "", "",
	}, rows[2])
}

func TestCSVJournalRecordAsset(t *testing.T) {
	t.Parallel()

	j, _, equityPath := newTestCSV(t)

	require.NoError(t, j.RecordAsset(AssetPoint{Date: day(2024, 1, 2), TotalAsset: 200, MarketValue: 99.999, Interpolated: true}))
	require.NoError(t, j.RecordAsset(AssetPoint{Date: day(2024, 1, 3), TotalAsset: 1e6, MarketValue: 0}))
	require.NoError(t, j.Close())

	rows := readCSV(t, equityPath)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"run-1", "2024-01-02", "200.00", "100.00", "true"}, rows[1])
	assert.Equal(t, []string{"run-1", "2024-01-03", "1000000.00", "0.00", "false"}, rows[2])
}

func TestCSVJournalImplementsSink(t *testing.T) {
	t.Parallel()

	j, _, _ := newTestCSV(t)
	var s Sink = j
	assert.NoError(t, s.Close())
}
