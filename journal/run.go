package journal

import (
	"bytes"
	"os"
	"text/template"
	"time"

	"github.com/rustyeddy/quantops/pkg/scan"
)

// Run summarizes one export: what was read and how the account moved over
// the exported asset series.
type Run struct {
	RunID   string
	Created time.Time

	Trades  int
	Skipped int
	Buys    int
	Sells   int

	BuyValue  float64
	SellValue float64

	FirstDay string
	LastDay  string

	StartAsset float64
	EndAsset   float64
	ReturnPct  float64
	MaxDDPct   float64

	OrgPath string
	Notes   []string // one "source: reason" line per skip
}

// Summarize builds the Run for an export of trades and series. rep holds
// everything skipped while loading them.
func Summarize(runID string, trades []Trade, series AssetSeries, rep scan.Report) Run {
	r := Run{
		RunID:   runID,
		Created: time.Now(),
		Trades:  len(trades),
		Skipped: rep.SkippedCount(),
	}
	for _, s := range rep.Skipped {
		r.Notes = append(r.Notes, s.Source+": "+s.Reason)
	}
	for _, t := range trades {
		switch t.TradeType.Side {
		case SideBuy:
			r.Buys++
			r.BuyValue += t.Value
		case SideSell:
			r.Sells++
			r.SellValue += t.Value
		}
	}

	if series.Len() == 0 {
		return r
	}
	first, last := series.Points[0], series.Points[series.Len()-1]
	r.FirstDay, r.LastDay = first.Day(), last.Day()
	r.StartAsset, r.EndAsset = first.TotalAsset, last.TotalAsset
	if r.StartAsset != 0 {
		r.ReturnPct = (r.EndAsset - r.StartAsset) / r.StartAsset * 100
	}
	r.MaxDDPct = maxDrawdownPct(series)
	return r
}

func maxDrawdownPct(series AssetSeries) float64 {
	var peak, worst float64
	for _, p := range series.Points {
		if p.TotalAsset > peak {
			peak = p.TotalAsset
		}
		if peak > 0 {
			if dd := (peak - p.TotalAsset) / peak * 100; dd > worst {
				worst = dd
			}
		}
	}
	return worst
}

var runOrgFuncs = template.FuncMap{
	"money": money,
	"orTime": func(t time.Time) time.Time {
		if t.IsZero() {
			return time.Now()
		}
		return t
	},
}

// Org renders the run as an Org-mode block.
func (r Run) Org() (string, error) {
	t, err := template.New("run").Funcs(runOrgFuncs).Parse(RunOrgTemplate)
	if err != nil {
		return "", err
	}
	buf := new(bytes.Buffer)
	if err := t.Execute(buf, r); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// WriteOrg writes the Org block to r.OrgPath.
func (r Run) WriteOrg() error {
	s, err := r.Org()
	if err != nil {
		return err
	}
	return os.WriteFile(r.OrgPath, []byte(s), 0644)
}

const RunOrgTemplate = `
* EXPORT: {{if .FirstDay}}{{.FirstDay}} .. {{.LastDay}}{{else}}(no asset series){{end}}
:PROPERTIES:
:RUN_ID:      {{if .RunID}}{{.RunID}}{{else}}(run-id?){{end}}
:TRADES:      {{.Trades}}
:BUYS:        {{.Buys}}
:SELLS:       {{.Sells}}
:SKIPPED:     {{.Skipped}}
:START_ASSET: {{money .StartAsset}}
:END_ASSET:   {{money .EndAsset}}
:RETURN_PCT:  {{printf "%.2f" .ReturnPct}}
:MAX_DD_PCT:  {{printf "%.2f" .MaxDDPct}}
:CREATED:     [{{(orTime .Created).Format "2006-01-02 Mon 15:04"}}]
:END:

** Flow
| Side | Count | Value |
|------+-------+-------|
| Buy  | {{.Buys}} | {{money .BuyValue}} |
| Sell | {{.Sells}} | {{money .SellValue}} |

{{- if .Notes }}
** Skipped
{{- range .Notes }}
- {{.}}
{{- end }}
{{- end }}
`
