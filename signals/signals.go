// Package signals pulls buy/sell trigger records out of strategy log lines.
package signals

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/rustyeddy/quantops/logs"
	"github.com/rustyeddy/quantops/pkg/scan"
)

// Markers written by the strategy process when it decides to trade.
const (
	BuyMarker  = "触发买入信号"
	SellMarker = "触发卖出信号"
)

// DefaultLinesLimit bounds how much of the log tail Scan reads.
const DefaultLinesLimit = 10000

var codePattern = regexp.MustCompile(`\d{6}\.[A-Z]{2}`)

type Kind string

const (
	KindBuy  Kind = "buy"
	KindSell Kind = "sell"
)

// Signal is one trigger found in the log.
type Signal struct {
	Kind   Kind   `json:"kind"`
	Code   string `json:"ticker_code"`
	Detail string `json:"detail"`
}

// ExtractLine parses a single raw line. ok is false when the line has no
// marker or no ticker code.
//
// The detail is the trimmed text after the marker. Both markers end with the
// two-character token 信号, so this is the text two characters past where
// that token starts.
func ExtractLine(line string) (sig Signal, ok bool) {
	var marker string
	switch {
	case strings.Contains(line, BuyMarker):
		sig.Kind, marker = KindBuy, BuyMarker
	case strings.Contains(line, SellMarker):
		sig.Kind, marker = KindSell, SellMarker
	default:
		return Signal{}, false
	}

	sig.Code = codePattern.FindString(line)
	if sig.Code == "" {
		return Signal{}, false
	}

	start := strings.Index(line, marker) + len(marker)
	if start < len(line) {
		sig.Detail = strings.TrimSpace(line[start:])
	}
	return sig, true
}

// Extract returns the signals in lines, in input order. Lines that carry a
// marker but no ticker code are dropped and counted in the report.
func Extract(lines []string) ([]Signal, scan.Report) {
	var (
		out []Signal
		rep scan.Report
	)
	for i, line := range lines {
		if !strings.Contains(line, BuyMarker) && !strings.Contains(line, SellMarker) {
			continue
		}
		sig, ok := ExtractLine(line)
		if !ok {
			rep.Skipf(lineSource(i), "marker without ticker code")
			continue
		}
		rep.Ok()
		out = append(out, sig)
	}
	return out, rep
}

// Scan reads at most limit lines from the end of the log at path and
// extracts their signals. A missing log has no signals.
func Scan(path string, limit int) ([]Signal, scan.Report, error) {
	if limit <= 0 {
		limit = DefaultLinesLimit
	}
	lines, err := logs.Tail(path, limit)
	if err != nil {
		return nil, scan.Report{}, err
	}
	sigs, rep := Extract(lines)
	return sigs, rep, nil
}

func lineSource(i int) string {
	return "line " + strconv.Itoa(i+1)
}
