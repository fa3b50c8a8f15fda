package journal

import (
	"fmt"
	"sort"
	"strings"
)

// FormatTradeOrg renders a Trade as an Org-mode block suitable for pasting
// into a journal. Structured facts sit in a PROPERTIES drawer so they stay
// searchable; Thesis and Review are left for notes.
func FormatTradeOrg(t Trade) string {
	var b strings.Builder
	fmt.Fprintf(&b, "** Trade: %s %s (%s)\n", orDash(t.StockCode), orDash(t.TradeType.String()), shortID(t.TradeID))
	b.WriteString(":PROPERTIES:\n")
	for _, f := range CanonicalFields {
		if !t.Has(f) {
			continue
		}
		fmt.Fprintf(&b, ":%s: %s\n", strings.ToUpper(f), orgValue(t, f))
	}
	if len(t.Extra) > 0 {
		keys := make([]string, 0, len(t.Extra))
		for k := range t.Extra {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, ":X_%s: %v\n", k, t.Extra[k])
		}
	}
	b.WriteString(":END:\n")
	b.WriteString("\n")
	b.WriteString("*** Thesis\n- \n\n")
	b.WriteString("*** Review\n- \n")

	return b.String()
}

// FormatTradesOrg renders multiple trades separated by blank lines.
func FormatTradesOrg(trades []Trade) string {
	var b strings.Builder
	for i, t := range trades {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(FormatTradeOrg(t))
	}
	return b.String()
}

// FormatSeriesOrg renders the asset series as an Org table. Interpolated
// days are marked with "~".
func FormatSeriesOrg(s AssetSeries) string {
	var b strings.Builder
	b.WriteString("| Date | Total asset | Market value | |\n")
	b.WriteString("|------+-------------+--------------+-|\n")
	for _, p := range s.Points {
		mark := ""
		if p.Interpolated {
			mark = "~"
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", p.Day(), money(p.TotalAsset), money(p.MarketValue), mark)
	}
	return b.String()
}

func orgValue(t Trade, field string) string {
	switch field {
	case FieldVolume:
		return formatNumber(t.Volume)
	case FieldPrice:
		return price(t.Price)
	case FieldValue:
		return money(t.Value)
	case FieldTradeType:
		return t.TradeType.String()
	}
	return fmt.Sprint(t.field(field))
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func shortID(full string) string {
	if full == "" {
		return "no id"
	}
	if len(full) <= 8 {
		return full
	}
	return full[:8]
}
