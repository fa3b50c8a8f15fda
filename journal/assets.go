package journal

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/sync/errgroup"

	"github.com/rustyeddy/quantops/pkg/scan"
)

// ErrNoData means no snapshot yielded an asset point.
var ErrNoData = errors.New("journal: no asset snapshots")

// SnapshotLayout says which files are position snapshots and where the
// account totals sit inside them.
type SnapshotLayout struct {
	Suffix         string `json:"suffix" yaml:"suffix"`
	AccountKey     string `json:"account_key" yaml:"account_key"`
	TotalAssetKey  string `json:"total_asset_key" yaml:"total_asset_key"`
	MarketValueKey string `json:"market_value_key" yaml:"market_value_key"`
}

func DefaultSnapshotLayout() SnapshotLayout {
	return SnapshotLayout{
		Suffix:         "_positions.json",
		AccountKey:     "账户信息",
		TotalAssetKey:  "总资产",
		MarketValueKey: "持仓市值",
	}
}

// AssetSeries holds one point per calendar day, ascending, with no gaps.
type AssetSeries struct {
	Points []AssetPoint
}

func (s AssetSeries) Len() int { return len(s.Points) }

func (s AssetSeries) Start() time.Time {
	if len(s.Points) == 0 {
		return time.Time{}
	}
	return s.Points[0].Date
}

func (s AssetSeries) End() time.Time {
	if len(s.Points) == 0 {
		return time.Time{}
	}
	return s.Points[len(s.Points)-1].Date
}

// At returns the point for day's calendar date.
func (s AssetSeries) At(day time.Time) (AssetPoint, bool) {
	if len(s.Points) == 0 {
		return AssetPoint{}, false
	}
	y, m, d := day.Date()
	want := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	i := int(want.Sub(s.Start()).Hours() / 24)
	if want.Before(s.Start()) || i >= len(s.Points) {
		return AssetPoint{}, false
	}
	return s.Points[i], true
}

// BuildAssetSeries reads every snapshot in dir and returns a daily series
// from the first to the last snapshot date, with missing days filled by
// linear interpolation. Snapshots that cannot be read, are not JSON, or lack
// either total are skipped and reported. When nothing usable is found the
// error is ErrNoData.
func BuildAssetSeries(dir string, layout SnapshotLayout) (AssetSeries, scan.Report, error) {
	var rep scan.Report

	files, err := ListDated(dir, layout.Suffix)
	if err != nil {
		return AssetSeries{}, rep, err
	}

	points := make([]AssetPoint, len(files))
	errs := make([]error, len(files))

	var g errgroup.Group
	g.SetLimit(readWorkers)
	for i, f := range files {
		g.Go(func() error {
			points[i], errs[i] = readSnapshot(f, layout)
			return nil
		})
	}
	_ = g.Wait()

	// files are in name order, so a later file for the same day wins
	byDay := make(map[time.Time]AssetPoint, len(files))
	for i, f := range files {
		if errs[i] != nil {
			rep.Skip(f.Path, errs[i].Error())
			continue
		}
		rep.Ok()
		byDay[f.Date] = points[i]
	}
	if len(byDay) == 0 {
		return AssetSeries{}, rep, ErrNoData
	}

	known := make([]AssetPoint, 0, len(byDay))
	for _, p := range byDay {
		known = append(known, p)
	}
	slices.SortFunc(known, func(a, b AssetPoint) int { return a.Date.Compare(b.Date) })
	return Interpolate(known), rep, nil
}

func readSnapshot(f DatedFile, layout SnapshotLayout) (AssetPoint, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return AssetPoint{}, err
	}
	if !gjson.ValidBytes(data) {
		return AssetPoint{}, errors.New("invalid JSON")
	}
	account := lookup(gjson.ParseBytes(data), layout.AccountKey)
	if !account.IsObject() {
		return AssetPoint{}, fmt.Errorf("missing %q object", layout.AccountKey)
	}

	p := AssetPoint{Date: f.Date}
	for _, field := range []struct {
		key string
		dst *float64
	}{
		{layout.TotalAssetKey, &p.TotalAsset},
		{layout.MarketValueKey, &p.MarketValue},
	} {
		v := lookup(account, field.key)
		if !v.Exists() || v.Type == gjson.Null {
			return AssetPoint{}, fmt.Errorf("missing %q", field.key)
		}
		if *field.dst, err = numberValue(v); err != nil {
			return AssetPoint{}, fmt.Errorf("%s: %w", field.key, err)
		}
	}
	return p, nil
}

// Interpolate expands known points, sorted ascending with one point per
// day, into a gap-free daily series over [first, last]. Each column of a
// missing day is interpolated linearly between its nearest known
// neighbours. Nothing is produced outside the known range.
func Interpolate(known []AssetPoint) AssetSeries {
	if len(known) == 0 {
		return AssetSeries{}
	}
	out := []AssetPoint{known[0]}
	for i := 1; i < len(known); i++ {
		a, b := known[i-1], known[i]
		gap := daysBetween(a.Date, b.Date)
		for k := 1; k < gap; k++ {
			frac := float64(k) / float64(gap)
			out = append(out, AssetPoint{
				Date:         a.Date.AddDate(0, 0, k),
				TotalAsset:   lerp(a.TotalAsset, b.TotalAsset, frac),
				MarketValue:  lerp(a.MarketValue, b.MarketValue, frac),
				Interpolated: true,
			})
		}
		out = append(out, b)
	}
	return AssetSeries{Points: out}
}

func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Round(time.Hour).Hours() / 24)
}

func lerp(a, b, frac float64) float64 {
	return a + (b-a)*frac
}
