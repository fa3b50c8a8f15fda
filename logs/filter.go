package logs

import "time"

// TimeRange bounds lines by wall-clock time. A zero Start or End leaves
// that side open.
//
// Lines without a usable timestamp are kept unless FailClosed is set:
// dropping operational lines silently is worse than showing a few extra.
type TimeRange struct {
	Start      time.Time
	End        time.Time
	FailClosed bool
}

// DayRange covers from 00:00:00 on from's day through the last instant of
// to's day, in loc.
func DayRange(from, to time.Time, loc *time.Location) TimeRange {
	if loc == nil {
		loc = time.Local
	}
	fy, fm, fd := from.Date()
	ty, tm, td := to.Date()
	return TimeRange{
		Start: time.Date(fy, fm, fd, 0, 0, 0, 0, loc),
		End:   time.Date(ty, tm, td, 23, 59, 59, int(time.Second-time.Nanosecond), loc),
	}
}

// Keep reports whether l falls inside the range. Both bounds are inclusive.
func (r TimeRange) Keep(l Line) bool {
	if !l.HasTime() {
		return !r.FailClosed
	}
	if !r.Start.IsZero() && l.Time.Before(r.Start) {
		return false
	}
	if !r.End.IsZero() && l.Time.After(r.End) {
		return false
	}
	return true
}

// Location is the zone raw lines are parsed in: Start's, else End's, else
// the local zone.
func (r TimeRange) Location() *time.Location {
	switch {
	case !r.Start.IsZero():
		return r.Start.Location()
	case !r.End.IsZero():
		return r.End.Location()
	}
	return time.Local
}

// FilterLines keeps the lines inside r, preserving order.
func FilterLines(lines []Line, r TimeRange) []Line {
	out := make([]Line, 0, len(lines))
	for _, l := range lines {
		if r.Keep(l) {
			out = append(out, l)
		}
	}
	return out
}

// FilterByTime parses raw in r.Location() and keeps the lines inside r.
func FilterByTime(raw []string, r TimeRange) []Line {
	return FilterLines(ParseLines(raw, r.Location()), r)
}
