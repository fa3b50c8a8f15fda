package logs

import (
	"regexp"
	"strings"
	"time"
)

// StampLayout is the timestamp format terminal logs are written with.
const StampLayout = "2006-01-02 15:04:05"

var stampPattern = regexp.MustCompile(`\d{4}-\d{2}-\d{2}\s+\d{2}:\d{2}:\d{2}`)

// Line is one log line split into its timestamp and the rest.
type Line struct {
	Raw     string    `json:"raw"`
	Stamp   string    `json:"stamp,omitempty"` // matched timestamp text, may not parse
	Time    time.Time `json:"time,omitzero"`
	Content string    `json:"content"`

	timed bool
}

// HasTime reports whether a timestamp was found and parsed.
func (l Line) HasTime() bool {
	return l.timed
}

// ParseLine parses raw with timestamps interpreted in the local zone.
func ParseLine(raw string) Line {
	return ParseLineIn(raw, time.Local)
}

// ParseLineIn finds the first YYYY-MM-DD HH:MM:SS timestamp in raw and
// returns it with the trimmed text that follows it. Without a timestamp the
// whole trimmed line is the content. A matched stamp that is not a real
// date (2024-13-40 ...) is kept in Stamp but leaves the line untimed.
func ParseLineIn(raw string, loc *time.Location) Line {
	line := Line{Raw: raw}
	m := stampPattern.FindStringIndex(raw)
	if m == nil {
		line.Content = strings.TrimSpace(raw)
		return line
	}

	line.Stamp = raw[m[0]:m[1]]
	line.Content = strings.TrimSpace(raw[m[1]:])
	stamp := strings.Join(strings.Fields(line.Stamp), " ")
	if t, err := time.ParseInLocation(StampLayout, stamp, loc); err == nil {
		line.Time = t
		line.timed = true
	}
	return line
}

// ParseLines parses every raw line in loc.
func ParseLines(raw []string, loc *time.Location) []Line {
	out := make([]Line, len(raw))
	for i, r := range raw {
		out[i] = ParseLineIn(r, loc)
	}
	return out
}
