package logs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseLine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		raw     string
		stamp   string
		timed   bool
		content string
	}{
		{"leading stamp", "2024-05-01 09:30:00 INFO started ", "2024-05-01 09:30:00", true, "INFO started"},
		{"prefixed stamp", "[main] 2024-05-01  09:30:00 tick", "2024-05-01  09:30:00", true, "tick"},
		{"no stamp", "   traceback line  ", "", false, "traceback line"},
		{"bad date", "2024-13-45 09:30:00 odd", "2024-13-45 09:30:00", false, "odd"},
		{"first of two", "2024-05-01 09:30:00 then 2024-05-02 10:00:00", "2024-05-01 09:30:00", true, "then 2024-05-02 10:00:00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := ParseLineIn(tt.raw, time.UTC)
			assert.Equal(t, tt.raw, l.Raw)
			assert.Equal(t, tt.stamp, l.Stamp)
			assert.Equal(t, tt.timed, l.HasTime())
			assert.Equal(t, tt.content, l.Content)
		})
	}

	l := ParseLineIn("2024-05-01 09:30:00 x", time.UTC)
	assert.Equal(t, time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC), l.Time)
}
