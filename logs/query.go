package logs

import (
	"bufio"
	"fmt"
	"io"
	"time"

	"github.com/rustyeddy/quantops/pkg/scan"
)

// Mode says how a Query read its files.
type Mode string

const (
	// ModeTail reads the end of the newest resolved file.
	ModeTail Mode = "tail"
	// ModeSearch scans every resolved file for a keyword.
	ModeSearch Mode = "search"
)

// Query is one log lookup: a category over a range of days, optionally
// narrowed by keyword.
type Query struct {
	Base      string
	Category  Category
	From      time.Time
	To        time.Time
	Keyword   string
	TailLines int
	Location  *time.Location
}

// Result is what a Query found.
type Result struct {
	Mode   Mode        `json:"mode"`
	Files  []FileRef   `json:"files"`
	Lines  []Line      `json:"lines"`
	Report scan.Report `json:"report"`
}

// Run resolves the files for q and reads them. With a keyword every file is
// searched; without one only the tail of the first file (the current one when
// it exists) is read. Either way the lines are then bounded to the days
// From..To.
func (q Query) Run() (Result, error) {
	refs, err := Resolve(q.Base, q.Category, q.From, q.To)
	if err != nil {
		return Result{}, err
	}

	res := Result{Mode: ModeTail, Files: refs}
	if q.Keyword != "" {
		res.Mode = ModeSearch
	}
	if len(refs) == 0 {
		return res, nil
	}

	var raw []string
	if res.Mode == ModeSearch {
		raw, res.Report = Search(refs, q.Keyword)
	} else {
		n := q.TailLines
		if n <= 0 {
			n = DefaultTailLines
		}
		raw, err = Tail(refs[0].Path, n)
		if err != nil {
			return res, fmt.Errorf("tail %s: %w", refs[0].Path, err)
		}
		res.Report.Ok()
	}

	res.Lines = FilterByTime(raw, DayRange(q.From, q.To, q.Location))
	return res, nil
}

// ExportName is the file name used when saving the lines of a query.
func ExportName(category Category, from, to time.Time) string {
	return fmt.Sprintf("%s_log_export_%s-%s.txt", category, from.Format(DayLayout), to.Format(DayLayout))
}

// WriteLines writes the raw text of lines, one per line.
func WriteLines(w io.Writer, lines []Line) error {
	bw := bufio.NewWriter(w)
	for _, l := range lines {
		if _, err := bw.WriteString(l.Raw); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}
