// Package scan records per-item outcomes of batch reads.
//
// Batch operations over dated files never abort on a single bad file or
// record. Instead they count what they processed and note what they skipped,
// so callers can log the skips and tests can assert on them.
package scan

import "fmt"

// Skip describes one item that was left out of a batch result.
type Skip struct {
	Source string `json:"source"`
	Reason string `json:"reason"`
}

func (s Skip) String() string {
	return s.Source + ": " + s.Reason
}

// Report aggregates the outcome of a batch read.
type Report struct {
	Processed int    `json:"processed"`
	Skipped   []Skip `json:"skipped,omitempty"`
}

// Ok counts a successfully processed item.
func (r *Report) Ok() {
	r.Processed++
}

// Skip records an item that was left out.
func (r *Report) Skip(source, reason string) {
	r.Skipped = append(r.Skipped, Skip{Source: source, Reason: reason})
}

// Skipf is Skip with a formatted reason.
func (r *Report) Skipf(source, format string, args ...any) {
	r.Skip(source, fmt.Sprintf(format, args...))
}

// Merge folds o into r, keeping o's skips after r's.
func (r *Report) Merge(o Report) {
	r.Processed += o.Processed
	r.Skipped = append(r.Skipped, o.Skipped...)
}

// SkippedCount returns the number of skipped items.
func (r Report) SkippedCount() int {
	return len(r.Skipped)
}

// Clean reports whether nothing was skipped.
func (r Report) Clean() bool {
	return len(r.Skipped) == 0
}
