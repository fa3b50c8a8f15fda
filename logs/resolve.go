// Package logs locates rotated terminal log files and reads, parses and
// filters their lines.
//
// A log category is written to {category}.log while the day is open and is
// archived daily as {category}.log.{YYYYMMDD}. Everything here only reads
// files; nothing is cached between calls.
package logs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

var (
	ErrUnknownCategory = errors.New("logs: unknown category")
	ErrInvalidRange    = errors.New("logs: start date is after end date")
	ErrNotDirectory    = errors.New("logs: base path is not a directory")
)

// DayLayout is the date suffix of rotated files.
const DayLayout = "20060102"

// Category names a log stream.
type Category string

const (
	CategoryMain Category = "main"
	CategoryTick Category = "tick"
)

// ParseCategory validates a category name.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
	}
	return c, nil
}

func (c Category) Valid() bool {
	return c == CategoryMain || c == CategoryTick
}

// CurrentName is the file name of the open (today's) log.
func (c Category) CurrentName() string {
	return string(c) + ".log"
}

// RotatedName is the file name of the archive for day.
func (c Category) RotatedName(day time.Time) string {
	return string(c) + ".log." + day.Format(DayLayout)
}

// FileRef points at one resolved log file.
type FileRef struct {
	Category Category  `json:"category"`
	Date     time.Time `json:"date,omitzero"` // zero for the current file
	Current  bool      `json:"current"`
	Path     string    `json:"path"`
}

// Label is "current" or the rotation date as YYYYMMDD.
func (r FileRef) Label() string {
	if r.Current {
		return "current"
	}
	return r.Date.Format(DayLayout)
}

// Resolve lists the files of category under base that cover [start, end].
//
// The current file comes first whenever it exists, followed by the rotated
// file of every day in the range in ascending order. Days without a file are
// skipped. Only the calendar day of start and end is used.
//
// A missing base directory yields no files and no error. A start day after
// the end day is rejected with ErrInvalidRange.
func Resolve(base string, category Category, start, end time.Time) ([]FileRef, error) {
	if !category.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}
	from, to := calendarDay(start), calendarDay(end)
	if from.After(to) {
		return nil, fmt.Errorf("%w: %s > %s", ErrInvalidRange, from.Format(DayLayout), to.Format(DayLayout))
	}

	info, err := os.Stat(base)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("stat log dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, base)
	}

	var refs []FileRef
	if p := filepath.Join(base, category.CurrentName()); isFile(p) {
		refs = append(refs, FileRef{Category: category, Current: true, Path: p})
	}
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		p := filepath.Join(base, category.RotatedName(d))
		if isFile(p) {
			refs = append(refs, FileRef{Category: category, Date: d, Path: p})
		}
	}
	return refs, nil
}

func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func isFile(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.Mode().IsRegular()
}
