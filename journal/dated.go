package journal

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

var ErrNotDirectory = errors.New("journal: path is not a directory")

// DayLayout is the date prefix of journal and snapshot file names.
const DayLayout = "20060102"

// DatedFile is a file whose name starts with its calendar date. Sorting
// such names lexically sorts them by date.
type DatedFile struct {
	Path string
	Name string
	Day  string // YYYYMMDD
	Date time.Time
}

// DateFromName parses the YYYYMMDD prefix of a file name.
func DateFromName(name string) (time.Time, string, bool) {
	if len(name) < len(DayLayout) {
		return time.Time{}, "", false
	}
	day := name[:len(DayLayout)]
	for _, c := range day {
		if c < '0' || c > '9' {
			return time.Time{}, "", false
		}
	}
	t, err := time.Parse(DayLayout, day)
	if err != nil {
		return time.Time{}, "", false
	}
	return t, day, true
}

// ListDated returns the regular files in dir that start with a valid date
// and end with suffix, sorted by name. A missing dir has no files.
func ListDated(dir, suffix string) ([]DatedFile, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		if info, serr := os.Stat(dir); serr == nil && !info.IsDir() {
			return nil, fmt.Errorf("%w: %s", ErrNotDirectory, dir)
		}
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}

	var out []DatedFile
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), suffix) {
			continue
		}
		t, day, ok := DateFromName(e.Name())
		if !ok {
			continue
		}
		out = append(out, DatedFile{
			Path: filepath.Join(dir, e.Name()),
			Name: e.Name(),
			Day:  day,
			Date: t,
		})
	}
	slices.SortFunc(out, func(a, b DatedFile) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

// ListTradeFiles returns the paths of the trade journals in dir, oldest
// first or newest first.
func ListTradeFiles(dir, suffix string, newestFirst bool) ([]string, error) {
	files, err := ListDated(dir, suffix)
	if err != nil {
		return nil, err
	}
	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.Path
	}
	if newestFirst {
		slices.Reverse(paths)
	}
	return paths, nil
}
