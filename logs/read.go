package logs

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/rustyeddy/quantops/pkg/scan"
)

const (
	// DefaultTailLines is how much of the current file tail mode shows.
	DefaultTailLines = 200

	tailBlock    = 64 * 1024
	maxLineBytes = 4 * 1024 * 1024
	readWorkers  = 4
)

// Tail returns the last n lines of the file at path in file order, without
// line terminators. The file is read backwards in blocks so the cost is
// bounded by n rather than by the file size. A missing file has no lines.
func Tail(path string, n int) ([]string, error) {
	if n < 0 {
		return nil, fmt.Errorf("logs: negative line count %d", n)
	}
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if n == 0 {
		return nil, nil
	}
	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size := info.Size()
	if size == 0 {
		return nil, nil
	}

	var (
		chunks   [][]byte
		offset   = size
		newlines = 0
	)
	for offset > 0 && newlines < n {
		sz := int64(tailBlock)
		if offset < sz {
			sz = offset
		}
		offset -= sz

		b := make([]byte, sz)
		if _, err := f.ReadAt(b, offset); err != nil && err != io.EOF {
			return nil, err
		}
		newlines += bytes.Count(b, []byte{'\n'})
		if len(chunks) == 0 && b[len(b)-1] == '\n' {
			// the terminator of the last line does not start a new one
			newlines--
		}
		chunks = append(chunks, b)
	}

	var buf bytes.Buffer
	for i := len(chunks) - 1; i >= 0; i-- {
		buf.Write(chunks[i])
	}
	text := strings.TrimSuffix(buf.String(), "\n")
	lines := strings.Split(text, "\n")
	if len(lines) > n {
		// when offset > 0 the first element is a partial line, and it is
		// always outside the last n
		lines = lines[len(lines)-n:]
	}
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines, nil
}

// Search reads every file in refs and returns the lines containing keyword,
// compared case-insensitively. An empty keyword returns all lines. Files are
// read concurrently but the result keeps the order of refs. A file that
// cannot be read is reported and skipped.
func Search(refs []FileRef, keyword string) ([]string, scan.Report) {
	needle := strings.ToLower(keyword)
	results := make([][]string, len(refs))
	errs := make([]error, len(refs))

	var g errgroup.Group
	g.SetLimit(readWorkers)
	for i, ref := range refs {
		g.Go(func() error {
			results[i], errs[i] = grep(ref.Path, needle)
			return nil
		})
	}
	_ = g.Wait()

	var (
		out []string
		rep scan.Report
	)
	for i, ref := range refs {
		if errs[i] != nil {
			rep.Skip(ref.Path, errs[i].Error())
			continue
		}
		rep.Ok()
		out = append(out, results[i]...)
	}
	return out, rep
}

func grep(path, needle string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for sc.Scan() {
		line := strings.TrimSuffix(sc.Text(), "\r")
		if needle == "" || strings.Contains(strings.ToLower(line), needle) {
			out = append(out, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
