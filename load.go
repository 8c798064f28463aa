package benchagg

import (
	"bufio"
	"io"
	"os"

	"github.com/pkg/errors"
)

// Load reads benchmark output and adds matching records.
//
// Lines without marker are ignored, first malformed matching line stops loading with error.
// Returns number of added records.
func (t *Table) Load(r io.Reader) (int, error) {
	marker := t.Marker
	if marker == "" {
		marker = DefaultMarker
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	added := 0
	lineNum := 0

	for scanner.Scan() {
		lineNum++

		rec, ok, err := ParseLine(scanner.Text(), marker)
		if err != nil {
			return added, errors.Wrapf(err, "line %d", lineNum)
		}

		if !ok {
			continue
		}

		t.Add(rec)
		added++
	}

	if err := scanner.Err(); err != nil {
		return added, errors.Wrap(err, "reading")
	}

	return added, nil
}

// LoadFile adds records from a benchmark log file.
func (t *Table) LoadFile(fn string) (int, error) {
	f, err := os.Open(fn) //nolint:gosec
	if err != nil {
		return 0, errors.Wrap(err, "opening log")
	}
	defer f.Close() //nolint:errcheck

	n, err := t.Load(f)
	if err != nil {
		return n, errors.Wrap(err, fn)
	}

	return n, nil
}

// LoadFiles adds records from log files in order, stopping on first failure.
func (t *Table) LoadFiles(files ...string) (int, error) {
	total := 0

	for _, fn := range files {
		n, err := t.LoadFile(fn)
		total += n

		if err != nil {
			return total, err
		}
	}

	return total, nil
}
