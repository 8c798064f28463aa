package benchagg

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/tools/benchmark/parse"
)

// DefaultMarker selects lines of the histogram multiplication benchmark.
const DefaultMarker = "BenchmarkTestScheduler_MultiplyHistograms/multiply_"

// Positions of values in the benchmark name split by "_", e.g.
// BenchmarkTestScheduler_MultiplyHistograms/multiply_10_histograms_each_window_size_10000_to_search:_99.
const (
	histCountField  = 2
	windowSizeField = 7
	percentileField = 10
)

var whitespace = regexp.MustCompile(`\s+`)

// Record is a single benchmark observation.
type Record struct {
	HistCount  int
	WindowSize int
	Percentile float64
	Procs      int

	// Latency is total benchmark time in milliseconds (iterations * ns/op / 1e6), rounded to 0.1.
	Latency float64
	Count   int
}

// RowKey identifies report row.
func (r Record) RowKey() string {
	return strconv.Itoa(r.HistCount) + "-" + strconv.FormatFloat(r.Percentile, 'f', -1, 64)
}

// ColKey identifies report column within a row.
func (r Record) ColKey() string {
	return strconv.Itoa(r.WindowSize)
}

// ParseLine extracts a Record from a benchmark result line.
//
// Lines that do not contain marker are skipped with ok == false and nil error.
// Lines with marker but unexpected layout fail with error.
func ParseLine(line, marker string) (rec Record, ok bool, err error) {
	if !strings.Contains(line, marker) {
		return rec, false, nil
	}

	line = strings.TrimSpace(whitespace.ReplaceAllString(line, " "))

	b, err := parse.ParseLine(line)
	if err != nil {
		return rec, true, errors.Wrapf(err, "parsing benchmark line %q", line)
	}

	if b.Measured&parse.NsPerOp == 0 {
		return rec, true, errors.Errorf("missing ns/op in %q", line)
	}

	tokens := strings.Split(b.Name, "_")
	if len(tokens) <= percentileField {
		return rec, true, errors.Errorf("unexpected name layout %q: %d tokens, at least %d expected",
			b.Name, len(tokens), percentileField+1)
	}

	if rec.HistCount, err = parseCount(tokens[histCountField]); err != nil {
		return rec, true, errors.Wrap(err, "histogram count")
	}

	if rec.WindowSize, err = parseCount(tokens[windowSizeField]); err != nil {
		return rec, true, errors.Wrap(err, "window size")
	}

	pct := tokens[percentileField]
	pct, rec.Procs = trimProcs(pct)

	if rec.Percentile, err = strconv.ParseFloat(pct, 64); err != nil {
		return rec, true, errors.Wrap(err, "percentile")
	}

	rec.Latency = math.Round(float64(b.N)*b.NsPerOp/1e5) / 10
	rec.Count = 1

	return rec, true, nil
}

func parseCount(s string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}

	if v < 0 {
		return 0, errors.Errorf("negative value %d", v)
	}

	return v, nil
}

// trimProcs removes GOMAXPROCS suffix added by go test, e.g. "99-8".
func trimProcs(s string) (string, int) {
	i := strings.LastIndexByte(s, '-')
	if i <= 0 {
		return s, 0
	}

	procs, err := strconv.Atoi(s[i+1:])
	if err != nil || procs <= 0 {
		return s, 0
	}

	return s[:i], procs
}
