package benchagg

import (
	"fmt"
	"strings"

	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
)

// Summary describes spread of individual latencies in a cell.
type Summary struct {
	Count  int
	Min    float64
	Max    float64
	Mean   float64
	Median float64
	StdDev float64
}

// Summary calculates statistics of cell samples.
//
// It requires Table.KeepSamples to be enabled while adding records.
func (c *Cell) Summary() (Summary, error) {
	s := Summary{Count: len(c.Samples)}

	if len(c.Samples) == 0 {
		return s, errors.New("no samples, enable Table.KeepSamples")
	}

	data := stats.Float64Data(c.Samples)

	var err error

	if s.Min, err = data.Min(); err != nil {
		return s, errors.Wrap(err, "min")
	}

	if s.Max, err = data.Max(); err != nil {
		return s, errors.Wrap(err, "max")
	}

	if s.Mean, err = data.Mean(); err != nil {
		return s, errors.Wrap(err, "mean")
	}

	if s.Median, err = data.Median(); err != nil {
		return s, errors.Wrap(err, "median")
	}

	if s.StdDev, err = data.StandardDeviation(); err != nil {
		return s, errors.Wrap(err, "stddev")
	}

	return s, nil
}

// SummaryString renders statistics of every cell, one line per cell.
func (t *Table) SummaryString() (string, error) {
	t.Lock()
	defer t.Unlock()

	var res strings.Builder

	for _, r := range t.orderedRows() {
		for _, c := range r.Cells {
			s, err := c.Summary()
			if err != nil {
				return "", errors.Wrapf(err, "%s window %d", r.Key, c.WindowSize)
			}

			fmt.Fprintf(&res, "%s window=%d n=%d mean=%.2f median=%.2f stddev=%.2f min=%.1f max=%.1f\n",
				r.Key, c.WindowSize, s.Count, s.Mean, s.Median, s.StdDev, s.Min, s.Max)
		}
	}

	return res.String(), nil
}
