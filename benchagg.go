// Package benchagg implements aggregation of repeated benchmark runs into a latency table.
package benchagg

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/vearutop/dynhist-go"
)

// Table groups benchmark latencies by (histogram count, percentile) rows and window size columns.
type Table struct {
	sync.Mutex

	// Marker selects benchmark lines, DefaultMarker is used by default.
	Marker string

	// InsertionOrder disables sorting of rows by histogram count, rows are rendered in order of appearance.
	InsertionOrder bool

	// KeepSamples enables retention of individual latencies in cells, see Cell.Summary.
	KeepSamples bool

	// Dist collects distribution of all record latencies, disabled by default. Use non-nil value to enable.
	Dist *dynhist.Collector

	rows  []*Row
	index map[string]*Row
}

// Row is a list of cells sharing histogram count and percentile.
type Row struct {
	Key        string
	HistCount  int
	Percentile float64

	// Cells are ordered by first appearance of window size.
	Cells []*Cell

	index map[string]*Cell
}

// Cell keeps running average latency of a single (row, window size) pair.
type Cell struct {
	HistCount  int
	WindowSize int
	Percentile float64
	Latency    float64
	Count      int

	// Samples holds individual latencies if Table.KeepSamples is enabled.
	Samples []float64
}

// Add folds record into its cell.
//
// Latency is merged as a weighted mean with Count as weight, so records carrying
// already aggregated values (Count > 1) are accounted properly.
func (t *Table) Add(rec Record) {
	t.Lock()
	defer t.Unlock()

	if rec.Count == 0 {
		rec.Count = 1
	}

	if t.Dist != nil {
		for i := 0; i < rec.Count; i++ {
			t.Dist.Add(rec.Latency)
		}
	}

	if t.index == nil {
		t.index = make(map[string]*Row)
	}

	rk := rec.RowKey()

	row, ok := t.index[rk]
	if !ok {
		row = &Row{
			Key:        rk,
			HistCount:  rec.HistCount,
			Percentile: rec.Percentile,
			index:      make(map[string]*Cell),
		}
		t.index[rk] = row
		t.rows = append(t.rows, row)
	}

	ck := rec.ColKey()

	cell, ok := row.index[ck]
	if !ok {
		cell = &Cell{
			HistCount:  rec.HistCount,
			WindowSize: rec.WindowSize,
			Percentile: rec.Percentile,
			Latency:    rec.Latency,
			Count:      rec.Count,
		}

		if t.KeepSamples {
			cell.Samples = append(cell.Samples, rec.Latency)
		}

		row.index[ck] = cell
		row.Cells = append(row.Cells, cell)

		return
	}

	cell.Latency = (cell.Latency*float64(cell.Count) + rec.Latency*float64(rec.Count)) /
		float64(cell.Count+rec.Count)
	cell.Count += rec.Count

	if t.KeepSamples {
		cell.Samples = append(cell.Samples, rec.Latency)
	}
}

// Cell returns aggregated cell or nil if there were no matching records.
func (t *Table) Cell(histCount int, percentile float64, windowSize int) *Cell {
	t.Lock()
	defer t.Unlock()

	rec := Record{HistCount: histCount, Percentile: percentile, WindowSize: windowSize}

	row, ok := t.index[rec.RowKey()]
	if !ok {
		return nil
	}

	return row.index[rec.ColKey()]
}

// Rows returns table rows in rendering order.
func (t *Table) Rows() []*Row {
	t.Lock()
	defer t.Unlock()

	return t.orderedRows()
}

func (t *Table) orderedRows() []*Row {
	rows := make([]*Row, len(t.rows))
	copy(rows, t.rows)

	if !t.InsertionOrder {
		sort.SliceStable(rows, func(i, j int) bool {
			return rows[i].HistCount < rows[j].HistCount
		})
	}

	return rows
}

// Lines renders rows as "histCount, latency1, latency2, ...".
func (t *Table) Lines() []string {
	t.Lock()
	defer t.Unlock()

	rows := t.orderedRows()
	lines := make([]string, 0, len(rows))

	for _, r := range rows {
		lines = append(lines, r.String())
	}

	return lines
}

// String renders table.
func (t *Table) String() string {
	lines := t.Lines()
	if len(lines) == 0 {
		return ""
	}

	return strings.Join(lines, "\n") + "\n"
}

// String renders row.
func (r *Row) String() string {
	var res strings.Builder

	res.WriteString(strconv.Itoa(r.HistCount))

	for _, c := range r.Cells {
		fmt.Fprint(&res, ", ", FormatLatency(c.Latency))
	}

	return res.String()
}

// FormatLatency renders value in shortest form keeping at least one decimal digit, e.g. 2.0, 1.55.
func FormatLatency(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !math.IsInf(v, 0) && !math.IsNaN(v) && !strings.Contains(s, ".") {
		s += ".0"
	}

	return s
}
