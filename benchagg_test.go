package benchagg_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vearutop/benchagg"
	"github.com/vearutop/dynhist-go"
)

func rec(histCount, windowSize int, percentile, latency float64) benchagg.Record {
	return benchagg.Record{
		HistCount:  histCount,
		WindowSize: windowSize,
		Percentile: percentile,
		Latency:    latency,
		Count:      1,
	}
}

func TestTable_Add_single(t *testing.T) {
	tb := benchagg.Table{}
	tb.Add(rec(100, 10, 0.99, 1.5))

	c := tb.Cell(100, 0.99, 10)
	require.NotNil(t, c)
	assert.Equal(t, 1.5, c.Latency)
	assert.Equal(t, 1, c.Count)
	assert.Equal(t, "100, 1.5\n", tb.String())
}

func TestTable_Add_average(t *testing.T) {
	tb := benchagg.Table{}
	tb.Add(rec(10, 100, 99, 1))
	tb.Add(rec(10, 100, 99, 2))

	c := tb.Cell(10, 99, 100)
	require.NotNil(t, c)
	assert.Equal(t, 1.5, c.Latency)
	assert.Equal(t, 2, c.Count)

	tb.Add(rec(10, 100, 99, 3))
	assert.Equal(t, 2.0, c.Latency)
	assert.Equal(t, 3, c.Count)
	assert.Equal(t, []string{"10, 2.0"}, tb.Lines())
}

func TestTable_Add_runningMean(t *testing.T) {
	tb := benchagg.Table{}
	values := []float64{12.3, 45.6, 7.8, 90.1, 23.4, 56.7}
	sum := 0.0

	for _, v := range values {
		tb.Add(rec(1, 1, 99, v))
		sum += v
	}

	c := tb.Cell(1, 99, 1)
	require.NotNil(t, c)
	assert.InDelta(t, sum/float64(len(values)), c.Latency, 1e-9)
	assert.Equal(t, len(values), c.Count)
}

// Records with Count > 1 are merged as weighted means. The naive incremental
// formula (l*c + l2) / (c + c2) would give (1*1 + 3) / 4 = 1 here.
func TestTable_Add_weighted(t *testing.T) {
	tb := benchagg.Table{}
	tb.Add(rec(1, 1, 99, 1))

	r := rec(1, 1, 99, 3)
	r.Count = 3
	tb.Add(r)

	c := tb.Cell(1, 99, 1)
	require.NotNil(t, c)
	assert.Equal(t, 2.5, c.Latency)
	assert.Equal(t, 4, c.Count)
}

func TestTable_Add_zeroCount(t *testing.T) {
	tb := benchagg.Table{}
	tb.Add(benchagg.Record{HistCount: 1, WindowSize: 1, Percentile: 99, Latency: 4})
	tb.Add(benchagg.Record{HistCount: 1, WindowSize: 1, Percentile: 99, Latency: 2})

	c := tb.Cell(1, 99, 1)
	require.NotNil(t, c)
	assert.Equal(t, 3.0, c.Latency)
	assert.Equal(t, 2, c.Count)
}

func TestTable_rowsAndColumns(t *testing.T) {
	tb := benchagg.Table{}
	tb.Add(rec(10, 1000, 99, 1))
	tb.Add(rec(10, 100, 99, 2))
	tb.Add(rec(10, 1000, 99.9, 3))
	tb.Add(rec(20, 1000, 99, 4))

	rows := tb.Rows()
	require.Len(t, rows, 3)

	assert.Equal(t, "10-99", rows[0].Key)
	require.Len(t, rows[0].Cells, 2)
	assert.Equal(t, 1000, rows[0].Cells[0].WindowSize)
	assert.Equal(t, 100, rows[0].Cells[1].WindowSize)

	assert.Equal(t, "10-99.9", rows[1].Key)
	assert.Equal(t, "20-99", rows[2].Key)

	assert.Nil(t, tb.Cell(10, 99, 10))
	assert.Nil(t, tb.Cell(30, 99, 1000))

	assert.Equal(t, "10, 1.0, 2.0\n10, 3.0\n20, 4.0\n", tb.String())
}

func TestTable_order(t *testing.T) {
	fill := func(tb *benchagg.Table) {
		tb.Add(rec(100, 10, 99, 1))
		tb.Add(rec(20, 10, 99, 2))
		tb.Add(rec(100, 10, 99.9, 3))
		tb.Add(rec(3, 10, 99, 4))
	}

	// Rows are sorted by histogram count, equal counts keep order of appearance.
	sorted := benchagg.Table{}
	fill(&sorted)
	assert.Equal(t, []string{"3, 4.0", "20, 2.0", "100, 1.0", "100, 3.0"}, sorted.Lines())

	// Order of appearance is available for compatibility with unsorted reports.
	unsorted := benchagg.Table{InsertionOrder: true}
	fill(&unsorted)
	assert.Equal(t, []string{"100, 1.0", "20, 2.0", "100, 3.0", "3, 4.0"}, unsorted.Lines())
}

func TestTable_empty(t *testing.T) {
	tb := benchagg.Table{}
	assert.Equal(t, "", tb.String())
	assert.Empty(t, tb.Rows())
	assert.Nil(t, tb.Cell(1, 99, 1))
}

func TestTable_Dist(t *testing.T) {
	tb := benchagg.Table{Dist: &dynhist.Collector{BucketsLimit: 5}}

	for i := 1; i <= 10; i++ {
		tb.Add(rec(1, 1, 99, float64(i)))
	}

	r := rec(2, 1, 99, 20)
	r.Count = 2
	tb.Add(r)

	assert.Equal(t, 12, tb.Dist.Count)
	assert.Equal(t, 1.0, tb.Dist.Min)
	assert.Equal(t, 20.0, tb.Dist.Max)
	assert.Equal(t, 95.0, tb.Dist.Sum)
}

func TestTable_Add_concurrent(t *testing.T) {
	tb := benchagg.Table{}
	wg := sync.WaitGroup{}

	for i := 0; i < 10; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for j := 0; j < 100; j++ {
				tb.Add(rec(1, 1, 99, 2))
			}
		}()
	}

	wg.Wait()

	c := tb.Cell(1, 99, 1)
	require.NotNil(t, c)
	assert.Equal(t, 1000, c.Count)
	assert.Equal(t, 2.0, c.Latency)
}

func TestFormatLatency(t *testing.T) {
	assert.Equal(t, "1.5", benchagg.FormatLatency(1.5))
	assert.Equal(t, "2.0", benchagg.FormatLatency(2))
	assert.Equal(t, "0.0", benchagg.FormatLatency(0))
	assert.Equal(t, "1.55", benchagg.FormatLatency(1.55))
	assert.Equal(t, "1234.6", benchagg.FormatLatency(1234.6))
}
