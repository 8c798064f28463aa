// Package main implements a tool to tabulate average latencies of histogram multiplication benchmarks.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/bool64/dev/version"
	"github.com/pkg/errors"
	"github.com/vearutop/benchagg"
	"github.com/vearutop/dynhist-go"
)

type logFiles []string

func (l *logFiles) String() string {
	return strings.Join(*l, ",")
}

func (l *logFiles) Set(v string) error {
	*l = append(*l, v)

	return nil
}

type options struct {
	logs     []string
	unsorted bool
	summary  bool
	dist     bool
	buckets  int
	verbose  bool
}

func main() {
	log.SetFlags(0)

	var (
		logs logFiles
		opts options
	)

	flag.Var(&logs, "logs", "Benchmark log file, can be repeated, remaining arguments are also used as log files.")
	flag.BoolVar(&opts.unsorted, "unsorted", false, "Print rows in order of appearance instead of sorting by histogram count.")
	flag.BoolVar(&opts.summary, "summary", false, "Print statistics of individual runs for every cell.")
	flag.BoolVar(&opts.dist, "dist", false, "Print distribution of run latencies.")
	flag.IntVar(&opts.buckets, "buckets", 10, "Number of buckets for distribution.")
	flag.BoolVar(&opts.verbose, "v", false, "Log progress to stderr.")
	ver := flag.Bool("version", false, "Print version.")

	flag.Parse()

	if *ver {
		fmt.Println(version.Info().Version)

		return
	}

	opts.logs = append(logs, flag.Args()...)

	if len(opts.logs) == 0 {
		fmt.Fprintln(flag.CommandLine.Output(), "Usage: benchagg -logs <path> [<path> ...]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	if err := run(opts, os.Stdout); err != nil {
		log.Fatal(err.Error())
	}
}

func run(opts options, out io.Writer) error {
	t := &benchagg.Table{
		InsertionOrder: opts.unsorted,
		KeepSamples:    opts.summary,
	}

	if opts.dist {
		t.Dist = &dynhist.Collector{
			BucketsLimit: opts.buckets,
			WeightFunc:   dynhist.LatencyWidth,
		}
	}

	for _, fn := range opts.logs {
		n, err := t.LoadFile(fn)
		if err != nil {
			return err
		}

		if opts.verbose {
			log.Printf("%s: %d records", fn, n)
		}
	}

	// Report is rendered only after all logs are loaded, so a failure leaves output empty.
	var res strings.Builder

	res.WriteString(t.String())

	if opts.summary {
		s, err := t.SummaryString()
		if err != nil {
			return errors.Wrap(err, "summary")
		}

		res.WriteString("\n")
		res.WriteString(s)
	}

	if opts.dist && t.Dist.Count > 0 {
		res.WriteString("\n")

		for _, p := range []float64{99, 90, 50} {
			fmt.Fprintf(&res, "%.0f%% < %.1f\n", p, t.Dist.Percentile(p))
		}

		res.WriteString("\n")
		res.WriteString(t.Dist.String())
	}

	_, err := io.WriteString(out, res.String())

	return err
}
