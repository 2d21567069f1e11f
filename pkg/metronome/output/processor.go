// Package output turns trial results into reports: console summaries,
// JSON/YAML documents and uploads to a results collector.
package output

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/thesyncim/metronome/pkg/metronome/trial"
)

// Processor consumes trial results one at a time. ProcessTrial is called in
// result order on a single goroutine; Close runs after the last trial and
// releases whatever the processor holds.
type Processor interface {
	ProcessTrial(result *trial.Result) error
	Close() error
}

var (
	_ Processor = (*Console)(nil)
	_ Processor = (*Report)(nil)
	_ Processor = (*Uploader)(nil)
)

// Process feeds every result through every processor in order, then closes
// all processors. The first error wins but every processor still gets closed.
func Process(results []*trial.Result, processors ...Processor) error {
	var firstErr error
	for _, result := range results {
		for _, p := range processors {
			if err := p.ProcessTrial(result); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	for _, p := range processors {
		if err := p.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Console prints one aligned summary block per trial as results arrive.
type Console struct {
	out io.Writer
}

// NewConsole writes to out, or stdout when out is nil.
func NewConsole(out io.Writer) *Console {
	if out == nil {
		out = os.Stdout
	}
	return &Console{out: out}
}

// ProcessTrial prints the trial's weighted statistics.
func (c *Console) ProcessTrial(result *trial.Result) error {
	stats := ComputeStatistics(result.Measurements)

	w := tabwriter.NewWriter(c.out, 1, 1, 1, ' ', 0)
	fmt.Fprintf(w, "\n%s (trial %d)\n", result.Benchmark, result.Trial)
	fmt.Fprintf(w, "  measurements:\t%d\n", len(result.Measurements))
	fmt.Fprintf(w, "  reps:\t%.0f\n", stats.TotalWeight)
	fmt.Fprintf(w, "  min:\t%.2f %s/rep\n", stats.Min, stats.Unit)
	fmt.Fprintf(w, "  max:\t%.2f %s/rep\n", stats.Max, stats.Unit)
	fmt.Fprintf(w, "  mean:\t%.2f %s/rep\n", stats.Mean, stats.Unit)
	fmt.Fprintf(w, "  stddev:\t%.2f %s\n", stats.StandardDeviation, stats.Unit)
	fmt.Fprintf(w, "  elapsed:\t%s\n", result.Elapsed())
	return w.Flush()
}

// Close is a no-op; Console holds nothing between trials.
func (c *Console) Close() error {
	return nil
}
