package output

import (
	"encoding/json"
	"io"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/thesyncim/metronome/pkg/metronome"
	"github.com/thesyncim/metronome/pkg/metronome/trial"
)

// Formatter serializes the report document.
type Formatter func(v interface{}) ([]byte, error)

// JSONFormatter renders indented JSON.
func JSONFormatter(v interface{}) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}

// YAMLFormatter renders YAML.
func YAMLFormatter(v interface{}) ([]byte, error) {
	return yaml.Marshal(v)
}

// ReportDocument is the file layout of a full run report: the raw trials plus
// per-benchmark statistics aggregated across trials.
type ReportDocument struct {
	GeneratedAt time.Time             `json:"generatedAt" yaml:"generatedAt"`
	Results     []*trial.Result       `json:"results" yaml:"results"`
	Statistics  map[string]Statistics `json:"statistics" yaml:"statistics"`
}

// Report accumulates trial results and writes one document on Close.
type Report struct {
	out       io.Writer
	formatter Formatter
	now       func() time.Time
	results   []*trial.Result
}

// NewReport writes the document to out using formatter, or YAMLFormatter when
// formatter is nil.
func NewReport(out io.Writer, formatter Formatter) *Report {
	if formatter == nil {
		formatter = YAMLFormatter
	}
	return &Report{
		out:       out,
		formatter: formatter,
		now:       time.Now,
	}
}

// ProcessTrial records the result for the final document.
func (r *Report) ProcessTrial(result *trial.Result) error {
	r.results = append(r.results, result)
	return nil
}

// Close renders and writes the document.
func (r *Report) Close() error {
	doc := ReportDocument{
		GeneratedAt: r.now(),
		Results:     r.results,
		Statistics:  make(map[string]Statistics, len(r.results)),
	}

	byBenchmark := make(map[string][]*trial.Result, len(r.results))
	for _, result := range r.results {
		byBenchmark[result.Benchmark] = append(byBenchmark[result.Benchmark], result)
	}
	for name, results := range byBenchmark {
		var all []metronome.Measurement
		for _, result := range results {
			all = append(all, result.Measurements...)
		}
		doc.Statistics[name] = ComputeStatistics(all)
	}

	data, err := r.formatter(doc)
	if err != nil {
		return errors.Wrap(err, "formatting report")
	}
	if _, err := r.out.Write(data); err != nil {
		return errors.Wrap(err, "writing report")
	}
	return nil
}
