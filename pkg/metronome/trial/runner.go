// Package trial drives benchmarks through the worker lifecycle and collects
// their results, leaving the core engine free of scheduling and policy.
package trial

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/thesyncim/metronome/pkg/metronome"
	"github.com/thesyncim/metronome/pkg/metronome/suite"
)

// Runner executes benchmark suites according to a Config. All results from
// one Runner share a run id.
type Runner struct {
	cfg   Config
	runID uuid.UUID
	clock metronome.Clock
	env   Environment
	sinks []MeasurementSink
}

// NewRunner validates cfg and builds a Runner. Sinks, if any, observe
// measurements as they are produced.
func NewRunner(cfg Config, sinks ...MeasurementSink) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Runner{
		cfg:   cfg,
		runID: uuid.New(),
		clock: cfg.clock(),
		env:   CaptureEnvironment(),
		sinks: sinks,
	}, nil
}

// RunID identifies this runner's results in reports and collectors.
func (r *Runner) RunID() uuid.UUID {
	return r.runID
}

// Run executes every benchmark of every suite, Trials times each, and returns
// the results in registration order. The context is consulted between trials
// and between measurement cycles only, never inside a timed region; the first
// error aborts the run and cancels benchmarks still queued.
func (r *Runner) Run(ctx context.Context, suites ...*suite.Suite) ([]*Result, error) {
	var benches []*metronome.Benchmark
	seen := make(map[string]struct{})
	for _, s := range suites {
		for _, b := range s.Benchmarks() {
			if _, ok := seen[b.Name]; ok {
				return nil, errors.Errorf("duplicate benchmark name %s across suites", b.Name)
			}
			seen[b.Name] = struct{}{}
			benches = append(benches, b)
		}
	}

	// One slot per benchmark keeps the output in registration order no matter
	// how the group schedules them.
	perBench := make([][]*Result, len(benches))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Parallelism)
	for i, b := range benches {
		g.Go(func() error {
			results, err := r.runBenchmark(ctx, b)
			if err != nil {
				return err
			}
			perBench[i] = results
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var results []*Result
	for _, rs := range perBench {
		results = append(results, rs...)
	}
	return results, nil
}

func (r *Runner) runBenchmark(ctx context.Context, b *metronome.Benchmark) ([]*Result, error) {
	results := make([]*Result, 0, r.cfg.Trials)
	for trial := 1; trial <= r.cfg.Trials; trial++ {
		if err := ctx.Err(); err != nil {
			return nil, errors.WithStack(err)
		}
		result, err := r.runTrial(ctx, b, trial)
		if err != nil {
			return nil, errors.Wrapf(err, "benchmark %s trial %d", b.Name, trial)
		}
		results = append(results, result)
	}
	return results, nil
}

// runTrial takes one fresh worker through the full lifecycle. TearDownBenchmark
// runs exactly once whenever SetUpBenchmark succeeded, even if a later phase
// failed; a tear-down failure surfaces only when it is the sole error.
func (r *Runner) runTrial(ctx context.Context, b *metronome.Benchmark, trial int) (result *Result, err error) {
	worker, err := metronome.NewWorker(b, r.cfg.workerConfig())
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"benchmark": b.Name,
		"kind":      b.Kind().String(),
		"trial":     trial,
	}).Info("starting trial")

	started := r.clock.Now()
	if err := worker.SetUpBenchmark(); err != nil {
		return nil, err
	}
	defer func() {
		tearDownErr := worker.TearDownBenchmark()
		if tearDownErr != nil && err == nil {
			result, err = nil, tearDownErr
		}
	}()

	if err := worker.Bootstrap(); err != nil {
		return nil, err
	}

	for i := 0; i < r.cfg.WarmupIterations; i++ {
		if err := ctx.Err(); err != nil {
			return nil, errors.WithStack(err)
		}
		if _, err := runCycle(worker, true); err != nil {
			return nil, err
		}
	}

	measurements := make([]metronome.Measurement, 0, r.cfg.MeasurementIterations)
	for i := 0; i < r.cfg.MeasurementIterations; i++ {
		if err := ctx.Err(); err != nil {
			return nil, errors.WithStack(err)
		}
		ms, err := runCycle(worker, false)
		if err != nil {
			return nil, err
		}
		measurements = append(measurements, ms...)
		for _, sink := range r.sinks {
			sink.Consume(b.Name, trial, ms)
		}
	}
	finished := r.clock.Now()

	log.WithFields(log.Fields{
		"benchmark":    b.Name,
		"trial":        trial,
		"measurements": len(measurements),
		"elapsed":      finished.Sub(started).String(),
	}).Info("trial complete")

	return &Result{
		ID:           uuid.New(),
		RunID:        r.runID,
		Benchmark:    b.Name,
		Kind:         b.Kind().String(),
		Trial:        trial,
		StartedAt:    started,
		FinishedAt:   finished,
		Measurements: measurements,
		Environment:  r.env,
	}, nil
}

// runCycle is one pre/measure/post step of the lifecycle.
func runCycle(w metronome.Worker, inWarmup bool) ([]metronome.Measurement, error) {
	if err := w.PreMeasure(inWarmup); err != nil {
		return nil, err
	}
	ms, err := w.Measure()
	if err != nil {
		return nil, err
	}
	if err := w.PostMeasure(); err != nil {
		return nil, err
	}
	return ms, nil
}
