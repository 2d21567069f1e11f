// Package metronome implements calibrated execution of micro, pico and
// macro benchmarks through a fixed worker lifecycle.
package metronome

import (
	"github.com/pkg/errors"
)

// MacroWorker measures benchmarks coarse enough that a single invocation is
// well above timer resolution. Each cycle times exactly one call, so every
// measurement has weight one and no calibration history is kept.
type MacroWorker struct {
	workerBase
	clock        Clock
	forceGC      func()
	gcBeforeEach bool
}

// NewMacroWorker returns a worker that times single invocations of b.Macro.
func NewMacroWorker(b *Benchmark, cfg WorkerConfig) (*MacroWorker, error) {
	if b.Macro == nil {
		return nil, errors.WithStack(&ErrNoTarget{Benchmark: b.Name, Kind: KindMacro})
	}
	opts, err := parseWorkerOptions(cfg.Options)
	if err != nil {
		return nil, err
	}
	return &MacroWorker{
		workerBase:   workerBase{benchmark: b},
		clock:        cfg.clock(),
		forceGC:      cfg.forceGC(),
		gcBeforeEach: opts.gcBeforeEach,
	}, nil
}

// PreMeasure runs every before-rep hook in declared order and, outside
// warm-up, optionally forces a garbage collection. Hook failures abort the
// cycle before the target runs.
func (w *MacroWorker) PreMeasure(inWarmup bool) error {
	if err := runHooks("before-rep", w.benchmark.BeforeRep); err != nil {
		return err
	}
	if w.gcBeforeEach && !inWarmup {
		w.forceGC()
	}
	return nil
}

// Measure times one invocation of the target.
func (w *MacroWorker) Measure() ([]Measurement, error) {
	before := w.clock.Now()
	if err := w.benchmark.Macro(); err != nil {
		return nil, errors.Wrap(err, "benchmark body")
	}
	nanos := w.clock.Now().Sub(before).Nanoseconds()
	m, err := NewMeasurement("runtime", Value{Magnitude: float64(nanos), Unit: "ns"}, 1)
	if err != nil {
		return nil, err
	}
	return []Measurement{m}, nil
}

// PostMeasure runs every after-rep hook in declared order.
func (w *MacroWorker) PostMeasure() error {
	return runHooks("after-rep", w.benchmark.AfterRep)
}
