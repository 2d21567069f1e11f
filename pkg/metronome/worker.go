// Package metronome implements calibrated execution of micro, pico and
// macro benchmarks through a fixed worker lifecycle.
package metronome

import (
	"math/rand"
	"runtime"
	"time"

	"github.com/pkg/errors"
)

// Hook is a lifecycle callback attached to a benchmark. A non-nil error from
// a hook aborts the trial and is reported with the hook's phase; it is never
// retried and never converted into a measurement.
type Hook func() error

// MicroFunc is the timed body of a micro benchmark. It must perform the
// benchmarked operation exactly reps times and do nothing else; the harness
// times the whole call.
type MicroFunc func(reps int) error

// PicoFunc is the timed body of a pico benchmark, for operations so fast that
// a single timed batch can exceed the int32 range of repetitions.
type PicoFunc func(reps int64) error

// MacroFunc is the timed body of a macro benchmark. One call is one
// repetition.
type MacroFunc func() error

// BenchmarkKind identifies which worker variant a benchmark requires.
type BenchmarkKind int

const (
	KindUnknown BenchmarkKind = iota
	KindMicro
	KindPico
	KindMacro
)

func (k BenchmarkKind) String() string {
	switch k {
	case KindMicro:
		return "micro"
	case KindPico:
		return "pico"
	case KindMacro:
		return "macro"
	default:
		return "unknown"
	}
}

// Benchmark describes one runnable benchmark: a name, exactly one timed
// function, and the lifecycle hooks declared for it. Workers read a Benchmark
// for the duration of one trial and never mutate it.
type Benchmark struct {
	// Name labels the benchmark in results and error messages,
	// e.g. "rtp/MarshalHeader".
	Name string

	// Exactly one of Micro, Pico and Macro must be non-nil.
	Micro MicroFunc
	Pico  PicoFunc
	Macro MacroFunc

	// Hooks run in declared (slice) order. BeforeExperiment and
	// AfterExperiment run once per trial; BeforeRep and AfterRep bracket
	// every macro measurement cycle and are ignored by the runtime workers.
	BeforeExperiment []Hook
	AfterExperiment  []Hook
	BeforeRep        []Hook
	AfterRep         []Hook
}

// Kind reports the worker variant matching the benchmark's timed function,
// or KindUnknown if none or several are set.
func (b *Benchmark) Kind() BenchmarkKind {
	var (
		kind BenchmarkKind
		n    int
	)
	if b.Micro != nil {
		kind, n = KindMicro, n+1
	}
	if b.Pico != nil {
		kind, n = KindPico, n+1
	}
	if b.Macro != nil {
		kind, n = KindMacro, n+1
	}
	if n != 1 {
		return KindUnknown
	}
	return kind
}

// WorkerConfig carries the injectable collaborators of a worker. The zero
// value selects production defaults for every field.
type WorkerConfig struct {
	// Clock supplies monotonic time for the timed region. Nil selects
	// SystemClock.
	Clock Clock
	// Random drives the batch size perturbation of the runtime workers.
	// Nil selects a time-seeded source; inject a fixed seed to make
	// calibration sequences reproducible.
	Random *rand.Rand
	// ForceGC requests a best-effort garbage collection pass. Nil selects
	// runtime.GC.
	ForceGC func()
	// Options is the string option map from the trial configuration, see
	// OptionTimingInterval and OptionGCBeforeEach.
	Options map[string]string
}

func (c WorkerConfig) clock() Clock {
	if c.Clock != nil {
		return c.Clock
	}
	return SystemClock{}
}

func (c WorkerConfig) random() *rand.Rand {
	if c.Random != nil {
		return c.Random
	}
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

func (c WorkerConfig) forceGC() func() {
	if c.ForceGC != nil {
		return c.ForceGC
	}
	return runtime.GC
}

// Worker runs one benchmark through the measurement lifecycle. The caller
// invokes SetUpBenchmark once, Bootstrap once, then any number of
// PreMeasure/Measure/PostMeasure cycles (warm-up cycles first, recorded
// cycles after), and finally TearDownBenchmark exactly once. A Worker is
// owned by a single goroutine for its whole lifetime.
type Worker interface {
	// SetUpBenchmark runs every before-experiment hook in declared order.
	SetUpBenchmark() error
	// Bootstrap performs one-time priming between setup and the first
	// measurement cycle.
	Bootstrap() error
	// PreMeasure prepares the next cycle. inWarmup is true for cycles whose
	// measurements are discarded, letting implementations skip costly
	// preparation such as forced GC while warming up.
	PreMeasure(inWarmup bool) error
	// Measure executes the timed work and returns this cycle's measurements.
	Measure() ([]Measurement, error)
	// PostMeasure cleans up after a cycle.
	PostMeasure() error
	// TearDownBenchmark runs every after-experiment hook in declared order.
	TearDownBenchmark() error
}

// NewWorker selects the worker variant for b from its timed function.
func NewWorker(b *Benchmark, cfg WorkerConfig) (Worker, error) {
	switch b.Kind() {
	case KindMicro:
		return NewMicroWorker(b, cfg)
	case KindPico:
		return NewPicoWorker(b, cfg)
	case KindMacro:
		return NewMacroWorker(b, cfg)
	default:
		return nil, errors.Errorf("benchmark %s must declare exactly one timed function", b.Name)
	}
}

// workerBase implements the lifecycle bookends shared by all worker variants.
// Variants embed it and override the phases they participate in; Measure has
// no default and must come from the variant.
type workerBase struct {
	benchmark *Benchmark
}

func (w *workerBase) SetUpBenchmark() error {
	return runHooks("before-experiment", w.benchmark.BeforeExperiment)
}

func (w *workerBase) Bootstrap() error {
	return nil
}

func (w *workerBase) PreMeasure(bool) error {
	return nil
}

func (w *workerBase) PostMeasure() error {
	return nil
}

func (w *workerBase) TearDownBenchmark() error {
	return runHooks("after-experiment", w.benchmark.AfterExperiment)
}

// runHooks invokes hooks in order, stopping at the first failure. The
// original error is kept as the cause so callers can unwrap it.
func runHooks(phase string, hooks []Hook) error {
	for i, hook := range hooks {
		if err := hook(); err != nil {
			return errors.Wrapf(err, "%s hook %d/%d failed", phase, i+1, len(hooks))
		}
	}
	return nil
}
