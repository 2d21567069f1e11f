// Package metronome implements calibrated execution of micro, pico and
// macro benchmarks through a fixed worker lifecycle.
package metronome

import (
	"math"

	"github.com/pkg/errors"
)

// initialReps is the batch size of the single bootstrap call. It is run
// before anything is known about the benchmark's cost, so it has to be small
// enough for slow-ish benchmarks yet large enough to produce a usable first
// estimate for fast ones.
const initialReps = 100

// maxMicroReps caps the repetition count passed to a MicroFunc. Capping at
// 32 bits keeps the overflow behavior identical across platforms regardless
// of the native width of int.
const maxMicroReps = math.MaxInt32

var (
	_ Worker = (*RuntimeWorker)(nil)
	_ Worker = (*MacroWorker)(nil)
)

// RuntimeWorker measures benchmarks whose single repetition is far below the
// usable timer resolution. It times batches of many repetitions in one call
// and resizes each batch from the running cost estimate, so every timed call
// lands near the configured timing interval.
//
// Batch sizes are additionally perturbed with a normal deviate whose standard
// deviation is a fifth of the estimate. Constant batch sizes can alias with
// periodic system activity such as scheduler quanta; randomizing the size
// decorrelates those effects across the measurement sequence.
type RuntimeWorker struct {
	workerBase
	clock   Clock
	random  randSource
	forceGC func()
	opts    workerOptions

	// invokeTimed runs one timed batch and returns the observed nanoseconds.
	// Bound at construction to the micro or pico call path.
	invokeTimed func(reps int64) (int64, error)

	// Cumulative history, bootstrap included. The estimate is the ratio of
	// the two, so one noisy batch gets damped by everything observed before.
	totalReps  int64
	totalNanos int64

	// Batch size chosen by the last PreMeasure.
	nextReps int64
}

// randSource is the slice of *rand.Rand the runtime worker needs.
type randSource interface {
	NormFloat64() float64
}

// NewMicroWorker returns a runtime worker that invokes b.Micro with an int
// repetition count. Batch sizes beyond the int32 range abort the trial with
// *ErrRepsOverflow.
func NewMicroWorker(b *Benchmark, cfg WorkerConfig) (*RuntimeWorker, error) {
	if b.Micro == nil {
		return nil, errors.WithStack(&ErrNoTarget{Benchmark: b.Name, Kind: KindMicro})
	}
	w, err := newRuntimeWorker(b, cfg)
	if err != nil {
		return nil, err
	}
	w.invokeTimed = w.invokeMicro
	return w, nil
}

// NewPicoWorker returns a runtime worker that invokes b.Pico with an int64
// repetition count, for benchmarks too fast for the micro variant.
func NewPicoWorker(b *Benchmark, cfg WorkerConfig) (*RuntimeWorker, error) {
	if b.Pico == nil {
		return nil, errors.WithStack(&ErrNoTarget{Benchmark: b.Name, Kind: KindPico})
	}
	w, err := newRuntimeWorker(b, cfg)
	if err != nil {
		return nil, err
	}
	w.invokeTimed = w.invokePico
	return w, nil
}

func newRuntimeWorker(b *Benchmark, cfg WorkerConfig) (*RuntimeWorker, error) {
	opts, err := parseWorkerOptions(cfg.Options)
	if err != nil {
		return nil, err
	}
	return &RuntimeWorker{
		workerBase: workerBase{benchmark: b},
		clock:      cfg.clock(),
		random:     cfg.random(),
		forceGC:    cfg.forceGC(),
		opts:       opts,
	}, nil
}

// Bootstrap primes the cost estimate with one fixed-size batch. Its reps and
// nanos enter the cumulative history like any later measurement's, but no
// Measurement is recorded for it.
func (w *RuntimeWorker) Bootstrap() error {
	nanos, err := w.invokeTimed(initialReps)
	if err != nil {
		return err
	}
	w.totalReps = initialReps
	w.totalNanos = nanos
	return nil
}

// PreMeasure sizes the next batch from the history accumulated so far and,
// outside warm-up, optionally forces a garbage collection so collection
// pauses tend to fall between timed regions rather than inside them.
func (w *RuntimeWorker) PreMeasure(inWarmup bool) error {
	w.nextReps = calibrateReps(w.totalReps, w.totalNanos, w.opts.timingIntervalNanos, w.random.NormFloat64())
	if w.opts.gcBeforeEach && !inWarmup {
		w.forceGC()
	}
	return nil
}

// Measure times one batch of the size chosen by PreMeasure and returns the
// single resulting measurement, weighted by the batch size.
func (w *RuntimeWorker) Measure() ([]Measurement, error) {
	reps := w.nextReps
	nanos, err := w.invokeTimed(reps)
	if err != nil {
		return nil, err
	}
	m, err := NewMeasurement("runtime", Value{Magnitude: float64(nanos), Unit: "ns"}, float64(reps))
	if err != nil {
		return nil, err
	}
	w.totalReps += reps
	w.totalNanos += nanos
	return []Measurement{m}, nil
}

func (w *RuntimeWorker) invokeMicro(reps int64) (int64, error) {
	if reps > maxMicroReps {
		return 0, errors.WithStack(&ErrRepsOverflow{
			Benchmark: w.benchmark.Name,
			Reps:      reps,
			Interval:  w.opts.timingInterval(),
		})
	}
	before := w.clock.Now()
	if err := w.benchmark.Micro(int(reps)); err != nil {
		return 0, errors.Wrap(err, "benchmark body")
	}
	return w.clock.Now().Sub(before).Nanoseconds(), nil
}

func (w *RuntimeWorker) invokePico(reps int64) (int64, error) {
	before := w.clock.Now()
	if err := w.benchmark.Pico(reps); err != nil {
		return 0, errors.Wrap(err, "benchmark body")
	}
	return w.clock.Now().Sub(before).Nanoseconds(), nil
}

// calibrateReps picks the batch size for the next timed call. The point
// estimate is the repetition count that fills targetNanos at the observed
// average cost nanos/reps; gaussian perturbs it with standard deviation a
// fifth of the estimate. The result never drops below one, so progress is
// guaranteed even when the history says a single repetition already exceeds
// the interval.
func calibrateReps(reps, nanos, targetNanos int64, gaussian float64) int64 {
	targetReps := float64(reps) / float64(nanos) * float64(targetNanos)
	perturbed := math.Round(gaussian*(targetReps/5) + targetReps)
	// A history recorded against a timer that never advanced sends the
	// estimate to infinity. Clamp rather than hand a non-finite value to the
	// int64 conversion, whose result is platform-specific.
	if math.IsNaN(perturbed) || perturbed < 1 {
		return 1
	}
	if perturbed >= float64(math.MaxInt64) {
		return math.MaxInt64
	}
	return int64(perturbed)
}
