// Package metronome benchmarks for harness overhead verification.
//
// Harness Overhead Benchmarks
// ===========================
//
// These benchmarks measure the cost the harness itself adds to a measurement
// cycle. Everything outside the benchmark body (batch sizing, clock reads,
// measurement construction) runs between timed regions of the user's code, so
// its cost does not distort results directly, but it bounds how fast cycles
// can be driven and how much garbage a long run produces.
//
// How to run:
//
//	go test -bench=. -benchmem ./pkg/metronome
//
// Targets:
//   - calibrateReps: 0 allocs/op (pure arithmetic)
//   - RuntimeWorker cycle: 1 alloc/op (the returned measurement slice)
//   - MacroWorker cycle: 1 alloc/op (the returned measurement slice)
//
// GC forcing is disabled in the cycle benchmarks; with it enabled the numbers
// measure the collector, not the harness.
package metronome

import (
	"math/rand"
	"testing"
	"time"

	"github.com/thesyncim/metronome/pkg/metronome/testutil"
)

// benchReps is a package-level variable to prevent compiler optimizations
// from eliminating benchmark loops that produce unused results.
var benchReps int64

// benchMeasurements is a package-level variable for Measure results.
var benchMeasurements []Measurement

func BenchmarkCalibrateReps_ZeroAlloc(b *testing.B) {
	b.ReportAllocs()

	random := rand.New(rand.NewSource(42))

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		benchReps = calibrateReps(1000, 1_000_000, 5000, random.NormFloat64())
	}
}

func BenchmarkRuntimeWorker_Cycle(b *testing.B) {
	b.ReportAllocs()

	clk := testutil.NewManualClock(time.Time{})
	bench := &Benchmark{
		Name: "bench/spin",
		Micro: func(reps int) error {
			clk.Advance(time.Duration(reps) * time.Microsecond)
			return nil
		},
	}
	cfg := WorkerConfig{
		Clock:   clk,
		Random:  rand.New(rand.NewSource(42)),
		Options: map[string]string{OptionGCBeforeEach: "false"},
	}
	w, err := NewMicroWorker(bench, cfg)
	if err != nil {
		b.Fatal(err)
	}
	if err := w.Bootstrap(); err != nil {
		b.Fatal(err)
	}

	// Warmup: let the batch size settle before measuring harness overhead
	for i := 0; i < 100; i++ {
		if err := w.PreMeasure(true); err != nil {
			b.Fatal(err)
		}
		if _, err := w.Measure(); err != nil {
			b.Fatal(err)
		}
	}

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if err := w.PreMeasure(false); err != nil {
			b.Fatal(err)
		}
		ms, err := w.Measure()
		if err != nil {
			b.Fatal(err)
		}
		benchMeasurements = ms
	}
}

func BenchmarkMacroWorker_Cycle(b *testing.B) {
	b.ReportAllocs()

	clk := testutil.NewManualClock(time.Time{})
	bench := &Benchmark{
		Name: "bench/once",
		Macro: func() error {
			clk.Advance(time.Millisecond)
			return nil
		},
	}
	cfg := WorkerConfig{
		Clock:   clk,
		Options: map[string]string{OptionGCBeforeEach: "false"},
	}
	w, err := NewMacroWorker(bench, cfg)
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if err := w.PreMeasure(false); err != nil {
			b.Fatal(err)
		}
		ms, err := w.Measure()
		if err != nil {
			b.Fatal(err)
		}
		if err := w.PostMeasure(); err != nil {
			b.Fatal(err)
		}
		benchMeasurements = ms
	}
}
