package metronome

import (
	"math"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thesyncim/metronome/pkg/metronome/testutil"
)

// stubGauss feeds a scripted sequence of normal deviates, then zeros.
type stubGauss struct {
	vals []float64
	i    int
}

func (g *stubGauss) NormFloat64() float64 {
	if g.i >= len(g.vals) {
		return 0
	}
	v := g.vals[g.i]
	g.i++
	return v
}

// microBench returns a micro benchmark whose body advances clk by perRep for
// every repetition, simulating a perfectly deterministic cost.
func microBench(name string, clk *testutil.ManualClock, perRep time.Duration) *Benchmark {
	return &Benchmark{
		Name: name,
		Micro: func(reps int) error {
			clk.Advance(time.Duration(reps) * perRep)
			return nil
		},
	}
}

// =============================================================================
// Calibration Tests
// =============================================================================

func TestCalibrateReps_SteadyState(t *testing.T) {
	// 1000 reps observed in 1ms, target interval 5000ns:
	// 1000/1_000_000 * 5000 = 5 reps per batch
	reps := calibrateReps(1000, 1_000_000, 5000, 0)
	assert.Equal(t, int64(5), reps)
}

func TestCalibrateReps_AfterBootstrap(t *testing.T) {
	// Bootstrap history only: 100 reps in 100_000ns at the default interval
	reps := calibrateReps(100, 100_000, defaultTimingIntervalNanos, 0)
	assert.Equal(t, int64(5), reps)
}

func TestCalibrateReps_ZeroGaussianIsIdentity(t *testing.T) {
	// With a zero deviate the result is just the rounded point estimate
	reps := calibrateReps(1000, 3_000_000, 5000, 0)
	assert.Equal(t, int64(2), reps, "1000/3_000_000*5000 = 1.67, rounds to 2")
}

func TestCalibrateReps_NeverBelowOne(t *testing.T) {
	// One repetition costs a full second; the estimate is far below one rep
	reps := calibrateReps(5, 5_000_000_000, 5000, 0)
	assert.Equal(t, int64(1), reps, "batch size must never drop below 1")
}

func TestCalibrateReps_GaussianPerturbation(t *testing.T) {
	tests := []struct {
		name     string
		gaussian float64
		expected int64
	}{
		{name: "plus one sigma", gaussian: 1, expected: 6},    // 5 + 1*(5/5)
		{name: "minus one sigma", gaussian: -1, expected: 4},  // 5 - 1*(5/5)
		{name: "plus 2.4 sigma", gaussian: 2.4, expected: 7},  // 5 + 2.4 = 7.4
		{name: "minus five sigma", gaussian: -5, expected: 1}, // 5 - 5 = 0, clamped
		{name: "half sigma rounds up", gaussian: 0.5, expected: 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Point estimate is 5 in every case
			reps := calibrateReps(1000, 1_000_000, 5000, tt.gaussian)
			assert.Equal(t, tt.expected, reps)
		})
	}
}

func TestCalibrateReps_ZeroNanosClamps(t *testing.T) {
	// A timer that never advanced makes the estimate infinite. A zero deviate
	// multiplies the infinite sigma into NaN, which clamps low; any other
	// deviate keeps the sum infinite, which clamps high.
	assert.Equal(t, int64(1), calibrateReps(100, 0, 5000, 0))
	assert.Equal(t, int64(math.MaxInt64), calibrateReps(100, 0, 5000, 1))
}

// =============================================================================
// Bootstrap Tests
// =============================================================================

func TestRuntimeWorker_BootstrapSeedsHistory(t *testing.T) {
	clk := testutil.NewManualClock(time.Time{})
	w, err := NewMicroWorker(microBench("bench/fast", clk, time.Microsecond), WorkerConfig{Clock: clk})
	require.NoError(t, err)

	require.NoError(t, w.Bootstrap())

	assert.Equal(t, int64(100), w.totalReps, "bootstrap runs exactly 100 reps")
	assert.Equal(t, int64(100_000), w.totalNanos, "100 reps at 1us each")
}

func TestRuntimeWorker_BootstrapRecordsNoMeasurement(t *testing.T) {
	clk := testutil.NewManualClock(time.Time{})
	w, err := NewMicroWorker(microBench("bench/fast", clk, time.Microsecond), WorkerConfig{Clock: clk})
	require.NoError(t, err)

	// Bootstrap feeds the history but produces nothing observable to callers;
	// only Measure returns measurements.
	require.NoError(t, w.Bootstrap())
}

func TestRuntimeWorker_BootstrapPropagatesBenchmarkError(t *testing.T) {
	boom := errors.New("device not ready")
	b := &Benchmark{
		Name:  "bench/failing",
		Micro: func(int) error { return boom },
	}
	w, err := NewMicroWorker(b, WorkerConfig{})
	require.NoError(t, err)

	err = w.Bootstrap()
	require.Error(t, err)
	assert.Equal(t, boom, errors.Cause(err), "original error must be preserved as cause")
}

// =============================================================================
// Measurement Cycle Tests
// =============================================================================

func TestRuntimeWorker_MeasureCycle(t *testing.T) {
	clk := testutil.NewManualClock(time.Time{})
	w, err := NewMicroWorker(microBench("bench/fast", clk, time.Microsecond), WorkerConfig{Clock: clk})
	require.NoError(t, err)
	w.random = &stubGauss{}

	require.NoError(t, w.Bootstrap())
	require.NoError(t, w.PreMeasure(false))

	// Steady state: 100 reps / 100_000ns history targets 5 reps per batch
	ms, err := w.Measure()
	require.NoError(t, err)
	require.Len(t, ms, 1)

	m := ms[0]
	assert.Equal(t, "runtime", m.Description)
	assert.Equal(t, "ns", m.Value.Unit)
	assert.Equal(t, float64(5000), m.Value.Magnitude, "5 reps at 1us each")
	assert.Equal(t, float64(5), m.Weight, "weight equals the batch size")
}

func TestRuntimeWorker_HistoryAccumulatesMonotonically(t *testing.T) {
	clk := testutil.NewManualClock(time.Time{})
	w, err := NewMicroWorker(microBench("bench/fast", clk, time.Microsecond), WorkerConfig{Clock: clk})
	require.NoError(t, err)
	w.random = &stubGauss{vals: []float64{1, -1, 0.5, 2}}

	require.NoError(t, w.Bootstrap())

	prevReps, prevNanos := w.totalReps, w.totalNanos
	var sumWeights float64
	for i := 0; i < 4; i++ {
		require.NoError(t, w.PreMeasure(false))
		ms, err := w.Measure()
		require.NoError(t, err)
		require.Len(t, ms, 1)
		sumWeights += ms[0].Weight

		assert.Greater(t, w.totalReps, prevReps, "cycle %d must grow the rep history", i)
		assert.Greater(t, w.totalNanos, prevNanos, "cycle %d must grow the nano history", i)
		prevReps, prevNanos = w.totalReps, w.totalNanos
		require.NoError(t, w.PostMeasure())
	}

	assert.Equal(t, float64(w.totalReps-100), sumWeights, "history is bootstrap plus every measured batch")
}

func TestRuntimeWorker_SteadyStateBatchSizeIsStable(t *testing.T) {
	clk := testutil.NewManualClock(time.Time{})
	w, err := NewMicroWorker(microBench("bench/fast", clk, time.Microsecond), WorkerConfig{Clock: clk})
	require.NoError(t, err)
	w.random = &stubGauss{}

	require.NoError(t, w.Bootstrap())

	// With a constant per-rep cost and zero deviates, the batch size locks in
	for i := 0; i < 10; i++ {
		require.NoError(t, w.PreMeasure(false))
		assert.Equal(t, int64(5), w.nextReps, "cycle %d", i)
		_, err := w.Measure()
		require.NoError(t, err)
	}
}

func TestRuntimeWorker_MeasurePropagatesBenchmarkError(t *testing.T) {
	clk := testutil.NewManualClock(time.Time{})
	boom := errors.New("corrupt input")
	calls := 0
	b := &Benchmark{
		Name: "bench/flaky",
		Micro: func(reps int) error {
			calls++
			if calls > 1 {
				return boom
			}
			clk.Advance(time.Duration(reps) * time.Microsecond)
			return nil
		},
	}
	w, err := NewMicroWorker(b, WorkerConfig{Clock: clk})
	require.NoError(t, err)
	w.random = &stubGauss{}

	require.NoError(t, w.Bootstrap())
	require.NoError(t, w.PreMeasure(false))

	ms, err := w.Measure()
	require.Error(t, err)
	assert.Nil(t, ms, "a failed cycle must record no measurements")
	assert.Equal(t, boom, errors.Cause(err))
}

// =============================================================================
// Garbage Collection Tests
// =============================================================================

func TestRuntimeWorker_ForcesGCOnRecordedCycles(t *testing.T) {
	clk := testutil.NewManualClock(time.Time{})
	gcs := 0
	cfg := WorkerConfig{Clock: clk, ForceGC: func() { gcs++ }}
	w, err := NewMicroWorker(microBench("bench/fast", clk, time.Microsecond), cfg)
	require.NoError(t, err)
	w.random = &stubGauss{}

	require.NoError(t, w.Bootstrap())

	require.NoError(t, w.PreMeasure(true))
	assert.Equal(t, 0, gcs, "warm-up cycles must not force GC")

	require.NoError(t, w.PreMeasure(false))
	assert.Equal(t, 1, gcs, "recorded cycles force GC by default")
}

func TestRuntimeWorker_GCBeforeEachDisabled(t *testing.T) {
	clk := testutil.NewManualClock(time.Time{})
	gcs := 0
	cfg := WorkerConfig{
		Clock:   clk,
		ForceGC: func() { gcs++ },
		Options: map[string]string{OptionGCBeforeEach: "false"},
	}
	w, err := NewMicroWorker(microBench("bench/fast", clk, time.Microsecond), cfg)
	require.NoError(t, err)
	w.random = &stubGauss{}

	require.NoError(t, w.Bootstrap())
	require.NoError(t, w.PreMeasure(false))
	assert.Equal(t, 0, gcs)
}

// =============================================================================
// Overflow Tests
// =============================================================================

func TestMicroWorker_RepsOverflow(t *testing.T) {
	clk := testutil.NewManualClock(time.Time{})
	// The body advances the clock by 1ns per batch regardless of reps, so the
	// cost estimate collapses and the huge interval demands ~1e16 reps.
	b := &Benchmark{
		Name: "bench/instant",
		Micro: func(int) error {
			clk.Advance(time.Nanosecond)
			return nil
		},
	}
	cfg := WorkerConfig{
		Clock:   clk,
		Options: map[string]string{OptionTimingInterval: "100000000000000"},
	}
	w, err := NewMicroWorker(b, cfg)
	require.NoError(t, err)
	w.random = &stubGauss{}

	require.NoError(t, w.Bootstrap())
	require.NoError(t, w.PreMeasure(false))
	require.Greater(t, w.nextReps, int64(maxMicroReps))

	ms, err := w.Measure()
	assert.Nil(t, ms, "overflow must record zero measurements")
	require.Error(t, err)

	var overflow *ErrRepsOverflow
	require.ErrorAs(t, err, &overflow)
	assert.Equal(t, "bench/instant", overflow.Benchmark)
	assert.Equal(t, w.nextReps, overflow.Reps)
	assert.Contains(t, err.Error(), "bench/instant", "message names the benchmark")
	assert.Contains(t, err.Error(), overflow.Interval.String(), "message names the configured interval")
	assert.Contains(t, err.Error(), "int64", "message points at the wide variant")
}

func TestPicoWorker_NoOverflowForWideReps(t *testing.T) {
	clk := testutil.NewManualClock(time.Time{})
	var got int64
	b := &Benchmark{
		Name: "bench/instant",
		Pico: func(reps int64) error {
			got = reps
			clk.Advance(time.Nanosecond)
			return nil
		},
	}
	cfg := WorkerConfig{
		Clock:   clk,
		Options: map[string]string{OptionTimingInterval: "100000000000000"},
	}
	w, err := NewPicoWorker(b, cfg)
	require.NoError(t, err)
	w.random = &stubGauss{}

	require.NoError(t, w.Bootstrap())
	require.NoError(t, w.PreMeasure(false))

	ms, err := w.Measure()
	require.NoError(t, err, "the wide variant accepts any batch size")
	require.Len(t, ms, 1)
	assert.Greater(t, got, int64(maxMicroReps), "the batch really was beyond int32")
	assert.Equal(t, float64(got), ms[0].Weight)
}

// =============================================================================
// Construction Tests
// =============================================================================

func TestNewMicroWorker_RequiresMicroTarget(t *testing.T) {
	_, err := NewMicroWorker(&Benchmark{Name: "bench/nothing"}, WorkerConfig{})
	require.Error(t, err)

	var noTarget *ErrNoTarget
	require.ErrorAs(t, err, &noTarget)
	assert.Equal(t, KindMicro, noTarget.Kind)
}

func TestNewPicoWorker_RequiresPicoTarget(t *testing.T) {
	_, err := NewPicoWorker(&Benchmark{Name: "bench/nothing"}, WorkerConfig{})
	require.Error(t, err)

	var noTarget *ErrNoTarget
	require.ErrorAs(t, err, &noTarget)
	assert.Equal(t, KindPico, noTarget.Kind)
}

func TestNewMicroWorker_RejectsInvalidOptions(t *testing.T) {
	clk := testutil.NewManualClock(time.Time{})
	cfg := WorkerConfig{
		Clock:   clk,
		Options: map[string]string{OptionTimingInterval: "soon"},
	}
	_, err := NewMicroWorker(microBench("bench/fast", clk, time.Microsecond), cfg)
	require.Error(t, err)

	var invalid *ErrInvalidOption
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, OptionTimingInterval, invalid.Key)
}
