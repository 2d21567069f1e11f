package trial

import (
	"math/rand"

	"github.com/pkg/errors"

	"github.com/thesyncim/metronome/pkg/metronome"
)

// Config controls how a Runner executes benchmarks.
type Config struct {
	// Trials is the number of independent trials per benchmark. Every trial
	// gets a fresh worker, so no calibration history leaks between trials.
	// Default: 1
	Trials int
	// WarmupIterations is the number of cycles run and discarded before
	// recording starts, giving caches, branch predictors and the calibration
	// history time to settle.
	// Default: 10
	WarmupIterations int
	// MeasurementIterations is the number of recorded cycles per trial.
	// Default: 100
	MeasurementIterations int
	// Parallelism bounds how many benchmarks run concurrently. Values above
	// one trade timing fidelity for throughput; each individual worker is
	// still driven by a single goroutine.
	// Default: 1
	Parallelism int
	// Options is the worker option map, see metronome.OptionTimingInterval
	// and metronome.OptionGCBeforeEach.
	Options map[string]string

	// Clock, Random and ForceGC override the worker collaborators, chiefly
	// for deterministic tests. Nil selects the production defaults.
	Clock   metronome.Clock
	Random  *rand.Rand
	ForceGC func()
}

// DefaultConfig returns the configuration the CLI starts from.
func DefaultConfig() Config {
	return Config{
		Trials:                1,
		WarmupIterations:      10,
		MeasurementIterations: 100,
		Parallelism:           1,
	}
}

// Validate reports the first configuration problem, if any.
func (c Config) Validate() error {
	if c.Trials < 1 {
		return errors.Errorf("trials must be at least 1, got %d", c.Trials)
	}
	if c.WarmupIterations < 0 {
		return errors.Errorf("warmup iterations must not be negative, got %d", c.WarmupIterations)
	}
	if c.MeasurementIterations < 1 {
		return errors.Errorf("measurement iterations must be at least 1, got %d", c.MeasurementIterations)
	}
	if c.Parallelism < 1 {
		return errors.Errorf("parallelism must be at least 1, got %d", c.Parallelism)
	}
	return nil
}

func (c Config) clock() metronome.Clock {
	if c.Clock != nil {
		return c.Clock
	}
	return metronome.SystemClock{}
}

func (c Config) workerConfig() metronome.WorkerConfig {
	return metronome.WorkerConfig{
		Clock:   c.Clock,
		Random:  c.Random,
		ForceGC: c.ForceGC,
		Options: c.Options,
	}
}
