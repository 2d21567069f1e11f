package metronome

import (
	"strconv"
	"time"

	"github.com/pkg/errors"
)

// Keys recognized in the worker options map. Unknown keys are ignored so that
// option maps can be shared across worker variants.
const (
	// OptionTimingInterval sets the target duration of one timed batch, in
	// nanoseconds.
	OptionTimingInterval = "timingIntervalNanos"
	// OptionGCBeforeEach toggles a forced garbage collection before each
	// recorded measurement cycle.
	OptionGCBeforeEach = "gcBeforeEach"
)

const defaultTimingIntervalNanos = 5000

// workerOptions is the parsed form of the options map, resolved once at
// worker construction.
type workerOptions struct {
	timingIntervalNanos int64
	gcBeforeEach        bool
}

func defaultWorkerOptions() workerOptions {
	return workerOptions{
		timingIntervalNanos: defaultTimingIntervalNanos,
		gcBeforeEach:        true,
	}
}

// parseWorkerOptions resolves the string option map against the defaults. A
// present key with an unparseable or out-of-range value is a configuration
// error and aborts the trial before any benchmark code runs.
func parseWorkerOptions(options map[string]string) (workerOptions, error) {
	opts := defaultWorkerOptions()
	if raw, ok := options[OptionTimingInterval]; ok {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n <= 0 {
			return workerOptions{}, errors.WithStack(&ErrInvalidOption{
				Key:     OptionTimingInterval,
				Value:   raw,
				Message: "must be a positive integer number of nanoseconds",
			})
		}
		opts.timingIntervalNanos = n
	}
	if raw, ok := options[OptionGCBeforeEach]; ok {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return workerOptions{}, errors.WithStack(&ErrInvalidOption{
				Key:     OptionGCBeforeEach,
				Value:   raw,
				Message: "must be a boolean",
			})
		}
		opts.gcBeforeEach = b
	}
	return opts, nil
}

func (o workerOptions) timingInterval() time.Duration {
	return time.Duration(o.timingIntervalNanos) * time.Nanosecond
}
