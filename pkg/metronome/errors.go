package metronome

import (
	"fmt"
	"time"
)

// ErrInvalidOption indicates a malformed value in the worker options map. It
// is produced at worker construction, before any benchmark code has run.
type ErrInvalidOption struct {
	Key     string
	Value   string
	Message string
}

func (err *ErrInvalidOption) Error() string {
	return fmt.Sprintf("invalid worker option %s=%q; %s", err.Key, err.Value, err.Message)
}

// ErrRepsOverflow indicates that a micro benchmark is too fast for its
// narrow repetition parameter: filling the configured timing interval would
// need more repetitions than an int32 can carry. It aborts the trial with no
// measurements recorded.
type ErrRepsOverflow struct {
	Benchmark string
	Reps      int64
	Interval  time.Duration
}

func (err *ErrRepsOverflow) Error() string {
	return fmt.Sprintf(
		"benchmark %s takes an int repetition count but needs %d repetitions to fill the timing interval (%s); "+
			"if it really is this fast, declare it with an int64 repetition count, otherwise check it for errors",
		err.Benchmark, err.Reps, err.Interval)
}

// ErrNoTarget indicates a Benchmark descriptor that does not carry the timed
// function the requested worker variant needs.
type ErrNoTarget struct {
	Benchmark string
	Kind      BenchmarkKind
}

func (err *ErrNoTarget) Error() string {
	return fmt.Sprintf("benchmark %s has no %s target", err.Benchmark, err.Kind)
}
