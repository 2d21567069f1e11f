package trial

import (
	"os"
	"runtime"
	"time"

	"github.com/google/uuid"

	"github.com/thesyncim/metronome/pkg/metronome"
)

// Environment records the host a result was measured on, so results uploaded
// from different machines stay comparable.
type Environment struct {
	OS        string `json:"os"`
	Arch      string `json:"arch"`
	GoVersion string `json:"goVersion"`
	NumCPU    int    `json:"numCpu"`
	Hostname  string `json:"hostname,omitempty"`
}

// CaptureEnvironment snapshots the current host.
func CaptureEnvironment() Environment {
	hostname, _ := os.Hostname()
	return Environment{
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
		GoVersion: runtime.Version(),
		NumCPU:    runtime.NumCPU(),
		Hostname:  hostname,
	}
}

// Result is the outcome of one benchmark trial: every recorded measurement
// plus enough context to interpret them later. RunID ties together all
// results produced by one Runner, so collectors can group them.
type Result struct {
	ID           uuid.UUID               `json:"id"`
	RunID        uuid.UUID               `json:"runId"`
	Benchmark    string                  `json:"benchmark"`
	Kind         string                  `json:"kind"`
	Trial        int                     `json:"trial"`
	StartedAt    time.Time               `json:"startedAt"`
	FinishedAt   time.Time               `json:"finishedAt"`
	Measurements []metronome.Measurement `json:"measurements"`
	Environment  Environment             `json:"environment"`
}

// Elapsed returns the wall time the trial took, warm-up included.
func (r *Result) Elapsed() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// MeasurementSink receives measurements as cycles complete, before the trial
// result is assembled. Consume runs on the goroutine driving the worker, so
// implementations must return quickly to keep cycles evenly spaced.
type MeasurementSink interface {
	Consume(benchmark string, trial int, ms []metronome.Measurement)
}
