// Package suite collects related benchmarks under a common name so a trial
// runner can execute and report them as a group.
package suite

import (
	"github.com/pkg/errors"

	"github.com/thesyncim/metronome/pkg/metronome"
)

// Option attaches configuration to a benchmark at registration time.
type Option func(*metronome.Benchmark) error

// WithBeforeExperiment appends hooks that run once before the benchmark's
// first measurement cycle, in the order given.
func WithBeforeExperiment(hooks ...metronome.Hook) Option {
	return func(b *metronome.Benchmark) error {
		b.BeforeExperiment = append(b.BeforeExperiment, hooks...)
		return nil
	}
}

// WithAfterExperiment appends hooks that run once after the benchmark's last
// measurement cycle, in the order given.
func WithAfterExperiment(hooks ...metronome.Hook) Option {
	return func(b *metronome.Benchmark) error {
		b.AfterExperiment = append(b.AfterExperiment, hooks...)
		return nil
	}
}

// WithBeforeRep appends hooks that run before every macro measurement cycle.
// Runtime (micro and pico) benchmarks ignore them.
func WithBeforeRep(hooks ...metronome.Hook) Option {
	return func(b *metronome.Benchmark) error {
		b.BeforeRep = append(b.BeforeRep, hooks...)
		return nil
	}
}

// WithAfterRep appends hooks that run after every macro measurement cycle.
// Runtime (micro and pico) benchmarks ignore them.
func WithAfterRep(hooks ...metronome.Hook) Option {
	return func(b *metronome.Benchmark) error {
		b.AfterRep = append(b.AfterRep, hooks...)
		return nil
	}
}

// Suite is an ordered, uniquely named collection of benchmarks. Registered
// benchmarks get qualified names of the form "suite/benchmark". A Suite is
// built once during setup and read-only afterwards; it is not safe for
// concurrent registration.
type Suite struct {
	name    string
	benches []*metronome.Benchmark
	seen    map[string]struct{}
}

// New creates an empty suite.
//
// Example:
//
//	s := suite.New("rtp")
//	err := s.RegisterMicro("MarshalHeader", marshalHeader)
//	if err != nil {
//	    return err
//	}
func New(name string) *Suite {
	return &Suite{
		name: name,
		seen: make(map[string]struct{}),
	}
}

// Name returns the suite name.
func (s *Suite) Name() string {
	return s.name
}

// RegisterMicro adds a micro benchmark invoked with an int repetition count.
func (s *Suite) RegisterMicro(name string, fn metronome.MicroFunc, opts ...Option) error {
	if fn == nil {
		return errors.Errorf("benchmark %s/%s has a nil body", s.name, name)
	}
	return s.register(name, &metronome.Benchmark{Micro: fn}, opts)
}

// RegisterPico adds a pico benchmark invoked with an int64 repetition count,
// for operations too fast for RegisterMicro.
func (s *Suite) RegisterPico(name string, fn metronome.PicoFunc, opts ...Option) error {
	if fn == nil {
		return errors.Errorf("benchmark %s/%s has a nil body", s.name, name)
	}
	return s.register(name, &metronome.Benchmark{Pico: fn}, opts)
}

// RegisterMacro adds a macro benchmark timed one invocation at a time.
func (s *Suite) RegisterMacro(name string, fn metronome.MacroFunc, opts ...Option) error {
	if fn == nil {
		return errors.Errorf("benchmark %s/%s has a nil body", s.name, name)
	}
	return s.register(name, &metronome.Benchmark{Macro: fn}, opts)
}

func (s *Suite) register(name string, b *metronome.Benchmark, opts []Option) error {
	if name == "" {
		return errors.Errorf("suite %s: benchmark name must not be empty", s.name)
	}
	if _, ok := s.seen[name]; ok {
		return errors.Errorf("suite %s already has a benchmark named %s", s.name, name)
	}
	b.Name = s.name + "/" + name
	for _, opt := range opts {
		if err := opt(b); err != nil {
			return errors.Wrapf(err, "benchmark %s", b.Name)
		}
	}
	s.seen[name] = struct{}{}
	s.benches = append(s.benches, b)
	return nil
}

// Benchmarks returns the registered benchmarks in registration order. The
// returned slice is shared; callers must not modify it.
func (s *Suite) Benchmarks() []*metronome.Benchmark {
	return s.benches
}

// Len returns the number of registered benchmarks.
func (s *Suite) Len() int {
	return len(s.benches)
}
