// Package metronome implements calibrated execution of micro, pico and
// macro benchmarks through a fixed worker lifecycle.
package metronome

import (
	"fmt"

	"github.com/pkg/errors"
)

// Value is a magnitude with a unit, e.g. 5000 ns.
type Value struct {
	Magnitude float64 `json:"magnitude"`
	Unit      string  `json:"unit"`
}

func (v Value) String() string {
	return fmt.Sprintf("%g %s", v.Magnitude, v.Unit)
}

// Measurement is one recorded observation from a measurement cycle.
//
// Weight is the number of repetitions the observed Value spans. A calibrated
// worker times a batch of many repetitions in one call, so the per-repetition
// cost is Value.Magnitude / Weight. Workers never emit a weight below one.
type Measurement struct {
	Description string  `json:"description"`
	Value       Value   `json:"value"`
	Weight      float64 `json:"weight"`
}

// NewMeasurement builds a Measurement, rejecting weights below one.
func NewMeasurement(description string, value Value, weight float64) (Measurement, error) {
	if weight < 1 {
		return Measurement{}, errors.Errorf("measurement %q has weight %g; weights below 1 would overstate per-repetition cost", description, weight)
	}
	return Measurement{Description: description, Value: value, Weight: weight}, nil
}

// PerRep returns the value magnitude normalized to a single repetition.
func (m Measurement) PerRep() float64 {
	return m.Value.Magnitude / m.Weight
}
