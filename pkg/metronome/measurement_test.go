package metronome

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMeasurement_Valid(t *testing.T) {
	m, err := NewMeasurement("runtime", Value{Magnitude: 5000, Unit: "ns"}, 5)
	require.NoError(t, err)
	assert.Equal(t, "runtime", m.Description)
	assert.Equal(t, float64(5), m.Weight)
	assert.Equal(t, float64(1000), m.PerRep(), "5000ns over 5 reps")
}

func TestNewMeasurement_WeightOfOneIsValid(t *testing.T) {
	m, err := NewMeasurement("runtime", Value{Magnitude: 1000, Unit: "ns"}, 1)
	require.NoError(t, err)
	assert.Equal(t, float64(1000), m.PerRep())
}

func TestNewMeasurement_RejectsWeightBelowOne(t *testing.T) {
	for _, weight := range []float64{0, 0.5, -1} {
		_, err := NewMeasurement("runtime", Value{Magnitude: 1000, Unit: "ns"}, weight)
		assert.Error(t, err, "weight %g must be rejected", weight)
	}
}

func TestValue_String(t *testing.T) {
	assert.Equal(t, "5000 ns", Value{Magnitude: 5000, Unit: "ns"}.String())
	assert.Equal(t, "1.5 ms", Value{Magnitude: 1.5, Unit: "ms"}.String())
}
