package output

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/thesyncim/metronome/pkg/metronome"
)

func ns(magnitude, weight float64) metronome.Measurement {
	return metronome.Measurement{
		Description: "runtime",
		Value:       metronome.Value{Magnitude: magnitude, Unit: "ns"},
		Weight:      weight,
	}
}

func TestComputeStatistics_Empty(t *testing.T) {
	assert.Equal(t, Statistics{}, ComputeStatistics(nil))
}

func TestComputeStatistics_SingleMeasurement(t *testing.T) {
	stats := ComputeStatistics([]metronome.Measurement{ns(5000, 1)})
	assert.Equal(t, float64(5000), stats.Min)
	assert.Equal(t, float64(5000), stats.Max)
	assert.Equal(t, float64(5000), stats.Mean)
	assert.Equal(t, float64(0), stats.Variance, "one repetition has no spread")
	assert.Equal(t, float64(1), stats.TotalWeight)
	assert.Equal(t, "ns", stats.Unit)
}

func TestComputeStatistics_UniformPerRepCost(t *testing.T) {
	// Three batches, all at exactly 1000ns per rep
	stats := ComputeStatistics([]metronome.Measurement{
		ns(5000, 5),
		ns(7000, 7),
		ns(3000, 3),
	})
	assert.Equal(t, float64(1000), stats.Min)
	assert.Equal(t, float64(1000), stats.Max)
	assert.Equal(t, float64(1000), stats.Mean)
	assert.Equal(t, float64(0), stats.Variance)
	assert.Equal(t, float64(15), stats.TotalWeight)
}

func TestComputeStatistics_WeightedMoments(t *testing.T) {
	// 10 reps at 100ns each plus 1 rep at 300ns:
	// mean = (1000+300)/11, the heavy batch dominates
	stats := ComputeStatistics([]metronome.Measurement{
		ns(1000, 10),
		ns(300, 1),
	})
	assert.Equal(t, float64(100), stats.Min)
	assert.Equal(t, float64(300), stats.Max)
	assert.InDelta(t, 118.18, stats.Mean, 0.01)
	// 10*(100-mean)^2 + 1*(300-mean)^2 over totalWeight-1
	assert.InDelta(t, 3636.36, stats.Variance, 0.01)
	assert.InDelta(t, 60.30, stats.StandardDeviation, 0.01)
	assert.Equal(t, float64(11), stats.TotalWeight)
}

func TestComputeStatistics_WeightChangesMean(t *testing.T) {
	// Same per-rep values, different weights: the mean must move toward the
	// heavier batch
	light := ComputeStatistics([]metronome.Measurement{ns(100, 1), ns(300, 1)})
	heavy := ComputeStatistics([]metronome.Measurement{ns(100, 1), ns(2700, 9)})

	assert.Equal(t, float64(200), light.Mean)
	assert.Equal(t, float64(280), heavy.Mean, "nine reps at 300ns pull the mean up")
}
