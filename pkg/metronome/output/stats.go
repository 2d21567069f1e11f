package output

import (
	"math"

	"github.com/thesyncim/metronome/pkg/metronome"
)

// Statistics summarizes per-repetition runtimes across a set of measurements.
// Every moment is weighted by measurement weight, so a batch of a million
// repetitions counts a million times more than a single macro invocation.
type Statistics struct {
	Min               float64 `json:"min"`
	Max               float64 `json:"max"`
	Mean              float64 `json:"mean"`
	Variance          float64 `json:"variance"`
	StandardDeviation float64 `json:"standardDeviation"`
	TotalWeight       float64 `json:"totalWeight"`
	Unit              string  `json:"unit"`
}

// ComputeStatistics aggregates measurements into weighted per-repetition
// statistics. The unit is taken from the first measurement; workers only emit
// one unit per trial.
func ComputeStatistics(ms []metronome.Measurement) Statistics {
	if len(ms) == 0 {
		return Statistics{}
	}

	stats := Statistics{
		Min:  math.Inf(1),
		Max:  math.Inf(-1),
		Unit: ms[0].Value.Unit,
	}
	var sum float64
	for _, m := range ms {
		perRep := m.PerRep()
		if perRep < stats.Min {
			stats.Min = perRep
		}
		if perRep > stats.Max {
			stats.Max = perRep
		}
		sum += m.Value.Magnitude
		stats.TotalWeight += m.Weight
	}
	stats.Mean = sum / stats.TotalWeight

	// Weighted sample variance with frequency weights; the n-1 denominator
	// generalizes to totalWeight-1.
	if stats.TotalWeight > 1 {
		var total float64
		for _, m := range ms {
			diff := m.PerRep() - stats.Mean
			total += m.Weight * diff * diff
		}
		stats.Variance = total / (stats.TotalWeight - 1)
		stats.StandardDeviation = math.Sqrt(stats.Variance)
	}
	return stats
}
