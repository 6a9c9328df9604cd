package bandit

import (
	"math"

	"gobandit/domain/core"
)

// cusumStep advances one two-sided CUSUM pair by a residual against the reference mean
func cusumStep(gPlus, gMinus, residual, drift float64) (float64, float64) {
	return math.Max(0, gPlus+residual-drift), math.Max(0, gMinus-residual-drift)
}

// shouldReset is the only place a regime change is declared: any accumulator above threshold.
// It must be evaluated after all four accumulators have been updated for the round.
func shouldReset(gPlus, gMinus [core.NumArms]float64, threshold float64) bool {
	for a := 0; a < core.NumArms; a++ {
		if gPlus[a] > threshold || gMinus[a] > threshold {
			return true
		}
	}
	return false
}
