package engine

import "math"

// Estimator converts a SampleResult into a predicted visited-node count at
// the requested depth, damped to avoid the naive branching^depth blow-up.
// Grounded on models.py: estimate / _compute_damping / _damped_extrapolation,
// carried over with the same clamps and thresholds.
type Estimator struct{}

// NewEstimator constructs an Estimator. Stateless; exported for symmetry
// with the other components and so callers can hold a reference.
func NewEstimator() *Estimator { return &Estimator{} }

// Estimate implements the rules in order: exact count on termination,
// otherwise adaptive damping followed by damped geometric extrapolation,
// a safety margin, and a table-bound clamp.
func (e *Estimator) Estimate(sample SampleResult, maxDepth int, tableBound *int, cfg *EstimationConfig) int {
	config := cfg
	if config == nil {
		def := DefaultEstimationConfig()
		config = &def
	}

	if sample.Terminated {
		estimate := int(math.Ceil(float64(sample.VisitedCount) * config.MinSafetyMargin))
		if tableBound != nil && estimate > *tableBound {
			estimate = *tableBound
		}

		return estimate
	}

	damping := e.computeDamping(sample, config)
	estimate := e.dampedExtrapolation(sample.LevelSizes, maxDepth, damping, sample.VisitedCount)
	estimate = int(float64(estimate) * config.SafetyMargin)

	if tableBound != nil && estimate > *tableBound {
		estimate = *tableBound
	}

	return estimate
}

// QuickCheck is the lightweight (estimated, safe, message) advisory used by
// callers that don't need a full GuardResult, carried over from
// check_size_estimate.
func (e *Estimator) QuickCheck(sample SampleResult, maxDepth, maxNodes int, tableBound *int, cfg *EstimationConfig) (int, bool, string) {
	estimated := e.Estimate(sample, maxDepth, nil, cfg)

	if sample.Terminated {
		return sample.VisitedCount, true, "exact node count from terminated sample"
	}

	if tableBound != nil && *tableBound <= maxNodes && estimated > maxNodes {
		return *tableBound, true, "capped by table bound below limit"
	}

	if tableBound != nil && *tableBound < estimated {
		estimated = *tableBound
	}

	if estimated <= maxNodes {
		return estimated, true, "estimate within limit"
	}

	return estimated, false, "estimate exceeds limit"
}

func (e *Estimator) computeDamping(sample SampleResult, config *EstimationConfig) float64 {
	damping := config.BaseDamping

	if sample.ConvergenceRatio < config.ConvergenceThreshold {
		convergenceFactor := sample.ConvergenceRatio
		damping *= config.ConvergenceMultiplier*convergenceFactor + (1 - config.ConvergenceMultiplier)
	}

	if sample.GrowthTrend == GrowthDecreasing {
		damping *= config.DecreasingTrendMultiplier
	}

	return math.Max(0.3, math.Min(damping, 1.0))
}

// dampedExtrapolation extrapolates from sampled levels using the geometric
// closed form when the damped rate has converged to <= 1, otherwise
// simulates layer by layer with compounding damping.
func (e *Estimator) dampedExtrapolation(levelSizes []int, maxDepth int, damping float64, visitedSoFar int) int {
	if len(levelSizes) < 2 {
		return visitedSoFar
	}

	growthRates := make([]float64, 0, len(levelSizes)-1)

	for i := 1; i < len(levelSizes); i++ {
		if levelSizes[i-1] > 0 {
			growthRates = append(growthRates, float64(levelSizes[i])/float64(levelSizes[i-1]))
		}
	}

	if len(growthRates) == 0 {
		return visitedSoFar
	}

	allZero := true

	for _, r := range growthRates {
		if r != 0 {
			allZero = false
			break
		}
	}

	if allZero {
		return visitedSoFar
	}

	recentRate := growthRates[len(growthRates)-1]
	if recentRate <= 0 {
		var sum float64
		for _, r := range growthRates {
			sum += r
		}

		recentRate = sum / float64(len(growthRates))
	}

	dampedRate := recentRate * damping

	lastLevel := levelSizes[len(levelSizes)-1]

	if dampedRate <= 1.0 {
		var remaining int

		if dampedRate < 1.0 {
			remaining = int(float64(lastLevel) * dampedRate / (1 - dampedRate))
		} else {
			remaining = lastLevel * (maxDepth - len(levelSizes) + 1)
		}

		return visitedSoFar + remaining
	}

	sampleDepth := len(levelSizes) - 1
	remainingDepth := maxDepth - sampleDepth

	if remainingDepth <= 0 {
		return visitedSoFar
	}

	estimated := visitedSoFar
	currentLevelSize := float64(lastLevel)

	for i := 0; i < remainingDepth; i++ {
		currentLevelSize *= dampedRate

		rounded := int(currentLevelSize)
		if rounded == 0 {
			break
		}

		estimated += rounded
		dampedRate *= damping
	}

	return estimated
}
