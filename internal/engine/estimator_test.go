package engine

import "testing"

func TestEstimator_Estimate_TerminatedIsExactWithSafetyMargin(t *testing.T) {
	e := NewEstimator()
	cfg := DefaultEstimationConfig()

	sample := SampleResult{VisitedCount: 100, Terminated: true}

	got := e.Estimate(sample, 10, nil, &cfg)
	want := 105 // 100 * MinSafetyMargin (1.05), ceil'd

	if got != want {
		t.Errorf("expected %d, got %d", want, got)
	}
}

func TestEstimator_Estimate_TerminatedClampedByTableBound(t *testing.T) {
	e := NewEstimator()
	cfg := DefaultEstimationConfig()
	bound := 50

	sample := SampleResult{VisitedCount: 100, Terminated: true}

	got := e.Estimate(sample, 10, &bound, &cfg)
	if got != bound {
		t.Errorf("expected estimate clamped to table bound %d, got %d", bound, got)
	}
}

func TestEstimator_Estimate_NonTerminatedExtrapolates(t *testing.T) {
	e := NewEstimator()
	cfg := DefaultEstimationConfig()

	sample := SampleResult{
		VisitedCount:     31,
		LevelSizes:       []int{1, 2, 4, 8, 16},
		Terminated:       false,
		GrowthTrend:      GrowthStable,
		ConvergenceRatio: 1.0,
	}

	got := e.Estimate(sample, 10, nil, &cfg)
	if got <= sample.VisitedCount {
		t.Errorf("expected extrapolated estimate to exceed visited count %d, got %d", sample.VisitedCount, got)
	}
}

func TestEstimator_QuickCheck_ExactFromTerminatedSample(t *testing.T) {
	e := NewEstimator()

	sample := SampleResult{VisitedCount: 42, Terminated: true}

	estimate, safe, reason := e.QuickCheck(sample, 10, 1000, nil, nil)

	if estimate != 42 {
		t.Errorf("expected exact count 42, got %d", estimate)
	}

	if !safe {
		t.Error("expected terminated sample to be reported safe")
	}

	if reason != "exact node count from terminated sample" {
		t.Errorf("unexpected reason: %q", reason)
	}
}

func TestEstimator_QuickCheck_WithinLimit(t *testing.T) {
	e := NewEstimator()

	sample := SampleResult{
		VisitedCount:     10,
		LevelSizes:       []int{1, 2, 3},
		Terminated:       false,
		GrowthTrend:      GrowthStable,
		ConvergenceRatio: 1.0,
	}

	_, safe, reason := e.QuickCheck(sample, 10, 1_000_000, nil, nil)
	if !safe {
		t.Errorf("expected a small sample to be well within the limit, got reason %q", reason)
	}
}

func TestEstimator_QuickCheck_RescuedByTableBound(t *testing.T) {
	e := NewEstimator()

	sample := SampleResult{
		VisitedCount:     1000,
		LevelSizes:       []int{1, 10, 100, 1000},
		Terminated:       false,
		GrowthTrend:      GrowthIncreasing,
		ConvergenceRatio: 0.5,
	}

	bound := 50

	estimate, safe, reason := e.QuickCheck(sample, 10, 60, &bound, nil)
	if !safe {
		t.Fatalf("expected table-bound rescue to mark this safe, got reason %q", reason)
	}

	if estimate != bound {
		t.Errorf("expected estimate capped at table bound %d, got %d", bound, estimate)
	}

	if reason != "capped by table bound below limit" {
		t.Errorf("unexpected reason: %q", reason)
	}
}

func TestEstimator_QuickCheck_ExceedsLimit(t *testing.T) {
	e := NewEstimator()

	sample := SampleResult{
		VisitedCount:     1000,
		LevelSizes:       []int{1, 10, 100, 1000},
		Terminated:       false,
		GrowthTrend:      GrowthIncreasing,
		ConvergenceRatio: 0.5,
	}

	_, safe, reason := e.QuickCheck(sample, 10, 10, nil, nil)
	if safe {
		t.Error("expected an unbounded, rapidly-growing sample to exceed a small limit")
	}

	if reason != "estimate exceeds limit" {
		t.Errorf("unexpected reason: %q", reason)
	}
}

func TestEstimator_ComputeDamping_ClampedToRange(t *testing.T) {
	e := NewEstimator()
	cfg := DefaultEstimationConfig()

	low := e.computeDamping(SampleResult{ConvergenceRatio: 0.0, GrowthTrend: GrowthDecreasing}, &cfg)
	if low < 0.3 || low > 1.0 {
		t.Errorf("expected damping clamped to [0.3, 1.0], got %v", low)
	}

	high := e.computeDamping(SampleResult{ConvergenceRatio: 1.0, GrowthTrend: GrowthIncreasing}, &cfg)
	if high < 0.3 || high > 1.0 {
		t.Errorf("expected damping clamped to [0.3, 1.0], got %v", high)
	}
}

func TestEstimator_DampedExtrapolation_TooFewLevelsReturnsVisited(t *testing.T) {
	e := NewEstimator()

	got := e.dampedExtrapolation([]int{5}, 10, 0.8, 5)
	if got != 5 {
		t.Errorf("expected visitedSoFar returned unchanged for <2 levels, got %d", got)
	}
}

func TestEstimator_DampedExtrapolation_ConvergentRateUsesClosedForm(t *testing.T) {
	e := NewEstimator()

	// Decreasing level sizes with damping < 1 should converge to a finite
	// extrapolated total rather than blowing up.
	got := e.dampedExtrapolation([]int{10, 5, 2}, 50, 0.5, 17)
	if got < 17 {
		t.Errorf("expected extrapolated total >= visited so far, got %d", got)
	}
}
