package engine

import "testing"

func TestGuard_Check_HubDetectedAborts(t *testing.T) {
	g := NewGuard(NewEstimator())

	sample := SampleResult{HubDetected: true, MaxExpansionFactor: 250.0}

	result := g.Check(sample, 10, 1000, nil, nil, nil)

	if result.SafeToProceed {
		t.Error("expected hub detection to mark the traversal unsafe")
	}

	if result.RecommendedAction != ActionAbort {
		t.Errorf("expected abort, got %q", result.RecommendedAction)
	}
}

func TestGuard_Check_JunctionAndCycleWarnings(t *testing.T) {
	g := NewGuard(NewEstimator())

	stats := &TableStats{IsJunction: true}
	sample := SampleResult{
		VisitedCount:     5,
		LevelSizes:       []int{1, 2},
		HasCycles:        true,
		Terminated:       true,
		GrowthTrend:      GrowthStable,
		ConvergenceRatio: 1.0,
	}

	result := g.Check(sample, 10, 1000, stats, nil, nil)

	if len(result.Warnings) != 2 {
		t.Fatalf("expected junction and cycle warnings, got %v", result.Warnings)
	}

	if !result.SafeToProceed || result.RecommendedAction != ActionTraverse {
		t.Errorf("expected a terminated sample to still recommend traverse, got %+v", result)
	}
}

func TestGuard_Check_TerminatedSampleIsExact(t *testing.T) {
	g := NewGuard(NewEstimator())

	sample := SampleResult{
		VisitedCount: 17,
		LevelSizes:   []int{1, 4, 8},
		Terminated:   true,
	}

	result := g.Check(sample, 10, 1000, nil, nil, nil)

	if result.RecommendedAction != ActionTraverse {
		t.Errorf("expected traverse, got %q", result.RecommendedAction)
	}

	if result.EstimatedNodes != 17 {
		t.Errorf("expected exact visited count 17, got %d", result.EstimatedNodes)
	}
}

func TestGuard_Check_EstimateExceedsLimitRescuedByTableBound(t *testing.T) {
	g := NewGuard(NewEstimator())

	sample := SampleResult{
		VisitedCount:     1000,
		LevelSizes:       []int{1, 10, 100, 1000},
		Terminated:       false,
		GrowthTrend:      GrowthIncreasing,
		ConvergenceRatio: 0.5,
	}

	bound := 40

	result := g.Check(sample, 10, 60, nil, &bound, nil)

	if !result.SafeToProceed {
		t.Fatalf("expected table-bound rescue to proceed, got %+v", result)
	}

	if result.RecommendedAction != ActionWarnAndProceed {
		t.Errorf("expected warn_and_proceed, got %q", result.RecommendedAction)
	}

	if len(result.Warnings) == 0 {
		t.Error("expected a warning explaining the rescue")
	}
}

func TestGuard_Check_EstimateExceedsLimitNoRescueAborts(t *testing.T) {
	g := NewGuard(NewEstimator())

	sample := SampleResult{
		VisitedCount:     1000,
		LevelSizes:       []int{1, 10, 100, 1000},
		Terminated:       false,
		GrowthTrend:      GrowthIncreasing,
		ConvergenceRatio: 0.5,
	}

	result := g.Check(sample, 10, 10, nil, nil, nil)

	if result.SafeToProceed {
		t.Error("expected an unrescued over-limit estimate to abort")
	}

	if result.RecommendedAction != ActionAbort {
		t.Errorf("expected abort, got %q", result.RecommendedAction)
	}
}

func TestGuard_Check_WithinLimitTraverses(t *testing.T) {
	g := NewGuard(NewEstimator())

	sample := SampleResult{
		VisitedCount:     10,
		LevelSizes:       []int{1, 3, 6},
		Terminated:       false,
		GrowthTrend:      GrowthStable,
		ConvergenceRatio: 1.0,
	}

	result := g.Check(sample, 10, 1_000_000, nil, nil, nil)

	if !result.SafeToProceed || result.RecommendedAction != ActionTraverse {
		t.Errorf("expected a small estimate to traverse safely, got %+v", result)
	}
}

func TestGuard_ShouldSwitchToInMemory_AlgorithmRequiresGlobalStructure(t *testing.T) {
	g := NewGuard(NewEstimator())

	switchNow, reason := g.ShouldSwitchToInMemory(SampleResult{}, nil, "centrality")
	if !switchNow {
		t.Error("expected centrality to require the in-memory graph")
	}

	if reason == "" {
		t.Error("expected a non-empty reason")
	}
}

func TestGuard_ShouldSwitchToInMemory_CyclesDetected(t *testing.T) {
	g := NewGuard(NewEstimator())

	switchNow, _ := g.ShouldSwitchToInMemory(SampleResult{HasCycles: true}, nil, "")
	if !switchNow {
		t.Error("expected cycle detection to trigger an in-memory switch")
	}
}

func TestGuard_ShouldSwitchToInMemory_HighDensity(t *testing.T) {
	g := NewGuard(NewEstimator())

	density := 0.9
	stats := &TableStats{Density: &density}

	switchNow, _ := g.ShouldSwitchToInMemory(SampleResult{}, stats, "")
	if !switchNow {
		t.Error("expected high density to trigger an in-memory switch")
	}
}

func TestGuard_ShouldSwitchToInMemory_NoTriggerReturnsFalse(t *testing.T) {
	g := NewGuard(NewEstimator())

	density := 0.1
	stats := &TableStats{Density: &density}

	switchNow, reason := g.ShouldSwitchToInMemory(SampleResult{}, stats, "traverse")
	if switchNow {
		t.Errorf("expected no switch trigger, got reason %q", reason)
	}
}
