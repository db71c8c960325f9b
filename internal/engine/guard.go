package engine

import "fmt"

// Guard is the single decision point mapping (sample, estimate, stats) to a
// recommended action. Grounded on guards.py's check_guards /
// should_use_networkx, renamed ShouldSwitchToInMemory per the in-memory
// graph abstraction this engine actually uses instead of NetworkX.
type Guard struct {
	estimator *Estimator
}

// NewGuard constructs a Guard over an Estimator.
func NewGuard(estimator *Estimator) *Guard {
	return &Guard{estimator: estimator}
}

// Check applies the priority-ordered decision rules documented in §4.E.
func (g *Guard) Check(sample SampleResult, maxDepth, maxNodes int, stats *TableStats, tableBound *int, cfg *EstimationConfig) GuardResult {
	var warnings []string

	// The table bound is applied here rather than inside Estimate, so an
	// inflated estimate can still be rescued by a bound under the limit.
	estimated := g.estimator.Estimate(sample, maxDepth, nil, cfg)

	reported := estimated
	if tableBound != nil && *tableBound < reported {
		reported = *tableBound
	}

	if sample.HubDetected {
		return GuardResult{
			SafeToProceed:     false,
			RecommendedAction: ActionAbort,
			Reason: fmt.Sprintf(
				"hub detected with expansion factor %.1fx; add filters to reduce scope or raise hub_threshold",
				sample.MaxExpansionFactor,
			),
			EstimatedNodes: reported,
			Warnings:       warnings,
		}
	}

	if stats != nil && stats.IsJunction {
		warnings = append(warnings, "junction-table shape; prefer aggregation over traversal")
	}

	if sample.HasCycles {
		warnings = append(warnings, "cycles inferred; bounded visited-set still applies")
	}

	if sample.Terminated {
		return GuardResult{
			SafeToProceed:     true,
			RecommendedAction: ActionTraverse,
			Reason:            fmt.Sprintf("graph terminated at depth %d with %d nodes", len(sample.LevelSizes)-1, sample.VisitedCount),
			EstimatedNodes:    sample.VisitedCount,
			Warnings:          warnings,
		}
	}

	if estimated > maxNodes {
		if tableBound != nil && *tableBound <= maxNodes {
			warnings = append(warnings, fmt.Sprintf("estimate (%d) exceeds limit but table bound (%d) is smaller", estimated, *tableBound))

			capped := estimated
			if *tableBound < capped {
				capped = *tableBound
			}

			return GuardResult{
				SafeToProceed:     true,
				RecommendedAction: ActionWarnAndProceed,
				Reason:            fmt.Sprintf("table bound (%d) is below limit despite high estimate", *tableBound),
				EstimatedNodes:    capped,
				Warnings:          warnings,
			}
		}

		return GuardResult{
			SafeToProceed:     false,
			RecommendedAction: ActionAbort,
			Reason: fmt.Sprintf(
				"estimated %d nodes exceeds limit of %d; pass max_nodes=N to raise the limit or skip_estimation=true to bypass",
				reported, maxNodes,
			),
			EstimatedNodes: reported,
			Warnings:       warnings,
		}
	}

	return GuardResult{
		SafeToProceed:     true,
		RecommendedAction: ActionTraverse,
		Reason:            fmt.Sprintf("estimated %d nodes within limit of %d", reported, maxNodes),
		EstimatedNodes:    reported,
		Warnings:          warnings,
	}
}

// ShouldSwitchToInMemory returns true when the requested algorithm needs
// global structure, cycles were inferred, or density exceeds 0.5.
func (g *Guard) ShouldSwitchToInMemory(sample SampleResult, stats *TableStats, algorithm string) (bool, string) {
	inMemoryAlgorithms := map[string]bool{
		"shortest_path": true,
		"centrality":    true,
		"pagerank":      true,
		"betweenness":   true,
	}

	if algorithm != "" && inMemoryAlgorithms[algorithm] {
		return true, fmt.Sprintf("algorithm %q requires the in-memory graph", algorithm)
	}

	if sample.HasCycles {
		return true, "cycles detected; the in-memory graph handles cycle detection directly"
	}

	if stats != nil && stats.Density != nil && *stats.Density > 0.5 {
		return true, fmt.Sprintf("high density (%.2f) suggests matrix-style in-memory operations", *stats.Density)
	}

	return false, ""
}
