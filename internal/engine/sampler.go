package engine

import (
	"context"

	"github.com/sirupsen/logrus"
)

// Sampler runs a cheap, bounded BFS that characterizes a graph's structure
// before a real traversal commits resources to it. Grounded on the
// GraphSampler class: frontier/visited/level_sizes bookkeeping plus the
// growth-trend, convergence-ratio, and hub-expansion signal derivations.
type Sampler struct {
	ex           Executor
	schema       SchemaRef
	direction    Direction
	hubThreshold float64
	log          *logrus.Entry
}

// NewSampler constructs a Sampler bound to one edge table and direction.
func NewSampler(ex Executor, schema SchemaRef, direction Direction, hubThreshold float64, log *logrus.Entry) *Sampler {
	if hubThreshold <= 0 {
		hubThreshold = 50.0
	}

	return &Sampler{ex: ex, schema: schema, direction: direction, hubThreshold: hubThreshold, log: log}
}

// Sample performs up to depth layers of BFS from start and returns the
// structural signals detected along the way. It never returns an error for
// adverse structure (hubs, cycles) — those are reported as fields for the
// Guard to consume.
func (s *Sampler) Sample(ctx context.Context, start NodeID, depth int) (SampleResult, error) {
	frontier := newFrontier(start)
	visited := newVisited()
	visited.add(start)

	levelSizes := []int{1}
	totalEdgesSeen := 0
	expansionFactors := make([]float64, 0, depth)
	terminated := false

	for i := 0; i < depth; i++ {
		if len(frontier) == 0 {
			terminated = true
			break
		}

		edges, err := fetchEdges(ctx, s.ex, s.schema, frontier.slice(), s.direction)
		if err != nil {
			return SampleResult{}, err
		}

		totalEdgesSeen += len(edges)

		nextFrontier := newFrontier()

		for _, e := range edges {
			target, ok := s.sampleTarget(e, frontier)
			if !ok {
				continue
			}

			if !visited.has(target) {
				visited.add(target)
				nextFrontier.add(target)
			}
		}

		if len(frontier) > 0 {
			expansionFactors = append(expansionFactors, float64(len(nextFrontier))/float64(len(frontier)))
		}

		levelSizes = append(levelSizes, len(nextFrontier))
		frontier = nextFrontier
	}

	if len(frontier) == 0 {
		terminated = true
	}

	growthTrend := detectGrowthTrend(levelSizes)
	convergenceRatio := computeConvergenceRatio(len(visited), totalEdgesSeen)

	maxExpansion := 0.0
	for _, f := range expansionFactors {
		if f > maxExpansion {
			maxExpansion = f
		}
	}

	hubDetected := maxExpansion > s.hubThreshold
	hasCycles := convergenceRatio < 0.9 && !terminated

	if s.log != nil && hubDetected {
		s.log.WithField("expansion_factor", maxExpansion).Warn("sampler detected hub-like expansion")
	}

	return SampleResult{
		VisitedCount:       len(visited),
		LevelSizes:         levelSizes,
		Terminated:         terminated,
		GrowthTrend:        growthTrend,
		ConvergenceRatio:   convergenceRatio,
		HasCycles:          hasCycles,
		MaxExpansionFactor: maxExpansion,
		HubDetected:        hubDetected,
		EdgesSeen:          totalEdgesSeen,
	}, nil
}

// sampleTarget resolves which endpoint of e is the "other end" relative to
// the current frontier, matching the direction-dependent rule the original
// sampler implements via from_id/to_id comparisons.
func (s *Sampler) sampleTarget(e rawEdge, frontier Frontier) (NodeID, bool) {
	switch s.direction {
	case DirectionOutbound:
		return e.To, true
	case DirectionInbound:
		return e.From, true
	default: // both
		if frontier.has(e.From) {
			return e.To, true
		}

		if frontier.has(e.To) {
			return e.From, true
		}

		return nil, false
	}
}

func (f Frontier) has(id NodeID) bool { _, ok := f[id.Key()]; return ok }

// detectGrowthTrend compares the averaged growth rate of the first half of
// observed layers to the second half, using the 1.2x/0.8x thresholds.
func detectGrowthTrend(levelSizes []int) GrowthTrend {
	if len(levelSizes) < 3 {
		return GrowthStable
	}

	sizes := levelSizes[1:]
	if len(sizes) < 2 {
		return GrowthStable
	}

	growthRates := make([]float64, 0, len(sizes)-1)

	for i := 1; i < len(sizes); i++ {
		if sizes[i-1] > 0 {
			growthRates = append(growthRates, float64(sizes[i])/float64(sizes[i-1]))
		} else {
			growthRates = append(growthRates, 0.0)
		}
	}

	if len(growthRates) == 0 {
		return GrowthStable
	}

	mid := len(growthRates) / 2
	if mid == 0 {
		return GrowthStable
	}

	var earlySum, lateSum float64

	for _, r := range growthRates[:mid] {
		earlySum += r
	}

	for _, r := range growthRates[mid:] {
		lateSum += r
	}

	earlyAvg := earlySum / float64(mid)
	lateAvg := lateSum / float64(len(growthRates)-mid)

	switch {
	case lateAvg > earlyAvg*1.2:
		return GrowthIncreasing
	case lateAvg < earlyAvg*0.8:
		return GrowthDecreasing
	default:
		return GrowthStable
	}
}

// computeConvergenceRatio: for a tree, visited == edges+1, ratio ~= 1.0.
func computeConvergenceRatio(visited, edgesSeen int) float64 {
	if edgesSeen == 0 {
		return 1.0
	}

	expectedTreeNodes := edgesSeen + 1

	return float64(visited) / float64(expectedTreeNodes)
}
