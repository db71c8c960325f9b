package engine

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestBetweennessCentrality_WeightChangesShortestPath builds a graph where the
// unweighted (hop-count) shortest path and the weighted shortest path between
// two nodes disagree on which intermediate node they pass through, so the two
// modes must produce different scores.
func TestBetweennessCentrality_WeightChangesShortestPath(t *testing.T) {
	g := newMemGraph()
	// a->b->d is 2 hops but weight 100; a->c->d is 2 hops but weight 2.
	// Unweighted, both 2-hop routes tie, so b and c split credit equally.
	// Weighted, a->c->d strictly wins, so only c sits on the shortest path.
	g.addEdge(NodeID{"a"}, NodeID{"b"}, 50)
	g.addEdge(NodeID{"b"}, NodeID{"d"}, 50)
	g.addEdge(NodeID{"a"}, NodeID{"c"}, 1)
	g.addEdge(NodeID{"c"}, NodeID{"d"}, 1)

	nodes := g.allNodes()

	unweighted := betweennessCentrality(g, nodes, false)
	require.Equal(t, unweighted[NodeID{"b"}.Key()], unweighted[NodeID{"c"}.Key()],
		"hop-count ties should split betweenness credit evenly between b and c")

	weighted := betweennessCentrality(g, nodes, true)
	require.Greater(t, weighted[NodeID{"c"}.Key()], weighted[NodeID{"b"}.Key()],
		"the lower-weight a-c-d route should carry all the betweenness credit")
	require.Zero(t, weighted[NodeID{"b"}.Key()], "b sits on a strictly longer weighted route")
}

func TestBetweennessCentrality_LinearChain(t *testing.T) {
	g := newMemGraph()
	g.addEdge(NodeID{"a"}, NodeID{"b"}, 1)
	g.addEdge(NodeID{"b"}, NodeID{"c"}, 1)

	nodes := g.allNodes()

	for _, weighted := range []bool{false, true} {
		scores := betweennessCentrality(g, nodes, weighted)
		require.Equal(t, 1.0, scores[NodeID{"b"}.Key()], "b sits on the only a-c path")
		require.Zero(t, scores[NodeID{"a"}.Key()])
		require.Zero(t, scores[NodeID{"c"}.Key()])
	}
}
