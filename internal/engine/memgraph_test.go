package engine

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

func idsOf(ids []NodeID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.Key())
	}

	sort.Strings(out)

	return out
}

func TestMemGraph_AddEdge_PopulatesBothDirections(t *testing.T) {
	g := newMemGraph()
	a, b := NodeID{"a"}, NodeID{"b"}

	g.addEdge(a, b, 1.0)

	require.Equal(t, 2, g.nodeCount())

	out := g.neighbors(a, DirectionOutbound)
	require.Len(t, out, 1)
	require.Equal(t, b.Key(), out[0].To.Key())

	in := g.neighbors(b, DirectionInbound)
	require.Len(t, in, 1)
	require.Equal(t, a.Key(), in[0].To.Key())
}

func TestMemGraph_BFSShortestPath_Unreachable(t *testing.T) {
	g := newMemGraph()
	g.addNode(NodeID{"isolated"})
	g.addEdge(NodeID{"a"}, NodeID{"b"}, 1.0)

	_, found := g.bfsShortestPath(NodeID{"a"}, NodeID{"isolated"})
	require.False(t, found, "expected no path between disconnected nodes")
}

func TestMemGraph_BFSShortestPath_FindsHopPath(t *testing.T) {
	g := newMemGraph()
	g.addEdge(NodeID{"a"}, NodeID{"b"}, 1.0)
	g.addEdge(NodeID{"b"}, NodeID{"c"}, 1.0)
	g.addEdge(NodeID{"a"}, NodeID{"c"}, 1.0) // direct edge competes with the 2-hop route

	path, found := g.bfsShortestPath(NodeID{"a"}, NodeID{"c"})
	require.True(t, found)

	// BFS should prefer the direct 1-hop edge over the 2-hop a->b->c route.
	require.Len(t, path, 2)
}

func TestMemGraph_DijkstraShortestPath_PrefersLowerWeight(t *testing.T) {
	g := newMemGraph()
	g.addEdge(NodeID{"a"}, NodeID{"b"}, 10.0)
	g.addEdge(NodeID{"b"}, NodeID{"c"}, 10.0)
	g.addEdge(NodeID{"a"}, NodeID{"c"}, 100.0)

	path, dist, found := g.dijkstraShortestPath(NodeID{"a"}, NodeID{"c"})
	require.True(t, found)
	require.Equal(t, 20.0, dist)

	want := []NodeID{{"a"}, {"b"}, {"c"}}
	require.Equal(t, idsOf(want), idsOf(path))
	require.Len(t, path, 3)
}

func TestMemGraph_WeaklyConnectedComponents(t *testing.T) {
	g := newMemGraph()
	g.addEdge(NodeID{"a"}, NodeID{"b"}, 1.0)
	g.addEdge(NodeID{"c"}, NodeID{"d"}, 1.0)
	g.addNode(NodeID{"e"}) // isolated

	components := g.weaklyConnectedComponents()
	require.Len(t, components, 3)

	sizes := make([]int, 0, len(components))
	for _, c := range components {
		sizes = append(sizes, len(c))
	}

	sort.Ints(sizes)
	require.Equal(t, []int{1, 2, 2}, sizes)
}

func TestMemGraph_RemoveNode_SplitsComponent(t *testing.T) {
	g := newMemGraph()
	// a-b-c chain: removing b disconnects a from c.
	g.addEdge(NodeID{"a"}, NodeID{"b"}, 1.0)
	g.addEdge(NodeID{"b"}, NodeID{"c"}, 1.0)

	g.removeNode(NodeID{"b"})

	require.False(t, g.has(NodeID{"b"}))

	components := g.weaklyConnectedComponents()
	require.Len(t, components, 2, "expected a and c to be disconnected after removing b")
	require.Empty(t, g.neighbors(NodeID{"a"}, DirectionBoth))
}

func TestMemGraph_IsStronglyConnected_Cycle(t *testing.T) {
	g := newMemGraph()
	g.addEdge(NodeID{"a"}, NodeID{"b"}, 1.0)
	g.addEdge(NodeID{"b"}, NodeID{"c"}, 1.0)
	g.addEdge(NodeID{"c"}, NodeID{"a"}, 1.0)

	require.True(t, g.isStronglyConnected())
}

func TestMemGraph_IsStronglyConnected_OneWayChainIsNot(t *testing.T) {
	g := newMemGraph()
	g.addEdge(NodeID{"a"}, NodeID{"b"}, 1.0)
	g.addEdge(NodeID{"b"}, NodeID{"c"}, 1.0)

	require.False(t, g.isStronglyConnected(), "a chain with no edge back to a is only weakly connected")
}

func TestMemGraph_IsStronglyConnected_SingleNode(t *testing.T) {
	g := newMemGraph()
	g.addNode(NodeID{"a"})

	require.True(t, g.isStronglyConnected())
}
