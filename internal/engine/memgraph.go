package engine

import (
	"container/heap"
	"sync"
)

// memEdge is a directed connection stored in a memGraph adjacency list.
type memEdge struct {
	To     NodeID
	Weight float64
}

// memGraph is a directed, optionally weighted in-memory graph keyed by
// NodeID.Key(). It is the polymorphic in-memory directed-graph abstraction:
// add-edge, neighbors, shortest-path, weakly-connected-components, and
// subgraph removal. Styled after
// katalvlaran-lvlath/graph/core's locked adjacency-list Graph, but keyed on
// composite NodeId tuples and float64 weights instead of string ids and
// int64 weights, which lvlath cannot represent without a lossy adapter.
type memGraph struct {
	mu   sync.RWMutex
	ids  map[string]NodeID
	adj  map[string][]memEdge // outbound
	radj map[string][]memEdge // inbound, mirrored for weak-connectivity and neighbor queries
}

// newMemGraph constructs an empty in-memory graph.
func newMemGraph() *memGraph {
	return &memGraph{
		ids:  make(map[string]NodeID),
		adj:  make(map[string][]memEdge),
		radj: make(map[string][]memEdge),
	}
}

// addNode registers id with no edges, a no-op if already present.
func (g *memGraph) addNode(id NodeID) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.addNodeLocked(id)
}

func (g *memGraph) addNodeLocked(id NodeID) {
	k := id.Key()
	if _, ok := g.ids[k]; !ok {
		g.ids[k] = id
		g.adj[k] = nil
		g.radj[k] = nil
	}
}

// addEdge inserts a directed edge from -> to with the given weight, stored
// as given; callers pass 1.0 for edges without a weight.
func (g *memGraph) addEdge(from, to NodeID, weight float64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.addNodeLocked(from)
	g.addNodeLocked(to)

	fk, tk := from.Key(), to.Key()
	g.adj[fk] = append(g.adj[fk], memEdge{To: to, Weight: weight})
	g.radj[tk] = append(g.radj[tk], memEdge{To: from, Weight: weight})
}

// nodeCount returns the number of distinct nodes registered.
func (g *memGraph) nodeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return len(g.ids)
}

// has reports whether id was registered (via addNode or as an edge endpoint).
func (g *memGraph) has(id NodeID) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()

	_, ok := g.ids[id.Key()]

	return ok
}

// neighbors returns the outbound, inbound, or both-direction adjacency of id.
func (g *memGraph) neighbors(id NodeID, direction Direction) []memEdge {
	g.mu.RLock()
	defer g.mu.RUnlock()

	k := id.Key()

	switch direction {
	case DirectionOutbound:
		return append([]memEdge{}, g.adj[k]...)
	case DirectionInbound:
		return append([]memEdge{}, g.radj[k]...)
	default:
		out := append([]memEdge{}, g.adj[k]...)

		return append(out, g.radj[k]...)
	}
}

// allNodes returns every registered NodeID.
func (g *memGraph) allNodes() []NodeID {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]NodeID, 0, len(g.ids))
	for _, id := range g.ids {
		out = append(out, id)
	}

	return out
}

// removeNode deletes id and every incident edge in place, for
// resilience_analysis's before/after comparison. It returns nothing.
func (g *memGraph) removeNode(id NodeID) {
	g.mu.Lock()
	defer g.mu.Unlock()

	k := id.Key()

	for _, e := range g.adj[k] {
		tk := e.To.Key()
		g.radj[tk] = removeEdgeTo(g.radj[tk], id)
	}

	for _, e := range g.radj[k] {
		fk := e.To.Key()
		g.adj[fk] = removeEdgeTo(g.adj[fk], id)
	}

	delete(g.ids, k)
	delete(g.adj, k)
	delete(g.radj, k)
}

func removeEdgeTo(edges []memEdge, target NodeID) []memEdge {
	tk := target.Key()

	out := edges[:0]

	for _, e := range edges {
		if e.To.Key() != tk {
			out = append(out, e)
		}
	}

	return out
}

// bfsShortestPath finds the unweighted shortest path between from and to,
// measured in hop count. Returns (path, true) if reachable.
func (g *memGraph) bfsShortestPath(from, to NodeID) ([]NodeID, bool) {
	if !g.has(from) || !g.has(to) {
		return nil, false
	}

	if from.Key() == to.Key() {
		return []NodeID{from}, true
	}

	visited := newVisited()
	visited.add(from)

	parent := make(map[string]NodeID)
	queue := []NodeID{from}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		for _, e := range g.neighbors(cur, DirectionOutbound) {
			if visited.has(e.To) {
				continue
			}

			visited.add(e.To)
			parent[e.To.Key()] = cur
			queue = append(queue, e.To)

			if e.To.Key() == to.Key() {
				return reconstructPath(parent, from, to), true
			}
		}
	}

	return nil, false
}

// dijkstraShortestPath finds the minimum-weight path between from and to.
// Negative weights are rejected by the caller before this runs (pathfinding
// validates weight_col values up front).
func (g *memGraph) dijkstraShortestPath(from, to NodeID) ([]NodeID, float64, bool) {
	if !g.has(from) || !g.has(to) {
		return nil, 0, false
	}

	dist := map[string]float64{from.Key(): 0}
	parent := make(map[string]NodeID)
	visited := newVisited()

	pq := &priorityQueue{{id: from, dist: 0}}
	heap.Init(pq)

	for pq.Len() > 0 {
		item := heap.Pop(pq).(pqItem)

		if visited.has(item.id) {
			continue
		}

		visited.add(item.id)

		if item.id.Key() == to.Key() {
			return reconstructPath(parent, from, to), item.dist, true
		}

		for _, e := range g.neighbors(item.id, DirectionOutbound) {
			nd := item.dist + e.Weight

			tk := e.To.Key()
			if cur, ok := dist[tk]; !ok || nd < cur {
				dist[tk] = nd
				parent[tk] = item.id
				heap.Push(pq, pqItem{id: e.To, dist: nd})
			}
		}
	}

	return nil, 0, false
}

func reconstructPath(parent map[string]NodeID, from, to NodeID) []NodeID {
	trail := []NodeID{to}

	cur := to
	for cur.Key() != from.Key() {
		p, ok := parent[cur.Key()]
		if !ok {
			break
		}

		trail = append(trail, p)
		cur = p
	}

	for i, j := 0, len(trail)-1; i < j; i, j = i+1, j-1 {
		trail[i], trail[j] = trail[j], trail[i]
	}

	return trail
}

// weaklyConnectedComponents partitions all registered nodes into weakly
// connected components, treating every edge as undirected for reachability.
func (g *memGraph) weaklyConnectedComponents() [][]NodeID {
	visited := newVisited()

	var components [][]NodeID

	for _, id := range g.allNodes() {
		if visited.has(id) {
			continue
		}

		var component []NodeID

		queue := []NodeID{id}
		visited.add(id)

		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			component = append(component, cur)

			for _, e := range g.neighbors(cur, DirectionBoth) {
				if !visited.has(e.To) {
					visited.add(e.To)
					queue = append(queue, e.To)
				}
			}
		}

		components = append(components, component)
	}

	return components
}

// isStronglyConnected reports whether every node can reach every other node.
// For a nonempty graph this holds iff a single-source traversal from an
// arbitrary node reaches every node both forwards and over the reversed
// edges, so two BFS passes suffice instead of a full Tarjan/Kosaraju SCC
// decomposition.
func (g *memGraph) isStronglyConnected() bool {
	all := g.allNodes()
	if len(all) <= 1 {
		return true
	}

	start := all[0]

	return len(g.reachableFrom(start, DirectionOutbound)) == len(all) &&
		len(g.reachableFrom(start, DirectionInbound)) == len(all)
}

// reachableFrom returns every node reachable from start by following edges
// in the given direction (DirectionInbound walks the reversed graph).
func (g *memGraph) reachableFrom(start NodeID, direction Direction) VisitedSet {
	visited := newVisited()
	visited.add(start)

	queue := []NodeID{start}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		for _, e := range g.neighbors(cur, direction) {
			if !visited.has(e.To) {
				visited.add(e.To)
				queue = append(queue, e.To)
			}
		}
	}

	return visited
}

// pqItem and priorityQueue implement container/heap for Dijkstra.
type pqItem struct {
	id   NodeID
	dist float64
}

type priorityQueue []pqItem

func (pq priorityQueue) Len() int            { return len(pq) }
func (pq priorityQueue) Less(i, j int) bool   { return pq[i].dist < pq[j].dist }
func (pq priorityQueue) Swap(i, j int)        { pq[i], pq[j] = pq[j], pq[i] }
func (pq *priorityQueue) Push(x any)          { *pq = append(*pq, x.(pqItem)) }
func (pq *priorityQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]

	return item
}
