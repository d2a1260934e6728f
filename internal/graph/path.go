package graph

// =============================================================================
// Path Operations
// =============================================================================

// ReconstructPath rebuilds the source-to-sink path from a BFS parent tree.
//
// Returns nil if the sink was not reached.
func ReconstructPath(parent map[int64]int64, source, sink int64) []int64 {
	if _, ok := parent[sink]; !ok && source != sink {
		return nil
	}

	// Walk backwards from sink to source
	var reversed []int64
	current := sink
	for current != source {
		reversed = append(reversed, current)
		prev, ok := parent[current]
		if !ok {
			return nil
		}
		current = prev
	}
	reversed = append(reversed, source)

	// Reverse in place
	for i, j := 0, len(reversed)-1; i < j; i, j = i+1, j-1 {
		reversed[i], reversed[j] = reversed[j], reversed[i]
	}
	return reversed
}

// FindMinCapacityOnPath returns the bottleneck capacity along a path.
//
// The path is a sequence of node IDs; consecutive pairs must be connected
// by edges in the graph. Returns 0 if the path is shorter than two nodes
// or an edge is missing.
//
// If every edge on the path has infinite capacity the result is Infinity.
// Callers that augment flow must treat an infinite bottleneck as an
// unbounded-flow condition rather than pushing it.
func FindMinCapacityOnPath(g *ResidualGraph, path []int64) float64 {
	if len(path) < 2 {
		return 0
	}

	minCapacity := Infinity
	for i := 0; i < len(path)-1; i++ {
		edge := g.GetEdge(path[i], path[i+1])
		if edge == nil {
			return 0
		}
		if edge.Capacity < minCapacity {
			minCapacity = edge.Capacity
		}
	}
	return minCapacity
}

// AugmentPath pushes the given flow along every edge of the path.
//
// The caller is responsible for ensuring flow does not exceed the
// bottleneck capacity and is finite.
func AugmentPath(g *ResidualGraph, path []int64, flow float64) {
	for i := 0; i < len(path)-1; i++ {
		g.UpdateFlow(path[i], path[i+1], flow)
	}
}
