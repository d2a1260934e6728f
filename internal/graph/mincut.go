package graph

// =============================================================================
// Minimum Cut
// =============================================================================

// MinCutReachable returns the source side of a minimum s-t cut.
//
// It must be called on a residual graph in which a maximum flow has
// already been computed. The returned set contains every node reachable
// from the source via edges with residual capacity above tol; by
// max-flow/min-cut duality, the edges leaving this set are exactly the
// saturated edges of a minimum cut.
//
// Unlike the search used for augmenting paths, this traversal visits the
// whole reachable component instead of stopping at a sink.
func MinCutReachable(g *ResidualGraph, source int64, tol float64) map[int64]bool {
	reachable := make(map[int64]bool, g.NodeCount())
	reachable[source] = true

	queue := NewQueue()
	queue.Push(source)

	for !queue.Empty() {
		current := queue.Pop()
		for _, edge := range g.GetNeighborsList(current) {
			if reachable[edge.To] || edge.Capacity <= tol {
				continue
			}
			reachable[edge.To] = true
			queue.Push(edge.To)
		}
	}

	return reachable
}

// CutEdge describes a forward edge crossing a cut from the source side
// to the sink side.
type CutEdge struct {
	From int64
	To   int64
	Edge *ResidualEdge
}

// CrossingEdges returns the forward edges that cross the cut defined by
// the reachable set, in deterministic order.
//
// After a maximum flow, every returned edge is saturated and the sum of
// their original capacities equals the flow value.
func CrossingEdges(g *ResidualGraph, reachable map[int64]bool) []CutEdge {
	var result []CutEdge
	for _, from := range g.GetSortedNodes() {
		if !reachable[from] {
			continue
		}
		for _, edge := range g.GetNeighborsList(from) {
			if edge.IsReverse || reachable[edge.To] {
				continue
			}
			result = append(result, CutEdge{From: from, To: edge.To, Edge: edge})
		}
	}
	return result
}

// CutCapacity sums the original capacities of the edges crossing the cut.
func CutCapacity(g *ResidualGraph, reachable map[int64]bool) float64 {
	total := 0.0
	for _, ce := range CrossingEdges(g, reachable) {
		total += ce.Edge.OriginalCapacity
	}
	return total
}
