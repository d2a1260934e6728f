package graph

import "beltflow/pkg/domain"

// =============================================================================
// BFS Result
// =============================================================================

// BFSResult holds the result of a breadth-first search over the residual graph.
type BFSResult struct {
	// Found is true if the sink was reached from the source.
	Found bool

	// Parent maps each visited node to its predecessor on the BFS tree.
	// Used to reconstruct the augmenting path.
	Parent map[int64]int64

	// Visited contains all nodes reached during the search.
	Visited map[int64]bool
}

// =============================================================================
// Queue
// =============================================================================

// Queue is a simple FIFO queue for int64 node IDs.
//
// It uses a head pointer instead of re-slicing on every Pop, which avoids
// repeated allocations during BFS on large graphs.
type Queue struct {
	items []int64
	head  int
}

// NewQueue creates an empty queue with a small initial capacity.
func NewQueue() *Queue {
	return &Queue{items: make([]int64, 0, 64)}
}

// Push adds a node to the back of the queue.
func (q *Queue) Push(item int64) {
	q.items = append(q.items, item)
}

// Pop removes and returns the node at the front of the queue.
// Calling Pop on an empty queue panics; check Empty() first.
func (q *Queue) Pop() int64 {
	item := q.items[q.head]
	q.head++

	// Compact when the dead prefix dominates the backing array
	if q.head > 1024 && q.head*2 > len(q.items) {
		q.items = append(q.items[:0], q.items[q.head:]...)
		q.head = 0
	}
	return item
}

// Empty returns true if the queue has no items.
func (q *Queue) Empty() bool {
	return q.head >= len(q.items)
}

// Len returns the number of items in the queue.
func (q *Queue) Len() int {
	return len(q.items) - q.head
}

// Reset clears the queue for reuse without releasing the backing array.
func (q *Queue) Reset() {
	q.items = q.items[:0]
	q.head = 0
}

// =============================================================================
// Breadth-First Search
// =============================================================================

// BFSDeterministic performs a breadth-first search from source to sink.
//
// Only edges with residual capacity greater than tol are traversed.
// Neighbors are visited in insertion order (EdgesList), so repeated runs
// on the same graph produce identical parent trees and therefore identical
// augmenting paths.
//
// The search terminates early as soon as the sink is reached.
//
// Parameters:
//   - g: The residual graph to search
//   - source: Starting node
//   - sink: Target node
//   - tol: Capacity tolerance; edges at or below it are treated as saturated
//
// Returns a BFSResult with the parent tree for path reconstruction.
func BFSDeterministic(g *ResidualGraph, source, sink int64, tol float64) *BFSResult {
	result := &BFSResult{
		Found:   false,
		Parent:  make(map[int64]int64),
		Visited: make(map[int64]bool),
	}

	queue := NewQueue()
	queue.Push(source)
	result.Visited[source] = true

	for !queue.Empty() {
		current := queue.Pop()

		if current == sink {
			result.Found = true
			return result
		}

		for _, edge := range g.GetNeighborsList(current) {
			if result.Visited[edge.To] || edge.Capacity <= tol {
				continue
			}
			result.Visited[edge.To] = true
			result.Parent[edge.To] = current
			queue.Push(edge.To)
		}
	}

	return result
}

// BFSLevel computes BFS levels (distances from source) for Dinic's algorithm.
//
// The level of a node is the length of the shortest augmenting path from
// the source, counting only edges with residual capacity above tol.
// Nodes unreachable from the source are absent from the map.
//
// The provided levels map is cleared and filled in place so callers can
// reuse a pooled map across phases.
//
// Returns true if the sink is reachable (i.e. another phase is possible).
func BFSLevel(g *ResidualGraph, source, sink int64, tol float64, levels map[int64]int) bool {
	clear(levels)
	levels[source] = 0

	queue := NewQueue()
	queue.Push(source)

	sinkReached := false
	for !queue.Empty() {
		current := queue.Pop()
		currentLevel := levels[current]

		for _, edge := range g.GetNeighborsList(current) {
			if edge.Capacity <= tol {
				continue
			}
			if _, seen := levels[edge.To]; seen {
				continue
			}
			levels[edge.To] = currentLevel + 1
			if edge.To == sink {
				sinkReached = true
			}
			queue.Push(edge.To)
		}
	}

	return sinkReached
}

// HasUnboundedPath reports whether the sink is reachable from the source
// using only edges of infinite capacity.
//
// If such a path exists, the maximum flow is unbounded: every augmenting
// step along it would leave all residual capacities infinite. The solvers
// run this check once before augmenting; because finite pushes never
// change infinite capacities, the answer stays valid for the whole run.
func HasUnboundedPath(g *ResidualGraph, source, sink int64) bool {
	visited := make(map[int64]bool, g.NodeCount())
	visited[source] = true

	queue := NewQueue()
	queue.Push(source)

	for !queue.Empty() {
		current := queue.Pop()
		if current == sink {
			return true
		}
		for _, edge := range g.GetNeighborsList(current) {
			if visited[edge.To] || !domain.IsUnbounded(edge.Capacity) {
				continue
			}
			visited[edge.To] = true
			queue.Push(edge.To)
		}
	}

	return false
}
