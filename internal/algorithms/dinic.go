package algorithms

import (
	"context"

	"beltflow/internal/graph"
)

// =============================================================================
// Dinic's Algorithm (Dinitz's Algorithm)
// =============================================================================
//
// Dinic's algorithm finds the maximum flow in a flow network. It improves upon
// Ford-Fulkerson by using BFS to construct level graphs and finding blocking
// flows, reducing the number of augmenting path searches.
//
// Time Complexity: O(V² × E) general case, O(E × √V) for unit capacity graphs
// Space Complexity: O(V + E)
//
// Key Features:
//   - Level graph construction using BFS
//   - Blocking flow computation in each phase
//   - Current arc optimization for efficiency
//   - Refuses graphs where the sink is reachable through edges of infinite
//     capacity (the maximum flow would be unbounded)
//
// Algorithm Phases:
//  1. BFS from source to build level graph (assigns levels to vertices)
//  2. Find blocking flow using DFS with current arc optimization
//  3. Repeat until sink is unreachable from source
//
// References:
//   - Dinitz, Y. (1970). "Algorithm for solution of a problem of maximum flow
//     in a network with power estimation"
//   - Even, S. & Tarjan, R.E. (1975). "Network flow and testing graph connectivity"
// =============================================================================

// DinicResult contains the result of Dinic's algorithm.
type DinicResult struct {
	// MaxFlow is the maximum flow value computed.
	MaxFlow float64

	// Iterations is the number of BFS phases executed.
	Iterations int

	// Canceled indicates whether the operation was canceled via context.
	Canceled bool

	// Unbounded indicates that no finite maximum flow exists because the
	// sink is reachable through edges of infinite capacity.
	Unbounded bool

	// LimitReached indicates that MaxIterations stopped the algorithm
	// while augmenting paths still existed. MaxFlow is a lower bound.
	LimitReached bool
}

// Dinic executes Dinic's algorithm without context cancellation support.
//
// Parameters:
//   - g: The residual graph (will be modified)
//   - source: The source node ID
//   - sink: The sink node ID
//   - options: Solver options (nil for defaults)
//
// Returns:
//   - *DinicResult containing the max flow and phase count
func Dinic(g *graph.ResidualGraph, source, sink int64, options *SolverOptions) *DinicResult {
	return DinicWithContext(context.Background(), g, source, sink, options)
}

// DinicWithContext executes Dinic's algorithm with context cancellation.
// Uses deterministic ordering for reproducible results.
//
// Parameters:
//   - ctx: Context for cancellation support
//   - g: The residual graph (will be modified)
//   - source: The source node ID
//   - sink: The sink node ID
//   - options: Solver options
//
// Returns:
//   - *DinicResult containing max flow, phase count, and outcome flags
func DinicWithContext(ctx context.Context, g *graph.ResidualGraph, source, sink int64, options *SolverOptions) *DinicResult {
	if options == nil {
		options = DefaultSolverOptions()
	}
	eps := options.epsilon()
	pool := options.pool()

	// An all-infinite path admits no finite maximum flow. Finite pushes
	// never change infinite residuals, so one check up front covers the
	// entire run.
	if graph.HasUnboundedPath(g, source, sink) {
		return &DinicResult{Unbounded: true}
	}

	maxFlow := 0.0
	iterations := 0

	levels := pool.AcquireIntMap()
	defer pool.ReleaseIntMap(levels)
	currentArc := pool.AcquireIntMap()
	defer pool.ReleaseIntMap(currentArc)

	const checkInterval = 100

	for {
		// Periodic context check
		if iterations%checkInterval == 0 {
			select {
			case <-ctx.Done():
				return &DinicResult{
					MaxFlow:    maxFlow,
					Iterations: iterations,
					Canceled:   true,
				}
			default:
			}
		}

		// Phase 1: Build level graph using BFS
		if !graph.BFSLevel(g, source, sink, eps, levels) {
			// Sink unreachable - maximum flow found
			break
		}

		if options.MaxIterations > 0 && iterations >= options.MaxIterations {
			return &DinicResult{
				MaxFlow:      maxFlow,
				Iterations:   iterations,
				LimitReached: true,
			}
		}

		// Phase 2: Find blocking flow
		clear(currentArc)
		blockingFlow := findBlockingFlow(g, source, sink, levels, currentArc, eps)

		if blockingFlow <= eps {
			break
		}

		maxFlow += blockingFlow
		iterations++
	}

	return &DinicResult{
		MaxFlow:    maxFlow,
		Iterations: iterations,
	}
}

// findBlockingFlow finds a blocking flow in the level graph.
// A blocking flow saturates at least one edge on every path from source to sink.
//
// Uses iterative DFS with current arc optimization to achieve efficient performance.
func findBlockingFlow(g *graph.ResidualGraph, source, sink int64, level, currentArc map[int64]int, epsilon float64) float64 {
	totalFlow := 0.0

	for {
		pathFlow := dfsBlockingPath(g, source, sink, level, currentArc, epsilon)
		if pathFlow <= epsilon {
			break
		}
		totalFlow += pathFlow
	}

	return totalFlow
}

// dfsBlockingPath finds one augmenting path in the level graph using
// iterative DFS, augments it, and returns the amount of flow pushed.
//
// The path slice doubles as the DFS stack; its last element is the node
// currently being expanded. The iterative implementation avoids stack
// overflow on deep graphs.
func dfsBlockingPath(g *graph.ResidualGraph, source, sink int64, level, currentArc map[int64]int, epsilon float64) float64 {
	path := make([]int64, 0, 64)
	minCap := make([]float64, 0, 64)

	path = append(path, source)
	minCap = append(minCap, graph.Infinity)

	for len(path) > 0 {
		u := path[len(path)-1]

		// Found path to sink
		if u == sink {
			bottleneck := minCap[len(minCap)-1]

			// Augment path: update flows along the path
			for i := 0; i < len(path)-1; i++ {
				g.UpdateFlow(path[i], path[i+1], bottleneck)
			}
			return bottleneck
		}

		// Get edges from current node (deterministic order via EdgesList)
		edges := g.GetNeighborsList(u)

		advanced := false
		for i := currentArc[u]; i < len(edges); i++ {
			edge := edges[i]
			v := edge.To

			// Check level graph constraints and capacity
			if level[v] != level[u]+1 || edge.Capacity <= epsilon {
				continue
			}

			// Update current arc
			currentArc[u] = i

			// Compute bottleneck to v
			newMinCap := minCap[len(minCap)-1]
			if edge.Capacity < newMinCap {
				newMinCap = edge.Capacity
			}

			path = append(path, v)
			minCap = append(minCap, newMinCap)

			advanced = true
			break
		}

		if !advanced {
			// No valid edge found - backtrack
			currentArc[u] = len(edges) // Mark all edges as processed

			// Remove node from level graph (dead end optimization)
			delete(level, u)

			path = path[:len(path)-1]
			minCap = minCap[:len(minCap)-1]
		}
	}

	return 0
}
