package algorithms

import (
	"context"
	"math"

	"beltflow/internal/graph"
)

// =============================================================================
// Edmonds-Karp Algorithm
// =============================================================================
//
// The Edmonds-Karp algorithm is an implementation of the Ford-Fulkerson method
// using BFS to find augmenting paths. By always choosing the shortest augmenting
// path (in terms of number of edges), it guarantees polynomial time complexity.
//
// Time Complexity: O(V × E²)
// Space Complexity: O(V + E)
//
// Key Features:
//   - Uses BFS for finding augmenting paths (shortest path in unweighted graph)
//   - Guaranteed polynomial time (unlike basic Ford-Fulkerson)
//   - Simple to implement and understand
//   - Good for medium-sized graphs
//
// Comparison with Dinic:
//   - Slower for large graphs (O(V × E²) vs O(V² × E))
//   - Simpler control flow, easier to trace individual augmenting paths
//
// References:
//   - Edmonds, J. & Karp, R.M. (1972). "Theoretical improvements in
//     algorithmic efficiency for network flow problems"
// =============================================================================

// EdmondsKarpResult contains the result of the Edmonds-Karp algorithm.
type EdmondsKarpResult struct {
	// MaxFlow is the maximum flow value computed.
	MaxFlow float64

	// Iterations is the number of augmenting paths found.
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

// EdmondsKarp executes the Edmonds-Karp algorithm without context cancellation.
//
// Parameters:
//   - g: The residual graph (will be modified)
//   - source: The source node ID
//   - sink: The sink node ID
//   - options: Solver options (nil for defaults)
//
// Returns:
//   - *EdmondsKarpResult containing the max flow and path count
func EdmondsKarp(g *graph.ResidualGraph, source, sink int64, options *SolverOptions) *EdmondsKarpResult {
	return EdmondsKarpWithContext(context.Background(), g, source, sink, options)
}

// EdmondsKarpWithContext executes the Edmonds-Karp algorithm with context
// cancellation. Uses deterministic BFS for reproducible results.
//
// Parameters:
//   - ctx: Context for cancellation support
//   - g: The residual graph (will be modified)
//   - source: The source node ID
//   - sink: The sink node ID
//   - options: Solver options
//
// Returns:
//   - *EdmondsKarpResult containing max flow, iterations, and outcome flags
func EdmondsKarpWithContext(ctx context.Context, g *graph.ResidualGraph, source, sink int64, options *SolverOptions) *EdmondsKarpResult {
	if options == nil {
		options = DefaultSolverOptions()
	}
	eps := options.epsilon()

	// An all-infinite path admits no finite maximum flow.
	if graph.HasUnboundedPath(g, source, sink) {
		return &EdmondsKarpResult{Unbounded: true}
	}

	maxFlow := 0.0
	iterations := 0

	const checkInterval = 100

	for {
		// Periodic context check
		if iterations%checkInterval == 0 {
			select {
			case <-ctx.Done():
				return &EdmondsKarpResult{
					MaxFlow:    maxFlow,
					Iterations: iterations,
					Canceled:   true,
				}
			default:
			}
		}

		// Find shortest augmenting path using BFS
		bfsResult := graph.BFSDeterministic(g, source, sink, eps)
		if !bfsResult.Found {
			break
		}

		if options.MaxIterations > 0 && iterations >= options.MaxIterations {
			return &EdmondsKarpResult{
				MaxFlow:      maxFlow,
				Iterations:   iterations,
				LimitReached: true,
			}
		}

		// Reconstruct the path
		path := graph.ReconstructPath(bfsResult.Parent, source, sink)
		if len(path) == 0 {
			break
		}

		// Find bottleneck capacity
		pathFlow := graph.FindMinCapacityOnPath(g, path)
		if pathFlow <= eps {
			break
		}
		if math.IsInf(pathFlow, 1) {
			// All edges on the path are unbounded; augmenting would not
			// reduce any residual and the loop would never terminate.
			return &EdmondsKarpResult{
				MaxFlow:    maxFlow,
				Iterations: iterations,
				Unbounded:  true,
			}
		}

		// Augment flow along the path
		graph.AugmentPath(g, path, pathFlow)

		maxFlow += pathFlow
		iterations++
	}

	return &EdmondsKarpResult{
		MaxFlow:    maxFlow,
		Iterations: iterations,
	}
}
