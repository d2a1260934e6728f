// Package algorithms provides max-flow algorithms over residual graphs,
// currently Dinic and Edmonds-Karp, behind a common oracle interface.
//
// # Thread Safety
//
// Individual algorithm functions are NOT thread-safe. Each goroutine should
// work with its own graph. Use ResidualGraph.Clone() or build a fresh graph
// per solve for concurrent operations.
//
// # Determinism
//
// All algorithms produce deterministic results when given the same input
// graph. This is achieved by iterating over nodes and edges in insertion
// or sorted order.
//
// # Context Support
//
// All algorithms support context cancellation for timeout and graceful
// shutdown. The XxxWithContext variants should be preferred for production
// use.
//
// # Example Usage
//
//	g := graph.NewResidualGraph()
//	g.AddEdgeWithReverse(1, 2, 10)
//	g.AddEdgeWithReverse(2, 3, 5)
//
//	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
//	defer cancel()
//
//	result := algorithms.Solve(ctx, g, 1, 3, algorithms.AlgorithmDinic, nil)
//	if result.Error != nil {
//	    log.Printf("Error: %v", result.Error)
//	} else {
//	    log.Printf("Max flow: %f", result.MaxFlow)
//	}
package algorithms

import (
	"context"
	"errors"
	"fmt"
	"time"

	"beltflow/internal/graph"
)

// =============================================================================
// Error Definitions
// =============================================================================

// Standard errors returned by solver operations.
// These errors can be checked using errors.Is() for robust error handling.
var (
	// ErrNilGraph indicates that a nil graph was passed to a solver function.
	ErrNilGraph = errors.New("graph is nil")

	// ErrSourceNotFound indicates that the source node does not exist in the graph.
	ErrSourceNotFound = errors.New("source node not in graph")

	// ErrSinkNotFound indicates that the sink node does not exist in the graph.
	ErrSinkNotFound = errors.New("sink node not in graph")

	// ErrSourceEqualSink indicates that source and sink are the same node.
	ErrSourceEqualSink = errors.New("source equals sink")

	// ErrContextCanceled indicates that the operation was cancelled via context.
	ErrContextCanceled = errors.New("context canceled")

	// ErrTimeout indicates that the operation exceeded the configured timeout.
	ErrTimeout = errors.New("operation timeout")

	// ErrIterationLimit indicates that the iteration cap stopped the algorithm
	// before the maximum flow was reached.
	ErrIterationLimit = errors.New("iteration limit reached")

	// ErrUnboundedFlow indicates that the sink is reachable from the source
	// through edges of infinite capacity, so no finite maximum flow exists.
	ErrUnboundedFlow = errors.New("flow is unbounded")

	// ErrUnknownAlgorithm indicates an unrecognized algorithm name.
	ErrUnknownAlgorithm = errors.New("unknown algorithm")
)

// =============================================================================
// Algorithm Names
// =============================================================================

// Algorithm names accepted by NewOracle and Solve.
// These match the values of the solver.algorithm configuration key.
const (
	AlgorithmDinic       = "dinic"
	AlgorithmEdmondsKarp = "edmonds_karp"
)

// =============================================================================
// Solver Options
// =============================================================================

// SolverOptions configures the behavior of flow algorithms.
//
// Zero values are safe to use - DefaultSolverOptions() will be applied.
// Options can be chained using the builder pattern:
//
//	opts := DefaultSolverOptions().
//	    WithTimeout(10 * time.Second).
//	    WithMaxIterations(100000)
type SolverOptions struct {
	// Epsilon is the tolerance for floating-point comparisons.
	// Values smaller than Epsilon are considered zero.
	// Default: graph.Epsilon (1e-9)
	Epsilon float64

	// MaxIterations limits the number of augmenting iterations
	// (paths for Edmonds-Karp, phases for Dinic).
	// Zero or negative means unlimited.
	// Default: 0 (unlimited)
	MaxIterations int

	// Timeout sets the maximum duration for the algorithm.
	// Zero means no timeout (relies on context).
	// Default: 30 seconds
	Timeout time.Duration

	// Pool is the graph pool used for scratch maps.
	// If nil, the global pool is used.
	Pool *graph.GraphPool
}

// DefaultSolverOptions returns options with sensible defaults for most use cases.
//
// Default values:
//   - Epsilon: 1e-9
//   - MaxIterations: unlimited
//   - Timeout: 30 seconds
func DefaultSolverOptions() *SolverOptions {
	return &SolverOptions{
		Epsilon:       graph.Epsilon,
		MaxIterations: 0,
		Timeout:       30 * time.Second,
		Pool:          graph.GetPool(),
	}
}

// WithEpsilon sets the comparison tolerance and returns the options for chaining.
func (o *SolverOptions) WithEpsilon(epsilon float64) *SolverOptions {
	o.Epsilon = epsilon
	return o
}

// WithTimeout sets the timeout and returns the options for chaining.
func (o *SolverOptions) WithTimeout(timeout time.Duration) *SolverOptions {
	o.Timeout = timeout
	return o
}

// WithMaxIterations sets the iteration limit and returns the options for chaining.
func (o *SolverOptions) WithMaxIterations(max int) *SolverOptions {
	o.MaxIterations = max
	return o
}

// WithPool sets the graph pool and returns the options for chaining.
func (o *SolverOptions) WithPool(pool *graph.GraphPool) *SolverOptions {
	o.Pool = pool
	return o
}

// epsilon returns the effective comparison tolerance.
func (o *SolverOptions) epsilon() float64 {
	if o.Epsilon > 0 {
		return o.Epsilon
	}
	return graph.Epsilon
}

// pool returns the effective graph pool.
func (o *SolverOptions) pool() *graph.GraphPool {
	if o.Pool != nil {
		return o.Pool
	}
	return graph.GetPool()
}

// =============================================================================
// Validation
// =============================================================================

// validateGraph performs basic validation of the graph and source/sink nodes.
//
// Returns nil if the graph is valid, or a descriptive error otherwise.
// The error wraps one of the standard errors (ErrNilGraph, ErrSourceNotFound,
// etc.) for easy checking with errors.Is().
func validateGraph(g *graph.ResidualGraph, source, sink int64) error {
	if g == nil {
		return ErrNilGraph
	}
	if !g.Nodes[source] {
		return fmt.Errorf("%w: %d", ErrSourceNotFound, source)
	}
	if !g.Nodes[sink] {
		return fmt.Errorf("%w: %d", ErrSinkNotFound, sink)
	}
	if source == sink {
		return ErrSourceEqualSink
	}
	return nil
}

// runError converts the outcome flags of an algorithm run into an error.
//
// The cancellation cause is taken from the context so callers can
// distinguish a deadline from an explicit cancel.
func runError(ctx context.Context, canceled, unbounded, limited bool, iterations int) error {
	switch {
	case canceled:
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%w after %d iterations", ErrTimeout, iterations)
		}
		return fmt.Errorf("%w after %d iterations", ErrContextCanceled, iterations)
	case unbounded:
		return ErrUnboundedFlow
	case limited:
		return fmt.Errorf("%w: stopped after %d iterations", ErrIterationLimit, iterations)
	}
	return nil
}

// =============================================================================
// Max-Flow Oracle
// =============================================================================

// MaxFlowOracle computes maximum flows and minimum cuts on residual graphs.
//
// The two methods belong together: MinCut must be called on the same graph
// after SolveMaxFlow has run on it, because the cut is derived from the
// residual capacities the max flow leaves behind.
//
// Any conforming implementation can be substituted; this package ships
// DinicSolver and EdmondsKarpSolver.
type MaxFlowOracle interface {
	// SolveMaxFlow computes the maximum flow from source to sink.
	// The graph is modified in place; the flow assignment can be read
	// from its edges afterwards.
	SolveMaxFlow(ctx context.Context, g *graph.ResidualGraph, source, sink int64) (float64, error)

	// MinCut returns the source side of a minimum cut. The graph must
	// hold a maximum flow (a prior successful SolveMaxFlow call).
	MinCut(g *graph.ResidualGraph, source int64) map[int64]bool
}

// NewOracle constructs the oracle for the named algorithm.
//
// An empty name selects Dinic, which has the best general performance.
func NewOracle(algorithm string, options *SolverOptions) (MaxFlowOracle, error) {
	if options == nil {
		options = DefaultSolverOptions()
	}
	switch algorithm {
	case AlgorithmDinic, "":
		return NewDinicSolver(options), nil
	case AlgorithmEdmondsKarp:
		return NewEdmondsKarpSolver(options), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, algorithm)
	}
}

// DinicSolver is the MaxFlowOracle backed by Dinic's algorithm.
type DinicSolver struct {
	options *SolverOptions
}

// NewDinicSolver creates a Dinic-backed oracle. nil options use defaults.
func NewDinicSolver(options *SolverOptions) *DinicSolver {
	if options == nil {
		options = DefaultSolverOptions()
	}
	return &DinicSolver{options: options}
}

// SolveMaxFlow implements MaxFlowOracle.
func (s *DinicSolver) SolveMaxFlow(ctx context.Context, g *graph.ResidualGraph, source, sink int64) (float64, error) {
	if err := validateGraph(g, source, sink); err != nil {
		return 0, err
	}

	ctx, cancel := withOptionsTimeout(ctx, s.options)
	defer cancel()

	result := DinicWithContext(ctx, g, source, sink, s.options)
	if err := runError(ctx, result.Canceled, result.Unbounded, result.LimitReached, result.Iterations); err != nil {
		return 0, err
	}
	return result.MaxFlow, nil
}

// MinCut implements MaxFlowOracle.
func (s *DinicSolver) MinCut(g *graph.ResidualGraph, source int64) map[int64]bool {
	return graph.MinCutReachable(g, source, s.options.epsilon())
}

// EdmondsKarpSolver is the MaxFlowOracle backed by the Edmonds-Karp algorithm.
type EdmondsKarpSolver struct {
	options *SolverOptions
}

// NewEdmondsKarpSolver creates an Edmonds-Karp-backed oracle. nil options use defaults.
func NewEdmondsKarpSolver(options *SolverOptions) *EdmondsKarpSolver {
	if options == nil {
		options = DefaultSolverOptions()
	}
	return &EdmondsKarpSolver{options: options}
}

// SolveMaxFlow implements MaxFlowOracle.
func (s *EdmondsKarpSolver) SolveMaxFlow(ctx context.Context, g *graph.ResidualGraph, source, sink int64) (float64, error) {
	if err := validateGraph(g, source, sink); err != nil {
		return 0, err
	}

	ctx, cancel := withOptionsTimeout(ctx, s.options)
	defer cancel()

	result := EdmondsKarpWithContext(ctx, g, source, sink, s.options)
	if err := runError(ctx, result.Canceled, result.Unbounded, result.LimitReached, result.Iterations); err != nil {
		return 0, err
	}
	return result.MaxFlow, nil
}

// MinCut implements MaxFlowOracle.
func (s *EdmondsKarpSolver) MinCut(g *graph.ResidualGraph, source int64) map[int64]bool {
	return graph.MinCutReachable(g, source, s.options.epsilon())
}

// withOptionsTimeout derives a context with the options timeout applied.
func withOptionsTimeout(ctx context.Context, options *SolverOptions) (context.Context, context.CancelFunc) {
	if options.Timeout > 0 {
		return context.WithTimeout(ctx, options.Timeout)
	}
	return ctx, func() {}
}

// =============================================================================
// Main Solver Entry Point
// =============================================================================

// SolverResult contains the outcome of a Solve call.
//
// Check Error first to determine whether MaxFlow is valid:
//
//	result := Solve(ctx, g, source, sink, algo, opts)
//	if result.Error != nil {
//	    log.Printf("Failed: %v", result.Error)
//	    return
//	}
//	log.Printf("Max flow: %f", result.MaxFlow)
type SolverResult struct {
	// MaxFlow is the maximum flow value found.
	MaxFlow float64

	// Error contains any error that occurred during computation.
	Error error

	// Duration is the wall-clock time taken by the algorithm.
	Duration time.Duration
}

// Solve runs the named algorithm on the graph.
//
// It is a convenience wrapper over NewOracle for callers that do not hold
// on to an oracle. The graph g is modified in place.
func Solve(ctx context.Context, g *graph.ResidualGraph, source, sink int64, algorithm string, options *SolverOptions) *SolverResult {
	start := time.Now()

	oracle, err := NewOracle(algorithm, options)
	if err != nil {
		return &SolverResult{Error: err, Duration: time.Since(start)}
	}

	maxFlow, err := oracle.SolveMaxFlow(ctx, g, source, sink)
	return &SolverResult{
		MaxFlow:  maxFlow,
		Error:    err,
		Duration: time.Since(start),
	}
}

// =============================================================================
// Solver Pool
// =============================================================================

// SolverPool limits the number of concurrent solver executions.
//
// Each solve builds its own residual graph, so the only shared resource to
// guard is CPU and memory; the pool is a counting semaphore around them.
//
// # Example
//
//	pool := NewSolverPool(runtime.NumCPU())
//
//	if err := pool.Acquire(ctx); err != nil {
//	    return err
//	}
//	defer pool.Release()
//	result := Solve(ctx, g, source, sink, algo, nil)
type SolverPool struct {
	workers chan struct{}
}

// NewSolverPool creates a pool with the specified maximum concurrency.
//
// If maxConcurrency <= 0, it defaults to 10.
func NewSolverPool(maxConcurrency int) *SolverPool {
	if maxConcurrency <= 0 {
		maxConcurrency = 10
	}
	return &SolverPool{
		workers: make(chan struct{}, maxConcurrency),
	}
}

// Acquire obtains a worker slot from the pool.
//
// Blocks until a slot is available or the context is cancelled.
// Returns nil on success, or ctx.Err() if the context was cancelled.
//
// Call Release() when the work is complete.
func (sp *SolverPool) Acquire(ctx context.Context) error {
	select {
	case sp.workers <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release returns a worker slot to the pool.
//
// Must be called exactly once after each successful Acquire().
func (sp *SolverPool) Release() {
	<-sp.workers
}
