package algorithms

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"beltflow/internal/graph"
)

func TestSolve(t *testing.T) {
	algorithms := []string{
		AlgorithmDinic,
		AlgorithmEdmondsKarp,
		"", // пустое имя означает алгоритм по умолчанию
	}

	for _, algo := range algorithms {
		name := algo
		if name == "" {
			name = "default"
		}
		t.Run(name, func(t *testing.T) {
			g := graph.NewResidualGraph()
			g.AddEdgeWithReverse(1, 2, 10)

			result := Solve(context.Background(), g, 1, 2, algo, DefaultSolverOptions())

			require.NoError(t, result.Error)
			assert.InDelta(t, 10.0, result.MaxFlow, 1e-9)
		})
	}
}

func TestSolve_ComplexGraph(t *testing.T) {
	algorithms := []string{AlgorithmDinic, AlgorithmEdmondsKarp}

	for _, algo := range algorithms {
		t.Run(algo, func(t *testing.T) {
			g := graph.NewResidualGraph()
			// Ромб: каждое ребро 10, максимальный поток 20
			g.AddEdgeWithReverse(1, 2, 10)
			g.AddEdgeWithReverse(1, 3, 10)
			g.AddEdgeWithReverse(2, 4, 10)
			g.AddEdgeWithReverse(3, 4, 10)

			result := Solve(context.Background(), g, 1, 4, algo, DefaultSolverOptions())

			require.NoError(t, result.Error)
			assert.InDelta(t, 20.0, result.MaxFlow, 1e-9)
		})
	}
}

func TestSolve_NilOptions(t *testing.T) {
	g := graph.NewResidualGraph()
	g.AddEdgeWithReverse(1, 2, 10)

	result := Solve(context.Background(), g, 1, 2, AlgorithmDinic, nil)

	require.NoError(t, result.Error)
	assert.InDelta(t, 10.0, result.MaxFlow, 1e-9)
}

func TestSolve_Validation(t *testing.T) {
	tests := []struct {
		name    string
		graph   func() *graph.ResidualGraph
		source  int64
		sink    int64
		wantErr error
	}{
		{
			name:    "nil_graph",
			graph:   func() *graph.ResidualGraph { return nil },
			source:  1,
			sink:    2,
			wantErr: ErrNilGraph,
		},
		{
			name: "source_not_found",
			graph: func() *graph.ResidualGraph {
				g := graph.NewResidualGraph()
				g.AddEdgeWithReverse(1, 2, 10)
				return g
			},
			source:  99,
			sink:    2,
			wantErr: ErrSourceNotFound,
		},
		{
			name: "sink_not_found",
			graph: func() *graph.ResidualGraph {
				g := graph.NewResidualGraph()
				g.AddEdgeWithReverse(1, 2, 10)
				return g
			},
			source:  1,
			sink:    99,
			wantErr: ErrSinkNotFound,
		},
		{
			name: "source_equals_sink",
			graph: func() *graph.ResidualGraph {
				g := graph.NewResidualGraph()
				g.AddEdgeWithReverse(1, 2, 10)
				return g
			},
			source:  1,
			sink:    1,
			wantErr: ErrSourceEqualSink,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Solve(context.Background(), tt.graph(), tt.source, tt.sink, AlgorithmDinic, DefaultSolverOptions())

			require.Error(t, result.Error)
			assert.ErrorIs(t, result.Error, tt.wantErr)
		})
	}
}

func TestSolve_UnknownAlgorithm(t *testing.T) {
	g := graph.NewResidualGraph()
	g.AddEdgeWithReverse(1, 2, 10)

	result := Solve(context.Background(), g, 1, 2, "push_relabel", DefaultSolverOptions())

	require.Error(t, result.Error)
	assert.ErrorIs(t, result.Error, ErrUnknownAlgorithm)
}

func TestNewOracle(t *testing.T) {
	tests := []struct {
		name      string
		algorithm string
		wantType  any
		wantErr   bool
	}{
		{name: "dinic", algorithm: AlgorithmDinic, wantType: &DinicSolver{}},
		{name: "edmonds_karp", algorithm: AlgorithmEdmondsKarp, wantType: &EdmondsKarpSolver{}},
		{name: "empty_defaults_to_dinic", algorithm: "", wantType: &DinicSolver{}},
		{name: "unknown", algorithm: "simplex", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oracle, err := NewOracle(tt.algorithm, DefaultSolverOptions())

			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrUnknownAlgorithm)
				assert.Nil(t, oracle)
				return
			}

			require.NoError(t, err)
			assert.IsType(t, tt.wantType, oracle)
		})
	}
}

func TestOracle_MinCutAfterSolve(t *testing.T) {
	g := graph.NewResidualGraph()
	g.AddEdgeWithReverse(1, 2, 100)
	g.AddEdgeWithReverse(2, 3, 1)
	g.AddEdgeWithReverse(3, 4, 100)

	oracle, err := NewOracle(AlgorithmDinic, DefaultSolverOptions())
	require.NoError(t, err)

	maxFlow, err := oracle.SolveMaxFlow(context.Background(), g, 1, 4)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, maxFlow, graph.Epsilon)

	reachable := oracle.MinCut(g, 1)

	// Насыщенное ребро 2->3 отделяет {1, 2} от {3, 4}
	assert.True(t, reachable[1])
	assert.True(t, reachable[2])
	assert.False(t, reachable[3])
	assert.False(t, reachable[4])

	// Пропускная способность разреза совпадает с максимальным потоком
	assert.InDelta(t, maxFlow, graph.CutCapacity(g, reachable), graph.Epsilon)
}

func TestOracle_Unbounded(t *testing.T) {
	g := graph.NewResidualGraph()
	g.AddEdgeWithReverse(1, 2, graph.Infinity)
	g.AddEdgeWithReverse(2, 3, graph.Infinity)

	for _, algo := range []string{AlgorithmDinic, AlgorithmEdmondsKarp} {
		t.Run(algo, func(t *testing.T) {
			oracle, err := NewOracle(algo, DefaultSolverOptions())
			require.NoError(t, err)

			_, err = oracle.SolveMaxFlow(context.Background(), g, 1, 3)

			require.Error(t, err)
			assert.ErrorIs(t, err, ErrUnboundedFlow)
		})
	}
}

func TestOracle_IterationLimit(t *testing.T) {
	g := graph.NewResidualGraph()
	g.AddEdgeWithReverse(1, 2, 10)
	g.AddEdgeWithReverse(1, 3, 10)
	g.AddEdgeWithReverse(2, 4, 10)
	g.AddEdgeWithReverse(3, 4, 10)

	opts := DefaultSolverOptions().WithMaxIterations(1)
	oracle, err := NewOracle(AlgorithmEdmondsKarp, opts)
	require.NoError(t, err)

	_, err = oracle.SolveMaxFlow(context.Background(), g, 1, 4)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIterationLimit)
}

func TestOracle_ContextCanceled(t *testing.T) {
	g := graph.NewResidualGraph()
	g.AddEdgeWithReverse(1, 2, 10)
	g.AddEdgeWithReverse(2, 3, 10)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	oracle, err := NewOracle(AlgorithmDinic, DefaultSolverOptions())
	require.NoError(t, err)

	_, err = oracle.SolveMaxFlow(ctx, g, 1, 3)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrContextCanceled)
}

func TestOracle_Timeout(t *testing.T) {
	g := graph.NewResidualGraph()
	g.AddEdgeWithReverse(1, 2, 10)
	g.AddEdgeWithReverse(2, 3, 10)

	// Родительский дедлайн уже истёк к моменту запуска
	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	time.Sleep(time.Millisecond)

	oracle, err := NewOracle(AlgorithmDinic, DefaultSolverOptions())
	require.NoError(t, err)

	_, err = oracle.SolveMaxFlow(ctx, g, 1, 3)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestSolverOptions_Chaining(t *testing.T) {
	opts := DefaultSolverOptions().
		WithEpsilon(1e-6).
		WithTimeout(5 * time.Second).
		WithMaxIterations(1000)

	assert.Equal(t, 1e-6, opts.Epsilon)
	assert.Equal(t, 5*time.Second, opts.Timeout)
	assert.Equal(t, 1000, opts.MaxIterations)
}

func TestSolverOptions_EpsilonFallback(t *testing.T) {
	opts := &SolverOptions{Epsilon: 0}

	// Нулевой epsilon заменяется значением по умолчанию
	assert.Equal(t, graph.Epsilon, opts.epsilon())
}

func TestSolverPool_AcquireRelease(t *testing.T) {
	pool := NewSolverPool(2)
	ctx := context.Background()

	require.NoError(t, pool.Acquire(ctx))
	require.NoError(t, pool.Acquire(ctx))

	// Оба слота заняты: Acquire с отменённым контекстом возвращает ошибку
	canceledCtx, cancel := context.WithCancel(context.Background())
	cancel()
	err := pool.Acquire(canceledCtx)
	assert.True(t, errors.Is(err, context.Canceled))

	// После Release слот снова доступен
	pool.Release()
	require.NoError(t, pool.Acquire(ctx))
}

func TestNewSolverPool_DefaultCapacity(t *testing.T) {
	pool := NewSolverPool(0)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		require.NoError(t, pool.Acquire(ctx))
	}

	canceledCtx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, pool.Acquire(canceledCtx))
}
