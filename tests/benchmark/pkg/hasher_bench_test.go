package benchmark

import (
	"fmt"
	"testing"

	"beltflow/pkg/cache"
	"beltflow/pkg/domain"
)

func BenchmarkProblemHash(b *testing.B) {
	sizes := []int{10, 50, 100, 500, 1000}

	for _, size := range sizes {
		problem := createProblemForHash(size)
		b.Run(fmt.Sprintf("nodes_%d", size), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				cache.ProblemHash(problem)
			}
		})
	}
}

func BenchmarkProblemHash_Dense(b *testing.B) {
	sizes := []int{50, 100, 200}

	for _, size := range sizes {
		problem := createDenseProblemForHash(size)
		b.Run(fmt.Sprintf("nodes_%d", size), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				cache.ProblemHash(problem)
			}
		})
	}
}

func BenchmarkQuickHash(b *testing.B) {
	sizes := []int{64, 256, 1024, 4096, 16384}

	for _, size := range sizes {
		data := make([]byte, size)
		b.Run(fmt.Sprintf("size_%d", size), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				cache.QuickHash(data)
			}
		})
	}
}

func BenchmarkShortHash(b *testing.B) {
	data := make([]byte, 1024)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		cache.ShortHash(data)
	}
}

func BenchmarkBuildSolveKey(b *testing.B) {
	problemHash := "abc123def456"
	algorithm := "dinic"

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		cache.BuildSolveKey(problemHash, algorithm)
	}
}

func BenchmarkBuildPlanKey(b *testing.B) {
	planHash := "abc123def456"

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		cache.BuildPlanKey(planHash)
	}
}

func createProblemForHash(nodes int) *domain.Problem {
	edges := make([]domain.Edge, nodes-1)
	for i := 0; i < nodes-1; i++ {
		edges[i] = domain.Edge{
			From:  fmt.Sprintf("node-%d", i),
			To:    fmt.Sprintf("node-%d", i+1),
			Lower: 1,
			Upper: float64(10 + i%50),
		}
	}
	return &domain.Problem{
		Sources:  map[string]float64{"node-0": 500},
		Sink:     fmt.Sprintf("node-%d", nodes-1),
		Edges:    edges,
		NodeCaps: map[string]float64{fmt.Sprintf("node-%d", nodes/2): 250},
	}
}

func createDenseProblemForHash(nodes int) *domain.Problem {
	// Примерно 5 рёбер на узел
	edges := make([]domain.Edge, 0, nodes*5)
	for i := 0; i < nodes; i++ {
		for j := i + 1; j < nodes && j <= i+5; j++ {
			edges = append(edges, domain.Edge{
				From:  fmt.Sprintf("node-%d", i),
				To:    fmt.Sprintf("node-%d", j),
				Upper: 10,
			})
		}
	}
	return &domain.Problem{
		Sources: map[string]float64{"node-0": 500},
		Sink:    fmt.Sprintf("node-%d", nodes-1),
		Edges:   edges,
	}
}
