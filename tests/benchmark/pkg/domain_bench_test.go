package benchmark

import (
	"fmt"
	"testing"

	"beltflow/pkg/domain"
)

func BenchmarkProblemTouchedNodes(b *testing.B) {
	sizes := []int{100, 500, 1000, 5000}

	for _, size := range sizes {
		b.Run(fmt.Sprintf("nodes_%d", size), func(b *testing.B) {
			p := generateChainProblem(size)

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				p.TouchedNodes()
			}
		})
	}
}

func BenchmarkProblemTouchedNodes_Dense(b *testing.B) {
	sizes := []int{50, 100, 200}

	for _, size := range sizes {
		b.Run(fmt.Sprintf("nodes_%d", size), func(b *testing.B) {
			p := generateDenseProblem(size)

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				p.TouchedNodes()
			}
		})
	}
}

func BenchmarkProblemSortedSources(b *testing.B) {
	counts := []int{10, 100, 1000}

	for _, count := range counts {
		b.Run(fmt.Sprintf("sources_%d", count), func(b *testing.B) {
			p := generateFanProblem(count)

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				p.SortedSources()
			}
		})
	}
}

func BenchmarkProblemTotalSupply(b *testing.B) {
	p := generateFanProblem(1000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		p.TotalSupply()
	}
}

func BenchmarkSuccess_SortFlows(b *testing.B) {
	sizes := []int{100, 1000, 10000}

	for _, size := range sizes {
		b.Run(fmt.Sprintf("edges_%d", size), func(b *testing.B) {
			flows := generateEdgeFlows(size)

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				// Success сортирует потоки на месте, копия
				// сохраняет случайный порядок между итерациями
				shuffled := make([]domain.EdgeFlow, len(flows))
				copy(shuffled, flows)
				domain.Success(42.5, shuffled)
			}
		})
	}
}

func BenchmarkEdgeRefString(b *testing.B) {
	ref := domain.EdgeRef{From: "smelter-array", To: "assembly-line"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = ref.String()
	}
}

// Helper functions

func generateChainProblem(nodes int) *domain.Problem {
	edges := make([]domain.Edge, nodes-1)
	for i := 0; i < nodes-1; i++ {
		edges[i] = domain.Edge{
			From:  fmt.Sprintf("n%d", i),
			To:    fmt.Sprintf("n%d", i+1),
			Upper: 100,
		}
	}
	return &domain.Problem{
		Sources: map[string]float64{"n0": 1000},
		Sink:    fmt.Sprintf("n%d", nodes-1),
		Edges:   edges,
	}
}

func generateDenseProblem(nodes int) *domain.Problem {
	edges := make([]domain.Edge, 0, nodes*10)
	for i := 0; i < nodes; i++ {
		for j := i + 1; j < nodes && j <= i+10; j++ {
			edges = append(edges, domain.Edge{
				From:  fmt.Sprintf("n%d", i),
				To:    fmt.Sprintf("n%d", j),
				Upper: 100,
			})
		}
	}
	return &domain.Problem{
		Sources: map[string]float64{"n0": 1000},
		Sink:    fmt.Sprintf("n%d", nodes-1),
		Edges:   edges,
	}
}

func generateFanProblem(sources int) *domain.Problem {
	srcs := make(map[string]float64, sources)
	edges := make([]domain.Edge, sources)
	for i := 0; i < sources; i++ {
		name := fmt.Sprintf("src-%d", i)
		srcs[name] = float64(i + 1)
		edges[i] = domain.Edge{From: name, To: "hub", Upper: 100}
	}
	edges = append(edges, domain.Edge{From: "hub", To: "sink", Upper: 1e6})
	return &domain.Problem{
		Sources: srcs,
		Sink:    "sink",
		Edges:   edges,
	}
}

func generateEdgeFlows(n int) []domain.EdgeFlow {
	flows := make([]domain.EdgeFlow, n)
	for i := 0; i < n; i++ {
		// Обратный порядок, чтобы сортировке было что делать
		flows[i] = domain.EdgeFlow{
			From: fmt.Sprintf("n%d", n-i),
			To:   fmt.Sprintf("n%d", n-i+1),
			Flow: float64(i),
		}
	}
	return flows
}
