package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"

	"beltflow/pkg/domain"
)

// ProblemHash вычисляет хеш задачи для использования как ключ кэша
func ProblemHash(p *domain.Problem) string {
	if p == nil {
		return ""
	}

	data := problemToCanonical(p)
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:16])
}

// problemToCanonical создаёт детерминированное представление задачи
func problemToCanonical(p *domain.Problem) []byte {
	var result []byte

	// Сток
	result = append(result, []byte(fmt.Sprintf("t:%s;", p.Sink))...)

	// Источники, отсортированные по имени
	for _, name := range p.SortedSources() {
		result = append(result, []byte(fmt.Sprintf("s:%s:%s;", name, formatBound(p.Sources[name])))...)
	}

	// Рёбра, отсортированные по (from, to)
	edges := make([]domain.Edge, len(p.Edges))
	copy(edges, p.Edges)
	sort.Slice(edges, func(i, j int) bool {
		return edges[i].Ref().Less(edges[j].Ref())
	})
	for _, e := range edges {
		result = append(result, []byte(fmt.Sprintf("e:%s:%s:%s:%s;",
			e.From, e.To, formatBound(e.Lower), formatBound(e.Upper)))...)
	}

	// Пропускные способности узлов
	for _, name := range p.SortedCappedNodes() {
		result = append(result, []byte(fmt.Sprintf("c:%s:%s;", name, formatBound(p.NodeCaps[name])))...)
	}

	return result
}

// formatBound форматирует границу детерминированно, включая бесконечность
func formatBound(v float64) string {
	if domain.IsUnbounded(v) {
		return "inf"
	}
	return fmt.Sprintf("%.6f", v)
}

// BuildSolveKey строит ключ кэша для результата решения
func BuildSolveKey(problemHash, algorithm string) string {
	return fmt.Sprintf("solve:%s:%s", algorithm, problemHash)
}

// BuildPlanKey строит ключ кэша для плана фабрики
func BuildPlanKey(planHash string) string {
	return fmt.Sprintf("plan:%s", planHash)
}

// QuickHash быстрый хеш для произвольных данных
func QuickHash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// ShortHash короткий хеш (16 символов)
func ShortHash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:8])
}
