package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Стандартные ключи атрибутов
const (
	// Задача
	AttrProblemNodes   = "problem.nodes"
	AttrProblemEdges   = "problem.edges"
	AttrProblemSources = "problem.sources"
	AttrProblemSink    = "problem.sink"

	// Решение
	AttrAlgorithm = "algorithm.name"
	AttrVerdict   = "solve.verdict"
	AttrMaxFlow   = "solve.max_flow_per_min"
	AttrDeficit   = "solve.deficit"
	AttrCacheHit  = "solve.cache_hit"

	// Валидация
	AttrValidationErrors = "validation.errors"
	AttrValidationPassed = "validation.passed"

	// Планирование фабрики
	AttrPlanTarget  = "plan.target_item"
	AttrPlanRate    = "plan.rate_per_min"
	AttrPlanRecipes = "plan.recipes"
)

// ProblemAttributes возвращает атрибуты задачи о потоке
func ProblemAttributes(nodes, edges, sources int, sink string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(AttrProblemNodes, nodes),
		attribute.Int(AttrProblemEdges, edges),
		attribute.Int(AttrProblemSources, sources),
		attribute.String(AttrProblemSink, sink),
	}
}

// SolveAttributes возвращает атрибуты решения
func SolveAttributes(algorithm, verdict string, maxFlow float64) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrAlgorithm, algorithm),
		attribute.String(AttrVerdict, verdict),
		attribute.Float64(AttrMaxFlow, maxFlow),
	}
}

// ValidationAttributes возвращает атрибуты валидации
func ValidationAttributes(errorsCount int, passed bool) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(AttrValidationErrors, errorsCount),
		attribute.Bool(AttrValidationPassed, passed),
	}
}

// PlanAttributes возвращает атрибуты планирования фабрики
func PlanAttributes(targetItem string, ratePerMin float64, recipes int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrPlanTarget, targetItem),
		attribute.Float64(AttrPlanRate, ratePerMin),
		attribute.Int(AttrPlanRecipes, recipes),
	}
}
