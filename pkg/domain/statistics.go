package domain

// FlowStatistics статистика потока по результату решения
type FlowStatistics struct {
	TotalFlow          float64
	ActiveEdges        int64
	SaturatedEdges     int64
	ForcedEdges        int64
	UnboundedEdges     int64
	AverageUtilization float64
	Bottlenecks        []EdgeRef
}

// CalculateFlowStatistics вычисляет статистику потока по исходной задаче
// и восстановленным потокам. Утилизация считается только по рёбрам
// с конечной верхней границей.
func CalculateFlowStatistics(p *Problem, flows []EdgeFlow) *FlowStatistics {
	stats := &FlowStatistics{
		Bottlenecks: make([]EdgeRef, 0),
	}

	bounds := make(map[EdgeRef]Edge, len(p.Edges))
	for _, e := range p.Edges {
		bounds[e.Ref()] = e
	}

	var totalUtilization float64
	var boundedEdges int64

	for _, f := range flows {
		if !IsPositive(f.Flow) {
			continue
		}
		stats.ActiveEdges++

		if f.To == p.Sink {
			stats.TotalFlow += f.Flow
		}

		edge, ok := bounds[f.Ref()]
		if !ok {
			continue
		}

		if IsPositive(edge.Lower) && FloatEquals(f.Flow, edge.Lower) {
			stats.ForcedEdges++
		}

		if IsUnbounded(edge.Upper) {
			stats.UnboundedEdges++
			continue
		}
		if edge.Upper <= Epsilon {
			continue
		}

		utilization := f.Flow / edge.Upper
		totalUtilization += utilization
		boundedEdges++

		if utilization >= 1.0-Epsilon {
			stats.SaturatedEdges++
			stats.Bottlenecks = append(stats.Bottlenecks, f.Ref())
		}
	}

	if boundedEdges > 0 {
		stats.AverageUtilization = totalUtilization / float64(boundedEdges)
	}

	return stats
}

// BottleneckSeverity уровень критичности узкого места
type BottleneckSeverity int

const (
	SeverityLow BottleneckSeverity = iota + 1
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

// String возвращает строковое представление уровня критичности
func (s BottleneckSeverity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// BottleneckInfo информация об узком месте
type BottleneckInfo struct {
	Edge        EdgeRef
	Utilization float64
	ImpactScore float64
	Severity    BottleneckSeverity
}

// FindBottlenecks находит рёбра с утилизацией выше порога
func FindBottlenecks(p *Problem, flows []EdgeFlow, threshold float64) []*BottleneckInfo {
	bounds := make(map[EdgeRef]Edge, len(p.Edges))
	for _, e := range p.Edges {
		bounds[e.Ref()] = e
	}

	var totalFlow float64
	for _, f := range flows {
		totalFlow += f.Flow
	}

	var bottlenecks []*BottleneckInfo
	for _, f := range flows {
		edge, ok := bounds[f.Ref()]
		if !ok || IsUnbounded(edge.Upper) || edge.Upper <= Epsilon {
			continue
		}

		utilization := f.Flow / edge.Upper
		if utilization < threshold {
			continue
		}

		var severity BottleneckSeverity
		switch {
		case utilization >= CriticalUtilizationThreshold:
			severity = SeverityCritical
		case utilization >= HighUtilizationThreshold:
			severity = SeverityHigh
		case utilization >= MediumUtilizationThreshold:
			severity = SeverityMedium
		default:
			severity = SeverityLow
		}

		impactScore := 0.0
		if totalFlow > Epsilon {
			impactScore = f.Flow / totalFlow
		}

		bottlenecks = append(bottlenecks, &BottleneckInfo{
			Edge:        f.Ref(),
			Utilization: utilization,
			ImpactScore: impactScore,
			Severity:    severity,
		})
	}

	return bottlenecks
}
