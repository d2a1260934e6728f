package domain

import (
	"fmt"
	"sort"
)

// EdgeRef ссылка на ребро исходной сети по паре узлов
type EdgeRef struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// String возвращает строковое представление ссылки
func (e EdgeRef) String() string {
	return fmt.Sprintf("%s->%s", e.From, e.To)
}

// Less задаёт порядок (from, to) для детерминированного вывода
func (e EdgeRef) Less(other EdgeRef) bool {
	if e.From != other.From {
		return e.From < other.From
	}
	return e.To < other.To
}

// Edge ребро транспортной сети с нижней и верхней границей пропускной способности.
// Upper == Infinity означает отсутствие верхней границы.
type Edge struct {
	From  string
	To    string
	Lower float64
	Upper float64
}

// Ref возвращает ссылку на ребро
func (e Edge) Ref() EdgeRef {
	return EdgeRef{From: e.From, To: e.To}
}

// Span возвращает дискреционную пропускную способность сверх нижней границы
func (e Edge) Span() float64 {
	if IsUnbounded(e.Upper) {
		return Infinity
	}
	return Max(e.Upper-e.Lower, 0)
}

// Problem описание одной задачи о допустимом потоке.
// Значение Infinity в Sources означает неограниченный источник.
type Problem struct {
	Sources  map[string]float64
	Sink     string
	Edges    []Edge
	NodeCaps map[string]float64
}

// IsSource проверяет, является ли узел источником
func (p *Problem) IsSource(node string) bool {
	_, ok := p.Sources[node]
	return ok
}

// TotalSupply возвращает суммарное предложение всех источников.
// Неограниченный источник делает сумму бесконечной.
func (p *Problem) TotalSupply() float64 {
	var total float64
	for _, supply := range p.Sources {
		total += supply
	}
	return total
}

// HasFiniteSupply проверяет, ограничен ли хотя бы один источник
func (p *Problem) HasFiniteSupply() bool {
	for _, supply := range p.Sources {
		if !IsUnbounded(supply) {
			return true
		}
	}
	return false
}

// TouchedNodes возвращает отсортированный список узлов, затронутых рёбрами
func (p *Problem) TouchedNodes() []string {
	seen := make(map[string]struct{}, len(p.Edges)*2)
	for _, e := range p.Edges {
		seen[e.From] = struct{}{}
		seen[e.To] = struct{}{}
	}
	nodes := make([]string, 0, len(seen))
	for n := range seen {
		nodes = append(nodes, n)
	}
	sort.Strings(nodes)
	return nodes
}

// SortedSources возвращает имена источников в отсортированном порядке
func (p *Problem) SortedSources() []string {
	names := make([]string, 0, len(p.Sources))
	for name := range p.Sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SortedCappedNodes возвращает имена узлов с ограничением в отсортированном порядке
func (p *Problem) SortedCappedNodes() []string {
	names := make([]string, 0, len(p.NodeCaps))
	for name := range p.NodeCaps {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
