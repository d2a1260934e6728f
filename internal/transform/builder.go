// Package transform reduces a flow problem with lower bounds and node
// capacities to a plain max-flow instance, and maps solver output back to
// the original network.
//
// The reduction is the classic lower-bounds transformation:
//
//  1. Every capped node (except the sink and the sources) is split into an
//     in-facet and an out-facet joined by an edge whose capacity is the cap.
//  2. Every original edge (u, v, lower, upper) becomes a transformed edge
//     out(u) -> in(v) with capacity upper - lower; the mandatory lower part
//     is moved into per-node balances.
//  3. A supersource feeds every node owed flow by lower bounds and every
//     declared source; a supersink drains nodes with surplus and the real
//     sink.
//
// The instance is feasible iff the max flow from supersource to supersink
// saturates the total expected flow (lower-bound demand plus supply).
package transform

import (
	"fmt"
	"sort"

	"beltflow/internal/graph"
	"beltflow/pkg/apperror"
	"beltflow/pkg/domain"
)

// FacetPair holds the residual-graph node ids a single original node was
// mapped to. For unsplit nodes In == Out.
type FacetPair struct {
	In  int64
	Out int64
}

// EdgeRecord ties an original edge to its transformed counterpart so flows
// and cuts can be mapped back after solving.
type EdgeRecord struct {
	Edge      domain.Edge
	FromFacet int64
	ToFacet   int64
}

// BuildInfo carries everything Build learned about the instance: the
// node-to-facet interning, the edge records, and the flow totals that
// decide feasibility.
type BuildInfo struct {
	facets map[string]FacetPair
	owners map[int64]string
	split  []string

	Records []EdgeRecord

	Tolerance        float64
	TotalSupply      float64
	TotalLowerDemand float64
	TotalExpected    float64
}

// InFacet returns the residual-graph id of the node's in-facet.
func (bi *BuildInfo) InFacet(node string) (int64, bool) {
	pair, ok := bi.facets[node]
	return pair.In, ok
}

// OutFacet returns the residual-graph id of the node's out-facet.
func (bi *BuildInfo) OutFacet(node string) (int64, bool) {
	pair, ok := bi.facets[node]
	return pair.Out, ok
}

// Owner returns the original node a facet id belongs to.
func (bi *BuildInfo) Owner(facet int64) (string, bool) {
	owner, ok := bi.owners[facet]
	return owner, ok
}

// IsSplit reports whether the node was split into two facets.
func (bi *BuildInfo) IsSplit(node string) bool {
	pair, ok := bi.facets[node]
	return ok && pair.In != pair.Out
}

// SplitNodes returns the names of all split nodes in sorted order.
func (bi *BuildInfo) SplitNodes() []string {
	return bi.split
}

// Trivial reports whether the instance needs no solve at all: with no
// expected flow the empty assignment is already maximal.
func (bi *BuildInfo) Trivial() bool {
	return bi.TotalExpected <= bi.Tolerance
}

// Validate checks a problem against the representable domain. All checks
// run in a deterministic order and every violation is collected, so callers
// can report either the first error or the whole list.
func Validate(p *domain.Problem, tol float64) *apperror.ValidationErrors {
	verr := apperror.NewValidationErrors()

	if p.Sink == "" {
		verr.Add(apperror.ErrMissingSink)
	}

	for _, name := range p.SortedSources() {
		supply := p.Sources[name]
		if supply < 0 {
			verr.AddErrorWithField(apperror.CodeNegativeValue,
				fmt.Sprintf("supply must be non-negative, got %g", supply),
				"sources."+name)
		}
	}

	for _, name := range p.SortedCappedNodes() {
		capacity := p.NodeCaps[name]
		if capacity < 0 {
			verr.AddErrorWithField(apperror.CodeNegativeValue,
				fmt.Sprintf("node cap must be non-negative, got %g", capacity),
				"node_caps."+name)
		}
	}

	seen := make(map[domain.EdgeRef]struct{}, len(p.Edges))
	for i, e := range p.Edges {
		field := fmt.Sprintf("edges[%d]", i)

		if e.From == e.To {
			verr.AddErrorWithField(apperror.CodeSelfLoop,
				fmt.Sprintf("self-loop %s cannot carry flow", e.Ref()), field)
		}

		if e.Lower < 0 {
			verr.AddErrorWithField(apperror.CodeNegativeValue,
				fmt.Sprintf("lower bound must be non-negative, got %g", e.Lower), field)
		}
		if e.Upper < 0 {
			verr.AddErrorWithField(apperror.CodeNegativeValue,
				fmt.Sprintf("upper bound must be non-negative, got %g", e.Upper), field)
		}

		if e.Lower-e.Upper > tol {
			verr.AddErrorWithField(apperror.CodeBoundsConflict,
				fmt.Sprintf("edge %s has upper %g below lower %g", e.Ref(), e.Upper, e.Lower),
				field)
		}

		ref := e.Ref()
		if _, dup := seen[ref]; dup {
			verr.AddErrorWithField(apperror.CodeDuplicateEdge,
				fmt.Sprintf("duplicate edge %s", ref), field)
		}
		seen[ref] = struct{}{}
	}

	return verr
}

// Build validates the problem and constructs the transformed residual graph
// together with the BuildInfo needed to interpret solver output.
//
// The returned graph is solved from domain.SuperSourceID to
// domain.SuperSinkID. Build never invokes the solver itself; callers decide
// whether a solve is needed (see BuildInfo.Trivial).
func Build(p *domain.Problem, tol float64) (*graph.ResidualGraph, *BuildInfo, error) {
	if p == nil {
		return nil, nil, apperror.ErrNilProblem
	}
	if verr := Validate(p, tol); verr.HasErrors() {
		return nil, nil, verr.First()
	}

	info := internNodes(p)
	info.Tolerance = tol

	g := graph.NewResidualGraph()
	g.AddNode(domain.SuperSourceID)
	g.AddNode(domain.SuperSinkID)

	// Facet nodes and split edges, in sorted node order.
	for _, name := range sortedFacetNames(info.facets) {
		pair := info.facets[name]
		g.AddNode(pair.In)
		if pair.In != pair.Out {
			g.AddNode(pair.Out)
			g.AddEdgeWithReverse(pair.In, pair.Out, p.NodeCaps[name])
		}
	}

	// Transformed edges. The lower bound moves out of the edge capacity and
	// into the balance of its endpoints.
	balance := make(map[string]float64, len(info.facets))
	for _, e := range p.Edges {
		balance[e.From] = 0
		balance[e.To] = 0
	}
	for _, e := range p.Edges {
		span := e.Span()
		if !domain.IsUnbounded(span) && span <= tol {
			span = 0
		}

		from, _ := info.OutFacet(e.From)
		to, _ := info.InFacet(e.To)
		g.AddEdgeWithReverse(from, to, span)

		info.Records = append(info.Records, EdgeRecord{Edge: e, FromFacet: from, ToFacet: to})
		balance[e.From] -= e.Lower
		balance[e.To] += e.Lower
	}

	// Demand edges: nodes owed flow hang off the supersource, nodes with
	// surplus drain into the supersink.
	for _, name := range sortedBalanceNames(balance) {
		b := balance[name]
		switch {
		case b > tol:
			in, _ := info.InFacet(name)
			g.AddEdgeWithReverse(domain.SuperSourceID, in, b)
			info.TotalLowerDemand += b
		case b < -tol:
			out, _ := info.OutFacet(name)
			g.AddEdgeWithReverse(out, domain.SuperSinkID, -b)
		}
	}

	// Supply edges.
	for _, name := range p.SortedSources() {
		out, _ := info.OutFacet(name)
		g.AddEdgeWithReverse(domain.SuperSourceID, out, p.Sources[name])
	}
	info.TotalSupply = p.TotalSupply()

	// The sink drains into the supersink. With a fully unbounded supply the
	// sink edge must not become the limiting factor.
	sinkCap := info.TotalSupply
	if !p.HasFiniteSupply() {
		sinkCap = domain.Infinity
	}
	sinkIn, _ := info.InFacet(p.Sink)
	g.AddEdgeWithReverse(sinkIn, domain.SuperSinkID, sinkCap)

	info.TotalExpected = info.TotalLowerDemand + info.TotalSupply

	return g, info, nil
}

// internNodes assigns dense non-negative ids to every node the problem
// mentions: edge endpoints, sources, the sink, and capped nodes. Capped
// nodes that are neither the sink nor a source receive two ids (in-facet
// first). Assignment follows sorted name order, so ids are deterministic.
func internNodes(p *domain.Problem) *BuildInfo {
	universe := make(map[string]struct{}, len(p.Edges)*2)
	for _, e := range p.Edges {
		universe[e.From] = struct{}{}
		universe[e.To] = struct{}{}
	}
	for name := range p.Sources {
		universe[name] = struct{}{}
	}
	if p.Sink != "" {
		universe[p.Sink] = struct{}{}
	}
	for name := range p.NodeCaps {
		universe[name] = struct{}{}
	}

	names := make([]string, 0, len(universe))
	for name := range universe {
		names = append(names, name)
	}
	sort.Strings(names)

	info := &BuildInfo{
		facets: make(map[string]FacetPair, len(names)),
		owners: make(map[int64]string, len(names)+len(p.NodeCaps)),
	}

	var next int64
	for _, name := range names {
		_, capped := p.NodeCaps[name]
		if capped && name != p.Sink && !p.IsSource(name) {
			pair := FacetPair{In: next, Out: next + 1}
			next += 2
			info.facets[name] = pair
			info.owners[pair.In] = name
			info.owners[pair.Out] = name
			info.split = append(info.split, name)
			continue
		}
		info.facets[name] = FacetPair{In: next, Out: next}
		info.owners[next] = name
		next++
	}

	return info
}

func sortedFacetNames(facets map[string]FacetPair) []string {
	names := make([]string, 0, len(facets))
	for name := range facets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func sortedBalanceNames(balance map[string]float64) []string {
	names := make([]string, 0, len(balance))
	for name := range balance {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
