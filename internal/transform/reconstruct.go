package transform

import (
	"sort"

	"beltflow/internal/graph"
	"beltflow/pkg/domain"
)

// Reconstruct maps the flow carried by a solved transformed graph back onto
// the original edges: each edge receives its transformed assignment plus its
// mandatory lower bound. Edges whose total stays within tolerance of zero
// are omitted; the rest are sorted by (from, to).
//
// A nil graph stands for the empty assignment. The trivial zero-demand
// instance uses it, and edges with balanced lower bounds still report their
// forced circulation.
func Reconstruct(g *graph.ResidualGraph, info *BuildInfo) []domain.EdgeFlow {
	flows := make([]domain.EdgeFlow, 0, len(info.Records))

	for _, rec := range info.Records {
		var assigned float64
		if g != nil {
			// Net of cancellations: the raw Flow field can overstate what
			// actually crosses the edge.
			assigned = domain.Max(g.NetFlowOnEdge(rec.FromFacet, rec.ToFacet), 0)
		}

		flow := assigned + rec.Edge.Lower
		if flow <= info.Tolerance {
			continue
		}

		flows = append(flows, domain.EdgeFlow{
			From: rec.Edge.From,
			To:   rec.Edge.To,
			Flow: flow,
		})
	}

	sort.Slice(flows, func(i, j int) bool {
		return flows[i].Ref().Less(flows[j].Ref())
	})

	return flows
}
