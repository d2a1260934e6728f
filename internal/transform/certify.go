package transform

import (
	"sort"

	"beltflow/pkg/domain"
)

// Certify explains why an instance is infeasible in terms of the original
// network, given the min-cut reachable set of the solved transformed graph.
//
// The certificate names the saturated frontier: split nodes whose internal
// edge lies on the cut (tight nodes), original edges crossing the cut (tight
// edges), and every original node with a reachable facet. The deficit is the
// flow the network failed to absorb; with an unbounded supply into a bounded
// network it is infinite and the output layer clamps it.
//
// A nil reachable set falls back to {supersource}: the certificate is then
// maximally conservative but still well-formed.
func Certify(reachable map[int64]bool, info *BuildInfo, maxFlow, totalExpected float64) *domain.Certificate {
	if reachable == nil {
		reachable = map[int64]bool{domain.SuperSourceID: true}
	}

	tightNodes := make([]string, 0)
	for _, name := range info.SplitNodes() {
		in, _ := info.InFacet(name)
		out, _ := info.OutFacet(name)
		if reachable[in] && !reachable[out] {
			tightNodes = append(tightNodes, name)
		}
	}

	tightEdges := make([]domain.EdgeRef, 0)
	seenEdges := make(map[domain.EdgeRef]struct{})
	for _, rec := range info.Records {
		if !reachable[rec.FromFacet] || reachable[rec.ToFacet] {
			continue
		}
		ref := rec.Edge.Ref()
		if _, dup := seenEdges[ref]; dup {
			continue
		}
		seenEdges[ref] = struct{}{}
		tightEdges = append(tightEdges, ref)
	}
	sort.Slice(tightEdges, func(i, j int) bool {
		return tightEdges[i].Less(tightEdges[j])
	})

	ownerSet := make(map[string]struct{})
	for facet, ok := range reachable {
		if !ok || domain.IsVirtualNode(facet) {
			continue
		}
		if owner, found := info.Owner(facet); found {
			ownerSet[owner] = struct{}{}
		}
	}
	cutReachable := make([]string, 0, len(ownerSet))
	for owner := range ownerSet {
		cutReachable = append(cutReachable, owner)
	}
	sort.Strings(cutReachable)

	return &domain.Certificate{
		CutReachable: cutReachable,
		Deficit: domain.Deficit{
			DemandBalance: totalExpected - maxFlow,
			TightNodes:    tightNodes,
			TightEdges:    tightEdges,
		},
	}
}
