// Package factory plans production chains over crafting recipes.
//
// A scenario lists recipes (machine, craft time, items in and out), machine
// speeds with optional module effects, raw-supply and machine-count limits,
// and a target item rate. Planning runs in two phases:
//
//  1. Meet the requested target rate exactly while spending as few
//     machines as possible.
//  2. If no plan can meet the rate, find the maximum feasible rate instead
//     and name the limits it is pressed against.
//
// Both phases are linear programs over per-recipe craft rates: every
// intermediate item must balance to zero, the target item to the requested
// rate, machine counts and raw supplies stay under their caps, and raw
// items are never net-produced. The programs are assembled in standard form
// and solved with gonum's Simplex.
package factory

import (
	"errors"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"beltflow/pkg/apperror"
	"beltflow/pkg/domain"
)

// planTol separates real production from solver noise.
const planTol = domain.Epsilon

// HintFundamental is reported when even the relaxed program admits no
// production of the target at all.
const HintFundamental = "Problem is fundamentally infeasible"

// Plan is the outcome of a planning run. The verdict decides which field
// group is populated.
type Plan struct {
	Verdict domain.Verdict

	// VerdictOK: the requested rate is met.
	PerRecipeCrafts  map[string]float64 // crafts per minute, per recipe
	PerMachineCounts map[string]float64 // fractional machine counts, per type
	RawConsumption   map[string]float64 // raw intake per minute, per item

	// VerdictInfeasible: the best the limits allow.
	MaxFeasibleRate float64
	Bottlenecks     []string

	// VerdictError.
	Err error
}

// prep is everything the two phases share: deterministic orderings, the
// per-recipe effective rates, and the assembled constraint blocks.
type prep struct {
	recipes  []string
	machines []string
	rawItems []string
	eqItems  []string // sorted intermediates, target last

	itemIdx   map[string]int
	cost      []float64   // machines needed per craft/min, by recipe
	machineOf []int       // recipe index -> machine index
	net       [][]float64 // net item amounts per craft, [recipe][item]

	targetItem string
	targetRate float64

	// Equality block over the recipe variables, rows follow eqItems.
	eqA [][]float64
	eqB []float64

	// Machine caps, then per raw item a net<=0 row and a supply row.
	ineq []ineqRow
}

// Solve plans the scenario: phase 1 meets the requested rate at minimum
// machine cost, phase 2 finds the best feasible rate when phase 1 cannot.
func Solve(s *Scenario) Plan {
	if s == nil {
		return Plan{Verdict: domain.VerdictError, Err: apperror.New(apperror.CodeNilInput, "scenario is nil")}
	}

	p, err := prepare(s)
	if err != nil {
		return Plan{Verdict: domain.VerdictError, Err: err}
	}

	x, err := phase1(p)
	if err == nil {
		return successPlan(p, x)
	}
	if !errors.Is(err, lp.ErrInfeasible) {
		return Plan{
			Verdict: domain.VerdictError,
			Err:     apperror.Wrap(err, apperror.CodeAlgorithmError, "machine-minimizing optimization failed"),
		}
	}

	x, rate, err := phase2(p)
	if err != nil {
		// Even the relaxed program has no answer.
		return Plan{
			Verdict:     domain.VerdictInfeasible,
			Bottlenecks: []string{HintFundamental},
		}
	}
	if rate < planTol {
		rate = 0
	}
	return Plan{
		Verdict:         domain.VerdictInfeasible,
		MaxFeasibleRate: rate,
		Bottlenecks:     bottlenecks(p, x, rate),
	}
}

// prepare validates the scenario and assembles the shared program data.
// Orderings are sorted so identical scenarios produce identical programs.
func prepare(s *Scenario) (*prep, error) {
	if s.Target.Item == "" {
		return nil, apperror.New(apperror.CodeMissingTarget, "a target item must be specified")
	}

	p := &prep{
		recipes:    sortedKeys(s.Recipes),
		machines:   sortedKeys(s.Machines),
		rawItems:   sortedKeys(s.Limits.RawSupplyPerMin),
		targetItem: s.Target.Item,
		targetRate: s.Target.RatePerMin,
	}

	universe := make(map[string]struct{})
	for _, r := range s.Recipes {
		for item := range r.In {
			universe[item] = struct{}{}
		}
		for item := range r.Out {
			universe[item] = struct{}{}
		}
	}
	universe[s.Target.Item] = struct{}{}

	items := make([]string, 0, len(universe))
	for item := range universe {
		items = append(items, item)
	}
	sort.Strings(items)
	p.itemIdx = make(map[string]int, len(items))
	for i, item := range items {
		p.itemIdx[item] = i
	}

	raw := make(map[string]struct{}, len(p.rawItems))
	for _, item := range p.rawItems {
		raw[item] = struct{}{}
	}
	for _, item := range items {
		if _, isRaw := raw[item]; isRaw || item == s.Target.Item {
			continue
		}
		p.eqItems = append(p.eqItems, item)
	}
	p.eqItems = append(p.eqItems, s.Target.Item)

	machineIdx := make(map[string]int, len(p.machines))
	for i, m := range p.machines {
		machineIdx[m] = i
	}

	p.cost = make([]float64, len(p.recipes))
	p.machineOf = make([]int, len(p.recipes))
	p.net = make([][]float64, len(p.recipes))
	for j, name := range p.recipes {
		r := s.Recipes[name]

		mi, ok := machineIdx[r.Machine]
		if !ok {
			return nil, apperror.NewWithField(apperror.CodeUnknownMachine,
				fmt.Sprintf("recipe %q uses unknown machine %q", name, r.Machine),
				"recipes."+name)
		}
		if r.TimeS <= 0 {
			return nil, apperror.NewWithField(apperror.CodeInvalidRecipe,
				fmt.Sprintf("recipe %q craft time must be positive, got %g", name, r.TimeS),
				"recipes."+name)
		}

		mod := s.Modules[r.Machine]
		eff := s.Machines[r.Machine].CraftsPerMin * (1 + mod.Speed) * 60 / r.TimeS
		if eff <= 0 {
			return nil, apperror.NewWithField(apperror.CodeInvalidRecipe,
				fmt.Sprintf("recipe %q has a non-positive effective craft rate", name),
				"recipes."+name)
		}
		p.cost[j] = 1 / eff
		p.machineOf[j] = mi

		row := make([]float64, len(items))
		for item, amt := range r.In {
			row[p.itemIdx[item]] -= amt
		}
		for item, amt := range r.Out {
			row[p.itemIdx[item]] += amt * (1 + mod.Prod)
		}
		p.net[j] = row
	}

	p.eqA = make([][]float64, len(p.eqItems))
	p.eqB = make([]float64, len(p.eqItems))
	for i, item := range p.eqItems {
		row := make([]float64, len(p.recipes))
		for j := range p.recipes {
			row[j] = p.net[j][p.itemIdx[item]]
		}
		p.eqA[i] = row
	}
	p.eqB[len(p.eqB)-1] = s.Target.RatePerMin

	// Machine-count caps. A machine type with no cap contributes no row.
	for i, m := range p.machines {
		limit, capped := s.Limits.MaxMachines[m]
		if !capped {
			continue
		}
		row := make([]float64, len(p.recipes))
		for j := range p.recipes {
			if p.machineOf[j] == i {
				row[j] = p.cost[j]
			}
		}
		p.ineq = append(p.ineq, ineqRow{coeffs: row, bound: limit, hint: m + " cap"})
	}

	// Raw items are never net-produced, and their intake is capped.
	for _, item := range p.rawItems {
		ii, known := p.itemIdx[item]
		produced := make([]float64, len(p.recipes))
		consumed := make([]float64, len(p.recipes))
		if known {
			for j := range p.recipes {
				produced[j] = p.net[j][ii]
				consumed[j] = -p.net[j][ii]
			}
		}
		p.ineq = append(p.ineq, ineqRow{coeffs: produced, bound: 0})
		p.ineq = append(p.ineq, ineqRow{
			coeffs: consumed,
			bound:  s.Limits.RawSupplyPerMin[item],
			hint:   item + " supply",
		})
	}

	return p, nil
}

// phase1 solves for the requested rate, minimizing total machines.
func phase1(p *prep) ([]float64, error) {
	eqA, eqB, ok := reduceRows(copyMatrix(p.eqA), append([]float64(nil), p.eqB...), planTol)
	if !ok {
		return nil, lp.ErrInfeasible
	}
	return solveStandard(p.cost, eqA, eqB, p.ineq, len(p.recipes))
}

// phase2 relaxes the target to a rate variable and maximizes it under the
// same constraints. Returns the recipe rates and the achieved target rate.
func phase2(p *prep) ([]float64, float64, error) {
	nx := len(p.recipes) + 1

	cost := make([]float64, nx)
	cost[nx-1] = -1 // maximize the rate variable

	eqA := make([][]float64, len(p.eqA))
	for i, row := range p.eqA {
		wide := make([]float64, nx)
		copy(wide, row)
		eqA[i] = wide
	}
	eqA[len(eqA)-1][nx-1] = -1 // tie the target row to the rate variable
	eqB := make([]float64, len(p.eqB))

	ineq := make([]ineqRow, len(p.ineq))
	for k, row := range p.ineq {
		wide := make([]float64, nx)
		copy(wide, row.coeffs)
		ineq[k] = ineqRow{coeffs: wide, bound: row.bound, hint: row.hint}
	}

	eqA, eqB, ok := reduceRows(eqA, eqB, planTol)
	if !ok {
		return nil, 0, lp.ErrInfeasible
	}
	x, err := solveStandard(cost, eqA, eqB, ineq, nx)
	if err != nil {
		return nil, 0, err
	}
	return x[:nx-1], x[nx-1], nil
}

// successPlan shapes a phase-1 optimum the way the wire format reports it:
// noise below tolerance reads as zero, and every machine type and raw item
// appears even when unused.
func successPlan(p *prep, x []float64) Plan {
	crafts := make(map[string]float64, len(p.recipes))
	perMachine := make(map[string]float64, len(p.machines))
	raw := make(map[string]float64, len(p.rawItems))
	for _, m := range p.machines {
		perMachine[m] = 0
	}

	for j, name := range p.recipes {
		v := x[j]
		if v < planTol {
			v = 0
		}
		crafts[name] = v
		if v > 0 {
			perMachine[p.machines[p.machineOf[j]]] += p.cost[j] * v
		}
	}

	for _, item := range p.rawItems {
		consumed := 0.0
		if ii, known := p.itemIdx[item]; known {
			for j := range p.recipes {
				if x[j] > 0 {
					consumed -= p.net[j][ii] * x[j]
				}
			}
		}
		if consumed < planTol {
			consumed = 0
		}
		raw[item] = consumed
	}

	return Plan{
		Verdict:          domain.VerdictOK,
		PerRecipeCrafts:  crafts,
		PerMachineCounts: perMachine,
		RawConsumption:   raw,
	}
}

// bottlenecks replays the capped rows against the best achievable plan and
// names every limit it is pressed against, sorted and deduplicated. A zero
// rate with nothing binding means no chain reaches the target at all.
func bottlenecks(p *prep, x []float64, rate float64) []string {
	seen := make(map[string]struct{})
	for _, row := range p.ineq {
		if row.hint == "" {
			continue
		}
		if floats.Dot(row.coeffs, x) >= row.bound-planTol {
			seen[row.hint] = struct{}{}
		}
	}
	if rate < planTol && len(seen) == 0 {
		return []string{HintFundamental}
	}

	hints := make([]string, 0, len(seen))
	for h := range seen {
		hints = append(hints, h)
	}
	sort.Strings(hints)
	return hints
}

func copyMatrix(a [][]float64) [][]float64 {
	out := make([][]float64, len(a))
	for i, row := range a {
		out[i] = append([]float64(nil), row...)
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
