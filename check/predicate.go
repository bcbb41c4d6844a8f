package check

import (
	"github.com/grammarworks/stackc"
	"github.com/grammarworks/stackc/graph"
)

// expandPredicates clones g, replacing every Curried.Predicate arm with
// concrete Ranges over [0, bound) plus, when the predicate still holds
// at bound, a Fallback — the same bounded-alphabet probing resolveDispatch
// uses for every other cell, applied once up front so that subset
// construction downstream never has to know Predicate existed. A
// Predicate and a Range/AcceptAny arm on the very same state are combined
// the obvious way: Dispatch already tries Ranges before Predicate, so the
// expansion below only ever fires for tokens the state's other arms don't
// already claim.
func expandPredicates(g *graph.NFAGraph, bound stackc.TokType) *graph.NFAGraph {
	needsExpansion := false
	for _, s := range g.States {
		if s.Dispatch.Predicate != nil {
			needsExpansion = true
			break
		}
	}
	if !needsExpansion {
		return g
	}

	states := make([]*graph.State, len(g.States))
	for i, s := range g.States {
		ns := *s
		if s.Dispatch.Predicate == nil {
			states[i] = &ns
			continue
		}
		pred := s.Dispatch.Predicate
		ns.Dispatch.Predicate = nil
		ns.Dispatch.Ranges = append([]graph.RangeEdge(nil), s.Dispatch.Ranges...)

		var runStart stackc.TokType
		inRun := false
		flush := func(hi stackc.TokType) {
			if inRun {
				ns.Dispatch.Ranges = append(ns.Dispatch.Ranges, graph.RangeEdge{Lo: runStart, Hi: hi, To: pred.To})
				inRun = false
			}
		}
		for tok := stackc.TokType(0); tok < bound; tok++ {
			_, claimed := (&graph.Curried{Ranges: s.Dispatch.Ranges}).Dispatch(tok)
			matches := !claimed && pred.Pred(tok)
			if matches && !inRun {
				runStart, inRun = tok, true
			} else if !matches && inRun {
				flush(tok)
			}
		}
		flush(bound)
		if ns.Dispatch.Fallback == nil && pred.Pred(bound) {
			t := pred.To
			ns.Dispatch.Fallback = &t
		}
		states[i] = &ns
	}
	return &graph.NFAGraph{States: states, Initial: append([]graph.StateID(nil), g.Initial...)}
}
