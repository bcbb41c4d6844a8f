package check

import (
	"github.com/grammarworks/stackc/diag"
	"github.com/grammarworks/stackc/graph"
)

// checkReturnReachability resolves spec's open question on Call/Return
// well-formedness: every Call pushes a destination symbol that some
// Return must eventually reach, or the region it belongs to can never
// finish. It is a structural proxy, not a proof: it treats every
// Transition's Next uniformly (a Return's Next is only a best-effort
// approximation of where it leads, carried for exactly this kind of
// diagnostic — see graph.Transition's doc comment), so it can tell
// "no Return anywhere leads toward this destination" but cannot tell
// "the Return that reaches it is the wrong one for this Call" — that is
// a same-level (context-free), not plain edge, reachability question.
// combinator.Region's closeContinuation and appendReturnArms tag every
// Return with the Dest it actually requires specifically so that the
// second, sharper question is answered at run time instead (interp.Run's
// Dest check, emit's threaded expect parameter), which is what lets two
// differently-closed Regions share one recursive body's accepting states
// — see combinator_test.go's dual-delimiter recursion case — without one
// region's closing token silently satisfying the other's Return.
func checkReturnReachability(dfa *graph.DFAGraph, bag *diag.Bag) {
	for _, s := range dfa.States {
		for _, t := range arms(s.Dispatch) {
			if t.Kind != graph.Call {
				continue
			}
			if !reachable(dfa, t.Next, t.Dest) {
				bag.Warnf([]string{s.Tag}, "call at state %d pushes destination state %d, detouring to %d, but no return path reaches it — this region can never resume", s.ID, t.Dest, t.Next)
			}
		}
	}
}

func arms(c graph.Curried) []graph.Transition {
	var out []graph.Transition
	if c.AcceptAny {
		out = append(out, c.Any)
	}
	for _, r := range c.Ranges {
		out = append(out, r.To)
	}
	if c.Fallback != nil {
		out = append(out, *c.Fallback)
	}
	return out
}

func reachable(dfa *graph.DFAGraph, from, to graph.StateID) bool {
	if from == to {
		return true
	}
	visited := map[graph.StateID]bool{from: true}
	queue := []graph.StateID{from}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		s := dfa.ByID(id)
		if s == nil {
			continue
		}
		for _, t := range arms(s.Dispatch) {
			if t.Next == to {
				return true
			}
			if !visited[t.Next] {
				visited[t.Next] = true
				queue = append(queue, t.Next)
			}
		}
	}
	return false
}
