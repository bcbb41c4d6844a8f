package combinator

import (
	"github.com/grammarworks/stackc/graph"
)

// Sequence runs a to completion, then b. Accepting states of the result
// are exactly b's accepting states (spec 4.1): a's own accepting states
// are spliced into b's initial index by a plain (no stack op) Epsilon
// edge and are no longer themselves accepting in the composite, so that
// Sequence(Empty(), p).Equal(p) and Sequence(p, Empty()).Equal(p) hold
// for any p — "accept" after a now means "b accepts the empty suffix",
// not "a accepted".
func Sequence(a, b Parser) Parser {
	arena, relabel := graph.Merge(a.Graph, b.Graph)
	relabelA, relabelB := relabel[0], relabel[1]

	bInitial := make([]graph.StateID, len(b.Graph.Initial))
	for i, id := range b.Graph.Initial {
		bInitial[i] = relabelB(id)
	}

	for _, s := range a.Graph.States {
		if !s.Accepting() {
			continue
		}
		merged := arena.At(relabelA(s.ID))
		merged.NonAcceptance = append(merged.NonAcceptance, "sequence: awaiting right operand")
		// Leave Action at its zero value when the operand carries no
		// ExitAction (the overwhelming majority of splices): package
		// check's action composer treats a zero TaggedAction as "nothing
		// to run" and skips straight to whatever fires next, with no new
		// Tag minted — composite operators must never call stackc.Tag
		// themselves (see tags.go).
		merged.Eps = append(merged.Eps, graph.Epsilon{Targets: bInitial, Action: merged.ExitAction})
	}

	aInitial := make([]graph.StateID, len(a.Graph.Initial))
	for i, id := range a.Graph.Initial {
		aInitial[i] = relabelA(id)
	}
	pending := append(relabelPendingReturns(a.PendingReturns, relabelA), relabelPendingReturns(b.PendingReturns, relabelB)...)
	return Parser{Graph: arena.Graph(aInitial...), Tag: "sequence", PendingReturns: pending}
}

// Alternation runs a and b at once; the result's initial index and
// accepting states are simply the union of both operands' (spec 4.1),
// since the Index of an NFA is already a set.
func Alternation(a, b Parser) Parser {
	arena, relabel := graph.Merge(a.Graph, b.Graph)
	relabelA, relabelB := relabel[0], relabel[1]

	var initial []graph.StateID
	for _, id := range a.Graph.Initial {
		initial = append(initial, relabelA(id))
	}
	for _, id := range b.Graph.Initial {
		initial = append(initial, relabelB(id))
	}
	pending := append(relabelPendingReturns(a.PendingReturns, relabelA), relabelPendingReturns(b.PendingReturns, relabelB)...)
	return Parser{Graph: arena.Graph(initial...), Tag: "alternation", PendingReturns: pending}
}
