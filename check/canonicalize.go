package check

import "github.com/grammarworks/stackc/graph"

// canonicalize renumbers dfa's states in breadth-first order starting
// from Initial, so that two semantically identical graphs — however
// differently their combinators happened to allocate ids along the way —
// compile to byte-for-byte identical DFAGraph values (spec 8's "compiling
// the same combinator expression twice yields the same graph").
func canonicalize(dfa *graph.DFAGraph) *graph.DFAGraph {
	order := make([]graph.StateID, 0, len(dfa.States))
	newID := make(map[graph.StateID]graph.StateID, len(dfa.States))
	queue := []graph.StateID{dfa.Initial}
	newID[dfa.Initial] = 0
	order = append(order, dfa.Initial)

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		s := dfa.ByID(id)
		if s == nil {
			continue
		}
		discover := func(id graph.StateID) {
			if _, seen := newID[id]; !seen {
				newID[id] = graph.StateID(len(order))
				order = append(order, id)
				queue = append(queue, id)
			}
		}
		for _, t := range arms(s.Dispatch) {
			discover(t.Next)
			if t.Kind == graph.Call || t.Kind == graph.Return {
				discover(t.Dest)
			}
		}
	}
	// Any state unreachable from Initial (dead code the combinators never
	// produce, but a hand-built graph might) is dropped: canonical order
	// only promises identity for the live part of the graph.

	arena := graph.NewArena()
	for range order {
		arena.Reserve()
	}
	remap := func(id graph.StateID) graph.StateID { return newID[id] }
	for _, old := range order {
		src := dfa.ByID(old)
		ns := &graph.State{NonAcceptance: append([]string(nil), src.NonAcceptance...), Tag: src.Tag, AcceptAction: src.AcceptAction}
		ns.Dispatch = remapCurried(src.Dispatch, remap)
		arena.Set(remap(old), ns)
	}
	return arena.DFA(0)
}
