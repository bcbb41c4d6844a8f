package check

import (
	"fmt"
	"sort"
	"strings"

	"github.com/grammarworks/stackc/graph"
)

// mergeEquivalent runs a Hopcroft-style partition refinement: start with
// two blocks (accepting / not), then repeatedly split any block whose
// members disagree on where some input leads once targets are named by
// their *current* block rather than their raw StateID, until a fixed
// point is reached. Every state in every final block behaves identically
// under every input, so collapsing each block to one state preserves the
// accepted language and every action/combine along the way exactly.
//
// This only ever runs on a DFAGraph subsetConstruct itself produced,
// where every state's Ranges were cut from the same bounded-alphabet
// scan (see resolveDispatch) and so always align on the same
// breakpoints; a hand-assembled DFAGraph with differently-cut ranges
// that happen to cover equivalent behavior would not be merged by this
// pass. That is an acceptable scope limit for a reference minimizer.
func mergeEquivalent(dfa *graph.DFAGraph) *graph.DFAGraph {
	n := len(dfa.States)
	if n == 0 {
		return dfa
	}

	block := make([]int, n)
	for i, s := range dfa.States {
		if s.Accepting() {
			block[i] = 1
		}
	}

	for iter := 0; iter < n+1; iter++ {
		sig := make([]string, n)
		for i, s := range dfa.States {
			sig[i] = signature(block[i], s, block)
		}
		groups := map[string]int{}
		next := make([]int, n)
		changed := false
		for i, sg := range sig {
			id, ok := groups[sg]
			if !ok {
				id = len(groups)
				groups[sg] = id
			}
			next[i] = id
			if id != block[i] {
				changed = true
			}
		}
		block = next
		if !changed {
			break
		}
	}

	numBlocks := 0
	for _, b := range block {
		if b+1 > numBlocks {
			numBlocks = b + 1
		}
	}
	rep := make([]graph.StateID, numBlocks) // one representative original state per block
	repFound := make([]bool, numBlocks)
	for i, b := range block {
		if !repFound[b] {
			rep[b] = graph.StateID(i)
			repFound[b] = true
		}
	}

	arena := graph.NewArena()
	for b := 0; b < numBlocks; b++ {
		arena.Reserve()
	}
	blockOf := func(id graph.StateID) graph.StateID { return graph.StateID(block[id]) }
	for b := 0; b < numBlocks; b++ {
		src := dfa.States[rep[b]]
		ns := &graph.State{NonAcceptance: append([]string(nil), src.NonAcceptance...), Tag: src.Tag, AcceptAction: src.AcceptAction}
		ns.Dispatch = remapCurried(src.Dispatch, blockOf)
		arena.Set(graph.StateID(b), ns)
	}

	return arena.DFA(blockOf(dfa.Initial))
}

func signature(selfBlock int, s *graph.State, block []int) string {
	var b strings.Builder
	// AcceptAction.ID is part of the signature, not just s.Accepting():
	// two accepting states that differ only in which combinator.Produce
	// action fires at end of input are not interchangeable, even though
	// every other observable (dispatch, reachable Calls/Returns) agrees.
	fmt.Fprintf(&b, "%d|%t|%d|", selfBlock, s.Accepting(), s.AcceptAction.ID)
	arm := func(t graph.Transition) string {
		dest := -1
		if t.Kind == graph.Call || t.Kind == graph.Return {
			dest = int(t.Dest)
		}
		merge := "<nil>"
		if t.Merge != nil {
			merge = fmt.Sprintf("%p", t.Merge)
		}
		return fmt.Sprintf("%d:%d:%d:%s:%d", t.Kind, t.Action.ID, dest, merge, block[t.Next])
	}
	if s.Dispatch.AcceptAny {
		fmt.Fprintf(&b, "any:%s;", arm(s.Dispatch.Any))
	}
	ranges := append([]graph.RangeEdge(nil), s.Dispatch.Ranges...)
	sort.Slice(ranges, func(i, j int) bool { return ranges[i].Lo < ranges[j].Lo })
	for _, r := range ranges {
		fmt.Fprintf(&b, "r%d-%d:%s;", r.Lo, r.Hi, arm(r.To))
	}
	if s.Dispatch.Fallback != nil {
		fmt.Fprintf(&b, "fb:%s;", arm(*s.Dispatch.Fallback))
	}
	return b.String()
}

func remapCurried(c graph.Curried, blockOf func(graph.StateID) graph.StateID) graph.Curried {
	var out graph.Curried
	out.AcceptAny = c.AcceptAny
	if c.AcceptAny {
		out.Any = remapTransition(c.Any, blockOf)
	}
	for _, r := range c.Ranges {
		out.Ranges = append(out.Ranges, graph.RangeEdge{Lo: r.Lo, Hi: r.Hi, To: remapTransition(r.To, blockOf)})
	}
	if c.Fallback != nil {
		t := remapTransition(*c.Fallback, blockOf)
		out.Fallback = &t
	}
	return out
}

func remapTransition(t graph.Transition, blockOf func(graph.StateID) graph.StateID) graph.Transition {
	t.Next = blockOf(t.Next)
	if t.Kind == graph.Call || t.Kind == graph.Return {
		t.Dest = blockOf(t.Dest)
	}
	return t
}
