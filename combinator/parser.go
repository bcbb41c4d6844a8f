/*
Package combinator implements the parser-combinator surface: small,
independently-meaningful constructors (Empty, Any, Filter, Range, Toss,
Ignore, Produce) and the two connectives that compose them into bigger
parsers (Sequence, Alternation) plus the one that introduces a stack
discipline (Region). Every constructor returns a Parser wrapping a fresh,
disjointly-numbered graph.NFAGraph; nothing is ever shared mutably between
two Parser values, so composing a Parser twice (e.g. Alternation(p, p))
is always safe.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package combinator

import (
	"fmt"

	"github.com/grammarworks/stackc"
	"github.com/grammarworks/stackc/graph"
)

// Parser wraps a nondeterministic parser graph together with a breadcrumb
// tag identifying the combinator call site that produced it, for
// diagnostics surfaced later by package check.
type Parser struct {
	Graph *graph.NFAGraph
	Tag   string

	// PendingReturns carries Region's close-continuation wiring that
	// could not be attached yet because, at the time the enclosing
	// Region ran, its inner operand's real accepting states did not
	// exist — the case of inner being a Recursive placeholder still
	// waiting for its builder to return (see Recursive). Every Region
	// call appends one entry, keyed by its inner operand's own Tag, and
	// every composing combinator (Sequence, Alternation, Region itself)
	// propagates the operands' entries through unchanged but relabeled.
	// Recursive is the only consumer: it matches entries whose SelfTag
	// is its own placeholder's tag and resolves them once the
	// placeholder has been replaced by real states; any entry that
	// doesn't match bubbles up for an enclosing Recursive to resolve
	// (mutual recursion). An entry nothing ever resolves is simply
	// inert metadata — the overwhelmingly common case, since most Tags
	// never match any placeholder's.
	PendingReturns []PendingReturn
}

// PendingReturn is one not-yet-attached Region continuation: Marker is a
// state whose Dispatch is already exactly the Return arms that should
// fire once whatever SelfTag names (usually a Recursive placeholder)
// finishes; resolving it means epsilon-linking every one of that
// parser's real accepting states to Marker.
type PendingReturn struct {
	SelfTag string
	Marker  graph.StateID
}

func relabelPendingReturns(prs []PendingReturn, relabel func(graph.StateID) graph.StateID) []PendingReturn {
	if len(prs) == 0 {
		return nil
	}
	out := make([]PendingReturn, len(prs))
	for i, pr := range prs {
		out[i] = PendingReturn{SelfTag: pr.SelfTag, Marker: relabel(pr.Marker)}
	}
	return out
}

// Equal reports whether p and o accept the same language and run the same
// tagged actions along the way: a structural comparison of the two graphs
// starting at their initial indices, not a comparison of Go values. Two
// Parsers built from unrelated Tag calls with the same shape and the same
// underlying TaggedActions (by ActionID) compare Equal.
func (p Parser) Equal(o Parser) bool {
	return equalGraphs(p.Graph, p.Graph.Initial, o.Graph, o.Graph.Initial, map[pairKey]bool{})
}

type pairKey struct{ a, b uint64 }

func equalGraphs(g1 *graph.NFAGraph, s1 []graph.StateID, g2 *graph.NFAGraph, s2 []graph.StateID, seen map[pairKey]bool) bool {
	k1, k2 := stateSetKey(s1), stateSetKey(s2)
	key := pairKey{k1, k2}
	if seen[key] {
		return true // cycle: assume consistent, as-yet-unproven equality holds
	}
	seen[key] = true

	acc1, acc2 := graph.AnyAccepting(g1, s1), graph.AnyAccepting(g2, s2)
	if acc1 != acc2 {
		return false
	}

	d1 := graph.MergedDispatch(g1, s1)
	d2 := graph.MergedDispatch(g2, s2)
	if d1.AcceptAny != d2.AcceptAny {
		return false
	}
	if d1.AcceptAny {
		return transEqual(g1, d1.Any, g2, d2.Any, seen)
	}
	if len(d1.Ranges) != len(d2.Ranges) {
		return false
	}
	for i := range d1.Ranges {
		r1, r2 := d1.Ranges[i], d2.Ranges[i]
		if r1.Lo != r2.Lo || r1.Hi != r2.Hi {
			return false
		}
		if !transEqual(g1, r1.To, g2, r2.To, seen) {
			return false
		}
	}
	if (d1.Fallback == nil) != (d2.Fallback == nil) {
		return false
	}
	if d1.Fallback != nil {
		return transEqual(g1, *d1.Fallback, g2, *d2.Fallback, seen)
	}
	return true
}

func transEqual(g1 *graph.NFAGraph, t1 graph.Transition, g2 *graph.NFAGraph, t2 graph.Transition, seen map[pairKey]bool) bool {
	if t1.Kind != t2.Kind {
		return false
	}
	if !t1.Action.Equal(t2.Action) {
		return false
	}
	switch t1.Kind {
	case graph.Return:
		return true
	case graph.Call:
		// Destination symbols are per-graph StateIDs, so only the
		// detour shape is comparable across two different graphs.
		return equalGraphs(g1, []graph.StateID{t1.Next}, g2, []graph.StateID{t2.Next}, seen)
	default:
		return equalGraphs(g1, []graph.StateID{t1.Next}, g2, []graph.StateID{t2.Next}, seen)
	}
}

func stateSetKey(ids []graph.StateID) uint64 {
	var h uint64 = 1469598103934665603
	for _, id := range ids {
		h ^= uint64(id)
		h *= 1099511628211
	}
	return h
}

func tag(format string, args ...interface{}) string {
	return fmt.Sprintf(format, args...)
}

// Empty accepts the empty string and nothing else: one accepting state,
// no outgoing edges.
func Empty() Parser {
	a := graph.NewArena()
	id := a.Add(&graph.State{})
	return Parser{Graph: a.Graph(id), Tag: "empty"}
}

// Any accepts exactly one token, any token, running action.
func Any(action stackc.Action) Parser {
	return twoState(func(accept graph.StateID) graph.Curried {
		return graph.Curried{AcceptAny: true, Any: graph.Transition{
			Kind: graph.Lateral, Next: accept, Action: stackc.Tag(action),
		}}
	}, "any")
}

// Filter accepts exactly one token for which predicate holds, running
// action; any other token is rejected with a non-acceptance reason on the
// initial state. The predicate is never evaluated at parse time: package
// check probes it once per TokType below its alphabet bound (see
// check.AlphabetBound) and replaces it with concrete Ranges, plus a
// Fallback when it also holds at the bound itself. Every token at or
// beyond the bound is therefore treated as the predicate's answer at the
// bound.
func Filter(predicate func(stackc.TokType) bool, action stackc.Action) Parser {
	a := graph.NewArena()
	accept := a.Reserve()
	tagged := stackc.Tag(action)
	init := a.Add(&graph.State{
		Dispatch: graph.Curried{
			Predicate: &graph.PredicateEdge{
				Pred: predicate,
				To:   graph.Transition{Kind: graph.Lateral, Next: accept, Action: tagged},
			},
		},
		NonAcceptance: []string{"filter: token rejected by predicate"},
	})
	a.Set(accept, &graph.State{})
	return Parser{Graph: a.Graph(init), Tag: "filter"}
}

// Range accepts exactly one token t with lo <= t < hi, running action.
// Unlike Filter, the match is a concrete range, so determinization can
// preserve and partition it exactly (spec 4.1's "specialized so
// determinization can preserve the range").
func Range(lo, hi stackc.TokType, action stackc.Action) Parser {
	a := graph.NewArena()
	accept := a.Reserve()
	tagged := stackc.Tag(action)
	init := a.Add(&graph.State{
		Dispatch: graph.Curried{Ranges: []graph.RangeEdge{
			{Lo: lo, Hi: hi, To: graph.Transition{Kind: graph.Lateral, Next: accept, Action: tagged}},
		}},
		NonAcceptance: []string{tag("range: token outside [%d,%d)", lo, hi)},
	})
	a.Set(accept, &graph.State{})
	return Parser{Graph: a.Graph(init), Tag: "range"}
}

// Toss matches token t exactly, discarding it (Identity action).
func Toss(t stackc.TokType) Parser {
	return Range(t, t+1, stackc.Identity)
}

// Ignore is an alias for Toss: filter-by-equality with the identity
// action (spec 4.1 treats the two names as equivalent).
func Ignore(t stackc.TokType) Parser {
	return Toss(t)
}

// Produce consumes no token and accepts the empty string; f runs on the
// accumulator at the point the Produce sits. As the left operand of a
// Sequence it rides the epsilon splice into the right operand (see
// sequence.go); when a compiled run ends in its state (a standalone
// Produce, or one that is the last operand of a composition), package
// check makes f that state's end-of-input AcceptAction. In any other
// position f is not run and it behaves like Empty.
func Produce(f func(stackc.Accumulator) stackc.Accumulator) Parser {
	a := graph.NewArena()
	id := a.Add(&graph.State{
		ExitAction: stackc.Tag(func(_ stackc.Token, acc stackc.Accumulator) stackc.Accumulator {
			return f(acc)
		}),
	})
	return Parser{Graph: a.Graph(id), Tag: "produce"}
}

func twoState(build func(accept graph.StateID) graph.Curried, tagName string) Parser {
	a := graph.NewArena()
	accept := a.Reserve()
	init := a.Add(&graph.State{
		Dispatch:      build(accept),
		NonAcceptance: []string{tagName + ": expected a token"},
	})
	a.Set(accept, &graph.State{})
	return Parser{Graph: a.Graph(init), Tag: tagName}
}
