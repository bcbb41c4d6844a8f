package graph

import "github.com/grammarworks/stackc"

// EpsilonClosure returns ids plus every state reachable purely via
// Epsilon edges (no token consumed). Package combinator uses it to reason
// about a not-yet-determinized NFA's acceptance/dispatch at a seam
// (Sequence, Region); package check runs the identical closure as the
// first step of subset construction.
func EpsilonClosure(g *NFAGraph, ids []StateID) []StateID {
	seen := map[StateID]bool{}
	var out []StateID
	var walk func(id StateID)
	walk = func(id StateID) {
		if seen[id] {
			return
		}
		seen[id] = true
		out = append(out, id)
		s := g.ByID(id)
		if s == nil {
			return
		}
		for _, e := range s.Eps {
			for _, t := range e.Targets {
				walk(t)
			}
		}
	}
	for _, id := range ids {
		walk(id)
	}
	return out
}

// ClosureMember is one state reached while computing an epsilon closure
// together with the composed action that must run, with no token
// consumed, on the way to reaching it — the zero TaggedAction for any
// member reached without crossing a non-nil Epsilon.Action.
type ClosureMember struct {
	ID     StateID
	Action stackc.TaggedAction
}

// EpsilonClosureWithActions is EpsilonClosure, but also composes every
// Epsilon.Action crossed along the way into the entry action recorded for
// each reached state — the mechanism that lets combinator.Produce's
// ExitAction (spliced onto a Sequence seam's Epsilon by
// combinator.Sequence) actually fire. compose combines an
// already-accumulated entry action with the next Epsilon.Action crossed,
// in that order. Only package check calls this; every other caller of
// EpsilonClosure has no composition policy to supply and doesn't need
// one. As with EpsilonClosure's own seen-guard, the first path reached to
// a given state wins; two distinct epsilon paths into the same state
// carrying different actions is not a case this resolves.
func EpsilonClosureWithActions(g *NFAGraph, ids []StateID, compose func(a, b stackc.TaggedAction) stackc.TaggedAction) []ClosureMember {
	seen := map[StateID]stackc.TaggedAction{}
	var order []StateID
	var walk func(id StateID, entry stackc.TaggedAction)
	walk = func(id StateID, entry stackc.TaggedAction) {
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = entry
		order = append(order, id)
		s := g.ByID(id)
		if s == nil {
			return
		}
		for _, e := range s.Eps {
			next := entry
			if e.Action.Fn != nil {
				next = compose(entry, e.Action)
			}
			for _, t := range e.Targets {
				walk(t, next)
			}
		}
	}
	for _, id := range ids {
		walk(id, stackc.TaggedAction{})
	}
	out := make([]ClosureMember, len(order))
	for i, id := range order {
		out[i] = ClosureMember{ID: id, Action: seen[id]}
	}
	return out
}

// AnyAccepting reports whether any state in the epsilon-closure of ids is
// itself accepting.
func AnyAccepting(g *NFAGraph, ids []StateID) bool {
	for _, id := range EpsilonClosure(g, ids) {
		if g.ByID(id).Accepting() {
			return true
		}
	}
	return false
}

// MergedDispatch concatenates the dispatch arms of every state in the
// epsilon-closure of ids. This is a plain union (arms simply appended),
// never a disjoint-partition refinement: the result can be — and, for any
// interesting NFA, usually is — nondeterministic, exactly like any other
// state-set reachable during subset construction. Only package check's
// subset construction actually resolves that nondeterminism into disjoint
// ranges; combinator.Region's bridge states and combinator.Parser.Equal
// both only need the union itself.
func MergedDispatch(g *NFAGraph, ids []StateID) Curried {
	var out Curried
	for _, id := range EpsilonClosure(g, ids) {
		s := g.ByID(id)
		if s.Dispatch.AcceptAny {
			out.AcceptAny = true
			out.Any = s.Dispatch.Any
		}
		out.Ranges = append(out.Ranges, s.Dispatch.Ranges...)
		if s.Dispatch.Predicate != nil && out.Predicate == nil {
			out.Predicate = s.Dispatch.Predicate
		}
		if s.Dispatch.Fallback != nil && out.Fallback == nil {
			f := *s.Dispatch.Fallback
			out.Fallback = &f
		}
	}
	return out
}
