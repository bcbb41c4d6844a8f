package combinator

import (
	"github.com/grammarworks/stackc/graph"
)

// Region builds a balanced open/inner/close construct: open runs, then a
// Call transition pushes "resume after close" and detours into inner;
// once inner finishes, a Return transition pops that destination and
// resumes running close. combine merges the accumulator open left behind
// (saved at the Call) with whatever inner's Return produced; nil means
// graph.KeepReturned.
//
// Region implements the open->inner seam by upgrading the real edges that
// land on open's accepting states into Calls. The inner->close seam is a
// plain Epsilon edge from each of inner's accepting states to a marker
// state whose arms are close's leading arms turned into Returns. Either
// way the stack side effect rides on an edge that consumes a token (the
// Call on open's last token, the Return on close's first), exactly like
// an ordinary function call/return is tied to the instruction that
// performs it; the Epsilon itself touches no stack.
//
// Recursive grammars (a region whose inner eventually contains another
// occurrence of the same region) are not built by this constructor alone
// — see Recursive, which reserves a state up front so inner can refer
// back to it before Region finishes wiring the graph.
func Region(name string, open, inner, close Parser, combine graph.Combine) Parser {
	if combine == nil {
		combine = graph.KeepReturned
	}
	arena, relabel := graph.Merge(open.Graph, inner.Graph, close.Graph)
	relabelOpen, relabelInner, relabelClose := relabel[0], relabel[1], relabel[2]

	// closeArms: close's own leading-token dispatch, relabeled into arena
	// space. appendReturnArms turns a copy of it into Return transitions
	// below; closeContinuation uses it here to find where control
	// resumes once that leading token has actually been consumed.
	closeArms := relabelCurried(graph.MergedDispatch(close.Graph, close.Graph.Initial), relabelClose)

	// closeExit: the state named by the destination_symbol a Call pushes
	// — where control resumes once some Return has consumed close's
	// leading token, per spec.md's Return: "pop one symbol; move to the
	// state named by that symbol". The common case (close is a single
	// Toss) has exactly one such successor and closeExit is it directly;
	// a close with several distinguishable first arms (e.g. an
	// Alternation of single-token Tosses) gets a fresh epsilon bridge
	// fanning into each, since a Call can only push one symbol.
	closeExit := closeContinuation(arena, closeArms, name)

	// innerEntry: likewise inner's own initial state, or a bridge. This
	// is the Call's detour target — aliasing inner's real state (rather
	// than always synthesizing a fresh copy) matters for recursion:
	// Recursive finds and redirects edges landing on its placeholder, and
	// can only do that if some real edge actually lands on it, which a
	// always-fresh-bridge design would never produce.
	innerEntry, innerStartsAccepting := bridgeOrAlias(arena, inner.Graph, relabelInner, name, "inner")

	// Pass 1: every edge anywhere in open's (relabeled) portion that lands
	// on one of open's own accepting states is upgraded to a Call into
	// innerEntry, pushing closeExit.
	openAccept := map[graph.StateID]bool{}
	for _, s := range open.Graph.States {
		if s.Accepting() {
			openAccept[relabelOpen(s.ID)] = true
		}
	}
	toCall := func(t graph.Transition) graph.Transition {
		t.Kind = graph.Call
		t.Next = innerEntry
		t.Dest = closeExit
		t.Merge = combine
		return t
	}
	for _, s := range arena.States() {
		rewriteLandingOn(s, openAccept, toCall)
	}

	// returnMarker: a state whose whole Dispatch is close's arms turned
	// into Return transitions, each tagged with this Region's own
	// closeExit as the Dest it requires to be the one actually popped.
	// Every state where inner can be considered "finished" gets a plain
	// Epsilon edge to it, rather than a direct copy of its arms, so that
	// the marker can also be targeted by edges added later — specifically,
	// by Recursive, for accepting states that do not exist yet when inner
	// is an unresolved placeholder. A shared recursive body reused by
	// several differently-closed Regions ends up epsilon-linked to more
	// than one such marker; tagging each Return arm with its own Dest lets
	// a mismatched pop (e.g. popping a "(" Call's destination while a "["
	// arm fires) be told apart from a legitimate one, rather than the two
	// being silently fused by sharing the same accepting states.
	returnMarker := arena.Add(&graph.State{
		Tag:           name,
		Dispatch:      appendReturnArms(graph.Curried{}, closeArms, combine, closeExit),
		NonAcceptance: []string{"region " + name + ": marker, never itself reached by end of input"},
	})

	// Every accepting state of inner known right now (including
	// innerEntry itself, if inner accepts the empty string) is linked to
	// returnMarker. If inner is an unresolved Recursive placeholder, this
	// set is empty — nothing to do yet, left to PendingReturns below.
	innerAccept := map[graph.StateID]bool{}
	for _, s := range inner.Graph.States {
		if s.Accepting() {
			innerAccept[relabelInner(s.ID)] = true
		}
	}
	if innerStartsAccepting {
		innerAccept[innerEntry] = true
	}
	for id := range innerAccept {
		st := arena.At(id)
		st.Eps = append(st.Eps, graph.Epsilon{Targets: []graph.StateID{returnMarker}})
		st.NonAcceptance = append(st.NonAcceptance, "region "+name+": awaiting close")
	}

	openInitial := make([]graph.StateID, len(open.Graph.Initial))
	for i, id := range open.Graph.Initial {
		openInitial[i] = relabelOpen(id)
	}
	pending := relabelPendingReturns(open.PendingReturns, relabelOpen)
	pending = append(pending, relabelPendingReturns(inner.PendingReturns, relabelInner)...)
	pending = append(pending, relabelPendingReturns(close.PendingReturns, relabelClose)...)
	pending = append(pending, PendingReturn{SelfTag: inner.Tag, Marker: returnMarker})

	return Parser{Graph: arena.Graph(openInitial...), Tag: "region:" + name, PendingReturns: pending}
}

// bridgeOrAlias returns the single state a Call/Eps edge should target to
// mean "enter g": g's own (relabeled) initial state when there is exactly
// one, preserving its identity (and Tag) through composition, or a fresh
// bridge state unioning all of g's initial dispatch when there are
// several. It reports whether that entry point is itself accepting.
func bridgeOrAlias(arena *graph.Arena, g *graph.NFAGraph, relabel func(graph.StateID) graph.StateID, regionName, role string) (graph.StateID, bool) {
	accepting := graph.AnyAccepting(g, g.Initial)
	if len(g.Initial) == 1 {
		return relabel(g.Initial[0]), accepting
	}
	id := arena.Add(&graph.State{Tag: regionName})
	arena.At(id).Dispatch = relabelCurried(graph.MergedDispatch(g, g.Initial), relabel)
	if accepting {
		arena.At(id).NonAcceptance = nil
	} else {
		arena.At(id).NonAcceptance = []string{"region " + regionName + ": " + role + " has not started"}
	}
	return id, accepting
}

// closeContinuation finds the single state a Call's pushed destination_
// symbol should name: close's own leading-token arms (already relabeled
// into arena space) may all agree on one successor, in which case that
// successor is returned directly, or disagree, in which case a fresh
// epsilon-only bridge fanning into every distinct successor is
// synthesized so the Call still has exactly one symbol to push.
func closeContinuation(arena *graph.Arena, closeArms graph.Curried, regionName string) graph.StateID {
	seen := map[graph.StateID]bool{}
	var exits []graph.StateID
	add := func(id graph.StateID) {
		if !seen[id] {
			seen[id] = true
			exits = append(exits, id)
		}
	}
	if closeArms.AcceptAny {
		add(closeArms.Any.Next)
	}
	for _, r := range closeArms.Ranges {
		add(r.To.Next)
	}
	if closeArms.Fallback != nil {
		add(closeArms.Fallback.Next)
	}
	if len(exits) == 1 {
		return exits[0]
	}
	bridge := arena.Add(&graph.State{Tag: regionName, NonAcceptance: []string{"region " + regionName + ": close has not finished"}})
	for _, id := range exits {
		if arena.At(id).Accepting() {
			arena.At(bridge).NonAcceptance = nil
			break
		}
	}
	arena.At(bridge).Eps = []graph.Epsilon{{Targets: exits}}
	return bridge
}

func relabelCurried(c graph.Curried, relabel func(graph.StateID) graph.StateID) graph.Curried {
	var out graph.Curried
	out.AcceptAny = c.AcceptAny
	if c.AcceptAny {
		out.Any = relabelOnlyNext(c.Any, relabel)
	}
	for _, r := range c.Ranges {
		out.Ranges = append(out.Ranges, graph.RangeEdge{Lo: r.Lo, Hi: r.Hi, To: relabelOnlyNext(r.To, relabel)})
	}
	if c.Fallback != nil {
		t := relabelOnlyNext(*c.Fallback, relabel)
		out.Fallback = &t
	}
	return out
}

func relabelOnlyNext(t graph.Transition, relabel func(graph.StateID) graph.StateID) graph.Transition {
	t.Next = relabel(t.Next)
	if t.Kind == graph.Call || t.Kind == graph.Return {
		t.Dest = relabel(t.Dest)
	}
	return t
}

// rewriteLandingOn replaces every dispatch arm of s whose Next lands on a
// state in target with rewrite(arm).
func rewriteLandingOn(s *graph.State, target map[graph.StateID]bool, rewrite func(graph.Transition) graph.Transition) {
	if s.Dispatch.AcceptAny && target[s.Dispatch.Any.Next] {
		s.Dispatch.Any = rewrite(s.Dispatch.Any)
	}
	for i, r := range s.Dispatch.Ranges {
		if target[r.To.Next] {
			s.Dispatch.Ranges[i].To = rewrite(r.To)
		}
	}
	if s.Dispatch.Fallback != nil && target[s.Dispatch.Fallback.Next] {
		t := rewrite(*s.Dispatch.Fallback)
		s.Dispatch.Fallback = &t
	}
	if s.Dispatch.Predicate != nil && target[s.Dispatch.Predicate.To.Next] {
		s.Dispatch.Predicate.To = rewrite(s.Dispatch.Predicate.To)
	}
}

// appendReturnArms adds a Return-kind copy of every arm in closeDispatch
// to dst, keeping each arm's own action and next-state exactly as close
// defined it, and tagging every arm with dest — the destination_symbol
// this Return is only valid when popping. Next is carried along for
// check's reachability diagnostics (see check/reachability.go) but is
// never the resume point at run time: that is always the popped dest.
func appendReturnArms(dst, closeDispatch graph.Curried, combine graph.Combine, dest graph.StateID) graph.Curried {
	toReturn := func(t graph.Transition) graph.Transition {
		return graph.Transition{Kind: graph.Return, Next: t.Next, Dest: dest, Action: t.Action, Merge: combine}
	}
	if closeDispatch.AcceptAny {
		dst.AcceptAny = true
		dst.Any = toReturn(closeDispatch.Any)
		return dst
	}
	for _, r := range closeDispatch.Ranges {
		dst.Ranges = append(dst.Ranges, graph.RangeEdge{Lo: r.Lo, Hi: r.Hi, To: toReturn(r.To)})
	}
	if closeDispatch.Fallback != nil && dst.Fallback == nil {
		t := toReturn(*closeDispatch.Fallback)
		dst.Fallback = &t
	}
	return dst
}
