package combinator

import (
	"fmt"
	"sync/atomic"

	"github.com/grammarworks/stackc/graph"
)

var recursiveCounter uint64

// Recursive builds a self-referential parser: build receives a Parser
// handle (self) that stands for the parser Recursive is building, before
// it exists, and must return the fully composed parser — typically
// Alternation(Empty(), Region(..., self, ...)) for a balanced, nestable
// construct (spec 9's "fix" notation). This is how the module expresses
// recursive grammars given that every other combinator is pure
// copy-and-relabel with no shared mutable state: self starts as one
// reserved, uniquely tagged placeholder state (the same reserve-before-
// wire discipline package graph's Arena uses for any cyclic graph), and
// once build returns, every surviving copy of that placeholder — there
// may be several, since composition clones states — is redirected to the
// real entry point.
func Recursive(build func(self Parser) Parser) Parser {
	id := atomic.AddUint64(&recursiveCounter, 1)
	selfTag := fmt.Sprintf("recursive-self-%d", id)

	seed := graph.NewArena()
	placeholder := seed.Add(&graph.State{Tag: selfTag, NonAcceptance: []string{"recursive: placeholder"}})
	self := Parser{Graph: seed.Graph(placeholder), Tag: selfTag}

	body := build(self)

	var placeholders []graph.StateID
	for _, s := range body.Graph.States {
		if s.Tag == selfTag {
			placeholders = append(placeholders, s.ID)
		}
	}
	if len(placeholders) == 0 {
		return body // self was never referenced: not actually recursive
	}

	arena, relabel := graph.Merge(body.Graph)
	r := relabel[0]

	target := map[graph.StateID]bool{}
	for _, id := range placeholders {
		target[r(id)] = true
	}

	bodyInitial := make([]graph.StateID, len(body.Graph.Initial))
	for i, id := range body.Graph.Initial {
		bodyInitial[i] = r(id)
	}
	entry := arena.Add(&graph.State{NonAcceptance: []string{"recursive: entry bridge"}})
	arena.At(entry).Eps = []graph.Epsilon{{Targets: bodyInitial}}
	bodyAccepts := graph.AnyAccepting(body.Graph, body.Graph.Initial)
	if bodyAccepts {
		arena.At(entry).NonAcceptance = nil
	}

	// Every edge that used to land on a surviving placeholder copy (the
	// Call a Region built while self was still unresolved) now lands on
	// entry instead, which fans into body's real initial states — the
	// fixed point.
	redirect := func(t graph.Transition) graph.Transition {
		t.Next = entry
		return t
	}
	for _, s := range arena.States() {
		rewriteLandingOn(s, target, redirect)
	}

	// Every Region built with self as its inner operand recorded a
	// PendingReturn keyed by selfTag: a marker state holding that
	// Region's close-continuation, waiting for self's real accepting
	// states to exist. They do now — body.Graph's own accepting states,
	// now that self has been substituted, are exactly self's (the fixed
	// point's) accepting states, since self denotes this very parser.
	var bodyAccept []graph.StateID
	for _, s := range body.Graph.States {
		if s.Accepting() {
			bodyAccept = append(bodyAccept, r(s.ID))
		}
	}
	var remaining []PendingReturn
	for _, pr := range body.PendingReturns {
		marker := r(pr.Marker)
		if pr.SelfTag != selfTag {
			remaining = append(remaining, PendingReturn{SelfTag: pr.SelfTag, Marker: marker})
			continue
		}
		for _, acc := range bodyAccept {
			st := arena.At(acc)
			st.Eps = append(st.Eps, graph.Epsilon{Targets: []graph.StateID{marker}})
		}
		// If self itself can finish with zero further tokens (bodyAccepts,
		// e.g. the Empty() branch of Alternation(Empty(), Region(...))),
		// entry — the detour target every Call built while self was
		// unresolved now lands on — must reach marker the same way
		// Region's own innerStartsAccepting case does for an ordinary
		// (non-recursive) immediately-accepting inner.
		if bodyAccepts {
			arena.At(entry).Eps = append(arena.At(entry).Eps, graph.Epsilon{Targets: []graph.StateID{marker}})
		}
	}

	return Parser{Graph: arena.Graph(bodyInitial...), Tag: "recursive", PendingReturns: remaining}
}
