/*
Package graph implements the data structures for nondeterministic and
deterministic parser graphs: states, curried transitions, actions and the
stack-carrying Lateral/Return/Call edges described by the spec this
module compiles. It corresponds to the CFSM (characteristic finite state
machine) layer of an LR-parser-generator toolkit, generalized from a
grammar-specific automaton to an arbitrary combinator-built one.

Two concrete graph types connect the nondeterministic and deterministic
worlds, rather than one graph type polymorphic over an index kind: NFA
(set-valued index, produced by package combinator) and DFA (singleton
index, produced by package check's determinization and the only value
that reaches package interp / package emit).

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package graph

import (
	"fmt"

	"github.com/grammarworks/stackc"
)

// StateID identifies a state within a single Graph. IDs are only
// meaningful relative to the Graph that owns them.
type StateID uint32

// StackSymbol names the state a Call transition's callee should resume at
// once a matching Return pops it. It is statically known at the pushing
// edge; nothing in this module computes a StackSymbol from runtime data.
type StackSymbol = StateID

// TransKind discriminates the three transition shapes.
type TransKind uint8

const (
	// Lateral moves to Next without touching the stack.
	Lateral TransKind = iota
	// Return pops one StackSymbol and moves to the state it names.
	Return
	// Call pushes Dest and moves to Next (the detour state); control
	// resumes at Dest once some Return eventually fires while Dest is
	// the top of stack.
	Call
)

func (k TransKind) String() string {
	switch k {
	case Lateral:
		return "lateral"
	case Return:
		return "return"
	case Call:
		return "call"
	default:
		return "?"
	}
}

// Combine merges a Call's pre-call accumulator (captured at push time)
// with the value the callee's Return eventually produces. It is the
// runtime counterpart of Region's combine parameter (spec 4.1); ad-hoc
// Calls not built via Region default to KeepReturned below, which simply
// keeps the returned value.
type Combine func(pre, returned stackc.Accumulator) stackc.Accumulator

// KeepReturned is the default Combine: ignore the saved pre-call value.
func KeepReturned(_ stackc.Accumulator, returned stackc.Accumulator) stackc.Accumulator {
	return returned
}

// Transition is the per-edge behavior attached to one arm of a state's
// curried dispatch.
type Transition struct {
	Kind TransKind
	// Next is the Lateral successor, the Call detour_state, or — for
	// Return — a statically-baked approximation of where control ends up,
	// kept only so check's reachability diagnostics and canonical
	// ordering have something to walk; it is never consulted at run time
	// for a Return (see interp.Run and emit's generated code, both of
	// which resolve a Return purely from the popped Dest / the host call
	// stack).
	Next StateID
	// Dest is the destination_symbol: for Call, the symbol pushed; for
	// Return, the symbol this arm requires to be the one actually popped
	// — a Return whose Dest disagrees with the frame being popped is not
	// a match (see check/subset.go's cellSig and interp.Run's Dest
	// check), which is what lets two differently-closed Regions share
	// one recursive body's accepting states without one's closing token
	// being mistaken for the other's.
	Dest   StackSymbol
	Action stackc.TaggedAction
	Merge  Combine // Call only; nil means KeepReturned.
}

// Equal reports whether two transitions are interchangeable for the
// purposes of determinization merging: same kind, same targets/stack
// symbol, and — crucially — the *same* tagged action (see
// stackc.TaggedAction.Equal). Combine functions are compared by pointer
// identity, which is sufficient because Region mints exactly one Combine
// closure per region and every copy-and-relabel operation propagates the
// same closure value rather than re-wrapping it.
func (t Transition) Equal(o Transition) bool {
	if t.Kind != o.Kind || t.Next != o.Next || t.Dest != o.Dest {
		return false
	}
	if !t.Action.Equal(o.Action) {
		return false
	}
	return sameCombine(t.Merge, o.Merge)
}

func sameCombine(a, b Combine) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return fmt.Sprintf("%p", a) == fmt.Sprintf("%p", b)
}

// RangeEdge maps a half-open token range [Lo, Hi) to a Transition.
type RangeEdge struct {
	Lo, Hi stackc.TokType
	To     Transition
}

func (r RangeEdge) contains(t stackc.TokType) bool { return t >= r.Lo && t < r.Hi }

func (r RangeEdge) overlaps(o RangeEdge) bool { return r.Lo < o.Hi && o.Lo < r.Hi }

// PredicateEdge dispatches on an arbitrary Go predicate rather than a
// range. It is an NFA-only construct (see Curried.Predicate): package
// check expands it into concrete Ranges, over a bounded alphabet, before
// subset construction ever runs, so no PredicateEdge survives into a
// DFAGraph.
type PredicateEdge struct {
	Pred func(stackc.TokType) bool
	To   Transition
}

// Curried is a state's per-token dispatch: either "accept any token", a
// disjoint partition of token ranges with an optional fallback used when
// no range matches, or (NFA-only) a predicate guard.
type Curried struct {
	AcceptAny bool
	Any       Transition // valid iff AcceptAny
	Ranges    []RangeEdge
	Predicate *PredicateEdge
	Fallback  *Transition
}

// Dispatch finds the transition that fires for tok, and reports whether
// one was found (false means reject-with-NonAcceptance, or the state's
// generic "unexpected token" case if NonAcceptance is also empty).
func (c Curried) Dispatch(tok stackc.TokType) (Transition, bool) {
	if c.AcceptAny {
		return c.Any, true
	}
	for _, r := range c.Ranges {
		if r.contains(tok) {
			return r.To, true
		}
	}
	if c.Predicate != nil && c.Predicate.Pred(tok) {
		return c.Predicate.To, true
	}
	if c.Fallback != nil {
		return *c.Fallback, true
	}
	return Transition{}, false
}

// Epsilon is an NFA-construction-only connective: move to every state in
// Targets without consuming a token, optionally running Action first. It
// exists so Sequence can splice "accepting states of A" to "initial index
// of B" without forcing A's exit to coincide with some real consuming
// edge. Epsilon edges never appear on a DFAGraph state: package check
// eliminates them by epsilon-closure before subset construction looks at
// any dispatch table.
type Epsilon struct {
	Targets []StateID
	Action  stackc.TaggedAction
}

// State is a node in a parser graph.
type State struct {
	ID       StateID
	Dispatch Curried
	Eps      []Epsilon // NFA-only; see Epsilon
	// ExitAction is an NFA-only staging field: combinator.Produce sets it
	// on its own lone state, and combinator.Sequence reads it off an
	// operand's accepting states to become the Action of the Epsilon it
	// splices into the next operand (see Epsilon). The only other reader
	// is package check's subset construction, which turns the ExitAction
	// of an accepting state that no Sequence consumed into an
	// AcceptAction.
	ExitAction stackc.TaggedAction
	// AcceptAction is a DFA-only field: the action (composed from any
	// Epsilon.Action crossed to reach this state, and this state's own
	// ExitAction if it carries one unconsumed) that must run, with no
	// token, if this state is where a run ends. package check's subset
	// construction is the only thing that populates it; interp.Run and
	// emit's generated code both apply it at end-of-input acceptance, the
	// counterpart of a Sequence seam's Epsilon.Action firing mid-run.
	AcceptAction  stackc.TaggedAction
	NonAcceptance []string // empty => accepting
	Tag           string   // breadcrumb: combinator call site, for diagnostics
}

// Accepting reports whether end-of-input on this state accepts.
func (s *State) Accepting() bool { return len(s.NonAcceptance) == 0 }

func cloneState(s *State, relabel func(StateID) StateID, tag string) *State {
	ns := &State{
		ID:            relabel(s.ID),
		ExitAction:    s.ExitAction,
		NonAcceptance: append([]string(nil), s.NonAcceptance...),
		Tag:           firstNonEmpty(s.Tag, tag),
	}
	ns.Dispatch.AcceptAny = s.Dispatch.AcceptAny
	if s.Dispatch.AcceptAny {
		ns.Dispatch.Any = relabelTransition(s.Dispatch.Any, relabel)
	}
	for _, r := range s.Dispatch.Ranges {
		ns.Dispatch.Ranges = append(ns.Dispatch.Ranges, RangeEdge{
			Lo: r.Lo, Hi: r.Hi, To: relabelTransition(r.To, relabel),
		})
	}
	if s.Dispatch.Predicate != nil {
		ns.Dispatch.Predicate = &PredicateEdge{
			Pred: s.Dispatch.Predicate.Pred,
			To:   relabelTransition(s.Dispatch.Predicate.To, relabel),
		}
	}
	if s.Dispatch.Fallback != nil {
		t := relabelTransition(*s.Dispatch.Fallback, relabel)
		ns.Dispatch.Fallback = &t
	}
	for _, e := range s.Eps {
		targets := make([]StateID, len(e.Targets))
		for i, tg := range e.Targets {
			targets[i] = relabel(tg)
		}
		ns.Eps = append(ns.Eps, Epsilon{Targets: targets, Action: e.Action})
	}
	return ns
}

func relabelTransition(t Transition, relabel func(StateID) StateID) Transition {
	t.Next = relabel(t.Next)
	if t.Kind == Call || t.Kind == Return {
		t.Dest = relabel(t.Dest)
	}
	return t
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

// NFAGraph is a nondeterministic parser graph: its Initial index is a set
// of states, any of which may be "current" at once.
type NFAGraph struct {
	States  []*State
	Initial []StateID
}

// ByID returns the state with the given ID, or nil.
func (g *NFAGraph) ByID(id StateID) *State {
	if int(id) < 0 || int(id) >= len(g.States) {
		return nil
	}
	return g.States[id]
}

// DFAGraph is a deterministic parser graph: every Index is a singleton.
// It is the only graph value that reaches package interp or package emit.
type DFAGraph struct {
	States  []*State
	Initial StateID
}

// ByID returns the state with the given ID, or nil.
func (g *DFAGraph) ByID(id StateID) *State {
	if int(id) < 0 || int(id) >= len(g.States) {
		return nil
	}
	return g.States[id]
}
