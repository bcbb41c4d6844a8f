/*
Package interp is the reference evaluator: it walks a deterministic
graph.DFAGraph one token at a time, exactly as spec.md section 4.3
describes, maintaining an explicit LIFO stack of (destination state,
saved accumulator, combine function) frames for Call/Return. It exists
to be the ground truth package emit's generated Go source is checked
against — the same graph run two different ways must produce the same
accumulator or the same rejection.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package interp

import (
	"fmt"

	"github.com/npillmayer/schuko/tracing"

	"github.com/grammarworks/stackc"
	"github.com/grammarworks/stackc/graph"
)

func tracer() tracing.Trace {
	return tracing.Select("stackc.interp")
}

type frame struct {
	dest    graph.StateID
	saved   stackc.Accumulator
	combine graph.Combine
}

// RejectError reports where and why a run rejected: either no matching
// transition was found for a token, or the input ran out in a
// non-accepting state (possibly with an unmatched call still open).
type RejectError struct {
	State   graph.StateID
	Reasons []string
	AtToken stackc.Token // nil when rejection happened at end of input
}

func (e *RejectError) Error() string {
	if e.AtToken != nil {
		return fmt.Sprintf("stackc: rejected at state %d on %q: %v", e.State, e.AtToken.Lexeme(), e.Reasons)
	}
	return fmt.Sprintf("stackc: rejected at end of input in state %d: %v", e.State, e.Reasons)
}

// Run interprets g over tokens, threading acc through every action fired,
// and returns the final accumulator, or a *RejectError.
func Run(g *graph.DFAGraph, tokens []stackc.Token, acc stackc.Accumulator) (stackc.Accumulator, error) {
	current := g.Initial
	var stack []frame

	for _, tok := range tokens {
		st := g.ByID(current)
		if st == nil {
			return nil, fmt.Errorf("stackc: state %d out of range", current)
		}
		tr, ok := st.Dispatch.Dispatch(tok.TokType())
		if !ok {
			tracer().Debugf("reject at state %d on %q: no matching transition", current, tok.Lexeme())
			return nil, &RejectError{State: current, Reasons: reasonsOrDefault(st.NonAcceptance), AtToken: tok}
		}
		tracer().Debugf("state %d --%s(%q)--> state %d", current, tr.Kind, tok.Lexeme(), tr.Next)

		switch tr.Kind {
		case graph.Lateral:
			acc = tr.Action.Apply(tok, acc)
			current = tr.Next
		case graph.Call:
			acc = tr.Action.Apply(tok, acc)
			combine := tr.Merge
			if combine == nil {
				combine = graph.KeepReturned
			}
			stack = append(stack, frame{dest: tr.Dest, saved: acc, combine: combine})
			current = tr.Next
		case graph.Return:
			if len(stack) == 0 {
				return nil, &RejectError{
					State:   current,
					Reasons: []string{"return with no matching call"},
					AtToken: tok,
				}
			}
			f := stack[len(stack)-1]
			if tr.Dest != f.dest {
				// This Return arm belongs to a different Call than the one
				// actually open — reachable when a shared recursive body's
				// accepting states are epsilon-linked to more than one
				// Region's return marker (see combinator.Recursive). The
				// token matched close's own dispatch, but popping the real
				// frame proves it closes the wrong region.
				tracer().Debugf("reject at state %d: return requires dest %d, call stack has %d", current, tr.Dest, f.dest)
				return nil, &RejectError{
					State:   current,
					Reasons: []string{"return does not match the call currently open"},
					AtToken: tok,
				}
			}
			stack = stack[:len(stack)-1]
			returned := tr.Action.Apply(tok, acc)
			acc = f.combine(f.saved, returned)
			current = f.dest
		}
	}

	st := g.ByID(current)
	if st == nil {
		return nil, fmt.Errorf("stackc: state %d out of range", current)
	}
	if !st.Accepting() || len(stack) != 0 {
		reasons := reasonsOrDefault(st.NonAcceptance)
		if len(stack) != 0 {
			reasons = append(reasons, "unmatched call: a region never returned before end of input")
		}
		return nil, &RejectError{State: current, Reasons: reasons}
	}
	acc = st.AcceptAction.Apply(nil, acc)
	return acc, nil
}

func reasonsOrDefault(reasons []string) []string {
	if len(reasons) == 0 {
		return []string{"unexpected token"}
	}
	return append([]string(nil), reasons...)
}
