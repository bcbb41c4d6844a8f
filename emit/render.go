package emit

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/grammarworks/stackc"
	"github.com/grammarworks/stackc/graph"
)

func writeHeader(b *strings.Builder, cfg Config) {
	fmt.Fprintf(b, "// Code generated by stackc/emit. DO NOT EDIT.\n\n")
	fmt.Fprintf(b, "package %s\n\n", cfg.packageName)
	fmt.Fprintf(b, "import (\n")
	fmt.Fprintf(b, "\t\"fmt\"\n\n")
	fmt.Fprintf(b, "\t\"github.com/grammarworks/stackc\"\n")
	fmt.Fprintf(b, ")\n\n")
}

// writeRuntime emits the Runtime type and RejectError type the generated
// state functions close over: the action and combine closures a compiled
// graph can only name, never literally contain (see package doc comment).
func writeRuntime(b *strings.Builder) {
	b.WriteString(`// Runtime supplies the action and combine closures this file's state
// functions reference by id. Build one from the same combinator.Parser
// that was compiled to produce this file; the ids below are stable only
// for that one compilation.
type Runtime struct {
	Actions  map[stackc.ActionID]stackc.Action
	Combines map[int]func(pre, returned stackc.Accumulator) stackc.Accumulator
}

func (rt Runtime) apply(id stackc.ActionID, tok stackc.Token, acc stackc.Accumulator) stackc.Accumulator {
	if fn, ok := rt.Actions[id]; ok && fn != nil {
		return fn(tok, acc)
	}
	return acc
}

func (rt Runtime) combine(id int, pre, returned stackc.Accumulator) stackc.Accumulator {
	if fn, ok := rt.Combines[id]; ok && fn != nil {
		return fn(pre, returned)
	}
	return returned
}

// RejectError reports why the emitted parser stopped accepting, mirroring
// package interp's RejectError so the two consumers can be compared in
// tests by message shape, not just accept/reject.
type RejectError struct {
	State   int
	Reasons []string
	AtToken stackc.Token
}

func (e *RejectError) Error() string {
	if e.AtToken != nil {
		return fmt.Sprintf("stackc: rejected at state %d on %q: %v", e.State, e.AtToken.Lexeme(), e.Reasons)
	}
	return fmt.Sprintf("stackc: rejected at end of input in state %d: %v", e.State, e.Reasons)
}

`)
}

// noDest is the sentinel "expect" value passed to the initial state: no
// Call is open yet, so no Return arm (which always requires some
// non-sentinel Dest, assigned by check's determinization) can validly
// fire here.
const noDest = -1

func writeEntry(b *strings.Builder, cfg Config, initial int) {
	fmt.Fprintf(b, `// %s interprets tokens against the compiled grammar, starting in the
// canonical initial state, and returns the final accumulator or a
// *RejectError.
func %s(tokens []stackc.Token, acc stackc.Accumulator, rt Runtime) (stackc.Accumulator, error) {
	acc, _, err := %s%d(tokens, 0, acc, rt, %d)
	return acc, err
}

`, cfg.entryName, cfg.entryName, cfg.prefix, initial, noDest)
}

// writeState renders one state's function: end-of-input handling, then a
// dispatch over the next token mirroring graph.Curried.Dispatch's own
// matching order (AcceptAny, then ordered Ranges, then Fallback). An
// accepting state with a non-nil AcceptAction (a combinator.Produce that
// never got spliced into a further Sequence seam, see check/subset.go's
// resolveAcceptAction) runs it before returning; the ordinary case has
// none and the line is omitted entirely.
//
// Every state function takes an extra expect parameter beyond what
// spec.md 4.4 names: the Dest of whichever Call is currently open (or
// noDest at top level). It is threaded through exactly like the host
// call stack Call/Return already ride on — a Call passes its own Dest
// down to its callee, a Lateral or a Call's post-return tail call passes
// its own expect through unchanged — so that a Return arm can refuse to
// fire when the Dest it requires does not match the call actually open,
// the same check interp.Run makes against its explicit frame stack. See
// graph.Transition's doc comment. For the same reason an accepting state
// accepts end of input only when expect is noDest: with a call still open
// it rejects, as interp.Run does for a non-empty stack.
func writeState(b *strings.Builder, cfg Config, g *graph.DFAGraph, oldID graph.StateID, remap map[graph.StateID]int, combineIDs map[armRef]int) {
	st := g.ByID(oldID)
	id := remap[oldID]
	fn := fmt.Sprintf("%s%d", cfg.prefix, id)

	fmt.Fprintf(b, "func %s(tokens []stackc.Token, pos int, acc stackc.Accumulator, rt Runtime, expect int) (stackc.Accumulator, int, error) {\n", fn)
	fmt.Fprintf(b, "\tif pos >= len(tokens) {\n")
	if st.Accepting() {
		fmt.Fprintf(b, "\t\tif expect != %d {\n", noDest)
		fmt.Fprintf(b, "\t\t\treturn nil, pos, &RejectError{State: %d, Reasons: %s}\n", id,
			reasonsLiteral([]string{"unexpected token", "unmatched call: a region never returned before end of input"}))
		fmt.Fprintf(b, "\t\t}\n")
		if st.AcceptAction.Fn != nil {
			fmt.Fprintf(b, "\t\tacc = rt.apply(%d, nil, acc)\n", st.AcceptAction.ID)
		}
		fmt.Fprintf(b, "\t\treturn acc, pos, nil\n")
	} else {
		fmt.Fprintf(b, "\t\treturn nil, pos, &RejectError{State: %d, Reasons: %s}\n", id, reasonsLiteral(st.NonAcceptance))
	}
	fmt.Fprintf(b, "\t}\n")
	fmt.Fprintf(b, "\ttok := tokens[pos]\n")

	switch {
	case st.Dispatch.AcceptAny:
		writeArm(b, cfg, "\t", id, st.Dispatch.Any, remap, combineIDs[armRef{oldID, armAny}])
	default:
		if len(st.Dispatch.Ranges) > 0 {
			fmt.Fprintf(b, "\tt := tok.TokType()\n")
		}
		for i, r := range st.Dispatch.Ranges {
			cond := fmt.Sprintf("t >= %s && t < %s", tokLiteral(r.Lo), tokLiteral(r.Hi))
			fmt.Fprintf(b, "\tif %s {\n", cond)
			writeArm(b, cfg, "\t\t", id, r.To, remap, combineIDs[armRef{oldID, armRange(i)}])
			fmt.Fprintf(b, "\t}\n")
		}
		if st.Dispatch.Fallback != nil {
			writeArm(b, cfg, "\t", id, *st.Dispatch.Fallback, remap, combineIDs[armRef{oldID, armFallback}])
		} else {
			fmt.Fprintf(b, "\treturn nil, pos, &RejectError{State: %d, Reasons: %s, AtToken: tok}\n", id, reasonsLiteral(st.NonAcceptance))
		}
	}
	fmt.Fprintf(b, "}\n\n")
}

// writeArm renders one transition's body. AcceptAny and Fallback arms
// fall straight through to a return statement at the enclosing
// function's own indent level (no guarding if), so it always ends the
// function when called last — the same shape graph.Curried.Dispatch
// gives a default/no-match arm. state is the id of the function writeArm
// is rendering into, used only for this Return arm's RejectError.
//
// next (remap[t.Next]) is meaningful for Lateral and Call — where it
// names the state to continue in — but not for Return: spec.md's Return
// moves to "the state named by [the popped] symbol", which at this point
// is the host call stack's own return address, not anything remap can
// name. It is still computed unconditionally below so every arm shares
// one dest/next setup regardless of kind; the Return case simply never
// reads it.
func writeArm(b *strings.Builder, cfg Config, indent string, state int, t graph.Transition, remap map[graph.StateID]int, combineID int) {
	next := remap[t.Next]
	switch t.Kind {
	case graph.Lateral:
		fmt.Fprintf(b, "%sacc = rt.apply(%d, tok, acc)\n", indent, t.Action.ID)
		fmt.Fprintf(b, "%sreturn %s%d(tokens, pos+1, acc, rt, expect)\n", indent, cfg.prefix, next)
	case graph.Return:
		dest := remap[t.Dest]
		fmt.Fprintf(b, "%sif expect != %d {\n", indent, dest)
		fmt.Fprintf(b, "%s\treturn nil, pos, &RejectError{State: %d, Reasons: []string{\"return does not match the call currently open\"}, AtToken: tok}\n", indent, state)
		fmt.Fprintf(b, "%s}\n", indent)
		fmt.Fprintf(b, "%sacc = rt.apply(%d, tok, acc)\n", indent, t.Action.ID)
		fmt.Fprintf(b, "%sreturn acc, pos + 1, nil\n", indent)
	case graph.Call:
		dest := remap[t.Dest]
		fmt.Fprintf(b, "%sacc = rt.apply(%d, tok, acc)\n", indent, t.Action.ID)
		fmt.Fprintf(b, "%spre := acc\n", indent)
		fmt.Fprintf(b, "%sreturned, pos, err := %s%d(tokens, pos+1, acc, rt, %d)\n", indent, cfg.prefix, next, dest)
		fmt.Fprintf(b, "%sif err != nil {\n", indent)
		fmt.Fprintf(b, "%s\treturn nil, pos, err\n", indent)
		fmt.Fprintf(b, "%s}\n", indent)
		fmt.Fprintf(b, "%sacc = rt.combine(%d, pre, returned)\n", indent, combineID)
		fmt.Fprintf(b, "%sreturn %s%d(tokens, pos, acc, rt, expect)\n", indent, cfg.prefix, dest)
	}
}

func tokLiteral(t stackc.TokType) string { return strconv.FormatInt(int64(t), 10) }

// reasonsLiteral renders st.NonAcceptance as a []string literal,
// defaulting to the same generic "unexpected token" reason package
// interp's reasonsOrDefault falls back to when a state carries none.
func reasonsLiteral(reasons []string) string {
	if len(reasons) == 0 {
		reasons = []string{"unexpected token"}
	}
	quoted := make([]string, len(reasons))
	for i, r := range reasons {
		quoted[i] = strconv.Quote(r)
	}
	return "[]string{" + strings.Join(quoted, ", ") + "}"
}
