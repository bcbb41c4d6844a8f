package check

import (
	"sort"
	"strings"

	"github.com/cnf/structhash"

	"github.com/grammarworks/stackc"
	"github.com/grammarworks/stackc/diag"
	"github.com/grammarworks/stackc/graph"
	"github.com/grammarworks/stackc/graph/iteratable"
)

// cellSig is what a dispatch cell actually DOES, as opposed to which NFA
// states produced it: two NFA states hitting the same token with the
// same kind/action/dest are not a conflict, just two routes to union
// into the same successor set. A cell with more than one distinct sig is
// a genuine conflict (the single Transition a DFA cell can carry cannot
// represent two different kinds or actions at once).
type cellSig struct {
	kind     graph.TransKind
	actionID stackc.ActionID
	dest     graph.StateID // meaningful for Call (pushed) and Return (required popped)
}

// composeKey identifies one distinct (entry, fired) action pairing.
type composeKey struct{ entry, next stackc.ActionID }

// actionComposer mints at most one fresh, Tag'd TaggedAction per distinct
// (entry, next) ActionID pair the whole Compile call encounters, rather
// than once per NFA cell that happens to cross the same epsilon-prefixed
// action — tags.go requires composite machinery to not mint a fresh Tag
// per occurrence, or two cells that are really the same action would stop
// comparing Equal and spuriously conflict during determinization.
type actionComposer struct {
	cache map[composeKey]stackc.TaggedAction
}

func newActionComposer() *actionComposer {
	return &actionComposer{cache: map[composeKey]stackc.TaggedAction{}}
}

// compose returns the action that runs entry (an Epsilon.Action or a
// state's ExitAction, firing with no token consumed on the way into a
// state) and then next (the action that fires when that state's own
// dispatch matches a real token, or nothing at all for an accepting
// state reached at end of input). entry is the zero TaggedAction for
// every NFA built without combinator.Produce, which is the overwhelming
// majority — compose recognizes that case and returns next unchanged, no
// allocation, no new Tag.
func (c *actionComposer) compose(entry, next stackc.TaggedAction) stackc.TaggedAction {
	if entry.Fn == nil {
		return next
	}
	if next.Fn == nil {
		return entry
	}
	key := composeKey{entry.ID, next.ID}
	if cached, ok := c.cache[key]; ok {
		return cached
	}
	entryFn, nextFn := entry.Fn, next.Fn
	composed := stackc.Tag(func(tok stackc.Token, acc stackc.Accumulator) stackc.Accumulator {
		return nextFn(tok, entryFn(tok, acc))
	})
	c.cache[key] = composed
	return composed
}

// subsetConstruct runs the classic worklist: a pending set of not-yet-
// visited DFA state ids, each standing for one epsilon-closed set of NFA
// states, expanded one at a time until nothing new turns up. pendingIDs
// is an iteratable.Set rather than a plain queue because makeState adds
// newly discovered ids to it *while* the Next() loop below is still
// running over it — exactly the destructive, grow-while-iterating usage
// that package is built for.
func subsetConstruct(g *graph.NFAGraph, cfg config, bag *diag.Bag) *graph.DFAGraph {
	expanded := expandPredicates(g, cfg.alphabetBound)

	arena := graph.NewArena()
	seen := map[string]graph.StateID{}
	sets := map[graph.StateID][]graph.StateID{}
	pendingIDs := iteratable.New()
	composer := newActionComposer()

	makeState := func(nfaSet []graph.StateID) graph.StateID {
		closure := graph.EpsilonClosure(expanded, nfaSet)
		key := setKey(closure)
		if id, ok := seen[key]; ok {
			return id
		}
		id := arena.Reserve()
		seen[key] = id
		sets[id] = closure
		pendingIDs.Add(uint32(id))
		return id
	}

	initID := makeState(expanded.Initial)

	pendingIDs.IterateOnce()
	for pendingIDs.Next() {
		id := graph.StateID(pendingIDs.Item())
		nfaSet := sets[id]

		accepting, acceptAction := resolveAcceptAction(expanded, nfaSet, composer)
		dispatch, reasons := resolveDispatch(expanded, nfaSet, cfg, bag, makeState, composer)

		st := &graph.State{Dispatch: dispatch, Tag: breadcrumb(expanded, nfaSet)}
		if !accepting {
			if len(reasons) == 0 {
				reasons = []string{"no member state of this set accepts"}
			}
			st.NonAcceptance = reasons
		} else {
			st.AcceptAction = acceptAction
		}
		arena.Set(id, st)
	}

	return arena.DFA(initID)
}

// resolveAcceptAction reports whether some member of nfaSet's epsilon
// closure accepts, and if so, the action that must fire — with no token
// consumed — if a run ends there: the composed entry action that got it
// there, further composed with its own ExitAction if it carries one that
// nothing has spliced into an Epsilon yet (combinator.Produce as the very
// last operand of a composition, never sequenced against anything after
// it). The first accepting member found wins; two distinct accepting
// members with different actions is not a case this resolves.
func resolveAcceptAction(g *graph.NFAGraph, nfaSet []graph.StateID, composer *actionComposer) (bool, stackc.TaggedAction) {
	for _, m := range graph.EpsilonClosureWithActions(g, nfaSet, composer.compose) {
		s := g.ByID(m.ID)
		if !s.Accepting() {
			continue
		}
		action := m.Action
		if s.ExitAction.Fn != nil {
			action = composer.compose(action, s.ExitAction)
		}
		return true, action
	}
	return false, stackc.TaggedAction{}
}

// resolveDispatch scans the bounded alphabet one token at a time,
// grouping the epsilon-closure's members' per-token behavior into runs
// of identical (sig, successor-set) cells — a direct, if less clever,
// substitute for computing an exact breakpoint partition: correct for
// any finite alphabet bound, and simple enough to trust by inspection.
func resolveDispatch(g *graph.NFAGraph, nfaSet []graph.StateID, cfg config, bag *diag.Bag, makeState func([]graph.StateID) graph.StateID, composer *actionComposer) (graph.Curried, []string) {
	probe := func(tok stackc.TokType) probeResult {
		bySig := map[cellSig]*probeResult{}
		var order []cellSig
		for _, m := range graph.EpsilonClosureWithActions(g, nfaSet, composer.compose) {
			s := g.ByID(m.ID)
			tr, ok := s.Dispatch.Dispatch(tok)
			if !ok {
				continue
			}
			act := composer.compose(m.Action, tr.Action)
			sig := cellSig{kind: tr.Kind, actionID: act.ID}
			if tr.Kind == graph.Call || tr.Kind == graph.Return {
				sig.dest = tr.Dest
			}
			r, found := bySig[sig]
			if !found {
				r = &probeResult{ok: true, sig: sig, next: map[graph.StateID]bool{}, act: act}
				bySig[sig] = r
				order = append(order, sig)
			}
			r.next[tr.Next] = true
		}
		if len(order) == 0 {
			return probeResult{}
		}
		if len(order) > 1 {
			bag.Errorf([]string{breadcrumb(g, nfaSet)},
				"conflicting dispatch for token %d: %d incompatible actions/kinds reachable from the same state set", tok, len(order))
		}
		return *bySig[order[0]]
	}

	var out graph.Curried
	var reasons []string

	var runStart stackc.TokType
	var runVal probeResult
	haveRun := false
	flush := func(hi stackc.TokType) {
		if !haveRun {
			return
		}
		if !runVal.ok {
			haveRun = false
			return
		}
		nextIDs := make([]graph.StateID, 0, len(runVal.next))
		for id := range runVal.next {
			nextIDs = append(nextIDs, id)
		}
		dst := makeState(nextIDs)
		t := graph.Transition{Kind: runVal.sig.kind, Next: dst, Action: runVal.act}
		if runVal.sig.kind == graph.Call || runVal.sig.kind == graph.Return {
			// The NFA-space symbol the combinator baked in (see
			// combinator.Region's closeContinuation) must be resolved to a
			// DFA state the same way any other successor is, since
			// interp.Run and emit's generated code treat a popped/expected
			// Dest as a real state to land in or compare against, not a
			// raw construction-time id.
			t.Dest = makeState([]graph.StateID{runVal.sig.dest})
		}
		out.Ranges = append(out.Ranges, graph.RangeEdge{Lo: runStart, Hi: hi, To: t})
		haveRun = false
	}

	for tok := stackc.TokType(0); tok < cfg.alphabetBound; tok++ {
		r := probe(tok)
		if haveRun && sameProbe(runVal, r) {
			continue
		}
		flush(tok)
		runStart, runVal, haveRun = tok, r, true
	}
	flush(cfg.alphabetBound)

	tail := probe(cfg.alphabetBound)
	if tail.ok {
		nextIDs := make([]graph.StateID, 0, len(tail.next))
		for id := range tail.next {
			nextIDs = append(nextIDs, id)
		}
		dst := makeState(nextIDs)
		t := graph.Transition{Kind: tail.sig.kind, Next: dst, Action: tail.act}
		if tail.sig.kind == graph.Call || tail.sig.kind == graph.Return {
			t.Dest = makeState([]graph.StateID{tail.sig.dest})
		}
		if cfg.emitAcceptAnyFallback && len(out.Ranges) == 1 && out.Ranges[0].Lo == 0 && out.Ranges[0].Hi == cfg.alphabetBound && out.Ranges[0].To.Equal(t) {
			out = graph.Curried{AcceptAny: true, Any: t}
		} else {
			out.Fallback = &t
		}
	} else if len(out.Ranges) == 0 {
		reasons = append(reasons, "dispatch: no range, fallback or accept-any arm matches any token")
	}

	return out, reasons
}

// probeResult is what a single alphabet probe found: whether some member
// state matched the token at all, and if so, the agreed-on cellSig, the
// union of successor states, and a representative action.
type probeResult struct {
	ok   bool
	sig  cellSig
	next map[graph.StateID]bool
	act  stackc.TaggedAction
}

func sameProbe(a, b probeResult) bool {
	if a.ok != b.ok {
		return false
	}
	if !a.ok {
		return true
	}
	if a.sig != b.sig {
		return false
	}
	if len(a.next) != len(b.next) {
		return false
	}
	for id := range a.next {
		if !b.next[id] {
			return false
		}
	}
	return true
}

// setKey hashes a sorted NFA state-id set via structhash, exactly the way
// lr/earley/earley.go keys its item-set cache: a cheap, collision-safe
// enough dedup key for a value that is otherwise inconvenient to use
// directly as a map key (a slice).
func setKey(ids []graph.StateID) string {
	sorted := append([]graph.StateID(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	h, err := structhash.Hash(sorted, 1)
	if err != nil {
		// structhash only fails on unhashable types; []graph.StateID
		// never is one, so this path is unreachable in practice.
		panic(err)
	}
	return h
}

func breadcrumb(g *graph.NFAGraph, ids []graph.StateID) string {
	var tags []string
	seen := map[string]bool{}
	for _, id := range graph.EpsilonClosure(g, ids) {
		t := g.ByID(id).Tag
		if t != "" && !seen[t] {
			seen[t] = true
			tags = append(tags, t)
		}
	}
	sort.Strings(tags)
	return strings.Join(tags, "+")
}
