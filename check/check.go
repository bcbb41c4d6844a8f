/*
Package check determinizes a combinator-built graph.NFAGraph into a
graph.DFAGraph by subset construction, exactly as lr/tables.go builds a
CFSM from LR items: a worklist of not-yet-expanded state sets, each
popped once, expanded one token cell at a time, and deduplicated against
every set already seen. Two kinds of problem it can find along the way —
a dispatch cell where sibling NFA states disagree on what should happen,
and a Call whose pushed destination symbol no Return in the resulting
graph can ever reach — are reported through a diag.Bag rather than
returned as an error; Compile always returns a usable (if imperfect)
DFAGraph so callers can choose whether diagnostics are fatal.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package check

import (
	"github.com/npillmayer/schuko/tracing"

	"github.com/grammarworks/stackc"
	"github.com/grammarworks/stackc/diag"
	"github.com/grammarworks/stackc/graph"
)

func tracer() tracing.Trace { return tracing.Select("stackc.check") }

// config holds every tunable determinization dial. Zero config (no
// Options given) is deliberately the most aggressive, most ambitious
// setting: merge equivalent states, renumber canonically, and treat a
// 256-value alphabet (ASCII plus a little headroom) as "bounded enough"
// for both Predicate expansion and the fallback-segment probe.
type config struct {
	mergeEquivalentStates bool
	canonicalStateOrder   bool
	emitAcceptAnyFallback bool
	alphabetBound         stackc.TokType
}

func defaultConfig() config {
	return config{
		mergeEquivalentStates: true,
		canonicalStateOrder:   true,
		emitAcceptAnyFallback: true,
		alphabetBound:         256,
	}
}

// Option configures one Compile call.
type Option func(*config)

// MergeEquivalentStates toggles the post-determinization Hopcroft-style
// merge of indistinguishable states. Default true.
func MergeEquivalentStates(enabled bool) Option {
	return func(c *config) { c.mergeEquivalentStates = enabled }
}

// CanonicalStateOrder toggles renumbering the final DFA's states in BFS
// order from the initial state, so that isomorphic graphs, however their
// states happened to be allocated, compile to identical DFAGraph values
// (spec 8's determinism property). Default true.
func CanonicalStateOrder(enabled bool) Option {
	return func(c *config) { c.canonicalStateOrder = enabled }
}

// EmitAcceptAnyFallback toggles collapsing a dispatch cell that matches
// identically across the whole alphabet (including beyond AlphabetBound)
// into a single AcceptAny arm, rather than one explicit Range over
// [0, AlphabetBound) plus a Fallback. Default true; turn off to keep that
// Range explicit, e.g. for inspecting generated tables.
func EmitAcceptAnyFallback(enabled bool) Option {
	return func(c *config) { c.emitAcceptAnyFallback = enabled }
}

// AlphabetBound sets how many leading TokType values (0..bound) subset
// construction probes explicitly when resolving a dispatch cell; tokens
// at or beyond the bound are resolved by one extra probe at exactly
// bound, whose result becomes a Fallback (or, under
// EmitAcceptAnyFallback, folded into an AcceptAny arm). This is the same
// bounded-alphabet simplification Filter's Predicate expansion relies on
// (see combinator.Filter): a predicate, or a set of them, cannot in
// general be partitioned into disjoint ranges without assuming some
// finite universe to scan. Default 256.
func AlphabetBound(n stackc.TokType) Option {
	return func(c *config) { c.alphabetBound = n }
}

// Compile determinizes g into a DFAGraph, reporting every dispatch
// conflict and unreachable Return destination it finds along the way.
// The returned DFAGraph is always complete and usable; bag.HasErrors
// tells the caller whether to trust it.
func Compile(g *graph.NFAGraph, opts ...Option) (*graph.DFAGraph, *diag.Bag) {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	bag := diag.NewBag()

	dfa := subsetConstruct(g, cfg, bag)
	checkReturnReachability(dfa, bag)

	if cfg.mergeEquivalentStates {
		dfa = mergeEquivalent(dfa)
	}
	if cfg.canonicalStateOrder {
		dfa = canonicalize(dfa)
	}

	tracer().Debugf("check: compiled %d NFA states into %d DFA states (%d diagnostics)",
		len(g.States), len(dfa.States), len(bag.Items()))
	return dfa, bag
}
