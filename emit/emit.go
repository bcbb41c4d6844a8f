/*
Package emit translates a deterministic graph into standalone Go source:
one function per state, Lateral transitions as tail calls, Call as an
ordinary function call followed by a tail call to the destination state,
Return as a host-level return (spec.md section 4.4). It is grounded on
the code-generation style the pack itself uses for this exact kind of
job — a Go source template plus a gofmt pass, the way
`aretext/text/segment/gen_props.go` builds a `text/template` over scanned
data, and the LR-generator reference file renders its tables the same
way — rather than on any AST-construction library (`go/ast`/`go/printer`
never appear in the pack; `text/template` + `go/format` does).

Two things a compiled graph carries cannot be reproduced as literal Go
source, because they are opaque closures rather than data: the actions
attached to edges (stackc.TaggedAction.Fn) and the combine functions
attached to Call edges (graph.Combine). Emitted source therefore
references them indirectly by the same identifiers the graph already
carries — stackc.ActionID for actions, and a small sequential ordinal
assigned here (in canonical traversal order, so it stays a pure function
of the graph) for combines — and the generated entrypoint takes a
Runtime value supplying the real closures for those identifiers. This
mirrors how package interp itself receives real closures through the
DFAGraph it is handed rather than through source text; the only thing
emit moves into source is the control flow spec.md 4.4 names (state
functions, tail calls, ordinary calls, returns), never the action bodies
themselves.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package emit

import (
	"fmt"
	"go/format"
	"strings"

	"github.com/npillmayer/schuko/tracing"

	"github.com/grammarworks/stackc/graph"
)

func tracer() tracing.Trace {
	return tracing.Select("stackc.emit")
}

// Config controls the only semantically visible choices in emitted
// source (spec.md 4.4's target_language_config): identifier naming
// policy and a namespace prefix. Everything else about the output is
// determined by the graph alone.
type Config struct {
	packageName string
	prefix      string
	entryName   string
}

// Option configures Emit, following the same functional-option shape as
// package check's Option (and, in the teacher, earley.Option).
type Option func(*Config)

func defaultConfig() Config {
	return Config{packageName: "parser", prefix: "state", entryName: "Run"}
}

// PackageName sets the generated file's package clause. Default "parser".
func PackageName(name string) Option {
	return func(c *Config) { c.packageName = name }
}

// FuncPrefix sets the namespace prefix every generated state function
// name carries (stateN becomes <prefix>N). Default "state".
func FuncPrefix(prefix string) Option {
	return func(c *Config) { c.prefix = prefix }
}

// EntryName sets the name of the exported entrypoint function. Default
// "Run".
func EntryName(name string) Option {
	return func(c *Config) { c.entryName = name }
}

// armKey locates one dispatch arm of one state: the range index, or one
// of the two sentinels for the AcceptAny/Fallback arms a Curried may also
// carry. It is the unit assignCombineIDs and writeState both key off of,
// since two different arms of the very same state may each carry their
// own (or no) Call/combine.
type armKey int

const (
	armAny      armKey = -1
	armFallback armKey = -2
)

func armRange(i int) armKey { return armKey(i) }

type armRef struct {
	state graph.StateID
	arm   armKey
}

// Emit renders g as standalone Go source implementing spec.md 4.4's
// translation. The output is a pure function of (g, opts): no hashing, no
// pointer addresses, no wall-clock, and state ids are renumbered in
// canonical BFS order from g.Initial before anything is rendered, so that
// isomorphic deterministic graphs (spec 8's "Canonical numbering"
// property) emit byte-identical source regardless of the arena order
// check's subset construction happened to allocate them in.
func Emit(g *graph.DFAGraph, opts ...Option) ([]byte, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("stackc/emit: %w", err)
	}

	order, remap := canonicalOrder(g)
	combineIDs := assignCombineIDs(g, order)

	var b strings.Builder
	writeHeader(&b, cfg)
	writeRuntime(&b)
	writeEntry(&b, cfg, remap[g.Initial])
	for _, oldID := range order {
		writeState(&b, cfg, g, oldID, remap, combineIDs)
	}

	tracer().Debugf("emit: rendered %d states as package %s", len(order), cfg.packageName)

	formatted, err := format.Source([]byte(b.String()))
	if err != nil {
		return nil, fmt.Errorf("stackc/emit: formatting generated source: %w\n%s", err, b.String())
	}
	return formatted, nil
}

// canonicalOrder performs a plain BFS from g.Initial, exactly the
// traversal package check's own canonicalize pass uses, so that two
// structurally isomorphic graphs (even if check.Compile allocated their
// states in different arena orders) yield the same emitted order. It
// returns the old-id traversal order and a map from old id to its
// canonical (0-based, in traversal order) new id.
func canonicalOrder(g *graph.DFAGraph) ([]graph.StateID, map[graph.StateID]int) {
	remap := map[graph.StateID]int{}
	var order []graph.StateID
	queue := []graph.StateID{g.Initial}
	remap[g.Initial] = 0
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		order = append(order, id)
		for _, next := range successors(g, id) {
			if _, seen := remap[next]; seen {
				continue
			}
			remap[next] = len(remap)
			queue = append(queue, next)
		}
	}
	return order, remap
}

func successors(g *graph.DFAGraph, id graph.StateID) []graph.StateID {
	st := g.ByID(id)
	if st == nil {
		return nil
	}
	var out []graph.StateID
	add := func(t graph.Transition) {
		out = append(out, t.Next)
		if t.Kind == graph.Call || t.Kind == graph.Return {
			out = append(out, t.Dest)
		}
	}
	if st.Dispatch.AcceptAny {
		add(st.Dispatch.Any)
		return out
	}
	for _, r := range st.Dispatch.Ranges {
		add(r.To)
	}
	if st.Dispatch.Fallback != nil {
		add(*st.Dispatch.Fallback)
	}
	return out
}

// assignCombineIDs walks the graph in canonical order and hands out
// sequential ordinals to distinct Combine values (compared by pointer
// identity, the same test Transition.Equal already relies on) the first
// time each is seen on a Call arm — deterministic given the graph, and
// independent of anything process-global such as map iteration order.
func assignCombineIDs(g *graph.DFAGraph, order []graph.StateID) map[armRef]int {
	out := map[armRef]int{}
	seen := map[string]int{}
	next := 0
	register := func(ref armRef, fn graph.Combine) {
		key := "<nil>"
		if fn != nil {
			key = fmt.Sprintf("%p", fn)
		}
		id, ok := seen[key]
		if !ok {
			id = next
			seen[key] = id
			next++
		}
		out[ref] = id
	}
	for _, id := range order {
		st := g.ByID(id)
		if st == nil {
			continue
		}
		if st.Dispatch.AcceptAny {
			if st.Dispatch.Any.Kind == graph.Call {
				register(armRef{id, armAny}, st.Dispatch.Any.Merge)
			}
			continue
		}
		for i, r := range st.Dispatch.Ranges {
			if r.To.Kind == graph.Call {
				register(armRef{id, armRange(i)}, r.To.Merge)
			}
		}
		if st.Dispatch.Fallback != nil && st.Dispatch.Fallback.Kind == graph.Call {
			register(armRef{id, armFallback}, st.Dispatch.Fallback.Merge)
		}
	}
	return out
}
