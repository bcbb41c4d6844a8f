package graph

// Arena allocates State IDs for a graph under construction. IDs are
// reserved before the states that reference them are wired up, so that
// cyclic graphs (any recursive parser) can be built without forward
// references ever dangling: a combinator can reserve a state, hand its ID
// out to whoever needs to point at it, and fill the state in later.
type Arena struct {
	states []*State
}

// NewArena creates an empty arena.
func NewArena() *Arena { return &Arena{} }

// Reserve allocates a fresh StateID with a placeholder (non-accepting,
// no outgoing edges) State, returning the ID for forward references.
func (a *Arena) Reserve() StateID {
	id := StateID(len(a.states))
	a.states = append(a.states, &State{ID: id, NonAcceptance: []string{"state not yet wired"}})
	return id
}

// Set installs the real State at a previously reserved ID.
func (a *Arena) Set(id StateID, st *State) {
	st.ID = id
	a.states[id] = st
}

// Add reserves and installs a state in one step, returning its ID.
func (a *Arena) Add(st *State) StateID {
	id := a.Reserve()
	a.Set(id, st)
	return id
}

// Len returns the number of states allocated so far.
func (a *Arena) Len() int { return len(a.states) }

// At returns the state previously installed at id, for in-place mutation
// by combinators splicing two already-merged graphs together (Sequence,
// Region).
func (a *Arena) At(id StateID) *State { return a.states[id] }

// States returns every state installed in the arena so far, for a
// combinator that needs to rewrite edges anywhere in what it has merged
// (Region's open->inner splice looks at all of open's states, not just
// its accepting ones, since a Call-bound edge can originate from any of
// them).
func (a *Arena) States() []*State { return a.states }

// Graph finalizes the arena into an NFAGraph with the given initial index.
func (a *Arena) Graph(initial ...StateID) *NFAGraph {
	return &NFAGraph{States: a.states, Initial: append([]StateID(nil), initial...)}
}

// DFA finalizes the arena into a DFAGraph with a singleton initial state.
// Package check is the only caller: subset construction is the only
// process that ever builds a graph with a singleton index from scratch.
func (a *Arena) DFA(initial StateID) *DFAGraph {
	return &DFAGraph{States: a.states, Initial: initial}
}

// Merge copies every state of every input graph into a single fresh
// Arena, relabeling each graph's state IDs by a disjoint offset, and
// returns the arena together with a per-input-graph function that maps an
// old StateID to its new one. This is the "rename B's state ids to be
// disjoint from A's" step used by Sequence, Alternation and Region.
func Merge(graphs ...*NFAGraph) (*Arena, []func(StateID) StateID) {
	a := NewArena()
	offsets := make([]StateID, len(graphs))
	relabelers := make([]func(StateID) StateID, len(graphs))
	for i, g := range graphs {
		offsets[i] = StateID(a.Len())
		for range g.States {
			a.Reserve()
		}
	}
	for i, g := range graphs {
		offset := offsets[i]
		relabel := func(id StateID) StateID { return id + offset }
		relabelers[i] = relabel
		for _, s := range g.States {
			a.Set(relabel(s.ID), cloneState(s, relabel, ""))
		}
	}
	return a, relabelers
}
