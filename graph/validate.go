package graph

import "fmt"

// Validate checks the structural invariants spec.md section 3 places on
// any graph, nondeterministic or not: disjoint ranges per state, in-bounds
// transition targets, and a valid initial index. It does not check
// determinism-specific invariants (singleton indices) or the
// determinize-only passes (conflict, return-reachability) — those live in
// package check, since they require information beyond one graph's shape.
func (g *NFAGraph) Validate() error {
	if len(g.Initial) == 0 {
		return fmt.Errorf("graph: empty initial index")
	}
	for _, id := range g.Initial {
		if g.ByID(id) == nil {
			return fmt.Errorf("graph: initial state %d out of range", id)
		}
	}
	for _, s := range g.States {
		if err := validateState(s, len(g.States)); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks the same structural invariants for a deterministic
// graph, where the initial index is a single state.
func (g *DFAGraph) Validate() error {
	if g.ByID(g.Initial) == nil {
		return fmt.Errorf("graph: initial state %d out of range", g.Initial)
	}
	for _, s := range g.States {
		if err := validateState(s, len(g.States)); err != nil {
			return err
		}
	}
	return nil
}

func validateState(s *State, n int) error {
	inBounds := func(id StateID) error {
		if int(id) < 0 || int(id) >= n {
			return fmt.Errorf("graph: state %d has out-of-range target %d", s.ID, id)
		}
		return nil
	}
	checkTrans := func(t Transition) error {
		switch t.Kind {
		case Lateral, Call:
			if err := inBounds(t.Next); err != nil {
				return err
			}
		case Return:
			// Return's target is resolved at runtime from the stack, not
			// statically known here.
		}
		if t.Kind == Call || t.Kind == Return {
			if err := inBounds(t.Dest); err != nil {
				return err
			}
		}
		return nil
	}
	if s.Dispatch.AcceptAny {
		if err := checkTrans(s.Dispatch.Any); err != nil {
			return err
		}
		return nil
	}
	for i, r := range s.Dispatch.Ranges {
		if r.Lo >= r.Hi {
			return fmt.Errorf("graph: state %d range #%d is empty or inverted [%d,%d)", s.ID, i, r.Lo, r.Hi)
		}
		for j := i + 1; j < len(s.Dispatch.Ranges); j++ {
			if r.overlaps(s.Dispatch.Ranges[j]) {
				return fmt.Errorf("graph: state %d has overlapping ranges [%d,%d) and [%d,%d)",
					s.ID, r.Lo, r.Hi, s.Dispatch.Ranges[j].Lo, s.Dispatch.Ranges[j].Hi)
			}
		}
		if err := checkTrans(r.To); err != nil {
			return err
		}
	}
	if s.Dispatch.Predicate != nil {
		if err := checkTrans(s.Dispatch.Predicate.To); err != nil {
			return err
		}
	}
	if s.Dispatch.Fallback != nil {
		if err := checkTrans(*s.Dispatch.Fallback); err != nil {
			return err
		}
	}
	for _, e := range s.Eps {
		for _, tg := range e.Targets {
			if err := inBounds(tg); err != nil {
				return err
			}
		}
	}
	return nil
}
