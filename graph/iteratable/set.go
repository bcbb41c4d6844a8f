/*
Package iteratable implements a destructive, iterable set of uint32 values.

It exists mainly to support the nondeterministic-state worklist used by
subset construction (package check): a work item is a set of NFA state
IDs, and the classic subset-construction algorithm repeatedly mutates a
"seen" set and a "still to process" set in place while walking it.
Modeling the set as destructive — mutated by Union/Add rather than
returning a fresh copy — keeps that worklist loop allocation-light and
matches the way this module's automata tooling has always expressed the
same algorithm.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package iteratable

import "sort"

// Set is a destructive set of uint32, with built-in single-pass iteration
// support for worklist-style algorithms (IterateOnce/Next/Item).
type Set struct {
	members map[uint32]struct{}
	order   []uint32 // insertion order, for deterministic iteration
	cursor  int
	started bool
}

// New creates an empty set.
func New(init ...uint32) *Set {
	s := &Set{members: make(map[uint32]struct{}, len(init))}
	for _, v := range init {
		s.Add(v)
	}
	return s
}

// Add inserts v into the set. Destructive: mutates the receiver.
func (s *Set) Add(v uint32) *Set {
	if s.members == nil {
		s.members = make(map[uint32]struct{})
	}
	if _, ok := s.members[v]; !ok {
		s.members[v] = struct{}{}
		s.order = append(s.order, v)
	}
	return s
}

// Remove deletes v from the set, if present. Destructive.
func (s *Set) Remove(v uint32) *Set {
	if _, ok := s.members[v]; !ok {
		return s
	}
	delete(s.members, v)
	for i, x := range s.order {
		if x == v {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return s
}

// Contains reports whether v is a member.
func (s *Set) Contains(v uint32) bool {
	_, ok := s.members[v]
	return ok
}

// Size returns the number of members.
func (s *Set) Size() int { return len(s.members) }

// Empty reports whether the set has no members.
func (s *Set) Empty() bool { return len(s.members) == 0 }

// Union destructively adds every member of other to s, and reports
// whether s changed.
func (s *Set) Union(other *Set) bool {
	changed := false
	for _, v := range other.order {
		if !s.Contains(v) {
			s.Add(v)
			changed = true
		}
	}
	return changed
}

// Difference returns a fresh set holding the members of s not in other.
// Unlike Union/Add/Remove, Difference does not mutate either operand.
func (s *Set) Difference(other *Set) *Set {
	out := New()
	for _, v := range s.order {
		if !other.Contains(v) {
			out.Add(v)
		}
	}
	return out
}

// Copy returns a shallow, independent copy of s.
func (s *Set) Copy() *Set {
	out := New()
	for _, v := range s.order {
		out.Add(v)
	}
	return out
}

// Equals reports whether s and other contain exactly the same members.
func (s *Set) Equals(other *Set) bool {
	if other == nil || len(s.members) != len(other.members) {
		return false
	}
	for v := range s.members {
		if !other.Contains(v) {
			return false
		}
	}
	return true
}

// Values returns the members in deterministic (sorted) order.
func (s *Set) Values() []uint32 {
	out := append([]uint32(nil), s.order...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// IterateOnce resets the cursor to the start of the set's live member
// order. Crucially, the loop it drives is over the *live* underlying
// order, not a frozen snapshot: closure-style algorithms rely on being
// able to Union newly discovered members into s while a Next() loop is
// still running and have those new members show up before the loop ends
// — exactly the "keep going until nothing new turns up" shape of NFA
// epsilon-closure / subset-construction worklists.
func (s *Set) IterateOnce() {
	s.cursor = -1
	s.started = true
}

// Next advances the cursor, returning false once every member — including
// any unioned in since the loop started — has been visited.
func (s *Set) Next() bool {
	if !s.started {
		s.IterateOnce()
	}
	s.cursor++
	return s.cursor < len(s.order)
}

// Item returns the current member during a Next() loop.
func (s *Set) Item() uint32 {
	return s.order[s.cursor]
}
