package stackc

import "fmt"

// TokType categorizes a Token within an application-chosen input alphabet.
// The graph treats tokens opaquely except that edges are keyed by disjoint
// half-open ranges over this type's natural order.
type TokType int32

// Token is a single element of the input stream a compiled parser consumes.
// Applications usually produce Tokens from a scanner; the compiler itself
// never inspects anything but TokType(), and Lexeme() when reporting a
// rejection.
type Token interface {
	TokType() TokType
	Lexeme() string
	Value() interface{}
	Span() Span
}

// Span captures a half-open run of input positions [From, To) that a
// token, or a sequence of tokens, occupies.
type Span [2]uint64

// From returns the start position of a span.
func (s Span) From() uint64 { return s[0] }

// To returns the position just behind the end of a span.
func (s Span) To() uint64 { return s[1] }

// Len returns the length of the span.
func (s Span) Len() uint64 { return s[1] - s[0] }

// IsNull reports whether the span is the zero span.
func (s Span) IsNull() bool { return s == Span{} }

// Extend grows s to also cover other.
func (s Span) Extend(other Span) Span {
	if other[0] < s[0] {
		s[0] = other[0]
	}
	if other[1] > s[1] {
		s[1] = other[1]
	}
	return s
}

func (s Span) String() string {
	return fmt.Sprintf("(%d…%d)", s[0], s[1])
}

// Accumulator is the application-chosen output value threaded through a
// parse. Actions are pure functions from (Token, Accumulator) to a new
// Accumulator; the initial accumulator is supplied at parse start.
type Accumulator = interface{}

// Action is a pure, total function applied once per edge traversed.
type Action func(Token, Accumulator) Accumulator

// Identity is an Action that leaves the accumulator untouched. Used by
// Toss/Ignore. (The default combine for Calls is graph.KeepReturned.)
func Identity(_ Token, acc Accumulator) Accumulator { return acc }

// ActionID tags an Action for equality comparison during determinization.
// Two transitions merged by subset construction must carry actions with
// equal IDs, or the merge is a conflict (see package check). IDs are
// assigned once, at the combinator call site that creates the underlying
// Action; copy-and-relabel operations (Sequence, Alternation, Region)
// preserve the ID of whatever Action they copy, never minting a new one.
type ActionID uint64

// TaggedAction pairs an Action with its construction-time identity tag.
type TaggedAction struct {
	ID ActionID
	Fn Action
}

// Equal reports whether two tagged actions must be treated as the same
// action for the purposes of determinization merging.
func (a TaggedAction) Equal(other TaggedAction) bool {
	return a.ID == other.ID
}

func (a TaggedAction) String() string {
	return fmt.Sprintf("action#%d", a.ID)
}

// Apply runs the action, tolerating a nil function as identity (used for
// the zero TaggedAction on transitions that carry no side effect).
func (a TaggedAction) Apply(t Token, acc Accumulator) Accumulator {
	if a.Fn == nil {
		return acc
	}
	return a.Fn(t, acc)
}
