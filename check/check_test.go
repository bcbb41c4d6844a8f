package check_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grammarworks/stackc"
	"github.com/grammarworks/stackc/check"
	"github.com/grammarworks/stackc/combinator"
	"github.com/grammarworks/stackc/graph"
	"github.com/grammarworks/stackc/interp"
)

type charToken rune

func (c charToken) TokType() stackc.TokType { return stackc.TokType(c) }
func (c charToken) Lexeme() string          { return string(rune(c)) }
func (c charToken) Value() interface{}      { return rune(c) }
func (c charToken) Span() stackc.Span       { return stackc.Span{} }

func tokens(s string) []stackc.Token {
	out := make([]stackc.Token, len(s))
	for i, r := range s {
		out[i] = charToken(r)
	}
	return out
}

func TestCompileBalancedParensAcceptsNested(t *testing.T) {
	paren := combinator.Recursive(func(self combinator.Parser) combinator.Parser {
		body := combinator.Region("parens", combinator.Toss('('), self, combinator.Toss(')'), nil)
		return combinator.Alternation(combinator.Empty(), body)
	})
	dfa, bag := check.Compile(paren.Graph)
	require.False(t, bag.HasErrors(), "unexpected diagnostics: %v", bag.Items())
	require.NoError(t, dfa.Validate())

	acc, err := interp.Run(dfa, tokens("(())"), 0)
	require.NoError(t, err)
	assert.Equal(t, 0, acc)

	_, err = interp.Run(dfa, tokens("(()"), 0)
	assert.Error(t, err)
}

func TestCompileIsDeterministicAcrossRuns(t *testing.T) {
	build := func() *graph.DFAGraph {
		p := combinator.Sequence(combinator.Toss('a'), combinator.Toss('b'))
		dfa, _ := check.Compile(p.Graph)
		return dfa
	}
	d1, d2 := build(), build()
	assert.Equal(t, len(d1.States), len(d2.States))
	assert.Equal(t, d1.Initial, d2.Initial)
}

func TestCompileMergesEquivalentStates(t *testing.T) {
	// Two disjoint single-token branches that both land on an identical,
	// indistinguishable accepting continuation should be merged into one
	// DFA state for that continuation under MergeEquivalentStates.
	left := combinator.Sequence(combinator.Toss('a'), combinator.Toss('x'))
	right := combinator.Sequence(combinator.Toss('b'), combinator.Toss('x'))
	alt := combinator.Alternation(left, right)

	merged, _ := check.Compile(alt.Graph, check.MergeEquivalentStates(true))
	unmerged, _ := check.Compile(alt.Graph, check.MergeEquivalentStates(false))
	assert.LessOrEqual(t, len(merged.States), len(unmerged.States))
}

func TestCompileFlagsDispatchConflict(t *testing.T) {
	actionA := stackc.Tag(func(_ stackc.Token, acc stackc.Accumulator) stackc.Accumulator { return acc })
	actionB := stackc.Tag(func(_ stackc.Token, acc stackc.Accumulator) stackc.Accumulator { return acc })

	a := graph.NewArena()
	s1 := a.Reserve()
	init := a.Add(&graph.State{Dispatch: graph.Curried{Ranges: []graph.RangeEdge{
		{Lo: 'a', Hi: 'b', To: graph.Transition{Kind: graph.Lateral, Next: s1, Action: actionA}},
	}}})
	a.Set(s1, &graph.State{})

	s2 := a.Reserve()
	second := a.Add(&graph.State{Dispatch: graph.Curried{Ranges: []graph.RangeEdge{
		{Lo: 'a', Hi: 'b', To: graph.Transition{Kind: graph.Lateral, Next: s2, Action: actionB}},
	}}})
	a.Set(s2, &graph.State{})

	g := a.Graph(init, second)
	_, bag := check.Compile(g)
	assert.True(t, bag.HasErrors())
}

func TestCompileAppliesProduceBetweenTokenConsumers(t *testing.T) {
	double := func(acc stackc.Accumulator) stackc.Accumulator { return acc.(int) * 2 }
	increment := func(_ stackc.Token, acc stackc.Accumulator) stackc.Accumulator { return acc.(int) + 1 }

	p := combinator.Sequence(
		combinator.Any(increment),
		combinator.Sequence(combinator.Produce(double), combinator.Any(increment)),
	)
	dfa, bag := check.Compile(p.Graph)
	require.False(t, bag.HasErrors(), "unexpected diagnostics: %v", bag.Items())

	acc, err := interp.Run(dfa, tokens("ab"), 0)
	require.NoError(t, err)
	// increment(0) -> 1 on 'a', Produce doubles it to 2 at the seam, then
	// increment(2) -> 3 on 'b'. A Produce silently doing nothing (the bug
	// Produce's ExitAction never being read left in place) would leave
	// this at 2.
	assert.Equal(t, 3, acc)
}

func TestCompileProduceFiresOnceAtEndOfInput(t *testing.T) {
	double := func(acc stackc.Accumulator) stackc.Accumulator { return acc.(int) * 2 }
	increment := func(_ stackc.Token, acc stackc.Accumulator) stackc.Accumulator { return acc.(int) + 1 }

	p := combinator.Sequence(combinator.Any(increment), combinator.Produce(double))
	dfa, bag := check.Compile(p.Graph)
	require.False(t, bag.HasErrors())

	acc, err := interp.Run(dfa, tokens("a"), 0)
	require.NoError(t, err)
	assert.Equal(t, 2, acc)
}

func TestCompileDualDelimiterRecursionRequiresMatchingClose(t *testing.T) {
	nested := combinator.Recursive(func(self combinator.Parser) combinator.Parser {
		parens := combinator.Region("parens", combinator.Toss('('), self, combinator.Toss(')'), nil)
		brackets := combinator.Region("brackets", combinator.Toss('['), self, combinator.Toss(']'), nil)
		return combinator.Alternation(combinator.Empty(), combinator.Alternation(parens, brackets))
	})
	dfa, bag := check.Compile(nested.Graph)
	require.False(t, bag.HasErrors(), "unexpected diagnostics: %v", bag.Items())
	require.NoError(t, dfa.Validate())

	acc, err := interp.Run(dfa, tokens("([])"), 0)
	require.NoError(t, err)
	assert.Equal(t, 0, acc)

	// Compile reports no static conflict for this grammar: the shared
	// recursive body's accepting states are legitimately epsilon-linked to
	// both Regions' return markers (see check/reachability.go's doc
	// comment). The mismatch can only be caught dynamically, by
	// interp.Run validating the Dest a Return arm requires against the
	// frame actually on the call stack (see combinator.Region's
	// closeContinuation and appendReturnArms).
	_, err = interp.Run(dfa, tokens("(]"), 0)
	require.Error(t, err)

	_, err = interp.Run(dfa, tokens("[)"), 0)
	require.Error(t, err)
}

func TestCompileExpandsFilterPredicate(t *testing.T) {
	isDigit := func(tt stackc.TokType) bool { return tt >= '0' && tt <= '9' }
	p := combinator.Filter(isDigit, stackc.Identity)
	dfa, bag := check.Compile(p.Graph)
	require.False(t, bag.HasErrors())
	require.NoError(t, dfa.Validate())

	acc, err := interp.Run(dfa, tokens("7"), nil)
	require.NoError(t, err)
	assert.Nil(t, acc)

	_, err = interp.Run(dfa, tokens("x"), nil)
	assert.Error(t, err)
}
