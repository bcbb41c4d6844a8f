package interp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grammarworks/stackc"
	"github.com/grammarworks/stackc/graph"
)

type charToken rune

func (c charToken) TokType() stackc.TokType  { return stackc.TokType(c) }
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

// balancedParenDFA hand-builds the deterministic graph combinator.Region
// would emit for Region("parens", Toss('('), Empty(), Toss(')'), combine).
func balancedParenDFA(combine graph.Combine) *graph.DFAGraph {
	return &graph.DFAGraph{
		Initial: 0,
		States: []*graph.State{
			{ // s0: waiting for '('
				ID: 0,
				Dispatch: graph.Curried{Ranges: []graph.RangeEdge{
					{Lo: '(', Hi: '(' + 1, To: graph.Transition{
						Kind: graph.Call, Next: 1, Dest: 2, Action: stackc.Tag(stackc.Identity), Merge: combine,
					}},
				}},
				NonAcceptance: []string{"expected '('"},
			},
			{ // s1: inside the region, waiting for ')'
				ID: 1,
				Dispatch: graph.Curried{Ranges: []graph.RangeEdge{
					{Lo: ')', Hi: ')' + 1, To: graph.Transition{
						Kind: graph.Return, Next: 2, Dest: 2, Action: stackc.Tag(stackc.Identity), Merge: combine,
					}},
				}},
				NonAcceptance: []string{"unmatched '('"},
			},
			{ID: 2}, // accepting
		},
	}
}

func TestRunAcceptsBalancedParens(t *testing.T) {
	keepPre := func(pre, _ stackc.Accumulator) stackc.Accumulator { return pre }
	g := balancedParenDFA(keepPre)
	require.NoError(t, g.Validate())

	acc, err := Run(g, tokens("()"), 7)
	require.NoError(t, err)
	assert.Equal(t, 7, acc)
}

func TestRunRejectsUnmatchedOpen(t *testing.T) {
	g := balancedParenDFA(graph.KeepReturned)
	_, err := Run(g, tokens("("), 0)
	require.Error(t, err)
	var rej *RejectError
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, graph.StateID(1), rej.State)
}

func TestRunRejectsUnmatchedClose(t *testing.T) {
	g := balancedParenDFA(graph.KeepReturned)
	_, err := Run(g, tokens(")"), 0)
	require.Error(t, err)
}

func TestCombineMergesPreAndReturned(t *testing.T) {
	sum := func(pre, returned stackc.Accumulator) stackc.Accumulator {
		return pre.(int) + returned.(int)
	}
	g := balancedParenDFA(sum)
	acc, err := Run(g, tokens("()"), 3)
	require.NoError(t, err)
	assert.Equal(t, 6, acc) // pre=3 saved at call, returned=3 (still 3, identity actions), combined 3+3
}
