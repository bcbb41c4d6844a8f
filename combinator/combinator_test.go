package combinator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grammarworks/stackc"
	"github.com/grammarworks/stackc/graph"
)

func TestSequenceWithEmptyIsIdentity(t *testing.T) {
	p := Toss('a')
	assert.True(t, Sequence(Empty(), p).Equal(p))
	assert.True(t, Sequence(p, Empty()).Equal(p))
}

func TestAlternationAcceptsEither(t *testing.T) {
	p := Alternation(Toss('a'), Toss('b'))
	require.NoError(t, p.Graph.Validate())
	assert.Equal(t, 2, len(p.Graph.Initial))
}

func TestRegionBalancesParens(t *testing.T) {
	keepPre := func(pre, _ stackc.Accumulator) stackc.Accumulator { return pre }
	region := Region("parens", Toss('('), Empty(), Toss(')'), keepPre)
	require.NoError(t, region.Graph.Validate())

	acc := runSimple(t, region, "()")
	assert.Equal(t, 0, acc)
}

func TestRecursiveNestedParens(t *testing.T) {
	keepPre := func(pre, _ stackc.Accumulator) stackc.Accumulator { return pre }
	nested := Recursive(func(self Parser) Parser {
		return Alternation(Empty(), Region("parens", Toss('('), self, Toss(')'), keepPre))
	})
	require.NoError(t, nested.Graph.Validate())
	assert.True(t, len(nested.Graph.States) > 3)
}

func TestRecursiveSharedBodyAcrossDualDelimiters(t *testing.T) {
	keepPre := func(pre, _ stackc.Accumulator) stackc.Accumulator { return pre }
	nested := Recursive(func(self Parser) Parser {
		parens := Region("parens", Toss('('), self, Toss(')'), keepPre)
		brackets := Region("brackets", Toss('['), self, Toss(']'), keepPre)
		return Alternation(Empty(), Alternation(parens, brackets))
	})
	require.NoError(t, nested.Graph.Validate())
	assert.True(t, len(nested.Graph.States) > 3)

	// runSimple takes the first matching arm of the merged dispatch and
	// never compares a Return arm's Dest with the popped frame, so it would
	// also walk a mismatched close (e.g. "(]") to the end — this only
	// exercises that a body shared by two Regions with distinct close
	// delimiters still dispatches correctly when properly nested; the
	// dynamic rejection of a genuine mismatch is check_test.go's
	// TestCompileDualDelimiterRecursionRequiresMatchingClose.
	assert.Equal(t, 0, runSimple(t, nested, "([()])"))
}

// runSimple is a tiny, interp-free smoke test that walks the NFA by hand,
// always taking the first matching arm (after closing over any Epsilon
// edges, including the marker indirection Region and Recursive use to
// wire up a close-continuation that may not have existed yet at the time
// they ran) and always following Call/Return via an explicit slice stack
// — just enough to sanity check Region's wiring before package interp
// exists to do this properly.
func runSimple(t *testing.T, p Parser, input string) int {
	t.Helper()
	type frame struct {
		dest graph.StateID
	}
	var stack []frame
	current := graph.EpsilonClosure(p.Graph, p.Graph.Initial)
	for _, r := range input {
		dispatch := graph.MergedDispatch(p.Graph, current)
		tr, ok := dispatch.Dispatch(stackc.TokType(r))
		require.True(t, ok, "no transition for %q from states %v", r, current)
		switch tr.Kind {
		case graph.Lateral:
			current = graph.EpsilonClosure(p.Graph, []graph.StateID{tr.Next})
		case graph.Call:
			stack = append(stack, frame{dest: tr.Dest})
			current = graph.EpsilonClosure(p.Graph, []graph.StateID{tr.Next})
		case graph.Return:
			require.NotEmpty(t, stack, "return with empty stack")
			stack = stack[:len(stack)-1]
			current = graph.EpsilonClosure(p.Graph, []graph.StateID{tr.Next})
		}
	}
	require.Empty(t, stack, "unmatched open at end of input")
	require.True(t, graph.AnyAccepting(p.Graph, current))
	return len(stack)
}
