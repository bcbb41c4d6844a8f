package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grammarworks/stackc"
)

func TestCurriedDispatchRange(t *testing.T) {
	c := Curried{Ranges: []RangeEdge{
		{Lo: 'a', Hi: 'b', To: Transition{Kind: Lateral, Next: 1}},
		{Lo: 'c', Hi: 'd', To: Transition{Kind: Lateral, Next: 2}},
	}}
	tr, ok := c.Dispatch('a')
	require.True(t, ok)
	assert.Equal(t, StateID(1), tr.Next)

	_, ok = c.Dispatch('b')
	assert.False(t, ok)
}

func TestCurriedDispatchFallback(t *testing.T) {
	fallback := Transition{Kind: Lateral, Next: 9}
	c := Curried{
		Ranges:   []RangeEdge{{Lo: 'a', Hi: 'b', To: Transition{Kind: Lateral, Next: 1}}},
		Fallback: &fallback,
	}
	tr, ok := c.Dispatch('z')
	require.True(t, ok)
	assert.Equal(t, StateID(9), tr.Next)
}

func TestArenaReserveThenWire(t *testing.T) {
	a := NewArena()
	id0 := a.Reserve()
	id1 := a.Reserve()
	a.Set(id0, &State{Dispatch: Curried{Ranges: []RangeEdge{
		{Lo: 'x', Hi: 'y', To: Transition{Kind: Lateral, Next: id1}},
	}}})
	a.Set(id1, &State{})
	g := a.Graph(id0)
	require.NoError(t, g.Validate())
	assert.Equal(t, 2, len(g.States))
}

func TestValidateRejectsOverlap(t *testing.T) {
	g := &NFAGraph{
		States: []*State{{ID: 0, Dispatch: Curried{Ranges: []RangeEdge{
			{Lo: 'a', Hi: 'c'}, {Lo: 'b', Hi: 'd'},
		}}}},
		Initial: []StateID{0},
	}
	assert.Error(t, g.Validate())
}

func TestValidateRejectsOutOfRangeTarget(t *testing.T) {
	g := &NFAGraph{
		States: []*State{{ID: 0, Dispatch: Curried{Ranges: []RangeEdge{
			{Lo: 'a', Hi: 'b', To: Transition{Kind: Lateral, Next: 42}},
		}}}},
		Initial: []StateID{0},
	}
	assert.Error(t, g.Validate())
}

func TestMergeRelabelsDisjoint(t *testing.T) {
	g1 := &NFAGraph{States: []*State{{ID: 0}, {ID: 1}}, Initial: []StateID{0}}
	g2 := &NFAGraph{States: []*State{{ID: 0}}, Initial: []StateID{0}}
	a, relabel := Merge(g1, g2)
	assert.Equal(t, 3, a.Len())
	assert.Equal(t, StateID(0), relabel[0](0))
	assert.Equal(t, StateID(2), relabel[1](0))
}

func TestTaggedActionEqualityByID(t *testing.T) {
	tagged := stackc.Tag(func(tok stackc.Token, acc stackc.Accumulator) stackc.Accumulator { return acc })
	other := stackc.Tag(func(tok stackc.Token, acc stackc.Accumulator) stackc.Accumulator { return acc })
	assert.True(t, tagged.Equal(tagged))
	assert.False(t, tagged.Equal(other))
}
