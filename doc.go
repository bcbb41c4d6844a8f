/*
Package stackc compiles parser specifications, built from a small set of
combinators, into deterministic stack automata, and either runs them
directly (package interp) or lowers them to a standalone Go source file of
tail-calling state functions (package emit).

Building a Parser

Parsers are values, built with the combinator algebra in package
combinator. Clients compose primitives (Empty, Any, Filter, Range, Toss,
Produce) with operators (Sequence, Alternation, Region):

	import "github.com/grammarworks/stackc/combinator"

	p := combinator.Sequence(
		combinator.Toss('a'),
		combinator.Sequence(
			combinator.Alternation(combinator.Toss('b'), combinator.Toss('z')),
			combinator.Toss('c'),
		),
	)

Checking and Determinizing

A combinator value carries a nondeterministic graph (package graph). Before
it can be run or emitted, it must be checked and determinized:

	g, bag := check.Compile(p.Graph)
	if bag.HasErrors() {
		// bag.Items() holds conflict / unreachable-return reports
	}

Running and Emitting

Both consumers accept exactly the same deterministic graph and agree
bit-for-bit on accept/reject and the produced output value:

	acc, err := interp.Run(g, tokens, initialAccumulator)
	src, err := emit.Emit(g, emit.PackageName("balancedparens"))

License

Governed by a 3-Clause BSD license, inherited from the automata toolkit
this module grew out of. License file may be found in the root folder of
this module.
*/
package stackc
