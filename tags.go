package stackc

import "sync/atomic"

// tagCounter hands out monotonically increasing ActionIDs across the whole
// process. Parser construction is purely functional and single-threaded per
// the spec, but the counter is still atomic: combinator constructors are
// total, pure functions that may legitimately be called concurrently by a
// client building several independent parsers at once.
var tagCounter uint64

// Tag wraps a raw Action in a freshly minted TaggedAction. Every primitive
// combinator constructor (Filter, Range, Any, Produce, Toss) calls this
// exactly once per Action value it is handed; composite operators
// (Sequence, Alternation, Region) only ever copy existing TaggedActions,
// never call Tag again, so that determinization sees the same ID for an
// action regardless of how many times the surrounding graph was
// restructured.
func Tag(fn Action) TaggedAction {
	id := atomic.AddUint64(&tagCounter, 1)
	return TaggedAction{ID: ActionID(id), Fn: fn}
}
