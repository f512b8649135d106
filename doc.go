/*
Package rope implements a rope data structure over user-defined elements
which carry a nonnegative integer width.

A rope is a balanced tree sequence container with O(log n) edits. This
package generalizes the classic text rope: instead of bytes, leaves hold
arbitrary elements implementing Measurable, and the tree aggregates two
coordinate spaces at once, the element count ("index") and the sum of
element widths ("width"). Widths may be zero, which makes the width
coordinate non-injective; all width-addressed operations therefore come in
a start-biased and an end-biased flavor (see the comments on
startWidthToIndex and endWidthToIndex).

Ropes are persistent in the usual sense: cloning a rope clones a pointer,
and mutations copy only the path from the root to the touched leaf, so
clones are cheap and never disturbed by later edits. A single
rope value is to be mutated by one goroutine at a time; reading shared
subtrees from multiple goroutines is safe.
*/
package rope

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'rope'.
func tracer() tracing.Trace {
	return tracing.Select("rope")
}
