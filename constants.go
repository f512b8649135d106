//go:build !smallchunks

package rope

// Node bounds for regular builds. A full leaf or branch node weighs in at
// roughly one kibibyte, which keeps nodes allocator-friendly.
//
// minLen is intentionally a little smaller than half of maxLen, to leave
// some wiggle room when a node sits right on the edge of merging/splitting.
const (
	maxLen      = 63
	maxChildren = 24

	minLen      = maxLen/2 - maxLen/32
	minChildren = maxChildren / 2

	// debugChecks enables the expensive structural re-verification after
	// seam fixes; the smallchunks test build switches it on.
	debugChecks = false
)
