//go:build smallchunks

package rope

// Tiny node bounds, selected with `-tags smallchunks`. These trigger deep
// trees without having to feed huge slices to the tests. The algorithms are
// identical under both constant sets.
const (
	maxLen      = 9
	maxChildren = 5

	minLen      = maxLen/2 - maxLen/32
	minChildren = maxChildren / 2

	debugChecks = true
)
