package rope

// Coordinate conversions inside a single chunk of elements.
//
// Because elements may have width zero, a width coordinate does not name a
// unique index: all zero-width elements of a run sit at the same width.
// The two conversions below resolve the ambiguity in opposite directions.

// startWidthToIndex returns the first index whose prefix-width sum reaches
// `width`, i.e. the position *before* any run of zero-width elements
// sitting exactly at that coordinate. If `width` falls strictly inside an
// element, the index of that element is returned.
func startWidthToIndex[M Measurable](elements []M, width int) int {
	index := 0
	accum := 0
	for _, m := range elements {
		next := accum + m.Width()
		if next > width || (next == width && m.Width() == 0) {
			break
		}
		accum = next
		index++
	}
	return index
}

// endWidthToIndex returns the last index whose prefix-width sum does not
// exceed `width`, i.e. the position *after* any run of zero-width elements
// sitting exactly at that coordinate.
func endWidthToIndex[M Measurable](elements []M, width int) int {
	index := 0
	accum := 0
	for _, m := range elements {
		accum += m.Width()
		if accum > width {
			break
		}
		index++
	}
	return index
}

// indexToWidth sums the widths of the first `index` elements.
func indexToWidth[M Measurable](elements []M, index int) int {
	assertThat(index <= len(elements), "element index out of range: %d > %d", index, len(elements))
	width := 0
	for _, m := range elements[:index] {
		width += m.Width()
	}
	return width
}

// zeroWidthEnd reports whether the last element of a chunk has width zero.
// Branch nodes cache this bit per child; it is what lets the width searches
// tell the two sides of a zero-width run apart without descending.
func zeroWidthEnd[M Measurable](elements []M) bool {
	if len(elements) == 0 {
		return false
	}
	return elements[len(elements)-1].Width() == 0
}
