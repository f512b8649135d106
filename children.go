package rope

// branchChildren is the payload of a branch node: a bounded array of child
// entries. Each entry caches the child's SliceInfo and its zero-width-end
// flag next to the child pointer, so that searches and incremental metadata
// updates never have to touch the children themselves. The caches must
// equal the child's actual values at all times; isInfoAccurate checks this.
type branchChildren[M Measurable] struct {
	info  []childInfo
	nodes []*node[M]
}

// childInfo is the cached metadata of one child entry.
type childInfo struct {
	info         SliceInfo
	zeroWidthEnd bool
}

// childEntry pairs a child's info with its node for pushes and inserts.
type childEntry[M Measurable] struct {
	info SliceInfo
	node *node[M]
}

func newBranchChildren[M Measurable]() branchChildren[M] {
	return branchChildren[M]{
		info:  make([]childInfo, 0, maxChildren),
		nodes: make([]*node[M], 0, maxChildren),
	}
}

// clone returns a copy of the entry arrays. The children themselves are
// shared; mutating descents go through makeMut.
func (children *branchChildren[M]) clone() branchChildren[M] {
	cow := branchChildren[M]{
		info:  make([]childInfo, len(children.info), maxChildren),
		nodes: make([]*node[M], len(children.nodes), maxChildren),
	}
	copy(cow.info, children.info)
	copy(cow.nodes, children.nodes)
	return cow
}

func (children *branchChildren[M]) len() int {
	return len(children.nodes)
}

func (children *branchChildren[M]) isFull() bool {
	return len(children.nodes) == maxChildren
}

// makeMut prepares child i for mutation and returns it. The child is
// replaced by a shallow clone, so that subtrees shared with other rope
// incarnations are never written through (see DESIGN.md on copy-on-write).
func (children *branchChildren[M]) makeMut(i int) *node[M] {
	cow := children.nodes[i].clone()
	children.nodes[i] = cow
	return cow
}

func (children *branchChildren[M]) push(entry childEntry[M]) {
	assertThat(len(children.nodes) < maxChildren, "push would overflow branch")
	children.info = append(children.info, childInfo{info: entry.info, zeroWidthEnd: entry.node.zeroWidthEnd()})
	children.nodes = append(children.nodes, entry.node)
}

func (children *branchChildren[M]) pop() childEntry[M] {
	assertThat(len(children.nodes) > 0, "attempt to pop from childless branch")
	last := len(children.nodes) - 1
	entry := childEntry[M]{info: children.info[last].info, node: children.nodes[last]}
	children.info = children.info[:last]
	children.nodes[last] = nil
	children.nodes = children.nodes[:last]
	return entry
}

func (children *branchChildren[M]) insert(i int, entry childEntry[M]) {
	assertThat(len(children.nodes) < maxChildren, "insert would overflow branch")
	assertThat(i >= 0 && i <= len(children.nodes), "child index out of range: %d", i)
	children.info = append(children.info, childInfo{})
	copy(children.info[i+1:], children.info[i:])
	children.info[i] = childInfo{info: entry.info, zeroWidthEnd: entry.node.zeroWidthEnd()}
	children.nodes = append(children.nodes, nil)
	copy(children.nodes[i+1:], children.nodes[i:])
	children.nodes[i] = entry.node
}

func (children *branchChildren[M]) remove(i int) childEntry[M] {
	assertThat(i >= 0 && i < len(children.nodes), "child index out of range: %d", i)
	entry := childEntry[M]{info: children.info[i].info, node: children.nodes[i]}
	copy(children.info[i:], children.info[i+1:])
	children.info = children.info[:len(children.info)-1]
	copy(children.nodes[i:], children.nodes[i+1:])
	children.nodes[len(children.nodes)-1] = nil
	children.nodes = children.nodes[:len(children.nodes)-1]
	return entry
}

// splitOff cuts the entry array at index i, retaining [0,i) and returning
// the right part as a new sibling array.
func (children *branchChildren[M]) splitOff(i int) branchChildren[M] {
	assertThat(i >= 0 && i <= len(children.nodes), "child split index out of range: %d", i)
	right := newBranchChildren[M]()
	right.info = append(right.info, children.info[i:]...)
	right.nodes = append(right.nodes, children.nodes[i:]...)
	for j := i; j < len(children.nodes); j++ {
		children.nodes[j] = nil
	}
	children.info = children.info[:i]
	children.nodes = children.nodes[:i]
	return right
}

// pushSplit appends an entry to a full branch by splitting it in two.
// The receiver keeps the left half; the right half, with the new entry as
// its last child, is returned for the caller to wrap in a new node.
func (children *branchChildren[M]) pushSplit(entry childEntry[M]) branchChildren[M] {
	rCount := (len(children.nodes) + 1) / 2
	lCount := len(children.nodes) + 1 - rCount
	right := children.splitOff(lCount)
	right.push(entry)
	return right
}

// insertSplit inserts an entry at index i into a full branch by splitting.
// As with pushSplit, the receiver keeps the left half.
func (children *branchChildren[M]) insertSplit(i int, entry childEntry[M]) branchChildren[M] {
	assertThat(len(children.nodes) > 0, "attempt to insert-split empty branch")
	assertThat(i >= 0 && i <= len(children.nodes), "child index out of range: %d", i)
	extra := entry
	if i < len(children.nodes) {
		extra = children.pop()
		children.insert(i, entry)
	}
	right := children.splitOff(len(children.nodes) / 2)
	right.push(extra)
	return right
}

// distributeWith balances the child counts of two adjacent sibling arrays
// so that both satisfy the minimum, preserving child order.
func (children *branchChildren[M]) distributeWith(right *branchChildren[M]) {
	for children.len() < right.len()-1 {
		children.push(childEntry[M]{info: right.info[0].info, node: right.nodes[0]})
		right.remove(0)
	}
	for right.len() < children.len()-1 {
		right.insert(0, children.pop())
	}
}

// mergeDistribute resolves an undersized child pair (i, j), which must be
// adjacent. If the combined contents fit one node, child j is merged into
// child i and removed; otherwise the contents are redistributed so both
// children satisfy the minimum. Returns true iff the pair was merged into
// a single child.
func (children *branchChildren[M]) mergeDistribute(i, j int) bool {
	assertThat(i+1 == j, "merge of non-adjacent children: %d, %d", i, j)
	left := children.makeMut(i)
	right := children.makeMut(j)

	var removeRight bool
	switch {
	case left.isLeaf() && right.isLeaf():
		if left.leaf.len()+right.leaf.len() <= maxLen {
			left.leaf.extend(right.leaf.elements)
			removeRight = true
		} else {
			left.leaf.distribute(&right.leaf)
		}
	case !left.isLeaf() && !right.isLeaf():
		if left.children.len()+right.children.len() <= maxChildren {
			for right.children.len() > 0 {
				left.children.push(childEntry[M]{info: right.children.info[0].info, node: right.children.nodes[0]})
				right.children.remove(0)
			}
			removeRight = true
		} else {
			left.children.distributeWith(&right.children)
		}
	default:
		assertThat(false, "merge of leaf with branch sibling")
	}

	if removeRight {
		children.remove(j)
		children.updateChildInfo(i)
		return true
	}
	children.updateChildInfo(i)
	children.updateChildInfo(j)
	return false
}

// compactLeaves rebuilds the leaf children into fewer, fuller leaves. It is
// called on the edit path when a full branch of leaves carries far less
// data than its child count suggests, which happens under repeated
// end-append (see node.editChunkAtWidth for the fill heuristic).
func (children *branchChildren[M]) compactLeaves() {
	elements := make([]M, 0, children.combinedInfo().Len)
	for _, child := range children.nodes {
		assertThat(child.isLeaf(), "attempt to compact branch children")
		elements = append(elements, child.leaf.elements...)
	}
	leafCount := (len(elements) + maxLen - 1) / maxLen
	if leafCount == 0 {
		leafCount = 1
	}
	for len(children.nodes) > 0 {
		children.remove(0)
	}
	// Spread elements evenly so every rebuilt leaf satisfies the minimum.
	for i := 0; i < leafCount; i++ {
		start := i * len(elements) / leafCount
		end := (i + 1) * len(elements) / leafCount
		leaf := newLeaf(leafFromSlice(elements[start:end]))
		children.push(childEntry[M]{info: leaf.leaf.info(), node: leaf})
	}
}

// combinedInfo sums the cached infos of all entries.
func (children *branchChildren[M]) combinedInfo() SliceInfo {
	var info SliceInfo
	for i := range children.info {
		info = info.Add(children.info[i].info)
	}
	return info
}

// updateChildInfo re-caches entry i's SliceInfo and zero-width-end flag
// from the current state of the child.
func (children *branchChildren[M]) updateChildInfo(i int) {
	child := children.nodes[i]
	children.info[i] = childInfo{info: child.sliceInfo(), zeroWidthEnd: child.zeroWidthEnd()}
}

// isInfoAccurate reports whether every cached entry matches its child.
func (children *branchChildren[M]) isInfoAccurate() bool {
	for i, child := range children.nodes {
		if children.info[i].info != child.sliceInfo() {
			return false
		}
		if children.info[i].zeroWidthEnd != child.zeroWidthEnd() {
			return false
		}
	}
	return true
}

// zeroWidthEnd reports the flag of the last child.
func (children *branchChildren[M]) zeroWidthEnd() bool {
	if len(children.info) == 0 {
		return false
	}
	return children.info[len(children.info)-1].zeroWidthEnd
}

// --- Searches --------------------------------------------------------------
//
// All searches scan the cached entry infos left to right, accumulating the
// info of the skipped children, and return the chosen child index together
// with the accumulated info at its start. They differ only in how they
// treat a width that falls exactly on a child boundary; the cached
// zero-width-end bits decide which side of a zero-width run the boundary
// belongs to.

// searchIndex finds the child containing element index `index`. An index
// equal to the total length lands in the last child.
func (children *branchChildren[M]) searchIndex(index int) (int, SliceInfo) {
	var accum SliceInfo
	last := len(children.info) - 1
	for i := 0; i < last; i++ {
		next := accum.Len + children.info[i].info.Len
		if index < next {
			return i, accum
		}
		accum = accum.Add(children.info[i].info)
	}
	return last, accum
}

// searchStartWidth finds the leftmost child whose width interval contains
// `width`. A width on a boundary stays with the left child when that child
// ends in zero-width elements: the run sits exactly at the boundary
// coordinate and a start-biased search must not skip past it.
func (children *branchChildren[M]) searchStartWidth(width int) (int, SliceInfo) {
	var accum SliceInfo
	last := len(children.info) - 1
	for i := 0; i < last; i++ {
		next := accum.Width + children.info[i].info.Width
		if width < next || (width == next && children.info[i].zeroWidthEnd) {
			return i, accum
		}
		accum = accum.Add(children.info[i].info)
	}
	return last, accum
}

// searchEndWidth finds the rightmost child whose width interval contains
// `width`: boundaries advance to the right, so that a zero-width run at
// the boundary is consumed in full.
func (children *branchChildren[M]) searchEndWidth(width int) (int, SliceInfo) {
	var accum SliceInfo
	last := len(children.info) - 1
	for i := 0; i < last; i++ {
		next := accum.Width + children.info[i].info.Width
		if width < next {
			return i, accum
		}
		accum = accum.Add(children.info[i].info)
	}
	return last, accum
}

// searchWidthOnly is the plain lower-bound search used by the edit path:
// a width on a boundary lands in the left child, so that appending at the
// very end edits the last leaf instead of walking off the tree.
func (children *branchChildren[M]) searchWidthOnly(width int) (int, SliceInfo) {
	var accum SliceInfo
	last := len(children.info) - 1
	for i := 0; i < last; i++ {
		next := accum.Width + children.info[i].info.Width
		if width <= next {
			return i, accum
		}
		accum = accum.Add(children.info[i].info)
	}
	return last, accum
}

// searchWidthRange locates both endpoints of the range [start,end) in one
// scan: the start endpoint with start-biased boundary handling, the end
// endpoint with end-biased handling.
func (children *branchChildren[M]) searchWidthRange(start, end int) (startChild, endChild int, startAccum, endAccum SliceInfo) {
	assertThat(start <= end, "width range inverted: [%d,%d)", start, end)
	var accum SliceInfo
	startChild = -1
	last := len(children.info) - 1
	for i := 0; i < last; i++ {
		next := accum.Width + children.info[i].info.Width
		if startChild < 0 && (start < next || (start == next && children.info[i].zeroWidthEnd)) {
			startChild, startAccum = i, accum
		}
		if end < next {
			assertThat(startChild >= 0, "width range endpoints out of order")
			return startChild, i, startAccum, accum
		}
		accum = accum.Add(children.info[i].info)
	}
	if startChild < 0 {
		startChild, startAccum = last, accum
	}
	return startChild, last, startAccum, accum
}
