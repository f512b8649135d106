package rope

// node is one vertex of the rope's tree: either a leaf carrying a bounded
// run of elements, or a branch carrying a bounded array of child entries.
// All leaves of a tree sit at the same depth; a pure leaf has depth 1.
//
// Nodes are shared freely between rope incarnations. A node reached through
// branchChildren.makeMut is exclusively owned by the running mutation and
// may be written in place; every other access is read-only.
type node[M Measurable] struct {
	leaf     leafSlice[M]
	children branchChildren[M]
	isBranch bool
}

func newNode[M Measurable]() *node[M] {
	return newLeaf(newLeafSlice[M]())
}

func newLeaf[M Measurable](leaf leafSlice[M]) *node[M] {
	return &node[M]{leaf: leaf}
}

func newBranch[M Measurable](children branchChildren[M]) *node[M] {
	return &node[M]{children: children, isBranch: true}
}

func (n *node[M]) isLeaf() bool {
	return !n.isBranch
}

// clone returns a shallow copy of the node: leaf contents are copied,
// branch entry arrays are copied, child subtrees stay shared.
func (n *node[M]) clone() *node[M] {
	if n.isLeaf() {
		return newLeaf(n.leaf.clone())
	}
	return newBranch(n.children.clone())
}

func (n *node[M]) len() int {
	return n.sliceInfo().Len
}

func (n *node[M]) width() int {
	return n.sliceInfo().Width
}

func (n *node[M]) sliceInfo() SliceInfo {
	if n.isLeaf() {
		return n.leaf.info()
	}
	return n.children.combinedInfo()
}

func (n *node[M]) childCount() int {
	assertThat(n.isBranch, "attempt to count children of a leaf")
	return n.children.len()
}

func (n *node[M]) isUndersized() bool {
	if n.isLeaf() {
		return n.leaf.len() < minLen
	}
	return n.children.len() < minChildren
}

func (n *node[M]) zeroWidthEnd() bool {
	if n.isLeaf() {
		return n.leaf.zeroWidthEnd()
	}
	return n.children.zeroWidthEnd()
}

// depth counts the levels of the tree, including root and leaves; a single
// leaf node has depth 1.
func (n *node[M]) depth() int {
	depth := 1
	for !n.isLeaf() {
		depth++
		n = n.children.nodes[0]
	}
	return depth
}

// --- Read-only navigation --------------------------------------------------

// chunkAtIndex descends to the leaf containing element index `index` and
// returns its elements together with the info accumulated up to the start
// of that leaf.
func (n *node[M]) chunkAtIndex(index int) ([]M, SliceInfo) {
	var info SliceInfo
	for !n.isLeaf() {
		childIndex, accum := n.children.searchIndex(index)
		info = info.Add(accum)
		index -= accum.Len
		n = n.children.nodes[childIndex]
	}
	return n.leaf.elements, info
}

// firstChunkAtWidth descends with start-biased boundary handling and
// returns the leftmost leaf containing the width coordinate, together with
// the info accumulated up to its start.
func (n *node[M]) firstChunkAtWidth(width int) ([]M, SliceInfo) {
	var info SliceInfo
	for !n.isLeaf() {
		childIndex, accum := n.children.searchStartWidth(width)
		info = info.Add(accum)
		width -= accum.Width
		n = n.children.nodes[childIndex]
	}
	return n.leaf.elements, info
}

// lastChunkAtWidth is the end-biased counterpart of firstChunkAtWidth.
func (n *node[M]) lastChunkAtWidth(width int) ([]M, SliceInfo) {
	var info SliceInfo
	for !n.isLeaf() {
		childIndex, accum := n.children.searchEndWidth(width)
		info = info.Add(accum)
		width -= accum.Width
		n = n.children.nodes[childIndex]
	}
	return n.leaf.elements, info
}

// startWidthToSliceInfo converts a width coordinate into the (index,width)
// pair at its start-biased position.
func (n *node[M]) startWidthToSliceInfo(width int) SliceInfo {
	chunk, info := n.firstChunkAtWidth(width)
	index := startWidthToIndex(chunk, width-info.Width)
	return SliceInfo{Len: info.Len + index, Width: width}
}

// endWidthToSliceInfo converts a width coordinate into the (index,width)
// pair after any zero-width run at that coordinate.
func (n *node[M]) endWidthToSliceInfo(width int) SliceInfo {
	chunk, info := n.lastChunkAtWidth(width)
	index := endWidthToIndex(chunk, width-info.Width)
	return SliceInfo{Len: info.Len + index, Width: width}
}

// indexToSliceInfo converts an element index into the (index,width) pair
// at its position.
func (n *node[M]) indexToSliceInfo(index int) SliceInfo {
	chunk, info := n.chunkAtIndex(index)
	width := indexToWidth(chunk, index-info.Len)
	return SliceInfo{Len: index, Width: info.Width + width}
}

// --- Iteration -------------------------------------------------------------

// eachChunk walks the leaves in order, handing each leaf's elements and the
// info accumulated up to its start to the visitor. The walk stops early
// when the visitor returns false; eachChunk reports whether the walk ran to
// completion.
func (n *node[M]) eachChunk(accum SliceInfo, visit func([]M, SliceInfo) bool) (SliceInfo, bool) {
	if n.isLeaf() {
		if !visit(n.leaf.elements, accum) {
			return accum, false
		}
		return accum.Add(n.leaf.info()), true
	}
	for _, child := range n.children.nodes {
		var ok bool
		if accum, ok = child.eachChunk(accum, visit); !ok {
			return accum, false
		}
	}
	return accum, true
}

// --- Invariant checkers ----------------------------------------------------

// assertIntegrity checks that every cached (SliceInfo, zero-width-end)
// entry equals the child's own values, over the whole subtree.
func (n *node[M]) assertIntegrity() {
	if n.isLeaf() {
		return
	}
	for i, child := range n.children.nodes {
		assertThat(n.children.info[i].info == child.sliceInfo(),
			"cached slice-info of child %d is stale: %v ≠ %v", i, n.children.info[i].info, child.sliceInfo())
		assertThat(n.children.info[i].zeroWidthEnd == child.zeroWidthEnd(),
			"cached zero-width-end flag of child %d is stale", i)
		child.assertIntegrity()
	}
}

// assertBalance checks that all leaves sit at the same depth and returns
// that depth.
func (n *node[M]) assertBalance() int {
	if n.isLeaf() {
		return 1
	}
	first := n.children.nodes[0].assertBalance()
	for _, child := range n.children.nodes[1:] {
		assertThat(child.assertBalance() == first, "tree is depth-unbalanced")
	}
	return first + 1
}

// assertNodeSize checks the size bounds: non-root leaves are non-empty,
// non-root branches within [minChildren,maxChildren], and a root branch
// has at least two children.
func (n *node[M]) assertNodeSize(isRoot bool) {
	if n.isLeaf() {
		if !isRoot {
			assertThat(n.leaf.len() > 0, "non-root leaf is empty")
			assertThat(n.leaf.len() <= maxLen, "leaf oversized: %d > %d", n.leaf.len(), maxLen)
		}
		return
	}
	if isRoot {
		assertThat(n.children.len() > 1, "root branch has fewer than 2 children")
	} else {
		assertThat(n.children.len() >= minChildren,
			"non-root branch undersized: %d < %d", n.children.len(), minChildren)
	}
	assertThat(n.children.len() <= maxChildren, "branch oversized: %d > %d", n.children.len(), maxChildren)
	for _, child := range n.children.nodes {
		child.assertNodeSize(false)
	}
}
