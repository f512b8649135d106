package rope

// Mutation algorithms on nodes.
//
// All of these assume the receiver is exclusively owned by the running
// operation (the rope façade clones the root, recursion goes through
// branchChildren.makeMut). They take the node's cached SliceInfo from the
// parent where incremental delta updates are possible, and report a
// residual right sibling upward when a split propagates.

// residual is a right-sibling node handed upward when an operation
// overflowed a node's capacity.
type residual[M Measurable] struct {
	info SliceInfo
	node *node[M]
}

// editFunc is the leaf-level termination of editChunkAtWidth. It receives
// the width offset within the leaf and the leaf's SliceInfo, edits the leaf
// in place, and returns the leaf's new SliceInfo plus an optional residual
// leaf if the edit had to split.
type editFunc[M Measurable] func(width int, leafInfo SliceInfo, leaf *leafSlice[M]) (SliceInfo, *residual[M])

// editChunkAtWidth descends to the leaf containing `width` and lets `edit`
// rewrite it. On unwind the touched child entries are re-cached, and a
// residual leaf is either inserted into the parent or propagated by
// splitting the parent. The caller handles a residual escaping the root by
// growing the tree one level.
func (n *node[M]) editChunkAtWidth(width int, nodeInfo SliceInfo, edit editFunc[M]) (SliceInfo, *residual[M]) {
	if n.isLeaf() {
		return edit(width, nodeInfo, &n.leaf)
	}
	children := &n.children

	// Compact leaf children if we are very close to maximum leaf
	// fragmentation. This guards against memory ballooning when elements
	// are repeatedly appended to the end of a rope.
	const fragMinLen = maxLen*minChildren + maxLen/32
	if children.isFull() && children.nodes[0].isLeaf() && children.combinedInfo().Len < fragMinLen {
		tracer().Debugf("compacting %d leaf children below fill ratio", children.len())
		children.compactLeaves()
	}

	childIndex, accum := children.searchWidthOnly(width)
	info := children.info[childIndex].info

	lInfo, res := children.makeMut(childIndex).editChunkAtWidth(width-accum.Width, info, edit)
	children.info[childIndex] = childInfo{
		info:         lInfo,
		zeroWidthEnd: children.nodes[childIndex].zeroWidthEnd(),
	}

	if res == nil {
		return nodeInfo.Sub(info).Add(lInfo), nil
	}
	if children.len() < maxChildren {
		children.insert(childIndex+1, childEntry[M]{info: res.info, node: res.node})
		return nodeInfo.Sub(info).Add(lInfo).Add(res.info), nil
	}
	right := children.insertSplit(childIndex+1, childEntry[M]{info: res.info, node: res.node})
	rInfo := right.combinedInfo()
	return children.combinedInfo(), &residual[M]{info: rInfo, node: newBranch(right)}
}

// removeRange deletes the width range [startWidth,endWidth) from the
// subtree. It returns the node's updated SliceInfo and whether a seam fix
// (fixTreeSeam) is required afterwards because an undersized node could not
// be repaired locally.
//
// Removing every element of the tree is special-cased by the façade; this
// method expects at least one element to survive.
func (n *node[M]) removeRange(startWidth, endWidth int, nodeInfo SliceInfo) (SliceInfo, bool) {
	if n.isLeaf() {
		leaf := &n.leaf
		startIndex := startWidthToIndex(leaf.elements, startWidth)

		// Nothing to do when the removal is strictly inside one element.
		if startWidth == endWidth &&
			(startIndex == leaf.len() || leaf.at(startIndex).Width() > 0) {
			return leaf.info(), false
		}

		endIndex := endWidthToIndex(leaf.elements, endWidth)
		if startIndex > 0 || endIndex < leaf.len() {
			segLen := endIndex - startIndex
			if segLen < leaf.len()-segLen {
				// Removal shorter than the remainder: cheaper to subtract.
				info := nodeInfo.Sub(sliceInfoOf(leaf.elements[startIndex:endIndex]))
				leaf.removeRange(startIndex, endIndex)
				return info, false
			}
			leaf.removeRange(startIndex, endIndex)
			return leaf.info(), false
		}
		leaf.removeRange(startIndex, endIndex)
		return SliceInfo{}, false
	}

	children := &n.children

	// handleChild recurses into one child with the range clamped to the
	// child's width interval, drops the child when it comes back empty,
	// and re-caches its entry otherwise.
	handleChild := func(childIndex, widthAccum int) (bool, SliceInfo) {
		tmpInfo := children.info[childIndex].info
		localStart := startWidth - intMin(widthAccum, startWidth)
		localEnd := intMin(endWidth-widthAccum, tmpInfo.Width)
		newInfo, needsFix := children.makeMut(childIndex).removeRange(localStart, localEnd, tmpInfo)

		if newInfo.Len == 0 {
			children.remove(childIndex)
		} else {
			children.info[childIndex] = childInfo{
				info:         newInfo,
				zeroWidthEnd: children.nodes[childIndex].zeroWidthEnd(),
			}
		}
		return needsFix, newInfo
	}

	// mergeChild repairs an undersized child with its neighbor.
	mergeChild := func(childIndex int) {
		if childIndex < children.len() && children.len() > 1 &&
			children.nodes[childIndex].isUndersized() {
			if childIndex == 0 {
				children.mergeDistribute(0, 1)
			} else {
				children.mergeDistribute(childIndex-1, childIndex)
			}
		}
	}

	lChild, rChild, lAccum, rAccum := children.searchWidthRange(startWidth, endWidth)

	if lChild == rChild {
		// Both endpoints fall into the same child.
		info := children.info[lChild].info
		needsFix, newInfo := handleChild(lChild, lAccum.Width)

		if children.len() > 0 {
			mergeChild(lChild)
			if children.nodes[intMin(lChild, children.len()-1)].isUndersized() {
				needsFix = true
			}
		}
		return nodeInfo.Sub(info).Add(newInfo), needsFix
	}

	// The range spans several children: drop the fully covered ones, then
	// recurse into the right and left survivors (in that order, so the
	// indices stay valid), and repair both seams right to left.
	needsFix := false
	startI := lChild + 1
	var endI int
	rChildExists := false
	if rAccum.Width+children.info[rChild].info.Width == endWidth {
		endI = rChild + 1
	} else {
		rChildExists = true
		endI = rChild
	}
	for i := startI; i < endI; i++ {
		children.remove(startI)
	}

	if rChildExists {
		fix, _ := handleChild(lChild+1, rAccum.Width)
		needsFix = needsFix || fix
	}
	fix, _ := handleChild(lChild, lAccum.Width)
	needsFix = needsFix || fix

	if children.len() > 0 {
		mergeExtent := 1
		if rChildExists {
			mergeExtent = 2
		}
		for i := lChild + mergeExtent - 1; i >= lChild; i-- {
			mergeChild(i)
		}
		if children.nodes[intMin(lChild, children.len()-1)].isUndersized() {
			needsFix = true
		}
	}
	return children.combinedInfo(), needsFix
}

// appendAtDepth concatenates `other` onto the right spine of the subtree,
// `depth` levels down. At the target level two branches merge if their
// combined children fit, or redistribute and report the leftover as a
// residual. Reaching a leaf at the target with a branch sibling (or the
// other way around) is a programming error.
func (n *node[M]) appendAtDepth(other *node[M], depth int) *node[M] {
	if depth == 0 {
		if n.isBranch {
			assertThat(other.isBranch, "tree-append siblings have differing types")
			other = other.clone() // other may be shared with its source rope
			childrenL, childrenR := &n.children, &other.children
			if childrenL.len()+childrenR.len() <= maxChildren {
				for childrenR.len() > 0 {
					entry := childrenR.remove(0)
					childrenL.push(entry)
				}
				return nil
			}
			childrenL.distributeWith(childrenR)
			return other
		}
		assertThat(other.isLeaf(), "tree-append siblings have differing types")
		return other
	}
	assertThat(n.isBranch, "reached leaf before getting to target depth")
	children := &n.children
	lastI := children.len() - 1
	res := children.makeMut(lastI).appendAtDepth(other, depth-1)
	children.updateChildInfo(lastI)
	if res == nil {
		return nil
	}
	if children.len() < maxChildren {
		children.push(childEntry[M]{info: res.sliceInfo(), node: res})
		return nil
	}
	right := children.pushSplit(childEntry[M]{info: res.sliceInfo(), node: res})
	return newBranch(right)
}

// prependAtDepth is the mirror image of appendAtDepth, descending the left
// spine. The residual, if any, is the left sibling for the caller to place
// in front.
func (n *node[M]) prependAtDepth(other *node[M], depth int) *node[M] {
	if depth == 0 {
		if n.isLeaf() {
			assertThat(other.isLeaf(), "tree-append siblings have differing types")
			return other
		}
		assertThat(other.isBranch, "tree-append siblings have differing types")
		other = other.clone()
		childrenL, childrenR := &other.children, &n.children
		if childrenL.len()+childrenR.len() <= maxChildren {
			for childrenL.len() > 0 {
				childrenR.insert(0, childrenL.pop())
			}
			return nil
		}
		childrenL.distributeWith(childrenR)
		return other
	}
	assertThat(n.isBranch, "reached leaf before getting to target depth")
	children := &n.children
	res := children.makeMut(0).prependAtDepth(other, depth-1)
	children.updateChildInfo(0)
	if res == nil {
		return nil
	}
	if children.len() < maxChildren {
		children.insert(0, childEntry[M]{info: res.sliceInfo(), node: res})
		return nil
	}
	// insertSplit keeps the left half in place; swap so that this node
	// stays the right half of the spine and the left half travels upward.
	rightPart := children.insertSplit(0, childEntry[M]{info: res.sliceInfo(), node: res})
	leftPart := *children
	*children = rightPart
	return newBranch(leftPart)
}

// endSplit splits the subtree at `width` with end-biased handling inside
// the chunk (a zero-width run at the cut goes left) and returns the right
// side. A width coinciding with a child boundary partitions at that
// boundary, so a zero-width run that starts the next child goes right. The
// receiver keeps the left side. Splitting at 0 or at the total width is a
// caller bug.
func (n *node[M]) endSplit(width int) *node[M] {
	assertThat(width != 0 && width != n.sliceInfo().Width, "split at tree edge: %d", width)
	if n.isLeaf() {
		index := endWidthToIndex(n.leaf.elements, width)
		return newLeaf(n.leaf.splitOff(index))
	}
	children := &n.children
	childIndex, accum := children.searchEndWidth(width)
	childInf := children.info[childIndex].info

	switch {
	case width == accum.Width:
		return newBranch(children.splitOff(childIndex))
	case width == accum.Width+childInf.Width:
		return newBranch(children.splitOff(childIndex + 1))
	default:
		rChildren := children.splitOff(childIndex + 1)
		rNode := children.makeMut(childIndex).endSplit(width - accum.Width)
		rChildren.insert(0, childEntry[M]{info: rNode.sliceInfo(), node: rNode})
		children.updateChildInfo(childIndex)
		rChildren.updateChildInfo(0)
		return newBranch(rChildren)
	}
}

// startSplit splits the subtree at `width` with start-biased handling
// inside the chunk (a zero-width run at the cut goes right) and returns
// the right side. A width coinciding with a child boundary partitions at
// that boundary, like endSplit does: the start search stops in front of a
// zero-width tail, but the boundary cases below then keep that child whole.
// Otherwise the width lies strictly inside the chosen child, and the cut
// recurses into it with the same start-biased rules.
func (n *node[M]) startSplit(width int) *node[M] {
	assertThat(width != 0 && width != n.sliceInfo().Width, "split at tree edge: %d", width)
	if n.isLeaf() {
		index := startWidthToIndex(n.leaf.elements, width)
		return newLeaf(n.leaf.splitOff(index))
	}
	children := &n.children
	childIndex, accum := children.searchStartWidth(width)
	childInf := children.info[childIndex].info

	switch {
	case width == accum.Width:
		return newBranch(children.splitOff(childIndex))
	case width == accum.Width+childInf.Width:
		return newBranch(children.splitOff(childIndex + 1))
	default:
		rChildren := children.splitOff(childIndex + 1)
		rNode := children.makeMut(childIndex).startSplit(width - accum.Width)
		rChildren.insert(0, childEntry[M]{info: rNode.sliceInfo(), node: rNode})
		children.updateChildInfo(childIndex)
		rChildren.updateChildInfo(0)
		return newBranch(rChildren)
	}
}

// zipFixLeft repairs undersized nodes down the left spine of the subtree,
// merging or redistributing with the right neighbor level by level until a
// level reports no further change. Returns whether anything changed that
// could affect the parent.
func (n *node[M]) zipFixLeft() bool {
	if n.isLeaf() {
		return false
	}
	children := &n.children
	didStuff := false
	for {
		if children.len() > 1 && children.nodes[0].isUndersized() {
			didStuff = children.mergeDistribute(0, 1) || didStuff
		}
		// Fixes inside the child leave its totals untouched, so the
		// cached entry stays accurate across the recursion.
		if !children.makeMut(0).zipFixLeft() {
			break
		}
	}
	return didStuff
}

// zipFixRight is the mirror image of zipFixLeft for the right spine.
func (n *node[M]) zipFixRight() bool {
	if n.isLeaf() {
		return false
	}
	children := &n.children
	didStuff := false
	for {
		lastI := children.len() - 1
		if children.len() > 1 && children.nodes[lastI].isUndersized() {
			didStuff = children.mergeDistribute(lastI-1, lastI) || didStuff
		}
		lastI = children.len() - 1
		if !children.makeMut(lastI).zipFixRight() {
			break
		}
	}
	return didStuff
}

// fixTreeSeam restores the minimum-size invariant around a single width
// coordinate, the seam left behind by removeRange or a tree append. Each
// level merges or redistributes the child(ren) straddling the seam, then
// recurses into them (both, when the seam lies exactly on a boundary away
// from the left edge), looping until a pass changes nothing.
func (n *node[M]) fixTreeSeam(width int) bool {
	if n.isLeaf() {
		return false
	}
	children := &n.children
	didStuff := false
	for {
		if children.len() > 1 {
			childIndex, startInfo := children.searchStartWidth(width)
			doMerge := children.nodes[childIndex].isUndersized()
			if childIndex == 0 {
				if doMerge {
					didStuff = children.mergeDistribute(0, 1) || didStuff
				}
			} else {
				doMerge = doMerge ||
					(startInfo.Width == width && children.nodes[childIndex-1].isUndersized())
				if doMerge {
					didStuff = children.mergeDistribute(childIndex-1, childIndex) || didStuff
				}
			}
		}

		childIndex, startInfo := children.searchStartWidth(width)
		if startInfo.Width == width && childIndex != 0 {
			tmp := children.info[childIndex-1].info.Width
			effect1 := children.makeMut(childIndex - 1).fixTreeSeam(tmp)
			effect2 := children.makeMut(childIndex).fixTreeSeam(0)
			if !effect1 && !effect2 {
				break
			}
		} else if !children.makeMut(childIndex).fixTreeSeam(width - startInfo.Width) {
			break
		}
	}
	if debugChecks {
		assertThat(children.isInfoAccurate(), "stale child info after seam fix")
	}
	return didStuff
}
