package rope

// Builder is an incremental rope constructor. Feeding it elements or
// chunks and calling Finish runs in time linear in the total number of
// elements, which is much faster than repeatedly inserting at the end of a
// rope.
//
// The builder keeps a stack of nodes along the right spine of the growing
// tree (one per level, deepest last) plus a buffer of pending elements
// smaller than one leaf. Finish consumes the builder; to build several
// ropes sharing a prefix, build the prefix once and Append the remainders.
type Builder[M Measurable] struct {
	stack        []*node[M]
	buffer       []M
	lastChunkLen int
}

// NewBuilder creates a builder ready for input.
func NewBuilder[M Measurable]() *Builder[M] {
	return &Builder[M]{
		stack:  []*node[M]{newNode[M]()},
		buffer: make([]M, 0, maxLen),
	}
}

// Append appends a single element to the in-progress rope.
func (b *Builder[M]) Append(element M) {
	b.appendInternal([]M{element}, false)
}

// AppendSlice appends a chunk of elements to the in-progress rope. The
// chunk may be of any size; larger chunks are more efficient.
func (b *Builder[M]) AppendSlice(chunk []M) {
	b.appendInternal(chunk, false)
}

// Finish flushes the pending buffer, zips the spine levels together and
// returns the finished rope. The builder must not be used afterwards.
func (b *Builder[M]) Finish() *Rope[M] {
	b.appendInternal(nil, true)
	return b.finishInternal(true)
}

// buildAtOnce builds a rope from a single known slice, skipping the
// pending buffer. FromSlice is implemented on top of this.
func (b *Builder[M]) buildAtOnce(chunk []M) *Rope[M] {
	b.appendInternal(chunk, true)
	return b.finishInternal(true)
}

// appendChunkRaw appends contents as one leaf node, bypassing all size
// management. Tests use this to construct specific tree shapes; it makes
// no attempt to be consistent with Append and must not be mixed with it.
func (b *Builder[M]) appendChunkRaw(contents []M) {
	b.appendLeafNode(newLeaf(leafFromSlice(contents)))
}

// finishNoFix finishes without restoring the tree invariants. Goes
// together with appendChunkRaw in tests.
func (b *Builder[M]) finishNoFix() *Rope[M] {
	return b.finishInternal(false)
}

//-----------------------------------------------------------------

func (b *Builder[M]) appendInternal(chunk []M, isLastChunk bool) {
	// Repeatedly chop leaf-sized pieces off the input and append them to
	// the tree.
	for len(chunk) > 0 || (len(b.buffer) > 0 && isLastChunk) {
		leafChunk, useBuffer, remainder := b.nextLeafSlice(chunk, isLastChunk)
		chunk = remainder

		switch {
		case useBuffer:
			b.lastChunkLen = len(b.buffer)
			b.appendLeafNode(newLeaf(leafFromSlice(b.buffer)))
			b.buffer = b.buffer[:0]
		case leafChunk != nil:
			b.lastChunkLen = len(leafChunk)
			b.appendLeafNode(newLeaf(leafFromSlice(leafChunk)))
		default:
			return
		}
	}
}

// nextLeafSlice carves the next leaf's worth of elements out of chunk,
// filling up the pending buffer first. It returns either a slice to emit,
// or useBuffer=true to emit the buffer, or neither when the input was
// swallowed by the buffer; plus the unconsumed remainder.
func (b *Builder[M]) nextLeafSlice(chunk []M, isLastChunk bool) (leafChunk []M, useBuffer bool, remainder []M) {
	assertThat(len(b.buffer) < maxLen, "builder buffer full when receiving a chunk")

	switch {
	case len(b.buffer) == 0 && len(chunk) >= maxLen:
		// Enough input for a full leaf without buffering. Keep at least
		// one element back so the final leaf is never empty.
		splitIndex := intMin(maxLen, len(chunk)-1)
		return chunk[:splitIndex], false, chunk[splitIndex:]

	case len(chunk)+len(b.buffer) >= maxLen:
		// Top the buffer up to a full leaf.
		splitIndex := maxLen - len(b.buffer)
		b.buffer = append(b.buffer, chunk[:splitIndex]...)
		return nil, true, chunk[splitIndex:]

	case isLastChunk:
		if len(b.buffer) == 0 {
			if len(chunk) == 0 {
				return nil, false, nil
			}
			return chunk, false, nil
		}
		b.buffer = append(b.buffer, chunk...)
		return nil, true, nil

	default:
		b.buffer = append(b.buffer, chunk...)
		return nil, false, nil
	}
}

// appendLeafNode pushes a finished leaf onto the spine. The reserve of one
// child slot per level (maxChildren-1 rather than maxChildren) keeps room
// for the final zip-up in finishInternal.
func (b *Builder[M]) appendLeafNode(leaf *node[M]) {
	last := b.stack[len(b.stack)-1]
	b.stack = b.stack[:len(b.stack)-1]

	if last.isLeaf() {
		if last.leaf.len() == 0 {
			// Initial sentinel: replace it.
			b.stack = append(b.stack, leaf)
		} else {
			children := newBranchChildren[M]()
			children.push(childEntry[M]{info: last.sliceInfo(), node: last})
			children.push(childEntry[M]{info: leaf.sliceInfo(), node: leaf})
			b.stack = append(b.stack, newBranch(children))
		}
		return
	}

	b.stack = append(b.stack, last)
	left := leaf
	stackIndex := len(b.stack) - 1
	for {
		if stackIndex < 0 {
			// Walked off the top: grow a new root level.
			children := newBranchChildren[M]()
			children.push(childEntry[M]{info: left.sliceInfo(), node: left})
			b.stack = append(b.stack, nil)
			copy(b.stack[1:], b.stack)
			b.stack[0] = newBranch(children)
			break
		}
		level := b.stack[stackIndex]
		if level.childCount() < maxChildren-1 {
			level.children.push(childEntry[M]{info: left.sliceInfo(), node: left})
			break
		}
		// No room at this level: split it and carry the left half up.
		right := newBranch(level.children.pushSplit(childEntry[M]{info: left.sliceInfo(), node: left}))
		left = level
		b.stack[stackIndex] = right
		stackIndex--
	}
}

// finishInternal zips the spine levels from top of stack downward, pushing
// each as the last child of the level below, and wraps the result in a
// rope. Unless fixTree is disabled (test hook), it then repairs the right
// spine, mends the seam in front of an undersized last chunk and pulls up
// singular roots.
func (b *Builder[M]) finishInternal(fixTree bool) *Rope[M] {
	for i := len(b.stack) - 1; i >= 1; i-- {
		level := b.stack[i]
		below := b.stack[i-1]
		assertThat(below.isBranch, "builder spine level above a leaf")
		below.children.push(childEntry[M]{info: level.sliceInfo(), node: level})
	}

	rope := &Rope[M]{root: b.stack[0]}
	b.stack = nil

	if fixTree {
		rope.root.zipFixRight()
		if b.lastChunkLen < minLen && b.lastChunkLen != rope.Len() {
			// The last chunk came out undersized: mend the seam between
			// it and its predecessor.
			seam := rope.IndexToWidth(rope.Len() - b.lastChunkLen)
			rope.root.fixTreeSeam(seam)
		}
		rope.pullUpSingularNodes()
	}
	return rope
}
