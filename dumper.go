package rope

import (
	"fmt"

	tp "github.com/xlab/treeprint"
)

// Dump renders the node structure of the rope as an indented tree, one
// line per node with its aggregate SliceInfo. Intended for debugging and
// test failure logs; the output format is not stable.
func (t *Rope[M]) Dump() string {
	header := fmt.Sprintf("Rope(len=%d width=%d depth=%d)\n", t.Len(), t.Width(), t.Depth())
	p := tp.New()
	dumpNode(p, t.root)
	return header + p.String()
}

func dumpNode[M Measurable](p tp.Tree, n *node[M]) {
	if n.isLeaf() {
		label := fmt.Sprintf("leaf %v", n.leaf.info())
		if n.leaf.zeroWidthEnd() {
			label += " ·0"
		}
		p.AddNode(label)
		return
	}
	branch := p.AddBranch(fmt.Sprintf("branch %v ×%d", n.children.combinedInfo(), n.children.len()))
	for _, child := range n.children.nodes {
		dumpNode(branch, child)
	}
}
