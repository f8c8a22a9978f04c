package colour

import (
	"cmp"
	"slices"
)

const octreeDepth = 8

// octreeNode is one node of the colour octree. Every node carries the channel
// sums and pixel count of its whole subtree.
type octreeNode struct {
	level    int
	order    int
	leaf     bool
	leaves   int
	children [8]*octreeNode
	r, g, b  uint64
	count    uint64
}

// mean returns the rounded mean colour of the pixels below n.
func (n *octreeNode) mean() RGB {
	half := n.count / 2
	return RGB{
		R: uint8((n.r + half) / n.count),
		G: uint8((n.g + half) / n.count),
		B: uint8((n.b + half) / n.count),
	}
}

// OctreeQuantizer reduces a colour population with a fixed-depth octree.
//
// Subtrees are folded into leaves deepest level first, smallest population
// first, skipping any fold that would leave fewer than k leaves. If more than k
// leaves survive, the least populous ones are folded into the kept leaf
// nearest their mean colour.
type OctreeQuantizer struct{}

// NewOctreeQuantizer creates a new OctreeQuantizer.
func NewOctreeQuantizer() *OctreeQuantizer {
	return &OctreeQuantizer{}
}

// octree holds the per-call state of a quantization run.
type octree struct {
	root      *octreeNode
	reducible [octreeDepth][]*octreeNode
	leafCount int
	nodesMade int
}

func (t *octree) newNode(level int) *octreeNode {
	n := &octreeNode{level: level, order: t.nodesMade, leaf: level == octreeDepth}
	t.nodesMade++
	if n.leaf {
		t.leafCount++
	} else {
		t.reducible[level] = append(t.reducible[level], n)
	}
	return n
}

func childIndex(c RGB, level int) int {
	shift := 7 - level
	idx := 0
	if c.R>>shift&1 == 1 {
		idx |= 4
	}
	if c.G>>shift&1 == 1 {
		idx |= 2
	}
	if c.B>>shift&1 == 1 {
		idx |= 1
	}
	return idx
}

func (t *octree) insert(c RGB, weight uint64) {
	node := t.root
	for {
		node.r += uint64(c.R) * weight
		node.g += uint64(c.G) * weight
		node.b += uint64(c.B) * weight
		node.count += weight
		if node.leaf {
			return
		}
		idx := childIndex(c, node.level)
		if node.children[idx] == nil {
			node.children[idx] = t.newNode(node.level + 1)
		}
		node = node.children[idx]
	}
}

// countLeaves refreshes the leaves field of n and everything below it.
func countLeaves(n *octreeNode) int {
	if n.leaf {
		n.leaves = 1
		return 1
	}
	total := 0
	for _, child := range n.children {
		if child != nil {
			total += countLeaves(child)
		}
	}
	n.leaves = total
	return total
}

func byPopulation(a, b *octreeNode) int {
	if c := cmp.Compare(a.count, b.count); c != 0 {
		return c
	}
	return cmp.Compare(a.order, b.order)
}

// reduceLevel folds nodes at level into leaves, smallest population first,
// while more than k leaves remain. Nodes at one level have disjoint subtrees,
// so leaf counts taken before the pass stay valid throughout it.
func (t *octree) reduceLevel(level, k int) {
	countLeaves(t.root)

	nodes := t.reducible[level]
	slices.SortFunc(nodes, byPopulation)
	for _, n := range nodes {
		if t.leafCount <= k {
			return
		}
		if t.leafCount-(n.leaves-1) < k {
			continue
		}
		n.children = [8]*octreeNode{}
		n.leaf = true
		t.leafCount -= n.leaves - 1
	}
}

func (t *octree) collect(n *octreeNode, out []*octreeNode) []*octreeNode {
	if n.leaf {
		if n.count == 0 {
			return out
		}
		return append(out, n)
	}
	for _, child := range n.children {
		if child != nil {
			out = t.collect(child, out)
		}
	}
	return out
}

func colourDistanceSq(a, b RGB) int {
	dr := int(a.R) - int(b.R)
	dg := int(a.G) - int(b.G)
	db := int(a.B) - int(b.B)
	return dr*dr + dg*dg + db*db
}

// foldSmallest keeps the k most populous leaves and folds every other leaf
// into the kept leaf whose mean colour is nearest. Ties keep the earlier leaf.
func foldSmallest(leaves []*octreeNode, k int) []*octreeNode {
	ranked := slices.Clone(leaves)
	slices.SortFunc(ranked, func(a, b *octreeNode) int {
		if c := cmp.Compare(b.count, a.count); c != 0 {
			return c
		}
		return cmp.Compare(a.order, b.order)
	})

	kept := ranked[:k]
	means := make([]RGB, k)
	for i, n := range kept {
		means[i] = n.mean()
	}

	for _, n := range ranked[k:] {
		c := n.mean()
		best, bestDist := 0, colourDistanceSq(c, means[0])
		for i := 1; i < k; i++ {
			if d := colourDistanceSq(c, means[i]); d < bestDist {
				best, bestDist = i, d
			}
		}
		dst := kept[best]
		dst.r += n.r
		dst.g += n.g
		dst.b += n.b
		dst.count += n.count
	}

	slices.SortFunc(kept, func(a, b *octreeNode) int {
		return cmp.Compare(a.order, b.order)
	})
	return kept
}

// Quantize clusters the histogram into min(k, unique colours) colours.
func (q *OctreeQuantizer) Quantize(h histogram, k int) []Cluster {
	if h.len() == 0 || k < 1 {
		return nil
	}

	t := &octree{}
	t.root = t.newNode(0)
	for i, c := range h.colours {
		t.insert(c, h.counts[i])
	}

	for level := octreeDepth - 1; level >= 0 && t.leafCount > k; level-- {
		t.reduceLevel(level, k)
	}

	leaves := t.collect(t.root, make([]*octreeNode, 0, t.leafCount))
	if len(leaves) > k {
		leaves = foldSmallest(leaves, k)
	}

	clusters := make([]Cluster, 0, len(leaves))
	for _, n := range leaves {
		clusters = append(clusters, Cluster{Colour: n.mean(), Count: n.count})
	}
	return clusters
}
