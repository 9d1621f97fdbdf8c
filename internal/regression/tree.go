package regression

import (
	"container/heap"
)

// Node is one node of a fitted tree. Leaves carry Value; split nodes send
// x[Feature] <= Threshold to Left.
type Node struct {
	Leaf      bool
	Value     float64
	Feature   int
	Threshold float64
	Left      int
	Right     int
	Gain      float64
	Samples   int
}

type Tree struct {
	Nodes []Node
}

func (t *Tree) Predict(x []float64) float64 {
	i := 0
	for {
		n := &t.Nodes[i]
		if n.Leaf {
			return n.Value
		}
		if x[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

func (t *Tree) predictBinned(binned [][]uint8, row int, splitBins []uint8) float64 {
	i := 0
	for {
		n := &t.Nodes[i]
		if n.Leaf {
			return n.Value
		}
		if binned[n.Feature][row] <= splitBins[i] {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

// LeafCount counts terminal nodes.
func (t *Tree) LeafCount() int {
	c := 0
	for _, n := range t.Nodes {
		if n.Leaf {
			c++
		}
	}
	return c
}

type growParams struct {
	maxLeafNodes   int
	maxDepth       int
	minSamplesLeaf int
	l2             float64
	shrinkage      float64
}

type splitInfo struct {
	found     bool
	gain      float64
	feature   int
	bin       uint8
	gradLeft  float64
	hessLeft  float64
	countLeft int
}

type growNode struct {
	id      int
	depth   int
	samples []int
	grad    float64
	hess    float64
	split   splitInfo
}

type splitQueue []*growNode

func (q splitQueue) Len() int { return len(q) }
func (q splitQueue) Less(i, j int) bool {
	if q[i].split.gain != q[j].split.gain {
		return q[i].split.gain > q[j].split.gain
	}
	return q[i].id < q[j].id
}
func (q splitQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *splitQueue) Push(x interface{}) { *q = append(*q, x.(*growNode)) }
func (q *splitQueue) Pop() interface{} {
	old := *q
	n := old[len(old)-1]
	*q = old[:len(old)-1]
	return n
}

type treeGrower struct {
	params    growParams
	binned    [][]uint8
	mapper    *BinMapper
	gradients []float64
	hessians  []float64

	tree      *Tree
	splitBins []uint8
	gains     []float64
}

// grow builds one tree best-first: the leaf with the largest gain is split
// next until no leaf can be split or the leaf budget is spent.
func (g *treeGrower) grow(samples []int) (*Tree, []uint8) {
	g.tree = &Tree{}
	g.splitBins = nil

	root := g.newNode(samples, 0)
	queue := &splitQueue{}
	if root.split.found {
		heap.Push(queue, root)
	}

	leaves := 1
	for queue.Len() > 0 && leaves < g.params.maxLeafNodes {
		node := heap.Pop(queue).(*growNode)
		left, right := g.apply(node)
		leaves++

		for _, child := range []*growNode{left, right} {
			if child.split.found {
				heap.Push(queue, child)
			}
		}
	}
	return g.tree, g.splitBins
}

func (g *treeGrower) newNode(samples []int, depth int) *growNode {
	var grad, hess float64
	for _, i := range samples {
		grad += g.gradients[i]
		hess += g.hessians[i]
	}

	id := len(g.tree.Nodes)
	g.tree.Nodes = append(g.tree.Nodes, Node{
		Leaf:    true,
		Value:   g.leafValue(grad, hess),
		Samples: len(samples),
	})
	g.splitBins = append(g.splitBins, 0)

	n := &growNode{id: id, depth: depth, samples: samples, grad: grad, hess: hess}
	if depth < g.params.maxDepth && len(samples) >= 2*g.params.minSamplesLeaf {
		n.split = g.findSplit(n)
	}
	return n
}

func (g *treeGrower) leafValue(grad, hess float64) float64 {
	return -g.params.shrinkage * grad / (hess + g.params.l2)
}

func (g *treeGrower) score(grad, hess float64) float64 {
	return grad * grad / (hess + g.params.l2)
}

func (g *treeGrower) findSplit(n *growNode) splitInfo {
	best := splitInfo{}
	parent := g.score(n.grad, n.hess)
	total := len(n.samples)

	for j := range g.binned {
		bins := g.mapper.NumBins(j)
		if bins < 2 {
			continue
		}

		gradHist := make([]float64, bins)
		hessHist := make([]float64, bins)
		countHist := make([]int, bins)
		col := g.binned[j]
		for _, i := range n.samples {
			b := col[i]
			gradHist[b] += g.gradients[i]
			hessHist[b] += g.hessians[i]
			countHist[b]++
		}

		var gl, hl float64
		var cl int
		for b := 0; b < bins-1; b++ {
			gl += gradHist[b]
			hl += hessHist[b]
			cl += countHist[b]
			if cl < g.params.minSamplesLeaf {
				continue
			}
			if total-cl < g.params.minSamplesLeaf {
				break
			}

			gain := g.score(gl, hl) + g.score(n.grad-gl, n.hess-hl) - parent
			if gain > best.gain+1e-12 {
				best = splitInfo{
					found:     true,
					gain:      gain,
					feature:   j,
					bin:       uint8(b),
					gradLeft:  gl,
					hessLeft:  hl,
					countLeft: cl,
				}
			}
		}
	}
	return best
}

func (g *treeGrower) apply(n *growNode) (*growNode, *growNode) {
	s := n.split
	col := g.binned[s.feature]

	leftSamples := make([]int, 0, s.countLeft)
	rightSamples := make([]int, 0, len(n.samples)-s.countLeft)
	for _, i := range n.samples {
		if col[i] <= s.bin {
			leftSamples = append(leftSamples, i)
		} else {
			rightSamples = append(rightSamples, i)
		}
	}

	left := g.newNode(leftSamples, n.depth+1)
	right := g.newNode(rightSamples, n.depth+1)

	node := &g.tree.Nodes[n.id]
	node.Leaf = false
	node.Value = 0
	node.Feature = s.feature
	node.Threshold = g.mapper.Thresholds[s.feature][s.bin]
	node.Left = left.id
	node.Right = right.id
	node.Gain = s.gain
	g.splitBins[n.id] = s.bin
	g.gains[s.feature] += s.gain

	return left, right
}
