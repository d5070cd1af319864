package boost

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// nodeType discriminates internal splits from leaves.
type nodeType int

const (
	numericalNode nodeType = iota
	leafNode
)

// node is one tree node; children index into the owning tree's node slice.
type node struct {
	Type         nodeType
	SplitFeature int
	Threshold    float64
	Gain         float64
	LeafValue    float64
	LeftChild    int
	RightChild   int
}

// tree is a single regression tree. Leaf values already include the
// learning-rate shrinkage applied at training time.
type tree struct {
	Nodes []node
}

// predict routes one row through the tree.
func (tr *tree) predict(row []float64) float64 {
	idx := 0
	for {
		n := tr.Nodes[idx]
		if n.Type == leafNode {
			return n.LeafValue
		}
		if row[n.SplitFeature] <= n.Threshold {
			idx = n.LeftChild
		} else {
			idx = n.RightChild
		}
	}
}

// predictAt routes one matrix row through the tree without copying it.
func (tr *tree) predictAt(x *mat.Dense, i int) float64 {
	idx := 0
	for {
		n := tr.Nodes[idx]
		if n.Type == leafNode {
			return n.LeafValue
		}
		if x.At(i, n.SplitFeature) <= n.Threshold {
			idx = n.LeftChild
		} else {
			idx = n.RightChild
		}
	}
}

// splitInfo describes the best split found for a node.
type splitInfo struct {
	feature   int
	threshold float64
	gain      float64
}

// treeBuilder grows one tree per boosting round from the current
// gradients and hessians.
type treeBuilder struct {
	x         *mat.Dense
	gradients []float64
	hessians  []float64
	params    Params
	features  []int
	// gainByFeature accumulates split gains across trees for feature
	// importance reporting.
	gainByFeature []float64
}

func newTreeBuilder(x *mat.Dense, params Params) *treeBuilder {
	_, cols := x.Dims()
	return &treeBuilder{
		x:             x,
		params:        params,
		gainByFeature: make([]float64, cols),
	}
}

// build grows one tree over the given rows using the given feature
// subset. Leaf values carry the learning rate so prediction is a plain
// sum over trees.
func (b *treeBuilder) build(rows, features []int, gradients, hessians []float64) tree {
	b.gradients = gradients
	b.hessians = hessians
	b.features = features

	tr := tree{}
	b.buildNode(&tr, rows, 0)
	return tr
}

func (b *treeBuilder) buildNode(tr *tree, rows []int, depth int) int {
	idx := len(tr.Nodes)

	if (b.params.MaxDepth > 0 && depth >= b.params.MaxDepth) ||
		len(rows) < 2*b.params.MinSamplesLeaf {
		tr.Nodes = append(tr.Nodes, b.leaf(rows))
		return idx
	}

	best := b.findBestSplit(rows)
	if best.gain <= 0 {
		tr.Nodes = append(tr.Nodes, b.leaf(rows))
		return idx
	}

	b.gainByFeature[best.feature] += best.gain
	tr.Nodes = append(tr.Nodes, node{
		Type:         numericalNode,
		SplitFeature: best.feature,
		Threshold:    best.threshold,
		Gain:         best.gain,
	})

	var left, right []int
	for _, r := range rows {
		if b.x.At(r, best.feature) <= best.threshold {
			left = append(left, r)
		} else {
			right = append(right, r)
		}
	}

	leftChild := b.buildNode(tr, left, depth+1)
	rightChild := b.buildNode(tr, right, depth+1)
	tr.Nodes[idx].LeftChild = leftChild
	tr.Nodes[idx].RightChild = rightChild
	return idx
}

func (b *treeBuilder) leaf(rows []int) node {
	sumGrad, sumHess := 0.0, 0.0
	for _, r := range rows {
		sumGrad += b.gradients[r]
		sumHess += b.hessians[r]
	}
	const epsilon = 1e-10
	if math.Abs(sumHess) < epsilon {
		sumHess = epsilon
	}
	value := -sumGrad / (sumHess + b.params.Lambda)
	return node{
		Type:       leafNode,
		LeafValue:  value * b.params.LearningRate,
		LeftChild:  -1,
		RightChild: -1,
	}
}

// findBestSplit scans every candidate feature for the split with the
// highest regularized gain.
func (b *treeBuilder) findBestSplit(rows []int) splitInfo {
	best := splitInfo{feature: -1, gain: -math.MaxFloat64}
	for _, feature := range b.features {
		if split := b.findBestSplitForFeature(rows, feature); split.gain > best.gain {
			best = split
		}
	}
	return best
}

func (b *treeBuilder) findBestSplitForFeature(rows []int, feature int) splitInfo {
	ordered := make([]int, len(rows))
	copy(ordered, rows)
	sort.Slice(ordered, func(i, j int) bool {
		return b.x.At(ordered[i], feature) < b.x.At(ordered[j], feature)
	})

	totalGrad, totalHess := 0.0, 0.0
	for _, r := range ordered {
		totalGrad += b.gradients[r]
		totalHess += b.hessians[r]
	}

	best := splitInfo{feature: feature, gain: -math.MaxFloat64}
	leftGrad, leftHess := 0.0, 0.0
	for i := 0; i < len(ordered)-1; i++ {
		r := ordered[i]
		leftGrad += b.gradients[r]
		leftHess += b.hessians[r]

		value := b.x.At(r, feature)
		next := b.x.At(ordered[i+1], feature)
		if value == next {
			continue
		}

		leftCount := i + 1
		rightCount := len(ordered) - leftCount
		if leftCount < b.params.MinSamplesLeaf || rightCount < b.params.MinSamplesLeaf {
			continue
		}

		gain := b.splitGain(leftGrad, leftHess, totalGrad-leftGrad, totalHess-leftHess, totalGrad, totalHess)
		if gain > best.gain {
			best.gain = gain
			best.threshold = (value + next) / 2
		}
	}
	return best
}

// splitGain is the standard second-order gain with L2 regularization.
func (b *treeBuilder) splitGain(leftGrad, leftHess, rightGrad, rightHess, totalGrad, totalHess float64) float64 {
	lambda := b.params.Lambda
	leftScore := (leftGrad * leftGrad) / (leftHess + lambda)
	rightScore := (rightGrad * rightGrad) / (rightHess + lambda)
	totalScore := (totalGrad * totalGrad) / (totalHess + lambda)
	return 0.5 * (leftScore + rightScore - totalScore)
}
