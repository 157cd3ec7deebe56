package models

import (
	"math"
	"math/rand/v2"
)

type Node struct {
	Feature   int
	Threshold float64
	Left      *Node
	Right     *Node
	IsLeaf    bool
	ProbaLeaf float64
	Samples   int
	Impurity  float64
}

// DecisionTree is a binary Gini tree over numeric features. Leaves hold the
// positive-class share of their samples.
type DecisionTree struct {
	MaxDepth           int
	MinSamplesSplit    int
	MinSamplesLeaf     int
	MaxThresholdsPerFe int
	MaxFeatures        int
	Seed               uint64
	Root               *Node
	// Importance accumulates the weighted impurity decrease per feature.
	Importance []float64

	rng *rand.Rand
}

func NewDecisionTree() *DecisionTree {
	return &DecisionTree{MaxDepth: 6, MinSamplesSplit: 2, MinSamplesLeaf: 1, MaxThresholdsPerFe: 64}
}

func (dt *DecisionTree) Name() string { return "DecisionTree" }

func (dt *DecisionTree) Fit(X [][]float64, y []int) error {
	if err := checkXY(X, y); err != nil {
		return err
	}
	dt.rng = newRand(dt.Seed)
	dt.Importance = make([]float64, len(X[0]))
	idx := make([]int, len(X))
	for i := range idx {
		idx[i] = i
	}
	dt.Root = dt.build(X, y, idx, 0)
	return nil
}

func (dt *DecisionTree) Predict(X [][]float64) []int {
	out := make([]int, len(X))
	for i := range X {
		if dt.predictProbaOne(X[i]) >= 0.5 {
			out[i] = 1
		}
	}
	return out
}

func (dt *DecisionTree) PredictProba(X [][]float64) []float64 {
	out := make([]float64, len(X))
	for i := range X {
		out[i] = dt.predictProbaOne(X[i])
	}
	return out
}

func (dt *DecisionTree) predictProbaOne(x []float64) float64 {
	n := dt.Root
	if n == nil {
		return 0.5
	}
	for !n.IsLeaf {
		if x[n.Feature] <= n.Threshold {
			n = n.Left
		} else {
			n = n.Right
		}
		if n == nil {
			return 0.5
		}
	}
	return n.ProbaLeaf
}

// Depth returns the number of split levels below the root.
func (dt *DecisionTree) Depth() int { return depthOf(dt.Root) }

func depthOf(n *Node) int {
	if n == nil || n.IsLeaf {
		return 0
	}
	return 1 + max(depthOf(n.Left), depthOf(n.Right))
}

func (dt *DecisionTree) build(X [][]float64, y []int, idx []int, depth int) *Node {
	p := classProba(y, idx)
	node := &Node{Samples: len(idx), Impurity: p * (1 - p) * 2, ProbaLeaf: p}
	if len(idx) < dt.MinSamplesSplit || depth >= dt.MaxDepth || p == 0 || p == 1 {
		node.IsLeaf = true
		return node
	}
	bestFeature := -1
	bestThr := 0.0
	bestImp := math.MaxFloat64
	var leftBest, rightBest []int

	for _, f := range dt.pickFeatures(len(X[0])) {
		for _, thr := range dt.candidateThresholds(X, idx, f) {
			lIdx, rIdx := splitIdx(X, idx, f, thr)
			if len(lIdx) < max(1, dt.MinSamplesLeaf) || len(rIdx) < max(1, dt.MinSamplesLeaf) {
				continue
			}
			imp := giniImpurity(y, lIdx, rIdx)
			if imp < bestImp {
				bestImp, bestFeature, bestThr = imp, f, thr
				leftBest, rightBest = lIdx, rIdx
			}
		}
	}

	if bestFeature == -1 {
		node.IsLeaf = true
		return node
	}
	dt.Importance[bestFeature] += float64(len(idx)) * (node.Impurity - 2*bestImp)
	node.Feature = bestFeature
	node.Threshold = bestThr
	node.Left = dt.build(X, y, leftBest, depth+1)
	node.Right = dt.build(X, y, rightBest, depth+1)
	return node
}

func classProba(y []int, idx []int) float64 {
	if len(idx) == 0 {
		return 0
	}
	sum := 0
	for _, i := range idx {
		sum += y[i]
	}
	return float64(sum) / float64(len(idx))
}

func splitIdx(X [][]float64, idx []int, f int, thr float64) ([]int, []int) {
	l := make([]int, 0, len(idx))
	r := make([]int, 0, len(idx))
	for _, i := range idx {
		if X[i][f] <= thr {
			l = append(l, i)
		} else {
			r = append(r, i)
		}
	}
	return l, r
}

// giniImpurity is the size-weighted p(1-p) of both sides.
func giniImpurity(y []int, lIdx, rIdx []int) float64 {
	g := func(ids []int) float64 {
		p := classProba(y, ids)
		return p * (1 - p)
	}
	wl := float64(len(lIdx))
	wr := float64(len(rIdx))
	n := wl + wr
	return (wl/n)*g(lIdx) + (wr/n)*g(rIdx)
}

func (dt *DecisionTree) candidateThresholds(X [][]float64, idx []int, f int) []float64 {
	values := make([]float64, len(idx))
	for j, i := range idx {
		values[j] = X[i][f]
	}
	dt.rng.Shuffle(len(values), func(i, j int) { values[i], values[j] = values[j], values[i] })
	m := len(values)
	if dt.MaxThresholdsPerFe > 0 && dt.MaxThresholdsPerFe < m {
		m = dt.MaxThresholdsPerFe
	}
	return values[:m]
}

func (dt *DecisionTree) pickFeatures(nFeats int) []int {
	idx := make([]int, nFeats)
	for i := range idx {
		idx[i] = i
	}
	if dt.MaxFeatures <= 0 || dt.MaxFeatures >= nFeats {
		return idx
	}
	dt.rng.Shuffle(nFeats, func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })
	return idx[:dt.MaxFeatures]
}
