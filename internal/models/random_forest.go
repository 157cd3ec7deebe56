package models

import (
	"math"
)

// RandomForest bags Gini trees over bootstrap samples with sqrt(n) features
// tried per split, and averages their leaf probabilities.
type RandomForest struct {
	NEstimators        int
	MaxDepth           int
	MinSamples         int
	MinSamplesLeaf     int
	MaxThresholdsPerFe int
	MaxFeatures        int
	Bootstrap          bool
	Seed               uint64
	Trees              []*DecisionTree
}

func NewRandomForest() *RandomForest {
	return &RandomForest{NEstimators: 30, MaxDepth: 6, MinSamples: 2, MinSamplesLeaf: 1, MaxThresholdsPerFe: 32, Bootstrap: true, Trees: []*DecisionTree{}}
}

func (rf *RandomForest) Name() string { return "RandomForest" }

func (rf *RandomForest) Fit(X [][]float64, y []int) error {
	if err := checkXY(X, y); err != nil {
		return err
	}
	if rf.NEstimators <= 0 {
		rf.NEstimators = 30
	}
	n := len(X)
	nFeats := len(X[0])
	if rf.MaxFeatures <= 0 {
		rf.MaxFeatures = int(math.Max(1, math.Min(float64(nFeats), math.Sqrt(float64(nFeats)))))
	}
	rng := newRand(rf.Seed)
	rf.Trees = make([]*DecisionTree, 0, rf.NEstimators)
	for k := 0; k < rf.NEstimators; k++ {
		Xb, yb := X, y
		if rf.Bootstrap {
			Xb = make([][]float64, n)
			yb = make([]int, n)
			for i := 0; i < n; i++ {
				j := rng.IntN(n)
				Xb[i] = X[j]
				yb[i] = y[j]
			}
		}
		dt := NewDecisionTree()
		dt.MaxDepth = rf.MaxDepth
		dt.MinSamplesSplit = rf.MinSamples
		dt.MinSamplesLeaf = rf.MinSamplesLeaf
		dt.MaxThresholdsPerFe = rf.MaxThresholdsPerFe
		dt.MaxFeatures = rf.MaxFeatures
		dt.Seed = rng.Uint64() | 1
		if err := dt.Fit(Xb, yb); err != nil {
			return err
		}
		rf.Trees = append(rf.Trees, dt)
	}
	return nil
}

func (rf *RandomForest) Predict(X [][]float64) []int {
	ps := rf.PredictProba(X)
	out := make([]int, len(ps))
	for i := range ps {
		if ps[i] >= 0.5 {
			out[i] = 1
		}
	}
	return out
}

func (rf *RandomForest) PredictProba(X [][]float64) []float64 {
	n := len(X)
	out := make([]float64, n)
	if len(rf.Trees) == 0 {
		for i := range out {
			out[i] = 0.5
		}
		return out
	}
	for _, dt := range rf.Trees {
		p := dt.PredictProba(X)
		for i := 0; i < n; i++ {
			out[i] += p[i]
		}
	}
	m := float64(len(rf.Trees))
	for i := 0; i < n; i++ {
		out[i] /= m
	}
	return out
}

// Votes returns each tree's hard prediction for one sample.
func (rf *RandomForest) Votes(x []float64) []int {
	out := make([]int, len(rf.Trees))
	for i, dt := range rf.Trees {
		if dt.predictProbaOne(x) >= 0.5 {
			out[i] = 1
		}
	}
	return out
}

// FeatureImportances averages the trees' impurity decreases, normalized to
// sum to 1.
func (rf *RandomForest) FeatureImportances() []float64 {
	if len(rf.Trees) == 0 {
		return nil
	}
	out := make([]float64, len(rf.Trees[0].Importance))
	for _, dt := range rf.Trees {
		for i, v := range dt.Importance {
			out[i] += v
		}
	}
	total := 0.0
	for _, v := range out {
		total += v
	}
	if total > 0 {
		for i := range out {
			out[i] /= total
		}
	}
	return out
}
