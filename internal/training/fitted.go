package training

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"forestdash/internal/data"
	"forestdash/internal/evaluation"
	"forestdash/internal/features"
	"forestdash/internal/models"
)

// Fitted grows a real Gini random forest on the selected columns of a
// classification dataset and scores it on a held-out split.
type Fitted struct {
	Seed      uint64
	TestShare float64
	Positive  string
	Now       func() time.Time
}

func NewFitted(seed uint64) *Fitted {
	return &Fitted{Seed: seed, TestShare: 0.25, Now: time.Now}
}

func (f *Fitted) Name() string { return "fitted" }

func (f *Fitted) Train(ctx context.Context, st State, ds *data.Dataset) (*Result, error) {
	if st.Task != data.Classification {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedTask, st.Task)
	}
	d, err := features.Vectorize(ds, st.SelectedFeatures, st.TargetColumn, features.BinaryTarget(f.Positive))
	if err != nil {
		return nil, err
	}
	if len(d.X) < 4 {
		return nil, fmt.Errorf("%w: only %d labeled rows", features.ErrEmptyDataset, len(d.X))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	trainIdx, testIdx := f.split(len(d.X))
	pick := func(idx []int) ([][]float64, []int) {
		X := make([][]float64, len(idx))
		y := make([]int, len(idx))
		for i, j := range idx {
			X[i], y[i] = d.X[j], d.Y[j]
		}
		return X, y
	}
	Xtr, ytr := pick(trainIdx)
	Xte, yte := pick(testIdx)

	hp := st.Hyperparameters
	rf := models.NewRandomForest()
	rf.NEstimators = hp.NEstimators
	rf.MaxDepth = hp.MaxDepth
	rf.MinSamples = hp.MinSamplesSplit
	rf.MinSamplesLeaf = hp.MinSamplesLeaf
	rf.Bootstrap = hp.Bootstrap
	rf.Seed = f.Seed
	switch hp.MaxFeatures {
	case "log2":
		rf.MaxFeatures = max(1, int(math.Log2(float64(len(d.Names)))))
	case "sqrt", "":
		rf.MaxFeatures = 0
	}
	if err := rf.Fit(Xtr, ytr); err != nil {
		return nil, fmt.Errorf("fit forest: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	proba := rf.PredictProba(Xte)
	preds := evaluation.ProbaToPred(proba, 0.5)
	prec, rec, _ := evaluation.PRF1(yte, proba, 0.5)
	now := f.Now()
	res := &Result{
		Engine: f.Name(),
		Task:   st.Task,
		Metrics: Metrics{
			Accuracy:        evaluation.Accuracy(yte, preds),
			Precision:       prec,
			Recall:          rec,
			ConfusionMatrix: evaluation.ConfusionMatrix(yte, proba, 0.5),
		},
		ROCCurve:  evaluation.ROCCurve(yte, proba),
		PRCurve:   evaluation.PRCurve(yte, proba),
		TrainedAt: now,
		Model:     rf,
		Encoded:   d.Names,
	}

	byBase := map[string]float64{}
	order := []string{}
	for i, w := range rf.FeatureImportances() {
		b := features.BaseName(d.Names[i])
		if _, seen := byBase[b]; !seen {
			order = append(order, b)
		}
		byBase[b] += w
	}
	for _, b := range order {
		res.FeatureImportance = append(res.FeatureImportance, FeatureImportance{Feature: b, Importance: byBase[b]})
	}
	sortImportance(res.FeatureImportance)

	n := min(historyRows, len(d.X))
	all := rf.Predict(d.X[:n])
	for i := 0; i < n; i++ {
		res.History = append(res.History, Prediction{
			ID:         uuid.NewString(),
			Date:       now,
			Features:   namedVector(d.Names, d.X[i]),
			Actual:     float64(d.Y[i]),
			Prediction: float64(all[i]),
		})
	}
	res.ChartData = chartFrom(res.History)
	return res, nil
}

// split shuffles row indices with the engine seed and holds out TestShare.
func (f *Fitted) split(n int) (train, test []int) {
	seed := f.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	perm := rand.New(rand.NewPCG(seed, seed+1)).Perm(n)
	nTest := int(math.Round(float64(n) * f.TestShare))
	nTest = max(1, min(nTest, n-1))
	return perm[nTest:], perm[:nTest]
}

func namedVector(names []string, x []float64) map[string]float64 {
	out := make(map[string]float64, len(names))
	for i, n := range names {
		out[n] = x[i]
	}
	return out
}
