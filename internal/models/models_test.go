package models

import (
	"bytes"
	"encoding/gob"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// separable: label is 1 iff the first feature exceeds 5, the second is noise.
func separable() ([][]float64, []int) {
	X := [][]float64{}
	y := []int{}
	for i := 0; i < 40; i++ {
		v := float64(i % 10)
		X = append(X, []float64{v, float64((i * 7) % 3)})
		if v > 5 {
			y = append(y, 1)
		} else {
			y = append(y, 0)
		}
	}
	return X, y
}

func TestDecisionTreeFitsSeparableData(t *testing.T) {
	X, y := separable()
	dt := NewDecisionTree()
	dt.Seed = 3
	require.NoError(t, dt.Fit(X, y))
	assert.Equal(t, y, dt.Predict(X))
	assert.Equal(t, 1, dt.Depth())
	assert.Greater(t, dt.Importance[0], dt.Importance[1])
}

func TestRandomForestSeeded(t *testing.T) {
	X, y := separable()
	a := NewRandomForest()
	a.NEstimators, a.Seed = 10, 11
	b := NewRandomForest()
	b.NEstimators, b.Seed = 10, 11
	require.NoError(t, a.Fit(X, y))
	require.NoError(t, b.Fit(X, y))
	assert.Equal(t, a.PredictProba(X), b.PredictProba(X))

	acc := 0
	for i, p := range a.Predict(X) {
		if p == y[i] {
			acc++
		}
	}
	assert.GreaterOrEqual(t, acc, 36)

	imp := a.FeatureImportances()
	require.Len(t, imp, 2)
	assert.InDelta(t, 1.0, imp[0]+imp[1], 1e-9)
	assert.Greater(t, imp[0], imp[1])
	assert.Len(t, a.Votes(X[9]), 10)
}

func TestFitRejectsEmpty(t *testing.T) {
	assert.True(t, errors.Is(NewRandomForest().Fit(nil, nil), ErrEmptyTrainingSet))
	assert.Error(t, NewDecisionTree().Fit([][]float64{{1}}, []int{1, 0}))
}

func TestUntrainedForestIsUndecided(t *testing.T) {
	assert.Equal(t, []float64{0.5}, NewRandomForest().PredictProba([][]float64{{1, 2}}))
}

func TestForestGobRoundTrip(t *testing.T) {
	X, y := separable()
	rf := NewRandomForest()
	rf.NEstimators, rf.Seed = 5, 1
	require.NoError(t, rf.Fit(X, y))
	var buf bytes.Buffer
	require.NoError(t, gob.NewEncoder(&buf).Encode(rf))
	var back RandomForest
	require.NoError(t, gob.NewDecoder(&buf).Decode(&back))
	assert.Equal(t, rf.PredictProba(X), back.PredictProba(X))
}
