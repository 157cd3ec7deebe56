package evaluation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassificationScores(t *testing.T) {
	y := []int{1, 1, 0, 0, 1, 0}
	ps := []float64{0.9, 0.6, 0.4, 0.7, 0.2, 0.1}
	preds := ProbaToPred(ps, 0.5)
	assert.Equal(t, []int{1, 1, 0, 1, 0, 0}, preds)
	assert.InDelta(t, 4.0/6.0, Accuracy(y, preds), 1e-12)

	tp, fp, tn, fn := Confusion(y, ps, 0.5)
	assert.Equal(t, [4]int{2, 1, 2, 1}, [4]int{tp, fp, tn, fn})
	assert.Equal(t, [][]int{{2, 1}, {1, 2}}, ConfusionMatrix(y, ps, 0.5))

	p, r, f1 := PRF1(y, ps, 0.5)
	assert.InDelta(t, 2.0/3.0, p, 1e-12)
	assert.InDelta(t, 2.0/3.0, r, 1e-12)
	assert.InDelta(t, 2.0/3.0, f1, 1e-12)
}

func TestROC(t *testing.T) {
	perfect := ROCAUC([]int{0, 0, 1, 1}, []float64{0.1, 0.2, 0.8, 0.9})
	assert.InDelta(t, 1.0, perfect, 1e-12)
	inverted := ROCAUC([]int{1, 1, 0, 0}, []float64{0.1, 0.2, 0.8, 0.9})
	assert.InDelta(t, 0.0, inverted, 1e-12)
	flat := ROCAUC([]int{1, 0, 1, 0}, []float64{0.5, 0.5, 0.5, 0.5})
	assert.InDelta(t, 0.5, flat, 1e-12)

	pts := ROCCurve([]int{0, 1}, []float64{0.3, 0.7})
	assert.Equal(t, []Point{{0, 0}, {0, 1}, {1, 1}}, pts)
	assert.Nil(t, ROCCurve([]int{1, 1}, []float64{0.3, 0.7}))
}

func TestPR(t *testing.T) {
	assert.InDelta(t, 1.0, PRAUC([]int{0, 0, 1, 1}, []float64{0.1, 0.2, 0.8, 0.9}), 1e-12)
	pts := PRCurve([]int{1, 0}, []float64{0.9, 0.1})
	assert.Equal(t, []Point{{1, 1}, {1, 0.5}}, pts)
}

func TestBestThresholdF1(t *testing.T) {
	thr, best := BestThresholdF1([]int{0, 0, 1, 1}, []float64{0.1, 0.2, 0.8, 0.9})
	assert.Equal(t, 1.0, best)
	assert.Greater(t, thr, 0.2)
	assert.LessOrEqual(t, thr, 0.8)
}

func TestRegressionScores(t *testing.T) {
	y := []float64{1, 2, 3, 4}
	assert.Equal(t, 1.0, R2(y, y))
	assert.Equal(t, 0.0, RMSE(y, y))
	assert.Equal(t, 0.5, MAE(y, []float64{1.5, 2.5, 2.5, 3.5}))
	assert.Equal(t, 0.5, RMSE(y, []float64{1.5, 2.5, 2.5, 3.5}))
}
