package training

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"forestdash/internal/data"
)

func newSession(t *testing.T) *Session {
	t.Helper()
	s, err := NewSession(DefaultPresets(), data.Default())
	require.NoError(t, err)
	return s
}

func intp(v int) *int { return &v }

func TestSessionStartsWithRegressionPreset(t *testing.T) {
	st := newSession(t).Snapshot()
	assert.Equal(t, data.Regression, st.Task)
	assert.Equal(t, "MedHouseVal", st.TargetColumn)
	assert.Len(t, st.SelectedFeatures, 8)
	assert.Equal(t, 100, st.Hyperparameters.NEstimators)
	assert.Equal(t, 10, st.Hyperparameters.MaxDepth)
}

func TestSetTaskResetsToPreset(t *testing.T) {
	s := newSession(t)
	_, err := s.SetHyperparameters(HyperparameterPatch{NEstimators: intp(5)})
	require.NoError(t, err)

	st, err := s.SetTask(data.Classification)
	require.NoError(t, err)
	assert.Equal(t, "quality", st.TargetColumn)
	assert.Equal(t, "wine-quality", st.Dataset)
	assert.Len(t, st.SelectedFeatures, 11)
	assert.Equal(t, 100, st.Hyperparameters.NEstimators)

	st, err = s.SetTask(data.Regression)
	require.NoError(t, err)
	assert.Equal(t, "MedHouseVal", st.TargetColumn)

	_, err = s.SetTask("clustering")
	assert.True(t, errors.Is(err, ErrUnknownTask))
}

func TestSetHyperparametersMerges(t *testing.T) {
	s := newSession(t)
	st, err := s.SetHyperparameters(HyperparameterPatch{MaxDepth: intp(4)})
	require.NoError(t, err)
	assert.Equal(t, 4, st.Hyperparameters.MaxDepth)
	assert.Equal(t, 100, st.Hyperparameters.NEstimators)

	_, err = s.SetHyperparameters(HyperparameterPatch{MinSamplesSplit: intp(1)})
	assert.Error(t, err)
	assert.Equal(t, 2, s.Snapshot().Hyperparameters.MinSamplesSplit)
}

func TestSetSelectedFeaturesReplaces(t *testing.T) {
	s := newSession(t)
	st, err := s.SetSelectedFeatures([]string{"MedInc", "HouseAge"})
	require.NoError(t, err)
	assert.Equal(t, []string{"MedInc", "HouseAge"}, st.SelectedFeatures)

	_, err = s.SetSelectedFeatures([]string{"bogus"})
	assert.True(t, errors.Is(err, ErrUnknownColumn))
}

func TestSetTargetColumnSelectsRemainingHeaders(t *testing.T) {
	s := newSession(t)
	st, err := s.SetTargetColumn("MedInc")
	require.NoError(t, err)
	assert.Equal(t, "MedInc", st.TargetColumn)
	assert.NotContains(t, st.SelectedFeatures, "MedInc")
	assert.Contains(t, st.SelectedFeatures, "MedHouseVal")
	assert.Len(t, st.SelectedFeatures, 8)

	_, err = s.SetTargetColumn("nope")
	assert.True(t, errors.Is(err, ErrUnknownColumn))
}

func TestSnapshotIsACopy(t *testing.T) {
	s := newSession(t)
	st := s.Snapshot()
	st.SelectedFeatures[0] = "changed"
	assert.Equal(t, "MedInc", s.Snapshot().SelectedFeatures[0])
}

func TestSimulatorRegressionRanges(t *testing.T) {
	s := newSession(t)
	ds, err := s.Dataset()
	require.NoError(t, err)
	sim := NewSimulator(0, 0, 1)
	for i := 0; i < 20; i++ {
		res, err := sim.Train(context.Background(), s.Snapshot(), ds)
		require.NoError(t, err)
		m := res.Metrics
		assert.True(t, m.R2 >= 0.75 && m.R2 < 0.95)
		assert.True(t, m.RMSE >= 0.3 && m.RMSE < 0.5)
		assert.True(t, m.MAE >= 0.2 && m.MAE < 0.4)
		assert.Len(t, res.History, 15)
		assert.Len(t, res.ChartData, 15)
		assert.Len(t, res.FeatureImportance, 8)
		for j := 1; j < len(res.FeatureImportance); j++ {
			assert.GreaterOrEqual(t, res.FeatureImportance[j-1].Importance, res.FeatureImportance[j].Importance)
		}
		for _, h := range res.History {
			assert.InDelta(t, h.Actual, h.Prediction, h.Actual*0.2+0.001)
		}
	}
}

func TestSimulatorClassification(t *testing.T) {
	s := newSession(t)
	st, err := s.SetTask(data.Classification)
	require.NoError(t, err)
	ds, err := s.Dataset()
	require.NoError(t, err)
	res, err := NewSimulator(0, 0, 9).Train(context.Background(), st, ds)
	require.NoError(t, err)
	m := res.Metrics
	assert.True(t, m.Accuracy >= 0.88 && m.Accuracy < 0.98)
	require.Len(t, m.ConfusionMatrix, 2)
	assert.True(t, m.ConfusionMatrix[0][0] >= 85 && m.ConfusionMatrix[0][0] < 95)
	assert.True(t, m.ConfusionMatrix[1][1] >= 90 && m.ConfusionMatrix[1][1] < 100)
	for _, h := range res.History {
		assert.Contains(t, []float64{0, 1}, h.Prediction)
	}
}

func TestSimulatorFailureInjection(t *testing.T) {
	s := newSession(t)
	ds, _ := s.Dataset()
	_, err := NewSimulator(0, 1, 3).Train(context.Background(), s.Snapshot(), ds)
	assert.True(t, errors.Is(err, ErrTrainingFailed))
}

func TestSimulatorHonorsCancel(t *testing.T) {
	s := newSession(t)
	ds, _ := s.Dataset()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := NewSimulator(time.Hour, 0, 3).Train(ctx, s.Snapshot(), ds)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSimulatorSeededIsReproducible(t *testing.T) {
	s := newSession(t)
	ds, _ := s.Dataset()
	a, err := NewSimulator(0, 0, 77).Train(context.Background(), s.Snapshot(), ds)
	require.NoError(t, err)
	b, err := NewSimulator(0, 0, 77).Train(context.Background(), s.Snapshot(), ds)
	require.NoError(t, err)
	assert.Equal(t, a.Metrics, b.Metrics)
	assert.Equal(t, a.FeatureImportance, b.FeatureImportance)
}

func TestFittedClassification(t *testing.T) {
	st := DefaultPresets()[data.Classification].state(data.Classification)
	st.Hyperparameters.NEstimators = 15
	ds, err := data.Default().Get("synthetic-patient")
	require.NoError(t, err)
	st.Dataset, st.TargetColumn = ds.Name, ds.Target
	st.SelectedFeatures = []string{"bp", "chol", "hr", "bs"}

	f := NewFitted(5)
	f.Positive = data.RiskLabel
	res, err := f.Train(context.Background(), st, ds)
	require.NoError(t, err)
	assert.Equal(t, "fitted", res.Engine)
	assert.Greater(t, res.Metrics.Accuracy, 0.6)
	assert.Len(t, res.FeatureImportance, 4)
	assert.Len(t, res.History, 15)
	assert.NotEmpty(t, res.ROCCurve)
	require.NotNil(t, res.Model)
	assert.Len(t, res.Model.Trees, 15)
	assert.Equal(t, []string{"bp", "chol", "hr", "bs"}, res.Encoded)

	total := 0
	for _, row := range res.Metrics.ConfusionMatrix {
		for _, c := range row {
			total += c
		}
	}
	assert.Equal(t, 30, total)
}

func TestFittedRejectsRegression(t *testing.T) {
	s := newSession(t)
	ds, _ := s.Dataset()
	_, err := NewFitted(1).Train(context.Background(), s.Snapshot(), ds)
	assert.True(t, errors.Is(err, ErrUnsupportedTask))
}

func TestPartialDependenceSeries(t *testing.T) {
	ds := &data.Dataset{Name: "t", Columns: []string{"x", "label", "y"}, Rows: []data.Row{
		{"x": 3.0, "label": "a", "y": 1.0},
		{"x": 1.0, "label": "b", "y": 0.0},
		{"x": 3.0, "label": "a", "y": 1.0},
		{"x": nil, "label": "c", "y": 0.0},
		{"x": 2.0, "label": "b", "y": 1.0},
		{"x": 4.0, "label": "a", "y": 0.0},
	}}
	sim := NewSimulator(0, 0, 3)

	pts, err := sim.PartialDependence(ds, "x", data.Regression)
	require.NoError(t, err)
	require.Len(t, pts, 4)
	for i, want := range []float64{1, 2, 3, 4} {
		assert.Equal(t, want, pts[i].Value)
	}
	// ranks 0..3 over one period: sin is 0, 1, 0, -1
	for i, trend := range []float64{0, 0.5, 0, -0.5} {
		assert.InDelta(t, 2.5+trend, pts[i].Prediction, 0.05+1e-9)
	}

	cls, err := sim.PartialDependence(ds, "x", data.Classification)
	require.NoError(t, err)
	assert.InDelta(t, 0.8, cls[1].Prediction, 0.05+1e-9)

	again, err := NewSimulator(0, 0, 3).PartialDependence(ds, "x", data.Regression)
	require.NoError(t, err)
	assert.Equal(t, pts, again)
}

func TestPartialDependenceEdges(t *testing.T) {
	ds := &data.Dataset{Name: "t", Columns: []string{"x", "label"}, Rows: []data.Row{{"x": 1.0, "label": "a"}}}
	sim := NewSimulator(0, 0, 3)

	pts, err := sim.PartialDependence(ds, "label", data.Classification)
	require.NoError(t, err)
	assert.Empty(t, pts)

	_, err = sim.PartialDependence(ds, "nope", data.Classification)
	assert.ErrorIs(t, err, ErrUnknownColumn)

	_, err = sim.PartialDependence(ds, "x", data.Task("clustering"))
	assert.ErrorIs(t, err, ErrUnknownTask)
}
