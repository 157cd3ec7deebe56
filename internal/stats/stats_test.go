package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"forestdash/internal/data"
)

func table(rows ...data.Row) *data.Dataset {
	return &data.Dataset{Name: "t", Task: data.Regression, Target: "y", Columns: []string{"a", "b", "c", "y"}, Rows: rows}
}

func TestSummarize(t *testing.T) {
	s := Summarize([]float64{4, 1, 3, 2})
	assert.Equal(t, 2.5, s.Mean)
	assert.Equal(t, 2.5, s.Median)
	assert.InDelta(t, math.Sqrt(5.0/3.0), s.Std, 1e-12)
	assert.Equal(t, 1.0, s.Min)
	assert.Equal(t, 4.0, s.Max)

	odd := Summarize([]float64{9, 1, 5})
	assert.Equal(t, 5.0, odd.Median)

	assert.Equal(t, Summary{}, Summarize(nil))
	one := Summarize([]float64{7})
	assert.Equal(t, 0.0, one.Std)
	assert.Equal(t, 7.0, one.Median)
}

func TestCorrelationMatrix(t *testing.T) {
	ds := table(
		data.Row{"a": 1.0, "b": 2.0, "c": 5.0, "y": 10.0},
		data.Row{"a": 2.0, "b": 4.0, "c": 5.0, "y": 8.0},
		data.Row{"a": 3.0, "b": 6.0, "c": 5.0, "y": 7.0},
		data.Row{"a": 4.0, "b": 8.0, "c": 5.0, "y": 1.0},
	)
	m := CorrelationMatrix(ds, "y")
	assert.Equal(t, []string{"a", "b", "c"}, m.Features)

	ab, ok := m.At("a", "b")
	require.True(t, ok)
	assert.InDelta(t, 1.0, ab, 1e-12)

	for _, f := range []string{"a", "b", "c"} {
		v, _ := m.At(f, f)
		assert.Equal(t, 1.0, v)
		cv, _ := m.At(f, "c")
		if f != "c" {
			assert.Equal(t, 0.0, cv, "zero-variance column correlates as 0")
			assert.False(t, math.IsNaN(cv))
		}
	}
	for i := range m.Values {
		for j := range m.Values {
			assert.Equal(t, m.Values[i][j], m.Values[j][i])
		}
	}

	full := CorrelationMatrix(ds, "")
	ay, _ := full.At("a", "y")
	assert.Less(t, ay, -0.9)
	assert.GreaterOrEqual(t, ay, -1.0)
}

func TestCorrelationSkipsCategorical(t *testing.T) {
	ds := &data.Dataset{Columns: []string{"x", "label"}, Rows: []data.Row{{"x": 1.0, "label": "a"}, {"x": 2.0, "label": "b"}}}
	m := CorrelationMatrix(ds, "")
	assert.Equal(t, []string{"x"}, m.Features)
	assert.Len(t, m.Cells(), 1)
}

func TestCorrelationSingleRow(t *testing.T) {
	m := CorrelationMatrix(table(data.Row{"a": 1.0, "b": 2.0, "c": 3.0, "y": 4.0}), "y")
	v, _ := m.At("a", "b")
	assert.Equal(t, 0.0, v)
}

func TestFixtureCorrelation(t *testing.T) {
	ds, err := data.Default().Get("california-housing")
	require.NoError(t, err)
	m := CorrelationMatrix(ds, "")
	v, ok := m.At("MedInc", "MedHouseVal")
	require.True(t, ok)
	assert.Greater(t, v, 0.5)
}

func TestSummarizeDataset(t *testing.T) {
	ds := table(
		data.Row{"a": 1.0, "b": 2.0, "c": 5.0, "y": 10.0},
		data.Row{"a": 3.0, "b": 4.0, "c": 5.0, "y": 8.0},
	)
	out := SummarizeDataset(ds, "y")
	require.Len(t, out, 3)
	assert.Equal(t, "a", out[0].Feature)
	assert.Equal(t, 2.0, out[0].Mean)
}

func TestMissingValues(t *testing.T) {
	ds := table(
		data.Row{"a": 1.0, "b": nil, "c": 5.0, "y": 10.0},
		data.Row{"a": 3.0, "c": 5.0, "y": nil},
	)
	out := MissingValues(ds)
	require.Len(t, out, 4)
	assert.Equal(t, Missing{Feature: "a", Count: 0, Percent: 0}, out[0])
	assert.Equal(t, Missing{Feature: "b", Count: 2, Percent: 100}, out[1])
	assert.Equal(t, 1, out[3].Count)
	assert.Equal(t, 50.0, out[3].Percent)
}

func TestMissingValuesCountsOnlyAbsentOrNil(t *testing.T) {
	ds := table(
		data.Row{"a": "", "b": 2.0, "c": nil, "y": 1.0},
		data.Row{"a": "", "b": 3.0, "y": 2.0},
	)
	out := MissingValues(ds)
	require.Len(t, out, 4)
	assert.Equal(t, 0, out[0].Count, "empty strings are present values")
	assert.Equal(t, 2, out[2].Count)
}
