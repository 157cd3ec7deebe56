package features

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"forestdash/internal/data"
)

func TestVectorizeMixedColumns(t *testing.T) {
	ds := &data.Dataset{
		Columns: []string{"n", "c", "label"},
		Rows: []data.Row{
			{"n": 1.0, "c": "b", "label": "Yes"},
			{"n": 2.0, "c": "a", "label": "no"},
			{"n": nil, "c": "a", "label": "yes"},
			{"n": 3.0, "c": "a"},
		},
	}
	d, err := Vectorize(ds, []string{"n", "c", "label"}, "label", BinaryTarget("yes"))
	require.NoError(t, err)
	assert.Equal(t, []string{"n", "c=a", "c=b"}, d.Names)
	assert.Equal(t, [][]float64{{1, 0, 1}, {2, 1, 0}}, d.X)
	assert.Equal(t, []int{1, 0}, d.Y)
	assert.Equal(t, "c", BaseName("c=a"))
	assert.Equal(t, "n", BaseName("n"))
}

func TestVectorizeWineFixture(t *testing.T) {
	ds, err := data.Default().Get("wine-quality")
	require.NoError(t, err)
	d, err := Vectorize(ds, ds.Headers(), ds.Target, BinaryTarget(""))
	require.NoError(t, err)
	assert.Len(t, d.Names, 11)
	assert.Len(t, d.X, len(ds.Rows))
}

func TestVectorizeErrors(t *testing.T) {
	_, err := Vectorize(&data.Dataset{}, nil, "y", BinaryTarget("1"))
	assert.True(t, errors.Is(err, ErrEmptyDataset))

	ds := &data.Dataset{Rows: []data.Row{{"y": 1.0}}}
	_, err = Vectorize(ds, []string{"y"}, "y", BinaryTarget("1"))
	assert.True(t, errors.Is(err, ErrNoFeatures))
	_, err = Vectorize(ds, []string{"zzz"}, "y", BinaryTarget("1"))
	assert.Error(t, err)
}
