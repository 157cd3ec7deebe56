package stats

import (
	"forestdash/internal/data"
)

// Matrix is a square correlation table over Features.
type Matrix struct {
	Features []string    `json:"features"`
	Values   [][]float64 `json:"values"`
}

func (m Matrix) At(a, b string) (float64, bool) {
	i, j := m.index(a), m.index(b)
	if i < 0 || j < 0 {
		return 0, false
	}
	return m.Values[i][j], true
}

func (m Matrix) index(name string) int {
	for i, f := range m.Features {
		if f == name {
			return i
		}
	}
	return -1
}

// Cell is one heatmap entry.
type Cell struct {
	X     string  `json:"x"`
	Y     string  `json:"y"`
	Value float64 `json:"value"`
}

func (m Matrix) Cells() []Cell {
	out := make([]Cell, 0, len(m.Features)*len(m.Features))
	for i, a := range m.Features {
		for j, b := range m.Features {
			out = append(out, Cell{X: a, Y: b, Value: m.Values[i][j]})
		}
	}
	return out
}

// CorrelationMatrix computes pairwise Pearson correlation over the numeric
// columns of ds other than exclude. Sample covariance and deviation use the
// n-1 denominator. The diagonal is 1, the lower triangle mirrors the upper
// one, and a pair involving a zero-deviation column is 0.
//
// Rows where a column is not numeric are skipped for that pair.
func CorrelationMatrix(ds *data.Dataset, exclude string) Matrix {
	cols := ds.NumericColumns(exclude)
	k := len(cols)
	m := Matrix{Features: cols, Values: make([][]float64, k)}
	for i := range m.Values {
		m.Values[i] = make([]float64, k)
	}
	for i := 0; i < k; i++ {
		m.Values[i][i] = 1
		for j := i + 1; j < k; j++ {
			xs, ys := paired(ds, cols[i], cols[j])
			r := Pearson(xs, ys)
			m.Values[i][j] = r
			m.Values[j][i] = r
		}
	}
	return m
}

// Pearson returns the sample correlation of two equal-length series, or 0
// when either has no spread.
func Pearson(xs, ys []float64) float64 {
	n := len(xs)
	if n != len(ys) || n < 2 {
		return 0
	}
	mx, my := mean(xs), mean(ys)
	sx, sy := sampleStd(xs, mx), sampleStd(ys, my)
	if sx == 0 || sy == 0 {
		return 0
	}
	cov := 0.0
	for i := range xs {
		cov += (xs[i] - mx) * (ys[i] - my)
	}
	cov /= float64(n - 1)
	r := cov / (sx * sy)
	if r > 1 {
		return 1
	}
	if r < -1 {
		return -1
	}
	return r
}

func paired(ds *data.Dataset, a, b string) ([]float64, []float64) {
	xs := make([]float64, 0, len(ds.Rows))
	ys := make([]float64, 0, len(ds.Rows))
	for _, r := range ds.Rows {
		x, ok1 := data.AsFloat(r[a])
		y, ok2 := data.AsFloat(r[b])
		if ok1 && ok2 {
			xs = append(xs, x)
			ys = append(ys, y)
		}
	}
	return xs, ys
}
