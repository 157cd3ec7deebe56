// Package stats holds the exploratory numeric routines behind the dataset
// charts: Pearson correlation, per-column summaries and missing counts.
package stats

import (
	"math"
	"sort"

	"forestdash/internal/data"
)

type Summary struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// Summarize computes mean, median, sample standard deviation, min and max.
// An empty input yields all zeros and a single value has zero spread.
func Summarize(values []float64) Summary {
	n := len(values)
	if n == 0 {
		return Summary{}
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mu := mean(values)
	mid := n / 2
	median := sorted[mid]
	if n%2 == 0 {
		median = (sorted[mid-1] + sorted[mid]) / 2
	}
	return Summary{
		Mean:   mu,
		Median: median,
		Std:    sampleStd(values, mu),
		Min:    sorted[0],
		Max:    sorted[n-1],
	}
}

type ColumnSummary struct {
	Feature string `json:"feature"`
	Summary
}

// SummarizeDataset summarizes each numeric column except exclude.
func SummarizeDataset(ds *data.Dataset, exclude string) []ColumnSummary {
	cols := ds.NumericColumns(exclude)
	out := make([]ColumnSummary, len(cols))
	for i, c := range cols {
		out[i] = ColumnSummary{Feature: c, Summary: Summarize(ds.Column(c))}
	}
	return out
}

type Missing struct {
	Feature string  `json:"feature"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// MissingValues counts null cells per column in column order.
func MissingValues(ds *data.Dataset) []Missing {
	cols := ds.Headers()
	out := make([]Missing, len(cols))
	n := len(ds.Rows)
	for i, c := range cols {
		cnt := 0
		for _, r := range ds.Rows {
			if v, ok := r[c]; !ok || v == nil {
				cnt++
			}
		}
		m := Missing{Feature: c, Count: cnt}
		if n > 0 {
			m.Percent = float64(cnt) / float64(n) * 100
		}
		out[i] = m
	}
	return out
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	s := 0.0
	for _, x := range xs {
		s += x
	}
	return s / float64(len(xs))
}

func sampleStd(xs []float64, m float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	ss := 0.0
	for _, x := range xs {
		ss += (x - m) * (x - m)
	}
	sd := math.Sqrt(ss / float64(len(xs)-1))
	if math.IsNaN(sd) {
		return 0
	}
	return sd
}
