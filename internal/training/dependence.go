package training

import (
	"fmt"
	"math"
	"slices"

	"forestdash/internal/data"
)

// DependencePoint is the average prediction at one value of a feature.
type DependencePoint struct {
	Value      float64 `json:"feature_value"`
	Prediction float64 `json:"prediction"`
}

// DependenceSource produces partial dependence series for a feature.
type DependenceSource interface {
	PartialDependence(ds *data.Dataset, feature string, task data.Task) ([]DependencePoint, error)
}

// PartialDependence returns one point per distinct numeric value of feature,
// ascending. Predictions follow one sine period over the value ranks around a
// task baseline, with ±0.05 uniform noise. Non-numeric cells are skipped.
func (s *Simulator) PartialDependence(ds *data.Dataset, feature string, task data.Task) ([]DependencePoint, error) {
	var base, amp float64
	switch task {
	case data.Regression:
		base, amp = 2.5, 0.5
	case data.Classification:
		base, amp = 0.6, 0.2
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownTask, task)
	}
	if !slices.Contains(ds.Headers(), feature) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownColumn, feature)
	}

	values := ds.Column(feature)
	slices.Sort(values)
	values = slices.Compact(values)
	if len(values) == 0 {
		return []DependencePoint{}, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]DependencePoint, len(values))
	n := float64(len(values))
	for i, v := range values {
		noise := (s.rng.Float64() - 0.5) * 0.1
		trend := math.Sin(float64(i)/n*math.Pi*2) * amp
		out[i] = DependencePoint{Value: v, Prediction: base + trend + noise}
	}
	return out, nil
}
