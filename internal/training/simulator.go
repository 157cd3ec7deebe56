package training

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"

	"forestdash/internal/data"
)

// Simulator fakes a training run: after Delay it either fails with
// probability FailureRate or returns metrics drawn from plausible ranges.
type Simulator struct {
	Delay       time.Duration
	FailureRate float64
	Now         func() time.Time

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimulator seeds the draws; seed 0 uses the clock.
func NewSimulator(delay time.Duration, failureRate float64, seed uint64) *Simulator {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &Simulator{
		Delay:       delay,
		FailureRate: failureRate,
		Now:         time.Now,
		rng:         rand.New(rand.NewPCG(seed, seed^0x5851f42d4c957f2d)),
	}
}

func (s *Simulator) Name() string { return "synthetic" }

func (s *Simulator) Train(ctx context.Context, st State, ds *data.Dataset) (*Result, error) {
	if err := wait(ctx, s.Delay); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.rng

	if r.Float64() < s.FailureRate {
		return nil, ErrTrainingFailed
	}
	between := func(lo, hi float64) float64 { return lo + r.Float64()*(hi-lo) }

	res := &Result{Engine: s.Name(), Task: st.Task, TrainedAt: s.Now()}
	switch st.Task {
	case data.Regression:
		res.Metrics = Metrics{
			R2:   between(0.75, 0.95),
			RMSE: between(0.3, 0.5),
			MAE:  between(0.2, 0.4),
		}
	case data.Classification:
		res.Metrics = Metrics{
			Accuracy:  between(0.88, 0.98),
			Precision: between(0.87, 0.97),
			Recall:    between(0.89, 0.99),
			ConfusionMatrix: [][]int{
				{85 + r.IntN(10), 1 + r.IntN(5)},
				{2 + r.IntN(5), 90 + r.IntN(10)},
			},
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownTask, st.Task)
	}

	res.FeatureImportance = make([]FeatureImportance, len(st.SelectedFeatures))
	for i, f := range st.SelectedFeatures {
		res.FeatureImportance[i] = FeatureImportance{Feature: f, Importance: r.Float64()}
	}
	sortImportance(res.FeatureImportance)

	rows := ds.Rows
	if len(rows) > historyRows {
		rows = rows[:historyRows]
	}
	res.History = make([]Prediction, 0, len(rows))
	for _, row := range rows {
		actual, _ := data.AsFloat(row[st.TargetColumn])
		var pred float64
		if st.Task == data.Regression {
			pred = math.Round(actual*between(0.8, 1.2)*1000) / 1000
		} else {
			pred = s.classify(row, st.Signal)
		}
		res.History = append(res.History, Prediction{
			ID:         uuid.NewString(),
			Date:       res.TrainedAt,
			Features:   featureValues(row, st.SelectedFeatures),
			Actual:     actual,
			Prediction: pred,
		})
	}
	res.ChartData = chartFrom(res.History)
	return res, nil
}

// classify predicts 1 with probability 0.9 above the signal threshold and
// 0.1 otherwise. Caller holds s.mu.
func (s *Simulator) classify(row data.Row, sig *Signal) float64 {
	above := false
	if sig != nil {
		if v, ok := data.AsFloat(row[sig.Feature]); ok {
			above = v > sig.Threshold
		}
	}
	u := s.rng.Float64()
	if (above && u > 0.1) || (!above && u > 0.9) {
		return 1
	}
	return 0
}
