package training

import (
	"context"
	"errors"
	"sort"
	"time"

	"forestdash/internal/data"
	"forestdash/internal/evaluation"
	"forestdash/internal/models"
)

var (
	ErrTrainingFailed  = errors.New("model training failed, please try adjusting parameters")
	ErrUnsupportedTask = errors.New("task not supported by engine")
)

// Engine produces dashboard results for a configured state.
type Engine interface {
	Name() string
	Train(ctx context.Context, st State, ds *data.Dataset) (*Result, error)
}

type Metrics struct {
	R2              float64 `json:"r2,omitempty"`
	RMSE            float64 `json:"rmse,omitempty"`
	MAE             float64 `json:"mae,omitempty"`
	Accuracy        float64 `json:"accuracy,omitempty"`
	Precision       float64 `json:"precision,omitempty"`
	Recall          float64 `json:"recall,omitempty"`
	ConfusionMatrix [][]int `json:"confusion_matrix,omitempty"`
}

type FeatureImportance struct {
	Feature    string  `json:"feature"`
	Importance float64 `json:"importance"`
}

type Prediction struct {
	ID         string             `json:"id"`
	Date       time.Time          `json:"date"`
	Features   map[string]float64 `json:"features"`
	Actual     float64            `json:"actual"`
	Prediction float64            `json:"prediction"`
}

type ChartPoint struct {
	Actual     float64 `json:"actual"`
	Prediction float64 `json:"prediction"`
}

type Result struct {
	Engine            string              `json:"engine"`
	Task              data.Task           `json:"task"`
	Metrics           Metrics             `json:"metrics"`
	FeatureImportance []FeatureImportance `json:"feature_importance"`
	History           []Prediction        `json:"history"`
	ChartData         []ChartPoint        `json:"chart_data"`
	ROCCurve          []evaluation.Point  `json:"roc_curve,omitempty"`
	PRCurve           []evaluation.Point  `json:"pr_curve,omitempty"`
	TrainedAt         time.Time           `json:"trained_at"`

	// Set by engines that grow a real model.
	Model   *models.RandomForest `json:"-"`
	Encoded []string             `json:"encoded_features,omitempty"`
}

const historyRows = 15

func sortImportance(fi []FeatureImportance) {
	sort.SliceStable(fi, func(i, j int) bool { return fi[i].Importance > fi[j].Importance })
}

func chartFrom(h []Prediction) []ChartPoint {
	out := make([]ChartPoint, len(h))
	for i, p := range h {
		out[i] = ChartPoint{Actual: p.Actual, Prediction: p.Prediction}
	}
	return out
}

func featureValues(r data.Row, selected []string) map[string]float64 {
	out := make(map[string]float64, len(selected))
	for _, f := range selected {
		if v, ok := data.AsFloat(r[f]); ok {
			out[f] = v
		}
	}
	return out
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
