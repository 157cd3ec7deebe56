package training

import (
	"forestdash/internal/data"
)

type Hyperparameters struct {
	NEstimators     int    `json:"n_estimators" yaml:"n_estimators" validate:"gte=1,lte=1000"`
	MaxDepth        int    `json:"max_depth" yaml:"max_depth" validate:"gte=1,lte=64"`
	MinSamplesSplit int    `json:"min_samples_split" yaml:"min_samples_split" validate:"gte=2"`
	MinSamplesLeaf  int    `json:"min_samples_leaf" yaml:"min_samples_leaf" validate:"gte=1"`
	MaxFeatures     string `json:"max_features,omitempty" yaml:"max_features" validate:"omitempty,oneof=sqrt log2"`
	Bootstrap       bool   `json:"bootstrap" yaml:"bootstrap"`
	Criterion       string `json:"criterion,omitempty" yaml:"criterion" validate:"omitempty,oneof=gini entropy"`
}

// HyperparameterPatch carries the fields a partial update sets.
type HyperparameterPatch struct {
	NEstimators     *int    `json:"n_estimators"`
	MaxDepth        *int    `json:"max_depth"`
	MinSamplesSplit *int    `json:"min_samples_split"`
	MinSamplesLeaf  *int    `json:"min_samples_leaf"`
	MaxFeatures     *string `json:"max_features"`
	Bootstrap       *bool   `json:"bootstrap"`
	Criterion       *string `json:"criterion"`
}

func (h Hyperparameters) Merge(p HyperparameterPatch) Hyperparameters {
	if p.NEstimators != nil {
		h.NEstimators = *p.NEstimators
	}
	if p.MaxDepth != nil {
		h.MaxDepth = *p.MaxDepth
	}
	if p.MinSamplesSplit != nil {
		h.MinSamplesSplit = *p.MinSamplesSplit
	}
	if p.MinSamplesLeaf != nil {
		h.MinSamplesLeaf = *p.MinSamplesLeaf
	}
	if p.MaxFeatures != nil {
		h.MaxFeatures = *p.MaxFeatures
	}
	if p.Bootstrap != nil {
		h.Bootstrap = *p.Bootstrap
	}
	if p.Criterion != nil {
		h.Criterion = *p.Criterion
	}
	return h
}

// Signal drives the mocked classification history: rows whose Feature is
// above Threshold are mostly predicted positive.
type Signal struct {
	Feature   string  `json:"feature" yaml:"feature"`
	Threshold float64 `json:"threshold" yaml:"threshold"`
}

// Preset is the state a task starts from.
type Preset struct {
	Dataset         string          `json:"dataset" yaml:"dataset"`
	Target          string          `json:"target" yaml:"target"`
	Features        []string        `json:"features" yaml:"features"`
	Hyperparameters Hyperparameters `json:"hyperparameters" yaml:"hyperparameters"`
	Signal          *Signal         `json:"signal,omitempty" yaml:"signal"`
}

type Presets map[data.Task]Preset

func defaultHyperparameters() Hyperparameters {
	return Hyperparameters{NEstimators: 100, MaxDepth: 10, MinSamplesSplit: 2, MinSamplesLeaf: 1, Bootstrap: true, Criterion: "gini"}
}

// DefaultPresets mirrors the dashboard's housing regression and wine
// classification setups.
func DefaultPresets() Presets {
	return Presets{
		data.Regression: {
			Dataset: "california-housing",
			Target:  "MedHouseVal",
			Features: []string{
				"MedInc", "HouseAge", "AveRooms", "AveBedrms",
				"Population", "AveOccup", "Latitude", "Longitude",
			},
			Hyperparameters: defaultHyperparameters(),
		},
		data.Classification: {
			Dataset: "wine-quality",
			Target:  "quality",
			Features: []string{
				"fixed_acidity", "volatile_acidity", "citric_acid", "residual_sugar",
				"chlorides", "free_sulfur_dioxide", "total_sulfur_dioxide", "density",
				"pH", "sulphates", "alcohol",
			},
			Hyperparameters: defaultHyperparameters(),
			Signal:          &Signal{Feature: "alcohol", Threshold: 10},
		},
	}
}
