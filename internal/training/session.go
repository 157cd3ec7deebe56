package training

import (
	"errors"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"

	"forestdash/internal/data"
)

var (
	ErrUnknownTask   = errors.New("unknown task")
	ErrUnknownColumn = errors.New("unknown column")
)

// State is what a training run is configured with.
type State struct {
	Task             data.Task       `json:"task"`
	Dataset          string          `json:"dataset"`
	Hyperparameters  Hyperparameters `json:"hyperparameters"`
	SelectedFeatures []string        `json:"selected_features"`
	TargetColumn     string          `json:"target_column"`
	Signal           *Signal         `json:"signal,omitempty"`
}

func (p Preset) state(task data.Task) State {
	return State{
		Task:             task,
		Dataset:          p.Dataset,
		Hyperparameters:  p.Hyperparameters,
		SelectedFeatures: append([]string(nil), p.Features...),
		TargetColumn:     p.Target,
		Signal:           p.Signal,
	}
}

var validate = validator.New()

// Session holds one dashboard's training state. It is safe for concurrent use.
type Session struct {
	mu       sync.RWMutex
	presets  Presets
	datasets *data.Registry
	state    State
}

// NewSession starts in the regression preset.
func NewSession(presets Presets, datasets *data.Registry) (*Session, error) {
	p, ok := presets[data.Regression]
	if !ok {
		return nil, fmt.Errorf("%w: no %s preset", ErrUnknownTask, data.Regression)
	}
	return &Session{presets: presets, datasets: datasets, state: p.state(data.Regression)}, nil
}

func (s *Session) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := s.state
	st.SelectedFeatures = append([]string(nil), s.state.SelectedFeatures...)
	return st
}

func (s *Session) Dataset() (*data.Dataset, error) {
	s.mu.RLock()
	name := s.state.Dataset
	s.mu.RUnlock()
	return s.datasets.Get(name)
}

// SetTask resets the state to the task's preset.
func (s *Session) SetTask(task data.Task) (State, error) {
	p, ok := s.presets[task]
	if !ok {
		return State{}, fmt.Errorf("%w: %s", ErrUnknownTask, task)
	}
	s.mu.Lock()
	s.state = p.state(task)
	s.mu.Unlock()
	return s.Snapshot(), nil
}

// SetHyperparameters merges a partial update and keeps the old values if the
// result is out of range.
func (s *Session) SetHyperparameters(p HyperparameterPatch) (State, error) {
	s.mu.Lock()
	merged := s.state.Hyperparameters.Merge(p)
	if err := validate.Struct(merged); err != nil {
		s.mu.Unlock()
		return State{}, fmt.Errorf("hyperparameters: %w", err)
	}
	s.state.Hyperparameters = merged
	s.mu.Unlock()
	return s.Snapshot(), nil
}

// SetSelectedFeatures replaces the feature selection.
func (s *Session) SetSelectedFeatures(features []string) (State, error) {
	ds, err := s.Dataset()
	if err != nil {
		return State{}, err
	}
	known := map[string]bool{}
	for _, h := range ds.Headers() {
		known[h] = true
	}
	for _, f := range features {
		if !known[f] {
			return State{}, fmt.Errorf("%w: %s", ErrUnknownColumn, f)
		}
	}
	s.mu.Lock()
	s.state.SelectedFeatures = append([]string(nil), features...)
	s.mu.Unlock()
	return s.Snapshot(), nil
}

// SetTargetColumn makes col the target and selects every other column.
func (s *Session) SetTargetColumn(col string) (State, error) {
	ds, err := s.Dataset()
	if err != nil {
		return State{}, err
	}
	headers := ds.Headers()
	selected := make([]string, 0, len(headers))
	found := false
	for _, h := range headers {
		if h == col {
			found = true
			continue
		}
		selected = append(selected, h)
	}
	if !found {
		return State{}, fmt.Errorf("%w: %s", ErrUnknownColumn, col)
	}
	s.mu.Lock()
	s.state.TargetColumn = col
	s.state.SelectedFeatures = selected
	s.mu.Unlock()
	return s.Snapshot(), nil
}
