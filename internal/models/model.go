package models

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"
)

var ErrEmptyTrainingSet = errors.New("empty training set")

type Model interface {
	Fit(X [][]float64, y []int) error
	Predict(X [][]float64) []int
	PredictProba(X [][]float64) []float64
	Name() string
}

func checkXY(X [][]float64, y []int) error {
	if len(X) == 0 || len(X[0]) == 0 {
		return ErrEmptyTrainingSet
	}
	if len(X) != len(y) {
		return fmt.Errorf("rows and labels differ: %d vs %d", len(X), len(y))
	}
	return nil
}

// newRand returns a PCG source; seed 0 draws from the clock.
func newRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed>>7|1))
}
