package forest

import (
	"errors"
	"fmt"
	"math"

	"forestdash/internal/domain"
)

var ErrInvalidTreeCount = errors.New("tree count must be positive")

type Forest struct {
	Domain *domain.Domain
}

func New(d *domain.Domain) *Forest { return &Forest{Domain: d} }

func (f *Forest) Tree(seed int) Tree { return BuildTree(f.Domain, seed) }

func (f *Forest) EvaluateTree(seed int, r domain.Record) (string, PathTrace) {
	res := BuildTree(f.Domain, seed).Evaluate(r)
	return res.Label, res.Path
}

// ForestResult holds one vote per tree and the majority label.
type ForestResult struct {
	Domain string         `json:"domain"`
	Trees  []TreeResult   `json:"trees"`
	Counts map[string]int `json:"counts"`
	Class  domain.Class   `json:"class"`
	Label  string         `json:"label"`
	Margin float64        `json:"margin"`
	Tie    bool           `json:"tie"`
}

func (r ForestResult) Labels() []string {
	out := make([]string, len(r.Trees))
	for i, t := range r.Trees {
		out[i] = t.Label
	}
	return out
}

// Aggregate runs trees seeded 1..treeCount and takes the vote. The favored
// class wins when its count reaches treeCount/2, so an even split goes to it.
func (f *Forest) Aggregate(treeCount int, r domain.Record) (ForestResult, error) {
	if treeCount <= 0 {
		return ForestResult{}, fmt.Errorf("%w: %d", ErrInvalidTreeCount, treeCount)
	}
	d := f.Domain
	res := ForestResult{
		Domain: d.Name,
		Trees:  make([]TreeResult, 0, treeCount),
		Counts: map[string]int{d.PositiveTag: 0, d.NegativeTag: 0},
	}
	for seed := 1; seed <= treeCount; seed++ {
		tr := BuildTree(d, seed).Evaluate(r)
		res.Trees = append(res.Trees, tr)
		res.Counts[tr.Label]++
	}

	favored := d.FavoredClass()
	other := domain.Negative
	if favored == domain.Negative {
		other = domain.Positive
	}
	fc := res.Counts[d.Label(favored)]
	oc := res.Counts[d.Label(other)]
	if float64(fc) >= float64(treeCount)/2 {
		res.Class = favored
	} else {
		res.Class = other
	}
	res.Label = d.Label(res.Class)
	res.Tie = fc == oc
	res.Margin = math.Abs(float64(fc-oc)) / float64(treeCount)
	return res, nil
}
