// Package forest runs the seeded synthetic forest: each tree derives its
// splits and leaf labels from its seed alone, so a vote is reproducible for
// a given record and tree count.
package forest

import (
	"forestdash/internal/domain"
)

type Operator string

const (
	OpEquals  Operator = "=="
	OpGreater Operator = ">"
)

// ConditionSpec is the test performed at one internal node.
type ConditionSpec struct {
	Feature   string   `json:"feature"`
	Operator  Operator `json:"operator"`
	Target    string   `json:"target,omitempty"`
	Threshold float64  `json:"threshold,omitempty"`
	Seeded    bool     `json:"seeded"`
}

// ConditionFor derives the node test a seed assigns to a feature.
//
// Categorical features with options compare against
// options[(seed+len(name)) mod k]; features with a fixed literal compare
// against it regardless of seed; numeric features test value > threshold.
func ConditionFor(seed int, f domain.Feature) ConditionSpec {
	switch f.Kind {
	case domain.KindNumeric:
		var thr float64
		if f.Threshold != nil {
			thr = f.Threshold.At(seed)
		}
		return ConditionSpec{Feature: f.Name, Operator: OpGreater, Threshold: thr, Seeded: true}
	default:
		if f.Equals != "" || len(f.Options) == 0 {
			return ConditionSpec{Feature: f.Name, Operator: OpEquals, Target: f.Equals}
		}
		k := len(f.Options)
		idx := ((seed+len(f.Name))%k + k) % k
		return ConditionSpec{Feature: f.Name, Operator: OpEquals, Target: f.Options[idx], Seeded: true}
	}
}

// Holds evaluates the condition. Absent or uninterpretable values are false.
func (c ConditionSpec) Holds(r domain.Record) bool {
	v, ok := r.Lookup(c.Feature)
	if !ok {
		return false
	}
	switch c.Operator {
	case OpGreater:
		x, ok := v.Float()
		return ok && x > c.Threshold
	default:
		if c.Target == "" {
			return false
		}
		return domain.EqualFold(v.String(), c.Target)
	}
}

func EvaluateCondition(seed int, f domain.Feature, r domain.Record) bool {
	return ConditionFor(seed, f).Holds(r)
}
