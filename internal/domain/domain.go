// Package domain describes the toy prediction domains served by the
// dashboard: their ordered features, the rule each feature contributes to a
// synthetic tree, and the two class labels a forest votes between.
package domain

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/multierr"
)

var (
	ErrUnknownDomain    = errors.New("unknown domain")
	ErrIncompleteRecord = errors.New("incomplete record")
)

type Kind string

const (
	KindCategorical Kind = "categorical"
	KindNumeric     Kind = "numeric"
)

// Class selects one of the two labels of a domain.
type Class string

const (
	Positive Class = "positive"
	Negative Class = "negative"
)

// Threshold yields base + (seed*step) mod mod for numeric features.
type Threshold struct {
	Base float64 `yaml:"base" json:"base"`
	Step int     `yaml:"step" json:"step" validate:"gte=0"`
	Mod  int     `yaml:"mod" json:"mod" validate:"gt=0"`
}

func (t Threshold) At(seed int) float64 {
	return t.Base + float64(((seed*t.Step)%t.Mod+t.Mod)%t.Mod)
}

type Feature struct {
	Name      string     `yaml:"name" json:"name" validate:"required"`
	Label     string     `yaml:"label" json:"label,omitempty"`
	Kind      Kind       `yaml:"kind" json:"kind" validate:"required,oneof=categorical numeric"`
	Options   []string   `yaml:"options" json:"options,omitempty"`
	Equals    string     `yaml:"equals" json:"equals,omitempty"`
	Threshold *Threshold `yaml:"threshold" json:"threshold,omitempty"`
	Unit      string     `yaml:"unit" json:"unit,omitempty"`
}

type TreeBounds struct {
	Min     int `yaml:"min" json:"min" validate:"gte=1"`
	Max     int `yaml:"max" json:"max" validate:"gtefield=Min"`
	Default int `yaml:"default" json:"default" validate:"gtefield=Min,ltefield=Max"`
}

// Domain is one parameterized forest configuration.
type Domain struct {
	Name        string     `yaml:"name" json:"name" validate:"required"`
	Title       string     `yaml:"title" json:"title"`
	Dataset     string     `yaml:"dataset" json:"dataset,omitempty"`
	Features    []Feature  `yaml:"features" json:"features" validate:"required,min=1,dive"`
	PositiveTag string     `yaml:"positive" json:"positive" validate:"required"`
	NegativeTag string     `yaml:"negative" json:"negative" validate:"required,nefield=PositiveTag"`
	Favored     Class      `yaml:"favored" json:"favored" validate:"omitempty,oneof=positive negative"`
	Trees       TreeBounds `yaml:"trees" json:"trees"`
}

func (d *Domain) Label(c Class) string {
	if c == Negative {
		return d.NegativeTag
	}
	return d.PositiveTag
}

// FavoredClass is the class an exactly split vote resolves to.
func (d *Domain) FavoredClass() Class {
	if d.Favored == Negative {
		return Negative
	}
	return Positive
}

func (d *Domain) Feature(name string) (Feature, bool) {
	for _, f := range d.Features {
		if f.Name == name {
			return f, true
		}
	}
	return Feature{}, false
}

func (d *Domain) FeatureNames() []string {
	out := make([]string, len(d.Features))
	for i, f := range d.Features {
		out[i] = f.Name
	}
	return out
}

// ClampTrees bounds a requested tree count to the domain slider range.
// Zero picks the default.
func (d *Domain) ClampTrees(n int) int {
	if n == 0 {
		return d.Trees.Default
	}
	if n < d.Trees.Min {
		return d.Trees.Min
	}
	if n > d.Trees.Max {
		return d.Trees.Max
	}
	return n
}

var validate = validator.New()

// Validate checks the structural tags and the per-kind rule requirements.
func (d *Domain) Validate() error {
	var errs error
	if err := validate.Struct(d); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("domain %q: %w", d.Name, err))
	}
	seen := map[string]bool{}
	for _, f := range d.Features {
		if seen[f.Name] {
			errs = multierr.Append(errs, fmt.Errorf("domain %q: duplicate feature %q", d.Name, f.Name))
		}
		seen[f.Name] = true
		switch f.Kind {
		case KindCategorical:
			if len(f.Options) == 0 && f.Equals == "" {
				errs = multierr.Append(errs, fmt.Errorf("domain %q: feature %q needs options or equals", d.Name, f.Name))
			}
		case KindNumeric:
			if f.Threshold == nil {
				errs = multierr.Append(errs, fmt.Errorf("domain %q: feature %q needs a threshold", d.Name, f.Name))
			}
		}
	}
	return errs
}

// CheckRecord reports every feature the record leaves blank or fills with a
// value the feature cannot take. Evaluation itself tolerates such records.
func (d *Domain) CheckRecord(r Record) error {
	var errs error
	for _, f := range d.Features {
		v, ok := r.Lookup(f.Name)
		if !ok {
			errs = multierr.Append(errs, fmt.Errorf("%w: missing %q", ErrIncompleteRecord, f.Name))
			continue
		}
		switch f.Kind {
		case KindNumeric:
			if _, ok := v.Float(); !ok {
				errs = multierr.Append(errs, fmt.Errorf("%w: %q is not a number", ErrIncompleteRecord, f.Name))
			}
		case KindCategorical:
			if len(f.Options) > 0 && !containsFold(f.Options, v.String()) {
				errs = multierr.Append(errs, fmt.Errorf("%w: %q has no option %q", ErrIncompleteRecord, f.Name, v.String()))
			}
		}
	}
	return errs
}
