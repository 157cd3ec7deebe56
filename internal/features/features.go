package features

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"forestdash/internal/data"
)

var (
	ErrNoFeatures   = errors.New("no usable features")
	ErrEmptyDataset = errors.New("empty dataset")
)

// Design is a dataset turned into a numeric matrix plus binary labels.
type Design struct {
	X     [][]float64
	Y     []int
	Names []string
}

// BinaryTarget maps a target cell to 0/1. Numbers are positive when above
// zero; text is positive when it matches positive ignoring case.
func BinaryTarget(positive string) func(any) (int, bool) {
	return func(v any) (int, bool) {
		if f, ok := data.AsFloat(v); ok {
			if f > 0 {
				return 1, true
			}
			return 0, true
		}
		s := data.AsString(v)
		if s == "" {
			return 0, false
		}
		if strings.EqualFold(strings.TrimSpace(s), positive) {
			return 1, true
		}
		return 0, true
	}
}

// Vectorize encodes the selected columns of ds. Numeric columns pass
// through; text columns expand to one indicator per distinct value, named
// column=value. Rows with a missing cell or unlabeled target are dropped.
func Vectorize(ds *data.Dataset, selected []string, target string, label func(any) (int, bool)) (*Design, error) {
	if len(ds.Rows) == 0 {
		return nil, ErrEmptyDataset
	}
	type col struct {
		name    string
		numeric bool
		levels  []string
	}
	cols := []col{}
	for _, s := range selected {
		if s == target {
			continue
		}
		first, ok := ds.Rows[0][s]
		if !ok {
			return nil, fmt.Errorf("unknown column %q", s)
		}
		if _, num := data.AsFloat(first); num {
			cols = append(cols, col{name: s, numeric: true})
			continue
		}
		cols = append(cols, col{name: s, levels: levels(ds, s)})
	}
	if len(cols) == 0 {
		return nil, ErrNoFeatures
	}

	d := &Design{}
	for _, c := range cols {
		if c.numeric {
			d.Names = append(d.Names, c.name)
			continue
		}
		for _, l := range c.levels {
			d.Names = append(d.Names, c.name+"="+l)
		}
	}
rows:
	for _, r := range ds.Rows {
		yv, ok := label(r[target])
		if !ok {
			continue
		}
		vec := make([]float64, 0, len(d.Names))
		for _, c := range cols {
			if c.numeric {
				f, ok := data.AsFloat(r[c.name])
				if !ok {
					continue rows
				}
				vec = append(vec, f)
				continue
			}
			s := data.AsString(r[c.name])
			if s == "" {
				continue rows
			}
			for _, l := range c.levels {
				vec = append(vec, boolToFloat(l == s))
			}
		}
		d.X = append(d.X, vec)
		d.Y = append(d.Y, yv)
	}
	return d, nil
}

func levels(ds *data.Dataset, c string) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, r := range ds.Rows {
		s := data.AsString(r[c])
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// BaseName strips the one-hot suffix from an encoded feature name.
func BaseName(encoded string) string {
	if i := strings.IndexByte(encoded, '='); i >= 0 {
		return encoded[:i]
	}
	return encoded
}

func boolToFloat(b bool) float64 { if b { return 1.0 } ; return 0.0 }
