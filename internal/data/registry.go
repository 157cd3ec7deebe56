package data

import (
	"embed"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"
)

//go:embed fixtures/*.json
var fixtures embed.FS

var ErrUnknownDataset = errors.New("unknown dataset")

const (
	patientRows = 120
	patientSeed = 42
)

// Registry holds the read-only datasets offered by the dashboard.
type Registry struct {
	sets map[string]*Dataset
}

// Decode parses a dataset document and fills the column order when absent.
func Decode(b []byte) (*Dataset, error) {
	var ds Dataset
	if err := json.Unmarshal(b, &ds); err != nil {
		return nil, err
	}
	if ds.Name == "" {
		return nil, errors.New("dataset without name")
	}
	if len(ds.Columns) == 0 {
		ds.Columns = ds.Headers()
	}
	return &ds, nil
}

// LoadFixtures decodes every embedded fixture in parallel and adds the
// generated patient dataset.
func LoadFixtures() (*Registry, error) {
	entries, err := fixtures.ReadDir("fixtures")
	if err != nil {
		return nil, err
	}
	sets := make([]*Dataset, len(entries))
	var g errgroup.Group
	for i, e := range entries {
		g.Go(func() error {
			b, err := fixtures.ReadFile(path.Join("fixtures", e.Name()))
			if err != nil {
				return err
			}
			ds, err := Decode(b)
			if err != nil {
				return fmt.Errorf("fixture %s: %w", e.Name(), err)
			}
			sets[i] = ds
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	r := &Registry{sets: make(map[string]*Dataset, len(sets)+1)}
	for _, ds := range sets {
		r.sets[ds.Name] = ds
	}
	p := PatientDataset(patientRows, patientSeed)
	r.sets[p.Name] = p
	return r, nil
}

var (
	defaultOnce sync.Once
	defaultReg  *Registry
)

// Default returns the fixture registry, loading it once.
func Default() *Registry {
	defaultOnce.Do(func() {
		r, err := LoadFixtures()
		if err != nil {
			panic(fmt.Sprintf("load fixtures: %v", err))
		}
		defaultReg = r
	})
	return defaultReg
}

func (r *Registry) Get(name string) (*Dataset, error) {
	ds, ok := r.sets[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDataset, name)
	}
	return ds, nil
}

func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.sets))
	for k := range r.sets {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
