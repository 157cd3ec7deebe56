package domain

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/goccy/go-yaml"
	"go.uber.org/multierr"
)

//go:embed builtin.yaml
var builtinYAML []byte

type catalogFile struct {
	Domains []*Domain `yaml:"domains"`
}

// Catalog is a read-only set of domains keyed by name.
type Catalog struct {
	domains map[string]*Domain
}

// ParseCatalog decodes and validates a YAML catalog.
func ParseCatalog(data []byte) (*Catalog, error) {
	var cf catalogFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	c := &Catalog{domains: make(map[string]*Domain, len(cf.Domains))}
	var errs error
	for _, d := range cf.Domains {
		if err := d.Validate(); err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		if _, dup := c.domains[d.Name]; dup {
			errs = multierr.Append(errs, fmt.Errorf("duplicate domain %q", d.Name))
			continue
		}
		c.domains[d.Name] = d
	}
	if errs != nil {
		return nil, errs
	}
	return c, nil
}

func LoadCatalog(path string) (*Catalog, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return ParseCatalog(b)
}

var (
	builtinOnce sync.Once
	builtin     *Catalog
)

// Builtin returns the embedded catalog with the dashboard's domains.
func Builtin() *Catalog {
	builtinOnce.Do(func() {
		c, err := ParseCatalog(builtinYAML)
		if err != nil {
			panic(fmt.Sprintf("builtin catalog: %v", err))
		}
		builtin = c
	})
	return builtin
}

// Merge returns a catalog holding c's domains overridden by other's.
func (c *Catalog) Merge(other *Catalog) *Catalog {
	out := &Catalog{domains: make(map[string]*Domain, len(c.domains)+len(other.domains))}
	for k, d := range c.domains {
		out.domains[k] = d
	}
	for k, d := range other.domains {
		out.domains[k] = d
	}
	return out
}

func (c *Catalog) Get(name string) (*Domain, error) {
	d, ok := c.domains[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDomain, name)
	}
	return d, nil
}

// List returns the domains sorted by name.
func (c *Catalog) List() []*Domain {
	out := make([]*Domain, 0, len(c.domains))
	for _, d := range c.domains {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
