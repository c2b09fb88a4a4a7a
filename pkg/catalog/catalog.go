// Package catalog declares passes and backends in YAML and builds them into an Env.
package catalog

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sameehj/hlsflow/pkg/backend"
	"github.com/sameehj/hlsflow/pkg/optimizer"
	"github.com/sameehj/hlsflow/pkg/types"
)

//go:embed builtin.yaml
var builtin []byte

// Catalog is the full declaration of one generation run.
type Catalog struct {
	Common   backend.Common       `yaml:"common"`
	Passes   []PassGroup          `yaml:"passes"`
	Backends []backend.Descriptor `yaml:"backends"`
}

// PassGroup lists passes registered for one backend scope, in order.
type PassGroup struct {
	Backend string     `yaml:"backend"`
	IDs     []PassDecl `yaml:"ids"`
}

// PassDecl is either a bare id or a mapping with an id and the layer types it
// applies to or skips.
type PassDecl struct {
	ID             string   `yaml:"id"`
	LayerTypes     []string `yaml:"layerTypes,omitempty"`
	SkipLayerTypes []string `yaml:"skipLayerTypes,omitempty"`
}

func (p *PassDecl) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		p.ID = node.Value
		return nil
	}
	type plain PassDecl
	var out plain
	if err := node.Decode(&out); err != nil {
		return err
	}
	*p = PassDecl(out)
	return nil
}

func (p PassDecl) predicate() types.Predicate {
	var only, skip types.Predicate
	if len(p.LayerTypes) > 0 {
		only = optimizer.LayerTypes(p.LayerTypes...)
	}
	if len(p.SkipLayerTypes) > 0 {
		skip = optimizer.Not(optimizer.LayerTypes(p.SkipLayerTypes...))
	}
	switch {
	case only == nil:
		return skip
	case skip == nil:
		return only
	}
	return types.PredicateFunc(func(layerType string) bool {
		return only.Match(layerType) && skip.Match(layerType)
	})
}

// Builtin returns the catalog compiled into the binary.
func Builtin() (*Catalog, error) {
	return Parse(builtin)
}

// Load reads a catalog file. An empty path selects the builtin catalog.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Builtin()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// validate checks that every derived backend names a base declared before it.
func (c *Catalog) validate() error {
	seen := make(map[string]bool, len(c.Backends))
	for _, d := range c.Backends {
		name := types.BackendName(d.Name)
		if name == "" {
			return fmt.Errorf("catalog: backend without a name")
		}
		if seen[name] {
			return fmt.Errorf("catalog: backend %s declared twice", name)
		}
		if d.Derived() && !seen[types.BackendName(d.Base)] {
			return fmt.Errorf("catalog: backend %s extends %s, which is not declared before it", name, d.Base)
		}
		seen[name] = true
	}
	return nil
}

// Backend returns the descriptor declared under name.
func (c *Catalog) Backend(name string) (backend.Descriptor, bool) {
	for _, d := range c.Backends {
		if types.BackendName(d.Name) == types.BackendName(name) {
			return d, true
		}
	}
	return backend.Descriptor{}, false
}

// Build registers every pass, the common flows and the backends into env.
//
// When only is non-empty, just those backends and the bases they extend are built.
// Backends are returned in declaration order.
func (c *Catalog) Build(env *backend.Env, only ...string) ([]*backend.Backend, error) {
	for _, g := range c.Passes {
		for _, p := range g.IDs {
			if err := env.Passes.Register(p.ID, g.Backend, p.predicate()); err != nil {
				return nil, err
			}
		}
	}
	if _, err := backend.RegisterCommon(env, c.Common); err != nil {
		return nil, err
	}

	wanted, err := c.closure(only)
	if err != nil {
		return nil, err
	}
	var out []*backend.Backend
	for _, d := range c.Backends {
		if wanted != nil && !wanted[types.BackendName(d.Name)] {
			continue
		}
		b, err := backend.Register(env, d)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

// closure expands a backend selection with every base it depends on. A nil map selects all.
func (c *Catalog) closure(only []string) (map[string]bool, error) {
	if len(only) == 0 {
		return nil, nil
	}
	wanted := make(map[string]bool)
	for _, name := range only {
		for name != "" {
			d, ok := c.Backend(name)
			if !ok {
				return nil, fmt.Errorf("catalog: unknown backend %s", name)
			}
			if wanted[types.BackendName(d.Name)] {
				break
			}
			wanted[types.BackendName(d.Name)] = true
			name = d.Base
		}
	}
	return wanted, nil
}
