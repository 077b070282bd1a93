// Package local implements a Provider backed by an in-memory or
// file-loaded package index: the "local feed" case in spec.md's external
// interfaces, used for vendored/offline resolution and in tests.
package local

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/bayleafwalker/depresolve/internal/model"
	"github.com/bayleafwalker/depresolve/internal/semver"
	"github.com/bayleafwalker/depresolve/pkg/frameworks"
)

// Entry is one library version in the index, as loaded from JSON.
type Entry struct {
	Name         string   `json:"name"`
	Version      string   `json:"version"`
	Dependencies []DepRef `json:"dependencies"`
}

// DepRef is one dependency edge in the on-disk index format.
type DepRef struct {
	Name  string `json:"name"`
	Range string `json:"range"`
}

// Provider serves find-library and get-dependencies from a fixed index
// loaded up front, grouped by normalized name.
type Provider struct {
	name string

	mu      sync.RWMutex
	byName  map[string][]Entry
}

// New builds a Provider named name from a flat entry list.
func New(name string, entries []Entry) *Provider {
	p := &Provider{name: name, byName: map[string][]Entry{}}
	for _, e := range entries {
		key := strings.ToLower(e.Name)
		p.byName[key] = append(p.byName[key], e)
	}
	return p
}

// Load reads a JSON array of Entry from path and builds a Provider.
func Load(name, path string) (*Provider, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("local: read index %q: %w", path, err)
	}
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("local: parse index %q: %w", path, err)
	}
	return New(name, entries), nil
}

func (p *Provider) Name() string { return p.name }
func (p *Provider) IsHTTP() bool { return false }

func (p *Provider) FindLibrary(_ context.Context, r model.LibraryRange, _ frameworks.Framework) (model.Identity, bool, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	entries := p.byName[r.Name.Normalized()]
	var candidates []model.Identity
	for _, e := range entries {
		v, err := semver.ParseVersion(e.Version)
		if err != nil {
			continue
		}
		candidates = append(candidates, model.Identity{Name: model.Name(e.Name), Version: v, Kind: model.KindPackage})
	}
	best, found := semver.BestMatch(candidates, func(id model.Identity) semver.Version { return id.Version }, r.VersionRange)
	return best, found, nil
}

func (p *Provider) GetDependencies(_ context.Context, id model.Identity, _ frameworks.Framework) ([]model.LibraryDependency, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	for _, e := range p.byName[id.Name.Normalized()] {
		v, err := semver.ParseVersion(e.Version)
		if err != nil || !semver.Equal(v, id.Version) {
			continue
		}
		deps := make([]model.LibraryDependency, 0, len(e.Dependencies))
		for _, d := range e.Dependencies {
			rng, err := semver.ParseRange(d.Range)
			if err != nil {
				continue
			}
			deps = append(deps, model.LibraryDependency{
				Range: model.LibraryRange{Name: model.Name(d.Name), VersionRange: rng},
			})
		}
		return deps, nil
	}
	return nil, nil
}
