// Package providers defines the lookup surface the walker races across
// (spec.md §4.C): each Provider answers find-library and get-dependencies
// for a given framework, and declares whether it is an HTTP-backed source.
package providers

import (
	"context"

	"github.com/bayleafwalker/depresolve/internal/model"
	"github.com/bayleafwalker/depresolve/pkg/frameworks"
)

// Provider is one source of library metadata: a local index, an HTTP feed,
// or a gRPC-backed registry.
type Provider interface {
	// Name identifies the provider in diagnostics and metrics labels.
	Name() string

	// IsHTTP reports whether this provider performs network I/O. The walker
	// races and retries every provider the same way whatever it reports.
	IsHTTP() bool

	// FindLibrary returns the best identity satisfying r for fw, or
	// found=false if this provider has nothing to offer.
	FindLibrary(ctx context.Context, r model.LibraryRange, fw frameworks.Framework) (id model.Identity, found bool, err error)

	// GetDependencies returns id's direct dependencies for fw.
	GetDependencies(ctx context.Context, id model.Identity, fw frameworks.Framework) ([]model.LibraryDependency, error)
}

// Chain is an ordered list of providers, raced together by the walker.
// Order only matters as a tie-break when two providers return equally
// preferable, non-exact matches (spec.md §4.D.2).
type Chain []Provider

// Names returns the provider names in chain order, for logging.
func (c Chain) Names() []string {
	names := make([]string, len(c))
	for i, p := range c {
		names[i] = p.Name()
	}
	return names
}
