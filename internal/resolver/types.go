package resolver

import (
	"github.com/bayleafwalker/depresolve/internal/combinatorial"
	"github.com/bayleafwalker/depresolve/internal/model"
	"github.com/bayleafwalker/depresolve/pkg/frameworks"
)

// Input is the normalized view of a resolution request: the library to
// resolve, the target framework it must run on, (optionally) a runtime
// identifier for runtime-specific dependency expansion, and the
// dependency-behavior policy the combinatorial fallback resolver uses when
// the graph conflict resolver cannot settle the tree on its own.
type Input struct {
	Target    model.LibraryRange
	Framework frameworks.Framework
	RuntimeID string
	Behavior  combinatorial.DependencyBehavior
}

// Plan is the resolver's output: the accepted dependency set, flattened
// and deterministically ordered, plus diagnostics describing anything that
// could not be satisfied cleanly.
type Plan struct {
	Accepted    []model.Identity
	Diagnostics Diagnostics
}

// Diagnostics captures human-readable information about resolution, for
// status messages, events, and logging.
type Diagnostics struct {
	Summary string
	Causes  []string
}
