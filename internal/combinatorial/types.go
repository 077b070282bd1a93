// Package combinatorial implements the combinatorial resolver (spec.md
// §4.F): an ordered depth-first search over a flat universe of available
// packages that backtracks on pairwise rejection, used as a fallback when
// the graph conflict resolver's nearest-wins fixpoint cannot produce a
// consistent tree on its own.
package combinatorial

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bayleafwalker/depresolve/internal/model"
	"github.com/bayleafwalker/depresolve/internal/semver"
)

// DependencyBehavior controls which candidate version the search tries
// first for a given package id (spec.md §4.F.3).
type DependencyBehavior int

const (
	// Lowest tries the smallest satisfying version first.
	Lowest DependencyBehavior = iota
	// HighestPatch tries the highest patch release within the lowest
	// satisfying major.minor first.
	HighestPatch
	// HighestMinor tries the highest minor (and patch) release within the
	// lowest satisfying major first.
	HighestMinor
	// Highest tries the largest satisfying version first.
	Highest
	// Ignore skips this package's own version preference entirely and
	// always prefers the highest, deferring entirely to its dependents.
	Ignore
)

// SourceDependencyInfo is one entry in the available-package universe fed
// to Resolve: spec.md §3's SourcePackageDependencyInfo.
type SourceDependencyInfo struct {
	ID           model.Name
	Version      semver.Version
	Listed       bool
	Dependencies []model.LibraryDependency
}

// ResolverPackage is a flattened search candidate: either a concrete
// identity or the Absent sentinel meaning "omit this id from the solution"
// (spec.md §3's ResolverPackage, `absent=true`).
type ResolverPackage struct {
	ID           model.Name
	Version      semver.Version
	Listed       bool
	Absent       bool
	Dependencies []model.LibraryDependency
}

// Identity converts a non-absent ResolverPackage to a model.Identity of
// kind Package.
func (p ResolverPackage) Identity() model.Identity {
	return model.Identity{Name: p.ID, Version: p.Version, Kind: model.KindPackage}
}

func (p ResolverPackage) String() string {
	if p.Absent {
		return string(p.ID) + " <absent>"
	}
	return string(p.ID) + " " + p.Version.String()
}

// Assignment is the search's working/output state: one chosen
// ResolverPackage per package id, keyed by normalized id.
type Assignment map[string]ResolverPackage

// Context is the full input contract for Resolve (spec.md §4.F, §6.4):
// the available package universe, the ids that must appear in the
// solution, any pinned/preferred versions (e.g. from packages.config),
// which required ids are new targets rather than already-installed
// packages, and the version-preference policy.
type Context struct {
	AvailablePackages []SourceDependencyInfo
	RequiredIDs       []model.Name

	// PreferredVersions pins an already-installed (non-target) id to an
	// exact version: spec.md §4.G's "packages.config allowed versions"
	// constraint. Keyed by normalized id.
	PreferredVersions map[string]semver.Version

	// TargetIDs is the subset of RequiredIDs that are new targets rather
	// than already-installed packages: PreferredVersions is a hard pin for
	// everything else, but only a soft first-try preference for a target.
	TargetIDs []model.Name

	Behavior DependencyBehavior
}

// ErrUnknownRequiredID is returned when a required id has no corresponding
// entry anywhere in Context.AvailablePackages (spec.md §7, "Input: unknown
// required id").
var ErrUnknownRequiredID = errors.New("combinatorial: required id has no available package")

// Rejection records the pairwise rejection that ended the deepest branch
// the search explored, for internal/diagnostic to name the actual
// conflicting id and constraint (spec.md §8 scenario 6).
type Rejection struct {
	RequirerID      model.Name
	RequirerVersion semver.Version
	ConflictID      model.Name
	RequiredRange   semver.Range
	ConflictAbsent  bool
	ConflictVersion semver.Version
	PinnedVersion   *semver.Version
}

func (r Rejection) String() string {
	msg := fmt.Sprintf("%s %s requires %s %s, but ", r.RequirerID, r.RequirerVersion, r.ConflictID, r.RequiredRange.PrettyString())
	if r.ConflictAbsent {
		msg += fmt.Sprintf("%s was omitted from the solution", r.ConflictID)
	} else {
		msg += fmt.Sprintf("%s %s does not satisfy it", r.ConflictID, r.ConflictVersion)
	}
	if r.PinnedVersion != nil {
		msg += fmt.Sprintf(" (pinned to %s by an existing installed constraint)", r.PinnedVersion.String())
	}
	return msg
}

// NoSolutionError indicates the search exhausted every candidate in every
// group without finding an assignment that rejects no pair. BestAttempt is
// the deepest partial assignment the search reached; Rejection is the
// pairwise conflict that ended that branch.
type NoSolutionError struct {
	BestAttempt Assignment
	Rejection   Rejection
}

func (e *NoSolutionError) Error() string {
	return "combinatorial: no solution found: " + e.Rejection.String()
}

// CircularDependencyError reports a dependency cycle found in the final
// assignment (spec.md §4.F post-processing, 20-level depth cap).
type CircularDependencyError struct {
	Cycle []model.Name
}

func (e *CircularDependencyError) Error() string {
	parts := make([]string, len(e.Cycle))
	for i, n := range e.Cycle {
		parts[i] = string(n)
	}
	return "combinatorial: circular dependency: " + strings.Join(parts, " -> ")
}
