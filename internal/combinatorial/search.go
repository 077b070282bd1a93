package combinatorial

import (
	"github.com/bayleafwalker/depresolve/internal/model"
	"github.com/bayleafwalker/depresolve/internal/semver"
)

// Resolve runs the full combinatorial search contract from spec.md §4.F:
// prune impossible candidates, build one preference-ordered group per
// package id, search for the first full assignment that rejects no pair,
// then drop absent entries, check for circular dependencies, and
// topologically sort the result.
//
// Returns ErrUnknownRequiredID if a required id has no entry in
// ctx.AvailablePackages, a *NoSolutionError if the search exhausts every
// candidate, or a *CircularDependencyError if the accepted assignment
// contains a cycle within the 20-level depth cap.
func Resolve(ctx Context) ([]model.Identity, error) {
	byID := groupByID(ctx.AvailablePackages)
	requiredSet := toSet(ctx.RequiredIDs)
	for _, id := range ctx.RequiredIDs {
		if _, ok := byID[id.Normalized()]; !ok {
			return nil, ErrUnknownRequiredID
		}
	}

	pruned := pruneImpossible(ctx.AvailablePackages, requiredSet)
	prunedByID := groupByID(pruned)

	targetSet := toSet(ctx.TargetIDs)
	cmp := ResolverComparer(ctx.Behavior, ctx.PreferredVersions, targetSet)

	order, groups := buildGroups(ctx, prunedByID, requiredSet, targetSet, cmp)

	s := &search{order: order, groups: groups}
	assignment := Assignment{}
	if !s.assign(0, assignment) {
		rej := s.lastRejection
		conflictKey := rej.ConflictID.Normalized()
		if pinned, ok := ctx.PreferredVersions[conflictKey]; ok && !targetSet[conflictKey] && !rej.ConflictAbsent {
			rej.PinnedVersion = &pinned
		}
		return nil, &NoSolutionError{BestAttempt: s.bestAttempt, Rejection: rej}
	}

	final := Assignment{}
	for k, v := range assignment {
		if v.Absent {
			continue
		}
		final[k] = v
	}

	if cycle, found := DetectCircularDependency(final, 20); found {
		return nil, &CircularDependencyError{Cycle: cycle}
	}

	sorted := TopoSort(final)
	out := make([]model.Identity, 0, len(sorted))
	for _, name := range sorted {
		out = append(out, final[name.Normalized()].Identity())
	}
	return out, nil
}

// search holds the immutable group data and the mutable best-attempt
// bookkeeping for one DFS run.
type search struct {
	order  []string
	groups map[string][]ResolverPackage

	bestAttempt   Assignment
	lastRejection Rejection
}

// assign tries every candidate of groups[order[i]] in order, recording the
// deepest consistent partial assignment reached and the pairwise rejection
// that ended it, so a total failure still yields a useful diagnostic
// (spec.md §4.F "best-attempt").
func (s *search) assign(i int, assignment Assignment) bool {
	if i >= len(s.order) {
		return true
	}
	key := s.order[i]
	for _, candidate := range s.groups[key] {
		if rej, ok := firstRejection(candidate, assignment); ok {
			s.recordAttempt(assignment, rej)
			continue
		}
		assignment[key] = candidate
		if s.assign(i+1, assignment) {
			return true
		}
		delete(assignment, key)
	}
	return false
}

// recordAttempt snapshots assignment (the deepest consistent prefix reached
// before rej ended this branch) as the new best-attempt whenever it is at
// least as deep as the previous one, so the final failure reports the
// last, most fully-explored branch.
func (s *search) recordAttempt(assignment Assignment, rej Rejection) {
	if len(assignment) < len(s.bestAttempt) {
		return
	}
	snapshot := make(Assignment, len(assignment))
	for k, v := range assignment {
		snapshot[k] = v
	}
	s.bestAttempt = snapshot
	s.lastRejection = rej
}

// firstRejection reports the first already-assigned package that rejects
// candidate, per should-reject-pair (spec.md §4.F "Search"): one side
// declares a dependency edge on the other id and the other is absent or
// does not satisfy the declared range.
func firstRejection(candidate ResolverPackage, assignment Assignment) (Rejection, bool) {
	for _, assigned := range assignment {
		if rej, bad := rejects(candidate, assigned); bad {
			return rej, true
		}
		if rej, bad := rejects(assigned, candidate); bad {
			return rej, true
		}
	}
	return Rejection{}, false
}

// rejects reports whether requirer's declared dependency on other.ID is
// violated by other (other absent, or other's version outside the range).
func rejects(requirer, other ResolverPackage) (Rejection, bool) {
	if requirer.Absent {
		return Rejection{}, false
	}
	for _, dep := range requirer.Dependencies {
		if dep.Range.Name.Normalized() != other.ID.Normalized() {
			continue
		}
		if other.Absent || !dep.Range.VersionRange.Satisfies(other.Version) {
			return Rejection{
				RequirerID:      requirer.ID,
				RequirerVersion: requirer.Version,
				ConflictID:      other.ID,
				RequiredRange:   dep.Range.VersionRange,
				ConflictAbsent:  other.Absent,
				ConflictVersion: other.Version,
			}, true
		}
	}
	return Rejection{}, false
}

// pruneImpossible discards non-required candidates that cannot satisfy the
// combined range of every dependency edge referencing their id, repeating
// until a fixpoint (spec.md §4.F "Preprocessing").
func pruneImpossible(pkgs []SourceDependencyInfo, requiredSet map[string]bool) []SourceDependencyInfo {
	kept := append([]SourceDependencyInfo(nil), pkgs...)
	for {
		combined := combinedRanges(kept)
		next := kept[:0:0]
		removed := false
		for _, p := range kept {
			if requiredSet[p.ID.Normalized()] {
				next = append(next, p)
				continue
			}
			if rng, ok := combined[p.ID.Normalized()]; ok && !rng.Satisfies(p.Version) {
				removed = true
				continue
			}
			next = append(next, p)
		}
		kept = next
		if !removed {
			return kept
		}
	}
}

func combinedRanges(pkgs []SourceDependencyInfo) map[string]semver.Range {
	byID := map[string][]semver.Range{}
	for _, p := range pkgs {
		for _, dep := range p.Dependencies {
			key := dep.Range.Name.Normalized()
			byID[key] = append(byID[key], dep.Range.VersionRange)
		}
	}
	combined := make(map[string]semver.Range, len(byID))
	for id, ranges := range byID {
		combined[id] = semver.Combine(ranges)
	}
	return combined
}

// buildGroups walks outward from ctx.RequiredIDs following dependency
// edges, producing one ordered id list and one sorted candidate group per
// id (spec.md §4.F "Preparation"). PreferredVersions hard-pins an
// already-installed (non-target) id to its exact version, modeling a
// packages.config constraint; a target id instead treats PreferredVersions
// only as a first-try preference via ResolverComparer.
func buildGroups(ctx Context, prunedByID map[string][]SourceDependencyInfo, requiredSet, targetSet map[string]bool, cmp func(a, b ResolverPackage) int) ([]string, map[string][]ResolverPackage) {
	groups := map[string][]ResolverPackage{}
	seen := map[string]bool{}
	var order []string
	var queue []string

	for _, id := range ctx.RequiredIDs {
		key := id.Normalized()
		if !seen[key] {
			seen[key] = true
			queue = append(queue, key)
		}
	}

	for len(queue) > 0 {
		key := queue[0]
		queue = queue[1:]
		order = append(order, key)

		entries, ok := prunedByID[key]
		var group []ResolverPackage
		for _, e := range entries {
			deps := e.Dependencies
			if ctx.Behavior == Ignore {
				deps = nil
			}
			group = append(group, ResolverPackage{ID: e.ID, Version: e.Version, Listed: e.Listed, Dependencies: deps})
			for _, dep := range e.Dependencies {
				depKey := dep.Range.Name.Normalized()
				if !seen[depKey] {
					seen[depKey] = true
					queue = append(queue, depKey)
				}
			}
		}

		if pinned, ok := ctx.PreferredVersions[key]; ok && !targetSet[key] {
			group = filterToPinned(group, pinned)
		}

		if !ok {
			group = []ResolverPackage{{ID: model.Name(key), Absent: true}}
		} else if !requiredSet[key] {
			group = append(group, ResolverPackage{ID: model.Name(key), Absent: true})
		}

		groups[key] = orderGroup(group, cmp)
	}
	return order, groups
}

// filterToPinned narrows group to only the entry matching pinned, modeling
// a hard packages.config version constraint rather than a soft preference.
func filterToPinned(group []ResolverPackage, pinned semver.Version) []ResolverPackage {
	var kept []ResolverPackage
	for _, p := range group {
		if semver.Equal(p.Version, pinned) {
			kept = append(kept, p)
		}
	}
	return kept
}

func groupByID(pkgs []SourceDependencyInfo) map[string][]SourceDependencyInfo {
	byID := map[string][]SourceDependencyInfo{}
	for _, p := range pkgs {
		key := p.ID.Normalized()
		byID[key] = append(byID[key], p)
	}
	return byID
}

func toSet(names []model.Name) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n.Normalized()] = true
	}
	return set
}
