package conflict

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bayleafwalker/depresolve/internal/graph"
	"github.com/bayleafwalker/depresolve/internal/model"
	"github.com/bayleafwalker/depresolve/internal/semver"
)

// maxFixpointIterations bounds the Track/Propagate/Accept-or-Reject loop
// (spec.md §4.E.2): in practice two or three passes settle the tree, but a
// hard patience bound keeps a pathological graph from looping forever.
const maxFixpointIterations = 1000

// ErrResolutionDidNotConverge is returned when the fixpoint still had
// pending disposition changes after maxFixpointIterations passes (spec.md
// §4.E.2, §6.5 ResolutionDidNotConverge).
var ErrResolutionDidNotConverge = errors.New("conflict: fixpoint did not converge within patience")

// ConflictResolutionFailedError reports the post-iteration invariant check
// (spec.md §4.E.2, end): after the fixpoint settles, every Rejected node's
// own requested range must still be satisfied by the winning version for
// its name. A node for which that fails means the tree the fixpoint
// produced is not actually consistent.
type ConflictResolutionFailedError struct {
	Failures []string
}

func (e *ConflictResolutionFailedError) Error() string {
	return "conflict: " + strings.Join(e.Failures, "; ")
}

// candidate is the current best-known resolution for one library name.
type candidate struct {
	node    NodeID
	depth   int
	version semver.Version
	kind    model.Kind
}

// TryResolveConflicts runs the three-pass fixpoint: Track live dispositions
// (pass 1, a Reference always wins over a same-name peer, otherwise
// nearest-wins-by-depth then highest-version), propagate rejection down
// through any node that lost (pass 2, by excluding its subtree from the
// next iteration's tracking), and accept/reject every live node against the
// winner for its name (pass 3). It repeats until a full pass makes no
// disposition changes, or the iteration patience is exhausted.
//
// Returns the number of iterations actually run and, if the fixpoint
// exhausted maxFixpointIterations without settling, ErrResolutionDidNotConverge,
// or if the settled tree still has a Rejected node whose own range the
// winner fails to satisfy, a *ConflictResolutionFailedError.
func TryResolveConflicts(arena *Arena) (int, error) {
	var tracker map[string]candidate
	iterations := 0
	converged := false

	for ; iterations < maxFixpointIterations; iterations++ {
		live := collectLive(arena)

		tracker = map[string]candidate{}
		for _, id := range live {
			item := arena.Node(id).Item
			if item == nil {
				continue
			}
			name := item.Key.Name.Normalized()
			depth := arena.Depth(id)
			cur, ok := tracker[name]
			if !ok || isBetterCandidate(depth, item.Key.Version, item.Key.Kind, cur) {
				tracker[name] = candidate{node: id, depth: depth, version: item.Key.Version, kind: item.Key.Kind}
			}
		}

		changed := false
		for _, id := range live {
			item := arena.Node(id).Item
			if item == nil {
				continue
			}
			name := item.Key.Name.Normalized()
			winner := tracker[name]
			next := graph.Rejected
			if winner.node == id {
				next = graph.Accepted
			}
			node := arena.Node(id)
			if node.Disposition != next {
				node.Disposition = next
				changed = true
			}
		}

		if !changed {
			converged = true
			iterations++
			break
		}
	}

	if !converged {
		return iterations, ErrResolutionDidNotConverge
	}

	accepted := make(map[string]model.Identity, len(tracker))
	for name, c := range tracker {
		accepted[name] = arena.Node(c.node).Item.Key
	}

	var failures []string
	for _, id := range collectLive(arena) {
		node := arena.Node(id)
		if node.Disposition != graph.Rejected {
			continue
		}
		winner, ok := accepted[node.Key.Name.Normalized()]
		if !ok {
			continue
		}
		if !node.Key.VersionRange.Satisfies(winner.Version) {
			failures = append(failures, fmt.Sprintf("FailedToResolveConflicts(%s, %s)", node.Key.Name, node.Key.VersionRange.PrettyString()))
		}
	}
	if len(failures) > 0 {
		return iterations, &ConflictResolutionFailedError{Failures: failures}
	}
	return iterations, nil
}

// collectLive returns every non-detached, non-Cycle node reachable from the
// root by following only Accepted ancestors (the root itself always
// counts): the subtree under a node this pass just rejected is excluded
// from the next iteration's tracking, which is what lets the fixpoint
// converge when rejecting a node changes who is nearest for some other name.
func collectLive(arena *Arena) []NodeID {
	var live []NodeID
	var walk func(id NodeID)
	walk = func(id NodeID) {
		node := arena.Node(id)
		if node.Detached || node.Disposition == graph.Cycle {
			return
		}
		live = append(live, id)
		if id != arena.Root() && node.Disposition == graph.Rejected {
			return // subtree under a rejected node does not count toward tracking
		}
		for _, c := range arena.Children(id) {
			walk(c)
		}
	}
	walk(arena.Root())
	return live
}

// isBetterCandidate reports whether (depth, version, kind) should replace
// cur as the winner for a name. A Reference always wins over a non-Reference
// peer and is never displaced by one, regardless of depth or version (spec.md
// §4.E.2 pass 1, "references always win over same-name peers"); between two
// candidates of the same reference-ness, shallower depth wins outright, equal
// depth falls back to the higher version, and exact ties keep the
// earlier-encountered node.
func isBetterCandidate(depth int, version semver.Version, kind model.Kind, cur candidate) bool {
	curIsRef := cur.kind == model.KindReference
	newIsRef := kind == model.KindReference
	if newIsRef != curIsRef {
		return newIsRef
	}
	if depth != cur.depth {
		return depth < cur.depth
	}
	return semver.Compare(version, cur.version) > 0
}
