package conflict

import (
	"errors"
	"testing"

	"github.com/bayleafwalker/depresolve/internal/graph"
	"github.com/bayleafwalker/depresolve/internal/model"
	"github.com/bayleafwalker/depresolve/internal/semver"
)

func rangeOf(name, v string) model.LibraryRange {
	return model.LibraryRange{Name: model.Name(name), VersionRange: semver.MustParseRange(v)}
}

func resolve(arena *Arena, id NodeID, name, v string) {
	item := &model.GraphItem{Key: model.Identity{Name: model.Name(name), Version: semver.MustParseVersion(v)}}
	arena.Node(id).Item = item
	arena.Node(id).Disposition = graph.Accepted
}

func resolveKind(arena *Arena, id NodeID, name, v string, kind model.Kind) {
	item := &model.GraphItem{Key: model.Identity{Name: model.Name(name), Version: semver.MustParseVersion(v), Kind: kind}}
	arena.Node(id).Item = item
	arena.Node(id).Disposition = graph.Accepted
}

// Root -> A -> C 1.0, Root -> B -> C 2.0 (equal depth): higher version wins.
func TestNearestWinsEqualDepthHighestVersion(t *testing.T) {
	arena := graph.NewArena[model.LibraryRange, model.GraphItem](rangeOf("Root", "*"))
	resolve(arena, arena.Root(), "root", "1.0.0")

	a := arena.NewChild(arena.Root(), rangeOf("A", "1.0.0"))
	resolve(arena, a, "a", "1.0.0")
	b := arena.NewChild(arena.Root(), rangeOf("B", "1.0.0"))
	resolve(arena, b, "b", "1.0.0")

	c1 := arena.NewChild(a, rangeOf("C", "1.0.0"))
	resolve(arena, c1, "c", "1.0.0")
	c2 := arena.NewChild(b, rangeOf("C", "2.0.0"))
	resolve(arena, c2, "c", "2.0.0")

	TryResolveConflicts(arena)

	if arena.Node(c2).Disposition != graph.Accepted {
		t.Fatalf("expected C 2.0.0 (higher version, equal depth) to be accepted, got %s", arena.Node(c2).Disposition)
	}
	if arena.Node(c1).Disposition != graph.Rejected {
		t.Fatalf("expected C 1.0.0 to be rejected in favor of the higher version, got %s", arena.Node(c1).Disposition)
	}
}

// Root -> A 1.0, Root -> B -> A 2.0 (unequal depth): shallower wins even
// though it is the lower version.
func TestNearestWinsShallowerBeatsHigherVersion(t *testing.T) {
	arena := graph.NewArena[model.LibraryRange, model.GraphItem](rangeOf("Root", "*"))
	resolve(arena, arena.Root(), "root", "1.0.0")

	aDirect := arena.NewChild(arena.Root(), rangeOf("A", "1.0.0"))
	resolve(arena, aDirect, "a", "1.0.0")

	b := arena.NewChild(arena.Root(), rangeOf("B", "1.0.0"))
	resolve(arena, b, "b", "1.0.0")
	aTransitive := arena.NewChild(b, rangeOf("A", "2.0.0"))
	resolve(arena, aTransitive, "a", "2.0.0")

	TryResolveConflicts(arena)

	if arena.Node(aDirect).Disposition != graph.Accepted {
		t.Fatalf("expected the shallower direct A 1.0.0 to win nearest-wins, got %s", arena.Node(aDirect).Disposition)
	}
	if arena.Node(aTransitive).Disposition != graph.Rejected {
		t.Fatalf("expected the deeper transitive A 2.0.0 to be rejected, got %s", arena.Node(aTransitive).Disposition)
	}
}

// Root -> A -> B 2.0, Root -> B 1.0: B 2.0 is detached as a downgrade,
// B 1.0 is accepted (spec.md §8 scenario 4).
func TestCheckCycleAndNearestWinsDetectsDowngrade(t *testing.T) {
	arena := graph.NewArena[model.LibraryRange, model.GraphItem](rangeOf("Root", "*"))
	resolve(arena, arena.Root(), "root", "1.0.0")

	a := arena.NewChild(arena.Root(), rangeOf("A", "1.0.0"))
	resolve(arena, a, "a", "1.0.0")
	bDirect := arena.NewChild(arena.Root(), rangeOf("B", "1.0.0"))
	resolve(arena, bDirect, "b", "1.0.0")
	bTransitive := arena.NewChild(a, rangeOf("B", "2.0.0"))
	resolve(arena, bTransitive, "b", "2.0.0")

	_, downgrades := CheckCycleAndNearestWins(arena)

	if len(downgrades) != 1 || downgrades[0].Node != bTransitive {
		t.Fatalf("expected B 2.0.0 to be recorded as a downgrade, got %+v", downgrades)
	}
	if len(arena.Children(a)) != 0 {
		t.Fatalf("expected B 2.0.0 to be detached from A's children")
	}
	if len(arena.Children(arena.Root())) != 2 {
		t.Fatalf("expected B 1.0.0 to remain attached to root")
	}
}

func TestCheckCycleAndNearestWinsDetachesCycle(t *testing.T) {
	arena := graph.NewArena[model.LibraryRange, model.GraphItem](rangeOf("Root", "*"))
	resolve(arena, arena.Root(), "root", "1.0.0")

	a := arena.NewChild(arena.Root(), rangeOf("A", "1.0.0"))
	resolve(arena, a, "a", "1.0.0")
	backToA := arena.NewChild(a, rangeOf("A", "1.0.0"))
	arena.Node(backToA).Disposition = graph.Cycle

	cycles, _ := CheckCycleAndNearestWins(arena)
	if len(cycles) != 1 || cycles[0] != backToA {
		t.Fatalf("expected the cyclic A reference to be collected, got %v", cycles)
	}
	if len(arena.Children(a)) != 0 {
		t.Fatalf("expected the cyclic node to be detached")
	}
}

// Root -> A -> C 1.0 (Reference, deeper in practice would lose), Root -> B -> C 2.0
// (Package, equal depth, higher version): the Reference wins regardless.
func TestReferenceAlwaysWinsOverPackagePeer(t *testing.T) {
	arena := graph.NewArena[model.LibraryRange, model.GraphItem](rangeOf("Root", "*"))
	resolve(arena, arena.Root(), "root", "1.0.0")

	a := arena.NewChild(arena.Root(), rangeOf("A", "1.0.0"))
	resolve(arena, a, "a", "1.0.0")
	b := arena.NewChild(arena.Root(), rangeOf("B", "1.0.0"))
	resolve(arena, b, "b", "1.0.0")

	c1 := arena.NewChild(a, rangeOf("C", "1.0.0"))
	resolveKind(arena, c1, "c", "1.0.0", model.KindReference)
	c2 := arena.NewChild(b, rangeOf("C", "2.0.0"))
	resolve(arena, c2, "c", "2.0.0")

	// C 2.0.0's own range (2.0.0 and up) excludes the Reference winner, so the
	// post-iteration invariant check reports it once dispositions settle.
	_, err := TryResolveConflicts(arena)
	var failed *ConflictResolutionFailedError
	if !errors.As(err, &failed) {
		t.Fatalf("expected a *ConflictResolutionFailedError for C 2.0.0's unsatisfied range, got %v", err)
	}

	if arena.Node(c1).Disposition != graph.Accepted {
		t.Fatalf("expected the Reference C 1.0.0 to win over the higher-version Package peer, got %s", arena.Node(c1).Disposition)
	}
	if arena.Node(c2).Disposition != graph.Rejected {
		t.Fatalf("expected the Package C 2.0.0 to lose to the Reference, got %s", arena.Node(c2).Disposition)
	}
}

// Root -> A -> C [1.0.0,2.0.0) (a bounded pin), Root -> B -> C [2.0.0,3.0.0)
// (equal depth, higher version wins): the settled tree is internally
// inconsistent because A's own requested range excludes the winner, so the
// post-iteration invariant check must report it.
func TestTryResolveConflictsReportsInvariantFailure(t *testing.T) {
	arena := graph.NewArena[model.LibraryRange, model.GraphItem](rangeOf("Root", "*"))
	resolve(arena, arena.Root(), "root", "1.0.0")

	a := arena.NewChild(arena.Root(), rangeOf("A", "1.0.0"))
	resolve(arena, a, "a", "1.0.0")
	b := arena.NewChild(arena.Root(), rangeOf("B", "1.0.0"))
	resolve(arena, b, "b", "1.0.0")

	c1 := arena.NewChild(a, rangeOf("C", "[1.0.0,2.0.0)"))
	resolve(arena, c1, "c", "1.0.0")
	c2 := arena.NewChild(b, rangeOf("C", "[2.0.0,3.0.0)"))
	resolve(arena, c2, "c", "2.0.0")

	_, err := TryResolveConflicts(arena)
	var failed *ConflictResolutionFailedError
	if !errors.As(err, &failed) {
		t.Fatalf("expected a *ConflictResolutionFailedError, got %v", err)
	}
	if len(failed.Failures) != 1 {
		t.Fatalf("expected exactly one invariant failure, got %v", failed.Failures)
	}
}
