package diagnostic

import (
	"strings"
	"testing"

	"github.com/bayleafwalker/depresolve/internal/combinatorial"
	"github.com/bayleafwalker/depresolve/internal/conflict"
	"github.com/bayleafwalker/depresolve/internal/graph"
	"github.com/bayleafwalker/depresolve/internal/model"
	"github.com/bayleafwalker/depresolve/internal/semver"
)

func rangeOf(name, v string) model.LibraryRange {
	return model.LibraryRange{Name: model.Name(name), VersionRange: semver.MustParseRange(v)}
}

func TestExplainPrioritizesDowngradeOverUnresolved(t *testing.T) {
	arena := graph.NewArena[model.LibraryRange, model.GraphItem](rangeOf("Root", "*"))
	arena.Node(arena.Root()).Item = &model.GraphItem{Key: model.Identity{Name: "root", Version: semver.MustParseVersion("1.0.0")}}
	arena.Node(arena.Root()).Disposition = graph.Accepted

	missing := arena.NewChild(arena.Root(), rangeOf("Missing", "1.0.0"))
	_ = missing // stays unresolved: Item is nil

	a := arena.NewChild(arena.Root(), rangeOf("A", "1.0.0"))
	arena.Node(a).Item = &model.GraphItem{Key: model.Identity{Name: "a", Version: semver.MustParseVersion("1.0.0")}}
	arena.Node(a).Disposition = graph.Accepted
	bDirect := arena.NewChild(arena.Root(), rangeOf("B", "1.0.0"))
	arena.Node(bDirect).Item = &model.GraphItem{Key: model.Identity{Name: "b", Version: semver.MustParseVersion("1.0.0")}}
	arena.Node(bDirect).Disposition = graph.Accepted
	bTransitive := arena.NewChild(a, rangeOf("B", "2.0.0"))
	arena.Node(bTransitive).Item = &model.GraphItem{Key: model.Identity{Name: "b", Version: semver.MustParseVersion("2.0.0")}}

	_, downgrades := conflict.CheckCycleAndNearestWins(arena)

	report := Explain(arena, nil, downgrades)
	if report.Primary == nil {
		t.Fatalf("expected a primary cause")
	}
	if report.Primary.Severity != SeverityDowngrade {
		t.Fatalf("expected the downgrade to outrank the unresolved library, got severity %d", report.Primary.Severity)
	}
	if !strings.Contains(report.Summary(), "downgraded") {
		t.Fatalf("expected summary to mention the downgrade, got %q", report.Summary())
	}
}

func TestExplainSucceedsWithNoCauses(t *testing.T) {
	arena := graph.NewArena[model.LibraryRange, model.GraphItem](rangeOf("Root", "*"))
	arena.Node(arena.Root()).Item = &model.GraphItem{Key: model.Identity{Name: "root", Version: semver.MustParseVersion("1.0.0")}}
	arena.Node(arena.Root()).Disposition = graph.Accepted

	report := Explain(arena, nil, nil)
	if report.Primary != nil {
		t.Fatalf("expected no primary cause, got %+v", report.Primary)
	}
	if !strings.Contains(report.Summary(), "succeeded") {
		t.Fatalf("expected a success summary, got %q", report.Summary())
	}
}

// spec.md §8 scenario 6: the combinatorial search's *NoSolutionError names
// the conflicting id and constraint via its best-attempt rejection; the
// diagnostic report must surface that id and constraint, not a generic
// message.
func TestExplainCombinatorialFailureNamesConflictingConstraint(t *testing.T) {
	ctx := combinatorial.Context{
		AvailablePackages: []combinatorial.SourceDependencyInfo{
			{ID: "P1", Version: semver.MustParseVersion("1.0.0"), Listed: true, Dependencies: []model.LibraryDependency{
				{Range: model.LibraryRange{Name: "Q", VersionRange: semver.MustParseRange("[2.0.0,)")}},
			}},
			{ID: "Q", Version: semver.MustParseVersion("1.0.0"), Listed: true},
			{ID: "Q", Version: semver.MustParseVersion("2.0.0"), Listed: true},
		},
		RequiredIDs:       []model.Name{"P1", "Q"},
		TargetIDs:         []model.Name{"P1"},
		PreferredVersions: map[string]semver.Version{"q": semver.MustParseVersion("1.0.0")},
	}
	_, err := combinatorial.Resolve(ctx)
	if err == nil {
		t.Fatalf("expected combinatorial.Resolve to fail")
	}

	report := ExplainCombinatorialFailure(err)
	if report.Primary == nil {
		t.Fatalf("expected a primary cause")
	}
	if report.Primary.Name.Normalized() != "q" {
		t.Fatalf("expected the primary cause to name Q, got %q", report.Primary.Name)
	}
	if !strings.Contains(report.Primary.Message, "2.0.0") || !strings.Contains(report.Primary.Message, "1.0.0") {
		t.Fatalf("expected the message to mention both the >=2.0 constraint and the 1.0 pin, got %q", report.Primary.Message)
	}
}

func TestExplainCombinatorialFailureNamesCycle(t *testing.T) {
	err := &combinatorial.CircularDependencyError{Cycle: []model.Name{"A", "B", "A"}}
	report := ExplainCombinatorialFailure(err)
	if report.Primary == nil || report.Primary.Severity != SeverityCycle {
		t.Fatalf("expected a cycle-severity primary cause, got %+v", report.Primary)
	}
}
