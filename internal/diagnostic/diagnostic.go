// Package diagnostic turns the outcome of the graph conflict resolver and
// combinatorial resolver into a human-readable explanation (spec.md §4.G):
// a single primary cause, chosen by priority, plus supporting detail for
// every other thing that went wrong.
package diagnostic

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/bayleafwalker/depresolve/internal/combinatorial"
	"github.com/bayleafwalker/depresolve/internal/conflict"
	"github.com/bayleafwalker/depresolve/internal/graph"
	"github.com/bayleafwalker/depresolve/internal/model"
)

// Severity ranks causes so the engine can pick the single most useful one
// to lead with (spec.md §4.G.1, lower value = higher priority).
type Severity int

const (
	SeverityVersionConflict Severity = iota
	SeverityDowngrade
	SeverityCycle
	SeverityUnresolved
)

// Cause is one diagnosable condition found in a resolved (or partially
// resolved) tree.
type Cause struct {
	Severity Severity
	Name     model.Name
	Message  string
	Path     []model.Name // root-to-node path, for "seen via" explanations
}

// Report is the diagnostic engine's full output: a single primary cause
// (the most severe, or the first of equal severity) plus every cause found,
// in priority order.
type Report struct {
	Primary *Cause
	Causes  []Cause
}

// Explain builds a Report from a graph already passed through
// internal/conflict: cycles and downgrades detected there, plus any node
// left Rejected or unresolved (Item == nil) by the nearest-wins fixpoint.
func Explain(arena *conflict.Arena, cycles []conflict.NodeID, downgrades []conflict.Downgrade) Report {
	var causes []Cause

	for _, id := range cycles {
		path := pathNames(arena, id)
		causes = append(causes, Cause{
			Severity: SeverityCycle,
			Name:     arena.Node(id).Key.Name,
			Message:  fmt.Sprintf("%s introduces a cycle back to an ancestor and was removed from the graph", arena.Node(id).Key.Name),
			Path:     path,
		})
	}

	for _, dg := range downgrades {
		name := arena.Node(dg.Node).Key.Name
		causer := arena.Node(dg.CausedByID).Key.Name
		causes = append(causes, Cause{
			Severity: SeverityDowngrade,
			Name:     name,
			Message: fmt.Sprintf("%s would be downgraded: a shallower reference to %s requests a lower minimum version",
				name, causer),
			Path: pathNamesFromIDs(arena, dg.Path),
		})
	}

	graph.BFS(arena, arena.Root(), struct{}{}, func(id graph.NodeID, _ struct{}) struct{} {
		node := arena.Node(id)
		if node.Detached || id == arena.Root() {
			return struct{}{}
		}
		switch {
		case node.Item == nil:
			causes = append(causes, Cause{
				Severity: SeverityUnresolved,
				Name:     node.Key.Name,
				Message:  fmt.Sprintf("%s could not be found by any provider for the requested range %s", node.Key.Name, node.Key.VersionRange.PrettyString()),
				Path:     pathNames(arena, id),
			})
		case node.Disposition == graph.Rejected:
			causes = append(causes, Cause{
				Severity: SeverityVersionConflict,
				Name:     node.Key.Name,
				Message:  fmt.Sprintf("%s %s lost to a nearer or higher-preference requirement for the same library", node.Item.Key.Name, node.Item.Key.Version),
				Path:     pathNames(arena, id),
			})
		}
		return struct{}{}
	})

	sort.SliceStable(causes, func(i, j int) bool { return causes[i].Severity < causes[j].Severity })

	report := Report{Causes: causes}
	if len(causes) > 0 {
		report.Primary = &causes[0]
	}
	return report
}

// ExplainCombinatorialFailure builds a Report from a failed combinatorial
// search (spec.md §4.G, §8 scenario 6): a *combinatorial.NoSolutionError
// names the actual conflicting id and constraint via its best-attempt
// rejection; a *combinatorial.CircularDependencyError names the cycle.
// Any other error (e.g. ErrUnknownRequiredID) is reported by its message.
func ExplainCombinatorialFailure(err error) Report {
	var noSolution *combinatorial.NoSolutionError
	if errors.As(err, &noSolution) {
		rej := noSolution.Rejection
		cause := Cause{
			Severity: SeverityVersionConflict,
			Name:     rej.ConflictID,
			Message:  fmt.Sprintf("%s has a conflicting constraint: %s", rej.ConflictID, rej.String()),
		}
		return Report{Primary: &cause, Causes: []Cause{cause}}
	}

	var circular *combinatorial.CircularDependencyError
	if errors.As(err, &circular) {
		var name model.Name
		if len(circular.Cycle) > 0 {
			name = circular.Cycle[0]
		}
		cause := Cause{
			Severity: SeverityCycle,
			Name:     name,
			Message:  circular.Error(),
			Path:     circular.Cycle,
		}
		return Report{Primary: &cause, Causes: []Cause{cause}}
	}

	cause := Cause{Severity: SeverityVersionConflict, Message: err.Error()}
	return Report{Primary: &cause, Causes: []Cause{cause}}
}

// Summary renders a single paragraph leading with the primary cause,
// a shape used for status messages and CLI output alike.
func (r Report) Summary() string {
	if r.Primary == nil {
		return "resolution succeeded with no diagnosable conflicts"
	}
	var b strings.Builder
	b.WriteString(r.Primary.Message)
	if len(r.Primary.Path) > 0 {
		b.WriteString(" (via ")
		b.WriteString(joinPath(r.Primary.Path))
		b.WriteString(")")
	}
	if extra := len(r.Causes) - 1; extra > 0 {
		fmt.Fprintf(&b, "; %d additional issue(s) found", extra)
	}
	return b.String()
}

func pathNames(arena *conflict.Arena, id conflict.NodeID) []model.Name {
	return pathNamesFromIDs(arena, arena.Path(id))
}

func pathNamesFromIDs(arena *conflict.Arena, ids []conflict.NodeID) []model.Name {
	names := make([]model.Name, 0, len(ids))
	for _, id := range ids {
		names = append(names, arena.Node(id).Key.Name)
	}
	return names
}

func joinPath(names []model.Name) string {
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = string(n)
	}
	return strings.Join(parts, " -> ")
}
