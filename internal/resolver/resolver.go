package resolver

import (
	"context"
	"errors"
	"sort"

	"github.com/go-logr/logr"
	pkgerrors "github.com/pkg/errors"

	"github.com/bayleafwalker/depresolve/internal/combinatorial"
	"github.com/bayleafwalker/depresolve/internal/conflict"
	"github.com/bayleafwalker/depresolve/internal/diagnostic"
	"github.com/bayleafwalker/depresolve/internal/graph"
	"github.com/bayleafwalker/depresolve/internal/model"
	"github.com/bayleafwalker/depresolve/internal/providers"
	"github.com/bayleafwalker/depresolve/internal/walker"
	"github.com/bayleafwalker/depresolve/pkg/runtimegraph"
)

// Resolver computes a Plan for a given Input: it walks the dependency
// graph, resolves conflicts, and reports diagnostics for whatever was left
// unresolved, downgraded, cyclic, or rejected.
type Resolver interface {
	Resolve(ctx context.Context, in Input) (Plan, error)
}

// DefaultResolver is the reference implementation, wiring together
// internal/walker (component D), internal/conflict (component E),
// internal/combinatorial (component F, as a fallback), and
// internal/diagnostic (component G).
type DefaultResolver struct {
	Chain  providers.Chain
	Logger logr.Logger

	// RuntimeGraph, when set, is consulted by the walker to augment each
	// resolved package's dependencies for Input.RuntimeID (spec.md §6.3).
	RuntimeGraph runtimegraph.Graph
}

// NewDefault builds a DefaultResolver over chain.
func NewDefault(chain providers.Chain, logger logr.Logger) *DefaultResolver {
	return &DefaultResolver{Chain: chain, Logger: logger}
}

func (r *DefaultResolver) Resolve(ctx context.Context, in Input) (Plan, error) {
	if len(r.Chain) == 0 {
		return Plan{}, ErrNoChain
	}

	arena := walker.Walk(ctx, in.Target, r.Chain, walker.Options{
		Framework:    in.Framework,
		Logger:       r.Logger,
		RuntimeGraph: r.RuntimeGraph,
		RuntimeID:    in.RuntimeID,
	})

	if ctx.Err() != nil {
		return Plan{}, &ResolutionCancelled{Err: ctx.Err()}
	}

	if arena.Node(arena.Root()).Item == nil {
		return Plan{}, pkgerrors.Wrapf(ErrUnresolved, "target %s", in.Target.String())
	}

	cycles, downgrades := conflict.CheckCycleAndNearestWins(arena)
	_, conflictErr := conflict.TryResolveConflicts(arena)
	if errors.Is(conflictErr, conflict.ErrResolutionDidNotConverge) {
		return Plan{}, &ResolutionDidNotConverge{Err: conflictErr}
	}

	report := diagnostic.Explain(arena, cycles, downgrades)

	plan := Plan{
		Accepted: flattenAccepted(arena),
		Diagnostics: Diagnostics{
			Summary: report.Summary(),
			Causes:  causeMessages(report),
		},
	}

	if len(report.Causes) > 0 || conflictErr != nil {
		if accepted, ferr := r.combinatorialFallback(arena, in); ferr == nil {
			plan.Accepted = accepted
			plan.Diagnostics.Summary = "graph conflict resolution left unresolved nodes; combinatorial search found a consistent alternative"
		} else {
			combReport := diagnostic.ExplainCombinatorialFailure(ferr)
			if combReport.Primary != nil {
				plan.Diagnostics.Causes = append(plan.Diagnostics.Causes, combReport.Primary.Message)
			}
			if conflictErr != nil {
				return plan, &ResolverConstraintError{Diagnostic: plan.Diagnostics.Summary, Err: conflictErr}
			}
		}
	}

	return plan, nil
}

// combinatorialFallback flattens every resolved node the walker reached
// into the flat available-package universe component F expects, then runs
// the combinatorial search over it (spec.md §4.F, §6.4): required ids are
// every distinct package name the walk touched (they are all, transitively,
// needed), and the walk's own target is the sole search target.
// in.Behavior sets the candidate order of every id's group.
func (r *DefaultResolver) combinatorialFallback(arena *conflict.Arena, in Input) ([]model.Identity, error) {
	var available []combinatorial.SourceDependencyInfo
	seen := map[string]bool{}
	var required []model.Name

	graph.BFS(arena, arena.Root(), struct{}{}, func(id graph.NodeID, _ struct{}) struct{} {
		node := arena.Node(id)
		if node.Detached || node.Item == nil {
			return struct{}{}
		}
		key := node.Item.Key.Name.Normalized()
		if !seen[key] {
			seen[key] = true
			required = append(required, node.Item.Key.Name)
		}
		available = append(available, combinatorial.SourceDependencyInfo{
			ID:           node.Item.Key.Name,
			Version:      node.Item.Key.Version,
			Listed:       true,
			Dependencies: node.Item.Dependencies,
		})
		return struct{}{}
	})

	return combinatorial.Resolve(combinatorial.Context{
		AvailablePackages: available,
		RequiredIDs:       required,
		TargetIDs:         []model.Name{in.Target.Name},
		Behavior:          in.Behavior,
	})
}

func flattenAccepted(arena *conflict.Arena) []model.Identity {
	var accepted []model.Identity
	graph.BFS(arena, arena.Root(), struct{}{}, func(id graph.NodeID, _ struct{}) struct{} {
		node := arena.Node(id)
		if node.Detached || node.Item == nil {
			return struct{}{}
		}
		if id == arena.Root() || node.Disposition == graph.Accepted {
			accepted = append(accepted, node.Item.Key)
		}
		return struct{}{}
	})

	sort.Slice(accepted, func(i, j int) bool {
		if accepted[i].Name.Normalized() != accepted[j].Name.Normalized() {
			return accepted[i].Name.Normalized() < accepted[j].Name.Normalized()
		}
		return accepted[i].Version.String() < accepted[j].Version.String()
	})

	return dedupeIdentities(accepted)
}

func dedupeIdentities(in []model.Identity) []model.Identity {
	out := in[:0]
	var last model.Identity
	haveLast := false
	for _, id := range in {
		if haveLast && id.Equal(last) {
			continue
		}
		out = append(out, id)
		last, haveLast = id, true
	}
	return out
}

func causeMessages(report diagnostic.Report) []string {
	messages := make([]string, 0, len(report.Causes))
	for _, c := range report.Causes {
		messages = append(messages, c.Message)
	}
	return messages
}
