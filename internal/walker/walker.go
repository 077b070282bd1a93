// Package walker implements the Remote Dependency Walker (spec.md §4.D):
// it builds the resolution tree breadth-first, racing every provider in
// the chain for each library range, deduplicating concurrent identical
// lookups, and marking cycles and potential downgrades as it goes.
package walker

import (
	"context"
	"time"

	"github.com/go-logr/logr"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/bayleafwalker/depresolve/internal/graph"
	"github.com/bayleafwalker/depresolve/internal/model"
	"github.com/bayleafwalker/depresolve/internal/providers"
	"github.com/bayleafwalker/depresolve/internal/semver"
	"github.com/bayleafwalker/depresolve/pkg/frameworks"
	"github.com/bayleafwalker/depresolve/pkg/runtimegraph"
)

// Arena is the resolution tree this package builds: nodes are keyed by the
// LibraryRange that was requested and, once resolved, carry a GraphItem.
type Arena = graph.Arena[model.LibraryRange, model.GraphItem]

// NodeID indexes into an Arena.
type NodeID = graph.NodeID

// Options configures a walk.
type Options struct {
	Framework frameworks.Framework
	Logger    logr.Logger

	// MaxRetries is how many times a transient provider error is retried
	// before the provider is treated as "no answer" for that lookup.
	// Defaults to 1 (spec.md §4.D.3, "retry once").
	MaxRetries int

	// RuntimeGraph and RuntimeID, when both set, augment each resolved
	// node's dependencies with the RID-specific dependency set the
	// package declares for RuntimeID (spec.md §6.3, "the walker consults
	// this to augment dependencies per-runtime").
	RuntimeGraph runtimegraph.Graph
	RuntimeID    string
}

func (o Options) maxRetries() int {
	if o.MaxRetries > 0 {
		return o.MaxRetries
	}
	return 1
}

// Walk builds the resolution tree rooted at target, level by level. Every
// node at a level is resolved concurrently (each resolution itself races
// every provider in chain); children are only enqueued for nodes that
// resolved and are not disposed as Cycle.
func Walk(ctx context.Context, target model.LibraryRange, chain providers.Chain, opts Options) *Arena {
	start := time.Now()
	defer func() { walkDuration.Observe(time.Since(start).Seconds()) }()

	logger := opts.Logger
	arena := graph.NewArena[model.LibraryRange, model.GraphItem](target)
	cache := newLookupCache()

	level := []NodeID{arena.Root()}
	for len(level) > 0 {
		resolveLevel(ctx, arena, level, chain, opts, cache, logger)

		var next []NodeID
		for _, id := range level {
			node := arena.Node(id)
			if node.Item == nil || node.Disposition == graph.Cycle {
				continue
			}
			for _, dep := range node.Item.Dependencies {
				child := arena.NewChild(id, dep.Range)
				nodesWalkedTotal.Inc()
				if markCycle(arena, child) {
					cyclesDetectedTotal.Inc()
					continue // do not recurse into a cycle
				}
				markPotentialDowngrade(arena, child)
				next = append(next, child)
			}
		}
		level = next
	}
	return arena
}

func resolveLevel(ctx context.Context, arena *Arena, level []NodeID, chain providers.Chain, opts Options, cache *lookupCache, logger logr.Logger) {
	g, gctx := errgroup.WithContext(ctx)
	for _, id := range level {
		id := id
		g.Go(func() error {
			resolveNode(gctx, arena, id, chain, opts, cache, logger)
			return nil
		})
	}
	_ = g.Wait() // resolveNode never returns an error; a miss just leaves the node unresolved
}

func resolveNode(ctx context.Context, arena *Arena, id NodeID, chain providers.Chain, opts Options, cache *lookupCache, logger logr.Logger) {
	node := arena.Node(id)
	requested := node.Key

	identity, provider, found := cache.findLibrary(ctx, chain, requested, opts, logger)
	if !found {
		return // left unresolved: Item stays nil, disposition stays as the walk marked it
	}

	deps, err := provider.GetDependencies(ctx, identity, opts.Framework)
	if err != nil {
		logger.Error(err, "get-dependencies failed", "library", identity.String(), "provider", provider.Name())
		deps = nil
	}
	if opts.RuntimeGraph != nil && opts.RuntimeID != "" {
		if runtimeDeps := opts.RuntimeGraph.FindRuntimeDependencies(opts.RuntimeID, string(identity.Name)); len(runtimeDeps) > 0 {
			deps = append(deps, runtimeDeps...)
		}
	}

	node.Item = &model.GraphItem{
		Key:          identity,
		Data:         model.Match{ProviderName: provider.Name(), Library: identity, RangeUsed: requested},
		Dependencies: deps,
	}
	if node.Disposition == graph.Acceptable {
		node.Disposition = graph.Accepted
	}
}

// markCycle sets Disposition=Cycle on id if an ancestor requests the same
// library name (spec.md §4.D.4). Returns whether it did.
func markCycle(arena *Arena, id NodeID) bool {
	name := arena.Node(id).Key.Name
	for cur := arena.Node(id).Parent; cur != graph.NoNode; cur = arena.Node(cur).Parent {
		if arena.Node(cur).Key.Name.Equal(name) {
			arena.Node(id).Disposition = graph.Cycle
			return true
		}
	}
	return false
}

// markPotentialDowngrade flags id as PotentiallyDowngraded when an already
// strictly-shallower node with the same name has a strictly lower minimum
// version (spec.md §4.D.5). This is a cheap, walk-time approximation; the
// graph operations pass (internal/conflict) re-derives and confirms
// downgrades authoritatively against the full tree before detaching.
func markPotentialDowngrade(arena *Arena, id NodeID) {
	node := arena.Node(id)
	myMin, ok := node.Key.VersionRange.MinVersion()
	if !ok {
		return
	}
	myName := node.Key.Name
	myDepth := arena.Depth(id)

	for other := NodeID(0); int(other) < arena.Len(); other++ {
		if other == id {
			continue
		}
		o := arena.Node(other)
		if o.Detached || !o.Key.Name.Equal(myName) {
			continue
		}
		if arena.Depth(other) >= myDepth {
			continue
		}
		otherMin, ok := o.Key.VersionRange.MinVersion()
		if !ok {
			continue
		}
		if semver.Compare(otherMin, myMin) < 0 {
			node.Disposition = graph.PotentiallyDowngraded
			return
		}
	}
}

// lookupCache deduplicates concurrent find-library calls for identical
// (name, canonical range, framework) keys, so at most one lookup per key is
// ever in flight (spec.md §4.D.1).
type lookupCache struct {
	group singleflight.Group
}

func newLookupCache() *lookupCache { return &lookupCache{} }

type lookupResult struct {
	identity model.Identity
	provider providers.Provider
	found    bool
}

func (c *lookupCache) findLibrary(ctx context.Context, chain providers.Chain, r model.LibraryRange, opts Options, logger logr.Logger) (model.Identity, providers.Provider, bool) {
	key := string(r.Name.Normalized()) + "|" + r.VersionRange.PrettyString() + "|" + opts.Framework.String()

	v, _, shared := c.group.Do(key, func() (interface{}, error) {
		id, p, found := raceFindLibrary(ctx, chain, r, opts, logger)
		return lookupResult{identity: id, provider: p, found: found}, nil
	})
	if shared {
		lookupDedupedTotal.Inc()
	}
	res := v.(lookupResult)
	return res.identity, res.provider, res.found
}

type raceResult struct {
	index    int
	provider providers.Provider
	identity model.Identity
	found    bool
	err      error
}

// raceFindLibrary queries every provider in chain concurrently. The first
// exact match cancels the rest immediately. Otherwise, once every provider
// has answered, the best non-exact match is chosen per the range's
// preferred-version rule, breaking ties by provider order.
func raceFindLibrary(ctx context.Context, chain providers.Chain, r model.LibraryRange, opts Options, logger logr.Logger) (model.Identity, providers.Provider, bool) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make(chan raceResult, len(chain))
	g, gctx := errgroup.WithContext(ctx)
	for i, p := range chain {
		i, p := i, p
		g.Go(func() error {
			id, found, err := findLibraryWithRetry(gctx, p, r, opts, logger)
			select {
			case results <- raceResult{index: i, provider: p, identity: id, found: found, err: err}:
			case <-gctx.Done():
			}
			return nil // a provider miss or transient error never aborts the race for the others
		})
	}
	go func() {
		_ = g.Wait()
		close(results)
	}()

	var best raceResult
	haveBest := false
	for res := range results {
		outcome := "miss"
		if res.err != nil {
			outcome = "error"
		} else if res.found {
			outcome = "hit"
		}
		lookupTotal.WithLabelValues(res.provider.Name(), outcome).Inc()

		if res.err != nil || !res.found {
			continue
		}
		if isExactMatch(res.identity, r) {
			cancel()
			return res.identity, res.provider, true
		}
		if !haveBest || preferCandidate(res, best, r) {
			best, haveBest = res, true
		}
	}
	if !haveBest {
		return model.Identity{}, nil, false
	}
	return best.identity, best.provider, true
}

// preferCandidate reports whether candidate should replace current as the
// best non-exact match: higher preference under r's rule wins; ties keep
// the earlier provider (by chain index).
func preferCandidate(candidate, current raceResult, r model.LibraryRange) bool {
	cmp := semver.Compare(candidate.identity.Version, current.identity.Version)
	switch r.VersionRange.PreferredVersionRule() {
	case semver.PreferMinVersion:
		if cmp < 0 {
			return true
		}
	default:
		if cmp > 0 {
			return true
		}
	}
	if cmp == 0 {
		return candidate.index < current.index
	}
	return false
}

func isExactMatch(id model.Identity, r model.LibraryRange) bool {
	if r.VersionRange.IsExactPin() || r.VersionRange.IsPinnedMinimum() {
		pin, ok := r.VersionRange.MinVersion()
		return ok && semver.Equal(id.Version, pin)
	}
	return false
}

func findLibraryWithRetry(ctx context.Context, p providers.Provider, r model.LibraryRange, opts Options, logger logr.Logger) (model.Identity, bool, error) {
	id, found, err := p.FindLibrary(ctx, r, opts.Framework)
	if err == nil {
		return id, found, nil
	}
	if ctx.Err() != nil {
		return model.Identity{}, false, err
	}
	for attempt := 1; attempt < opts.maxRetries()+1; attempt++ {
		lookupRetryTotal.Inc()
		logger.V(1).Info("retrying find-library after transient error", "provider", p.Name(), "library", r.String(), "attempt", attempt, "error", err.Error())
		id, found, err = p.FindLibrary(ctx, r, opts.Framework)
		if err == nil {
			return id, found, nil
		}
	}
	return model.Identity{}, false, err
}
