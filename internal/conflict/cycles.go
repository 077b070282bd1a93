// Package conflict implements the graph operations component (spec.md
// §4.E): detaching cycle and downgrade nodes, then running the three-pass
// nearest-wins fixpoint over what remains.
package conflict

import (
	"github.com/bayleafwalker/depresolve/internal/graph"
	"github.com/bayleafwalker/depresolve/internal/model"
	"github.com/bayleafwalker/depresolve/internal/semver"
)

// Arena is the tree produced by internal/walker.
type Arena = graph.Arena[model.LibraryRange, model.GraphItem]

// NodeID indexes into an Arena.
type NodeID = graph.NodeID

// Downgrade records a detached node and the shallower, lower-minimum
// sibling-of-ancestor that caused its detachment.
type Downgrade struct {
	Node       NodeID
	Path       []NodeID
	CausedByID NodeID
}

// CheckCycleAndNearestWins is component E.1: it walks the whole tree,
// collects and detaches every Cycle-disposition node, then confirms and
// detaches every genuine downgrade by walking each node's ancestor chain
// and checking, at every level, that ancestor's siblings for a same-name
// node with a strictly lower minimum version (spec.md §4.E.1, §8 scenario
// 4). A node survives this pass only by having every sibling-of-ancestor
// check come up empty.
func CheckCycleAndNearestWins(arena *Arena) (cycles []NodeID, downgrades []Downgrade) {
	var all []NodeID
	graph.BFS(arena, arena.Root(), struct{}{}, func(id NodeID, _ struct{}) struct{} {
		all = append(all, id)
		return struct{}{}
	})

	for _, id := range all {
		if id == arena.Root() {
			continue
		}
		node := arena.Node(id)
		if node.Detached {
			continue
		}
		if node.Disposition == graph.Cycle {
			cycles = append(cycles, id)
			arena.Detach(id)
			continue
		}
		if causedBy, ok := confirmDowngrade(arena, id); ok {
			node.Disposition = graph.PotentiallyDowngraded
			downgrades = append(downgrades, Downgrade{Node: id, Path: arena.Path(id), CausedByID: causedBy})
			arena.Detach(id)
		}
	}
	return cycles, downgrades
}

// confirmDowngrade implements spec.md §4.E.1's "compared against siblings
// of every ancestor" rule: for every ancestor of id, look at that
// ancestor's own siblings (same parent, excluding the ancestor itself) for
// a node with the same library name and a strictly lower minimum version
// than id's own. The first such sibling found is the cause.
func confirmDowngrade(arena *Arena, id NodeID) (NodeID, bool) {
	myMin, ok := arena.Node(id).Key.VersionRange.MinVersion()
	if !ok {
		return graph.NoNode, false
	}
	myName := arena.Node(id).Key.Name

	path := arena.Path(id)
	for i := 0; i < len(path)-1; i++ {
		anc := path[i]
		ancParent := arena.Node(anc).Parent
		if ancParent == graph.NoNode {
			continue
		}
		for _, sib := range arena.Node(ancParent).Children {
			if sib == anc {
				continue
			}
			sibNode := arena.Node(sib)
			if sibNode.Detached || !sibNode.Key.Name.Equal(myName) {
				continue
			}
			sibMin, ok := sibNode.Key.VersionRange.MinVersion()
			if !ok {
				continue
			}
			if semver.Compare(sibMin, myMin) < 0 {
				return sib, true
			}
		}
	}
	return graph.NoNode, false
}
