package combinatorial

import (
	"sort"

	"github.com/bayleafwalker/depresolve/internal/model"
)

// TopoSort orders assignment's package ids so that every dependency
// precedes its dependents, breaking ties case-insensitively alphabetically
// (spec.md §4.F "Post-processing").
func TopoSort(assignment Assignment) []model.Name {
	inDegree := map[string]int{}
	edges := map[string][]string{} // dependency -> dependents
	keys := make([]string, 0, len(assignment))

	for key := range assignment {
		keys = append(keys, key)
		if _, ok := inDegree[key]; !ok {
			inDegree[key] = 0
		}
	}
	for key, pkg := range assignment {
		for _, dep := range pkg.Dependencies {
			depKey := dep.Range.Name.Normalized()
			if _, ok := assignment[depKey]; !ok {
				continue
			}
			edges[depKey] = append(edges[depKey], key)
			inDegree[key]++
		}
	}

	var ready []string
	for _, k := range keys {
		if inDegree[k] == 0 {
			ready = append(ready, k)
		}
	}
	sort.Strings(ready)

	var out []model.Name
	for len(ready) > 0 {
		k := ready[0]
		ready = ready[1:]
		out = append(out, assignment[k].ID)

		var unlocked []string
		for _, dependent := range edges[k] {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				unlocked = append(unlocked, dependent)
			}
		}
		sort.Strings(unlocked)
		ready = append(ready, unlocked...)
		sort.Strings(ready)
	}
	return out
}

// DetectCircularDependency runs a depth-capped DFS over assignment looking
// for a dependency cycle (spec.md §4.F "Post-processing": "Detect circular
// dependencies via DFS with a 20-level depth cap, deeper is treated as
// acyclic for performance"). Returns the cycle path, root-to-repeat, if one
// is found within maxDepth levels.
func DetectCircularDependency(assignment Assignment, maxDepth int) ([]model.Name, bool) {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := map[string]int{}
	var path []model.Name

	var visit func(key string, depth int) ([]model.Name, bool)
	visit = func(key string, depth int) ([]model.Name, bool) {
		if depth > maxDepth {
			return nil, false
		}
		pkg, ok := assignment[key]
		if !ok {
			return nil, false
		}
		color[key] = gray
		path = append(path, pkg.ID)
		for _, dep := range pkg.Dependencies {
			depKey := dep.Range.Name.Normalized()
			if _, ok := assignment[depKey]; !ok {
				continue
			}
			switch color[depKey] {
			case gray:
				cycle := append([]model.Name(nil), path...)
				cycle = append(cycle, assignment[depKey].ID)
				return cycle, true
			case white:
				if cycle, found := visit(depKey, depth+1); found {
					return cycle, true
				}
			}
		}
		path = path[:len(path)-1]
		color[key] = black
		return nil, false
	}

	keys := make([]string, 0, len(assignment))
	for k := range assignment {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if color[k] == white {
			if cycle, found := visit(k, 0); found {
				return cycle, true
			}
		}
	}
	return nil, false
}
