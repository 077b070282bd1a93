package combinatorial

import (
	"strings"

	"github.com/bayleafwalker/depresolve/internal/semver"
)

// ResolverComparer orders two candidates for the same package id into the
// search's try-order (spec.md §4.F "Preference comparator"): absent vs.
// non-absent, then a soft preferred-version match for new targets, then
// dependency-behavior, then listed-before-unlisted as a final tie-break.
// Returns -1 if a should be tried before b, 1 if after, 0 on a full tie.
func ResolverComparer(behavior DependencyBehavior, preferredVersions map[string]semver.Version, targetIDs map[string]bool) func(a, b ResolverPackage) int {
	return func(a, b ResolverPackage) int {
		if a.Absent != b.Absent {
			nonAbsentWins := behavior != Ignore
			switch {
			case nonAbsentWins && a.Absent:
				return 1
			case nonAbsentWins && b.Absent:
				return -1
			case !nonAbsentWins && a.Absent:
				return -1
			default:
				return 1
			}
		}
		if a.Absent && b.Absent {
			return 0
		}

		key := a.ID.Normalized()
		if targetIDs[key] {
			if preferred, ok := preferredVersions[key]; ok {
				aMatch := semver.Equal(a.Version, preferred)
				bMatch := semver.Equal(b.Version, preferred)
				if aMatch != bMatch {
					if aMatch {
						return -1
					}
					return 1
				}
			}
		}

		if c := compareByBehavior(a.Version, b.Version, behavior); c != 0 {
			return c
		}

		if a.Listed != b.Listed {
			if a.Listed {
				return -1
			}
			return 1
		}
		return strings.Compare(key, b.ID.Normalized())
	}
}

// compareByBehavior orders a and b per dependency-behavior's preference
// rule (spec.md §4.F.3): -1 means a is tried first.
func compareByBehavior(a, b semver.Version, behavior DependencyBehavior) int {
	switch behavior {
	case Lowest:
		return semver.Compare(a, b)
	case HighestPatch:
		if a.Major() != b.Major() || a.Minor() != b.Minor() {
			return semver.Compare(a, b) // lowest differing major.minor first
		}
		return -comparePatch(a, b) // then highest patch within it
	case HighestMinor:
		if a.Major() != b.Major() {
			if a.Major() < b.Major() {
				return -1
			}
			return 1
		}
		return -semver.Compare(a, b)
	case Highest, Ignore:
		return -semver.Compare(a, b)
	default:
		return semver.Compare(a, b)
	}
}

func comparePatch(a, b semver.Version) int {
	switch {
	case a.Patch() < b.Patch():
		return -1
	case a.Patch() > b.Patch():
		return 1
	default:
		return 0
	}
}

// orderGroup sorts a package id's candidate group into search-try order.
func orderGroup(group []ResolverPackage, cmp func(a, b ResolverPackage) int) []ResolverPackage {
	ordered := append([]ResolverPackage(nil), group...)
	insertionSort(ordered, cmp)
	return ordered
}

// insertionSort is a small stable sort; the groups involved are tiny
// (one entry per available version of one package id).
func insertionSort(items []ResolverPackage, cmp func(a, b ResolverPackage) int) {
	for i := 1; i < len(items); i++ {
		for j := i; j > 0 && cmp(items[j], items[j-1]) < 0; j-- {
			items[j], items[j-1] = items[j-1], items[j]
		}
	}
}
