// Package model holds the data model shared by every resolver component:
// library identities, ranges, dependencies, and the graph payload they
// produce (spec.md §3).
package model

import (
	"strings"

	"github.com/bayleafwalker/depresolve/internal/semver"
)

// Kind restricts what a LibraryRange is allowed to resolve to.
type Kind int

const (
	KindPackage Kind = iota
	KindProject
	KindReference
)

func (k Kind) String() string {
	switch k {
	case KindPackage:
		return "Package"
	case KindProject:
		return "Project"
	case KindReference:
		return "Reference"
	default:
		return "Unknown"
	}
}

// Name is a case-insensitive library/capability identifier: stored exactly
// as given (for display) but compared and hashed lowercased everywhere
// (spec.md §9, "Case-insensitive names everywhere").
type Name string

// Normalized returns the lowercased comparison form.
func (n Name) Normalized() string { return strings.ToLower(string(n)) }

// Equal reports case-insensitive equality.
func (n Name) Equal(o Name) bool { return n.Normalized() == o.Normalized() }

// Identity is a concrete, resolved (name, version, kind) triple.
//
// Two identities are equal iff all three fields match (name
// case-insensitive, version exact).
type Identity struct {
	Name    Name
	Version semver.Version
	Kind    Kind
}

func (a Identity) Equal(b Identity) bool {
	return a.Name.Equal(b.Name) && semver.Equal(a.Version, b.Version) && a.Kind == b.Kind
}

func (a Identity) String() string {
	return string(a.Name) + " " + a.Version.String()
}

// LibraryRange is a request: a name, an acceptable version range, and an
// optional kind restriction. The resolver matches it against candidate
// identities returned by providers.
type LibraryRange struct {
	Name            Name
	VersionRange    semver.Range
	KindRestriction []Kind // empty = no restriction
}

// AllowsKind reports whether k satisfies the restriction (or there is none).
func (r LibraryRange) AllowsKind(k Kind) bool {
	if len(r.KindRestriction) == 0 {
		return true
	}
	for _, allowed := range r.KindRestriction {
		if allowed == k {
			return true
		}
	}
	return false
}

func (r LibraryRange) String() string {
	return string(r.Name) + " " + r.VersionRange.PrettyString()
}

// IncludeFlags is a bitmask of which dependency surface a reference exposes
// transitively (an adaptation of the teacher's ModuleScaling-style flags,
// generalized to dependency propagation rather than scaling policy).
type IncludeFlags uint8

const (
	IncludeNone    IncludeFlags = 0
	IncludeRuntime IncludeFlags = 1 << iota
	IncludeBuild
	IncludeContentFiles

	IncludeAll = IncludeRuntime | IncludeBuild | IncludeContentFiles
)

// LibraryDependency is one edge out of a resolved library.
type LibraryDependency struct {
	Range LibraryRange

	// SuppressParent trims this dependency's own transitive exposure: when
	// true, consumers further up the tree that depend on the library owning
	// this edge do not themselves see this edge's targets.
	SuppressParent bool

	IncludeFlags IncludeFlags
}

// Match records back-references to what produced an Identity: which
// provider answered, for which library range, and what was requested.
type Match struct {
	ProviderName string
	Library      Identity
	RangeUsed    LibraryRange
}

// GraphItem is the resolved payload attached to a successful GraphNode.
type GraphItem struct {
	Key          Identity
	Data         Match
	Dependencies []LibraryDependency
}
