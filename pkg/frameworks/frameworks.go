// Package frameworks implements the target-framework compatibility oracle
// (spec.md §4.B): given a project's framework and a set of candidate
// frameworks offered by a library, pick the nearest compatible one.
package frameworks

import "strings"

// Framework identifies a target platform: a named runtime at a version,
// with an optional profile (spec.md §4.B, "profile-preferred" matching).
type Framework struct {
	Identifier string // e.g. "go", "netstandard"
	Version    string // e.g. "1.22", "2.1"
	Profile    string // optional, e.g. "client"
}

func (f Framework) String() string {
	s := f.Identifier + f.Version
	if f.Profile != "" {
		s += "/" + f.Profile
	}
	return s
}

// Equal reports identifier/version/profile equality (case-insensitive
// identifier, exact version and profile).
func (f Framework) Equal(o Framework) bool {
	return strings.EqualFold(f.Identifier, o.Identifier) && f.Version == o.Version && f.Profile == o.Profile
}

// Oracle picks the nearest framework in candidates compatible with project.
type Oracle interface {
	GetNearest(project Framework, candidates []Framework) (Framework, bool)
}

// DefaultOracle implements the four-tier preference order from spec.md
// §4.B: exact match, then upward-compatible (same identifier, candidate
// version <= project version), then profile-preferred, then
// no-profile-preferred.
type DefaultOracle struct{}

func (DefaultOracle) GetNearest(project Framework, candidates []Framework) (Framework, bool) {
	// Tier 1: exact match.
	for _, c := range candidates {
		if c.Equal(project) {
			return c, true
		}
	}

	// Tier 2: same identifier, compatible (candidate version not newer than
	// the project's), preferring the candidate closest to the project.
	var best Framework
	haveBest := false
	for _, c := range candidates {
		if !strings.EqualFold(c.Identifier, project.Identifier) {
			continue
		}
		if compareVersions(c.Version, project.Version) > 0 {
			continue // candidate requires a newer runtime than the project targets
		}
		if !haveBest || compareVersions(c.Version, best.Version) > 0 {
			best, haveBest = c, true
		}
	}
	if haveBest {
		// Tier 3/4: among equally-near candidates, prefer one whose profile
		// matches the project's (profile-preferred), falling back to one
		// with no profile at all (no-profile-preferred).
		return preferProfile(project, candidates, best.Version), true
	}

	return Framework{}, false
}

func preferProfile(project Framework, candidates []Framework, version string) Framework {
	var withProfile, withoutProfile Framework
	haveWith, haveWithout := false, false
	for _, c := range candidates {
		if !strings.EqualFold(c.Identifier, project.Identifier) || c.Version != version {
			continue
		}
		if c.Profile != "" && c.Profile == project.Profile {
			withProfile, haveWith = c, true
		} else if c.Profile == "" {
			withoutProfile, haveWithout = c, true
		}
	}
	if haveWith {
		return withProfile
	}
	if haveWithout {
		return withoutProfile
	}
	for _, c := range candidates {
		if strings.EqualFold(c.Identifier, project.Identifier) && c.Version == version {
			return c
		}
	}
	return project
}

// compareVersions compares dotted numeric version strings component-wise.
// Non-numeric or ragged components compare as 0, erring toward compatibility.
func compareVersions(a, b string) int {
	as := strings.Split(a, ".")
	bs := strings.Split(b, ".")
	for i := 0; i < len(as) || i < len(bs); i++ {
		var av, bv int
		if i < len(as) {
			av = parseComponent(as[i])
		}
		if i < len(bs) {
			bv = parseComponent(bs[i])
		}
		if av != bv {
			if av < bv {
				return -1
			}
			return 1
		}
	}
	return 0
}

func parseComponent(s string) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return n
		}
		n = n*10 + int(r-'0')
	}
	return n
}
