// Package semver implements the version and version-range algebra of
// component A: a four-part numeric tuple (major, minor, patch, revision)
// plus an optional prerelease tag sequence, and interval-based ranges over
// those versions.
//
// Version is a thin wrapper around github.com/Masterminds/semver/v3 for
// parsing and major/minor/patch/prerelease comparison, extended with a
// fourth numeric Revision field that Masterminds/semver does not carry.
package semver

import (
	"fmt"
	"strconv"
	"strings"

	mm "github.com/Masterminds/semver/v3"
)

// Version is major.minor.patch.revision-prerelease.
type Version struct {
	v        *mm.Version
	revision int64
}

// Zero is the sentinel "any" version: 0.0.0.0.
var Zero = Version{v: mm.MustParse("0.0.0")}

// ParseVersion parses a version string of the form "major.minor.patch[.revision][-prerelease][+metadata]".
func ParseVersion(raw string) (Version, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Version{}, fmt.Errorf("semver: parse version %q: empty string", raw)
	}

	base, revision, err := splitRevision(trimmed)
	if err != nil {
		return Version{}, fmt.Errorf("semver: parse version %q: %w", raw, err)
	}

	v, err := mm.NewVersion(base)
	if err != nil {
		return Version{}, fmt.Errorf("semver: parse version %q: %w", raw, err)
	}
	return Version{v: v, revision: revision}, nil
}

// MustParseVersion panics on parse error; used in tests and constant tables.
func MustParseVersion(raw string) Version {
	v, err := ParseVersion(raw)
	if err != nil {
		panic(err)
	}
	return v
}

// splitRevision extracts a fourth numeric segment ("1.2.3.4") that
// Masterminds/semver treats as invalid, returning the 3-part base and the
// revision (0 if absent). Prerelease/metadata suffixes are left attached to
// base so Masterminds can parse them normally.
func splitRevision(raw string) (base string, revision int64, err error) {
	core := raw
	suffix := ""
	if i := strings.IndexAny(raw, "-+"); i >= 0 {
		core = raw[:i]
		suffix = raw[i:]
	}

	parts := strings.Split(core, ".")
	if len(parts) != 4 {
		return raw, 0, nil
	}

	revision, err = strconv.ParseInt(parts[3], 10, 64)
	if err != nil {
		return "", 0, fmt.Errorf("invalid revision segment %q: %w", parts[3], err)
	}
	return strings.Join(parts[:3], ".") + suffix, revision, nil
}

// IsZero reports whether v is the sentinel "any" version.
func (v Version) IsZero() bool {
	return v.v == nil || (v.Major() == 0 && v.Minor() == 0 && v.Patch() == 0 && v.revision == 0 && !v.IsPrerelease())
}

func (v Version) Major() int64 {
	if v.v == nil {
		return 0
	}
	return int64(v.v.Major())
}

func (v Version) Minor() int64 {
	if v.v == nil {
		return 0
	}
	return int64(v.v.Minor())
}

func (v Version) Patch() int64 {
	if v.v == nil {
		return 0
	}
	return int64(v.v.Patch())
}

func (v Version) Revision() int64 {
	return v.revision
}

func (v Version) Prerelease() string {
	if v.v == nil {
		return ""
	}
	return v.v.Prerelease()
}

func (v Version) IsPrerelease() bool {
	return v.Prerelease() != ""
}

// String renders all four numeric parts, major.minor.patch.revision, writing
// a zero revision out ("1.2.3" renders as "1.2.3.0"), followed by any
// prerelease tag and build metadata.
func (v Version) String() string {
	if v.v == nil {
		return "0.0.0.0"
	}
	core := fmt.Sprintf("%d.%d.%d.%d", v.Major(), v.Minor(), v.Patch(), v.revision)
	if p := v.Prerelease(); p != "" {
		core += "-" + p
	}
	if m := v.v.Metadata(); m != "" {
		core += "+" + m
	}
	return core
}

// Compare orders a relative to b: -1, 0, or 1.
//
// Ordering is major, minor, patch, revision, then prerelease (a version
// without a prerelease tag is greater than one with, per semver rule 11;
// equal-tagged prereleases compare lexically via Masterminds).
func Compare(a, b Version) int {
	if a.v == nil && b.v == nil {
		return 0
	}
	if a.v == nil {
		return -1
	}
	if b.v == nil {
		return 1
	}

	if c := cmpInt64(a.Major(), b.Major()); c != 0 {
		return c
	}
	if c := cmpInt64(a.Minor(), b.Minor()); c != 0 {
		return c
	}
	if c := cmpInt64(a.Patch(), b.Patch()); c != 0 {
		return c
	}
	if c := cmpInt64(a.revision, b.revision); c != 0 {
		return c
	}

	// Masterminds/semver already implements rule 11 (no-prerelease > prerelease,
	// lexical/numeric comparison of dot-separated identifiers otherwise) when
	// major/minor/patch are equal, so delegate to it for the prerelease tail.
	return comparePrerelease(a, b)
}

func comparePrerelease(a, b Version) int {
	base := func(v Version) *mm.Version {
		// Compare on a copy with matching major/minor/patch so only the
		// prerelease tail influences the Masterminds comparison.
		c, _ := mm.NewVersion(fmt.Sprintf("%d.%d.%d", v.Major(), v.Minor(), v.Patch()))
		if v.Prerelease() != "" {
			withPre, _ := c.SetPrerelease(v.Prerelease())
			c = &withPre
		}
		return c
	}
	return base(a).Compare(base(b))
}

func cmpInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Equal reports whether a and b compare equal.
func Equal(a, b Version) bool { return Compare(a, b) == 0 }

// LessThan reports whether a < b.
func LessThan(a, b Version) bool { return Compare(a, b) < 0 }
