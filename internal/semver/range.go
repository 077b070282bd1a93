package semver

import (
	"fmt"
	"strings"
)

// FloatBehavior controls whether a range accepts prerelease versions that
// would otherwise be excluded by semver rule 11 (a prerelease only satisfies
// a range whose bounds themselves carry a prerelease tag).
type FloatBehavior int

const (
	// FloatNone applies the strict semver prerelease rule.
	FloatNone FloatBehavior = iota
	// FloatPrerelease additionally accepts prerelease versions at or above
	// the range's minimum, even when the minimum itself has no prerelease tag.
	FloatPrerelease
)

// PreferredVersionRule says which end of the satisfying set best-match
// should prefer, per spec.md §4.A.
type PreferredVersionRule int

const (
	// PreferMinVersion: prefer the smallest satisfying version. Used for
	// ranges with an explicit inclusive minimum and no upper bound, e.g. "[1.0.0,)".
	PreferMinVersion PreferredVersionRule = iota
	// PreferHighestFloor: prefer the largest satisfying version. Used for
	// every other range shape (pinned, bounded, unbounded "*").
	PreferHighestFloor
)

// Range is an interval over Version with inclusive/exclusive endpoints.
type Range struct {
	hasMin       bool
	minVersion   Version
	minInclusive bool

	hasMax       bool
	maxVersion   Version
	maxInclusive bool

	float    FloatBehavior
	original string
}

// Any matches every version.
func Any() Range { return Range{original: "*"} }

// ParseRange parses a NuGet-style version range:
//
//	""            -> Any()
//	"*"           -> Any()
//	"1.2.3"       -> minimum-inclusive, unbounded above (a "pinned" hint; see IsPinnedMinimum)
//	"[1.2.3]"     -> exactly 1.2.3
//	"[1.0.0,2.0.0)"  -> inclusive min, exclusive max
//	"(1.0.0,2.0.0]"  -> exclusive min, inclusive max
//	"[1.0.0,)"    -> inclusive min, unbounded above
//	"(,2.0.0]"    -> unbounded below, inclusive max
func ParseRange(raw string) (Range, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || trimmed == "*" {
		return Range{original: trimmed}, nil
	}

	if trimmed[0] == '[' || trimmed[0] == '(' {
		return parseBracketRange(trimmed)
	}

	v, err := ParseVersion(trimmed)
	if err != nil {
		return Range{}, fmt.Errorf("semver: parse range %q: %w", raw, err)
	}
	return Range{
		hasMin:       true,
		minVersion:   v,
		minInclusive: true,
		original:     trimmed,
	}, nil
}

// MustParseRange panics on parse error.
func MustParseRange(raw string) Range {
	r, err := ParseRange(raw)
	if err != nil {
		panic(err)
	}
	return r
}

func parseBracketRange(raw string) (Range, error) {
	if len(raw) < 2 {
		return Range{}, fmt.Errorf("semver: parse range %q: too short", raw)
	}
	minInclusive := raw[0] == '['
	maxInclusive := raw[len(raw)-1] == ']'
	if !maxInclusive && raw[len(raw)-1] != ')' {
		return Range{}, fmt.Errorf("semver: parse range %q: missing closing bracket", raw)
	}

	body := raw[1 : len(raw)-1]
	if !strings.Contains(body, ",") {
		// "[1.2.3]" - exact pin.
		v, err := ParseVersion(body)
		if err != nil {
			return Range{}, fmt.Errorf("semver: parse range %q: %w", raw, err)
		}
		return Range{
			hasMin: true, minVersion: v, minInclusive: true,
			hasMax: true, maxVersion: v, maxInclusive: true,
			original: raw,
		}, nil
	}

	parts := strings.SplitN(body, ",", 2)
	low := strings.TrimSpace(parts[0])
	high := strings.TrimSpace(parts[1])

	r := Range{original: raw, minInclusive: minInclusive, maxInclusive: maxInclusive}
	if low != "" {
		v, err := ParseVersion(low)
		if err != nil {
			return Range{}, fmt.Errorf("semver: parse range %q: %w", raw, err)
		}
		r.hasMin = true
		r.minVersion = v
	}
	if high != "" {
		v, err := ParseVersion(high)
		if err != nil {
			return Range{}, fmt.Errorf("semver: parse range %q: %w", raw, err)
		}
		r.hasMax = true
		r.maxVersion = v
	}
	return r, nil
}

// WithFloat returns a copy of r with the given float behavior.
func (r Range) WithFloat(f FloatBehavior) Range {
	r.float = f
	return r
}

// Satisfies reports whether v falls within the range.
func (r Range) Satisfies(v Version) bool {
	if r.hasMin {
		cmp := Compare(v, r.minVersion)
		if r.minInclusive {
			if cmp < 0 {
				return false
			}
		} else if cmp <= 0 {
			return false
		}
	}
	if r.hasMax {
		cmp := Compare(v, r.maxVersion)
		if r.maxInclusive {
			if cmp > 0 {
				return false
			}
		} else if cmp >= 0 {
			return false
		}
	}

	if v.IsPrerelease() {
		switch r.float {
		case FloatPrerelease:
			// accepted regardless of bound prerelease tags
		default:
			// semver rule 11: a prerelease only satisfies a range whose
			// matching bound (min or max, whichever it was compared against
			// as equal major.minor.patch) itself carries a prerelease tag.
			if !r.boundSharesPrereleaseTuple(v) {
				return false
			}
		}
	}
	return true
}

func (r Range) boundSharesPrereleaseTuple(v Version) bool {
	sameTuple := func(b Version) bool {
		return b.IsPrerelease() && v.Major() == b.Major() && v.Minor() == b.Minor() && v.Patch() == b.Patch()
	}
	if r.hasMin && sameTuple(r.minVersion) {
		return true
	}
	if r.hasMax && sameTuple(r.maxVersion) {
		return true
	}
	return false
}

// MinVersion returns the range's lower bound and whether one is set.
func (r Range) MinVersion() (Version, bool) { return r.minVersion, r.hasMin }

// IsExactPin reports whether the range is an exact bracket pin ("[1.2.3]"):
// inclusive minimum and maximum at the same version. A bare version string
// ("1.2.3") is not an exact pin; IsPinnedMinimum covers that shape. Either
// way the lower bound is the "exact-match" target for the walker's racing
// rule (spec.md §4.D.2).
func (r Range) IsExactPin() bool {
	return r.hasMin && r.hasMax && Equal(r.minVersion, r.maxVersion) && r.minInclusive && r.maxInclusive
}

// IsPinnedMinimum reports whether the range has an inclusive minimum and no
// upper bound — the NuGet-style "1.2.3" shorthand. Its minimum is still an
// exact-match target per spec.md §4.D.2 ("or equals the single pinned version").
func (r Range) IsPinnedMinimum() bool {
	return r.hasMin && r.minInclusive && !r.hasMax
}

// PreferredVersionRule implements spec.md §4.A's best-match tie-break rule.
func (r Range) PreferredVersionRule() PreferredVersionRule {
	if r.IsPinnedMinimum() && !r.IsExactPin() {
		return PreferMinVersion
	}
	return PreferHighestFloor
}

// OriginalString returns the string the range was parsed from.
func (r Range) OriginalString() string { return r.original }

// PrettyString renders a normalized bracket form.
func (r Range) PrettyString() string {
	if !r.hasMin && !r.hasMax {
		return "*"
	}
	if r.IsExactPin() {
		return "[" + r.minVersion.String() + "]"
	}
	left := "("
	if r.minInclusive {
		left = "["
	}
	right := ")"
	if r.maxInclusive {
		right = "]"
	}
	minStr := ""
	if r.hasMin {
		minStr = r.minVersion.String()
	}
	maxStr := ""
	if r.hasMax {
		maxStr = r.maxVersion.String()
	}
	return left + minStr + ", " + maxStr + right
}

// Combine returns the smallest range containing the union of ranges. It is
// associative and idempotent (spec.md §4.A, §8).
//
// An unbounded side (missing min or max) stays unbounded in the result: the
// "widest-covering range" of a set that includes an unbounded range is
// itself unbounded on that side.
func Combine(ranges []Range) Range {
	if len(ranges) == 0 {
		return Any()
	}
	out := ranges[0]
	for _, r := range ranges[1:] {
		out = combine2(out, r)
	}
	return out
}

func combine2(a, b Range) Range {
	out := Range{float: maxFloat(a.float, b.float)}

	switch {
	case !a.hasMin || !b.hasMin:
		out.hasMin = false
	default:
		out.hasMin = true
		switch c := Compare(a.minVersion, b.minVersion); {
		case c < 0:
			out.minVersion, out.minInclusive = a.minVersion, a.minInclusive
		case c > 0:
			out.minVersion, out.minInclusive = b.minVersion, b.minInclusive
		default:
			out.minVersion = a.minVersion
			out.minInclusive = a.minInclusive || b.minInclusive
		}
	}

	switch {
	case !a.hasMax || !b.hasMax:
		out.hasMax = false
	default:
		out.hasMax = true
		switch c := Compare(a.maxVersion, b.maxVersion); {
		case c > 0:
			out.maxVersion, out.maxInclusive = a.maxVersion, a.maxInclusive
		case c < 0:
			out.maxVersion, out.maxInclusive = b.maxVersion, b.maxInclusive
		default:
			out.maxVersion = a.maxVersion
			out.maxInclusive = a.maxInclusive || b.maxInclusive
		}
	}

	out.original = out.PrettyString()
	return out
}

func maxFloat(a, b FloatBehavior) FloatBehavior {
	if a > b {
		return a
	}
	return b
}

// BestMatch returns the element of candidates satisfying r that is minimal
// (PreferMinVersion) or maximal (PreferHighestFloor) under r's preferred
// version rule. Ties (equal versions) resolve in iteration order of
// candidates, per spec.md §4.A.
func BestMatch[T any](candidates []T, version func(T) Version, r Range) (T, bool) {
	var best T
	found := false
	prefer := r.PreferredVersionRule()

	for _, c := range candidates {
		v := version(c)
		if !r.Satisfies(v) {
			continue
		}
		if !found {
			best, found = c, true
			continue
		}
		cmp := Compare(v, version(best))
		switch prefer {
		case PreferMinVersion:
			if cmp < 0 {
				best = c
			}
		default:
			if cmp > 0 {
				best = c
			}
		}
	}
	return best, found
}
