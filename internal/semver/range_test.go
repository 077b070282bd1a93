package semver

import "testing"

func TestRangeSatisfiesBracket(t *testing.T) {
	r := MustParseRange("[1.0.0,2.0.0)")
	if !r.Satisfies(MustParseVersion("1.0.0")) {
		t.Fatalf("expected 1.0.0 to satisfy [1.0.0,2.0.0)")
	}
	if !r.Satisfies(MustParseVersion("1.9.9")) {
		t.Fatalf("expected 1.9.9 to satisfy [1.0.0,2.0.0)")
	}
	if r.Satisfies(MustParseVersion("2.0.0")) {
		t.Fatalf("expected 2.0.0 to NOT satisfy [1.0.0,2.0.0)")
	}
}

func TestRangePinnedMinimum(t *testing.T) {
	r := MustParseRange("1.0.0")
	if !r.IsPinnedMinimum() {
		t.Fatalf("expected 1.0.0 to parse as a pinned-minimum range")
	}
	if r.PreferredVersionRule() != PreferMinVersion {
		t.Fatalf("expected pinned-minimum range to prefer the minimum version")
	}
	if !r.Satisfies(MustParseVersion("5.0.0")) {
		t.Fatalf("expected unbounded-above range to satisfy a much higher version")
	}
}

func TestRangeExactPin(t *testing.T) {
	r := MustParseRange("[1.0.0]")
	if !r.IsExactPin() {
		t.Fatalf("expected [1.0.0] to be an exact pin")
	}
	if r.Satisfies(MustParseVersion("1.0.1")) {
		t.Fatalf("expected exact pin to reject 1.0.1")
	}
}

func TestRangeAny(t *testing.T) {
	r := Any()
	if !r.Satisfies(MustParseVersion("0.0.1")) || !r.Satisfies(MustParseVersion("999.0.0")) {
		t.Fatalf("expected Any() to satisfy everything")
	}
}

func TestCombineAssociativeAndIdempotent(t *testing.T) {
	a := MustParseRange("[1.0.0,3.0.0)")
	b := MustParseRange("[2.0.0,4.0.0)")
	c := MustParseRange("[0.5.0,2.5.0)")

	left := Combine([]Range{Combine([]Range{a, b}), c})
	right := Combine([]Range{a, Combine([]Range{b, c})})
	if left.PrettyString() != right.PrettyString() {
		t.Fatalf("combine not associative: %s != %s", left.PrettyString(), right.PrettyString())
	}

	once := Combine([]Range{a})
	twice := Combine([]Range{once, once})
	if once.PrettyString() != twice.PrettyString() {
		t.Fatalf("combine not idempotent: %s != %s", once.PrettyString(), twice.PrettyString())
	}
}

func TestCombineUnboundedSideStaysUnbounded(t *testing.T) {
	bounded := MustParseRange("[1.0.0,2.0.0)")
	unbounded := MustParseRange("1.0.0") // no max
	combined := Combine([]Range{bounded, unbounded})
	if !combined.Satisfies(MustParseVersion("100.0.0")) {
		t.Fatalf("expected combine with an unbounded range to remain unbounded above")
	}
}

func TestBestMatchPrefersMinimumForPinnedRange(t *testing.T) {
	r := MustParseRange("1.0.0")
	type candidate struct {
		v Version
	}
	candidates := []candidate{
		{MustParseVersion("1.5.0")},
		{MustParseVersion("1.0.0")},
		{MustParseVersion("1.2.0")},
	}
	best, ok := BestMatch(candidates, func(c candidate) Version { return c.v }, r)
	if !ok {
		t.Fatalf("expected a match")
	}
	if !Equal(best.v, MustParseVersion("1.0.0")) {
		t.Fatalf("expected best=1.0.0, got %s", best.v)
	}
}

func TestBestMatchPrefersHighestForBoundedRange(t *testing.T) {
	r := MustParseRange("[1.0.0,2.0.0)")
	type candidate struct {
		v Version
	}
	candidates := []candidate{
		{MustParseVersion("1.0.0")},
		{MustParseVersion("1.9.0")},
	}
	best, ok := BestMatch(candidates, func(c candidate) Version { return c.v }, r)
	if !ok || !Equal(best.v, MustParseVersion("1.9.0")) {
		t.Fatalf("expected best=1.9.0, got %+v ok=%v", best, ok)
	}
}
