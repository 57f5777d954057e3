package versionrange

import "testing"

func TestParseVersionAndString(t *testing.T) {
	v, err := ParseVersion("1.2.3")
	if err != nil {
		t.Fatalf("ParseVersion: unexpected error: %v", err)
	}
	if got, want := v.String(), "1.2.3"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestParseVersionInvalid(t *testing.T) {
	if _, err := ParseVersion("not-a-version"); err == nil {
		t.Error("expected an error parsing an invalid version")
	}
}

func TestSatisfies(t *testing.T) {
	v := MustParseVersion("1.5.0")
	cases := []struct {
		rng  string
		want bool
	}{
		{">=1.0.0 <2.0.0", true},
		{">=2.0.0", false},
		{"=1.5.0", true},
		{"*", true},
	}
	for _, tc := range cases {
		r := MustParseRange(tc.rng)
		if got := Satisfies(v, r); got != tc.want {
			t.Errorf("Satisfies(%s, %q) = %v, want %v", v, tc.rng, got, tc.want)
		}
	}
}

// TestSatisfiesCommaIsUnionNotIntersection pins down the manifest grammar's
// inversion of Masterminds/semver/v3's own operators: a comma joins
// alternatives (OR), not requirements that must all hold (AND). Two
// disjoint exact-version clauses give different answers under the two
// readings, so this fails if ParseRange ever forwards the raw string
// straight to the library instead of translating it first.
func TestSatisfiesCommaIsUnionNotIntersection(t *testing.T) {
	r := MustParseRange("=1.0.0, =2.0.0")

	if !Satisfies(MustParseVersion("1.0.0"), r) {
		t.Error("1.0.0 should satisfy \"=1.0.0, =2.0.0\" under comma-as-union")
	}
	if !Satisfies(MustParseVersion("2.0.0"), r) {
		t.Error("2.0.0 should satisfy \"=1.0.0, =2.0.0\" under comma-as-union")
	}
	if Satisfies(MustParseVersion("1.5.0"), r) {
		t.Error("1.5.0 satisfies neither clause and should not satisfy the union")
	}
}

// TestSatisfiesSpaceIsIntersectionNotUnion is the AND-side counterpart:
// space-separated clauses must all hold.
func TestSatisfiesSpaceIsIntersectionNotUnion(t *testing.T) {
	r := MustParseRange(">=1.0.0 <2.0.0")

	if Satisfies(MustParseVersion("0.5.0"), r) {
		t.Error("0.5.0 fails the lower bound and should not satisfy the intersection")
	}
	if Satisfies(MustParseVersion("2.5.0"), r) {
		t.Error("2.5.0 fails the upper bound and should not satisfy the intersection")
	}
	if !Satisfies(MustParseVersion("1.5.0"), r) {
		t.Error("1.5.0 satisfies both clauses and should satisfy the intersection")
	}
}

func TestParseRangeEmptyMeansAny(t *testing.T) {
	r, err := ParseRange("")
	if err != nil {
		t.Fatalf("ParseRange(\"\"): unexpected error: %v", err)
	}
	if !Satisfies(MustParseVersion("0.0.1"), r) {
		t.Error("an empty range should be satisfied by any version")
	}
}

func TestCompare(t *testing.T) {
	a := MustParseVersion("1.0.0")
	b := MustParseVersion("2.0.0")
	if Compare(a, b) >= 0 {
		t.Error("Compare(1.0.0, 2.0.0) should be negative")
	}
	if Compare(b, a) <= 0 {
		t.Error("Compare(2.0.0, 1.0.0) should be positive")
	}
	if Compare(a, a) != 0 {
		t.Error("Compare(a, a) should be zero")
	}
}

func TestSortDescending(t *testing.T) {
	versions := []Version{
		MustParseVersion("1.0.0"),
		MustParseVersion("3.0.0"),
		MustParseVersion("2.0.0"),
	}
	SortDescending(versions)
	want := []string{"3.0.0", "2.0.0", "1.0.0"}
	for i, v := range versions {
		if v.String() != want[i] {
			t.Errorf("SortDescending()[%d] = %s, want %s", i, v, want[i])
		}
	}
}

func TestMaxSatisfying(t *testing.T) {
	candidates := []Version{
		MustParseVersion("1.0.0"),
		MustParseVersion("1.5.0"),
		MustParseVersion("2.0.0"),
	}
	best, ok := MaxSatisfying(MustParseRange("<2.0.0"), candidates)
	if !ok {
		t.Fatal("expected a satisfying candidate")
	}
	if got, want := best.String(), "1.5.0"; got != want {
		t.Errorf("MaxSatisfying = %q, want %q", got, want)
	}

	if _, ok := MaxSatisfying(MustParseRange(">=5.0.0"), candidates); ok {
		t.Error("MaxSatisfying should report false when no candidate satisfies the range")
	}
}
