// Package versionrange wraps github.com/Masterminds/semver/v3 behind the
// two value types the resolver actually needs: a concrete Version and a
// constraint Range. Keeping the wrapper thin means a future change of
// semver library touches one file.
package versionrange

import (
	"fmt"
	"sort"
	"strings"

	mm "github.com/Masterminds/semver/v3"
)

// Version is a parsed semantic version.
type Version struct {
	v *mm.Version
}

// Range is a semantic version constraint using the manifest grammar's own
// convention: space-separated clauses intersect (AND) and comma-separated
// clauses union (OR), e.g. ">=1.2.0 <2.0.0" means "1.2.0 up to 2.0.0" and
// "1.2.3, 2.0.0" means "exactly 1.2.3 or exactly 2.0.0". This is the
// opposite of Masterminds/semver/v3's own native grammar (comma
// intersects, "||" unions) — ParseRange translates between the two.
type Range struct {
	c *mm.Constraints
}

// ParseVersion parses raw as a strict semantic version.
func ParseVersion(raw string) (Version, error) {
	v, err := mm.NewVersion(raw)
	if err != nil {
		return Version{}, fmt.Errorf("versionrange: parse version %q: %w", raw, err)
	}
	return Version{v: v}, nil
}

// MustParseVersion is ParseVersion but panics on error.
func MustParseVersion(raw string) Version {
	v, err := ParseVersion(raw)
	if err != nil {
		panic(err)
	}
	return v
}

// IsZero reports whether v holds no parsed version.
func (v Version) IsZero() bool { return v.v == nil }

// String renders v in normalized MAJOR.MINOR.PATCH form (e.g. "1.2" and
// "v1.2.0" both render as "1.2.0").
func (v Version) String() string {
	if v.v == nil {
		return ""
	}
	return v.v.String()
}

// ParseRange parses raw as a version range. An empty string means "any
// version", matching the manifest grammar's convention that a missing
// version_requirement imposes no constraint.
func ParseRange(raw string) (Range, error) {
	if raw == "" {
		raw = "*"
	}
	c, err := mm.NewConstraint(toNativeGrammar(raw))
	if err != nil {
		return Range{}, fmt.Errorf("versionrange: parse range %q: %w", raw, err)
	}
	return Range{c: c}, nil
}

// toNativeGrammar rewrites a manifest-grammar range (space intersects,
// comma unions) into Masterminds/semver/v3's own grammar (comma
// intersects, "||" unions): each comma-separated group becomes one
// "||"-joined alternative, and within a group, space-separated clauses are
// re-joined with commas so the library reads them as an intersection.
func toNativeGrammar(raw string) string {
	orGroups := strings.Split(raw, ",")
	for i, group := range orGroups {
		clauses := strings.Fields(group)
		orGroups[i] = strings.Join(clauses, ", ")
	}
	return strings.Join(orGroups, " || ")
}

// MustParseRange is ParseRange but panics on error.
func MustParseRange(raw string) Range {
	r, err := ParseRange(raw)
	if err != nil {
		panic(err)
	}
	return r
}

// AnyRange is the range satisfied by every version.
func AnyRange() Range {
	return MustParseRange("*")
}

// String renders r in Masterminds/semver/v3's grammar after translation:
// a single-clause range reads as written, while comma unions render joined
// by " || ".
func (r Range) String() string {
	if r.c == nil {
		return "*"
	}
	return r.c.String()
}

// Satisfies reports whether v satisfies r. A zero Version never satisfies
// anything but a zero Range is treated as "any".
func Satisfies(v Version, r Range) bool {
	if v.v == nil {
		return false
	}
	if r.c == nil {
		return true
	}
	return r.c.Check(v.v)
}

// Compare returns -1, 0, or 1 as a is less than, equal to, or greater than b.
func Compare(a, b Version) int {
	switch {
	case a.v == nil && b.v == nil:
		return 0
	case a.v == nil:
		return -1
	case b.v == nil:
		return 1
	default:
		return a.v.Compare(b.v)
	}
}

// SortDescending sorts versions from highest to lowest in place.
func SortDescending(versions []Version) {
	sort.Slice(versions, func(i, j int) bool {
		return Compare(versions[i], versions[j]) > 0
	})
}

// MaxSatisfying returns the highest version among candidates that satisfies
// r. Candidates need not be sorted.
func MaxSatisfying(r Range, candidates []Version) (Version, bool) {
	var best Version
	found := false
	for _, c := range candidates {
		if !Satisfies(c, r) {
			continue
		}
		if !found || Compare(c, best) > 0 {
			best = c
			found = true
		}
	}
	return best, found
}
