package puppetdep

import (
	"fmt"
	"regexp"
	"strings"
)

// slugPattern matches the author and name components of a module identity.
// Each is one or more ASCII letters (either case), digits, or underscores.
var slugPattern = regexp.MustCompile(`^([a-zA-Z0-9_]+)[-/]([a-zA-Z0-9_]+)$`)

// Slug identifies a module as "author-name", case-sensitive. It is the
// canonical key used across the forge cache, the dependency graph, and the
// requirements store.
type Slug struct {
	author string
	name   string
}

// NewSlug parses raw into a Slug. Both "author-name" and "author/name" are
// accepted; the canonical String form always uses "-".
func NewSlug(raw string) (Slug, error) {
	m := slugPattern.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return Slug{}, fmt.Errorf("puppetdep: invalid module slug %q", raw)
	}
	return Slug{author: m[1], name: m[2]}, nil
}

// MustSlug is NewSlug but panics on error. Intended for literals in tests
// and internal callers that already validated the input.
func MustSlug(raw string) Slug {
	s, err := NewSlug(raw)
	if err != nil {
		panic(err)
	}
	return s
}

// SlugOf builds a Slug directly from already-validated author/name parts.
func SlugOf(author, name string) Slug {
	return Slug{author: author, name: name}
}

func (s Slug) Author() string { return s.author }
func (s Slug) Name() string   { return s.name }

func (s Slug) IsZero() bool { return s.author == "" && s.name == "" }

// String returns the canonical "author-name" form.
func (s Slug) String() string {
	if s.IsZero() {
		return ""
	}
	return s.author + "-" + s.name
}
