package puppetdep

import (
	"testing"

	"github.com/puppetdep/puppetdep/versionrange"
)

func TestRequirementsStoreSeedIsFIFO(t *testing.T) {
	a := &ModuleDeclaration{Slug: MustSlug("a-b")}
	b := &ModuleDeclaration{Slug: MustSlug("c-d")}
	s := newRequirementsStore()
	s.seed([]*ModuleDeclaration{a, b})

	if !s.hasNext() {
		t.Fatal("seeded store should have entries")
	}
	first := s.next()
	if first.TargetModule != a {
		t.Error("first dequeued requirement should target the first seeded module")
	}
	second := s.next()
	if second.TargetModule != b {
		t.Error("second dequeued requirement should target the second seeded module")
	}
	if s.hasNext() {
		t.Error("store should be empty after draining both entries")
	}
}

func TestRequirementsStoreDeleteSourceRequirements(t *testing.T) {
	source := &ModuleDeclaration{Slug: MustSlug("a-b")}
	other := &ModuleDeclaration{Slug: MustSlug("e-f")}
	s := newRequirementsStore()
	s.add(Requirement{Source: FromDependency{Source: source}, TargetModule: &ModuleDeclaration{Slug: MustSlug("c-d")}, Range: versionrange.AnyRange()})
	s.add(Requirement{Source: FromDependency{Source: other}, TargetModule: &ModuleDeclaration{Slug: MustSlug("g-h")}, Range: versionrange.AnyRange()})

	s.deleteSourceRequirements("a-b")

	if len(s.items) != 1 {
		t.Fatalf("len(items) = %d, want 1", len(s.items))
	}
	if s.items[0].sourceSlug() != "e-f" {
		t.Errorf("remaining requirement sourced from %s, want e-f", s.items[0].sourceSlug())
	}
}

func TestRequirementsStoreUpdateTargetVersion(t *testing.T) {
	slug := MustSlug("c-d")
	old := &ModuleDeclaration{Slug: slug}
	replacement := &ModuleDeclaration{Slug: slug}
	replacement.SetVersion(versionrange.MustParseVersion("2.0.0"))

	s := newRequirementsStore()
	s.add(Requirement{Source: FromManifest{}, TargetModule: old, Range: versionrange.AnyRange()})

	s.updateTargetVersion(slug, replacement)

	if s.items[0].TargetModule != replacement {
		t.Error("updateTargetVersion should rebind queued requirements to the replacement module")
	}
}
