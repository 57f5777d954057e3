package puppetdep

import (
	"testing"

	"github.com/puppetdep/puppetdep/versionrange"
)

func TestDependencyGraphAddEdgeIdempotent(t *testing.T) {
	g := newDependencyGraph()
	target := &ModuleDeclaration{Slug: MustSlug("a-b")}
	req := Requirement{Source: FromManifest{}, TargetModule: target, Range: versionrange.AnyRange()}

	g.addNode(target)
	g.addEdge(req)
	g.addEdge(req)

	if got, want := len(g.outEdgesOf(manifestNodeID)), 1; got != want {
		t.Errorf("outEdgesOf(manifest) has %d edges, want %d (addEdge must be idempotent by identity)", got, want)
	}
}

func TestDependencyGraphDropNodeRemovesEdges(t *testing.T) {
	g := newDependencyGraph()
	target := &ModuleDeclaration{Slug: MustSlug("a-b")}
	g.addNode(target)
	g.addEdge(Requirement{Source: FromManifest{}, TargetModule: target, Range: versionrange.AnyRange()})

	g.dropNode("a-b")

	if g.hasNode("a-b") {
		t.Error("dropNode should remove the node")
	}
	if len(g.outEdgesOf(manifestNodeID)) != 0 {
		t.Error("dropNode should remove edges touching the dropped node")
	}
}

func TestDependencyGraphIsValid(t *testing.T) {
	g := newDependencyGraph()
	target := &ModuleDeclaration{Slug: MustSlug("a-b")}
	target.SetVersion(versionrange.MustParseVersion("1.0.0"))

	g.addNode(target)
	if !g.isValid(target) {
		t.Error("a module with no incoming edges should be trivially valid")
	}

	g.addEdge(Requirement{Source: FromManifest{}, TargetModule: target, Range: versionrange.MustParseRange(">=2.0.0")})
	if g.isValid(target) {
		t.Error("a module pinned outside its incoming range should be invalid")
	}
}

func TestDependencyGraphHasOtherIncomingEdge(t *testing.T) {
	g := newDependencyGraph()
	target := &ModuleDeclaration{Slug: MustSlug("a-b")}
	source := &ModuleDeclaration{Slug: MustSlug("c-d")}
	g.addNode(target)
	g.addNode(source)

	g.addEdge(Requirement{Source: FromManifest{}, TargetModule: target, Range: versionrange.AnyRange()})
	if g.hasOtherIncomingEdge("a-b", manifestNodeID) {
		t.Error("the only incoming edge is from manifest; excluding it should leave none")
	}

	g.addEdge(Requirement{Source: FromDependency{Source: source}, TargetModule: target, Range: versionrange.AnyRange()})
	if !g.hasOtherIncomingEdge("a-b", manifestNodeID) {
		t.Error("a second incoming edge from c-d should count as 'other' when excluding manifest")
	}
}
