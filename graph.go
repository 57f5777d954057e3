package puppetdep

import "github.com/puppetdep/puppetdep/versionrange"

// manifestNodeID is the graph node representing the manifest itself, the
// source of every top-level requirement.
const manifestNodeID = "manifest"

// graphNode is one node of the dependency graph: either the manifest, or a
// module keyed by slug.
type graphNode struct {
	slug   string
	module *ModuleDeclaration // nil for the manifest node
}

// graphEdge is one Requirement recorded in the graph, keyed by edge
// identity so at most one edge per (source, target) pair exists.
type graphEdge struct {
	id      string
	from    string
	to      string
	require Requirement
}

// dependencyGraph is the live, mutable multigraph the resolver reads and
// writes on every iteration. It is deliberately not the teacher's
// read-only post-hoc explain graph: this one supports add/drop of nodes
// and edges mid-resolution, which a report-only structure has no need for.
type dependencyGraph struct {
	nodes map[string]*graphNode
	// outEdges/inEdges index edges by node for graph traversal; edges is
	// the source of truth keyed by edge identity.
	edges    map[string]*graphEdge
	outEdges map[string][]string // node slug -> edge ids leaving it
	inEdges  map[string][]string // node slug -> edge ids entering it
}

func newDependencyGraph() *dependencyGraph {
	g := &dependencyGraph{
		nodes:    make(map[string]*graphNode),
		edges:    make(map[string]*graphEdge),
		outEdges: make(map[string][]string),
		inEdges:  make(map[string][]string),
	}
	g.nodes[manifestNodeID] = &graphNode{slug: manifestNodeID}
	return g
}

func (g *dependencyGraph) hasNode(slug string) bool {
	_, ok := g.nodes[slug]
	return ok
}

// addNode inserts a node for m if absent, keyed by its slug.
func (g *dependencyGraph) addNode(m *ModuleDeclaration) {
	slug := m.Slug.String()
	if g.hasNode(slug) {
		return
	}
	g.nodes[slug] = &graphNode{slug: slug, module: m}
}

func (g *dependencyGraph) node(slug string) *graphNode {
	return g.nodes[slug]
}

func (g *dependencyGraph) hasEdge(id string) bool {
	_, ok := g.edges[id]
	return ok
}

// addEdge inserts r as an edge, keyed by r.edgeID(), unless one with that
// identity already exists — the graph never carries two edges with the
// same (source, target) pair.
func (g *dependencyGraph) addEdge(r Requirement) {
	id := r.edgeID()
	if g.hasEdge(id) {
		return
	}
	from := r.sourceSlug()
	to := r.TargetModule.Slug.String()
	g.edges[id] = &graphEdge{id: id, from: from, to: to, require: r}
	g.outEdges[from] = append(g.outEdges[from], id)
	g.inEdges[to] = append(g.inEdges[to], id)
}

// inEdgesOf returns the requirements of every edge entering slug.
func (g *dependencyGraph) inEdgesOf(slug string) []*graphEdge {
	ids := g.inEdges[slug]
	out := make([]*graphEdge, 0, len(ids))
	for _, id := range ids {
		if e, ok := g.edges[id]; ok {
			out = append(out, e)
		}
	}
	return out
}

// outEdgesOf returns the requirements of every edge leaving slug.
func (g *dependencyGraph) outEdgesOf(slug string) []*graphEdge {
	ids := g.outEdges[slug]
	out := make([]*graphEdge, 0, len(ids))
	for _, id := range ids {
		if e, ok := g.edges[id]; ok {
			out = append(out, e)
		}
	}
	return out
}

// dropNode removes slug and every edge touching it.
func (g *dependencyGraph) dropNode(slug string) {
	for _, e := range g.outEdgesOf(slug) {
		g.dropEdge(e.id)
	}
	for _, e := range g.inEdgesOf(slug) {
		g.dropEdge(e.id)
	}
	delete(g.nodes, slug)
}

func (g *dependencyGraph) dropEdge(id string) {
	e, ok := g.edges[id]
	if !ok {
		return
	}
	delete(g.edges, id)
	g.outEdges[e.from] = removeString(g.outEdges[e.from], id)
	g.inEdges[e.to] = removeString(g.inEdges[e.to], id)
}

func removeString(ss []string, target string) []string {
	out := ss[:0]
	for _, s := range ss {
		if s != target {
			out = append(out, s)
		}
	}
	return out
}

// isValid reports whether m's current version satisfies every incoming
// edge's range. A module with no version yet is trivially valid.
func (g *dependencyGraph) isValid(m *ModuleDeclaration) bool {
	if !m.HasVersion() {
		return true
	}
	for _, e := range g.inEdgesOf(m.Slug.String()) {
		if !versionrange.Satisfies(m.Version, e.require.Range) {
			return false
		}
	}
	return true
}

// allValid reports whether every module node currently in the graph
// validates against its incoming edges.
func (g *dependencyGraph) allValid() bool {
	for slug, n := range g.nodes {
		if slug == manifestNodeID || n.module == nil {
			continue
		}
		if !g.isValid(n.module) {
			return false
		}
	}
	return true
}

func (g *dependencyGraph) clear() {
	*g = *newDependencyGraph()
}

// hasOtherIncomingEdge reports whether slug has an incoming edge whose
// source is not excludeSource.
func (g *dependencyGraph) hasOtherIncomingEdge(slug, excludeSource string) bool {
	for _, e := range g.inEdgesOf(slug) {
		if e.from != excludeSource {
			return true
		}
	}
	return false
}
