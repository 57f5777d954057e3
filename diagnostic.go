package puppetdep

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/puppetdep/puppetdep/forge"
)

// diagnosticNode and diagnosticEdge are a flattened, reference-id mirror
// of the live graph, safe to marshal even if the graph were to contain a
// cycle (modules referencing requirements that reference modules back).
// This purpose-built flattening replaces a generic cycle-safe encoder,
// none of which appears anywhere in the retrieval pack (SPEC_FULL.md §9).
type diagnosticNode struct {
	ID      int    `json:"id"`
	Slug    string `json:"slug"`
	Version string `json:"version,omitempty"`
}

type diagnosticEdge struct {
	From  int    `json:"from"`
	To    int    `json:"to"`
	Range string `json:"range"`
}

type diagnosticGraph struct {
	Nodes []diagnosticNode `json:"nodes"`
	Edges []diagnosticEdge `json:"edges"`
}

func flattenGraph(g *dependencyGraph) diagnosticGraph {
	ids := make(map[string]int, len(g.nodes))
	var out diagnosticGraph

	i := 0
	for slug, n := range g.nodes {
		ids[slug] = i
		version := ""
		if n.module != nil && n.module.HasVersion() {
			version = n.module.Version.String()
		}
		out.Nodes = append(out.Nodes, diagnosticNode{ID: i, Slug: slug, Version: version})
		i++
	}
	for _, e := range g.edges {
		out.Edges = append(out.Edges, diagnosticEdge{
			From:  ids[e.from],
			To:    ids[e.to],
			Range: e.require.Range.String(),
		})
	}
	return out
}

// diagnosticDump is the {forgeCache, dependencyGraph} document written to
// errorDump.js on fatal failure (§6).
type diagnosticDump struct {
	ForgeCache      forge.Snapshot  `json:"forgeCache"`
	DependencyGraph diagnosticGraph `json:"dependencyGraph"`
}

// writeErrorDump writes the diagnostic snapshot to errorDump.js in the
// current working directory.
func writeErrorDump(r *resolution) error {
	dump := diagnosticDump{
		ForgeCache:      r.cache.ErrorInformation(),
		DependencyGraph: flattenGraph(r.graph),
	}
	data, err := json.MarshalIndent(dump, "", "  ")
	if err != nil {
		return fmt.Errorf("puppetdep: encode error dump: %w", err)
	}
	return os.WriteFile("errorDump.js", data, 0o644)
}
