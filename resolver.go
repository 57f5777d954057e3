package puppetdep

import (
	"context"

	"github.com/puppetdep/puppetdep/versionrange"
)

// resolve drives the requirements store to completion against manifest,
// returning the resolved Manifest or the first fatal error. This is the
// core loop specified in SPEC_FULL.md §4.7; every step below is numbered
// to match that section.
func resolve(ctx context.Context, r *resolution, manifest *Manifest) (*Manifest, error) {
	r.store.seed(manifest.TopLevel)
	for _, m := range manifest.TopLevel {
		r.graph.addNode(m)
	}

	for r.store.hasNext() {
		req := r.store.next()
		if !req.IsValid() {
			continue
		}
		req = canonicalizeTarget(r, req)

		if err := checkDeprecation(ctx, r, req); err != nil {
			dw, ok := err.(demotedWarning)
			if !ok {
				return nil, err
			}
			// A demoted deprecation only suppresses the fatal error; the
			// module still needs a version to satisfy the output
			// invariant that every module carries one, so fall through
			// to the normal graph-insertion/version-selection path
			// instead of skipping it.
			r.warn("ignoring deprecation: "+dw.Error(), "slug", dw.slug)
		}

		insertIntoGraph(r, req)

		hadVersion := req.TargetModule.HasVersion()
		oldVersion := req.TargetModule.Version

		newVersion, err := computeNewVersion(ctx, r, req)
		if err != nil {
			if dw, ok := err.(demotedWarning); ok {
				r.warn("ignoring unresolved dependency: "+dw.Error(), "slug", dw.slug)
				continue
			}
			return nil, err
		}

		if err := applyVersion(ctx, r, req, hadVersion, oldVersion, newVersion); err != nil {
			return nil, err
		}
	}

	return buildResultManifest(r, manifest), nil
}

// canonicalizeTarget rebinds req.TargetModule to the graph's existing node
// for the same slug, if one already exists. Requirement construction
// (module.go's Dependencies) allocates a fresh *ModuleDeclaration for
// every discovered dependency, even when another requirement already
// target the same slug; without this rebind, a version mutation made
// while processing one requirement would be invisible to a sibling
// requirement holding a different pointer for the same module.
func canonicalizeTarget(r *resolution, req Requirement) Requirement {
	slug := req.TargetModule.Slug.String()
	if n := r.graph.node(slug); n != nil && n.module != nil {
		req.TargetModule = n.module
	}
	return req
}

// demotedWarning marks an error that the ignore list downgraded to a
// log line instead of a fatal return.
type demotedWarning struct {
	slug string
	err  error
}

func (d demotedWarning) Error() string { return d.err.Error() }

func checkDeprecation(ctx context.Context, r *resolution, req Requirement) error {
	target := req.TargetModule
	status, err := DeprecationOf(ctx, r.cache, target)
	if err != nil {
		return err
	}
	if status == nil {
		return nil
	}
	slug := target.Slug.String()
	derr := &ModuleDeprecatedError{Slug: target.Slug, Status: *status}
	if r.isIgnored(slug) {
		return demotedWarning{slug: slug, err: derr}
	}
	return derr
}

// insertIntoGraph implements step 2c: add the source node, add the target
// node if absent, then add the edge if no edge with that identity exists
// yet (dependencyGraph.addEdge already enforces the idempotence).
func insertIntoGraph(r *resolution, req Requirement) {
	if _, ok := req.Source.(FromDependency); ok {
		src := req.Source.(FromDependency).Source
		if src != nil {
			r.graph.addNode(src)
		}
	}
	r.graph.addNode(req.TargetModule)
	r.graph.addEdge(req)
}

// computeNewVersion implements step 2d: if the graph already validates the
// target at its current version, keep it; otherwise iterate available
// versions via the cache until one validates or the list is exhausted.
func computeNewVersion(ctx context.Context, r *resolution, req Requirement) (versionrange.Version, error) {
	target := req.TargetModule

	if target.IsRepo() {
		cloneCtx := ctx
		if r.opts.CloneTimeout > 0 {
			var cancel context.CancelFunc
			cloneCtx, cancel = context.WithTimeout(ctx, r.opts.CloneTimeout)
			defer cancel()
		}
		if err := ResolveRepoModule(cloneCtx, target); err != nil {
			return versionrange.Version{}, err
		}
		// A repo module's version comes from its own metadata.json, not
		// from backtracking against a release list; if it doesn't
		// validate there is no alternative candidate to try.
		if !r.graph.isValid(target) {
			return versionrange.Version{}, noVersionFound(r, req)
		}
		return target.Version, nil
	}

	if r.graph.isValid(target) && target.HasVersion() {
		return target.Version, nil
	}

	var bestTried versionrange.Version
	haveBestTried := false

	for {
		v, ok, err := NextAvailableVersion(ctx, r.cache, target)
		if err != nil {
			return versionrange.Version{}, &ForgeUnavailableError{Slug: target.Slug, Err: err}
		}
		if !ok {
			// Exhausted every release without validating. If this
			// target's slug is on the ignore list, noVersionFound below
			// demotes to a warning and resolution continues — leave the
			// target pinned to the highest candidate tried (the first
			// one popped, since the release list is descending) rather
			// than whatever the last, worst candidate was, so the
			// output invariant that every module carries a version
			// still holds even though this edge stays unsatisfied.
			if haveBestTried {
				target.SetVersion(bestTried)
				PushAvailableVersion(r.cache, target, bestTried)
			}
			return versionrange.Version{}, noVersionFound(r, req)
		}
		if !haveBestTried {
			bestTried = v
			haveBestTried = true
		}
		target.SetVersion(v)
		if r.graph.isValid(target) {
			PushAvailableVersion(r.cache, target, v)
			return v, nil
		}
	}
}

func noVersionFound(r *resolution, req Requirement) error {
	slug := req.TargetModule.Slug.String()
	err := &NoVersionFoundError{
		SourceSlug: req.sourceSlug(),
		TargetSlug: slug,
		Range:      req.Range.String(),
	}
	if r.isIgnored(slug) {
		return demotedWarning{slug: slug, err: err}
	}
	return err
}

// applyVersion implements step 2e. hadVersion/oldVersion capture the
// target's state before computeNewVersion ran — computeNewVersion mutates
// the target's version as a side effect of testing candidates, so by the
// time this function runs target.Version already equals newVersion and
// can no longer be compared against itself.
func applyVersion(ctx context.Context, r *resolution, req Requirement, hadVersion bool, oldVersion, newVersion versionrange.Version) error {
	target := req.TargetModule
	sameVersion := hadVersion && versionrange.Compare(oldVersion, newVersion) == 0

	if sameVersion {
		deps, err := Dependencies(ctx, r.cache, target)
		if err != nil {
			return err
		}
		for _, dep := range deps {
			if !dep.IsValid() {
				continue
			}
			// Always enqueue and record the edge (SPEC_FULL.md §9's
			// soundness fix): edge insertion is idempotent on identity,
			// so re-discovering an already-satisfied dependency costs one
			// extra dequeue, never a duplicate edge.
			r.store.add(dep)
		}
		return nil
	}

	target.SetVersion(newVersion)
	slug := target.Slug.String()
	r.store.updateTargetVersion(target.Slug, target)

	for _, out := range r.graph.outEdgesOf(slug) {
		if !r.graph.hasOtherIncomingEdge(out.to, slug) {
			r.graph.dropNode(out.to)
		}
	}
	r.store.deleteSourceRequirements(slug)

	inEdges := r.graph.inEdgesOf(slug)
	r.graph.dropNode(slug)
	for _, in := range inEdges {
		r.store.add(Requirement{
			Source:       in.require.Source,
			TargetModule: target,
			Range:        in.require.Range,
		})
	}
	return nil
}

// buildResultManifest implements step 3: partition the graph's nodes into
// top-level and dependent lists, excluding the manifest node and hidden
// slugs.
func buildResultManifest(r *resolution, input *Manifest) *Manifest {
	inputTopLevel := make(map[string]bool, len(input.TopLevel))
	for _, m := range input.TopLevel {
		inputTopLevel[m.Slug.String()] = true
	}

	out := &Manifest{
		ForgeEndpoint:      input.ForgeEndpoint,
		DependencySentinel: input.DependencySentinel,
		Preamble:           r.opts.Preamble,
	}

	for slug, n := range r.graph.nodes {
		if slug == manifestNodeID || n.module == nil {
			continue
		}
		if r.isHidden(slug) {
			continue
		}
		if inputTopLevel[slug] || hasManifestSourcedInEdge(r, slug) {
			out.TopLevel = append(out.TopLevel, n.module)
		} else {
			out.Dependents = append(out.Dependents, n.module)
		}
	}

	out.Summary = ResolutionSummary{
		TopLevelCount:  len(out.TopLevel),
		DependentCount: len(out.Dependents),
		Warnings:       r.warnings,
	}
	return out
}

func hasManifestSourcedInEdge(r *resolution, slug string) bool {
	for _, e := range r.graph.inEdgesOf(slug) {
		if _, ok := e.require.Source.(FromManifest); ok {
			return true
		}
	}
	return false
}
