package puppetdep

import (
	"log/slog"

	"github.com/puppetdep/puppetdep/forge"
)

// resolution is the per-run state a resolve call threads through every
// step: the graph, the store, the forge cache, and the resolved options.
// It replaces the process-wide cache/graph singleton the distilled spec
// describes (SPEC_FULL.md §9) — a fresh resolution is built on every call
// to Resolve/ResolveFile and never retained.
type resolution struct {
	opts     ResolutionOptions
	graph    *dependencyGraph
	store    *requirementsStore
	cache    *forge.Cache
	log      *slog.Logger
	warnings []string
}

func newResolution(opts ResolutionOptions, cache *forge.Cache) *resolution {
	return &resolution{
		opts:  opts,
		graph: newDependencyGraph(),
		store: newRequirementsStore(),
		cache: cache,
		log:   opts.Log(),
	}
}

// warn records a demoted (ignore-listed) failure both to the logger and to
// the resolution's warning list, so a caller inspecting the emitted
// Manifest's Summary can see what was silently downgraded.
func (r *resolution) warn(msg string, args ...any) {
	r.log.Warn(msg, args...)
	r.warnings = append(r.warnings, msg)
}

func (r *resolution) isHidden(slug string) bool  { return r.opts.Hide[slug] }
func (r *resolution) isIgnored(slug string) bool { return r.opts.Ignore[slug] }
