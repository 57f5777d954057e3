// Package puppetdep resolves transitive module dependencies for a
// Puppetfile-style manifest against a Puppet Forge-shaped registry.
//
// # Overview
//
// A manifest lists top-level modules, each pinned to an exact version or
// pointed at a version-controlled repository. Every module declares its
// own dependencies as version ranges. Resolve walks the manifest, fetches
// each module's dependency list from the forge (or, for a repository
// module, from its metadata.json), and produces a new manifest with every
// transitively required module pinned to a concrete version that
// satisfies every declared range — or fails if no such assignment exists.
//
// # Quick start
//
//	result, err := puppetdep.ResolveFile(ctx, "Puppetfile")
//	if err != nil {
//		// err may be *puppetdep.NoVersionFoundError, *puppetdep.ModuleDeprecatedError,
//		// or one of the other typed errors in errors.go.
//	}
//	puppetdep.Emit(os.Stdout, result)
//
// # Registry configuration
//
// By default modules resolve against the public Puppet Forge. Pass
// WithForgeEndpoint to point at a private or mirrored forge, or
// WithRegistryChain to name additional endpoints tried in order when the
// primary one doesn't serve a module — Resolve wires these into a
// forge.Chain automatically.
//
// # Deprecation and unresolved-dependency handling
//
// A deprecated module or an exhausted release list fails resolution by
// default. Both can be demoted to a warning for specific slugs via
// WithIgnored.
//
// # Thread safety
//
// A single Resolve/ResolveFile call is not safe for concurrent use from
// multiple goroutines against the same manifest, but distinct calls never
// share state: every call builds its own forge cache and dependency graph
// (see the resolution type in context.go) and discards them when it
// returns.
package puppetdep

import (
	"context"
	"fmt"
	"os"

	"github.com/puppetdep/puppetdep/forge"
)

// Resolve resolves manifest against a forge reachable at the configured
// endpoint (default the public Puppet Forge), returning the fully pinned
// manifest. On any fatal error, a diagnostic dump is written to
// errorDump.js in the current working directory before Resolve returns.
func Resolve(ctx context.Context, manifest *Manifest, opts ...Option) (*Manifest, error) {
	cfg, err := newResolverConfig(opts...)
	if err != nil {
		return nil, err
	}
	resolvedOpts := cfg.toResolutionOptions()

	cache := forge.NewCache(buildForgeSource(manifest, resolvedOpts))
	r := newResolution(resolvedOpts, cache)

	result, err := resolve(ctx, r, manifest)
	if err != nil {
		if dumpErr := writeErrorDump(r); dumpErr != nil {
			return nil, fmt.Errorf("%w (additionally failed to write error dump: %v)", err, dumpErr)
		}
		return nil, err
	}
	return result, nil
}

// forgeSource is the registry surface forge.Cache needs; both *forge.Client
// and *forge.Chain satisfy it, matching forge's own unexported source
// interface structurally.
type forgeSource interface {
	GetModule(ctx context.Context, author, name string) (forge.ModuleData, error)
	GetRelease(ctx context.Context, author, name, version string) (forge.ReleaseData, error)
}

// primaryForgeEndpoint resolves the endpoint queried first: the manifest's
// own "forge" declaration takes precedence, since it's explicit; only when
// the manifest carries nothing but the parser's own default does
// WithForgeEndpoint's override apply.
func primaryForgeEndpoint(manifest *Manifest, opts ResolutionOptions) string {
	if manifest.ForgeEndpoint != "" && manifest.ForgeEndpoint != defaultForgeEndpoint {
		return manifest.ForgeEndpoint
	}
	if opts.ForgeEndpoint != "" {
		return opts.ForgeEndpoint
	}
	return manifest.ForgeEndpoint
}

// buildForgeSource wires the primary forge endpoint into a bare client, or
// — when WithRegistryChain named fallback endpoints — a forge.Chain that
// tries the primary endpoint first and falls back to each mirror in order.
func buildForgeSource(manifest *Manifest, opts ResolutionOptions) forgeSource {
	primary := primaryForgeEndpoint(manifest, opts)
	if len(opts.FallbackEndpoints) == 0 {
		return forge.NewClient(primary, forgeClientOptions(opts)...)
	}
	endpoints := append([]string{primary}, opts.FallbackEndpoints...)
	return forge.NewClientChain(forgeClientOptions(opts), endpoints...)
}

func forgeClientOptions(opts ResolutionOptions) []forge.ClientOption {
	if opts.HTTPClient == nil {
		return nil
	}
	return []forge.ClientOption{forge.WithHTTPClient(opts.HTTPClient)}
}

// ResolveFile reads path as a manifest and resolves it. sentinel selection
// uses the default "## dependencies" identifier; callers needing a custom
// sentinel should call ParseManifest and Resolve directly.
func ResolveFile(ctx context.Context, path string, opts ...Option) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("puppetdep: open %s: %w", path, err)
	}
	defer f.Close()

	manifest, err := ParseManifest(f, "")
	if err != nil {
		return nil, err
	}
	return Resolve(ctx, manifest, opts...)
}
