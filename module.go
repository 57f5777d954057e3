package puppetdep

import (
	"context"
	"fmt"
	"time"

	"github.com/puppetdep/puppetdep/forge"
	"github.com/puppetdep/puppetdep/repofetch"
	"github.com/puppetdep/puppetdep/versionrange"
)

// parseForgeTimestamp accepts the handful of timestamp shapes real forge
// deployments have been observed to emit for deprecated_at.
func parseForgeTimestamp(raw string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05 -0700", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("puppetdep: unrecognized timestamp %q", raw)
}

// registrySource is the forge surface a resolution needs: cached release
// lists, deprecation records, and dependency lists.
type registrySource interface {
	Releases(ctx context.Context, author, name string) ([]string, error)
	UpdateAvailableReleases(author, name string, releases []string)
	DeprecationOf(ctx context.Context, author, name string) (deprecated bool, deprecatedAt, deprecatedFor, supersededBy string, err error)
	Dependencies(ctx context.Context, author, name, version string) ([]forge.DependencySpec, error)
}

var _ registrySource = (*forge.Cache)(nil)

// AvailableVersions returns the module's release candidates, descending by
// semver. Only meaningful for a ForgeKind module.
func AvailableVersions(ctx context.Context, cache registrySource, m *ModuleDeclaration) ([]string, error) {
	if !m.IsForge() {
		return nil, nil
	}
	if m.ForgeEndpoint == "" {
		return nil, ErrNoForgeEndpoint
	}
	return cache.Releases(ctx, m.Slug.Author(), m.Slug.Name())
}

// HasAvailableVersion reports whether the module's release list still has
// a candidate to try.
func HasAvailableVersion(ctx context.Context, cache registrySource, m *ModuleDeclaration) (bool, error) {
	versions, err := AvailableVersions(ctx, cache, m)
	if err != nil {
		return false, err
	}
	return len(versions) > 0, nil
}

// NextAvailableVersion removes and returns the head of the module's
// release list, updating the cache so later calls see the shortened list.
func NextAvailableVersion(ctx context.Context, cache registrySource, m *ModuleDeclaration) (versionrange.Version, bool, error) {
	versions, err := AvailableVersions(ctx, cache, m)
	if err != nil {
		return versionrange.Version{}, false, err
	}
	if len(versions) == 0 {
		return versionrange.Version{}, false, nil
	}
	head := versions[0]
	cache.UpdateAvailableReleases(m.Slug.Author(), m.Slug.Name(), versions[1:])

	v, err := versionrange.ParseVersion(head)
	if err != nil {
		return versionrange.Version{}, false, fmt.Errorf("puppetdep: %s: %w", m.Slug, err)
	}
	return v, true, nil
}

// PushAvailableVersion reinserts v at the head of the module's release
// list, used to re-commit a chosen candidate so subsequent queries still
// see it as selectable.
func PushAvailableVersion(cache registrySource, m *ModuleDeclaration, v versionrange.Version) {
	// Releases() populates the cache lazily; by the time we push back a
	// chosen candidate the list is guaranteed to already be resident, so
	// no context/error path is needed here.
	current, _ := cache.Releases(context.Background(), m.Slug.Author(), m.Slug.Name())
	cache.UpdateAvailableReleases(m.Slug.Author(), m.Slug.Name(), append([]string{v.String()}, current...))
}

// Dependencies materializes the module's declared dependencies as
// Requirements sourced from m. For a ForgeKind module this fetches release
// dependencies from the cache; for a RepoKind module the caller supplies
// them directly from metadata.json (see ResolveRepoModule).
func Dependencies(ctx context.Context, cache registrySource, m *ModuleDeclaration) ([]Requirement, error) {
	if m.IsRepo() {
		return m.repoDeps, nil
	}
	if !m.HasVersion() {
		return nil, &StateInvariantError{Detail: fmt.Sprintf("%s: dependencies() called before a version was assigned", m.Slug)}
	}

	specs, err := cache.Dependencies(ctx, m.Slug.Author(), m.Slug.Name(), m.Version.String())
	if err != nil {
		return nil, &ForgeUnavailableError{Slug: m.Slug, Err: err}
	}

	reqs := make([]Requirement, 0, len(specs))
	for _, spec := range specs {
		targetSlug, err := NewSlug(spec.Name)
		if err != nil {
			return nil, &ManifestSyntaxError{Text: fmt.Sprintf("dependency name %q from %s", spec.Name, m.Slug)}
		}
		rng, err := versionrange.ParseRange(spec.VersionRequirement)
		if err != nil {
			rng = versionrange.AnyRange()
		}
		target := &ModuleDeclaration{
			Slug:          targetSlug,
			Kind:          ForgeKind{},
			ForgeEndpoint: m.ForgeEndpoint,
		}
		reqs = append(reqs, Requirement{
			Source:       FromDependency{Source: m},
			TargetModule: target,
			Range:        rng,
		})
	}
	return reqs, nil
}

// DeprecationOf returns the module's deprecation record, or nil if it is
// not deprecated. Always nil for a RepoKind module.
func DeprecationOf(ctx context.Context, cache registrySource, m *ModuleDeclaration) (*DeprecationStatus, error) {
	if m.IsRepo() {
		return nil, nil
	}
	deprecated, at, reason, successor, err := cache.DeprecationOf(ctx, m.Slug.Author(), m.Slug.Name())
	if err != nil {
		return nil, &ForgeUnavailableError{Slug: m.Slug, Err: err}
	}
	if !deprecated {
		return nil, nil
	}

	status := &DeprecationStatus{DeprecatedFor: reason}
	if t, err := parseForgeTimestamp(at); err == nil {
		status.DeprecatedAt = t
	}
	if successor != "" {
		if s, err := NewSlug(successor); err == nil {
			status.SupersededBy = s
		}
	}
	return status, nil
}

// ResolveRepoModule clones m's repository, reads metadata.json, and
// populates m's version and dependency list in place. It is a no-op if m
// already has a version — repository modules are resolved exactly once,
// lazily, the first time the resolver needs their version or
// dependencies, since ParseManifest itself does no I/O.
func ResolveRepoModule(ctx context.Context, m *ModuleDeclaration) error {
	if !m.IsRepo() || m.HasVersion() {
		return nil
	}
	repo := m.Kind.(RepoKind)

	checkout, err := repofetch.Clone(ctx, repo.URL, repo.Ref)
	if err != nil {
		return &RepositoryUnavailableError{Slug: m.Slug, URL: repo.URL, Err: err}
	}
	defer checkout.Close()

	meta, err := repofetch.ReadMetadata(checkout.Dir)
	if err != nil {
		return &MetadataMissingError{Slug: m.Slug, Err: err}
	}

	version, err := versionrange.ParseVersion(meta.Version)
	if err != nil {
		return &MetadataMissingError{Slug: m.Slug, Err: err}
	}
	m.SetVersion(version)

	for _, dep := range meta.Dependencies {
		targetSlug, err := NewSlug(dep.Name)
		if err != nil {
			continue
		}
		rng, err := versionrange.ParseRange(dep.VersionRequirement)
		if err != nil {
			rng = versionrange.AnyRange()
		}
		target := &ModuleDeclaration{Slug: targetSlug, Kind: ForgeKind{}}
		m.repoDeps = append(m.repoDeps, Requirement{
			Source:       FromDependency{Source: m},
			TargetModule: target,
			Range:        rng,
		})
	}

	return nil
}
