package puppetdep

import (
	"time"

	"github.com/puppetdep/puppetdep/versionrange"
)

// ModuleKind is a closed set of the two ways a module can be declared in a
// manifest. It is modeled as a tagged variant rather than a string or bool
// flag so that a missing case is a compile error, not a silent default.
type ModuleKind interface {
	isModuleKind()
}

// ForgeKind marks a module resolved against the remote registry.
type ForgeKind struct{}

func (ForgeKind) isModuleKind() {}

// RepoKind marks a module whose version and dependencies come from a
// version-controlled repository's metadata.json.
type RepoKind struct {
	URL string
	Ref string
}

func (RepoKind) isModuleKind() {}

// RequirementSource is a closed set describing where a Requirement
// originated: the manifest itself, or another module's dependency list.
type RequirementSource interface {
	isRequirementSource()
	String() string
}

// FromManifest marks a requirement seeded directly from the manifest's
// top-level module list.
type FromManifest struct{}

func (FromManifest) isRequirementSource() {}
func (FromManifest) String() string       { return "manifest" }

// FromDependency marks a requirement discovered while resolving another
// module's own dependencies.
type FromDependency struct {
	Source *ModuleDeclaration
}

func (FromDependency) isRequirementSource() {}
func (f FromDependency) String() string {
	if f.Source == nil {
		return "dependency"
	}
	return f.Source.Slug.String()
}

// DeprecationStatus records a module flagged deprecated by the forge.
type DeprecationStatus struct {
	DeprecatedAt  time.Time
	DeprecatedFor string
	SupersededBy  Slug // zero value if the registry named no successor
}

func (d *DeprecationStatus) hasSuccessor() bool {
	return d != nil && !d.SupersededBy.IsZero()
}

// ModuleDeclaration is one module's identity, version, and the means to
// retrieve its dependencies. A declaration is mutable during resolution:
// Version changes as the resolver backtracks, and releases/dependencies are
// populated lazily through the cache.
type ModuleDeclaration struct {
	Slug    Slug
	Kind    ModuleKind
	Version versionrange.Version // zero Version means "not yet resolved"

	ForgeEndpoint string // required for ForgeKind before any query

	Comment []string // preserved comment block, for faithful emission

	hasVersion bool
	repoDeps   []Requirement // populated by ResolveRepoModule for RepoKind modules
}

// IsForge reports whether m is a forge-resolved module.
func (m *ModuleDeclaration) IsForge() bool {
	_, ok := m.Kind.(ForgeKind)
	return ok
}

// IsRepo reports whether m is a repository-resolved module.
func (m *ModuleDeclaration) IsRepo() bool {
	_, ok := m.Kind.(RepoKind)
	return ok
}

// SetVersion pins m to v and marks it resolved.
func (m *ModuleDeclaration) SetVersion(v versionrange.Version) {
	m.Version = v
	m.hasVersion = true
}

// HasVersion reports whether m has been assigned a concrete version.
func (m *ModuleDeclaration) HasVersion() bool {
	return m.hasVersion
}

// Requirement is a directed edge: source needs target within range.
type Requirement struct {
	Source       RequirementSource
	TargetModule *ModuleDeclaration
	Range        versionrange.Range
}

// sourceSlug returns the slug identifying the requirement's origin node in
// the dependency graph: "manifest" for a FromManifest requirement, or the
// source module's slug for a FromDependency requirement.
func (r Requirement) sourceSlug() string {
	switch src := r.Source.(type) {
	case FromManifest:
		return manifestNodeID
	case FromDependency:
		if src.Source != nil {
			return src.Source.Slug.String()
		}
	}
	return manifestNodeID
}

// edgeID is the identity used to deduplicate edges in the dependency graph:
// "(source_slug ?? manifest).(target_slug)".
func (r Requirement) edgeID() string {
	return r.sourceSlug() + "." + r.TargetModule.Slug.String()
}

// IsValid reports whether the requirement carries the fields required to be
// inserted into the graph: a target module is always required, and a source
// module is required when the source is a dependency. The range is not
// checked; a zero Range is accepted and satisfied by every version.
func (r Requirement) IsValid() bool {
	if r.TargetModule == nil {
		return false
	}
	if src, ok := r.Source.(FromDependency); ok && src.Source == nil {
		return false
	}
	return true
}

// versionrangeExact builds the range "=m.Version" used to seed a top-level
// requirement, or "any" if m was declared without a pinned version.
func versionrangeExact(m *ModuleDeclaration) versionrange.Range {
	if !m.HasVersion() {
		return versionrange.AnyRange()
	}
	return versionrange.MustParseRange("=" + m.Version.String())
}

// ResolutionSummary counts what a successful resolution produced, reported
// alongside the emitted manifest for logging and diagnostics.
type ResolutionSummary struct {
	TopLevelCount  int
	DependentCount int
	Warnings       []string
}
