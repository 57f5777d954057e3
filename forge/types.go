package forge

// ModuleData is the decoded response of GET /v3/modules/{author}-{name}.
type ModuleData struct {
	Slug          string        `json:"slug"`
	Releases      []ReleaseInfo `json:"releases"`
	DeprecatedAt  string        `json:"deprecated_at,omitempty"`
	DeprecatedFor string        `json:"deprecated_for,omitempty"`
	SupersededBy  *SlugRef      `json:"superseded_by,omitempty"`
}

// ReleaseInfo is one entry of ModuleData.Releases.
type ReleaseInfo struct {
	Version string `json:"version"`
}

// SlugRef names a module by slug, used for the superseded_by field.
type SlugRef struct {
	Slug string `json:"slug"`
}

// ReleaseData is the decoded response of
// GET /v3/releases/{author}-{name}-{version}.
type ReleaseData struct {
	Slug     string          `json:"slug"`
	Metadata ReleaseMetadata `json:"metadata"`
}

// ReleaseMetadata carries the dependency list consumed from a release.
type ReleaseMetadata struct {
	Dependencies []DependencySpec `json:"dependencies"`
}

// DependencySpec is one dependency entry as reported by the forge or a
// repository's metadata.json.
type DependencySpec struct {
	Name              string `json:"name"`
	VersionRequirement string `json:"version_requirement"`
}

// IsDeprecated reports whether the module carries a deprecation timestamp.
func (m ModuleData) IsDeprecated() bool {
	return m.DeprecatedAt != ""
}
