package forge

import (
	"context"
	"fmt"
	"sync"
)

// source is the subset of client behavior the Cache needs behind it.
type source interface {
	GetModule(ctx context.Context, author, name string) (ModuleData, error)
	GetRelease(ctx context.Context, author, name, version string) (ReleaseData, error)
}

// Cache memoizes registry lookups for a single resolution run: module
// data, release lists, and release dependencies. It is constructed fresh
// per run and discarded afterward — never a package-level singleton, so
// that two runs in the same process never see each other's state.
type Cache struct {
	src source

	moduleData   sync.Map // slug -> ModuleData
	releases     sync.Map // slug -> []string (descending semver, mutable)
	releaseDeps  sync.Map // slug+"@"+version -> []DependencySpec

	fetchOnce sync.Map // slug -> *sync.Once, collapses concurrent identical fetches
}

// NewCache builds a Cache backed by src.
func NewCache(src source) *Cache {
	return &Cache{src: src}
}

func (c *Cache) onceFor(key string) *sync.Once {
	once, _ := c.fetchOnce.LoadOrStore(key, &sync.Once{})
	return once.(*sync.Once)
}

// ModuleDataOf returns the cached module record for (author, name),
// fetching and caching it on first access. Concurrent callers for the same
// slug converge on a single fetch.
func (c *Cache) ModuleDataOf(ctx context.Context, author, name string) (ModuleData, error) {
	slug := author + "-" + name
	if cached, ok := c.moduleData.Load(slug); ok {
		return cached.(ModuleData), nil
	}

	var fetchErr error
	c.onceFor("module:"+slug).Do(func() {
		data, err := c.src.GetModule(ctx, author, name)
		if err != nil {
			fetchErr = err
			return
		}
		c.moduleData.Store(slug, data)
		releases := make([]string, 0, len(data.Releases))
		for _, r := range data.Releases {
			releases = append(releases, r.Version)
		}
		c.releases.Store(slug, releases)
	})
	if fetchErr != nil {
		return ModuleData{}, fetchErr
	}
	cached, ok := c.moduleData.Load(slug)
	if !ok {
		return ModuleData{}, fmt.Errorf("forge: %s: an earlier fetch of this module failed", slug)
	}
	return cached.(ModuleData), nil
}

// Releases returns the current, mutable release list for (author, name) in
// the order the registry returned it (treated as descending semver).
func (c *Cache) Releases(ctx context.Context, author, name string) ([]string, error) {
	slug := author + "-" + name
	if cached, ok := c.releases.Load(slug); ok {
		return cached.([]string), nil
	}
	if _, err := c.ModuleDataOf(ctx, author, name); err != nil {
		return nil, err
	}
	cached, _ := c.releases.Load(slug)
	if cached == nil {
		return nil, nil
	}
	return cached.([]string), nil
}

// UpdateAvailableReleases atomically replaces the cached release list for
// (author, name), used by the resolver's backtracking search as candidates
// are consumed and re-committed.
func (c *Cache) UpdateAvailableReleases(author, name string, releases []string) {
	c.releases.Store(author+"-"+name, releases)
}

// DeprecationOf reports whether (author, name) is flagged deprecated, and
// if so returns the raw fields the caller translates into a
// DeprecationStatus.
func (c *Cache) DeprecationOf(ctx context.Context, author, name string) (deprecated bool, deprecatedAt, deprecatedFor, supersededBy string, err error) {
	data, err := c.ModuleDataOf(ctx, author, name)
	if err != nil {
		return false, "", "", "", err
	}
	if !data.IsDeprecated() {
		return false, "", "", "", nil
	}
	successor := ""
	if data.SupersededBy != nil {
		successor = data.SupersededBy.Slug
	}
	return true, data.DeprecatedAt, data.DeprecatedFor, successor, nil
}

// Dependencies returns the dependency list declared by release
// (author, name, version), fetching and caching it on first access.
func (c *Cache) Dependencies(ctx context.Context, author, name, version string) ([]DependencySpec, error) {
	key := author + "-" + name + "@" + version
	if cached, ok := c.releaseDeps.Load(key); ok {
		return cached.([]DependencySpec), nil
	}

	var fetchErr error
	c.onceFor("release:"+key).Do(func() {
		data, err := c.src.GetRelease(ctx, author, name, version)
		if err != nil {
			fetchErr = err
			return
		}
		c.releaseDeps.Store(key, data.Metadata.Dependencies)
	})
	if fetchErr != nil {
		return nil, fetchErr
	}
	cached, ok := c.releaseDeps.Load(key)
	if !ok {
		return nil, fmt.Errorf("forge: %s: an earlier fetch of this release failed", key)
	}
	return cached.([]DependencySpec), nil
}

// Snapshot captures the cache's contents for a diagnostic dump.
type Snapshot struct {
	ModuleData  map[string]ModuleData          `json:"moduleData"`
	Releases    map[string][]string            `json:"releases"`
	ReleaseDeps map[string][]DependencySpec    `json:"releaseDependencies"`
}

// ErrorInformation snapshots the cache for inclusion in a diagnostic dump.
func (c *Cache) ErrorInformation() Snapshot {
	snap := Snapshot{
		ModuleData:  make(map[string]ModuleData),
		Releases:    make(map[string][]string),
		ReleaseDeps: make(map[string][]DependencySpec),
	}
	c.moduleData.Range(func(k, v any) bool {
		snap.ModuleData[k.(string)] = v.(ModuleData)
		return true
	})
	c.releases.Range(func(k, v any) bool {
		snap.Releases[k.(string)] = v.([]string)
		return true
	})
	c.releaseDeps.Range(func(k, v any) bool {
		snap.ReleaseDeps[k.(string)] = v.([]DependencySpec)
		return true
	})
	return snap
}
