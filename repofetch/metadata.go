package repofetch

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Metadata is the subset of a module repository's metadata.json this
// system consumes.
type Metadata struct {
	Version      string                `json:"version"`
	Dependencies []MetadataDependency `json:"dependencies"`
}

// MetadataDependency is one entry of metadata.json's dependencies array.
type MetadataDependency struct {
	Name              string `json:"name"`
	VersionRequirement string `json:"version_requirement"`
}

// ReadMetadata reads and parses metadata.json from the top level of dir.
func ReadMetadata(dir string) (Metadata, error) {
	path := filepath.Join(dir, "metadata.json")
	raw, err := os.ReadFile(path)
	if err != nil {
		return Metadata{}, fmt.Errorf("repofetch: read %s: %w", path, err)
	}

	var meta Metadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		return Metadata{}, fmt.Errorf("repofetch: parse %s: %w", path, err)
	}
	if meta.Version == "" {
		return Metadata{}, fmt.Errorf("repofetch: %s has no version field", path)
	}
	return meta, nil
}
