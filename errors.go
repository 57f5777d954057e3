package puppetdep

import (
	"errors"
	"fmt"
)

// Sentinel errors for simple conditions that carry no extra data.
var (
	ErrNoForgeEndpoint = errors.New("puppetdep: module has no forge endpoint configured")
	ErrEmptyManifest   = errors.New("puppetdep: manifest declares no modules")
)

// ManifestSyntaxError reports an unparsable line or malformed continuation
// in a manifest. Fatal, never demoted by the ignore list.
type ManifestSyntaxError struct {
	Line int
	Text string
}

func (e *ManifestSyntaxError) Error() string {
	return fmt.Sprintf("puppetdep: manifest syntax error at line %d: %s", e.Line, e.Text)
}

// MetadataMissingError reports a repository clone that succeeded but whose
// metadata.json is absent or unparsable. Fatal.
type MetadataMissingError struct {
	Slug Slug
	Err  error
}

func (e *MetadataMissingError) Error() string {
	return fmt.Sprintf("puppetdep: %s: metadata.json missing or invalid: %v", e.Slug, e.Err)
}

func (e *MetadataMissingError) Unwrap() error { return e.Err }

// RepositoryUnavailableError reports a failed clone or checkout. Fatal.
type RepositoryUnavailableError struct {
	Slug Slug
	URL  string
	Err  error
}

func (e *RepositoryUnavailableError) Error() string {
	return fmt.Sprintf("puppetdep: %s: repository %s unavailable: %v", e.Slug, e.URL, e.Err)
}

func (e *RepositoryUnavailableError) Unwrap() error { return e.Err }

// ForgeUnavailableError reports a transport or HTTP error talking to the
// registry. Fatal.
type ForgeUnavailableError struct {
	Slug Slug
	Err  error
}

func (e *ForgeUnavailableError) Error() string {
	return fmt.Sprintf("puppetdep: %s: forge unavailable: %v", e.Slug, e.Err)
}

func (e *ForgeUnavailableError) Unwrap() error { return e.Err }

// NoVersionFoundError reports that a target's release list was exhausted
// without satisfying the graph. The message is fixed on the
// "source => target (range)" form.
type NoVersionFoundError struct {
	SourceSlug string
	TargetSlug string
	Range      string
}

func (e *NoVersionFoundError) Error() string {
	return fmt.Sprintf("%s => %s (%s)", e.SourceSlug, e.TargetSlug, e.Range)
}

// ModuleDeprecatedError reports that a module is flagged deprecated by the
// forge.
type ModuleDeprecatedError struct {
	Slug   Slug
	Status DeprecationStatus
}

func (e *ModuleDeprecatedError) Error() string {
	if e.Status.hasSuccessor() {
		return fmt.Sprintf("puppetdep: %s is deprecated (%s), superseded by %s, deprecated at %s",
			e.Slug, e.Status.DeprecatedFor, e.Status.SupersededBy, e.Status.DeprecatedAt.Format("2006-01-02T15:04:05Z07:00"))
	}
	return fmt.Sprintf("puppetdep: %s is deprecated (%s), deprecated at %s",
		e.Slug, e.Status.DeprecatedFor, e.Status.DeprecatedAt.Format("2006-01-02T15:04:05Z07:00"))
}

// StateInvariantError indicates a programming error: a required field was
// missing at a point where the algorithm assumes it is always present.
type StateInvariantError struct {
	Detail string
}

func (e *StateInvariantError) Error() string {
	return fmt.Sprintf("puppetdep: internal invariant violated: %s", e.Detail)
}
