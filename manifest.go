package puppetdep

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"

	"github.com/puppetdep/puppetdep/versionrange"
)

const defaultDependencySentinel = "## dependencies"
const defaultForgeEndpoint = "https://forgeapi.puppetlabs.com"

// parseState is the manifest scanner's small state machine.
type parseState int

const (
	stateIdle parseState = iota
	stateInModDeclaration
	stateAfterDependencySentinel
)

// Manifest is a parsed manifest: the forge endpoint, top-level modules in
// declaration order, and (once past the dependency sentinel) dependent
// modules.
type Manifest struct {
	ForgeEndpoint      string
	TopLevel           []*ModuleDeclaration
	Dependents         []*ModuleDeclaration
	DependencySentinel string // as configured, defaults to "## dependencies"
	Preamble           string

	// Summary is populated by resolve(); a freshly parsed Manifest (before
	// Resolve/ResolveFile runs) leaves it zero.
	Summary ResolutionSummary
}

var (
	forgeLineRe = regexp.MustCompile(`^forge\s+'([^']*)'\s*$`)
	modHeadRe   = regexp.MustCompile(`^mod\s+'([^']+)'\s*(.*)$`)
	quotedRe    = regexp.MustCompile(`'([^']*)'`)
)

// pendingMod accumulates a mod declaration across continuation lines.
type pendingMod struct {
	nameToken string
	rest      string
	comment   []string
}

// ParseManifest parses r into a Manifest. sentinel is the configured
// dependency identifier; pass "" to use the default "## dependencies".
func ParseManifest(r io.Reader, sentinel string) (*Manifest, error) {
	if sentinel == "" {
		sentinel = defaultDependencySentinel
	}

	m := &Manifest{
		ForgeEndpoint:      defaultForgeEndpoint,
		DependencySentinel: sentinel,
	}

	state := stateIdle
	var pending *pendingMod
	var commentBlock []string
	lineNo := 0

	flush := func() error {
		if pending == nil {
			return nil
		}
		decl, err := buildDeclaration(pending, m.ForgeEndpoint)
		if err != nil {
			return err
		}
		if state == stateAfterDependencySentinel {
			m.Dependents = append(m.Dependents, decl)
		} else {
			m.TopLevel = append(m.TopLevel, decl)
		}
		pending = nil
		return nil
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)

		switch {
		case trimmed == "":
			if err := flush(); err != nil {
				return nil, err
			}
			commentBlock = nil
			continue

		case strings.HasPrefix(trimmed, "#"):
			if strings.Contains(trimmed, sentinel) {
				if err := flush(); err != nil {
					return nil, err
				}
				state = stateAfterDependencySentinel
				commentBlock = nil
				continue
			}
			commentBlock = append(commentBlock, trimmed)
			continue

		case forgeLineRe.MatchString(trimmed):
			if err := flush(); err != nil {
				return nil, err
			}
			m.ForgeEndpoint = forgeLineRe.FindStringSubmatch(trimmed)[1]
			commentBlock = nil
			continue

		case modHeadRe.MatchString(trimmed):
			if err := flush(); err != nil {
				return nil, err
			}
			groups := modHeadRe.FindStringSubmatch(trimmed)
			pending = &pendingMod{nameToken: groups[1], rest: groups[2], comment: commentBlock}
			commentBlock = nil
			if state != stateAfterDependencySentinel {
				state = stateInModDeclaration
			}
			continue

		default:
			if pending != nil && state != stateIdle {
				pending.rest += " " + trimmed
				continue
			}
			return nil, &ManifestSyntaxError{Line: lineNo, Text: line}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("puppetdep: read manifest: %w", err)
	}
	if err := flush(); err != nil {
		return nil, err
	}

	return m, nil
}

// buildDeclaration turns one accumulated pending mod entry into a
// ModuleDeclaration. Version resolution against the forge happens later,
// during resolution, not at parse time.
func buildDeclaration(p *pendingMod, forgeEndpoint string) (*ModuleDeclaration, error) {
	slug, err := NewSlug(p.nameToken)
	if err != nil {
		return nil, &ManifestSyntaxError{Text: fmt.Sprintf("mod '%s'", p.nameToken)}
	}

	rest := strings.TrimSpace(strings.TrimPrefix(p.rest, ","))
	rest = strings.TrimSpace(rest)

	decl := &ModuleDeclaration{Slug: slug, Comment: p.comment}

	if gitURL, ref, isRepo := parseGitParams(rest); isRepo {
		decl.Kind = RepoKind{URL: gitURL, Ref: ref}
		return decl, nil
	}

	decl.Kind = ForgeKind{}
	decl.ForgeEndpoint = forgeEndpoint
	if rest != "" {
		if m := quotedRe.FindStringSubmatch(rest); m != nil {
			v, err := versionrange.ParseVersion(m[1])
			if err != nil {
				return nil, &ManifestSyntaxError{Text: fmt.Sprintf("mod '%s', %s", p.nameToken, rest)}
			}
			decl.SetVersion(v)
		}
	}
	return decl, nil
}

// parseGitParams extracts :git => '...' and :ref => '...' from a mod
// entry's trailing parameter text, in either order.
func parseGitParams(rest string) (url, ref string, ok bool) {
	gitRe := regexp.MustCompile(`:git\s*=>\s*'([^']*)'`)
	refRe := regexp.MustCompile(`:ref\s*=>\s*'([^']*)'`)

	gitMatch := gitRe.FindStringSubmatch(rest)
	if gitMatch == nil {
		return "", "", false
	}
	url = gitMatch[1]
	if refMatch := refRe.FindStringSubmatch(rest); refMatch != nil {
		ref = refMatch[1]
	}
	return url, ref, true
}

// Emit writes the canonical text form of a resolved manifest: forge line,
// optional preamble, repository modules sorted by name, forge modules
// sorted by name, the dependency sentinel, then dependent modules sorted
// by name. This is the only ordering policy in force — see SPEC_FULL.md
// §9 for why it was kept as three independently sorted groups rather than
// one global sort.
func Emit(w io.Writer, m *Manifest) error {
	if _, err := fmt.Fprintf(w, "forge '%s'\n", m.ForgeEndpoint); err != nil {
		return err
	}
	if m.Preamble != "" {
		if _, err := fmt.Fprintf(w, "\n%s\n", m.Preamble); err != nil {
			return err
		}
	}

	repoMods, forgeMods := splitByKind(m.TopLevel)
	sentinel := m.DependencySentinel
	if sentinel == "" {
		sentinel = defaultDependencySentinel
	}

	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	for _, mod := range repoMods {
		if err := emitModule(w, mod); err != nil {
			return err
		}
	}
	for _, mod := range forgeMods {
		if err := emitModule(w, mod); err != nil {
			return err
		}
	}

	if len(m.Dependents) > 0 {
		if _, err := fmt.Fprintf(w, "\n%s\n", sentinel); err != nil {
			return err
		}
		dependents := append([]*ModuleDeclaration(nil), m.Dependents...)
		sort.Slice(dependents, func(i, j int) bool {
			return dependents[i].Slug.Name() < dependents[j].Slug.Name()
		})
		for _, mod := range dependents {
			if err := emitModule(w, mod); err != nil {
				return err
			}
		}
	}
	return nil
}

func splitByKind(mods []*ModuleDeclaration) (repo, forgeMods []*ModuleDeclaration) {
	for _, m := range mods {
		if m.IsRepo() {
			repo = append(repo, m)
		} else {
			forgeMods = append(forgeMods, m)
		}
	}
	sort.Slice(repo, func(i, j int) bool { return repo[i].Slug.Name() < repo[j].Slug.Name() })
	sort.Slice(forgeMods, func(i, j int) bool { return forgeMods[i].Slug.Name() < forgeMods[j].Slug.Name() })
	return repo, forgeMods
}

func emitModule(w io.Writer, m *ModuleDeclaration) error {
	for _, c := range m.Comment {
		if _, err := fmt.Fprintln(w, c); err != nil {
			return err
		}
	}
	if repo, ok := m.Kind.(RepoKind); ok {
		if repo.Ref != "" {
			_, err := fmt.Fprintf(w, "mod '%s', :git => '%s', :ref => '%s'\n", m.Slug, repo.URL, repo.Ref)
			return err
		}
		_, err := fmt.Fprintf(w, "mod '%s', :git => '%s'\n", m.Slug, repo.URL)
		return err
	}
	if m.HasVersion() {
		_, err := fmt.Fprintf(w, "mod '%s', '%s'\n", m.Slug, m.Version)
		return err
	}
	_, err := fmt.Fprintf(w, "mod '%s'\n", m.Slug)
	return err
}
