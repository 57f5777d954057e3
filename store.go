package puppetdep

// requirementsStore is a FIFO queue of open requirements, with the bulk
// updates the resolver needs during backtracking: rewriting every queued
// requirement's target version, and dropping every requirement sourced
// from a module that just got invalidated.
type requirementsStore struct {
	items []Requirement
}

func newRequirementsStore() *requirementsStore {
	return &requirementsStore{}
}

// seed enqueues one {Manifest, target: m, range: "=m.version"} requirement
// per top-level module, in declaration order.
func (s *requirementsStore) seed(topLevel []*ModuleDeclaration) {
	for _, m := range topLevel {
		rng := versionrangeExact(m)
		s.add(Requirement{
			Source:       FromManifest{},
			TargetModule: m,
			Range:        rng,
		})
	}
}

func (s *requirementsStore) add(r Requirement) {
	s.items = append(s.items, r)
}

func (s *requirementsStore) hasNext() bool {
	return len(s.items) > 0
}

func (s *requirementsStore) next() Requirement {
	r := s.items[0]
	s.items = s.items[1:]
	return r
}

// updateTargetVersion overwrites the version of every queued requirement
// whose target slug matches slug. Requirement.TargetModule is a shared
// pointer, so in practice a single mutation is visible everywhere it's
// referenced; this walk exists for the case where a fresh module value
// was substituted for the same slug during backtracking.
func (s *requirementsStore) updateTargetVersion(slug Slug, m *ModuleDeclaration) {
	for i := range s.items {
		if s.items[i].TargetModule != nil && s.items[i].TargetModule.Slug == slug {
			s.items[i].TargetModule = m
		}
	}
}

// deleteSourceRequirements drops every queued requirement whose source
// slug matches slug.
func (s *requirementsStore) deleteSourceRequirements(slug string) {
	kept := s.items[:0]
	for _, r := range s.items {
		if r.sourceSlug() != slug {
			kept = append(kept, r)
		}
	}
	s.items = kept
}
