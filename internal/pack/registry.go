package pack

import (
	"sort"

	"pks/internal/paths"
)

// Registry is the immutable, indexed set of packs of a project. Packs are held
// longest name first so that nested packs shadow their ancestors in ForFile.
type Registry struct {
	packs []*Pack
	index map[string]*Pack
}

// Build deduplicates packs by name, sorts them by descending name length and
// then alphabetically, and indexes them. When two packs share a name the first
// one in input order is kept.
func Build(packs []*Pack) *Registry {
	index := make(map[string]*Pack, len(packs))
	unique := make([]*Pack, 0, len(packs))
	for _, p := range packs {
		if p == nil {
			continue
		}
		if _, seen := index[p.Name]; seen {
			continue
		}
		index[p.Name] = p
		unique = append(unique, p)
	}

	sort.Slice(unique, func(i, j int) bool {
		a, b := unique[i].Name, unique[j].Name
		if len(a) != len(b) {
			return len(a) > len(b)
		}
		return a < b
	})

	return &Registry{packs: unique, index: index}
}

// Duplicates returns the names that occur more than once in packs.
func Duplicates(packs []*Pack) []string {
	counts := make(map[string]int, len(packs))
	for _, p := range packs {
		if p != nil {
			counts[p.Name]++
		}
	}
	var dups []string
	for name, n := range counts {
		if n > 1 {
			dups = append(dups, name)
		}
	}
	sort.Strings(dups)
	return dups
}

// ForFile returns the name of the most specific pack whose directory contains
// the absolute path. The match is on directory boundaries.
func (r *Registry) ForFile(absolutePath string) (string, bool) {
	for _, p := range r.packs {
		if paths.HasDirPrefix(absolutePath, p.Root()) {
			return p.Name, true
		}
	}
	return "", false
}

// ForRelativeFile is ForFile for root-relative paths with forward slashes.
func (r *Registry) ForRelativeFile(relativePath string) (string, bool) {
	for _, p := range r.packs {
		if paths.HasDirPrefix(relativePath, p.RelativePath) {
			return p.Name, true
		}
	}
	return "", false
}

// ForPack returns the pack with the given name. Callers only pass names that
// came out of the registry, so an unknown name is a programming error and
// panics.
func (r *Registry) ForPack(name string) *Pack {
	p, ok := r.index[name]
	if !ok {
		panic("pack: no pack named " + name)
	}
	return p
}

// Lookup returns the pack with the given name, if any.
func (r *Registry) Lookup(name string) (*Pack, bool) {
	p, ok := r.index[name]
	return p, ok
}

// Packs returns the packs in registry order.
func (r *Registry) Packs() []*Pack {
	out := make([]*Pack, len(r.packs))
	copy(out, r.packs)
	return out
}

// Names returns the pack names in registry order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.packs))
	for i, p := range r.packs {
		names[i] = p.Name
	}
	return names
}

// Len returns the number of packs.
func (r *Registry) Len() int {
	return len(r.packs)
}
