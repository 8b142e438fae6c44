package resolver

import (
	"sort"

	"pks/internal/parser"
)

// DefinitionResolver resolves constants against definitions observed in
// source. It needs every included file extracted up front, but also covers
// constants whose definitions do not follow the file naming convention.
type DefinitionResolver struct {
	index map[string][]string
}

// NewDefinitionResolver indexes the definitions of files. ignored maps a fully
// qualified constant to the absolute files whose definition of it is skipped;
// an empty file list skips every definition of the constant.
func NewDefinitionResolver(files []*parser.ProcessedFile, ignored map[string][]string) *DefinitionResolver {
	sets := make(map[string]map[string]bool)
	for _, pf := range files {
		for _, def := range pf.Definitions {
			if isIgnored(ignored, def.FullyQualifiedName, pf.AbsolutePath) {
				continue
			}
			set, ok := sets[def.FullyQualifiedName]
			if !ok {
				set = make(map[string]bool)
				sets[def.FullyQualifiedName] = set
			}
			set[pf.AbsolutePath] = true
		}
	}

	index := make(map[string][]string, len(sets))
	for fqn, set := range sets {
		defining := make([]string, 0, len(set))
		for f := range set {
			defining = append(defining, f)
		}
		sort.Strings(defining)
		index[fqn] = defining
	}
	return &DefinitionResolver{index: index}
}

func isIgnored(ignored map[string][]string, fqn string, file string) bool {
	files, ok := ignored[fqn]
	if !ok {
		return false
	}
	if len(files) == 0 {
		return true
	}
	for _, f := range files {
		if f == file {
			return true
		}
	}
	return false
}

// Resolve implements ConstantResolver. A constant reopened in several files
// yields one Resolution per file.
func (r *DefinitionResolver) Resolve(name string, namespacePath []string) []Resolution {
	return lookup(name, namespacePath, func(fqn string) []string {
		return r.index[fqn]
	})
}

// Len returns the number of known constants.
func (r *DefinitionResolver) Len() int {
	return len(r.index)
}
