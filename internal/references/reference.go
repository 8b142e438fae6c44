// Package references turns extracted constant usages into resolved references
// annotated with the referencing and defining packs.
package references

import (
	"sort"

	"pks/internal/pack"
	"pks/internal/parser"
	"pks/internal/paths"
	"pks/internal/resolver"
)

// Reference is a resolved constant usage. DefiningPackName and
// RelativeDefiningFile are empty when the constant could not be resolved.
type Reference struct {
	ConstantName            string                `json:"constant_name"`
	DefiningPackName        string                `json:"defining_pack_name,omitempty"`
	RelativeDefiningFile    string                `json:"relative_defining_file,omitempty"`
	ReferencingPackName     string                `json:"referencing_pack_name"`
	RelativeReferencingFile string                `json:"relative_referencing_file"`
	SourceLocation          parser.SourceLocation `json:"source_location"`
}

// Resolved reports whether the reference has a defining file.
func (r Reference) Resolved() bool {
	return r.RelativeDefiningFile != ""
}

// FromUnresolved resolves one usage found in referencingFile. It yields one
// Reference per candidate definition, a single unresolved Reference when
// there is none, and nothing when referencingFile lies outside every pack.
func FromUnresolved(registry *pack.Registry, root string, r resolver.ConstantResolver, ur parser.UnresolvedReference, referencingFile string) []Reference {
	referencingPack, ok := registry.ForFile(referencingFile)
	if !ok {
		return nil
	}
	relReferencing := relative(root, referencingFile)

	resolutions := r.Resolve(ur.Name, ur.NamespacePath)
	if len(resolutions) == 0 {
		return []Reference{{
			ConstantName:            ur.Name,
			ReferencingPackName:     referencingPack,
			RelativeReferencingFile: relReferencing,
			SourceLocation:          ur.Location,
		}}
	}

	out := make([]Reference, 0, len(resolutions))
	for _, res := range resolutions {
		ref := Reference{
			ConstantName:            res.FullyQualifiedName,
			ReferencingPackName:     referencingPack,
			RelativeReferencingFile: relReferencing,
			SourceLocation:          ur.Location,
		}
		if res.DefiningFile != "" {
			ref.RelativeDefiningFile = relative(root, res.DefiningFile)
			if definingPack, ok := registry.ForFile(res.DefiningFile); ok {
				ref.DefiningPackName = definingPack
			}
		}
		out = append(out, ref)
	}
	return out
}

func relative(root, absolutePath string) string {
	rel, err := paths.RelativePath(root, absolutePath)
	if err != nil {
		return paths.NormalizePath(absolutePath)
	}
	return rel
}

// SortReferences orders references by referencing file, line, column,
// constant and defining file.
func SortReferences(refs []Reference) {
	sort.SliceStable(refs, func(i, j int) bool {
		a, b := refs[i], refs[j]
		if a.RelativeReferencingFile != b.RelativeReferencingFile {
			return a.RelativeReferencingFile < b.RelativeReferencingFile
		}
		if a.SourceLocation.Line != b.SourceLocation.Line {
			return a.SourceLocation.Line < b.SourceLocation.Line
		}
		if a.SourceLocation.Column != b.SourceLocation.Column {
			return a.SourceLocation.Column < b.SourceLocation.Column
		}
		if a.ConstantName != b.ConstantName {
			return a.ConstantName < b.ConstantName
		}
		return a.RelativeDefiningFile < b.RelativeDefiningFile
	})
}
