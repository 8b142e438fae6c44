package references

import (
	"context"
	"fmt"
	"path/filepath"

	"pks/internal/cache"
	"pks/internal/inflect"
	"pks/internal/pack"
	"pks/internal/parser"
	"pks/internal/resolver"
)

// Extra field keys attached by PackNames.
const (
	ReferencingPackField = "referencing_pack_name"
	DefiningPackField    = "defining_pack_name"
)

// ExtraFieldsFunc computes extra string fields for a reference from its
// root-relative referencing file and, when resolved, its root-relative
// defining file ("" otherwise).
type ExtraFieldsFunc interface {
	ExtraFields(relativeReferencingFile string, relativeDefiningFile string) map[string]string
}

// ExtractorConfig configures an Extractor run.
type ExtractorConfig struct {
	AbsoluteRoot  string
	AutoloadPaths map[string]string
	Acronyms      []string
	IncludedFiles []string
	ExtraFields   ExtraFieldsFunc
}

// RawReference is a reference as produced by an Extractor, before pack names
// are known to the pipeline.
type RawReference struct {
	ConstantName            string
	RelativeReferencingFile string
	RelativeDefiningFile    string
	SourceLocation          parser.SourceLocation
	ExtraFields             map[string]string
}

// Extractor parses files and assembles references without knowledge of packs.
type Extractor interface {
	AllReferences(ctx context.Context, cfg ExtractorConfig) ([]RawReference, error)
}

// AllReferencesWithExtractor delegates parsing and resolution to ext. Pack
// names reach the pipeline only through the injected PackNames fields;
// references without a referencing pack are dropped.
func (p *Pipeline) AllReferencesWithExtractor(ctx context.Context, absolutePaths []string, ext Extractor) ([]Reference, error) {
	autoload, err := p.project.AutoloadPaths()
	if err != nil {
		return nil, err
	}

	raw, err := ext.AllReferences(ctx, ExtractorConfig{
		AbsoluteRoot:  p.project.Root,
		AutoloadPaths: autoload,
		Acronyms:      p.project.Inflector.Acronyms(),
		IncludedFiles: absolutePaths,
		ExtraFields:   NewPackNames(p.project.Registry),
	})
	if err != nil {
		return nil, err
	}

	refs := make([]Reference, 0, len(raw))
	for _, r := range raw {
		referencing, ok := r.ExtraFields[ReferencingPackField]
		if !ok {
			continue
		}
		refs = append(refs, Reference{
			ConstantName:            r.ConstantName,
			DefiningPackName:        r.ExtraFields[DefiningPackField],
			RelativeDefiningFile:    r.RelativeDefiningFile,
			ReferencingPackName:     referencing,
			RelativeReferencingFile: r.RelativeReferencingFile,
			SourceLocation:          r.SourceLocation,
		})
	}
	p.logger.Debug("Delegated extraction finished", "raw", len(raw), "references", len(refs))
	return refs, nil
}

// PackNames maps relative paths to pack names for an Extractor.
type PackNames struct {
	registry *pack.Registry
}

// NewPackNames creates the field callback for registry.
func NewPackNames(registry *pack.Registry) *PackNames {
	return &PackNames{registry: registry}
}

// ExtraFields implements ExtraFieldsFunc using directory-prefix ownership, the
// same rule as Registry.ForFile. A substring match on pack names would put
// packs/foo_extra/x.rb in packs/foo; prefix ownership does not.
func (n *PackNames) ExtraFields(relativeReferencingFile string, relativeDefiningFile string) map[string]string {
	fields := make(map[string]string, 2)
	if name, ok := n.registry.ForRelativeFile(relativeReferencingFile); ok {
		fields[ReferencingPackField] = name
	}
	if relativeDefiningFile != "" {
		if name, ok := n.registry.ForRelativeFile(relativeDefiningFile); ok {
			fields[DefiningPackField] = name
		}
	}
	return fields
}

// TreeSitterExtractor is the in-repo Extractor: files are parsed through the
// content cache and resolved by file naming convention.
type TreeSitterExtractor struct {
	cache       cache.Cache
	parallelism int
}

// NewTreeSitterExtractor creates an Extractor over c.
func NewTreeSitterExtractor(c cache.Cache, parallelism int) *TreeSitterExtractor {
	return &TreeSitterExtractor{cache: c, parallelism: parallelism}
}

// AllReferences implements Extractor.
func (e *TreeSitterExtractor) AllReferences(ctx context.Context, cfg ExtractorConfig) ([]RawReference, error) {
	res, err := resolver.NewZeitwerkResolver(cfg.AutoloadPaths, inflect.New(cfg.Acronyms))
	if err != nil {
		return nil, fmt.Errorf("failed to build constant resolver: %w", err)
	}

	chunks, err := parallelMap(ctx, e.parallelism, cfg.IncludedFiles,
		func(ctx context.Context, path string) ([]RawReference, error) {
			pf, err := e.cache.GetOrExtract(ctx, path)
			if err != nil {
				return nil, err
			}
			relReferencing := relative(cfg.AbsoluteRoot, pf.AbsolutePath)

			var out []RawReference
			for _, ur := range pf.UnresolvedReferences {
				resolutions := res.Resolve(ur.Name, ur.NamespacePath)
				if len(resolutions) == 0 {
					out = append(out, e.raw(cfg, ur.Name, relReferencing, "", ur.Location))
					continue
				}
				for _, r := range resolutions {
					out = append(out, e.raw(cfg, r.FullyQualifiedName, relReferencing, relative(cfg.AbsoluteRoot, r.DefiningFile), ur.Location))
				}
			}
			return out, nil
		})
	if err != nil {
		return nil, err
	}
	return concat(chunks), nil
}

func (e *TreeSitterExtractor) raw(cfg ExtractorConfig, constant, relReferencing, relDefining string, loc parser.SourceLocation) RawReference {
	r := RawReference{
		ConstantName:            constant,
		RelativeReferencingFile: filepath.ToSlash(relReferencing),
		RelativeDefiningFile:    filepath.ToSlash(relDefining),
		SourceLocation:          loc,
	}
	if cfg.ExtraFields != nil {
		r.ExtraFields = cfg.ExtraFields.ExtraFields(r.RelativeReferencingFile, r.RelativeDefiningFile)
	}
	return r
}
